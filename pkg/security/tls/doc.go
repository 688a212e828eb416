/*
Package tls builds the server's TLS configuration and keeps its certificate
fresh.

	reloader, err := tls.NewReloader(cfg.Server.TLS, logger)
	if err != nil {
		return err
	}
	go reloader.Run(ctx)
	srv := server.NewServer(cfg.Server, server.Dependencies{TLS: reloader.TLSConfig()})

The reloader checks the certificate and key modification times every
server.tls.reload_interval and swaps in the new pair once both parse and the
leaf certificate is inside its validity window. A renewal that fails to load
is logged and the previous certificate stays in use. Certificates within 30
days of expiry are logged at warn level on every load.
*/
package tls
