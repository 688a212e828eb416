package main

import (
	"context"
	"crypto/tls"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/spf13/cobra"

	"machinehub/statusboard/pkg/cli"
	"machinehub/statusboard/pkg/limits/ratelimit"
	"machinehub/statusboard/pkg/registry/retention"
	"machinehub/statusboard/pkg/security/auth"
	servertls "machinehub/statusboard/pkg/security/tls"
	"machinehub/statusboard/pkg/server"
	templategit "machinehub/statusboard/pkg/templates/git"
	"machinehub/statusboard/pkg/telemetry/health"
)

var serveFlags struct {
	listenAddress string
	dryRun        bool
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the heartbeat HTTP server",
	Long: `Start the HTTP server that accepts device heartbeats and replies with
rendered templates.

Routes:
  POST /api/heartbeat   name=<device>&report=<text>, replies text/plain
  GET  /api/devices     registered devices with alive state
  GET  /api/heartbeats  devices seen per 15 minute bucket (?since=24h)
  GET  /healthz /readyz /version and the metrics path

Examples:
  statusboard serve
  statusboard serve --config /etc/statusboard/config.yaml
  statusboard serve --listen 0.0.0.0:8080
  statusboard serve --dry-run

With templates.git.enabled the template file is read from a clone of
templates.git.repository, which is pulled every templates.git.poll_interval.
server.tls serves HTTPS and reloads renewed certificates; server.auth
requires an API key (X-API-Key or Authorization: Bearer) on /api routes.
server.rate_limit answers 429 with Retry-After once a device exceeds its
heartbeat budget.
With telemetry.tracing.enabled request and render spans are exported over
OTLP/gRPC.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVarP(&serveFlags.listenAddress, "listen", "l", "", "override listen address")
	serveCmd.Flags().BoolVar(&serveFlags.dryRun, "dry-run", false, "validate config without starting the server")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if serveFlags.listenAddress != "" {
		cfg.Server.ListenAddress = serveFlags.listenAddress
	}

	out := cmd.OutOrStdout()
	if serveFlags.dryRun {
		_, err := fmt.Fprintln(out, "✓ Configuration valid")
		return err
	}

	a, err := newApp(cfg, cmd.ErrOrStderr(), false)
	if err != nil {
		return err
	}
	defer a.Close()

	ctx, stop := cli.SetupSignalHandler(cmd.Context())
	defer stop()

	checker := health.New(health.DefaultCheckTimeout)
	checker.RegisterCheck("registry", func(ctx context.Context) error {
		_, err := a.store.Devices(ctx)
		return err
	})

	var wg sync.WaitGroup
	defer wg.Wait()
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	if cfg.Templates.Watch {
		wg.Go(func() {
			if err := a.templates.Watch(ctx, cfg.Templates.Debounce); err != nil {
				a.logger.Warn("Template watcher stopped", "path", a.templates.Path(), "error", err)
			}
		})
	}

	if a.gitRepo != nil && cfg.Templates.Git.PollInterval > 0 {
		poller := templategit.NewPoller(a.gitRepo, cfg.Templates.Git.PollInterval, a.templates.Load, a.logger)
		wg.Go(func() {
			if err := poller.Run(ctx); err != nil {
				a.logger.Warn("Template repository polling stopped", "error", err)
			}
		})
	}

	if cfg.Retention.IsEnabled() {
		pruner := retention.NewPruner(a.store, retention.FromConfig(cfg.Retention)).
			WithRecorder(a.metrics).
			WithLogger(a.logger)
		scheduler := retention.NewScheduler(pruner)
		if err := scheduler.Start(ctx); err != nil {
			a.logger.Warn("Failed to start retention scheduler", "error", err)
		} else {
			defer scheduler.Stop()
			if next := scheduler.NextRun(); next != nil {
				a.logger.Info("Retention scheduler started", "next_run", *next)
			}
		}
	}

	var tlsConfig *tls.Config
	if cfg.Server.TLS.Enabled {
		reloader, err := servertls.NewReloader(cfg.Server.TLS, a.logger)
		if err != nil {
			return cli.NewConfigError("server.tls", err.Error())
		}
		tlsConfig = reloader.TLSConfig()
		wg.Go(func() { reloader.Run(ctx) })
	}

	var apiKeys *auth.Validator
	if cfg.Server.Auth.Enabled {
		apiKeys = auth.NewValidator(cfg.Server.Auth.Keys)
		a.logger.Info("API key authentication enabled", "keys", apiKeys.Len(), "header", cfg.Server.Auth.Header)
	}

	var limiter *ratelimit.Limiter
	if cfg.Server.RateLimit.Enabled {
		limiter = ratelimit.New(cfg.Server.RateLimit.HeartbeatsPerMinute, cfg.Server.RateLimit.Burst).
			WithRecorder(a.metrics)
		wg.Go(func() { limiter.Run(ctx, time.Minute) })
		a.logger.Info("Heartbeat rate limit enabled",
			"per_minute", cfg.Server.RateLimit.HeartbeatsPerMinute,
			"burst", cfg.Server.RateLimit.Burst)
	}

	// Seed the device gauges before the first heartbeat arrives.
	if _, err := a.responder.Summary(ctx); err != nil {
		a.logger.Warn("Failed to count devices", "error", err)
	}

	var metricsHandler http.Handler
	if cfg.Telemetry.Metrics.IsEnabled() {
		metricsHandler = a.metrics.Handler()
	}

	srv := server.NewServer(cfg.Server, server.Dependencies{
		Responder:   a.responder,
		Devices:     a.store,
		Health:      checker,
		Metrics:     metricsHandler,
		Tracer:      a.tracer,
		TLS:         tlsConfig,
		APIKeys:     apiKeys,
		Limiter:     limiter,
		MetricsPath: cfg.Telemetry.Metrics.Path,
		Build: server.BuildInfo{
			Version:   Version,
			Commit:    GitCommit,
			BuildTime: BuildDate,
		},
		Logger:      a.logger,
		AliveWindow: cfg.Pipeline.AliveWindow,
	})

	scheme := "http"
	if tlsConfig != nil {
		scheme = "https"
	}
	fmt.Fprintf(out, "Statusboard v%s listening on %s://%s\n", Version, scheme, cfg.Server.ListenAddress)
	if err := srv.Start(ctx); err != nil {
		return cli.NewCommandError("serve", err)
	}
	fmt.Fprintln(out, "✓ Server stopped")
	return nil
}
