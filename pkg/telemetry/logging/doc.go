// Package logging builds the structured slog logger used across statusboard.
//
// Loggers are created from the telemetry.logging configuration section and
// emit either JSON or logfmt-style text. The handler returned by New reads a
// render ID and device name out of the context passed to the *Context log
// methods, so callers only attach those values once:
//
//	logger, err := logging.New(logging.Config{Level: "info", Format: "json"})
//	ctx = logging.WithRenderID(ctx, id)
//	logger.InfoContext(ctx, "template rendered", "bytes", len(out))
package logging
