package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"machinehub/statusboard/pkg/cli"
	"machinehub/statusboard/pkg/config"
	"machinehub/statusboard/pkg/mhpl"
	"machinehub/statusboard/pkg/registry"
	"machinehub/statusboard/pkg/responder"
	"machinehub/statusboard/pkg/templates"
	templategit "machinehub/statusboard/pkg/templates/git"
	"machinehub/statusboard/pkg/telemetry/logging"
	"machinehub/statusboard/pkg/telemetry/metrics"
	"machinehub/statusboard/pkg/telemetry/tracing"
)

// app holds the components shared by every command.
type app struct {
	cfg       *config.Config
	logger    *slog.Logger
	store     registry.Store
	metrics   *metrics.Collector
	pipeline  *mhpl.Pipeline
	templates *templates.Store
	responder *responder.Responder
	tracer    *tracing.Tracer
	gitRepo   *templategit.Repository // nil unless templates.git.enabled
}

// newApp wires the registry, pipeline, template store and responder from
// cfg. One-shot commands pass quiet to log only warnings unless --log-level
// was given; they never export traces.
func newApp(cfg *config.Config, logOut io.Writer, quiet bool) (*app, error) {
	logCfg := logging.FromConfig(cfg.Telemetry.Logging, logOut)
	logCfg.Service = "statusboard"
	logCfg.Version = Version
	if quiet && logLevel == "" {
		logCfg.Level = "warn"
	}

	logger, err := logging.New(logCfg)
	if err != nil {
		return nil, cli.NewConfigError("telemetry.logging", err.Error())
	}
	slog.SetDefault(logger)

	var gitRepo *templategit.Repository
	if cfg.Templates.Git.Enabled {
		gitRepo, err = openTemplateRepo(cfg.Templates.Git)
		if err != nil {
			return nil, err
		}
	}

	tracer := tracing.Disabled()
	if !quiet {
		tracer, err = tracing.New(context.Background(), cfg.Telemetry.Tracing, Version)
		if err != nil {
			return nil, cli.NewConfigError("telemetry.tracing", err.Error())
		}
	}

	store, err := registry.Open(cfg.Registry)
	if err != nil {
		_ = tracer.Shutdown(context.Background())
		return nil, fmt.Errorf("failed to open registry: %w", err)
	}

	collector := metrics.NewCollector(cfg.Telemetry.Metrics, nil)

	pipeline := mhpl.New(mhpl.Options{
		Devices:     store,
		AliveWindow: cfg.Pipeline.AliveWindow,
		MaxDepth:    cfg.Pipeline.MaxDepth,
		MaxLength:   cfg.Pipeline.MaxLength,
		MaxOutput:   cfg.Pipeline.MaxOutput,
		Observer:    collector,
	})

	tmpl := templates.NewStore(templates.StoreConfig{
		Path:            cfg.Templates.FilePath(),
		DefaultTemplate: cfg.Templates.DefaultTemplate,
		Linter:          pipeline,
		Recorder:        collector,
		Logger:          logger,
	})
	// A rejected file leaves the configured default in effect.
	_ = tmpl.Load()

	resp, err := responder.New(responder.Config{
		Store:       store,
		Renderer:    pipeline,
		Templates:   tmpl,
		Metrics:     collector,
		Tracer:      tracer,
		Logger:      logger,
		AliveWindow: cfg.Pipeline.AliveWindow,
	})
	if err != nil {
		store.Close()
		_ = tracer.Shutdown(context.Background())
		return nil, err
	}

	return &app{
		cfg:       cfg,
		logger:    logger,
		store:     store,
		metrics:   collector,
		pipeline:  pipeline,
		templates: tmpl,
		responder: resp,
		tracer:    tracer,
		gitRepo:   gitRepo,
	}, nil
}

// openTemplateRepo clones the template repository, or opens an earlier clone.
func openTemplateRepo(cfg config.GitSourceConfig) (*templategit.Repository, error) {
	repo, err := templategit.NewRepository(cfg)
	if err != nil {
		return nil, cli.NewConfigError("templates.git", err.Error())
	}
	if err := repo.Clone(context.Background()); err != nil {
		return nil, fmt.Errorf("failed to fetch templates: %w", err)
	}
	return repo, nil
}

// Close flushes pending spans and releases the registry.
func (a *app) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), a.cfg.Telemetry.Tracing.Timeout)
	defer cancel()
	if err := a.tracer.Shutdown(ctx); err != nil {
		a.logger.Warn("Failed to flush traces", "error", err)
	}
	return a.store.Close()
}

// openApp loads configuration and builds a quiet app for one-shot commands.
func openApp(logOut io.Writer) (*app, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	return newApp(cfg, logOut, true)
}
