package providers

import (
	"io"
	"os"

	"github.com/rs/zerolog"

	"github.com/km-arc/go-fold/framework/config"
	"github.com/km-arc/go-fold/framework/container"
	"github.com/km-arc/go-fold/framework/diagnostics"
	"github.com/km-arc/go-fold/framework/loader"
	"github.com/km-arc/go-fold/framework/logging"
	"github.com/km-arc/go-fold/framework/metrics"
	"github.com/km-arc/go-fold/framework/routing"
)

// Framework namespaces. Each also gets a short alias (Config, Logger, ...).
const (
	ConfigNamespace  = "Framework/Config"
	LoggerNamespace  = "Framework/Logger"
	MetricsNamespace = "Framework/Metrics"
	RouterNamespace  = "Framework/Router"
	LoaderNamespace  = "Framework/Loader"
)

// ── ConfigServiceProvider ─────────────────────────────────────────────────────

// ConfigServiceProvider binds the application configuration.
//
// Bound namespaces:
//   - "Framework/Config" → *config.Config   (alias "Config")
//
// A preloaded Config is bound as an instance; otherwise it is loaded from
// EnvFiles on first use.
type ConfigServiceProvider struct {
	container.BaseProvider
	Config   *config.Config
	EnvFiles []string
}

func (p *ConfigServiceProvider) Register(app *container.Container) error {
	if p.Config != nil {
		app.Instance(ConfigNamespace, p.Config)
	} else {
		envFiles := p.EnvFiles
		err := app.Singleton(ConfigNamespace, func(c *container.Container) (any, error) {
			return config.Load(envFiles...), nil
		})
		if err != nil {
			return err
		}
	}
	app.Alias("Config", ConfigNamespace)
	return nil
}

// ── LoggingServiceProvider ────────────────────────────────────────────────────

// LoggingServiceProvider binds the zerolog logger.
//
// Bound namespaces:
//   - "Framework/Logger" → zerolog.Logger   (alias "Logger")
//
// Without a preset Logger it builds one from the bound config, writing to
// Output (default os.Stderr).
type LoggingServiceProvider struct {
	container.BaseProvider
	Logger *zerolog.Logger
	Output io.Writer
}

func (p *LoggingServiceProvider) Register(app *container.Container) error {
	if p.Logger != nil {
		app.Instance(LoggerNamespace, *p.Logger)
	} else {
		out := p.Output
		if out == nil {
			out = os.Stderr
		}
		err := app.Singleton(LoggerNamespace, func(c *container.Container) (any, error) {
			cfg, err := container.Resolve[*config.Config](c, ConfigNamespace)
			if err != nil {
				return nil, err
			}
			return logging.New(cfg.Log, cfg.App.Name, out), nil
		})
		if err != nil {
			return err
		}
	}
	app.Alias("Logger", LoggerNamespace)
	return nil
}

// ── MetricsServiceProvider ────────────────────────────────────────────────────

// MetricsServiceProvider binds the Prometheus collector.
//
// Bound namespaces:
//   - "Framework/Metrics" → *metrics.Collector   (alias "Metrics")
type MetricsServiceProvider struct {
	container.BaseProvider
	Collector *metrics.Collector
}

func (p *MetricsServiceProvider) Register(app *container.Container) error {
	collector := p.Collector
	if collector == nil {
		collector = metrics.New()
	}
	app.Instance(MetricsNamespace, collector)
	app.Alias("Metrics", MetricsNamespace)
	return nil
}

// ── RoutingServiceProvider ────────────────────────────────────────────────────

// RoutingServiceProvider registers the HTTP router.
//
// Bound namespaces:
//   - "Framework/Router" → *routing.Router   (alias "Router")
type RoutingServiceProvider struct {
	container.BaseProvider
}

func (p *RoutingServiceProvider) Register(app *container.Container) error {
	err := app.Singleton(RouterNamespace, func(c *container.Container) (any, error) {
		logger, err := container.Resolve[zerolog.Logger](c, LoggerNamespace)
		if err != nil {
			return nil, err
		}
		return routing.New(logger), nil
	})
	if err != nil {
		return err
	}
	app.Alias("Router", RouterNamespace)
	return nil
}

// ── LoaderServiceProvider ─────────────────────────────────────────────────────

// LoaderServiceProvider binds a cached module loader for application code
// that reads module files directly. It is deferred: nothing is built until
// "Framework/Loader" is first resolved.
//
// Bound namespaces:
//   - "Framework/Loader" → *loader.Cache
type LoaderServiceProvider struct {
	container.BaseProvider
}

func (p *LoaderServiceProvider) Register(app *container.Container) error {
	return app.Singleton(LoaderNamespace, func(c *container.Container) (any, error) {
		return loader.NewCache(loader.NewFileLoader()), nil
	})
}

func (p *LoaderServiceProvider) Provides() []string { return []string{LoaderNamespace} }
func (p *LoaderServiceProvider) IsDeferred() bool   { return true }

// ── DiagnosticsServiceProvider ────────────────────────────────────────────────

// DiagnosticsServiceProvider mounts the container diagnostics endpoints on
// the router at boot. /metrics is mounted when the config enables it.
type DiagnosticsServiceProvider struct {
	container.BaseProvider
}

func (p *DiagnosticsServiceProvider) Register(_ *container.Container) error { return nil }

func (p *DiagnosticsServiceProvider) Boot(app *container.Container) error {
	cfg, err := container.Resolve[*config.Config](app, ConfigNamespace)
	if err != nil {
		return err
	}
	router, err := container.Resolve[*routing.Router](app, RouterNamespace)
	if err != nil {
		return err
	}

	var collector *metrics.Collector
	if cfg.Diagnostics.Metrics {
		if collector, err = container.Resolve[*metrics.Collector](app, MetricsNamespace); err != nil {
			return err
		}
	}
	diagnostics.New(app, collector).Routes(router)
	return nil
}
