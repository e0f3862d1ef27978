package app

import (
	"context"
	"errors"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/km-arc/go-fold/framework/config"
	"github.com/km-arc/go-fold/framework/container"
	"github.com/km-arc/go-fold/framework/logging"
	"github.com/km-arc/go-fold/framework/metrics"
	"github.com/km-arc/go-fold/framework/providers"
	"github.com/km-arc/go-fold/framework/routing"
)

const shutdownTimeout = 5 * time.Second

// Application is the top-level application container.
// It embeds the Container and ProviderRegistry so user code can call
// app.Bind(), app.Singleton(), app.Register() directly.
type Application struct {
	*container.Container
	Providers *container.ProviderRegistry

	config *config.Config
	log    zerolog.Logger
}

// NewWithConfig validates cfg and bootstraps the application from it. The
// container gets the logger and metrics collector, the autoload rule from
// cfg.Container, and the framework providers.
func NewWithConfig(cfg *config.Config, logOutput io.Writer) (*Application, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	logger := logging.New(cfg.Log, cfg.App.Name, logOutput)
	collector := metrics.New()

	c := container.New(
		container.WithLogger(logger),
		container.WithMetrics(collector),
	)
	if cfg.Container.AutoloadNamespace != "" {
		c.Autoload(cfg.Container.AutoloadNamespace, cfg.Container.AutoloadDir)
	}

	app := &Application{
		Container: c,
		Providers: container.NewProviderRegistry(c),
		config:    cfg,
		log:       logger,
	}

	core := []container.ServiceProvider{
		&providers.ConfigServiceProvider{Config: cfg},
		&providers.LoggingServiceProvider{Logger: &logger},
		&providers.MetricsServiceProvider{Collector: collector},
		&providers.RoutingServiceProvider{},
		&providers.LoaderServiceProvider{},
		&providers.DiagnosticsServiceProvider{},
	}
	for _, p := range core {
		if err := app.Register(p); err != nil {
			return nil, err
		}
	}
	return app, nil
}

// Register adds a ServiceProvider to the application.
func (a *Application) Register(provider container.ServiceProvider) error {
	return a.Providers.Register(provider)
}

// Boot runs the Boot() phase on all providers.
func (a *Application) Boot() error {
	return a.Providers.Boot()
}

// Config returns the configuration the application was built from.
func (a *Application) Config() *config.Config { return a.config }

// Logger returns the application logger.
func (a *Application) Logger() zerolog.Logger { return a.log }

// Router resolves *routing.Router from the container.
func (a *Application) Router() (*routing.Router, error) {
	return container.Resolve[*routing.Router](a.Container, providers.RouterNamespace)
}

// Serve boots the application (if needed) and serves the diagnostics router
// on DIAGNOSTICS_PORT until ctx is cancelled, then shuts down gracefully.
func (a *Application) Serve(ctx context.Context) error {
	ln, err := net.Listen("tcp", ":"+a.config.Diagnostics.Port)
	if err != nil {
		return err
	}
	return a.ServeListener(ctx, ln)
}

// ServeListener is Serve on an existing listener.
func (a *Application) ServeListener(ctx context.Context, ln net.Listener) error {
	if !a.Providers.Booted() {
		if err := a.Boot(); err != nil {
			return err
		}
	}
	router, err := a.Router()
	if err != nil {
		return err
	}

	srv := &http.Server{
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		a.log.Info().
			Str("addr", ln.Addr().String()).
			Str("env", a.config.App.Env).
			Msg("diagnostics server listening")
		errCh <- srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	a.log.Info().Msg("shutting down")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Environment returns the APP_ENV value.
func (a *Application) Environment() string { return a.config.App.Env }

// IsDebug reports APP_DEBUG.
func (a *Application) IsDebug() bool { return a.config.App.Debug }
