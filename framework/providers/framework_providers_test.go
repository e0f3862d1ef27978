package providers_test

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/km-arc/go-fold/framework/config"
	"github.com/km-arc/go-fold/framework/container"
	"github.com/km-arc/go-fold/framework/loader"
	"github.com/km-arc/go-fold/framework/metrics"
	"github.com/km-arc/go-fold/framework/providers"
	"github.com/km-arc/go-fold/framework/routing"
)

// ── helpers ──────────────────────────────────────────────────────────────────

func testConfig() *config.Config {
	return &config.Config{
		App:         config.AppConfig{Name: "Fold", Env: "testing"},
		Log:         config.LogConfig{Level: "debug", Format: "json"},
		Diagnostics: config.DiagnosticsConfig{Port: "0", Metrics: true},
	}
}

func boot(t *testing.T, cfg *config.Config, out *bytes.Buffer) (*container.Container, *container.ProviderRegistry) {
	t.Helper()
	app := container.New()
	registry := container.NewProviderRegistry(app)

	for _, p := range []container.ServiceProvider{
		&providers.ConfigServiceProvider{Config: cfg},
		&providers.LoggingServiceProvider{Output: out},
		&providers.MetricsServiceProvider{},
		&providers.RoutingServiceProvider{},
		&providers.LoaderServiceProvider{},
		&providers.DiagnosticsServiceProvider{},
	} {
		require.NoError(t, registry.Register(p))
	}
	require.NoError(t, registry.Boot())
	return app, registry
}

// ── Config ───────────────────────────────────────────────────────────────────

func TestConfigServiceProvider_Instance(t *testing.T) {
	cfg := testConfig()
	app, _ := boot(t, cfg, &bytes.Buffer{})

	got, err := container.Resolve[*config.Config](app, "Config")

	require.NoError(t, err)
	assert.Same(t, cfg, got)
}

func TestConfigServiceProvider_LoadsEnvFiles(t *testing.T) {
	t.Setenv("APP_NAME", "FromEnv")
	app := container.New()
	p := &providers.ConfigServiceProvider{EnvFiles: []string{t.TempDir() + "/missing.env"}}
	require.NoError(t, p.Register(app))

	cfg, err := container.Resolve[*config.Config](app, providers.ConfigNamespace)

	require.NoError(t, err)
	assert.Equal(t, "FromEnv", cfg.App.Name)
}

// ── Logger ───────────────────────────────────────────────────────────────────

func TestLoggingServiceProvider_BuildsFromConfig(t *testing.T) {
	var out bytes.Buffer
	app, _ := boot(t, testConfig(), &out)

	logger, err := container.Resolve[zerolog.Logger](app, "Logger")
	require.NoError(t, err)
	logger.Debug().Msg("hello")

	assert.Contains(t, out.String(), `"app":"Fold"`)
	assert.Contains(t, out.String(), `"message":"hello"`)
}

func TestLoggingServiceProvider_PresetLogger(t *testing.T) {
	var out bytes.Buffer
	preset := zerolog.New(&out).With().Str("preset", "yes").Logger()
	app := container.New()
	require.NoError(t, (&providers.LoggingServiceProvider{Logger: &preset}).Register(app))

	logger, err := container.Resolve[zerolog.Logger](app, providers.LoggerNamespace)
	require.NoError(t, err)
	logger.Info().Msg("x")

	assert.Contains(t, out.String(), `"preset":"yes"`)
}

// ── Metrics / Router / Loader ────────────────────────────────────────────────

func TestMetricsServiceProvider_UsesPreset(t *testing.T) {
	m := metrics.New()
	app := container.New()
	require.NoError(t, (&providers.MetricsServiceProvider{Collector: m}).Register(app))

	got, err := container.Resolve[*metrics.Collector](app, "Metrics")

	require.NoError(t, err)
	assert.Same(t, m, got)
}

func TestRoutingServiceProvider_Singleton(t *testing.T) {
	app, _ := boot(t, testConfig(), &bytes.Buffer{})

	first, err := container.Resolve[*routing.Router](app, "Router")
	require.NoError(t, err)
	second, err := container.Resolve[*routing.Router](app, providers.RouterNamespace)
	require.NoError(t, err)

	assert.Same(t, first, second)
}

func TestLoaderServiceProvider_Deferred(t *testing.T) {
	app, registry := boot(t, testConfig(), &bytes.Buffer{})

	assert.Len(t, registry.Providers(), 5)
	assert.Equal(t, container.ProviderInfo{}, app.GetProviders()[providers.LoaderNamespace])

	l, err := container.Resolve[*loader.Cache](app, providers.LoaderNamespace)
	require.NoError(t, err)
	assert.NotNil(t, l)
	assert.True(t, app.GetProviders()[providers.LoaderNamespace].Singleton)
}

// ── Diagnostics ──────────────────────────────────────────────────────────────

func TestDiagnosticsServiceProvider_MountsRoutes(t *testing.T) {
	app, _ := boot(t, testConfig(), &bytes.Buffer{})
	router, err := container.Resolve[*routing.Router](app, "Router")
	require.NoError(t, err)

	for _, path := range []string{"/container/providers", "/container/aliases", "/container/namespaces/Config", "/metrics"} {
		t.Run(path, func(t *testing.T) {
			rr := httptest.NewRecorder()
			router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, path, nil))
			assert.Equal(t, http.StatusOK, rr.Code)
		})
	}
}

func TestDiagnosticsServiceProvider_MetricsDisabled(t *testing.T) {
	cfg := testConfig()
	cfg.Diagnostics.Metrics = false
	app, _ := boot(t, cfg, &bytes.Buffer{})
	router, err := container.Resolve[*routing.Router](app, "Router")
	require.NoError(t, err)

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusNotFound, rr.Code)
}
