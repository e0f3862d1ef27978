package diagnostics_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/km-arc/go-fold/framework/container"
	"github.com/km-arc/go-fold/framework/diagnostics"
	"github.com/km-arc/go-fold/framework/loader"
	"github.com/km-arc/go-fold/framework/metrics"
	"github.com/km-arc/go-fold/framework/routing"
)

// ── helpers ──────────────────────────────────────────────────────────────────

type driverManager struct{}

func (driverManager) Extend(string, any) error { return nil }

func value(v any) container.Factory {
	return func(*container.Container) (any, error) { return v, nil }
}

func setup(t *testing.T, m *metrics.Collector) (*container.Container, http.Handler) {
	t.Helper()
	app := container.New(container.WithLoader(loader.Map{}), container.WithMetrics(m))

	require.NoError(t, app.Singleton("Cache", value("cache")))
	require.NoError(t, app.Bind("Mail", value("mail")))
	require.NoError(t, app.Manager("Cache", driverManager{}))
	require.NoError(t, app.Extend("Cache", "redis", value("redis")))
	app.Alias("Store", "Cache")

	r := routing.New(zerolog.Nop())
	diagnostics.New(app, m).Routes(r)
	return app, r
}

func get(t *testing.T, h http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, path, nil))
	return rr
}

func decode[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &out))
	return out
}

// ── endpoints ────────────────────────────────────────────────────────────────

func TestProviders(t *testing.T) {
	app, h := setup(t, nil)
	_, err := app.Use("Cache")
	require.NoError(t, err)

	rr := get(t, h, "/container/providers")

	require.Equal(t, http.StatusOK, rr.Code)
	got := decode[map[string]container.ProviderInfo](t, rr)
	assert.Equal(t, container.ProviderInfo{Singleton: true, Resolved: true}, got["Cache"])
	assert.Equal(t, container.ProviderInfo{}, got["Mail"])
}

func TestManagersAndExtenders(t *testing.T) {
	_, h := setup(t, nil)

	managers := decode[map[string]string](t, get(t, h, "/container/managers"))
	assert.Equal(t, "diagnostics_test.driverManager", managers["Cache"])

	extenders := decode[map[string][]container.ExtenderInfo](t, get(t, h, "/container/extenders"))
	assert.Equal(t, []container.ExtenderInfo{{Key: "redis"}}, extenders["Cache"])
}

func TestAliases(t *testing.T) {
	_, h := setup(t, nil)

	assert.Equal(t, map[string]string{"Store": "Cache"}, decode[map[string]string](t, get(t, h, "/container/aliases")))
}

func TestAutoload(t *testing.T) {
	app, h := setup(t, nil)

	assert.Equal(t, http.StatusNotFound, get(t, h, "/container/autoload").Code)

	app.Autoload("App/", "/srv/app")
	rr := get(t, h, "/container/autoload")

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, container.AutoloadInfo{Namespace: "App/", Directory: "/srv/app"}, decode[container.AutoloadInfo](t, rr))
}

func TestNamespace(t *testing.T) {
	app, h := setup(t, nil)
	app.Autoload("App/", "/srv/app")

	tests := []struct {
		path   string
		status int
		want   diagnostics.NamespaceInfo
	}{
		{"/container/namespaces/Cache", http.StatusOK, diagnostics.NamespaceInfo{Namespace: "Cache", Source: container.SourceBinding, Bound: true, Managed: true}},
		{"/container/namespaces/Store", http.StatusOK, diagnostics.NamespaceInfo{Namespace: "Store", Source: container.SourceAlias, Alias: "Cache"}},
		{"/container/namespaces/App/Services/Mailer", http.StatusOK, diagnostics.NamespaceInfo{Namespace: "App/Services/Mailer", Source: container.SourceAutoload}},
		{"/container/namespaces/Nope", http.StatusNotFound, diagnostics.NamespaceInfo{}},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			rr := get(t, h, tt.path)
			require.Equal(t, tt.status, rr.Code)
			if tt.status == http.StatusOK {
				assert.Equal(t, tt.want, decode[diagnostics.NamespaceInfo](t, rr))
			}
		})
	}
}

func TestContainerViewsAreNotCached(t *testing.T) {
	_, h := setup(t, nil)

	rr := get(t, h, "/container/providers")

	assert.Contains(t, rr.Header().Get("Cache-Control"), "no-cache")
}

func TestYAMLFormat(t *testing.T) {
	_, h := setup(t, nil)

	rr := get(t, h, "/container/aliases?format=yaml")

	assert.Equal(t, "application/yaml", rr.Header().Get("Content-Type"))
	var got map[string]string
	require.NoError(t, yaml.Unmarshal(rr.Body.Bytes(), &got))
	assert.Equal(t, "Cache", got["Store"])
}

func TestMetrics(t *testing.T) {
	_, bare := setup(t, nil)
	assert.Equal(t, http.StatusNotFound, get(t, bare, "/metrics").Code)

	m := metrics.New()
	app, h := setup(t, m)
	_, err := app.Use("Mail")
	require.NoError(t, err)

	rr := get(t, h, "/metrics")

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `fold_resolutions_total{result="ok",source="binding"} 1`)
}
