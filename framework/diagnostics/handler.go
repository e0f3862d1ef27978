// Package diagnostics exposes the container's introspection API over HTTP.
//
//	GET /container/providers
//	GET /container/managers
//	GET /container/extenders
//	GET /container/aliases
//	GET /container/autoload
//	GET /container/namespaces/{namespace...}
//	GET /metrics
//
// Every container endpoint answers JSON, or YAML with ?format=yaml.
package diagnostics

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/km-arc/go-fold/framework/container"
	gohttp "github.com/km-arc/go-fold/framework/http"
	"github.com/km-arc/go-fold/framework/metrics"
	"github.com/km-arc/go-fold/framework/routing"
)

// Handler serves read-only views of a container.
type Handler struct {
	app     *container.Container
	metrics *metrics.Collector
}

// New returns a Handler for app. m may be nil, in which case /metrics is not
// mounted.
func New(app *container.Container, m *metrics.Collector) *Handler {
	return &Handler{app: app, metrics: m}
}

// NamespaceInfo is the answer for a single namespace.
type NamespaceInfo struct {
	Namespace string           `json:"namespace" yaml:"namespace"`
	Source    container.Source `json:"source" yaml:"source"`
	Bound     bool             `json:"bound" yaml:"bound"`
	Managed   bool             `json:"managed" yaml:"managed"`
	Alias     string           `json:"alias,omitempty" yaml:"alias,omitempty"`
}

// Routes mounts the diagnostics endpoints on r. Container views are
// served with no-cache headers since bindings change at runtime.
func (h *Handler) Routes(r *routing.Router) {
	r.Group(func(g *routing.Router) {
		g.Middleware(middleware.NoCache)
		g.Prefix("/container", func(c *routing.Router) {
			c.Get("/providers", h.providers)
			c.Get("/managers", h.managers)
			c.Get("/extenders", h.extenders)
			c.Get("/aliases", h.aliases)
			c.Get("/autoload", h.autoload)
			c.Get("/namespaces/*", h.namespace)
		})
	})
	if h.metrics != nil {
		r.Mount("/metrics", h.metrics.Handler())
	}
}

func (h *Handler) providers(w http.ResponseWriter, r *http.Request) {
	send(w, r, h.app.GetProviders())
}

// managers reports the concrete type of each manager.
func (h *Handler) managers(w http.ResponseWriter, r *http.Request) {
	out := map[string]string{}
	for ns, m := range h.app.GetManagers() {
		out[ns] = fmt.Sprintf("%T", m)
	}
	send(w, r, out)
}

func (h *Handler) extenders(w http.ResponseWriter, r *http.Request) {
	send(w, r, h.app.GetExtenders())
}

func (h *Handler) aliases(w http.ResponseWriter, r *http.Request) {
	send(w, r, h.app.GetAliases())
}

func (h *Handler) autoload(w http.ResponseWriter, r *http.Request) {
	rule, ok := h.app.GetAutoload()
	if !ok {
		gohttp.NewResponse(w).NotFound("No autoload rule registered.")
		return
	}
	send(w, r, rule)
}

func (h *Handler) namespace(w http.ResponseWriter, r *http.Request) {
	ns := gohttp.NewRequest(r).RouteParam("*")
	if ns == "" {
		gohttp.NewResponse(w).Error(http.StatusBadRequest, "Namespace is required.")
		return
	}

	info := NamespaceInfo{
		Namespace: ns,
		Source:    h.app.Explain(ns),
		Bound:     h.app.HasBinding(ns),
		Managed:   h.app.HasManager(ns),
	}
	if info.Source == container.SourceAlias {
		info.Alias = h.app.GetAliases()[ns]
	}
	if info.Source == container.SourceNone {
		gohttp.NewResponse(w).NotFound(fmt.Sprintf("Namespace [%s] is not resolvable.", ns))
		return
	}
	send(w, r, info)
}

func send(w http.ResponseWriter, r *http.Request, data any) {
	gohttp.NewResponse(w).Negotiate(gohttp.NewRequest(r), http.StatusOK, data)
}
