package http

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
)

// Request wraps *http.Request with small helpers for diagnostics handlers.
type Request struct {
	raw *http.Request
}

// NewRequest wraps a standard *http.Request.
func NewRequest(r *http.Request) *Request {
	return &Request{raw: r}
}

// Query returns a query-string value.
func (req *Request) Query(key string, fallback ...string) string {
	v := req.raw.URL.Query().Get(key)
	if v == "" && len(fallback) > 0 {
		return fallback[0]
	}
	return v
}

// RouteParam returns a URL route parameter (chi). Use "*" for a wildcard tail.
func (req *Request) RouteParam(key string) string {
	return chi.URLParam(req.raw, key)
}

// Header returns a request header value.
func (req *Request) Header(key string) string {
	return req.raw.Header.Get(key)
}

// WantsYAML reports whether the client asked for YAML, via ?format=yaml or
// an Accept header naming yaml.
func (req *Request) WantsYAML() bool {
	if f := strings.ToLower(req.Query("format")); f != "" {
		return f == "yaml" || f == "yml"
	}
	accept := strings.ToLower(req.Header("Accept"))
	return strings.Contains(accept, "yaml")
}
