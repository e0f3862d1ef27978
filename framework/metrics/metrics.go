// Package metrics provides Prometheus instrumentation for container
// resolution: which precedence rule served each lookup, how often managers
// were extended and how many singletons were built.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Result label values.
const (
	ResultOK    = "ok"
	ResultError = "error"
)

// Collector owns a private registry so several containers (and tests) can
// be instrumented side by side.
type Collector struct {
	registry *prometheus.Registry

	resolutions     *prometheus.CounterVec
	extensions      *prometheus.CounterVec
	singletonBuilds *prometheus.CounterVec
	constructions   *prometheus.CounterVec
}

// New creates a Collector and registers its metrics.
func New() *Collector {
	c := &Collector{
		registry: prometheus.NewRegistry(),
		resolutions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "fold_resolutions_total",
				Help: "Total number of namespace resolutions by precedence source",
			},
			[]string{"source", "result"},
		),
		extensions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "fold_extensions_applied_total",
				Help: "Total number of extender definitions applied to managers",
			},
			[]string{"namespace", "result"},
		),
		singletonBuilds: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "fold_singleton_builds_total",
				Help: "Total number of singleton factory invocations",
			},
			[]string{"namespace", "result"},
		),
		constructions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "fold_constructions_total",
				Help: "Total number of constructor injections performed by Make",
			},
			[]string{"result"},
		),
	}
	c.registry.MustRegister(
		c.resolutions,
		c.extensions,
		c.singletonBuilds,
		c.constructions,
	)
	return c
}

// RecordResolution counts one Use call served by source.
func (c *Collector) RecordResolution(source string, err error) {
	c.resolutions.WithLabelValues(source, result(err)).Inc()
}

// RecordExtension counts one extender applied to the manager of namespace.
func (c *Collector) RecordExtension(namespace string, err error) {
	c.extensions.WithLabelValues(namespace, result(err)).Inc()
}

// RecordSingletonBuild counts one singleton factory run.
func (c *Collector) RecordSingletonBuild(namespace string, err error) {
	c.singletonBuilds.WithLabelValues(namespace, result(err)).Inc()
}

// RecordConstruction counts one Make call that reached the constructor.
func (c *Collector) RecordConstruction(err error) {
	c.constructions.WithLabelValues(result(err)).Inc()
}

// Registry exposes the underlying registry, mostly for tests.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// Handler serves the collector's metrics in the Prometheus text format.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}

func result(err error) string {
	if err != nil {
		return ResultError
	}
	return ResultOK
}
