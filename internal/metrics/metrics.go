// Package metrics holds the Prometheus collectors of the sales service.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Registry owns a private Prometheus registry and the collectors registered on it.
type Registry struct {
	reg             *prometheus.Registry
	Requests        *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
	StorageErrors   *prometheus.CounterVec
}

// NewRegistry creates a Registry with every collector registered.
func NewRegistry() *Registry {
	r := prometheus.NewRegistry()
	requests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "sales_http_requests_total",
		Help: "HTTP requests by method, route and status.",
	}, []string{"method", "route", "status"})
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "sales_http_request_duration_seconds",
		Help:    "HTTP request latency by method and route.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route"})
	storageErrors := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "sales_storage_errors_total",
		Help: "Failed storage operations by kind (connection or storage).",
	}, []string{"kind"})

	r.MustRegister(requests, duration, storageErrors)
	return &Registry{
		reg:             r,
		Requests:        requests,
		RequestDuration: duration,
		StorageErrors:   storageErrors,
	}
}

// Handler serves the registry in the Prometheus exposition format.
func (r *Registry) Handler() http.Handler { return promhttp.HandlerFor(r.reg, promhttp.HandlerOpts{}) }
