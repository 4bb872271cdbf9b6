package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Registry owns a private prometheus registry and the server's collectors.
// A nil *Registry is valid and records nothing.
type Registry struct {
	reg *prometheus.Registry

	capabilityInvocations *prometheus.CounterVec
	capabilityDuration    *prometheus.HistogramVec
	upstreamRequests      *prometheus.CounterVec
	upstreamDuration      *prometheus.HistogramVec
	searchFallbacks       prometheus.Counter
}

func NewRegistry() *Registry {
	r := prometheus.NewRegistry()
	r.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	f := promauto.With(r)

	return &Registry{
		reg: r,
		capabilityInvocations: f.NewCounterVec(prometheus.CounterOpts{
			Name: "offmcp_capability_invocations_total",
			Help: "Capability invocations by capability and outcome",
		}, []string{"capability", "outcome"}),
		capabilityDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "offmcp_capability_duration_seconds",
			Help:    "Capability latency including upstream calls",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10, 30},
		}, []string{"capability"}),
		upstreamRequests: f.NewCounterVec(prometheus.CounterOpts{
			Name: "offmcp_upstream_requests_total",
			Help: "Outbound requests by upstream service and outcome",
		}, []string{"service", "outcome"}),
		upstreamDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "offmcp_upstream_duration_seconds",
			Help:    "Outbound request latency by upstream service",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10, 30},
		}, []string{"service"}),
		searchFallbacks: f.NewCounter(prometheus.CounterOpts{
			Name: "offmcp_search_fallbacks_total",
			Help: "Advanced searches served by the legacy search fallback",
		}),
	}
}

// RecordCapability counts one capability invocation.
func (r *Registry) RecordCapability(capability, outcome string, elapsed time.Duration) {
	if r == nil {
		return
	}
	r.capabilityInvocations.WithLabelValues(capability, outcome).Inc()
	r.capabilityDuration.WithLabelValues(capability).Observe(elapsed.Seconds())
}

// RecordUpstream counts one outbound request.
func (r *Registry) RecordUpstream(service, outcome string, elapsed time.Duration) {
	if r == nil {
		return
	}
	r.upstreamRequests.WithLabelValues(service, outcome).Inc()
	r.upstreamDuration.WithLabelValues(service).Observe(elapsed.Seconds())
}

// RecordSearchFallback counts one advanced-search degradation.
func (r *Registry) RecordSearchFallback() {
	if r == nil {
		return
	}
	r.searchFallbacks.Inc()
}

func (r *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(r.reg, promhttp.HandlerOpts{Registry: r.reg})
}
