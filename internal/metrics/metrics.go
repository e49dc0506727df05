// Package metrics holds the Prometheus instruments of the lead portal.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics provides observability for lead intake, forwarding and reporting.
// All methods are safe on a nil receiver.
type Metrics struct {
	LeadsCreated        *prometheus.CounterVec
	IDAllocationRetries prometheus.Counter
	DuplicatesRejected  prometheus.Counter
	ForwardOutcomes     *prometheus.CounterVec
	ReportCache         *prometheus.CounterVec
	RequestDuration     *prometheus.HistogramVec

	gatherer prometheus.Gatherer
}

// New registers every instrument on reg. Pass prometheus.NewRegistry() in tests.
func New(reg *prometheus.Registry) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		LeadsCreated: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "leads_created_total",
			Help: "Total number of leads created by intake source",
		}, []string{"source"}), // source: "portal", "vendor_api"

		IDAllocationRetries: factory.NewCounter(prometheus.CounterOpts{
			Name: "lead_id_allocation_retries_total",
			Help: "Display id allocations retried after a collision",
		}),

		DuplicatesRejected: factory.NewCounter(prometheus.CounterOpts{
			Name: "lead_duplicates_rejected_total",
			Help: "Submissions rejected because an active lead holds the same identity",
		}),

		ForwardOutcomes: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "lead_forward_outcomes_total",
			Help: "Outbound client forwarding attempts by outcome",
		}, []string{"outcome"}),

		ReportCache: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "report_cache_lookups_total",
			Help: "Dashboard report cache lookups by result",
		}, []string{"result"}),

		RequestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latency by route and status",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		}, []string{"method", "route", "status"}),

		gatherer: reg,
	}
}

// IncrementLeadsCreated records a stored lead.
func (m *Metrics) IncrementLeadsCreated(source string) {
	if m != nil {
		m.LeadsCreated.WithLabelValues(source).Inc()
	}
}

// IncrementIDAllocationRetries records one retried display id allocation.
func (m *Metrics) IncrementIDAllocationRetries() {
	if m != nil {
		m.IDAllocationRetries.Inc()
	}
}

// IncrementDuplicatesRejected records a submission refused as a duplicate.
func (m *Metrics) IncrementDuplicatesRejected() {
	if m != nil {
		m.DuplicatesRejected.Inc()
	}
}

// IncrementForwardOutcome records a forwarding attempt ("success", "failure", "queued").
func (m *Metrics) IncrementForwardOutcome(outcome string) {
	if m != nil {
		m.ForwardOutcomes.WithLabelValues(outcome).Inc()
	}
}

// IncrementReportCache records a cache "hit" or "miss".
func (m *Metrics) IncrementReportCache(result string) {
	if m != nil {
		m.ReportCache.WithLabelValues(result).Inc()
	}
}

// ObserveRequest records the latency of one HTTP request.
func (m *Metrics) ObserveRequest(method, route string, status int, d time.Duration) {
	if m != nil {
		m.RequestDuration.WithLabelValues(method, route, strconv.Itoa(status)).Observe(d.Seconds())
	}
}

// Middleware observes every request by its matched route template.
func (m *Metrics) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		m.ObserveRequest(c.Request.Method, route, c.Writer.Status(), time.Since(start))
	}
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}
