// Package metrics exposes Prometheus collectors for the HTTP layer and the
// lead workflow.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all collectors. A nil *Metrics is valid and records nothing,
// so services can be constructed without it in tests.
type Metrics struct {
	registry *prometheus.Registry

	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	LeadsCreated        *prometheus.CounterVec
	FollowUpsRecorded   *prometheus.CounterVec
	TransitionsRejected *prometheus.CounterVec
	SideEffectFailures  *prometheus.CounterVec
	NotificationsSent   *prometheus.CounterVec
	PushDeliveries      *prometheus.CounterVec

	CacheHits   *prometheus.CounterVec
	CacheMisses *prometheus.CounterVec
}

// New registers every collector on a fresh registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	f := promauto.With(reg)

	return &Metrics{
		registry: reg,
		HTTPRequestsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		}, []string{"method", "path", "status"}),
		HTTPRequestDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latency in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "path"}),
		LeadsCreated: f.NewCounterVec(prometheus.CounterOpts{
			Name: "crm_leads_created_total",
			Help: "Leads created, by assignment mode",
		}, []string{"mode"}),
		FollowUpsRecorded: f.NewCounterVec(prometheus.CounterOpts{
			Name: "crm_follow_ups_recorded_total",
			Help: "Follow-up records appended, by action",
		}, []string{"action"}),
		TransitionsRejected: f.NewCounterVec(prometheus.CounterOpts{
			Name: "crm_transitions_rejected_total",
			Help: "Lead status changes refused by the lifecycle table",
		}, []string{"from", "action"}),
		SideEffectFailures: f.NewCounterVec(prometheus.CounterOpts{
			Name: "crm_side_effect_failures_total",
			Help: "Post-commit effects that failed (reminder, notification, push)",
		}, []string{"effect"}),
		NotificationsSent: f.NewCounterVec(prometheus.CounterOpts{
			Name: "crm_notifications_sent_total",
			Help: "In-app notifications persisted, by type",
		}, []string{"type"}),
		PushDeliveries: f.NewCounterVec(prometheus.CounterOpts{
			Name: "crm_push_deliveries_total",
			Help: "Device push attempts, by outcome",
		}, []string{"outcome"}),
		CacheHits: f.NewCounterVec(prometheus.CounterOpts{
			Name: "cache_hits_total",
			Help: "Total number of cache hits",
		}, []string{"cache"}),
		CacheMisses: f.NewCounterVec(prometheus.CounterOpts{
			Name: "cache_misses_total",
			Help: "Total number of cache misses",
		}, []string{"cache"}),
	}
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Middleware records request counts and latency keyed by route pattern.
func (m *Metrics) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		m.HTTPRequestsTotal.WithLabelValues(c.Request.Method, path, strconv.Itoa(c.Writer.Status())).Inc()
		m.HTTPRequestDuration.WithLabelValues(c.Request.Method, path).Observe(time.Since(start).Seconds())
	}
}

func (m *Metrics) RecordLeadCreated(mode string) {
	if m == nil {
		return
	}
	m.LeadsCreated.WithLabelValues(mode).Inc()
}

func (m *Metrics) RecordFollowUp(action string) {
	if m == nil {
		return
	}
	m.FollowUpsRecorded.WithLabelValues(action).Inc()
}

func (m *Metrics) RecordRejectedTransition(from, action string) {
	if m == nil {
		return
	}
	m.TransitionsRejected.WithLabelValues(from, action).Inc()
}

func (m *Metrics) RecordSideEffectFailure(effect string) {
	if m == nil {
		return
	}
	m.SideEffectFailures.WithLabelValues(effect).Inc()
}

func (m *Metrics) RecordNotification(kind string) {
	if m == nil {
		return
	}
	m.NotificationsSent.WithLabelValues(kind).Inc()
}

func (m *Metrics) RecordPush(outcome string) {
	if m == nil {
		return
	}
	m.PushDeliveries.WithLabelValues(outcome).Inc()
}

func (m *Metrics) RecordCache(cache string, hit bool) {
	if m == nil {
		return
	}
	if hit {
		m.CacheHits.WithLabelValues(cache).Inc()
		return
	}
	m.CacheMisses.WithLabelValues(cache).Inc()
}
