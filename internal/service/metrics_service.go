package service

import (
	"fmt"
	"net/http"
	"runtime"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsService encapsulates Prometheus instrumentation for the catalog API.
type MetricsService struct {
	registry        *prometheus.Registry
	handler         http.Handler
	requestDuration *prometheus.HistogramVec
	requestTotal    *prometheus.CounterVec
	catalogLoads    *prometheus.CounterVec
	catalogClasses  prometheus.Gauge
	catalogUsers    prometheus.Gauge
	catalogRejected prometheus.Gauge
	toggles         *prometheus.CounterVec
	storeErrors     *prometheus.CounterVec
	exportJobs      *prometheus.CounterVec
	transitions     *prometheus.CounterVec
	degraded        *prometheus.CounterVec

	requestCount         uint64
	requestDurationTotal uint64
}

// MetricsSnapshot is a lightweight aggregate exposed on the health endpoint.
type MetricsSnapshot struct {
	RequestsTotal            uint64    `json:"requests_total"`
	AverageRequestDurationMs float64   `json:"average_request_duration_ms"`
	Goroutines               int       `json:"goroutines"`
	GeneratedAt              time.Time `json:"generated_at"`
}

// NewMetricsService registers core Prometheus collectors.
func NewMetricsService() *MetricsService {
	registry := prometheus.NewRegistry()

	requestDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "Duration of HTTP requests in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	requestTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})

	catalogLoads := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "catalog_loads_total",
		Help: "Catalog load attempts by outcome",
	}, []string{"outcome"})

	catalogClasses := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "catalog_classes",
		Help: "Classes in the current catalog snapshot",
	})

	catalogUsers := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "catalog_users",
		Help: "Users in the current catalog snapshot",
	})

	catalogRejected := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "catalog_rejected_records",
		Help: "Fixture records rejected by the last load",
	})

	toggles := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "preference_toggles_total",
		Help: "Preference toggles by kind and resulting state",
	}, []string{"kind", "state"})

	storeErrors := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "preference_store_errors_total",
		Help: "Preference store failures absorbed by fail-soft handling",
	}, []string{"op"})

	exportJobs := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "export_jobs_total",
		Help: "Export jobs by format and final status",
	}, []string{"format", "status"})

	transitions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "class_status_transitions_total",
		Help: "Applied class status transitions",
	}, []string{"from", "to"})

	degraded := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "catalog_degraded_responses_total",
		Help: "Responses served from a partially loaded catalog",
	}, []string{"path"})

	goroutines := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "goroutines_total",
		Help: "Total number of goroutines",
	}, func() float64 {
		return float64(runtime.NumGoroutine())
	})

	registry.MustRegister(requestDuration, requestTotal, catalogLoads, catalogClasses, catalogUsers, catalogRejected,
		toggles, storeErrors, exportJobs, transitions, degraded, goroutines)

	handler := promhttp.HandlerFor(registry, promhttp.HandlerOpts{})

	return &MetricsService{
		registry:        registry,
		handler:         handler,
		requestDuration: requestDuration,
		requestTotal:    requestTotal,
		catalogLoads:    catalogLoads,
		catalogClasses:  catalogClasses,
		catalogUsers:    catalogUsers,
		catalogRejected: catalogRejected,
		toggles:         toggles,
		storeErrors:     storeErrors,
		exportJobs:      exportJobs,
		transitions:     transitions,
		degraded:        degraded,
	}
}

// Handler exposes the Prometheus HTTP handler.
func (m *MetricsService) Handler() http.Handler {
	if m == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		})
	}
	return m.handler
}

// Registry exposes the underlying registry, mainly for tests.
func (m *MetricsService) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// ObserveHTTPRequest records request metrics and aggregates simple stats for snapshots.
func (m *MetricsService) ObserveHTTPRequest(method, path string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	labelStatus := fmt.Sprintf("%d", status)
	m.requestDuration.WithLabelValues(method, path, labelStatus).Observe(duration.Seconds())
	m.requestTotal.WithLabelValues(method, path, labelStatus).Inc()
	atomic.AddUint64(&m.requestCount, 1)
	atomic.AddUint64(&m.requestDurationTotal, uint64(duration.Nanoseconds()))
}

// RecordCatalogLoad tracks a catalog (re)load and the resulting snapshot size.
func (m *MetricsService) RecordCatalogLoad(classes, users, rejected int, failedDocuments int) {
	if m == nil {
		return
	}
	outcome := "ok"
	if failedDocuments > 0 {
		outcome = "partial"
	}
	m.catalogLoads.WithLabelValues(outcome).Inc()
	m.catalogClasses.Set(float64(classes))
	m.catalogUsers.Set(float64(users))
	m.catalogRejected.Set(float64(rejected))
}

// RecordCatalogSize updates the snapshot gauges after an in-memory mutation.
func (m *MetricsService) RecordCatalogSize(classes int) {
	if m == nil {
		return
	}
	m.catalogClasses.Set(float64(classes))
}

// RecordToggle counts a preference toggle.
func (m *MetricsService) RecordToggle(kind string, state bool) {
	if m == nil {
		return
	}
	label := "off"
	if state {
		label = "on"
	}
	m.toggles.WithLabelValues(kind, label).Inc()
}

// RecordStoreError counts an absorbed preference store failure.
func (m *MetricsService) RecordStoreError(op string) {
	if m == nil {
		return
	}
	m.storeErrors.WithLabelValues(op).Inc()
}

// RecordExportJob counts an export job reaching a final status.
func (m *MetricsService) RecordExportJob(format, status string) {
	if m == nil {
		return
	}
	m.exportJobs.WithLabelValues(format, status).Inc()
}

// RecordTransition counts an applied class status change.
func (m *MetricsService) RecordTransition(from, to string) {
	if m == nil {
		return
	}
	m.transitions.WithLabelValues(from, to).Inc()
}

// RecordDegradedResponse counts a response that carried catalog load errors.
func (m *MetricsService) RecordDegradedResponse(path string) {
	if m == nil {
		return
	}
	m.degraded.WithLabelValues(path).Inc()
}

// Snapshot returns aggregated request stats.
func (m *MetricsService) Snapshot() MetricsSnapshot {
	if m == nil {
		return MetricsSnapshot{}
	}
	requests := atomic.LoadUint64(&m.requestCount)
	reqDuration := atomic.LoadUint64(&m.requestDurationTotal)

	var avgRequestMs float64
	if requests > 0 {
		avgRequestMs = float64(reqDuration) / float64(requests) / float64(time.Millisecond)
	}

	return MetricsSnapshot{
		RequestsTotal:            requests,
		AverageRequestDurationMs: avgRequestMs,
		Goroutines:               runtime.NumGoroutine(),
		GeneratedAt:              time.Now().UTC(),
	}
}
