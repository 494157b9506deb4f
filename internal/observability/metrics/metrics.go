package metrics

import (
	"database/sql"
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"energy-audit/internal/observability/logging"
)

const (
	metricPrefix = "energy_audit_"

	resultSuccess  = "success"
	resultError    = "error"
	resultInvalid  = "invalid"
	resultDenied   = "denied"
	resultNotFound = "not_found"
)

var (
	registerOnce sync.Once

	recordUpsertTotal   *prometheus.CounterVec
	recordUpsertLatency *prometheus.HistogramVec

	dashboardBuildTotal   *prometheus.CounterVec
	dashboardBuildLatency *prometheus.HistogramVec

	reportExportTotal   *prometheus.CounterVec
	reportExportLatency *prometheus.HistogramVec

	permissionDeniedTotal *prometheus.CounterVec

	httpRequestsTotal *prometheus.CounterVec
)

// Init registers service metrics and DB-backed gauges.
func Init(db *sql.DB, logger *logging.Logger) {
	registerOnce.Do(func() {
		recordUpsertTotal = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "record_upsert_total",
				Help: "Total energy record upserts by fuel and result",
			},
			[]string{"fuel", "result"},
		)
		recordUpsertLatency = prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    metricPrefix + "record_upsert_latency_seconds",
				Help:    "Energy record upsert latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"fuel"},
		)

		dashboardBuildTotal = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "dashboard_build_total",
				Help: "Total dashboard builds by dashboard and result",
			},
			[]string{"dashboard", "result"},
		)
		dashboardBuildLatency = prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    metricPrefix + "dashboard_build_latency_seconds",
				Help:    "Dashboard build latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"dashboard"},
		)

		reportExportTotal = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "report_export_total",
				Help: "Total report exports by format and result",
			},
			[]string{"format", "result"},
		)
		reportExportLatency = prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    metricPrefix + "report_export_latency_seconds",
				Help:    "Report export latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"format"},
		)

		permissionDeniedTotal = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "permission_denied_total",
				Help: "Total rejected operations by action",
			},
			[]string{"action"},
		)

		httpRequestsTotal = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "http_requests_total",
				Help: "Total HTTP requests by method and status code",
			},
			[]string{"method", "code"},
		)

		prometheus.MustRegister(
			recordUpsertTotal,
			recordUpsertLatency,
			dashboardBuildTotal,
			dashboardBuildLatency,
			reportExportTotal,
			reportExportLatency,
			permissionDeniedTotal,
			httpRequestsTotal,
		)

		if db != nil {
			registerDBMetrics(db, logger)
		}
	})
}

// Handler exposes the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}

// ObserveRecordUpsert records an energy record write.
func ObserveRecordUpsert(fuel, result string, duration time.Duration) {
	if fuel == "" {
		fuel = "unknown"
	}
	if result == "" {
		result = resultSuccess
	}
	if recordUpsertTotal != nil {
		recordUpsertTotal.WithLabelValues(fuel, result).Inc()
	}
	if recordUpsertLatency != nil {
		recordUpsertLatency.WithLabelValues(fuel).Observe(duration.Seconds())
	}
}

// ObserveDashboard records a dashboard build.
func ObserveDashboard(dashboard, result string, duration time.Duration) {
	if dashboard == "" {
		dashboard = "unknown"
	}
	if result == "" {
		result = resultSuccess
	}
	if dashboardBuildTotal != nil {
		dashboardBuildTotal.WithLabelValues(dashboard, result).Inc()
	}
	if dashboardBuildLatency != nil {
		dashboardBuildLatency.WithLabelValues(dashboard).Observe(duration.Seconds())
	}
}

// ObserveReportExport records a rendered export.
func ObserveReportExport(format, result string, duration time.Duration) {
	if format == "" {
		format = "unknown"
	}
	if result == "" {
		result = resultSuccess
	}
	if reportExportTotal != nil {
		reportExportTotal.WithLabelValues(format, result).Inc()
	}
	if reportExportLatency != nil {
		reportExportLatency.WithLabelValues(format).Observe(duration.Seconds())
	}
}

// IncPermissionDenied counts a rejected operation.
func IncPermissionDenied(action string) {
	if action == "" {
		action = "unknown"
	}
	if permissionDeniedTotal != nil {
		permissionDeniedTotal.WithLabelValues(action).Inc()
	}
}

// IncHTTPRequest counts a served request.
func IncHTTPRequest(method, code string) {
	if httpRequestsTotal != nil {
		httpRequestsTotal.WithLabelValues(method, code).Inc()
	}
}

// Exported constants for callers.
const (
	ResultSuccess  = resultSuccess
	ResultError    = resultError
	ResultInvalid  = resultInvalid
	ResultDenied   = resultDenied
	ResultNotFound = resultNotFound
)
