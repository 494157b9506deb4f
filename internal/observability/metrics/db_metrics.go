package metrics

import (
	"database/sql"

	"github.com/prometheus/client_golang/prometheus"

	"energy-audit/internal/observability/logging"
)

func registerDBMetrics(db *sql.DB, logger *logging.Logger) {
	prometheus.MustRegister(prometheus.NewGaugeFunc(
		prometheus.GaugeOpts{
			Name: metricPrefix + "projects",
			Help: "Audit projects stored",
		},
		func() float64 {
			return queryCount(db, logger, "SELECT COUNT(*) FROM projects")
		},
	))

	prometheus.MustRegister(prometheus.NewGaugeFunc(
		prometheus.GaugeOpts{
			Name: metricPrefix + "energy_records",
			Help: "Energy records stored",
		},
		func() float64 {
			return queryCount(db, logger, "SELECT COUNT(*) FROM energy_records")
		},
	))

	prometheus.MustRegister(prometheus.NewGaugeFunc(
		prometheus.GaugeOpts{
			Name: metricPrefix + "active_organizations",
			Help: "Active organizations",
		},
		func() float64 {
			return queryCount(db, logger, "SELECT COUNT(*) FROM organizations WHERE active")
		},
	))
}

func queryCount(db *sql.DB, logger *logging.Logger, query string) float64 {
	if db == nil {
		return 0
	}
	var count int64
	if err := db.QueryRow(query).Scan(&count); err != nil {
		if logger != nil {
			logger.Warnw("metrics query failed", "error", err)
		}
		return 0
	}
	if count < 0 {
		return 0
	}
	return float64(count)
}
