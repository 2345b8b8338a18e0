// Package metrics 构建任务的 prometheus 指标
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	runsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "round_features",
			Subsystem: "build",
			Name:      "runs_total",
			Help:      "Feature table builds by season and final status",
		},
		[]string{"season", "status"},
	)

	runDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "round_features",
			Subsystem: "build",
			Name:      "duration_seconds",
			Help:      "Wall time of a feature table build",
			Buckets:   prometheus.ExponentialBuckets(0.05, 2, 12),
		},
		[]string{"season"},
	)

	outputRows = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "round_features",
			Subsystem: "build",
			Name:      "output_rows",
			Help:      "Rows written by the last successful build",
		},
		[]string{"season", "table"},
	)

	diagnostics = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "round_features",
			Subsystem: "build",
			Name:      "diagnostics",
			Help:      "Recoverable data issues counted by the last build",
		},
		[]string{"season", "kind"},
	)
)

// ObserveRun 记录一次构建的结果与耗时
func ObserveRun(season, status string, elapsed time.Duration) {
	runsTotal.WithLabelValues(season, status).Inc()
	runDuration.WithLabelValues(season).Observe(elapsed.Seconds())
}

// SetOutputRows 记录写出的行数
func SetOutputRows(season, table string, rows int) {
	outputRows.WithLabelValues(season, table).Set(float64(rows))
}

// SetDiagnostics 以 kind 为标签上报诊断计数
func SetDiagnostics(season string, counters map[string]int) {
	for kind, n := range counters {
		diagnostics.WithLabelValues(season, kind).Set(float64(n))
	}
}
