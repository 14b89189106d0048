package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"resumeKit/internal/export"
)

var (
	exportsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "resumekit",
			Subsystem: "export",
			Name:      "exports_total",
			Help:      "导出次数，按格式与结果分类。",
		},
		[]string{"format", "outcome"},
	)

	exportDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "resumekit",
			Subsystem: "export",
			Name:      "duration_seconds",
			Help:      "导出耗时分布（秒）。",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
		},
		[]string{"format"},
	)
)

// ExportObserver 返回记录导出指标的 export.Observer。
// 未知格式统一记为 unknown，避免任意输入扩大标签基数。
func ExportObserver() export.Observer {
	return func(format export.Format, outcome string, elapsed time.Duration) {
		label := string(format)
		if !format.Valid() {
			label = "unknown"
		}
		exportsTotal.WithLabelValues(label, outcome).Inc()
		exportDuration.WithLabelValues(label).Observe(elapsed.Seconds())
	}
}
