package metrics

import (
	"context"
	"errors"
	"time"

	"github.com/hibiken/asynq"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// 任务结果：ok 成功；skip 不可重试的失败；retry 将被重新调度；dead 重试耗尽。
const (
	taskOutcomeOK    = "ok"
	taskOutcomeSkip  = "skip"
	taskOutcomeRetry = "retry"
	taskOutcomeDead  = "dead"
)

var (
	tasksTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "resumekit",
			Subsystem: "worker",
			Name:      "tasks_total",
			Help:      "后台任务执行次数，按任务类型与结果分类。",
		},
		[]string{"task_type", "outcome"},
	)

	taskDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "resumekit",
			Subsystem: "worker",
			Name:      "task_duration_seconds",
			Help:      "单次任务执行耗时（秒），包含浏览器截图与上传。",
			Buckets:   []float64{0.1, 0.5, 1, 2.5, 5, 10, 20, 40, 80},
		},
		[]string{"task_type"},
	)

	tasksInProgress = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "resumekit",
			Subsystem: "worker",
			Name:      "tasks_in_progress",
			Help:      "当前正在执行的任务数量。",
		},
		[]string{"task_type"},
	)
)

// AsynqMetricsMiddleware 记录每次任务执行的结果与耗时。
func AsynqMetricsMiddleware() asynq.MiddlewareFunc {
	return func(next asynq.Handler) asynq.Handler {
		return asynq.HandlerFunc(func(ctx context.Context, task *asynq.Task) error {
			taskType := task.Type()
			tasksInProgress.WithLabelValues(taskType).Inc()
			start := time.Now()

			err := next.ProcessTask(ctx, task)

			tasksInProgress.WithLabelValues(taskType).Dec()
			taskDuration.WithLabelValues(taskType).Observe(time.Since(start).Seconds())
			tasksTotal.WithLabelValues(taskType, taskOutcome(ctx, err)).Inc()
			return err
		})
	}
}

func taskOutcome(ctx context.Context, err error) string {
	switch {
	case err == nil:
		return taskOutcomeOK
	case errors.Is(err, asynq.SkipRetry):
		return taskOutcomeSkip
	}
	retried, ok1 := asynq.GetRetryCount(ctx)
	maxRetry, ok2 := asynq.GetMaxRetry(ctx)
	if ok1 && ok2 && retried >= maxRetry {
		return taskOutcomeDead
	}
	return taskOutcomeRetry
}
