package tasks

import (
	"encoding/json"
	"fmt"

	"github.com/hibiken/asynq"
)

// 任务类型常量，确保队列生产者与消费者一致。
const (
	TypeExportGenerate = "export:generate"
)

// ExportGeneratePayload 描述一次异步导出所需的最小信息，文档内容由 worker 重新读取。
type ExportGeneratePayload struct {
	JobID         string `json:"job_id"`
	ResumeID      string `json:"resume_id"`
	UserID        string `json:"user_id"`
	Format        string `json:"format"`
	CorrelationID string `json:"correlation_id"`
}

// NewExportGenerateTask 构造导出任务。TaskID 使用 job id，重复入队会被 asynq 拒绝。
func NewExportGenerateTask(p ExportGeneratePayload, opts ...asynq.Option) (*asynq.Task, error) {
	payload, err := json.Marshal(p)
	if err != nil {
		return nil, fmt.Errorf("marshal export payload: %w", err)
	}
	opts = append([]asynq.Option{asynq.TaskID(p.JobID)}, opts...)
	return asynq.NewTask(TypeExportGenerate, payload, opts...), nil
}

// ParseExportGeneratePayload 解析任务负载。
func ParseExportGeneratePayload(task *asynq.Task) (ExportGeneratePayload, error) {
	var p ExportGeneratePayload
	if err := json.Unmarshal(task.Payload(), &p); err != nil {
		return p, fmt.Errorf("unmarshal export payload: %w", err)
	}
	if p.JobID == "" || p.ResumeID == "" || p.UserID == "" {
		return p, fmt.Errorf("export payload missing ids: %w", asynq.SkipRetry)
	}
	return p, nil
}
