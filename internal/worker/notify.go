package worker

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// 统一的 WebSocket 消息协议（通过 Redis Pub/Sub 转发给前端）。
// 注意：这里的字段名与前端解析保持一致。
type ExportNotifyMessage struct {
	Type          string `json:"type"`
	Status        string `json:"status"`
	JobID         string `json:"job_id"`
	ResumeID      string `json:"resume_id"`
	Format        string `json:"format"`
	CorrelationID string `json:"correlation_id"`
	Filename      string `json:"filename,omitempty"`
	ErrorCode     int    `json:"error_code"`
	ErrorMessage  string `json:"error_message"`
}

const notifyTypeExport = "export"

// NotifyChannel 返回用户的通知频道名，API 的 WebSocket 桥订阅同一频道。
func NotifyChannel(userID string) string {
	return "user_notify:" + userID
}

// Publisher 把通知投递给某个用户。
type Publisher interface {
	Publish(ctx context.Context, userID string, msg ExportNotifyMessage) error
}

// RedisPublisher 通过 Redis Pub/Sub 投递通知。
type RedisPublisher struct {
	Client *redis.Client
}

func (p RedisPublisher) Publish(ctx context.Context, userID string, msg ExportNotifyMessage) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal notification payload: %w", err)
	}
	channel := NotifyChannel(userID)
	if err := p.Client.Publish(ctx, channel, data).Err(); err != nil {
		return fmt.Errorf("publish redis notification to %q: %w", channel, err)
	}
	return nil
}
