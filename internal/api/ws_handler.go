package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/redis/go-redis/v9"

	"resumeKit/internal/api/middleware"
	"resumeKit/internal/worker"
)

const (
	wsAuthTimeout  = 10 * time.Second
	wsWriteTimeout = 5 * time.Second
	wsPingInterval = 30 * time.Second
)

// Subscriber 订阅用户通知频道，返回的 close 函数结束订阅。
type Subscriber interface {
	Subscribe(ctx context.Context, channel string) (<-chan string, func() error, error)
}

// RedisSubscriber 基于 Redis Pub/Sub 的 Subscriber。
type RedisSubscriber struct {
	Client *redis.Client
}

func (s RedisSubscriber) Subscribe(ctx context.Context, channel string) (<-chan string, func() error, error) {
	pubsub := s.Client.Subscribe(ctx, channel)
	// 等待订阅确认，连接失败时立即返回错误
	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()
		return nil, nil, fmt.Errorf("subscribe %q: %w", channel, err)
	}
	out := make(chan string)
	go func() {
		defer close(out)
		for msg := range pubsub.Channel() {
			select {
			case out <- msg.Payload:
			case <-ctx.Done():
				return
			}
		}
	}()
	return out, pubsub.Close, nil
}

// WsHandler 负责 WebSocket 鉴权，并把导出通知推送给浏览器。
type WsHandler struct {
	subscriber   Subscriber
	validator    middleware.TokenValidator
	logger       *slog.Logger
	upgrader     websocket.Upgrader
	pingInterval time.Duration
}

// NewWsHandler 构造 WebSocket 处理器；allowedOrigins 为空时只接受同源连接。
func NewWsHandler(subscriber Subscriber, validator middleware.TokenValidator, logger *slog.Logger, allowedOrigins []string) *WsHandler {
	return &WsHandler{
		subscriber:   subscriber,
		validator:    validator,
		logger:       logger,
		pingInterval: wsPingInterval,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return originAllowed(r, allowedOrigins)
			},
		},
	}
}

func originAllowed(r *http.Request, allowed []string) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	if len(allowed) == 0 {
		u, err := url.Parse(origin)
		if err != nil {
			return false
		}
		return strings.EqualFold(u.Host, r.Host)
	}
	for _, o := range allowed {
		if origin == o {
			return true
		}
	}
	return false
}

type wsClientMessage struct {
	Type  string `json:"type"`
	Token string `json:"token,omitempty"`
}

var (
	wsAuthOK = []byte(`{"type":"auth_ok"}`)
	wsPong   = []byte(`{"type":"pong"}`)
)

// HandleConnection 升级连接，首条消息必须是 {"type":"auth","token":...}。
// 查询参数 resume_id 非空时只推送该简历的导出通知。
func (h *WsHandler) HandleConnection(c *gin.Context) {
	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Error("upgrade websocket failed", slog.Any("error", err))
		return
	}
	defer conn.Close()

	log := h.logger.With(
		slog.String("client_ip", c.ClientIP()),
		slog.String("correlation_id", middleware.GetCorrelationID(c)),
	)

	userID, err := h.authenticate(conn)
	if err != nil {
		log.Warn("websocket authentication failed", slog.Any("error", err))
		return
	}
	log = log.With(slog.String("user_id", userID))

	ctx, cancel := context.WithCancel(c.Request.Context())
	defer cancel()

	channel := worker.NotifyChannel(userID)
	messages, unsubscribe, err := h.subscriber.Subscribe(ctx, channel)
	if err != nil {
		writeClose(conn, websocket.CloseInternalServerErr, "subscribe failed")
		log.Error("subscribe notifications failed", slog.Any("error", err))
		return
	}
	defer func() { _ = unsubscribe() }()
	log.Info("websocket subscribed", slog.String("channel", channel))

	s := &wsSession{
		conn:     conn,
		out:      make(chan []byte, 4),
		resumeID: c.Query("resume_id"),
		log:      log,
	}
	errCh := make(chan error, 2)
	go func() { errCh <- s.readLoop(ctx) }()
	go func() { errCh <- s.writeLoop(ctx, messages, h.pingInterval) }()

	err = <-errCh
	cancel()
	log.Info("websocket connection closed", slog.Any("reason", err))
}

func (h *WsHandler) authenticate(conn *websocket.Conn) (string, error) {
	_ = conn.SetReadDeadline(time.Now().Add(wsAuthTimeout))
	_, message, err := conn.ReadMessage()
	if err != nil {
		return "", fmt.Errorf("read auth message: %w", err)
	}

	var msg wsClientMessage
	if err := json.Unmarshal(message, &msg); err != nil {
		writeClose(conn, websocket.ClosePolicyViolation, "invalid auth payload")
		return "", fmt.Errorf("decode auth payload: %w", err)
	}
	if msg.Type != "auth" || msg.Token == "" {
		writeClose(conn, websocket.ClosePolicyViolation, "auth required")
		return "", errors.New("first message must be auth")
	}
	claims, err := h.validator.ValidateToken(msg.Token)
	if err != nil {
		writeClose(conn, websocket.ClosePolicyViolation, "unauthorized")
		return "", fmt.Errorf("validate token: %w", err)
	}

	_ = conn.SetReadDeadline(time.Time{})
	_ = conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
	if err := conn.WriteMessage(websocket.TextMessage, wsAuthOK); err != nil {
		return "", fmt.Errorf("write auth ack: %w", err)
	}
	return claims.UserID(), nil
}

func writeClose(conn *websocket.Conn, code int, text string) {
	deadline := time.Now().Add(wsWriteTimeout)
	_ = conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(code, text), deadline)
}

// wsSession 中只有 writeLoop 写数据帧，readLoop 的回复经 out 转交。
type wsSession struct {
	conn     *websocket.Conn
	out      chan []byte
	resumeID string
	log      *slog.Logger
}

func (s *wsSession) readLoop(ctx context.Context) error {
	for {
		_, message, err := s.conn.ReadMessage()
		if err != nil {
			return fmt.Errorf("read message: %w", err)
		}
		var msg wsClientMessage
		if json.Unmarshal(message, &msg) != nil || msg.Type != "ping" {
			continue
		}
		select {
		case s.out <- wsPong:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

func (s *wsSession) writeLoop(ctx context.Context, messages <-chan string, pingInterval time.Duration) error {
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case payload, ok := <-messages:
			if !ok {
				return errors.New("notification channel closed")
			}
			if !s.wants(payload) {
				continue
			}
			s.log.Debug("forwarding export notification")
			if err := s.write([]byte(payload)); err != nil {
				return err
			}
		case data := <-s.out:
			if err := s.write(data); err != nil {
				return err
			}
		case <-ticker.C:
			if err := s.conn.WriteControl(websocket.PingMessage, []byte("ping"), time.Now().Add(wsWriteTimeout)); err != nil {
				return fmt.Errorf("write ping: %w", err)
			}
		}
	}
}

func (s *wsSession) write(data []byte) error {
	_ = s.conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
	if err := s.conn.WriteMessage(websocket.TextMessage, data); err != nil {
		return fmt.Errorf("write message: %w", err)
	}
	return nil
}

// wants 按 resume_id 过滤导出通知；无法解析的消息照常转发。
func (s *wsSession) wants(payload string) bool {
	if s.resumeID == "" {
		return true
	}
	var msg worker.ExportNotifyMessage
	if err := json.Unmarshal([]byte(payload), &msg); err != nil || msg.ResumeID == "" {
		return true
	}
	return msg.ResumeID == s.resumeID
}
