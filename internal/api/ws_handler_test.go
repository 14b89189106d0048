package api

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSubscriber struct {
	messages   chan string
	subscribed chan string
}

func (f *fakeSubscriber) Subscribe(_ context.Context, channel string) (<-chan string, func() error, error) {
	f.subscribed <- channel
	return f.messages, func() error { return nil }, nil
}

func newWsServer(t *testing.T) (*httptest.Server, *fakeSubscriber) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	sub := &fakeSubscriber{messages: make(chan string, 4), subscribed: make(chan string, 1)}
	h := NewWsHandler(sub, stubValidator{}, slog.New(slog.NewTextHandler(io.Discard, nil)), nil)
	r := gin.New()
	r.GET("/v1/ws", h.HandleConnection)
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv, sub
}

func dialWs(t *testing.T, srv *httptest.Server, query string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/v1/ws" + query
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	return conn
}

func readText(t *testing.T, conn *websocket.Conn) string {
	t.Helper()
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)
	return string(data)
}

func TestWsForwardsNotificationsForResume(t *testing.T) {
	srv, sub := newWsServer(t)
	conn := dialWs(t, srv, "?resume_id=r1")

	require.NoError(t, conn.WriteJSON(wsClientMessage{Type: "auth", Token: "token-u1"}))
	assert.JSONEq(t, `{"type":"auth_ok"}`, readText(t, conn))

	select {
	case ch := <-sub.subscribed:
		assert.Equal(t, "user_notify:u1", ch)
	case <-time.After(5 * time.Second):
		t.Fatal("subscription not started")
	}

	sub.messages <- `{"type":"export","status":"completed","resume_id":"r2","job_id":"j0"}`
	sub.messages <- `{"type":"export","status":"completed","resume_id":"r1","job_id":"j1"}`
	assert.Contains(t, readText(t, conn), `"job_id":"j1"`)

	require.NoError(t, conn.WriteJSON(wsClientMessage{Type: "ping"}))
	assert.JSONEq(t, `{"type":"pong"}`, readText(t, conn))
}

func TestWsRejectsBadToken(t *testing.T) {
	srv, _ := newWsServer(t)
	conn := dialWs(t, srv, "")

	require.NoError(t, conn.WriteJSON(wsClientMessage{Type: "auth", Token: "forged"}))
	_, _, err := conn.ReadMessage()
	require.Error(t, err)
	assert.True(t, websocket.IsCloseError(err, websocket.ClosePolicyViolation))
}

func TestWsRequiresAuthFirst(t *testing.T) {
	srv, _ := newWsServer(t)
	conn := dialWs(t, srv, "")

	require.NoError(t, conn.WriteJSON(wsClientMessage{Type: "ping"}))
	_, _, err := conn.ReadMessage()
	assert.True(t, websocket.IsCloseError(err, websocket.ClosePolicyViolation))
}

func TestOriginAllowed(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "http://api.example.com/v1/ws", nil)
	assert.True(t, originAllowed(req, nil))

	req.Header.Set("Origin", "http://api.example.com")
	assert.True(t, originAllowed(req, nil))

	req.Header.Set("Origin", "https://evil.example.com")
	assert.False(t, originAllowed(req, nil))
	assert.True(t, originAllowed(req, []string{"https://evil.example.com"}))
	assert.False(t, originAllowed(req, []string{"https://app.example.com"}))
}

func TestWsSessionWants(t *testing.T) {
	s := &wsSession{resumeID: "r1"}
	assert.True(t, s.wants(`{"resume_id":"r1"}`))
	assert.False(t, s.wants(`{"resume_id":"r2"}`))
	assert.True(t, s.wants(`{"type":"system"}`))
	assert.True(t, s.wants(`not json`))
	assert.True(t, (&wsSession{}).wants(`{"resume_id":"r2"}`))
}
