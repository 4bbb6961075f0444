package api

import (
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/redis/go-redis/v9"

	"github.com/chiranjibts89/Blu-Ko-AI/internal/auth"
)

func newWsTestServer(t *testing.T) (*httptest.Server, *auth.AuthService) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	svc, err := auth.NewAuthService("ws-test-secret", 15*time.Minute, 24*time.Hour)
	if err != nil {
		t.Fatalf("NewAuthService: %v", err)
	}

	// 端口 0 不可达：握手阶段不触碰 Redis，只有鉴权通过后的订阅才会尝试连接。
	redisClient := redis.NewClient(&redis.Options{Addr: "127.0.0.1:0"})
	t.Cleanup(func() { _ = redisClient.Close() })

	router := gin.New()
	handler := NewWsHandler(redisClient, svc, discardLogger(), nil)
	router.GET("/v1/ws", handler.HandleConnection)

	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)
	return srv, svc
}

func dialWs(t *testing.T, srv *httptest.Server) *websocket.Conn {
	t.Helper()
	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/v1/ws"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("dial websocket: %v", err)
	}
	t.Cleanup(func() { _ = conn.Close() })
	_ = conn.SetReadDeadline(time.Now().Add(3 * time.Second))
	return conn
}

func TestWsHandshakeAcksValidAccessToken(t *testing.T) {
	srv, svc := newWsTestServer(t)
	conn := dialWs(t, srv)

	pair, err := svc.GenerateTokenPair(42)
	if err != nil {
		t.Fatalf("GenerateTokenPair: %v", err)
	}

	authMsg, _ := json.Marshal(map[string]string{"type": "auth", "token": pair.AccessToken})
	if err := conn.WriteMessage(websocket.TextMessage, authMsg); err != nil {
		t.Fatalf("write auth message: %v", err)
	}

	_, message, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read ack: %v", err)
	}
	var ack struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(message, &ack); err != nil {
		t.Fatalf("decode ack: %v", err)
	}
	if ack.Type != "auth_ok" {
		t.Fatalf("ack type = %q, want auth_ok", ack.Type)
	}
}

func TestWsHandshakeRejectsRefreshToken(t *testing.T) {
	srv, svc := newWsTestServer(t)
	conn := dialWs(t, srv)

	pair, err := svc.GenerateTokenPair(42)
	if err != nil {
		t.Fatalf("GenerateTokenPair: %v", err)
	}

	// 刷新令牌不能用于建立通知通道。
	authMsg, _ := json.Marshal(map[string]string{"type": "auth", "token": pair.RefreshToken})
	if err := conn.WriteMessage(websocket.TextMessage, authMsg); err != nil {
		t.Fatalf("write auth message: %v", err)
	}

	if _, _, err := conn.ReadMessage(); err == nil {
		t.Fatalf("connection should be closed for refresh token")
	} else if !websocket.IsCloseError(err, websocket.ClosePolicyViolation) {
		t.Fatalf("close error = %v, want policy violation", err)
	}
}

func TestWsHandshakeRejectsInvalidPayload(t *testing.T) {
	srv, _ := newWsTestServer(t)
	conn := dialWs(t, srv)

	if err := conn.WriteMessage(websocket.TextMessage, []byte("{not json")); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, _, err := conn.ReadMessage(); err == nil {
		t.Fatalf("connection should be closed for malformed auth payload")
	} else if !websocket.IsCloseError(err, websocket.ClosePolicyViolation) {
		t.Fatalf("close error = %v, want policy violation", err)
	}
}
