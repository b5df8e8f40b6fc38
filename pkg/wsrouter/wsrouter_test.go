package wsrouter

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dial(t *testing.T, r *WSRouter) *websocket.Conn {
	t.Helper()

	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		conn, err := upgrader.Upgrade(w, req, nil)
		if err != nil {
			return
		}
		r.ServeConn(req.Context(), conn)
	}))
	t.Cleanup(srv.Close)

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	return conn
}

func TestRoutesByMessageType(t *testing.T) {
	r := New()

	type echoInput struct {
		Text string `json:"text"`
	}

	got := make(chan string, 1)
	Handle(r, "ECHO", func(ctx context.Context, conn *websocket.Conn, payload echoInput) error {
		assert.Equal(t, "ECHO", GetMessageTypeFromCtx(ctx))
		got <- payload.Text
		return nil
	})

	conn := dial(t, r)
	require.NoError(t, conn.WriteJSON(map[string]any{
		"type":    "ECHO",
		"payload": map[string]any{"text": "hello"},
	}))

	select {
	case text := <-got:
		assert.Equal(t, "hello", text)
	case <-time.After(time.Second):
		t.Fatal("handler never ran")
	}
}

func TestUnknownTypeHitsErrorFunc(t *testing.T) {
	r := New()

	errs := make(chan error, 1)
	r.OnError(func(ctx context.Context, conn *websocket.Conn, err error) {
		errs <- err
	})

	conn := dial(t, r)
	require.NoError(t, conn.WriteJSON(map[string]any{"type": "NOPE"}))

	select {
	case err := <-errs:
		assert.Contains(t, err.Error(), "unknown message type")
	case <-time.After(time.Second):
		t.Fatal("error func never ran")
	}
}

func TestMiddlewareOrder(t *testing.T) {
	r := New()

	var order []string
	r.Use(func(next HandlerFunc[any]) HandlerFunc[any] {
		return func(ctx context.Context, conn *websocket.Conn, payload any) error {
			order = append(order, "first")
			return next(ctx, conn, payload)
		}
	})
	r.Use(func(next HandlerFunc[any]) HandlerFunc[any] {
		return func(ctx context.Context, conn *websocket.Conn, payload any) error {
			order = append(order, "second")
			return next(ctx, conn, payload)
		}
	})

	done := make(chan struct{})
	Handle(r, "PING", func(ctx context.Context, conn *websocket.Conn, _ struct{}) error {
		order = append(order, "handler")
		close(done)
		return nil
	})

	conn := dial(t, r)
	require.NoError(t, conn.WriteJSON(map[string]any{"type": "PING"}))

	select {
	case <-done:
		assert.Equal(t, []string{"first", "second", "handler"}, order)
	case <-time.After(time.Second):
		t.Fatal("handler never ran")
	}
}
