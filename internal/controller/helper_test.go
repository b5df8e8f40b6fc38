package controller

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// pairConns upgrades a single client and returns both ends of the socket.
func pairConns(t *testing.T) (server, client *websocket.Conn) {
	t.Helper()

	upgrader := websocket.Upgrader{}
	serverConns := make(chan *websocket.Conn, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		conn, err := upgrader.Upgrade(w, req, nil)
		if err != nil {
			return
		}
		serverConns <- conn
	}))
	t.Cleanup(srv.Close)

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	client, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { client.Close() })

	server = <-serverConns
	t.Cleanup(func() { server.Close() })

	return server, client
}

func TestWriteToConn_SerializesConcurrentWriters(t *testing.T) {
	c := controller{
		writers: newConnWriters(),
		logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
	}

	server, client := pairConns(t)
	ctx := context.Background()

	const writers = 32
	var wg sync.WaitGroup
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, c.writeToConn(ctx, server, &Output{
				Type:    "NEW_MESSAGE",
				Payload: map[string]any{"message": "hi"},
			}))
		}()
	}

	require.NoError(t, client.SetReadDeadline(time.Now().Add(5*time.Second)))
	for received := 0; received < writers; received++ {
		var msg Output
		require.NoError(t, client.ReadJSON(&msg))
		assert.Equal(t, "NEW_MESSAGE", msg.Type)
	}
	wg.Wait()

	c.writers.forget(server)
	_, stillTracked := c.writers.mu.Load(server)
	assert.False(t, stillTracked, "forget must release the per-conn mutex")
}
