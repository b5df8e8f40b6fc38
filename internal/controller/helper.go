package controller

import (
	"context"
	"fmt"
	"sync"

	"github.com/gorilla/websocket"

	roomservice "github.com/roomcast/server/internal/service/room"
)

// connWriters hands out one write mutex per connection: broadcasts and the
// async player-sync goroutines may target the same socket, and
// gorilla/websocket allows only a single concurrent writer.
type connWriters struct {
	mu sync.Map // *websocket.Conn -> *sync.Mutex
}

func newConnWriters() *connWriters {
	return &connWriters{}
}

func (w *connWriters) lock(conn *websocket.Conn) *sync.Mutex {
	m, _ := w.mu.LoadOrStore(conn, &sync.Mutex{})
	return m.(*sync.Mutex)
}

func (w *connWriters) forget(conn *websocket.Conn) {
	w.mu.Delete(conn)
}

func (c controller) writeToConn(ctx context.Context, conn *websocket.Conn, output *Output) error {
	if conn == nil {
		return nil
	}

	m := c.writers.lock(conn)
	m.Lock()
	defer m.Unlock()

	if err := conn.WriteJSON(output); err != nil {
		return fmt.Errorf("failed to write to conn: %w", err)
	}

	return nil
}

// broadcast writes the output to every connection, keeping going past
// individual write failures so one dead socket does not starve the rest.
func (c controller) broadcast(ctx context.Context, conns []*websocket.Conn, output *Output) error {
	for _, conn := range conns {
		if err := c.writeToConn(ctx, conn, output); err != nil {
			c.logger.DebugContext(ctx, "failed to broadcast to conn", "error", err)
		}
	}

	return nil
}

// handleWsError is the router-level error sink. Authorization failures are
// dropped without a reply; everything else produces an ERROR message.
func (c controller) handleWsError(ctx context.Context, conn *websocket.Conn, err error) {
	if roomservice.IsSilentError(err) {
		c.logger.DebugContext(ctx, "dropped unauthorized message", "error", err)
		return
	}

	c.logger.DebugContext(ctx, "websocket handler error", "error", err)

	if writeErr := c.writeToConn(ctx, conn, &Output{
		Type: "ERROR",
		Payload: map[string]any{
			"message": err.Error(),
		},
	}); writeErr != nil {
		c.logger.DebugContext(ctx, "failed to write error", "error", writeErr)
	}
}

func (c controller) checkInput(input any) error {
	if validationErrors, ok := c.validate.Validate(input); !ok {
		return fmt.Errorf("validation error: %v", validationErrors)
	}

	return nil
}
