package wsrouter

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/gorilla/websocket"
)

type message struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type HandlerFunc[T any] func(ctx context.Context, conn *websocket.Conn, payload T) error

type Middleware func(next HandlerFunc[any]) HandlerFunc[any]

// ErrorFunc is called for handler errors and for unknown message types.
type ErrorFunc func(ctx context.Context, conn *websocket.Conn, err error)

type WSRouter struct {
	routes      map[string]HandlerFunc[any]
	middlewares []Middleware
	errorFunc   ErrorFunc
}

func New() *WSRouter {
	return &WSRouter{routes: make(map[string]HandlerFunc[any])}
}

func (r *WSRouter) Use(mw ...Middleware) {
	r.middlewares = append(r.middlewares, mw...)
}

func (r *WSRouter) OnError(f ErrorFunc) {
	r.errorFunc = f
}

// Handle registers a handler for a message type. The raw payload is
// unmarshalled into T before the handler is invoked.
func Handle[T any](r *WSRouter, messageType string, handler HandlerFunc[T]) {
	r.routes[messageType] = func(ctx context.Context, conn *websocket.Conn, payload any) error {
		var input T
		raw, _ := payload.(json.RawMessage)
		if len(raw) > 0 {
			if err := json.Unmarshal(raw, &input); err != nil {
				return fmt.Errorf("invalid payload for %s: %w", messageType, err)
			}
		}
		return handler(ctx, conn, input)
	}
}

// ServeConn reads messages from the connection until it fails and routes
// them to registered handlers. Middlewares wrap every handler in
// registration-reverse order.
func (r *WSRouter) ServeConn(ctx context.Context, conn *websocket.Conn) error {
	defer conn.Close()

	for {
		var msg message
		if err := conn.ReadJSON(&msg); err != nil {
			return err
		}

		msgCtx := context.WithValue(ctx, messageTypeKey, msg.Type)

		handler, exists := r.routes[msg.Type]
		if !exists {
			if r.errorFunc != nil {
				r.errorFunc(msgCtx, conn, fmt.Errorf("unknown message type: %s", msg.Type))
			}
			continue
		}

		for i := len(r.middlewares) - 1; i >= 0; i-- {
			handler = r.middlewares[i](handler)
		}

		if err := handler(msgCtx, conn, json.RawMessage(msg.Payload)); err != nil {
			if r.errorFunc != nil {
				r.errorFunc(msgCtx, conn, err)
			}
		}
	}
}
