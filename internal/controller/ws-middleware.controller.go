package controller

import (
	"context"
	"log/slog"
	"time"

	"github.com/gorilla/websocket"

	"github.com/roomcast/server/internal/metrics"
	"github.com/roomcast/server/pkg/ctxlogger"
	"github.com/roomcast/server/pkg/wsrouter"
)

func (c controller) wsRequestIdWSMw() wsrouter.Middleware {
	return func(next wsrouter.HandlerFunc[any]) wsrouter.HandlerFunc[any] {
		return func(ctx context.Context, conn *websocket.Conn, payload any) error {
			ctx = ctxlogger.AppendCtx(ctx, slog.String("ws_request_id", c.generateTimeBasedId()))
			return next(ctx, conn, payload)
		}
	}
}

func (c controller) loggerWSMw() wsrouter.Middleware {
	return func(next wsrouter.HandlerFunc[any]) wsrouter.HandlerFunc[any] {
		return func(ctx context.Context, conn *websocket.Conn, payload any) error {
			messageType := wsrouter.GetMessageTypeFromCtx(ctx)
			ctx = ctxlogger.AppendCtx(ctx, slog.String("message_type", messageType))
			c.logger.DebugContext(ctx, "websocket message received")

			start := time.Now()

			err := next(ctx, conn, payload)

			c.logger.InfoContext(ctx, "websocket message handled",
				"processing_time_us", time.Since(start).Microseconds(),
				"error", err,
			)

			return err
		}
	}
}

func (c controller) metricsWSMw() wsrouter.Middleware {
	return func(next wsrouter.HandlerFunc[any]) wsrouter.HandlerFunc[any] {
		return func(ctx context.Context, conn *websocket.Conn, payload any) error {
			metrics.WsEventsTotal.WithLabelValues(wsrouter.GetMessageTypeFromCtx(ctx)).Inc()
			return next(ctx, conn, payload)
		}
	}
}
