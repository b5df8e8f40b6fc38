package room

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"golang.org/x/time/rate"

	"github.com/roomcast/server/internal/metrics"
)

const (
	chatMessageRate  = rate.Limit(2)
	chatMessageBurst = 8
	chatLimiterTTL   = 2 * time.Minute
)

type limiterEntry struct {
	lim *rate.Limiter
	ts  time.Time
}

// chatLimiters keeps a token-bucket limiter per user with TTL-based GC.
type chatLimiters struct {
	mu   sync.Mutex
	m    map[string]*limiterEntry
	stop chan struct{}
}

func newChatLimiters() *chatLimiters {
	c := &chatLimiters{
		m:    make(map[string]*limiterEntry),
		stop: make(chan struct{}),
	}
	go c.gc()

	return c
}

func (c *chatLimiters) Allow(userId string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.m[userId]
	if !ok {
		entry = &limiterEntry{lim: rate.NewLimiter(chatMessageRate, chatMessageBurst)}
		c.m[userId] = entry
	}
	entry.ts = time.Now()

	return entry.lim.Allow()
}

func (c *chatLimiters) Forget(userId string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.m, userId)
}

func (c *chatLimiters) gc() {
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-c.stop:
			return
		case <-ticker.C:
			now := time.Now()
			c.mu.Lock()
			for userId, entry := range c.m {
				if now.Sub(entry.ts) > chatLimiterTTL {
					delete(c.m, userId)
				}
			}
			c.mu.Unlock()
		}
	}
}

func (c *chatLimiters) Stop() {
	select {
	case <-c.stop:
	default:
		close(c.stop)
	}
}

type SendMessageParams struct {
	SenderId string
	Content  string
}

type SendMessageResponse struct {
	Message Message
	Conns   []*websocket.Conn
}

// SendMessage relays a chat message to the entire room, sender included.
// Nothing is persisted.
func (s *service) SendMessage(ctx context.Context, params *SendMessageParams) (SendMessageResponse, error) {
	sender, r, err := s.senderRoom(ctx, params.SenderId)
	if err != nil {
		return SendMessageResponse{}, err
	}

	if !s.chatLimiters.Allow(params.SenderId) {
		return SendMessageResponse{}, ErrRateLimited
	}

	metrics.ChatMessagesTotal.Inc()

	return SendMessageResponse{
		Message: Message{
			Id:        uuid.NewString(),
			UserId:    sender.Id,
			Username:  sender.Username,
			Color:     sender.Color,
			IsAdmin:   sender.IsAdmin,
			Content:   params.Content,
			Timestamp: time.Now().UnixMilli(),
		},
		Conns: s.getConns(r),
	}, nil
}
