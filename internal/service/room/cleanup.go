package room

import (
	"log/slog"
	"sync"
	"time"
)

// roomCleaner owns the two idle-room deletion mechanisms: a periodic sweep
// that garbage-collects any zero-member room, and a per-room cancelable
// grace timer armed when a room loses its last member. Arm, cancel and fire
// all go through this one struct so the timer bookkeeping cannot drift.
type roomCleaner struct {
	interval time.Duration
	grace    time.Duration
	sweep    func() int
	fire     func(roomId string)
	logger   *slog.Logger

	mu      sync.Mutex
	timers  map[string]*time.Timer
	running bool
	stop    chan struct{}
}

func newRoomCleaner(interval, grace time.Duration, sweep func() int, fire func(roomId string), logger *slog.Logger) *roomCleaner {
	return &roomCleaner{
		interval: interval,
		grace:    grace,
		sweep:    sweep,
		fire:     fire,
		logger:   logger,
		timers:   make(map[string]*time.Timer),
	}
}

// EnsureRunning lazily starts the periodic sweep. The sweep stops itself
// once no rooms remain and is restarted on the next room creation.
func (c *roomCleaner) EnsureRunning() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.running {
		return
	}

	c.running = true
	c.stop = make(chan struct{})
	stop := c.stop

	go func() {
		ticker := time.NewTicker(c.interval)
		defer ticker.Stop()

		for {
			select {
			case <-stop:
				return
			case <-ticker.C:
				if remaining := c.sweep(); remaining == 0 {
					c.mu.Lock()
					if c.stop == stop {
						c.running = false
					}
					c.mu.Unlock()

					c.logger.Debug("no rooms left, stopping cleanup sweep")
					return
				}
			}
		}
	}()
}

// Arm schedules the room for deletion after the grace period, replacing any
// timer already pending for it.
func (c *roomCleaner) Arm(roomId string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if pending, ok := c.timers[roomId]; ok {
		pending.Stop()
	}

	c.timers[roomId] = time.AfterFunc(c.grace, func() {
		c.mu.Lock()
		delete(c.timers, roomId)
		c.mu.Unlock()

		c.fire(roomId)
	})
}

// Cancel drops a pending deletion timer, if any. Called on every join so a
// recovered room is never reaped.
func (c *roomCleaner) Cancel(roomId string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if pending, ok := c.timers[roomId]; ok {
		pending.Stop()
		delete(c.timers, roomId)
	}
}

func (c *roomCleaner) StopAll() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.running {
		close(c.stop)
		c.running = false
	}

	for roomId, pending := range c.timers {
		pending.Stop()
		delete(c.timers, roomId)
	}
}
