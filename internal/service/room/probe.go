package room

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// snapshotProbes tracks in-flight player snapshot round-trips to the host
// connection. Every probe resolves within the timeout to either a snapshot
// or a typed error; an unresponsive host never stalls the waiting handler.
type snapshotProbes struct {
	timeout time.Duration

	mu      sync.Mutex
	pending map[string]chan PlayerSnapshot
}

func newSnapshotProbes(timeout time.Duration) *snapshotProbes {
	return &snapshotProbes{
		timeout: timeout,
		pending: make(map[string]chan PlayerSnapshot),
	}
}

func (p *snapshotProbes) create() string {
	p.mu.Lock()
	defer p.mu.Unlock()

	requestId := uuid.NewString()
	p.pending[requestId] = make(chan PlayerSnapshot, 1)

	return requestId
}

func (p *snapshotProbes) resolve(requestId string, snapshot PlayerSnapshot) bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	ch, ok := p.pending[requestId]
	if !ok {
		return false
	}

	delete(p.pending, requestId)
	ch <- snapshot

	return true
}

func (p *snapshotProbes) discard(requestId string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	delete(p.pending, requestId)
}

func (p *snapshotProbes) await(ctx context.Context, requestId string) (PlayerSnapshot, error) {
	p.mu.Lock()
	ch, ok := p.pending[requestId]
	p.mu.Unlock()
	if !ok {
		return PlayerSnapshot{}, ErrUnknownRequestId
	}

	timer := time.NewTimer(p.timeout)
	defer timer.Stop()

	select {
	case snapshot := <-ch:
		return snapshot, nil
	case <-timer.C:
		p.discard(requestId)
		return PlayerSnapshot{}, ErrHostTimeout
	case <-ctx.Done():
		p.discard(requestId)
		return PlayerSnapshot{}, ctx.Err()
	}
}
