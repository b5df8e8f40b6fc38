package inmemory

import (
	"context"
	"sync"
	"time"

	"github.com/roomcast/server/internal/repository/user"
)

type repo struct {
	users map[string]user.User
	mu    sync.RWMutex
}

func NewRepo() *repo {
	return &repo{
		users: make(map[string]user.User),
	}
}

// CreateOrUpdate upserts a user keyed by id. An existing record is
// overwritten in place, keeping its original creation time.
func (r *repo) CreateOrUpdate(_ context.Context, params *user.CreateOrUpdateParams) (user.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	u := user.User{
		Id:           params.Id,
		Username:     params.Username,
		RoomId:       params.RoomId,
		ConnectionId: params.ConnectionId,
		Color:        params.Color,
		IsAdmin:      params.IsAdmin,
		CreatedAt:    time.Now(),
	}
	if existing, ok := r.users[params.Id]; ok {
		u.CreatedAt = existing.CreatedAt
	}

	r.users[params.Id] = u

	return u, nil
}

func (r *repo) Get(_ context.Context, userId string) (user.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.users[userId]
	if !ok {
		return user.User{}, user.ErrNotFound
	}

	return u, nil
}

func (r *repo) Remove(_ context.Context, userId string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.users[userId]; !ok {
		return user.ErrNotFound
	}

	delete(r.users, userId)

	return nil
}

func (r *repo) Count(_ context.Context) int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.users)
}

func (r *repo) List(_ context.Context) []user.User {
	r.mu.RLock()
	defer r.mu.RUnlock()

	users := make([]user.User, 0, len(r.users))
	for _, u := range r.users {
		users = append(users, u)
	}

	return users
}
