package inmemory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roomcast/server/internal/repository/user"
)

func TestCreateOrUpdate_KeepsCreatedAt(t *testing.T) {
	r := NewRepo()
	ctx := context.Background()

	first, err := r.CreateOrUpdate(ctx, &user.CreateOrUpdateParams{
		Id:       "user-1",
		Username: "alice",
		RoomId:   "room-1",
		Color:    "#e6194b",
	})
	require.NoError(t, err)

	time.Sleep(5 * time.Millisecond)

	second, err := r.CreateOrUpdate(ctx, &user.CreateOrUpdateParams{
		Id:       "user-1",
		Username: "alice2",
		RoomId:   "room-2",
		Color:    "#3cb44b",
	})
	require.NoError(t, err)

	assert.Equal(t, first.CreatedAt, second.CreatedAt, "upsert must not reset the creation time")
	assert.Equal(t, "alice2", second.Username)
	assert.Equal(t, "room-2", second.RoomId)
}

func TestGetAndRemove(t *testing.T) {
	r := NewRepo()
	ctx := context.Background()

	_, err := r.Get(ctx, "user-1")
	require.ErrorIs(t, err, user.ErrNotFound)

	_, err = r.CreateOrUpdate(ctx, &user.CreateOrUpdateParams{Id: "user-1", Username: "alice"})
	require.NoError(t, err)

	got, err := r.Get(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, "alice", got.Username)
	assert.Equal(t, 1, r.Count(ctx))

	require.NoError(t, r.Remove(ctx, "user-1"))
	require.ErrorIs(t, r.Remove(ctx, "user-1"), user.ErrNotFound)
	assert.Equal(t, 0, r.Count(ctx))
}
