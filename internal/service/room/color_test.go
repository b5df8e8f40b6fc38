package room

import (
	"context"
	"fmt"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	connInmemory "github.com/roomcast/server/internal/repository/connection/inmemory"
	roomRepo "github.com/roomcast/server/internal/repository/room"
	roomInmemory "github.com/roomcast/server/internal/repository/room/inmemory"
	userRepo "github.com/roomcast/server/internal/repository/user"
	userInmemory "github.com/roomcast/server/internal/repository/user/inmemory"
)

func TestAllocateColor_UniqueUntilExhausted(t *testing.T) {
	s := NewService(roomInmemory.NewRepo(), userInmemory.NewRepo(), connInmemory.NewRepo(), &Config{
		DefaultRoomSize: 50,
		RoomSizeCap:     50,
		CleanupInterval: time.Minute,
		GracePeriod:     time.Minute,
		ProbeTimeout:    time.Second,
	}, slog.Default())
	t.Cleanup(s.Close)
	ctx := context.Background()

	created, err := s.roomRepo.Create(ctx, &roomRepo.CreateParams{
		Id:              "colors",
		InviteCode:      "invit",
		Name:            "palette",
		CreatorId:       "user-0",
		CreatorUsername: "u0",
		MaxRoomSize:     50,
	})
	require.NoError(t, err)

	seen := make(map[string]struct{})
	for i := 0; i < len(chatColorPalette); i++ {
		userId := fmt.Sprintf("user-%d", i)

		r, err := s.roomRepo.Get(ctx, created.Id)
		require.NoError(t, err)

		color := s.allocateColor(ctx, r, userId)
		_, dup := seen[color]
		assert.False(t, dup, "color %s handed out twice before exhaustion", color)
		seen[color] = struct{}{}

		_, err = s.userRepo.CreateOrUpdate(ctx, &userRepo.CreateOrUpdateParams{
			Id:       userId,
			Username: userId,
			RoomId:   created.Id,
			Color:    color,
		})
		require.NoError(t, err)
		require.NoError(t, s.roomRepo.AddMember(ctx, &roomRepo.AddMemberParams{
			RoomId:   created.Id,
			UserId:   userId,
			Username: userId,
		}))
	}

	// palette exhausted: the fallback is deterministic per user id
	r, err := s.roomRepo.Get(ctx, created.Id)
	require.NoError(t, err)

	first := s.allocateColor(ctx, r, "overflow-user")
	second := s.allocateColor(ctx, r, "overflow-user")
	assert.Equal(t, first, second, "fallback color must be stable for a user id")
	assert.Contains(t, chatColorPalette, first)
}
