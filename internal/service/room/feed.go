package room

import (
	"context"

	"golang.org/x/exp/slices"

	"github.com/roomcast/server/internal/repository/room"
)

// SubscribeRooms exposes the registry's lifecycle notifications to the
// public-room feed. The cancel func must be called when the subscriber
// goes away.
func (s *service) SubscribeRooms() (<-chan room.Event, func()) {
	return s.roomRepo.Subscribe()
}

// GetPublicRooms returns the full listing of non-private rooms, oldest
// first. The feed always pushes this complete snapshot, never diffs.
func (s *service) GetPublicRooms(ctx context.Context) []RoomListItem {
	rooms := s.roomRepo.List(ctx)
	slices.SortFunc(rooms, func(a, b room.Room) int {
		return a.CreatedAt.Compare(b.CreatedAt)
	})

	items := make([]RoomListItem, 0, len(rooms))
	for _, r := range rooms {
		if r.Private {
			continue
		}

		items = append(items, RoomListItem{
			Id:              r.Id,
			Name:            r.Name,
			MemberCount:     len(r.MemberIds),
			MaxRoomSize:     r.MaxRoomSize,
			HasPasscode:     len(r.PasscodeHash) > 0,
			CurrentVideoUrl: r.VideoInfo.CurrentVideoUrl,
		})
	}

	return items
}

func (s *service) ListRooms(ctx context.Context) []Room {
	rooms := s.roomRepo.List(ctx)
	slices.SortFunc(rooms, func(a, b room.Room) int {
		return a.CreatedAt.Compare(b.CreatedAt)
	})

	snapshots := make([]Room, 0, len(rooms))
	for _, r := range rooms {
		snapshots = append(snapshots, s.getRoomSnapshot(ctx, r))
	}

	return snapshots
}

func (s *service) ListUsers(ctx context.Context) []UserListItem {
	users := s.userRepo.List(ctx)

	items := make([]UserListItem, 0, len(users))
	for _, u := range users {
		items = append(items, UserListItem{
			Id:       u.Id,
			Username: u.Username,
			RoomId:   u.RoomId,
			Color:    u.Color,
			IsAdmin:  u.IsAdmin,
		})
	}

	return items
}

func (s *service) GetStats(ctx context.Context) Stats {
	return Stats{
		Rooms:       s.roomRepo.Count(ctx),
		Users:       s.userRepo.Count(ctx),
		Connections: s.connRepo.Count(),
	}
}

// ClearRooms wipes the room registry. Admin-only, intended for operational
// tooling.
func (s *service) ClearRooms(ctx context.Context) {
	s.roomRepo.Clear(ctx)
	s.syncGauges(ctx)
}
