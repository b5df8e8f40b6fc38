package inmemory

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roomcast/server/internal/repository/room"
)

func createRoom(t *testing.T, r *repo, id, invite string) room.Room {
	t.Helper()

	created, err := r.Create(context.Background(), &room.CreateParams{
		Id:              id,
		InviteCode:      invite,
		Name:            "test",
		CreatorId:       "creator",
		CreatorUsername: "alice",
		MaxRoomSize:     10,
	})
	require.NoError(t, err)

	return created
}

func TestCreate_SeedsCreator(t *testing.T) {
	r := NewRepo()

	created := createRoom(t, r, "room-1", "inv-1")
	assert.Equal(t, "creator", created.Host)
	assert.Equal(t, []string{"creator"}, created.MemberIds)
	assert.Equal(t, -1, created.VideoInfo.CurrentQueueIndex)
	require.Len(t, created.PreviouslyConnected, 1)
	assert.Equal(t, "alice", created.PreviouslyConnected[0].Username)
}

func TestCreate_RejectsCollisions(t *testing.T) {
	r := NewRepo()
	ctx := context.Background()

	createRoom(t, r, "room-1", "inv-1")

	_, err := r.Create(ctx, &room.CreateParams{Id: "room-1", InviteCode: "inv-2"})
	require.ErrorIs(t, err, room.ErrAlreadyExists)

	_, err = r.Create(ctx, &room.CreateParams{Id: "room-2", InviteCode: "inv-1"})
	require.ErrorIs(t, err, room.ErrAlreadyExists, "invite codes must be unique too")
}

func TestGetByInviteCode(t *testing.T) {
	r := NewRepo()
	ctx := context.Background()

	created := createRoom(t, r, "room-1", "inv-1")

	found, err := r.GetByInviteCode(ctx, "inv-1")
	require.NoError(t, err)
	assert.Equal(t, created.Id, found.Id)

	_, err = r.GetByInviteCode(ctx, "nope!")
	require.ErrorIs(t, err, room.ErrNotFound)
}

func TestMembers_AddRemove(t *testing.T) {
	r := NewRepo()
	ctx := context.Background()

	createRoom(t, r, "room-1", "inv-1")

	require.NoError(t, r.AddMember(ctx, &room.AddMemberParams{RoomId: "room-1", UserId: "u2", Username: "bob"}))
	// adding again is idempotent
	require.NoError(t, r.AddMember(ctx, &room.AddMemberParams{RoomId: "room-1", UserId: "u2", Username: "bob"}))

	got, err := r.Get(ctx, "room-1")
	require.NoError(t, err)
	assert.Equal(t, []string{"creator", "u2"}, got.MemberIds)
	assert.Len(t, got.PreviouslyConnected, 2)

	require.NoError(t, r.RemoveMember(ctx, &room.RemoveMemberParams{RoomId: "room-1", UserId: "u2"}))
	require.ErrorIs(t, r.RemoveMember(ctx, &room.RemoveMemberParams{RoomId: "room-1", UserId: "u2"}), room.ErrMemberNotFound)

	got, err = r.Get(ctx, "room-1")
	require.NoError(t, err)
	assert.Equal(t, []string{"creator"}, got.MemberIds)

	// departure does not erase the previously-connected record
	ref, err := r.GetPreviouslyConnected(ctx, "room-1", "u2")
	require.NoError(t, err)
	assert.Equal(t, "bob", ref.Username)
}

func TestQueue_AppendRemove(t *testing.T) {
	r := NewRepo()
	ctx := context.Background()

	createRoom(t, r, "room-1", "inv-1")

	require.NoError(t, r.AppendVideo(ctx, &room.AppendVideoParams{
		RoomId: "room-1",
		Video:  room.QueueItem{Id: "v1", Url: "https://example.com/1"},
	}))
	require.ErrorIs(t, r.AppendVideo(ctx, &room.AppendVideoParams{
		RoomId: "room-1",
		Video:  room.QueueItem{Id: "v2", Url: "https://example.com/1"},
	}), room.ErrDuplicateVideoUrl)

	require.ErrorIs(t, r.RemoveVideo(ctx, &room.RemoveVideoParams{
		RoomId: "room-1",
		Url:    "https://example.com/404",
	}), room.ErrVideoNotFound)

	require.NoError(t, r.RemoveVideo(ctx, &room.RemoveVideoParams{
		RoomId: "room-1",
		Url:    "https://example.com/1",
	}))

	got, err := r.Get(ctx, "room-1")
	require.NoError(t, err)
	assert.Empty(t, got.VideoInfo.Queue)
}

func TestClone_IsolatesCallers(t *testing.T) {
	r := NewRepo()
	ctx := context.Background()

	createRoom(t, r, "room-1", "inv-1")

	got, err := r.Get(ctx, "room-1")
	require.NoError(t, err)
	got.MemberIds[0] = "tampered"
	got.VideoInfo.Queue = append(got.VideoInfo.Queue, room.QueueItem{Id: "x"})

	fresh, err := r.Get(ctx, "room-1")
	require.NoError(t, err)
	assert.Equal(t, []string{"creator"}, fresh.MemberIds)
	assert.Empty(t, fresh.VideoInfo.Queue)
}

func TestSubscribe_PublishAndCancel(t *testing.T) {
	r := NewRepo()
	ctx := context.Background()

	events, cancel := r.Subscribe()

	createRoom(t, r, "room-1", "inv-1")

	ev := <-events
	assert.Equal(t, room.EventRoomAdded, ev.Type)
	assert.Equal(t, "room-1", ev.RoomId)

	require.NoError(t, r.Delete(ctx, "room-1"))
	ev = <-events
	assert.Equal(t, room.EventRoomDeleted, ev.Type)

	cancel()
	_, open := <-events
	assert.False(t, open, "cancel must close the subscription channel")

	// publishing after cancel must not panic
	createRoom(t, r, "room-2", "inv-2")
}

func TestAddMember_EnforcesCapacity(t *testing.T) {
	r := NewRepo()
	ctx := context.Background()

	_, err := r.Create(ctx, &room.CreateParams{
		Id:              "room-1",
		InviteCode:      "inv-1",
		Name:            "test",
		CreatorId:       "creator",
		CreatorUsername: "alice",
		MaxRoomSize:     2,
	})
	require.NoError(t, err)

	require.NoError(t, r.AddMember(ctx, &room.AddMemberParams{RoomId: "room-1", UserId: "user-2", Username: "bob"}))

	err = r.AddMember(ctx, &room.AddMemberParams{RoomId: "room-1", UserId: "user-3", Username: "carol"})
	require.ErrorIs(t, err, room.ErrRoomFull)

	// re-adding an existing member at capacity stays a no-op
	require.NoError(t, r.AddMember(ctx, &room.AddMemberParams{RoomId: "room-1", UserId: "user-2", Username: "bob"}))

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			r.AddMember(ctx, &room.AddMemberParams{
				RoomId:   "room-1",
				UserId:   fmt.Sprintf("racer-%d", n),
				Username: "racer",
			})
		}(i)
	}
	wg.Wait()

	got, err := r.Get(ctx, "room-1")
	require.NoError(t, err)
	assert.Len(t, got.MemberIds, 2, "concurrent adds must never exceed the limit")
}
