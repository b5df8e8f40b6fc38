package inmemory

import (
	"context"
	"sync"
	"time"

	"golang.org/x/exp/slices"

	"github.com/roomcast/server/internal/repository/room"
)

type repo struct {
	rooms map[string]room.Room
	mu    sync.RWMutex

	subscribers map[int]chan room.Event
	nextSubId   int
	subMu       sync.Mutex
}

func NewRepo() *repo {
	return &repo{
		rooms:       make(map[string]room.Room),
		subscribers: make(map[int]chan room.Event),
	}
}

func (r *repo) Create(_ context.Context, params *room.CreateParams) (room.Room, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.rooms[params.Id]; ok {
		return room.Room{}, room.ErrAlreadyExists
	}
	for _, existing := range r.rooms {
		if existing.InviteCode == params.InviteCode {
			return room.Room{}, room.ErrAlreadyExists
		}
	}

	created := room.Room{
		Id:         params.Id,
		Name:       params.Name,
		InviteCode: params.InviteCode,
		Host:       params.CreatorId,
		MemberIds:  []string{params.CreatorId},
		PreviouslyConnected: []room.MemberRef{
			{UserId: params.CreatorId, Username: params.CreatorUsername},
		},
		VideoInfo: room.VideoInfo{
			CurrentQueueIndex: -1,
			Queue:             []room.QueueItem{},
		},
		MaxRoomSize: params.MaxRoomSize,
		CreatedAt:   time.Now(),
	}
	r.rooms[params.Id] = created

	r.publish(room.Event{Type: room.EventRoomAdded, RoomId: params.Id})

	return clone(created), nil
}

func (r *repo) Get(_ context.Context, roomId string) (room.Room, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	existing, ok := r.rooms[roomId]
	if !ok {
		return room.Room{}, room.ErrNotFound
	}

	return clone(existing), nil
}

func (r *repo) Has(_ context.Context, roomId string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, ok := r.rooms[roomId]
	return ok
}

// GetByInviteCode is a linear scan over live rooms, acceptable at the
// expected room counts.
func (r *repo) GetByInviteCode(_ context.Context, inviteCode string) (room.Room, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, existing := range r.rooms {
		if existing.InviteCode == inviteCode {
			return clone(existing), nil
		}
	}

	return room.Room{}, room.ErrNotFound
}

func (r *repo) Delete(_ context.Context, roomId string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.rooms[roomId]; !ok {
		return room.ErrNotFound
	}

	delete(r.rooms, roomId)

	r.publish(room.Event{Type: room.EventRoomDeleted, RoomId: roomId})

	return nil
}

func (r *repo) Clear(_ context.Context) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.rooms = make(map[string]room.Room)

	r.publish(room.Event{Type: room.EventRoomsCleared})
}

func (r *repo) Count(_ context.Context) int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.rooms)
}

func (r *repo) List(_ context.Context) []room.Room {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rooms := make([]room.Room, 0, len(r.rooms))
	for _, existing := range r.rooms {
		rooms = append(rooms, clone(existing))
	}

	return rooms
}

// AddMember appends the user to the room's membership. The capacity check
// runs under the same lock as the append so concurrent joins cannot race a
// stale read past the limit. Adding an existing member is a no-op and never
// bounces, even at capacity.
func (r *repo) AddMember(_ context.Context, params *room.AddMemberParams) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.rooms[params.RoomId]
	if !ok {
		return room.ErrNotFound
	}

	if !slices.Contains(existing.MemberIds, params.UserId) {
		if existing.MaxRoomSize > 0 && len(existing.MemberIds) >= existing.MaxRoomSize {
			return room.ErrRoomFull
		}
		existing.MemberIds = append(existing.MemberIds, params.UserId)
	}

	known := slices.ContainsFunc(existing.PreviouslyConnected, func(ref room.MemberRef) bool {
		return ref.UserId == params.UserId
	})
	if !known {
		existing.PreviouslyConnected = append(existing.PreviouslyConnected, room.MemberRef{
			UserId:   params.UserId,
			Username: params.Username,
		})
	}

	r.rooms[params.RoomId] = existing

	r.publish(room.Event{Type: room.EventRoomUpdated, RoomId: params.RoomId})

	return nil
}

func (r *repo) RemoveMember(_ context.Context, params *room.RemoveMemberParams) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.rooms[params.RoomId]
	if !ok {
		return room.ErrNotFound
	}

	idx := slices.Index(existing.MemberIds, params.UserId)
	if idx < 0 {
		return room.ErrMemberNotFound
	}

	existing.MemberIds = append(existing.MemberIds[:idx], existing.MemberIds[idx+1:]...)
	r.rooms[params.RoomId] = existing

	r.publish(room.Event{Type: room.EventRoomUpdated, RoomId: params.RoomId})

	return nil
}

func (r *repo) SetHost(_ context.Context, roomId, userId string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.rooms[roomId]
	if !ok {
		return room.ErrNotFound
	}

	existing.Host = userId
	r.rooms[roomId] = existing

	r.publish(room.Event{Type: room.EventRoomUpdated, RoomId: roomId})

	return nil
}

func (r *repo) GetPreviouslyConnected(_ context.Context, roomId, userId string) (room.MemberRef, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	existing, ok := r.rooms[roomId]
	if !ok {
		return room.MemberRef{}, room.ErrNotFound
	}

	for _, ref := range existing.PreviouslyConnected {
		if ref.UserId == userId {
			return ref, nil
		}
	}

	return room.MemberRef{}, room.ErrMemberNotFound
}

func (r *repo) UpdateVideoInfo(_ context.Context, params *room.UpdateVideoInfoParams) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.rooms[params.RoomId]
	if !ok {
		return room.ErrNotFound
	}

	existing.VideoInfo.CurrentVideoUrl = params.CurrentVideoUrl
	existing.VideoInfo.CurrentQueueIndex = params.CurrentQueueIndex
	r.rooms[params.RoomId] = existing

	r.publish(room.Event{Type: room.EventRoomUpdated, RoomId: params.RoomId})

	return nil
}

func (r *repo) AppendVideo(_ context.Context, params *room.AppendVideoParams) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.rooms[params.RoomId]
	if !ok {
		return room.ErrNotFound
	}

	duplicate := slices.ContainsFunc(existing.VideoInfo.Queue, func(item room.QueueItem) bool {
		return item.Url == params.Video.Url
	})
	if duplicate {
		return room.ErrDuplicateVideoUrl
	}

	existing.VideoInfo.Queue = append(existing.VideoInfo.Queue, params.Video)
	r.rooms[params.RoomId] = existing

	r.publish(room.Event{Type: room.EventRoomUpdated, RoomId: params.RoomId})

	return nil
}

func (r *repo) RemoveVideo(_ context.Context, params *room.RemoveVideoParams) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.rooms[params.RoomId]
	if !ok {
		return room.ErrNotFound
	}

	before := len(existing.VideoInfo.Queue)
	existing.VideoInfo.Queue = slices.DeleteFunc(existing.VideoInfo.Queue, func(item room.QueueItem) bool {
		return item.Url == params.Url
	})
	if len(existing.VideoInfo.Queue) == before {
		return room.ErrVideoNotFound
	}

	r.rooms[params.RoomId] = existing

	r.publish(room.Event{Type: room.EventRoomUpdated, RoomId: params.RoomId})

	return nil
}

func (r *repo) SetQueue(_ context.Context, params *room.SetQueueParams) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.rooms[params.RoomId]
	if !ok {
		return room.ErrNotFound
	}

	existing.VideoInfo.Queue = slices.Clone(params.Queue)
	r.rooms[params.RoomId] = existing

	r.publish(room.Event{Type: room.EventRoomUpdated, RoomId: params.RoomId})

	return nil
}

func (r *repo) UpdateSettings(_ context.Context, params *room.UpdateSettingsParams) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.rooms[params.RoomId]
	if !ok {
		return room.ErrNotFound
	}

	if params.MaxRoomSize != nil {
		existing.MaxRoomSize = *params.MaxRoomSize
	}
	if params.PasscodeSet {
		existing.PasscodeHash = params.PasscodeHash
	}
	if params.Private != nil {
		existing.Private = *params.Private
	}

	r.rooms[params.RoomId] = existing

	r.publish(room.Event{Type: room.EventRoomUpdated, RoomId: params.RoomId})

	return nil
}

// Subscribe registers a lifecycle event listener. The returned cancel func
// must be called to release it. Events are dropped for subscribers that
// fall behind; the feed always re-reads the full room list anyway.
func (r *repo) Subscribe() (<-chan room.Event, func()) {
	r.subMu.Lock()
	defer r.subMu.Unlock()

	id := r.nextSubId
	r.nextSubId++

	ch := make(chan room.Event, 16)
	r.subscribers[id] = ch

	cancel := func() {
		r.subMu.Lock()
		defer r.subMu.Unlock()

		if _, ok := r.subscribers[id]; ok {
			delete(r.subscribers, id)
			close(ch)
		}
	}

	return ch, cancel
}

func (r *repo) publish(event room.Event) {
	r.subMu.Lock()
	defer r.subMu.Unlock()

	for _, ch := range r.subscribers {
		select {
		case ch <- event:
		default:
		}
	}
}

func clone(src room.Room) room.Room {
	dst := src
	dst.MemberIds = slices.Clone(src.MemberIds)
	dst.PreviouslyConnected = slices.Clone(src.PreviouslyConnected)
	dst.VideoInfo.Queue = slices.Clone(src.VideoInfo.Queue)
	dst.PasscodeHash = slices.Clone(src.PasscodeHash)

	return dst
}
