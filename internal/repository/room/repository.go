package room

import (
	"errors"
	"time"
)

var (
	ErrNotFound          = errors.New("room not found")
	ErrAlreadyExists     = errors.New("room already exists")
	ErrMemberNotFound    = errors.New("member not found")
	ErrRoomFull          = errors.New("room is full")
	ErrVideoNotFound     = errors.New("video not found")
	ErrDuplicateVideoUrl = errors.New("video url already queued")
)

type QueueItem struct {
	Id        string `json:"id"`
	Title     string `json:"title"`
	Url       string `json:"url"`
	Thumbnail string `json:"thumbnail"`
}

type VideoInfo struct {
	CurrentVideoUrl   string      `json:"current_video_url"`
	CurrentQueueIndex int         `json:"current_queue_index"`
	Queue             []QueueItem `json:"queue"`
}

// MemberRef is an entry of the append-only previously-connected log used to
// authorize reconnection.
type MemberRef struct {
	UserId   string `json:"user_id"`
	Username string `json:"username"`
}

type Room struct {
	Id                  string
	Name                string
	InviteCode          string
	Host                string
	MemberIds           []string
	PreviouslyConnected []MemberRef
	VideoInfo           VideoInfo
	MaxRoomSize         int
	PasscodeHash        []byte
	Private             bool
	CreatedAt           time.Time
}

type CreateParams struct {
	Id              string
	InviteCode      string
	Name            string
	CreatorId       string
	CreatorUsername string
	MaxRoomSize     int
}

type AddMemberParams struct {
	RoomId   string
	UserId   string
	Username string
}

type RemoveMemberParams struct {
	RoomId string
	UserId string
}

type UpdateVideoInfoParams struct {
	RoomId            string
	CurrentVideoUrl   string
	CurrentQueueIndex int
}

type AppendVideoParams struct {
	RoomId string
	Video  QueueItem
}

type RemoveVideoParams struct {
	RoomId string
	Url    string
}

type SetQueueParams struct {
	RoomId string
	Queue  []QueueItem
}

// UpdateSettingsParams carries the host-settable room options. Nil fields
// are left unchanged; an empty PasscodeHash with PasscodeSet removes the
// passcode.
type UpdateSettingsParams struct {
	RoomId       string
	MaxRoomSize  *int
	PasscodeSet  bool
	PasscodeHash []byte
	Private      *bool
}

type EventType string

const (
	EventRoomAdded    EventType = "room:added"
	EventRoomUpdated  EventType = "room:updated"
	EventRoomDeleted  EventType = "room:deleted"
	EventRoomsCleared EventType = "rooms:cleared"
)

// Event is a room lifecycle notification consumed by the public-room feed.
type Event struct {
	Type   EventType
	RoomId string
}
