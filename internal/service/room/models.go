package room

import (
	"time"

	"github.com/roomcast/server/internal/repository/room"
)

type Member struct {
	Id       string `json:"id"`
	Username string `json:"username"`
	Color    string `json:"color"`
	IsAdmin  bool   `json:"is_admin"`
}

type Room struct {
	Id          string         `json:"id"`
	Name        string         `json:"name"`
	InviteCode  string         `json:"invite_code"`
	Host        string         `json:"host"`
	Members     []Member       `json:"members"`
	VideoInfo   room.VideoInfo `json:"video_info"`
	MaxRoomSize int            `json:"max_room_size"`
	HasPasscode bool           `json:"has_passcode"`
	Private     bool           `json:"private"`
	CreatedAt   time.Time      `json:"created_at"`
}

// RoomListItem is the public-room feed entry.
type RoomListItem struct {
	Id              string `json:"id"`
	Name            string `json:"name"`
	MemberCount     int    `json:"member_count"`
	MaxRoomSize     int    `json:"max_room_size"`
	HasPasscode     bool   `json:"has_passcode"`
	CurrentVideoUrl string `json:"current_video_url"`
}

type UserListItem struct {
	Id       string `json:"id"`
	Username string `json:"username"`
	RoomId   string `json:"room_id"`
	Color    string `json:"color"`
	IsAdmin  bool   `json:"is_admin"`
}

type Message struct {
	Id        string `json:"id"`
	UserId    string `json:"user_id"`
	Username  string `json:"username"`
	Color     string `json:"color"`
	IsAdmin   bool   `json:"is_admin"`
	Content   string `json:"content"`
	Timestamp int64  `json:"timestamp"`
}

// PlayerSnapshot is the host's live player state, relayed wholesale.
type PlayerSnapshot struct {
	IsPlaying   bool    `json:"is_playing"`
	VideoUrl    string  `json:"video_url"`
	ElapsedTime float64 `json:"elapsed_time"`
	Timestamp   int64   `json:"timestamp"`
}

type Stats struct {
	Rooms       int `json:"rooms"`
	Users       int `json:"users"`
	Connections int `json:"connections"`
}
