package user

import (
	"errors"
	"time"
)

var ErrNotFound = errors.New("user not found")

type User struct {
	Id           string
	Username     string
	RoomId       string
	ConnectionId string
	Color        string
	IsAdmin      bool
	CreatedAt    time.Time
}

type CreateOrUpdateParams struct {
	Id           string
	Username     string
	RoomId       string
	ConnectionId string
	Color        string
	IsAdmin      bool
}
