package room

import (
	"context"
	"errors"

	"github.com/gorilla/websocket"

	"github.com/roomcast/server/internal/metrics"
	"github.com/roomcast/server/internal/repository/room"
	"github.com/roomcast/server/internal/repository/user"
)

// senderRoom resolves the sender's user record and current room.
func (s *service) senderRoom(ctx context.Context, senderId string) (user.User, room.Room, error) {
	sender, err := s.userRepo.Get(ctx, senderId)
	if err != nil {
		return user.User{}, room.Room{}, ErrNotInRoom
	}
	if sender.RoomId == "" {
		return user.User{}, room.Room{}, ErrNotInRoom
	}

	r, err := s.roomRepo.Get(ctx, sender.RoomId)
	if err != nil {
		return user.User{}, room.Room{}, ErrRoomNotFound
	}

	return sender, r, nil
}

// authorizeHost applies the uniform host-or-admin rule for control
// operations. Callers treat ErrPermissionDenied as a silent drop.
func (s *service) authorizeHost(ctx context.Context, senderId string) (user.User, room.Room, error) {
	sender, r, err := s.senderRoom(ctx, senderId)
	if err != nil {
		return user.User{}, room.Room{}, err
	}

	if r.Host != senderId && !sender.IsAdmin {
		return user.User{}, room.Room{}, ErrPermissionDenied
	}

	return sender, r, nil
}

func (s *service) getMembers(ctx context.Context, r room.Room) []Member {
	members := make([]Member, 0, len(r.MemberIds))
	for _, memberId := range r.MemberIds {
		u, err := s.userRepo.Get(ctx, memberId)
		if err != nil {
			continue
		}

		members = append(members, Member{
			Id:       u.Id,
			Username: u.Username,
			Color:    u.Color,
			IsAdmin:  u.IsAdmin,
		})
	}

	return members
}

func (s *service) getRoomSnapshot(ctx context.Context, r room.Room) Room {
	return Room{
		Id:          r.Id,
		Name:        r.Name,
		InviteCode:  r.InviteCode,
		Host:        r.Host,
		Members:     s.getMembers(ctx, r),
		VideoInfo:   r.VideoInfo,
		MaxRoomSize: r.MaxRoomSize,
		HasPasscode: len(r.PasscodeHash) > 0,
		Private:     r.Private,
		CreatedAt:   r.CreatedAt,
	}
}

func (s *service) getConns(r room.Room) []*websocket.Conn {
	conns := make([]*websocket.Conn, 0, len(r.MemberIds))
	for _, memberId := range r.MemberIds {
		conn, err := s.connRepo.GetConn(memberId)
		if err != nil {
			continue
		}

		conns = append(conns, conn)
	}

	return conns
}

func (s *service) getConnsExcept(r room.Room, excludedId string) []*websocket.Conn {
	conns := make([]*websocket.Conn, 0, len(r.MemberIds))
	for _, memberId := range r.MemberIds {
		if memberId == excludedId {
			continue
		}

		conn, err := s.connRepo.GetConn(memberId)
		if err != nil {
			continue
		}

		conns = append(conns, conn)
	}

	return conns
}

func (s *service) syncGauges(ctx context.Context) {
	metrics.Rooms.Set(float64(s.roomRepo.Count(ctx)))
	metrics.Users.Set(float64(s.userRepo.Count(ctx)))
	metrics.WsConnections.Set(float64(s.connRepo.Count()))
}

// IsSilentError reports whether an error belongs to the fail-closed,
// fail-quiet class that must not produce an error reply.
func IsSilentError(err error) bool {
	return errors.Is(err, ErrPermissionDenied)
}
