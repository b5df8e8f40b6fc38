package room

import (
	"context"

	"github.com/gorilla/websocket"

	"github.com/roomcast/server/internal/repository/room"
)

// DisconnectResult describes what a departure changed. Room is nil when the
// user was not in a room or the room is already gone.
type DisconnectResult struct {
	DisconnectedUser Member
	Room             *Room
	Conns            []*websocket.Conn
	NewHost          *Member
}

// disconnectUser is the routine shared by LEAVE_ROOM, KICK_USER and
// transport disconnects: announce, drop membership, arm or cancel the
// deletion timer, remove the user record, and fail host authority over to
// the oldest surviving member.
func (s *service) disconnectUser(ctx context.Context, userId string) DisconnectResult {
	u, err := s.userRepo.Get(ctx, userId)
	if err != nil {
		return DisconnectResult{}
	}

	result := DisconnectResult{
		DisconnectedUser: Member{
			Id:       u.Id,
			Username: u.Username,
			Color:    u.Color,
			IsAdmin:  u.IsAdmin,
		},
	}

	if u.RoomId != "" {
		if r, err := s.roomRepo.Get(ctx, u.RoomId); err == nil {
			wasHost := r.Host == userId

			if err := s.roomRepo.RemoveMember(ctx, &room.RemoveMemberParams{
				RoomId: r.Id,
				UserId: userId,
			}); err != nil {
				s.logger.InfoContext(ctx, "failed to remove member", "error", err)
			}

			r, err = s.roomRepo.Get(ctx, r.Id)
			if err == nil {
				if len(r.MemberIds) == 0 {
					s.cleaner.Arm(r.Id)
				} else {
					s.cleaner.Cancel(r.Id)
				}

				if wasHost && len(r.MemberIds) > 0 {
					newHostId := r.MemberIds[0]
					if err := s.roomRepo.SetHost(ctx, r.Id, newHostId); err != nil {
						s.logger.InfoContext(ctx, "failed to set host", "error", err)
					} else {
						r.Host = newHostId
						if newHost, err := s.userRepo.Get(ctx, newHostId); err == nil {
							result.NewHost = &Member{
								Id:       newHost.Id,
								Username: newHost.Username,
								Color:    newHost.Color,
								IsAdmin:  newHost.IsAdmin,
							}
						}
					}
				}

				snapshot := s.getRoomSnapshot(ctx, r)
				result.Room = &snapshot
				result.Conns = s.getConns(r)
			}
		}
	}

	if err := s.userRepo.Remove(ctx, userId); err != nil {
		s.logger.InfoContext(ctx, "failed to remove user", "error", err)
	}
	s.chatLimiters.Forget(userId)

	s.syncGauges(ctx)

	return result
}

type LeaveRoomParams struct {
	SenderId string
}

type LeaveRoomResponse struct {
	Disconnect DisconnectResult
}

// LeaveRoom unbinds the caller's room state but keeps the connection open,
// so the same socket can create or join another room afterwards.
func (s *service) LeaveRoom(ctx context.Context, params *LeaveRoomParams) (LeaveRoomResponse, error) {
	if _, err := s.userRepo.Get(ctx, params.SenderId); err != nil {
		return LeaveRoomResponse{}, ErrNotInRoom
	}

	return LeaveRoomResponse{Disconnect: s.disconnectUser(ctx, params.SenderId)}, nil
}

type KickUserParams struct {
	SenderId string
	TargetId string
}

type KickUserResponse struct {
	TargetConn *websocket.Conn
	Disconnect DisconnectResult
}

// KickUser runs the disconnect routine for the target. The target's
// connection is returned still open so the caller can deliver the kick
// notice before cutting it off. Admins cannot be kicked.
func (s *service) KickUser(ctx context.Context, params *KickUserParams) (KickUserResponse, error) {
	_, r, err := s.authorizeHost(ctx, params.SenderId)
	if err != nil {
		return KickUserResponse{}, err
	}

	target, err := s.userRepo.Get(ctx, params.TargetId)
	if err != nil || target.RoomId != r.Id {
		return KickUserResponse{}, ErrUserNotFound
	}
	if target.IsAdmin {
		return KickUserResponse{}, ErrPermissionDenied
	}

	targetConn, err := s.connRepo.RemoveByUserId(params.TargetId)
	if err != nil {
		targetConn = nil
	}

	result := s.disconnectUser(ctx, params.TargetId)

	s.syncGauges(ctx)

	return KickUserResponse{
		TargetConn: targetConn,
		Disconnect: result,
	}, nil
}

type SetHostParams struct {
	SenderId string
	TargetId string
}

type SetHostResponse struct {
	Room    Room
	NewHost Member
	Conns   []*websocket.Conn
}

func (s *service) SetHost(ctx context.Context, params *SetHostParams) (SetHostResponse, error) {
	_, r, err := s.authorizeHost(ctx, params.SenderId)
	if err != nil {
		return SetHostResponse{}, err
	}

	target, err := s.userRepo.Get(ctx, params.TargetId)
	if err != nil || target.RoomId != r.Id {
		return SetHostResponse{}, ErrUserNotFound
	}

	if err := s.roomRepo.SetHost(ctx, r.Id, params.TargetId); err != nil {
		return SetHostResponse{}, ErrRoomNotFound
	}

	r, err = s.roomRepo.Get(ctx, r.Id)
	if err != nil {
		return SetHostResponse{}, ErrRoomNotFound
	}

	return SetHostResponse{
		Room: s.getRoomSnapshot(ctx, r),
		NewHost: Member{
			Id:       target.Id,
			Username: target.Username,
			Color:    target.Color,
			IsAdmin:  target.IsAdmin,
		},
		Conns: s.getConns(r),
	}, nil
}
