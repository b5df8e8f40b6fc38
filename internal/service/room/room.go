package room

import (
	"context"
	"errors"
	"strings"

	"github.com/gorilla/websocket"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/exp/slices"

	"github.com/roomcast/server/internal/repository/room"
	"github.com/roomcast/server/internal/repository/user"
)

const createRoomAttempts = 5

type CheckRoomExistsParams struct {
	RoomId string
}

// CheckRoomExists returns the room snapshot or nil when no such room lives.
func (s *service) CheckRoomExists(ctx context.Context, params *CheckRoomExistsParams) (*Room, error) {
	r, err := s.roomRepo.Get(ctx, params.RoomId)
	if err != nil {
		return nil, nil
	}

	snapshot := s.getRoomSnapshot(ctx, r)

	return &snapshot, nil
}

type CreateRoomParams struct {
	SenderId     string
	ConnectionId string
	IsAdmin      bool
	Username     string
	RoomName     string
}

type CreateRoomResponse struct {
	Room Room
}

func (s *service) CreateRoom(ctx context.Context, params *CreateRoomParams) (CreateRoomResponse, error) {
	name := strings.TrimSpace(params.RoomName)
	if name == "" {
		return CreateRoomResponse{}, ErrEmptyRoomName
	}

	var created room.Room
	var err error
	for attempt := 0; attempt < createRoomAttempts; attempt++ {
		created, err = s.roomRepo.Create(ctx, &room.CreateParams{
			Id:              s.generator.GenerateRandomString(roomIdLength),
			InviteCode:      s.generator.GenerateRandomString(inviteCodeLength),
			Name:            name,
			CreatorId:       params.SenderId,
			CreatorUsername: params.Username,
			MaxRoomSize:     s.defaultRoomSize,
		})
		if err == nil {
			break
		}
		if !errors.Is(err, room.ErrAlreadyExists) {
			return CreateRoomResponse{}, err
		}
	}
	if err != nil {
		return CreateRoomResponse{}, err
	}

	if _, err := s.userRepo.CreateOrUpdate(ctx, &user.CreateOrUpdateParams{
		Id:           params.SenderId,
		Username:     params.Username,
		RoomId:       created.Id,
		ConnectionId: params.ConnectionId,
		Color:        s.allocateColor(ctx, created, params.SenderId),
		IsAdmin:      params.IsAdmin,
	}); err != nil {
		return CreateRoomResponse{}, err
	}

	s.cleaner.EnsureRunning()
	s.syncGauges(ctx)

	s.logger.InfoContext(ctx, "room created", "room_id", created.Id, "host", params.SenderId)

	return CreateRoomResponse{Room: s.getRoomSnapshot(ctx, created)}, nil
}

type JoinRoomParams struct {
	SenderId     string
	ConnectionId string
	IsAdmin      bool
	Username     string
	RoomId       string
	Passcode     string
}

type JoinRoomResponse struct {
	Room         Room
	JoinedMember Member
	Conns        []*websocket.Conn
}

func (s *service) JoinRoom(ctx context.Context, params *JoinRoomParams) (JoinRoomResponse, error) {
	r, err := s.roomRepo.Get(ctx, params.RoomId)
	if err != nil {
		return JoinRoomResponse{}, ErrRoomNotFound
	}

	alreadyMember := slices.Contains(r.MemberIds, params.SenderId)
	if !alreadyMember && len(r.MemberIds) >= r.MaxRoomSize {
		return JoinRoomResponse{}, ErrRoomFull
	}

	if len(r.PasscodeHash) > 0 {
		if bcrypt.CompareHashAndPassword(r.PasscodeHash, []byte(params.Passcode)) != nil {
			return JoinRoomResponse{}, ErrWrongPasscode
		}
	}

	joined, err := s.addToRoom(ctx, r, params.SenderId, params.Username, params.ConnectionId, params.IsAdmin)
	if err != nil {
		return JoinRoomResponse{}, err
	}

	r, err = s.roomRepo.Get(ctx, r.Id)
	if err != nil {
		return JoinRoomResponse{}, ErrRoomNotFound
	}

	return JoinRoomResponse{
		Room:         s.getRoomSnapshot(ctx, r),
		JoinedMember: joined,
		Conns:        s.getConns(r),
	}, nil
}

type JoinRoomByInviteParams struct {
	SenderId     string
	ConnectionId string
	IsAdmin      bool
	Username     string
	InviteCode   string
	Passcode     string
}

type JoinRoomByInviteResponse struct {
	RoomId       string
	Room         Room
	JoinedMember Member
	Conns        []*websocket.Conn
}

func (s *service) JoinRoomByInvite(ctx context.Context, params *JoinRoomByInviteParams) (JoinRoomByInviteResponse, error) {
	r, err := s.roomRepo.GetByInviteCode(ctx, params.InviteCode)
	if err != nil {
		return JoinRoomByInviteResponse{}, ErrRoomNotFound
	}

	joinResp, err := s.JoinRoom(ctx, &JoinRoomParams{
		SenderId:     params.SenderId,
		ConnectionId: params.ConnectionId,
		IsAdmin:      params.IsAdmin,
		Username:     params.Username,
		RoomId:       r.Id,
		Passcode:     params.Passcode,
	})
	if err != nil {
		return JoinRoomByInviteResponse{}, err
	}

	return JoinRoomByInviteResponse{
		RoomId:       r.Id,
		Room:         joinResp.Room,
		JoinedMember: joinResp.JoinedMember,
		Conns:        joinResp.Conns,
	}, nil
}

type ReconnectUserParams struct {
	UserId       string
	ConnectionId string
	IsAdmin      bool
	RoomId       string
}

type ReconnectUserResponse struct {
	Room              Room
	ReconnectedMember Member
	Conns             []*websocket.Conn
}

// ReconnectUser re-binds a returning user without a passcode check; the
// previously-connected log is the authorization. Unknown user ids are
// rejected without any mutation.
func (s *service) ReconnectUser(ctx context.Context, params *ReconnectUserParams) (ReconnectUserResponse, error) {
	r, err := s.roomRepo.Get(ctx, params.RoomId)
	if err != nil {
		return ReconnectUserResponse{}, ErrRoomNotFound
	}

	ref, err := s.roomRepo.GetPreviouslyConnected(ctx, r.Id, params.UserId)
	if err != nil {
		return ReconnectUserResponse{}, ErrReconnectDenied
	}

	joined, err := s.addToRoom(ctx, r, params.UserId, ref.Username, params.ConnectionId, params.IsAdmin)
	if err != nil {
		return ReconnectUserResponse{}, err
	}

	r, err = s.roomRepo.Get(ctx, r.Id)
	if err != nil {
		return ReconnectUserResponse{}, ErrRoomNotFound
	}

	s.logger.InfoContext(ctx, "user reconnected", "room_id", r.Id, "user_id", params.UserId)

	return ReconnectUserResponse{
		Room:              s.getRoomSnapshot(ctx, r),
		ReconnectedMember: joined,
		Conns:             s.getConns(r),
	}, nil
}

// addToRoom is the join path shared by JOIN_ROOM, JOIN_ROOM_BY_INVITE and
// RECONNECT_USER: add membership idempotently, upsert the user record,
// claim host if the room was empty, and cancel any pending deletion timer.
func (s *service) addToRoom(ctx context.Context, r room.Room, userId, username, connectionId string, isAdmin bool) (Member, error) {
	wasEmpty := len(r.MemberIds) == 0

	// Membership is claimed first: AddMember enforces the capacity limit
	// under the repository lock, so a bounced join leaves no user record
	// behind.
	if err := s.roomRepo.AddMember(ctx, &room.AddMemberParams{
		RoomId:   r.Id,
		UserId:   userId,
		Username: username,
	}); err != nil {
		if errors.Is(err, room.ErrRoomFull) {
			return Member{}, ErrRoomFull
		}
		return Member{}, ErrRoomNotFound
	}

	color := s.allocateColor(ctx, r, userId)
	if existing, err := s.userRepo.Get(ctx, userId); err == nil && existing.RoomId == r.Id {
		color = existing.Color
	}

	u, err := s.userRepo.CreateOrUpdate(ctx, &user.CreateOrUpdateParams{
		Id:           userId,
		Username:     username,
		RoomId:       r.Id,
		ConnectionId: connectionId,
		Color:        color,
		IsAdmin:      isAdmin,
	})
	if err != nil {
		return Member{}, err
	}

	if wasEmpty {
		if err := s.roomRepo.SetHost(ctx, r.Id, userId); err != nil {
			return Member{}, ErrRoomNotFound
		}
	}

	s.cleaner.Cancel(r.Id)
	s.syncGauges(ctx)

	return Member{
		Id:       u.Id,
		Username: u.Username,
		Color:    u.Color,
		IsAdmin:  u.IsAdmin,
	}, nil
}
