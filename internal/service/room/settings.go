package room

import (
	"context"

	"github.com/gorilla/websocket"
	"golang.org/x/crypto/bcrypt"

	"github.com/roomcast/server/internal/repository/room"
)

type ChangeSettingsParams struct {
	SenderId    string
	MaxRoomSize *int
	Passcode    *string
	Private     *bool
}

type ChangeSettingsResponse struct {
	Room  Room
	Conns []*websocket.Conn
}

// ChangeSettings applies host-settable room options. A max room size above
// the cap is ignored rather than rejected; an empty passcode removes the
// passcode, any other value is stored as a bcrypt hash.
func (s *service) ChangeSettings(ctx context.Context, params *ChangeSettingsParams) (ChangeSettingsResponse, error) {
	_, r, err := s.authorizeHost(ctx, params.SenderId)
	if err != nil {
		return ChangeSettingsResponse{}, err
	}

	updateParams := room.UpdateSettingsParams{
		RoomId:  r.Id,
		Private: params.Private,
	}

	if params.MaxRoomSize != nil && *params.MaxRoomSize >= 1 && *params.MaxRoomSize <= s.roomSizeCap {
		updateParams.MaxRoomSize = params.MaxRoomSize
	}

	if params.Passcode != nil {
		updateParams.PasscodeSet = true
		if *params.Passcode != "" {
			hash, err := bcrypt.GenerateFromPassword([]byte(*params.Passcode), bcrypt.DefaultCost)
			if err != nil {
				return ChangeSettingsResponse{}, err
			}
			updateParams.PasscodeHash = hash
		}
	}

	if err := s.roomRepo.UpdateSettings(ctx, &updateParams); err != nil {
		return ChangeSettingsResponse{}, ErrRoomNotFound
	}

	r, err = s.roomRepo.Get(ctx, r.Id)
	if err != nil {
		return ChangeSettingsResponse{}, ErrRoomNotFound
	}

	return ChangeSettingsResponse{
		Room:  s.getRoomSnapshot(ctx, r),
		Conns: s.getConns(r),
	}, nil
}
