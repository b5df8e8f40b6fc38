package room

import (
	"context"
	"crypto/subtle"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

type RegisterConnectionParams struct {
	Conn   *websocket.Conn
	UserId string
	Secret string
}

type RegisterConnectionResponse struct {
	ConnectionId string
	IsAdmin      bool
}

// RegisterConnection binds a freshly upgraded connection to the
// client-supplied persistent user id. A user id that is already bound to a
// live connection is a session-takeover attempt and is rejected; the caller
// terminates the new connection.
func (s *service) RegisterConnection(ctx context.Context, params *RegisterConnectionParams) (RegisterConnectionResponse, error) {
	if err := s.connRepo.Add(params.Conn, params.UserId); err != nil {
		return RegisterConnectionResponse{}, ErrSessionConflict
	}

	isAdmin := s.secret != "" &&
		subtle.ConstantTimeCompare([]byte(params.Secret), []byte(s.secret)) == 1
	if isAdmin {
		s.logger.InfoContext(ctx, "admin connection granted", "user_id", params.UserId)
	}

	s.syncGauges(ctx)

	return RegisterConnectionResponse{
		ConnectionId: uuid.NewString(),
		IsAdmin:      isAdmin,
	}, nil
}

type DropConnectionResponse struct {
	Disconnect DisconnectResult
}

// DropConnection runs the shared disconnect routine when the transport
// closes. It is a no-op for connections that never bound a user or whose
// user already left.
func (s *service) DropConnection(ctx context.Context, conn *websocket.Conn) (DropConnectionResponse, error) {
	userId, err := s.connRepo.RemoveByConn(conn)
	if err != nil {
		s.syncGauges(ctx)
		return DropConnectionResponse{}, nil
	}

	result := s.disconnectUser(ctx, userId)

	s.syncGauges(ctx)

	return DropConnectionResponse{Disconnect: result}, nil
}
