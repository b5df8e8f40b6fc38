package room

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/gorilla/websocket"

	"github.com/roomcast/server/internal/repository/room"
	"github.com/roomcast/server/internal/repository/user"
	"github.com/roomcast/server/pkg/randstr"
)

var (
	ErrPermissionDenied = errors.New("permission denied")
	ErrRoomNotFound     = errors.New("room not found")
	ErrUserNotFound     = errors.New("user not found")
	ErrNotInRoom        = errors.New("user is not in a room")
	ErrRoomFull         = errors.New("room is full")
	ErrWrongPasscode    = errors.New("wrong passcode")
	ErrEmptyRoomName    = errors.New("room name is empty")
	ErrSessionConflict  = errors.New("user id is already connected")
	ErrReconnectDenied  = errors.New("not authorized to reconnect")
	ErrRateLimited      = errors.New("too many messages")
	ErrDuplicateVideo   = errors.New("video is already in the queue")
	ErrVideoNotFound    = errors.New("video not found in queue")
	ErrEmptyQueue       = errors.New("queue is empty")
	ErrHostTimeout      = errors.New("host did not answer in time")
	ErrHostDisconnected = errors.New("host is not connected")
	ErrUnknownRequestId = errors.New("unknown snapshot request id")
)

const (
	roomIdLength     = 6
	inviteCodeLength = 5
)

type iRoomRepo interface {
	Create(context.Context, *room.CreateParams) (room.Room, error)
	Get(context.Context, string) (room.Room, error)
	Has(context.Context, string) bool
	GetByInviteCode(context.Context, string) (room.Room, error)
	Delete(context.Context, string) error
	Clear(context.Context)
	Count(context.Context) int
	List(context.Context) []room.Room
	AddMember(context.Context, *room.AddMemberParams) error
	RemoveMember(context.Context, *room.RemoveMemberParams) error
	SetHost(ctx context.Context, roomId, userId string) error
	GetPreviouslyConnected(ctx context.Context, roomId, userId string) (room.MemberRef, error)
	UpdateVideoInfo(context.Context, *room.UpdateVideoInfoParams) error
	AppendVideo(context.Context, *room.AppendVideoParams) error
	RemoveVideo(context.Context, *room.RemoveVideoParams) error
	SetQueue(context.Context, *room.SetQueueParams) error
	UpdateSettings(context.Context, *room.UpdateSettingsParams) error
	Subscribe() (<-chan room.Event, func())
}

type iUserRepo interface {
	CreateOrUpdate(context.Context, *user.CreateOrUpdateParams) (user.User, error)
	Get(context.Context, string) (user.User, error)
	Remove(context.Context, string) error
	Count(context.Context) int
	List(context.Context) []user.User
}

type iConnRepo interface {
	Add(conn *websocket.Conn, userId string) error
	RemoveByUserId(userId string) (*websocket.Conn, error)
	RemoveByConn(conn *websocket.Conn) (string, error)
	GetConn(userId string) (*websocket.Conn, error)
	GetUserId(conn *websocket.Conn) (string, error)
	Count() int
}

type iGenerator interface {
	GenerateRandomString(length int) string
}

type Config struct {
	Secret          string
	DefaultRoomSize int
	RoomSizeCap     int
	CleanupInterval time.Duration
	GracePeriod     time.Duration
	ProbeTimeout    time.Duration
}

type service struct {
	roomRepo  iRoomRepo
	userRepo  iUserRepo
	connRepo  iConnRepo
	generator iGenerator
	logger    *slog.Logger

	secret          string
	defaultRoomSize int
	roomSizeCap     int

	cleaner      *roomCleaner
	probes       *snapshotProbes
	chatLimiters *chatLimiters
}

func NewService(roomRepo iRoomRepo, userRepo iUserRepo, connRepo iConnRepo, cfg *Config, logger *slog.Logger) *service {
	s := service{
		roomRepo:        roomRepo,
		userRepo:        userRepo,
		connRepo:        connRepo,
		logger:          logger,
		secret:          cfg.Secret,
		defaultRoomSize: cfg.DefaultRoomSize,
		roomSizeCap:     cfg.RoomSizeCap,
	}

	letterBytes := []byte("abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789-_")
	s.generator = randstr.New(letterBytes)
	s.probes = newSnapshotProbes(cfg.ProbeTimeout)
	s.chatLimiters = newChatLimiters()
	s.cleaner = newRoomCleaner(cfg.CleanupInterval, cfg.GracePeriod, s.sweepIdleRooms, s.deleteIfEmpty, logger)

	return &s
}

// Close stops background timers. Used on shutdown and in tests.
func (s *service) Close() {
	s.cleaner.StopAll()
	s.chatLimiters.Stop()
}

// sweepIdleRooms deletes every room with zero members and reports how many
// rooms remain, so the cleaner can stop itself once the registry is empty.
func (s *service) sweepIdleRooms() int {
	ctx := context.Background()

	for _, r := range s.roomRepo.List(ctx) {
		if len(r.MemberIds) == 0 {
			if err := s.roomRepo.Delete(ctx, r.Id); err == nil {
				s.logger.InfoContext(ctx, "swept idle room", "room_id", r.Id)
			}
		}
	}

	return s.roomRepo.Count(ctx)
}

// deleteIfEmpty is the grace-timer callback. A join that happened after the
// timer was armed but before it fired leaves the room untouched.
func (s *service) deleteIfEmpty(roomId string) {
	ctx := context.Background()

	r, err := s.roomRepo.Get(ctx, roomId)
	if err != nil {
		return
	}
	if len(r.MemberIds) > 0 {
		return
	}

	if err := s.roomRepo.Delete(ctx, roomId); err == nil {
		s.logger.InfoContext(ctx, "deleted room after grace period", "room_id", roomId)
	}
}
