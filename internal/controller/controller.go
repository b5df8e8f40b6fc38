package controller

import (
	"context"
	"crypto/subtle"
	"log/slog"
	"net/http"

	"github.com/gorilla/websocket"

	"github.com/roomcast/server/internal/repository/room"
	roomservice "github.com/roomcast/server/internal/service/room"
	"github.com/roomcast/server/pkg/validator"
	"github.com/roomcast/server/pkg/wsrouter"
)

type iRoomService interface {
	RegisterConnection(context.Context, *roomservice.RegisterConnectionParams) (roomservice.RegisterConnectionResponse, error)
	DropConnection(context.Context, *websocket.Conn) (roomservice.DropConnectionResponse, error)

	CheckRoomExists(context.Context, *roomservice.CheckRoomExistsParams) (*roomservice.Room, error)
	CreateRoom(context.Context, *roomservice.CreateRoomParams) (roomservice.CreateRoomResponse, error)
	JoinRoom(context.Context, *roomservice.JoinRoomParams) (roomservice.JoinRoomResponse, error)
	JoinRoomByInvite(context.Context, *roomservice.JoinRoomByInviteParams) (roomservice.JoinRoomByInviteResponse, error)
	ReconnectUser(context.Context, *roomservice.ReconnectUserParams) (roomservice.ReconnectUserResponse, error)
	LeaveRoom(context.Context, *roomservice.LeaveRoomParams) (roomservice.LeaveRoomResponse, error)
	KickUser(context.Context, *roomservice.KickUserParams) (roomservice.KickUserResponse, error)
	SetHost(context.Context, *roomservice.SetHostParams) (roomservice.SetHostResponse, error)

	SendMessage(context.Context, *roomservice.SendMessageParams) (roomservice.SendMessageResponse, error)

	PlayVideo(context.Context, *roomservice.PlayVideoParams) (roomservice.PlayVideoResponse, error)
	PauseVideo(context.Context, *roomservice.PauseVideoParams) (roomservice.PauseVideoResponse, error)
	SeekVideo(context.Context, *roomservice.SeekVideoParams) (roomservice.SeekVideoResponse, error)
	ReportBuffering(context.Context, *roomservice.ReportBufferingParams) (roomservice.ReportBufferingResponse, error)
	RelayTimeSync(context.Context, *roomservice.RelayTimeSyncParams) (roomservice.RelayTimeSyncResponse, error)
	EndOfVideo(context.Context, *roomservice.EndOfVideoParams) (roomservice.EndOfVideoResponse, error)
	ChangeVideo(context.Context, *roomservice.ChangeVideoParams) (roomservice.ChangeVideoResponse, error)
	GetVideoInformation(context.Context, *roomservice.GetVideoInformationParams) (roomservice.GetVideoInformationResponse, error)
	ResolvePlayerSnapshot(context.Context, *roomservice.ResolvePlayerSnapshotParams) error
	DiscardPlayerSnapshot(ctx context.Context, requestId string)
	AwaitPlayerSnapshot(context.Context, *roomservice.AwaitPlayerSnapshotParams) (roomservice.PlayerSnapshot, error)
	AwaitRoomSync(context.Context, *roomservice.AwaitRoomSyncParams) (roomservice.AwaitRoomSyncResponse, error)

	AddVideoToQueue(context.Context, *roomservice.AddVideoToQueueParams) (roomservice.AddVideoToQueueResponse, error)
	RemoveVideoFromQueue(context.Context, *roomservice.RemoveVideoFromQueueParams) (roomservice.RemoveVideoFromQueueResponse, error)
	ReorderQueue(context.Context, *roomservice.ReorderQueueParams) (roomservice.ReorderQueueResponse, error)
	ClearQueue(context.Context, *roomservice.ClearQueueParams) (roomservice.ClearQueueResponse, error)

	ChangeSettings(context.Context, *roomservice.ChangeSettingsParams) (roomservice.ChangeSettingsResponse, error)

	SubscribeRooms() (<-chan room.Event, func())
	GetPublicRooms(context.Context) []roomservice.RoomListItem
	ListRooms(context.Context) []roomservice.Room
	ListUsers(context.Context) []roomservice.UserListItem
	GetStats(context.Context) roomservice.Stats
	ClearRooms(context.Context)
}

type controller struct {
	roomService iRoomService
	upgrader    websocket.Upgrader
	validate    *validator.Validator
	wsmux       *wsrouter.WSRouter
	writers     *connWriters
	logger      *slog.Logger
	secret      string
}

func NewController(roomService iRoomService, secret string, logger *slog.Logger) *controller {
	c := controller{
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
		roomService: roomService,
		validate:    validator.NewValidator(),
		writers:     newConnWriters(),
		logger:      logger,
		secret:      secret,
	}

	c.wsmux = c.buildWSRouter()

	return &c
}

func (c controller) isAdminRequest(r *http.Request) bool {
	provided := r.Header.Get("X-Admin-Secret")

	return c.secret != "" &&
		subtle.ConstantTimeCompare([]byte(provided), []byte(c.secret)) == 1
}
