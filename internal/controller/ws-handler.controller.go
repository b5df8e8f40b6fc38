package controller

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gorilla/websocket"

	"github.com/roomcast/server/internal/repository/room"
	roomservice "github.com/roomcast/server/internal/service/room"
	"github.com/roomcast/server/pkg/wsrouter"
)

type Output struct {
	Type    string `json:"type"`
	Payload any    `json:"payload"`
}

type EmptyInput struct{}

func (c controller) buildWSRouter() *wsrouter.WSRouter {
	mux := wsrouter.New()

	mux.Use(c.wsRequestIdWSMw())
	mux.Use(c.loggerWSMw())
	mux.Use(c.metricsWSMw())
	mux.OnError(c.handleWsError)

	wsrouter.Handle(mux, "CHECK_IF_ROOM_EXISTS", c.handleCheckIfRoomExists)
	wsrouter.Handle(mux, "CREATE_ROOM", c.handleCreateRoom)
	wsrouter.Handle(mux, "JOIN_ROOM", c.handleJoinRoom)
	wsrouter.Handle(mux, "JOIN_ROOM_BY_INVITE", c.handleJoinRoomByInvite)
	wsrouter.Handle(mux, "RECONNECT_USER", c.handleReconnectUser)
	wsrouter.Handle(mux, "USER_MESSAGE", c.handleUserMessage)
	wsrouter.Handle(mux, "GET_VIDEO_INFORMATION", c.handleGetVideoInformation)
	wsrouter.Handle(mux, "PLAYER_SNAPSHOT", c.handlePlayerSnapshot)
	wsrouter.Handle(mux, "PLAY_VIDEO", c.handlePlayVideo)
	wsrouter.Handle(mux, "PAUSE_VIDEO", c.handlePauseVideo)
	wsrouter.Handle(mux, "BUFFERING_VIDEO", c.handleBufferingVideo)
	wsrouter.Handle(mux, "REWIND_VIDEO", c.handleRewindVideo)
	wsrouter.Handle(mux, "FASTFORWARD_VIDEO", c.handleFastforwardVideo)
	wsrouter.Handle(mux, "END_OF_VIDEO", c.handleEndOfVideo)
	wsrouter.Handle(mux, "CHANGE_VIDEO", c.handleChangeVideo)
	wsrouter.Handle(mux, "ADD_VIDEO_TO_QUEUE", c.handleAddVideoToQueue)
	wsrouter.Handle(mux, "REMOVE_VIDEO_FROM_QUEUE", c.handleRemoveVideoFromQueue)
	wsrouter.Handle(mux, "VIDEO_QUEUE_REORDERED", c.handleQueueReordered)
	wsrouter.Handle(mux, "VIDEO_QUEUE_CLEARED", c.handleQueueCleared)
	wsrouter.Handle(mux, "CHANGE_SETTINGS", c.handleChangeSettings)
	wsrouter.Handle(mux, "SET_HOST", c.handleSetHost)
	wsrouter.Handle(mux, "KICK_USER", c.handleKickUser)
	wsrouter.Handle(mux, "LEAVE_ROOM", c.handleLeaveRoom)

	return mux
}

type CheckIfRoomExistsInput struct {
	RoomId string `json:"room_id" validate:"required,len=6"`
}

func (c controller) handleCheckIfRoomExists(ctx context.Context, conn *websocket.Conn, input CheckIfRoomExistsInput) error {
	if err := c.checkInput(input); err != nil {
		return err
	}

	r, err := c.roomService.CheckRoomExists(ctx, &roomservice.CheckRoomExistsParams{
		RoomId: input.RoomId,
	})
	if err != nil {
		return fmt.Errorf("failed to check room: %w", err)
	}

	return c.writeToConn(ctx, conn, &Output{
		Type: "ROOM_EXISTS",
		Payload: map[string]any{
			"exists": r != nil,
			"room":   r,
		},
	})
}

type CreateRoomInput struct {
	Username string `json:"username" validate:"required,max=80"`
	RoomName string `json:"room_name" validate:"required,max=80"`
}

func (c controller) handleCreateRoom(ctx context.Context, conn *websocket.Conn, input CreateRoomInput) error {
	if err := c.checkInput(input); err != nil {
		return err
	}

	createRoomResp, err := c.roomService.CreateRoom(ctx, &roomservice.CreateRoomParams{
		SenderId:     c.getUserIdFromCtx(ctx),
		ConnectionId: c.getConnectionIdFromCtx(ctx),
		IsAdmin:      c.getIsAdminFromCtx(ctx),
		Username:     input.Username,
		RoomName:     input.RoomName,
	})
	if err != nil {
		return fmt.Errorf("failed to create room: %w", err)
	}

	return c.writeToConn(ctx, conn, &Output{
		Type: "ROOM_CREATED",
		Payload: map[string]any{
			"room": createRoomResp.Room,
		},
	})
}

type JoinRoomInput struct {
	RoomId   string `json:"room_id" validate:"required,len=6"`
	Username string `json:"username" validate:"required,max=80"`
	Passcode string `json:"passcode" validate:"max=80"`
}

func (c controller) handleJoinRoom(ctx context.Context, conn *websocket.Conn, input JoinRoomInput) error {
	if err := c.checkInput(input); err != nil {
		return err
	}

	userId := c.getUserIdFromCtx(ctx)

	joinRoomResp, err := c.roomService.JoinRoom(ctx, &roomservice.JoinRoomParams{
		SenderId:     userId,
		ConnectionId: c.getConnectionIdFromCtx(ctx),
		IsAdmin:      c.getIsAdminFromCtx(ctx),
		Username:     input.Username,
		RoomId:       input.RoomId,
		Passcode:     input.Passcode,
	})
	if err != nil {
		return fmt.Errorf("failed to join room: %w", err)
	}

	return c.announceJoin(ctx, conn, userId, joinRoomResp.Room, joinRoomResp.JoinedMember, joinRoomResp.Conns)
}

type JoinRoomByInviteInput struct {
	InviteCode string `json:"invite_code" validate:"required,len=5"`
	Username   string `json:"username" validate:"required,max=80"`
	Passcode   string `json:"passcode" validate:"max=80"`
}

func (c controller) handleJoinRoomByInvite(ctx context.Context, conn *websocket.Conn, input JoinRoomByInviteInput) error {
	if err := c.checkInput(input); err != nil {
		return err
	}

	userId := c.getUserIdFromCtx(ctx)

	joinResp, err := c.roomService.JoinRoomByInvite(ctx, &roomservice.JoinRoomByInviteParams{
		SenderId:     userId,
		ConnectionId: c.getConnectionIdFromCtx(ctx),
		IsAdmin:      c.getIsAdminFromCtx(ctx),
		Username:     input.Username,
		InviteCode:   input.InviteCode,
		Passcode:     input.Passcode,
	})
	if err != nil {
		return fmt.Errorf("failed to join room by invite: %w", err)
	}

	return c.announceJoin(ctx, conn, userId, joinResp.Room, joinResp.JoinedMember, joinResp.Conns)
}

// announceJoin confirms the join to the newcomer and tells everyone else.
func (c controller) announceJoin(ctx context.Context, conn *websocket.Conn, userId string, r roomservice.Room, joined roomservice.Member, conns []*websocket.Conn) error {
	if err := c.writeToConn(ctx, conn, &Output{
		Type: "ROOM_JOINED",
		Payload: map[string]any{
			"room": r,
			"me":   joined,
		},
	}); err != nil {
		return err
	}

	others := make([]*websocket.Conn, 0, len(conns))
	for _, memberConn := range conns {
		if memberConn != conn {
			others = append(others, memberConn)
		}
	}

	return c.broadcast(ctx, others, &Output{
		Type: "USER_JOINED",
		Payload: map[string]any{
			"user": joined,
			"room": r,
		},
	})
}

type ReconnectUserInput struct {
	RoomId string `json:"room_id" validate:"required,len=6"`
}

func (c controller) handleReconnectUser(ctx context.Context, conn *websocket.Conn, input ReconnectUserInput) error {
	if err := c.checkInput(input); err != nil {
		return err
	}

	userId := c.getUserIdFromCtx(ctx)

	reconnectResp, err := c.roomService.ReconnectUser(ctx, &roomservice.ReconnectUserParams{
		UserId:       userId,
		ConnectionId: c.getConnectionIdFromCtx(ctx),
		IsAdmin:      c.getIsAdminFromCtx(ctx),
		RoomId:       input.RoomId,
	})
	if err != nil {
		return fmt.Errorf("failed to reconnect: %w", err)
	}

	if err := c.writeToConn(ctx, conn, &Output{
		Type: "ROOM_STATE",
		Payload: map[string]any{
			"room": reconnectResp.Room,
			"me":   reconnectResp.ReconnectedMember,
		},
	}); err != nil {
		return err
	}

	others := make([]*websocket.Conn, 0, len(reconnectResp.Conns))
	for _, memberConn := range reconnectResp.Conns {
		if memberConn != conn {
			others = append(others, memberConn)
		}
	}

	return c.broadcast(ctx, others, &Output{
		Type: "USER_RECONNECTED",
		Payload: map[string]any{
			"user": reconnectResp.ReconnectedMember,
			"room": reconnectResp.Room,
		},
	})
}

type UserMessageInput struct {
	Message string `json:"message" validate:"required,max=500"`
}

func (c controller) handleUserMessage(ctx context.Context, _ *websocket.Conn, input UserMessageInput) error {
	if err := c.checkInput(input); err != nil {
		return err
	}

	sendMessageResp, err := c.roomService.SendMessage(ctx, &roomservice.SendMessageParams{
		SenderId: c.getUserIdFromCtx(ctx),
		Content:  input.Message,
	})
	if err != nil {
		return fmt.Errorf("failed to send message: %w", err)
	}

	return c.broadcast(ctx, sendMessageResp.Conns, &Output{
		Type: "NEW_MESSAGE",
		Payload: map[string]any{
			"message": sendMessageResp.Message,
		},
	})
}

func (c controller) handleGetVideoInformation(ctx context.Context, conn *websocket.Conn, _ EmptyInput) error {
	getInfoResp, err := c.roomService.GetVideoInformation(ctx, &roomservice.GetVideoInformationParams{
		SenderId: c.getUserIdFromCtx(ctx),
	})
	if err != nil {
		return fmt.Errorf("failed to get video information: %w", err)
	}

	if err := c.writeToConn(ctx, getInfoResp.HostConn, &Output{
		Type: "PLAYER_SNAPSHOT_REQUEST",
		Payload: map[string]any{
			"request_id": getInfoResp.RequestId,
		},
	}); err != nil {
		c.roomService.DiscardPlayerSnapshot(ctx, getInfoResp.RequestId)
		return err
	}

	// Awaiting inline would block this connection's read loop; the host's
	// answer arrives over its own connection, so waiting happens off-loop.
	awaitCtx := context.WithoutCancel(ctx)
	go func() {
		snapshot, err := c.roomService.AwaitPlayerSnapshot(awaitCtx, &roomservice.AwaitPlayerSnapshotParams{
			RequestId: getInfoResp.RequestId,
		})
		if err != nil {
			c.handleWsError(awaitCtx, conn, fmt.Errorf("failed to get video information: %w", err))
			return
		}

		if err := c.writeToConn(awaitCtx, conn, &Output{
			Type: "VIDEO_INFORMATION",
			Payload: map[string]any{
				"player": snapshot,
			},
		}); err != nil {
			c.logger.DebugContext(awaitCtx, "failed to write video information", "error", err)
		}
	}()

	return nil
}

type PlayerSnapshotInput struct {
	RequestId   string  `json:"request_id" validate:"required"`
	IsPlaying   bool    `json:"is_playing"`
	VideoUrl    string  `json:"video_url"`
	ElapsedTime float64 `json:"elapsed_time"`
	Timestamp   int64   `json:"timestamp"`
}

func (c controller) handlePlayerSnapshot(ctx context.Context, _ *websocket.Conn, input PlayerSnapshotInput) error {
	if err := c.checkInput(input); err != nil {
		return err
	}

	if err := c.roomService.ResolvePlayerSnapshot(ctx, &roomservice.ResolvePlayerSnapshotParams{
		SenderId:  c.getUserIdFromCtx(ctx),
		RequestId: input.RequestId,
		Snapshot: roomservice.PlayerSnapshot{
			IsPlaying:   input.IsPlaying,
			VideoUrl:    input.VideoUrl,
			ElapsedTime: input.ElapsedTime,
			Timestamp:   input.Timestamp,
		},
	}); err != nil {
		return fmt.Errorf("failed to resolve player snapshot: %w", err)
	}

	return nil
}

func (c controller) handlePlayVideo(ctx context.Context, _ *websocket.Conn, _ EmptyInput) error {
	userId := c.getUserIdFromCtx(ctx)

	playResp, err := c.roomService.PlayVideo(ctx, &roomservice.PlayVideoParams{
		SenderId: userId,
	})
	if err != nil {
		return fmt.Errorf("failed to play video: %w", err)
	}

	if err := c.broadcast(ctx, playResp.OtherConns, &Output{
		Type:    "VIDEO_PLAYED",
		Payload: nil,
	}); err != nil {
		return err
	}

	c.requestPlayerSync(ctx, playResp.HostConn, playResp.RequestId, userId)

	return nil
}

func (c controller) handlePauseVideo(ctx context.Context, _ *websocket.Conn, _ EmptyInput) error {
	pauseResp, err := c.roomService.PauseVideo(ctx, &roomservice.PauseVideoParams{
		SenderId: c.getUserIdFromCtx(ctx),
	})
	if err != nil {
		return fmt.Errorf("failed to pause video: %w", err)
	}

	return c.broadcast(ctx, pauseResp.OtherConns, &Output{
		Type:    "VIDEO_PAUSED",
		Payload: nil,
	})
}

type BufferingVideoInput struct {
	Time float64 `json:"time"`
}

// handleBufferingVideo splits on who reports: the host puts the whole room
// into a buffering notice, while an ordinary member triggers a time sync for
// everyone else.
func (c controller) handleBufferingVideo(ctx context.Context, _ *websocket.Conn, input BufferingVideoInput) error {
	userId := c.getUserIdFromCtx(ctx)

	bufferingResp, err := c.roomService.ReportBuffering(ctx, &roomservice.ReportBufferingParams{
		SenderId: userId,
		Time:     input.Time,
	})
	if err == nil {
		return c.broadcast(ctx, bufferingResp.Conns, &Output{
			Type: "MEMBER_BUFFERING",
			Payload: map[string]any{
				"username": bufferingResp.Username,
				"time":     bufferingResp.Time,
			},
		})
	}
	if !errors.Is(err, roomservice.ErrPermissionDenied) {
		return fmt.Errorf("failed to report buffering: %w", err)
	}

	timeSyncResp, err := c.roomService.RelayTimeSync(ctx, &roomservice.RelayTimeSyncParams{
		SenderId: userId,
		Time:     input.Time,
	})
	if err != nil {
		return fmt.Errorf("failed to relay time sync: %w", err)
	}

	return c.broadcast(ctx, timeSyncResp.OtherConns, &Output{
		Type: "TIME_SYNCED",
		Payload: map[string]any{
			"time": timeSyncResp.Time,
		},
	})
}

type SeekVideoInput struct {
	Time float64 `json:"time"`
}

func (c controller) handleRewindVideo(ctx context.Context, _ *websocket.Conn, input SeekVideoInput) error {
	return c.seekVideo(ctx, "VIDEO_REWOUND", input.Time)
}

func (c controller) handleFastforwardVideo(ctx context.Context, _ *websocket.Conn, input SeekVideoInput) error {
	return c.seekVideo(ctx, "VIDEO_FASTFORWARDED", input.Time)
}

func (c controller) seekVideo(ctx context.Context, eventType string, seekTime float64) error {
	seekResp, err := c.roomService.SeekVideo(ctx, &roomservice.SeekVideoParams{
		SenderId: c.getUserIdFromCtx(ctx),
		Time:     seekTime,
	})
	if err != nil {
		return fmt.Errorf("failed to seek video: %w", err)
	}

	return c.broadcast(ctx, seekResp.OtherConns, &Output{
		Type: eventType,
		Payload: map[string]any{
			"time": seekResp.Time,
		},
	})
}

func (c controller) handleEndOfVideo(ctx context.Context, _ *websocket.Conn, _ EmptyInput) error {
	endResp, err := c.roomService.EndOfVideo(ctx, &roomservice.EndOfVideoParams{
		SenderId: c.getUserIdFromCtx(ctx),
	})
	if err != nil {
		return fmt.Errorf("failed to advance video: %w", err)
	}

	return c.broadcast(ctx, endResp.Conns, &Output{
		Type: "VIDEO_ENDED",
		Payload: map[string]any{
			"video_url":   endResp.VideoUrl,
			"queue_index": endResp.QueueIndex,
		},
	})
}

type ChangeVideoInput struct {
	Url      string `json:"url" validate:"required,max=2000"`
	NewIndex *int   `json:"new_index"`
}

func (c controller) handleChangeVideo(ctx context.Context, _ *websocket.Conn, input ChangeVideoInput) error {
	if err := c.checkInput(input); err != nil {
		return err
	}

	userId := c.getUserIdFromCtx(ctx)

	changeResp, err := c.roomService.ChangeVideo(ctx, &roomservice.ChangeVideoParams{
		SenderId: userId,
		Url:      input.Url,
		NewIndex: input.NewIndex,
	})
	if err != nil {
		return fmt.Errorf("failed to change video: %w", err)
	}

	if err := c.broadcast(ctx, changeResp.OtherConns, &Output{
		Type: "VIDEO_CHANGED",
		Payload: map[string]any{
			"url":         changeResp.Url,
			"queue_index": changeResp.QueueIndex,
		},
	}); err != nil {
		return err
	}

	c.requestPlayerSync(ctx, changeResp.HostConn, changeResp.RequestId, userId)

	return nil
}

type AddVideoToQueueInput struct {
	Title     string `json:"title" validate:"max=200"`
	Url       string `json:"url" validate:"required,max=2000"`
	Thumbnail string `json:"thumbnail" validate:"max=2000"`
}

func (c controller) handleAddVideoToQueue(ctx context.Context, _ *websocket.Conn, input AddVideoToQueueInput) error {
	if err := c.checkInput(input); err != nil {
		return err
	}

	addResp, err := c.roomService.AddVideoToQueue(ctx, &roomservice.AddVideoToQueueParams{
		SenderId:  c.getUserIdFromCtx(ctx),
		Title:     input.Title,
		Url:       input.Url,
		Thumbnail: input.Thumbnail,
	})
	if err != nil {
		return fmt.Errorf("failed to add video to queue: %w", err)
	}

	return c.broadcast(ctx, addResp.OtherConns, &Output{
		Type: "QUEUE_VIDEO_ADDED",
		Payload: map[string]any{
			"added_video": addResp.AddedVideo,
			"queue":       addResp.Queue,
		},
	})
}

type RemoveVideoFromQueueInput struct {
	Url string `json:"url" validate:"required,max=2000"`
}

func (c controller) handleRemoveVideoFromQueue(ctx context.Context, _ *websocket.Conn, input RemoveVideoFromQueueInput) error {
	if err := c.checkInput(input); err != nil {
		return err
	}

	removeResp, err := c.roomService.RemoveVideoFromQueue(ctx, &roomservice.RemoveVideoFromQueueParams{
		SenderId: c.getUserIdFromCtx(ctx),
		Url:      input.Url,
	})
	if err != nil {
		return fmt.Errorf("failed to remove video from queue: %w", err)
	}

	return c.broadcast(ctx, removeResp.OtherConns, &Output{
		Type: "QUEUE_VIDEO_REMOVED",
		Payload: map[string]any{
			"removed_url": removeResp.Url,
			"queue":       removeResp.Queue,
		},
	})
}

type QueueReorderedInput struct {
	Queue []QueueItemInput `json:"queue" validate:"dive"`
}

type QueueItemInput struct {
	Id        string `json:"id"`
	Title     string `json:"title" validate:"max=200"`
	Url       string `json:"url" validate:"required,max=2000"`
	Thumbnail string `json:"thumbnail" validate:"max=2000"`
}

func (c controller) handleQueueReordered(ctx context.Context, _ *websocket.Conn, input QueueReorderedInput) error {
	if err := c.checkInput(input); err != nil {
		return err
	}

	queue := make([]room.QueueItem, 0, len(input.Queue))
	for _, item := range input.Queue {
		queue = append(queue, room.QueueItem{
			Id:        item.Id,
			Title:     item.Title,
			Url:       item.Url,
			Thumbnail: item.Thumbnail,
		})
	}

	reorderResp, err := c.roomService.ReorderQueue(ctx, &roomservice.ReorderQueueParams{
		SenderId: c.getUserIdFromCtx(ctx),
		Queue:    queue,
	})
	if err != nil {
		return fmt.Errorf("failed to reorder queue: %w", err)
	}

	return c.broadcast(ctx, reorderResp.OtherConns, &Output{
		Type: "QUEUE_REORDERED",
		Payload: map[string]any{
			"queue": reorderResp.Queue,
		},
	})
}

func (c controller) handleQueueCleared(ctx context.Context, _ *websocket.Conn, _ EmptyInput) error {
	clearResp, err := c.roomService.ClearQueue(ctx, &roomservice.ClearQueueParams{
		SenderId: c.getUserIdFromCtx(ctx),
	})
	if err != nil {
		return fmt.Errorf("failed to clear queue: %w", err)
	}

	return c.broadcast(ctx, clearResp.OtherConns, &Output{
		Type:    "QUEUE_CLEARED",
		Payload: nil,
	})
}

type ChangeSettingsInput struct {
	MaxRoomSize *int    `json:"max_room_size"`
	Passcode    *string `json:"passcode"`
	Private     *bool   `json:"private"`
}

func (c controller) handleChangeSettings(ctx context.Context, _ *websocket.Conn, input ChangeSettingsInput) error {
	if input.MaxRoomSize == nil && input.Passcode == nil && input.Private == nil {
		return fmt.Errorf("validation error: no settings provided")
	}

	settingsResp, err := c.roomService.ChangeSettings(ctx, &roomservice.ChangeSettingsParams{
		SenderId:    c.getUserIdFromCtx(ctx),
		MaxRoomSize: input.MaxRoomSize,
		Passcode:    input.Passcode,
		Private:     input.Private,
	})
	if err != nil {
		return fmt.Errorf("failed to change settings: %w", err)
	}

	return c.broadcast(ctx, settingsResp.Conns, &Output{
		Type: "SETTINGS_UPDATED",
		Payload: map[string]any{
			"room": settingsResp.Room,
		},
	})
}

type SetHostInput struct {
	UserId string `json:"user_id" validate:"required"`
}

func (c controller) handleSetHost(ctx context.Context, _ *websocket.Conn, input SetHostInput) error {
	if err := c.checkInput(input); err != nil {
		return err
	}

	setHostResp, err := c.roomService.SetHost(ctx, &roomservice.SetHostParams{
		SenderId: c.getUserIdFromCtx(ctx),
		TargetId: input.UserId,
	})
	if err != nil {
		return fmt.Errorf("failed to set host: %w", err)
	}

	return c.broadcast(ctx, setHostResp.Conns, &Output{
		Type: "HOST_CHANGED",
		Payload: map[string]any{
			"new_host": setHostResp.NewHost,
			"room":     setHostResp.Room,
		},
	})
}

type KickUserInput struct {
	UserId string `json:"user_id" validate:"required"`
}

func (c controller) handleKickUser(ctx context.Context, _ *websocket.Conn, input KickUserInput) error {
	if err := c.checkInput(input); err != nil {
		return err
	}

	kickResp, err := c.roomService.KickUser(ctx, &roomservice.KickUserParams{
		SenderId: c.getUserIdFromCtx(ctx),
		TargetId: input.UserId,
	})
	if err != nil {
		return fmt.Errorf("failed to kick user: %w", err)
	}

	// The notice goes out before the close so the client can tell a kick
	// apart from a network failure.
	if kickResp.TargetConn != nil {
		if err := c.writeToConn(ctx, kickResp.TargetConn, &Output{
			Type:    "USER_KICKED",
			Payload: nil,
		}); err != nil {
			c.logger.DebugContext(ctx, "failed to write kick notice", "error", err)
		}
		kickResp.TargetConn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(4001, "kicked"),
			time.Now().Add(5*time.Second))
		kickResp.TargetConn.Close()
	}

	c.broadcastDeparture(ctx, "USER_KICKED", kickResp.Disconnect)

	return nil
}

func (c controller) handleLeaveRoom(ctx context.Context, conn *websocket.Conn, _ EmptyInput) error {
	leaveResp, err := c.roomService.LeaveRoom(ctx, &roomservice.LeaveRoomParams{
		SenderId: c.getUserIdFromCtx(ctx),
	})
	if err != nil {
		return fmt.Errorf("failed to leave room: %w", err)
	}

	if err := c.writeToConn(ctx, conn, &Output{
		Type:    "ROOM_LEFT",
		Payload: nil,
	}); err != nil {
		c.logger.DebugContext(ctx, "failed to confirm leave", "error", err)
	}

	c.broadcastDeparture(ctx, "USER_DISCONNECTED", leaveResp.Disconnect)

	return nil
}
