package room

import (
	"context"

	"github.com/gorilla/websocket"

	"github.com/roomcast/server/internal/repository/room"
)

type PlayVideoParams struct {
	SenderId string
}

type PlayVideoResponse struct {
	OtherConns []*websocket.Conn
	HostConn   *websocket.Conn
	RequestId  string
}

// PlayVideo relays play to the rest of the room and opens a snapshot probe
// through the host so a consistency sync can follow. RequestId is empty
// when the host has no live connection.
func (s *service) PlayVideo(ctx context.Context, params *PlayVideoParams) (PlayVideoResponse, error) {
	_, r, err := s.authorizeHost(ctx, params.SenderId)
	if err != nil {
		return PlayVideoResponse{}, err
	}

	resp := PlayVideoResponse{OtherConns: s.getConnsExcept(r, params.SenderId)}

	if hostConn, err := s.connRepo.GetConn(r.Host); err == nil {
		resp.HostConn = hostConn
		resp.RequestId = s.probes.create()
	}

	return resp, nil
}

type PauseVideoParams struct {
	SenderId string
}

type PauseVideoResponse struct {
	OtherConns []*websocket.Conn
}

func (s *service) PauseVideo(ctx context.Context, params *PauseVideoParams) (PauseVideoResponse, error) {
	_, r, err := s.authorizeHost(ctx, params.SenderId)
	if err != nil {
		return PauseVideoResponse{}, err
	}

	return PauseVideoResponse{OtherConns: s.getConnsExcept(r, params.SenderId)}, nil
}

type SeekVideoParams struct {
	SenderId string
	Time     float64
}

type SeekVideoResponse struct {
	OtherConns []*websocket.Conn
	Time       float64
}

// SeekVideo covers both rewind and fast-forward: the new time is relayed to
// the rest of the room.
func (s *service) SeekVideo(ctx context.Context, params *SeekVideoParams) (SeekVideoResponse, error) {
	_, r, err := s.authorizeHost(ctx, params.SenderId)
	if err != nil {
		return SeekVideoResponse{}, err
	}

	return SeekVideoResponse{
		OtherConns: s.getConnsExcept(r, params.SenderId),
		Time:       params.Time,
	}, nil
}

type ReportBufferingParams struct {
	SenderId string
	Time     float64
}

type ReportBufferingResponse struct {
	Conns    []*websocket.Conn
	Username string
	Time     float64
}

// ReportBuffering is the host half of BUFFERING_VIDEO: the whole room gets
// a buffering status notice.
func (s *service) ReportBuffering(ctx context.Context, params *ReportBufferingParams) (ReportBufferingResponse, error) {
	sender, r, err := s.authorizeHost(ctx, params.SenderId)
	if err != nil {
		return ReportBufferingResponse{}, err
	}

	return ReportBufferingResponse{
		Conns:    s.getConns(r),
		Username: sender.Username,
		Time:     params.Time,
	}, nil
}

type RelayTimeSyncParams struct {
	SenderId string
	Time     float64
}

type RelayTimeSyncResponse struct {
	OtherConns []*websocket.Conn
	Time       float64
}

// RelayTimeSync is the non-host half of BUFFERING_VIDEO: an ordinary member
// reporting buffering triggers a time-sync plus play relay to the rest of
// the room.
func (s *service) RelayTimeSync(ctx context.Context, params *RelayTimeSyncParams) (RelayTimeSyncResponse, error) {
	_, r, err := s.senderRoom(ctx, params.SenderId)
	if err != nil {
		return RelayTimeSyncResponse{}, err
	}

	return RelayTimeSyncResponse{
		OtherConns: s.getConnsExcept(r, params.SenderId),
		Time:       params.Time,
	}, nil
}

type EndOfVideoParams struct {
	SenderId string
}

type EndOfVideoResponse struct {
	Conns      []*websocket.Conn
	VideoUrl   string
	QueueIndex int
}

// EndOfVideo advances the queue position, wrapping past the last entry back
// to the front.
func (s *service) EndOfVideo(ctx context.Context, params *EndOfVideoParams) (EndOfVideoResponse, error) {
	_, r, err := s.authorizeHost(ctx, params.SenderId)
	if err != nil {
		return EndOfVideoResponse{}, err
	}

	queue := r.VideoInfo.Queue
	if len(queue) == 0 {
		return EndOfVideoResponse{}, ErrEmptyQueue
	}

	next := r.VideoInfo.CurrentQueueIndex + 1
	if next < 0 || next >= len(queue) {
		next = 0
	}

	if err := s.roomRepo.UpdateVideoInfo(ctx, &room.UpdateVideoInfoParams{
		RoomId:            r.Id,
		CurrentVideoUrl:   queue[next].Url,
		CurrentQueueIndex: next,
	}); err != nil {
		return EndOfVideoResponse{}, ErrRoomNotFound
	}

	r, err = s.roomRepo.Get(ctx, r.Id)
	if err != nil {
		return EndOfVideoResponse{}, ErrRoomNotFound
	}

	return EndOfVideoResponse{
		Conns:      s.getConns(r),
		VideoUrl:   r.VideoInfo.CurrentVideoUrl,
		QueueIndex: r.VideoInfo.CurrentQueueIndex,
	}, nil
}

type ChangeVideoParams struct {
	SenderId string
	Url      string
	NewIndex *int
}

type ChangeVideoResponse struct {
	OtherConns []*websocket.Conn
	HostConn   *websocket.Conn
	RequestId  string
	Url        string
	QueueIndex int
}

func (s *service) ChangeVideo(ctx context.Context, params *ChangeVideoParams) (ChangeVideoResponse, error) {
	_, r, err := s.authorizeHost(ctx, params.SenderId)
	if err != nil {
		return ChangeVideoResponse{}, err
	}

	queueIndex := r.VideoInfo.CurrentQueueIndex
	if params.NewIndex != nil && *params.NewIndex >= 0 {
		queueIndex = *params.NewIndex
	}

	if err := s.roomRepo.UpdateVideoInfo(ctx, &room.UpdateVideoInfoParams{
		RoomId:            r.Id,
		CurrentVideoUrl:   params.Url,
		CurrentQueueIndex: queueIndex,
	}); err != nil {
		return ChangeVideoResponse{}, ErrRoomNotFound
	}

	resp := ChangeVideoResponse{
		OtherConns: s.getConnsExcept(r, params.SenderId),
		Url:        params.Url,
		QueueIndex: queueIndex,
	}

	if hostConn, err := s.connRepo.GetConn(r.Host); err == nil {
		resp.HostConn = hostConn
		resp.RequestId = s.probes.create()
	}

	return resp, nil
}

type GetVideoInformationParams struct {
	SenderId string
}

type GetVideoInformationResponse struct {
	HostConn  *websocket.Conn
	RequestId string
}

// GetVideoInformation opens a probe for the host's live player snapshot on
// behalf of any room member. The snapshot is only ever asked of the host.
func (s *service) GetVideoInformation(ctx context.Context, params *GetVideoInformationParams) (GetVideoInformationResponse, error) {
	_, r, err := s.senderRoom(ctx, params.SenderId)
	if err != nil {
		return GetVideoInformationResponse{}, err
	}

	hostConn, err := s.connRepo.GetConn(r.Host)
	if err != nil {
		return GetVideoInformationResponse{}, ErrHostDisconnected
	}

	return GetVideoInformationResponse{
		HostConn:  hostConn,
		RequestId: s.probes.create(),
	}, nil
}

type ResolvePlayerSnapshotParams struct {
	SenderId  string
	RequestId string
	Snapshot  PlayerSnapshot
}

// ResolvePlayerSnapshot accepts the host's answer to an open probe. Only
// the current host of the responder's room may resolve one.
func (s *service) ResolvePlayerSnapshot(ctx context.Context, params *ResolvePlayerSnapshotParams) error {
	_, r, err := s.senderRoom(ctx, params.SenderId)
	if err != nil {
		return err
	}
	if r.Host != params.SenderId {
		return ErrPermissionDenied
	}

	if !s.probes.resolve(params.RequestId, params.Snapshot) {
		return ErrUnknownRequestId
	}

	return nil
}

// DiscardPlayerSnapshot drops an open probe that can no longer be answered,
// typically because the request never reached the host. Without it a failed
// delivery would leave the pending entry behind forever.
func (s *service) DiscardPlayerSnapshot(_ context.Context, requestId string) {
	s.probes.discard(requestId)
}

type AwaitPlayerSnapshotParams struct {
	RequestId string
}

// AwaitPlayerSnapshot blocks until the host answers the probe, the timeout
// fires, or the context is done.
func (s *service) AwaitPlayerSnapshot(ctx context.Context, params *AwaitPlayerSnapshotParams) (PlayerSnapshot, error) {
	return s.probes.await(ctx, params.RequestId)
}

type AwaitRoomSyncParams struct {
	RequestId string
	SenderId  string
}

type AwaitRoomSyncResponse struct {
	Snapshot   PlayerSnapshot
	Room       Room
	Conns      []*websocket.Conn
	OtherConns []*websocket.Conn
}

// AwaitRoomSync waits for the host's snapshot and then re-resolves the room
// before anything is broadcast: the registry may have changed while the
// probe was outstanding, and a closed-over pre-probe snapshot must never be
// what goes out. A vanished room surfaces as ErrRoomNotFound so the caller
// can skip the follow-up entirely.
func (s *service) AwaitRoomSync(ctx context.Context, params *AwaitRoomSyncParams) (AwaitRoomSyncResponse, error) {
	snapshot, err := s.probes.await(ctx, params.RequestId)
	if err != nil {
		return AwaitRoomSyncResponse{}, err
	}

	_, r, err := s.senderRoom(ctx, params.SenderId)
	if err != nil {
		return AwaitRoomSyncResponse{}, ErrRoomNotFound
	}

	return AwaitRoomSyncResponse{
		Snapshot:   snapshot,
		Room:       s.getRoomSnapshot(ctx, r),
		Conns:      s.getConns(r),
		OtherConns: s.getConnsExcept(r, params.SenderId),
	}, nil
}
