package room

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/roomcast/server/internal/repository/room"
)

type AddVideoToQueueParams struct {
	SenderId  string
	Title     string
	Url       string
	Thumbnail string
}

type AddVideoToQueueResponse struct {
	OtherConns []*websocket.Conn
	AddedVideo room.QueueItem
	Queue      []room.QueueItem
}

func (s *service) AddVideoToQueue(ctx context.Context, params *AddVideoToQueueParams) (AddVideoToQueueResponse, error) {
	_, r, err := s.authorizeHost(ctx, params.SenderId)
	if err != nil {
		return AddVideoToQueueResponse{}, err
	}

	item := room.QueueItem{
		Id:        uuid.NewString(),
		Title:     params.Title,
		Url:       params.Url,
		Thumbnail: params.Thumbnail,
	}

	if err := s.roomRepo.AppendVideo(ctx, &room.AppendVideoParams{
		RoomId: r.Id,
		Video:  item,
	}); err != nil {
		if errors.Is(err, room.ErrDuplicateVideoUrl) {
			return AddVideoToQueueResponse{}, ErrDuplicateVideo
		}
		return AddVideoToQueueResponse{}, ErrRoomNotFound
	}

	r, err = s.roomRepo.Get(ctx, r.Id)
	if err != nil {
		return AddVideoToQueueResponse{}, ErrRoomNotFound
	}

	return AddVideoToQueueResponse{
		OtherConns: s.getConnsExcept(r, params.SenderId),
		AddedVideo: item,
		Queue:      r.VideoInfo.Queue,
	}, nil
}

type RemoveVideoFromQueueParams struct {
	SenderId string
	Url      string
}

type RemoveVideoFromQueueResponse struct {
	OtherConns []*websocket.Conn
	Url        string
	Queue      []room.QueueItem
}

func (s *service) RemoveVideoFromQueue(ctx context.Context, params *RemoveVideoFromQueueParams) (RemoveVideoFromQueueResponse, error) {
	_, r, err := s.authorizeHost(ctx, params.SenderId)
	if err != nil {
		return RemoveVideoFromQueueResponse{}, err
	}

	if err := s.roomRepo.RemoveVideo(ctx, &room.RemoveVideoParams{
		RoomId: r.Id,
		Url:    params.Url,
	}); err != nil {
		if errors.Is(err, room.ErrVideoNotFound) {
			return RemoveVideoFromQueueResponse{}, ErrVideoNotFound
		}
		return RemoveVideoFromQueueResponse{}, ErrRoomNotFound
	}

	r, err = s.roomRepo.Get(ctx, r.Id)
	if err != nil {
		return RemoveVideoFromQueueResponse{}, ErrRoomNotFound
	}

	return RemoveVideoFromQueueResponse{
		OtherConns: s.getConnsExcept(r, params.SenderId),
		Url:        params.Url,
		Queue:      r.VideoInfo.Queue,
	}, nil
}

type ReorderQueueParams struct {
	SenderId string
	Queue    []room.QueueItem
}

type ReorderQueueResponse struct {
	OtherConns []*websocket.Conn
	Queue      []room.QueueItem
}

// ReorderQueue replaces the queue wholesale with the caller-supplied order.
func (s *service) ReorderQueue(ctx context.Context, params *ReorderQueueParams) (ReorderQueueResponse, error) {
	_, r, err := s.authorizeHost(ctx, params.SenderId)
	if err != nil {
		return ReorderQueueResponse{}, err
	}

	if err := s.roomRepo.SetQueue(ctx, &room.SetQueueParams{
		RoomId: r.Id,
		Queue:  params.Queue,
	}); err != nil {
		return ReorderQueueResponse{}, ErrRoomNotFound
	}

	r, err = s.roomRepo.Get(ctx, r.Id)
	if err != nil {
		return ReorderQueueResponse{}, ErrRoomNotFound
	}

	return ReorderQueueResponse{
		OtherConns: s.getConnsExcept(r, params.SenderId),
		Queue:      r.VideoInfo.Queue,
	}, nil
}

type ClearQueueParams struct {
	SenderId string
}

type ClearQueueResponse struct {
	OtherConns []*websocket.Conn
}

func (s *service) ClearQueue(ctx context.Context, params *ClearQueueParams) (ClearQueueResponse, error) {
	_, r, err := s.authorizeHost(ctx, params.SenderId)
	if err != nil {
		return ClearQueueResponse{}, err
	}

	if len(r.VideoInfo.Queue) == 0 {
		return ClearQueueResponse{}, ErrEmptyQueue
	}

	if err := s.roomRepo.SetQueue(ctx, &room.SetQueueParams{
		RoomId: r.Id,
		Queue:  []room.QueueItem{},
	}); err != nil {
		return ClearQueueResponse{}, ErrRoomNotFound
	}

	return ClearQueueResponse{OtherConns: s.getConnsExcept(r, params.SenderId)}, nil
}
