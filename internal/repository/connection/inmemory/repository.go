package inmemory

import (
	"sync"

	"github.com/gorilla/websocket"

	"github.com/roomcast/server/internal/repository/connection"
)

type repo struct {
	connList map[*websocket.Conn]string
	idList   map[string]*websocket.Conn
	mu       sync.RWMutex
}

func NewRepo() *repo {
	return &repo{
		connList: make(map[*websocket.Conn]string),
		idList:   make(map[string]*websocket.Conn),
	}
}

// Add binds a connection to a user id. A user id that is already bound to
// a live connection is rejected; that is the session-takeover guard.
func (r *repo) Add(conn *websocket.Conn, userId string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.connList[conn] != "" || r.idList[userId] != nil {
		return connection.ErrAlreadyExists
	}

	r.connList[conn] = userId
	r.idList[userId] = conn

	return nil
}

// RemoveByUserId unbinds and returns the connection without closing it;
// callers decide whether a close notice goes out first.
func (r *repo) RemoveByUserId(userId string) (*websocket.Conn, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	conn, ok := r.idList[userId]
	if !ok {
		return nil, connection.ErrNotFound
	}

	delete(r.connList, conn)
	delete(r.idList, userId)

	return conn, nil
}

func (r *repo) RemoveByConn(conn *websocket.Conn) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	userId, ok := r.connList[conn]
	if !ok {
		return "", connection.ErrNotFound
	}

	delete(r.connList, conn)
	delete(r.idList, userId)

	return userId, nil
}

func (r *repo) GetConn(userId string) (*websocket.Conn, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	conn, ok := r.idList[userId]
	if !ok {
		return nil, connection.ErrNotFound
	}

	return conn, nil
}

func (r *repo) GetUserId(conn *websocket.Conn) (string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	userId, ok := r.connList[conn]
	if !ok {
		return "", connection.ErrNotFound
	}

	return userId, nil
}

func (r *repo) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.idList)
}
