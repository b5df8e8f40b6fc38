package inmemory

import (
	"testing"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roomcast/server/internal/repository/connection"
)

func TestAdd_RejectsBoundUserId(t *testing.T) {
	r := NewRepo()
	conn1 := &websocket.Conn{}
	conn2 := &websocket.Conn{}

	require.NoError(t, r.Add(conn1, "user-1"))
	require.ErrorIs(t, r.Add(conn2, "user-1"), connection.ErrAlreadyExists)
	require.ErrorIs(t, r.Add(conn1, "user-2"), connection.ErrAlreadyExists)

	assert.Equal(t, 1, r.Count())
}

func TestRemoveByUserId(t *testing.T) {
	r := NewRepo()
	conn := &websocket.Conn{}

	require.NoError(t, r.Add(conn, "user-1"))

	got, err := r.RemoveByUserId("user-1")
	require.NoError(t, err)
	assert.Same(t, conn, got)
	assert.Equal(t, 0, r.Count())

	_, err = r.RemoveByUserId("user-1")
	require.ErrorIs(t, err, connection.ErrNotFound)

	// both directions are cleared
	_, err = r.GetUserId(conn)
	require.ErrorIs(t, err, connection.ErrNotFound)
}

func TestRemoveByConn(t *testing.T) {
	r := NewRepo()
	conn := &websocket.Conn{}

	require.NoError(t, r.Add(conn, "user-1"))

	userId, err := r.RemoveByConn(conn)
	require.NoError(t, err)
	assert.Equal(t, "user-1", userId)

	_, err = r.RemoveByConn(conn)
	require.ErrorIs(t, err, connection.ErrNotFound)

	// the user id is free to bind again
	require.NoError(t, r.Add(&websocket.Conn{}, "user-1"))
}

func TestGetConn(t *testing.T) {
	r := NewRepo()
	conn := &websocket.Conn{}

	require.NoError(t, r.Add(conn, "user-1"))

	got, err := r.GetConn("user-1")
	require.NoError(t, err)
	assert.Same(t, conn, got)

	_, err = r.GetConn("user-2")
	require.ErrorIs(t, err, connection.ErrNotFound)
}
