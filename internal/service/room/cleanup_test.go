package room

import (
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoomCleaner_ArmFires(t *testing.T) {
	fired := make(chan string, 1)
	c := newRoomCleaner(time.Minute, 20*time.Millisecond, func() int { return 1 }, func(roomId string) {
		fired <- roomId
	}, slog.Default())
	t.Cleanup(c.StopAll)

	c.Arm("room-1")

	select {
	case roomId := <-fired:
		assert.Equal(t, "room-1", roomId)
	case <-time.After(time.Second):
		t.Fatal("armed timer never fired")
	}
}

func TestRoomCleaner_CancelPreventsFire(t *testing.T) {
	fired := make(chan string, 1)
	c := newRoomCleaner(time.Minute, 20*time.Millisecond, func() int { return 1 }, func(roomId string) {
		fired <- roomId
	}, slog.Default())
	t.Cleanup(c.StopAll)

	c.Arm("room-1")
	c.Cancel("room-1")

	select {
	case <-fired:
		t.Fatal("canceled timer fired")
	case <-time.After(100 * time.Millisecond):
	}
}

func TestRoomCleaner_RearmReplacesTimer(t *testing.T) {
	var fires atomic.Int32
	c := newRoomCleaner(time.Minute, 30*time.Millisecond, func() int { return 1 }, func(string) {
		fires.Add(1)
	}, slog.Default())
	t.Cleanup(c.StopAll)

	c.Arm("room-1")
	c.Arm("room-1")

	time.Sleep(150 * time.Millisecond)
	assert.Equal(t, int32(1), fires.Load(), "re-arming must replace the pending timer, not stack one")
}

func TestRoomCleaner_SweepStopsWhenEmpty(t *testing.T) {
	var sweeps atomic.Int32
	c := newRoomCleaner(10*time.Millisecond, time.Minute, func() int {
		sweeps.Add(1)
		return 0
	}, func(string) {}, slog.Default())
	t.Cleanup(c.StopAll)

	c.EnsureRunning()

	require.Eventually(t, func() bool {
		return sweeps.Load() >= 1
	}, time.Second, 5*time.Millisecond)

	count := sweeps.Load()
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, count, sweeps.Load(), "sweep must stop itself once no rooms remain")

	// a later room creation restarts it
	c.EnsureRunning()
	require.Eventually(t, func() bool {
		return sweeps.Load() > count
	}, time.Second, 5*time.Millisecond)
}
