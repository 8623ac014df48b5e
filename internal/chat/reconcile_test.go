package chat

import (
	"context"
	"testing"
	"time"

	"github.com/mewisme/private-chats/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestReconciler() (*Reconciler, *fakeRooms, *fakeTyping) {
	messages := newFakeMessages()
	rooms := newFakeRooms(messages)
	typing := newFakeTyping()
	lifecycle := NewLifecycle(rooms, nopLogger{})
	presence := NewPresence(typing, time.Minute, nopLogger{})
	return NewReconciler(lifecycle, presence, DefaultManualLeaveWindow, nopLogger{}), rooms, typing
}

func TestRoomGoneNotifiesExactlyOnce(t *testing.T) {
	r, _, _ := newTestReconciler()

	assert.Equal(t, RoomGoneNotify, r.RoomGone("room-1"))
	assert.Equal(t, RoomGoneIgnore, r.RoomGone("room-1"))
	assert.Equal(t, RoomGoneIgnore, r.RoomGone("room-1"))
}

func TestRoomGoneSuppressedDuringManualLeaveWindow(t *testing.T) {
	r, _, _ := newTestReconciler()

	now := time.Now()
	r.clock = func() time.Time { return now }

	r.BeginManualLeave()
	assert.Equal(t, RoomGoneSuppressed, r.RoomGone("room-1"))

	// Later echoes of the same deletion stay silent.
	now = now.Add(time.Second)
	assert.Equal(t, RoomGoneIgnore, r.RoomGone("room-1"))
}

func TestRoomGoneNotifiesAfterWindowExpires(t *testing.T) {
	r, _, _ := newTestReconciler()

	now := time.Now()
	r.clock = func() time.Time { return now }

	r.BeginManualLeave()
	now = now.Add(DefaultManualLeaveWindow + time.Millisecond)

	assert.Equal(t, RoomGoneNotify, r.RoomGone("room-1"))
}

func TestRoomGoneTracksRoomsIndependently(t *testing.T) {
	r, _, _ := newTestReconciler()

	assert.Equal(t, RoomGoneNotify, r.RoomGone("room-1"))
	assert.Equal(t, RoomGoneNotify, r.RoomGone("room-2"))
	assert.Equal(t, RoomGoneIgnore, r.RoomGone("room-1"))
}

func TestResetAllowsNotifyAgain(t *testing.T) {
	r, _, _ := newTestReconciler()

	require.Equal(t, RoomGoneNotify, r.RoomGone("room-1"))
	r.Reset("room-1")
	assert.Equal(t, RoomGoneNotify, r.RoomGone("room-1"))
}

func TestHandleDisconnectLeavesRoomAndClearsTyping(t *testing.T) {
	r, rooms, typing := newTestReconciler()
	roomID := seedActiveRoom(t, rooms, "client-a", "client-b")

	require.NoError(t, typing.Merge(context.Background(), roomID, "client-a", time.Now()))

	r.HandleDisconnect(context.Background(), roomID, "client-a")

	_, err := rooms.GetByID(context.Background(), roomID)
	assert.ErrorIs(t, err, domain.ErrRoomNotFound)

	status, err := typing.Get(context.Background(), roomID)
	require.NoError(t, err)
	assert.Nil(t, status.Signals["client-a"])
}

func TestHandleDisconnectSwallowsFailures(t *testing.T) {
	r, rooms, _ := newTestReconciler()
	roomID := seedActiveRoom(t, rooms, "client-a", "client-b")
	rooms.deleteErr = assert.AnError

	assert.NotPanics(t, func() {
		r.HandleDisconnect(context.Background(), roomID, "client-a")
	})
}

func TestHandleDisconnectIgnoresEmptyIDs(t *testing.T) {
	r, _, _ := newTestReconciler()

	assert.NotPanics(t, func() {
		r.HandleDisconnect(context.Background(), "", "client-a")
		r.HandleDisconnect(context.Background(), "room-1", "")
	})
}
