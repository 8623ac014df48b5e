package chat

import (
	"context"
	"testing"

	"github.com/mewisme/private-chats/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLifecycle() (*Lifecycle, *fakeRooms, *fakeMessages) {
	messages := newFakeMessages()
	rooms := newFakeRooms(messages)
	return NewLifecycle(rooms, nopLogger{}), rooms, messages
}

func seedActiveRoom(t *testing.T, rooms *fakeRooms, a, b string) string {
	t.Helper()

	room, err := domain.NewRoom(a)
	require.NoError(t, err)
	require.NoError(t, rooms.Create(context.Background(), room))
	_, err = rooms.JoinWaiting(context.Background(), b)
	require.NoError(t, err)
	return room.ID
}

func TestLeaveRoomDeletesRoomAndMessages(t *testing.T) {
	l, rooms, messages := newTestLifecycle()
	roomID := seedActiveRoom(t, rooms, "client-a", "client-b")

	msg, err := domain.NewMessage(roomID, "client-a", "hello")
	require.NoError(t, err)
	require.NoError(t, messages.Create(context.Background(), msg))

	require.NoError(t, l.LeaveRoom(context.Background(), roomID, "client-a"))

	_, err = rooms.GetByID(context.Background(), roomID)
	assert.ErrorIs(t, err, domain.ErrRoomNotFound)

	history, err := messages.ListByRoom(context.Background(), roomID, domain.MessageHistoryLimit)
	require.NoError(t, err)
	assert.Empty(t, history)
}

func TestLeaveRoomAbsentRoomIsNoOp(t *testing.T) {
	l, _, _ := newTestLifecycle()

	assert.NoError(t, l.LeaveRoom(context.Background(), "missing-room", "client-a"))
}

func TestLeaveRoomWaitingRoomDeletes(t *testing.T) {
	l, rooms, _ := newTestLifecycle()

	room, err := domain.NewRoom("client-a")
	require.NoError(t, err)
	require.NoError(t, rooms.Create(context.Background(), room))

	require.NoError(t, l.LeaveRoom(context.Background(), room.ID, "client-a"))

	_, err = rooms.GetByID(context.Background(), room.ID)
	assert.ErrorIs(t, err, domain.ErrRoomNotFound)
}

func TestListenToRoomDeliversSnapshotThenChanges(t *testing.T) {
	l, rooms, _ := newTestLifecycle()

	room, err := domain.NewRoom("client-a")
	require.NoError(t, err)
	require.NoError(t, rooms.Create(context.Background(), room))

	var seen []*domain.Room
	sub, err := l.ListenToRoom(context.Background(), room.ID, func(r *domain.Room) {
		seen = append(seen, r)
	})
	require.NoError(t, err)
	defer sub.Close()

	// Initial snapshot fires synchronously in the fake.
	require.Len(t, seen, 1)
	assert.Equal(t, domain.RoomWaiting, seen[0].Status)

	_, err = rooms.JoinWaiting(context.Background(), "client-b")
	require.NoError(t, err)

	require.Len(t, seen, 2)
	assert.Equal(t, domain.RoomActive, seen[1].Status)
}

func TestListenToRoomDeliversNilOnDeletion(t *testing.T) {
	l, rooms, _ := newTestLifecycle()
	roomID := seedActiveRoom(t, rooms, "client-a", "client-b")

	var seen []*domain.Room
	sub, err := l.ListenToRoom(context.Background(), roomID, func(r *domain.Room) {
		seen = append(seen, r)
	})
	require.NoError(t, err)
	defer sub.Close()

	require.NoError(t, l.LeaveRoom(context.Background(), roomID, "client-b"))

	require.Len(t, seen, 2)
	assert.Nil(t, seen[1])
}

func TestIsRoomActive(t *testing.T) {
	l, rooms, _ := newTestLifecycle()

	assert.False(t, l.IsRoomActive(context.Background(), "missing"))

	room, err := domain.NewRoom("client-a")
	require.NoError(t, err)
	require.NoError(t, rooms.Create(context.Background(), room))
	assert.False(t, l.IsRoomActive(context.Background(), room.ID))

	_, err = rooms.JoinWaiting(context.Background(), "client-b")
	require.NoError(t, err)
	assert.True(t, l.IsRoomActive(context.Background(), room.ID))
}
