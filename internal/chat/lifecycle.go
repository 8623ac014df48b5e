package chat

import (
	"context"
	"errors"

	"github.com/mewisme/private-chats/internal/domain"
	"github.com/mewisme/private-chats/internal/infrastructure/logging"
	"github.com/mewisme/private-chats/internal/infrastructure/metrics"
)

// Lifecycle manages a room from its waiting state to its deletion. A room
// never ends in place: the last leave deletes the document, and observers
// learn about the end by watching the document disappear.
type Lifecycle struct {
	rooms  domain.RoomRepository
	logger logging.Logger
}

func NewLifecycle(rooms domain.RoomRepository, logger logging.Logger) *Lifecycle {
	return &Lifecycle{
		rooms:  rooms,
		logger: logger,
	}
}

// ListenToRoom delivers the current room state immediately, then every
// subsequent change. Deletion is delivered as nil; after that the
// subscription stays open but will never fire again, so callers should close
// it once they have handled the end of the room.
func (l *Lifecycle) ListenToRoom(ctx context.Context, roomID string, onChange func(*domain.Room)) (domain.Subscription, error) {
	return l.rooms.Watch(ctx, roomID, onChange)
}

// LeaveRoom removes the client from the room. Rooms at or below the two-party
// cap are deleted outright together with their messages; the >2 branch pulls
// only the leaving participant and exists for forward compatibility. Leaving
// an absent room is a silent no-op.
func (l *Lifecycle) LeaveRoom(ctx context.Context, roomID, clientID string) error {
	room, err := l.rooms.GetByID(ctx, roomID)
	if errors.Is(err, domain.ErrRoomNotFound) {
		return nil
	}
	if err != nil {
		return err
	}

	if len(room.Participants) > domain.MaxParticipants {
		return l.rooms.RemoveParticipant(ctx, roomID, clientID)
	}

	messagesDeleted, err := l.rooms.DeleteWithMessages(ctx, roomID)
	if err != nil {
		return err
	}

	metrics.RoomsDeleted.Inc()
	l.logger.Info(logging.Lifecycle, logging.Leave, "room deleted on leave", map[logging.ExtraKey]any{
		logging.RoomId:   roomID,
		logging.ClientId: clientID,
		"messagesDeleted": messagesDeleted,
	})

	return nil
}

// IsRoomActive reports whether the room exists with both parties present.
// A missing room is simply inactive, not an error.
func (l *Lifecycle) IsRoomActive(ctx context.Context, roomID string) bool {
	room, err := l.rooms.GetByID(ctx, roomID)
	if err != nil {
		return false
	}
	return room.IsConnected()
}

// GetRoom returns the room snapshot. ErrRoomNotFound is a benign terminal
// state for clients, not a failure.
func (l *Lifecycle) GetRoom(ctx context.Context, roomID string) (*domain.Room, error) {
	return l.rooms.GetByID(ctx, roomID)
}
