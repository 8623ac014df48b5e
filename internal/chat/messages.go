package chat

import (
	"context"
	"errors"
	"strings"

	"github.com/mewisme/private-chats/internal/domain"
	"github.com/mewisme/private-chats/internal/infrastructure/logging"
	"github.com/mewisme/private-chats/internal/infrastructure/metrics"
)

// Messenger persists chat messages and streams room history. Messages are
// immutable and die only with their room.
type Messenger struct {
	messages domain.MessageRepository
	rooms    domain.RoomRepository
	logger   logging.Logger
}

func NewMessenger(messages domain.MessageRepository, rooms domain.RoomRepository, logger logging.Logger) *Messenger {
	return &Messenger{
		messages: messages,
		rooms:    rooms,
		logger:   logger,
	}
}

// SendMessage inserts the message and refreshes the room's updatedAt, which
// is the staleness clock the reaper judges by. Blank text is a no-op.
func (m *Messenger) SendMessage(ctx context.Context, roomID, senderID, text string) error {
	if strings.TrimSpace(text) == "" {
		return nil
	}

	message, err := domain.NewMessage(roomID, senderID, text)
	if err != nil {
		return err
	}

	if err := m.messages.Create(ctx, message); err != nil {
		return err
	}

	metrics.MessagesSent.Inc()

	// Touch failure must not lose the message, the reaper grace period
	// absorbs a missed refresh.
	if err := m.rooms.Touch(ctx, roomID); err != nil && !errors.Is(err, domain.ErrRoomNotFound) {
		m.logger.Warn(logging.Lifecycle, logging.RoomWatch, "failed to touch room after message", map[logging.ExtraKey]any{
			logging.RoomId:       roomID,
			logging.ErrorMessage: err.Error(),
		})
	}

	return nil
}

// ListenToMessages delivers the most recent history (oldest first, capped at
// MessageHistoryLimit) immediately and again after every insert.
func (m *Messenger) ListenToMessages(ctx context.Context, roomID string, onChange func([]domain.Message)) (domain.Subscription, error) {
	return m.messages.Watch(ctx, roomID, onChange)
}
