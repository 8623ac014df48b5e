package domain

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/mewisme/private-chats/internal/infrastructure/validate"
)

// MessageHistoryLimit caps how many recent messages a room subscription
// replays. Older messages stay in the store until the room is deleted but are
// never delivered.
const MessageHistoryLimit = 100

const maxMessageLength = 2000

var (
	ErrMessageNotFound = errors.New("message not found")
	ErrEmptyMessage    = errors.New("message text must not be empty")
)

var messageTextValidator = validate.Field("text",
	validate.Required(),
	validate.MaxLength(maxMessageLength),
)

// Message belongs to exactly one room and is immutable once created. It has
// no independent lifecycle: deletion happens only as a cascade of its room
// being deleted.
type Message struct {
	ID        string    `bson:"_id,omitempty" json:"id"`
	RoomID    string    `bson:"roomId" json:"roomId"`
	SenderID  string    `bson:"senderId" json:"senderId"`
	Text      string    `bson:"text" json:"text"`
	Timestamp time.Time `bson:"timestamp" json:"timestamp"`
}

func NewMessage(roomID, senderID, text string) (*Message, error) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return nil, ErrEmptyMessage
	}
	if err := messageTextValidator(trimmed); err != nil {
		return nil, err
	}

	return &Message{
		RoomID:    roomID,
		SenderID:  senderID,
		Text:      trimmed,
		Timestamp: time.Now().UTC(),
	}, nil
}

type MessageRepository interface {
	Create(ctx context.Context, message *Message) error

	// ListByRoom returns up to limit messages for the room ordered by
	// timestamp ascending.
	ListByRoom(ctx context.Context, roomID string, limit int64) ([]Message, error)

	// CountByRoom reports how many messages the room currently holds.
	CountByRoom(ctx context.Context, roomID string) (int64, error)

	// Watch delivers the ordered message list immediately and again after
	// every insert into the room.
	Watch(ctx context.Context, roomID string, onChange func([]Message)) (Subscription, error)
}
