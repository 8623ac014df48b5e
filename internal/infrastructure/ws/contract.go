package ws

import (
	"encoding/json"
	"time"

	"github.com/mewisme/private-chats/internal/domain"
)

type WSMessage struct {
	Type   string `json:"type"`
	RoomID string `json:"roomId"`
	Data   any    `json:"data,omitempty"`
}

// ClientFrame is the inbound wire format.
type ClientFrame struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data,omitempty"`
}

type SendMessageData struct {
	Text string `json:"text"`
}

// Payload structs
type RoomPayload struct {
	Participants int    `json:"participants"`
	Status       string `json:"status"`
}

type MessagePayload struct {
	ID        string `json:"id"`
	SenderID  string `json:"senderId"`
	Text      string `json:"text"`
	Timestamp string `json:"timestamp"`
}

type MessageListPayload struct {
	Messages []MessagePayload `json:"messages"`
}

type TypingPayload struct {
	Typing bool `json:"typing"`
}

type ErrorPayload struct {
	Code    string `json:"code,omitempty"`
	Message string `json:"message"`
	Retry   bool   `json:"retry,omitempty"`
}

func NewRoomUpdated(room *domain.Room) *WSMessage {
	return &WSMessage{
		Type:   RoomUpdated,
		RoomID: room.ID,
		Data: RoomPayload{
			Participants: len(room.Participants),
			Status:       string(room.Status),
		},
	}
}

func NewRoomGone(roomID string) *WSMessage {
	return &WSMessage{
		Type:   RoomGone,
		RoomID: roomID,
	}
}

func NewMessageReceived(roomID string, messages []domain.Message) *WSMessage {
	payloads := make([]MessagePayload, 0, len(messages))
	for _, m := range messages {
		payloads = append(payloads, MessagePayload{
			ID:        m.ID,
			SenderID:  m.SenderID,
			Text:      m.Text,
			Timestamp: m.Timestamp.Format(time.RFC3339),
		})
	}

	return &WSMessage{
		Type:   MessageReceived,
		RoomID: roomID,
		Data:   MessageListPayload{Messages: payloads},
	}
}

func NewTypingUpdated(roomID string, typing bool) *WSMessage {
	return &WSMessage{
		Type:   TypingUpdated,
		RoomID: roomID,
		Data:   TypingPayload{Typing: typing},
	}
}

func NewError(roomID, message string) *WSMessage {
	return &WSMessage{
		Type:   ErrorEvent,
		RoomID: roomID,
		Data: ErrorPayload{
			Message: message,
			Retry:   false,
		},
	}
}
