package events

import (
	"context"
	"encoding/json"

	"github.com/mewisme/private-chats/internal/domain"
	"github.com/mewisme/private-chats/internal/infrastructure/contracts"
	"github.com/mewisme/private-chats/internal/infrastructure/messaging"
)

// RoomPublisher emits room lifecycle events on the message broker so that
// downstream consumers (audit, analytics) observe matchmaking activity
// without touching the hot path.
type RoomPublisher struct {
	rabbitmq *messaging.RabbitMQ
}

func NewRoomPublisher(rabbitmq *messaging.RabbitMQ) *RoomPublisher {
	return &RoomPublisher{
		rabbitmq: rabbitmq,
	}
}

func (p *RoomPublisher) PublishRoomCreated(ctx context.Context, room *domain.Room) error {
	payload := messaging.RoomEventData{
		Room: *room,
	}

	roomEventJSON, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	return p.rabbitmq.PublishMessage(ctx, contracts.EventRoomCreated, contracts.AmqpMessage{
		RoomID: room.ID,
		Data:   roomEventJSON,
	})
}

func (p *RoomPublisher) PublishRoomMatched(ctx context.Context, room *domain.Room) error {
	payload := messaging.RoomEventData{
		Room: *room,
	}

	roomEventJSON, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	return p.rabbitmq.PublishMessage(ctx, contracts.EventRoomMatched, contracts.AmqpMessage{
		RoomID: room.ID,
		Data:   roomEventJSON,
	})
}

func (p *RoomPublisher) PublishRoomLeft(ctx context.Context, room *domain.Room) error {
	payload := messaging.RoomEventData{
		Room: *room,
	}

	roomEventJSON, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	return p.rabbitmq.PublishMessage(ctx, contracts.EventRoomLeft, contracts.AmqpMessage{
		RoomID: room.ID,
		Data:   roomEventJSON,
	})
}

func (p *RoomPublisher) PublishRoomReaped(ctx context.Context, roomID string, messagesDeleted int64) error {
	payload := messaging.RoomReapedEventData{
		RoomID:          roomID,
		MessagesDeleted: messagesDeleted,
	}

	roomEventJSON, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	return p.rabbitmq.PublishMessage(ctx, contracts.EventRoomReaped, contracts.AmqpMessage{
		RoomID: roomID,
		Data:   roomEventJSON,
	})
}
