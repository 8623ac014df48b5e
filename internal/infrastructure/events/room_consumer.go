package events

import (
	"context"
	"encoding/json"
	"log"

	"github.com/mewisme/private-chats/internal/infrastructure/contracts"
	"github.com/mewisme/private-chats/internal/infrastructure/messaging"
	"github.com/rabbitmq/amqp091-go"
)

type roomConsumer struct {
	rabbitmq *messaging.RabbitMQ
}

func NewRoomConsumer(rabbitmq *messaging.RabbitMQ) *roomConsumer {
	return &roomConsumer{
		rabbitmq: rabbitmq,
	}
}

func (c *roomConsumer) Listen() error {
	return c.rabbitmq.ConsumeMessages(messaging.RoomsQueue, func(ctx context.Context, msg amqp091.Delivery) error {
		var message contracts.AmqpMessage
		if err := json.Unmarshal(msg.Body, &message); err != nil {
			log.Printf("Failed to unmarshal message: %v", err)
			return err
		}

		switch msg.RoutingKey {
		case contracts.EventRoomReaped:
			var payload messaging.RoomReapedEventData
			if err := json.Unmarshal(message.Data, &payload); err != nil {
				log.Printf("Failed to unmarshal message: %v", err)
				return err
			}

			log.Printf("Room %s reaped, %d messages deleted", payload.RoomID, payload.MessagesDeleted)
		default:
			var payload messaging.RoomEventData
			if err := json.Unmarshal(message.Data, &payload); err != nil {
				log.Printf("Failed to unmarshal message: %v", err)
				return err
			}

			log.Printf("Room event %s: room=%s participants=%d", msg.RoutingKey, payload.Room.ID, len(payload.Room.Participants))
		}

		return nil
	})
}
