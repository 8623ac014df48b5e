package tabsync

import (
	"context"
	"fmt"
	"sync"

	amqp "github.com/rabbitmq/amqp091-go"
)

const syncExchange = "tabsync"

// AmqpTransport fans sync events out across instances. Each subscriber gets
// an exclusive auto-delete queue bound to the client's channel name, so a
// client's sessions receive events no matter which instance they landed on.
type AmqpTransport struct {
	channel *amqp.Channel

	mu     sync.Mutex
	queues []string
}

func NewAmqpTransport(channel *amqp.Channel) (*AmqpTransport, error) {
	if err := channel.ExchangeDeclare(
		syncExchange, // name
		"topic",      // type
		false,        // durable
		true,         // auto-deleted
		false,        // internal
		false,        // no-wait
		nil,          // arguments
	); err != nil {
		return nil, fmt.Errorf("failed to declare exchange %s: %v", syncExchange, err)
	}

	return &AmqpTransport{channel: channel}, nil
}

func (t *AmqpTransport) Publish(channel string, data []byte) error {
	return t.channel.PublishWithContext(context.Background(),
		syncExchange, // exchange
		channel,      // routing key
		false,        // mandatory
		false,        // immediate
		amqp.Publishing{
			ContentType: "application/json",
			Body:        data,
		},
	)
}

func (t *AmqpTransport) Subscribe(channel string, handler func(data []byte)) (func(), error) {
	q, err := t.channel.QueueDeclare(
		"",    // name, broker-generated
		false, // durable
		true,  // delete when unused
		true,  // exclusive
		false, // no-wait
		nil,   // arguments
	)
	if err != nil {
		return nil, fmt.Errorf("failed to declare sync queue: %v", err)
	}

	if err := t.channel.QueueBind(q.Name, channel, syncExchange, false, nil); err != nil {
		return nil, fmt.Errorf("failed to bind sync queue: %v", err)
	}

	deliveries, err := t.channel.Consume(
		q.Name, // queue
		"",     // consumer
		true,   // auto-ack
		true,   // exclusive
		false,  // no-local
		false,  // no-wait
		nil,    // args
	)
	if err != nil {
		return nil, fmt.Errorf("failed to consume sync queue: %v", err)
	}

	t.mu.Lock()
	t.queues = append(t.queues, q.Name)
	t.mu.Unlock()

	go func() {
		for msg := range deliveries {
			handler(msg.Body)
		}
	}()

	unsubscribe := func() {
		_, _ = t.channel.QueueDelete(q.Name, false, false, false)
	}

	return unsubscribe, nil
}

func (t *AmqpTransport) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	for _, name := range t.queues {
		_, _ = t.channel.QueueDelete(name, false, false, false)
	}
	t.queues = nil

	return nil
}
