package tabsync

import (
	"encoding/json"
	"fmt"
	"sync"
	"time"
)

// Event types synchronized across a client's sessions.
const (
	EventRouteChange    = "ROUTE_CHANGE"
	EventMessageSent    = "MESSAGE_SENT"
	EventRoomJoined     = "ROOM_JOINED"
	EventRoomLeft       = "ROOM_LEFT"
	EventCacheChange    = "CACHE_CHANGE"
	EventSettingsChange = "SETTINGS_CHANGE"
)

// Envelope is the wire format for session sync events. Timestamp is the
// publisher's unix-millisecond clock and doubles as the de-dup key.
type Envelope struct {
	Type      string          `json:"type"`
	Payload   json.RawMessage `json:"payload"`
	Timestamp int64           `json:"timestamp"`
}

type Handler func(evt Envelope)

// Broadcaster fans session sync events out to every session of a client.
// Echoed and replayed envelopes are discarded: a subscriber only sees
// envelopes with a timestamp strictly greater than the last one it
// processed.
type Broadcaster struct {
	transport Transport
	clock     func() time.Time

	mu   sync.Mutex
	subs map[int]*subscription
	next int
}

type subscription struct {
	channel     string
	lastSeen    int64
	handler     Handler
	unsubscribe func()
}

type Option func(*Broadcaster)

// WithClock overrides the timestamp source. Tests use this to publish
// envelopes with controlled timestamps.
func WithClock(clock func() time.Time) Option {
	return func(b *Broadcaster) {
		b.clock = clock
	}
}

func NewBroadcaster(transport Transport, opts ...Option) *Broadcaster {
	b := &Broadcaster{
		transport: transport,
		clock:     time.Now,
		subs:      make(map[int]*subscription),
	}

	for _, opt := range opts {
		opt(b)
	}

	return b
}

func channelFor(clientID string) string {
	return "tabsync:" + clientID
}

// Publish sends an event to every session of the given client, the
// publishing session included.
func (b *Broadcaster) Publish(clientID string, eventType string, payload any) error {
	raw, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal payload: %w", err)
	}

	env := Envelope{
		Type:      eventType,
		Payload:   raw,
		Timestamp: b.clock().UnixMilli(),
	}

	data, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("failed to marshal envelope: %w", err)
	}

	return b.transport.Publish(channelFor(clientID), data)
}

// Subscribe registers a handler for the client's sync events and returns an
// unsubscribe function. Malformed envelopes and envelopes at or before the
// subscriber's high-water mark are dropped.
func (b *Broadcaster) Subscribe(clientID string, handler Handler) (func(), error) {
	b.mu.Lock()
	id := b.next
	b.next++
	sub := &subscription{
		channel: channelFor(clientID),
		handler: handler,
	}
	b.subs[id] = sub
	b.mu.Unlock()

	unsubscribe, err := b.transport.Subscribe(sub.channel, func(data []byte) {
		var env Envelope
		if err := json.Unmarshal(data, &env); err != nil {
			return
		}

		b.mu.Lock()
		s, ok := b.subs[id]
		if !ok || env.Timestamp <= s.lastSeen {
			b.mu.Unlock()
			return
		}
		s.lastSeen = env.Timestamp
		b.mu.Unlock()

		handler(env)
	})
	if err != nil {
		b.mu.Lock()
		delete(b.subs, id)
		b.mu.Unlock()
		return nil, err
	}

	sub.unsubscribe = unsubscribe

	return func() {
		b.mu.Lock()
		delete(b.subs, id)
		b.mu.Unlock()
		unsubscribe()
	}, nil
}

func (b *Broadcaster) Close() error {
	b.mu.Lock()
	for id, sub := range b.subs {
		if sub.unsubscribe != nil {
			sub.unsubscribe()
		}
		delete(b.subs, id)
	}
	b.mu.Unlock()

	return b.transport.Close()
}
