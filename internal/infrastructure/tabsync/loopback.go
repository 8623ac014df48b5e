package tabsync

import "sync"

// LoopbackTransport is an in-process fanout used when all sessions live in a
// single instance, and in tests.
type LoopbackTransport struct {
	mu       sync.RWMutex
	handlers map[string]map[int]func(data []byte)
	nextID   int
	closed   bool
}

func NewLoopbackTransport() *LoopbackTransport {
	return &LoopbackTransport{
		handlers: make(map[string]map[int]func(data []byte)),
	}
}

func (t *LoopbackTransport) Publish(channel string, data []byte) error {
	t.mu.RLock()
	subs := make([]func(data []byte), 0, len(t.handlers[channel]))
	for _, h := range t.handlers[channel] {
		subs = append(subs, h)
	}
	t.mu.RUnlock()

	for _, h := range subs {
		h(data)
	}

	return nil
}

func (t *LoopbackTransport) Subscribe(channel string, handler func(data []byte)) (func(), error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.handlers[channel] == nil {
		t.handlers[channel] = make(map[int]func(data []byte))
	}

	id := t.nextID
	t.nextID++
	t.handlers[channel][id] = handler

	unsubscribe := func() {
		t.mu.Lock()
		defer t.mu.Unlock()
		delete(t.handlers[channel], id)
	}

	return unsubscribe, nil
}

func (t *LoopbackTransport) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.handlers = make(map[string]map[int]func(data []byte))
	t.closed = true
	return nil
}
