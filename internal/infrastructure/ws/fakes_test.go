package ws

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/mewisme/private-chats/internal/domain"
	"github.com/mewisme/private-chats/internal/infrastructure/logging"
)

// nopLogger keeps test output quiet.
type nopLogger struct{}

func (nopLogger) Init() {}
func (nopLogger) Debug(logging.Category, logging.SubCategory, string, map[logging.ExtraKey]any) {}
func (nopLogger) Debugf(string, ...any)                                                        {}
func (nopLogger) Info(logging.Category, logging.SubCategory, string, map[logging.ExtraKey]any) {}
func (nopLogger) Infof(string, ...any)                                                        {}
func (nopLogger) Warn(logging.Category, logging.SubCategory, string, map[logging.ExtraKey]any) {}
func (nopLogger) Warnf(string, ...any)                                                        {}
func (nopLogger) Error(logging.Category, logging.SubCategory, string, map[logging.ExtraKey]any) {}
func (nopLogger) Errorf(string, ...any)                                                        {}
func (nopLogger) Fatal(logging.Category, logging.SubCategory, string, map[logging.ExtraKey]any) {}
func (nopLogger) Fatalf(string, ...any)                                                        {}

type memSubscription struct {
	close func()
}

func (s *memSubscription) Close() error {
	if s.close != nil {
		s.close()
	}
	return nil
}

// memRooms fails every write on a dead context, the way the real driver
// does. Session behavior around request-context expiry depends on that.
type memRooms struct {
	mu       sync.Mutex
	rooms    map[string]*domain.Room
	messages *memMessages
	watchers map[string][]func(*domain.Room)
}

func newMemRooms(messages *memMessages) *memRooms {
	return &memRooms{
		rooms:    make(map[string]*domain.Room),
		messages: messages,
		watchers: make(map[string][]func(*domain.Room)),
	}
}

func (m *memRooms) notifyLocked(roomID string) {
	var snapshot *domain.Room
	if room, ok := m.rooms[roomID]; ok {
		copied := *room
		copied.Participants = append([]string(nil), room.Participants...)
		snapshot = &copied
	}
	for _, w := range m.watchers[roomID] {
		w(snapshot)
	}
}

// drop deletes the room and notifies watchers, even redundantly, so tests
// can replay the gone observation.
func (m *memRooms) drop(roomID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.rooms, roomID)
	for _, w := range m.watchers[roomID] {
		w(nil)
	}
}

func (m *memRooms) Create(ctx context.Context, room *domain.Room) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if room.ID == "" {
		room.ID = uuid.NewString()
	}
	copied := *room
	copied.Participants = append([]string(nil), room.Participants...)
	m.rooms[room.ID] = &copied
	m.notifyLocked(room.ID)
	return nil
}

func (m *memRooms) GetByID(ctx context.Context, id string) (*domain.Room, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	room, ok := m.rooms[id]
	if !ok {
		return nil, domain.ErrRoomNotFound
	}
	copied := *room
	copied.Participants = append([]string(nil), room.Participants...)
	return &copied, nil
}

func (m *memRooms) FindWaitingFor(ctx context.Context, clientID string) (*domain.Room, error) {
	return nil, domain.ErrNoWaitingRoom
}

func (m *memRooms) JoinWaiting(ctx context.Context, clientID string) (*domain.Room, error) {
	return nil, domain.ErrNoWaitingRoom
}

func (m *memRooms) RemoveParticipant(ctx context.Context, roomID, clientID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	room, ok := m.rooms[roomID]
	if !ok {
		return domain.ErrRoomNotFound
	}
	kept := room.Participants[:0]
	for _, p := range room.Participants {
		if p != clientID {
			kept = append(kept, p)
		}
	}
	room.Participants = kept
	m.notifyLocked(roomID)
	return nil
}

func (m *memRooms) DeleteWithMessages(ctx context.Context, roomID string) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	deleted := m.messages.deleteByRoom(roomID)
	delete(m.rooms, roomID)
	m.notifyLocked(roomID)
	return deleted, nil
}

func (m *memRooms) Touch(ctx context.Context, roomID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	room, ok := m.rooms[roomID]
	if !ok {
		return domain.ErrRoomNotFound
	}
	room.UpdatedAt = time.Now().UTC()
	m.notifyLocked(roomID)
	return nil
}

func (m *memRooms) List(ctx context.Context, limit int64) ([]domain.Room, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	rooms := make([]domain.Room, 0, len(m.rooms))
	for _, room := range m.rooms {
		if int64(len(rooms)) >= limit {
			break
		}
		rooms = append(rooms, *room)
	}
	return rooms, nil
}

func (m *memRooms) Watch(ctx context.Context, roomID string, onChange func(*domain.Room)) (domain.Subscription, error) {
	m.mu.Lock()
	m.watchers[roomID] = append(m.watchers[roomID], onChange)
	var snapshot *domain.Room
	if room, ok := m.rooms[roomID]; ok {
		copied := *room
		snapshot = &copied
	}
	m.mu.Unlock()

	onChange(snapshot)
	return &memSubscription{}, nil
}

type memMessages struct {
	mu       sync.Mutex
	byRoom   map[string][]domain.Message
	watchers map[string][]func([]domain.Message)
}

func newMemMessages() *memMessages {
	return &memMessages{
		byRoom:   make(map[string][]domain.Message),
		watchers: make(map[string][]func([]domain.Message)),
	}
}

func (m *memMessages) deleteByRoom(roomID string) int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	deleted := int64(len(m.byRoom[roomID]))
	delete(m.byRoom, roomID)
	return deleted
}

func (m *memMessages) count(roomID string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.byRoom[roomID])
}

func (m *memMessages) Create(ctx context.Context, message *domain.Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if message.ID == "" {
		message.ID = uuid.NewString()
	}
	m.byRoom[message.RoomID] = append(m.byRoom[message.RoomID], *message)

	snapshot := append([]domain.Message(nil), m.byRoom[message.RoomID]...)
	for _, w := range m.watchers[message.RoomID] {
		w(snapshot)
	}
	return nil
}

func (m *memMessages) ListByRoom(ctx context.Context, roomID string, limit int64) ([]domain.Message, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	messages := m.byRoom[roomID]
	if int64(len(messages)) > limit {
		messages = messages[int64(len(messages))-limit:]
	}
	return append([]domain.Message(nil), messages...), nil
}

func (m *memMessages) CountByRoom(ctx context.Context, roomID string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return int64(len(m.byRoom[roomID])), nil
}

func (m *memMessages) Watch(ctx context.Context, roomID string, onChange func([]domain.Message)) (domain.Subscription, error) {
	m.mu.Lock()
	m.watchers[roomID] = append(m.watchers[roomID], onChange)
	snapshot := append([]domain.Message(nil), m.byRoom[roomID]...)
	m.mu.Unlock()

	onChange(snapshot)
	return &memSubscription{}, nil
}

type memTyping struct {
	mu       sync.Mutex
	docs     map[string]map[string]*domain.TypingEntry
	watchers map[string][]func(*domain.TypingStatus)
}

func newMemTyping() *memTyping {
	return &memTyping{
		docs:     make(map[string]map[string]*domain.TypingEntry),
		watchers: make(map[string][]func(*domain.TypingStatus)),
	}
}

func (m *memTyping) snapshotLocked(roomID string) *domain.TypingStatus {
	signals := make(map[string]*domain.TypingEntry, len(m.docs[roomID]))
	for k, v := range m.docs[roomID] {
		if v == nil {
			signals[k] = nil
			continue
		}
		copied := *v
		signals[k] = &copied
	}
	return &domain.TypingStatus{RoomID: roomID, Signals: signals}
}

func (m *memTyping) merge(ctx context.Context, roomID, clientID string, entry *domain.TypingEntry) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.docs[roomID] == nil {
		m.docs[roomID] = make(map[string]*domain.TypingEntry)
	}
	m.docs[roomID][clientID] = entry

	snapshot := m.snapshotLocked(roomID)
	for _, w := range m.watchers[roomID] {
		w(snapshot)
	}
	return nil
}

func (m *memTyping) Merge(ctx context.Context, roomID, clientID string, at time.Time) error {
	return m.merge(ctx, roomID, clientID, &domain.TypingEntry{Timestamp: at})
}

func (m *memTyping) Clear(ctx context.Context, roomID, clientID string) error {
	return m.merge(ctx, roomID, clientID, nil)
}

func (m *memTyping) Get(ctx context.Context, roomID string) (*domain.TypingStatus, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.snapshotLocked(roomID), nil
}

func (m *memTyping) Watch(ctx context.Context, roomID string, onChange func(*domain.TypingStatus)) (domain.Subscription, error) {
	m.mu.Lock()
	m.watchers[roomID] = append(m.watchers[roomID], onChange)
	snapshot := m.snapshotLocked(roomID)
	m.mu.Unlock()

	onChange(snapshot)
	return &memSubscription{}, nil
}

func (m *memTyping) ListRoomIDs(ctx context.Context, limit int64) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	ids := make([]string, 0, len(m.docs))
	for id := range m.docs {
		if int64(len(ids)) >= limit {
			break
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func (m *memTyping) DeleteAll(ctx context.Context, roomIDs []string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var deleted int64
	for _, id := range roomIDs {
		if _, ok := m.docs[id]; ok {
			delete(m.docs, id)
			deleted++
		}
	}
	return deleted, nil
}
