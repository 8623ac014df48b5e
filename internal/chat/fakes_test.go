package chat

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/mewisme/private-chats/internal/domain"
	"github.com/mewisme/private-chats/internal/infrastructure/logging"
)

// nopLogger keeps test output quiet.
type nopLogger struct{}

func (nopLogger) Init()                                                             {}
func (nopLogger) Debug(logging.Category, logging.SubCategory, string, map[logging.ExtraKey]any) {}
func (nopLogger) Debugf(string, ...any)                                             {}
func (nopLogger) Info(logging.Category, logging.SubCategory, string, map[logging.ExtraKey]any)  {}
func (nopLogger) Infof(string, ...any)                                              {}
func (nopLogger) Warn(logging.Category, logging.SubCategory, string, map[logging.ExtraKey]any)  {}
func (nopLogger) Warnf(string, ...any)                                              {}
func (nopLogger) Error(logging.Category, logging.SubCategory, string, map[logging.ExtraKey]any) {}
func (nopLogger) Errorf(string, ...any)                                             {}
func (nopLogger) Fatal(logging.Category, logging.SubCategory, string, map[logging.ExtraKey]any) {}
func (nopLogger) Fatalf(string, ...any)                                             {}

type fakeSubscription struct {
	close func()
}

func (s *fakeSubscription) Close() error {
	if s.close != nil {
		s.close()
	}
	return nil
}

// fakeRooms serializes every mutation behind one mutex, which mirrors the
// conditional-update semantics the real store provides: a join either sees
// the free waiting room and takes it, or does not see it at all.
type fakeRooms struct {
	mu       sync.Mutex
	rooms    map[string]*domain.Room
	messages *fakeMessages
	watchers map[string][]func(*domain.Room)

	listErr   error
	deleteErr error
}

func newFakeRooms(messages *fakeMessages) *fakeRooms {
	return &fakeRooms{
		rooms:    make(map[string]*domain.Room),
		messages: messages,
		watchers: make(map[string][]func(*domain.Room)),
	}
}

func (f *fakeRooms) notifyLocked(roomID string) {
	var snapshot *domain.Room
	if room, ok := f.rooms[roomID]; ok {
		copied := *room
		copied.Participants = append([]string(nil), room.Participants...)
		snapshot = &copied
	}
	for _, w := range f.watchers[roomID] {
		w(snapshot)
	}
}

func (f *fakeRooms) Create(ctx context.Context, room *domain.Room) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if room.ID == "" {
		room.ID = uuid.NewString()
	}
	copied := *room
	copied.Participants = append([]string(nil), room.Participants...)
	f.rooms[room.ID] = &copied
	f.notifyLocked(room.ID)
	return nil
}

func (f *fakeRooms) GetByID(ctx context.Context, id string) (*domain.Room, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	room, ok := f.rooms[id]
	if !ok {
		return nil, domain.ErrRoomNotFound
	}
	copied := *room
	copied.Participants = append([]string(nil), room.Participants...)
	return &copied, nil
}

func (f *fakeRooms) FindWaitingFor(ctx context.Context, clientID string) (*domain.Room, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, room := range f.rooms {
		if room.Status == domain.RoomWaiting && room.HasParticipant(clientID) {
			copied := *room
			return &copied, nil
		}
	}
	return nil, domain.ErrNoWaitingRoom
}

func (f *fakeRooms) JoinWaiting(ctx context.Context, clientID string) (*domain.Room, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	candidates := make([]*domain.Room, 0, len(f.rooms))
	for _, room := range f.rooms {
		if room.Status == domain.RoomWaiting && len(room.Participants) == 1 && !room.HasParticipant(clientID) {
			candidates = append(candidates, room)
		}
	}
	if len(candidates) == 0 {
		return nil, domain.ErrNoWaitingRoom
	}

	sort.Slice(candidates, func(i, j int) bool {
		return candidates[i].CreatedAt.Before(candidates[j].CreatedAt)
	})

	room := candidates[0]
	room.Participants = append(room.Participants, clientID)
	room.Status = domain.RoomActive
	room.UpdatedAt = time.Now().UTC()
	f.notifyLocked(room.ID)

	copied := *room
	copied.Participants = append([]string(nil), room.Participants...)
	return &copied, nil
}

func (f *fakeRooms) RemoveParticipant(ctx context.Context, roomID, clientID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	room, ok := f.rooms[roomID]
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
	room.UpdatedAt = time.Now().UTC()
	f.notifyLocked(roomID)
	return nil
}

func (f *fakeRooms) DeleteWithMessages(ctx context.Context, roomID string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.deleteErr != nil {
		return 0, f.deleteErr
	}

	deleted := f.messages.deleteByRoom(roomID)
	delete(f.rooms, roomID)
	f.notifyLocked(roomID)
	return deleted, nil
}

func (f *fakeRooms) Touch(ctx context.Context, roomID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	room, ok := f.rooms[roomID]
	if !ok {
		return domain.ErrRoomNotFound
	}
	room.UpdatedAt = time.Now().UTC()
	f.notifyLocked(roomID)
	return nil
}

func (f *fakeRooms) List(ctx context.Context, limit int64) ([]domain.Room, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.listErr != nil {
		return nil, f.listErr
	}

	rooms := make([]domain.Room, 0, len(f.rooms))
	for _, room := range f.rooms {
		if int64(len(rooms)) >= limit {
			break
		}
		copied := *room
		rooms = append(rooms, copied)
	}
	return rooms, nil
}

func (f *fakeRooms) Watch(ctx context.Context, roomID string, onChange func(*domain.Room)) (domain.Subscription, error) {
	f.mu.Lock()
	f.watchers[roomID] = append(f.watchers[roomID], onChange)
	var snapshot *domain.Room
	if room, ok := f.rooms[roomID]; ok {
		copied := *room
		snapshot = &copied
	}
	f.mu.Unlock()

	onChange(snapshot)
	return &fakeSubscription{}, nil
}

type fakeMessages struct {
	mu       sync.Mutex
	byRoom   map[string][]domain.Message
	watchers map[string][]func([]domain.Message)
}

func newFakeMessages() *fakeMessages {
	return &fakeMessages{
		byRoom:   make(map[string][]domain.Message),
		watchers: make(map[string][]func([]domain.Message)),
	}
}

func (f *fakeMessages) deleteByRoom(roomID string) int64 {
	f.mu.Lock()
	defer f.mu.Unlock()

	deleted := int64(len(f.byRoom[roomID]))
	delete(f.byRoom, roomID)
	return deleted
}

func (f *fakeMessages) Create(ctx context.Context, message *domain.Message) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if message.ID == "" {
		message.ID = uuid.NewString()
	}
	f.byRoom[message.RoomID] = append(f.byRoom[message.RoomID], *message)

	snapshot := append([]domain.Message(nil), f.byRoom[message.RoomID]...)
	for _, w := range f.watchers[message.RoomID] {
		w(snapshot)
	}
	return nil
}

func (f *fakeMessages) ListByRoom(ctx context.Context, roomID string, limit int64) ([]domain.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	messages := f.byRoom[roomID]
	if int64(len(messages)) > limit {
		messages = messages[int64(len(messages))-limit:]
	}
	return append([]domain.Message(nil), messages...), nil
}

func (f *fakeMessages) CountByRoom(ctx context.Context, roomID string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return int64(len(f.byRoom[roomID])), nil
}

func (f *fakeMessages) Watch(ctx context.Context, roomID string, onChange func([]domain.Message)) (domain.Subscription, error) {
	f.mu.Lock()
	f.watchers[roomID] = append(f.watchers[roomID], onChange)
	snapshot := append([]domain.Message(nil), f.byRoom[roomID]...)
	f.mu.Unlock()

	onChange(snapshot)
	return &fakeSubscription{}, nil
}

type fakeTyping struct {
	mu       sync.Mutex
	docs     map[string]map[string]*domain.TypingEntry
	watchers map[string][]func(*domain.TypingStatus)

	mergeErr error
}

func newFakeTyping() *fakeTyping {
	return &fakeTyping{
		docs:     make(map[string]map[string]*domain.TypingEntry),
		watchers: make(map[string][]func(*domain.TypingStatus)),
	}
}

func (f *fakeTyping) snapshotLocked(roomID string) *domain.TypingStatus {
	signals := make(map[string]*domain.TypingEntry, len(f.docs[roomID]))
	for k, v := range f.docs[roomID] {
		if v == nil {
			signals[k] = nil
			continue
		}
		copied := *v
		signals[k] = &copied
	}
	return &domain.TypingStatus{RoomID: roomID, Signals: signals}
}

func (f *fakeTyping) merge(roomID, clientID string, entry *domain.TypingEntry) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.mergeErr != nil {
		return f.mergeErr
	}

	if f.docs[roomID] == nil {
		f.docs[roomID] = make(map[string]*domain.TypingEntry)
	}
	f.docs[roomID][clientID] = entry

	snapshot := f.snapshotLocked(roomID)
	for _, w := range f.watchers[roomID] {
		w(snapshot)
	}
	return nil
}

func (f *fakeTyping) Merge(ctx context.Context, roomID, clientID string, at time.Time) error {
	return f.merge(roomID, clientID, &domain.TypingEntry{Timestamp: at})
}

func (f *fakeTyping) Clear(ctx context.Context, roomID, clientID string) error {
	return f.merge(roomID, clientID, nil)
}

func (f *fakeTyping) Get(ctx context.Context, roomID string) (*domain.TypingStatus, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.snapshotLocked(roomID), nil
}

func (f *fakeTyping) Watch(ctx context.Context, roomID string, onChange func(*domain.TypingStatus)) (domain.Subscription, error) {
	f.mu.Lock()
	f.watchers[roomID] = append(f.watchers[roomID], onChange)
	snapshot := f.snapshotLocked(roomID)
	f.mu.Unlock()

	onChange(snapshot)
	return &fakeSubscription{}, nil
}

func (f *fakeTyping) ListRoomIDs(ctx context.Context, limit int64) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	ids := make([]string, 0, len(f.docs))
	for id := range f.docs {
		if int64(len(ids)) >= limit {
			break
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func (f *fakeTyping) DeleteAll(ctx context.Context, roomIDs []string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var deleted int64
	for _, id := range roomIDs {
		if _, ok := f.docs[id]; ok {
			delete(f.docs, id)
			deleted++
		}
	}
	return deleted, nil
}
