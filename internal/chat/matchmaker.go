package chat

import (
	"context"
	"errors"
	"fmt"

	"github.com/mewisme/private-chats/internal/domain"
	"github.com/mewisme/private-chats/internal/infrastructure/logging"
	"github.com/mewisme/private-chats/internal/infrastructure/metrics"
)

// Matchmaker pairs anonymous clients into rooms. The store is the only
// synchronization point between the two parties; every step below is a store
// query and the join step is a single conditional update, so two clients
// racing for the same waiting room cannot both get in.
type Matchmaker struct {
	rooms  domain.RoomRepository
	logger logging.Logger
}

func NewMatchmaker(rooms domain.RoomRepository, logger logging.Logger) *Matchmaker {
	return &Matchmaker{
		rooms:  rooms,
		logger: logger,
	}
}

// FindOrCreateRoom runs the three-step matchmaking protocol:
//
//  1. a waiting room already containing the client is returned as-is, which
//     makes retries and duplicate tabs idempotent
//  2. the oldest waiting room with exactly one other participant is joined
//     atomically, flipping it to active
//  3. otherwise a fresh waiting room is created with the client as its sole
//     participant
func (m *Matchmaker) FindOrCreateRoom(ctx context.Context, clientID string) (string, error) {
	if clientID == "" {
		return "", domain.ErrEmptyClientID
	}

	// Step 1: idempotent re-entry.
	room, err := m.rooms.FindWaitingFor(ctx, clientID)
	if err == nil {
		m.logger.Info(logging.Matchmaking, logging.FindOrCreate, "client already waiting", map[logging.ExtraKey]any{
			logging.RoomId:   room.ID,
			logging.ClientId: clientID,
		})
		return room.ID, nil
	}
	if !errors.Is(err, domain.ErrNoWaitingRoom) {
		return "", fmt.Errorf("%w: %v", domain.ErrMatchmaking, err)
	}

	// Step 2: join the first free waiting room.
	room, err = m.rooms.JoinWaiting(ctx, clientID)
	if err == nil {
		metrics.RoomsMatched.Inc()
		m.logger.Info(logging.Matchmaking, logging.FindOrCreate, "joined waiting room", map[logging.ExtraKey]any{
			logging.RoomId:   room.ID,
			logging.ClientId: clientID,
		})
		return room.ID, nil
	}
	if !errors.Is(err, domain.ErrNoWaitingRoom) {
		return "", fmt.Errorf("%w: %v", domain.ErrMatchmaking, err)
	}

	// Step 3: nobody is waiting, open a new room.
	room, err = domain.NewRoom(clientID)
	if err != nil {
		return "", err
	}
	if err := m.rooms.Create(ctx, room); err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrMatchmaking, err)
	}

	metrics.RoomsCreated.Inc()
	m.logger.Info(logging.Matchmaking, logging.FindOrCreate, "created waiting room", map[logging.ExtraKey]any{
		logging.RoomId:   room.ID,
		logging.ClientId: clientID,
	})

	return room.ID, nil
}
