package domain

import (
	"context"
	"errors"
	"time"
)

// MaxParticipants is the hard cap for a pairing session. Rooms are strictly
// two-party; the >2 branch in leave handling exists only for forward
// compatibility.
const MaxParticipants = 2

type RoomStatus string

const (
	RoomWaiting RoomStatus = "waiting"
	RoomActive  RoomStatus = "active"
)

var (
	ErrRoomNotFound   = errors.New("room not found")
	ErrNoWaitingRoom  = errors.New("no waiting room available")
	ErrRoomFull       = errors.New("room is full")
	ErrAlreadyInRoom  = errors.New("already in room")
	ErrNotParticipant = errors.New("not a participant of this room")
	ErrMatchmaking    = errors.New("failed to find or create room")
	ErrEmptyClientID  = errors.New("client id must not be empty")
)

// Room is the persisted pairing session between one or two anonymous clients.
// A room document with zero participants never exists: the last leave deletes
// the document, and the absence of the document is the "ended" state.
type Room struct {
	ID           string     `bson:"_id,omitempty" json:"id"`
	Participants []string   `bson:"participants" json:"participants"`
	Status       RoomStatus `bson:"status" json:"status"`
	CreatedAt    time.Time  `bson:"createdAt" json:"createdAt"`
	UpdatedAt    time.Time  `bson:"updatedAt" json:"updatedAt"`
}

// StatusFor derives the room status from the participant count. Status is a
// pure function of the participant set; it is stored denormalized so the
// store can query on it.
func StatusFor(participants int) RoomStatus {
	if participants >= MaxParticipants {
		return RoomActive
	}
	return RoomWaiting
}

func NewRoom(clientID string) (*Room, error) {
	if clientID == "" {
		return nil, ErrEmptyClientID
	}

	now := time.Now().UTC()

	return &Room{
		Participants: []string{clientID},
		Status:       RoomWaiting,
		CreatedAt:    now,
		UpdatedAt:    now,
	}, nil
}

func (r *Room) HasParticipant(clientID string) bool {
	for _, p := range r.Participants {
		if p == clientID {
			return true
		}
	}
	return false
}

// IsConnected reports whether both parties are present.
func (r *Room) IsConnected() bool {
	return r.Status == RoomActive && len(r.Participants) == MaxParticipants
}

// Subscription is the explicit handle returned by every listen operation.
// Close releases the underlying watch; callers must close subscriptions on
// teardown to stop reacting to rooms no longer relevant to them.
type Subscription interface {
	Close() error
}

// RoomRepository is the document-store contract for rooms. The store is an
// external collaborator: eventually consistent, asynchronous, and the sole
// synchronization point between the two participants.
type RoomRepository interface {
	Create(ctx context.Context, room *Room) error
	GetByID(ctx context.Context, id string) (*Room, error)

	// FindWaitingFor returns the waiting room that already contains
	// clientID, or ErrNoWaitingRoom. Used for idempotent re-entry.
	FindWaitingFor(ctx context.Context, clientID string) (*Room, error)

	// JoinWaiting atomically joins the first waiting room with exactly one
	// participant that does not contain clientID: the participant is added,
	// status flips to active and updatedAt is refreshed in one conditional
	// update. Returns ErrNoWaitingRoom when no such room exists.
	JoinWaiting(ctx context.Context, clientID string) (*Room, error)

	// RemoveParticipant pulls clientID from the participant set and
	// refreshes updatedAt. Reserved for >2-party rooms.
	RemoveParticipant(ctx context.Context, roomID, clientID string) error

	// DeleteWithMessages removes the room and every message referencing it
	// as one atomic batch. Deleting an absent room is a no-op.
	DeleteWithMessages(ctx context.Context, roomID string) (messagesDeleted int64, err error)

	// Touch refreshes updatedAt, the staleness clock the reaper judges by.
	Touch(ctx context.Context, roomID string) error

	// List returns up to limit rooms in store order. No ordering guarantee.
	List(ctx context.Context, limit int64) ([]Room, error)

	// Watch delivers the current room snapshot immediately and then every
	// subsequent change in write order. A nil room signals deletion.
	Watch(ctx context.Context, roomID string, onChange func(*Room)) (Subscription, error)
}
