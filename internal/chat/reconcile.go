package chat

import (
	"context"
	"sync"
	"time"

	"github.com/mewisme/private-chats/internal/infrastructure/logging"
)

// DefaultManualLeaveWindow is how long a self-initiated leave suppresses
// room-gone handling. Long enough to cover the store round-trip that deletes
// the room, short enough that a genuine peer leave right after is still
// reported.
const DefaultManualLeaveWindow = 300 * time.Millisecond

// RoomGoneAction is what a session should do when it observes its room gone.
type RoomGoneAction int

const (
	// RoomGoneSuppressed: the client left on purpose, show nothing.
	RoomGoneSuppressed RoomGoneAction = iota
	// RoomGoneNotify: first unsuppressed observation, tell the user the chat
	// ended and clear the local room association.
	RoomGoneNotify
	// RoomGoneIgnore: the notification already fired, redundant observation.
	RoomGoneIgnore
)

// Reconciler arbitrates the end-of-room signals for one client session. Room
// deletion is observed asynchronously by every session of both participants,
// including the one that caused it; the manual-leave window and the
// single-fire guard turn those racy observations into exactly one user-facing
// outcome.
type Reconciler struct {
	lifecycle *Lifecycle
	presence  *Presence
	window    time.Duration
	logger    logging.Logger
	clock     func() time.Time

	mu          sync.Mutex
	leaveArmed  time.Time
	notifiedFor map[string]bool
}

func NewReconciler(lifecycle *Lifecycle, presence *Presence, window time.Duration, logger logging.Logger) *Reconciler {
	if window <= 0 {
		window = DefaultManualLeaveWindow
	}
	return &Reconciler{
		lifecycle:   lifecycle,
		presence:    presence,
		window:      window,
		logger:      logger,
		clock:       time.Now,
		notifiedFor: make(map[string]bool),
	}
}

// BeginManualLeave arms the suppression window. Call it immediately before
// issuing a self-initiated leave.
func (r *Reconciler) BeginManualLeave() {
	r.mu.Lock()
	r.leaveArmed = r.clock()
	r.mu.Unlock()
}

// RoomGone classifies one observation of the room's disappearance.
func (r *Reconciler) RoomGone(roomID string) RoomGoneAction {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.leaveArmed.IsZero() && r.clock().Sub(r.leaveArmed) < r.window {
		// Self-initiated: remember the room so late echoes stay silent too.
		r.notifiedFor[roomID] = true
		return RoomGoneSuppressed
	}

	if r.notifiedFor[roomID] {
		return RoomGoneIgnore
	}

	r.notifiedFor[roomID] = true
	return RoomGoneNotify
}

// Reset forgets a room's notification guard. Used when the client enters a
// new room, so a reused reconciler starts clean.
func (r *Reconciler) Reset(roomID string) {
	r.mu.Lock()
	delete(r.notifiedFor, roomID)
	r.mu.Unlock()
}

// HandleDisconnect is the fire-and-forget cleanup for a session that dropped
// without an explicit leave. Errors are logged and swallowed; the stale-room
// reaper compensates for anything missed here.
func (r *Reconciler) HandleDisconnect(ctx context.Context, roomID, clientID string) {
	if roomID == "" || clientID == "" {
		return
	}

	r.presence.ClearTyping(ctx, roomID, clientID)

	if err := r.lifecycle.LeaveRoom(ctx, roomID, clientID); err != nil {
		r.logger.Warn(logging.Lifecycle, logging.Reconcile, "disconnect cleanup failed", map[logging.ExtraKey]any{
			logging.RoomId:       roomID,
			logging.ClientId:     clientID,
			logging.ErrorMessage: err.Error(),
		})
	}
}
