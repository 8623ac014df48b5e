package chat

import (
	"context"
	"sync"
	"time"

	"github.com/mewisme/private-chats/internal/domain"
	"github.com/mewisme/private-chats/internal/infrastructure/logging"
)

// DefaultTypingIdleTimeout is the writer-side pause after which a typing
// signal is cleared. The read-side freshness window (domain.TypingFreshness)
// is deliberately longer so a crashed writer still self-heals.
const DefaultTypingIdleTimeout = 2 * time.Second

// Presence owns the typing signal protocol over the shared per-room typing
// document.
type Presence struct {
	typing      domain.TypingRepository
	idleTimeout time.Duration
	logger      logging.Logger
	clock       func() time.Time
}

func NewPresence(typing domain.TypingRepository, idleTimeout time.Duration, logger logging.Logger) *Presence {
	if idleTimeout <= 0 {
		idleTimeout = DefaultTypingIdleTimeout
	}
	return &Presence{
		typing:      typing,
		idleTimeout: idleTimeout,
		logger:      logger,
		clock:       time.Now,
	}
}

// Typist is one participant's typing writer for one room. Touch on every
// keystroke; Stop on send or teardown. All store writes are best-effort:
// failures are logged and swallowed, presence must never break chat.
type Typist struct {
	presence *Presence
	roomID   string
	clientID string

	mu     sync.Mutex
	active bool
	timer  *time.Timer
}

func (p *Presence) NewTypist(roomID, clientID string) *Typist {
	return &Typist{
		presence: p,
		roomID:   roomID,
		clientID: clientID,
	}
}

// Touch marks the client as typing. The store write happens only on the
// first touch of a burst; subsequent touches merely push the idle timer
// forward. A pause of the idle timeout clears the signal.
func (t *Typist) Touch(ctx context.Context) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if !t.active {
		t.active = true
		if err := t.presence.typing.Merge(ctx, t.roomID, t.clientID, t.presence.clock().UTC()); err != nil {
			t.presence.logger.Warn(logging.Presence, logging.TypingSignal, "failed to merge typing signal", map[logging.ExtraKey]any{
				logging.RoomId:       t.roomID,
				logging.ClientId:     t.clientID,
				logging.ErrorMessage: err.Error(),
			})
		}
	}

	if t.timer != nil {
		t.timer.Stop()
	}
	t.timer = time.AfterFunc(t.presence.idleTimeout, func() {
		t.clear(context.Background())
	})
}

// Stop clears the signal immediately and cancels the pending idle clear.
func (t *Typist) Stop(ctx context.Context) {
	t.mu.Lock()
	if t.timer != nil {
		t.timer.Stop()
		t.timer = nil
	}
	t.mu.Unlock()

	t.clear(ctx)
}

func (t *Typist) clear(ctx context.Context) {
	t.mu.Lock()
	wasActive := t.active
	t.active = false
	t.mu.Unlock()

	if !wasActive {
		return
	}

	if err := t.presence.typing.Clear(ctx, t.roomID, t.clientID); err != nil {
		t.presence.logger.Warn(logging.Presence, logging.TypingSignal, "failed to clear typing signal", map[logging.ExtraKey]any{
			logging.RoomId:       t.roomID,
			logging.ClientId:     t.clientID,
			logging.ErrorMessage: err.Error(),
		})
	}
}

// ClearTyping merges a null entry for the client without going through a
// Typist. Used by disconnect cleanup.
func (p *Presence) ClearTyping(ctx context.Context, roomID, clientID string) {
	if err := p.typing.Clear(ctx, roomID, clientID); err != nil {
		p.logger.Warn(logging.Presence, logging.TypingSignal, "failed to clear typing signal", map[logging.ExtraKey]any{
			logging.RoomId:       roomID,
			logging.ClientId:     clientID,
			logging.ErrorMessage: err.Error(),
		})
	}
}

// ListenToTyping reports whether anyone other than selfID is typing right
// now. Freshness is judged at read time against the snapshot timestamps, so
// a stale entry left behind by a crashed writer decays on its own.
func (p *Presence) ListenToTyping(ctx context.Context, roomID, selfID string, onChange func(bool)) (domain.Subscription, error) {
	return p.typing.Watch(ctx, roomID, func(status *domain.TypingStatus) {
		onChange(status.AnyoneElseTyping(selfID, p.clock()))
	})
}
