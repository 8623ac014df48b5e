package domain

import (
	"context"
	"time"
)

// TypingFreshness is the read-side window after which a typing entry is
// treated as absent even when not yet physically cleared. It is deliberately
// longer than the writer's idle timeout so clock skew and store propagation
// latency do not flicker the indicator, while a crashed writer still
// self-heals within one window.
const TypingFreshness = 3 * time.Second

// TypingEntry is one participant's last-active mark inside the shared
// per-room typing document. A nil entry is an explicit clear: the store keeps
// the key with a null value (merge-write-null) rather than removing it.
type TypingEntry struct {
	Timestamp time.Time `bson:"timestamp" json:"timestamp"`
}

// TypingStatus is the single shared per-room typing document. Concurrent
// writers never conflict destructively because each merges only its own
// sub-key; readers always see the latest merged snapshot.
type TypingStatus struct {
	RoomID  string                  `bson:"roomId" json:"roomId"`
	Signals map[string]*TypingEntry `bson:"signals" json:"signals"`
}

// AnyoneElseTyping scans the snapshot for an entry other than self that is
// present, non-null and fresher than TypingFreshness at now. Freshness is
// judged at read time, never at write time: absence of a clear must not be
// trusted as presence of typing.
func (t *TypingStatus) AnyoneElseTyping(selfID string, now time.Time) bool {
	if t == nil {
		return false
	}

	for clientID, entry := range t.Signals {
		if clientID == selfID || entry == nil {
			continue
		}
		if now.Sub(entry.Timestamp) < TypingFreshness {
			return true
		}
	}

	return false
}

type TypingRepository interface {
	// Merge upserts the caller's entry in the room's shared typing document.
	Merge(ctx context.Context, roomID, clientID string, at time.Time) error

	// Clear merge-writes a null entry for the caller. Clearing an absent
	// entry is a no-op.
	Clear(ctx context.Context, roomID, clientID string) error

	Get(ctx context.Context, roomID string) (*TypingStatus, error)

	// Watch delivers the current snapshot immediately and after every merge.
	// A deleted document is delivered as an empty snapshot.
	Watch(ctx context.Context, roomID string, onChange func(*TypingStatus)) (Subscription, error)

	// ListRoomIDs returns up to limit room ids that currently have a typing
	// document, in store order. Used by the reaper's blanket clear.
	ListRoomIDs(ctx context.Context, limit int64) ([]string, error)

	// DeleteAll removes the typing documents for the given rooms and
	// returns how many existed.
	DeleteAll(ctx context.Context, roomIDs []string) (int64, error)
}
