package chat

import (
	"context"
	"testing"
	"time"

	"github.com/mewisme/private-chats/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTypistTouchWritesOncePerBurst(t *testing.T) {
	typing := newFakeTyping()
	p := NewPresence(typing, time.Minute, nopLogger{})
	typist := p.NewTypist("room-1", "client-a")

	typist.Touch(context.Background())
	typist.Touch(context.Background())
	typist.Touch(context.Background())

	status, err := typing.Get(context.Background(), "room-1")
	require.NoError(t, err)
	require.Contains(t, status.Signals, "client-a")
	require.NotNil(t, status.Signals["client-a"])

	typist.Stop(context.Background())
}

func TestTypistStopClearsWithNullEntry(t *testing.T) {
	typing := newFakeTyping()
	p := NewPresence(typing, time.Minute, nopLogger{})
	typist := p.NewTypist("room-1", "client-a")

	typist.Touch(context.Background())
	typist.Stop(context.Background())

	status, err := typing.Get(context.Background(), "room-1")
	require.NoError(t, err)

	// The key stays present with a null value, it is not removed.
	require.Contains(t, status.Signals, "client-a")
	assert.Nil(t, status.Signals["client-a"])
}

func TestTypistIdleTimeoutClears(t *testing.T) {
	typing := newFakeTyping()
	p := NewPresence(typing, 10*time.Millisecond, nopLogger{})
	typist := p.NewTypist("room-1", "client-a")

	typist.Touch(context.Background())

	assert.Eventually(t, func() bool {
		status, err := typing.Get(context.Background(), "room-1")
		if err != nil {
			return false
		}
		entry, ok := status.Signals["client-a"]
		return ok && entry == nil
	}, time.Second, 5*time.Millisecond)
}

func TestTypistStopWithoutTouchIsNoOp(t *testing.T) {
	typing := newFakeTyping()
	p := NewPresence(typing, time.Minute, nopLogger{})
	typist := p.NewTypist("room-1", "client-a")

	typist.Stop(context.Background())

	status, err := typing.Get(context.Background(), "room-1")
	require.NoError(t, err)
	assert.NotContains(t, status.Signals, "client-a")
}

func TestTypistSwallowsStoreFailures(t *testing.T) {
	typing := newFakeTyping()
	typing.mergeErr = assert.AnError
	p := NewPresence(typing, time.Minute, nopLogger{})
	typist := p.NewTypist("room-1", "client-a")

	assert.NotPanics(t, func() {
		typist.Touch(context.Background())
		typist.Stop(context.Background())
	})
}

func TestListenToTypingJudgesFreshnessAtReadTime(t *testing.T) {
	typing := newFakeTyping()
	p := NewPresence(typing, time.Minute, nopLogger{})

	now := time.Now().UTC()
	p.clock = func() time.Time { return now }

	var seen []bool
	sub, err := p.ListenToTyping(context.Background(), "room-1", "client-a", func(v bool) {
		seen = append(seen, v)
	})
	require.NoError(t, err)
	defer sub.Close()

	// Initial empty snapshot: nobody typing.
	require.Equal(t, []bool{false}, seen)

	// Fresh entry from the peer.
	require.NoError(t, typing.Merge(context.Background(), "room-1", "client-b", now))
	require.Equal(t, []bool{false, true}, seen)

	// The same entry read after the freshness window counts as absent even
	// though it was never cleared.
	now = now.Add(domain.TypingFreshness + time.Millisecond)
	require.NoError(t, typing.Merge(context.Background(), "room-1", "client-c", now.Add(-domain.TypingFreshness)))
	assert.False(t, seen[len(seen)-1])
}

func TestListenToTypingIgnoresSelfAndNullEntries(t *testing.T) {
	typing := newFakeTyping()
	p := NewPresence(typing, time.Minute, nopLogger{})

	now := time.Now().UTC()
	p.clock = func() time.Time { return now }

	var seen []bool
	sub, err := p.ListenToTyping(context.Background(), "room-1", "client-a", func(v bool) {
		seen = append(seen, v)
	})
	require.NoError(t, err)
	defer sub.Close()

	// Own signal never counts.
	require.NoError(t, typing.Merge(context.Background(), "room-1", "client-a", now))
	assert.False(t, seen[len(seen)-1])

	// A cleared peer entry never counts.
	require.NoError(t, typing.Clear(context.Background(), "room-1", "client-b"))
	assert.False(t, seen[len(seen)-1])
}
