package tabsync

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBroadcasterDeliversToAllSubscribers(t *testing.T) {
	b := NewBroadcaster(NewLoopbackTransport())
	defer b.Close()

	var got1, got2 []Envelope

	unsub1, err := b.Subscribe("client-a", func(evt Envelope) { got1 = append(got1, evt) })
	require.NoError(t, err)
	defer unsub1()

	unsub2, err := b.Subscribe("client-a", func(evt Envelope) { got2 = append(got2, evt) })
	require.NoError(t, err)
	defer unsub2()

	err = b.Publish("client-a", EventRoomJoined, map[string]string{"roomId": "r1"})
	require.NoError(t, err)

	require.Len(t, got1, 1)
	require.Len(t, got2, 1)
	assert.Equal(t, EventRoomJoined, got1[0].Type)

	var payload map[string]string
	require.NoError(t, json.Unmarshal(got1[0].Payload, &payload))
	assert.Equal(t, "r1", payload["roomId"])
}

func TestBroadcasterIsolatesClients(t *testing.T) {
	b := NewBroadcaster(NewLoopbackTransport())
	defer b.Close()

	var got []Envelope
	unsub, err := b.Subscribe("client-b", func(evt Envelope) { got = append(got, evt) })
	require.NoError(t, err)
	defer unsub()

	require.NoError(t, b.Publish("client-a", EventRoomLeft, nil))

	assert.Empty(t, got)
}

func TestBroadcasterDropsStaleEnvelopes(t *testing.T) {
	now := time.UnixMilli(1000)
	clock := func() time.Time { return now }

	b := NewBroadcaster(NewLoopbackTransport(), WithClock(clock))
	defer b.Close()

	var got []Envelope
	unsub, err := b.Subscribe("client-a", func(evt Envelope) { got = append(got, evt) })
	require.NoError(t, err)
	defer unsub()

	require.NoError(t, b.Publish("client-a", EventRoomJoined, nil))
	require.Len(t, got, 1)

	// Same timestamp is a replay and must be dropped.
	require.NoError(t, b.Publish("client-a", EventRoomJoined, nil))
	assert.Len(t, got, 1)

	// Clock moving backwards is also dropped.
	now = time.UnixMilli(500)
	require.NoError(t, b.Publish("client-a", EventRoomJoined, nil))
	assert.Len(t, got, 1)

	// Strictly newer timestamp is delivered.
	now = time.UnixMilli(2000)
	require.NoError(t, b.Publish("client-a", EventRoomJoined, nil))
	assert.Len(t, got, 2)
}

func TestBroadcasterUnsubscribeStopsDelivery(t *testing.T) {
	b := NewBroadcaster(NewLoopbackTransport())
	defer b.Close()

	var got []Envelope
	unsub, err := b.Subscribe("client-a", func(evt Envelope) { got = append(got, evt) })
	require.NoError(t, err)

	require.NoError(t, b.Publish("client-a", EventCacheChange, nil))
	require.Len(t, got, 1)

	unsub()

	require.NoError(t, b.Publish("client-a", EventCacheChange, nil))
	assert.Len(t, got, 1)
}

func TestBroadcasterIgnoresMalformedEnvelopes(t *testing.T) {
	transport := NewLoopbackTransport()
	b := NewBroadcaster(transport)
	defer b.Close()

	var got []Envelope
	unsub, err := b.Subscribe("client-a", func(evt Envelope) { got = append(got, evt) })
	require.NoError(t, err)
	defer unsub()

	require.NoError(t, transport.Publish(channelFor("client-a"), []byte("not json")))

	assert.Empty(t, got)
}
