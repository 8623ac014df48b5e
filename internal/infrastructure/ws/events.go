package ws

// Server-to-client events.
const (
	RoomUpdated     = "room.updated"
	RoomGone        = "room.gone"
	MessageReceived = "message.received"
	TypingUpdated   = "typing.updated"

	// SyncEvent relays a cross-session sync envelope to this session.
	SyncEvent = "sync"

	ErrorEvent = "error"
)

// Client-to-server frames.
const (
	FrameMessageSend = "message.send"
	FrameTypingStart = "typing.start"
	FrameTypingStop  = "typing.stop"
	FrameLeave       = "leave"
)
