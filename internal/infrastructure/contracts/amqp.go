package contracts

import "encoding/json"

const (
	EventRoomCreated = "room.created"
	EventRoomMatched = "room.matched"
	EventRoomLeft    = "room.left"
	EventRoomReaped  = "room.reaped"
)

type AmqpMessage struct {
	RoomID string          `json:"roomId"`
	Data   json.RawMessage `json:"data"`
}
