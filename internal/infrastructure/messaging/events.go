package messaging

import "github.com/mewisme/private-chats/internal/domain"

type RoomEventData struct {
	Room domain.Room `json:"room"`
}

type RoomReapedEventData struct {
	RoomID          string `json:"roomId"`
	MessagesDeleted int64  `json:"messagesDeleted"`
}
