package ws

import (
	"context"
	"encoding/json"
	"log"

	"github.com/mewisme/private-chats/internal/chat"
	"github.com/mewisme/private-chats/internal/domain"
	"github.com/mewisme/private-chats/internal/infrastructure/metrics"
	"github.com/mewisme/private-chats/internal/infrastructure/tabsync"
)

// Session binds one WebSocket connection to one room for one client. The
// server side owns the store subscriptions; the browser only sends thin
// frames and renders the events streamed back.
type Session struct {
	client      *Client
	lifecycle   *chat.Lifecycle
	messenger   *chat.Messenger
	presence    *chat.Presence
	reconciler  *chat.Reconciler
	broadcaster *tabsync.Broadcaster

	typist      *chat.Typist
	subs        []domain.Subscription
	unsubscribe func()

	// explicitLeave distinguishes a clean leave frame from a dropped socket.
	explicitLeave bool
}

func NewSession(client *Client, lifecycle *chat.Lifecycle, messenger *chat.Messenger, presence *chat.Presence, reconciler *chat.Reconciler, broadcaster *tabsync.Broadcaster) *Session {
	return &Session{
		client:      client,
		lifecycle:   lifecycle,
		messenger:   messenger,
		presence:    presence,
		reconciler:  reconciler,
		broadcaster: broadcaster,
	}
}

// Run services the connection until the client leaves or the socket drops.
// It blocks; the handler calls it from the request goroutine.
func (s *Session) Run(ctx context.Context) {
	metrics.WSConnections.Inc()
	defer metrics.WSConnections.Dec()

	// The session outlives the request deadline the router's timeout
	// middleware imposes; store calls must not die with it. Socket teardown,
	// not context cancellation, ends the session.
	ctx = context.WithoutCancel(ctx)

	roomID := s.client.RoomID
	clientID := s.client.ID

	s.typist = s.presence.NewTypist(roomID, clientID)
	s.reconciler.Reset(roomID)

	go s.client.WriteMessage()

	roomSub, err := s.lifecycle.ListenToRoom(ctx, roomID, func(room *domain.Room) {
		if room == nil {
			if s.reconciler.RoomGone(roomID) == chat.RoomGoneNotify {
				s.client.Send(NewRoomGone(roomID))
			}
			return
		}
		s.client.Send(NewRoomUpdated(room))
	})
	if err != nil {
		s.client.Send(NewError(roomID, "failed to watch room"))
		s.teardown()
		return
	}
	s.subs = append(s.subs, roomSub)

	msgSub, err := s.messenger.ListenToMessages(ctx, roomID, func(messages []domain.Message) {
		s.client.Send(NewMessageReceived(roomID, messages))
	})
	if err != nil {
		s.client.Send(NewError(roomID, "failed to watch messages"))
	} else {
		s.subs = append(s.subs, msgSub)
	}

	typingSub, err := s.presence.ListenToTyping(ctx, roomID, clientID, func(typing bool) {
		s.client.Send(NewTypingUpdated(roomID, typing))
	})
	if err != nil {
		s.client.Send(NewError(roomID, "failed to watch typing"))
	} else {
		s.subs = append(s.subs, typingSub)
	}

	if s.broadcaster != nil {
		// Other sessions of this client (other tabs, other instances) stay in
		// step through the sync channel.
		unsubscribe, err := s.broadcaster.Subscribe(clientID, func(evt tabsync.Envelope) {
			s.observeSync(evt)
			s.client.Send(&WSMessage{Type: SyncEvent, RoomID: roomID, Data: evt})
		})
		if err != nil {
			log.Printf("ws sync subscribe failed (client %s): %v", clientID, err)
		} else {
			s.unsubscribe = unsubscribe
		}
	}

	s.client.ReadFrames(func(frame ClientFrame) bool {
		return s.handleFrame(ctx, frame)
	})

	if !s.explicitLeave {
		// The socket dropped without a leave frame. Best-effort cleanup; the
		// reaper compensates for anything missed.
		s.reconciler.HandleDisconnect(ctx, roomID, clientID)
	}

	s.teardown()
}

// observeSync arms the manual-leave window when another session of this
// client leaves the room, so the room-gone event that follows is not misread
// as a peer-initiated termination.
func (s *Session) observeSync(evt tabsync.Envelope) {
	if evt.Type != tabsync.EventRoomLeft {
		return
	}

	var payload struct {
		RoomID string `json:"roomId"`
	}
	if err := json.Unmarshal(evt.Payload, &payload); err != nil {
		return
	}

	if payload.RoomID == s.client.RoomID {
		s.reconciler.BeginManualLeave()
	}
}

func (s *Session) handleFrame(ctx context.Context, frame ClientFrame) bool {
	roomID := s.client.RoomID
	clientID := s.client.ID

	switch frame.Type {
	case FrameMessageSend:
		var data SendMessageData
		if err := json.Unmarshal(frame.Data, &data); err != nil {
			s.client.Send(NewError(roomID, "malformed message frame"))
			return true
		}

		// Sending implies the burst is over.
		s.typist.Stop(ctx)

		if err := s.messenger.SendMessage(ctx, roomID, clientID, data.Text); err != nil {
			log.Printf("ws send message failed (room %s): %v", roomID, err)
			s.client.Send(NewError(roomID, "failed to send message"))
		}
		return true

	case FrameTypingStart:
		s.typist.Touch(ctx)
		return true

	case FrameTypingStop:
		s.typist.Stop(ctx)
		return true

	case FrameLeave:
		s.explicitLeave = true
		s.reconciler.BeginManualLeave()
		s.typist.Stop(ctx)

		if err := s.lifecycle.LeaveRoom(ctx, roomID, clientID); err != nil {
			log.Printf("ws leave failed (room %s): %v", roomID, err)
		}

		if s.broadcaster != nil {
			if err := s.broadcaster.Publish(clientID, tabsync.EventRoomLeft, map[string]string{"roomId": roomID}); err != nil {
				log.Printf("ws sync publish failed (client %s): %v", clientID, err)
			}
		}
		return false

	default:
		s.client.Send(NewError(roomID, "unknown frame type: "+frame.Type))
		return true
	}
}

func (s *Session) teardown() {
	if s.typist != nil {
		s.typist.Stop(context.Background())
	}
	if s.unsubscribe != nil {
		s.unsubscribe()
	}
	for _, sub := range s.subs {
		_ = sub.Close()
	}
	s.client.Close()
}
