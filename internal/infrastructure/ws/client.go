package ws

import (
	"log"
	"sync"

	"github.com/gorilla/websocket"
)

type Client struct {
	conn    *connWrapper
	Message chan *WSMessage
	done    chan struct{}
	once    sync.Once
	ID      string `json:"id"`
	RoomID  string `json:"roomId"`
}

func NewClient(conn *websocket.Conn, id, roomID string) *Client {
	return &Client{
		conn:    newConnWrapper(conn),
		Message: make(chan *WSMessage, 64), // buffered to avoid dead-locks on slow clients
		done:    make(chan struct{}),
		ID:      id,
		RoomID:  roomID,
	}
}

// ReadFrames pumps inbound frames to the handler until the socket drops.
// A false return from the handler ends the session.
func (c *Client) ReadFrames(handle func(frame ClientFrame) bool) {
	defer c.Close()

	for {
		var frame ClientFrame
		if err := c.conn.conn.ReadJSON(&frame); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseAbnormalClosure) {
				log.Printf("ws read error (client %s): %v", c.ID, err)
			}
			return
		}

		if !handle(frame) {
			return
		}
	}
}

func (c *Client) WriteMessage() {
	defer c.Close()

	for {
		select {
		case msg := <-c.Message:
			if err := c.conn.WriteJSON(msg); err != nil {
				log.Printf("ws write error (client %s): %v", c.ID, err)
				return
			}
		case <-c.done:
			return
		}
	}
}

// Send drops the event when the client's buffer is full rather than blocking
// the subscription callback. The Message channel is never closed, so a
// subscription callback still in flight during teardown cannot panic here.
func (c *Client) Send(msg *WSMessage) {
	select {
	case c.Message <- msg:
	default:
		log.Printf("ws send buffer full, dropping %s for client %s", msg.Type, c.ID)
	}
}

// Close stops the write pump and closes the socket. Safe to call more than
// once and concurrently with Send.
func (c *Client) Close() {
	c.once.Do(func() {
		close(c.done)
		_ = c.conn.Close()
	})
}
