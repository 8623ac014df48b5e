package rooms

import (
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"github.com/mewisme/private-chats/internal/chat"
	"github.com/mewisme/private-chats/internal/domain"
	"github.com/mewisme/private-chats/internal/identity"
	"github.com/mewisme/private-chats/internal/infrastructure/events"
	"github.com/mewisme/private-chats/internal/infrastructure/json"
	"github.com/mewisme/private-chats/internal/infrastructure/logging"
	"github.com/mewisme/private-chats/internal/infrastructure/tabsync"
	"github.com/mewisme/private-chats/internal/infrastructure/ws"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

type Handler struct {
	matchmaker    *chat.Matchmaker
	lifecycle     *chat.Lifecycle
	messenger     *chat.Messenger
	presence      *chat.Presence
	identities    *identity.Provider
	roomPublisher *events.RoomPublisher
	broadcaster   *tabsync.Broadcaster
	leaveWindow   time.Duration
	logger        logging.Logger
}

func NewHandler(
	matchmaker *chat.Matchmaker,
	lifecycle *chat.Lifecycle,
	messenger *chat.Messenger,
	presence *chat.Presence,
	identities *identity.Provider,
	roomPublisher *events.RoomPublisher,
	broadcaster *tabsync.Broadcaster,
	leaveWindow time.Duration,
	logger logging.Logger,
) *Handler {
	return &Handler{
		matchmaker:    matchmaker,
		lifecycle:     lifecycle,
		messenger:     messenger,
		presence:      presence,
		identities:    identities,
		roomPublisher: roomPublisher,
		broadcaster:   broadcaster,
		leaveWindow:   leaveWindow,
		logger:        logger,
	}
}

// MatchRoomHandler godoc
// @Summary      Find or create a room
// @Description  Pairs the client with a waiting stranger, or opens a new waiting room. Idempotent for a client already waiting.
// @Tags         rooms
// @Produce      json
// @Success      200 {object} matchRoomResponse "Matched or waiting"
// @Failure      500 {object} map[string]interface{} "Store failure, safe to retry"
// @Router       /rooms/match [post]
func (h *Handler) MatchRoomHandler(w http.ResponseWriter, r *http.Request) {
	clientID := h.identities.Ensure(w, r)

	ctx := r.Context()
	roomID, err := h.matchmaker.FindOrCreateRoom(ctx, clientID)
	if err != nil {
		log.Printf("Matchmaking failed for client %s: %v", clientID, err)
		json.WriteError(w, http.StatusInternalServerError, err, "Matchmaking failed, please try again")
		return
	}

	room, err := h.lifecycle.GetRoom(ctx, roomID)
	if err != nil {
		log.Printf("Matched room %s vanished: %v", roomID, err)
		json.WriteError(w, http.StatusInternalServerError, err, "Matchmaking failed, please try again")
		return
	}

	if room.IsConnected() {
		if err := h.roomPublisher.PublishRoomMatched(ctx, room); err != nil {
			log.Printf("Error publishing room matched: %v", err)
		}
	} else if err := h.roomPublisher.PublishRoomCreated(ctx, room); err != nil {
		log.Printf("Error publishing room created: %v", err)
	}

	// Other tabs of this client pick up the new room association.
	if err := h.broadcaster.Publish(clientID, tabsync.EventRoomJoined, map[string]string{"roomId": roomID}); err != nil {
		log.Printf("Error publishing sync event: %v", err)
	}

	json.Write(w, http.StatusOK, matchRoomResponse{
		RoomID:   roomID,
		ClientID: clientID,
		Status:   string(room.Status),
	})
}

// GetRoomHandler godoc
// @Summary      Get room state
// @Description  Returns the room snapshot. 404 means the room ended, which is a normal terminal state for clients.
// @Tags         rooms
// @Produce      json
// @Param        roomId path string true "Room ID"
// @Success      200 {object} roomResponse "Room snapshot"
// @Failure      404 {object} map[string]interface{} "Room gone"
// @Router       /rooms/{roomId} [get]
func (h *Handler) GetRoomHandler(w http.ResponseWriter, r *http.Request) {
	roomID := chi.URLParam(r, "roomId")
	if roomID == "" {
		json.WriteValidationError(w, errors.New("room ID is missing"))
		return
	}

	room, err := h.lifecycle.GetRoom(r.Context(), roomID)
	if err != nil {
		if errors.Is(err, domain.ErrRoomNotFound) {
			json.WriteError(w, http.StatusNotFound, err, "Room not found")
			return
		}
		json.WriteInternalError(w, err)
		return
	}

	json.Write(w, http.StatusOK, roomResponse{
		ID:           room.ID,
		Participants: len(room.Participants),
		Status:       string(room.Status),
		CreatedAt:    room.CreatedAt,
		UpdatedAt:    room.UpdatedAt,
	})
}

// LeaveRoomHandler godoc
// @Summary      Leave a room
// @Description  Removes the client from the room, deleting the room and its messages. Leaving an absent room succeeds.
// @Tags         rooms
// @Param        roomId path string true "Room ID"
// @Success      204 "Left"
// @Failure      401 {object} map[string]interface{} "Missing identity"
// @Router       /rooms/{roomId}/leave [post]
func (h *Handler) LeaveRoomHandler(w http.ResponseWriter, r *http.Request) {
	roomID := chi.URLParam(r, "roomId")
	if roomID == "" {
		json.WriteValidationError(w, errors.New("room ID is missing"))
		return
	}

	clientID := h.identities.FromRequest(r)
	if clientID == "" {
		json.WriteError(w, http.StatusUnauthorized, errors.New("unauthorized"), "Missing or invalid identity")
		return
	}

	ctx := r.Context()

	room, err := h.lifecycle.GetRoom(ctx, roomID)
	if err == nil {
		if pubErr := h.roomPublisher.PublishRoomLeft(ctx, room); pubErr != nil {
			log.Printf("Error publishing room left: %v", pubErr)
		}
	}

	// Best-effort: a failed leave is logged, never surfaced. The reaper
	// compensates.
	if err := h.lifecycle.LeaveRoom(ctx, roomID, clientID); err != nil {
		log.Printf("Leave failed for room %s: %v", roomID, err)
	}

	h.presence.ClearTyping(ctx, roomID, clientID)

	if err := h.broadcaster.Publish(clientID, tabsync.EventRoomLeft, map[string]string{"roomId": roomID}); err != nil {
		log.Printf("Error publishing sync event: %v", err)
	}

	// Leaving ends this identity; the next match mints a fresh one.
	h.identities.Clear(w)

	w.WriteHeader(http.StatusNoContent)
}

// ConnectRoomHandler godoc
// @Summary      Join a room session via WebSocket
// @Description  Upgrades to a WebSocket that streams room, message and typing events and accepts message/typing/leave frames
// @Tags         rooms
// @Param        roomId path string true "Room ID"
// @Success      101 {object} map[string]interface{} "Switching Protocols - WebSocket connection established"
// @Failure      400 {object} map[string]interface{} "Bad request - missing parameters"
// @Failure      404 {object} map[string]interface{} "Room not found"
// @Router       /rooms/{roomId}/ws [get]
func (h *Handler) ConnectRoomHandler(w http.ResponseWriter, r *http.Request) {
	roomID := chi.URLParam(r, "roomId")
	if roomID == "" {
		json.WriteValidationError(w, errors.New("room ID is missing"))
		return
	}

	clientID := h.identities.FromRequest(r)
	if clientID == "" {
		json.WriteError(w, http.StatusUnauthorized, errors.New("unauthorized"), "Missing or invalid identity")
		return
	}

	room, err := h.lifecycle.GetRoom(r.Context(), roomID)
	if err != nil {
		if errors.Is(err, domain.ErrRoomNotFound) {
			json.WriteError(w, http.StatusNotFound, err, "Room not found")
			return
		}
		json.WriteInternalError(w, err)
		return
	}

	if !room.HasParticipant(clientID) {
		json.WriteError(w, http.StatusForbidden, domain.ErrNotParticipant, "Not a participant of this room")
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("WebSocket upgrade failed for room %s: %v", roomID, err)
		return
	}

	client := ws.NewClient(conn, clientID, roomID)

	// Each session gets its own reconciler: the manual-leave window and the
	// notify-once guard are per participant, not per process.
	reconciler := chat.NewReconciler(h.lifecycle, h.presence, h.leaveWindow, h.logger)
	session := ws.NewSession(client, h.lifecycle, h.messenger, h.presence, reconciler, h.broadcaster)
	session.Run(r.Context())
}
