package ai

import (
	"errors"
	"log"
	"net/http"

	aiservice "github.com/mewisme/private-chats/internal/ai"
	"github.com/mewisme/private-chats/internal/domain"
	"github.com/mewisme/private-chats/internal/infrastructure/json"
	"github.com/mewisme/private-chats/internal/infrastructure/ratelimiter"
)

type Handler struct {
	service *aiservice.Service
	limiter ratelimiter.Limiter
}

func NewHandler(service *aiservice.Service, limiter ratelimiter.Limiter) *Handler {
	return &Handler{
		service: service,
		limiter: limiter,
	}
}

// ChatHandler godoc
// @Summary      AI assistant exchange
// @Description  Appends the user's message to the client's transcript, completes it against the assistant backend and returns the reply
// @Tags         ai
// @Accept       json
// @Produce      json
// @Param        request body chatRequest true "Chat message"
// @Success      200 {object} chatResponse "Assistant reply"
// @Failure      400 {object} map[string]interface{} "Missing clientId or content"
// @Failure      429 {object} map[string]interface{} "Rate limit exceeded"
// @Failure      500 {object} map[string]interface{} "Assistant backend failure"
// @Router       /ai [post]
func (h *Handler) ChatHandler(w http.ResponseWriter, r *http.Request) {
	sourceKey := h.limiter.GetSourceKey(r)
	if !h.limiter.Allow(sourceKey) {
		json.WriteError(w, http.StatusTooManyRequests, errors.New("rate limit exceeded"), "Too many requests, slow down")
		return
	}

	var req chatRequest
	if err := json.Read(r, &req); err != nil {
		json.WriteValidationError(w, err)
		return
	}

	if req.ClientID == "" {
		json.WriteValidationError(w, errors.New("clientId is required"))
		return
	}
	if req.Content == "" {
		json.WriteValidationError(w, errors.New("content is required"))
		return
	}

	reply, err := h.service.Chat(r.Context(), req.ClientID, req.Content)
	if err != nil {
		if errors.Is(err, domain.ErrEmptyMessage) {
			json.WriteValidationError(w, err)
			return
		}
		log.Printf("AI completion failed for client %s: %v", req.ClientID, err)
		json.WriteInternalError(w, err)
		return
	}

	json.Write(w, http.StatusOK, chatResponse{
		Role:    reply.Role,
		Content: reply.Content,
	})
}
