package cleanup

import (
	"crypto/subtle"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/mewisme/private-chats/internal/chat"
	"github.com/mewisme/private-chats/internal/infrastructure/json"
)

const cronSecretHeader = "x-cron-secret"

type Handler struct {
	reaper     *chat.Reaper
	cronSecret string
}

func NewHandler(reaper *chat.Reaper, cronSecret string) *Handler {
	return &Handler{
		reaper:     reaper,
		cronSecret: cronSecret,
	}
}

// RunCleanupHandler godoc
// @Summary      Run the stale room reaper
// @Description  Deletes rooms idle beyond the staleness cutoff along with their messages and typing documents. Pass dry-run=true to preview.
// @Tags         cleanup
// @Produce      json
// @Param        dry-run query bool false "Preview without deleting"
// @Param        x-cron-secret header string true "Shared cron secret"
// @Success      200 {object} cleanupResponse "Run summary"
// @Failure      401 {object} map[string]interface{} "Bad or missing cron secret"
// @Router       /cleanup [post]
func (h *Handler) RunCleanupHandler(w http.ResponseWriter, r *http.Request) {
	secret := r.Header.Get(cronSecretHeader)
	if h.cronSecret == "" || subtle.ConstantTimeCompare([]byte(secret), []byte(h.cronSecret)) != 1 {
		json.WriteError(w, http.StatusUnauthorized, errors.New("unauthorized"), "Invalid cron secret")
		return
	}

	dryRun := r.URL.Query().Get("dry-run") == "true"

	result := h.reaper.Run(r.Context(), dryRun)
	if !result.Success {
		log.Printf("Cleanup run finished with %d errors", len(result.Errors))
	}

	json.Write(w, http.StatusOK, cleanupResponse{
		RoomsProcessed:  result.RoomsProcessed,
		RoomsDeleted:    result.RoomsDeleted,
		MessagesDeleted: result.MessagesDeleted,
		TypingDeleted:   result.TypingDeleted,
		Errors:          result.Errors,
		DryRun:          result.DryRun,
		ExecutionTimeMs: result.ExecutionTimeMs,
		Success:         result.Success,
	})
}

// GetCleanupHandler godoc
// @Summary      Cleanup endpoint liveness
// @Description  Lets the cron scheduler verify the endpoint is reachable without triggering a run
// @Tags         cleanup
// @Produce      json
// @Success      200 {object} livenessResponse "Endpoint is up"
// @Router       /cleanup [get]
func (h *Handler) GetCleanupHandler(w http.ResponseWriter, r *http.Request) {
	json.Write(w, http.StatusOK, livenessResponse{
		Status:    "healthy",
		Service:   "cleanup-api",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}
