package chat

import (
	"context"
	"fmt"
	"time"

	"github.com/mewisme/private-chats/internal/domain"
	"github.com/mewisme/private-chats/internal/infrastructure/configs"
	"github.com/mewisme/private-chats/internal/infrastructure/logging"
	"github.com/mewisme/private-chats/internal/infrastructure/metrics"
)

// Result summarizes one reaper run. Errors holds per-batch failures; a run
// with errors still reports what it managed to delete, and Success stays true
// for partial completions. Success is false only when the run failed before
// any batch could start.
type Result struct {
	RoomsProcessed  int      `json:"roomsProcessed"`
	RoomsDeleted    int      `json:"roomsDeleted"`
	MessagesDeleted int64    `json:"messagesDeleted"`
	TypingDeleted   int64    `json:"typingDeleted"`
	Errors          []string `json:"errors,omitempty"`
	DryRun          bool     `json:"dryRun"`
	ExecutionTimeMs int64    `json:"executionTimeMs"`
	Success         bool     `json:"success"`
}

// Reaper deletes rooms whose updatedAt has gone stale. It is the compensating
// control for every best-effort cleanup path that can miss: crashed tabs,
// dropped sockets, failed disconnect handlers.
type Reaper struct {
	rooms    domain.RoomRepository
	messages domain.MessageRepository
	typing   domain.TypingRepository
	cfg      configs.CleanupConfig
	logger   logging.Logger
	clock    func() time.Time
}

func NewReaper(rooms domain.RoomRepository, messages domain.MessageRepository, typing domain.TypingRepository, cfg configs.CleanupConfig, logger logging.Logger) *Reaper {
	return &Reaper{
		rooms:    rooms,
		messages: messages,
		typing:   typing,
		cfg:      cfg,
		logger:   logger,
		clock:    time.Now,
	}
}

// Run executes one bounded reap. Caps, cutoff and wall-clock budget come from
// the config; the budget aborts remaining batches rather than the whole run.
// Dry-run walks the same selection logic without deleting anything.
func (r *Reaper) Run(ctx context.Context, dryRun bool) Result {
	start := r.clock()
	result := Result{DryRun: dryRun}

	defer func() {
		metrics.ReaperDuration.Observe(float64(result.ExecutionTimeMs) / 1000)
		outcome := "success"
		if !result.Success {
			outcome = "failure"
		}
		metrics.ReaperRuns.WithLabelValues(outcome).Inc()
	}()

	rooms, err := r.rooms.List(ctx, r.cfg.RoomFetchCap)
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("failed to list rooms: %v", err))
		result.ExecutionTimeMs = r.clock().Sub(start).Milliseconds()
		return result
	}

	result.RoomsProcessed = len(rooms)
	cutoff := start.Add(-r.cfg.StaleAfter)

	var stale []domain.Room
	for _, room := range rooms {
		if room.UpdatedAt.IsZero() {
			// No staleness clock to judge by; leave the room alone rather
			// than guess.
			r.logger.Warn(logging.Cleanup, logging.Reap, "room has no updatedAt, skipping", map[logging.ExtraKey]any{
				logging.RoomId: room.ID,
			})
			continue
		}
		if room.UpdatedAt.Before(cutoff) {
			stale = append(stale, room)
		}
	}

	// Typing documents are tiny and keyed by room; a blanket clear is cheaper
	// than correlating them with the stale set.
	typingIDs, err := r.typing.ListRoomIDs(ctx, r.cfg.TypingCap)
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("failed to list typing documents: %v", err))
	} else if len(typingIDs) > 0 {
		if dryRun {
			result.TypingDeleted = int64(len(typingIDs))
		} else {
			deleted, err := r.typing.DeleteAll(ctx, typingIDs)
			if err != nil {
				result.Errors = append(result.Errors, fmt.Sprintf("failed to delete typing documents: %v", err))
			} else {
				result.TypingDeleted = deleted
			}
		}
	}

	batchSize := r.cfg.BatchSize
	if batchSize <= 0 {
		batchSize = 10
	}

	for i := 0; i < len(stale); i += batchSize {
		if elapsed := r.clock().Sub(start); elapsed > r.cfg.MaxExecution {
			result.Errors = append(result.Errors, fmt.Sprintf("execution budget exceeded after %v, %d rooms left", elapsed, len(stale)-i))
			break
		}

		end := i + batchSize
		if end > len(stale) {
			end = len(stale)
		}

		for _, room := range stale[i:end] {
			if dryRun {
				// A dry run must report the same counts as a real run, so the
				// cascade is sized even though nothing is deleted.
				count, err := r.messages.CountByRoom(ctx, room.ID)
				if err != nil {
					result.Errors = append(result.Errors, fmt.Sprintf("failed to count messages for room %s: %v", room.ID, err))
				} else {
					result.MessagesDeleted += count
				}
				result.RoomsDeleted++
				continue
			}

			messagesDeleted, err := r.rooms.DeleteWithMessages(ctx, room.ID)
			if err != nil {
				result.Errors = append(result.Errors, fmt.Sprintf("failed to delete room %s: %v", room.ID, err))
				continue
			}

			result.RoomsDeleted++
			result.MessagesDeleted += messagesDeleted
			metrics.RoomsDeleted.Inc()
			metrics.ReaperRoomsReaped.Inc()
		}
	}

	result.ExecutionTimeMs = r.clock().Sub(start).Milliseconds()

	// Per-batch failures and a budget abort are partial completions, not run
	// failures. Only a failure before any work started reports false.
	result.Success = true

	r.logger.Info(logging.Cleanup, logging.Reap, "reaper run finished", map[logging.ExtraKey]any{
		"roomsProcessed":  result.RoomsProcessed,
		"roomsDeleted":    result.RoomsDeleted,
		"messagesDeleted": result.MessagesDeleted,
		"typingDeleted":   result.TypingDeleted,
		"errors":          len(result.Errors),
		"dryRun":          dryRun,
	})

	return result
}
