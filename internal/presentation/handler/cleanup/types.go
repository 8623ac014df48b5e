package cleanup

// cleanupResponse summarizes one reaper run
type cleanupResponse struct {
	RoomsProcessed  int      `json:"roomsProcessed" example:"42"` // Rooms fetched and inspected
	RoomsDeleted    int      `json:"roomsDeleted" example:"7"`    // Stale rooms deleted (or counted in dry-run)
	MessagesDeleted int64    `json:"messagesDeleted" example:"120"`
	TypingDeleted   int64    `json:"typingDeleted" example:"5"`
	Errors          []string `json:"errors,omitempty"` // Per-batch failures, run continues past them
	DryRun          bool     `json:"dryRun" example:"false"`
	ExecutionTimeMs int64    `json:"executionTimeMs" example:"812"`
	Success         bool     `json:"success" example:"true"`
}

// livenessResponse confirms the cleanup endpoint is reachable
type livenessResponse struct {
	Status    string `json:"status" example:"healthy"`
	Service   string `json:"service" example:"cleanup-api"`
	Timestamp string `json:"timestamp" example:"2024-01-01T12:00:00Z"`
}
