package domain

// Transcript roles for AI-mode sessions.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Turn is one exchange in an AI-mode transcript. Transcripts live in process
// memory only, keyed by client identity, and are lost on restart.
type Turn struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// TranscriptStore holds per-client AI conversation history. Implementations
// are constructed once per process and injected; there is no shared-store
// persistence for AI sessions.
type TranscriptStore interface {
	// Get returns the ordered transcript for the client, or an empty slice.
	Get(clientID string) []Turn

	// Append adds a turn, seeding the fixed system turn on first use.
	Append(clientID string, turn Turn)

	// Forget drops the client's transcript.
	Forget(clientID string)
}
