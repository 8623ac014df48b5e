package ai

import (
	"sync"

	"github.com/mewisme/private-chats/internal/domain"
)

// SystemPrompt is the fixed persona seeded into every AI-mode transcript.
const SystemPrompt = "You are a great and helpful friend."

const roleSystem = "system"

// memoryTranscriptStore keeps per-client AI transcripts in process memory.
// Losing them on restart is acceptable: AI sessions are as ephemeral as the
// rooms they replace.
type memoryTranscriptStore struct {
	mu          sync.Mutex
	transcripts map[string][]domain.Turn
}

func NewTranscriptStore() domain.TranscriptStore {
	return &memoryTranscriptStore{
		transcripts: make(map[string][]domain.Turn),
	}
}

func (s *memoryTranscriptStore) Get(clientID string) []domain.Turn {
	s.mu.Lock()
	defer s.mu.Unlock()

	return append([]domain.Turn(nil), s.transcripts[clientID]...)
}

func (s *memoryTranscriptStore) Append(clientID string, turn domain.Turn) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.transcripts[clientID]) == 0 {
		s.transcripts[clientID] = []domain.Turn{{
			Role:    roleSystem,
			Content: SystemPrompt,
		}}
	}

	s.transcripts[clientID] = append(s.transcripts[clientID], turn)
}

func (s *memoryTranscriptStore) Forget(clientID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.transcripts, clientID)
}
