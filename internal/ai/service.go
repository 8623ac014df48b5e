package ai

import (
	"context"
	"strings"

	"github.com/mewisme/private-chats/internal/domain"
	"github.com/mewisme/private-chats/internal/infrastructure/metrics"
)

// Completer is the transport-facing slice of Client, split out so the service
// can be tested without a live endpoint.
type Completer interface {
	Complete(ctx context.Context, transcript []domain.Turn) (domain.Turn, error)
}

// Service drives one AI-mode exchange: record the user turn, complete against
// the full transcript, record the assistant turn.
type Service struct {
	transcripts domain.TranscriptStore
	completer   Completer
}

func NewService(transcripts domain.TranscriptStore, completer Completer) *Service {
	return &Service{
		transcripts: transcripts,
		completer:   completer,
	}
}

func (s *Service) Chat(ctx context.Context, clientID, content string) (domain.Turn, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return domain.Turn{}, domain.ErrEmptyMessage
	}

	s.transcripts.Append(clientID, domain.Turn{
		Role:    domain.RoleUser,
		Content: content,
	})

	reply, err := s.completer.Complete(ctx, s.transcripts.Get(clientID))
	if err != nil {
		return domain.Turn{}, err
	}

	s.transcripts.Append(clientID, reply)
	metrics.AICompletions.Inc()

	return reply, nil
}

// EndSession drops the client's transcript when AI mode is left.
func (s *Service) EndSession(clientID string) {
	s.transcripts.Forget(clientID)
}
