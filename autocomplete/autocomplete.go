// Package autocomplete produces a short predictive continuation of the
// sender's in-progress draft, using a sliding window of recent chat
// messages as ambient context. Best-effort: any failure yields an empty
// prediction, never an error to the client.
package autocomplete

import (
	"context"
	"log"
	"strings"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type ContextCache interface {
	Append(ctx context.Context, chatID, line string) error
	Recent(ctx context.Context, chatID string) ([]string, error)
}

type MessageReader interface {
	RecentMessageLines(ctx context.Context, chatID primitive.ObjectID, limit int) ([]string, error)
}

type Predictor interface {
	Predict(ctx context.Context, prompt string) (string, error)
}

type Service struct {
	cache     ContextCache
	messages  MessageReader
	predictor Predictor
	window    int
}

func NewService(cache ContextCache, messages MessageReader, predictor Predictor) *Service {
	return &Service{
		cache:     cache,
		messages:  messages,
		predictor: predictor,
		window:    ContextWindow,
	}
}

// Complete predicts a continuation of partial for the given chat. The
// context window is seeded from persisted messages only when the cache
// entry is absent, so repeated keystrokes don't rebuild it.
func (s *Service) Complete(ctx context.Context, chatID primitive.ObjectID, partial string) string {
	lines, err := s.cache.Recent(ctx, chatID.Hex())
	if err != nil {
		log.Printf("Autocomplete context read failed for chat %s: %v", chatID.Hex(), err)
		lines = nil
	}

	if len(lines) == 0 {
		seeded, err := s.messages.RecentMessageLines(ctx, chatID, s.window)
		if err != nil {
			log.Printf("Autocomplete context seed failed for chat %s: %v", chatID.Hex(), err)
		} else {
			for _, line := range seeded {
				if err := s.cache.Append(ctx, chatID.Hex(), line); err != nil {
					log.Printf("Autocomplete context append failed for chat %s: %v", chatID.Hex(), err)
					break
				}
			}
			lines = seeded
		}
	}

	var b strings.Builder
	for _, line := range lines {
		b.WriteString(line)
		b.WriteString("\n")
	}
	b.WriteString(partial)

	prediction, err := s.predictor.Predict(ctx, b.String())
	if err != nil {
		log.Printf("Autocomplete prediction failed for chat %s: %v", chatID.Hex(), err)
		return ""
	}
	return prediction
}
