package autocomplete

import (
	"context"
	"errors"
	"testing"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type fakeContextCache struct {
	lines map[string][]string
}

func (f *fakeContextCache) Append(ctx context.Context, chatID, line string) error {
	if f.lines == nil {
		f.lines = make(map[string][]string)
	}
	f.lines[chatID] = append(f.lines[chatID], line)
	return nil
}

func (f *fakeContextCache) Recent(ctx context.Context, chatID string) ([]string, error) {
	return f.lines[chatID], nil
}

type fakeMessageReader struct {
	lines []string
	calls int
}

func (f *fakeMessageReader) RecentMessageLines(ctx context.Context, chatID primitive.ObjectID, limit int) ([]string, error) {
	f.calls++
	return f.lines, nil
}

type fakePredictor struct {
	lastPrompt string
	prediction string
	err        error
}

func (f *fakePredictor) Predict(ctx context.Context, prompt string) (string, error) {
	f.lastPrompt = prompt
	if f.err != nil {
		return "", f.err
	}
	return f.prediction, nil
}

func TestCompleteSeedsOnlyOnce(t *testing.T) {
	cache := &fakeContextCache{}
	msgs := &fakeMessageReader{lines: []string{"alice: hi", "bob: hello"}}
	pred := &fakePredictor{prediction: " doing today?"}
	svc := NewService(cache, msgs, pred)

	chatID := primitive.NewObjectID()

	got := svc.Complete(context.Background(), chatID, "how are you")
	if got != " doing today?" {
		t.Errorf("Unexpected prediction %q", got)
	}
	if msgs.calls != 1 {
		t.Errorf("Expected 1 seed call, got %d", msgs.calls)
	}

	// second keystroke: cache is warm, no reseed
	svc.Complete(context.Background(), chatID, "how are you d")
	if msgs.calls != 1 {
		t.Errorf("Cache hit should not reseed, got %d seed calls", msgs.calls)
	}
}

func TestCompletePromptShape(t *testing.T) {
	chatID := primitive.NewObjectID()
	cache := &fakeContextCache{}
	cache.Append(context.Background(), chatID.Hex(), "alice: hi")
	cache.Append(context.Background(), chatID.Hex(), "bob: hello")
	pred := &fakePredictor{prediction: "x"}
	svc := NewService(cache, &fakeMessageReader{}, pred)

	svc.Complete(context.Background(), chatID, "see you at")
	want := "alice: hi\nbob: hello\nsee you at"
	if pred.lastPrompt != want {
		t.Errorf("Prompt = %q, want %q", pred.lastPrompt, want)
	}
}

func TestCompleteFailureYieldsEmpty(t *testing.T) {
	pred := &fakePredictor{err: errors.New("model down")}
	svc := NewService(&fakeContextCache{}, &fakeMessageReader{}, pred)

	if got := svc.Complete(context.Background(), primitive.NewObjectID(), "hello"); got != "" {
		t.Errorf("Expected empty prediction on failure, got %q", got)
	}
}
