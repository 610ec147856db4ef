package autocomplete

import (
	"context"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
)

// GroqPredictor asks a chat-completion model (behind any OpenAI-compatible
// endpoint) to continue the prompt without repeating it.
type GroqPredictor struct {
	client openai.Client
	model  string
}

func NewPredictor(apiKey, baseURL, model string) *GroqPredictor {
	opts := []option.RequestOption{option.WithAPIKey(apiKey)}
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}
	return &GroqPredictor{client: openai.NewClient(opts...), model: model}
}

func (p *GroqPredictor) Predict(ctx context.Context, prompt string) (string, error) {
	resp, err := p.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage("You are a fast, minimal text autocompletion engine. Continue the text naturally without repeating it, without quotes, and without explanations."),
			openai.SystemMessage("Never repeat the user's input. Start directly from where their text left off."),
			openai.UserMessage(prompt),
		},
		Model:               openai.ChatModel(p.model),
		MaxCompletionTokens: openai.Int(64),
		Temperature:         openai.Float(1),
	})
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", nil
	}
	return resp.Choices[0].Message.Content, nil
}
