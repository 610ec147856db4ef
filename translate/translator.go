// Package translate binds the translation and speech oracles: Google Cloud
// Translation for text, Whisper (via an OpenAI-compatible endpoint) for
// speech-to-text and Google Cloud Text-to-Speech for synthesis.
package translate

import (
	"context"
	"errors"
	"fmt"
	"log"

	translatev3 "google.golang.org/api/translate/v3"

	"lingochat/models"
)

type TextTranslator interface {
	Detect(ctx context.Context, text string) (string, error)
	Translate(ctx context.Context, text, source, target string) (string, error)
}

type GoogleTranslator struct {
	svc    *translatev3.Service
	parent string
}

func NewGoogleTranslator(ctx context.Context, projectID, location string) (*GoogleTranslator, error) {
	svc, err := translatev3.NewService(ctx)
	if err != nil {
		return nil, fmt.Errorf("creating translation service: %w", err)
	}
	return &GoogleTranslator{
		svc:    svc,
		parent: fmt.Sprintf("projects/%s/locations/%s", projectID, location),
	}, nil
}

// Detect returns the dominant language of the text, falling back to the
// baseline language when detection fails or is inconclusive.
func (t *GoogleTranslator) Detect(ctx context.Context, text string) (string, error) {
	req := &translatev3.DetectLanguageRequest{
		Content:  text,
		MimeType: "text/plain",
	}
	resp, err := t.svc.Projects.Locations.DetectLanguage(t.parent, req).Context(ctx).Do()
	if err != nil {
		log.Printf("Language detection failed, assuming %q: %v", models.DefaultLanguage, err)
		return models.DefaultLanguage, nil
	}
	if len(resp.Languages) == 0 || resp.Languages[0].LanguageCode == "" {
		return models.DefaultLanguage, nil
	}
	return resp.Languages[0].LanguageCode, nil
}

func (t *GoogleTranslator) Translate(ctx context.Context, text, source, target string) (string, error) {
	req := &translatev3.TranslateTextRequest{
		Contents:           []string{text},
		MimeType:           "text/plain",
		SourceLanguageCode: source,
		TargetLanguageCode: target,
	}
	resp, err := t.svc.Projects.Locations.TranslateText(t.parent, req).Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("translating to %s: %w", target, err)
	}
	if len(resp.Translations) == 0 {
		return "", errors.New("translation result is empty")
	}
	return resp.Translations[0].TranslatedText, nil
}
