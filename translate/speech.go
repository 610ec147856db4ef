package translate

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	texttospeech "google.golang.org/api/texttospeech/v1"

	"lingochat/models"
)

// ErrNoSpeech means the audio carried no usable transcript (e.g. silence).
// Callers skip that recipient's translation and move on.
var ErrNoSpeech = errors.New("no speech detected")

type SpeechOracle interface {
	SpeechToText(ctx context.Context, audio []byte, contentType string) (string, error)
	TextToSpeech(ctx context.Context, text, voiceLocale string) ([]byte, error)
}

type Speech struct {
	ai    openai.Client
	tts   *texttospeech.Service
	model string
}

// NewSpeech wires Whisper behind an OpenAI-compatible endpoint (baseURL may
// point at a hosted provider) and the Google text-to-speech service.
func NewSpeech(ctx context.Context, apiKey, baseURL, model string) (*Speech, error) {
	opts := []option.RequestOption{option.WithAPIKey(apiKey)}
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}

	tts, err := texttospeech.NewService(ctx)
	if err != nil {
		return nil, fmt.Errorf("creating text-to-speech service: %w", err)
	}

	return &Speech{
		ai:    openai.NewClient(opts...),
		tts:   tts,
		model: model,
	}, nil
}

// SpeechToText translates spoken audio into baseline-language text.
func (s *Speech) SpeechToText(ctx context.Context, audio []byte, contentType string) (string, error) {
	if len(audio) == 0 {
		return "", ErrNoSpeech
	}

	resp, err := s.ai.Audio.Translations.New(ctx, openai.AudioTranslationNewParams{
		Model: openai.AudioModel(s.model),
		File:  openai.File(bytes.NewReader(audio), "audio"+ExtFor(contentType), contentType),
	})
	if err != nil {
		return "", fmt.Errorf("transcribing audio: %w", err)
	}
	if strings.TrimSpace(resp.Text) == "" {
		return "", ErrNoSpeech
	}
	return resp.Text, nil
}

func (s *Speech) TextToSpeech(ctx context.Context, text, voiceLocale string) ([]byte, error) {
	req := &texttospeech.SynthesizeSpeechRequest{
		Input: &texttospeech.SynthesisInput{Text: text},
		Voice: &texttospeech.VoiceSelectionParams{
			LanguageCode: voiceLocale,
			SsmlGender:   "NEUTRAL",
		},
		AudioConfig: &texttospeech.AudioConfig{AudioEncoding: "MP3"},
	}
	resp, err := s.tts.Text.Synthesize(req).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("synthesizing speech: %w", err)
	}
	audio, err := base64.StdEncoding.DecodeString(resp.AudioContent)
	if err != nil {
		return nil, fmt.Errorf("decoding synthesized audio: %w", err)
	}
	return audio, nil
}

// voiceLocales maps a translation language to a text-to-speech voice locale.
var voiceLocales = map[string]string{
	"en": "en-US",
	"es": "es-ES",
	"fr": "fr-FR",
	"de": "de-DE",
	"it": "it-IT",
	"pt": "pt-BR",
	"hi": "hi-IN",
	"gu": "gu-IN",
	"ja": "ja-JP",
	"ko": "ko-KR",
	"zh": "cmn-CN",
	"ar": "ar-XA",
	"ru": "ru-RU",
}

func VoiceLocale(lang string) string {
	if locale, ok := voiceLocales[lang]; ok {
		return locale
	}
	return lang + "-" + strings.ToUpper(lang)
}

// ExtFor returns the file extension for an audio content type. Synthesized
// audio is always MP3, but uploads may arrive in other containers.
func ExtFor(contentType string) string {
	switch contentType {
	case models.ContentTypeWAV:
		return ".wav"
	case models.ContentTypeWebM:
		return ".webm"
	default:
		return ".mp3"
	}
}
