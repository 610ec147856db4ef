// Package message implements the translation fan-out engine: persisting an
// outbound message's original content and producing a translated copy for
// every recipient who opted into one.
package message

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"lingochat/models"
	"lingochat/translate"
)

type Store interface {
	ChatByID(ctx context.Context, id primitive.ObjectID) (*models.Chat, error)
	UserByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
	SettingsForUser(ctx context.Context, userID primitive.ObjectID) (*models.UserSettings, error)
	CreateContent(ctx context.Context, content *models.Content) error
	CreateMessage(ctx context.Context, msg *models.Message) error
	SetLatestMessage(ctx context.Context, chatID, messageID primitive.ObjectID) error
}

type BlobStore interface {
	Store(ctx context.Context, data []byte, name, contentType string) (string, error)
}

// ContextCache receives a line per persisted text message to keep the
// autocomplete context window fresh.
type ContextCache interface {
	Append(ctx context.Context, chatID, line string) error
}

type Service struct {
	store  Store
	text   translate.TextTranslator
	speech translate.SpeechOracle
	blobs  BlobStore
	cache  ContextCache

	// budget for one recipient's translation pipeline; a timeout skips
	// that recipient, it never fails the send
	recipientTimeout time.Duration
}

func NewService(store Store, text translate.TextTranslator, speech translate.SpeechOracle, blobs BlobStore, cache ContextCache) *Service {
	return &Service{
		store:            store,
		text:             text,
		speech:           speech,
		blobs:            blobs,
		cache:            cache,
		recipientTimeout: 30 * time.Second,
	}
}

// Send persists the message with its original content, fans translation out
// to every opted-in recipient and returns the fully resolved message. The
// message is not returned until every awaited translation has finished, so
// no client ever sees a partial translated set.
func (s *Service) Send(ctx context.Context, chatID, senderID primitive.ObjectID, value, contentType string) (*models.FullMessage, error) {
	chat, err := s.store.ChatByID(ctx, chatID)
	if err != nil {
		return nil, fmt.Errorf("loading chat: %w", err)
	}
	sender, err := s.store.UserByID(ctx, senderID)
	if err != nil {
		return nil, fmt.Errorf("loading sender: %w", err)
	}

	isAudio := models.IsAudio(contentType)

	// Original content first. Any failure here is fatal to the send.
	var raw []byte
	original := &models.Content{ContentType: contentType, Value: value, UploadedBy: senderID}
	if isAudio {
		raw, err = base64.StdEncoding.DecodeString(value)
		if err != nil {
			return nil, fmt.Errorf("decoding audio payload: %w", err)
		}
		name := blobName(chatID, senderID, contentType)
		url, err := s.blobs.Store(ctx, raw, name, contentType)
		if err != nil {
			return nil, fmt.Errorf("storing original audio: %w", err)
		}
		original.Value = url
	} else {
		original.ContentType = models.ContentTypeText
	}
	if err := s.store.CreateContent(ctx, original); err != nil {
		return nil, fmt.Errorf("persisting original content: %w", err)
	}

	// Source text for translation. For audio a single transcription pass
	// serves every recipient; silence simply means nobody gets a copy.
	sourceText := value
	sourceLang := models.DefaultLanguage
	if isAudio {
		sourceText, err = s.transcribe(ctx, raw, contentType)
		if err != nil {
			if !errors.Is(err, translate.ErrNoSpeech) {
				log.Printf("Transcription failed for chat %s, skipping translations: %v", chatID.Hex(), err)
			}
			sourceText = ""
		}
	} else {
		// Detection only happens on the text path; the audio path assumes
		// the baseline language.
		if lang, err := s.text.Detect(ctx, sourceText); err == nil {
			sourceLang = lang
		}
	}

	var translated []translatedResult
	if strings.TrimSpace(sourceText) != "" {
		prefs := s.resolvePreferences(ctx, chat.Users, senderID)
		targets := translationTargets(chat.Users, senderID, prefs, sourceLang)
		translated = s.fanOut(ctx, chat.ID, sourceLang, sourceText, isAudio, targets)
	}

	entries := make([]models.TranslatedContent, 0, len(translated))
	for _, tr := range translated {
		entries = append(entries, tr.entry)
	}

	msg := &models.Message{
		Chat:               chat.ID,
		Sender:             senderID,
		OriginalContent:    original.ID,
		TranslatedContents: entries,
	}
	if err := s.store.CreateMessage(ctx, msg); err != nil {
		return nil, fmt.Errorf("persisting message: %w", err)
	}
	if err := s.store.SetLatestMessage(ctx, chat.ID, msg.ID); err != nil {
		log.Printf("Failed to update latest message for chat %s: %v", chat.ID.Hex(), err)
	}

	if !isAudio && s.cache != nil {
		if err := s.cache.Append(ctx, chat.ID.Hex(), sender.Name+": "+value); err != nil {
			log.Printf("Failed to append autocomplete context for chat %s: %v", chat.ID.Hex(), err)
		}
	}

	return populate(msg, sender, original, translated), nil
}

func (s *Service) transcribe(ctx context.Context, audio []byte, contentType string) (string, error) {
	tctx, cancel := context.WithTimeout(ctx, s.recipientTimeout)
	defer cancel()
	return s.speech.SpeechToText(tctx, audio, contentType)
}

// resolvePreferences fetches settings for every member other than the
// sender. A settings lookup failure drops that member from the fan-out
// without affecting the others.
func (s *Service) resolvePreferences(ctx context.Context, members []primitive.ObjectID, sender primitive.ObjectID) map[primitive.ObjectID]*models.UserSettings {
	prefs := make(map[primitive.ObjectID]*models.UserSettings)
	for _, member := range members {
		if member == sender {
			continue
		}
		st, err := s.store.SettingsForUser(ctx, member)
		if err != nil {
			log.Printf("Settings lookup failed for user %s, skipping translation: %v", member.Hex(), err)
			continue
		}
		prefs[member] = st
	}
	return prefs
}

type target struct {
	user primitive.ObjectID
	lang string
}

// translationTargets decides who gets a translated copy: every member other
// than the sender whose preference names a language different from both the
// baseline and the source.
func translationTargets(members []primitive.ObjectID, sender primitive.ObjectID, prefs map[primitive.ObjectID]*models.UserSettings, sourceLang string) []target {
	var targets []target
	for _, member := range members {
		if member == sender {
			continue
		}
		st := prefs[member]
		if st == nil {
			continue
		}
		lang := st.TranslationLanguage
		if lang == "" || lang == models.DefaultLanguage || lang == sourceLang {
			continue
		}
		targets = append(targets, target{user: member, lang: lang})
	}
	return targets
}

type translatedResult struct {
	entry   models.TranslatedContent
	content *models.Content
}

// fanOut runs each target's translation pipeline concurrently. A failure or
// timeout for one recipient is logged and skipped; it never fails the send.
func (s *Service) fanOut(ctx context.Context, chatID primitive.ObjectID, sourceLang, sourceText string, isAudio bool, targets []target) []translatedResult {
	var (
		mu  sync.Mutex
		wg  sync.WaitGroup
		out []translatedResult
	)

	for _, tg := range targets {
		wg.Add(1)
		go func(tg target) {
			defer wg.Done()

			tctx, cancel := context.WithTimeout(ctx, s.recipientTimeout)
			defer cancel()

			tr, err := s.translateFor(tctx, chatID, tg, sourceLang, sourceText, isAudio)
			if err != nil {
				log.Printf("Translation to %s skipped for user %s: %v", tg.lang, tg.user.Hex(), err)
				return
			}

			mu.Lock()
			out = append(out, *tr)
			mu.Unlock()
		}(tg)
	}

	wg.Wait()
	return out
}

func (s *Service) translateFor(ctx context.Context, chatID primitive.ObjectID, tg target, sourceLang, sourceText string, isAudio bool) (*translatedResult, error) {
	translatedText, err := s.text.Translate(ctx, sourceText, sourceLang, tg.lang)
	if err != nil {
		return nil, err
	}

	content := &models.Content{
		ContentType: models.ContentTypeText,
		Value:       translatedText,
		UploadedBy:  tg.user,
	}
	if isAudio {
		audio, err := s.speech.TextToSpeech(ctx, translatedText, translate.VoiceLocale(tg.lang))
		if err != nil {
			return nil, err
		}
		name := blobName(chatID, tg.user, models.ContentTypeMP3)
		url, err := s.blobs.Store(ctx, audio, name, models.ContentTypeMP3)
		if err != nil {
			return nil, err
		}
		content.ContentType = models.ContentTypeMP3
		content.Value = url
	}
	if err := s.store.CreateContent(ctx, content); err != nil {
		return nil, err
	}

	return &translatedResult{
		entry:   models.TranslatedContent{User: tg.user, Language: tg.lang, Content: content.ID},
		content: content,
	}, nil
}

func populate(msg *models.Message, sender *models.User, original *models.Content, translated []translatedResult) *models.FullMessage {
	full := &models.FullMessage{
		ID:                 msg.ID,
		Chat:               msg.Chat,
		Sender:             sender,
		OriginalContent:    original,
		TranslatedContents: []models.FullTranslatedContent{},
		CreatedAt:          msg.CreatedAt,
	}
	for _, tr := range translated {
		full.TranslatedContents = append(full.TranslatedContents, models.FullTranslatedContent{
			User:     tr.entry.User,
			Language: tr.entry.Language,
			Content:  tr.content,
		})
	}
	return full
}

func blobName(chatID, userID primitive.ObjectID, contentType string) string {
	return fmt.Sprintf("%s-%s-%s%s", chatID.Hex(), userID.Hex(), uuid.NewString(), translate.ExtFor(contentType))
}
