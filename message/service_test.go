package message

import (
	"context"
	"encoding/base64"
	"errors"
	"strings"
	"sync"
	"testing"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"lingochat/models"
	"lingochat/translate"
)

type fakeStore struct {
	mu       sync.Mutex
	chat     *models.Chat
	users    map[primitive.ObjectID]*models.User
	settings map[primitive.ObjectID]*models.UserSettings
	contents []*models.Content
	messages []*models.Message
	latest   map[primitive.ObjectID]primitive.ObjectID
}

func newFakeStore(chat *models.Chat, users ...*models.User) *fakeStore {
	s := &fakeStore{
		chat:     chat,
		users:    make(map[primitive.ObjectID]*models.User),
		settings: make(map[primitive.ObjectID]*models.UserSettings),
		latest:   make(map[primitive.ObjectID]primitive.ObjectID),
	}
	for _, u := range users {
		s.users[u.ID] = u
	}
	return s
}

func (s *fakeStore) ChatByID(ctx context.Context, id primitive.ObjectID) (*models.Chat, error) {
	if s.chat == nil || s.chat.ID != id {
		return nil, errors.New("chat not found")
	}
	return s.chat, nil
}

func (s *fakeStore) UserByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	u, ok := s.users[id]
	if !ok {
		return nil, errors.New("user not found")
	}
	return u, nil
}

func (s *fakeStore) SettingsForUser(ctx context.Context, userID primitive.ObjectID) (*models.UserSettings, error) {
	if st, ok := s.settings[userID]; ok {
		return st, nil
	}
	// upsert-on-read default
	st := &models.UserSettings{UserID: userID, TranslationLanguage: models.DefaultLanguage}
	s.mu.Lock()
	s.settings[userID] = st
	s.mu.Unlock()
	return st, nil
}

func (s *fakeStore) CreateContent(ctx context.Context, content *models.Content) error {
	content.ID = primitive.NewObjectID()
	s.mu.Lock()
	s.contents = append(s.contents, content)
	s.mu.Unlock()
	return nil
}

func (s *fakeStore) CreateMessage(ctx context.Context, msg *models.Message) error {
	msg.ID = primitive.NewObjectID()
	s.mu.Lock()
	s.messages = append(s.messages, msg)
	s.mu.Unlock()
	return nil
}

func (s *fakeStore) SetLatestMessage(ctx context.Context, chatID, messageID primitive.ObjectID) error {
	s.latest[chatID] = messageID
	return nil
}

type fakeTranslator struct {
	detected string
	failLang string
}

func (f *fakeTranslator) Detect(ctx context.Context, text string) (string, error) {
	if f.detected == "" {
		return models.DefaultLanguage, nil
	}
	return f.detected, nil
}

func (f *fakeTranslator) Translate(ctx context.Context, text, source, target string) (string, error) {
	if target == f.failLang {
		return "", errors.New("translation backend unavailable")
	}
	return "[" + target + "] " + text, nil
}

type fakeSpeech struct {
	transcript string
	sttErr     error
	ttsErr     error
}

func (f *fakeSpeech) SpeechToText(ctx context.Context, audio []byte, contentType string) (string, error) {
	if f.sttErr != nil {
		return "", f.sttErr
	}
	return f.transcript, nil
}

func (f *fakeSpeech) TextToSpeech(ctx context.Context, text, voiceLocale string) ([]byte, error) {
	if f.ttsErr != nil {
		return nil, f.ttsErr
	}
	return []byte("synthesized:" + voiceLocale), nil
}

type fakeBlobs struct {
	mu      sync.Mutex
	failAll bool
	stored  []string
}

func (f *fakeBlobs) Store(ctx context.Context, data []byte, name, contentType string) (string, error) {
	if f.failAll {
		return "", errors.New("blob store unavailable")
	}
	f.mu.Lock()
	f.stored = append(f.stored, name)
	f.mu.Unlock()
	return "https://blobs.example.com/" + name, nil
}

type fakeCache struct {
	lines []string
}

func (f *fakeCache) Append(ctx context.Context, chatID, line string) error {
	f.lines = append(f.lines, line)
	return nil
}

func setup(t *testing.T, memberLangs map[string]string) (*Service, *fakeStore, *fakeTranslator, *fakeSpeech, *fakeBlobs, *fakeCache, *models.Chat, map[string]primitive.ObjectID) {
	t.Helper()

	ids := make(map[string]primitive.ObjectID)
	var users []*models.User
	var memberIDs []primitive.ObjectID
	for name := range memberLangs {
		id := primitive.NewObjectID()
		ids[name] = id
		users = append(users, &models.User{ID: id, Name: name, Email: name + "@example.com"})
		memberIDs = append(memberIDs, id)
	}

	chat := &models.Chat{ID: primitive.NewObjectID(), Users: memberIDs}
	if len(memberIDs) > 2 {
		chat.IsGroupChat = true
		chat.Name = "test group"
	}

	st := newFakeStore(chat, users...)
	for name, lang := range memberLangs {
		if lang != "" {
			st.settings[ids[name]] = &models.UserSettings{UserID: ids[name], TranslationLanguage: lang}
		}
	}

	tr := &fakeTranslator{}
	sp := &fakeSpeech{transcript: "hello from audio"}
	bl := &fakeBlobs{}
	ca := &fakeCache{}
	svc := NewService(st, tr, sp, bl, ca)
	return svc, st, tr, sp, bl, ca, chat, ids
}

func TestTextTranslationPerPreference(t *testing.T) {
	// Three members: sender A, B wants "fr", C left at the default.
	svc, st, _, _, _, _, chat, ids := setup(t, map[string]string{"a": "", "b": "fr", "c": ""})

	full, err := svc.Send(context.Background(), chat.ID, ids["a"], "hello everyone", models.ContentTypeText)
	if err != nil {
		t.Fatalf("Send failed: %v", err)
	}

	if len(full.TranslatedContents) != 1 {
		t.Fatalf("Expected exactly 1 translated content, got %d", len(full.TranslatedContents))
	}
	tc := full.TranslatedContents[0]
	if tc.User != ids["b"] {
		t.Errorf("Expected translation for b, got %s", tc.User.Hex())
	}
	if tc.Language != "fr" {
		t.Errorf("Expected language fr, got %s", tc.Language)
	}
	if tc.Content.Value != "[fr] hello everyone" {
		t.Errorf("Unexpected translated value %q", tc.Content.Value)
	}
	if tc.Content.UploadedBy != ids["b"] {
		t.Error("Translated content should belong to the recipient")
	}

	if len(st.messages) != 1 {
		t.Fatalf("Expected 1 persisted message, got %d", len(st.messages))
	}
	if got := st.messages[0].TranslatedContents; len(got) != 1 || got[0].User != ids["b"] {
		t.Errorf("Persisted translated contents mismatch: %+v", got)
	}
}

func TestDirectChatScenario(t *testing.T) {
	// Alice and Bob share a direct chat; Bob reads Spanish.
	svc, st, _, _, _, _, chat, ids := setup(t, map[string]string{"alice": "", "bob": "es"})

	text := "Hello there, how are you doing today?"
	full, err := svc.Send(context.Background(), chat.ID, ids["alice"], text, models.ContentTypeText)
	if err != nil {
		t.Fatalf("Send failed: %v", err)
	}

	if full.OriginalContent.Value != text {
		t.Errorf("Original content value mismatch: %q", full.OriginalContent.Value)
	}
	if full.Sender == nil || full.Sender.ID != ids["alice"] {
		t.Error("Sender not resolved on full message")
	}
	if len(full.TranslatedContents) != 1 {
		t.Fatalf("Expected 1 translated content, got %d", len(full.TranslatedContents))
	}
	tc := full.TranslatedContents[0]
	if tc.User != ids["bob"] || tc.Language != "es" {
		t.Errorf("Unexpected translation target: %+v", tc)
	}
	if !strings.HasPrefix(tc.Content.Value, "[es] ") {
		t.Errorf("Expected Spanish translation, got %q", tc.Content.Value)
	}

	if st.latest[chat.ID] != full.ID {
		t.Error("latestMessage pointer not updated")
	}
}

func TestDetectionSkipsMatchingSource(t *testing.T) {
	svc, _, tr, _, _, _, chat, ids := setup(t, map[string]string{"a": "", "b": "fr"})
	tr.detected = "fr"

	full, err := svc.Send(context.Background(), chat.ID, ids["a"], "bonjour", models.ContentTypeText)
	if err != nil {
		t.Fatalf("Send failed: %v", err)
	}
	if len(full.TranslatedContents) != 0 {
		t.Errorf("Expected no translation when source already matches target, got %d", len(full.TranslatedContents))
	}
}

func TestRecipientFailureIsolation(t *testing.T) {
	svc, _, tr, _, _, _, chat, ids := setup(t, map[string]string{"a": "", "b": "fr", "c": "es"})
	tr.failLang = "es"

	full, err := svc.Send(context.Background(), chat.ID, ids["a"], "hello", models.ContentTypeText)
	if err != nil {
		t.Fatalf("Send should survive one recipient's failure: %v", err)
	}
	if len(full.TranslatedContents) != 1 {
		t.Fatalf("Expected 1 surviving translation, got %d", len(full.TranslatedContents))
	}
	if full.TranslatedContents[0].User != ids["b"] {
		t.Error("Wrong surviving recipient")
	}
}

func TestAudioSkipOnSilence(t *testing.T) {
	svc, st, _, sp, bl, _, chat, ids := setup(t, map[string]string{"a": "", "b": "fr"})
	sp.sttErr = translate.ErrNoSpeech

	payload := base64.StdEncoding.EncodeToString([]byte("audio-bytes"))
	full, err := svc.Send(context.Background(), chat.ID, ids["a"], payload, models.ContentTypeWAV)
	if err != nil {
		t.Fatalf("Send should succeed despite silence: %v", err)
	}

	if len(full.TranslatedContents) != 0 {
		t.Errorf("Expected no translations for silent audio, got %d", len(full.TranslatedContents))
	}
	if full.OriginalContent.ContentType != models.ContentTypeWAV {
		t.Errorf("Original content type mismatch: %s", full.OriginalContent.ContentType)
	}
	if !strings.HasPrefix(full.OriginalContent.Value, "https://blobs.example.com/") {
		t.Errorf("Original audio should carry a blob URL, got %q", full.OriginalContent.Value)
	}
	if len(bl.stored) != 1 {
		t.Errorf("Expected exactly the original upload, got %d", len(bl.stored))
	}
	if len(st.messages) != 1 {
		t.Error("Message should still be persisted")
	}
}

func TestAudioTranslationPipeline(t *testing.T) {
	svc, _, _, _, bl, _, chat, ids := setup(t, map[string]string{"a": "", "b": "gu"})

	payload := base64.StdEncoding.EncodeToString([]byte("audio-bytes"))
	full, err := svc.Send(context.Background(), chat.ID, ids["a"], payload, models.ContentTypeMP3)
	if err != nil {
		t.Fatalf("Send failed: %v", err)
	}

	if len(full.TranslatedContents) != 1 {
		t.Fatalf("Expected 1 translated content, got %d", len(full.TranslatedContents))
	}
	tc := full.TranslatedContents[0]
	if tc.Content.ContentType != models.ContentTypeMP3 {
		t.Errorf("Synthesized content should be MP3, got %s", tc.Content.ContentType)
	}
	if !strings.HasPrefix(tc.Content.Value, "https://blobs.example.com/") {
		t.Errorf("Synthesized content should carry a blob URL, got %q", tc.Content.Value)
	}
	// one upload for the original, one for the synthesized copy
	if len(bl.stored) != 2 {
		t.Errorf("Expected 2 blob uploads, got %d", len(bl.stored))
	}
	for _, name := range bl.stored {
		if !strings.HasPrefix(name, chat.ID.Hex()+"-") {
			t.Errorf("Blob name %q should start with the chat id", name)
		}
	}
}

func TestOriginalBlobFailureIsFatal(t *testing.T) {
	svc, st, _, _, bl, _, chat, ids := setup(t, map[string]string{"a": "", "b": "fr"})
	bl.failAll = true

	payload := base64.StdEncoding.EncodeToString([]byte("audio-bytes"))
	if _, err := svc.Send(context.Background(), chat.ID, ids["a"], payload, models.ContentTypeWAV); err == nil {
		t.Fatal("Expected error when original blob upload fails")
	}
	if len(st.messages) != 0 {
		t.Error("No message should be persisted when the original content path fails")
	}
}

func TestContextCacheAppendOnTextSend(t *testing.T) {
	svc, _, _, _, _, ca, chat, ids := setup(t, map[string]string{"alice": "", "bob": ""})

	if _, err := svc.Send(context.Background(), chat.ID, ids["alice"], "lunch?", models.ContentTypeText); err != nil {
		t.Fatalf("Send failed: %v", err)
	}
	if len(ca.lines) != 1 || ca.lines[0] != "alice: lunch?" {
		t.Errorf("Unexpected context lines: %v", ca.lines)
	}

	// audio sends must not pollute the text context
	payload := base64.StdEncoding.EncodeToString([]byte("audio"))
	if _, err := svc.Send(context.Background(), chat.ID, ids["alice"], payload, models.ContentTypeWAV); err != nil {
		t.Fatalf("Send failed: %v", err)
	}
	if len(ca.lines) != 1 {
		t.Errorf("Audio send should not append context, got %v", ca.lines)
	}
}

func TestTranslationTargets(t *testing.T) {
	sender := primitive.NewObjectID()
	b := primitive.NewObjectID()
	c := primitive.NewObjectID()
	d := primitive.NewObjectID()

	prefs := map[primitive.ObjectID]*models.UserSettings{
		b: {UserID: b, TranslationLanguage: "fr"},
		c: {UserID: c, TranslationLanguage: models.DefaultLanguage},
		d: {UserID: d, TranslationLanguage: ""},
	}
	members := []primitive.ObjectID{sender, b, c, d}

	targets := translationTargets(members, sender, prefs, models.DefaultLanguage)
	if len(targets) != 1 {
		t.Fatalf("Expected 1 target, got %d", len(targets))
	}
	if targets[0].user != b || targets[0].lang != "fr" {
		t.Errorf("Unexpected target: %+v", targets[0])
	}

	// sender's own preference never produces a target
	prefs[sender] = &models.UserSettings{UserID: sender, TranslationLanguage: "de"}
	targets = translationTargets(members, sender, prefs, models.DefaultLanguage)
	if len(targets) != 1 {
		t.Errorf("Sender must not be a translation target, got %d targets", len(targets))
	}

	// source language matching the target suppresses the entry
	targets = translationTargets(members, sender, prefs, "fr")
	if len(targets) != 0 {
		t.Errorf("Expected no targets when source equals target, got %d", len(targets))
	}
}
