package store

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"

	"lingochat/models"
)

func (s *Store) CreateMessage(ctx context.Context, msg *models.Message) error {
	if msg.ID.IsZero() {
		msg.ID = primitive.NewObjectID()
	}
	msg.CreatedAt = time.Now()
	msg.UpdatedAt = msg.CreatedAt
	if msg.TranslatedContents == nil {
		msg.TranslatedContents = []models.TranslatedContent{}
	}
	_, err := s.Messages.InsertOne(ctx, msg)
	return err
}

// MessagesForChat returns the chat's messages oldest-first with sender and
// contents resolved.
func (s *Store) MessagesForChat(ctx context.Context, chatID primitive.ObjectID) ([]models.FullMessage, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}})
	cursor, err := s.Messages.Find(ctx, bson.M{"chat": chatID}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var msgs []models.Message
	if err := cursor.All(ctx, &msgs); err != nil {
		return nil, err
	}
	return s.populateMessages(ctx, msgs)
}

// RecentMessageLines renders the last limit text messages of a chat as
// "Name: text" lines, oldest first. Used to seed the autocomplete context.
func (s *Store) RecentMessageLines(ctx context.Context, chatID primitive.ObjectID, limit int) ([]string, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}).SetLimit(int64(limit))
	cursor, err := s.Messages.Find(ctx, bson.M{"chat": chatID}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var msgs []models.Message
	if err := cursor.All(ctx, &msgs); err != nil {
		return nil, err
	}

	full, err := s.populateMessages(ctx, msgs)
	if err != nil {
		return nil, err
	}

	var lines []string
	for i := len(full) - 1; i >= 0; i-- {
		m := full[i]
		if m.OriginalContent == nil || m.OriginalContent.ContentType != models.ContentTypeText {
			continue
		}
		name := ""
		if m.Sender != nil {
			name = m.Sender.Name
		}
		lines = append(lines, fmt.Sprintf("%s: %s", name, m.OriginalContent.Value))
	}
	return lines, nil
}

func (s *Store) populateMessages(ctx context.Context, msgs []models.Message) ([]models.FullMessage, error) {
	var contentIDs []primitive.ObjectID
	var userIDs []primitive.ObjectID
	for _, m := range msgs {
		contentIDs = append(contentIDs, m.OriginalContent)
		userIDs = append(userIDs, m.Sender)
		for _, tc := range m.TranslatedContents {
			contentIDs = append(contentIDs, tc.Content)
		}
	}

	full := make([]models.FullMessage, 0, len(msgs))
	if len(msgs) == 0 {
		return full, nil
	}

	contents, err := s.ContentsByID(ctx, contentIDs)
	if err != nil {
		return nil, err
	}
	users, err := s.UsersByID(ctx, userIDs)
	if err != nil {
		return nil, err
	}

	for _, m := range msgs {
		fm := models.FullMessage{
			ID:                 m.ID,
			Chat:               m.Chat,
			CreatedAt:          m.CreatedAt,
			TranslatedContents: []models.FullTranslatedContent{},
		}
		if sender, ok := users[m.Sender]; ok {
			fm.Sender = &sender
		}
		if original, ok := contents[m.OriginalContent]; ok {
			fm.OriginalContent = &original
		}
		for _, tc := range m.TranslatedContents {
			content, ok := contents[tc.Content]
			if !ok {
				continue
			}
			fm.TranslatedContents = append(fm.TranslatedContents, models.FullTranslatedContent{
				User:     tc.User,
				Language: tc.Language,
				Content:  &content,
			})
		}
		full = append(full, fm)
	}
	return full, nil
}
