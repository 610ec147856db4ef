package store

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"lingochat/models"
)

func (s *Store) CreateChat(ctx context.Context, chat *models.Chat) error {
	if chat.ID.IsZero() {
		chat.ID = primitive.NewObjectID()
	}
	chat.CreatedAt = time.Now()
	chat.UpdatedAt = chat.CreatedAt
	_, err := s.Chats.InsertOne(ctx, chat)
	return err
}

func (s *Store) ChatByID(ctx context.Context, id primitive.ObjectID) (*models.Chat, error) {
	var chat models.Chat
	if err := s.Chats.FindOne(ctx, bson.M{"_id": id}).Decode(&chat); err != nil {
		return nil, err
	}
	return &chat, nil
}

// FindDirectChatBetween returns the direct chat shared by the pair, or nil
// when none exists.
func (s *Store) FindDirectChatBetween(ctx context.Context, a, b primitive.ObjectID) (*models.Chat, error) {
	filter := bson.M{
		"isGroupChat": false,
		"users":       bson.M{"$all": bson.A{a, b}, "$size": 2},
	}

	var chat models.Chat
	err := s.Chats.FindOne(ctx, filter).Decode(&chat)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &chat, nil
}

func (s *Store) ChatsForUser(ctx context.Context, userID primitive.ObjectID) ([]models.Chat, error) {
	opts := options.Find().SetSort(bson.D{{Key: "updatedAt", Value: -1}})
	cursor, err := s.Chats.Find(ctx, bson.M{"users": userID}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var chats []models.Chat
	if err := cursor.All(ctx, &chats); err != nil {
		return nil, err
	}
	return chats, nil
}

func (s *Store) ChatIDsForUser(ctx context.Context, userID primitive.ObjectID) ([]primitive.ObjectID, error) {
	opts := options.Find().SetProjection(bson.M{"_id": 1})
	cursor, err := s.Chats.Find(ctx, bson.M{"users": userID}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var docs []struct {
		ID primitive.ObjectID `bson:"_id"`
	}
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, err
	}

	ids := make([]primitive.ObjectID, len(docs))
	for i, d := range docs {
		ids[i] = d.ID
	}
	return ids, nil
}

// IsMember is a single indexed count, cheap enough to run on every socket
// event.
func (s *Store) IsMember(ctx context.Context, chatID, userID primitive.ObjectID) (bool, error) {
	n, err := s.Chats.CountDocuments(ctx, bson.M{"_id": chatID, "users": userID}, options.Count().SetLimit(1))
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (s *Store) SetLatestMessage(ctx context.Context, chatID, messageID primitive.ObjectID) error {
	update := bson.M{"$set": bson.M{"latestMessage": messageID, "updatedAt": time.Now()}}
	_, err := s.Chats.UpdateOne(ctx, bson.M{"_id": chatID}, update)
	return err
}
