package store

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"lingochat/models"
)

// CreateContent persists an immutable content document. Contents are never
// updated after this point.
func (s *Store) CreateContent(ctx context.Context, content *models.Content) error {
	if content.ID.IsZero() {
		content.ID = primitive.NewObjectID()
	}
	content.CreatedAt = time.Now()
	_, err := s.Contents.InsertOne(ctx, content)
	return err
}

func (s *Store) ContentsByID(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]models.Content, error) {
	cursor, err := s.Contents.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var contents []models.Content
	if err := cursor.All(ctx, &contents); err != nil {
		return nil, err
	}

	byID := make(map[primitive.ObjectID]models.Content, len(contents))
	for _, c := range contents {
		byID[c.ID] = c
	}
	return byID, nil
}
