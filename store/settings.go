package store

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"

	"lingochat/models"
)

// SettingsForUser reads a user's settings, creating the default document on
// first read (upsert-on-read).
func (s *Store) SettingsForUser(ctx context.Context, userID primitive.ObjectID) (*models.UserSettings, error) {
	filter := bson.M{"userId": userID}
	update := bson.M{"$setOnInsert": bson.M{
		"userId":              userID,
		"translationLanguage": models.DefaultLanguage,
		"translateByDefault":  false,
	}}
	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)

	var settings models.UserSettings
	if err := s.Settings.FindOneAndUpdate(ctx, filter, update, opts).Decode(&settings); err != nil {
		return nil, err
	}
	return &settings, nil
}

func (s *Store) UpdateSettings(ctx context.Context, userID primitive.ObjectID, language string, translateByDefault bool) (*models.UserSettings, error) {
	filter := bson.M{"userId": userID}
	update := bson.M{"$set": bson.M{
		"translationLanguage": language,
		"translateByDefault":  translateByDefault,
	}}
	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)

	var settings models.UserSettings
	if err := s.Settings.FindOneAndUpdate(ctx, filter, update, opts).Decode(&settings); err != nil {
		return nil, err
	}
	return &settings, nil
}
