// Package store holds all MongoDB data access. Consumers declare narrow
// interfaces over the methods they need so they stay testable without a
// live database.
package store

import (
	"go.mongodb.org/mongo-driver/mongo"
)

type Store struct {
	Users    *mongo.Collection
	Chats    *mongo.Collection
	Messages *mongo.Collection
	Contents *mongo.Collection
	Settings *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{
		Users:    db.Collection("users"),
		Chats:    db.Collection("chats"),
		Messages: db.Collection("messages"),
		Contents: db.Collection("contents"),
		Settings: db.Collection("user_settings"),
	}
}
