// Package access answers authorization and membership queries. It is pure
// read-only logic over the chat store and carries no protocol awareness.
package access

import (
	"context"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"lingochat/models"
)

type ChatReader interface {
	IsMember(ctx context.Context, chatID, userID primitive.ObjectID) (bool, error)
	ChatIDsForUser(ctx context.Context, userID primitive.ObjectID) ([]primitive.ObjectID, error)
	ChatsForUser(ctx context.Context, userID primitive.ObjectID) ([]models.Chat, error)
}

type Control struct {
	chats ChatReader
}

func New(chats ChatReader) *Control {
	return &Control{chats: chats}
}

// IsMember reports whether the chat's member set contains the user. Called
// on every socket event, so it maps to a single indexed lookup.
func (c *Control) IsMember(ctx context.Context, userID, chatID primitive.ObjectID) (bool, error) {
	return c.chats.IsMember(ctx, chatID, userID)
}

// ChatIDs enumerates every chat the user belongs to, for room auto-join.
func (c *Control) ChatIDs(ctx context.Context, userID primitive.ObjectID) ([]primitive.ObjectID, error) {
	return c.chats.ChatIDsForUser(ctx, userID)
}

// DirectContacts returns the other member of every direct chat the user
// belongs to. Used only for presence fan-out targeting.
func (c *Control) DirectContacts(ctx context.Context, userID primitive.ObjectID) ([]primitive.ObjectID, error) {
	chats, err := c.chats.ChatsForUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	seen := make(map[primitive.ObjectID]bool)
	var contacts []primitive.ObjectID
	for i := range chats {
		other, ok := chats[i].OtherUser(userID)
		if !ok || seen[other] {
			continue
		}
		seen[other] = true
		contacts = append(contacts, other)
	}
	return contacts, nil
}
