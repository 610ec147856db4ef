package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Chat is either a direct chat (exactly two users, no name or admin) or a
// group chat (three or more users, required name, one admin). Membership is
// immutable after creation.
type Chat struct {
	ID            primitive.ObjectID   `bson:"_id,omitempty" json:"id"`
	Name          string               `bson:"name,omitempty" json:"name,omitempty"`
	IsGroupChat   bool                 `bson:"isGroupChat" json:"isGroupChat"`
	PhotoURL      string               `bson:"photoURL,omitempty" json:"photoURL,omitempty"`
	Users         []primitive.ObjectID `bson:"users" json:"users"`
	Admin         primitive.ObjectID   `bson:"admin,omitempty" json:"admin,omitempty"`
	LatestMessage primitive.ObjectID   `bson:"latestMessage,omitempty" json:"latestMessage,omitempty"`
	CreatedAt     time.Time            `bson:"createdAt,omitempty" json:"createdAt,omitempty"`
	UpdatedAt     time.Time            `bson:"updatedAt,omitempty" json:"updatedAt,omitempty"`
}

// OtherUser returns the other member of a direct chat.
func (c *Chat) OtherUser(userID primitive.ObjectID) (primitive.ObjectID, bool) {
	if c.IsGroupChat || len(c.Users) != 2 {
		return primitive.NilObjectID, false
	}
	for _, u := range c.Users {
		if u != userID {
			return u, true
		}
	}
	return primitive.NilObjectID, false
}

// HasUser reports whether userID is in the chat's member set.
func (c *Chat) HasUser(userID primitive.ObjectID) bool {
	for _, u := range c.Users {
		if u == userID {
			return true
		}
	}
	return false
}
