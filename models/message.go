package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// TranslatedContent names one recipient, the language delivered to them and
// the content holding the translated payload.
type TranslatedContent struct {
	User     primitive.ObjectID `bson:"user" json:"user"`
	Language string             `bson:"language" json:"language"`
	Content  primitive.ObjectID `bson:"content" json:"content"`
}

type Message struct {
	ID                 primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	Chat               primitive.ObjectID  `bson:"chat" json:"chat"`
	Sender             primitive.ObjectID  `bson:"sender" json:"sender"`
	OriginalContent    primitive.ObjectID  `bson:"originalContent" json:"originalContent"`
	TranslatedContents []TranslatedContent `bson:"translatedContents" json:"translatedContents"`
	CreatedAt          time.Time           `bson:"createdAt,omitempty" json:"createdAt,omitempty"`
	UpdatedAt          time.Time           `bson:"updatedAt,omitempty" json:"updatedAt,omitempty"`
}

// FullTranslatedContent is a TranslatedContent with its content resolved.
type FullTranslatedContent struct {
	User     primitive.ObjectID `json:"user"`
	Language string             `json:"language"`
	Content  *Content           `json:"content"`
}

// FullMessage is the broadcast shape of a message: sender, original content
// and every translated content resolved to full documents.
type FullMessage struct {
	ID                 primitive.ObjectID      `json:"id"`
	Chat               primitive.ObjectID      `json:"chat"`
	Sender             *User                   `json:"sender"`
	OriginalContent    *Content                `json:"originalContent"`
	TranslatedContents []FullTranslatedContent `json:"translatedContents"`
	CreatedAt          time.Time               `json:"createdAt"`
}
