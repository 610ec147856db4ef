package models

import "go.mongodb.org/mongo-driver/bson/primitive"

// DefaultLanguage is the baseline language all original content is
// assumed to be authored in. Recipients whose preference matches it
// never receive a translated copy.
const DefaultLanguage = "en"

type UserSettings struct {
	ID                  primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID              primitive.ObjectID `bson:"userId" json:"userId"`
	TranslationLanguage string             `bson:"translationLanguage" json:"translationLanguage"`
	TranslateByDefault  bool               `bson:"translateByDefault" json:"translateByDefault"`
}
