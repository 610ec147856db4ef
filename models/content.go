package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	ContentTypeText  = "text/plain"
	ContentTypeWAV   = "audio/wav"
	ContentTypeMP3   = "audio/mpeg"
	ContentTypeWebM  = "audio/webm"
	ContentTypeJPEG  = "image/jpeg"
	ContentTypePNG   = "image/png"
	ContentTypeOctet = "application/octet-stream"
)

// Content is an immutable payload unit. Value holds inline text for
// text/plain and a durable blob URL for binary content types.
type Content struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	ContentType string             `bson:"contentType" json:"contentType"`
	Value       string             `bson:"value" json:"value"`
	UploadedBy  primitive.ObjectID `bson:"uploadedBy,omitempty" json:"uploadedBy,omitempty"`
	Metadata    bson.M             `bson:"metadata,omitempty" json:"metadata,omitempty"`
	CreatedAt   time.Time          `bson:"createdAt,omitempty" json:"createdAt,omitempty"`
}

// IsAudio reports whether a content type tag names an audio payload.
func IsAudio(contentType string) bool {
	switch contentType {
	case ContentTypeWAV, ContentTypeMP3, ContentTypeWebM:
		return true
	}
	return false
}
