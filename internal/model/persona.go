package model

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Persona is a reusable voice/style preset owned by a user. Generation
// requests may reference one; its style tags are merged into the request.
type Persona struct {
	ID primitive.ObjectID `bson:"_id,omitempty" json:"id"`

	UserID      string   `bson:"userId" json:"userId"`
	Name        string   `bson:"name" json:"name"`
	Description string   `bson:"description,omitempty" json:"description,omitempty"`
	StyleTags   []string `bson:"styleTags,omitempty" json:"styleTags,omitempty"`
	VoicePrompt string   `bson:"voicePrompt,omitempty" json:"voicePrompt,omitempty"`

	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time `bson:"updatedAt" json:"updatedAt"`
}
