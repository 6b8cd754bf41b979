package model

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User mirrors the subject of the external identity provider. Records are
// upserted on first authenticated request; sessions themselves live outside
// this service.
type User struct {
	ID primitive.ObjectID `bson:"_id,omitempty" json:"id"`

	UserID string `bson:"userId" json:"userId"`
	Email  string `bson:"email,omitempty" json:"email,omitempty"`
	Name   string `bson:"name,omitempty" json:"name,omitempty"`

	Status UserStatus `bson:"status" json:"status"`
	Usage  Usage      `bson:"usage" json:"usage"`

	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time `bson:"updatedAt" json:"updatedAt"`
}

// Usage holds informational counters. They are incremented best-effort on
// song completion and may drift under concurrent completions; they are not
// billing data.
type Usage struct {
	SongsGenerated int `bson:"songsGenerated" json:"songsGenerated"`
	CreditsUsed    int `bson:"creditsUsed" json:"creditsUsed"`
}
