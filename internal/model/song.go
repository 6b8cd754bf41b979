package model

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Song is one generated clip persisted to the library. ClipID is the
// provider-assigned identity and the sole deduplication key: at most one
// Song exists per clip system-wide, enforced by a unique index.
type Song struct {
	ID primitive.ObjectID `bson:"_id,omitempty" json:"id"`

	ClipID string `bson:"clipId" json:"clipId"`
	TaskID string `bson:"taskId" json:"taskId"`
	UserID string `bson:"userId" json:"userId"`

	Title    string  `bson:"title,omitempty" json:"title,omitempty"`
	Prompt   string  `bson:"prompt,omitempty" json:"prompt,omitempty"`
	Lyrics   string  `bson:"lyrics,omitempty" json:"lyrics,omitempty"`
	Tags     string  `bson:"tags,omitempty" json:"tags,omitempty"`
	Duration float64 `bson:"duration,omitempty" json:"duration,omitempty"`
	Model    string  `bson:"model,omitempty" json:"model,omitempty"`

	AudioURL string `bson:"audioUrl,omitempty" json:"audioUrl,omitempty"`
	VideoURL string `bson:"videoUrl,omitempty" json:"videoUrl,omitempty"`
	ImageURL string `bson:"imageUrl,omitempty" json:"imageUrl,omitempty"`

	// Set by the archive worker once the provider audio has been
	// mirrored to object storage. Provider URLs expire; this one doesn't.
	ArchivedURL string `bson:"archivedUrl,omitempty" json:"archivedUrl,omitempty"`

	Status    SongStatus `bson:"status" json:"status"`
	CreatedAt time.Time  `bson:"createdAt" json:"createdAt"`
}
