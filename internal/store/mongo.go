package store

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/tuneforge/api/internal/config"
)

const (
	collTasks    = "generation_tasks"
	collSongs    = "songs"
	collUsers    = "users"
	collPersonas = "personas"
)

// Connect opens a Mongo connection and verifies it with a ping.
func Connect(ctx context.Context, cfg *config.MongoConfig) (*mongo.Database, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	cli, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongo: %w", err)
	}

	if err := cli.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("failed to ping mongo: %w", err)
	}

	return cli.Database(cfg.Database), nil
}

// EnsureIndexes creates the indexes the stores rely on. The unique index on
// songs.clipId is the safety net behind clip deduplication: concurrent
// inserts of the same clip resolve to exactly one document regardless of
// which trigger surface got there first.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	_, err := db.Collection(collSongs).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "clipId", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("failed to create songs.clipId index: %w", err)
	}

	_, err = db.Collection(collTasks).Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "taskId", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys: bson.D{{Key: "status", Value: 1}, {Key: "nextPollAt", Value: 1}},
		},
		{
			Keys: bson.D{{Key: "userId", Value: 1}, {Key: "createdAt", Value: -1}},
		},
	})
	if err != nil {
		return fmt.Errorf("failed to create task indexes: %w", err)
	}

	_, err = db.Collection(collUsers).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "userId", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("failed to create users.userId index: %w", err)
	}

	_, err = db.Collection(collPersonas).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "userId", Value: 1}},
	})
	if err != nil {
		return fmt.Errorf("failed to create personas.userId index: %w", err)
	}

	return nil
}
