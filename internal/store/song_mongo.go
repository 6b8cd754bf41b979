package store

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/tuneforge/api/internal/model"
)

// MongoSongStore implements SongStore on the songs collection.
type MongoSongStore struct {
	coll *mongo.Collection
}

func NewMongoSongStore(db *mongo.Database) *MongoSongStore {
	return &MongoSongStore{coll: db.Collection(collSongs)}
}

func (s *MongoSongStore) Insert(ctx context.Context, song *model.Song) error {
	if song.ID.IsZero() {
		song.ID = primitive.NewObjectID()
	}
	if _, err := s.coll.InsertOne(ctx, song); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrDuplicateClip
		}
		return fmt.Errorf("failed to insert song: %w", err)
	}
	return nil
}

func (s *MongoSongStore) ExistsByClipID(ctx context.Context, clipID string) (bool, error) {
	n, err := s.coll.CountDocuments(ctx, bson.M{"clipId": clipID}, options.Count().SetLimit(1))
	if err != nil {
		return false, fmt.Errorf("failed to check clip existence: %w", err)
	}
	return n > 0, nil
}

func (s *MongoSongStore) GetByClipID(ctx context.Context, clipID string) (*model.Song, error) {
	return s.findOne(ctx, bson.M{"clipId": clipID})
}

func (s *MongoSongStore) GetByID(ctx context.Context, id string) (*model.Song, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrNotFound
	}
	return s.findOne(ctx, bson.M{"_id": oid})
}

func (s *MongoSongStore) ListByUser(ctx context.Context, userID string, limit, offset int) ([]*model.Song, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}}).
		SetLimit(int64(limit)).
		SetSkip(int64(offset))

	cur, err := s.coll.Find(ctx, bson.M{"userId": userID}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query songs: %w", err)
	}
	defer cur.Close(ctx)

	var songs []*model.Song
	if err := cur.All(ctx, &songs); err != nil {
		return nil, fmt.Errorf("failed to decode songs: %w", err)
	}
	return songs, nil
}

func (s *MongoSongStore) SetArchivedURL(ctx context.Context, id, url string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return ErrNotFound
	}
	res, err := s.coll.UpdateOne(ctx, bson.M{"_id": oid}, bson.M{"$set": bson.M{"archivedUrl": url}})
	if err != nil {
		return fmt.Errorf("failed to set archived url: %w", err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *MongoSongStore) Delete(ctx context.Context, id, userID string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return ErrNotFound
	}
	filter := bson.M{"_id": oid}
	if userID != "" {
		filter["userId"] = userID
	}
	res, err := s.coll.DeleteOne(ctx, filter)
	if err != nil {
		return fmt.Errorf("failed to delete song: %w", err)
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *MongoSongStore) findOne(ctx context.Context, filter bson.M) (*model.Song, error) {
	var song model.Song
	err := s.coll.FindOne(ctx, filter).Decode(&song)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to load song: %w", err)
	}
	return &song, nil
}
