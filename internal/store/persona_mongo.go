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

// MongoPersonaStore implements PersonaStore on the personas collection.
type MongoPersonaStore struct {
	coll *mongo.Collection
}

func NewMongoPersonaStore(db *mongo.Database) *MongoPersonaStore {
	return &MongoPersonaStore{coll: db.Collection(collPersonas)}
}

func (s *MongoPersonaStore) Create(ctx context.Context, persona *model.Persona) error {
	if persona.ID.IsZero() {
		persona.ID = primitive.NewObjectID()
	}
	if _, err := s.coll.InsertOne(ctx, persona); err != nil {
		return fmt.Errorf("failed to insert persona: %w", err)
	}
	return nil
}

func (s *MongoPersonaStore) GetByID(ctx context.Context, id, userID string) (*model.Persona, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrNotFound
	}

	var persona model.Persona
	err = s.coll.FindOne(ctx, bson.M{"_id": oid, "userId": userID}).Decode(&persona)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to load persona: %w", err)
	}
	return &persona, nil
}

func (s *MongoPersonaStore) ListByUser(ctx context.Context, userID string) ([]*model.Persona, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})

	cur, err := s.coll.Find(ctx, bson.M{"userId": userID}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query personas: %w", err)
	}
	defer cur.Close(ctx)

	var personas []*model.Persona
	if err := cur.All(ctx, &personas); err != nil {
		return nil, fmt.Errorf("failed to decode personas: %w", err)
	}
	return personas, nil
}

func (s *MongoPersonaStore) Update(ctx context.Context, persona *model.Persona) error {
	res, err := s.coll.ReplaceOne(ctx, bson.M{"_id": persona.ID, "userId": persona.UserID}, persona)
	if err != nil {
		return fmt.Errorf("failed to update persona: %w", err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *MongoPersonaStore) Delete(ctx context.Context, id, userID string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return ErrNotFound
	}
	res, err := s.coll.DeleteOne(ctx, bson.M{"_id": oid, "userId": userID})
	if err != nil {
		return fmt.Errorf("failed to delete persona: %w", err)
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}
