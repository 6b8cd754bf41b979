package store

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/tuneforge/api/internal/model"
)

// MongoTaskStore implements TaskStore on the generation_tasks collection.
type MongoTaskStore struct {
	coll *mongo.Collection
}

func NewMongoTaskStore(db *mongo.Database) *MongoTaskStore {
	return &MongoTaskStore{coll: db.Collection(collTasks)}
}

func (s *MongoTaskStore) Create(ctx context.Context, task *model.GenerationTask) error {
	if _, err := s.coll.InsertOne(ctx, task); err != nil {
		return fmt.Errorf("failed to insert task: %w", err)
	}
	return nil
}

func (s *MongoTaskStore) GetByTaskID(ctx context.Context, taskID string) (*model.GenerationTask, error) {
	var task model.GenerationTask
	err := s.coll.FindOne(ctx, bson.M{"taskId": taskID}).Decode(&task)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to load task: %w", err)
	}
	return &task, nil
}

// Update replaces the record only while it is still non-terminal. The
// filter excludes terminal statuses, so a concurrent reconciliation that
// already finalized the task cannot be overwritten.
func (s *MongoTaskStore) Update(ctx context.Context, task *model.GenerationTask) error {
	filter := bson.M{
		"taskId": task.TaskID,
		"status": bson.M{"$nin": model.TerminalTaskStatuses},
	}

	res, err := s.coll.ReplaceOne(ctx, filter, task)
	if err != nil {
		return fmt.Errorf("failed to update task: %w", err)
	}
	if res.MatchedCount == 0 {
		// Either the task vanished or another surface finalized it first.
		if _, err := s.GetByTaskID(ctx, task.TaskID); err != nil {
			return err
		}
		return ErrTaskFinalized
	}
	return nil
}

func (s *MongoTaskStore) ListDue(ctx context.Context, now time.Time, limit int) ([]*model.GenerationTask, error) {
	filter := bson.M{
		"status": bson.M{"$in": []model.TaskStatus{model.TaskStatusPending, model.TaskStatusInProgress}},
		"$or": []bson.M{
			{"nextPollAt": bson.M{"$lte": now}},
			{"nextPollAt": nil},
		},
		"$expr": bson.M{"$lt": []string{"$pollAttempts", "$maxPollAttempts"}},
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "nextPollAt", Value: 1}}).
		SetLimit(int64(limit))

	return s.find(ctx, filter, opts)
}

func (s *MongoTaskStore) ListActiveByUser(ctx context.Context, userID string, since time.Time) ([]*model.GenerationTask, error) {
	filter := bson.M{
		"userId":    userID,
		"status":    bson.M{"$nin": model.TerminalTaskStatuses},
		"createdAt": bson.M{"$gte": since},
	}
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	return s.find(ctx, filter, opts)
}

func (s *MongoTaskStore) ListByStatus(ctx context.Context, status model.TaskStatus, limit int) ([]*model.GenerationTask, error) {
	filter := bson.M{}
	if status != "" {
		filter["status"] = status
	}
	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}}).
		SetLimit(int64(limit))
	return s.find(ctx, filter, opts)
}

func (s *MongoTaskStore) find(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]*model.GenerationTask, error) {
	cur, err := s.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query tasks: %w", err)
	}
	defer cur.Close(ctx)

	var tasks []*model.GenerationTask
	if err := cur.All(ctx, &tasks); err != nil {
		return nil, fmt.Errorf("failed to decode tasks: %w", err)
	}
	return tasks, nil
}
