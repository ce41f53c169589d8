package store

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/mhalvorsen/enrichmap/pkg/errors"
)

const runsCollection = "runs"

// MongoStore persists runs in a MongoDB collection.
type MongoStore struct {
	client *mongo.Client
	runs   *mongo.Collection
}

// NewMongoStore connects to MongoDB and verifies the connection with a ping.
func NewMongoStore(ctx context.Context, uri, database string) (*MongoStore, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "connect to mongodb")
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "ping mongodb")
	}
	return &MongoStore{
		client: client,
		runs:   client.Database(database).Collection(runsCollection),
	}, nil
}

// SaveRun persists a run, replacing any run with the same ID.
func (s *MongoStore) SaveRun(ctx context.Context, run *Run) error {
	if run.ID == "" {
		return errors.New(errors.ErrCodeInvalidConfig, "run ID must not be empty")
	}
	opts := options.Replace().SetUpsert(true)
	if _, err := s.runs.ReplaceOne(ctx, bson.M{"_id": run.ID}, run, opts); err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "save run %s", run.ID)
	}
	return nil
}

// GetRun retrieves a run by ID.
func (s *MongoStore) GetRun(ctx context.Context, id string) (*Run, error) {
	var run Run
	err := s.runs.FindOne(ctx, bson.M{"_id": id}).Decode(&run)
	if err == mongo.ErrNoDocuments {
		return nil, errors.New(errors.ErrCodeRunNotFound, "run %q not found", id)
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "get run %s", id)
	}
	return &run, nil
}

// ListRuns returns summaries of all runs, newest first.
func (s *MongoStore) ListRuns(ctx context.Context) ([]Summary, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetProjection(bson.M{"_id": 1, "created_at": 1, "radius": 1, "result.node_ids": 1, "result.features": 1})
	cursor, err := s.runs.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "list runs")
	}
	defer cursor.Close(ctx)

	var out []Summary
	for cursor.Next(ctx) {
		var run Run
		if err := cursor.Decode(&run); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInternal, err, "decode run")
		}
		out = append(out, Summarize(&run))
	}
	if err := cursor.Err(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "list runs")
	}
	return out, nil
}

// DeleteRun removes a run by ID.
func (s *MongoStore) DeleteRun(ctx context.Context, id string) error {
	res, err := s.runs.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "delete run %s", id)
	}
	if res.DeletedCount == 0 {
		return errors.New(errors.ErrCodeRunNotFound, "run %q not found", id)
	}
	return nil
}

// Close disconnects the underlying client.
func (s *MongoStore) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

// Ensure MongoStore implements Store.
var _ Store = (*MongoStore)(nil)
