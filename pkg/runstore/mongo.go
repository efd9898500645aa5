package runstore

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// MongoStore is a MongoDB-backed run store for durable run history.
// Unlike the Redis store, records do not expire.
type MongoStore struct {
	client *mongo.Client
	runs   *mongo.Collection
}

// MongoConfig configures the MongoDB connection.
type MongoConfig struct {
	// URI is the MongoDB connection string, e.g. "mongodb://localhost:27017".
	URI string

	// Database is the database name. Empty means "spherepack".
	Database string
}

// runDoc is the stored document. The run itself is kept as its JSON
// encoding (the API wire format; pipeline.Options carries runtime-only
// fields with no stable BSON form); the status and creation time are
// lifted out for queries and sorting.
type runDoc struct {
	ID        string    `bson:"_id"`
	Status    string    `bson:"status"`
	CreatedAt time.Time `bson:"created_at"`
	Data      []byte    `bson:"data"`
}

// NewMongoStore connects to MongoDB and verifies the connection with a ping.
func NewMongoStore(ctx context.Context, cfg MongoConfig) (*MongoStore, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		client.Disconnect(ctx)
		return nil, fmt.Errorf("ping mongo: %w", err)
	}
	db := cfg.Database
	if db == "" {
		db = "spherepack"
	}
	return &MongoStore{
		client: client,
		runs:   client.Database(db).Collection("runs"),
	}, nil
}

// Get retrieves a run by ID. Returns nil, nil if absent.
func (s *MongoStore) Get(ctx context.Context, id string) (*Run, error) {
	var doc runDoc
	err := s.runs.FindOne(ctx, bson.M{"_id": id}).Decode(&doc)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find run: %w", err)
	}
	var run Run
	if err := json.Unmarshal(doc.Data, &run); err != nil {
		return nil, fmt.Errorf("parse run: %w", err)
	}
	return &run, nil
}

// Put stores or replaces a run.
func (s *MongoStore) Put(ctx context.Context, run *Run) error {
	data, err := json.Marshal(run)
	if err != nil {
		return fmt.Errorf("marshal run: %w", err)
	}
	doc := runDoc{
		ID:        run.ID,
		Status:    string(run.Status),
		CreatedAt: run.CreatedAt,
		Data:      data,
	}
	_, err = s.runs.ReplaceOne(ctx, bson.M{"_id": run.ID}, doc,
		options.Replace().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("store run: %w", err)
	}
	return nil
}

// List returns all runs, newest first.
func (s *MongoStore) List(ctx context.Context) ([]*Run, error) {
	cursor, err := s.runs.Find(ctx, bson.M{},
		options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}))
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	var docs []runDoc
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("read runs: %w", err)
	}

	runs := make([]*Run, 0, len(docs))
	for _, doc := range docs {
		var run Run
		if err := json.Unmarshal(doc.Data, &run); err != nil {
			continue // skip undecodable records
		}
		runs = append(runs, &run)
	}
	return runs, nil
}

// Delete removes a run.
func (s *MongoStore) Delete(ctx context.Context, id string) error {
	_, err := s.runs.DeleteOne(ctx, bson.M{"_id": id})
	return err
}

// Close disconnects from MongoDB.
func (s *MongoStore) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.client.Disconnect(ctx)
}

// Ensure MongoStore implements Store.
var _ Store = (*MongoStore)(nil)
