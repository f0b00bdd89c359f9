package database

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type MongoStore struct {
	client      *mongo.Client
	database    *mongo.Database
	schemasColl *mongo.Collection
}

// NewMongoStore creates a new MongoStore with the given connection string and database name.
func NewMongoStore(ctx context.Context, connectionString, dbName string) (*MongoStore, error) {
	clientOptions := options.Client().ApplyURI(connectionString)
	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return nil, err
	}

	if err := client.Ping(ctx, nil); err != nil {
		return nil, err
	}

	db := client.Database(dbName)
	return &MongoStore{
		client:      client,
		database:    db,
		schemasColl: db.Collection("schemas"),
	}, nil
}

// Close closes the MongoDB connection.
func (s *MongoStore) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

// GetSchema retrieves a schema by name from MongoDB.
func (s *MongoStore) GetSchema(ctx context.Context, name string) (string, error) {
	var doc Schema
	err := s.schemasColl.FindOne(ctx, bson.M{"_id": name}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return "", ErrSchemaNotFound
		}
		return "", err
	}
	return doc.Content, nil
}

// ListSchemas retrieves a page of schemas ordered by name.
func (s *MongoStore) ListSchemas(ctx context.Context, offset, limit int) ([]*Schema, error) {
	opts := options.Find().SetSort(bson.D{{Key: "_id", Value: 1}})
	if offset > 0 {
		opts.SetSkip(int64(offset))
	}
	if limit > 0 {
		opts.SetLimit(int64(limit))
	}

	cursor, err := s.schemasColl.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	schemas := []*Schema{}
	if err := cursor.All(ctx, &schemas); err != nil {
		return nil, err
	}
	return schemas, nil
}

// CreateSchema creates or replaces a schema in MongoDB.
func (s *MongoStore) CreateSchema(ctx context.Context, name, content string) error {
	_, err := s.schemasColl.UpdateOne(
		ctx,
		bson.M{"_id": name},
		bson.M{"$set": bson.M{"content": content, "updatedAt": time.Now().UTC()}},
		options.Update().SetUpsert(true),
	)
	return err
}

// DeleteSchema removes a schema from MongoDB.
func (s *MongoStore) DeleteSchema(ctx context.Context, name string) error {
	result, err := s.schemasColl.DeleteOne(ctx, bson.M{"_id": name})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return ErrSchemaNotFound
	}
	return nil
}
