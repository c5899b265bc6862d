package settingsRepo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"bengkelbot/database"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// SettingsRepository is a small key-value store for operator-tunable values
// (system prompt, announcement text, and the like).
type SettingsRepository interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
}

type setting struct {
	Key   string `bson:"key"`
	Value string `bson:"value"`
}

// MongoSettingsRepo implements SettingsRepository using MongoDB.
type MongoSettingsRepo struct {
	coll *mongo.Collection
}

// NewMongoSettingsRepo returns a repository backed by the "settings" collection.
func NewMongoSettingsRepo() *MongoSettingsRepo {
	return &MongoSettingsRepo{coll: database.Collection("settings")}
}

// Get returns the stored value, or an empty string when the key is absent.
func (r *MongoSettingsRepo) Get(ctx context.Context, key string) (string, error) {
	cctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var s setting
	err := r.coll.FindOne(cctx, bson.M{"key": key}).Decode(&s)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to read setting %q: %w", key, err)
	}
	return s.Value, nil
}

// Set upserts a value.
func (r *MongoSettingsRepo) Set(ctx context.Context, key, value string) error {
	cctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	_, err := r.coll.UpdateOne(cctx,
		bson.M{"key": key},
		bson.M{"$set": bson.M{"key": key, "value": value}},
		options.Update().SetUpsert(true),
	)
	if err != nil {
		return fmt.Errorf("failed to write setting %q: %w", key, err)
	}
	return nil
}
