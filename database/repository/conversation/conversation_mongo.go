package conversationRepo

import (
	"context"
	"fmt"
	"time"

	"bengkelbot/database"
	"bengkelbot/models"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoConversationRepo implements ConversationRepository using MongoDB.
type MongoConversationRepo struct {
	coll *mongo.Collection
}

// NewMongoConversationRepo returns a repository backed by the "conversations" collection.
func NewMongoConversationRepo() *MongoConversationRepo {
	return &MongoConversationRepo{coll: database.Collection("conversations")}
}

// Append inserts one history record.
func (r *MongoConversationRepo) Append(ctx context.Context, record *models.ChatRecord) error {
	if record.ID == "" {
		record.ID = uuid.New().String()
	}
	if record.CreatedAt.IsZero() {
		record.CreatedAt = time.Now()
	}

	cctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if _, err := r.coll.InsertOne(cctx, record); err != nil {
		return fmt.Errorf("failed to append chat record: %w", err)
	}
	return nil
}

// Recent fetches the newest records for a key and returns them oldest-first.
func (r *MongoConversationRepo) Recent(ctx context.Context, key string, limit int) ([]models.ChatRecord, error) {
	cctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetLimit(int64(limit))
	cursor, err := r.coll.Find(cctx, bson.M{"conversation_key": key}, opts)
	if err != nil {
		return nil, fmt.Errorf("history query failed: %w", err)
	}
	defer cursor.Close(cctx)

	var records []models.ChatRecord
	if err := cursor.All(cctx, &records); err != nil {
		return nil, fmt.Errorf("error decoding chat records: %w", err)
	}
	// Reverse into chronological order.
	for i, j := 0, len(records)-1; i < j; i, j = i+1, j-1 {
		records[i], records[j] = records[j], records[i]
	}
	return records, nil
}
