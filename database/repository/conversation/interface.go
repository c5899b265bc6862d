package conversationRepo

import (
	"context"

	"bengkelbot/models"
)

// ConversationRepository persists chat history per conversation key.
type ConversationRepository interface {
	Append(ctx context.Context, record *models.ChatRecord) error
	// Recent returns the most recent records for a key in chronological
	// order, capped at limit.
	Recent(ctx context.Context, key string, limit int) ([]models.ChatRecord, error)
}
