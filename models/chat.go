package models

import "time"

// ConversationKey identifies one sender/channel pair. It stays stable for the
// lifetime of a conversation and keys both the coalescer buffers and the
// per-sender preference cache.
type ConversationKey string

// LocationFix is a shared location attached to an inbound message.
type LocationFix struct {
	Lat   float64 `json:"lat"`
	Lng   float64 `json:"lng"`
	Label string  `json:"label,omitempty"`
}

// BufferedMessage is one inbound transport event waiting in a pending buffer.
// It is consumed exactly once at flush.
type BufferedMessage struct {
	Content      string       `json:"content"`
	IsMedia      bool         `json:"is_media"`
	AnalysisNote string       `json:"analysis_note,omitempty"`
	Location     *LocationFix `json:"location,omitempty"`
}

// Chat roles stored in conversation history.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// ChatRecord is one persisted conversation history entry.
type ChatRecord struct {
	ID              string    `bson:"id" json:"id"`
	ConversationKey string    `bson:"conversation_key" json:"conversation_key"`
	Role            string    `bson:"role" json:"role"`
	Content         string    `bson:"content" json:"content"`
	CreatedAt       time.Time `bson:"created_at" json:"created_at"`
}
