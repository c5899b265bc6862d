package bot

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"bengkelbot/models"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

const prefsTTL = 30 * 24 * time.Hour

// SenderPrefs is the small per-sender profile the bot accumulates across
// conversations. It seasons the system prompt so returning customers are not
// asked the same questions twice.
type SenderPrefs struct {
	PreferredName string `json:"preferred_name,omitempty"`
	MotorModel    string `json:"motor_model,omitempty"`
	MotorSize     string `json:"motor_size,omitempty"`
	LastService   string `json:"last_service,omitempty"`
}

// PrefsStore keeps SenderPrefs in Redis, keyed by conversation key. All
// operations are best-effort; a cold or unreachable store just means a less
// personalized prompt.
type PrefsStore struct {
	Client *redis.Client
	Logger *zap.Logger
}

// NewPrefsStore returns a store over the given Redis client.
func NewPrefsStore(client *redis.Client, logger *zap.Logger) *PrefsStore {
	return &PrefsStore{Client: client, Logger: logger}
}

// Get loads the profile for a sender. An absent or unreadable entry yields a
// zero profile, never an error.
func (p *PrefsStore) Get(ctx context.Context, key models.ConversationKey) SenderPrefs {
	var prefs SenderPrefs
	if p == nil || p.Client == nil {
		return prefs
	}
	raw, err := p.Client.Get(ctx, prefsKey(key)).Result()
	if err != nil {
		if err != redis.Nil {
			p.Logger.Warn("prefs read failed", zap.String("key", string(key)), zap.Error(err))
		}
		return prefs
	}
	if err := json.Unmarshal([]byte(raw), &prefs); err != nil {
		p.Logger.Warn("prefs entry corrupt, dropping", zap.String("key", string(key)), zap.Error(err))
		p.Client.Del(ctx, prefsKey(key))
		return SenderPrefs{}
	}
	return prefs
}

// Update merges non-empty fields of patch into the stored profile and renews
// its TTL.
func (p *PrefsStore) Update(ctx context.Context, key models.ConversationKey, patch SenderPrefs) {
	if p == nil || p.Client == nil {
		return
	}
	prefs := p.Get(ctx, key)
	if patch.PreferredName != "" {
		prefs.PreferredName = patch.PreferredName
	}
	if patch.MotorModel != "" {
		prefs.MotorModel = patch.MotorModel
	}
	if patch.MotorSize != "" {
		prefs.MotorSize = patch.MotorSize
	}
	if patch.LastService != "" {
		prefs.LastService = patch.LastService
	}

	raw, err := json.Marshal(prefs)
	if err != nil {
		return
	}
	if err := p.Client.Set(ctx, prefsKey(key), raw, prefsTTL).Err(); err != nil {
		p.Logger.Warn("prefs write failed", zap.String("key", string(key)), zap.Error(err))
	}
}

func prefsKey(key models.ConversationKey) string {
	return fmt.Sprintf("prefs:%s", key)
}

// PromptLine renders the profile as one system-prompt line, or "" when the
// profile is empty.
func (s SenderPrefs) PromptLine() string {
	if s.PreferredName == "" && s.MotorModel == "" && s.MotorSize == "" && s.LastService == "" {
		return ""
	}
	line := "Profil pelanggan:"
	if s.PreferredName != "" {
		line += fmt.Sprintf(" nama panggilan %s.", s.PreferredName)
	}
	if s.MotorModel != "" {
		line += fmt.Sprintf(" Motor: %s.", s.MotorModel)
	}
	if s.MotorSize != "" {
		line += fmt.Sprintf(" Ukuran motor: %s.", s.MotorSize)
	}
	if s.LastService != "" {
		line += fmt.Sprintf(" Layanan terakhir: %s.", s.LastService)
	}
	return line
}
