package bot

import (
	"context"
	"fmt"
	"strings"
	"time"

	conversationRepo "bengkelbot/database/repository/conversation"
	settingsRepo "bengkelbot/database/repository/settings"
	"bengkelbot/models"
	"bengkelbot/services/agent"
	"bengkelbot/services/coalesce"

	"go.uber.org/zap"
)

// flushTimeout bounds one full reply cycle: provider calls, tool dispatch,
// persistence, and delivery.
const flushTimeout = 3 * time.Minute

// Replier runs one coalesced user turn through the dispatch loop.
type Replier interface {
	Run(ctx context.Context, in agent.RunInput) (string, error)
}

// Orchestrator glues the inbound transport to the dispatch loop: it buffers
// bursts per conversation, flushes them as one combined turn, and delivers
// the reply.
type Orchestrator struct {
	Transport    Transport
	Replier      Replier
	History      conversationRepo.ConversationRepository
	Settings     settingsRepo.SettingsRepository
	Prefs        *PrefsStore
	AdminNumber  string
	HistoryLimit int
	Now          func() time.Time
	Logger       *zap.Logger

	coalescer *coalesce.Coalescer
}

// NewOrchestrator wires the coalescer to the orchestrator's flush path.
func NewOrchestrator(delay time.Duration, o *Orchestrator) *Orchestrator {
	o.coalescer = coalesce.NewCoalescer(delay, o.onFlush, o.Logger)
	return o
}

// HandleInbound feeds one transport event into the per-conversation buffer.
// Messages from the admin number skip the inactivity window and flush
// immediately.
func (o *Orchestrator) HandleInbound(msg InboundMessage) {
	key := models.ConversationKey(msg.SenderNumber)
	o.coalescer.Schedule(key, msg.SenderName, models.BufferedMessage{
		Content:      msg.Text,
		IsMedia:      msg.IsMedia,
		AnalysisNote: msg.MediaNote,
		Location:     msg.Location,
	})
	if o.AdminNumber != "" && msg.SenderNumber == o.AdminNumber {
		o.coalescer.Flush(key)
	}
}

// Shutdown drains every pending buffer so no buffered input is lost on
// graceful exit.
func (o *Orchestrator) Shutdown() {
	o.coalescer.FlushAll()
}

// Pending reports how many conversations are currently buffering.
func (o *Orchestrator) Pending() int {
	return o.coalescer.Pending()
}

func (o *Orchestrator) onFlush(key models.ConversationKey, displayName string, messages []models.BufferedMessage) {
	ctx, cancel := context.WithTimeout(context.Background(), flushTimeout)
	defer cancel()

	number := string(key)
	if err := o.Transport.SendSeen(ctx, number); err != nil {
		o.Logger.Debug("send seen failed", zap.String("number", number), zap.Error(err))
	}
	if err := o.Transport.StartTyping(ctx, number); err != nil {
		o.Logger.Debug("start typing failed", zap.String("number", number), zap.Error(err))
	}
	defer func() {
		if err := o.Transport.StopTyping(ctx, number); err != nil {
			o.Logger.Debug("stop typing failed", zap.String("number", number), zap.Error(err))
		}
	}()

	userText := CombineMessages(messages)
	if strings.TrimSpace(userText) == "" {
		return
	}

	history, err := o.loadHistory(ctx, key)
	if err != nil {
		o.Logger.Warn("history fetch failed, replying without context",
			zap.String("key", number), zap.Error(err))
	}

	reply, err := o.Replier.Run(ctx, agent.RunInput{
		System:   o.systemPrompt(ctx, key),
		History:  history,
		UserText: userText,
		Caller:   models.CallerIdentity{Number: number, Name: displayName},
	})
	if err != nil {
		o.Logger.Error("reply generation failed", zap.String("key", number), zap.Error(err))
	}
	if reply == "" {
		reply = agent.DefaultApology
	}

	o.persistTurn(ctx, key, userText, reply)
	if err := o.Transport.SendText(ctx, number, reply); err != nil {
		o.Logger.Error("reply delivery failed", zap.String("number", number), zap.Error(err))
	}
}

func (o *Orchestrator) loadHistory(ctx context.Context, key models.ConversationKey) ([]agent.ChatMessage, error) {
	limit := o.HistoryLimit
	if limit <= 0 {
		limit = 30
	}
	records, err := o.History.Recent(ctx, string(key), limit)
	if err != nil {
		return nil, err
	}
	history := make([]agent.ChatMessage, 0, len(records))
	for _, rec := range records {
		switch rec.Role {
		case models.RoleAssistant:
			history = append(history, agent.AssistantMessage(rec.Content))
		default:
			history = append(history, agent.UserMessage(rec.Content))
		}
	}
	return history, nil
}

func (o *Orchestrator) systemPrompt(ctx context.Context, key models.ConversationKey) string {
	base := defaultSystemPrompt
	if o.Settings != nil {
		if stored, err := o.Settings.Get(ctx, systemPromptKey); err != nil {
			o.Logger.Warn("settings read failed, using built-in prompt", zap.Error(err))
		} else if stored != "" {
			base = stored
		}
	}
	now := time.Now()
	if o.Now != nil {
		now = o.Now()
	}
	return composePrompt(base, now, o.Prefs.Get(ctx, key))
}

func (o *Orchestrator) persistTurn(ctx context.Context, key models.ConversationKey, userText, reply string) {
	records := []models.ChatRecord{
		{ConversationKey: string(key), Role: models.RoleUser, Content: userText},
		{ConversationKey: string(key), Role: models.RoleAssistant, Content: reply},
	}
	for i := range records {
		if err := o.History.Append(ctx, &records[i]); err != nil {
			o.Logger.Error("history append failed",
				zap.String("key", string(key)),
				zap.String("role", records[i].Role),
				zap.Error(err))
		}
	}
}

// CombineMessages renders a flushed buffer as one user turn, preserving
// arrival order. Media and location events become bracketed annotations so
// the model sees them inline.
func CombineMessages(messages []models.BufferedMessage) string {
	var parts []string
	for _, msg := range messages {
		var line string
		switch {
		case msg.IsMedia:
			line = "[Foto]"
			if msg.AnalysisNote != "" {
				line += " " + msg.AnalysisNote
			}
			if msg.Content != "" {
				line += "\n" + msg.Content
			}
		case msg.Location != nil:
			line = fmt.Sprintf("[Lokasi] %.6f,%.6f", msg.Location.Lat, msg.Location.Lng)
			if msg.Location.Label != "" {
				line = fmt.Sprintf("[Lokasi] %s (%.6f,%.6f)", msg.Location.Label, msg.Location.Lat, msg.Location.Lng)
			}
			if msg.Content != "" {
				line += "\n" + msg.Content
			}
		default:
			line = msg.Content
		}
		if strings.TrimSpace(line) != "" {
			parts = append(parts, line)
		}
	}
	return strings.Join(parts, "\n")
}
