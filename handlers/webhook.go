package handlers

import (
	"net/http"
	"strings"

	"bengkelbot/models"
	"bengkelbot/services/bot"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// webhookEvent is the inbound payload posted by the chat gateway.
type webhookEvent struct {
	SenderNumber string  `json:"sender_number" binding:"required"`
	SenderName   string  `json:"sender_name"`
	Text         string  `json:"text"`
	IsMedia      bool    `json:"is_media"`
	MediaNote    string  `json:"media_note"`
	Lat          float64 `json:"lat"`
	Lng          float64 `json:"lng"`
	LocationName string  `json:"location_name"`
	HasLocation  bool    `json:"has_location"`
}

// WebhookHandler ingests one gateway event. It returns 202 immediately; the
// actual reply happens asynchronously after the coalescing window.
func (hb *HandlerBundle) WebhookHandler(c *gin.Context) {
	var evt webhookEvent
	if err := c.ShouldBindJSON(&evt); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input", "details": err.Error()})
		return
	}
	if strings.TrimSpace(evt.Text) == "" && !evt.IsMedia && !evt.HasLocation {
		c.JSON(http.StatusBadRequest, gin.H{"error": "empty event"})
		return
	}

	msg := bot.InboundMessage{
		SenderNumber: evt.SenderNumber,
		SenderName:   evt.SenderName,
		Text:         evt.Text,
		IsMedia:      evt.IsMedia,
		MediaNote:    evt.MediaNote,
	}
	if evt.HasLocation {
		msg.Location = &models.LocationFix{Lat: evt.Lat, Lng: evt.Lng, Label: evt.LocationName}
	}

	hb.Orchestrator.HandleInbound(msg)
	hb.Logger.Debug("webhook event accepted",
		zap.String("sender", evt.SenderNumber),
		zap.Bool("media", evt.IsMedia))
	c.JSON(http.StatusAccepted, gin.H{"status": "queued"})
}
