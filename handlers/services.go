package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// timeNow is swapped in tests.
var timeNow = time.Now

// ListServicesHandler returns the service catalog.
func (hb *HandlerBundle) ListServicesHandler(c *gin.Context) {
	items, err := hb.Catalog.ListServices(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list services", "details": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"services": items})
}

// RefreshCatalogHandler drops the catalog cache after an operator edits the
// services collection, so the bot picks up new prices immediately.
func (hb *HandlerBundle) RefreshCatalogHandler(c *gin.Context) {
	hb.Catalog.Invalidate(c.Request.Context())
	c.JSON(http.StatusOK, gin.H{"status": "catalog cache invalidated"})
}

// systemPromptSettingKey mirrors the key the orchestrator reads.
const systemPromptSettingKey = "system_prompt"

// GetSystemPromptHandler returns the operator-set system prompt, empty when
// the built-in default is in effect.
func (hb *HandlerBundle) GetSystemPromptHandler(c *gin.Context) {
	value, err := hb.SettingsRepo.Get(c.Request.Context(), systemPromptSettingKey)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to read setting", "details": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"system_prompt": value})
}

// SetSystemPromptHandler stores an operator-supplied system prompt. An empty
// value reverts to the built-in default.
func (hb *HandlerBundle) SetSystemPromptHandler(c *gin.Context) {
	var input struct {
		SystemPrompt string `json:"system_prompt"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input", "details": err.Error()})
		return
	}
	if err := hb.SettingsRepo.Set(c.Request.Context(), systemPromptSettingKey, input.SystemPrompt); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to store setting", "details": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"system_prompt": input.SystemPrompt})
}
