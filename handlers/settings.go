package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
)

type UpdateSettingsRequest struct {
	TranslationLanguage string `json:"translationLanguage" binding:"required"`
	TranslateByDefault  bool   `json:"translateByDefault"`
}

// GetSettings returns the caller's translation settings, creating the
// default document on first read.
func GetSettings(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
	defer cancel()

	settings, err := svc.Store.SettingsForUser(ctx, userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load settings"})
		return
	}

	c.JSON(http.StatusOK, settings)
}

// UpdateSettings replaces the caller's translation settings. Settings are
// owner-only; the route derives the target from the token, never the body.
func UpdateSettings(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req UpdateSettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
	defer cancel()

	settings, err := svc.Store.UpdateSettings(ctx, userID, req.TranslationLanguage, req.TranslateByDefault)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update settings"})
		return
	}

	c.JSON(http.StatusOK, settings)
}
