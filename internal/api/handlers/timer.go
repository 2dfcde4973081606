package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/hackfiles/file-vault/internal/services"
)

// GetTimerConfig serves the countdown deadline to every client, creating the
// default config (30 days out, active) on first read.
func GetTimerConfig(c *gin.Context) {
	gate := services.NewTimerGate(services.GetPostgres())
	cfg, err := gate.EnsureTimerConfig(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch timer config"})
		return
	}
	c.JSON(http.StatusOK, cfg)
}

// GetCurrentUser returns the authenticated user's own record.
func GetCurrentUser(c *gin.Context) {
	userID := c.GetString("user_id")
	user, found, err := services.GetPostgres().GetUser(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch user"})
		return
	}
	if !found {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}
	c.JSON(http.StatusOK, user)
}
