package admin

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/hackfiles/file-vault/internal/services"
)

type updateTimerRequest struct {
	Deadline string `json:"deadline" binding:"required"`
	IsActive *bool  `json:"is_active"`
}

// GetTimer returns the upload-deadline config, materializing the default row
// if none exists yet.
func GetTimer(c *gin.Context) {
	gate := services.NewTimerGate(services.GetPostgres())
	cfg, err := gate.EnsureTimerConfig(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch timer config"})
		return
	}
	c.JSON(http.StatusOK, cfg)
}

// UpdateTimer sets the global deadline and active flag.
func UpdateTimer(c *gin.Context) {
	var req updateTimerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "deadline is required"})
		return
	}

	deadline, err := time.Parse(time.RFC3339, req.Deadline)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "deadline must be RFC3339"})
		return
	}

	isActive := true
	if req.IsActive != nil {
		isActive = *req.IsActive
	}

	cfg, err := services.GetPostgres().UpsertTimerConfig(c.Request.Context(), deadline, isActive)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update timer config"})
		return
	}
	c.JSON(http.StatusOK, cfg)
}
