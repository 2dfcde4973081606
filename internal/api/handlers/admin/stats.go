package admin

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/hackfiles/file-vault/internal/services"
)

// GetStats reports global storage totals plus a per-user breakdown.
// Folder entries carry no bytes and are excluded from both.
func GetStats(c *gin.Context) {
	pg := services.GetPostgres()

	totals, err := pg.GetTotalStats(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch stats"})
		return
	}

	perUser, err := pg.GetUserStorageStats(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch user stats"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"totals": totals,
		"users":  perUser,
	})
}
