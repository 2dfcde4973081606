package file

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/hackfiles/file-vault/internal/services"
)

type bulkDeleteRequest struct {
	IDs []string `json:"ids" binding:"required"`
}

// BulkDelete deletes a set of entries independently: one entry's failure
// never blocks the others, and the response reports both sides.
func BulkDelete(c *gin.Context) {
	userID, ok := userIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var req bulkDeleteRequest
	if err := c.ShouldBindJSON(&req); err != nil || len(req.IDs) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No entry IDs provided"})
		return
	}

	result := svc.BulkDelete(c.Request.Context(), userID, req.IDs)

	if result.DeletedCount > 0 {
		event := map[string]interface{}{
			"owner_id":      userID,
			"deleted_count": result.DeletedCount,
			"entry_ids":     req.IDs,
		}
		if err := services.PublishEvent("files.deleted", event); err != nil {
			log.Printf("warning: failed to publish files.deleted event: %v", err)
		}
	}

	c.JSON(http.StatusOK, result)
}
