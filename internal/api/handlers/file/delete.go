package file

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/hackfiles/file-vault/internal/services"
)

// Delete removes a file, or a folder and its whole subtree.
func Delete(c *gin.Context) {
	userID, ok := userIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	entryID := c.Param("id")
	if entryID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "File ID is required"})
		return
	}

	// Fetch first so the deletion event can carry the object key.
	entry, err := svc.GetEntry(c.Request.Context(), userID, entryID)
	if err != nil {
		respondError(c, err)
		return
	}

	if err := svc.DeleteEntry(c.Request.Context(), userID, entryID); err != nil {
		respondError(c, err)
		return
	}

	event := map[string]interface{}{
		"entry_id":   entry.ID,
		"object_key": entry.ObjectKey,
		"owner_id":   entry.OwnerID,
		"is_folder":  entry.IsFolder,
	}
	if err := services.PublishEvent("files.deleted", event); err != nil {
		log.Printf("warning: failed to publish files.deleted event: %v", err)
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Entry deleted successfully",
		"file_id": entryID,
	})
}
