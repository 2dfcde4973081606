package admin

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/hackfiles/file-vault/internal/services"
)

// BrowseObjects lists the raw bucket contents under a prefix. This is the
// unfiltered object-store view, useful for spotting orphaned objects that
// metadata no longer references.
func BrowseObjects(c *gin.Context) {
	minioService := services.GetMinioService()
	if minioService == nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Storage service not available"})
		return
	}

	prefix := c.Query("path")
	objects, err := minioService.BrowseByPrefix(c.Request.Context(), prefix)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list objects: " + err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"prefix":  prefix,
		"objects": objects,
	})
}
