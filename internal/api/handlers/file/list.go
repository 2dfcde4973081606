package file

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/hackfiles/file-vault/internal/vfs"
)

// List returns the direct children of a path, folders first, optionally
// narrowed by search text, type category and date range.
func List(c *gin.Context) {
	userID, ok := userIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	path := c.DefaultQuery("path", "/")
	filters := vfs.Filters{
		NameSubstring: c.Query("search"),
		TypeCategory:  c.DefaultQuery("fileType", "all"),
		DateRange:     c.DefaultQuery("dateRange", "all"),
	}

	entries, err := svc.ListEntries(c.Request.Context(), userID, path, filters)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"files": entries})
}
