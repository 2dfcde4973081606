package file

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
)

// Download streams a file's payload straight from the object store.
func Download(c *gin.Context) {
	userID, ok := userIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	entry, err := svc.GetEntry(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	rc, err := svc.OpenFile(c.Request.Context(), entry)
	if err != nil {
		respondError(c, err)
		return
	}
	defer rc.Close()

	contentType := "application/octet-stream"
	if entry.MimeType != nil && *entry.MimeType != "" {
		contentType = *entry.MimeType
	}
	extraHeaders := map[string]string{
		"Content-Disposition": fmt.Sprintf("attachment; filename=%q", entry.Name),
	}

	c.DataFromReader(http.StatusOK, entry.Size, contentType, rc, extraHeaders)
}
