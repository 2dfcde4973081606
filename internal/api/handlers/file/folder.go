package file

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type createFolderRequest struct {
	Name string `json:"name" binding:"required"`
	Path string `json:"path"`
}

// CreateFolder creates an empty folder entry. Unlike file uploads, a
// same-named sibling is a hard conflict.
func CreateFolder(c *gin.Context) {
	userID, ok := userIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var req createFolderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Folder name is required"})
		return
	}

	folder, err := svc.CreateFolder(c.Request.Context(), userID, req.Path, req.Name)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, folder)
}
