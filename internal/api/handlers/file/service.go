package file

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/hackfiles/file-vault/internal/vfs"
)

var svc *vfs.Service

// Init wires the virtual filesystem service into the handlers.
func Init(s *vfs.Service) {
	svc = s
}

func userIDFromContext(c *gin.Context) (string, bool) {
	userID := c.GetString("user_id")
	return userID, userID != ""
}

// respondError translates the core's error taxonomy into HTTP status codes.
// The mapping lives here because it is a presentation concern, not part of
// the core's contract.
func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, vfs.ErrUploadWindowClosed):
		c.JSON(http.StatusForbidden, gin.H{"error": "Upload deadline has passed"})
	case errors.Is(err, vfs.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "File not found"})
	case vfs.IsConflict(err):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case vfs.IsValidation(err):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}
