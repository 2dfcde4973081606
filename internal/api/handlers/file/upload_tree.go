package file

import (
	"errors"
	"mime/multipart"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/hackfiles/file-vault/internal/vfs"
)

// UploadTree handles folder uploads: each file carries a relative path with
// embedded directory segments, and the implied folders are materialized
// under the base path before the file lands.
func UploadTree(c *gin.Context) {
	userID, ok := userIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthenticated"})
		return
	}

	form, err := c.MultipartForm()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "failed to parse multipart form: " + err.Error()})
		return
	}

	files := form.File["files"]
	if len(files) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "no files provided"})
		return
	}
	basePath := c.DefaultPostForm("path", "/")
	relativePaths := form.Value["relativePaths"]

	for _, fh := range files {
		if fh.Size > maxUploadSize {
			c.JSON(http.StatusBadRequest, gin.H{"error": "file too large: " + fh.Filename})
			return
		}
	}

	items := make([]vfs.TreeItem, 0, len(files))
	opened := make([]multipart.File, 0, len(files))
	defer func() {
		for _, f := range opened {
			f.Close()
		}
	}()

	for i, fh := range files {
		f, err := fh.Open()
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to open " + fh.Filename})
			return
		}
		opened = append(opened, f)

		// Fall back to the bare filename when the client sent no relative
		// path for this slot.
		rel := fh.Filename
		if i < len(relativePaths) && relativePaths[i] != "" {
			rel = relativePaths[i]
		}

		items = append(items, vfs.TreeItem{
			RelativePath: rel,
			Reader:       f,
			Size:         fh.Size,
			MimeType:     fh.Header.Get("Content-Type"),
		})
	}

	uploaded, itemErrors, err := svc.UploadTree(c.Request.Context(), userID, basePath, items)
	if err != nil {
		if errors.Is(err, vfs.ErrUploadWindowClosed) {
			c.JSON(http.StatusForbidden, gin.H{"error": "Upload deadline has passed"})
			return
		}
		respondError(c, err)
		return
	}

	for _, entry := range uploaded {
		publishUploaded(entry)
	}

	c.JSON(http.StatusOK, gin.H{
		"success": len(itemErrors) == 0,
		"files":   uploaded,
		"errors":  itemErrors,
	})
}
