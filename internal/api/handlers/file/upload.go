package file

import (
	"errors"
	"log"
	"mime/multipart"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/hackfiles/file-vault/internal/models"
	"github.com/hackfiles/file-vault/internal/services"
	"github.com/hackfiles/file-vault/internal/vfs"
)

// UploadResult is the per-file result object returned to the client.
type UploadResult struct {
	Success bool        `json:"success"`
	File    interface{} `json:"file,omitempty"`  // contains models.Entry on success
	Error   string      `json:"error,omitempty"` // error message on failure
}

const maxUploadSize = 200 << 20 // 200 MB per file

// Upload stores one or more files at the given path. Each file commits
// independently; a failed item is reported in its result slot without
// blocking the rest.
func Upload(c *gin.Context) {
	userID, ok := userIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthenticated"})
		return
	}

	files, err := formFiles(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	path := c.DefaultPostForm("path", "/")

	// Validate per-file size
	for _, fh := range files {
		if fh.Size > maxUploadSize {
			c.JSON(http.StatusBadRequest, gin.H{"error": "file too large: " + fh.Filename})
			return
		}
	}

	results := make([]UploadResult, 0, len(files))

	for _, fh := range files {
		entry, err := uploadSingle(c, userID, path, fh)
		if err != nil {
			// A closed window rejects the whole request, not one item.
			if errors.Is(err, vfs.ErrUploadWindowClosed) {
				c.JSON(http.StatusForbidden, gin.H{"error": "Upload deadline has passed"})
				return
			}
			results = append(results, UploadResult{Success: false, Error: err.Error()})
			continue
		}
		results = append(results, UploadResult{Success: true, File: entry})
	}

	c.JSON(http.StatusOK, gin.H{"results": results})
}

// formFiles extracts the uploaded file headers, preferring the "files" field
// with "file" as a single-upload fallback.
func formFiles(c *gin.Context) ([]*multipart.FileHeader, error) {
	form, err := c.MultipartForm()
	if err != nil {
		if f, ferr := c.FormFile("file"); ferr == nil && f != nil {
			return []*multipart.FileHeader{f}, nil
		}
		return nil, errors.New("failed to parse multipart form: " + err.Error())
	}

	if fs, found := form.File["files"]; found && len(fs) > 0 {
		return fs, nil
	}
	if fs, found := form.File["file"]; found && len(fs) > 0 {
		return fs, nil
	}
	return nil, errors.New("no files provided")
}

func uploadSingle(c *gin.Context, userID, path string, fh *multipart.FileHeader) (models.Entry, error) {
	f, err := fh.Open()
	if err != nil {
		return models.Entry{}, err
	}
	defer f.Close()

	contentType := fh.Header.Get("Content-Type")
	entry, err := svc.UploadFile(c.Request.Context(), userID, path, fh.Filename, f, fh.Size, contentType)
	if err != nil {
		return models.Entry{}, err
	}

	publishUploaded(entry)
	return entry, nil
}

// publishUploaded emits the files.uploaded event; the scan consumer picks it
// up. Publishing is best effort and never fails the request.
func publishUploaded(entry models.Entry) {
	event := map[string]interface{}{
		"entry_id":    entry.ID,
		"object_key":  entry.ObjectKey,
		"owner_id":    entry.OwnerID,
		"size":        entry.Size,
		"uploaded_at": entry.CreatedAt.UTC().Format(time.RFC3339),
	}
	if err := services.PublishEvent("files.uploaded", event); err != nil {
		log.Printf("warning: failed to publish files.uploaded event: %v", err)
	}
}
