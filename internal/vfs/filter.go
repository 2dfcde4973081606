package vfs

import (
	"fmt"
	"strings"
	"time"

	"github.com/hackfiles/file-vault/internal/models"
)

// Type categories accepted by ListEntries.
const (
	TypeAll      = "all"
	TypeFolder   = "folder"
	TypeImage    = "image"
	TypeDocument = "document"
	TypeVideo    = "video"
	TypeAudio    = "audio"
	TypeArchive  = "archive"
)

// Date ranges accepted by ListEntries. Each is an inclusive lower bound on
// the entry's creation time; there is no upper bound.
const (
	DateAll   = "all"
	DateToday = "today"
	DateWeek  = "week"
	DateMonth = "month"
)

// Filters narrows a listing in memory after the path query.
// Zero values mean "no filtering".
type Filters struct {
	NameSubstring string
	TypeCategory  string
	DateRange     string
}

func (f Filters) validate() error {
	switch f.TypeCategory {
	case "", TypeAll, TypeFolder, TypeImage, TypeDocument, TypeVideo, TypeAudio, TypeArchive:
	default:
		return &ValidationError{Reason: fmt.Sprintf("unknown file type %q", f.TypeCategory)}
	}
	switch f.DateRange {
	case "", DateAll, DateToday, DateWeek, DateMonth:
	default:
		return &ValidationError{Reason: fmt.Sprintf("unknown date range %q", f.DateRange)}
	}
	return nil
}

// mimeCategories maps canonical MIME types to a category. Types missing from
// the table fall back to prefix classes and then to substring heuristics in
// categoryOf, so unknown vendor types still land somewhere sensible.
var mimeCategories = map[string]string{
	"image/jpeg":    TypeImage,
	"image/png":     TypeImage,
	"image/gif":     TypeImage,
	"image/webp":    TypeImage,
	"image/bmp":     TypeImage,
	"image/svg+xml": TypeImage,

	"application/pdf":    TypeDocument,
	"application/msword": TypeDocument,
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document": TypeDocument,
	"application/vnd.oasis.opendocument.text":                                 TypeDocument,
	"application/rtf": TypeDocument,
	"text/plain":      TypeDocument,
	"text/markdown":   TypeDocument,
	"text/csv":        TypeDocument,

	"video/mp4":        TypeVideo,
	"video/mpeg":       TypeVideo,
	"video/webm":       TypeVideo,
	"video/quicktime":  TypeVideo,
	"video/x-matroska": TypeVideo,

	"audio/mpeg": TypeAudio,
	"audio/wav":  TypeAudio,
	"audio/ogg":  TypeAudio,
	"audio/flac": TypeAudio,
	"audio/aac":  TypeAudio,

	"application/zip":              TypeArchive,
	"application/gzip":             TypeArchive,
	"application/x-tar":            TypeArchive,
	"application/x-bzip2":          TypeArchive,
	"application/x-7z-compressed":  TypeArchive,
	"application/x-rar-compressed": TypeArchive,
	"application/vnd.rar":          TypeArchive,
}

// categoryOf classifies a file's MIME type. Lookup order: exact table match,
// top-level prefix class, then substring heuristics for vendor types the
// table does not know about.
func categoryOf(mimeType string) string {
	if mimeType == "" {
		return ""
	}
	mt := strings.ToLower(strings.TrimSpace(mimeType))
	if i := strings.Index(mt, ";"); i >= 0 {
		mt = strings.TrimSpace(mt[:i])
	}
	if cat, ok := mimeCategories[mt]; ok {
		return cat
	}
	switch {
	case strings.HasPrefix(mt, "image/"):
		return TypeImage
	case strings.HasPrefix(mt, "video/"):
		return TypeVideo
	case strings.HasPrefix(mt, "audio/"):
		return TypeAudio
	case strings.HasPrefix(mt, "text/"):
		return TypeDocument
	}
	switch {
	case strings.Contains(mt, "zip"), strings.Contains(mt, "compressed"),
		strings.Contains(mt, "tar"), strings.Contains(mt, "rar"):
		return TypeArchive
	case strings.Contains(mt, "pdf"), strings.Contains(mt, "document"):
		return TypeDocument
	}
	return ""
}

func (f Filters) matches(e models.Entry, now time.Time) bool {
	if f.NameSubstring != "" &&
		!strings.Contains(strings.ToLower(e.Name), strings.ToLower(f.NameSubstring)) {
		return false
	}

	switch f.TypeCategory {
	case "", TypeAll:
	case TypeFolder:
		if !e.IsFolder {
			return false
		}
	default:
		if e.IsFolder {
			return false
		}
		mt := ""
		if e.MimeType != nil {
			mt = *e.MimeType
		}
		if categoryOf(mt) != f.TypeCategory {
			return false
		}
	}

	if bound, ok := dateLowerBound(f.DateRange, now); ok && e.CreatedAt.Before(bound) {
		return false
	}
	return true
}

func dateLowerBound(dateRange string, now time.Time) (time.Time, bool) {
	switch dateRange {
	case DateToday:
		y, m, d := now.Date()
		return time.Date(y, m, d, 0, 0, 0, 0, now.Location()), true
	case DateWeek:
		return now.AddDate(0, 0, -7), true
	case DateMonth:
		y, m, _ := now.Date()
		return time.Date(y, m, 1, 0, 0, 0, 0, now.Location()), true
	}
	return time.Time{}, false
}
