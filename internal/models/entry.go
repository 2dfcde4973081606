package models

import (
	"time"
)

// Scan status values for uploaded files.
const (
	ScanPending  = "pending"
	ScanClean    = "clean"
	ScanInfected = "infected"
)

// Entry is a single file or folder record in a user's namespace.
// Path is the parent directory ("/" for the root), normalized to start and
// end with "/". ObjectKey is the flat object-store key: ownerID+path+name for
// files, with a trailing "/" for folders so the key doubles as a delete prefix.
type Entry struct {
	ID         string    `json:"id"`
	OwnerID    string    `json:"owner_id"`
	Name       string    `json:"name"`
	Path       string    `json:"path"`
	ObjectKey  string    `json:"object_key"`
	IsFolder   bool      `json:"is_folder"`
	Size       int64     `json:"size"`
	MimeType   *string   `json:"mime_type"`
	ScanStatus string    `json:"scan_status,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// TimerConfig is the global upload-deadline singleton (row id "default").
type TimerConfig struct {
	ID        string    `json:"id"`
	Deadline  time.Time `json:"deadline"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type User struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	IsAdmin   bool      `json:"is_admin"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// UserStorageStat is one row of the per-user admin storage report.
// Folder entries are excluded from both counters.
type UserStorageStat struct {
	UserID     string `json:"user_id"`
	Email      string `json:"email"`
	FirstName  string `json:"first_name"`
	LastName   string `json:"last_name"`
	TotalFiles int64  `json:"total_files"`
	TotalSize  int64  `json:"total_size"`
}

type TotalStats struct {
	TotalUsers int64 `json:"total_users"`
	TotalFiles int64 `json:"total_files"`
	TotalSize  int64 `json:"total_size"`
}
