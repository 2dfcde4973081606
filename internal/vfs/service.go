// Package vfs maps each user's hierarchical folder/file namespace onto a flat
// object store, with a relational mirror of the metadata as the single source
// of truth for what should exist. Listing never touches the object store;
// payload bytes live only under each entry's ObjectKey.
package vfs

import (
	"context"
	"fmt"
	"io"
	"log"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/hackfiles/file-vault/internal/models"
)

// MetadataStore is the relational mirror of the namespace.
type MetadataStore interface {
	CreateEntry(ctx context.Context, e models.Entry) (models.Entry, error)
	GetEntry(ctx context.Context, ownerID, id string) (models.Entry, bool, error)
	ListByPath(ctx context.Context, ownerID, path string) ([]models.Entry, error)
	SiblingExists(ctx context.Context, ownerID, path, name string) (bool, error)
	DeleteEntry(ctx context.Context, ownerID, id string) error
	// DeleteByPrefix removes every entry whose path or object key starts with
	// the given prefixes, the folder's own row included.
	DeleteByPrefix(ctx context.Context, ownerID, pathPrefix, keyPrefix string) (int64, error)
}

// ObjectStore holds payload bytes addressed by flat keys.
type ObjectStore interface {
	Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) error
	Get(ctx context.Context, key string) (io.ReadCloser, error)
	Delete(ctx context.Context, key string) error
	ListByPrefix(ctx context.Context, prefix string) ([]string, error)
	DeleteByPrefix(ctx context.Context, prefix string) error
}

// UploadGate reports whether mutating operations are currently permitted.
type UploadGate interface {
	IsOpen(ctx context.Context, now time.Time) (bool, error)
}

// Service coordinates the metadata store and the object store so that a
// metadata row never outlives its object: uploads write the object before the
// row, deletes remove rows even when object deletion partially fails.
// Dangling objects are tolerated garbage; dangling metadata is not.
type Service struct {
	meta    MetadataStore
	objects ObjectStore
	gate    UploadGate
	now     func() time.Time
}

func New(meta MetadataStore, objects ObjectStore, gate UploadGate) *Service {
	return &Service{meta: meta, objects: objects, gate: gate, now: time.Now}
}

// WithClock fixes the service's notion of now. Used by tests.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

func (s *Service) checkGate(ctx context.Context) error {
	open, err := s.gate.IsOpen(ctx, s.now())
	if err != nil {
		return fmt.Errorf("upload gate: %w", err)
	}
	if !open {
		return ErrUploadWindowClosed
	}
	return nil
}

// ListEntries returns the direct children of path, folders first then by
// name, narrowed by the given filters. An empty result is not an error.
func (s *Service) ListEntries(ctx context.Context, ownerID, path string, f Filters) ([]models.Entry, error) {
	p, err := NormalizePath(path)
	if err != nil {
		return nil, err
	}
	if err := f.validate(); err != nil {
		return nil, err
	}

	entries, err := s.meta.ListByPath(ctx, ownerID, p)
	if err != nil {
		return nil, fmt.Errorf("list entries at %q: %w", p, err)
	}

	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].IsFolder != entries[j].IsFolder {
			return entries[i].IsFolder
		}
		return entries[i].Name < entries[j].Name
	})

	now := s.now()
	filtered := make([]models.Entry, 0, len(entries))
	for _, e := range entries {
		if f.matches(e, now) {
			filtered = append(filtered, e)
		}
	}
	return filtered, nil
}

// CreateFolder inserts a folder entry under parentPath. No object is written;
// an empty folder exists purely in metadata and its key prefix becomes
// meaningful once descendants are uploaded. A same-named sibling is a
// conflict, not an idempotent no-op.
func (s *Service) CreateFolder(ctx context.Context, ownerID, parentPath, name string) (models.Entry, error) {
	p, err := NormalizePath(parentPath)
	if err != nil {
		return models.Entry{}, err
	}
	if err := ValidateName(name); err != nil {
		return models.Entry{}, err
	}
	if err := s.checkGate(ctx); err != nil {
		return models.Entry{}, err
	}
	return s.createFolder(ctx, ownerID, p, name)
}

func (s *Service) createFolder(ctx context.Context, ownerID, parentPath, name string) (models.Entry, error) {
	exists, err := s.meta.SiblingExists(ctx, ownerID, parentPath, name)
	if err != nil {
		return models.Entry{}, fmt.Errorf("check sibling %q: %w", name, err)
	}
	if exists {
		return models.Entry{}, &ConflictError{Name: name}
	}

	now := s.now()
	folder := models.Entry{
		ID:        uuid.NewString(),
		OwnerID:   ownerID,
		Name:      name,
		Path:      parentPath,
		ObjectKey: FolderKey(ownerID, parentPath, name),
		IsFolder:  true,
		Size:      0,
		MimeType:  nil,
		CreatedAt: now,
		UpdatedAt: now,
	}
	created, err := s.meta.CreateEntry(ctx, folder)
	if err != nil {
		return models.Entry{}, err
	}
	return created, nil
}

// UploadFile writes the payload to the object store and only then records the
// metadata row, so a crash in between leaves an orphan object rather than a
// row pointing at nothing. Duplicate filenames at the same path are permitted
// and create distinct entries; only folder creation enforces sibling
// uniqueness. That asymmetry is deliberate.
func (s *Service) UploadFile(ctx context.Context, ownerID, path, filename string, r io.Reader, size int64, mimeType string) (models.Entry, error) {
	p, err := NormalizePath(path)
	if err != nil {
		return models.Entry{}, err
	}
	if err := ValidateName(filename); err != nil {
		return models.Entry{}, err
	}
	if err := s.checkGate(ctx); err != nil {
		return models.Entry{}, err
	}
	return s.uploadFile(ctx, ownerID, p, filename, r, size, mimeType)
}

func (s *Service) uploadFile(ctx context.Context, ownerID, path, filename string, r io.Reader, size int64, mimeType string) (models.Entry, error) {
	key := FileKey(ownerID, path, filename)

	if err := s.objects.Put(ctx, key, r, size, mimeType); err != nil {
		return models.Entry{}, &StorageError{Op: "put", Key: key, Err: err}
	}

	var mt *string
	if mimeType != "" {
		mtCopy := mimeType
		mt = &mtCopy
	}
	now := s.now()
	entry := models.Entry{
		ID:         uuid.NewString(),
		OwnerID:    ownerID,
		Name:       filename,
		Path:       path,
		ObjectKey:  key,
		IsFolder:   false,
		Size:       size,
		MimeType:   mt,
		ScanStatus: models.ScanPending,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	created, err := s.meta.CreateEntry(ctx, entry)
	if err != nil {
		// Best-effort cleanup; a leftover object is tolerable garbage.
		if delErr := s.objects.Delete(ctx, key); delErr != nil {
			log.Printf("[VFS] cleanup of %s after metadata failure: %v", key, delErr)
		}
		return models.Entry{}, fmt.Errorf("save metadata for %q: %w", filename, err)
	}
	return created, nil
}

// TreeItem is one file in a client-supplied batch upload. RelativePath may
// carry directory segments ("subdir/photo.png") which are materialized as
// folder entries under the base path.
type TreeItem struct {
	RelativePath string
	Reader       io.Reader
	Size         int64
	MimeType     string
}

// UploadTree uploads a batch of files, creating the intermediate folders each
// relative path implies. Folder creation is idempotent here: a same-name
// collision means the folder already exists and the walk proceeds. Items
// commit independently; one item's failure never rolls back or blocks the
// others. Returned entries are the files (not folders) actually created, and
// itemErrors holds one message per failed item.
func (s *Service) UploadTree(ctx context.Context, ownerID, basePath string, items []TreeItem) (uploaded []models.Entry, itemErrors []string, err error) {
	base, err := NormalizePath(basePath)
	if err != nil {
		return nil, nil, err
	}
	if err := s.checkGate(ctx); err != nil {
		return nil, nil, err
	}

	// Folder keys already materialized during this call. Purely an
	// optimization: collisions are swallowed either way.
	materialized := make(map[string]bool)

	for _, item := range items {
		entry, itemErr := s.uploadTreeItem(ctx, ownerID, base, item, materialized)
		if itemErr != nil {
			itemErrors = append(itemErrors, fmt.Sprintf("%s: %v", item.RelativePath, itemErr))
			continue
		}
		uploaded = append(uploaded, entry)
	}
	return uploaded, itemErrors, nil
}

func (s *Service) uploadTreeItem(ctx context.Context, ownerID, base string, item TreeItem, materialized map[string]bool) (models.Entry, error) {
	dirs, filename, err := SplitRelative(item.RelativePath)
	if err != nil {
		return models.Entry{}, err
	}

	currentPath := base
	for _, dir := range dirs {
		key := FolderKey(ownerID, currentPath, dir)
		if !materialized[key] {
			if _, err := s.createFolder(ctx, ownerID, currentPath, dir); err != nil && !IsConflict(err) {
				return models.Entry{}, fmt.Errorf("materialize folder %q: %w", dir, err)
			}
			materialized[key] = true
		}
		currentPath = ChildPath(currentPath, dir)
	}

	return s.uploadFile(ctx, ownerID, currentPath, filename, item.Reader, item.Size, item.MimeType)
}

// DeleteEntry removes a file or, for folders, the folder and every descendant
// at any depth. Object-store deletions are attempted first, but metadata
// cleanup always completes: a dangling object is recoverable garbage, a
// metadata row pointing at deleted payload is a lie.
func (s *Service) DeleteEntry(ctx context.Context, ownerID, entryID string) error {
	entry, found, err := s.meta.GetEntry(ctx, ownerID, entryID)
	if err != nil {
		return fmt.Errorf("lookup entry %s: %w", entryID, err)
	}
	if !found {
		return ErrNotFound
	}

	if entry.IsFolder {
		if err := s.objects.DeleteByPrefix(ctx, entry.ObjectKey); err != nil {
			log.Printf("[VFS] delete objects under %s: %v (continuing with metadata cleanup)", entry.ObjectKey, err)
		}
		pathPrefix := ChildPath(entry.Path, entry.Name)
		if _, err := s.meta.DeleteByPrefix(ctx, ownerID, pathPrefix, entry.ObjectKey); err != nil {
			return fmt.Errorf("delete descendants of %q: %w", entry.Name, err)
		}
	} else {
		if err := s.objects.Delete(ctx, entry.ObjectKey); err != nil {
			log.Printf("[VFS] delete object %s: %v (continuing with metadata cleanup)", entry.ObjectKey, err)
		}
	}

	if err := s.meta.DeleteEntry(ctx, ownerID, entryID); err != nil {
		return fmt.Errorf("delete entry %s: %w", entryID, err)
	}
	return nil
}

// BulkDeleteResult reports a batch deletion: failures are collected per id
// and never abort the remaining deletions.
type BulkDeleteResult struct {
	DeletedCount int      `json:"deleted_count"`
	Errors       []string `json:"errors"`
}

// BulkDelete applies DeleteEntry to each id independently.
func (s *Service) BulkDelete(ctx context.Context, ownerID string, entryIDs []string) BulkDeleteResult {
	result := BulkDeleteResult{Errors: []string{}}
	for _, id := range entryIDs {
		if err := s.DeleteEntry(ctx, ownerID, id); err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("%s: %v", id, err))
			continue
		}
		result.DeletedCount++
	}
	return result
}

// GetEntry looks up a single entry in the caller's namespace.
func (s *Service) GetEntry(ctx context.Context, ownerID, entryID string) (models.Entry, error) {
	entry, found, err := s.meta.GetEntry(ctx, ownerID, entryID)
	if err != nil {
		return models.Entry{}, fmt.Errorf("lookup entry %s: %w", entryID, err)
	}
	if !found {
		return models.Entry{}, ErrNotFound
	}
	return entry, nil
}

// OpenFile returns a reader over a file entry's payload.
func (s *Service) OpenFile(ctx context.Context, entry models.Entry) (io.ReadCloser, error) {
	if entry.IsFolder {
		return nil, &ValidationError{Reason: "cannot download a folder"}
	}
	rc, err := s.objects.Get(ctx, entry.ObjectKey)
	if err != nil {
		return nil, &StorageError{Op: "get", Key: entry.ObjectKey, Err: err}
	}
	return rc, nil
}
