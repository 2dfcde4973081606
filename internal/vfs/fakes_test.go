package vfs

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/hackfiles/file-vault/internal/models"
)

// memStore is an in-memory MetadataStore.
type memStore struct {
	mu      sync.Mutex
	entries map[string]models.Entry
}

func newMemStore() *memStore {
	return &memStore{entries: make(map[string]models.Entry)}
}

func (m *memStore) CreateEntry(_ context.Context, e models.Entry) (models.Entry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[e.ID] = e
	return e, nil
}

func (m *memStore) GetEntry(_ context.Context, ownerID, id string) (models.Entry, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.entries[id]
	if !ok || e.OwnerID != ownerID {
		return models.Entry{}, false, nil
	}
	return e, true, nil
}

func (m *memStore) ListByPath(_ context.Context, ownerID, path string) ([]models.Entry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Entry
	for _, e := range m.entries {
		if e.OwnerID == ownerID && e.Path == path {
			out = append(out, e)
		}
	}
	return out, nil
}

func (m *memStore) SiblingExists(_ context.Context, ownerID, path, name string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, e := range m.entries {
		if e.OwnerID == ownerID && e.Path == path && e.Name == name {
			return true, nil
		}
	}
	return false, nil
}

func (m *memStore) DeleteEntry(_ context.Context, ownerID, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if e, ok := m.entries[id]; ok && e.OwnerID == ownerID {
		delete(m.entries, id)
	}
	return nil
}

func (m *memStore) DeleteByPrefix(_ context.Context, ownerID, pathPrefix, keyPrefix string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for id, e := range m.entries {
		if e.OwnerID != ownerID {
			continue
		}
		if strings.HasPrefix(e.Path, pathPrefix) || strings.HasPrefix(e.ObjectKey, keyPrefix) {
			delete(m.entries, id)
			n++
		}
	}
	return n, nil
}

func (m *memStore) all(ownerID string) []models.Entry {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Entry
	for _, e := range m.entries {
		if e.OwnerID == ownerID {
			out = append(out, e)
		}
	}
	return out
}

// memObjects is an in-memory ObjectStore. failPutKeys and failDelete inject
// adapter failures.
type memObjects struct {
	mu          sync.Mutex
	objects     map[string][]byte
	failPutKeys map[string]bool
	failDelete  bool
}

func newMemObjects() *memObjects {
	return &memObjects{
		objects:     make(map[string][]byte),
		failPutKeys: make(map[string]bool),
	}
}

func (m *memObjects) Put(_ context.Context, key string, r io.Reader, _ int64, _ string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failPutKeys[key] {
		return fmt.Errorf("injected put failure for %s", key)
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	m.objects[key] = data
	return nil
}

func (m *memObjects) Get(_ context.Context, key string) (io.ReadCloser, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.objects[key]
	if !ok {
		return nil, fmt.Errorf("no such object: %s", key)
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func (m *memObjects) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failDelete {
		return fmt.Errorf("injected delete failure for %s", key)
	}
	delete(m.objects, key)
	return nil
}

func (m *memObjects) ListByPrefix(_ context.Context, prefix string) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var keys []string
	for k := range m.objects {
		if strings.HasPrefix(k, prefix) {
			keys = append(keys, k)
		}
	}
	return keys, nil
}

func (m *memObjects) DeleteByPrefix(_ context.Context, prefix string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failDelete {
		return fmt.Errorf("injected delete failure for prefix %s", prefix)
	}
	for k := range m.objects {
		if strings.HasPrefix(k, prefix) {
			delete(m.objects, k)
		}
	}
	return nil
}

// stubGate is a fixed-answer UploadGate.
type stubGate struct {
	open bool
	err  error
}

func (g *stubGate) IsOpen(context.Context, time.Time) (bool, error) {
	return g.open, g.err
}

func newTestService() (*Service, *memStore, *memObjects) {
	meta := newMemStore()
	objects := newMemObjects()
	svc := New(meta, objects, &stubGate{open: true})
	return svc, meta, objects
}
