package objectstore

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"
)

// Memory is an in-process Store. It is used by tests and dry runs.
type Memory struct {
	mu      sync.RWMutex
	objects map[string]memoryObject
	now     func() time.Time
}

type memoryObject struct {
	body        []byte
	contentType string
	modified    time.Time
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{objects: make(map[string]memoryObject), now: time.Now}
}

// Get implements Store.
func (m *Memory) Get(_ context.Context, key string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	obj, ok := m.objects[key]
	if !ok {
		return nil, ErrNotFound
	}
	return append([]byte(nil), obj.body...), nil
}

// Put implements Store.
func (m *Memory) Put(_ context.Context, key string, body []byte, contentType string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.objects[key] = memoryObject{
		body:        append([]byte(nil), body...),
		contentType: contentType,
		modified:    m.now(),
	}
	return key, nil
}

// PutAt stores an object with an explicit modification time.
func (m *Memory) PutAt(key string, body []byte, modified time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.objects[key] = memoryObject{body: append([]byte(nil), body...), modified: modified}
}

// List implements Store. Entries are ordered by key.
func (m *Memory) List(_ context.Context, prefix string) ([]Entry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var entries []Entry
	for key, obj := range m.objects {
		if strings.HasPrefix(key, prefix) {
			entries = append(entries, Entry{Key: key, Size: int64(len(obj.body)), LastModified: obj.modified})
		}
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Key < entries[j].Key })
	return entries, nil
}

// ContentType returns the content type an object was stored with.
func (m *Memory) ContentType(key string) string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.objects[key].contentType
}
