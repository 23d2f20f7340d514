// Package store implements the widget's persistence layer: three
// independently scoped stores (visitor identity, chat history, chat session)
// on top of a minimal string key/value abstraction.
//
// Two KV backends exist, mirroring the two browser storage scopes an
// embedded widget would use:
//
//   - SQLiteKV persists through the repo package and survives process
//     restarts, the localStorage analog. Identity and history live here.
//   - MemoryKV lives for one process only, the sessionStorage ("per tab")
//     analog. The chat session id lives here.
//
// No network calls originate in this package; side effects are confined to
// the configured backend.
package store

import (
	"context"
	"sync"

	"gorm.io/gorm"

	"github.com/tbourn/go-chat-widget/internal/repo"
)

// KV is the minimal string key/value contract the store layer needs.
// Implementations must be safe for concurrent use.
type KV interface {
	// Get returns the stored value and whether the key exists. err is
	// reserved for backend failures; a missing key is (_, false, nil).
	Get(ctx context.Context, key string) (string, bool, error)
	// Set stores value under key, overwriting any previous value.
	Set(ctx context.Context, key, value string) error
	// Delete removes key. Removing a missing key is not an error.
	Delete(ctx context.Context, key string) error
}

// SQLiteKV is a durable KV scope backed by the storage_entries table.
type SQLiteKV struct {
	DB    *gorm.DB
	Scope string
}

// NewSQLiteKV returns a durable KV bound to the given scope tag.
func NewSQLiteKV(db *gorm.DB, scope string) *SQLiteKV {
	return &SQLiteKV{DB: db, Scope: scope}
}

// Get implements KV.
func (s *SQLiteKV) Get(ctx context.Context, key string) (string, bool, error) {
	return repo.GetEntry(ctx, s.DB, s.Scope, key)
}

// Set implements KV.
func (s *SQLiteKV) Set(ctx context.Context, key, value string) error {
	return repo.PutEntry(ctx, s.DB, s.Scope, key, value)
}

// Delete implements KV.
func (s *SQLiteKV) Delete(ctx context.Context, key string) error {
	return repo.DeleteEntry(ctx, s.DB, s.Scope, key)
}

// MemoryKV is an in-process KV scope. Its contents vanish with the process,
// which is exactly the lifetime the chat session id wants.
type MemoryKV struct {
	mu sync.RWMutex
	m  map[string]string
}

// NewMemoryKV returns an empty in-process KV.
func NewMemoryKV() *MemoryKV {
	return &MemoryKV{m: make(map[string]string)}
}

// Get implements KV.
func (s *MemoryKV) Get(_ context.Context, key string) (string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.m[key]
	return v, ok, nil
}

// Set implements KV.
func (s *MemoryKV) Set(_ context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.m[key] = value
	return nil
}

// Delete implements KV.
func (s *MemoryKV) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.m, key)
	return nil
}
