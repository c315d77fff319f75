// Package store is the typed handle over a persistence driver. Every write
// goes through it so that write hooks (the live query engine) see it.
package store

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"

	"chatterhub/internal/domain/repositories"
)

// Keyed is implemented by every stored entity
type Keyed interface {
	Key() string
}

// WriteHook is called after a successful put or delete
type WriteHook func(c repositories.Collection)

// Store wraps a Driver with JSON encoding and write notification
type Store struct {
	driver repositories.Driver
	logger *slog.Logger

	mu     sync.RWMutex
	hooks  map[int]WriteHook
	nextID int
}

// New creates a store over the given driver
func New(driver repositories.Driver, logger *slog.Logger) *Store {
	return &Store{
		driver: driver,
		logger: logger,
		hooks:  make(map[int]WriteHook),
	}
}

// OnWrite registers a hook fired after every write. The returned func removes it.
func (s *Store) OnWrite(hook WriteHook) (remove func()) {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.hooks[id] = hook
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.hooks, id)
		s.mu.Unlock()
	}
}

func (s *Store) notify(c repositories.Collection) {
	s.mu.RLock()
	hooks := make([]WriteHook, 0, len(s.hooks))
	for _, h := range s.hooks {
		hooks = append(hooks, h)
	}
	s.mu.RUnlock()

	for _, h := range hooks {
		h(c)
	}
}

// Delete removes a record. A missing id is a no-op, but hooks still fire.
func (s *Store) Delete(ctx context.Context, c repositories.Collection, id string) error {
	if err := s.driver.Delete(ctx, c, id); err != nil {
		return err
	}
	s.notify(c)
	return nil
}

// Clear deletes every record of a collection and returns how many were removed
func (s *Store) Clear(ctx context.Context, c repositories.Collection) (int, error) {
	docs, err := s.driver.List(ctx, c, repositories.Filter{})
	if err != nil {
		return 0, err
	}

	n := 0
	for _, doc := range docs {
		var rec struct {
			ID string `json:"id"`
		}
		if err := json.Unmarshal(doc, &rec); err != nil || rec.ID == "" {
			s.logger.Warn("skipping record without id", "collection", c)
			continue
		}
		if err := s.driver.Delete(ctx, c, rec.ID); err != nil {
			return n, err
		}
		n++
	}
	if n > 0 {
		s.notify(c)
	}
	return n, nil
}

// Close closes the underlying driver
func (s *Store) Close() error {
	return s.driver.Close()
}

// Get loads one record. It returns nil, nil when the id does not exist.
func Get[T any](ctx context.Context, s *Store, c repositories.Collection, id string) (*T, error) {
	doc, found, err := s.driver.Get(ctx, c, id)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, nil
	}

	var v T
	if err := json.Unmarshal(doc, &v); err != nil {
		return nil, fmt.Errorf("decode %s %s: %w", c, id, err)
	}
	return &v, nil
}

// Query loads the records matching f in insertion order. keep, when non-nil,
// is an additional predicate applied after decoding.
func Query[T any](ctx context.Context, s *Store, c repositories.Collection, f repositories.Filter, keep func(*T) bool) ([]T, error) {
	docs, err := s.driver.List(ctx, c, f)
	if err != nil {
		return nil, err
	}

	out := make([]T, 0, len(docs))
	for _, doc := range docs {
		var v T
		if err := json.Unmarshal(doc, &v); err != nil {
			// A single corrupt record must not hide the rest of the collection
			s.logger.Warn("skipping undecodable record", "collection", c, "error", err)
			continue
		}
		if keep != nil && !keep(&v) {
			continue
		}
		out = append(out, v)
	}
	return out, nil
}

// All loads every record of a collection in insertion order
func All[T any](ctx context.Context, s *Store, c repositories.Collection) ([]T, error) {
	return Query[T](ctx, s, c, repositories.Filter{}, nil)
}

// Put writes a record, inserting or replacing by its key
func Put[T Keyed](ctx context.Context, s *Store, c repositories.Collection, v T) error {
	id := v.Key()
	if id == "" {
		return fmt.Errorf("put %s: empty id", c)
	}

	doc, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s %s: %w", c, id, err)
	}
	if err := s.driver.Put(ctx, c, id, doc); err != nil {
		return err
	}
	s.notify(c)
	return nil
}
