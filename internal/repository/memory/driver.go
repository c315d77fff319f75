package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"

	"chatterhub/internal/domain/repositories"
)

type entry struct {
	seq uint64
	doc []byte
}

// Driver is a process-local store used for tests and ephemeral sessions
type Driver struct {
	mu      sync.RWMutex
	tables  map[repositories.Collection]map[string]entry
	nextSeq uint64
}

// NewDriver creates an empty in-memory driver
func NewDriver() *Driver {
	return &Driver{
		tables: make(map[repositories.Collection]map[string]entry),
	}
}

// Get retrieves a document by id
func (d *Driver) Get(ctx context.Context, c repositories.Collection, id string) ([]byte, bool, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	e, ok := d.tables[c][id]
	if !ok {
		return nil, false, nil
	}
	return clone(e.doc), true, nil
}

// List returns documents matching the filter in insertion order
func (d *Driver) List(ctx context.Context, c repositories.Collection, f repositories.Filter) ([][]byte, error) {
	if err := f.Validate(c); err != nil {
		return nil, err
	}

	d.mu.RLock()
	entries := make([]entry, 0, len(d.tables[c]))
	for _, e := range d.tables[c] {
		entries = append(entries, e)
	}
	d.mu.RUnlock()

	sort.Slice(entries, func(i, j int) bool { return entries[i].seq < entries[j].seq })

	docs := make([][]byte, 0, len(entries))
	for _, e := range entries {
		ok, err := matches(e.doc, f)
		if err != nil {
			return nil, fmt.Errorf("list %s: %w", c, err)
		}
		if ok {
			docs = append(docs, clone(e.doc))
		}
	}
	return docs, nil
}

// Put inserts or replaces a document, keeping the original seq on replace
func (d *Driver) Put(ctx context.Context, c repositories.Collection, id string, doc []byte) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	table, ok := d.tables[c]
	if !ok {
		table = make(map[string]entry)
		d.tables[c] = table
	}

	e, exists := table[id]
	if !exists {
		d.nextSeq++
		e.seq = d.nextSeq
	}
	e.doc = clone(doc)
	table[id] = e
	return nil
}

// Delete removes a document; a missing id is a no-op
func (d *Driver) Delete(ctx context.Context, c repositories.Collection, id string) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	delete(d.tables[c], id)
	return nil
}

// Close is a no-op
func (d *Driver) Close() error {
	return nil
}

func matches(doc []byte, f repositories.Filter) (bool, error) {
	if f.IsZero() {
		return true, nil
	}

	var fields map[string]any
	if err := json.Unmarshal(doc, &fields); err != nil {
		return false, err
	}

	got, present := fields[f.Field]
	if f.Value == nil {
		return !present || got == nil, nil
	}
	return got == f.Value, nil
}

func clone(b []byte) []byte {
	return append([]byte(nil), b...)
}
