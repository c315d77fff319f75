package repositories

import (
	"context"
	"fmt"
	"strconv"
)

// Filter narrows a List call to records whose indexed Field equals Value.
// A zero Filter matches every record. Value is a string, a bool or nil;
// nil matches records where the field is absent or null.
type Filter struct {
	Field string
	Value any
}

// Where builds an equality filter on an indexed field
func Where(field string, value any) Filter {
	return Filter{Field: field, Value: value}
}

// IsZero reports whether the filter matches everything
func (f Filter) IsZero() bool {
	return f.Field == ""
}

// Validate checks the filter targets an indexed field with a supported value type
func (f Filter) Validate(c Collection) error {
	if f.IsZero() {
		return nil
	}
	if !IsIndexed(c, f.Field) {
		return fmt.Errorf("field %q is not indexed on %s", f.Field, c)
	}
	switch f.Value.(type) {
	case nil, string, bool:
		return nil
	default:
		return fmt.Errorf("unsupported filter value type %T", f.Value)
	}
}

// TextValue renders the filter value the way JSON text extraction sees it.
// ok is false for a nil value.
func (f Filter) TextValue() (text string, ok bool) {
	switch v := f.Value.(type) {
	case string:
		return v, true
	case bool:
		return strconv.FormatBool(v), true
	default:
		return "", false
	}
}

// Driver is the persistence medium behind the store. Each call is atomic for
// the single record it touches; documents are opaque JSON.
type Driver interface {
	// Get returns the document with the given id. found is false when the
	// record does not exist; that is not an error.
	Get(ctx context.Context, c Collection, id string) (doc []byte, found bool, err error)

	// List returns matching documents in insertion order
	List(ctx context.Context, c Collection, f Filter) ([][]byte, error)

	// Put inserts or replaces the document. Replacing keeps the record's
	// original insertion position.
	Put(ctx context.Context, c Collection, id string, doc []byte) error

	// Delete removes the record. Deleting a missing id is a no-op.
	Delete(ctx context.Context, c Collection, id string) error

	// Close releases the medium
	Close() error
}
