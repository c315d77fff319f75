// Package entity implements create, update, delete and toggle operations for
// every stored entity kind. Missing ids are never an error for writes.
package entity

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"chatterhub/internal/domain"
	"chatterhub/internal/store"
)

// Option customizes the clock and id source of a service
type Option func(*base)

// WithClock replaces time.Now
func WithClock(now func() time.Time) Option {
	return func(b *base) { b.now = now }
}

// WithIDGenerator replaces the random UUID generator
func WithIDGenerator(newID func() string) Option {
	return func(b *base) { b.newID = newID }
}

type base struct {
	store  *store.Store
	logger *slog.Logger
	now    func() time.Time
	newID  func() string
}

func newBase(s *store.Store, logger *slog.Logger, opts []Option) base {
	b := base{
		store:  s,
		logger: logger,
		now:    time.Now,
		newID:  func() string { return uuid.New().String() },
	}
	for _, opt := range opts {
		opt(&b)
	}
	return b
}

// timestamp returns the current time without a monotonic reading so that it
// survives a JSON round trip unchanged
func (b *base) timestamp() time.Time {
	return b.now().UTC()
}

// invalid wraps a validation failure so that errors.Is(err, domain.ErrValidation) holds
func invalid(err error) error {
	return fmt.Errorf("%w: %v", domain.ErrValidation, err)
}

// normalizeRef turns an empty reference into nil
func normalizeRef(ref *string) *string {
	if ref == nil {
		return nil
	}
	v := strings.TrimSpace(*ref)
	if v == "" {
		return nil
	}
	return &v
}
