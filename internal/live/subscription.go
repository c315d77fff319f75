package live

import (
	"context"
	"fmt"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"chatterhub/internal/domain/repositories"
	"chatterhub/internal/store"
)

// QueryFunc is a side-effect-free read against the store
type QueryFunc[T any] func(ctx context.Context, s *store.Store) (T, error)

// SubscribeOption configures a subscription
type SubscribeOption func(*subscribeOptions)

type subscribeOptions struct {
	watches []repositories.Collection
}

// Watching declares the collections the query reads. The subscription is
// then skipped on ticks where none of them changed. Without it every write
// re-evaluates the query.
func Watching(collections ...repositories.Collection) SubscribeOption {
	return func(o *subscribeOptions) {
		o.watches = append(o.watches, collections...)
	}
}

// equalOpts treats nil and empty slices/maps as the same result
var equalOpts = []cmp.Option{cmpopts.EquateEmpty()}

// Subscription is a standing query. Results arrive on Updates(); a slow
// reader only ever sees the latest result.
type Subscription[T any] struct {
	id      uint64
	name    string
	engine  *Engine
	query   QueryFunc[T]
	watches map[repositories.Collection]struct{}

	updates chan T
	last    T
	closed  bool
}

// Subscribe evaluates query once, delivers the result and keeps it live
// until Close. An error from the first evaluation is returned.
func Subscribe[T any](ctx context.Context, e *Engine, name string, query QueryFunc[T], opts ...SubscribeOption) (*Subscription[T], error) {
	var o subscribeOptions
	for _, opt := range opts {
		opt(&o)
	}

	sub := &Subscription[T]{
		name:    name,
		engine:  e,
		query:   query,
		updates: make(chan T, 1),
	}
	if len(o.watches) > 0 {
		sub.watches = make(map[repositories.Collection]struct{}, len(o.watches))
		for _, c := range o.watches {
			sub.watches[c] = struct{}{}
		}
	}

	// Hold the engine lock so the first delivery cannot interleave with a sweep
	e.mu.Lock()
	defer e.mu.Unlock()

	v, err := query(ctx, e.store)
	if err != nil {
		return nil, fmt.Errorf("subscribe %s: %w", name, err)
	}

	id, err := e.register(sub)
	if err != nil {
		return nil, err
	}
	sub.id = id
	sub.last = v
	sub.updates <- v
	e.stats.Evaluations++
	e.stats.Deliveries++

	e.logger.Debug("live query subscribed", "subscription", name, "id", id)
	return sub, nil
}

// Updates delivers the first result and every changed result after it.
// The channel is closed by Close.
func (s *Subscription[T]) Updates() <-chan T {
	return s.updates
}

// Current returns the most recently delivered result
func (s *Subscription[T]) Current() T {
	s.engine.mu.Lock()
	defer s.engine.mu.Unlock()
	return s.last
}

// Name returns the subscription name used in logs
func (s *Subscription[T]) Name() string {
	return s.name
}

// Close stops future redelivery. Safe to call more than once.
func (s *Subscription[T]) Close() {
	s.engine.mu.Lock()
	defer s.engine.mu.Unlock()

	if s.closed {
		return
	}
	s.engine.unregister(s.id)
	s.closed = true
	close(s.updates)
	s.engine.logger.Debug("live query closed", "subscription", s.name, "id", s.id)
}

func (s *Subscription[T]) interested(changed map[repositories.Collection]struct{}, all bool) bool {
	if all || s.watches == nil {
		return true
	}
	for c := range changed {
		if _, ok := s.watches[c]; ok {
			return true
		}
	}
	return false
}

// evaluate runs on the dispatcher with engine.mu held
func (s *Subscription[T]) evaluate(ctx context.Context) {
	if s.closed {
		return
	}

	e := s.engine
	e.stats.Evaluations++

	v, err := s.query(ctx, e.store)
	if err != nil {
		// Keep the previous result; the next write retries
		e.stats.Errors++
		e.logger.Warn("live query failed", "subscription", s.name, "error", err)
		return
	}

	if cmp.Equal(s.last, v, equalOpts...) {
		e.stats.Suppressed++
		return
	}

	s.last = v
	s.deliver(v)
	e.stats.Deliveries++
}

// deliver replaces an unread result instead of blocking the dispatcher
func (s *Subscription[T]) deliver(v T) {
	select {
	case s.updates <- v:
		return
	default:
	}
	select {
	case <-s.updates:
	default:
	}
	select {
	case s.updates <- v:
	default:
	}
}

// shutdown closes the subscription after the engine stopped
func (s *Subscription[T]) shutdown() {
	s.engine.mu.Lock()
	defer s.engine.mu.Unlock()

	if s.closed {
		return
	}
	s.closed = true
	close(s.updates)
}
