// Package live re-runs read queries against the store after writes and
// redelivers their results when they change.
//
// All evaluation happens on one dispatcher goroutine. Writes only mark
// collections dirty and wake the dispatcher; it waits one tick so that a burst
// of writes produces a single re-evaluation, then runs every interested
// subscription against the post-burst state.
package live

import (
	"context"
	"errors"
	"log/slog"
	"sort"
	"sync"
	"time"

	"chatterhub/internal/domain/repositories"
	"chatterhub/internal/store"
)

// ErrClosed is returned when using an engine after Close
var ErrClosed = errors.New("live engine closed")

// DefaultTick is how long the dispatcher waits after the first write of a burst
const DefaultTick = 16 * time.Millisecond

// Option configures an Engine
type Option func(*Engine)

// WithTick sets the coalescing window. Non-positive values keep DefaultTick.
func WithTick(d time.Duration) Option {
	return func(e *Engine) {
		if d > 0 {
			e.tick = d
		}
	}
}

// WithLogger sets the engine logger
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) { e.logger = logger }
}

// Stats counts engine activity
type Stats struct {
	Ticks       int
	Evaluations int
	Deliveries  int
	Suppressed  int // evaluations whose result equalled the previous delivery
	Errors      int
}

type evaluator interface {
	interested(changed map[repositories.Collection]struct{}, all bool) bool
	evaluate(ctx context.Context)
	shutdown()
}

// Engine owns the live subscriptions of one store
type Engine struct {
	store  *store.Store
	logger *slog.Logger
	tick   time.Duration

	// mu guards subs and stats; the dispatcher holds it for a whole sweep
	mu     sync.Mutex
	subs   map[uint64]evaluator
	nextID uint64
	stats  Stats
	closed bool

	dirtyMu  sync.Mutex
	dirty    map[repositories.Collection]struct{}
	allDirty bool

	wake       chan struct{}
	flushReq   chan chan struct{}
	stopCh     chan struct{}
	doneCh     chan struct{}
	removeHook func()
	stopOnce   sync.Once
}

// NewEngine creates an engine bound to s and starts its dispatcher
func NewEngine(s *store.Store, opts ...Option) *Engine {
	e := &Engine{
		store:    s,
		logger:   slog.Default(),
		tick:     DefaultTick,
		subs:     make(map[uint64]evaluator),
		dirty:    make(map[repositories.Collection]struct{}),
		wake:     make(chan struct{}, 1),
		flushReq: make(chan chan struct{}),
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}
	for _, opt := range opts {
		opt(e)
	}

	e.removeHook = s.OnWrite(func(c repositories.Collection) {
		e.markDirty(c)
	})

	go e.run()
	return e
}

// Store returns the store the engine watches
func (e *Engine) Store() *store.Store {
	return e.store
}

// Invalidate marks collections as changed without a write through the store,
// e.g. when another process modified the backing file. No arguments means all.
func (e *Engine) Invalidate(collections ...repositories.Collection) {
	if len(collections) == 0 {
		e.dirtyMu.Lock()
		e.allDirty = true
		e.dirtyMu.Unlock()
		e.signal()
		return
	}
	for _, c := range collections {
		e.markDirty(c)
	}
}

// Flush runs the pending tick now and returns once every subscription has
// seen all writes made before the call.
func (e *Engine) Flush(ctx context.Context) error {
	reply := make(chan struct{})
	select {
	case e.flushReq <- reply:
	case <-e.doneCh:
		return ErrClosed
	case <-ctx.Done():
		return ctx.Err()
	}

	select {
	case <-reply:
		return nil
	case <-e.doneCh:
		return ErrClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Stats returns a snapshot of the engine counters
func (e *Engine) Stats() Stats {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.stats
}

// Close stops the dispatcher and closes every subscription. The store is untouched.
func (e *Engine) Close() {
	e.stopOnce.Do(func() {
		e.removeHook()
		close(e.stopCh)
		<-e.doneCh

		e.mu.Lock()
		e.closed = true
		subs := e.subs
		e.subs = make(map[uint64]evaluator)
		e.mu.Unlock()

		for _, sub := range subs {
			sub.shutdown()
		}
	})
}

func (e *Engine) markDirty(c repositories.Collection) {
	e.dirtyMu.Lock()
	e.dirty[c] = struct{}{}
	e.dirtyMu.Unlock()
	e.signal()
}

func (e *Engine) signal() {
	select {
	case e.wake <- struct{}{}:
	default:
		// Already woken; this write joins the pending tick
	}
}

func (e *Engine) takeDirty() (map[repositories.Collection]struct{}, bool) {
	e.dirtyMu.Lock()
	defer e.dirtyMu.Unlock()

	changed, all := e.dirty, e.allDirty
	e.dirty = make(map[repositories.Collection]struct{})
	e.allDirty = false
	return changed, all
}

func (e *Engine) run() {
	defer close(e.doneCh)

	var timer *time.Timer
	var timerC <-chan time.Time

	stopTimer := func() {
		if timer != nil {
			timer.Stop()
		}
		timerC = nil
	}

	for {
		select {
		case <-e.stopCh:
			stopTimer()
			return

		case <-e.wake:
			if timerC == nil {
				timer = time.NewTimer(e.tick)
				timerC = timer.C
			}

		case <-timerC:
			timerC = nil
			e.sweep()

		case reply := <-e.flushReq:
			stopTimer()
			// Drain a wake that raced with the flush; its writes are in the dirty set
			select {
			case <-e.wake:
			default:
			}
			e.sweep()
			close(reply)
		}
	}
}

// sweep re-evaluates every subscription interested in the dirty collections
func (e *Engine) sweep() {
	changed, all := e.takeDirty()
	if !all && len(changed) == 0 {
		return
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	e.stats.Ticks++

	ids := make([]uint64, 0, len(e.subs))
	for id := range e.subs {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	ctx := context.Background()
	for _, id := range ids {
		sub := e.subs[id]
		if !sub.interested(changed, all) {
			continue
		}
		sub.evaluate(ctx)
	}
}

func (e *Engine) register(sub evaluator) (uint64, error) {
	if e.closed {
		return 0, ErrClosed
	}
	e.nextID++
	e.subs[e.nextID] = sub
	return e.nextID, nil
}

func (e *Engine) unregister(id uint64) {
	delete(e.subs, id)
}
