package live

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"chatterhub/internal/domain/models"
	"chatterhub/internal/domain/repositories"
	"chatterhub/internal/repository/memory"
	"chatterhub/internal/store"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func newTestStore() *store.Store {
	return store.New(memory.NewDriver(), slog.New(slog.NewTextHandler(io.Discard, nil)))
}

// newManualEngine never ticks on its own; tests drive it with Flush
func newManualEngine(t *testing.T, s *store.Store) *Engine {
	t.Helper()
	e := NewEngine(s, WithTick(time.Hour), WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))))
	t.Cleanup(e.Close)
	return e
}

func promptTitles(ctx context.Context, s *store.Store) ([]string, error) {
	prompts, err := store.All[models.Prompt](ctx, s, repositories.Prompts)
	if err != nil {
		return nil, err
	}
	titles := make([]string, 0, len(prompts))
	for _, p := range prompts {
		titles = append(titles, p.Title)
	}
	return titles, nil
}

func putPrompt(t *testing.T, s *store.Store, id, title string) {
	t.Helper()
	require.NoError(t, store.Put(context.Background(), s, repositories.Prompts, models.Prompt{ID: id, Title: title}))
}

func receive[T any](t *testing.T, sub *Subscription[T]) T {
	t.Helper()
	select {
	case v := <-sub.Updates():
		return v
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for delivery")
	}
	var zero T
	return zero
}

func assertNoDelivery[T any](t *testing.T, sub *Subscription[T]) {
	t.Helper()
	select {
	case v, ok := <-sub.Updates():
		if ok {
			t.Fatalf("unexpected delivery: %v", v)
		}
	default:
	}
}

func TestSubscribe_DeliversFirstResultImmediately(t *testing.T) {
	ctx := context.Background()
	s := newTestStore()
	putPrompt(t, s, "p1", "first")
	e := newManualEngine(t, s)

	sub, err := Subscribe(ctx, e, "titles", promptTitles)
	require.NoError(t, err)
	defer sub.Close()

	assert.Equal(t, []string{"first"}, receive(t, sub))
	assert.Equal(t, []string{"first"}, sub.Current())
	assert.Equal(t, "titles", sub.Name())
}

func TestSubscribe_FirstEvaluationError(t *testing.T) {
	e := newManualEngine(t, newTestStore())
	boom := errors.New("boom")

	_, err := Subscribe(context.Background(), e, "broken", func(context.Context, *store.Store) (int, error) {
		return 0, boom
	})
	require.ErrorIs(t, err, boom)
	assert.Equal(t, 0, e.Stats().Deliveries)
}

func TestEngine_RedeliversOnceAfterInsert(t *testing.T) {
	ctx := context.Background()
	s := newTestStore()
	e := newManualEngine(t, s)

	sub, err := Subscribe(ctx, e, "titles", promptTitles)
	require.NoError(t, err)
	defer sub.Close()
	assert.Empty(t, receive(t, sub))

	putPrompt(t, s, "p1", "hello")
	require.NoError(t, e.Flush(ctx))

	assert.Equal(t, []string{"hello"}, receive(t, sub))
	assertNoDelivery(t, sub)

	// A second flush with nothing pending delivers nothing
	require.NoError(t, e.Flush(ctx))
	assertNoDelivery(t, sub)
}

func TestEngine_CoalescesWritesWithinTick(t *testing.T) {
	ctx := context.Background()
	s := newTestStore()
	e := newManualEngine(t, s)

	var evaluations atomic.Int32
	query := func(ctx context.Context, s *store.Store) ([]string, error) {
		evaluations.Add(1)
		return promptTitles(ctx, s)
	}

	sub, err := Subscribe(ctx, e, "titles", query)
	require.NoError(t, err)
	defer sub.Close()
	receive(t, sub)

	putPrompt(t, s, "p1", "a")
	putPrompt(t, s, "p2", "b")
	putPrompt(t, s, "p1", "a2")
	require.NoError(t, e.Flush(ctx))

	assert.Equal(t, []string{"a2", "b"}, receive(t, sub), "delivers the post-burst state")
	assert.Equal(t, int32(2), evaluations.Load(), "one at subscribe, one for the burst")
}

func TestEngine_SuppressesEqualResults(t *testing.T) {
	ctx := context.Background()
	s := newTestStore()
	putPrompt(t, s, "p1", "stable")
	e := newManualEngine(t, s)

	sub, err := Subscribe(ctx, e, "titles", promptTitles)
	require.NoError(t, err)
	defer sub.Close()
	receive(t, sub)

	// Writes to another collection re-run the query but the result is unchanged
	require.NoError(t, store.Put(ctx, s, repositories.Folders, models.Folder{ID: "f1", Name: "x"}))
	require.NoError(t, e.Flush(ctx))

	assertNoDelivery(t, sub)
	stats := e.Stats()
	assert.Equal(t, 1, stats.Suppressed)
	assert.Equal(t, 1, stats.Deliveries)
}

func TestEngine_EmptyAndNilResultsAreEqual(t *testing.T) {
	ctx := context.Background()
	s := newTestStore()
	e := newManualEngine(t, s)

	var calls atomic.Int32
	sub, err := Subscribe(ctx, e, "flip", func(context.Context, *store.Store) ([]string, error) {
		if calls.Add(1) == 1 {
			return nil, nil
		}
		return []string{}, nil
	})
	require.NoError(t, err)
	defer sub.Close()
	receive(t, sub)

	putPrompt(t, s, "p1", "x")
	require.NoError(t, e.Flush(ctx))
	assertNoDelivery(t, sub)
}

func TestEngine_WatchingSkipsUnrelatedCollections(t *testing.T) {
	ctx := context.Background()
	s := newTestStore()
	e := newManualEngine(t, s)

	var evaluations atomic.Int32
	query := func(ctx context.Context, s *store.Store) ([]string, error) {
		evaluations.Add(1)
		return promptTitles(ctx, s)
	}

	sub, err := Subscribe(ctx, e, "titles", query, Watching(repositories.Prompts))
	require.NoError(t, err)
	defer sub.Close()
	receive(t, sub)

	require.NoError(t, store.Put(ctx, s, repositories.Messages, models.Message{ID: "m1"}))
	require.NoError(t, e.Flush(ctx))
	assert.Equal(t, int32(1), evaluations.Load())

	putPrompt(t, s, "p1", "watched")
	require.NoError(t, e.Flush(ctx))
	assert.Equal(t, int32(2), evaluations.Load())
	assert.Equal(t, []string{"watched"}, receive(t, sub))
}

func TestEngine_InvalidateWithoutWrite(t *testing.T) {
	ctx := context.Background()
	s := newTestStore()
	e := newManualEngine(t, s)

	var evaluations atomic.Int32
	sub, err := Subscribe(ctx, e, "count", func(context.Context, *store.Store) (int32, error) {
		return evaluations.Add(1), nil
	}, Watching(repositories.Prompts))
	require.NoError(t, err)
	defer sub.Close()
	assert.Equal(t, int32(1), receive(t, sub))

	e.Invalidate(repositories.Folders)
	require.NoError(t, e.Flush(ctx))
	assertNoDelivery(t, sub)

	// No arguments invalidates everything, including watched subscriptions
	e.Invalidate()
	require.NoError(t, e.Flush(ctx))
	assert.Equal(t, int32(2), receive(t, sub))
}

func TestEngine_QueryErrorKeepsPreviousResult(t *testing.T) {
	ctx := context.Background()
	s := newTestStore()
	e := newManualEngine(t, s)

	var fail atomic.Bool
	sub, err := Subscribe(ctx, e, "titles", func(ctx context.Context, s *store.Store) ([]string, error) {
		if fail.Load() {
			return nil, errors.New("transient")
		}
		return promptTitles(ctx, s)
	})
	require.NoError(t, err)
	defer sub.Close()
	receive(t, sub)

	fail.Store(true)
	putPrompt(t, s, "p1", "x")
	require.NoError(t, e.Flush(ctx))
	assertNoDelivery(t, sub)
	assert.Equal(t, 1, e.Stats().Errors)
	assert.Empty(t, sub.Current())

	fail.Store(false)
	putPrompt(t, s, "p2", "y")
	require.NoError(t, e.Flush(ctx))
	assert.Equal(t, []string{"x", "y"}, receive(t, sub))
}

func TestEngine_TickRedeliversWithoutFlush(t *testing.T) {
	ctx := context.Background()
	s := newTestStore()
	e := NewEngine(s, WithTick(5*time.Millisecond), WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))))
	defer e.Close()

	sub, err := Subscribe(ctx, e, "titles", promptTitles)
	require.NoError(t, err)
	defer sub.Close()
	receive(t, sub)

	putPrompt(t, s, "p1", "ticked")
	assert.Equal(t, []string{"ticked"}, receive(t, sub))
}

func TestSubscription_CloseStopsRedelivery(t *testing.T) {
	ctx := context.Background()
	s := newTestStore()
	e := newManualEngine(t, s)

	var evaluations atomic.Int32
	sub, err := Subscribe(ctx, e, "titles", func(ctx context.Context, s *store.Store) ([]string, error) {
		evaluations.Add(1)
		return promptTitles(ctx, s)
	})
	require.NoError(t, err)
	receive(t, sub)

	sub.Close()
	sub.Close()

	_, ok := <-sub.Updates()
	assert.False(t, ok, "updates channel is closed")

	putPrompt(t, s, "p1", "after close")
	require.NoError(t, e.Flush(ctx))
	assert.Equal(t, int32(1), evaluations.Load())

	// Closing a subscription never touches the store
	titles, err := promptTitles(ctx, s)
	require.NoError(t, err)
	assert.Equal(t, []string{"after close"}, titles)
}

func TestEngine_CloseShutsSubscriptions(t *testing.T) {
	ctx := context.Background()
	s := newTestStore()
	e := NewEngine(s, WithTick(time.Hour), WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))))

	sub, err := Subscribe(ctx, e, "titles", promptTitles)
	require.NoError(t, err)
	receive(t, sub)

	e.Close()
	e.Close()

	_, ok := <-sub.Updates()
	assert.False(t, ok)
	sub.Close()

	assert.ErrorIs(t, e.Flush(ctx), ErrClosed)
	_, err = Subscribe(ctx, e, "late", promptTitles)
	assert.ErrorIs(t, err, ErrClosed)

	// Writes after close are not observed by the engine
	putPrompt(t, s, "p1", "x")
}

func TestEngine_SlowReaderSeesLatest(t *testing.T) {
	ctx := context.Background()
	s := newTestStore()
	e := newManualEngine(t, s)

	sub, err := Subscribe(ctx, e, "titles", promptTitles)
	require.NoError(t, err)
	defer sub.Close()
	// The first result is left unread

	putPrompt(t, s, "p1", "a")
	require.NoError(t, e.Flush(ctx))
	putPrompt(t, s, "p2", "b")
	require.NoError(t, e.Flush(ctx))

	assert.Equal(t, []string{"a", "b"}, receive(t, sub))
	assertNoDelivery(t, sub)
}

func TestWithTick_IgnoresNonPositive(t *testing.T) {
	tests := []struct {
		name string
		tick time.Duration
		want time.Duration
	}{
		{"zero", 0, DefaultTick},
		{"negative", -time.Second, DefaultTick},
		{"positive", 5 * time.Millisecond, 5 * time.Millisecond},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := NewEngine(newTestStore(), WithTick(tt.tick))
			defer e.Close()
			assert.Equal(t, tt.want, e.tick)
		})
	}
}
