package featuresync

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/danielhkuo/featurevotes/models"
)

const (
	waitFor = 2 * time.Second
	tick    = 5 * time.Millisecond
)

type fakeAPI struct {
	mu          sync.Mutex
	listCtxs    []context.Context
	upvoteCalls []int64

	// listFn receives the zero-based call number.
	listFn   func(ctx context.Context, call int) ([]models.Feature, error)
	upvoteFn func(ctx context.Context, id int64) (models.Feature, error)
}

func (f *fakeAPI) ListFeatures(ctx context.Context) ([]models.Feature, error) {
	f.mu.Lock()
	call := len(f.listCtxs)
	f.listCtxs = append(f.listCtxs, ctx)
	fn := f.listFn
	f.mu.Unlock()

	if fn == nil {
		return []models.Feature{}, nil
	}
	return fn(ctx, call)
}

func (f *fakeAPI) UpvoteFeature(ctx context.Context, id int64) (models.Feature, error) {
	f.mu.Lock()
	f.upvoteCalls = append(f.upvoteCalls, id)
	fn := f.upvoteFn
	f.mu.Unlock()

	if fn == nil {
		return models.Feature{ID: id}, nil
	}
	return fn(ctx, id)
}

func (f *fakeAPI) listCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.listCtxs)
}

func (f *fakeAPI) listCtx(i int) context.Context {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.listCtxs[i]
}

func (f *fakeAPI) upvoteCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.upvoteCalls)
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestController(t *testing.T, api API, opts ...Option) *Controller {
	t.Helper()
	opts = append([]Option{WithInterval(0), WithLogger(quietLogger())}, opts...)
	c := NewController(api, opts...)
	c.Start()
	t.Cleanup(c.Stop)
	return c
}

func staticList(features ...models.Feature) func(context.Context, int) ([]models.Feature, error) {
	return func(context.Context, int) ([]models.Feature, error) {
		out := make([]models.Feature, len(features))
		copy(out, features)
		return out, nil
	}
}

func waitLoaded(t *testing.T, c *Controller) State {
	t.Helper()
	var s State
	require.Eventually(t, func() bool {
		s = c.Snapshot()
		return !s.Loading
	}, waitFor, tick)
	return s
}

func TestInitialLoad(t *testing.T) {
	synced := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	api := &fakeAPI{listFn: staticList(sample()...)}
	c := NewController(api, WithInterval(0), WithLogger(quietLogger()), WithClock(func() time.Time { return synced }))

	before := c.Snapshot()
	assert.True(t, before.Loading)
	assert.Equal(t, models.SortTop, before.SortMode)

	c.Start()
	defer c.Stop()

	s := waitLoaded(t, c)
	assert.Len(t, s.Features, 5)
	assert.Empty(t, s.LastError)
	assert.Equal(t, synced, s.LastSynced)
	assert.Equal(t, []int64{2, 5, 3, 1, 4}, ids(s.Sorted()))
}

func TestInitialLoadFailureSetsError(t *testing.T) {
	api := &fakeAPI{listFn: func(context.Context, int) ([]models.Feature, error) {
		return nil, errors.New("Failed to fetch features")
	}}
	c := newTestController(t, api)

	s := waitLoaded(t, c)
	assert.Equal(t, "Failed to fetch features", s.LastError)
	assert.Empty(t, s.Features)

	c.DismissError()
	require.Eventually(t, func() bool { return c.Snapshot().LastError == "" }, waitFor, tick)
}

func TestSuccessfulRefreshClearsError(t *testing.T) {
	api := &fakeAPI{listFn: func(_ context.Context, call int) ([]models.Feature, error) {
		if call == 0 {
			return nil, errors.New("boom")
		}
		return sample(), nil
	}}
	c := newTestController(t, api)
	require.Equal(t, "boom", waitLoaded(t, c).LastError)

	c.Refresh()
	require.Eventually(t, func() bool {
		s := c.Snapshot()
		return s.LastError == "" && len(s.Features) == 5
	}, waitFor, tick)
}

func TestSupersededResponseIsDiscarded(t *testing.T) {
	release := make(chan struct{})
	stale := []models.Feature{{ID: 1, Title: "stale", Votes: 1, CreatedAt: base}}
	fresh := []models.Feature{{ID: 2, Title: "fresh", Votes: 9, CreatedAt: base}}

	api := &fakeAPI{listFn: func(_ context.Context, call int) ([]models.Feature, error) {
		if call == 0 {
			// Ignore cancellation and answer late with stale data.
			<-release
			return stale, nil
		}
		return fresh, nil
	}}
	c := newTestController(t, api)
	require.Eventually(t, func() bool { return api.listCount() == 1 }, waitFor, tick)

	c.Trigger(TriggerFocus)
	require.Eventually(t, func() bool {
		s := c.Snapshot()
		return len(s.Features) == 1 && s.Features[0].Title == "fresh"
	}, waitFor, tick)

	assert.Error(t, api.listCtx(0).Err(), "first request should be canceled")

	close(release)
	assert.Never(t, func() bool {
		s := c.Snapshot()
		return len(s.Features) == 1 && s.Features[0].Title == "stale"
	}, 100*time.Millisecond, tick)
}

func TestCanceledRequestDoesNotSetError(t *testing.T) {
	api := &fakeAPI{listFn: func(ctx context.Context, call int) ([]models.Feature, error) {
		if call == 0 {
			<-ctx.Done()
			return nil, ctx.Err()
		}
		return sample(), nil
	}}
	c := newTestController(t, api)
	require.Eventually(t, func() bool { return api.listCount() == 1 }, waitFor, tick)

	c.Trigger(TriggerVisible)
	s := waitLoaded(t, c)
	assert.Empty(t, s.LastError)
	assert.Len(t, s.Features, 5)
}

func TestOptimisticUpvoteRevertsOnFailure(t *testing.T) {
	release := make(chan struct{})
	api := &fakeAPI{
		listFn: staticList(models.Feature{ID: 1, Title: "Dark mode", Votes: 3, CreatedAt: base}),
		upvoteFn: func(context.Context, int64) (models.Feature, error) {
			<-release
			return models.Feature{}, errors.New("Failed to upvote feature")
		},
	}
	c := newTestController(t, api)
	waitLoaded(t, c)

	c.Upvote(1)
	require.Eventually(t, func() bool {
		s := c.Snapshot()
		return s.Features[0].Votes == 4 && s.IsInFlight(1)
	}, waitFor, tick)

	// Second press while in flight is a no-op.
	c.Upvote(1)
	s := c.Snapshot()
	assert.Equal(t, 4, s.Features[0].Votes)

	close(release)
	require.Eventually(t, func() bool {
		s := c.Snapshot()
		return !s.IsInFlight(1) && s.Features[0].Votes == 3
	}, waitFor, tick)

	s = c.Snapshot()
	assert.Equal(t, "Failed to upvote feature", s.LastError)
	assert.Empty(t, s.InFlight)
	assert.Equal(t, 1, api.upvoteCount())

	// The failure revalidates but keeps the error visible.
	require.Eventually(t, func() bool { return api.listCount() == 2 }, waitFor, tick)
	assert.Never(t, func() bool { return c.Snapshot().LastError == "" }, 50*time.Millisecond, tick)
	assert.Equal(t, 3, c.Snapshot().Features[0].Votes)
}

func TestFailedUpvoteAfterRefreshKeepsServerCount(t *testing.T) {
	release := make(chan struct{})
	api := &fakeAPI{
		listFn: staticList(models.Feature{ID: 1, Title: "Dark mode", Votes: 3, CreatedAt: base}),
		upvoteFn: func(context.Context, int64) (models.Feature, error) {
			<-release
			return models.Feature{}, errors.New("Failed to upvote feature")
		},
	}
	c := newTestController(t, api)
	waitLoaded(t, c)

	c.Upvote(1)
	require.Eventually(t, func() bool { return c.Snapshot().Features[0].Votes == 4 }, waitFor, tick)

	// A poll lands while the upvote is still in flight.
	c.Trigger(TriggerInterval)
	require.Eventually(t, func() bool {
		s := c.Snapshot()
		return api.listCount() == 2 && s.Features[0].Votes == 3 && s.IsInFlight(1)
	}, waitFor, tick)

	close(release)
	require.Eventually(t, func() bool {
		s := c.Snapshot()
		return !s.IsInFlight(1) && api.listCount() == 3
	}, waitFor, tick)

	assert.Never(t, func() bool { return c.Snapshot().Features[0].Votes != 3 }, 50*time.Millisecond, tick)
	assert.Equal(t, "Failed to upvote feature", c.Snapshot().LastError)
}

func TestUpvoteSuccessRevalidates(t *testing.T) {
	var mu sync.Mutex
	votes := 0
	api := &fakeAPI{}
	api.listFn = func(context.Context, int) ([]models.Feature, error) {
		mu.Lock()
		defer mu.Unlock()
		return []models.Feature{{ID: 1, Title: "Dark mode", Votes: votes, CreatedAt: base}}, nil
	}
	api.upvoteFn = func(_ context.Context, id int64) (models.Feature, error) {
		mu.Lock()
		defer mu.Unlock()
		votes++
		return models.Feature{ID: id, Votes: votes}, nil
	}

	c := newTestController(t, api)
	waitLoaded(t, c)

	c.Upvote(1)
	require.Eventually(t, func() bool { return api.listCount() == 2 }, waitFor, tick)
	require.Eventually(t, func() bool {
		s := c.Snapshot()
		return len(s.InFlight) == 0 && s.Features[0].Votes == 1
	}, waitFor, tick)
}

func TestUpvoteUnknownIDIgnored(t *testing.T) {
	api := &fakeAPI{listFn: staticList(sample()...)}
	c := newTestController(t, api)
	waitLoaded(t, c)

	c.Upvote(999)
	s := c.Snapshot()
	assert.Empty(t, s.InFlight)
	assert.Zero(t, api.upvoteCount())
}

func TestCreatedSignalTriggersRefresh(t *testing.T) {
	sig := NewSignal()
	api := &fakeAPI{listFn: staticList(sample()...)}
	c := newTestController(t, api, WithSignal(sig))
	waitLoaded(t, c)

	sig.Notify()
	require.Eventually(t, func() bool { return api.listCount() == 2 }, waitFor, tick)

	c.Stop()
	sig.Notify()
	assert.Equal(t, 2, api.listCount(), "stopped controller must be unsubscribed")
}

func TestIntervalRevalidates(t *testing.T) {
	api := &fakeAPI{listFn: staticList(sample()...)}
	c := NewController(api, WithInterval(10*time.Millisecond), WithLogger(quietLogger()))
	c.Start()
	defer c.Stop()

	require.Eventually(t, func() bool { return api.listCount() >= 3 }, waitFor, tick)
}

func TestSortModeChanges(t *testing.T) {
	var mu sync.Mutex
	var seen []string
	api := &fakeAPI{listFn: staticList(sample()...)}
	c := newTestController(t, api, WithSortMode(models.SortNewest), WithOnChange(func(s State) {
		mu.Lock()
		seen = append(seen, s.SortMode)
		mu.Unlock()
	}))
	waitLoaded(t, c)
	assert.Equal(t, models.SortNewest, c.Snapshot().SortMode)

	c.ToggleSort()
	require.Eventually(t, func() bool { return c.Snapshot().SortMode == models.SortTop }, waitFor, tick)

	c.SetSortMode("bogus")
	c.SetSortMode(models.SortNewest)
	require.Eventually(t, func() bool { return c.Snapshot().SortMode == models.SortNewest }, waitFor, tick)

	mu.Lock()
	defer mu.Unlock()
	assert.Contains(t, seen, models.SortTop)
	assert.NotContains(t, seen, "bogus")
}

func TestStopWaitsForInFlightUpvotes(t *testing.T) {
	release := make(chan struct{})
	api := &fakeAPI{
		listFn: staticList(models.Feature{ID: 1, Votes: 0, CreatedAt: base}),
		upvoteFn: func(context.Context, int64) (models.Feature, error) {
			<-release
			return models.Feature{ID: 1, Votes: 1}, nil
		},
	}
	c := NewController(api, WithInterval(0), WithLogger(quietLogger()))
	c.Start()
	waitLoaded(t, c)

	c.Upvote(1)
	require.Eventually(t, func() bool { return api.upvoteCount() == 1 }, waitFor, tick)

	done := make(chan struct{})
	go func() {
		c.Stop()
		close(done)
	}()

	select {
	case <-done:
		t.Fatal("Stop returned before the upvote settled")
	case <-time.After(50 * time.Millisecond):
	}

	close(release)
	select {
	case <-done:
	case <-time.After(waitFor):
		t.Fatal("Stop did not return")
	}

	s := c.Snapshot()
	assert.Empty(t, s.InFlight)
	assert.Equal(t, 1, api.listCount(), "no revalidation after stop")
}

func TestMethodsAfterStopAreNoOps(t *testing.T) {
	api := &fakeAPI{listFn: staticList(sample()...)}
	c := NewController(api, WithInterval(0), WithLogger(quietLogger()))
	c.Start()
	waitLoaded(t, c)
	c.Stop()
	c.Stop()

	c.Refresh()
	c.Upvote(1)
	c.DismissError()
	assert.Len(t, c.Snapshot().Features, 5)
	assert.Zero(t, api.upvoteCount())
}

func TestTriggerString(t *testing.T) {
	assert.Equal(t, "focus", TriggerFocus.String())
	assert.Equal(t, "created", TriggerCreated.String())
	assert.Equal(t, "unknown", Trigger(42).String())
}
