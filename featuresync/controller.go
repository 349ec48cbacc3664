// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package featuresync

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/danielhkuo/featurevotes/models"
)

// DefaultInterval is how often the list is revalidated in the background.
const DefaultInterval = 3 * time.Second

// Trigger names the reason for a list revalidation.
type Trigger int

const (
	TriggerInitial Trigger = iota
	TriggerInterval
	TriggerFocus
	TriggerVisible
	TriggerCreated
	TriggerManual
	TriggerUpvote
)

func (t Trigger) String() string {
	switch t {
	case TriggerInitial:
		return "initial"
	case TriggerInterval:
		return "interval"
	case TriggerFocus:
		return "focus"
	case TriggerVisible:
		return "visible"
	case TriggerCreated:
		return "created"
	case TriggerManual:
		return "manual"
	case TriggerUpvote:
		return "upvote"
	default:
		return "unknown"
	}
}

// API is the subset of the HTTP client the controller needs.
// *client.Client satisfies it.
type API interface {
	ListFeatures(ctx context.Context) ([]models.Feature, error)
	UpvoteFeature(ctx context.Context, id int64) (models.Feature, error)
}

// State is a point-in-time copy of what the list screen shows.
type State struct {
	// Features in the order the server returned them. Use Sorted for display.
	Features   []models.Feature
	InFlight   map[int64]bool
	SortMode   string
	LastError  string
	Loading    bool
	LastSynced time.Time
}

// Sorted returns Features ordered by SortMode.
func (s State) Sorted() []models.Feature {
	return Sort(s.Features, s.SortMode)
}

// IsInFlight reports whether an upvote for id is awaiting the server.
func (s State) IsInFlight(id int64) bool {
	return s.InFlight[id]
}

func (s State) clone() State {
	out := s
	out.Features = append([]models.Feature(nil), s.Features...)
	out.InFlight = make(map[int64]bool, len(s.InFlight))
	for id := range s.InFlight {
		out.InFlight[id] = true
	}
	return out
}

type Option func(*Controller)

// WithInterval sets the background revalidation period. Zero or negative
// disables the ticker.
func WithInterval(d time.Duration) Option {
	return func(c *Controller) { c.interval = d }
}

// WithOnChange registers a callback that receives a copy of the state after
// every applied change. It runs on the controller goroutine and must not call
// back into the controller synchronously.
func WithOnChange(fn func(State)) Option {
	return func(c *Controller) { c.onChange = fn }
}

// WithSignal subscribes the controller to a "feature created" signal.
func WithSignal(s *Signal) Option {
	return func(c *Controller) { c.signal = s }
}

func WithSortMode(mode string) Option {
	return func(c *Controller) {
		if ValidSortMode(mode) {
			c.state.SortMode = mode
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(c *Controller) { c.now = now }
}

func WithLogger(l *slog.Logger) Option {
	return func(c *Controller) { c.logger = l }
}

// Controller keeps the local feature list in sync with the API. All state is
// owned by a single goroutine started by Start; the exported methods post
// work to it and never block on the network.
type Controller struct {
	api      API
	interval time.Duration
	onChange func(State)
	signal   *Signal
	now      func() time.Time
	logger   *slog.Logger

	actions  chan func()
	quit     chan struct{}
	stopped  chan struct{}
	started  atomic.Bool
	stopOnce sync.Once

	// Owned by the loop goroutine once started.
	state          State
	generation     uint64
	cancelList     context.CancelFunc
	pendingUpvotes int
	stopping       bool
	unsubscribe    func()

	// optimistic marks ids whose local +1 is still on top of the last
	// applied list. A fresh list drops every mark.
	optimistic map[int64]bool
}

func NewController(api API, opts ...Option) *Controller {
	c := &Controller{
		api:      api,
		interval: DefaultInterval,
		now:      time.Now,
		logger:   slog.Default(),
		// A small buffer keeps UI callers from waiting on the loop.
		actions: make(chan func(), 32),
		quit:    make(chan struct{}),
		stopped: make(chan struct{}),
		state: State{
			Features: []models.Feature{},
			InFlight: map[int64]bool{},
			SortMode: models.SortTop,
			Loading:  true,
		},
		optimistic: map[int64]bool{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Start issues the initial list request and starts the event loop.
// Calling Start more than once has no effect.
func (c *Controller) Start() {
	if c.started.Swap(true) {
		return
	}
	if c.signal != nil {
		c.unsubscribe = c.signal.Subscribe(func() { c.Trigger(TriggerCreated) })
	}
	c.refresh(TriggerInitial)
	go c.loop()
}

// Stop cancels any list request, stops the ticker and waits for in-flight
// upvotes to settle before the loop exits.
func (c *Controller) Stop() {
	c.stopOnce.Do(func() { close(c.quit) })
	if c.started.Load() {
		<-c.stopped
	}
}

// Trigger requests a fresh list, superseding any request in flight.
func (c *Controller) Trigger(t Trigger) {
	c.post(func() { c.refresh(t) })
}

// Refresh is Trigger(TriggerManual).
func (c *Controller) Refresh() {
	c.Trigger(TriggerManual)
}

// Upvote optimistically adds a vote to id and sends it to the server.
// Repeated calls while the first is in flight are ignored, as are ids that
// are not in the local list.
func (c *Controller) Upvote(id int64) {
	c.post(func() { c.upvote(id) })
}

// SetSortMode switches the display order. Unknown modes are ignored.
func (c *Controller) SetSortMode(mode string) {
	if !ValidSortMode(mode) {
		return
	}
	c.post(func() {
		if c.state.SortMode == mode {
			return
		}
		c.state.SortMode = mode
		c.changed()
	})
}

// ToggleSort flips between top and newest.
func (c *Controller) ToggleSort() {
	c.post(func() {
		if c.state.SortMode == models.SortTop {
			c.state.SortMode = models.SortNewest
		} else {
			c.state.SortMode = models.SortTop
		}
		c.changed()
	})
}

func (c *Controller) DismissError() {
	c.post(func() {
		if c.state.LastError == "" {
			return
		}
		c.state.LastError = ""
		c.changed()
	})
}

// Snapshot returns a copy of the current state.
func (c *Controller) Snapshot() State {
	reply := make(chan State, 1)
	if !c.post(func() { reply <- c.state.clone() }) {
		return c.state.clone()
	}
	select {
	case s := <-reply:
		return s
	case <-c.stopped:
		return c.state.clone()
	}
}

func (c *Controller) post(fn func()) bool {
	if !c.started.Load() {
		return false
	}
	select {
	case <-c.stopped:
		return false
	default:
	}
	select {
	case c.actions <- fn:
		return true
	case <-c.stopped:
		return false
	}
}

func (c *Controller) loop() {
	defer close(c.stopped)

	var tick <-chan time.Time
	if c.interval > 0 {
		ticker := time.NewTicker(c.interval)
		defer ticker.Stop()
		tick = ticker.C
	}
	quit := c.quit

	for {
		select {
		case fn := <-c.actions:
			fn()
		case <-tick:
			c.refresh(TriggerInterval)
		case <-quit:
			c.shutdown()
			quit = nil
			tick = nil
		}
		if c.stopping && c.pendingUpvotes == 0 {
			c.logger.Debug("feature sync stopped")
			return
		}
	}
}

func (c *Controller) shutdown() {
	c.stopping = true
	if c.unsubscribe != nil {
		c.unsubscribe()
	}
	if c.cancelList != nil {
		c.cancelList()
		c.cancelList = nil
	}
	c.generation++
}

func (c *Controller) refresh(trigger Trigger) {
	if c.stopping {
		return
	}
	if c.cancelList != nil {
		c.cancelList()
	}
	c.generation++
	gen := c.generation
	ctx, cancel := context.WithCancel(context.Background())
	c.cancelList = cancel

	c.logger.Debug("revalidating features", "trigger", trigger.String(), "generation", gen)

	go func() {
		features, err := c.api.ListFeatures(ctx)
		c.post(func() { c.listSettled(gen, trigger, features, err) })
	}()
}

func (c *Controller) listSettled(gen uint64, trigger Trigger, features []models.Feature, err error) {
	if gen != c.generation {
		c.logger.Debug("discarding superseded list response", "generation", gen, "current", c.generation)
		return
	}
	if c.cancelList != nil {
		c.cancelList()
		c.cancelList = nil
	}

	if err != nil {
		if errors.Is(err, context.Canceled) {
			return
		}
		c.logger.Warn("failed to fetch features", "error", err)
		c.state.LastError = err.Error()
		c.state.Loading = false
		c.changed()
		return
	}

	if features == nil {
		features = []models.Feature{}
	}
	c.state.Features = features
	clear(c.optimistic)
	// A refresh following a failed upvote must not hide that failure.
	if trigger != TriggerUpvote {
		c.state.LastError = ""
	}
	c.state.Loading = false
	c.state.LastSynced = c.now()
	c.changed()
}

func (c *Controller) upvote(id int64) {
	if c.stopping || c.state.InFlight[id] {
		return
	}
	idx := c.indexOf(id)
	if idx < 0 {
		c.logger.Debug("ignoring upvote for unknown feature", "feature_id", id)
		return
	}

	c.state.Features[idx].Votes++
	c.state.InFlight[id] = true
	c.optimistic[id] = true
	c.pendingUpvotes++
	c.changed()

	// Upvotes are never canceled by revalidation or Stop.
	go func() {
		_, err := c.api.UpvoteFeature(context.Background(), id)
		c.post(func() { c.upvoteSettled(id, err) })
	}()
}

func (c *Controller) upvoteSettled(id int64, err error) {
	delete(c.state.InFlight, id)
	marked := c.optimistic[id]
	delete(c.optimistic, id)
	c.pendingUpvotes--

	if err != nil {
		c.logger.Warn("failed to upvote feature", "feature_id", id, "error", err)
		// Only undo the local +1 if no list has replaced it since.
		if idx := c.indexOf(id); marked && idx >= 0 && c.state.Features[idx].Votes > 0 {
			c.state.Features[idx].Votes--
		}
		c.state.LastError = err.Error()
	}

	c.changed()
	c.refresh(TriggerUpvote)
}

func (c *Controller) indexOf(id int64) int {
	for i := range c.state.Features {
		if c.state.Features[i].ID == id {
			return i
		}
	}
	return -1
}

func (c *Controller) changed() {
	if c.onChange != nil {
		c.onChange(c.state.clone())
	}
}
