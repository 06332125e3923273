// Package session owns the state of one search surface and drives fetches
// from it.
//
// A Controller holds the query, filters and pagination of a surface and the
// results of its latest search. Every trigger (submit, filter, page or page
// size change, navigation) takes the next request token and starts a fetch on
// its own goroutine. Only the outcome carrying the latest token is applied;
// older ones are dropped when they arrive.
package session

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/rubiojr/mediasearch/pkg/auth"
	"github.com/rubiojr/mediasearch/pkg/clock"
	"github.com/rubiojr/mediasearch/pkg/fetch"
	"github.com/rubiojr/mediasearch/pkg/log"
	"github.com/rubiojr/mediasearch/pkg/media"
	"github.com/rubiojr/mediasearch/pkg/ratelimit"
	"github.com/rubiojr/mediasearch/pkg/search"
	"golang.org/x/oauth2"
)

var logger = log.ForService("session")

// ErrClosed is returned by triggers on a closed controller.
var ErrClosed = errors.New("session closed")

// Status is the lifecycle state of a surface.
type Status int

const (
	Idle Status = iota
	Searching
	Errored
	// RateLimited is an Errored state with a known wait.
	RateLimited
)

func (s Status) String() string {
	switch s {
	case Idle:
		return "idle"
	case Searching:
		return "searching"
	case Errored:
		return "errored"
	case RateLimited:
		return "rate limited"
	default:
		return fmt.Sprintf("status(%d)", int(s))
	}
}

// Fetcher runs one search. *fetch.Fetcher implements it.
type Fetcher interface {
	Fetch(ctx context.Context, req fetch.Request) (search.ResultSet, error)
}

// Snapshot is a consistent copy of a controller's observable state.
type Snapshot struct {
	State   search.State
	Results search.ResultSet
	Status  Status

	// Err is the classified failure of the latest search, nil unless Status
	// is Errored or RateLimited. Message is its user-facing text.
	Err     error
	Message string

	// RetryIn is the time left before an automatic retry, zero when none is
	// scheduled.
	RetryIn time.Duration

	// Token is the latest request token issued.
	Token uint64

	// Version increases with every published change.
	Version uint64
}

// CanPrev reports whether there is a previous page.
func (s Snapshot) CanPrev() bool {
	return s.State.Page > 1
}

// CanNext reports whether there is a next page.
func (s Snapshot) CanNext() bool {
	return s.State.Page < s.Results.TotalPages
}

// Controller owns the search state of one surface and runs its fetches.
// It is safe for concurrent use.
type Controller struct {
	desc     media.Descriptor
	fetcher  Fetcher
	gate     *ratelimit.Gate
	clock    clock.Clock
	tokens   oauth2.TokenSource
	onChange func(Snapshot)

	mu         sync.Mutex
	state      search.State
	results    search.ResultSet
	status     Status
	err        error
	autoRetry  bool
	seq        uint64
	retryTimer clock.Timer
	retryAt    time.Time
	closed     bool
	version    uint64

	notifyMu sync.Mutex
	notified uint64

	// inflight counts running fetches; idle is signalled on c.mu when it
	// drops to zero. Retry timers may start fetches while Wait is blocked.
	inflight int
	idle     *sync.Cond
}

// Option configures a Controller.
type Option func(*Controller)

// WithGate checks g before every fetch.
func WithGate(g *ratelimit.Gate) Option {
	return func(c *Controller) { c.gate = g }
}

// WithClock sets the clock used for retry timers.
func WithClock(cl clock.Clock) Option {
	return func(c *Controller) { c.clock = cl }
}

// WithTokenSource sets where the bearer token is read from.
func WithTokenSource(ts oauth2.TokenSource) Option {
	return func(c *Controller) { c.tokens = ts }
}

// WithAutoRetry enables or disables the automatic retry after a rate limit.
func WithAutoRetry(enabled bool) Option {
	return func(c *Controller) { c.autoRetry = enabled }
}

// OnChange registers an observer called after every state change. It runs
// outside the controller lock, possibly from a fetch goroutine, and never
// sees an older snapshot after a newer one. The observer must not call
// controller methods that change state.
func OnChange(f func(Snapshot)) Option {
	return func(c *Controller) { c.onChange = f }
}

// New returns a controller for the surface described by desc.
func New(desc media.Descriptor, fetcher Fetcher, opts ...Option) *Controller {
	c := &Controller{
		desc:      desc,
		fetcher:   fetcher,
		clock:     clock.Real(),
		autoRetry: true,
		state:     search.NewState(desc),
		results:   search.ResultSet{TotalPages: 1},
	}
	c.idle = sync.NewCond(&c.mu)
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Descriptor returns the surface descriptor.
func (c *Controller) Descriptor() media.Descriptor {
	return c.desc
}

// Mount seeds the state from URL parameters and searches right away when
// they carry a query.
func (c *Controller) Mount(ctx context.Context, values url.Values) error {
	st := c.decode(values)

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrClosed
	}
	c.state = st
	snap := c.triggerLocked(ctx)
	c.mu.Unlock()

	c.notify(snap)
	return nil
}

// Navigate applies URL parameters after a history move. Nothing happens when
// they describe the current state.
func (c *Controller) Navigate(ctx context.Context, values url.Values) error {
	st := c.decode(values)

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrClosed
	}
	if st.Equal(c.state) {
		c.mu.Unlock()
		return nil
	}
	c.state = st
	snap := c.triggerLocked(ctx)
	c.mu.Unlock()

	c.notify(snap)
	return nil
}

func (c *Controller) decode(values url.Values) search.State {
	st := search.Decode(values, c.desc.FilterNames())
	st.MediaType = c.desc.Type
	return st
}

// SetQuery updates the query text. It never fetches.
func (c *Controller) SetQuery(q string) {
	c.mu.Lock()
	c.state.Query = q
	snap := c.publishLocked()
	c.mu.Unlock()

	c.notify(snap)
}

// Submit searches for the current query from page one.
func (c *Controller) Submit(ctx context.Context) error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrClosed
	}
	if strings.TrimSpace(c.state.Query) == "" {
		c.mu.Unlock()
		return search.ErrEmptyQuery
	}
	c.state.Page = 1
	snap := c.triggerLocked(ctx)
	c.mu.Unlock()

	c.notify(snap)
	return nil
}

// SetFilter sets one filter and restarts from page one.
func (c *Controller) SetFilter(ctx context.Context, name, value string) error {
	fd, ok := c.desc.Filter(name)
	if !ok {
		return &search.ValidationError{Field: name, Message: fmt.Sprintf("Unknown filter %q", name)}
	}
	if value != search.AnyValue && !fd.Accepts(value) {
		return &search.ValidationError{
			Field:   name,
			Message: fmt.Sprintf("Invalid %s %q: expected one of %s", fd.Label, value, strings.Join(fd.Options, ", ")),
		}
	}

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrClosed
	}
	c.state.Filters = c.state.Filters.With(name, value)
	c.state.Page = 1
	snap := c.triggerLocked(ctx)
	c.mu.Unlock()

	c.notify(snap)
	return nil
}

// SetFilters replaces every filter at once and restarts from page one.
// Declared filters missing from f are cleared.
func (c *Controller) SetFilters(ctx context.Context, f search.Filters) error {
	next := search.NewFilters(c.desc.FilterNames())
	for _, filter := range f {
		fd, ok := c.desc.Filter(filter.Name)
		if !ok {
			return &search.ValidationError{Field: filter.Name, Message: fmt.Sprintf("Unknown filter %q", filter.Name)}
		}
		if filter.Value != search.AnyValue && !fd.Accepts(filter.Value) {
			return &search.ValidationError{Field: filter.Name, Message: fmt.Sprintf("Invalid %s %q", fd.Label, filter.Value)}
		}
		next = next.With(filter.Name, filter.Value)
	}

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrClosed
	}
	c.state.Filters = next
	c.state.Page = 1
	snap := c.triggerLocked(ctx)
	c.mu.Unlock()

	c.notify(snap)
	return nil
}

// SetPage moves to page p. It reports false and does nothing when p is
// outside [1, total pages].
func (c *Controller) SetPage(ctx context.Context, p int) bool {
	c.mu.Lock()
	if c.closed || p < 1 || p > c.results.TotalPages {
		c.mu.Unlock()
		return false
	}
	if p == c.state.Page {
		c.mu.Unlock()
		return true
	}
	c.state.Page = p
	snap := c.triggerLocked(ctx)
	c.mu.Unlock()

	c.notify(snap)
	return true
}

// NextPage moves one page forward if possible.
func (c *Controller) NextPage(ctx context.Context) bool {
	c.mu.Lock()
	p := c.state.Page + 1
	c.mu.Unlock()
	return c.SetPage(ctx, p)
}

// PrevPage moves one page back if possible.
func (c *Controller) PrevPage(ctx context.Context) bool {
	c.mu.Lock()
	p := c.state.Page - 1
	c.mu.Unlock()
	return c.SetPage(ctx, p)
}

// SetPageSize changes the page size and restarts from page one.
func (c *Controller) SetPageSize(ctx context.Context, n int) error {
	if !media.ValidPageSize(n) {
		return &search.ValidationError{
			Field:   "page_size",
			Message: fmt.Sprintf("Invalid page size %d: expected one of %v", n, media.PageSizes),
		}
	}

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrClosed
	}
	c.state.PageSize = n
	c.state.Page = 1
	snap := c.triggerLocked(ctx)
	c.mu.Unlock()

	c.notify(snap)
	return nil
}

// SetAutoRetry toggles the automatic retry. Disabling it cancels a pending
// retry.
func (c *Controller) SetAutoRetry(enabled bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.autoRetry = enabled
	if !enabled {
		c.stopRetryLocked()
	}
}

// Snapshot returns the current observable state.
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

// Params returns the URL parameters of the current state.
func (c *Controller) Params() []search.Param {
	c.mu.Lock()
	defer c.mu.Unlock()
	return search.Encode(c.state)
}

// RawQuery returns the current state as a query string.
func (c *Controller) RawQuery() string {
	return search.RawQuery(c.Params())
}

// Wait blocks until every started fetch has settled, including fetches
// started by a retry while waiting.
func (c *Controller) Wait() {
	c.mu.Lock()
	defer c.mu.Unlock()
	for c.inflight > 0 {
		c.idle.Wait()
	}
}

// Close stops any pending retry and drops outcomes still in flight. It waits
// for running fetches to return.
func (c *Controller) Close() {
	c.mu.Lock()
	c.closed = true
	c.stopRetryLocked()
	for c.inflight > 0 {
		c.idle.Wait()
	}
	c.mu.Unlock()
}

// triggerLocked starts a fetch for the current state when the query is not
// blank. It returns the snapshot to publish.
func (c *Controller) triggerLocked(ctx context.Context) Snapshot {
	if strings.TrimSpace(c.state.Query) == "" {
		return c.publishLocked()
	}
	c.startLocked(ctx, false)
	return c.publishLocked()
}

// startLocked issues a new token and launches its fetch. A pending retry is
// superseded.
func (c *Controller) startLocked(ctx context.Context, fromRetry bool) {
	c.stopRetryLocked()

	c.seq++
	token := c.seq
	st := c.state.Clone()

	c.status = Searching
	c.err = nil

	logger.Debugf("%s: search token=%d retry=%v q=%q page=%d", c.desc.Type, token, fromRetry, st.Query, st.Page)

	c.inflight++
	go c.run(ctx, token, st, fromRetry)
}

func (c *Controller) run(ctx context.Context, token uint64, st search.State, fromRetry bool) {
	defer c.settled()

	if c.gate != nil {
		if d := c.gate.Check(ctx); !d.Allowed {
			c.apply(ctx, token, search.ResultSet{}, d.Err(), fromRetry)
			return
		}
	}

	rs, err := c.fetcher.Fetch(ctx, fetch.RequestFor(st, auth.Bearer(c.tokens)))
	c.apply(ctx, token, rs, err, fromRetry)
}

func (c *Controller) settled() {
	c.mu.Lock()
	c.inflight--
	if c.inflight == 0 {
		c.idle.Broadcast()
	}
	c.mu.Unlock()
}

// apply records the outcome of the fetch holding token, unless a newer
// trigger has been issued since.
func (c *Controller) apply(ctx context.Context, token uint64, rs search.ResultSet, err error, fromRetry bool) {
	c.mu.Lock()
	if c.closed || token != c.seq {
		logger.Debugf("%s: discarding outcome of token=%d, latest=%d", c.desc.Type, token, c.seq)
		c.mu.Unlock()
		return
	}

	var rateLimited *search.RateLimitedError
	switch {
	case err == nil:
		c.results = rs
		c.status = Idle
		c.err = nil
		if rs.TotalPages > 0 && c.state.Page > rs.TotalPages {
			logger.Debugf("%s: page %d beyond %d pages, clamping", c.desc.Type, c.state.Page, rs.TotalPages)
			c.state.Page = rs.TotalPages
			c.startLocked(ctx, false)
		}
	case errors.Is(err, fetch.ErrNoQuery):
		c.status = Idle
		c.err = nil
	case errors.As(err, &rateLimited):
		c.clearResultsLocked()
		c.status = RateLimited
		c.err = err
		if c.autoRetry && !fromRetry {
			c.scheduleRetryLocked(ctx, token, rateLimited.RetryAfter)
		}
	default:
		logger.Debugf("%s: search failed: %v", c.desc.Type, err)
		c.clearResultsLocked()
		c.status = Errored
		c.err = err
	}

	snap := c.publishLocked()
	c.mu.Unlock()

	c.notify(snap)
}

// clearResultsLocked empties the result list after a failure. The page count
// is kept so pagination stays usable.
func (c *Controller) clearResultsLocked() {
	c.results = search.ResultSet{TotalPages: c.results.TotalPages}
}

func (c *Controller) scheduleRetryLocked(ctx context.Context, token uint64, wait time.Duration) {
	c.retryAt = c.clock.Now().Add(wait)
	logger.Debugf("%s: retrying token=%d in %s", c.desc.Type, token, wait)
	c.retryTimer = c.clock.AfterFunc(wait, func() {
		c.retry(ctx, token)
	})
}

func (c *Controller) retry(ctx context.Context, token uint64) {
	c.mu.Lock()
	if c.closed || token != c.seq || c.status != RateLimited || !c.autoRetry {
		c.mu.Unlock()
		return
	}
	c.retryTimer = nil
	c.retryAt = time.Time{}
	c.startLocked(ctx, true)
	snap := c.publishLocked()
	c.mu.Unlock()

	c.notify(snap)
}

func (c *Controller) stopRetryLocked() {
	if c.retryTimer != nil {
		c.retryTimer.Stop()
		c.retryTimer = nil
	}
	c.retryAt = time.Time{}
}

// publishLocked records a change and returns the snapshot to hand to the
// observer.
func (c *Controller) publishLocked() Snapshot {
	c.version++
	return c.snapshotLocked()
}

func (c *Controller) snapshotLocked() Snapshot {
	snap := Snapshot{
		State:   c.state.Clone(),
		Results: c.results,
		Status:  c.status,
		Err:     c.err,
		Token:   c.seq,
		Version: c.version,
	}
	snap.Results.Items = append([]search.Item(nil), c.results.Items...)
	if c.err != nil {
		snap.Message = search.UserMessage(c.err)
	}
	if !c.retryAt.IsZero() {
		if d := c.retryAt.Sub(c.clock.Now()); d > 0 {
			snap.RetryIn = d
		}
	}
	return snap
}

func (c *Controller) notify(snap Snapshot) {
	if c.onChange == nil {
		return
	}
	c.notifyMu.Lock()
	defer c.notifyMu.Unlock()
	if snap.Version <= c.notified {
		return
	}
	c.notified = snap.Version
	c.onChange(snap)
}
