// Package ratelimit decides whether a search may be sent given the budget the
// backend reports.
package ratelimit

import (
	"context"
	"math"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/rubiojr/mediasearch/pkg/clock"
	"github.com/rubiojr/mediasearch/pkg/log"
	"github.com/rubiojr/mediasearch/pkg/search"
)

var logger = log.ForService("ratelimit")

// DefaultTTL is how long a fetched status is trusted before asking again.
const DefaultTTL = 60 * time.Second

// Status is the remaining call budget.
type Status struct {
	Remaining int
	ResetIn   time.Duration
	CheckedAt time.Time
}

// StatusSource fetches the current budget, typically GET /rate_limit.
type StatusSource interface {
	RateLimit(ctx context.Context) (Status, error)
}

// Decision is the outcome of a gate check.
type Decision struct {
	Allowed    bool
	RetryAfter time.Duration
}

// Seconds returns RetryAfter rounded up to whole seconds.
func (d Decision) Seconds() int {
	return int(math.Ceil(d.RetryAfter.Seconds()))
}

// Err returns the rate limited error for a denied decision, nil otherwise.
func (d Decision) Err() error {
	if d.Allowed {
		return nil
	}
	return &search.RateLimitedError{RetryAfter: d.RetryAfter}
}

// Gate tracks the budget and the most recent 429. It does not schedule
// retries.
type Gate struct {
	source StatusSource
	clock  clock.Clock
	ttl    time.Duration

	mu         sync.Mutex
	status     *Status
	blockedTil time.Time
}

// Option configures a Gate.
type Option func(*Gate)

// WithClock sets the clock used for deadlines.
func WithClock(c clock.Clock) Option {
	return func(g *Gate) { g.clock = c }
}

// WithTTL sets how long a fetched status is reused.
func WithTTL(ttl time.Duration) Option {
	return func(g *Gate) {
		if ttl > 0 {
			g.ttl = ttl
		}
	}
}

// NewGate returns a gate. source may be nil, in which case only response
// headers feed the gate.
func NewGate(source StatusSource, opts ...Option) *Gate {
	g := &Gate{
		source: source,
		clock:  clock.Real(),
		ttl:    DefaultTTL,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Check decides whether a call may proceed now.
//
// A recorded 429 takes precedence: calls are denied until its Retry-After
// deadline passes. Otherwise the cached status is refreshed when stale and a
// call is denied while the budget is exhausted and the reset window is open.
// A failing status call keeps the previous status.
func (g *Gate) Check(ctx context.Context) Decision {
	now := g.clock.Now()

	g.mu.Lock()
	if !g.blockedTil.IsZero() {
		if now.Before(g.blockedTil) {
			d := Decision{RetryAfter: g.blockedTil.Sub(now)}
			g.mu.Unlock()
			return d
		}
		g.blockedTil = time.Time{}
	}
	stale := g.status == nil || now.Sub(g.status.CheckedAt) >= g.ttl
	g.mu.Unlock()

	if stale && g.source != nil {
		status, err := g.source.RateLimit(ctx)
		if err != nil {
			logger.Debugf("rate limit status unavailable, keeping cached value: %v", err)
		} else {
			if status.CheckedAt.IsZero() {
				status.CheckedAt = now
			}
			g.Update(status)
		}
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	if g.status == nil || g.status.Remaining > 0 {
		return Decision{Allowed: true}
	}

	// A zero reset means the backend did not say when the budget refills;
	// assume the default wait so a retry after it reaches the server.
	resetIn := g.status.ResetIn
	if resetIn <= 0 {
		resetIn = search.DefaultRetryAfter
	}
	resetAt := g.status.CheckedAt.Add(resetIn)
	if !now.Before(resetAt) {
		// The window closed since the status was taken; let the call through
		// and let the server be the judge.
		return Decision{Allowed: true}
	}
	return Decision{RetryAfter: resetAt.Sub(now)}
}

// Update replaces the cached status.
func (g *Gate) Update(s Status) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if s.CheckedAt.IsZero() {
		s.CheckedAt = g.clock.Now()
	}
	g.status = &s
}

// Current returns the cached status, if any.
func (g *Gate) Current() (Status, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.status == nil {
		return Status{}, false
	}
	return *g.status, true
}

// ObserveRetryAfter records a 429 response and returns the wait it implies.
func (g *Gate) ObserveRetryAfter(header string) time.Duration {
	wait := ParseRetryAfter(header)
	g.mu.Lock()
	defer g.mu.Unlock()
	g.blockedTil = g.clock.Now().Add(wait)
	logger.Debugf("rate limited for %s", wait)
	return wait
}

// ObserveHeaders refreshes the status from X-RateLimit-Remaining and
// X-RateLimit-Reset when a response carries them. Reset is read as seconds
// from now when small and as a unix timestamp otherwise.
func (g *Gate) ObserveHeaders(h http.Header) {
	remainingStr := h.Get("X-RateLimit-Remaining")
	if remainingStr == "" {
		return
	}
	remaining, err := strconv.Atoi(strings.TrimSpace(remainingStr))
	if err != nil {
		return
	}

	now := g.clock.Now()
	status := Status{Remaining: remaining, CheckedAt: now}
	if reset, err := strconv.ParseInt(strings.TrimSpace(h.Get("X-RateLimit-Reset")), 10, 64); err == nil && reset > 0 {
		if reset > 1_000_000_000 {
			status.ResetIn = time.Unix(reset, 0).Sub(now)
		} else {
			status.ResetIn = time.Duration(reset) * time.Second
		}
	}
	g.Update(status)
}

// ParseRetryAfter parses a Retry-After value in seconds, falling back to
// search.DefaultRetryAfter when absent, negative or not numeric.
func ParseRetryAfter(header string) time.Duration {
	header = strings.TrimSpace(header)
	if header == "" {
		return search.DefaultRetryAfter
	}
	secs, err := strconv.ParseFloat(header, 64)
	if err != nil || secs < 0 || math.IsNaN(secs) || math.IsInf(secs, 0) {
		return search.DefaultRetryAfter
	}
	return time.Duration(secs * float64(time.Second))
}
