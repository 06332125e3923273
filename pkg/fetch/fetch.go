// Package fetch executes one search request against the backend and
// classifies its outcome.
package fetch

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/rubiojr/mediasearch/pkg/api"
	"github.com/rubiojr/mediasearch/pkg/log"
	"github.com/rubiojr/mediasearch/pkg/media"
	"github.com/rubiojr/mediasearch/pkg/ratelimit"
	"github.com/rubiojr/mediasearch/pkg/search"
)

var logger = log.ForService("fetch")

// ErrNoQuery means nothing was fetched because the query is blank. It is not
// a failure.
var ErrNoQuery = errors.New("no query: nothing to fetch")

// Searcher runs a raw search call. *api.Client implements it.
type Searcher interface {
	Search(ctx context.Context, endpoint, rawQuery, token string) (*api.SearchResponse, error)
}

// Request is everything needed to fetch one page.
type Request struct {
	MediaType media.Type
	Query     string
	Filters   search.Filters
	Page      int
	PageSize  int
	Token     string
}

// RequestFor builds a request from a search state.
func RequestFor(s search.State, token string) Request {
	return Request{
		MediaType: s.MediaType,
		Query:     s.Query,
		Filters:   s.Filters.Clone(),
		Page:      s.Page,
		PageSize:  s.PageSize,
		Token:     token,
	}
}

func (r Request) state() search.State {
	s := search.State{
		Query:     r.Query,
		Filters:   r.Filters,
		Page:      r.Page,
		PageSize:  r.PageSize,
		MediaType: r.MediaType,
	}
	if s.Page < 1 {
		s.Page = 1
	}
	if !media.ValidPageSize(s.PageSize) {
		s.PageSize = media.DefaultPageSize
	}
	return s
}

// Fetcher turns search requests into result sets over the API client.
type Fetcher struct {
	client Searcher
	gate   *ratelimit.Gate
}

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithGate records 429s and rate limit headers on g.
func WithGate(g *ratelimit.Gate) Option {
	return func(f *Fetcher) { f.gate = g }
}

// New returns a Fetcher searching through client.
func New(client Searcher, opts ...Option) *Fetcher {
	f := &Fetcher{client: client}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Fetch runs the search described by req.
//
// Failures are one of *search.RateLimitedError, *search.HTTPError or
// *search.NetworkError. A blank query returns ErrNoQuery without a request.
func (f *Fetcher) Fetch(ctx context.Context, req Request) (search.ResultSet, error) {
	if strings.TrimSpace(req.Query) == "" {
		return search.ResultSet{}, ErrNoQuery
	}

	desc, ok := media.Lookup(req.MediaType)
	if !ok {
		return search.ResultSet{}, fmt.Errorf("unknown media type %q", req.MediaType)
	}

	st := req.state()
	rawQuery := search.RawQuery(search.Encode(st))
	logger.Debugf("GET %s?%s", desc.Endpoint, rawQuery)

	resp, err := f.client.Search(ctx, desc.Endpoint, rawQuery, req.Token)
	if resp != nil && f.gate != nil {
		f.gate.ObserveHeaders(resp.Header)
	}
	if err != nil {
		return search.ResultSet{}, f.classify(err)
	}

	return normalize(resp, st), nil
}

func (f *Fetcher) classify(err error) error {
	var se *api.StatusError
	if !errors.As(err, &se) {
		return &search.NetworkError{Err: err}
	}

	if se.StatusCode == http.StatusTooManyRequests {
		header := se.Header.Get("Retry-After")
		wait := ratelimit.ParseRetryAfter(header)
		if f.gate != nil {
			wait = f.gate.ObserveRetryAfter(header)
		}
		return &search.RateLimitedError{RetryAfter: wait}
	}

	return &search.HTTPError{Status: se.StatusCode, Message: se.Body.Text()}
}

func normalize(resp *api.SearchResponse, st search.State) search.ResultSet {
	items := make([]search.Item, 0, len(resp.Results))
	for _, r := range resp.Results {
		title := strings.TrimSpace(r.Title)
		if title == "" {
			title = search.PlaceholderTitle
		}
		items = append(items, search.Item{URL: r.URL, Title: title, MediaType: st.MediaType})
	}

	// A zero count means the backend omitted it.
	total := resp.ResultCount
	if total <= 0 {
		total = len(items)
	}

	return search.ResultSet{
		Items:        items,
		TotalResults: total,
		TotalPages:   search.TotalPages(total, st.PageSize),
	}
}
