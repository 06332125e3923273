// Package history lists, deletes and replays the recent searches the backend
// keeps per user.
package history

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/rubiojr/mediasearch/pkg/api"
	"github.com/rubiojr/mediasearch/pkg/auth"
	"github.com/rubiojr/mediasearch/pkg/media"
	"github.com/rubiojr/mediasearch/pkg/search"
	"golang.org/x/oauth2"
)

// Entry is one recent search.
type Entry struct {
	ID           int64
	Query        string
	MediaType    media.Type
	TotalResults int
	Timestamp    time.Time
	// RawTimestamp is the timestamp as sent by the backend.
	RawTimestamp string
	Filters      map[string]string
}

// When returns the timestamp for display.
func (e Entry) When() string {
	if !e.Timestamp.IsZero() {
		return e.Timestamp.Format("2006-01-02 15:04:05")
	}
	return strings.Replace(e.RawTimestamp, "T", " ", 1)
}

// Backend is the part of the API client this package needs.
type Backend interface {
	RecentSearches(ctx context.Context, token string) ([]api.RecentSearchResponse, error)
	DeleteRecentSearch(ctx context.Context, token string, id int64) error
}

// Service reads and deletes the recent searches of the logged in user.
type Service struct {
	backend Backend
	tokens  oauth2.TokenSource
}

// NewService returns a Service calling backend with tokens from tokens.
func NewService(backend Backend, tokens oauth2.TokenSource) *Service {
	return &Service{backend: backend, tokens: tokens}
}

// List returns the recent searches, newest first as the backend orders them.
func (s *Service) List(ctx context.Context) ([]Entry, error) {
	token := auth.Bearer(s.tokens)
	if token == "" {
		return nil, search.ErrUnauthenticated
	}

	resp, err := s.backend.RecentSearches(ctx, token)
	if err != nil {
		return nil, fmt.Errorf("loading recent searches: %w", err)
	}

	entries := make([]Entry, 0, len(resp))
	for _, r := range resp {
		entries = append(entries, entryFrom(r))
	}
	return entries, nil
}

// Delete removes one recent search.
func (s *Service) Delete(ctx context.Context, id int64) error {
	token := auth.Bearer(s.tokens)
	if token == "" {
		return search.ErrUnauthenticated
	}
	if err := s.backend.DeleteRecentSearch(ctx, token, id); err != nil {
		return fmt.Errorf("deleting recent search %d: %w", id, err)
	}
	return nil
}

// Find returns the entry with the given id.
func (s *Service) Find(ctx context.Context, id int64) (Entry, error) {
	entries, err := s.List(ctx)
	if err != nil {
		return Entry{}, err
	}
	for _, e := range entries {
		if e.ID == id {
			return e, nil
		}
	}
	return Entry{}, fmt.Errorf("recent search %d not found", id)
}

// Replay returns the surface and URL parameters that rerun an entry: its
// query plus every non-empty filter the surface declares.
func Replay(e Entry) (media.Type, url.Values) {
	d := descriptorFor(e.MediaType)
	values := url.Values{}
	for _, p := range replayParams(d, e) {
		values.Add(p.Key, p.Value)
	}
	return d.Type, values
}

// ReplayQuery is Replay rendered as an ordered query string.
func ReplayQuery(e Entry) (media.Type, string) {
	d := descriptorFor(e.MediaType)
	return d.Type, search.RawQuery(replayParams(d, e))
}

func replayParams(d media.Descriptor, e Entry) []search.Param {
	params := []search.Param{{Key: "q", Value: e.Query}}
	for _, name := range d.FilterNames() {
		if v := e.Filters[name]; v != "" && v != search.AnyValue {
			params = append(params, search.Param{Key: name, Value: v})
		}
	}
	return params
}

func descriptorFor(t media.Type) media.Descriptor {
	if d, ok := media.Lookup(t); ok {
		return d
	}
	d, _ := media.Lookup(media.Image)
	return d
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	time.RFC1123,
}

func entryFrom(r api.RecentSearchResponse) Entry {
	e := Entry{
		ID:           r.ID,
		Query:        r.SearchQuery,
		TotalResults: r.TotalResults,
		RawTimestamp: r.Timestamp,
		Filters:      map[string]string{},
	}
	if e.Query == "" {
		e.Query = r.Query
	}
	if e.TotalResults < 0 {
		e.TotalResults = 0
	}

	e.MediaType = media.Image
	if t, err := media.ParseType(r.MediaType); err == nil {
		e.MediaType = t
	}

	for _, layout := range timestampLayouts {
		if ts, err := time.Parse(layout, r.Timestamp); err == nil {
			e.Timestamp = ts
			break
		}
	}

	for k, v := range r.Filters {
		switch val := v.(type) {
		case nil:
		case string:
			if val != "" {
				e.Filters[k] = val
			}
		default:
			e.Filters[k] = fmt.Sprint(val)
		}
	}

	return e
}
