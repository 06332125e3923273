package api

import (
	"fmt"
	"net/http"
)

// ResultItem is one hit of a media search.
type ResultItem struct {
	URL   string `json:"url"`
	Title string `json:"title,omitempty"`
}

// SearchResponse is the body of GET /search_images and GET /search_audio.
type SearchResponse struct {
	Results     []ResultItem `json:"results"`
	ResultCount int          `json:"result_count"`

	// Header holds the response headers, for rate limit bookkeeping.
	Header http.Header `json:"-"`
}

// RateLimitResponse is the body of GET /rate_limit.
type RateLimitResponse struct {
	Remaining int     `json:"remaining"`
	ResetIn   float64 `json:"reset_in"`
}

// URLRef references a result by URL only.
type URLRef struct {
	URL string `json:"url"`
}

// SaveSearchRequest is the body of POST /save_search.
type SaveSearchRequest struct {
	Name      string            `json:"name,omitempty"`
	Query     string            `json:"query"`
	MediaType string            `json:"media_type"`
	Results   []URLRef          `json:"results"`
	Filters   map[string]string `json:"filters,omitempty"`
}

// RecentSearchRequest is the body of POST /recent_search.
type RecentSearchRequest struct {
	Query     string            `json:"query"`
	MediaType string            `json:"media_type"`
	Filters   map[string]string `json:"filters,omitempty"`
}

// MessageResponse is the generic {message} / {error} body.
type MessageResponse struct {
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`

	// StatusCode is the HTTP status the body came with.
	StatusCode int `json:"-"`
}

// Text returns the error text if present, else the message.
func (m MessageResponse) Text() string {
	if m.Error != "" {
		return m.Error
	}
	return m.Message
}

// RecentSearchResponse is one element of GET /recent_searches. Older backends
// send "query" instead of "search_query".
type RecentSearchResponse struct {
	ID           int64          `json:"id"`
	SearchQuery  string         `json:"search_query"`
	Query        string         `json:"query"`
	MediaType    string         `json:"media_type"`
	TotalResults int            `json:"total_results"`
	Timestamp    string         `json:"timestamp"`
	Filters      map[string]any `json:"filters"`
}

// StatusError is returned for any non-2xx response.
type StatusError struct {
	Method     string
	Path       string
	StatusCode int
	Header     http.Header
	Body       MessageResponse
}

func (e *StatusError) Error() string {
	if text := e.Body.Text(); text != "" {
		return fmt.Sprintf("%s %s: status %d: %s", e.Method, e.Path, e.StatusCode, text)
	}
	return fmt.Sprintf("%s %s: status %d", e.Method, e.Path, e.StatusCode)
}
