// Package saved persists searches on the backend: named saved searches and
// the recent search log.
package saved

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/rubiojr/mediasearch/pkg/api"
	"github.com/rubiojr/mediasearch/pkg/auth"
	"github.com/rubiojr/mediasearch/pkg/log"
	"github.com/rubiojr/mediasearch/pkg/search"
	"golang.org/x/oauth2"
)

var logger = log.ForService("saved")

// Backend is the part of the API client this package needs.
type Backend interface {
	SaveSearch(ctx context.Context, token string, req api.SaveSearchRequest) (*api.MessageResponse, error)
	SaveRecentSearch(ctx context.Context, token string, req api.RecentSearchRequest) (*api.MessageResponse, error)
}

// Service saves searches and records recent ones for the logged in user.
type Service struct {
	backend Backend
	tokens  oauth2.TokenSource
}

// NewService returns a Service calling backend with tokens from tokens.
func NewService(backend Backend, tokens oauth2.TokenSource) *Service {
	return &Service{backend: backend, tokens: tokens}
}

// Save stores the current search under name, with the URLs of its results.
//
// It fails without a network call on a blank name (search.ErrEmptyName) or
// a missing token (search.ErrUnauthenticated). Server failures come back as
// *search.DuplicateSaveError or *search.SaveFailedError.
func (s *Service) Save(ctx context.Context, name string, st search.State, results search.ResultSet) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return search.ErrEmptyName
	}
	token := auth.Bearer(s.tokens)
	if token == "" {
		return search.ErrUnauthenticated
	}

	refs := make([]api.URLRef, 0, len(results.Items))
	for _, u := range results.URLs() {
		refs = append(refs, api.URLRef{URL: u})
	}

	req := api.SaveSearchRequest{
		Name:      name,
		Query:     st.Query,
		MediaType: string(st.MediaType),
		Results:   refs,
		Filters:   st.Filters.Map(),
	}

	logger.Debugf("saving %q: q=%q media=%s results=%d", name, st.Query, st.MediaType, len(refs))
	resp, err := s.backend.SaveSearch(ctx, token, req)
	return classify(resp, err)
}

// Remember adds the search to the recent search log.
func (s *Service) Remember(ctx context.Context, st search.State) error {
	query := strings.TrimSpace(st.Query)
	if query == "" {
		return search.ErrEmptyQuery
	}
	token := auth.Bearer(s.tokens)
	if token == "" {
		return search.ErrUnauthenticated
	}

	req := api.RecentSearchRequest{
		Query:     query,
		MediaType: string(st.MediaType),
	}
	if active := st.Filters.Active(); len(active) > 0 {
		req.Filters = active.Map()
	}

	resp, err := s.backend.SaveRecentSearch(ctx, token, req)
	return classify(resp, err)
}

// classify turns a save outcome into nil, a duplicate or a failure.
func classify(resp *api.MessageResponse, err error) error {
	if err != nil {
		var se *api.StatusError
		if !errors.As(err, &se) {
			return &search.SaveFailedError{Err: err}
		}
		text := se.Body.Text()
		if se.StatusCode == http.StatusConflict || isDuplicate(text) {
			return &search.DuplicateSaveError{Message: text}
		}
		return &search.SaveFailedError{Status: se.StatusCode, Detail: text}
	}

	// Some backends answer a duplicate with a 2xx and a notice.
	if resp != nil && isDuplicate(resp.Text()) {
		return &search.DuplicateSaveError{}
	}
	return nil
}

func isDuplicate(text string) bool {
	return strings.Contains(strings.ToLower(text), "already exists")
}
