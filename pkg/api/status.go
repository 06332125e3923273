package api

import (
	"context"
	"time"

	"github.com/rubiojr/mediasearch/pkg/auth"
	"github.com/rubiojr/mediasearch/pkg/ratelimit"
	"golang.org/x/oauth2"
)

// StatusSource feeds a ratelimit.Gate from GET /rate_limit.
type StatusSource struct {
	client *Client
	tokens oauth2.TokenSource
}

var _ ratelimit.StatusSource = (*StatusSource)(nil)

// NewStatusSource returns a status source. tokens may be nil.
func NewStatusSource(c *Client, tokens oauth2.TokenSource) *StatusSource {
	return &StatusSource{client: c, tokens: tokens}
}

func (s *StatusSource) RateLimit(ctx context.Context) (ratelimit.Status, error) {
	resp, err := s.client.RateLimit(ctx, auth.Bearer(s.tokens))
	if err != nil {
		return ratelimit.Status{}, err
	}
	return ratelimit.Status{
		Remaining: resp.Remaining,
		ResetIn:   time.Duration(resp.ResetIn * float64(time.Second)),
	}, nil
}
