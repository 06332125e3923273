// Package auth gives read-only access to the stored bearer token.
package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rubiojr/mediasearch/pkg/log"
	"github.com/rubiojr/mediasearch/pkg/storage"
	"golang.org/x/oauth2"
)

var logger = log.ForService("auth")

// ErrNoToken is returned by TokenSource.Token when nothing is stored.
var ErrNoToken = errors.New("no auth token stored")

// Getter reads a value by key.
type Getter interface {
	Get(ctx context.Context, key string) (string, error)
}

// TokenSource reads the token from the local store on every call, so a token
// set or cleared by another process is picked up immediately.
type TokenSource struct {
	store Getter
}

var _ oauth2.TokenSource = (*TokenSource)(nil)

func NewTokenSource(store Getter) *TokenSource {
	return &TokenSource{store: store}
}

func (ts *TokenSource) Token() (*oauth2.Token, error) {
	if ts == nil || ts.store == nil {
		return nil, ErrNoToken
	}
	v, err := ts.store.Get(context.Background(), storage.TokenKey)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, ErrNoToken
	}
	if err != nil {
		return nil, fmt.Errorf("reading token: %w", err)
	}
	v = strings.TrimSpace(v)
	if v == "" {
		return nil, ErrNoToken
	}
	return &oauth2.Token{AccessToken: v, TokenType: "Bearer"}, nil
}

// Bearer returns the access token of ts, or "" when there is none. Read
// errors are logged and treated as absence.
func Bearer(ts oauth2.TokenSource) string {
	if ts == nil {
		return ""
	}
	tok, err := ts.Token()
	if err != nil {
		if !errors.Is(err, ErrNoToken) {
			logger.Warnf("token unavailable: %v", err)
		}
		return ""
	}
	if tok == nil {
		return ""
	}
	return tok.AccessToken
}

// Mask returns a redacted form of a token for display.
func Mask(token string) string {
	if len(token) <= 8 {
		return strings.Repeat("*", len(token))
	}
	return token[:4] + strings.Repeat("*", len(token)-8) + token[len(token)-4:]
}
