package search

import (
	"errors"
	"fmt"
	"testing"
	"time"
)

func TestUserMessage(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"nil", nil, ""},
		{"rate limited", &RateLimitedError{RetryAfter: 5 * time.Second}, "Rate limit exceeded. Try again in 5 seconds."},
		{"rate limited rounds up", &RateLimitedError{RetryAfter: 1500 * time.Millisecond}, "Rate limit exceeded. Try again in 2 seconds."},
		{"http", &HTTPError{Status: 500}, FetchFailedMessage},
		{"network", &NetworkError{Err: errors.New("connection refused")}, FetchFailedMessage},
		{"wrapped http", fmt.Errorf("fetching: %w", &HTTPError{Status: 502}), FetchFailedMessage},
		{"validation", ErrEmptyName, "Please enter a name for your search"},
		{"duplicate", &DuplicateSaveError{Message: "Name already exists"}, "Name already exists"},
		{"duplicate default", &DuplicateSaveError{}, AlreadySavedMsg},
		{"save failed", &SaveFailedError{Status: 500, Detail: "boom"}, SaveFailedMessage},
		{"unauthenticated", fmt.Errorf("save: %w", ErrUnauthenticated), LoginMessage},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := UserMessage(tt.err); got != tt.want {
				t.Errorf("expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestNetworkErrorUnwrap(t *testing.T) {
	inner := errors.New("dial tcp: refused")
	err := fmt.Errorf("fetch: %w", &NetworkError{Err: inner})
	if !errors.Is(err, inner) {
		t.Error("expected NetworkError to unwrap to its cause")
	}
}
