package search

import (
	"errors"
	"fmt"
	"math"
	"time"
)

// DefaultRetryAfter is used when a rate limited response carries no usable
// Retry-After value.
const DefaultRetryAfter = 30 * time.Second

// User-facing fallback messages.
const (
	FetchFailedMessage = "Error fetching results. Please try again."
	SaveFailedMessage  = "Failed to save search. Please try again."
	LoginMessage       = "Please log in to continue"
	AlreadySavedMsg    = "Search already saved"
)

var (
	// ErrUnauthenticated is returned when an action needs an auth token and
	// none is stored. No network call is made.
	ErrUnauthenticated = errors.New("please log in to continue")

	// ErrEmptyQuery is the validation error for a blank search query.
	ErrEmptyQuery = &ValidationError{Field: "query", Message: "Please enter a search query"}

	// ErrEmptyName is the validation error for a blank saved search name.
	ErrEmptyName = &ValidationError{Field: "name", Message: "Please enter a name for your search"}
)

// ValidationError is a local input error. It never reaches the network.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// RateLimitedError reports that the backend budget is exhausted.
type RateLimitedError struct {
	RetryAfter time.Duration
}

// Seconds returns the wait rounded up to whole seconds.
func (e *RateLimitedError) Seconds() int {
	return int(math.Ceil(e.RetryAfter.Seconds()))
}

func (e *RateLimitedError) Error() string {
	return fmt.Sprintf("Rate limit exceeded. Try again in %d seconds.", e.Seconds())
}

// HTTPError is a non-2xx response other than 429.
type HTTPError struct {
	Status  int
	Message string
}

func (e *HTTPError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("HTTP error! status: %d: %s", e.Status, e.Message)
	}
	return fmt.Sprintf("HTTP error! status: %d", e.Status)
}

// NetworkError is a transport or decoding failure.
type NetworkError struct {
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("network error: %v", e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// DuplicateSaveError reports that the server already holds an identically
// named or identically specified search. Message is shown verbatim.
type DuplicateSaveError struct {
	Message string
}

func (e *DuplicateSaveError) Error() string {
	if e.Message == "" {
		return AlreadySavedMsg
	}
	return e.Message
}

// SaveFailedError is any save failure that is not a duplicate.
type SaveFailedError struct {
	Status int
	Detail string
	Err    error
}

func (e *SaveFailedError) Error() string {
	switch {
	case e.Err != nil:
		return fmt.Sprintf("saving search: %v", e.Err)
	case e.Detail != "":
		return fmt.Sprintf("saving search: status %d: %s", e.Status, e.Detail)
	default:
		return fmt.Sprintf("saving search: status %d", e.Status)
	}
}

func (e *SaveFailedError) Unwrap() error {
	return e.Err
}

// UserMessage returns the text a presentation layer shows for err.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}

	var (
		validation  *ValidationError
		rateLimited *RateLimitedError
		duplicate   *DuplicateSaveError
		saveFailed  *SaveFailedError
		httpErr     *HTTPError
		netErr      *NetworkError
	)

	switch {
	case errors.Is(err, ErrUnauthenticated):
		return LoginMessage
	case errors.As(err, &validation):
		return validation.Message
	case errors.As(err, &rateLimited):
		return rateLimited.Error()
	case errors.As(err, &duplicate):
		return duplicate.Error()
	case errors.As(err, &saveFailed):
		return SaveFailedMessage
	case errors.As(err, &httpErr), errors.As(err, &netErr):
		return FetchFailedMessage
	default:
		return FetchFailedMessage
	}
}
