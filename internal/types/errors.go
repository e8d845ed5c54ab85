package types

import (
	"errors"
	"fmt"
)

// Sentinel errors for common failure modes.
var (
	ErrTimeout         = errors.New("request timed out")
	ErrEmptyBody       = errors.New("empty response body")
	ErrInvalidURL      = errors.New("invalid URL")
	ErrPriceNotFound   = errors.New("price not found")
	ErrInvalidPrice    = errors.New("price contains no digits")
	ErrRecordNotFound  = errors.New("price record not found")
	ErrProductNotFound = errors.New("product not found")
	ErrUserExists      = errors.New("user already exists")
	ErrUserNotFound    = errors.New("user not found")
)

// FetchError wraps errors that occur while fetching a product page.
type FetchError struct {
	URL        string
	StatusCode int
	Err        error
}

func (e *FetchError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("fetch error for %s (status %d): %v", e.URL, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("fetch error for %s: %v", e.URL, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// Timeout reports whether the fetch failed because the deadline elapsed.
func (e *FetchError) Timeout() bool { return errors.Is(e.Err, ErrTimeout) }

// ParseError wraps errors that occur while parsing fetched markup.
type ParseError struct {
	URL string
	Err error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse error for %s: %v", e.URL, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// StoreError wraps errors that occur in a storage backend.
type StoreError struct {
	Backend string
	Err     error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("store error (%s): %v", e.Backend, e.Err)
}

func (e *StoreError) Unwrap() error { return e.Err }
