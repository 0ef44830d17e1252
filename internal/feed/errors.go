package feed

import (
	"errors"
	"fmt"
)

var ErrInvalidPage = errors.New("page must be >= 1")

// FetchError is returned by LoadPage for every failure: transport errors,
// non-2xx responses and malformed bodies (which also wrap a *ParseError).
type FetchError struct {
	Page   int
	Status int // 0 when no response was received
	Err    error
}

func (e *FetchError) Error() string {
	switch {
	case e.Status != 0 && e.Err != nil:
		return fmt.Sprintf("fetch page %d: status %d: %v", e.Page, e.Status, e.Err)
	case e.Status != 0:
		return fmt.Sprintf("fetch page %d: status %d", e.Page, e.Status)
	default:
		return fmt.Sprintf("fetch page %d: %v", e.Page, e.Err)
	}
}

func (e *FetchError) Unwrap() error { return e.Err }

// ParseError means the body was not JSON or had no usable results array.
type ParseError struct {
	Reason string
	Err    error
}

func (e *ParseError) Error() string {
	if e.Err != nil {
		return "parse jobs response: " + e.Reason + ": " + e.Err.Error()
	}
	return "parse jobs response: " + e.Reason
}

func (e *ParseError) Unwrap() error { return e.Err }
