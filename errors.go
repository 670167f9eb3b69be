package islet

import (
	"errors"
	"fmt"
)

// Sentinel errors for navigation and hydration.
var (
	ErrMissingLandmark  = errors.New("islet: main landmark not found")
	ErrMissingContainer = errors.New("islet: content container not found")
	ErrNotRegistered    = errors.New("islet: component not registered")
	ErrInvalidSnapshot  = errors.New("islet: invalid session snapshot")
)

var errNoClipboard = errors.New("islet: no clipboard configured")

// FetchError reports a partial or page fetch that completed with a
// non-success HTTP status. The controller recovers from it by falling back
// to a full-document load; embedders mostly see it from Fetcher directly.
type FetchError struct {
	Status int
	URL    string
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("islet: fetch %s: status %d", e.URL, e.Status)
}

// IsFetchError checks if err is a FetchError, returning it for status
// inspection.
func IsFetchError(err error) (*FetchError, bool) {
	var fe *FetchError
	if errors.As(err, &fe) {
		return fe, true
	}
	return nil, false
}

// IsStructural checks if err is a missing-DOM-anchor failure (no landmark
// or no content container). These are precondition failures of the host
// page, not of the destination.
func IsStructural(err error) bool {
	return errors.Is(err, ErrMissingLandmark) || errors.Is(err, ErrMissingContainer)
}
