// Package fragment contains the service fragment registry: parsing of
// catalog fragment files and stable-order selection.
// This is part of the Functional Core - all functions are pure with no I/O.
package fragment

import (
	"errors"
	"fmt"
)

// =============================================================================
// Error Types
// =============================================================================

var (
	// ErrMalformedFragment is returned when a fragment file is not a
	// well-formed structural document.
	ErrMalformedFragment = errors.New("malformed fragment")

	// ErrDuplicateServiceID is returned when two fragments share a
	// service identifier.
	ErrDuplicateServiceID = errors.New("duplicate service identifier")

	// ErrUnknownService is returned when a selection names a service
	// identifier that is not in the catalog.
	ErrUnknownService = errors.New("unknown service identifier")
)

// FragmentError wraps errors with context about the offending fragment.
type FragmentError struct {
	Source  string // fragment file, e.g. "nextcloud/service.yml"
	Service string // service identifier, if known
	Message string
	Err     error
}

func (e *FragmentError) Error() string {
	switch {
	case e.Source != "" && e.Service != "":
		return fmt.Sprintf("%s: service %q: %s", e.Source, e.Service, e.Message)
	case e.Source != "":
		return fmt.Sprintf("%s: %s", e.Source, e.Message)
	case e.Service != "":
		return fmt.Sprintf("service %q: %s", e.Service, e.Message)
	default:
		return e.Message
	}
}

func (e *FragmentError) Unwrap() error {
	return e.Err
}

// NewFragmentError creates a new FragmentError.
func NewFragmentError(source, service, message string, err error) *FragmentError {
	return &FragmentError{
		Source:  source,
		Service: service,
		Message: message,
		Err:     err,
	}
}
