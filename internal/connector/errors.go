package connector

import (
	"errors"
	"fmt"
)

// Error taxonomy for the acquisition pipeline.
//
// Every tier-local error is caught by the tier driver and converted into
// fallthrough; these sentinels exist so logs and tests can tell the failure
// classes apart, not so callers can see them.
var (
	// ErrInvalidCredential marks missing or malformed key material. It fails
	// a tier immediately, before any network call.
	ErrInvalidCredential = errors.New("invalid credential")

	// ErrTransport marks a network or HTTP failure on a venue endpoint.
	ErrTransport = errors.New("transport failure")

	// ErrMalformedResponse marks an unexpected payload shape. It wraps
	// ErrTransport so the two classes fall through identically.
	ErrMalformedResponse = fmt.Errorf("malformed response: %w", ErrTransport)
)

// transportErr wraps err as a transport failure for the given operation.
func transportErr(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, ErrTransport, err)
}

// statusErr builds a transport failure for a non-2xx venue response.
func statusErr(op string, status int) error {
	return fmt.Errorf("%s: %w: unexpected status %d", op, ErrTransport, status)
}

// malformedErr wraps a decode failure for the given operation.
func malformedErr(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, ErrMalformedResponse, err)
}
