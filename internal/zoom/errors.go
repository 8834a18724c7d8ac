package zoom

import "errors"

var (
	// ErrUpstreamAuth marks a failed credential exchange. Fatal for the
	// current request; callers must not retry inline.
	ErrUpstreamAuth = errors.New("upstream auth failed")

	// ErrUpstreamRequest marks a network or HTTP failure during a
	// paginated fetch. Retry policy belongs to the caller.
	ErrUpstreamRequest = errors.New("upstream request failed")
)
