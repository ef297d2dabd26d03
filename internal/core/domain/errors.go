package domain

import "errors"

var (
	// ErrInvalidInput marks missing or malformed coordinates.
	ErrInvalidInput = errors.New("invalid input")
	// ErrProviderFailure marks an unreachable, failing, or malformed routing/elevation provider.
	ErrProviderFailure = errors.New("provider failure")
	// ErrAlignmentMismatch marks an elevation series whose length differs from the sampled route.
	ErrAlignmentMismatch = errors.New("elevation series does not match sampled route")
)
