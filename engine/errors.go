// SPDX-License-Identifier: EPL-2.0

package engine

import "errors"

var (
	// ErrInvalidRange reports a malformed time range (end <= start) or a
	// range rejected before any I/O took place.
	ErrInvalidRange = errors.New("invalid time range")

	// ErrFormatMismatch reports source/sink streams that cannot be
	// combined (differing sample rate or channel count).
	ErrFormatMismatch = errors.New("incompatible sample format")

	// ErrInsufficientSpace reports a failed storage pre-check.
	ErrInsufficientSpace = errors.New("insufficient storage space")
)
