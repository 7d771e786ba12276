// SPDX-License-Identifier: EPL-2.0

package overdub

import "errors"

var (
	// ErrHeadphonesRequired refuses to start recording without active
	// headphone monitoring, since open speakers would echo back into the
	// capture.
	ErrHeadphonesRequired = errors.New("headphone monitoring required for recording")

	// ErrInterrupted marks a capture that was truncated by an external
	// interruption. The partial file is valid and fully flushed.
	ErrInterrupted = errors.New("recording interrupted")

	// ErrInvalidState rejects a transition the state machine does not
	// allow (e.g., recording while idle).
	ErrInvalidState = errors.New("invalid session state for operation")
)
