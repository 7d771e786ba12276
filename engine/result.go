// SPDX-License-Identifier: EPL-2.0

package engine

import "time"

// Result describes a finished edit operation. A Result is only returned
// alongside a nil error; on failure the source file is untouched and any
// partial output has been discarded by the caller.
type Result struct {
	// OutputPath is where the edited audio was written. Empty for
	// operations running on caller-provided sinks.
	OutputPath string

	// Duration of the output audio.
	Duration time.Duration

	// RemovedRanges and RemovedDuration are populated by silence removal.
	RemovedRanges   int
	RemovedDuration time.Duration
}
