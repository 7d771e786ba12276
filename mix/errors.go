// SPDX-License-Identifier: EPL-2.0

package mix

import "errors"

var (
	ErrNoTracks     = errors.New("mix group has no tracks")
	ErrOutputFormat = errors.New("mix output must be stereo at the base rate")
)
