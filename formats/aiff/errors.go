// SPDX-License-Identifier: EPL-2.0

package aiff

import "errors"

var (
	ErrNotAiffFile           = errors.New("not an AIFF file")
	ErrOnlyPCM16bitSupported = errors.New("only 16-bit PCM AIFF is supported")

	// ErrUnsupportedAiffLayout covers valid containers whose chunk layout
	// the decoder cannot walk.
	ErrUnsupportedAiffLayout = errors.New("unsupported AIFF layout")
)
