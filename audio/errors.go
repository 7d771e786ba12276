// SPDX-License-Identifier: EPL-2.0

package audio

import "errors"

var (
	ErrInvalidDstSize = errors.New("dst size must be multiple of channels")
	ErrSeekOutOfRange = errors.New("seek position outside stream")
	ErrClosed         = errors.New("stream is closed")
)
