// SPDX-License-Identifier: EPL-2.0

package audedit

import "errors"

var (
	// ErrUnknownFormat is returned by Open for a file extension no
	// registered decoder claims.
	ErrUnknownFormat = errors.New("unknown audio format")
)
