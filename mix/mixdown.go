// SPDX-License-Identifier: EPL-2.0

package mix

import (
	"fmt"
	"io"

	"github.com/ik5/audedit/audio"
)

// mixdownChunkFrames bounds per-iteration memory of the offline mixdown.
const mixdownChunkFrames = 32768

// Mixdown renders the base track plus layers into dst offline. The output
// format is fixed by contract: stereo, sample rate inherited from the base
// track (the WAV sink writes 16-bit PCM). The base track's offset is
// forced to zero; layers keep their own offsets.
//
// The summation applies each strip's effective volume and pan gains and
// nothing else, no compression and no limiting. Returns frames written.
func Mixdown(dst audio.Sink, base Track, layers []Track) (int64, error) {
	rate := base.Source.SampleRate()
	if dst.Channels() != 2 || dst.SampleRate() != rate {
		return 0, ErrOutputFormat
	}

	base.Offset = 0
	base.Loop = false

	tracks := append([]Track{base}, layers...)
	for i := range tracks {
		// Loops are a live-monitoring concept; offline output is finite.
		tracks[i].Loop = false
	}
	r, err := NewRenderer(rate, tracks)
	if err != nil {
		return 0, err
	}
	defer r.Close()

	buf := make([]float32, mixdownChunkFrames*2)
	var frames int64

	for {
		n, err := r.ReadSamples(buf)
		if n > 0 {
			if _, werr := dst.WriteSamples(buf[:n]); werr != nil {
				return frames, fmt.Errorf("write mix: %w", werr)
			}
			frames += int64(n / 2)
		}

		if err == io.EOF {
			return frames, nil
		}
		if err != nil {
			return frames, fmt.Errorf("render mix: %w", err)
		}
	}
}
