// SPDX-License-Identifier: EPL-2.0

package loudness

import (
	"fmt"
	"io"

	"github.com/ik5/audedit/audio"
	"github.com/ik5/audedit/utils"
)

// MeasurePeak scans src to its end and returns the maximum absolute sample
// value (linear). With truePeak set, the scan also evaluates 4x-oversampled
// inter-sample points via Catmull-Rom cubic interpolation, per the ITU-R
// BS.1770 true-peak guidance, catching overshoot that lands between
// samples.
func MeasurePeak(src audio.Source, truePeak bool) (float64, error) {
	channels := src.Channels()
	buf := make([]float32, 4096*channels)

	// Last three samples per channel so interpolation windows can span
	// chunk boundaries.
	history := make([][3]float32, channels)
	warm := 0

	peak := float32(0)
	note := func(v float32) {
		if v < 0 {
			v = -v
		}
		if v > peak {
			peak = v
		}
	}

	for {
		n, err := src.ReadSamples(buf)

		frames := n / channels
		for i := 0; i < frames; i++ {
			base := i * channels
			for c := 0; c < channels; c++ {
				s := buf[base+c]
				note(s)

				if truePeak && warm >= 3 {
					h := &history[c]
					for _, x := range [3]float32{0.25, 0.5, 0.75} {
						note(utils.CubicInterpolate(h[0], h[1], h[2], s, x))
					}
				}

				history[c][0] = history[c][1]
				history[c][1] = history[c][2]
				history[c][2] = s
			}
			warm++
		}

		if err == io.EOF {
			return float64(peak), nil
		}
		if err != nil {
			return 0, fmt.Errorf("peak scan: %w", err)
		}
	}
}
