// SPDX-License-Identifier: EPL-2.0

package effects

import "math"

// EqualPowerGains returns the fade-out and fade-in gains for progress t in
// [0,1] of an equal-power (sqrt law) crossfade. The squared gains sum to 1
// at every point, so the blend holds perceived loudness through the splice
// where a linear crossfade would dip by 3 dB at the midpoint.
func EqualPowerGains(t float64) (out, in float64) {
	t = clamp(t, 0, 1)
	return math.Sqrt(1 - t), math.Sqrt(t)
}

// BlendEqualPower writes an equal-power blend of two equally long
// interleaved segments into dst. The crossfade progresses from all-before
// at the first frame to all-after at the last. dst may alias before.
func BlendEqualPower(dst, before, after []float32, channels int) {
	frames := len(before) / channels
	if frames == 0 {
		return
	}

	for i := 0; i < frames; i++ {
		t := 0.5
		if frames > 1 {
			t = float64(i) / float64(frames-1)
		}
		gOut, gIn := EqualPowerGains(t)

		base := i * channels
		for c := 0; c < channels; c++ {
			dst[base+c] = before[base+c]*float32(gOut) + after[base+c]*float32(gIn)
		}
	}
}
