// SPDX-License-Identifier: EPL-2.0

package mix

import "github.com/ik5/audedit/utils"

// Settings control one channel strip of an overdub group. The same values
// drive live monitoring playback and offline mixdown, which therefore
// resolve to identical gains by construction.
type Settings struct {
	Volume float64 // 0..1
	Pan    float64 // -1 (hard left) .. 1 (hard right)
	Muted  bool
	Solo   bool
}

// EffectiveVolumes resolves solo and mute across a whole group: if any
// strip is soloed, every non-solo strip resolves to exactly 0 regardless
// of its own volume or mute; otherwise muted strips resolve to 0 and the
// rest keep their configured volume.
func EffectiveVolumes(group []Settings) []float64 {
	anySolo := false
	for _, s := range group {
		if s.Solo {
			anySolo = true
			break
		}
	}

	out := make([]float64, len(group))
	for i, s := range group {
		switch {
		case anySolo && !s.Solo:
			out[i] = 0
		case s.Muted && !anySolo:
			out[i] = 0
		default:
			out[i] = utils.Clamp(s.Volume, 0, 1)
		}
	}

	return out
}

// PanGains maps an effective volume and pan position to left/right gains
// using constant-gain-center panning: center plays both sides at full
// volume, panning attenuates only the far side.
func PanGains(volume, pan float64) (left, right float64) {
	pan = utils.Clamp(pan, -1, 1)

	left = volume
	right = volume
	if pan > 0 {
		left = volume * (1 - pan)
	}
	if pan < 0 {
		right = volume * (1 + pan)
	}

	return left, right
}
