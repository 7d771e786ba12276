// SPDX-License-Identifier: EPL-2.0

package effects

// Gain scales every sample by a fixed linear factor. The normalize
// operations use it as their pass-2 processor; soft clipping guards the
// case where a large computed gain would push peaks past full scale.
type Gain struct {
	factor   float32
	softClip bool
}

func NewGain(factor float64, softClip bool) *Gain {
	return &Gain{factor: float32(factor), softClip: softClip}
}

func (g *Gain) Tail() int { return 0 }

func (g *Gain) Process(buf []float32) {
	if g.softClip {
		for i := range buf {
			buf[i] = SoftClip(buf[i] * g.factor)
		}
		return
	}

	for i := range buf {
		buf[i] *= g.factor
	}
}
