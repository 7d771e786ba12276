// SPDX-License-Identifier: EPL-2.0

package effects

import "math"

// Biquad is a second-order IIR filter in transposed direct form II. The
// two delay taps are the only state, so one instance per channel streams
// cleanly across chunk boundaries.
type Biquad struct {
	b0, b1, b2 float64
	a1, a2     float64

	z1, z2 float64
}

func (f *Biquad) Process(x float64) float64 {
	y := f.b0*x + f.z1
	f.z1 = f.b1*x - f.a1*y + f.z2
	f.z2 = f.b2*x - f.a2*y
	return y
}

func (f *Biquad) Reset() {
	f.z1 = 0
	f.z2 = 0
}

// NewHighShelf designs a high-shelf filter at freq Hz with gainDB lift and
// quality q, using the bilinear transform with frequency pre-warping so the
// response is exact at freq for any sample rate.
func NewHighShelf(sampleRate, freq, gainDB, q float64) *Biquad {
	a := math.Pow(10, gainDB/40)
	w0 := 2 * math.Pi * freq / sampleRate
	cosW0 := math.Cos(w0)
	alpha := math.Sin(w0) / (2 * q)
	sqrtA := math.Sqrt(a)

	b0 := a * ((a + 1) + (a-1)*cosW0 + 2*sqrtA*alpha)
	b1 := -2 * a * ((a - 1) + (a+1)*cosW0)
	b2 := a * ((a + 1) + (a-1)*cosW0 - 2*sqrtA*alpha)
	a0 := (a + 1) - (a-1)*cosW0 + 2*sqrtA*alpha
	a1 := 2 * ((a - 1) - (a+1)*cosW0)
	a2 := (a + 1) - (a-1)*cosW0 - 2*sqrtA*alpha

	return &Biquad{
		b0: b0 / a0, b1: b1 / a0, b2: b2 / a0,
		a1: a1 / a0, a2: a2 / a0,
	}
}

// NewHighPass designs a second-order high-pass at freq Hz with quality q,
// pre-warped like NewHighShelf.
func NewHighPass(sampleRate, freq, q float64) *Biquad {
	w0 := 2 * math.Pi * freq / sampleRate
	cosW0 := math.Cos(w0)
	alpha := math.Sin(w0) / (2 * q)

	b0 := (1 + cosW0) / 2
	b1 := -(1 + cosW0)
	b2 := (1 + cosW0) / 2
	a0 := 1 + alpha
	a1 := -2 * cosW0
	a2 := 1 - alpha

	return &Biquad{
		b0: b0 / a0, b1: b1 / a0, b2: b2 / a0,
		a1: a1 / a0, a2: a2 / a0,
	}
}

// ITU-R BS.1770-4 K-weighting design parameters. The reference tables in
// the recommendation are the 48 kHz evaluation of these analog prototypes;
// deriving from the prototypes keeps the filters correct at every rate.
const (
	kShelfFreq = 1681.9744509555319
	kShelfGain = 3.99984385397
	kShelfQ    = 0.7071752369554196

	kHighPassFreq = 38.13547087602444
	kHighPassQ    = 0.5003270373238773
)

// NewKWeighting returns the two-stage K-weighting cascade for one channel:
// the "head effect" high shelf (+4 dB above ~1.68 kHz) followed by the RLB
// high-pass (~38 Hz).
func NewKWeighting(sampleRate float64) (shelf, highpass *Biquad) {
	return NewHighShelf(sampleRate, kShelfFreq, kShelfGain, kShelfQ),
		NewHighPass(sampleRate, kHighPassFreq, kHighPassQ)
}
