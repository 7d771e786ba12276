// SPDX-License-Identifier: EPL-2.0

package effects

import (
	"math"
	"time"
)

// ReverbParams configures the Freeverb-style reverb.
type ReverbParams struct {
	RoomSize float64       // 0..1, scales the comb delay lengths
	PreDelay time.Duration // 0..200ms gap before the first reflection
	Decay    time.Duration // RT60 target, 100ms..20s
	Damping  float64       // 0..1, high-frequency absorption in the feedback path
	Mix      float64       // dry/wet, 0..1; zero means 0.3
	MaxTail  time.Duration // cap on the rendered tail; 0 means DefaultReverbTailCap
}

// DefaultReverbTailCap bounds reverb tail rendering. It is a pragmatic
// memory/time bound, not an acoustic constant; callers can override it via
// ReverbParams.MaxTail.
const DefaultReverbTailCap = 5 * time.Second

// Comb delay lengths in samples at 44.1 kHz, from the classic Freeverb
// tuning. Mutually non-harmonic so the resonances stay dense.
var combTuning = [8]int{1116, 1188, 1277, 1356, 1422, 1491, 1557, 1617}

// Allpass delay lengths at 44.1 kHz, also Freeverb's.
var allpassTuning = [4]int{556, 441, 341, 225}

// stereoSpread offsets the right-channel delay lengths to decorrelate the
// two outputs.
const stereoSpread = 23

type comb struct {
	buf      []float32
	pos      int
	feedback float32
	damp     float32
	store    float32 // one-pole damping filter state
}

func newComb(length int, feedback, damp float64) comb {
	if length < 1 {
		length = 1
	}
	return comb{
		buf:      make([]float32, length),
		feedback: float32(feedback),
		damp:     float32(damp),
	}
}

func (c *comb) process(in float32) float32 {
	out := c.buf[c.pos]
	c.store = out*(1-c.damp) + c.store*c.damp
	c.buf[c.pos] = in + c.store*c.feedback
	c.pos++
	if c.pos >= len(c.buf) {
		c.pos = 0
	}
	return out
}

type allpass struct {
	buf []float32
	pos int
}

func newAllpass(length int) allpass {
	if length < 1 {
		length = 1
	}
	return allpass{buf: make([]float32, length)}
}

func (a *allpass) process(in float32) float32 {
	const feedback = 0.5

	delayed := a.buf[a.pos]
	out := -in + delayed
	a.buf[a.pos] = in + delayed*feedback
	a.pos++
	if a.pos >= len(a.buf) {
		a.pos = 0
	}
	return out
}

// Reverb is a Freeverb-style physical reverb: the mono-summed input runs
// through a pre-delay line, eight parallel damped comb filters and four
// series allpass diffusers per output channel. Comb feedback is derived
// from the RT60 decay target, so longer Decay settings ring longer.
type Reverb struct {
	channels int
	mix      float32

	pre    []float32 // pre-delay ring buffer (mono)
	prePos int

	combs   [2][8]comb
	allpass [2][4]allpass

	tail int
}

func NewReverb(sampleRate, channels int, p ReverbParams) *Reverb {
	p.RoomSize = clamp(p.RoomSize, 0, 1)
	p.Damping = clamp(p.Damping, 0, 1)
	if p.Mix == 0 {
		p.Mix = 0.3
	}
	p.Mix = clamp(p.Mix, 0, 1)

	decay := p.Decay.Seconds()
	decay = clamp(decay, 0.1, 20)

	maxTail := p.MaxTail
	if maxTail <= 0 {
		maxTail = DefaultReverbTailCap
	}

	rate := float64(sampleRate)
	// Room size stretches the comb lengths; 0.5 reproduces the reference
	// tuning, the extremes cover a small booth up to a hall.
	scale := rate / 44100 * (0.6 + 0.8*p.RoomSize)

	preFrames := int(p.PreDelay.Seconds() * rate)
	if preFrames > int(0.2*rate) {
		preFrames = int(0.2 * rate)
	}
	if preFrames < 1 {
		preFrames = 1
	}

	r := &Reverb{
		channels: channels,
		mix:      float32(p.Mix),
		pre:      make([]float32, preFrames),
	}

	outs := 1
	if channels >= 2 {
		outs = 2
	}

	for side := 0; side < outs; side++ {
		offset := side * stereoSpread
		for i := range r.combs[side] {
			length := int(float64(combTuning[i])*scale) + offset
			// feedback = 10^(-3*delaySeconds/RT60) hits -60 dB after RT60.
			fb := math.Pow(10, -3*float64(length)/rate/decay)
			if fb > 0.98 {
				fb = 0.98
			}
			r.combs[side][i] = newComb(length, fb, p.Damping*0.4+0.2)
		}
		for i := range r.allpass[side] {
			length := int(float64(allpassTuning[i])*rate/44100) + offset
			r.allpass[side][i] = newAllpass(length)
		}
	}

	tailSec := decay
	if limit := maxTail.Seconds(); tailSec > limit {
		tailSec = limit
	}
	r.tail = int(tailSec * rate)

	return r
}

func (r *Reverb) Tail() int { return r.tail }

func (r *Reverb) renderSide(side int, in float32) float32 {
	out := float32(0)
	for i := range r.combs[side] {
		out += r.combs[side][i].process(in)
	}
	out *= 1.0 / 8
	for i := range r.allpass[side] {
		out = r.allpass[side][i].process(out)
	}
	return out
}

func (r *Reverb) Process(buf []float32) {
	frames := len(buf) / r.channels
	dry := 1 - r.mix

	for i := 0; i < frames; i++ {
		base := i * r.channels

		mono := float32(0)
		for c := 0; c < r.channels; c++ {
			mono += buf[base+c]
		}
		mono /= float32(r.channels)

		// Pre-delay.
		delayed := r.pre[r.prePos]
		r.pre[r.prePos] = mono
		r.prePos++
		if r.prePos >= len(r.pre) {
			r.prePos = 0
		}

		if r.channels == 1 {
			wet := r.renderSide(0, delayed)
			buf[base] = buf[base]*dry + wet*r.mix
			continue
		}

		wetL := r.renderSide(0, delayed)
		wetR := r.renderSide(1, delayed)
		buf[base] = buf[base]*dry + wetL*r.mix
		buf[base+1] = buf[base+1]*dry + wetR*r.mix
		for c := 2; c < r.channels; c++ {
			buf[base+c] *= dry
		}
	}
}
