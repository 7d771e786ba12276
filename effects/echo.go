// SPDX-License-Identifier: EPL-2.0

package effects

import (
	"math"
	"time"
)

// EchoParams configures the feedback delay.
type EchoParams struct {
	Delay    time.Duration // echo spacing, 10ms..2s
	Feedback float64       // 0..0.95, gain of each repeat
	Damping  float64       // 0..1, high-frequency loss per repeat
	Mix      float64       // dry/wet, 0..1; zero means 0.5
	MaxTail  time.Duration // cap on the rendered tail; 0 means DefaultEchoTailCap
}

// DefaultEchoTailCap bounds echo tail rendering. Like the reverb cap it is
// a tunable resource bound, not an audio constant.
const DefaultEchoTailCap = 10 * time.Second

// Echo is a per-channel delay line with a damped feedback path. The tail
// extends until the repeats decay to -60 dB of the feedback curve, capped
// by MaxTail.
type Echo struct {
	channels int
	mix      float32
	feedback float32
	damp     float32

	lines [][]float32 // one delay line per channel
	pos   int
	store []float32 // damping filter state per channel

	tail int
}

func NewEcho(sampleRate, channels int, p EchoParams) *Echo {
	delay := p.Delay.Seconds()
	delay = clamp(delay, 0.01, 2)
	p.Feedback = clamp(p.Feedback, 0, 0.95)
	p.Damping = clamp(p.Damping, 0, 1)
	if p.Mix == 0 {
		p.Mix = 0.5
	}
	p.Mix = clamp(p.Mix, 0, 1)

	maxTail := p.MaxTail
	if maxTail <= 0 {
		maxTail = DefaultEchoTailCap
	}

	rate := float64(sampleRate)
	length := int(delay * rate)
	if length < 1 {
		length = 1
	}

	lines := make([][]float32, channels)
	for c := range lines {
		lines[c] = make([]float32, length)
	}

	// Repeats until the feedback chain falls below -60 dB.
	tailSec := 0.0
	if p.Feedback > 0 {
		repeats := math.Ceil(-60 / (20 * math.Log10(p.Feedback)))
		tailSec = repeats * delay
	}
	if limit := maxTail.Seconds(); tailSec > limit {
		tailSec = limit
	}

	return &Echo{
		channels: channels,
		mix:      float32(p.Mix),
		feedback: float32(p.Feedback),
		damp:     float32(p.Damping),
		lines:    lines,
		store:    make([]float32, channels),
		tail:     int(tailSec * rate),
	}
}

func (e *Echo) Tail() int { return e.tail }

func (e *Echo) Process(buf []float32) {
	frames := len(buf) / e.channels
	dry := 1 - e.mix

	for i := 0; i < frames; i++ {
		base := i * e.channels

		for c := 0; c < e.channels; c++ {
			in := buf[base+c]
			delayed := e.lines[c][e.pos]

			// One-pole low-pass in the feedback path.
			e.store[c] = delayed*(1-e.damp) + e.store[c]*e.damp
			e.lines[c][e.pos] = in + e.store[c]*e.feedback

			buf[base+c] = in*dry + delayed*e.mix
		}

		e.pos++
		if e.pos >= len(e.lines[0]) {
			e.pos = 0
		}
	}
}
