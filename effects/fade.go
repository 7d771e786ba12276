// SPDX-License-Identifier: EPL-2.0

package effects

import (
	"math"
	"time"
)

// Curve selects the gain trajectory of a fade window.
type Curve int

const (
	CurveLinear Curve = iota
	CurveSCurve
	CurveExponential
	CurveLogarithmic
)

// expDenominator is e^4 - 1, caching the curve's normalization constant.
var expDenominator = math.Exp(4) - 1

// logDenominator is ln(54); the 53x argument is tuned so the logarithmic
// curve mirrors the steepness of the exponential one.
var logDenominator = math.Log(54)

// Gain evaluates the curve at t in [0,1]. All curves satisfy Gain(0)=0 and
// Gain(1)=1 and are monotonically non-decreasing. A fade-out evaluates
// Gain(1-t).
func (c Curve) Gain(t float64) float64 {
	t = clamp(t, 0, 1)

	switch c {
	case CurveSCurve:
		// Quintic smootherstep: continuous first and second derivative,
		// no audible knee at the window edges.
		return t * t * t * (t*(t*6-15) + 10)
	case CurveExponential:
		return (math.Exp(4*t) - 1) / expDenominator
	case CurveLogarithmic:
		return math.Log(1+53*t) / logDenominator
	default:
		return t
	}
}

// Fade applies fade-in and/or fade-out windows over a stream of known
// length. Overlapping windows multiply their gains.
type Fade struct {
	channels  int
	curve     Curve
	inFrames  int64
	outStart  int64
	outFrames int64
	pos       int64 // absolute frame position within the stream
}

// NewFade builds a fade processor for a stream of totalFrames frames.
// Either duration may be zero to disable that window; durations longer
// than the stream are clamped to it.
func NewFade(sampleRate, channels int, totalFrames int64, fadeIn, fadeOut time.Duration, curve Curve) *Fade {
	inFrames := int64(fadeIn.Seconds() * float64(sampleRate))
	outFrames := int64(fadeOut.Seconds() * float64(sampleRate))

	if inFrames > totalFrames {
		inFrames = totalFrames
	}
	if outFrames > totalFrames {
		outFrames = totalFrames
	}

	return &Fade{
		channels:  channels,
		curve:     curve,
		inFrames:  inFrames,
		outStart:  totalFrames - outFrames,
		outFrames: outFrames,
	}
}

func (f *Fade) Tail() int { return 0 }

func (f *Fade) Process(buf []float32) {
	frames := len(buf) / f.channels

	for i := 0; i < frames; i++ {
		gain := 1.0
		frame := f.pos + int64(i)

		if frame < f.inFrames {
			gain *= f.curve.Gain(float64(frame) / float64(f.inFrames))
		}
		if f.outFrames > 0 && frame >= f.outStart {
			t := float64(frame-f.outStart) / float64(f.outFrames)
			gain *= f.curve.Gain(1 - t)
		}

		if gain == 1.0 {
			continue
		}

		g := float32(gain)
		base := i * f.channels
		for c := 0; c < f.channels; c++ {
			buf[base+c] *= g
		}
	}

	f.pos += int64(frames)
}
