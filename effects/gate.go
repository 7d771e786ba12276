// SPDX-License-Identifier: EPL-2.0

package effects

import (
	"time"

	"github.com/ik5/audedit/utils"
)

// GateParams configures a noise gate. Values are clamped to the documented
// ranges at construction.
type GateParams struct {
	ThresholdDB float64       // open threshold, -80..0 dBFS
	Attack      time.Duration // gain ramp toward open
	Release     time.Duration // gain ramp toward closed
	Hold        time.Duration // time the gate stays open after the level drops
	FloorDB     float64       // closed gain; zero means a hard mute, above -80 keeps a duck
}

// Gate is a linked-stereo noise gate: detection uses the loudest channel of
// each frame so stereo content never gets one-sided chatter. Gain ramps
// linearly toward open (1.0) or the floor gain at rates derived from the
// attack and release times.
type Gate struct {
	channels    int
	threshold   float32
	floorGain   float64
	attackStep  float64
	releaseStep float64
	holdFrames  int

	gain float64
	hold int
	open bool
}

func NewGate(sampleRate, channels int, p GateParams) *Gate {
	p.ThresholdDB = clamp(p.ThresholdDB, -80, 0)
	if p.FloorDB == 0 {
		p.FloorDB = -80
	}
	p.FloorDB = clamp(p.FloorDB, -80, 0)

	rate := float64(sampleRate)
	attackFrames := p.Attack.Seconds() * rate
	releaseFrames := p.Release.Seconds() * rate
	if attackFrames < 1 {
		attackFrames = 1
	}
	if releaseFrames < 1 {
		releaseFrames = 1
	}

	floor := utils.DBToLinear(p.FloorDB)

	return &Gate{
		channels:    channels,
		threshold:   float32(utils.DBToLinear(p.ThresholdDB)),
		floorGain:   floor,
		attackStep:  (1 - floor) / attackFrames,
		releaseStep: (1 - floor) / releaseFrames,
		holdFrames:  int(p.Hold.Seconds() * rate),
		gain:        floor,
	}
}

func (g *Gate) Tail() int { return 0 }

func (g *Gate) Process(buf []float32) {
	frames := len(buf) / g.channels

	for i := 0; i < frames; i++ {
		base := i * g.channels

		level := float32(0)
		for c := 0; c < g.channels; c++ {
			v := buf[base+c]
			if v < 0 {
				v = -v
			}
			if v > level {
				level = v
			}
		}

		if level >= g.threshold {
			g.open = true
			g.hold = g.holdFrames
		} else if g.open {
			if g.hold > 0 {
				g.hold--
			} else {
				g.open = false
			}
		}

		if g.open {
			g.gain += g.attackStep
			if g.gain > 1 {
				g.gain = 1
			}
		} else {
			g.gain -= g.releaseStep
			if g.gain < g.floorGain {
				g.gain = g.floorGain
			}
		}

		gain := float32(g.gain)
		for c := 0; c < g.channels; c++ {
			buf[base+c] *= gain
		}
	}
}
