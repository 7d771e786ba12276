// SPDX-License-Identifier: EPL-2.0

package effects

import (
	"math"
	"time"

	"github.com/ik5/audedit/utils"
)

// CompressorParams configures the soft-knee compressor.
type CompressorParams struct {
	ThresholdDB float64       // -60..0 dBFS
	Ratio       float64       // 1..20, e.g., 4 for 4:1
	KneeDB      float64       // 0..24, width of the soft transition
	Attack      time.Duration // envelope attack
	Release     time.Duration // envelope release
	MakeupDB    float64       // user makeup gain on top of auto makeup, -12..24
	Mix         float64       // dry/wet, 0..1; zero means fully processed
}

// Compressor applies downward compression with a quadratic soft knee.
// Detection is linked-stereo (loudest channel per frame) feeding a one-pole
// exponential envelope; gain reduction is computed in the dB domain.
//
// Auto makeup estimates 60% of the reduction a signal sitting at the
// threshold would receive, keeping perceived loudness roughly stable
// without pumping quiet material. Output passes through a tanh soft-clip
// knee above 0.9 full scale so makeup gain cannot hard-clip.
type Compressor struct {
	channels    int
	thresholdDB float64
	ratio       float64
	kneeDB      float64
	attackCoef  float64
	releaseCoef float64
	makeup      float64
	mix         float64

	env float64 // linked envelope, linear level
}

func NewCompressor(sampleRate, channels int, p CompressorParams) *Compressor {
	p.ThresholdDB = clamp(p.ThresholdDB, -60, 0)
	p.Ratio = clamp(p.Ratio, 1, 20)
	p.KneeDB = clamp(p.KneeDB, 0, 24)
	p.MakeupDB = clamp(p.MakeupDB, -12, 24)
	if p.Mix == 0 {
		p.Mix = 1
	}
	p.Mix = clamp(p.Mix, 0, 1)

	rate := float64(sampleRate)
	attackSec := p.Attack.Seconds()
	releaseSec := p.Release.Seconds()
	if attackSec <= 0 {
		attackSec = 0.001
	}
	if releaseSec <= 0 {
		releaseSec = 0.01
	}

	// ~60% of the reduction expected right at the threshold.
	autoMakeupDB := -p.ThresholdDB * (1 - 1/p.Ratio) * 0.6

	return &Compressor{
		channels:    channels,
		thresholdDB: p.ThresholdDB,
		ratio:       p.Ratio,
		kneeDB:      p.KneeDB,
		attackCoef:  1 - math.Exp(-1/(attackSec*rate)),
		releaseCoef: 1 - math.Exp(-1/(releaseSec*rate)),
		makeup:      utils.DBToLinear(autoMakeupDB + p.MakeupDB),
		mix:         p.Mix,
	}
}

func (c *Compressor) Tail() int { return 0 }

// gainDB returns the gain reduction in dB for an input level in dB.
func (c *Compressor) gainDB(levelDB float64) float64 {
	lower := c.thresholdDB - c.kneeDB/2
	upper := c.thresholdDB + c.kneeDB/2

	switch {
	case levelDB <= lower:
		return 0
	case levelDB >= upper:
		// Full ratio: out = T + (in-T)/ratio.
		return c.thresholdDB + (levelDB-c.thresholdDB)/c.ratio - levelDB
	default:
		// Quadratic blend inside the knee.
		over := levelDB - lower
		return (1/c.ratio - 1) * over * over / (2 * c.kneeDB)
	}
}

func (c *Compressor) Process(buf []float32) {
	frames := len(buf) / c.channels

	for i := 0; i < frames; i++ {
		base := i * c.channels

		level := 0.0
		for ch := 0; ch < c.channels; ch++ {
			v := math.Abs(float64(buf[base+ch]))
			if v > level {
				level = v
			}
		}

		if level > c.env {
			c.env += c.attackCoef * (level - c.env)
		} else {
			c.env += c.releaseCoef * (level - c.env)
		}

		gain := utils.DBToLinear(c.gainDB(utils.LinearToDB(c.env))) * c.makeup

		for ch := 0; ch < c.channels; ch++ {
			dry := float64(buf[base+ch])
			wet := dry * gain
			buf[base+ch] = SoftClip(float32(dry*(1-c.mix) + wet*c.mix))
		}
	}
}

// SoftClip bends samples above 0.9 full scale through a tanh knee instead
// of letting them hard-clip at the converter. Linear below the knee.
func SoftClip(x float32) float32 {
	const knee = 0.9

	ax := x
	if ax < 0 {
		ax = -ax
	}
	if ax <= knee {
		return x
	}

	clipped := knee + (1-knee)*float32(math.Tanh(float64(ax-knee)/(1-knee)))
	if x < 0 {
		return -clipped
	}
	return clipped
}
