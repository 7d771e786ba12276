// SPDX-License-Identifier: EPL-2.0

package loudness

import (
	"fmt"
	"io"
	"math"

	"github.com/ik5/audedit/audio"
	"github.com/ik5/audedit/effects"
)

const (
	// loudnessOffset is the -0.691 LKFS calibration constant of ITU-R
	// BS.1770-4, which zeroes the K-weighting gain at 997 Hz.
	loudnessOffset = -0.691

	// absoluteGateLUFS discards blocks that are essentially silence.
	absoluteGateLUFS = -70

	// relativeGateLU sits below the ungated loudness for the second
	// gating stage.
	relativeGateLU = 10
)

// Silence is returned by MeasureLoudness when no block survives the
// absolute gate, meaning the program material is effectively silent.
var Silence = math.Inf(-1)

// MeasureLoudness computes the integrated loudness of src in LUFS per
// ITU-R BS.1770-4: per-channel K-weighting, mean-square energy over 400 ms
// blocks with 100 ms hop, then two-stage gating (absolute -70 LUFS floor,
// relative ungated-10 LU).
//
// The filter cascade is designed from the analog prototypes at the
// source's actual sample rate, so measurements agree across 44.1 kHz,
// 48 kHz and anything else.
func MeasureLoudness(src audio.Source) (float64, error) {
	channels := src.Channels()
	rate := float64(src.SampleRate())

	shelves := make([]*effects.Biquad, channels)
	highpasses := make([]*effects.Biquad, channels)
	for c := 0; c < channels; c++ {
		shelves[c], highpasses[c] = effects.NewKWeighting(rate)
	}

	// 100 ms sub-blocks; four consecutive sub-blocks form one 400 ms
	// gating block, hopping one sub-block at a time (75% overlap).
	subFrames := int(rate / 10)
	if subFrames < 1 {
		subFrames = 1
	}

	var (
		energies []float64 // per-block summed mean-square energy
		window   [4]float64
		filled   int
		subSum   float64
		subCount int
	)

	flushSub := func() {
		window[0], window[1], window[2] = window[1], window[2], window[3]
		window[3] = subSum / float64(subFrames)
		subSum = 0
		subCount = 0

		if filled < 4 {
			filled++
		}
		if filled == 4 {
			energies = append(energies, (window[0]+window[1]+window[2]+window[3])/4)
		}
	}

	buf := make([]float32, 4096*channels)

	for {
		n, err := src.ReadSamples(buf)

		frames := n / channels
		for i := 0; i < frames; i++ {
			base := i * channels
			for c := 0; c < channels; c++ {
				y := highpasses[c].Process(shelves[c].Process(float64(buf[base+c])))
				subSum += y * y
			}
			subCount++
			if subCount == subFrames {
				flushSub()
			}
		}

		if err == io.EOF {
			break
		}
		if err != nil {
			return 0, fmt.Errorf("loudness scan: %w", err)
		}
	}

	return gate(energies), nil
}

// blockLoudness converts a summed mean-square energy to LUFS.
func blockLoudness(energy float64) float64 {
	if energy <= 0 {
		return Silence
	}
	return loudnessOffset + 10*math.Log10(energy)
}

// gate applies the BS.1770-4 two-stage gating and averages the survivors.
func gate(energies []float64) float64 {
	absThreshold := energyFor(absoluteGateLUFS)

	sum := 0.0
	count := 0
	for _, e := range energies {
		if e > absThreshold {
			sum += e
			count++
		}
	}
	if count == 0 {
		return Silence
	}

	relThreshold := energyFor(blockLoudness(sum/float64(count)) - relativeGateLU)

	sum = 0
	count = 0
	for _, e := range energies {
		if e > relThreshold {
			sum += e
			count++
		}
	}
	if count == 0 {
		return Silence
	}

	return blockLoudness(sum / float64(count))
}

// energyFor inverts blockLoudness.
func energyFor(lufs float64) float64 {
	return math.Pow(10, (lufs-loudnessOffset)/10)
}
