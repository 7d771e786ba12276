// SPDX-License-Identifier: EPL-2.0

package audio

import (
	"fmt"
	"io"

	"github.com/ik5/audedit/utils"
)

// Resampler streams from src to a target sample rate using Catmull-Rom
// cubic interpolation over a sliding four-frame window. Channel count is
// preserved. A one-pole low-pass runs ahead of the interpolator when
// downsampling to tame aliasing.
//
// The mix renderer uses it to conform layer tracks to the base track's
// sample rate before summation.
type Resampler struct {
	src      Source
	srcRate  float64
	dstRate  float64
	step     float64 // source frames advanced per output frame
	channels int

	// window[0..3] hold frames t-1, t, t+1, t+2 for the interpolator.
	window [4][]float32
	have   [4]bool
	primed bool

	// Fractional position between window[1] and window[2].
	pos float64

	frameBuf []float32
	eof      bool

	// Anti-alias filter state, one value per channel.
	lpState []float32
	lpAlpha float32
	lowpass bool
}

func NewResampler(src Source, dstRate int) *Resampler {
	channels := src.Channels()
	step := float64(src.SampleRate()) / float64(dstRate)

	r := &Resampler{
		src:      src,
		srcRate:  float64(src.SampleRate()),
		dstRate:  float64(dstRate),
		step:     step,
		channels: channels,
		frameBuf: make([]float32, channels),
		lowpass:  step > 1.0,
		lpAlpha:  0.5,
		lpState:  make([]float32, channels),
	}

	for i := range r.window {
		r.window[i] = make([]float32, channels)
	}

	return r
}

func (r *Resampler) SampleRate() int { return int(r.dstRate) }
func (r *Resampler) Channels() int   { return r.channels }
func (r *Resampler) BufSize() int    { return r.src.BufSize() }

func (r *Resampler) Close() error {
	if err := r.src.Close(); err != nil {
		return fmt.Errorf("%w", err)
	}
	return nil
}

// readFrame pulls one source frame into dst, applying the anti-alias
// filter when enabled. Returns io.EOF once the source is exhausted.
func (r *Resampler) readFrame(dst []float32) error {
	if r.eof {
		return io.EOF
	}

	n, err := r.src.ReadSamples(r.frameBuf)
	if n > 0 {
		copy(dst, r.frameBuf[:n])

		if r.lowpass {
			for c := 0; c < r.channels; c++ {
				dst[c] = r.lpAlpha*dst[c] + (1-r.lpAlpha)*r.lpState[c]
				r.lpState[c] = dst[c]
			}
		}
	}

	if err == io.EOF {
		r.eof = true
		if n == 0 {
			return io.EOF
		}
	} else if err != nil {
		return fmt.Errorf("%w", err)
	}

	return nil
}

// shift advances the window by one source frame.
func (r *Resampler) shift() error {
	copy(r.window[0], r.window[1])
	copy(r.window[1], r.window[2])
	copy(r.window[2], r.window[3])
	r.have[0], r.have[1], r.have[2] = r.have[1], r.have[2], r.have[3]

	err := r.readFrame(r.window[3])
	if err == io.EOF {
		r.have[3] = false
		if !r.have[2] {
			return io.EOF
		}
		return nil
	}
	if err != nil {
		return err
	}

	r.have[3] = true
	return nil
}

// prime fills the initial window, duplicating edge frames for very short
// sources.
func (r *Resampler) prime() error {
	for i := 0; i < 4; i++ {
		err := r.readFrame(r.window[i])
		if err == io.EOF {
			if i == 0 {
				return io.EOF
			}
			for j := i; j < 4; j++ {
				copy(r.window[j], r.window[i-1])
				r.have[j] = true
			}
			break
		}
		if err != nil {
			return err
		}

		r.have[i] = true
		if i == 0 && r.lowpass {
			copy(r.lpState, r.window[0])
		}
	}

	r.primed = true
	return nil
}

// ReadSamples produces dst samples at the destination rate.
// dst length must be a multiple of the channel count.
func (r *Resampler) ReadSamples(dst []float32) (int, error) {
	if len(dst)%r.channels != 0 {
		return 0, ErrInvalidDstSize
	}

	if !r.primed {
		if err := r.prime(); err != nil {
			return 0, err
		}
	}

	written := 0
	wanted := len(dst) / r.channels

	for written < wanted {
		for r.pos >= 1.0 {
			r.pos -= 1.0
			if err := r.shift(); err != nil {
				if err == io.EOF {
					if written == 0 {
						return 0, io.EOF
					}
					return written * r.channels, io.EOF
				}
				return written * r.channels, err
			}
		}

		if !r.have[1] || !r.have[2] {
			if written == 0 {
				return 0, io.EOF
			}
			return written * r.channels, io.EOF
		}

		alpha := float32(r.pos)
		for c := 0; c < r.channels; c++ {
			y0 := r.window[1][c]
			if r.have[0] {
				y0 = r.window[0][c]
			}
			y3 := r.window[2][c]
			if r.have[3] {
				y3 = r.window[3][c]
			}

			dst[written*r.channels+c] = utils.CubicInterpolate(
				y0, r.window[1][c], r.window[2][c], y3, alpha)
		}

		written++
		r.pos += r.step
	}

	return written * r.channels, nil
}
