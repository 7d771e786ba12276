// SPDX-License-Identifier: EPL-2.0

package engine

import (
	"fmt"
	"io"
	"time"

	"github.com/ik5/audedit/audio"
	"github.com/ik5/audedit/effects"
)

// DefaultChunkFrames is the per-iteration frame count of the streaming
// loops. Peak memory of every operation is proportional to this, never to
// the file length.
const DefaultChunkFrames = 32768

// tailFade is the length of the linear fade applied to the end of a
// rendered effect tail so capped reverb/echo decay does not cut off
// abruptly.
const tailFade = 250 * time.Millisecond

// Options tune the transform engine. The zero value is ready to use.
type Options struct {
	// ChunkFrames overrides DefaultChunkFrames when positive.
	ChunkFrames int
}

func (o Options) chunkFrames() int {
	if o.ChunkFrames > 0 {
		return o.ChunkFrames
	}
	return DefaultChunkFrames
}

// Run streams src through proc into dst in fixed-size chunks, then renders
// the processor's tail (if any) by feeding silence, fading the final
// stretch linearly to zero. It returns the number of frames written.
//
// Any read or write error aborts immediately; the caller owns discarding
// the partial destination.
func Run(src audio.Source, dst audio.Sink, proc effects.Processor, opts Options) (int64, error) {
	channels := src.Channels()
	if dst.Channels() != channels || dst.SampleRate() != src.SampleRate() {
		return 0, ErrFormatMismatch
	}

	buf := make([]float32, opts.chunkFrames()*channels)
	var written int64

	for {
		n, err := src.ReadSamples(buf)
		if n > 0 {
			chunk := buf[:n]
			proc.Process(chunk)

			if _, werr := dst.WriteSamples(chunk); werr != nil {
				return written, fmt.Errorf("write: %w", werr)
			}
			written += int64(n / channels)
		}

		if err == io.EOF {
			break
		}
		if err != nil {
			return written, fmt.Errorf("read: %w", err)
		}
	}

	tail, err := renderTail(dst, proc, src.SampleRate(), channels, opts)
	if err != nil {
		return written, err
	}

	return written + tail, nil
}

// renderTail pushes silence through proc for its declared tail length and
// writes the decaying output.
func renderTail(dst audio.Sink, proc effects.Processor, sampleRate, channels int, opts Options) (int64, error) {
	tail := int64(proc.Tail())
	if tail <= 0 {
		return 0, nil
	}

	fadeFrames := int64(tailFade.Seconds() * float64(sampleRate))
	if fadeFrames > tail {
		fadeFrames = tail
	}
	fadeStart := tail - fadeFrames

	chunkFrames := int64(opts.chunkFrames())
	buf := make([]float32, int(chunkFrames)*channels)

	var done int64
	for done < tail {
		frames := chunkFrames
		if remain := tail - done; frames > remain {
			frames = remain
		}

		chunk := buf[:frames*int64(channels)]
		for i := range chunk {
			chunk[i] = 0
		}
		proc.Process(chunk)

		for i := int64(0); i < frames; i++ {
			frame := done + i
			if frame < fadeStart {
				continue
			}
			gain := float32(tail-frame) / float32(fadeFrames)
			base := int(i) * channels
			for c := 0; c < channels; c++ {
				chunk[base+c] *= gain
			}
		}

		if _, err := dst.WriteSamples(chunk); err != nil {
			return done, fmt.Errorf("write tail: %w", err)
		}
		done += frames
	}

	return done, nil
}

// Segment is a half-open frame range within a source stream.
type Segment struct {
	Start, End int64
}

// CopySegments copies the given source segments to dst back to back. Each
// copy is itself chunked, so even hour-long segments stay within chunk
// memory. Segments must already be validated and clipped.
func CopySegments(src audio.SeekSource, dst audio.Sink, segs []Segment, opts Options) (int64, error) {
	channels := src.Channels()
	buf := make([]float32, opts.chunkFrames()*channels)

	var written int64

	for _, seg := range segs {
		if seg.End <= seg.Start {
			continue
		}
		if err := src.Seek(seg.Start); err != nil {
			return written, fmt.Errorf("seek segment: %w", err)
		}

		remain := seg.End - seg.Start
		for remain > 0 {
			want := int64(len(buf) / channels)
			if want > remain {
				want = remain
			}

			n, err := src.ReadSamples(buf[:want*int64(channels)])
			if n > 0 {
				if _, werr := dst.WriteSamples(buf[:n]); werr != nil {
					return written, fmt.Errorf("write segment: %w", werr)
				}
				frames := int64(n / channels)
				written += frames
				remain -= frames
			}

			if err == io.EOF {
				if remain > 0 {
					// Source ended inside a validated segment.
					return written, fmt.Errorf("read segment: %w", io.ErrUnexpectedEOF)
				}
				break
			}
			if err != nil {
				return written, fmt.Errorf("read segment: %w", err)
			}
		}
	}

	return written, nil
}

// framesFor converts a duration to a frame count at the given rate.
func framesFor(d time.Duration, sampleRate int) int64 {
	return int64(d.Seconds()*float64(sampleRate) + 0.5)
}

// FrameDuration converts a frame count to a duration at the given rate.
// Integer math avoids float truncation on exact rates.
func FrameDuration(frames int64, sampleRate int) time.Duration {
	return time.Duration(frames) * time.Second / time.Duration(sampleRate)
}
