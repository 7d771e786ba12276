// SPDX-License-Identifier: EPL-2.0

package audio

import (
	"fmt"
	"io"
)

// Buffer is an in-memory PCM stream that implements both SeekSource and
// Sink. It backs loop tracks that must stay fully resident for scheduling,
// converts forward-only sources (mp3, vorbis) into seekable ones, and
// serves as a capture target in tests.
type Buffer struct {
	sampleRate int
	channels   int
	data       []float32
	pos        int64 // read cursor, in frames
}

// NewBuffer creates an empty buffer with the given stream properties.
func NewBuffer(sampleRate, channels int) *Buffer {
	return &Buffer{
		sampleRate: sampleRate,
		channels:   channels,
	}
}

// ReadAll drains src completely into a new Buffer. The source is not
// closed; ownership stays with the caller.
func ReadAll(src Source) (*Buffer, error) {
	b := NewBuffer(src.SampleRate(), src.Channels())

	tmp := make([]float32, src.BufSize())
	if len(tmp) == 0 {
		tmp = make([]float32, 4096)
	}

	for {
		n, err := src.ReadSamples(tmp)
		if n > 0 {
			b.data = append(b.data, tmp[:n]...)
		}

		if err == io.EOF {
			return b, nil
		}

		if err != nil {
			return nil, fmt.Errorf("buffer source: %w", err)
		}
	}
}

func (b *Buffer) SampleRate() int { return b.sampleRate }
func (b *Buffer) Channels() int   { return b.channels }
func (b *Buffer) BufSize() int    { return 4096 }
func (b *Buffer) Close() error    { return nil }

// Frames returns the number of frames currently stored.
func (b *Buffer) Frames() int64 {
	return int64(len(b.data) / b.channels)
}

// Seek moves the read cursor. Seeking to Frames() is allowed and yields
// io.EOF on the next read.
func (b *Buffer) Seek(frame int64) error {
	if frame < 0 || frame > b.Frames() {
		return ErrSeekOutOfRange
	}

	b.pos = frame
	return nil
}

func (b *Buffer) ReadSamples(dst []float32) (int, error) {
	if len(dst)%b.channels != 0 {
		return 0, ErrInvalidDstSize
	}

	start := b.pos * int64(b.channels)
	if start >= int64(len(b.data)) {
		return 0, io.EOF
	}

	n := copy(dst, b.data[start:])
	frames := n / b.channels
	n = frames * b.channels
	b.pos += int64(frames)

	if b.pos >= b.Frames() {
		return n, io.EOF
	}

	return n, nil
}

// WriteSamples appends interleaved samples at the end of the buffer,
// regardless of the read cursor.
func (b *Buffer) WriteSamples(src []float32) (int, error) {
	if len(src)%b.channels != 0 {
		return 0, ErrInvalidDstSize
	}

	b.data = append(b.data, src...)
	return len(src), nil
}

// Samples exposes the underlying interleaved data. The slice is owned by
// the buffer and valid until the next WriteSamples call.
func (b *Buffer) Samples() []float32 { return b.data }
