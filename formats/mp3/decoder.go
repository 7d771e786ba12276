// SPDX-License-Identifier: EPL-2.0

package mp3

import (
	"encoding/binary"
	"fmt"
	"io"

	gomp3 "github.com/hajimehoshi/go-mp3"

	"github.com/ik5/audedit/audio"
)

// go-mp3 always decodes to 16-bit little-endian stereo, 4 bytes per
// frame regardless of the source layout.
const (
	channelCount  = 2
	bytesPerFrame = channelCount * 2
)

// pcmReader is the decoded-PCM view of go-mp3 the source reads through.
type pcmReader interface {
	io.Reader
	SampleRate() int
}

type source struct {
	dec        pcmReader
	sampleRate int
	buf        []byte
}

func (s *source) SampleRate() int { return s.sampleRate }
func (s *source) Channels() int   { return channelCount }
func (s *source) BufSize() int    { return 4096 }
func (s *source) Close() error    { return nil }

func (s *source) ReadSamples(dst []float32) (int, error) {
	if len(dst)%channelCount != 0 {
		return 0, audio.ErrInvalidDstSize
	}
	if len(dst) == 0 {
		return 0, nil
	}

	byteCount := len(dst) * 2
	if cap(s.buf) < byteCount {
		s.buf = make([]byte, byteCount)
	}
	s.buf = s.buf[:byteCount]

	n, err := io.ReadFull(s.dec, s.buf)
	if n == 0 {
		if err == io.EOF || err == io.ErrUnexpectedEOF {
			return 0, io.EOF
		}
		if err != nil {
			return 0, fmt.Errorf("read mp3: %w", err)
		}
		return 0, nil
	}
	if err != nil && err != io.EOF && err != io.ErrUnexpectedEOF {
		return 0, fmt.Errorf("read mp3: %w", err)
	}

	// Truncate to whole frames; a trailing odd byte only happens on a
	// damaged stream.
	samples := (n / bytesPerFrame) * channelCount
	for i := range samples {
		v := int16(binary.LittleEndian.Uint16(s.buf[2*i : 2*i+2]))
		dst[i] = float32(v) / 32768.0
	}

	if err == io.EOF || err == io.ErrUnexpectedEOF {
		return samples, io.EOF
	}
	return samples, nil
}

// seekSource adds frame addressing for inputs that support seeking.
// go-mp3 seeks in decoded-byte space, which maps to frames exactly.
type seekSource struct {
	source
	sk     io.Seeker
	in     io.Reader
	frames int64
}

// Close releases the underlying input when it is closeable, matching the
// ownership contract of the WAV decoder.
func (s *seekSource) Close() error {
	if c, ok := s.in.(io.Closer); ok {
		if err := c.Close(); err != nil {
			return fmt.Errorf("%w", err)
		}
	}
	return nil
}

func (s *seekSource) Frames() int64 { return s.frames }

func (s *seekSource) Seek(frame int64) error {
	if frame < 0 || frame > s.frames {
		return audio.ErrSeekOutOfRange
	}
	if _, err := s.sk.Seek(frame*bytesPerFrame, io.SeekStart); err != nil {
		return fmt.Errorf("seek mp3: %w", err)
	}
	return nil
}

// Decoder decodes MPEG-1 layer 3 input.
type Decoder struct{}

// Decode parses the MP3 stream. When r supports seeking the result also
// implements audio.SeekSource with a known frame count; streamed input
// stays forward-only.
func (Decoder) Decode(r io.Reader) (audio.Source, error) {
	dec, err := gomp3.NewDecoder(r)
	if err != nil {
		return nil, fmt.Errorf("%w", err)
	}

	src := source{
		dec:        dec,
		sampleRate: dec.SampleRate(),
	}

	if _, ok := r.(io.Seeker); ok {
		if length := dec.Length(); length > 0 {
			return &seekSource{
				source: src,
				sk:     dec,
				in:     r,
				frames: length / bytesPerFrame,
			}, nil
		}
	}
	return &src, nil
}
