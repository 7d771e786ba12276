// SPDX-License-Identifier: EPL-2.0

package aiff

import (
	"bytes"
	"fmt"
	"io"

	goaiff "github.com/go-audio/aiff"
	goaudio "github.com/go-audio/audio"

	"github.com/ik5/audedit/audio"
)

// pcmDecoder is the subset of go-audio/aiff's decoder the source reads
// through.
type pcmDecoder interface {
	Format() *goaudio.Format
	PCMBuffer(buf *goaudio.IntBuffer) (int, error)
}

// source adapts go-audio's chunked int decoding to the float32 stream
// contract. Only 16-bit PCM is accepted, so the scale factor is fixed.
type source struct {
	dec        pcmDecoder
	sampleRate int
	channels   int
	intBuf     *goaudio.IntBuffer
}

func (s *source) SampleRate() int { return s.sampleRate }
func (s *source) Channels() int   { return s.channels }
func (s *source) BufSize() int    { return 4096 }
func (s *source) Close() error    { return nil }

func (s *source) ReadSamples(dst []float32) (int, error) {
	if len(dst)%s.channels != 0 {
		return 0, audio.ErrInvalidDstSize
	}
	if len(dst) == 0 {
		return 0, nil
	}

	if s.intBuf == nil || cap(s.intBuf.Data) < len(dst) {
		s.intBuf = &goaudio.IntBuffer{
			Data:   make([]int, len(dst)),
			Format: s.dec.Format(),
		}
	}
	s.intBuf.Data = s.intBuf.Data[:len(dst)]

	n, err := s.dec.PCMBuffer(s.intBuf)
	if n == 0 {
		if err != nil {
			return 0, fmt.Errorf("read aiff: %w", err)
		}
		return 0, io.EOF
	}

	frames := n / s.channels
	samples := frames * s.channels
	for i := range samples {
		dst[i] = float32(s.intBuf.Data[i]) / 32768.0
	}

	if err != nil {
		return samples, fmt.Errorf("read aiff: %w", err)
	}
	if samples < len(dst) {
		// A short decode means the PCM chunk ran out.
		return samples, io.EOF
	}
	return samples, nil
}

// Decoder decodes 16-bit PCM AIFF input.
type Decoder struct{}

// Decode parses the AIFF container and returns a forward-only
// audio.Source. If r does not support seeking, the input is read fully
// into memory first; go-audio needs random access to walk the chunks.
func (Decoder) Decode(r io.Reader) (audio.Source, error) {
	rs, ok := r.(io.ReadSeeker)
	if !ok {
		raw, err := io.ReadAll(r)
		if err != nil {
			return nil, fmt.Errorf("%w", err)
		}
		rs = bytes.NewReader(raw)
	}

	dec := goaiff.NewDecoder(rs)
	if !dec.IsValidFile() {
		return nil, ErrNotAiffFile
	}

	dec.ReadInfo()
	if dec.BitDepth != 16 {
		return nil, ErrOnlyPCM16bitSupported
	}

	format := dec.Format()
	if format == nil {
		return nil, ErrUnsupportedAiffLayout
	}

	return &source{
		dec:        dec,
		sampleRate: format.SampleRate,
		channels:   format.NumChannels,
	}, nil
}
