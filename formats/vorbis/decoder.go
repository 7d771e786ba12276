// SPDX-License-Identifier: EPL-2.0

package vorbis

import (
	"fmt"
	"io"

	"github.com/jfreymuth/oggvorbis"

	"github.com/ik5/audedit/audio"
)

// stream is the subset of oggvorbis.Reader the forward read path needs.
// The reader already yields interleaved float32, so samples pass through
// without conversion.
type stream interface {
	Read([]float32) (int, error)
}

type source struct {
	dec        stream
	sampleRate int
	channels   int
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

	n, err := s.dec.Read(dst)
	if err != nil && err != io.EOF {
		return n, fmt.Errorf("read vorbis: %w", err)
	}
	return n, err
}

// seekSource adds frame addressing on top of source for inputs that
// support seeking. oggvorbis exposes the granule position directly, so
// seeks land on exact frame boundaries.
type seekSource struct {
	source
	rdr *oggvorbis.Reader
	in  io.Reader
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

func (s *seekSource) Frames() int64 { return s.rdr.Length() }

func (s *seekSource) Seek(frame int64) error {
	if frame < 0 || frame > s.rdr.Length() {
		return audio.ErrSeekOutOfRange
	}
	if err := s.rdr.SetPosition(frame); err != nil {
		return fmt.Errorf("seek vorbis: %w", err)
	}
	return nil
}

// Decoder decodes Ogg Vorbis input.
type Decoder struct{}

// Decode parses the Ogg container and returns an audio.Source. When r
// supports seeking the result also implements audio.SeekSource; streamed
// input stays forward-only and callers buffer it if they need seeks.
func (Decoder) Decode(r io.Reader) (audio.Source, error) {
	rdr, err := oggvorbis.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("%w", err)
	}

	src := source{
		dec:        rdr,
		sampleRate: rdr.SampleRate(),
		channels:   rdr.Channels(),
	}

	if _, ok := r.(io.Seeker); ok {
		return &seekSource{source: src, rdr: rdr, in: r}, nil
	}
	return &src, nil
}
