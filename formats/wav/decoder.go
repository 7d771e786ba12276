// SPDX-License-Identifier: EPL-2.0

package wav

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"os"

	gowav "github.com/go-audio/wav"

	"github.com/ik5/audedit/audio"
)

// source is a frame-addressed reader over the PCM chunk of a WAV file.
// Header and chunk layout are parsed by go-audio/wav; sample reads then go
// straight to the underlying ReadSeeker so Seek can be frame-accurate.
type source struct {
	rs         io.ReadSeeker
	sampleRate int
	channels   int
	dataStart  int64 // byte offset of the PCM chunk payload
	frames     int64
	pos        int64 // read cursor, in frames
	buf        []byte
}

func (s *source) SampleRate() int { return s.sampleRate }
func (s *source) Channels() int   { return s.channels }
func (s *source) BufSize() int    { return 4096 }
func (s *source) Frames() int64   { return s.frames }

func (s *source) Close() error {
	if c, ok := s.rs.(io.Closer); ok {
		if err := c.Close(); err != nil {
			return fmt.Errorf("%w", err)
		}
	}
	return nil
}

func (s *source) Seek(frame int64) error {
	if frame < 0 || frame > s.frames {
		return audio.ErrSeekOutOfRange
	}

	blockAlign := int64(s.channels) * 2
	if _, err := s.rs.Seek(s.dataStart+frame*blockAlign, io.SeekStart); err != nil {
		return fmt.Errorf("seek pcm: %w", err)
	}

	s.pos = frame
	return nil
}

func (s *source) ReadSamples(dst []float32) (int, error) {
	if len(dst)%s.channels != 0 {
		return 0, audio.ErrInvalidDstSize
	}
	if s.pos >= s.frames {
		return 0, io.EOF
	}

	want := int64(len(dst) / s.channels)
	if remain := s.frames - s.pos; want > remain {
		want = remain
	}

	byteCount := int(want) * s.channels * 2
	if cap(s.buf) < byteCount {
		s.buf = make([]byte, byteCount)
	}
	s.buf = s.buf[:byteCount]

	n, err := io.ReadFull(s.rs, s.buf)
	if err != nil && err != io.ErrUnexpectedEOF {
		if err == io.EOF {
			return 0, io.EOF
		}
		return 0, fmt.Errorf("read pcm: %w", err)
	}

	samples := n / 2
	for i := range samples {
		v := int16(binary.LittleEndian.Uint16(s.buf[2*i : 2*i+2]))
		dst[i] = float32(v) / 32768.0
	}

	frames := samples / s.channels
	samples = frames * s.channels
	s.pos += int64(frames)

	if s.pos >= s.frames {
		return samples, io.EOF
	}
	return samples, nil
}

// Decoder decodes 16-bit PCM WAV input into a seekable audio source.
type Decoder struct{}

// Decode parses the WAV container and returns an audio.Source that is also
// an audio.SeekSource. If r does not support seeking, the input is read
// fully into memory first.
func (Decoder) Decode(r io.Reader) (audio.Source, error) {
	rs, ok := r.(io.ReadSeeker)
	if !ok {
		raw, err := io.ReadAll(r)
		if err != nil {
			return nil, fmt.Errorf("%w", err)
		}
		rs = bytes.NewReader(raw)
	}

	dec := gowav.NewDecoder(rs)
	dec.ReadInfo()
	if !dec.IsValidFile() {
		return nil, ErrNotWavFile
	}
	if dec.WavAudioFormat != 1 || dec.BitDepth != 16 {
		return nil, ErrOnlyPCM16bitSupported
	}

	if err := dec.FwdToPCM(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnsupportedWavLayout, err)
	}

	dataStart, err := rs.Seek(0, io.SeekCurrent)
	if err != nil {
		return nil, fmt.Errorf("%w", err)
	}

	channels := int(dec.NumChans)
	blockAlign := int64(channels) * 2

	return &source{
		rs:         rs,
		sampleRate: int(dec.SampleRate),
		channels:   channels,
		dataStart:  dataStart,
		frames:     dec.PCMLen() / blockAlign,
	}, nil
}

// OpenFile opens path and decodes it as a seekable WAV source. Closing the
// source closes the file.
func OpenFile(path string) (audio.SeekSource, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w", err)
	}

	src, err := Decoder{}.Decode(f)
	if err != nil {
		f.Close()
		return nil, err
	}

	return src.(audio.SeekSource), nil
}
