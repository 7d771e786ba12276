// SPDX-License-Identifier: EPL-2.0

package wav

import (
	"fmt"
	"io"
	"os"

	goaudio "github.com/go-audio/audio"
	gowav "github.com/go-audio/wav"

	"github.com/ik5/audedit/audio"
	"github.com/ik5/audedit/utils"
)

// Sink writes interleaved float32 samples to a 16-bit PCM WAV container.
// Close must be called so go-audio patches the RIFF sizes in the header.
type Sink struct {
	enc        *gowav.Encoder
	closer     io.Closer
	sampleRate int
	channels   int
	intBuf     *goaudio.IntBuffer
	frames     int64
}

// NewSink wraps w with a 16-bit PCM WAV encoder.
func NewSink(w io.WriteSeeker, sampleRate, channels int) *Sink {
	return &Sink{
		enc:        gowav.NewEncoder(w, sampleRate, 16, channels, 1),
		sampleRate: sampleRate,
		channels:   channels,
		intBuf: &goaudio.IntBuffer{
			Format: &goaudio.Format{
				NumChannels: channels,
				SampleRate:  sampleRate,
			},
			SourceBitDepth: 16,
		},
	}
}

// CreateFile creates path (truncating) and returns a WAV sink for it.
// Closing the sink closes the file.
func CreateFile(path string, sampleRate, channels int) (*Sink, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("%w", err)
	}

	s := NewSink(f, sampleRate, channels)
	s.closer = f
	return s, nil
}

func (s *Sink) SampleRate() int { return s.sampleRate }
func (s *Sink) Channels() int   { return s.channels }

// Frames returns the number of frames written so far.
func (s *Sink) Frames() int64 { return s.frames }

func (s *Sink) WriteSamples(src []float32) (int, error) {
	if len(src)%s.channels != 0 {
		return 0, audio.ErrInvalidDstSize
	}

	if cap(s.intBuf.Data) < len(src) {
		s.intBuf.Data = make([]int, len(src))
	}
	s.intBuf.Data = s.intBuf.Data[:len(src)]

	for i, v := range src {
		s.intBuf.Data[i] = int(utils.Float32ToInt16(v))
	}

	if err := s.enc.Write(s.intBuf); err != nil {
		return 0, fmt.Errorf("write pcm: %w", err)
	}

	s.frames += int64(len(src) / s.channels)
	return len(src), nil
}

func (s *Sink) Close() error {
	err := s.enc.Close()
	if s.closer != nil {
		if cerr := s.closer.Close(); err == nil {
			err = cerr
		}
	}
	if err != nil {
		return fmt.Errorf("%w", err)
	}
	return nil
}
