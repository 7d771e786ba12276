// SPDX-License-Identifier: EPL-2.0

package audio

import (
	"io"
	"sync"
)

// Source is a pull-based stream of PCM audio.
type Source interface {
	// SampleRate of the PCM stream in Hz.
	SampleRate() int
	// Channels count (e.g., 1=mono, 2=stereo).
	Channels() int
	// ReadSamples fills dst with interleaved float32 samples in [-1,1].
	// Returns number of float32 values written (not frames). When n == 0 with err == io.EOF, the stream is finished.
	ReadSamples(dst []float32) (n int, err error)

	BufSize() int

	// Close releases any resources.
	Close() error
}

// SeekSource is a Source with random frame access. Two-pass operations
// (peak and loudness normalization) and segment copies (trim, cut, silence
// removal) rewind and reposition mid-file, so file-backed and memory-backed
// sources implement it.
type SeekSource interface {
	Source

	// Frames returns the total frame count of the stream.
	Frames() int64
	// Seek positions the read cursor so the next ReadSamples call returns
	// samples starting at the given frame.
	Seek(frame int64) error
}

// Sink consumes interleaved float32 samples in [-1,1] and persists them.
// Writes are strictly sequential.
type Sink interface {
	SampleRate() int
	Channels() int
	// WriteSamples consumes all of src. Returns the number of float32
	// values written.
	WriteSamples(src []float32) (n int, err error)
	// Close finalizes the sink (e.g., patches container headers).
	Close() error
}

// Decoder constructs a Source from an input reader.
type Decoder interface {
	Decode(r io.Reader) (Source, error)
}

// Registry for decoders by format key (e.g., "wav", "mp3", "ogg vorbis").
type Registry struct {
	codecs map[string]Decoder

	mtx *sync.Mutex
}

func NewRegistry() *Registry {
	return &Registry{
		codecs: make(map[string]Decoder),
		mtx:    &sync.Mutex{},
	}
}

func (r *Registry) Register(format string, d Decoder) {
	r.mtx.Lock()
	defer r.mtx.Unlock()

	r.codecs[format] = d
}

func (r *Registry) Get(format string) (Decoder, bool) {
	r.mtx.Lock()
	defer r.mtx.Unlock()

	d, ok := r.codecs[format]
	return d, ok
}
