// SPDX-License-Identifier: EPL-2.0

// Package audio provides low-level audio processing primitives.
//
// This package contains the core building blocks the rest of the module
// is assembled from:
//   - Source and SeekSource interfaces for audio input
//   - Sink interface for audio output
//   - Buffer for fully in-memory audio
//   - Resampler for sample rate conversion
//   - MonoMixer for channel mixing
//   - Format registry for decoder registration
//
// # Source Interface
//
// The Source interface is the foundation of audio processing:
//
//	type Source interface {
//	    SampleRate() int
//	    Channels() int
//	    ReadSamples(dst []float32) (int, error)
//	    BufSize() int
//	    Close() error
//	}
//
// Samples are interleaved float32 values in the range [-1.0, 1.0]. All
// decoders and processors implement this interface, allowing them to be
// chained together in processing pipelines.
//
// SeekSource extends Source with a known length and frame-accurate
// random access, which the editing operations require on their inputs:
//
//	type SeekSource interface {
//	    Source
//	    Frames() int64
//	    Seek(frame int64) error
//	}
//
// # Buffering
//
// Buffer holds decoded audio entirely in memory and implements both
// SeekSource and Sink. ReadAll drains any forward-only Source into one,
// which is how compressed formats gain seek support:
//
//	buf, err := audio.ReadAll(mp3Source)
//
// # Resampling
//
// The Resampler changes the sample rate of audio using cubic
// interpolation:
//
//	resampler := audio.NewResampler(source, 48000)
//	buf := make([]float32, 4096)
//	n, err := resampler.ReadSamples(buf)
//
// Resampling works for both upsampling and downsampling; downsampling
// applies a light anti-alias filter first.
//
// # Channel Mixing
//
// The MonoMixer converts multi-channel audio to mono by averaging:
//
//	mono := audio.NewMonoMixer(source)
//
// The mix renderer uses both to conform tracks of differing formats to
// one output format.
package audio
