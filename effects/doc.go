// SPDX-License-Identifier: EPL-2.0

// Package effects provides in-place audio effect processors.
//
// Every effect implements the Processor interface:
//
//	type Processor interface {
//	    Process(buf []float32)
//	    Tail() int
//	}
//
// Process transforms one chunk of interleaved float32 samples in place.
// Processors carry their filter state between calls, so feeding a stream
// chunk by chunk produces the same output as processing it whole. Tail
// reports how many frames of decaying output remain after the input
// ends; the engine keeps feeding silence for that long.
//
// # Available Effects
//
//   - Fade: fade-in and fade-out envelopes with selectable curves
//   - Gate: noise gate with attack, release and hold
//   - Compressor: soft-knee dynamic range compression
//   - Reverb: Schroeder reverberator (parallel combs into series
//     allpasses)
//   - Echo: feedback delay with damping
//   - Gain: plain scaling, optionally soft-clipped
//
// Chain runs several processors in sequence:
//
//	chain := &effects.Chain{}
//	chain.Add(effects.NewGate(rate, channels, gateParams))
//	chain.Add(effects.NewCompressor(rate, channels, compParams))
//	chain.Process(buf)
//
// The package also exports the biquad filters and equal-power crossfade
// math the editing and loudness code is built on.
package effects
