// SPDX-License-Identifier: EPL-2.0

// Package mix sums scheduled tracks into a stereo stream.
//
// A Track places a source on the output timeline with an offset and
// per-track Settings (volume, pan, mute, solo). The Renderer conforms
// every track to the output format (mono mixdown for surround sources,
// resampling for rate mismatches), applies constant-gain-center panning
// and sums the overlap of each track with the requested output range:
//
//	r, err := mix.NewRenderer(48000, tracks)
//	buf := make([]float32, 4096*2)
//	n, err := r.ReadSamples(buf)
//
// Solo wins over mute: if any track is soloed, only soloed tracks sound,
// including a soloed track that is also muted.
//
// The renderer is a seekable stream, so the same code path serves both
// offline rendering and live monitoring. Mixdown drives it to completion
// into a sink:
//
//	frames, err := mix.Mixdown(dst, base, layers)
//
// Summing is plain addition without a limiter. Mixes hot enough to clip
// should be followed by normalization.
package mix
