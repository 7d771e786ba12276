// SPDX-License-Identifier: EPL-2.0

// Package engine moves audio between sources and sinks in chunks.
//
// Run is the core loop: it pulls fixed-size chunks from a source, hands
// each to a processor and pushes the result at a sink, in memory
// proportional to the chunk size regardless of file length. After the
// source ends it keeps feeding silence for the processor's tail, so
// reverb and echo decays are not cut off:
//
//	frames, err := engine.Run(src, dst, proc, engine.Options{})
//
// CopySegments streams an ordered list of frame ranges from a seekable
// source, which is how the editing operations are expressed:
//
//   - Trim keeps one range
//   - Cut drops one range
//   - CrossfadeCut drops a range and splices the halves with an
//     equal-power crossfade
//   - RemoveSilences drops many ranges, with padding at the edges
//
// Time ranges are validated before any I/O. The normalization
// operations (NormalizePeak, NormalizeLoudness) make a measurement pass
// over the source, seek back and make a gain pass. StudioPreset chains
// compressor, reverb and echo through temporary files.
package engine
