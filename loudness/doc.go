// SPDX-License-Identifier: EPL-2.0

// Package loudness measures audio levels for normalization.
//
// Two measurements are provided:
//
// MeasurePeak scans a stream for its absolute peak, either per sample or
// as a true peak with 4x oversampling to catch inter-sample overs:
//
//	peak, err := loudness.MeasurePeak(src, true)
//
// MeasureLoudness computes integrated loudness in LUFS per ITU-R
// BS.1770-4: K-weighting, 400 ms gating blocks with 75% overlap, a -70
// LUFS absolute gate and a relative gate 10 LU under the ungated level:
//
//	lufs, err := loudness.MeasureLoudness(src)
//
// A stream with no blocks above the absolute gate measures as Silence
// (negative infinity), which callers must treat as "leave untouched"
// rather than as a very quiet signal.
//
// Both measurements stream in constant memory and consume the source, so
// seekable inputs need a Seek(0) before a second pass.
package loudness
