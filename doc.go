// SPDX-License-Identifier: EPL-2.0

// Package audedit provides audio editing and mixing utilities for Go
// applications.
//
// This package offers file-level editing operations (trim, cut, crossfade
// splice, silence removal), effects (fades, noise gate, compression,
// reverb, echo), normalization (peak and integrated loudness per ITU-R
// BS.1770-4), offline mixdown of layered tracks and a synchronized
// overdub session for recording new layers over existing ones. Edits
// never modify the input file; every operation writes a new WAV next to
// its source.
//
// # Supported Formats
//
// Inputs decode from the following formats:
//   - WAV (PCM 16-bit) via formats/wav, with true random access
//   - MP3 via formats/mp3
//   - Ogg Vorbis via formats/vorbis
//   - AIFF (PCM 16-bit) via formats/aiff
//
// WAV, MP3 and Ogg Vorbis files seek on disk; a format whose decoder is
// forward-only is buffered in memory to gain seek support. Outputs are
// always 16-bit PCM WAV.
//
// # Quick Start
//
// File-level operations take a source path and return the result of the
// edit:
//
//	// Keep only seconds 3 through 5 of a recording.
//	res, err := audedit.Trim("take.wav", "", 3*time.Second, 5*time.Second)
//
//	// Bring the trimmed take up to -1 dBFS true peak.
//	res, err = audedit.NormalizePeak(res.OutputPath, "", -1, true)
//
// An empty output path derives a timestamped name next to the input.
//
// # Processing Pipeline
//
// For more control, build pipelines directly on the subpackages. Sources
// stream interleaved float32 samples; effects process buffers in place
// and the engine moves chunks between them:
//
//	src, _ := wav.OpenFile("voice.wav")
//	dst, _ := wav.CreateFile("voice_gated.wav", src.SampleRate(), src.Channels())
//
//	chain := &effects.Chain{}
//	chain.Add(effects.NewGate(src.SampleRate(), src.Channels(), effects.GateParams{
//		ThresholdDB: -45,
//	}))
//	chain.Add(effects.NewCompressor(src.SampleRate(), src.Channels(), effects.CompressorParams{
//		ThresholdDB: -18,
//		Ratio:       3,
//	}))
//
//	frames, err := engine.Run(src, dst, chain, engine.Options{})
//
// # Mixing
//
// Mixdown layers multiple tracks onto a base track, applying per-track
// volume, pan, mute and solo:
//
//	res, err := audedit.Mixdown("drums.wav", "song.wav", mix.Settings{Volume: 1},
//		[]audedit.MixLayer{
//			{Path: "bass.wav", Settings: mix.Settings{Volume: 0.8, Pan: -0.2}},
//			{Path: "vocal.mp3", Offset: 8 * time.Second, Settings: mix.Settings{Volume: 1}},
//		})
//
// The overdub subpackage drives the same mix renderer live, playing the
// existing layers while capturing a new one in sync.
package audedit
