// SPDX-License-Identifier: EPL-2.0

// Package wav provides WAV audio file decoding and encoding.
//
// This package supports reading and writing WAV files in PCM 16-bit
// format. It uses the github.com/go-audio library for header handling.
//
// # Supported Formats
//
// Currently supported:
//   - PCM 16-bit (most common WAV format)
//   - Mono and stereo
//   - Any sample rate
//
// # Decoding WAV Files
//
// OpenFile returns a seekable source over a WAV file:
//
//	source, err := wav.OpenFile("audio.wav")
//	if err != nil {
//	    // Handle error
//	}
//
//	buf := make([]float32, 4096)
//	n, err := source.ReadSamples(buf)
//
// The source is frame addressed: Seek positions it on any frame and
// Frames reports the total length, so editing operations get true random
// access without loading the file. Samples are float32 values in the
// range [-1.0, 1.0]. Decoder implements the format registry interface
// over any io.Reader that also seeks.
//
// # Writing WAV Files
//
// CreateFile returns a sink that converts float32 samples to 16-bit PCM:
//
//	sink, err := wav.CreateFile("output.wav", 48000, 2)
//	_, err = sink.WriteSamples(samples)
//	err = sink.Close()
//
// Close finalizes the header; an unclosed sink leaves an unreadable
// file.
package wav
