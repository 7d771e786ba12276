// SPDX-License-Identifier: EPL-2.0

package audiotest

import (
	"io"
	"math"
)

// MockSource is a test helper that generates audio data for testing.
// It implements the audio.SeekSource interface (without importing it to
// avoid cycles), so it can feed both single-pass and two-pass operations.
type MockSource struct {
	sampleRate  int
	channels    int
	totalFrames int // Total frames to generate
	pos         int // Read cursor, in frames
	waveform    func(frame int, channel int) float32
}

// NewMockSource creates a new mock audio source.
// totalFrames is the total number of frames to generate.
// waveform generates sample values given frame index and channel.
func NewMockSource(sampleRate, channels, totalFrames int, waveform func(frame int, channel int) float32) *MockSource {
	return &MockSource{
		sampleRate:  sampleRate,
		channels:    channels,
		totalFrames: totalFrames,
		waveform:    waveform,
	}
}

// NewSilentSource creates a mock source that generates silence (all zeros).
func NewSilentSource(sampleRate, channels, totalFrames int) *MockSource {
	return NewMockSource(sampleRate, channels, totalFrames, func(frame int, channel int) float32 {
		return 0.0
	})
}

// NewSineSource creates a mock source that generates a full-scale sine wave.
func NewSineSource(sampleRate, channels, totalFrames int, frequency float64) *MockSource {
	return NewMockSource(sampleRate, channels, totalFrames, func(frame int, channel int) float32 {
		t := float64(frame) / float64(sampleRate)
		return float32(math.Sin(2 * math.Pi * frequency * t))
	})
}

// NewConstantSource creates a mock source with constant value.
func NewConstantSource(sampleRate, channels, totalFrames int, value float32) *MockSource {
	return NewMockSource(sampleRate, channels, totalFrames, func(frame int, channel int) float32 {
		return value
	})
}

// NewToneBurstSource creates a silent source with a sine tone of the given
// linear amplitude inserted between startFrame and endFrame. Useful for
// trim/normalize round-trip scenarios.
func NewToneBurstSource(sampleRate, channels, totalFrames int, frequency float64, amplitude float32, startFrame, endFrame int) *MockSource {
	return NewMockSource(sampleRate, channels, totalFrames, func(frame int, channel int) float32 {
		if frame < startFrame || frame >= endFrame {
			return 0.0
		}
		t := float64(frame) / float64(sampleRate)
		return amplitude * float32(math.Sin(2*math.Pi*frequency*t))
	})
}

func (m *MockSource) SampleRate() int { return m.sampleRate }
func (m *MockSource) Channels() int   { return m.channels }
func (m *MockSource) BufSize() int    { return 4096 }
func (m *MockSource) Close() error    { return nil }

// Frames returns the total frame count.
func (m *MockSource) Frames() int64 { return int64(m.totalFrames) }

// Seek repositions the read cursor.
func (m *MockSource) Seek(frame int64) error {
	if frame < 0 || frame > int64(m.totalFrames) {
		return io.ErrUnexpectedEOF
	}

	m.pos = int(frame)
	return nil
}

// Reset rewinds the source to allow re-reading.
func (m *MockSource) Reset() {
	m.pos = 0
}

func (m *MockSource) ReadSamples(dst []float32) (int, error) {
	if m.pos >= m.totalFrames {
		return 0, io.EOF
	}

	framesRequested := len(dst) / m.channels
	framesAvailable := m.totalFrames - m.pos
	framesToWrite := framesRequested
	if framesToWrite > framesAvailable {
		framesToWrite = framesAvailable
	}

	for frame := range framesToWrite {
		frameIndex := m.pos + frame
		for ch := range m.channels {
			dst[frame*m.channels+ch] = m.waveform(frameIndex, ch)
		}
	}

	m.pos += framesToWrite
	samplesWritten := framesToWrite * m.channels

	if m.pos >= m.totalFrames {
		return samplesWritten, io.EOF
	}

	return samplesWritten, nil
}
