// SPDX-License-Identifier: EPL-2.0

package audedit_test

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/ik5/audedit"
	"github.com/ik5/audedit/audio"
	"github.com/ik5/audedit/effects"
	"github.com/ik5/audedit/engine"
	"github.com/ik5/audedit/formats/wav"
	"github.com/ik5/audedit/loudness"
	"github.com/ik5/audedit/mix"
)

// Example_basicUsage demonstrates the most common use case: streaming
// audio through a processor into a destination.
func Example_basicUsage() {
	// Create a small mono stream in memory for demonstration
	src := audio.NewBuffer(8000, 1)
	src.WriteSamples([]float32{0.25, -0.25, 0.25, -0.25})

	// Double the amplitude; hard clipping disabled since the result
	// stays inside [-1, 1]
	gain := effects.NewGain(2, false)

	dst := audio.NewBuffer(8000, 1)
	frames, err := engine.Run(src, dst, gain, engine.Options{})
	if err != nil {
		fmt.Printf("run error: %v\n", err)
		return
	}

	fmt.Printf("Processed %d frames\n", frames)
	fmt.Printf("First sample: %.2f\n", dst.Samples()[0])
	// Output:
	// Processed 4 frames
	// First sample: 0.50
}

// Example_fileEditing shows the file-level editing API. Every operation
// reads one file and writes a new one; the input is never modified.
func Example_fileEditing() {
	dir, err := os.MkdirTemp("", "audedit-example")
	if err != nil {
		fmt.Printf("tempdir error: %v\n", err)
		return
	}
	defer os.RemoveAll(dir)

	// Three seconds of silence standing in for a real recording
	input := filepath.Join(dir, "take.wav")
	sink, err := wav.CreateFile(input, 8000, 1)
	if err != nil {
		fmt.Printf("create error: %v\n", err)
		return
	}
	sink.WriteSamples(make([]float32, 8000*3))
	sink.Close()

	// Keep only the second between t=1s and t=2s
	res, err := audedit.Trim(input, filepath.Join(dir, "out.wav"), time.Second, 2*time.Second)
	if err != nil {
		fmt.Printf("trim error: %v\n", err)
		return
	}

	fmt.Printf("Trimmed duration: %v\n", res.Duration)
	// Output: Trimmed duration: 1s
}

// Example_fadeCurves compares the gain trajectories of the four fade
// curves at their midpoint.
func Example_fadeCurves() {
	curves := map[string]effects.Curve{
		"linear":      effects.CurveLinear,
		"s-curve":     effects.CurveSCurve,
		"exponential": effects.CurveExponential,
		"logarithmic": effects.CurveLogarithmic,
	}

	for _, name := range []string{"linear", "s-curve", "exponential", "logarithmic"} {
		fmt.Printf("%s midpoint gain: %.3f\n", name, curves[name].Gain(0.5))
	}
	// Output:
	// linear midpoint gain: 0.500
	// s-curve midpoint gain: 0.500
	// exponential midpoint gain: 0.119
	// logarithmic midpoint gain: 0.831
}

// Example_peakMeasurement measures the sample peak of a stream.
func Example_peakMeasurement() {
	src := audio.NewBuffer(48000, 1)
	src.WriteSamples([]float32{0.5, -0.5, 0.5, -0.5})

	peak, err := loudness.MeasurePeak(src, false)
	if err != nil {
		fmt.Printf("measure error: %v\n", err)
		return
	}

	fmt.Printf("Peak: %.2f\n", peak)
	// Output: Peak: 0.50
}

// Example_soloAndMute shows how solo and mute interact across a group of
// channel strips: any solo silences every non-solo strip, including its
// own mute.
func Example_soloAndMute() {
	group := []mix.Settings{
		{Volume: 0.8},             // base track
		{Volume: 0.6, Solo: true}, // soloed layer
		{Volume: 0.5, Muted: true},
	}

	volumes := mix.EffectiveVolumes(group)
	fmt.Printf("base: %.1f\n", volumes[0])
	fmt.Printf("soloed layer: %.1f\n", volumes[1])
	fmt.Printf("muted layer: %.1f\n", volumes[2])
	// Output:
	// base: 0.0
	// soloed layer: 0.6
	// muted layer: 0.0
}

// Example_panning demonstrates constant-gain-center panning: the center
// position plays both sides at full volume, panning attenuates only the
// far side.
func Example_panning() {
	left, right := mix.PanGains(1.0, 0) // center
	fmt.Printf("center: L=%.1f R=%.1f\n", left, right)

	left, right = mix.PanGains(1.0, -0.5) // half left
	fmt.Printf("half left: L=%.1f R=%.1f\n", left, right)

	left, right = mix.PanGains(0.8, 1) // hard right
	fmt.Printf("hard right: L=%.1f R=%.1f\n", left, right)
	// Output:
	// center: L=1.0 R=1.0
	// half left: L=1.0 R=0.5
	// hard right: L=0.0 R=0.8
}

// Example_mixdown renders a track group to a stereo sink in memory.
func Example_mixdown() {
	base := audio.NewBuffer(8000, 1)
	base.WriteSamples([]float32{0.5, 0.5, 0.5, 0.5, 0.5, 0.5, 0.5, 0.5})

	dst := audio.NewBuffer(8000, 2)
	frames, err := mix.Mixdown(dst, mix.Track{
		Source:   base,
		Settings: mix.Settings{Volume: 1},
	}, nil)
	if err != nil {
		fmt.Printf("mixdown error: %v\n", err)
		return
	}

	fmt.Printf("Mixed %d frames\n", frames)
	fmt.Printf("L=%.2f R=%.2f\n", dst.Samples()[0], dst.Samples()[1])
	// Output:
	// Mixed 8 frames
	// L=0.50 R=0.50
}

// Example_errorHandling demonstrates proper error handling.
func Example_errorHandling() {
	// Try to decode invalid data
	invalidData := bytes.NewReader([]byte("not an audio file"))

	decoder := wav.Decoder{}
	src, err := decoder.Decode(invalidData)

	if err != nil {
		// Check for specific errors
		if errors.Is(err, wav.ErrNotWavFile) {
			fmt.Println("Not a valid WAV file")
		} else {
			fmt.Printf("Decode error: %v\n", err)
		}
		return
	}

	// If successful, process the audio
	_ = src
	// Output: Not a valid WAV file
}
