// SPDX-License-Identifier: EPL-2.0

package audedit

import (
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/ik5/audedit/effects"
	"github.com/ik5/audedit/engine"
	"github.com/ik5/audedit/formats/wav"
	"github.com/ik5/audedit/loudness"
	"github.com/ik5/audedit/mix"
)

// writeToneWav creates a silent mono WAV with a tone burst of the given
// linear amplitude between startSec and endSec.
func writeToneWav(t *testing.T, path string, rate, seconds int, amplitude float64, startSec, endSec int) {
	t.Helper()

	sink, err := wav.CreateFile(path, rate, 1)
	if err != nil {
		t.Fatalf("CreateFile() error = %v", err)
	}

	total := rate * seconds
	start := rate * startSec
	end := rate * endSec

	buf := make([]float32, total)
	for i := start; i < end; i++ {
		buf[i] = float32(amplitude * math.Sin(2*math.Pi*440*float64(i)/float64(rate)))
	}
	if _, err := sink.WriteSamples(buf); err != nil {
		t.Fatalf("WriteSamples() error = %v", err)
	}
	if err := sink.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
}

func measureFile(t *testing.T, path string, truePeak bool) float64 {
	t.Helper()

	src, err := Open(path)
	if err != nil {
		t.Fatalf("Open(%s) error = %v", path, err)
	}
	defer src.Close()

	peak, err := loudness.MeasurePeak(src, truePeak)
	if err != nil {
		t.Fatalf("MeasurePeak() error = %v", err)
	}
	return peak
}

func TestTrimThenNormalize(t *testing.T) {
	t.Parallel()

	// A ten-second recording holding a -6 dBFS tone from second 3 to 5.
	// Trimming [3s, 5s) isolates the tone; normalizing brings it to full
	// scale.
	dir := t.TempDir()
	input := filepath.Join(dir, "take.wav")
	writeToneWav(t, input, 48000, 10, math.Pow(10, -6.0/20), 3, 5)

	trimmed, err := Trim(input, filepath.Join(dir, "trimmed.wav"), 3*time.Second, 5*time.Second)
	if err != nil {
		t.Fatalf("Trim() error = %v", err)
	}
	if trimmed.Duration != 2*time.Second {
		t.Errorf("trimmed duration = %v, want 2s", trimmed.Duration)
	}

	peak := measureFile(t, trimmed.OutputPath, false)
	want := math.Pow(10, -6.0/20)
	if math.Abs(peak-want) > 0.01 {
		t.Errorf("trimmed peak = %v, want ≈%v (-6 dBFS)", peak, want)
	}

	normalized, err := NormalizePeak(trimmed.OutputPath, filepath.Join(dir, "normalized.wav"), 0, false)
	if err != nil {
		t.Fatalf("NormalizePeak() error = %v", err)
	}
	if normalized.Duration != 2*time.Second {
		t.Errorf("normalized duration = %v, want 2s", normalized.Duration)
	}

	peak = measureFile(t, normalized.OutputPath, false)
	if math.Abs(peak-1.0) > 0.01 {
		t.Errorf("normalized peak = %v, want ≈1.0 (0 dBFS)", peak)
	}

	// The input file is untouched throughout.
	if p := measureFile(t, input, false); math.Abs(p-want) > 0.01 {
		t.Errorf("input peak changed to %v", p)
	}
}

func TestCutShortensFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	input := filepath.Join(dir, "take.wav")
	writeToneWav(t, input, 8000, 5, 0.5, 0, 5)

	res, err := Cut(input, "", time.Second, 2*time.Second)
	if err != nil {
		t.Fatalf("Cut() error = %v", err)
	}
	defer os.Remove(res.OutputPath)

	if res.Duration != 4*time.Second {
		t.Errorf("duration = %v, want 4s", res.Duration)
	}

	// Derived names land next to the input.
	if filepath.Dir(res.OutputPath) != dir {
		t.Errorf("output dir = %s, want %s", filepath.Dir(res.OutputPath), dir)
	}
}

func TestDerivedPathsNeverCollide(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	input := filepath.Join(dir, "take.wav")
	writeToneWav(t, input, 8000, 3, 0.5, 0, 3)

	// Two edits within the same wall-clock second must land on distinct
	// derived names, or the second silently truncates the first.
	first, err := Cut(input, "", time.Second, 2*time.Second)
	if err != nil {
		t.Fatalf("Cut() #1 error = %v", err)
	}
	defer os.Remove(first.OutputPath)

	second, err := Cut(input, "", time.Second, 2*time.Second)
	if err != nil {
		t.Fatalf("Cut() #2 error = %v", err)
	}
	defer os.Remove(second.OutputPath)

	if first.OutputPath == second.OutputPath {
		t.Fatalf("both edits landed on %s", first.OutputPath)
	}

	for _, path := range []string{first.OutputPath, second.OutputPath} {
		src, err := Open(path)
		if err != nil {
			t.Fatalf("Open(%s) error = %v", path, err)
		}
		if src.Frames() != 16000 {
			t.Errorf("%s frames = %d, want 16000", path, src.Frames())
		}
		src.Close()
	}
}

func TestFailedEditLeavesNoPartialFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	input := filepath.Join(dir, "take.wav")
	writeToneWav(t, input, 8000, 2, 0.5, 0, 2)

	out := filepath.Join(dir, "bad.wav")
	_, err := Trim(input, out, 2*time.Second, time.Second)
	if !errors.Is(err, engine.ErrInvalidRange) {
		t.Fatalf("Trim(inverted) error = %v, want ErrInvalidRange", err)
	}

	if _, err := os.Stat(out); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("partial output still exists after failed edit")
	}
}

func TestRemoveSilencesFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	input := filepath.Join(dir, "take.wav")
	// Tone for 1s, silence for 3s, tone again for 1s.
	rate := 8000
	sink, err := wav.CreateFile(input, rate, 1)
	if err != nil {
		t.Fatalf("CreateFile() error = %v", err)
	}
	buf := make([]float32, rate*5)
	for i := 0; i < rate; i++ {
		buf[i] = 0.5
		buf[rate*4+i] = 0.5
	}
	if _, err := sink.WriteSamples(buf); err != nil {
		t.Fatalf("WriteSamples() error = %v", err)
	}
	if err := sink.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	res, err := RemoveSilences(input, filepath.Join(dir, "tight.wav"), []engine.SilenceRange{
		{Start: time.Second, End: 4 * time.Second},
	}, 100*time.Millisecond)
	if err != nil {
		t.Fatalf("RemoveSilences() error = %v", err)
	}

	if res.RemovedRanges != 1 {
		t.Errorf("RemovedRanges = %d, want 1", res.RemovedRanges)
	}
	if want := 2800 * time.Millisecond; res.RemovedDuration != want {
		t.Errorf("RemovedDuration = %v, want %v", res.RemovedDuration, want)
	}
	if want := 2200 * time.Millisecond; res.Duration != want {
		t.Errorf("Duration = %v, want %v", res.Duration, want)
	}
}

func TestOpen_UnknownFormat(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "notes.txt")
	if err := os.WriteFile(path, []byte("not audio"), 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	if _, err := Open(path); !errors.Is(err, ErrUnknownFormat) {
		t.Errorf("Open(.txt) error = %v, want ErrUnknownFormat", err)
	}
}

func TestMixdownFiles(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	base := filepath.Join(dir, "base.wav")
	layer := filepath.Join(dir, "layer.wav")
	writeToneWav(t, base, 8000, 2, 0.25, 0, 2)
	writeToneWav(t, layer, 8000, 1, 0.25, 0, 1)

	res, err := Mixdown(base, filepath.Join(dir, "mix.wav"),
		mix.Settings{Volume: 1},
		[]MixLayer{
			{Path: layer, Offset: 500 * time.Millisecond, Settings: mix.Settings{Volume: 1}},
		})
	if err != nil {
		t.Fatalf("Mixdown() error = %v", err)
	}

	if res.Duration != 2*time.Second {
		t.Errorf("duration = %v, want 2s", res.Duration)
	}

	out, err := Open(res.OutputPath)
	if err != nil {
		t.Fatalf("Open(mix) error = %v", err)
	}
	defer out.Close()

	if out.Channels() != 2 {
		t.Errorf("mix channels = %d, want 2", out.Channels())
	}
	if out.SampleRate() != 8000 {
		t.Errorf("mix rate = %d, want 8000", out.SampleRate())
	}
	if out.Frames() != 16000 {
		t.Errorf("mix frames = %d, want 16000", out.Frames())
	}
}

func TestFadeFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	input := filepath.Join(dir, "take.wav")
	writeToneWav(t, input, 8000, 2, 0.5, 0, 2)

	res, err := Fade(input, filepath.Join(dir, "faded.wav"),
		500*time.Millisecond, 500*time.Millisecond, effects.CurveLinear)
	if err != nil {
		t.Fatalf("Fade() error = %v", err)
	}

	src, err := Open(res.OutputPath)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer src.Close()

	all := make([]float32, 16000)
	total := 0
	for total < len(all) {
		n, rerr := src.ReadSamples(all[total:])
		total += n
		if rerr != nil {
			break
		}
	}

	// Start and end are faded toward zero; the middle keeps its level.
	startMax := float32(0)
	for _, s := range all[:100] {
		if s > startMax {
			startMax = s
		}
	}
	if startMax > 0.05 {
		t.Errorf("start level = %v, want faded", startMax)
	}

	midMax := float32(0)
	for _, s := range all[7000:9000] {
		if s > midMax {
			midMax = s
		}
	}
	if midMax < 0.45 {
		t.Errorf("middle level = %v, want ≈0.5", midMax)
	}
}
