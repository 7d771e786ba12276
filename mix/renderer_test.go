// SPDX-License-Identifier: EPL-2.0

package mix

import (
	"io"
	"math"
	"testing"
	"time"

	"github.com/ik5/audedit/internal/audiotest"
)

func renderAll(t *testing.T, r *Renderer) []float32 {
	t.Helper()

	buf := make([]float32, 1024)
	var out []float32

	for {
		n, err := r.ReadSamples(buf)
		if n > 0 {
			out = append(out, buf[:n]...)
		}
		if err == io.EOF {
			return out
		}
		if err != nil {
			t.Fatalf("ReadSamples() error = %v", err)
		}
	}
}

func TestRenderer_NoTracks(t *testing.T) {
	t.Parallel()

	if _, err := NewRenderer(8000, nil); err != ErrNoTracks {
		t.Errorf("NewRenderer(nil) error = %v, want ErrNoTracks", err)
	}
}

func TestRenderer_SingleMonoTrack(t *testing.T) {
	t.Parallel()

	src := audiotest.NewConstantSource(8000, 1, 100, 0.5)
	r, err := NewRenderer(8000, []Track{
		{Source: src, Settings: Settings{Volume: 1}},
	})
	if err != nil {
		t.Fatalf("NewRenderer() error = %v", err)
	}

	out := renderAll(t, r)
	if len(out) != 200 {
		t.Fatalf("output samples = %d, want 200 (100 stereo frames)", len(out))
	}

	// Constant-gain center: the mono source lands on both sides at full
	// volume.
	for i, s := range out {
		if math.Abs(float64(s-0.5)) > 1e-6 {
			t.Fatalf("sample %d = %v, want 0.5", i, s)
		}
	}
}

func TestRenderer_OffsetSchedulesLate(t *testing.T) {
	t.Parallel()

	const rate = 1000

	base := audiotest.NewConstantSource(rate, 1, 1000, 0.25)
	layer := audiotest.NewConstantSource(rate, 1, 200, 0.5)

	r, err := NewRenderer(rate, []Track{
		{Source: base, Settings: Settings{Volume: 1}},
		{Source: layer, Offset: 500 * time.Millisecond, Settings: Settings{Volume: 1}},
	})
	if err != nil {
		t.Fatalf("NewRenderer() error = %v", err)
	}

	if r.Frames() != 1000 {
		t.Errorf("Frames() = %d, want 1000", r.Frames())
	}

	out := renderAll(t, r)

	// Before the layer starts: base only.
	if got := out[2*100]; math.Abs(float64(got-0.25)) > 1e-6 {
		t.Errorf("frame 100 = %v, want 0.25", got)
	}
	// During the overlap [500, 700): summed.
	if got := out[2*600]; math.Abs(float64(got-0.75)) > 1e-6 {
		t.Errorf("frame 600 = %v, want 0.75", got)
	}
	// After the layer ends: base only again.
	if got := out[2*800]; math.Abs(float64(got-0.25)) > 1e-6 {
		t.Errorf("frame 800 = %v, want 0.25", got)
	}
}

func TestRenderer_NegativeOffsetSkipsHead(t *testing.T) {
	t.Parallel()

	const rate = 1000

	base := audiotest.NewConstantSource(rate, 1, 1000, 0.25)
	layer := audiotest.NewMockSource(rate, 1, 800, func(frame, channel int) float32 {
		return float32(frame)
	})

	r, err := NewRenderer(rate, []Track{
		{Source: base, Settings: Settings{Volume: 1}},
		{Source: layer, Offset: -500 * time.Millisecond, Settings: Settings{Volume: 1}},
	})
	if err != nil {
		t.Fatalf("NewRenderer() error = %v", err)
	}

	// The layer's tail ends at frame 300, before the base: the base
	// still defines the length.
	if r.Frames() != 1000 {
		t.Errorf("Frames() = %d, want 1000", r.Frames())
	}

	out := renderAll(t, r)
	if len(out) != 2*1000 {
		t.Fatalf("output samples = %d, want %d", len(out), 2*1000)
	}

	// The layer's first half second lies before time zero and is
	// skipped: output frame 0 plays layer content frame 500.
	if got := out[0]; math.Abs(float64(got-(500+0.25))) > 1e-3 {
		t.Errorf("frame 0 = %v, want layer content 500 plus base", got)
	}
	if got := out[2*200]; math.Abs(float64(got-(700+0.25))) > 1e-3 {
		t.Errorf("frame 200 = %v, want layer content 700 plus base", got)
	}

	// Past the layer's remaining 300 frames the base plays alone.
	if got := out[2*400]; math.Abs(float64(got-0.25)) > 1e-6 {
		t.Errorf("frame 400 = %v, want base only", got)
	}

	// Seeking keeps the same content alignment.
	if err := r.Seek(100); err != nil {
		t.Fatalf("Seek(100) error = %v", err)
	}
	buf := make([]float32, 2)
	if _, err := r.ReadSamples(buf); err != nil && err != io.EOF {
		t.Fatalf("ReadSamples() error = %v", err)
	}
	if math.Abs(float64(buf[0]-(600+0.25))) > 1e-3 {
		t.Errorf("frame 100 after seek = %v, want layer content 600 plus base", buf[0])
	}
}

func TestRenderer_LayerExtendsLength(t *testing.T) {
	t.Parallel()

	const rate = 1000

	base := audiotest.NewConstantSource(rate, 1, 500, 0.25)
	layer := audiotest.NewConstantSource(rate, 1, 400, 0.5)

	r, err := NewRenderer(rate, []Track{
		{Source: base, Settings: Settings{Volume: 1}},
		{Source: layer, Offset: 800 * time.Millisecond, Settings: Settings{Volume: 1}},
	})
	if err != nil {
		t.Fatalf("NewRenderer() error = %v", err)
	}

	// The layer runs past the base: 800 + 400 frames.
	if r.Frames() != 1200 {
		t.Errorf("Frames() = %d, want 1200", r.Frames())
	}

	out := renderAll(t, r)
	if len(out) != 2*1200 {
		t.Fatalf("output samples = %d, want %d", len(out), 2*1200)
	}

	// The gap between base end and layer start is silent.
	if got := out[2*600]; got != 0 {
		t.Errorf("frame 600 = %v, want silence in the gap", got)
	}
}

func TestRenderer_PanAndVolume(t *testing.T) {
	t.Parallel()

	src := audiotest.NewConstantSource(8000, 1, 100, 1.0)
	r, err := NewRenderer(8000, []Track{
		{Source: src, Settings: Settings{Volume: 0.8, Pan: 0.5}},
	})
	if err != nil {
		t.Fatalf("NewRenderer() error = %v", err)
	}

	out := renderAll(t, r)
	for i := 0; i+1 < len(out); i += 2 {
		if math.Abs(float64(out[i]-0.4)) > 1e-6 {
			t.Fatalf("left sample = %v, want 0.4", out[i])
		}
		if math.Abs(float64(out[i+1]-0.8)) > 1e-6 {
			t.Fatalf("right sample = %v, want 0.8", out[i+1])
		}
	}
}

func TestRenderer_MuteAndSolo(t *testing.T) {
	t.Parallel()

	loud := audiotest.NewConstantSource(8000, 1, 100, 0.5)
	soloed := audiotest.NewConstantSource(8000, 1, 100, 0.25)

	r, err := NewRenderer(8000, []Track{
		{Source: loud, Settings: Settings{Volume: 1}},
		{Source: soloed, Settings: Settings{Volume: 1, Solo: true}},
	})
	if err != nil {
		t.Fatalf("NewRenderer() error = %v", err)
	}

	// Only the soloed track sounds; the other contributes exactly zero.
	out := renderAll(t, r)
	for i, s := range out {
		if math.Abs(float64(s-0.25)) > 1e-6 {
			t.Fatalf("sample %d = %v, want solo-only 0.25", i, s)
		}
	}
}

func TestRenderer_StereoTrackKeepsSides(t *testing.T) {
	t.Parallel()

	src := audiotest.NewMockSource(8000, 2, 100, func(frame, channel int) float32 {
		if channel == 0 {
			return 0.5
		}
		return -0.5
	})
	r, err := NewRenderer(8000, []Track{
		{Source: src, Settings: Settings{Volume: 1}},
	})
	if err != nil {
		t.Fatalf("NewRenderer() error = %v", err)
	}

	out := renderAll(t, r)
	for i := 0; i+1 < len(out); i += 2 {
		if out[i] != 0.5 || out[i+1] != -0.5 {
			t.Fatalf("frame %d = (%v, %v), want (0.5, -0.5)", i/2, out[i], out[i+1])
		}
	}
}

func TestRenderer_ResamplesMismatchedTrack(t *testing.T) {
	t.Parallel()

	// A one-second 22.05 kHz layer under a one-second 44.1 kHz base.
	base := audiotest.NewConstantSource(44100, 1, 44100, 0.25)
	layer := audiotest.NewConstantSource(22050, 1, 22050, 0.25)

	r, err := NewRenderer(44100, []Track{
		{Source: base, Settings: Settings{Volume: 1}},
		{Source: layer, Settings: Settings{Volume: 1}},
	})
	if err != nil {
		t.Fatalf("NewRenderer() error = %v", err)
	}

	out := renderAll(t, r)

	// Mid-file both tracks are audible at roughly their summed level.
	mid := out[2*20000]
	if math.Abs(float64(mid-0.5)) > 0.05 {
		t.Errorf("mid sample = %v, want ≈0.5", mid)
	}
}

func TestRenderer_SeekRestartsCleanly(t *testing.T) {
	t.Parallel()

	src := audiotest.NewMockSource(8000, 1, 1000, func(frame, channel int) float32 {
		return float32(frame) / 1000
	})
	r, err := NewRenderer(8000, []Track{
		{Source: src, Settings: Settings{Volume: 1}},
	})
	if err != nil {
		t.Fatalf("NewRenderer() error = %v", err)
	}

	first := renderAll(t, r)

	if err := r.Seek(0); err != nil {
		t.Fatalf("Seek(0) error = %v", err)
	}
	second := renderAll(t, r)

	if len(first) != len(second) {
		t.Fatalf("length mismatch after reseek: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i] != second[i] {
			t.Fatalf("sample %d differs after reseek: %v vs %v", i, first[i], second[i])
		}
	}
}

func TestRenderer_SeekMidStream(t *testing.T) {
	t.Parallel()

	src := audiotest.NewMockSource(8000, 1, 1000, func(frame, channel int) float32 {
		return float32(frame)
	})
	r, err := NewRenderer(8000, []Track{
		{Source: src, Settings: Settings{Volume: 1}},
	})
	if err != nil {
		t.Fatalf("NewRenderer() error = %v", err)
	}

	if err := r.Seek(500); err != nil {
		t.Fatalf("Seek(500) error = %v", err)
	}
	if r.Position() != 500 {
		t.Errorf("Position() = %d, want 500", r.Position())
	}

	buf := make([]float32, 2)
	if _, err := r.ReadSamples(buf); err != nil && err != io.EOF {
		t.Fatalf("ReadSamples() error = %v", err)
	}
	if buf[0] != 500 {
		t.Errorf("first sample after seek = %v, want frame 500", buf[0])
	}
}
