// SPDX-License-Identifier: EPL-2.0

package effects

import (
	"math"
	"testing"
	"time"
)

func TestGate_AttenuatesBelowThreshold(t *testing.T) {
	t.Parallel()

	g := NewGate(1000, 1, GateParams{ThresholdDB: -20})

	// -40 dBFS, well under the threshold.
	buf := make([]float32, 100)
	for i := range buf {
		buf[i] = 0.01
	}
	g.Process(buf)

	// Gate starts closed, so everything stays near the -80 dB floor.
	for i, s := range buf {
		if math.Abs(float64(s)) > 0.001 {
			t.Fatalf("sample %d = %v, want attenuated", i, s)
		}
	}
}

func TestGate_PassesAboveThreshold(t *testing.T) {
	t.Parallel()

	g := NewGate(1000, 1, GateParams{ThresholdDB: -20})

	buf := make([]float32, 100)
	for i := range buf {
		buf[i] = 0.5
	}
	g.Process(buf)

	// Instant attack: open from the first frame.
	for i := 1; i < len(buf); i++ {
		if math.Abs(float64(buf[i]-0.5)) > 1e-6 {
			t.Fatalf("sample %d = %v, want 0.5", i, buf[i])
		}
	}
}

func TestGate_HoldKeepsOpen(t *testing.T) {
	t.Parallel()

	const rate = 1000
	g := NewGate(rate, 1, GateParams{
		ThresholdDB: -20,
		Hold:        50 * time.Millisecond, // 50 frames
	})

	// Loud frame, then silence.
	buf := make([]float32, 100)
	buf[0] = 0.5
	for i := 1; i < len(buf); i++ {
		buf[i] = 0.05
	}
	g.Process(buf)

	// Within the hold window the quiet signal still passes.
	for i := 1; i <= 40; i++ {
		if math.Abs(float64(buf[i]-0.05)) > 1e-6 {
			t.Fatalf("sample %d = %v, want 0.05 during hold", i, buf[i])
		}
	}

	// Well past the hold the gate has released.
	last := buf[len(buf)-1]
	if math.Abs(float64(last)) > 0.001 {
		t.Errorf("last sample = %v, want attenuated after hold", last)
	}
}

func TestGate_AttackRamps(t *testing.T) {
	t.Parallel()

	const rate = 1000
	g := NewGate(rate, 1, GateParams{
		ThresholdDB: -20,
		Attack:      50 * time.Millisecond, // 50 frames to open
	})

	buf := make([]float32, 100)
	for i := range buf {
		buf[i] = 1.0
	}
	g.Process(buf)

	if buf[0] > 0.1 {
		t.Errorf("first sample = %v, want still near floor", buf[0])
	}
	if buf[25] <= buf[5] {
		t.Errorf("gain not ramping: buf[25]=%v <= buf[5]=%v", buf[25], buf[5])
	}
	if math.Abs(float64(buf[99]-1.0)) > 1e-6 {
		t.Errorf("last sample = %v, want fully open", buf[99])
	}
}

func TestGate_LinkedStereo(t *testing.T) {
	t.Parallel()

	g := NewGate(1000, 2, GateParams{ThresholdDB: -20})

	// Loud left, quiet right: both channels must open together.
	buf := make([]float32, 200)
	for i := 0; i < 100; i++ {
		buf[2*i] = 0.5
		buf[2*i+1] = 0.01
	}
	g.Process(buf)

	for i := 1; i < 100; i++ {
		if math.Abs(float64(buf[2*i+1]-0.01)) > 1e-6 {
			t.Fatalf("right sample %d = %v, want passed through", i, buf[2*i+1])
		}
	}
}

func TestGate_FloorDuck(t *testing.T) {
	t.Parallel()

	g := NewGate(1000, 1, GateParams{ThresholdDB: -20, FloorDB: -20})

	buf := make([]float32, 100)
	for i := range buf {
		buf[i] = 0.01
	}
	g.Process(buf)

	// Closed gain is -20 dB (0.1x), a duck rather than a mute.
	want := 0.001
	for i, s := range buf {
		if math.Abs(float64(s)-want) > want*0.1 {
			t.Fatalf("sample %d = %v, want ≈%v", i, s, want)
		}
	}
}
