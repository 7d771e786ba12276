// SPDX-License-Identifier: EPL-2.0

package audio

import (
	"io"
	"testing"

	"github.com/ik5/audedit/internal/audiotest"
)

func TestBuffer_ReadAll(t *testing.T) {
	t.Parallel()

	src := audiotest.NewConstantSource(8000, 2, 500, 0.25)

	buf, err := ReadAll(src)
	if err != nil {
		t.Fatalf("ReadAll() error = %v", err)
	}

	if buf.SampleRate() != 8000 {
		t.Errorf("SampleRate() = %d, want 8000", buf.SampleRate())
	}
	if buf.Channels() != 2 {
		t.Errorf("Channels() = %d, want 2", buf.Channels())
	}
	if buf.Frames() != 500 {
		t.Errorf("Frames() = %d, want 500", buf.Frames())
	}

	for i, s := range buf.Samples() {
		if s != 0.25 {
			t.Fatalf("Samples()[%d] = %v, want 0.25", i, s)
		}
	}
}

func TestBuffer_SeekAndRead(t *testing.T) {
	t.Parallel()

	b := NewBuffer(8000, 1)
	if _, err := b.WriteSamples([]float32{0, 1, 2, 3, 4, 5, 6, 7}); err != nil {
		t.Fatalf("WriteSamples() error = %v", err)
	}

	if err := b.Seek(5); err != nil {
		t.Fatalf("Seek(5) error = %v", err)
	}

	dst := make([]float32, 8)
	n, err := b.ReadSamples(dst)
	if err != io.EOF {
		t.Errorf("ReadSamples() error = %v, want io.EOF", err)
	}
	if n != 3 {
		t.Fatalf("ReadSamples() n = %d, want 3", n)
	}
	for i, want := range []float32{5, 6, 7} {
		if dst[i] != want {
			t.Errorf("dst[%d] = %v, want %v", i, dst[i], want)
		}
	}
}

func TestBuffer_SeekToEnd(t *testing.T) {
	t.Parallel()

	b := NewBuffer(8000, 1)
	b.WriteSamples([]float32{1, 2, 3})

	if err := b.Seek(3); err != nil {
		t.Fatalf("Seek(Frames()) error = %v", err)
	}

	n, err := b.ReadSamples(make([]float32, 4))
	if n != 0 || err != io.EOF {
		t.Errorf("ReadSamples() = (%d, %v), want (0, io.EOF)", n, err)
	}
}

func TestBuffer_SeekOutOfRange(t *testing.T) {
	t.Parallel()

	b := NewBuffer(8000, 1)
	b.WriteSamples([]float32{1, 2, 3})

	if err := b.Seek(-1); err != ErrSeekOutOfRange {
		t.Errorf("Seek(-1) error = %v, want ErrSeekOutOfRange", err)
	}
	if err := b.Seek(4); err != ErrSeekOutOfRange {
		t.Errorf("Seek(4) error = %v, want ErrSeekOutOfRange", err)
	}
}

func TestBuffer_InvalidSizes(t *testing.T) {
	t.Parallel()

	b := NewBuffer(8000, 2)
	b.WriteSamples([]float32{1, 2, 3, 4})

	if _, err := b.ReadSamples(make([]float32, 3)); err != ErrInvalidDstSize {
		t.Errorf("ReadSamples(odd) error = %v, want ErrInvalidDstSize", err)
	}
	if _, err := b.WriteSamples(make([]float32, 5)); err != ErrInvalidDstSize {
		t.Errorf("WriteSamples(odd) error = %v, want ErrInvalidDstSize", err)
	}
}
