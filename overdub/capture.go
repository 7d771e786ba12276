// SPDX-License-Identifier: EPL-2.0

package overdub

import (
	"fmt"
	"math"
	"sync"
	"sync/atomic"

	"github.com/ik5/audedit/audio"
)

// captureWriter moves captured buffers from the real-time path to a file.
// The capture callback copies its buffer and enqueues it; a dedicated
// goroutine performs the actual writes, so no file I/O ever happens on
// the capture path. Buffers are written strictly in arrival order, and the
// written-frame counter, not wall-clock time, is the single source of
// truth for the recorded duration.
type captureWriter struct {
	sink     audio.Sink
	channels int

	// mu orders enqueue against drain closing the queue, so a straggling
	// capture callback can never send on a closed channel. The critical
	// section never blocks: sends stay non-blocking under it.
	mu     sync.Mutex
	closed bool

	queue chan []float32
	done  chan struct{}

	frames atomic.Int64
	peak   atomic.Uint32 // float32 bits; lock-free meter snapshot
	err    atomic.Value  // first write error, type error
}

const captureQueueDepth = 64

func newCaptureWriter(sink audio.Sink, channels int) *captureWriter {
	w := &captureWriter{
		sink:     sink,
		channels: channels,
		queue:    make(chan []float32, captureQueueDepth),
		done:     make(chan struct{}),
	}

	go w.run()
	return w
}

func (w *captureWriter) run() {
	defer close(w.done)

	for buf := range w.queue {
		if w.err.Load() != nil {
			continue // keep draining so enqueue never blocks forever
		}

		if _, err := w.sink.WriteSamples(buf); err != nil {
			w.err.Store(fmt.Errorf("capture write: %w", err))
			continue
		}

		w.frames.Add(int64(len(buf) / w.channels))
	}
}

// enqueue copies buf and hands it to the writer goroutine. Called from the
// capture callback; it must not block on I/O. If the queue is full the
// buffer is dropped rather than stalling the callback.
func (w *captureWriter) enqueue(buf []float32) {
	peak := float32(0)
	for _, s := range buf {
		if s < 0 {
			s = -s
		}
		if s > peak {
			peak = s
		}
	}
	w.storePeak(peak)

	cp := make([]float32, len(buf))
	copy(cp, buf)

	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return
	}

	select {
	case w.queue <- cp:
	default:
	}
}

func (w *captureWriter) storePeak(p float32) {
	for {
		old := w.peak.Load()
		if math.Float32frombits(old) >= p {
			return
		}
		if w.peak.CompareAndSwap(old, math.Float32bits(p)) {
			return
		}
	}
}

// Peak returns and resets the meter snapshot accumulated since the last
// call.
func (w *captureWriter) Peak() float32 {
	return math.Float32frombits(w.peak.Swap(0))
}

// Frames returns the frames flushed to the file so far.
func (w *captureWriter) Frames() int64 { return w.frames.Load() }

// drain closes the queue, waits for every pending buffer to hit the file,
// closes the sink and returns the final frame count. No buffer is lost or
// written after drain returns.
func (w *captureWriter) drain() (int64, error) {
	w.mu.Lock()
	if !w.closed {
		w.closed = true
		close(w.queue)
	}
	w.mu.Unlock()
	<-w.done

	err, _ := w.err.Load().(error)
	if cerr := w.sink.Close(); cerr != nil && err == nil {
		err = fmt.Errorf("close capture: %w", cerr)
	}

	return w.frames.Load(), err
}
