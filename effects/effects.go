// SPDX-License-Identifier: EPL-2.0

package effects

// Processor transforms audio one chunk at a time. Implementations own
// whatever filter memory they need (delay taps, envelopes, ring buffers)
// and carry it across calls, so the engine can stream arbitrarily long
// files through them chunk by chunk.
//
// A Processor instance belongs to exactly one operation invocation and is
// never shared across goroutines.
type Processor interface {
	// Process transforms interleaved samples in place. len(buf) is always
	// a multiple of the processor's channel count.
	Process(buf []float32)

	// Tail returns how many frames of output the processor keeps
	// producing after its input ends (reverb and echo decay). The engine
	// feeds silence for that long. Zero for gain-shaped effects.
	Tail() int
}

// Chain runs processors in sequence over the same buffer. Each stage sees
// the previous stage's output. The chain's tail is the sum of stage tails.
type Chain struct {
	stages []Processor
}

func NewChain(stages ...Processor) *Chain {
	return &Chain{stages: stages}
}

func (c *Chain) Add(p Processor) {
	c.stages = append(c.stages, p)
}

func (c *Chain) Process(buf []float32) {
	for _, p := range c.stages {
		p.Process(buf)
	}
}

func (c *Chain) Tail() int {
	total := 0
	for _, p := range c.stages {
		total += p.Tail()
	}
	return total
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
