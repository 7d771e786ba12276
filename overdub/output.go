// SPDX-License-Identifier: EPL-2.0

package overdub

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/ebitengine/oto/v3"

	"github.com/ik5/audedit/utils"
)

// Output is the playback device boundary for live monitoring. The session
// only ever pushes interleaved float32 stereo into it; device selection and
// lifecycle belong to the host.
type Output interface {
	// Open initializes the device for the given stream format.
	Open(sampleRate, channels int) error
	// Write pushes samples to the device, blocking until consumed.
	Write(samples []float32) error
	// Close releases the device.
	Close() error
}

// OtoOutput plays through the oto library. A persistent player reads from
// an in-process pipe so Write stays a plain blocking push.
type OtoOutput struct {
	ctx      *oto.Context
	player   *oto.Player
	pipeR    *io.PipeReader
	pipeW    *io.PipeWriter
	channels int
	buf      []byte
}

func NewOtoOutput() *OtoOutput { return &OtoOutput{} }

func (o *OtoOutput) Open(sampleRate, channels int) error {
	if o.ctx != nil {
		return nil // oto allows one context per process
	}

	ctx, ready, err := oto.NewContext(&oto.NewContextOptions{
		SampleRate:   sampleRate,
		ChannelCount: channels,
		Format:       oto.FormatSignedInt16LE,
	})
	if err != nil {
		return fmt.Errorf("open playback device: %w", err)
	}
	<-ready

	o.ctx = ctx
	o.channels = channels
	o.pipeR, o.pipeW = io.Pipe()
	o.player = ctx.NewPlayer(o.pipeR)
	o.player.Play()

	return nil
}

func (o *OtoOutput) Write(samples []float32) error {
	if o.player == nil {
		return fmt.Errorf("playback device not open")
	}

	if cap(o.buf) < len(samples)*2 {
		o.buf = make([]byte, len(samples)*2)
	}
	o.buf = o.buf[:len(samples)*2]

	for i, s := range samples {
		binary.LittleEndian.PutUint16(o.buf[2*i:], uint16(utils.Float32ToInt16(s)))
	}

	if _, err := o.pipeW.Write(o.buf); err != nil {
		return fmt.Errorf("playback write: %w", err)
	}
	return nil
}

func (o *OtoOutput) Close() error {
	if o.player == nil {
		return nil
	}

	o.pipeW.Close()
	if err := o.player.Close(); err != nil {
		return fmt.Errorf("%w", err)
	}
	return nil
}
