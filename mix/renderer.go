// SPDX-License-Identifier: EPL-2.0

package mix

import (
	"fmt"
	"io"
	"time"

	"github.com/ik5/audedit/audio"
)

// Track is one input to the renderer: a seekable source positioned on the
// output timeline by a signed offset. A negative offset means the content
// before time zero is skipped on playback; the same position math drives
// live scheduling and offline mixdown.
type Track struct {
	Source   audio.SeekSource
	Offset   time.Duration
	Settings Settings

	// Loop restarts the track from its beginning whenever it runs out.
	// Looped tracks do not extend the renderer's reported length.
	Loop bool
}

// rtrack is a track prepared for rendering: conformed to the output
// sample rate and at most two channels, with resolved pan gains.
type rtrack struct {
	src      audio.SeekSource // unconformed, used for seeking
	reader   audio.Source     // conformed read chain
	channels int
	loop     bool

	offset int64 // output-rate frames
	length int64 // content length in output-rate frames

	gainL, gainR float32

	cursor int64 // content frames consumed, output-rate domain
	eof    bool
	buf    []float32
}

// Renderer sums a group of tracks into a stereo stream, frame-aligned on
// a shared output timeline. It is the single summation engine behind both
// the offline mixdown and the overdub session's live monitoring.
type Renderer struct {
	sampleRate int
	tracks     []*rtrack
	pos        int64
	length     int64
}

// NewRenderer prepares the group for rendering at the given sample rate.
// Tracks at other rates are conformed with the cubic resampler; tracks
// with more than two channels are folded to mono first. Solo and mute are
// resolved across the whole group up front.
func NewRenderer(sampleRate int, tracks []Track) (*Renderer, error) {
	if len(tracks) == 0 {
		return nil, ErrNoTracks
	}

	group := make([]Settings, len(tracks))
	for i, t := range tracks {
		group[i] = t.Settings
	}
	volumes := EffectiveVolumes(group)

	r := &Renderer{sampleRate: sampleRate}

	for i, t := range tracks {
		gainL, gainR := PanGains(volumes[i], t.Settings.Pan)

		rt := &rtrack{
			src:    t.Source,
			loop:   t.Loop,
			offset: offsetFrames(t.Offset, sampleRate),
			length: scaleFrames(t.Source.Frames(), t.Source.SampleRate(), sampleRate),
			gainL:  float32(gainL),
			gainR:  float32(gainR),
		}
		rt.reader, rt.channels = conform(t.Source, sampleRate)

		if end := rt.offset + rt.length; end > r.length {
			r.length = end
		}

		r.tracks = append(r.tracks, rt)
	}

	if r.length < 0 {
		r.length = 0
	}

	if err := r.Seek(0); err != nil {
		return nil, err
	}

	return r, nil
}

// conform wraps src so the renderer always reads mono or stereo at the
// output rate.
func conform(src audio.SeekSource, sampleRate int) (audio.Source, int) {
	var reader audio.Source = src

	if reader.Channels() > 2 {
		reader = audio.NewMonoMixer(reader)
	}
	if reader.SampleRate() != sampleRate {
		reader = audio.NewResampler(reader, sampleRate)
	}

	return reader, reader.Channels()
}

// offsetFrames converts a signed timeline offset to output-rate frames,
// rounding half away from zero so negative offsets mirror positive ones.
func offsetFrames(d time.Duration, rate int) int64 {
	f := d.Seconds() * float64(rate)
	if f < 0 {
		return int64(f - 0.5)
	}
	return int64(f + 0.5)
}

func scaleFrames(frames int64, from, to int) int64 {
	if from == to {
		return frames
	}
	return int64(float64(frames) * float64(to) / float64(from))
}

func (r *Renderer) SampleRate() int { return r.sampleRate }
func (r *Renderer) Channels() int   { return 2 }
func (r *Renderer) BufSize() int    { return 4096 }

// Frames returns the output length: the furthest end among non-looped
// content, i.e. max(base end, every layer's offset+duration).
func (r *Renderer) Frames() int64 { return r.length }

// Position returns the current output frame cursor.
func (r *Renderer) Position() int64 { return r.pos }

func (r *Renderer) Close() error {
	var first error
	for _, t := range r.tracks {
		if err := t.reader.Close(); err != nil && first == nil {
			first = err
		}
	}
	if first != nil {
		return fmt.Errorf("%w", first)
	}
	return nil
}

// Seek repositions the output cursor. Tracks whose start lies beyond the
// new position rewind to their beginning and wait; tracks already past
// their start are sought into mid-content.
func (r *Renderer) Seek(frame int64) error {
	if frame < 0 {
		return audio.ErrSeekOutOfRange
	}

	for _, t := range r.tracks {
		content := frame - t.offset
		if t.loop && t.length > 0 && content > 0 {
			content %= t.length
		}
		if content < 0 || content > t.length {
			content = clampI64(content, 0, t.length)
		}

		srcFrame := scaleFrames(content, r.sampleRate, t.src.SampleRate())
		if srcFrame > t.src.Frames() {
			srcFrame = t.src.Frames()
		}
		if err := t.src.Seek(srcFrame); err != nil {
			return fmt.Errorf("seek track: %w", err)
		}

		// Rebuild the conformed chain so resampler state restarts clean.
		t.reader, t.channels = conform(t.src, r.sampleRate)
		t.cursor = content
		t.eof = false
	}

	r.pos = frame
	return nil
}

// ReadSamples renders the next chunk of the stereo mix into dst. No
// dynamic range control is applied; keeping the sum inside ±1.0 is the
// caller's responsibility via track volumes.
func (r *Renderer) ReadSamples(dst []float32) (int, error) {
	if len(dst)%2 != 0 {
		return 0, audio.ErrInvalidDstSize
	}

	frames := int64(len(dst) / 2)
	if !r.anyLoop() && r.pos >= r.length {
		return 0, io.EOF
	}
	if remain := r.length - r.pos; !r.anyLoop() && frames > remain {
		frames = remain
	}

	out := dst[:frames*2]
	for i := range out {
		out[i] = 0
	}

	for _, t := range r.tracks {
		if err := r.addTrack(t, out, frames); err != nil {
			return 0, err
		}
	}

	r.pos += frames

	if !r.anyLoop() && r.pos >= r.length {
		return int(frames * 2), io.EOF
	}
	return int(frames * 2), nil
}

func (r *Renderer) anyLoop() bool {
	for _, t := range r.tracks {
		if t.loop {
			return true
		}
	}
	return false
}

// addTrack mixes the overlap of one track with the chunk [r.pos,
// r.pos+frames) into out.
func (r *Renderer) addTrack(t *rtrack, out []float32, frames int64) error {
	// Skip tracks not started yet or already finished for this chunk.
	begin := t.offset - r.pos // chunk frame where the track starts
	if begin >= frames {
		return nil
	}
	if begin < 0 {
		begin = 0
	}
	if t.eof && !t.loop {
		return nil
	}

	want := frames - begin
	need := int(want) * t.channels
	if cap(t.buf) < need {
		t.buf = make([]float32, need)
	}
	buf := t.buf[:need]

	got, err := t.readContent(buf)
	if err != nil {
		return err
	}

	gotFrames := got / t.channels
	for i := 0; i < gotFrames; i++ {
		o := (int(begin) + i) * 2
		if t.channels == 1 {
			s := buf[i]
			out[o] += s * t.gainL
			out[o+1] += s * t.gainR
		} else {
			out[o] += buf[2*i] * t.gainL
			out[o+1] += buf[2*i+1] * t.gainR
		}
	}

	return nil
}

// readContent reads as much of buf as the track can supply, restarting
// looped tracks at their beginning on EOF.
func (t *rtrack) readContent(buf []float32) (int, error) {
	filled := 0
	for filled < len(buf) {
		n, err := t.reader.ReadSamples(buf[filled:])
		filled += n
		t.cursor += int64(n / t.channels)

		if err == io.EOF {
			if !t.loop {
				t.eof = true
				break
			}
			if err := t.src.Seek(0); err != nil {
				return filled, fmt.Errorf("loop seek: %w", err)
			}
			t.reader, t.channels = conform(t.src, t.reader.SampleRate())
			t.cursor = 0
			continue
		}
		if err != nil {
			return filled, fmt.Errorf("read track: %w", err)
		}
		if n == 0 {
			break
		}
	}

	return filled, nil
}

func clampI64(v, lo, hi int64) int64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
