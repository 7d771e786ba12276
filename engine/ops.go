// SPDX-License-Identifier: EPL-2.0

package engine

import (
	"fmt"
	"io"
	"time"

	"github.com/ik5/audedit/audio"
	"github.com/ik5/audedit/effects"
)

// Trim keeps only [start, end) of the source. Ranges are validated before
// any I/O: end <= start is an error, while a range clipped entirely
// outside the source yields an empty output rather than a failure.
func Trim(src audio.SeekSource, dst audio.Sink, start, end time.Duration, opts Options) (int64, error) {
	seg, err := clipRange(src, start, end)
	if err != nil {
		return 0, err
	}

	return CopySegments(src, dst, []Segment{seg}, opts)
}

// Cut removes [start, end) from the source, keeping everything around it.
func Cut(src audio.SeekSource, dst audio.Sink, start, end time.Duration, opts Options) (int64, error) {
	seg, err := clipRange(src, start, end)
	if err != nil {
		return 0, err
	}

	return CopySegments(src, dst, []Segment{
		{Start: 0, End: seg.Start},
		{Start: seg.End, End: src.Frames()},
	}, opts)
}

// CrossfadeCut removes [start, end) and splices the remaining halves with
// an equal-power crossfade. The fade window is the smaller of the
// requested duration and the audio available on either side of the
// splice, so a cut near an edge degrades gracefully toward a plain cut.
func CrossfadeCut(src audio.SeekSource, dst audio.Sink, start, end, fade time.Duration, opts Options) (int64, error) {
	seg, err := clipRange(src, start, end)
	if err != nil {
		return 0, err
	}

	channels := src.Channels()
	total := src.Frames()

	fadeFrames := framesFor(fade, src.SampleRate())
	if fadeFrames > seg.Start {
		fadeFrames = seg.Start
	}
	if after := total - seg.End; fadeFrames > after {
		fadeFrames = after
	}

	written, err := CopySegments(src, dst, []Segment{
		{Start: 0, End: seg.Start - fadeFrames},
	}, opts)
	if err != nil {
		return written, err
	}

	if fadeFrames > 0 {
		before := make([]float32, fadeFrames*int64(channels))
		after := make([]float32, fadeFrames*int64(channels))

		if err := readSegment(src, seg.Start-fadeFrames, before, channels); err != nil {
			return written, err
		}
		if err := readSegment(src, seg.End, after, channels); err != nil {
			return written, err
		}

		effects.BlendEqualPower(before, before, after, channels)
		if _, err := dst.WriteSamples(before); err != nil {
			return written, fmt.Errorf("write crossfade: %w", err)
		}
		written += fadeFrames
	}

	n, err := CopySegments(src, dst, []Segment{
		{Start: seg.End + fadeFrames, End: total},
	}, opts)
	return written + n, err
}

// SilenceRange is a half-open silent span detected by an external
// collaborator. Ranges handed to RemoveSilences must be ascending and
// non-overlapping with End > Start.
type SilenceRange struct {
	Start, End time.Duration
}

// SilenceReport summarizes what RemoveSilences dropped.
type SilenceReport struct {
	Frames          int64
	RemovedRanges   int
	RemovedDuration time.Duration
}

// RemoveSilences cuts every given silence range out of the source,
// shrinking each range by padding on both edges first so transients at the
// boundaries survive. Ranges that collapse to nothing after padding are
// kept in the audio and not counted as removed.
func RemoveSilences(src audio.SeekSource, dst audio.Sink, ranges []SilenceRange, padding time.Duration, opts Options) (SilenceReport, error) {
	var report SilenceReport

	rate := src.SampleRate()
	total := src.Frames()
	pad := framesFor(padding, rate)

	// Validate before touching any I/O.
	prevEnd := time.Duration(-1)
	for _, r := range ranges {
		if r.End <= r.Start || r.Start < prevEnd {
			return report, ErrInvalidRange
		}
		prevEnd = r.End
	}

	// Shrink by padding and derive the complementary keep segments.
	keep := make([]Segment, 0, len(ranges)+1)
	cursor := int64(0)

	for _, r := range ranges {
		start := framesFor(r.Start, rate) + pad
		end := framesFor(r.End, rate) - pad

		if start < 0 {
			start = 0
		}
		if end > total {
			end = total
		}
		if end <= start || start >= total {
			continue // dropped by padding or outside the source
		}

		keep = append(keep, Segment{Start: cursor, End: start})
		cursor = end

		report.RemovedRanges++
		report.RemovedDuration += FrameDuration(end-start, rate)
	}
	keep = append(keep, Segment{Start: cursor, End: total})

	frames, err := CopySegments(src, dst, keep, opts)
	report.Frames = frames
	return report, err
}

// clipRange validates and clips a time range against the source length.
// end <= start fails; a range that falls entirely outside the source clips
// to an empty segment at its nearest edge.
func clipRange(src audio.SeekSource, start, end time.Duration) (Segment, error) {
	if end <= start || start < 0 {
		return Segment{}, ErrInvalidRange
	}

	rate := src.SampleRate()
	total := src.Frames()

	seg := Segment{
		Start: framesFor(start, rate),
		End:   framesFor(end, rate),
	}

	if seg.Start > total {
		seg.Start = total
	}
	if seg.End > total {
		seg.End = total
	}

	return seg, nil
}

// readSegment fills buf with exactly len(buf)/channels frames starting at
// the given frame.
func readSegment(src audio.SeekSource, start int64, buf []float32, channels int) error {
	if err := src.Seek(start); err != nil {
		return fmt.Errorf("seek: %w", err)
	}

	filled := 0
	for filled < len(buf) {
		n, err := src.ReadSamples(buf[filled:])
		filled += n

		if err == io.EOF {
			if filled < len(buf) {
				return fmt.Errorf("read: %w", io.ErrUnexpectedEOF)
			}
			return nil
		}
		if err != nil {
			return fmt.Errorf("read: %w", err)
		}
	}

	return nil
}
