// SPDX-License-Identifier: EPL-2.0

package audedit

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ik5/audedit/audio"
	"github.com/ik5/audedit/effects"
	"github.com/ik5/audedit/engine"
	"github.com/ik5/audedit/formats/aiff"
	"github.com/ik5/audedit/formats/mp3"
	"github.com/ik5/audedit/formats/vorbis"
	"github.com/ik5/audedit/formats/wav"
	"github.com/ik5/audedit/mix"
)

// formats maps lowercase file extensions to their decoders. Additional
// formats can be wired in by registering on it before the first Open.
var formats = func() *audio.Registry {
	r := audio.NewRegistry()
	r.Register("wav", wav.Decoder{})
	r.Register("mp3", mp3.Decoder{})
	r.Register("ogg", vorbis.Decoder{})
	r.Register("oga", vorbis.Decoder{})
	r.Register("aiff", aiff.Decoder{})
	r.Register("aif", aiff.Decoder{})
	return r
}()

// RegisterFormat adds a decoder for a file extension (without the dot).
func RegisterFormat(ext string, d audio.Decoder) {
	formats.Register(strings.ToLower(ext), d)
}

// Open decodes an audio file into a seekable source. WAV, MP3 and Ogg
// Vorbis seek on disk; formats whose decoder is forward-only are drained
// into a memory buffer first.
func Open(path string) (audio.SeekSource, error) {
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")

	dec, ok := formats.Get(ext)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, ext)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}

	src, err := dec.Decode(f)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}

	if seek, ok := src.(audio.SeekSource); ok {
		return seek, nil
	}

	buf, err := audio.ReadAll(src)
	src.Close()
	f.Close()
	if err != nil {
		return nil, fmt.Errorf("buffer %s: %w", path, err)
	}

	return buf, nil
}

// derivedPath names an edit output after its source, in the same
// directory. The timestamp keeps outputs sortable; the uuid keeps two
// edits within the same second from clobbering each other.
func derivedPath(source string) string {
	base := strings.TrimSuffix(filepath.Base(source), filepath.Ext(source))
	name := fmt.Sprintf("%s_edit_%s_%s.wav", base,
		time.Now().Format("20060102_150405"), uuid.NewString())
	return filepath.Join(filepath.Dir(source), name)
}

// runOp opens the input, creates the output WAV and runs op between them.
// Edits never touch the input file. A failed edit removes its partial
// output instead of leaving a truncated file behind.
func runOp(path, out string, op func(src audio.SeekSource, dst audio.Sink) (int64, error)) (*engine.Result, error) {
	src, err := Open(path)
	if err != nil {
		return nil, err
	}
	defer src.Close()

	if out == "" {
		out = derivedPath(path)
	}

	dst, err := wav.CreateFile(out, src.SampleRate(), src.Channels())
	if err != nil {
		return nil, err
	}

	frames, err := op(src, dst)
	if cerr := dst.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		os.Remove(out)
		return nil, err
	}

	return &engine.Result{
		OutputPath: out,
		Duration:   engine.FrameDuration(frames, src.SampleRate()),
	}, nil
}

// applyEffect runs a single processor over the whole file.
func applyEffect(path, out string, build func(rate, channels int, frames int64) effects.Processor) (*engine.Result, error) {
	return runOp(path, out, func(src audio.SeekSource, dst audio.Sink) (int64, error) {
		proc := build(src.SampleRate(), src.Channels(), src.Frames())
		return engine.Run(src, dst, proc, engine.Options{})
	})
}

// Trim writes only [start, end) of the input to a new file. An empty out
// path derives one next to the input.
func Trim(path, out string, start, end time.Duration) (*engine.Result, error) {
	return runOp(path, out, func(src audio.SeekSource, dst audio.Sink) (int64, error) {
		return engine.Trim(src, dst, start, end, engine.Options{})
	})
}

// Cut removes [start, end) from the input, keeping everything around it.
func Cut(path, out string, start, end time.Duration) (*engine.Result, error) {
	return runOp(path, out, func(src audio.SeekSource, dst audio.Sink) (int64, error) {
		return engine.Cut(src, dst, start, end, engine.Options{})
	})
}

// CrossfadeCut removes [start, end) and splices the halves with an
// equal-power crossfade of the given duration.
func CrossfadeCut(path, out string, start, end, fade time.Duration) (*engine.Result, error) {
	return runOp(path, out, func(src audio.SeekSource, dst audio.Sink) (int64, error) {
		return engine.CrossfadeCut(src, dst, start, end, fade, engine.Options{})
	})
}

// RemoveSilences cuts the given silence ranges out of the input, keeping
// padding on both edges of every range. The result reports how many
// ranges were removed and the total duration dropped.
func RemoveSilences(path, out string, ranges []engine.SilenceRange, padding time.Duration) (*engine.Result, error) {
	var report engine.SilenceReport

	res, err := runOp(path, out, func(src audio.SeekSource, dst audio.Sink) (int64, error) {
		var err error
		report, err = engine.RemoveSilences(src, dst, ranges, padding, engine.Options{})
		return report.Frames, err
	})
	if err != nil {
		return nil, err
	}

	res.RemovedRanges = report.RemovedRanges
	res.RemovedDuration = report.RemovedDuration
	return res, nil
}

// Fade applies fade-in and fade-out envelopes with the given curve.
// Either duration may be zero to skip that edge.
func Fade(path, out string, fadeIn, fadeOut time.Duration, curve effects.Curve) (*engine.Result, error) {
	return applyEffect(path, out, func(rate, channels int, frames int64) effects.Processor {
		return effects.NewFade(rate, channels, frames, fadeIn, fadeOut, curve)
	})
}

// NormalizePeak scales the input so its peak hits targetDB dBFS. With
// truePeak the measurement oversamples to catch inter-sample peaks.
func NormalizePeak(path, out string, targetDB float64, truePeak bool) (*engine.Result, error) {
	return runOp(path, out, func(src audio.SeekSource, dst audio.Sink) (int64, error) {
		return engine.NormalizePeak(src, dst, targetDB, truePeak, engine.Options{})
	})
}

// NormalizeLoudness scales the input to the target integrated loudness in
// LUFS per ITU-R BS.1770-4.
func NormalizeLoudness(path, out string, targetLUFS float64) (*engine.Result, error) {
	return runOp(path, out, func(src audio.SeekSource, dst audio.Sink) (int64, error) {
		return engine.NormalizeLoudness(src, dst, targetLUFS, engine.Options{})
	})
}

// Gate applies a noise gate attenuating audio below the threshold.
func Gate(path, out string, p effects.GateParams) (*engine.Result, error) {
	return applyEffect(path, out, func(rate, channels int, _ int64) effects.Processor {
		return effects.NewGate(rate, channels, p)
	})
}

// Compress applies soft-knee dynamic range compression.
func Compress(path, out string, p effects.CompressorParams) (*engine.Result, error) {
	return applyEffect(path, out, func(rate, channels int, _ int64) effects.Processor {
		return effects.NewCompressor(rate, channels, p)
	})
}

// Reverb applies a Schroeder reverberator, extending the output by the
// decaying tail.
func Reverb(path, out string, p effects.ReverbParams) (*engine.Result, error) {
	return applyEffect(path, out, func(rate, channels int, _ int64) effects.Processor {
		return effects.NewReverb(rate, channels, p)
	})
}

// Echo applies a feedback delay, extending the output by the decaying
// repeats.
func Echo(path, out string, p effects.EchoParams) (*engine.Result, error) {
	return applyEffect(path, out, func(rate, channels int, _ int64) effects.Processor {
		return effects.NewEcho(rate, channels, p)
	})
}

// Preset runs the studio chain (compressor, reverb, echo) in fixed order
// through intermediate temporary files, skipping stages whose params are
// nil.
func Preset(path, out string, p engine.PresetParams) (*engine.Result, error) {
	return runOp(path, out, func(src audio.SeekSource, dst audio.Sink) (int64, error) {
		return engine.StudioPreset(src, dst, p, os.TempDir(), engine.Options{})
	})
}

// MixLayer schedules one existing file in a mixdown.
type MixLayer struct {
	Path     string
	Offset   time.Duration
	Settings mix.Settings
}

// Mixdown renders the base file and its layers into a single stereo WAV
// at the base sample rate. An empty out path derives one next to the
// base file.
func Mixdown(basePath, out string, baseSettings mix.Settings, layers []MixLayer) (*engine.Result, error) {
	base, err := Open(basePath)
	if err != nil {
		return nil, err
	}
	defer base.Close()

	tracks := make([]mix.Track, 0, len(layers))
	defer func() {
		for _, t := range tracks {
			t.Source.Close()
		}
	}()

	for _, l := range layers {
		src, err := Open(l.Path)
		if err != nil {
			return nil, fmt.Errorf("layer %s: %w", l.Path, err)
		}
		tracks = append(tracks, mix.Track{
			Source:   src,
			Offset:   l.Offset,
			Settings: l.Settings,
		})
	}

	if out == "" {
		out = derivedPath(basePath)
	}

	dst, err := wav.CreateFile(out, base.SampleRate(), 2)
	if err != nil {
		return nil, err
	}

	frames, err := mix.Mixdown(dst, mix.Track{Source: base, Settings: baseSettings}, tracks)
	if cerr := dst.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		os.Remove(out)
		return nil, err
	}

	return &engine.Result{
		OutputPath: out,
		Duration:   engine.FrameDuration(frames, base.SampleRate()),
	}, nil
}
