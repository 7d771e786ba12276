// SPDX-License-Identifier: EPL-2.0

package engine

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/ik5/audedit/audio"
	"github.com/ik5/audedit/effects"
	"github.com/ik5/audedit/formats/wav"
)

// PresetParams bundles the stages of the combined studio preset.
type PresetParams struct {
	Compressor effects.CompressorParams
	Reverb     effects.ReverbParams
	Echo       effects.EchoParams
}

// StudioPreset chains compressor -> reverb -> echo, running each stage as
// its own streaming pass with the previous stage's output file as input.
// Intermediates are uuid-named WAV files in tmpDir (os.TempDir when empty)
// and are always removed: on success only the final output remains, on
// any stage failure everything intermediate is cleaned up and the error
// surfaces immediately.
func StudioPreset(src audio.SeekSource, dst audio.Sink, p PresetParams, tmpDir string, opts Options) (int64, error) {
	if tmpDir == "" {
		tmpDir = os.TempDir()
	}

	rate := src.SampleRate()
	channels := src.Channels()

	tmpPath := func() string {
		return filepath.Join(tmpDir, "audedit-"+uuid.NewString()+".wav")
	}

	var temps []string
	defer func() {
		for _, t := range temps {
			os.Remove(t)
		}
	}()

	// runToTemp streams src through proc into a fresh temp file and
	// reopens it as the next stage's input.
	runToTemp := func(in audio.SeekSource, proc effects.Processor) (audio.SeekSource, error) {
		path := tmpPath()
		sink, err := wav.CreateFile(path, rate, channels)
		if err != nil {
			return nil, fmt.Errorf("create intermediate: %w", err)
		}
		temps = append(temps, path)

		if _, err := Run(in, sink, proc, opts); err != nil {
			sink.Close()
			return nil, err
		}
		if err := sink.Close(); err != nil {
			return nil, fmt.Errorf("close intermediate: %w", err)
		}

		out, err := wav.OpenFile(path)
		if err != nil {
			return nil, fmt.Errorf("reopen intermediate: %w", err)
		}
		return out, nil
	}

	stage1, err := runToTemp(src, effects.NewCompressor(rate, channels, p.Compressor))
	if err != nil {
		return 0, err
	}
	defer stage1.Close()

	stage2, err := runToTemp(stage1, effects.NewReverb(rate, channels, p.Reverb))
	if err != nil {
		return 0, err
	}
	defer stage2.Close()

	return Run(stage2, dst, effects.NewEcho(rate, channels, p.Echo), opts)
}
