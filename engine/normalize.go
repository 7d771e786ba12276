// SPDX-License-Identifier: EPL-2.0

package engine

import (
	"fmt"
	"math"

	"github.com/ik5/audedit/audio"
	"github.com/ik5/audedit/effects"
	"github.com/ik5/audedit/loudness"
	"github.com/ik5/audedit/utils"
)

// maxNormalizeGainDB guards loudness normalization against amplifying
// near-silence: if matching the target would take more than this much
// gain, the material is treated as noise floor and left untouched.
const maxNormalizeGainDB = 40

// NormalizePeak measures the source's peak amplitude (pass 1), then
// rewinds and applies the single gain that maps it to targetDB dBFS
// (pass 2). With truePeak set, pass 1 uses 4x-oversampled inter-sample
// detection. Normalizing an already normalized file is a no-op within
// numerical tolerance.
func NormalizePeak(src audio.SeekSource, dst audio.Sink, targetDB float64, truePeak bool, opts Options) (int64, error) {
	targetDB = utils.Clamp(targetDB, -60, 0)

	peak, err := loudness.MeasurePeak(src, truePeak)
	if err != nil {
		return 0, err
	}

	gain := 1.0
	if peak > 0 {
		gain = utils.DBToLinear(targetDB) / peak
	}

	if err := src.Seek(0); err != nil {
		return 0, fmt.Errorf("rewind: %w", err)
	}

	return Run(src, dst, effects.NewGain(gain, false), opts)
}

// NormalizeLoudness measures integrated loudness per ITU-R BS.1770-4
// (pass 1), then rewinds and applies gainDB = target - measured (pass 2)
// through the same soft-clip knee the compressor uses. Silent sources and
// gains beyond +40 dB leave the audio unchanged.
func NormalizeLoudness(src audio.SeekSource, dst audio.Sink, targetLUFS float64, opts Options) (int64, error) {
	targetLUFS = utils.Clamp(targetLUFS, -70, 0)

	measured, err := loudness.MeasureLoudness(src)
	if err != nil {
		return 0, err
	}

	gainDB := targetLUFS - measured
	if math.IsInf(measured, -1) || gainDB > maxNormalizeGainDB {
		gainDB = 0
	}

	if err := src.Seek(0); err != nil {
		return 0, fmt.Errorf("rewind: %w", err)
	}

	return Run(src, dst, effects.NewGain(utils.DBToLinear(gainDB), true), opts)
}
