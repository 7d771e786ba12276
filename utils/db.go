// SPDX-License-Identifier: EPL-2.0

package utils

import "math"

// DBToLinear converts a decibel value to a linear amplitude factor.
func DBToLinear(db float64) float64 {
	return math.Pow(10, db/20)
}

// LinearToDB converts a linear amplitude factor to decibels.
// Zero and negative amplitudes map to a -120 dB floor.
func LinearToDB(lin float64) float64 {
	if lin <= 0 {
		return -120
	}

	return 20 * math.Log10(lin)
}

// Clamp limits v to the range [lo, hi].
func Clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}

	return v
}
