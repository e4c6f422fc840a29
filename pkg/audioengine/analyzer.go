package audioengine

import (
	"math"

	"mealdiary/pkg/spec"
)

// LevelDB returns the RMS level of a block of 16-bit PCM in dBFS, floored
// at spec.SilenceDB. It is what platform metering reports each tick.
func LevelDB(pcm []int16) float64 {
	if len(pcm) == 0 {
		return spec.SilenceDB
	}
	var sum float64
	for _, s := range pcm {
		v := float64(s) / 32768.0
		sum += v * v
	}
	return toDB(math.Sqrt(sum / float64(len(pcm))))
}

// PeakDB returns the absolute peak of a block in dBFS.
func PeakDB(pcm []int16) float64 {
	var peak float64
	for _, s := range pcm {
		v := math.Abs(float64(s)) / 32768.0
		if v > peak {
			peak = v
		}
	}
	return toDB(peak)
}

func toDB(amp float64) float64 {
	if amp <= 0 {
		return spec.SilenceDB
	}
	db := 20 * math.Log10(amp)
	if db < spec.SilenceDB {
		return spec.SilenceDB
	}
	if db > 0 {
		return 0
	}
	return db
}
