package audioengine

// ApplyGain scales samples in place, clipping at the int16 range.
func ApplyGain(samples []int16, factor float64) {
	for i := range samples {
		val := float64(samples[i]) * factor
		if val > 32767 {
			val = 32767
		} else if val < -32768 {
			val = -32768
		}
		samples[i] = int16(val)
	}
}

// NormalizeGain returns the factor that brings the loudest sample to just
// under full scale. Silence gets a factor of 1.
func NormalizeGain(samples []int16) float64 {
	var peak int
	for _, s := range samples {
		v := int(s)
		if v < 0 {
			v = -v
		}
		if v > peak {
			peak = v
		}
	}
	if peak == 0 {
		return 1
	}
	return 32760.0 / float64(peak)
}

// toInt16 converts a decoded sample of the given bit depth to 16 bits.
func toInt16(v int, bitDepth int) int16 {
	switch {
	case bitDepth == 8:
		return int16((v - 128) << 8)
	case bitDepth > 16:
		return int16(v >> (bitDepth - 16))
	}
	return int16(v)
}

// downmix averages interleaved channels into one.
func downmix(pcm []int16, channels int) []int16 {
	if channels <= 1 {
		return pcm
	}
	out := make([]int16, len(pcm)/channels)
	for i := range out {
		var sum int
		for c := 0; c < channels; c++ {
			sum += int(pcm[i*channels+c])
		}
		out[i] = int16(sum / channels)
	}
	return out
}
