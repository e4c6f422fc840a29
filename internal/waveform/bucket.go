// Package waveform reduces recorded metering samples to a fixed number of
// bars and decides how each bar is drawn during playback.
package waveform

import "mealdiary/pkg/spec"

// DefaultBucketCount is the number of bars drawn for a voice memo.
const DefaultBucketCount = spec.DefaultBucketCount

// Span returns the half-open sample range [start, end) averaged into bucket i
// when length samples are spread over n buckets.
func Span(i, length, n int) (start, end int) {
	start = i * length / n
	end = ((i+1)*length + n - 1) / n
	if end > length {
		end = length
	}
	return start, end
}

// Bucketize averages samples into bucketCount contiguous buckets.
// An empty input yields an empty result. A non-positive bucketCount falls
// back to DefaultBucketCount. The input slice is never modified.
func Bucketize(samples []float64, bucketCount int) []float64 {
	if bucketCount <= 0 {
		bucketCount = DefaultBucketCount
	}
	if len(samples) == 0 {
		return []float64{}
	}

	out := make([]float64, bucketCount)
	for i := 0; i < bucketCount; i++ {
		start, end := Span(i, len(samples), bucketCount)
		if end <= start {
			// unreachable for non-empty input, keep the line continuous anyway
			if i > 0 {
				out[i] = out[i-1]
			}
			continue
		}

		var sum float64
		for _, v := range samples[start:end] {
			sum += v
		}
		out[i] = sum / float64(end-start)
	}
	return out
}
