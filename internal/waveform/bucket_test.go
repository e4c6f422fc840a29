package waveform

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBucketize_Scenarios(t *testing.T) {
	tests := []struct {
		name    string
		samples []float64
		n       int
		want    []float64
	}{
		{
			name:    "two even buckets",
			samples: []float64{-40, -40, -20, -20},
			n:       2,
			want:    []float64{-40, -20},
		},
		{
			name:    "single sample spread over three buckets",
			samples: []float64{-10},
			n:       3,
			want:    []float64{-10, -10, -10},
		},
		{
			name:    "empty input",
			samples: []float64{},
			n:       50,
			want:    []float64{},
		},
		{
			name:    "nil input",
			samples: nil,
			n:       7,
			want:    []float64{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Bucketize(tt.samples, tt.n)
			require.NotNil(t, got)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestBucketize_PairsOfSamples(t *testing.T) {
	samples := make([]float64, 100)
	for i := range samples {
		samples[i] = -float64(i)
	}

	got := Bucketize(samples, 50)
	require.Len(t, got, 50)
	for i, v := range got {
		want := (samples[2*i] + samples[2*i+1]) / 2
		assert.InDelta(t, want, v, 1e-9, "bucket %d", i)
	}
}

func TestBucketize_DefaultBucketCount(t *testing.T) {
	got := Bucketize([]float64{-30, -20, -10}, 0)
	assert.Len(t, got, DefaultBucketCount)

	got = Bucketize([]float64{-30}, -4)
	assert.Len(t, got, DefaultBucketCount)
}

func TestBucketize_LengthAndNoNaN(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	for trial := 0; trial < 200; trial++ {
		length := 1 + rng.Intn(400)
		n := 1 + rng.Intn(80)
		samples := make([]float64, length)
		for i := range samples {
			samples[i] = -160 * rng.Float64()
		}

		got := Bucketize(samples, n)
		require.Len(t, got, n, "L=%d N=%d", length, n)
		for i, v := range got {
			require.False(t, math.IsNaN(v), "NaN at %d (L=%d N=%d)", i, length, n)
			require.GreaterOrEqual(t, v, -160.0)
			require.LessOrEqual(t, v, 0.0)
		}
	}
}

func TestBucketize_DoesNotMutateInput(t *testing.T) {
	samples := []float64{-1, -2, -3, -4, -5}
	orig := append([]float64(nil), samples...)
	Bucketize(samples, 3)
	assert.Equal(t, orig, samples)
}

func TestSpan_CoversInputWithoutGaps(t *testing.T) {
	for length := 1; length <= 120; length++ {
		for n := 1; n <= 60; n++ {
			prevStart, prevEnd := 0, 0
			for i := 0; i < n; i++ {
				start, end := Span(i, length, n)
				require.Less(t, start, end, "empty span i=%d L=%d N=%d", i, length, n)
				if i == 0 {
					require.Equal(t, 0, start)
				} else {
					require.GreaterOrEqual(t, start, prevStart, "start not monotonic")
					require.GreaterOrEqual(t, end, prevEnd, "end not monotonic")
					require.LessOrEqual(t, start, prevEnd, "gap before bucket %d", i)
				}
				prevStart, prevEnd = start, end
			}
			require.Equal(t, length, prevEnd, "last bucket must end at L=%d N=%d", length, n)
		}
	}
}

func TestSpan_Boundaries(t *testing.T) {
	start, end := Span(2, 1, 3)
	assert.Equal(t, 0, start)
	assert.Equal(t, 1, end)

	start, end = Span(1, 100, 50)
	assert.Equal(t, 2, start)
	assert.Equal(t, 4, end)
}
