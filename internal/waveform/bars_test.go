package waveform

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPlayed_Boundaries(t *testing.T) {
	for _, n := range []int{1, 2, 50} {
		assert.True(t, Played(0, n, 1.0), "n=%d", n)
		assert.False(t, Played(n-1, n, 0.0), "n=%d", n)
	}
	assert.False(t, Played(0, 0, 1.0))
	assert.False(t, Played(0, 50, 0.0))
}

func TestPlayed_FormsPrefix(t *testing.T) {
	for _, n := range []int{1, 3, 10, 50} {
		for step := 0; step <= 100; step++ {
			progress := float64(step) / 100
			seenUnplayed := false
			for i := 0; i < n; i++ {
				p := Played(i, n, progress)
				if seenUnplayed {
					require.False(t, p, "bar %d played after an unplayed bar (n=%d progress=%v)", i, n, progress)
				}
				if !p {
					seenUnplayed = true
				}
			}
		}
	}
}

func TestPlayedCount(t *testing.T) {
	assert.Equal(t, 0, PlayedCount(50, 0))
	assert.Equal(t, 25, PlayedCount(50, 0.49))
	assert.Equal(t, 26, PlayedCount(50, 0.5001))
	assert.Equal(t, 50, PlayedCount(50, 1))
}

func TestInterpolate(t *testing.T) {
	tests := []struct {
		name  string
		v     float64
		scale Scale
		want  float64
	}{
		{"quick add floor", -60, QuickAddScale, 5},
		{"quick add top", 0, QuickAddScale, 50},
		{"quick add middle", -30, QuickAddScale, 27.5},
		{"quick add clamps below", -160, QuickAddScale, 5},
		{"quick add clamps above", 12, QuickAddScale, 50},
		{"meter middle", -25, MeterScale, 77.5},
		{"meter clamps below", -100, MeterScale, 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, tt.scale.Height(tt.v), 1e-9)
		})
	}
}

func TestInterpolate_Unclamped(t *testing.T) {
	assert.InDelta(t, -40.0, Interpolate(-120, -60, 0, 5, 50, false), 1e-9)
	assert.Equal(t, 5.0, Interpolate(3, 1, 1, 5, 50, true))
}

func TestRender(t *testing.T) {
	bars := Render([]float64{-60, -30, 0, -45}, QuickAddScale, 0.5)
	require.Len(t, bars, 4)

	assert.True(t, bars[0].Played)
	assert.True(t, bars[1].Played)
	assert.False(t, bars[2].Played)
	assert.False(t, bars[3].Played)

	assert.InDelta(t, 5.0, bars[0].Height, 1e-9)
	assert.InDelta(t, 50.0, bars[2].Height, 1e-9)
	assert.Equal(t, -45.0, bars[3].Level)

	assert.Empty(t, Render(nil, MeterScale, 1))
}
