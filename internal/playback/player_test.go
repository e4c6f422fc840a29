package playback

import (
	"fmt"
	"testing"
	"time"

	"github.com/faiface/beep"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// rampStreamer emits n frames whose left channel counts up from 1.
type rampStreamer struct {
	n, pos int
}

func (r *rampStreamer) Stream(samples [][2]float64) (int, bool) {
	if r.pos >= r.n {
		return 0, false
	}
	i := 0
	for ; i < len(samples) && r.pos < r.n; i++ {
		r.pos++
		samples[i] = [2]float64{float64(r.pos), 0}
	}
	return i, true
}

func (r *rampStreamer) Err() error    { return nil }
func (r *rampStreamer) Len() int      { return r.n }
func (r *rampStreamer) Position() int { return r.pos }
func (r *rampStreamer) Seek(p int) error {
	if p < 0 || p > r.n {
		return fmt.Errorf("out of range")
	}
	r.pos = p
	return nil
}

func TestPlayer_StartsPausedAndSilent(t *testing.T) {
	src := &rampStreamer{n: 1000}
	p := NewPlayer(src, beep.SampleRate(1000), nil)

	buf := make([][2]float64, 10)
	n, ok := p.Stream(buf)
	assert.True(t, ok)
	assert.Equal(t, 10, n)
	assert.Equal(t, [2]float64{}, buf[0])
	assert.Equal(t, 0, src.Position())
	assert.False(t, p.Playing())
}

func TestPlayer_ProgressAndPosition(t *testing.T) {
	src := &rampStreamer{n: 1000}
	p := NewPlayer(src, beep.SampleRate(1000), nil)
	p.Play()

	buf := make([][2]float64, 250)
	p.Stream(buf)
	assert.Equal(t, 1.0, buf[0][0])

	assert.InDelta(t, 0.25, p.Progress(), 1e-9)
	assert.Equal(t, 250.0, p.PositionMillis())
	assert.Equal(t, 1000.0, p.DurationMillis())

	require.NoError(t, p.Seek(800*time.Millisecond))
	assert.InDelta(t, 0.8, p.Progress(), 1e-9)

	require.NoError(t, p.Seek(5*time.Second))
	assert.Equal(t, 1.0, p.Progress())
}

func TestPlayer_FinishRewindsAndPauses(t *testing.T) {
	src := &rampStreamer{n: 100}
	p := NewPlayer(src, beep.SampleRate(1000), nil)
	finished := 0
	p.OnFinish = func() { finished++ }
	p.Play()

	buf := make([][2]float64, 64)
	p.Stream(buf)
	n, ok := p.Stream(buf)
	assert.True(t, ok)
	assert.Equal(t, 64, n)
	assert.Equal(t, 100.0, buf[35][0])
	assert.Equal(t, [2]float64{}, buf[36])

	assert.Equal(t, 1, finished)
	assert.False(t, p.Playing())
	assert.Equal(t, 0.0, p.Progress())

	assert.True(t, p.Toggle())
	p.Stream(buf)
	assert.Equal(t, 1.0, buf[0][0])
}

func TestPlayer_Volume(t *testing.T) {
	src := &rampStreamer{n: 100}
	p := NewPlayer(src, beep.SampleRate(1000), nil)
	p.SetVolume(-1)
	assert.Equal(t, -1.0, p.Volume())
	p.Play()

	buf := make([][2]float64, 4)
	p.Stream(buf)
	assert.InDelta(t, 0.5, buf[0][0], 1e-9)
	assert.InDelta(t, 2.0, buf[3][0], 1e-9)

	p.Pause()
	p.Stream(buf)
	assert.Equal(t, [2]float64{}, buf[0])
	assert.Equal(t, 4, src.Position(), "paused player does not pull from the source")
}
