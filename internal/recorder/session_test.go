package recorder

import (
	"context"
	"errors"
	"io"
	"math"
	"sync"
	"testing"
	"time"

	"mealdiary/internal/waveform"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) now() time.Time { return c.t }

func newTestSession(t *testing.T, opts ...Option) (*Session, *fakeClock) {
	t.Helper()
	clk := &fakeClock{t: time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)}
	return NewSession(append([]Option{WithClock(clk.now)}, opts...)...), clk
}

func TestSession_RecordStop(t *testing.T) {
	s, clk := newTestSession(t, WithBuckets(2))
	require.Equal(t, Idle, s.State())

	require.NoError(t, s.Start())
	for _, v := range []float64{-40, -40, -20, -20} {
		assert.True(t, s.Tick(v))
	}
	clk.t = clk.t.Add(400 * time.Millisecond)

	m, err := s.Stop()
	require.NoError(t, err)
	assert.Equal(t, Stopped, s.State())
	assert.Equal(t, []float64{-40, -40, -20, -20}, m.Metering)
	assert.Equal(t, []float64{-40, -20}, m.Buckets)
	assert.Equal(t, 400*time.Millisecond, m.Duration)

	assert.False(t, s.Tick(-10), "ticks after stop are dropped")
	assert.Len(t, s.Memo().Metering, 4)
}

func TestSession_MemoIsFrozen(t *testing.T) {
	s, _ := newTestSession(t)
	require.NoError(t, s.Start())
	s.Tick(-30)
	m, err := s.Stop()
	require.NoError(t, err)

	require.NoError(t, s.Start())
	s.Tick(-1)
	assert.Equal(t, []float64{-30}, m.Metering)
	assert.Nil(t, s.Memo())
}

func TestSession_EmptyRecording(t *testing.T) {
	s, _ := newTestSession(t)
	require.NoError(t, s.Start())
	m, err := s.Stop()
	require.NoError(t, err)
	assert.Empty(t, m.Buckets)
	assert.Empty(t, s.Bars(waveform.QuickAddScale))
}

func TestSession_Transitions(t *testing.T) {
	s, _ := newTestSession(t)

	err := s.Pause()
	assert.ErrorIs(t, err, ErrInvalidTransition)
	assert.ErrorIs(t, s.Play(), ErrNoMemo)
	_, err = s.Stop()
	assert.ErrorIs(t, err, ErrInvalidTransition)

	require.NoError(t, s.Start())
	assert.ErrorIs(t, s.Start(), ErrInvalidTransition)
	assert.ErrorIs(t, s.Play(), ErrNoMemo)
	assert.ErrorIs(t, s.Finish(), ErrInvalidTransition)
	s.Tick(-12)
	_, err = s.Stop()
	require.NoError(t, err)

	require.NoError(t, s.Play())
	assert.Equal(t, Playing, s.State())
	require.NoError(t, s.Toggle())
	assert.Equal(t, Paused, s.State())
	require.NoError(t, s.Toggle())
	assert.Equal(t, Playing, s.State())

	s.SetPosition(250)
	require.NoError(t, s.Finish())
	assert.Equal(t, Stopped, s.State())
	assert.Equal(t, 0.0, s.Progress())
	assert.ErrorIs(t, s.Finish(), ErrInvalidTransition)
}

func TestSession_ProgressAndBars(t *testing.T) {
	s, clk := newTestSession(t, WithBuckets(4))
	require.NoError(t, s.Start())
	for _, v := range []float64{-60, -30, 0, -45} {
		s.Tick(v)
	}
	clk.t = clk.t.Add(time.Second)
	_, err := s.Stop()
	require.NoError(t, err)
	require.NoError(t, s.Play())

	s.SetPosition(500)
	assert.InDelta(t, 0.5, s.Progress(), 1e-9)

	bars := s.Bars(waveform.QuickAddScale)
	require.Len(t, bars, 4)
	assert.True(t, bars[1].Played)
	assert.False(t, bars[2].Played)
}

func TestSession_MeterFollowsTicks(t *testing.T) {
	s, _ := newTestSession(t)
	ch, cancel := s.Meter().Subscribe()
	defer cancel()
	assert.Equal(t, -100.0, <-ch)

	require.NoError(t, s.Start())
	s.Tick(-33)
	assert.Equal(t, -33.0, <-ch)
	assert.Equal(t, -33.0, s.Meter().Load())
}

func TestSession_StopResetsMeterDespiteTicks(t *testing.T) {
	for round := 0; round < 50; round++ {
		s, _ := newTestSession(t)
		require.NoError(t, s.Start())

		var wg sync.WaitGroup
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 200; i++ {
				s.Tick(-12)
			}
		}()
		_, err := s.Stop()
		require.NoError(t, err)
		wg.Wait()

		assert.Equal(t, -100.0, s.Meter().Load())
	}
}

func TestSession_Load(t *testing.T) {
	s, _ := newTestSession(t, WithBuckets(3))
	require.NoError(t, s.Load(&Memo{Metering: []float64{-10}, Duration: time.Second}))
	assert.Equal(t, Stopped, s.State())
	assert.Equal(t, []float64{-10, -10, -10}, s.Memo().Buckets)
	require.NoError(t, s.Play())
}

func TestProgress(t *testing.T) {
	assert.Equal(t, 0.0, Progress(100, 0))
	assert.Equal(t, 0.0, Progress(100, -5))
	assert.Equal(t, 0.0, Progress(-1, 100))
	assert.Equal(t, 1.0, Progress(200, 100))
	assert.Equal(t, 0.25, Progress(25, 100))
	assert.Equal(t, 0.0, Progress(math.NaN(), 100))
}

func TestClampLevel(t *testing.T) {
	assert.Equal(t, -100.0, ClampLevel(math.NaN()))
	assert.Equal(t, 0.0, ClampLevel(3))
	assert.Equal(t, -160.0, ClampLevel(-300))
	assert.Equal(t, -42.5, ClampLevel(-42.5))
}

func TestRun_StopsAtEOF(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	s, _ := newTestSession(t, WithBuckets(2), WithLogger(zap.New(core)))

	levels := []float64{-40, -40, -20, -20}
	i := 0
	src := MeterFunc(func() (float64, error) {
		if i == len(levels) {
			return 0, io.EOF
		}
		i++
		return levels[i-1], nil
	})

	m, err := s.Run(context.Background(), src, time.Millisecond)
	require.NoError(t, err)
	require.NotNil(t, m)
	assert.Equal(t, []float64{-40, -20}, m.Buckets)
	assert.Equal(t, Stopped, s.State())
	assert.Equal(t, 1, logs.FilterMessage("recording stopped").Len())
}

func TestRun_SourceError(t *testing.T) {
	s, _ := newTestSession(t)
	boom := errors.New("mic unplugged")
	_, err := s.Run(context.Background(), MeterFunc(func() (float64, error) { return 0, boom }), time.Millisecond)
	assert.ErrorIs(t, err, boom)
}

func TestRun_Cancelled(t *testing.T) {
	s, _ := newTestSession(t)
	ctx, cancel := context.WithCancel(context.Background())
	src := MeterFunc(func() (float64, error) {
		cancel()
		return -50, nil
	})

	_, err := s.Run(ctx, src, time.Millisecond)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, Recording, s.State())
}
