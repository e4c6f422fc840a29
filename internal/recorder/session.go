// Package recorder drives a voice memo through recording and playback and
// keeps the metering samples captured along the way.
package recorder

import (
	"math"
	"sync"
	"time"

	"mealdiary/internal/meter"
	"mealdiary/internal/waveform"
	"mealdiary/pkg/spec"

	"go.uber.org/zap"
)

// Memo is a finished recording. Its slices are never modified after Stop.
type Memo struct {
	Metering []float64
	Buckets  []float64
	Duration time.Duration
}

// Session owns the state of one voice memo screen.
type Session struct {
	mu         sync.Mutex
	state      State
	samples    []float64
	memo       *Memo
	startedAt  time.Time
	positionMs float64

	level   *meter.Cell
	buckets int
	now     func() time.Time
	log     *zap.Logger
}

type Option func(*Session)

func WithLogger(l *zap.Logger) Option { return func(s *Session) { s.log = l } }

func WithClock(now func() time.Time) Option { return func(s *Session) { s.now = now } }

// WithBuckets sets how many waveform bars a stopped memo is reduced to.
func WithBuckets(n int) Option { return func(s *Session) { s.buckets = n } }

// WithMeter shares an existing level cell instead of creating one.
func WithMeter(c *meter.Cell) Option { return func(s *Session) { s.level = c } }

func NewSession(opts ...Option) *Session {
	s := &Session{
		state:   Idle,
		buckets: waveform.DefaultBucketCount,
		now:     time.Now,
		log:     zap.NewNop(),
	}
	for _, o := range opts {
		o(s)
	}
	if s.level == nil {
		s.level = meter.NewCell(spec.InitialMeterDB)
	}
	return s
}

func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Meter exposes the live level for animation readers.
func (s *Session) Meter() *meter.Cell { return s.level }

// Start begins a new recording and discards any previous samples.
func (s *Session) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !canMove(s.state, Recording) {
		return transitionError(s.state, Recording)
	}
	s.state = Recording
	s.samples = s.samples[:0:0]
	s.memo = nil
	s.positionMs = 0
	s.startedAt = s.now()
	s.log.Debug("recording started")
	return nil
}

// Tick records one metering sample. It is a no-op outside Recording and
// reports whether the sample was kept.
func (s *Session) Tick(level float64) bool {
	level = ClampLevel(level)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != Recording {
		return false
	}
	s.samples = append(s.samples, level)
	// under mu, so Stop's reset to the initial level always lands last
	s.level.Set(level)
	return true
}

// Samples returns a copy of the samples captured so far.
func (s *Session) Samples() []float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]float64(nil), s.samples...)
}

// Stop freezes the recording into a Memo and reduces it to waveform bars.
func (s *Session) Stop() (*Memo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != Recording {
		return nil, transitionError(s.state, Stopped)
	}

	frozen := append([]float64(nil), s.samples...)
	s.memo = &Memo{
		Metering: frozen,
		Buckets:  waveform.Bucketize(frozen, s.buckets),
		Duration: s.now().Sub(s.startedAt),
	}
	s.state = Stopped
	s.level.Set(spec.InitialMeterDB)
	s.log.Debug("recording stopped",
		zap.Int("samples", len(frozen)),
		zap.Duration("duration", s.memo.Duration))
	return s.memo, nil
}

// Memo returns the last stopped recording, or nil.
func (s *Session) Memo() *Memo {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.memo
}

// Load installs an already recorded memo, e.g. one read from disk.
func (s *Session) Load(m *Memo) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == Recording {
		return transitionError(s.state, Stopped)
	}
	if m.Buckets == nil {
		m.Buckets = waveform.Bucketize(m.Metering, s.buckets)
	}
	s.memo = m
	s.state = Stopped
	s.positionMs = 0
	return nil
}

// Play starts playback from the current position, or resumes when paused.
func (s *Session) Play() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.memo == nil {
		return ErrNoMemo
	}
	if !canMove(s.state, Playing) {
		return transitionError(s.state, Playing)
	}
	s.state = Playing
	return nil
}

func (s *Session) Pause() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !canMove(s.state, Paused) {
		return transitionError(s.state, Paused)
	}
	s.state = Paused
	return nil
}

// Toggle plays when not playing and pauses when playing.
func (s *Session) Toggle() error {
	if s.State() == Playing {
		return s.Pause()
	}
	return s.Play()
}

// Finish ends playback and rewinds to the start.
func (s *Session) Finish() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !canMove(s.state, Stopped) || s.state == Recording {
		return transitionError(s.state, Stopped)
	}
	s.state = Stopped
	s.positionMs = 0
	return nil
}

// SetPosition records the playback position reported by the player.
func (s *Session) SetPosition(ms float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if ms < 0 {
		ms = 0
	}
	s.positionMs = ms
}

// Progress is the played fraction of the current memo.
func (s *Session) Progress() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.memo == nil {
		return 0
	}
	return Progress(s.positionMs, float64(s.memo.Duration.Milliseconds()))
}

// Bars renders the current memo at the current progress.
func (s *Session) Bars(scale waveform.Scale) []waveform.Bar {
	m := s.Memo()
	if m == nil {
		return nil
	}
	return waveform.Render(m.Buckets, scale, s.Progress())
}

// Progress derives a [0, 1] fraction from a position and duration in ms.
func Progress(positionMs, durationMs float64) float64 {
	if durationMs <= 0 || math.IsNaN(positionMs) || math.IsNaN(durationMs) {
		return 0
	}
	p := positionMs / durationMs
	if p < 0 {
		return 0
	}
	if p > 1 {
		return 1
	}
	return p
}

// ClampLevel keeps a metering reading inside [SilenceDB, 0]. A missing
// reading (NaN) is stored as the initial meter level.
func ClampLevel(db float64) float64 {
	switch {
	case math.IsNaN(db):
		return spec.InitialMeterDB
	case db > 0:
		return 0
	case db < spec.SilenceDB:
		return spec.SilenceDB
	}
	return db
}
