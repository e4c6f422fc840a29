package recorder

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"mealdiary/pkg/spec"

	"go.uber.org/zap"
)

// MeterSource yields one input level per call, in dBFS. io.EOF ends the
// recording.
type MeterSource interface {
	Level() (float64, error)
}

// MeterFunc adapts a plain function to MeterSource.
type MeterFunc func() (float64, error)

func (f MeterFunc) Level() (float64, error) { return f() }

// Run polls src every tick while the session is recording. It stops the
// session when the source is exhausted and returns the stopped memo. When
// the session is stopped by someone else Run returns (nil, nil).
func (s *Session) Run(ctx context.Context, src MeterSource, tick time.Duration) (*Memo, error) {
	if tick <= 0 {
		tick = spec.MeterTick
	}
	if s.State() != Recording {
		if err := s.Start(); err != nil {
			return nil, err
		}
	}

	t := time.NewTicker(tick)
	defer t.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-t.C:
		}

		level, err := src.Level()
		if errors.Is(err, io.EOF) {
			return s.Stop()
		}
		if err != nil {
			s.log.Warn("metering failed", zap.Error(err))
			return nil, fmt.Errorf("metering: %w", err)
		}
		if !s.Tick(level) {
			return nil, nil
		}
	}
}
