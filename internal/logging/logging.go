// Package logging builds the zap logger shared by the CLI and its components.
package logging

import (
	"errors"
	"fmt"
	"io"
	"os"
	"syscall"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type Config struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
}

func (c Config) Validate() error {
	if _, err := zapcore.ParseLevel(c.levelOrDefault()); err != nil {
		return fmt.Errorf("log level: %w", err)
	}
	switch c.Format {
	case "", "json", "console":
		return nil
	}
	return fmt.Errorf("log format %q must be json or console", c.Format)
}

func (c Config) levelOrDefault() string {
	if c.Level == "" {
		return "info"
	}
	return c.Level
}

// New creates a logger writing to w, stderr when w is nil.
func New(cfg Config, w io.Writer) (*zap.Logger, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	lvl, _ := zapcore.ParseLevel(cfg.levelOrDefault())
	if w == nil {
		w = os.Stderr
	}
	core := zapcore.NewCore(newEncoder(cfg.Format), zapcore.AddSync(w), lvl)
	return zap.New(core, zap.AddCaller()), nil
}

func newEncoder(format string) zapcore.Encoder {
	encoderCfg := zap.NewProductionEncoderConfig()
	encoderCfg.TimeKey = "ts"
	encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder

	if format == "console" {
		encoderCfg.EncodeLevel = zapcore.CapitalColorLevelEncoder
		return zapcore.NewConsoleEncoder(encoderCfg)
	}
	return zapcore.NewJSONEncoder(encoderCfg)
}

// Sync flushes l, ignoring the errors stderr and stdout give on sync.
func Sync(l *zap.Logger) error {
	err := l.Sync()
	if err != nil && (errors.Is(err, syscall.EINVAL) || errors.Is(err, syscall.ENOTTY) || errors.Is(err, syscall.EBADF)) {
		return nil
	}
	return err
}
