// Package config loads the mealdiary settings.
//
// Precedence, highest first:
//  1. MEALDIARY_* environment variables (MEALDIARY_API_BASE_URL -> api.base_url)
//  2. the YAML file (~/.config/mealdiary/config.yaml by default)
//  3. built-in defaults
package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"mealdiary/internal/logging"
	"mealdiary/pkg/spec"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/rawbytes"
	"github.com/knadh/koanf/v2"
)

const (
	EnvPrefix         = "MEALDIARY_"
	maxConfigFileSize = 1 << 20
)

var defaults = []byte(`
api:
  base_url: ` + spec.DefaultBaseURL + `
  timeout: 30s
  rate_per_sec: 5
recorder:
  tick: 100ms
waveform:
  buckets: 50
store:
  max_age: 10m
strava:
  redirect_url: mealdiary://strava
log:
  level: info
  format: console
`)

type Config struct {
	API      APIConfig      `koanf:"api"`
	Auth     AuthConfig     `koanf:"auth"`
	Recorder RecorderConfig `koanf:"recorder"`
	Waveform WaveformConfig `koanf:"waveform"`
	Store    StoreConfig    `koanf:"store"`
	Strava   StravaConfig   `koanf:"strava"`
	Log      logging.Config `koanf:"log"`
}

type APIConfig struct {
	BaseURL    string        `koanf:"base_url"`
	Timeout    time.Duration `koanf:"timeout"`
	RatePerSec float64       `koanf:"rate_per_sec"`
}

type AuthConfig struct {
	TokenFile string `koanf:"token_file"`
	UserID    string `koanf:"user_id"`
}

type RecorderConfig struct {
	Tick time.Duration `koanf:"tick"`
}

type WaveformConfig struct {
	Buckets int `koanf:"buckets"`
}

type StoreConfig struct {
	Path   string        `koanf:"path"`
	MaxAge time.Duration `koanf:"max_age"`
}

type StravaConfig struct {
	ClientID     string `koanf:"client_id"`
	ClientSecret string `koanf:"client_secret"`
	RedirectURL  string `koanf:"redirect_url"`
}

// Dir is the per-user config directory.
func Dir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, ".config", spec.AppName), nil
}

// Load reads the config at path, or the default file when path is empty.
// A missing default file is not an error, a missing explicit one is.
func Load(path string) (*Config, error) {
	k := koanf.New(".")
	if err := k.Load(rawbytes.Provider(defaults), yaml.Parser()); err != nil {
		return nil, fmt.Errorf("load defaults: %w", err)
	}

	explicit := path != ""
	if !explicit {
		dir, err := Dir()
		if err != nil {
			return nil, err
		}
		path = filepath.Join(dir, "config.yaml")
	}

	content, err := readConfigFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist) && !explicit:
	case err != nil:
		return nil, err
	default:
		if err := k.Load(rawbytes.Provider(content), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := cfg.applyPathDefaults(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return &cfg, nil
}

func readConfigFile(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("config path %s is a directory", path)
	}
	if info.Size() > maxConfigFileSize {
		return nil, fmt.Errorf("config file %s exceeds %d bytes", path, maxConfigFileSize)
	}
	content, err := io.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	return content, nil
}

// envKey maps MEALDIARY_SECTION_FIELD_NAME to section.field_name.
func envKey(s string) string {
	lower := strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	section, field, ok := strings.Cut(lower, "_")
	if !ok {
		return lower
	}
	return section + "." + field
}

func (c *Config) applyPathDefaults() error {
	if c.Auth.TokenFile != "" && c.Store.Path != "" {
		return nil
	}
	dir, err := Dir()
	if err != nil {
		return err
	}
	if c.Auth.TokenFile == "" {
		c.Auth.TokenFile = filepath.Join(dir, "session.token")
	}
	if c.Store.Path == "" {
		c.Store.Path = filepath.Join(dir, "cache.db")
	}
	return nil
}

func (c *Config) Validate() error {
	var errs []error
	if c.API.BaseURL == "" {
		errs = append(errs, errors.New("api.base_url is required"))
	}
	if c.API.Timeout <= 0 {
		errs = append(errs, errors.New("api.timeout must be positive"))
	}
	if c.API.RatePerSec < 0 {
		errs = append(errs, errors.New("api.rate_per_sec must not be negative"))
	}
	if c.Recorder.Tick <= 0 {
		errs = append(errs, errors.New("recorder.tick must be positive"))
	}
	if c.Waveform.Buckets <= 0 {
		errs = append(errs, errors.New("waveform.buckets must be positive"))
	}
	if err := c.Log.Validate(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}
