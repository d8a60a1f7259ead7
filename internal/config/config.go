// Package config loads the application settings file.
package config

import (
	"os"
	"time"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Duration is a time.Duration that unmarshals from yaml strings like
// "500ms".
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var raw string
	if err := value.Decode(&raw); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(raw)
	if err != nil {
		return errors.Wrapf(err, "parse duration %q", raw)
	}
	*d = Duration(parsed)
	return nil
}

// Std returns the standard library representation.
func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

// Config is the top-level settings document.
type Config struct {
	Log        LogConfig        `yaml:"log"`
	Session    SessionConfig    `yaml:"session"`
	Compositor CompositorConfig `yaml:"compositor"`
	Viewport   ViewportConfig   `yaml:"viewport"`
}

type LogConfig struct {
	Level string `yaml:"level"`
}

type SessionConfig struct {
	Endpoint       string   `yaml:"endpoint"`
	DialTimeout    Duration `yaml:"dial_timeout"`
	WriteTimeout   Duration `yaml:"write_timeout"`
	MaxMessageSize int64    `yaml:"max_message_size"`
}

type CompositorConfig struct {
	SampleInterval Duration `yaml:"sample_interval"`
	CanvasScale    float64  `yaml:"canvas_scale"`
	JPEGQuality    int      `yaml:"jpeg_quality"`
}

type ViewportConfig struct {
	Width  float64 `yaml:"width"`
	Height float64 `yaml:"height"`
}

// Default returns the reference settings: 500ms sampling, half-resolution
// compositor raster.
func Default() Config {
	return Config{
		Log: LogConfig{Level: "info"},
		Session: SessionConfig{
			DialTimeout:    Duration(10 * time.Second),
			WriteTimeout:   Duration(5 * time.Second),
			MaxMessageSize: 8 << 20,
		},
		Compositor: CompositorConfig{
			SampleInterval: Duration(500 * time.Millisecond),
			CanvasScale:    0.5,
			JPEGQuality:    80,
		},
		Viewport: ViewportConfig{Width: 1080, Height: 1920},
	}
}

// Load reads a yaml settings file over the defaults. A missing path
// returns the defaults unchanged.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, errors.Wrap(err, "read config")
	}
	if err = yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, errors.Wrap(err, "parse config")
	}
	return cfg, cfg.validate()
}

func (c Config) validate() error {
	if c.Compositor.CanvasScale <= 0 || c.Compositor.CanvasScale > 1 {
		return errors.Errorf("canvas_scale %v out of (0, 1]", c.Compositor.CanvasScale)
	}
	if c.Compositor.SampleInterval <= 0 {
		return errors.New("sample_interval must be positive")
	}
	if c.Compositor.JPEGQuality < 1 || c.Compositor.JPEGQuality > 100 {
		return errors.Errorf("jpeg_quality %d out of [1, 100]", c.Compositor.JPEGQuality)
	}
	return nil
}
