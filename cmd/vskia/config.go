package main

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the on-disk configuration. Durations are strings accepted by
// time.ParseDuration.
type Config struct {
	Server  ServerConfig  `yaml:"server"`
	Render  RenderConfig  `yaml:"render"`
	Viewer  ViewerConfig  `yaml:"viewer"`
	Logging LoggingConfig `yaml:"logging"`
}

// ServerConfig configures the serve command.
type ServerConfig struct {
	Addr          string `yaml:"addr"`
	ReadTimeout   string `yaml:"read_timeout"`
	WriteTimeout  string `yaml:"write_timeout"`
	ShutdownGrace string `yaml:"shutdown_grace"`
}

// RenderConfig configures rasterization.
type RenderConfig struct {
	RootID      uint32  `yaml:"root_id"`
	StrokeWidth float64 `yaml:"stroke_width"`
}

// ViewerConfig configures the view command.
type ViewerConfig struct {
	Title      string `yaml:"title"`
	Width      int    `yaml:"width"`
	Height     int    `yaml:"height"`
	StepFrames int    `yaml:"step_frames"`
	Fade       string `yaml:"fade"`
}

// LoggingConfig configures zap.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error
	Debug bool   `yaml:"debug"` // scene debug mode
}

// DefaultConfig returns the configuration used when no file is given.
func DefaultConfig() Config {
	return Config{
		Server: ServerConfig{
			Addr:          "127.0.0.1:8787",
			ReadTimeout:   "10s",
			WriteTimeout:  "30s",
			ShutdownGrace: "5s",
		},
		Render: RenderConfig{
			RootID:      0,
			StrokeWidth: 1,
		},
		Viewer: ViewerConfig{
			Title:      "vskia",
			Width:      640,
			Height:     480,
			StepFrames: 30,
			Fade:       "250ms",
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// LoadConfig overlays the YAML file at path onto DefaultConfig. An empty
// path returns the defaults.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks that every duration parses and sizes are sane.
func (c Config) Validate() error {
	var errs []error
	for name, v := range map[string]string{
		"server.read_timeout":   c.Server.ReadTimeout,
		"server.write_timeout":  c.Server.WriteTimeout,
		"server.shutdown_grace": c.Server.ShutdownGrace,
		"viewer.fade":           c.Viewer.Fade,
	} {
		if _, err := parseDuration(v); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", name, err))
		}
	}
	if c.Viewer.Width < 0 || c.Viewer.Height < 0 {
		errs = append(errs, errors.New("viewer size must not be negative"))
	}
	if c.Render.StrokeWidth < 0 {
		errs = append(errs, errors.New("render.stroke_width must not be negative"))
	}
	return errors.Join(errs...)
}

// parseDuration treats the empty string as zero.
func parseDuration(s string) (time.Duration, error) {
	if s == "" {
		return 0, nil
	}
	return time.ParseDuration(s)
}

// mustDuration is for values already checked by Validate.
func mustDuration(s string) time.Duration {
	d, _ := parseDuration(s)
	return d
}
