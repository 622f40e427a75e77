// Package config loads mindflow settings from YAML and the environment.
package config

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"mindflow/autosize"
	"mindflow/connections"
	"mindflow/generate"
	"mindflow/layout"
	"mindflow/theme"
	"mindflow/viewport"
)

// FileName is the configuration file looked up in the working directory.
const FileName = "mindflow.yaml"

// Config is the complete configuration.
type Config struct {
	Layout   layout.Config      `yaml:"layout"`
	Sizing   autosize.Config    `yaml:"sizing"`
	Routing  connections.Config `yaml:"routing"`
	Viewport ViewportConfig     `yaml:"viewport"`
	History  HistoryConfig      `yaml:"history"`
	Export   ExportConfig       `yaml:"export"`
	Generate GenerateConfig     `yaml:"generate"`
	Log      LogConfig          `yaml:"log"`
}

// ViewportConfig holds the interactive view settings.
type ViewportConfig struct {
	InitialZoom float64 `yaml:"initial_zoom"`
	// ZoomStep multiplies or divides the zoom per key press.
	ZoomStep float64 `yaml:"zoom_step"`
	// PanStep is the screen distance moved per arrow key press.
	PanStep float64 `yaml:"pan_step"`
}

// HistoryConfig bounds the undo history. Zero keeps every entry.
type HistoryConfig struct {
	Limit int `yaml:"limit"`
}

// ExportConfig holds the drawing exporters' settings.
type ExportConfig struct {
	Theme      string  `yaml:"theme"`
	Background string  `yaml:"background"`
	FontSize   float64 `yaml:"font_size"`
	Scale      float64 `yaml:"scale"`
}

// GenerateConfig configures content generation. The API key only comes
// from the environment.
type GenerateConfig struct {
	generate.OpenAIConfig `yaml:",inline"`
	Detail                string        `yaml:"detail"`
	Timeout               time.Duration `yaml:"timeout"`
	ExpandCount           int           `yaml:"expand_count"`
}

// LogConfig selects the log level and handler.
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Layout:  layout.DefaultConfig(),
		Sizing:  autosize.DefaultConfig(),
		Routing: connections.DefaultConfig(),
		Viewport: ViewportConfig{
			InitialZoom: 1,
			ZoomStep:    1.2,
			PanStep:     40,
		},
		History: HistoryConfig{Limit: 200},
		Export: ExportConfig{
			Theme:    theme.Light.Name,
			FontSize: 16,
			Scale:    1,
		},
		Generate: GenerateConfig{
			Detail:      string(generate.DetailStandard),
			Timeout:     90 * time.Second,
			ExpandCount: 4,
		},
		Log: LogConfig{Level: "info", Format: "text"},
	}
}

// Load reads the configuration at path. An empty path searches FileName in
// the working directory, then ~/.mindflow.yaml; when neither exists the
// defaults are returned. Values missing from the file keep their defaults.
func Load(path string) (Config, error) {
	cfg := Default()

	if path == "" {
		path = find()
		if path == "" {
			return cfg, nil
		}
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

func find() string {
	candidates := []string{FileName}
	if home, err := os.UserHomeDir(); err == nil {
		candidates = append(candidates, filepath.Join(home, "."+FileName))
	}
	for _, c := range candidates {
		if _, err := os.Stat(c); err == nil {
			return c
		}
	}
	return ""
}

// Validate checks values that cannot be clamped and clamps the rest.
func (c *Config) Validate() error {
	var errs []error

	c.Viewport.InitialZoom = viewport.ClampZoom(c.Viewport.InitialZoom)
	if c.Viewport.ZoomStep <= 1 {
		errs = append(errs, fmt.Errorf("viewport.zoom_step must be greater than 1, got %v", c.Viewport.ZoomStep))
	}
	if c.History.Limit < 0 {
		c.History.Limit = 0
	}
	if _, ok := theme.ByName(c.Export.Theme); !ok {
		errs = append(errs, fmt.Errorf("export.theme %q is not one of %s", c.Export.Theme, strings.Join(theme.Names(), ", ")))
	}
	if c.Export.Background != "" {
		if _, err := theme.ParseColor(c.Export.Background); err != nil {
			errs = append(errs, fmt.Errorf("export.background: %w", err))
		}
	}
	if _, err := generate.ParseDetail(c.Generate.Detail); err != nil {
		errs = append(errs, fmt.Errorf("generate.detail: %w", err))
	}
	if _, err := parseLevel(c.Log.Level); err != nil {
		errs = append(errs, fmt.Errorf("log.level: %w", err))
	}
	switch c.Log.Format {
	case "", "text", "json":
	default:
		errs = append(errs, fmt.Errorf("log.format %q must be text or json", c.Log.Format))
	}

	return errors.Join(errs...)
}

// LoadEnv loads the given .env files into the process environment. Missing
// files are skipped; variables already set are kept.
func LoadEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if _, err := os.Stat(f); errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err := godotenv.Load(f); err != nil {
			return fmt.Errorf("load %s: %w", f, err)
		}
	}
	return nil
}

// NewLogger builds a logger writing to w as configured.
func NewLogger(cfg LogConfig, w io.Writer) (*slog.Logger, error) {
	level, err := parseLevel(cfg.Level)
	if err != nil {
		return nil, err
	}
	opts := &slog.HandlerOptions{Level: level}
	if cfg.Format == "json" {
		return slog.New(slog.NewJSONHandler(w, opts)), nil
	}
	return slog.New(slog.NewTextHandler(w, opts)), nil
}

func parseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if s == "" {
		return slog.LevelInfo, nil
	}
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return level, err
	}
	return level, nil
}
