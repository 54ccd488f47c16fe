// Package config loads engine configuration from YAML.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// ErrInvalid is returned by Validate for out-of-range settings.
var ErrInvalid = errors.New("config: invalid configuration")

// Config holds every tunable of an engine.
type Config struct {
	// HistoryDepth is the maximum number of undo entries.
	HistoryDepth int `yaml:"history_depth"`
	// ViewScale is the initial screen pixels per world unit.
	ViewScale float64 `yaml:"view_scale"`

	Pick      Pick      `yaml:"pick"`
	Transform Transform `yaml:"transform"`
	Render    Render    `yaml:"render"`
	Text      Text      `yaml:"text"`
	Log       Log       `yaml:"log"`
}

// Pick configures hit-testing. Sizes are in screen pixels.
type Pick struct {
	Tolerance    float64 `yaml:"tolerance"`
	HandleSize   float64 `yaml:"handle_size"`
	RotateOffset float64 `yaml:"rotate_offset"`
}

// Transform configures interactive sessions.
type Transform struct {
	// SnapAngle is the rotation snap step in degrees; 0 disables snapping.
	SnapAngle float64 `yaml:"snap_angle"`
}

// Render configures buffer building. Sizes are in world units.
type Render struct {
	Tolerance float64 `yaml:"tolerance"`
	NodeSize  float64 `yaml:"node_size"`
}

// Text configures the default text layout.
type Text struct {
	LineSpacing float64 `yaml:"line_spacing"`
	// Font is an optional TrueType file used instead of the Go fonts.
	Font string `yaml:"font"`
	// ShapeCache is the number of shaped runs kept for reuse.
	ShapeCache int `yaml:"shape_cache"`
}

// Log configures the command-line logger.
type Log struct {
	Level string `yaml:"level"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		HistoryDepth: 50,
		ViewScale:    1,
		Pick:         Pick{Tolerance: 4, HandleSize: 8, RotateOffset: 24},
		Render:       Render{Tolerance: 0.25, NodeSize: 4},
		Text:         Text{LineSpacing: 1, ShapeCache: 1024},
		Log:          Log{Level: "info"},
	}
}

// Parse reads YAML over the defaults. Unknown keys are rejected.
func Parse(data []byte) (Config, error) {
	c := Default()
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&c); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, fmt.Errorf("parsing config: %w", err)
	}
	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

// Load reads and parses a YAML file.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("reading config: %w", err)
	}
	return Parse(data)
}

// Validate checks ranges.
func (c Config) Validate() error {
	var errs []error
	check := func(ok bool, format string, args ...any) {
		if !ok {
			errs = append(errs, fmt.Errorf("%w: "+format, append([]any{ErrInvalid}, args...)...))
		}
	}
	check(c.HistoryDepth > 0, "history_depth %d must be positive", c.HistoryDepth)
	check(c.ViewScale > 0, "view_scale %v must be positive", c.ViewScale)
	check(c.Pick.Tolerance >= 0, "pick.tolerance %v is negative", c.Pick.Tolerance)
	check(c.Pick.HandleSize >= 0, "pick.handle_size %v is negative", c.Pick.HandleSize)
	check(c.Pick.RotateOffset >= 0, "pick.rotate_offset %v is negative", c.Pick.RotateOffset)
	check(c.Transform.SnapAngle >= 0 && c.Transform.SnapAngle <= 180, "transform.snap_angle %v outside [0, 180]", c.Transform.SnapAngle)
	check(c.Render.Tolerance > 0, "render.tolerance %v must be positive", c.Render.Tolerance)
	check(c.Render.NodeSize >= 0, "render.node_size %v is negative", c.Render.NodeSize)
	check(c.Text.LineSpacing > 0, "text.line_spacing %v must be positive", c.Text.LineSpacing)
	check(c.Text.ShapeCache >= 0, "text.shape_cache %d is negative", c.Text.ShapeCache)
	_, err := c.Log.SlogLevel()
	check(err == nil, "log.level %q", c.Log.Level)
	return errors.Join(errs...)
}

// SlogLevel maps Level to a slog level. An empty level is info.
func (l Log) SlogLevel() (slog.Level, error) {
	var lvl slog.Level
	if l.Level == "" {
		return slog.LevelInfo, nil
	}
	if err := lvl.UnmarshalText([]byte(strings.ToUpper(l.Level))); err != nil {
		return 0, err
	}
	return lvl, nil
}
