// Package config loads the YAML description of a triangle scene: window, renderer settings
// and the triangles to spawn.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/Carmen-Shannon/oxy-triangle/common"
	"gopkg.in/yaml.v3"
)

// ErrInvalid is wrapped by every validation error.
var ErrInvalid = errors.New("config: invalid")

const (
	PresentModeVSync    = "vsync"
	PresentModeUncapped = "uncapped"
)

// Config is the root of a scene file.
type Config struct {
	LogLevel  string           `yaml:"log_level"`
	Profiling bool             `yaml:"profiling"`
	Window    WindowConfig     `yaml:"window"`
	Renderer  RendererConfig   `yaml:"renderer"`
	Camera    CameraConfig     `yaml:"camera"`
	Triangles []TriangleConfig `yaml:"triangles"`
}

type WindowConfig struct {
	Title  string `yaml:"title"`
	Width  int    `yaml:"width"`
	Height int    `yaml:"height"`
}

type RendererConfig struct {
	SampleCount      uint32     `yaml:"sample_count"`
	PresentMode      string     `yaml:"present_mode"`
	ClearColor       [4]float64 `yaml:"clear_color"`
	Workers          int        `yaml:"workers"`
	SoftwareRenderer bool       `yaml:"software_renderer"`
}

type CameraConfig struct {
	Scale float32 `yaml:"scale"`
}

// TriangleConfig is one equilateral triangle. Rotation is in degrees about the Z axis.
type TriangleConfig struct {
	Name        string     `yaml:"name"`
	Side        float32    `yaml:"side"`
	RGBA        [4]float32 `yaml:"rgba"`
	Translation [3]float32 `yaml:"translation"`
	Rotation    float32    `yaml:"rotation"`
	// pointer to distinguish unset from false
	Visible *bool `yaml:"visible"`
}

// IsVisible reports whether the triangle starts visible. Unset means visible.
func (t TriangleConfig) IsVisible() bool {
	return t.Visible == nil || *t.Visible
}

// Default returns the single red triangle scene: 4x MSAA, a light grey clear color and one
// triangle of side 500 at alpha 0.9.
func Default() Config {
	return Config{
		LogLevel: "info",
		Window: WindowConfig{
			Title:  "oxy-triangle",
			Width:  1280,
			Height: 720,
		},
		Renderer: RendererConfig{
			SampleCount: 4,
			PresentMode: PresentModeVSync,
			ClearColor:  [4]float64{0.9, 0.9, 0.9, 1},
		},
		Camera: CameraConfig{Scale: 1},
		Triangles: []TriangleConfig{{
			Name: "triangle",
			Side: 500,
			RGBA: [4]float32{1, 0, 0, 0.9},
		}},
	}
}

// Load reads and validates a scene file. Fields missing from the file keep their Default
// values; a triangles list in the file replaces the default triangle.
//
// Parameters:
//   - path: the YAML file
//
// Returns:
//   - Config: the loaded configuration
//   - error: a read, parse or validation error
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: %w", err)
	}
	c, err := Parse(data)
	if err != nil {
		return Config{}, fmt.Errorf("config: %s: %w", path, err)
	}
	return c, nil
}

// Parse decodes and validates YAML on top of Default.
func Parse(data []byte) (Config, error) {
	c := Default()
	c.Triangles = nil
	if err := yaml.Unmarshal(data, &c); err != nil {
		return Config{}, err
	}
	if c.Triangles == nil {
		c.Triangles = Default().Triangles
	}
	c.Window.Title = common.Coalesce(c.Window.Title, Default().Window.Title)
	c.Renderer.PresentMode = common.Coalesce(strings.ToLower(c.Renderer.PresentMode), PresentModeVSync)
	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

// Validate checks every field that would otherwise fail later at GPU setup.
func (c Config) Validate() error {
	var errs []error
	if c.Window.Width <= 0 || c.Window.Height <= 0 {
		errs = append(errs, fmt.Errorf("%w: window size %dx%d", ErrInvalid, c.Window.Width, c.Window.Height))
	}
	if c.Renderer.SampleCount < 1 || c.Renderer.SampleCount > 64 {
		errs = append(errs, fmt.Errorf("%w: sample count %d outside [1, 64]", ErrInvalid, c.Renderer.SampleCount))
	}
	switch strings.ToLower(c.Renderer.PresentMode) {
	case "", PresentModeVSync, PresentModeUncapped:
	default:
		errs = append(errs, fmt.Errorf("%w: present mode %q", ErrInvalid, c.Renderer.PresentMode))
	}
	if c.Camera.Scale <= 0 {
		errs = append(errs, fmt.Errorf("%w: camera scale %v", ErrInvalid, c.Camera.Scale))
	}
	if _, err := c.Level(); err != nil {
		errs = append(errs, err)
	}
	for i, t := range c.Triangles {
		if t.Side <= 0 {
			errs = append(errs, fmt.Errorf("%w: triangle %d side %v", ErrInvalid, i, t.Side))
		}
	}
	return errors.Join(errs...)
}

// Level parses LogLevel. An empty level is info.
func (c Config) Level() (slog.Level, error) {
	var l slog.Level
	if c.LogLevel == "" {
		return slog.LevelInfo, nil
	}
	if err := l.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return 0, fmt.Errorf("%w: log level %q", ErrInvalid, c.LogLevel)
	}
	return l, nil
}
