package config

import (
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/Carmen-Shannon/oxy-triangle/engine/scene"
)

func TestDefaultIsValid(t *testing.T) {
	c := Default()
	if err := c.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if c.Renderer.SampleCount != 4 || c.Renderer.ClearColor[0] != 0.9 {
		t.Errorf("unexpected renderer defaults %+v", c.Renderer)
	}
	if len(c.Triangles) != 1 || c.Triangles[0].Side != 500 || c.Triangles[0].RGBA != [4]float32{1, 0, 0, 0.9} {
		t.Errorf("unexpected default triangles %+v", c.Triangles)
	}
}

func TestParseOverridesDefaults(t *testing.T) {
	c, err := Parse([]byte(`
log_level: debug
renderer:
  sample_count: 1
  present_mode: uncapped
triangles:
  - name: left
    side: 100
    rgba: [0, 1, 0, 1]
    translation: [-200, 0, 1]
  - name: hidden
    side: 50
    visible: false
`))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if c.Renderer.SampleCount != 1 || c.Renderer.PresentMode != PresentModeUncapped {
		t.Errorf("renderer = %+v", c.Renderer)
	}
	if c.Window.Width != 1280 || c.Renderer.ClearColor[0] != 0.9 {
		t.Error("unset fields lost their defaults")
	}
	if len(c.Triangles) != 2 || c.Triangles[0].Translation != [3]float32{-200, 0, 1} {
		t.Fatalf("triangles = %+v", c.Triangles)
	}
	if !c.Triangles[0].IsVisible() || c.Triangles[1].IsVisible() {
		t.Error("visibility not decoded")
	}
	if l, _ := c.Level(); l != slog.LevelDebug {
		t.Errorf("level = %v", l)
	}
}

func TestParseKeepsDefaultTriangleWhenUnset(t *testing.T) {
	c, err := Parse([]byte("window:\n  title: custom\n"))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if c.Window.Title != "custom" || len(c.Triangles) != 1 {
		t.Errorf("unexpected config %+v", c)
	}
}

func TestParseNormalizesEmptyStrings(t *testing.T) {
	c, err := Parse([]byte("window:\n  title: \"\"\nrenderer:\n  present_mode: UNCAPPED\n"))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if c.Window.Title != "oxy-triangle" || c.Renderer.PresentMode != PresentModeUncapped {
		t.Errorf("title = %q, present mode = %q", c.Window.Title, c.Renderer.PresentMode)
	}

	c, err = Parse([]byte("renderer:\n  present_mode: \"\"\n"))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if c.Renderer.PresentMode != PresentModeVSync {
		t.Errorf("present mode = %q", c.Renderer.PresentMode)
	}
}

func TestValidateRejects(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *Config)
	}{
		{"zero samples", func(c *Config) { c.Renderer.SampleCount = 0 }},
		{"too many samples", func(c *Config) { c.Renderer.SampleCount = 65 }},
		{"window size", func(c *Config) { c.Window.Width = 0 }},
		{"present mode", func(c *Config) { c.Renderer.PresentMode = "sometimes" }},
		{"camera scale", func(c *Config) { c.Camera.Scale = 0 }},
		{"log level", func(c *Config) { c.LogLevel = "loud" }},
		{"triangle side", func(c *Config) { c.Triangles[0].Side = -1 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := Default()
			tt.mutate(&c)
			if err := c.Validate(); !errors.Is(err, ErrInvalid) {
				t.Errorf("expected ErrInvalid, got %v", err)
			}
		})
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scene.yaml")
	if err := os.WriteFile(path, []byte("renderer:\n  sample_count: 8\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	c, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if c.Renderer.SampleCount != 8 {
		t.Errorf("sample count = %d", c.Renderer.SampleCount)
	}
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected an error for a missing file")
	}
	if _, err := Parse([]byte("renderer: [")); err == nil {
		t.Error("expected a parse error")
	}
}

func TestSpawn(t *testing.T) {
	c := Default()
	hidden := false
	c.Triangles = append(c.Triangles, TriangleConfig{Name: "second", Side: 10, Translation: [3]float32{1, 2, 3}, Rotation: 90, Visible: &hidden})
	world := scene.NewScene("config")

	ids := c.Spawn(world)
	if len(ids) != 2 || world.Len() != 2 {
		t.Fatalf("spawned %d entities", len(ids))
	}
	first, _ := world.Get(ids[0])
	if first.Shape == nil || first.Shape.Color != [4]float32{1, 0, 0, 0.9} || !first.Visible {
		t.Errorf("unexpected first entity %+v", first)
	}
	second, _ := world.Get(ids[1])
	if second.Visible || second.Transform.Translation.Z() != 3 {
		t.Errorf("unexpected second entity %+v", second)
	}
	if len(c.RendererOptions()) != 4 || len(c.WindowOptions()) != 2 {
		t.Error("unexpected option counts")
	}
}
