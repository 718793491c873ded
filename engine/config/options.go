package config

import (
	"strings"

	"github.com/Carmen-Shannon/oxy-triangle/engine/camera"
	"github.com/Carmen-Shannon/oxy-triangle/engine/renderer"
	"github.com/Carmen-Shannon/oxy-triangle/engine/scene"
	"github.com/Carmen-Shannon/oxy-triangle/engine/window"
	"github.com/cogentcore/webgpu/wgpu"
	"github.com/go-gl/mathgl/mgl32"
)

// RendererOptions translates the renderer section into renderer options.
func (c Config) RendererOptions() []renderer.RendererBuilderOption {
	mode := renderer.PresentModeVSync
	if strings.EqualFold(c.Renderer.PresentMode, PresentModeUncapped) {
		mode = renderer.PresentModeUncapped
	}
	cc := c.Renderer.ClearColor
	opts := []renderer.RendererBuilderOption{
		renderer.WithMSAA(renderer.MSAASampleCount(c.Renderer.SampleCount)),
		renderer.WithPresentMode(mode),
		renderer.WithClearColor(wgpu.Color{R: cc[0], G: cc[1], B: cc[2], A: cc[3]}),
		renderer.WithForceSoftwareRenderer(c.Renderer.SoftwareRenderer),
	}
	if c.Renderer.Workers > 0 {
		opts = append(opts, renderer.WithExtractWorkers(c.Renderer.Workers))
	}
	return opts
}

// WindowOptions translates the window section into window options.
func (c Config) WindowOptions() []window.WindowBuilderOption {
	return []window.WindowBuilderOption{
		window.WithTitle(c.Window.Title),
		window.WithSize(c.Window.Width, c.Window.Height),
	}
}

// CameraOptions returns the options of a camera covering a viewport of the given size.
func (c Config) CameraOptions(width, height int) []camera.CameraBuilderOption {
	return []camera.CameraBuilderOption{
		camera.WithViewport(float32(width), float32(height)),
		camera.WithScale(c.Camera.Scale),
	}
}

// Transform returns the triangle's placement.
func (t TriangleConfig) Transform() scene.Transform {
	tr := scene.TransformFromTranslation(t.Translation[0], t.Translation[1], t.Translation[2])
	tr.Rotation = mgl32.QuatRotate(mgl32.DegToRad(t.Rotation), mgl32.Vec3{0, 0, 1})
	return tr
}

// Spawn adds every configured triangle to world, in file order.
//
// Parameters:
//   - world: the scene to populate
//
// Returns:
//   - []scene.EntityID: the spawned entities
func (c Config) Spawn(world scene.Scene) []scene.EntityID {
	ids := make([]scene.EntityID, 0, len(c.Triangles))
	for _, t := range c.Triangles {
		ids = append(ids, world.Spawn(
			scene.EntityName(t.Name),
			scene.EntityShape(scene.TriangleSide(t.Side).WithRGBA(t.RGBA[0], t.RGBA[1], t.RGBA[2], t.RGBA[3])),
			scene.EntityTransform(t.Transform()),
			scene.EntityVisible(t.IsVisible()),
		))
	}
	return ids
}
