package renderer

import (
	"github.com/Carmen-Shannon/oxy-triangle/engine/renderer/device"
	"github.com/cogentcore/webgpu/wgpu"
)

// RendererBackendType identifies the GPU backend implementation used by the Renderer.
type RendererBackendType int

const (
	// BackendTypeWGPU selects the WebGPU-based rendering backend.
	BackendTypeWGPU RendererBackendType = iota
)

// PresentMode controls how rendered frames are presented to the display surface.
type PresentMode int

const (
	// PresentModeVSync waits for the next vertical blank before presenting, capping frame rate
	// to the monitor's refresh rate. Eliminates tearing.
	PresentModeVSync PresentMode = iota

	// PresentModeUncapped presents frames immediately without waiting for vertical blank.
	// May cause screen tearing but provides the lowest latency.
	PresentModeUncapped
)

// MSAASampleCount controls the number of samples used for multisample anti-aliasing (MSAA).
// WebGPU guarantees support for 1 (off) and 4; higher values are adapter-dependent.
type MSAASampleCount uint32

const (
	// MSAAOff disables multisample anti-aliasing (sample count 1).
	MSAAOff MSAASampleCount = 1

	// MSAA4x enables 4× multisample anti-aliasing. This is the default.
	MSAA4x MSAASampleCount = 4

	// MSAA8x enables 8× multisample anti-aliasing. Adapter-dependent.
	MSAA8x MSAASampleCount = 8

	// MSAA16x enables 16× multisample anti-aliasing. Adapter-dependent.
	MSAA16x MSAASampleCount = 16
)

// Backend is the GPU API a Renderer drives. Besides creating resources it owns the
// presentation surface and the main render pass of each frame.
type Backend interface {
	device.Device

	// ConfigureSurface (re)creates the swapchain and the multisampled color target for a
	// new surface size.
	//
	// Parameters:
	//   - width: the surface width in pixels
	//   - height: the surface height in pixels
	ConfigureSurface(width, height int)

	// SetPresentMode sets the present mode used by the next ConfigureSurface.
	//
	// Parameters:
	//   - mode: the present mode
	SetPresentMode(mode PresentMode)

	// SurfaceFormat returns the color format of the surface.
	//
	// Returns:
	//   - wgpu.TextureFormat: the surface format
	SurfaceFormat() wgpu.TextureFormat

	// BeginFrame acquires the next surface texture and begins the main render pass, cleared
	// to the clear color. Must be paired with EndFrame.
	//
	// Returns:
	//   - device.RenderPass: the pass to record into
	//   - error: an error if the surface texture could not be acquired
	BeginFrame() (device.RenderPass, error)

	// EndFrame ends the main render pass and submits it.
	EndFrame()

	// Present displays the submitted frame and releases the surface texture.
	Present()

	// Release frees the device and surface.
	Release()
}
