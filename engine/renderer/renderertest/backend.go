// Package renderertest provides a recording renderer backend so whole frames can be
// rendered without a GPU or a window.
package renderertest

import (
	"github.com/Carmen-Shannon/oxy-triangle/engine/renderer"
	"github.com/Carmen-Shannon/oxy-triangle/engine/renderer/device"
	"github.com/Carmen-Shannon/oxy-triangle/engine/renderer/device/devicetest"
	"github.com/cogentcore/webgpu/wgpu"
)

// Backend is a renderer.Backend whose device is a devicetest.Device and whose frames are
// recorded into devicetest.RenderPass values.
type Backend struct {
	*devicetest.Device

	Format        wgpu.TextureFormat
	Width, Height int
	PresentMode   renderer.PresentMode

	// FailBeginFrame, when set, makes BeginFrame fail as if the surface were lost.
	FailBeginFrame error

	// Passes holds one recorded pass per begun frame.
	Passes    []*devicetest.RenderPass
	Ended     int
	Presented int
	Released  bool

	// Events logs frame and lifetime calls in order: "begin", "end", "present", "release".
	Events []string
}

var _ renderer.Backend = &Backend{}

// NewBackend creates a recording backend with a BGRA8 surface.
func NewBackend() *Backend {
	return &Backend{
		Device: devicetest.NewDevice(),
		Format: wgpu.TextureFormatBGRA8Unorm,
	}
}

func (b *Backend) ConfigureSurface(width, height int) {
	b.Width, b.Height = width, height
}

func (b *Backend) SetPresentMode(mode renderer.PresentMode) {
	b.PresentMode = mode
}

func (b *Backend) SurfaceFormat() wgpu.TextureFormat {
	return b.Format
}

func (b *Backend) BeginFrame() (device.RenderPass, error) {
	b.Events = append(b.Events, "begin")
	if b.FailBeginFrame != nil {
		return nil, b.FailBeginFrame
	}
	pass := &devicetest.RenderPass{}
	b.Passes = append(b.Passes, pass)
	return pass, nil
}

func (b *Backend) EndFrame() {
	b.Ended++
	b.Events = append(b.Events, "end")
}

func (b *Backend) Present() {
	b.Presented++
	b.Events = append(b.Events, "present")
}

func (b *Backend) Release() {
	b.Released = true
	b.Events = append(b.Events, "release")
}

// LastPass returns the pass of the most recent frame, or nil before the first frame.
func (b *Backend) LastPass() *devicetest.RenderPass {
	if len(b.Passes) == 0 {
		return nil
	}
	return b.Passes[len(b.Passes)-1]
}
