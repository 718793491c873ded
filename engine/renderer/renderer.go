package renderer

import (
	"errors"
	"fmt"
	"runtime"
	"sync"
	"time"

	"github.com/Carmen-Shannon/automation/tools/worker"
	"github.com/Carmen-Shannon/oxy-triangle/common"
	"github.com/Carmen-Shannon/oxy-triangle/engine/camera"
	"github.com/Carmen-Shannon/oxy-triangle/engine/renderer/device"
	"github.com/Carmen-Shannon/oxy-triangle/engine/renderer/render_phase"
	"github.com/Carmen-Shannon/oxy-triangle/engine/renderer/shader"
	"github.com/Carmen-Shannon/oxy-triangle/engine/renderer/uniform"
	"github.com/Carmen-Shannon/oxy-triangle/engine/scene"
	"github.com/Carmen-Shannon/oxy-triangle/engine/window"
	"github.com/cogentcore/webgpu/wgpu"
)

// ErrSurfaceUnavailable is returned by RenderFrame when no surface texture could be acquired.
// The frame is discarded; nothing was drawn.
var ErrSurfaceUnavailable = errors.New("renderer: surface unavailable")

// Plugin contributes draw items to the frames of a Renderer. The phases of a frame run in
// order with a barrier between them: every plugin finishes Extract before any plugin
// starts Prepare, and so on.
type Plugin interface {
	// Name returns the plugin name used in logs.
	Name() string

	// Build registers the plugin's shaders, layouts and draw functions. A failure aborts
	// plugin registration.
	//
	// Parameters:
	//   - r: the renderer the plugin is added to
	//
	// Returns:
	//   - error: an initialization error
	Build(r Renderer) error

	// Extract copies render-relevant state out of the frame's world.
	//
	// Parameters:
	//   - f: the current frame
	//
	// Returns:
	//   - error: an error that discards the frame
	Extract(f *Frame) error

	// Prepare uploads extracted data and builds bind groups. The view uniform buffer is
	// written before any plugin's Prepare runs.
	//
	// Parameters:
	//   - f: the current frame
	//
	// Returns:
	//   - error: an error that discards the frame
	Prepare(f *Frame) error

	// Queue appends draw items to the phases of the frame's views.
	//
	// Parameters:
	//   - f: the current frame
	//
	// Returns:
	//   - error: an error that discards the frame
	Queue(f *Frame) error
}

// renderer is the implementation of the Renderer interface.
type renderer struct {
	mu *sync.Mutex

	backendType RendererBackendType
	backend     Backend

	shaders       shader.Store
	drawFunctions render_phase.DrawFunctions
	viewUniforms  uniform.DynamicUniformBuffer
	phases        map[camera.ViewID]render_phase.Phase
	plugins       []Plugin
	pool          worker.DynamicWorkerPool
	frameNumber   uint64
	released      bool

	// Pre-creation config collected from builder options
	forceFallbackAdapter bool
	pendingPresentMode   *PresentMode
	sampleCount          MSAASampleCount
	clearColor           wgpu.Color
	workers              int
}

// Renderer is the render context: it owns the GPU backend, the shader store, the draw
// function registry and the per-view phases, and drives registered plugins through the
// Extract, Prepare, Queue and Render phases of every frame.
type Renderer interface {
	// Device returns the device GPU resources are created on.
	//
	// Returns:
	//   - device.Device: the device
	Device() device.Device

	// Shaders returns the shader store owned by this renderer.
	//
	// Returns:
	//   - shader.Store: the shader store
	Shaders() shader.Store

	// DrawFunctions returns the draw function registry of the main pass.
	//
	// Returns:
	//   - render_phase.DrawFunctions: the registry
	DrawFunctions() render_phase.DrawFunctions

	// SampleCount returns the multisample count of the main render target.
	//
	// Returns:
	//   - uint32: the sample count
	SampleCount() uint32

	// SurfaceFormat returns the color format pipelines must target.
	//
	// Returns:
	//   - wgpu.TextureFormat: the surface format
	SurfaceFormat() wgpu.TextureFormat

	// AddPlugin builds a plugin and registers it for every following frame.
	//
	// Parameters:
	//   - p: the plugin
	//
	// Returns:
	//   - error: the plugin's Build error, in which case it is not registered
	AddPlugin(p Plugin) error

	// Resize configures the underlying backend to handle a new surface size.
	//
	// Parameters:
	//   - width: the new width of the surface in pixels
	//   - height: the new height of the surface in pixels
	Resize(width, height int)

	// SetPresentMode sets the surface present mode. A call to Resize is required after
	// changing this for the new mode to take effect.
	//
	// Parameters:
	//   - mode: the PresentMode to use
	SetPresentMode(mode PresentMode)

	// RenderFrame renders one frame of world as seen by each camera.
	//
	// Parameters:
	//   - world: the scene to render
	//   - cameras: the views to render
	//
	// Returns:
	//   - FrameStats: what was drawn
	//   - error: ErrSurfaceUnavailable when the surface could not be acquired, or a plugin
	//     phase error; in both cases the frame is discarded
	RenderFrame(world scene.Scene, cameras ...camera.Camera) (FrameStats, error)

	// Release frees, in order, the resources of plugins that have a Release method (last
	// added first), the view uniforms, the shader modules and the backend. Later calls do
	// nothing.
	Release()
}

// releaser is implemented by plugins owning GPU resources.
type releaser interface {
	Release()
}

var _ Renderer = &renderer{}

// NewRenderer creates a new Renderer with the specified backend type drawing into the window's surface.
//
// Parameters:
//   - backendType: the type of rendering backend to use (e.g., WGPU)
//   - win: the window providing the surface and its size
//   - options: variadic list of RendererBuilderOption functions to configure the Renderer
//
// Returns:
//   - Renderer: a new instance of Renderer configured with the specified backend and options
func NewRenderer(backendType RendererBackendType, win window.Window, options ...RendererBuilderOption) Renderer {
	r := newRenderer(options...)
	r.backendType = backendType

	switch backendType {
	case BackendTypeWGPU:
		fallthrough
	default:
		r.backend = newWGPURendererBackend(win.SurfaceDescriptor(), r.forceFallbackAdapter, r.sampleCount, r.clearColor)
	}
	r.init(win.Width(), win.Height())
	return r
}

// NewRendererWithBackend creates a Renderer on an existing backend.
//
// Parameters:
//   - backend: the backend to drive
//   - width, height: the initial surface size
//   - options: variadic list of RendererBuilderOption functions to configure the Renderer
//
// Returns:
//   - Renderer: the new renderer
func NewRendererWithBackend(backend Backend, width, height int, options ...RendererBuilderOption) Renderer {
	r := newRenderer(options...)
	r.backend = backend
	r.init(width, height)
	return r
}

func newRenderer(options ...RendererBuilderOption) *renderer {
	r := &renderer{
		mu:            &sync.Mutex{},
		shaders:       shader.NewStore(),
		drawFunctions: render_phase.NewDrawFunctions(),
		phases:        make(map[camera.ViewID]render_phase.Phase),
		sampleCount:   MSAA4x,
		clearColor:    wgpu.Color{R: 0.1, G: 0.1, B: 0.1, A: 1.0},
		workers:       max(runtime.NumCPU()-1, 1),
	}
	var view camera.GPUViewUniform
	r.viewUniforms = uniform.NewDynamicUniformBuffer("view uniforms", uint64(view.Size()))

	// Apply options first so config flags (e.g. forceFallbackAdapter) are
	// available before the backend requests a GPU adapter.
	for _, opt := range options {
		opt(r)
	}
	if r.workers > 1 {
		r.pool = worker.NewDynamicWorkerPool(r.workers, 256, 1*time.Second)
	}
	return r
}

func (r *renderer) init(width, height int) {
	if r.pendingPresentMode != nil {
		r.backend.SetPresentMode(*r.pendingPresentMode)
	}
	r.backend.ConfigureSurface(width, height)
}

func (r *renderer) Device() device.Device {
	return r.backend
}

func (r *renderer) Shaders() shader.Store {
	return r.shaders
}

func (r *renderer) DrawFunctions() render_phase.DrawFunctions {
	return r.drawFunctions
}

func (r *renderer) SampleCount() uint32 {
	return uint32(r.sampleCount)
}

func (r *renderer) SurfaceFormat() wgpu.TextureFormat {
	return r.backend.SurfaceFormat()
}

func (r *renderer) AddPlugin(p Plugin) error {
	if err := p.Build(r); err != nil {
		return fmt.Errorf("renderer: failed to build plugin %s: %w", p.Name(), err)
	}
	r.mu.Lock()
	r.plugins = append(r.plugins, p)
	r.mu.Unlock()
	common.Logger().Info("plugin built", "plugin", p.Name())
	return nil
}

// Resize may be called from the window goroutine; it waits for an in-flight frame.
func (r *renderer) Resize(width, height int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.backend.ConfigureSurface(width, height)
}

func (r *renderer) SetPresentMode(mode PresentMode) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.backend.SetPresentMode(mode)
}

func (r *renderer) RenderFrame(world scene.Scene, cameras ...camera.Camera) (FrameStats, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	start := time.Now()
	r.frameNumber++
	f := &Frame{
		Number:       r.frameNumber,
		World:        world,
		Views:        make([]*FrameView, len(cameras)),
		dev:          r.backend,
		sampleCount:  uint32(r.sampleCount),
		viewUniforms: r.viewUniforms,
		pool:         r.pool,
	}
	stats := FrameStats{Frame: f.Number, Views: len(cameras)}

	// extract
	f.Parallel(len(cameras), func(i int) {
		f.Views[i] = &FrameView{ExtractedView: cameras[i].Extract(world)}
	})
	r.assignPhases(f.Views)
	if err := r.runPhase("extract", f, Plugin.Extract); err != nil {
		return stats, err
	}

	// prepare
	r.viewUniforms.Clear()
	for _, v := range f.Views {
		v.UniformOffset = r.viewUniforms.Push(v.Uniform.Marshal())
	}
	if err := r.viewUniforms.Write(r.backend); err != nil {
		return stats, fmt.Errorf("renderer: frame %d: %w", f.Number, err)
	}
	if err := r.runPhase("prepare", f, Plugin.Prepare); err != nil {
		return stats, err
	}

	// queue and sort
	if err := r.runPhase("queue", f, Plugin.Queue); err != nil {
		return stats, err
	}
	f.Parallel(len(f.Views), func(i int) {
		f.Views[i].Phase.Sort()
	})

	// render
	pass, err := r.backend.BeginFrame()
	if err != nil {
		common.Logger().Warn("frame discarded", "frame", f.Number, "error", err)
		return stats, fmt.Errorf("%w: %w", ErrSurfaceUnavailable, err)
	}
	for _, v := range f.Views {
		tracked := render_phase.NewTrackedRenderPass(pass)
		rs := render_phase.Render(tracked, v.RenderView(), v.Phase, r.drawFunctions)
		stats.Items += v.Phase.Len()
		stats.Drawn += rs.Drawn
		stats.Skipped += rs.Skipped
		stats.DrawCalls += tracked.DrawCalls()
	}
	r.backend.EndFrame()
	r.backend.Present()

	stats.Duration = time.Since(start)
	return stats, nil
}

// assignPhases hands every view its cleared phase, creating phases for new views and
// dropping those of views that were not rendered this frame. Caller must hold the mutex.
func (r *renderer) assignPhases(views []*FrameView) {
	seen := make(map[camera.ViewID]struct{}, len(views))
	for _, v := range views {
		p, ok := r.phases[v.ID]
		if !ok {
			p = render_phase.NewPhase()
			r.phases[v.ID] = p
		}
		p.Clear()
		v.Phase = p
		seen[v.ID] = struct{}{}
	}
	for id := range r.phases {
		if _, ok := seen[id]; !ok {
			delete(r.phases, id)
		}
	}
}

func (r *renderer) runPhase(name string, f *Frame, run func(Plugin, *Frame) error) error {
	for _, p := range r.plugins {
		if err := run(p, f); err != nil {
			common.Logger().Error("plugin phase failed", "plugin", p.Name(), "phase", name, "frame", f.Number, "error", err)
			return fmt.Errorf("renderer: %s %s: %w", p.Name(), name, err)
		}
	}
	return nil
}

func (r *renderer) Release() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.released {
		return
	}
	r.released = true
	for i := len(r.plugins) - 1; i >= 0; i-- {
		if rel, ok := r.plugins[i].(releaser); ok {
			rel.Release()
		}
	}
	if r.pool != nil {
		r.pool.Stop()
	}
	r.viewUniforms.Release()
	r.shaders.Release()
	r.backend.Release()
}
