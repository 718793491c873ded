package renderer

import (
	"sync"
	"time"

	"github.com/Carmen-Shannon/automation/tools/worker"
	"github.com/Carmen-Shannon/oxy-triangle/engine/camera"
	"github.com/Carmen-Shannon/oxy-triangle/engine/renderer/device"
	"github.com/Carmen-Shannon/oxy-triangle/engine/renderer/render_phase"
	"github.com/Carmen-Shannon/oxy-triangle/engine/renderer/uniform"
	"github.com/Carmen-Shannon/oxy-triangle/engine/scene"
)

// FrameView is one view of a frame: the extracted camera, the dynamic offset of its uniform
// record and the phase plugins queue its draw items into.
type FrameView struct {
	camera.ExtractedView
	UniformOffset uint32
	Phase         render_phase.Phase
}

// RenderView returns what draw functions need to know about the view.
func (v *FrameView) RenderView() render_phase.View {
	return render_phase.View{ID: v.ID, UniformOffset: v.UniformOffset}
}

// FrameStats summarizes one rendered frame.
type FrameStats struct {
	Frame     uint64
	Views     int
	Items     int
	Drawn     int
	Skipped   int
	DrawCalls int
	Duration  time.Duration
}

// Frame is the render-side state of one frame, handed to every plugin phase.
// Plugins must only write to state they own; views are shared read-only except for
// each view's Phase during Queue.
type Frame struct {
	Number uint64
	World  scene.Scene
	Views  []*FrameView

	dev          device.Device
	sampleCount  uint32
	viewUniforms uniform.DynamicUniformBuffer
	pool         worker.DynamicWorkerPool
}

// Device returns the device resources are created on.
func (f *Frame) Device() device.Device {
	return f.dev
}

// SampleCount returns the multisample count of the main render target.
func (f *Frame) SampleCount() uint32 {
	return f.sampleCount
}

// ViewBinding returns the view uniform buffer binding. It is only valid from Prepare onwards
// and reports false when there are no views this frame.
//
// Returns:
//   - uniform.Binding: the view uniform binding
//   - bool: whether the buffer has storage
func (f *Frame) ViewBinding() (uniform.Binding, bool) {
	return f.viewUniforms.Binding()
}

// Parallel calls fn for every index in [0, n) on the renderer's worker pool and returns once
// all calls are done. Calls run concurrently, so fn must only write to state owned by its
// index. Without a pool, or for a single index, the calls run in order on the caller.
//
// Parameters:
//   - n: the number of indices
//   - fn: the work for one index
func (f *Frame) Parallel(n int, fn func(i int)) {
	if f.pool == nil || n <= 1 {
		for i := range n {
			fn(i)
		}
		return
	}

	// per-frame barrier; pool.Wait only returns once workers idle out
	var wg sync.WaitGroup
	wg.Add(n)
	for i := range n {
		f.pool.SubmitTask(worker.Task{
			ID: i,
			Do: func() (any, error) {
				defer wg.Done()
				fn(i)
				return nil, nil
			},
		})
	}
	wg.Wait()
}
