package renderer_test

import (
	"errors"
	"sync/atomic"
	"testing"

	"github.com/Carmen-Shannon/oxy-triangle/engine/camera"
	"github.com/Carmen-Shannon/oxy-triangle/engine/renderer"
	"github.com/Carmen-Shannon/oxy-triangle/engine/renderer/render_phase"
	"github.com/Carmen-Shannon/oxy-triangle/engine/renderer/renderertest"
	"github.com/Carmen-Shannon/oxy-triangle/engine/scene"
)

var errTest = errors.New("injected failure")

// recordingPlugin logs every phase it runs and can fail any of them.
type recordingPlugin struct {
	name  string
	log   *[]string
	fail  map[string]error
	check func(phase string, f *renderer.Frame)
}

func (p *recordingPlugin) Name() string { return p.name }

func (p *recordingPlugin) Build(renderer.Renderer) error {
	return p.run("build", nil)
}

func (p *recordingPlugin) Extract(f *renderer.Frame) error { return p.run("extract", f) }
func (p *recordingPlugin) Prepare(f *renderer.Frame) error { return p.run("prepare", f) }
func (p *recordingPlugin) Queue(f *renderer.Frame) error   { return p.run("queue", f) }

func (p *recordingPlugin) Release() { *p.log = append(*p.log, p.name+":release") }

func (p *recordingPlugin) run(phase string, f *renderer.Frame) error {
	*p.log = append(*p.log, p.name+":"+phase)
	if p.check != nil && f != nil {
		p.check(phase, f)
	}
	return p.fail[phase]
}

func newTestRenderer(opts ...renderer.RendererBuilderOption) (*renderertest.Backend, renderer.Renderer) {
	backend := renderertest.NewBackend()
	opts = append([]renderer.RendererBuilderOption{renderer.WithExtractWorkers(1)}, opts...)
	return backend, renderer.NewRendererWithBackend(backend, 640, 480, opts...)
}

func TestNewRendererConfiguresBackend(t *testing.T) {
	backend, r := newTestRenderer(renderer.WithPresentMode(renderer.PresentModeUncapped), renderer.WithMSAA(renderer.MSAA8x))
	if backend.Width != 640 || backend.Height != 480 {
		t.Errorf("surface = %dx%d, want 640x480", backend.Width, backend.Height)
	}
	if backend.PresentMode != renderer.PresentModeUncapped {
		t.Errorf("present mode = %v", backend.PresentMode)
	}
	if r.SampleCount() != 8 || r.SurfaceFormat() != backend.Format {
		t.Errorf("sample count = %d, format = %v", r.SampleCount(), r.SurfaceFormat())
	}
	r.Resize(320, 200)
	if backend.Width != 320 || backend.Height != 200 {
		t.Errorf("resize ignored: %dx%d", backend.Width, backend.Height)
	}
	r.Release()
	if !backend.Released {
		t.Error("Release did not release the backend")
	}
}

func TestReleaseReleasesPluginsBeforeBackend(t *testing.T) {
	backend, r := newTestRenderer(renderer.WithExtractWorkers(4))
	var log []string
	for _, name := range []string{"a", "b"} {
		if err := r.AddPlugin(&recordingPlugin{name: name, log: &log}); err != nil {
			t.Fatal(err)
		}
	}
	if _, err := r.RenderFrame(scene.NewScene("release"), camera.NewOrthographic2D()); err != nil {
		t.Fatal(err)
	}
	log = log[:0]

	r.Release()
	r.Release()
	if len(log) != 2 || log[0] != "b:release" || log[1] != "a:release" {
		t.Errorf("plugin release order = %v, want [b:release a:release]", log)
	}
	if n := len(backend.Events); n == 0 || backend.Events[n-1] != "release" {
		t.Fatalf("events = %v, want release last", backend.Events)
	}
	releases := 0
	for _, e := range backend.Events {
		if e == "release" {
			releases++
		}
	}
	if releases != 1 {
		t.Errorf("backend released %d times", releases)
	}
}

func TestRenderFrameRunsPhasesInOrder(t *testing.T) {
	backend, r := newTestRenderer()
	var log []string
	for _, name := range []string{"a", "b"} {
		if err := r.AddPlugin(&recordingPlugin{name: name, log: &log}); err != nil {
			t.Fatalf("AddPlugin: %v", err)
		}
	}

	stats, err := r.RenderFrame(scene.NewScene("empty"), camera.NewOrthographic2D())
	if err != nil {
		t.Fatalf("RenderFrame: %v", err)
	}
	want := []string{
		"a:build", "b:build",
		"a:extract", "b:extract",
		"a:prepare", "b:prepare",
		"a:queue", "b:queue",
	}
	if len(log) != len(want) {
		t.Fatalf("log = %v, want %v", log, want)
	}
	for i := range want {
		if log[i] != want[i] {
			t.Fatalf("log = %v, want %v", log, want)
		}
	}
	if stats.Frame != 1 || stats.Views != 1 || stats.Items != 0 {
		t.Errorf("unexpected stats %+v", stats)
	}
	if backend.Ended != 1 || backend.Presented != 1 || len(backend.Passes) != 1 {
		t.Errorf("ended %d, presented %d, passes %d", backend.Ended, backend.Presented, len(backend.Passes))
	}
}

func TestViewUniformsWrittenBeforePrepare(t *testing.T) {
	_, r := newTestRenderer()
	var log []string
	var offsets []uint32
	bound := false
	err := r.AddPlugin(&recordingPlugin{name: "views", log: &log, check: func(phase string, f *renderer.Frame) {
		if phase != "prepare" {
			return
		}
		_, bound = f.ViewBinding()
		for _, v := range f.Views {
			offsets = append(offsets, v.UniformOffset)
		}
	}})
	if err != nil {
		t.Fatalf("AddPlugin: %v", err)
	}

	if _, err := r.RenderFrame(scene.NewScene("empty"), camera.NewOrthographic2D(), camera.NewOrthographic2D()); err != nil {
		t.Fatalf("RenderFrame: %v", err)
	}
	if !bound {
		t.Error("view binding unavailable during prepare")
	}
	if len(offsets) != 2 || offsets[0] != 0 || offsets[1] != 256 {
		t.Errorf("view uniform offsets = %v, want [0 256]", offsets)
	}
}

func TestSurfaceUnavailableDiscardsFrame(t *testing.T) {
	backend, r := newTestRenderer()
	backend.FailBeginFrame = errTest

	_, err := r.RenderFrame(scene.NewScene("empty"), camera.NewOrthographic2D())
	if !errors.Is(err, renderer.ErrSurfaceUnavailable) || !errors.Is(err, errTest) {
		t.Fatalf("expected ErrSurfaceUnavailable, got %v", err)
	}
	if backend.Ended != 0 || backend.Presented != 0 {
		t.Error("a discarded frame was submitted")
	}

	backend.FailBeginFrame = nil
	if _, err := r.RenderFrame(scene.NewScene("empty"), camera.NewOrthographic2D()); err != nil {
		t.Errorf("frame after recovery: %v", err)
	}
}

func TestPluginErrorStopsFrame(t *testing.T) {
	backend, r := newTestRenderer()
	var log []string
	if err := r.AddPlugin(&recordingPlugin{name: "bad", log: &log, fail: map[string]error{"prepare": errTest}}); err != nil {
		t.Fatalf("AddPlugin: %v", err)
	}

	_, err := r.RenderFrame(scene.NewScene("empty"))
	if !errors.Is(err, errTest) {
		t.Fatalf("expected the plugin error, got %v", err)
	}
	if log[len(log)-1] != "bad:prepare" {
		t.Errorf("phases after the failure ran: %v", log)
	}
	if len(backend.Passes) != 0 {
		t.Error("a frame was begun after a plugin failure")
	}
}

func TestAddPluginBuildFailure(t *testing.T) {
	_, r := newTestRenderer()
	var log []string
	if err := r.AddPlugin(&recordingPlugin{name: "broken", log: &log, fail: map[string]error{"build": errTest}}); !errors.Is(err, errTest) {
		t.Fatalf("expected the build error, got %v", err)
	}
	if _, err := r.RenderFrame(scene.NewScene("empty")); err != nil {
		t.Fatalf("RenderFrame: %v", err)
	}
	if len(log) != 1 {
		t.Errorf("a plugin that failed to build was run: %v", log)
	}
}

func TestUnknownDrawFunctionIsSkipped(t *testing.T) {
	_, r := newTestRenderer()
	var log []string
	err := r.AddPlugin(&recordingPlugin{name: "queue", log: &log, check: func(phase string, f *renderer.Frame) {
		if phase == "queue" {
			f.Views[0].Phase.Add(render_phase.DrawItem{DrawFunction: 42})
		}
	}})
	if err != nil {
		t.Fatalf("AddPlugin: %v", err)
	}
	stats, err := r.RenderFrame(scene.NewScene("empty"), camera.NewOrthographic2D())
	if err != nil {
		t.Fatalf("RenderFrame: %v", err)
	}
	if stats.Items != 1 || stats.Skipped != 1 || stats.Drawn != 0 {
		t.Errorf("unexpected stats %+v", stats)
	}
}

func TestFrameParallelVisitsEveryIndex(t *testing.T) {
	for _, workers := range []int{1, 4} {
		_, r := newTestRenderer(renderer.WithExtractWorkers(workers))
		var log []string
		var calls atomic.Int64
		hits := make([]int32, 64)
		err := r.AddPlugin(&recordingPlugin{name: "parallel", log: &log, check: func(phase string, f *renderer.Frame) {
			if phase != "extract" {
				return
			}
			f.Parallel(len(hits), func(i int) {
				calls.Add(1)
				hits[i]++
			})
		}})
		if err != nil {
			t.Fatalf("AddPlugin: %v", err)
		}
		if _, err := r.RenderFrame(scene.NewScene("empty")); err != nil {
			t.Fatalf("RenderFrame: %v", err)
		}
		if calls.Load() != int64(len(hits)) {
			t.Errorf("workers=%d: %d calls, want %d", workers, calls.Load(), len(hits))
		}
		for i, n := range hits {
			if n != 1 {
				t.Fatalf("workers=%d: index %d visited %d times", workers, i, n)
			}
		}
	}
}

func TestPhasesFollowViews(t *testing.T) {
	_, r := newTestRenderer()
	cam := camera.NewOrthographic2D()
	var log []string
	var ids []camera.ViewID
	err := r.AddPlugin(&recordingPlugin{name: "views", log: &log, check: func(phase string, f *renderer.Frame) {
		if phase != "queue" {
			return
		}
		for _, v := range f.Views {
			if v.Phase == nil || v.Phase.Len() != 0 {
				t.Errorf("view %d has no cleared phase", v.ID)
			}
			v.Phase.Add(render_phase.DrawItem{DrawFunction: 7})
			ids = append(ids, v.ID)
		}
	}})
	if err != nil {
		t.Fatalf("AddPlugin: %v", err)
	}
	for range 2 {
		if _, err := r.RenderFrame(scene.NewScene("empty"), cam); err != nil {
			t.Fatalf("RenderFrame: %v", err)
		}
	}
	if len(ids) != 2 || ids[0] != cam.ID() || ids[1] != cam.ID() {
		t.Errorf("queued views = %v, want the camera twice", ids)
	}
}
