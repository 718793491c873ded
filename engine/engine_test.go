package engine

import (
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/Carmen-Shannon/oxy-triangle/engine/camera"
	"github.com/Carmen-Shannon/oxy-triangle/engine/mesh"
	"github.com/Carmen-Shannon/oxy-triangle/engine/profiler"
	"github.com/Carmen-Shannon/oxy-triangle/engine/renderer"
	"github.com/Carmen-Shannon/oxy-triangle/engine/renderer/renderertest"
	"github.com/Carmen-Shannon/oxy-triangle/engine/scene"
	"github.com/Carmen-Shannon/oxy-triangle/engine/triangle"
	"github.com/Carmen-Shannon/oxy-triangle/engine/window"
	"github.com/cogentcore/webgpu/wgpu"
)

var errPrepare = errors.New("prepare failed")

type failingPlugin struct{}

func (failingPlugin) Name() string                    { return "failing" }
func (failingPlugin) Build(r renderer.Renderer) error { return nil }
func (failingPlugin) Extract(f *renderer.Frame) error { return nil }
func (failingPlugin) Prepare(f *renderer.Frame) error { return errPrepare }
func (failingPlugin) Queue(f *renderer.Frame) error   { return nil }

func newTestEngine(t *testing.T, options ...EngineBuilderOption) (*engine, *renderertest.Backend) {
	t.Helper()
	backend := renderertest.NewBackend()
	r := renderer.NewRendererWithBackend(backend, 640, 480, renderer.WithExtractWorkers(1))
	assets := mesh.NewAssets()
	if err := r.AddPlugin(triangle.NewPlugin(assets)); err != nil {
		t.Fatalf("AddPlugin: %v", err)
	}
	world := scene.NewScene("engine")
	world.Spawn(scene.EntityShape(scene.TriangleSide(100)))

	base := []EngineBuilderOption{
		WithRenderer(r),
		WithWorld(world),
		WithCamera(camera.NewOrthographic2D(camera.WithViewport(640, 480))),
		WithSystem(triangle.NewMeshSystem(assets, nil)),
	}
	e := NewEngine(append(base, options...)...).(*engine)
	return e, backend
}

func runWithTimeout(t *testing.T, e Engine) error {
	t.Helper()
	done := make(chan error, 1)
	go func() { done <- e.Run() }()
	select {
	case err := <-done:
		return err
	case <-time.After(5 * time.Second):
		e.Quit()
		t.Fatal("engine did not stop")
		return nil
	}
}

func TestRunRendersUntilQuit(t *testing.T) {
	e, backend := newTestEngine(t)

	var frames []renderer.FrameStats
	e.SetRenderCallback(func(dt float32, stats renderer.FrameStats) {
		frames = append(frames, stats)
		if len(frames) == 3 {
			e.Quit()
		}
	})

	if err := runWithTimeout(t, e); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(frames) != 3 || len(backend.Passes) != 3 {
		t.Fatalf("rendered %d frames, %d passes", len(frames), len(backend.Passes))
	}
	for i, f := range frames {
		if f.Drawn != 1 || f.DrawCalls != 1 {
			t.Errorf("frame %d: unexpected stats %+v", i, f)
		}
	}
}

func TestRenderErrorStopsEngine(t *testing.T) {
	e, backend := newTestEngine(t)
	if err := e.Renderer().AddPlugin(failingPlugin{}); err != nil {
		t.Fatal(err)
	}

	err := runWithTimeout(t, e)
	if !errors.Is(err, errPrepare) {
		t.Fatalf("expected errPrepare, got %v", err)
	}
	if len(backend.Passes) != 0 {
		t.Errorf("expected no passes, got %d", len(backend.Passes))
	}
}

func TestSurfaceUnavailableDropsFrames(t *testing.T) {
	clock := time.Unix(0, 0)
	p := profiler.NewProfiler(profiler.WithClock(func() time.Time { return clock }))

	runs := 0
	var e *engine
	e, backend := newTestEngine(t,
		WithProfiler(p),
		WithProfiling(true),
		WithSystem(SystemFunc(func(world scene.Scene) int {
			runs++
			if runs == 5 {
				e.Quit()
			}
			return 0
		})),
	)
	backend.FailBeginFrame = errors.New("surface lost")
	rendered := 0
	e.SetRenderCallback(func(float32, renderer.FrameStats) { rendered++ })

	if err := runWithTimeout(t, e); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if runs < 5 || rendered != 0 {
		t.Errorf("runs = %d, rendered = %d", runs, rendered)
	}

	clock = clock.Add(2 * time.Second)
	r, ok := p.Discard()
	if !ok || r.Discarded < 5 || r.Frames != 0 {
		t.Errorf("unexpected profile %+v", r)
	}
}

func TestRunWithoutRenderer(t *testing.T) {
	if err := NewEngine().Run(); err == nil {
		t.Fatal("expected an error without a renderer")
	}
}

func TestResizeReconfiguresSurface(t *testing.T) {
	e, backend := newTestEngine(t)
	e.resize(1024, 768)
	if backend.Width != 1024 || backend.Height != 768 {
		t.Errorf("surface = %dx%d", backend.Width, backend.Height)
	}
	e.resize(0, 0)
	if backend.Width != 1024 {
		t.Error("a zero size must not reconfigure the surface")
	}
	if e.World().Len() != 1 {
		t.Errorf("world has %d entities", e.World().Len())
	}
}

func TestSetTickRate(t *testing.T) {
	e := NewEngine().(*engine)
	e.SetTickRate(120)
	if e.engineTickRate != time.Second/120 {
		t.Errorf("tick rate = %v", e.engineTickRate)
	}
	e.SetTickRate(0)
	if e.engineTickRate != time.Second/60 {
		t.Errorf("tick rate = %v", e.engineTickRate)
	}
	e.SetRenderFrameLimit(50)
	if e.renderFrameLimit != 20*time.Millisecond {
		t.Errorf("frame limit = %v", e.renderFrameLimit)
	}
}

// fakeWindow runs a message loop on the goroutine calling ProcessMessages and records how
// the engine shuts it down.
type fakeWindow struct {
	backend  *renderertest.Backend
	onUpdate func()

	closeRequested atomic.Bool
	closed         bool
	events         []string

	// backend state observed when Close ran
	releasedAtClose bool
	eventsAtClose   int
}

var _ window.Window = &fakeWindow{}

func (w *fakeWindow) SetUpdateCallback(callback func())                 { w.onUpdate = callback }
func (w *fakeWindow) SetResizeCallback(func(width, height int))         {}
func (w *fakeWindow) SetScrollCallback(func(delta float32))             {}
func (w *fakeWindow) SetKeyCallback(func(key window.Key, pressed bool)) {}
func (w *fakeWindow) SurfaceDescriptor() *wgpu.SurfaceDescriptor        { return nil }
func (w *fakeWindow) Title() string                                     { return "fake" }
func (w *fakeWindow) SetTitle(string)                                   {}
func (w *fakeWindow) Width() int                                        { return 640 }
func (w *fakeWindow) Height() int                                       { return 480 }
func (w *fakeWindow) IsRunning() bool                                   { return !w.closed && !w.closeRequested.Load() }

func (w *fakeWindow) RequestClose() {
	if w.closeRequested.CompareAndSwap(false, true) {
		w.events = append(w.events, "request close")
	}
}

func (w *fakeWindow) Close() error {
	w.closed = true
	w.events = append(w.events, "close")
	w.releasedAtClose = w.backend.Released
	w.eventsAtClose = len(w.backend.Events)
	return nil
}

func (w *fakeWindow) ProcessMessages() {
	for w.IsRunning() {
		if w.onUpdate != nil {
			w.onUpdate()
		}
		time.Sleep(time.Millisecond)
	}
	w.events = append(w.events, "loop exit")
}

// releaseRecorder notes its Release in the backend's event log.
type releaseRecorder struct {
	failingPlugin
	backend *renderertest.Backend
}

func (p *releaseRecorder) Name() string                    { return "recorder" }
func (p *releaseRecorder) Prepare(f *renderer.Frame) error { return nil }
func (p *releaseRecorder) Release() {
	p.backend.Events = append(p.backend.Events, "plugin release")
}

func TestQuitFromTickReleasesAfterLastFrame(t *testing.T) {
	win := &fakeWindow{}
	e, backend := newTestEngine(t, WithWindow(win), WithTickRate(1000))
	win.backend = backend
	if err := e.Renderer().AddPlugin(&releaseRecorder{backend: backend}); err != nil {
		t.Fatal(err)
	}

	var rendered atomic.Int32
	e.SetRenderCallback(func(float32, renderer.FrameStats) { rendered.Add(1) })
	e.SetTickCallback(func(float32) {
		if rendered.Load() >= 2 {
			e.Quit()
		}
	})

	if err := runWithTimeout(t, e); err != nil {
		t.Fatalf("Run: %v", err)
	}

	events := backend.Events
	lastPresent, pluginRelease, release := -1, -1, -1
	for i, ev := range events {
		switch ev {
		case "present":
			lastPresent = i
		case "plugin release":
			pluginRelease = i
		case "release":
			release = i
		}
	}
	if lastPresent < 0 || !(lastPresent < pluginRelease && pluginRelease < release) {
		t.Fatalf("events = %v, want frames, then plugin release, then backend release", events)
	}
	if release != len(events)-1 {
		t.Errorf("backend used after release: %v", events[release:])
	}
	for _, ev := range events[lastPresent+1 : pluginRelease] {
		if ev == "begin" {
			t.Errorf("frame begun after the last present: %v", events)
		}
	}

	want := []string{"request close", "loop exit", "close"}
	if len(win.events) != len(want) {
		t.Fatalf("window events = %v, want %v", win.events, want)
	}
	for i := range want {
		if win.events[i] != want[i] {
			t.Fatalf("window events = %v, want %v", win.events, want)
		}
	}
	if !win.releasedAtClose || win.eventsAtClose != len(events) {
		t.Error("window closed before the renderer was released")
	}
}
