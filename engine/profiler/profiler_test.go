package profiler

import (
	"testing"
	"time"

	"github.com/Carmen-Shannon/oxy-triangle/engine/renderer"
)

type fakeClock struct {
	t time.Time
}

func (c *fakeClock) now() time.Time { return c.t }

func TestTickReportsAfterInterval(t *testing.T) {
	clock := &fakeClock{t: time.Unix(0, 0)}
	p := NewProfiler(WithInterval(time.Second), WithClock(clock.now))

	frames := []renderer.FrameStats{
		{DrawCalls: 3, Skipped: 0, Duration: 2 * time.Millisecond},
		{DrawCalls: 2, Skipped: 1, Duration: 6 * time.Millisecond},
	}
	for _, f := range frames {
		clock.t = clock.t.Add(400 * time.Millisecond)
		if _, ok := p.Tick(f); ok {
			t.Fatal("reported before the interval elapsed")
		}
	}
	if _, ok := p.Discard(); ok {
		t.Fatal("reported before the interval elapsed")
	}

	clock.t = clock.t.Add(200 * time.Millisecond)
	r, ok := p.Tick(renderer.FrameStats{DrawCalls: 1, Duration: 4 * time.Millisecond})
	if !ok {
		t.Fatal("expected a report once the interval elapsed")
	}
	if r.Frames != 3 || r.DrawCalls != 6 || r.Skipped != 1 || r.Discarded != 1 {
		t.Errorf("unexpected counters %+v", r)
	}
	if r.FPS != 3 {
		t.Errorf("fps = %v, want 3", r.FPS)
	}
	if r.AvgFrame != 4*time.Millisecond || r.MaxFrame != 6*time.Millisecond {
		t.Errorf("avg = %v, max = %v", r.AvgFrame, r.MaxFrame)
	}

	// counters restart after a report
	clock.t = clock.t.Add(time.Second)
	r, ok = p.Tick(renderer.FrameStats{DrawCalls: 2})
	if !ok || r.Frames != 1 || r.DrawCalls != 2 || r.Skipped != 0 {
		t.Errorf("counters not reset: %+v", r)
	}
}
