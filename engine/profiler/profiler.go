package profiler

import (
	"runtime"
	"time"

	"github.com/Carmen-Shannon/oxy-triangle/common"
	"github.com/Carmen-Shannon/oxy-triangle/engine/renderer"
)

// Report is one interval's worth of frame and memory statistics.
type Report struct {
	FPS         float64
	Frames      int
	DrawCalls   int
	Skipped     int
	Discarded   int
	AvgFrame    time.Duration
	MaxFrame    time.Duration
	HeapMB      float64
	AllocRateMB float64
	SysMB       float64
	GCCount     uint32
	LastPauseUs uint64
	MaxPauseUs  uint64
}

// Profiler aggregates rendered frames and logs a Report at a fixed interval.
type Profiler struct {
	updateInterval time.Duration
	lastTime       time.Time
	now            func() time.Time

	frames    int
	drawCalls int
	skipped   int
	discarded int
	frameSum  time.Duration
	frameMax  time.Duration

	memStats       runtime.MemStats
	lastGCCount    uint32
	lastTotalAlloc uint64
}

// NewProfiler creates a Profiler. The update interval defaults to 1 second.
//
// Parameters:
//   - options: functional options to configure the profiler
//
// Returns:
//   - *Profiler: the newly created profiler instance
func NewProfiler(options ...ProfilerBuilderOption) *Profiler {
	p := &Profiler{
		updateInterval: time.Second,
		now:            time.Now,
	}
	for _, opt := range options {
		opt(p)
	}
	p.lastTime = p.now()
	return p
}

// Tick records one rendered frame. When the update interval has elapsed it logs the
// statistics gathered since the previous report and resets them.
//
// Parameters:
//   - stats: the statistics of the frame just rendered
//
// Returns:
//   - Report: the report, valid only when ok is true
//   - bool: true if a report was produced this tick
func (p *Profiler) Tick(stats renderer.FrameStats) (Report, bool) {
	p.frames++
	p.drawCalls += stats.DrawCalls
	p.skipped += stats.Skipped
	p.frameSum += stats.Duration
	p.frameMax = max(p.frameMax, stats.Duration)
	return p.maybeReport()
}

// Discard records a frame that was dropped before drawing, such as one whose surface could
// not be acquired.
//
// Returns:
//   - Report: the report, valid only when ok is true
//   - bool: true if a report was produced this tick
func (p *Profiler) Discard() (Report, bool) {
	p.discarded++
	return p.maybeReport()
}

func (p *Profiler) maybeReport() (Report, bool) {
	currentTime := p.now()
	elapsed := currentTime.Sub(p.lastTime)
	if elapsed < p.updateInterval || elapsed <= 0 {
		return Report{}, false
	}

	r := Report{
		FPS:       float64(p.frames) / elapsed.Seconds(),
		Frames:    p.frames,
		DrawCalls: p.drawCalls,
		Skipped:   p.skipped,
		Discarded: p.discarded,
		MaxFrame:  p.frameMax,
	}
	if p.frames > 0 {
		r.AvgFrame = p.frameSum / time.Duration(p.frames)
	}

	runtime.ReadMemStats(&p.memStats)
	r.HeapMB = float64(p.memStats.Alloc) / 1024 / 1024
	r.SysMB = float64(p.memStats.Sys) / 1024 / 1024
	r.AllocRateMB = float64(p.memStats.TotalAlloc-p.lastTotalAlloc) / 1024 / 1024 / elapsed.Seconds()

	// PauseNs is a circular buffer of the last 256 pauses
	r.GCCount = p.memStats.NumGC
	if r.GCCount > 0 {
		r.LastPauseUs = p.memStats.PauseNs[(r.GCCount-1)%256] / 1000
		start := p.lastGCCount
		if r.GCCount-start > 256 {
			start = r.GCCount - 256
		}
		for i := start; i < r.GCCount; i++ {
			r.MaxPauseUs = max(r.MaxPauseUs, p.memStats.PauseNs[i%256]/1000)
		}
	}

	common.Logger().Info("profile",
		"fps", r.FPS,
		"draw_calls", r.DrawCalls,
		"skipped", r.Skipped,
		"discarded", r.Discarded,
		"avg_frame", r.AvgFrame,
		"max_frame", r.MaxFrame,
		"heap_mb", r.HeapMB,
		"alloc_rate_mb", r.AllocRateMB,
		"gc", r.GCCount,
		"gc_last_us", r.LastPauseUs,
		"gc_max_us", r.MaxPauseUs,
		"sys_mb", r.SysMB,
	)

	p.frames, p.drawCalls, p.skipped, p.discarded = 0, 0, 0, 0
	p.frameSum, p.frameMax = 0, 0
	p.lastTime = currentTime
	p.lastGCCount = r.GCCount
	p.lastTotalAlloc = p.memStats.TotalAlloc
	return r, true
}
