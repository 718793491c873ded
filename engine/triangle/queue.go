package triangle

import (
	"github.com/Carmen-Shannon/oxy-triangle/engine/renderer"
	"github.com/Carmen-Shannon/oxy-triangle/engine/renderer/pipeline"
	"github.com/Carmen-Shannon/oxy-triangle/engine/renderer/render_phase"
)

// QueueView appends one draw item to the view's phase for every record whose entity the
// view can see. The sort key is the translation Z already stored in the record's uniform.
// Items already in the phase are kept.
//
// Parameters:
//   - view: the view to queue into
//   - records: this frame's instance records
//   - p: the pipeline the items draw with
//   - drawFunction: the draw function the items are tagged with
//
// Returns:
//   - int: the number of items queued
func QueueView(view *renderer.FrameView, records []InstanceRecord, p pipeline.Pipeline, drawFunction render_phase.DrawFunctionID) int {
	queued := 0
	for _, r := range records {
		if !view.Contains(r.Entity) {
			continue
		}
		view.Phase.Add(render_phase.DrawItem{
			Entity:       r.Entity,
			DrawFunction: drawFunction,
			Pipeline:     p,
			SortKey:      r.Uniform.Depth(),
		})
		queued++
	}
	return queued
}
