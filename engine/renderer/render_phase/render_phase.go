// Package render_phase holds the per-view draw queues and replays them as GPU commands.
// Plugins queue DrawItems tagged with a registered DrawFunction; Render walks a sorted
// phase and runs each item's function against a TrackedRenderPass.
package render_phase

import (
	"cmp"
	"slices"

	"github.com/Carmen-Shannon/oxy-triangle/engine/camera"
	"github.com/Carmen-Shannon/oxy-triangle/engine/renderer/pipeline"
	"github.com/Carmen-Shannon/oxy-triangle/engine/scene"
)

// BatchRange is a contiguous range of instances drawn by one item.
type BatchRange struct {
	Start, End uint32
}

// DrawItem is one queued, orderable unit of work representing a single object in a view.
type DrawItem struct {
	Entity       scene.EntityID
	DrawFunction DrawFunctionID
	Pipeline     pipeline.Pipeline
	SortKey      float32
	BatchRange   *BatchRange
}

// View is what draw functions know about the view being rendered.
type View struct {
	ID            camera.ViewID
	UniformOffset uint32
}

// phase is the implementation of the Phase interface.
type phase struct {
	items []DrawItem
}

// Phase is the ordered draw list of one view for one frame. A phase is owned by a single
// view and is not safe for concurrent use.
type Phase interface {
	// Add appends an item. Existing items are kept.
	//
	// Parameters:
	//   - item: the draw item
	Add(item DrawItem)

	// Items returns the queued items in their current order.
	//
	// Returns:
	//   - []DrawItem: the items
	Items() []DrawItem

	// Len returns the number of queued items.
	Len() int

	// Sort orders items by ascending sort key. Items with equal keys keep their insertion order.
	Sort()

	// Clear drops every item, keeping the allocation.
	Clear()
}

var _ Phase = &phase{}

// NewPhase creates an empty phase.
func NewPhase() Phase {
	return &phase{}
}

func (p *phase) Add(item DrawItem) {
	p.items = append(p.items, item)
}

func (p *phase) Items() []DrawItem {
	return p.items
}

func (p *phase) Len() int {
	return len(p.items)
}

func (p *phase) Sort() {
	slices.SortStableFunc(p.items, func(a, b DrawItem) int {
		return cmp.Compare(a.SortKey, b.SortKey)
	})
}

func (p *phase) Clear() {
	clear(p.items)
	p.items = p.items[:0]
}
