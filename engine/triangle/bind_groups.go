package triangle

import (
	"fmt"

	"github.com/Carmen-Shannon/oxy-triangle/common"
	"github.com/Carmen-Shannon/oxy-triangle/engine/camera"
	"github.com/Carmen-Shannon/oxy-triangle/engine/renderer/bind_group_provider"
	"github.com/Carmen-Shannon/oxy-triangle/engine/renderer/device"
	"github.com/Carmen-Shannon/oxy-triangle/engine/renderer/uniform"
	lru "github.com/hashicorp/golang-lru/v2"
)

const (
	viewBindGroupLabel = "triangle view bind group"
	meshBindGroupLabel = "triangle mesh bind group"
)

// DefaultMaxViews is the number of views whose bind groups are kept between frames.
const DefaultMaxViews = 16

// ViewBindGroups keeps one bind group provider per view. Providers of views that fall out
// of the cache are released.
type ViewBindGroups struct {
	layout    device.BindGroupLayout
	providers *lru.Cache[camera.ViewID, bind_group_provider.BindGroupProvider]
}

// NewViewBindGroups creates the per-view provider cache.
//
// Parameters:
//   - layout: the view bind group layout
//   - size: the maximum number of views kept
//
// Returns:
//   - *ViewBindGroups: the cache
//   - error: an error if size is not positive
func NewViewBindGroups(layout device.BindGroupLayout, size int) (*ViewBindGroups, error) {
	providers, err := lru.NewWithEvict(size, func(id camera.ViewID, p bind_group_provider.BindGroupProvider) {
		p.Release()
		common.Logger().Debug("view bind group evicted", "view", id)
	})
	if err != nil {
		return nil, fmt.Errorf("triangle: view bind groups: %w", err)
	}
	return &ViewBindGroups{layout: layout, providers: providers}, nil
}

// Build makes sure the view's bind group references binding. Nothing happens when ok is
// false.
//
// Parameters:
//   - dev: the device to create bind groups on
//   - id: the view
//   - binding: the view uniform binding
//   - ok: whether the view uniform buffer has storage
//
// Returns:
//   - bool: whether a bind group was created
//   - error: an error if creation failed
func (v *ViewBindGroups) Build(dev device.Device, id camera.ViewID, binding uniform.Binding, ok bool) (bool, error) {
	if !ok {
		return false, nil
	}
	p, found := v.providers.Get(id)
	if !found {
		p = bind_group_provider.NewBindGroupProvider(viewBindGroupLabel, v.layout)
		v.providers.Add(id, p)
	}
	return p.Build(dev, binding, ok)
}

// BindGroup returns the current bind group of a view, or nil.
func (v *ViewBindGroups) BindGroup(id camera.ViewID) device.BindGroup {
	p, ok := v.providers.Peek(id)
	if !ok {
		return nil
	}
	return p.BindGroup()
}

// Len returns the number of cached views.
func (v *ViewBindGroups) Len() int {
	return v.providers.Len()
}

// Release frees every cached bind group.
func (v *ViewBindGroups) Release() {
	v.providers.Purge()
}

// newInstanceBindGroup creates the provider of the single bind group over the instance
// uniform buffer.
func newInstanceBindGroup(layout device.BindGroupLayout) bind_group_provider.BindGroupProvider {
	return bind_group_provider.NewBindGroupProvider(meshBindGroupLabel, layout, bind_group_provider.WithBindingSlot(0))
}
