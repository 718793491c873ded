package triangle

import (
	"fmt"

	"github.com/Carmen-Shannon/oxy-triangle/engine/camera"
	"github.com/Carmen-Shannon/oxy-triangle/engine/renderer/device"
	"github.com/cogentcore/webgpu/wgpu"
)

const (
	viewLayoutLabel = "triangle view layout"
	meshLayoutLabel = "triangle mesh layout"
)

// Layouts are the two bind group layouts of the triangle pipeline: group 0 holds the view
// uniform and group 1 the per-instance uniform. Both use a single dynamically offset
// uniform buffer at binding 0. Created once and immutable afterwards.
type Layouts struct {
	View device.BindGroupLayout
	Mesh device.BindGroupLayout
}

// NewLayouts creates the view and mesh layouts on dev. A failure here leaves the renderer
// unable to draw triangles and must abort initialization.
//
// Parameters:
//   - dev: the device to create the layouts on
//
// Returns:
//   - *Layouts: the created layouts
//   - error: an error if either layout could not be created
func NewLayouts(dev device.Device) (*Layouts, error) {
	var view camera.GPUViewUniform
	viewLayout, err := dev.CreateBindGroupLayout(uniformLayout(viewLayoutLabel, uint64(view.Size())))
	if err != nil {
		return nil, fmt.Errorf("triangle: failed to create %s: %w", viewLayoutLabel, err)
	}
	meshLayout, err := dev.CreateBindGroupLayout(uniformLayout(meshLayoutLabel, uint64(GPUTriangleUniform{}.Size())))
	if err != nil {
		viewLayout.Release()
		return nil, fmt.Errorf("triangle: failed to create %s: %w", meshLayoutLabel, err)
	}
	return &Layouts{View: viewLayout, Mesh: meshLayout}, nil
}

// Release frees both layouts.
func (l *Layouts) Release() {
	l.View.Release()
	l.Mesh.Release()
}

func uniformLayout(label string, size uint64) *wgpu.BindGroupLayoutDescriptor {
	return &wgpu.BindGroupLayoutDescriptor{
		Label: label,
		Entries: []wgpu.BindGroupLayoutEntry{{
			Binding:    0,
			Visibility: wgpu.ShaderStageVertex | wgpu.ShaderStageFragment,
			Buffer: wgpu.BufferBindingLayout{
				Type:             wgpu.BufferBindingTypeUniform,
				HasDynamicOffset: true,
				MinBindingSize:   size,
			},
		}},
	}
}
