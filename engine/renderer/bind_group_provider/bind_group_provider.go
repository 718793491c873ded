package bind_group_provider

import (
	"fmt"
	"sync"

	"github.com/Carmen-Shannon/oxy-triangle/common"
	"github.com/Carmen-Shannon/oxy-triangle/engine/renderer/device"
	"github.com/Carmen-Shannon/oxy-triangle/engine/renderer/uniform"
)

// bindGroupProvider is the unexported implementation of BindGroupProvider.
type bindGroupProvider struct {
	mu *sync.Mutex

	// label is a debug label added for convenience.
	label string
	// layout is the layout every bind group built by this provider conforms to.
	layout device.BindGroupLayout
	// slot is the binding index inside the group that the uniform buffer is bound to.
	slot uint32

	// bindGroup is the current GPU bind group, or nil before the first successful Build.
	bindGroup device.BindGroup
	// buffer and generation identify the uniform buffer allocation bindGroup references.
	buffer     device.Buffer
	generation uint64
	// builds counts how many bind groups this provider has created.
	builds int
}

// BindGroupProvider owns the bind group for one uniform buffer binding. It rebuilds the
// bind group only when the buffer behind the binding is reallocated; content updates to
// the same allocation reuse the existing bind group.
//
// Usage pattern:
//  1. Create a provider against a layout from the binding layout registry
//  2. Each frame after the uniform buffer is written, call Build with its Binding()
//  3. Draw commands read BindGroup() when binding the group
type BindGroupProvider interface {
	// Label returns the debug label for this provider.
	//
	// Returns:
	//   - string: the debug label
	Label() string

	// Layout returns the layout this provider builds against.
	//
	// Returns:
	//   - device.BindGroupLayout: the bind group layout
	Layout() device.BindGroupLayout

	// BindGroup returns the current bind group, or nil if none has been built.
	//
	// Returns:
	//   - device.BindGroup: the bind group or nil
	BindGroup() device.BindGroup

	// Generation returns the uniform buffer generation the current bind group references.
	//
	// Returns:
	//   - uint64: the buffer generation
	Generation() uint64

	// Builds returns how many bind groups this provider has created.
	//
	// Returns:
	//   - int: the number of builds
	Builds() int

	// Build makes sure the bind group references the given binding. It is a no-op when ok
	// is false (the uniform buffer has no storage this frame) and when the binding refers
	// to the allocation the current bind group was already built from.
	//
	// Parameters:
	//   - dev: the device to create the bind group on
	//   - binding: the uniform buffer binding
	//   - ok: whether the binding is available
	//
	// Returns:
	//   - bool: true if a new bind group was created
	//   - error: an error if creation failed; the previous bind group is kept
	Build(dev device.Device, binding uniform.Binding, ok bool) (bool, error)

	// Release releases the bind group held by this provider. The layout is not owned
	// by the provider and is left alone.
	Release()
}

var _ BindGroupProvider = &bindGroupProvider{}

// NewBindGroupProvider creates a provider that builds bind groups against layout.
//
// Parameters:
//   - label: the debug label for created bind groups
//   - layout: the layout bind groups conform to
//   - opts: a variadic list of BindGroupProviderOption functions
//
// Returns:
//   - BindGroupProvider: the new provider
func NewBindGroupProvider(label string, layout device.BindGroupLayout, opts ...BindGroupProviderOption) BindGroupProvider {
	p := &bindGroupProvider{
		mu:     &sync.Mutex{},
		label:  label,
		layout: layout,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *bindGroupProvider) Label() string {
	return p.label
}

func (p *bindGroupProvider) Layout() device.BindGroupLayout {
	return p.layout
}

func (p *bindGroupProvider) BindGroup() device.BindGroup {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.bindGroup
}

func (p *bindGroupProvider) Generation() uint64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.generation
}

func (p *bindGroupProvider) Builds() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.builds
}

func (p *bindGroupProvider) Build(dev device.Device, binding uniform.Binding, ok bool) (bool, error) {
	if !ok {
		return false, nil
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.bindGroup != nil && p.buffer == binding.Buffer && p.generation == binding.Generation {
		return false, nil
	}

	bg, err := dev.CreateBindGroup(&device.BindGroupDescriptor{
		Label:  p.label,
		Layout: p.layout,
		Entries: []device.BindGroupEntry{{
			Binding: p.slot,
			Buffer:  binding.Buffer,
			Offset:  binding.Offset,
			Size:    binding.Size,
		}},
	})
	if err != nil {
		return false, fmt.Errorf("bind_group_provider: %s: %w", p.label, err)
	}
	if p.bindGroup != nil {
		p.bindGroup.Release()
	}
	p.bindGroup = bg
	p.buffer = binding.Buffer
	p.generation = binding.Generation
	p.builds++
	common.Logger().Debug("bind group rebuilt", "label", p.label, "generation", binding.Generation)
	return true, nil
}

func (p *bindGroupProvider) Release() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.bindGroup != nil {
		p.bindGroup.Release()
		p.bindGroup = nil
	}
	p.buffer = nil
	p.generation = 0
}
