package bind_group_provider

// BindGroupProviderOption is a functional option used to configure a BindGroupProvider during construction.
type BindGroupProviderOption func(*bindGroupProvider)

// WithBindingSlot sets the binding index inside the group that the uniform buffer is bound to.
// The default is 0.
//
// Parameters:
//   - slot: the binding index
//
// Returns:
//   - BindGroupProviderOption: a function that sets the binding slot for this provider
func WithBindingSlot(slot uint32) BindGroupProviderOption {
	return func(p *bindGroupProvider) {
		p.slot = slot
	}
}
