package uniform

// DynamicUniformBufferBuilderOption is a functional option used to configure a DynamicUniformBuffer.
type DynamicUniformBufferBuilderOption func(*dynamicUniformBuffer)

// WithAlignment sets the dynamic offset alignment. The default is DefaultAlignment.
//
// Parameters:
//   - alignment: the alignment in bytes
//
// Returns:
//   - DynamicUniformBufferBuilderOption: a function that sets the alignment
func WithAlignment(alignment uint64) DynamicUniformBufferBuilderOption {
	return func(b *dynamicUniformBuffer) {
		b.alignment = alignment
	}
}

// WithInitialCapacity sets the minimum number of records the first allocation holds.
//
// Parameters:
//   - records: the initial record capacity
//
// Returns:
//   - DynamicUniformBufferBuilderOption: a function that sets the initial capacity
func WithInitialCapacity(records int) DynamicUniformBufferBuilderOption {
	return func(b *dynamicUniformBuffer) {
		b.initialCapacity = max(records, 1)
	}
}
