// Package uniform stages per-frame uniform records into a GPU buffer addressed with
// dynamic offsets.
package uniform

import (
	"fmt"

	"github.com/Carmen-Shannon/oxy-triangle/common"
	"github.com/Carmen-Shannon/oxy-triangle/engine/renderer/device"
	"github.com/cogentcore/webgpu/wgpu"
)

// DefaultAlignment is the minimum uniform buffer offset alignment guaranteed by WebGPU.
const DefaultAlignment uint64 = 256

// Binding is the buffer region a bind group should reference for a uniform buffer.
// Generation changes every time the backing buffer is reallocated.
type Binding struct {
	Buffer     device.Buffer
	Offset     uint64
	Size       uint64
	Generation uint64
}

// dynamicUniformBuffer is the implementation of the DynamicUniformBuffer interface.
type dynamicUniformBuffer struct {
	label           string
	recordSize      uint64
	alignment       uint64
	initialCapacity int

	data       []byte
	count      int
	buffer     device.Buffer
	generation uint64
}

// DynamicUniformBuffer accumulates fixed-size records for one frame and uploads them into a
// single GPU buffer, each record starting at an aligned dynamic offset.
type DynamicUniformBuffer interface {
	// Label returns the debug label used for the GPU buffer.
	Label() string

	// RecordSize returns the size in bytes of one record, which is also the binding size.
	RecordSize() uint64

	// Stride returns the distance in bytes between consecutive records.
	Stride() uint64

	// Clear drops every staged record. The GPU buffer is kept for reuse.
	Clear()

	// Push stages a record and returns its dynamic offset.
	//
	// Parameters:
	//   - record: the record bytes, at most RecordSize long
	//
	// Returns:
	//   - uint32: the byte offset of the record in the GPU buffer
	Push(record []byte) uint32

	// Len returns the number of staged records.
	Len() int

	// Write uploads the staged records. When the GPU buffer is missing or too small a new one
	// is allocated and the generation advances; otherwise the contents are copied in place.
	// Nothing is written when no records are staged.
	//
	// Parameters:
	//   - dev: the device to allocate and write through
	//
	// Returns:
	//   - error: an error if allocation fails
	Write(dev device.Device) error

	// Binding returns the region bind groups should reference.
	//
	// Returns:
	//   - Binding: the buffer binding
	//   - bool: false when there is no GPU buffer yet or no records are staged
	Binding() (Binding, bool)

	// Generation returns the number of times the GPU buffer has been allocated.
	Generation() uint64

	// Release frees the GPU buffer.
	Release()
}

var _ DynamicUniformBuffer = &dynamicUniformBuffer{}

// NewDynamicUniformBuffer creates an empty buffer for records of recordSize bytes.
//
// Parameters:
//   - label: the debug label for the GPU buffer
//   - recordSize: the size of one record in bytes
//   - opts: a variadic list of DynamicUniformBufferBuilderOption functions
//
// Returns:
//   - DynamicUniformBuffer: the new buffer
func NewDynamicUniformBuffer(label string, recordSize uint64, opts ...DynamicUniformBufferBuilderOption) DynamicUniformBuffer {
	b := &dynamicUniformBuffer{
		label:           label,
		recordSize:      recordSize,
		alignment:       DefaultAlignment,
		initialCapacity: 1,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

func (b *dynamicUniformBuffer) Label() string {
	return b.label
}

func (b *dynamicUniformBuffer) RecordSize() uint64 {
	return b.recordSize
}

func (b *dynamicUniformBuffer) Stride() uint64 {
	return alignUp(b.recordSize, b.alignment)
}

func (b *dynamicUniformBuffer) Clear() {
	b.data = b.data[:0]
	b.count = 0
}

func (b *dynamicUniformBuffer) Push(record []byte) uint32 {
	if uint64(len(record)) > b.recordSize {
		panic(fmt.Sprintf("uniform: %s record of %d bytes exceeds record size %d", b.label, len(record), b.recordSize))
	}
	stride := b.Stride()
	offset := uint64(b.count) * stride
	b.data = append(b.data, record...)
	b.data = append(b.data, make([]byte, stride-uint64(len(record)))...)
	b.count++
	return uint32(offset)
}

func (b *dynamicUniformBuffer) Len() int {
	return b.count
}

func (b *dynamicUniformBuffer) Write(dev device.Device) error {
	if b.count == 0 {
		return nil
	}
	needed := uint64(len(b.data))
	if b.buffer == nil || b.buffer.Size() < needed {
		capacity := max(b.count, b.initialCapacity)
		if b.buffer != nil {
			// at least double
			capacity = max(capacity, int(b.buffer.Size()/b.Stride())*2)
		}
		buf, err := dev.CreateBuffer(&wgpu.BufferDescriptor{
			Label: b.label,
			Size:  uint64(capacity) * b.Stride(),
			Usage: wgpu.BufferUsageUniform | wgpu.BufferUsageCopyDst,
		})
		if err != nil {
			return fmt.Errorf("uniform: failed to allocate %s: %w", b.label, err)
		}
		if b.buffer != nil {
			b.buffer.Release()
		}
		b.buffer = buf
		b.generation++
		common.Logger().Debug("uniform buffer relocated", "label", b.label, "records", capacity, "generation", b.generation)
	}
	dev.WriteBuffer(b.buffer, 0, b.data)
	return nil
}

func (b *dynamicUniformBuffer) Binding() (Binding, bool) {
	if b.buffer == nil || b.count == 0 {
		return Binding{}, false
	}
	return Binding{
		Buffer:     b.buffer,
		Offset:     0,
		Size:       b.recordSize,
		Generation: b.generation,
	}, true
}

func (b *dynamicUniformBuffer) Generation() uint64 {
	return b.generation
}

func (b *dynamicUniformBuffer) Release() {
	if b.buffer != nil {
		b.buffer.Release()
		b.buffer = nil
	}
}

func alignUp(v, alignment uint64) uint64 {
	if alignment == 0 {
		return v
	}
	return (v + alignment - 1) / alignment * alignment
}
