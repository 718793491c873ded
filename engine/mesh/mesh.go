// Package mesh holds CPU-side geometry, the reference-counted handles entities use to point
// at it, and the GPU-resident buffers uploaded from it.
package mesh

import (
	"encoding/binary"
	"fmt"
	"math"
	"slices"

	"github.com/cogentcore/webgpu/wgpu"
)

// Attribute names a per-vertex attribute. Interleaved vertex data orders attributes by name.
type Attribute string

const (
	AttributeColor    Attribute = "Vertex_Color"
	AttributePosition Attribute = "Vertex_Position"
	AttributeUV       Attribute = "Vertex_Uv"
)

type attributeData struct {
	components int
	values     []float32
}

// AttributeLayout is the placement of one attribute inside an interleaved vertex.
type AttributeLayout struct {
	Name   Attribute
	Format wgpu.VertexFormat
	Offset uint64
}

// Mesh is CPU-side geometry: float attributes plus optional 32-bit indices.
type Mesh struct {
	topology   wgpu.PrimitiveTopology
	attributes map[Attribute]attributeData
	indices    []uint32
}

// New creates an empty mesh with the given topology.
func New(topology wgpu.PrimitiveTopology) *Mesh {
	return &Mesh{
		topology:   topology,
		attributes: make(map[Attribute]attributeData),
	}
}

func (m *Mesh) Topology() wgpu.PrimitiveTopology {
	return m.topology
}

// SetAttribute stores values for an attribute with the given component count (1 to 4).
func (m *Mesh) SetAttribute(name Attribute, components int, values []float32) {
	if components < 1 || components > 4 {
		panic(fmt.Sprintf("mesh: attribute %s has %d components", name, components))
	}
	m.attributes[name] = attributeData{components: components, values: values}
}

// SetIndices sets the index list. A nil slice makes the mesh non-indexed.
func (m *Mesh) SetIndices(indices []uint32) {
	m.indices = indices
}

func (m *Mesh) Indices() []uint32 {
	return m.indices
}

// VertexCount returns the number of vertices of the first attribute in name order.
func (m *Mesh) VertexCount() int {
	names := m.attributeNames()
	if len(names) == 0 {
		return 0
	}
	a := m.attributes[names[0]]
	return len(a.values) / a.components
}

// Layout returns the interleaved attribute placement and the vertex stride.
func (m *Mesh) Layout() ([]AttributeLayout, uint64) {
	var offset uint64
	names := m.attributeNames()
	out := make([]AttributeLayout, 0, len(names))
	for _, name := range names {
		a := m.attributes[name]
		out = append(out, AttributeLayout{
			Name:   name,
			Format: floatFormat(a.components),
			Offset: offset,
		})
		offset += uint64(a.components) * 4
	}
	return out, offset
}

// VertexBufferData interleaves every attribute into little-endian float32 vertices.
// All attributes must describe the same number of vertices.
func (m *Mesh) VertexBufferData() ([]byte, error) {
	layout, stride := m.Layout()
	count := m.VertexCount()
	for _, l := range layout {
		a := m.attributes[l.Name]
		if len(a.values) != count*a.components {
			return nil, fmt.Errorf("mesh: attribute %s has %d values, want %d", l.Name, len(a.values), count*a.components)
		}
	}

	buf := make([]byte, uint64(count)*stride)
	for v := range count {
		base := uint64(v) * stride
		for _, l := range layout {
			a := m.attributes[l.Name]
			for c := range a.components {
				off := base + l.Offset + uint64(c)*4
				binary.LittleEndian.PutUint32(buf[off:], math.Float32bits(a.values[v*a.components+c]))
			}
		}
	}
	return buf, nil
}

// IndexBufferData returns the indices as little-endian uint32s, or nil when non-indexed.
func (m *Mesh) IndexBufferData() []byte {
	if m.indices == nil {
		return nil
	}
	buf := make([]byte, len(m.indices)*4)
	for i, idx := range m.indices {
		binary.LittleEndian.PutUint32(buf[i*4:], idx)
	}
	return buf
}

func (m *Mesh) attributeNames() []Attribute {
	names := make([]Attribute, 0, len(m.attributes))
	for name := range m.attributes {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

func floatFormat(components int) wgpu.VertexFormat {
	switch components {
	case 1:
		return wgpu.VertexFormatFloat32
	case 2:
		return wgpu.VertexFormatFloat32x2
	case 3:
		return wgpu.VertexFormatFloat32x3
	default:
		return wgpu.VertexFormatFloat32x4
	}
}
