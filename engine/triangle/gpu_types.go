package triangle

import (
	"encoding/binary"
	"math"
	"unsafe"
)

// GPUTriangleUniform is the per-instance uniform record: the entity's world matrix in
// column-major order. Matches the WGSL Mesh struct.
type GPUTriangleUniform struct {
	Transform [16]float32
}

// Size returns the size of the struct in bytes (64).
func (u GPUTriangleUniform) Size() int {
	return int(unsafe.Sizeof(u))
}

// Depth returns the translation Z of the transform, the fourth column's third row.
func (u GPUTriangleUniform) Depth() float32 {
	return u.Transform[14]
}

// Marshal serializes the uniform into a little-endian byte slice for GPU upload.
func (u GPUTriangleUniform) Marshal() []byte {
	buf := make([]byte, u.Size())
	for i, f := range u.Transform {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return buf
}
