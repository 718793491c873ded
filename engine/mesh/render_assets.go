package mesh

import (
	"errors"
	"fmt"
	"sync"

	"github.com/Carmen-Shannon/oxy-triangle/common"
	"github.com/Carmen-Shannon/oxy-triangle/engine/renderer/device"
	"github.com/cogentcore/webgpu/wgpu"
)

// ErrMeshNotReady is returned when a mesh id has no GPU-resident buffers.
var ErrMeshNotReady = errors.New("mesh: not ready")

// GpuMesh is the GPU-resident form of a Mesh. IndexBuffer is nil for non-indexed meshes.
type GpuMesh struct {
	VertexBuffer device.Buffer
	VertexCount  uint32
	IndexBuffer  device.Buffer
	IndexFormat  wgpu.IndexFormat
	IndexCount   uint32
}

// Indexed reports whether the mesh is drawn with an index buffer.
func (g *GpuMesh) Indexed() bool {
	return g.IndexBuffer != nil
}

// Release frees the mesh's buffers.
func (g *GpuMesh) Release() {
	if g.VertexBuffer != nil {
		g.VertexBuffer.Release()
	}
	if g.IndexBuffer != nil {
		g.IndexBuffer.Release()
	}
}

// renderAssets is the implementation of the RenderAssets interface.
type renderAssets struct {
	mu     *sync.RWMutex
	meshes map[ID]*GpuMesh
}

// RenderAssets is the render-side store of uploaded meshes.
type RenderAssets interface {
	// Prepare uploads every listed mesh that is not resident yet. Ids missing from assets
	// are skipped. Upload failures are collected and returned together; meshes that
	// uploaded successfully stay resident.
	//
	// Parameters:
	//   - dev: the device to upload through
	//   - assets: the CPU-side mesh store
	//   - ids: the meshes needed this frame
	//
	// Returns:
	//   - error: the joined upload errors, or nil
	Prepare(dev device.Device, assets Assets, ids []ID) error

	// Get returns the GPU mesh for an id.
	//
	// Parameters:
	//   - id: the mesh id
	//
	// Returns:
	//   - *GpuMesh: the resident mesh
	//   - error: ErrMeshNotReady if the mesh has not been uploaded
	Get(id ID) (*GpuMesh, error)

	// Remove releases and forgets the GPU mesh for an id.
	//
	// Parameters:
	//   - id: the mesh id
	Remove(id ID)

	// Len returns the number of resident meshes.
	Len() int

	// Release frees every resident mesh.
	Release()
}

var _ RenderAssets = &renderAssets{}

// NewRenderAssets creates an empty GPU mesh store.
func NewRenderAssets() RenderAssets {
	return &renderAssets{
		mu:     &sync.RWMutex{},
		meshes: make(map[ID]*GpuMesh),
	}
}

func (r *renderAssets) Prepare(dev device.Device, assets Assets, ids []ID) error {
	var errs []error
	for _, id := range ids {
		r.mu.RLock()
		_, resident := r.meshes[id]
		r.mu.RUnlock()
		if resident {
			continue
		}
		m, ok := assets.Get(id)
		if !ok {
			continue
		}
		gm, err := upload(dev, id, m)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		r.mu.Lock()
		r.meshes[id] = gm
		r.mu.Unlock()
		common.Logger().Debug("mesh uploaded", "mesh", id, "vertices", gm.VertexCount, "indexed", gm.Indexed())
	}
	return errors.Join(errs...)
}

func upload(dev device.Device, id ID, m *Mesh) (*GpuMesh, error) {
	vertices, err := m.VertexBufferData()
	if err != nil {
		return nil, err
	}
	if len(vertices) == 0 {
		return nil, fmt.Errorf("mesh: %d has no vertices", id)
	}
	vb, err := dev.CreateBuffer(&wgpu.BufferDescriptor{
		Label: fmt.Sprintf("mesh %d vertex buffer", id),
		Size:  uint64(len(vertices)),
		Usage: wgpu.BufferUsageVertex | wgpu.BufferUsageCopyDst,
	})
	if err != nil {
		return nil, fmt.Errorf("mesh: %d vertex buffer: %w", id, err)
	}
	writes := []device.BufferWrite{{Buffer: vb, Data: vertices}}
	gm := &GpuMesh{VertexBuffer: vb, VertexCount: uint32(m.VertexCount())}

	if indices := m.IndexBufferData(); indices != nil {
		ib, err := dev.CreateBuffer(&wgpu.BufferDescriptor{
			Label: fmt.Sprintf("mesh %d index buffer", id),
			Size:  uint64(len(indices)),
			Usage: wgpu.BufferUsageIndex | wgpu.BufferUsageCopyDst,
		})
		if err != nil {
			vb.Release()
			return nil, fmt.Errorf("mesh: %d index buffer: %w", id, err)
		}
		writes = append(writes, device.BufferWrite{Buffer: ib, Data: indices})
		gm.IndexBuffer = ib
		gm.IndexFormat = wgpu.IndexFormatUint32
		gm.IndexCount = uint32(len(m.Indices()))
	}
	device.WriteBuffers(dev, writes)
	return gm, nil
}

func (r *renderAssets) Get(id ID) (*GpuMesh, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	gm, ok := r.meshes[id]
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrMeshNotReady, id)
	}
	return gm, nil
}

func (r *renderAssets) Remove(id ID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if gm, ok := r.meshes[id]; ok {
		gm.Release()
		delete(r.meshes, id)
	}
}

func (r *renderAssets) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.meshes)
}

func (r *renderAssets) Release() {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, gm := range r.meshes {
		gm.Release()
		delete(r.meshes, id)
	}
}
