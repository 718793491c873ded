package camera

import (
	"sync"
	"sync/atomic"

	"github.com/Carmen-Shannon/oxy-triangle/engine/scene"
	"github.com/go-gl/mathgl/mgl32"
)

// ViewID identifies a camera view for the lifetime of the process.
type ViewID uint64

// viewCount is an atomic counter used to hand out unique view ids.
var viewCount atomic.Uint64

// glToWebGPU remaps clip-space depth from OpenGL's [-1, 1] to WebGPU's [0, 1].
var glToWebGPU = mgl32.Mat4{
	1, 0, 0, 0,
	0, 1, 0, 0,
	0, 0, 0.5, 0,
	0, 0, 0.5, 1,
}

// ExtractedView is the render-side copy of a view for one frame: its uniform record and
// the set of entities it can see.
type ExtractedView struct {
	ID      ViewID
	Uniform GPUViewUniform
	Visible map[scene.EntityID]struct{}
}

// Contains reports whether the entity is in the view's visible set.
func (v *ExtractedView) Contains(id scene.EntityID) bool {
	_, ok := v.Visible[id]
	return ok
}

type cameraImpl struct {
	mu *sync.Mutex

	id ViewID

	width, height float32
	scale         float32
	near, far     float32
	position      mgl32.Vec3

	viewMatrix           mgl32.Mat4
	projectionMatrix     mgl32.Mat4
	viewProjectionMatrix mgl32.Mat4
}

// Camera is a 2D orthographic camera centered on its position. One world unit maps to one
// pixel at scale 1.
type Camera interface {
	// ID returns the view id of this camera.
	//
	// Returns:
	//   - ViewID: the view id
	ID() ViewID

	// Near returns the near clipping plane distance.
	//
	// Returns:
	//   - float32: near plane distance
	Near() float32

	// Far returns the far clipping plane distance.
	//
	// Returns:
	//   - float32: far plane distance
	Far() float32

	// Scale returns the number of world units per pixel.
	//
	// Returns:
	//   - float32: the scale
	Scale() float32

	// Position returns the camera's world position.
	//
	// Returns:
	//   - mgl32.Vec3: the position
	Position() mgl32.Vec3

	// SetPosition moves the camera and recomputes matrices.
	//
	// Parameters:
	//   - x, y, z: the new position
	SetPosition(x, y, z float32)

	// Pan moves the camera in its view plane.
	//
	// Parameters:
	//   - dx, dy: the offset in world units
	Pan(dx, dy float32)

	// SetViewport sets the visible area in pixels and recomputes matrices.
	//
	// Parameters:
	//   - width, height: the viewport size
	SetViewport(width, height float32)

	// ViewMatrix returns the current view matrix.
	//
	// Returns:
	//   - mgl32.Mat4: the view matrix
	ViewMatrix() mgl32.Mat4

	// ProjectionMatrix returns the current projection matrix with WebGPU depth range.
	//
	// Returns:
	//   - mgl32.Mat4: the projection matrix
	ProjectionMatrix() mgl32.Mat4

	// ViewProjectionMatrix returns the current combined view-projection matrix.
	//
	// Returns:
	//   - mgl32.Mat4: the view-projection matrix
	ViewProjectionMatrix() mgl32.Mat4

	// Uniform returns the view uniform record for the current matrices.
	//
	// Returns:
	//   - GPUViewUniform: the uniform record
	Uniform() GPUViewUniform

	// Extract builds this frame's view from the scene: the current uniform record and
	// every visible entity that has a mesh.
	//
	// Parameters:
	//   - s: the scene to read
	//
	// Returns:
	//   - ExtractedView: the extracted view
	Extract(s scene.Scene) ExtractedView
}

var _ Camera = &cameraImpl{}

// NewOrthographic2D creates a 2D camera looking down -Z from just inside its far plane, so
// everything between z=0 and the camera is in view.
//
// Parameters:
//   - options: functional options to configure the camera
//
// Returns:
//   - Camera: the newly created camera
func NewOrthographic2D(options ...CameraBuilderOption) Camera {
	c := &cameraImpl{
		mu:     &sync.Mutex{},
		id:     ViewID(viewCount.Add(1)),
		width:  1280,
		height: 720,
		scale:  1,
		near:   0,
		far:    1000,
	}
	for _, option := range options {
		option(c)
	}
	if c.position == (mgl32.Vec3{}) {
		c.position = mgl32.Vec3{0, 0, c.far - 0.1}
	}
	c.updateMatrices()
	return c
}

func (c *cameraImpl) ID() ViewID {
	return c.id
}

func (c *cameraImpl) Near() float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.near
}

func (c *cameraImpl) Far() float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.far
}

func (c *cameraImpl) Scale() float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.scale
}

func (c *cameraImpl) Position() mgl32.Vec3 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.position
}

func (c *cameraImpl) SetPosition(x, y, z float32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.position = mgl32.Vec3{x, y, z}
	c.updateMatrices()
}

func (c *cameraImpl) Pan(dx, dy float32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.position = c.position.Add(mgl32.Vec3{dx, dy, 0})
	c.updateMatrices()
}

func (c *cameraImpl) SetViewport(width, height float32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.width, c.height = width, height
	c.updateMatrices()
}

func (c *cameraImpl) ViewMatrix() mgl32.Mat4 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.viewMatrix
}

func (c *cameraImpl) ProjectionMatrix() mgl32.Mat4 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.projectionMatrix
}

func (c *cameraImpl) ViewProjectionMatrix() mgl32.Mat4 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.viewProjectionMatrix
}

func (c *cameraImpl) Uniform() GPUViewUniform {
	c.mu.Lock()
	defer c.mu.Unlock()
	return GPUViewUniform{
		ViewProj:      c.viewProjectionMatrix,
		Projection:    c.projectionMatrix,
		WorldPosition: c.position,
	}
}

func (c *cameraImpl) Extract(s scene.Scene) ExtractedView {
	v := ExtractedView{
		ID:      c.id,
		Uniform: c.Uniform(),
		Visible: make(map[scene.EntityID]struct{}),
	}
	s.Each(func(e scene.Entity) bool {
		if e.Visible && e.Mesh != nil {
			v.Visible[e.ID] = struct{}{}
		}
		return true
	})
	return v
}

// updateMatrices recalculates the view, projection and view-projection matrices.
// Caller must hold the mutex.
func (c *cameraImpl) updateMatrices() {
	halfW := c.width / 2 * c.scale
	halfH := c.height / 2 * c.scale
	c.projectionMatrix = glToWebGPU.Mul4(mgl32.Ortho(-halfW, halfW, -halfH, halfH, c.near, c.far))
	c.viewMatrix = mgl32.Translate3D(-c.position.X(), -c.position.Y(), -c.position.Z())
	c.viewProjectionMatrix = c.projectionMatrix.Mul4(c.viewMatrix)
}
