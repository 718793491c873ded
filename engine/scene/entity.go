package scene

import (
	"fmt"
	"math"

	"github.com/Carmen-Shannon/oxy-triangle/engine/mesh"
	"github.com/go-gl/mathgl/mgl32"
)

// EntityID is a stable reference to an entity: a slot index plus the generation of the slot
// at spawn time. IDs of despawned entities never resolve again, even after slot reuse.
type EntityID struct {
	index      uint32
	generation uint32
}

func (e EntityID) Index() uint32 {
	return e.index
}

func (e EntityID) Generation() uint32 {
	return e.generation
}

// IsZero reports whether e is the zero value, which never refers to a live entity.
func (e EntityID) IsZero() bool {
	return e.generation == 0
}

func (e EntityID) String() string {
	return fmt.Sprintf("%dv%d", e.index, e.generation)
}

// Triangle is the shape descriptor of a filled triangle: three points in the entity's local
// space and an RGBA color.
type Triangle struct {
	A, B, C mgl32.Vec2
	Color   [4]float32
}

// TriangleSide returns an equilateral triangle with the given side length centered on the
// origin, with one vertex pointing up and a half-transparent grey color.
//
// Parameters:
//   - length: the side length
//
// Returns:
//   - Triangle: the shape descriptor
func TriangleSide(length float32) Triangle {
	half := length / 2
	height := float32(math.Sqrt(float64(length*length - half*half)))
	return Triangle{
		A:     mgl32.Vec2{0, height / 2},
		B:     mgl32.Vec2{-half, -height / 2},
		C:     mgl32.Vec2{half, -height / 2},
		Color: [4]float32{0.5, 0.5, 0.5, 0.5},
	}
}

// WithRGBA returns a copy of the triangle with the given color.
func (t Triangle) WithRGBA(r, g, b, a float32) Triangle {
	t.Color = [4]float32{r, g, b, a}
	return t
}

// Points returns the three points in order.
func (t Triangle) Points() [3]mgl32.Vec2 {
	return [3]mgl32.Vec2{t.A, t.B, t.C}
}

// Transform places an entity in world space.
type Transform struct {
	Translation mgl32.Vec3
	Rotation    mgl32.Quat
	Scale       mgl32.Vec3
}

// IdentityTransform returns the transform that leaves local space unchanged.
func IdentityTransform() Transform {
	return Transform{
		Rotation: mgl32.QuatIdent(),
		Scale:    mgl32.Vec3{1, 1, 1},
	}
}

// TransformFromTranslation returns an identity transform moved to (x, y, z).
func TransformFromTranslation(x, y, z float32) Transform {
	t := IdentityTransform()
	t.Translation = mgl32.Vec3{x, y, z}
	return t
}

// Matrix returns the world matrix translation * rotation * scale.
func (t Transform) Matrix() mgl32.Mat4 {
	return mgl32.Translate3D(t.Translation.X(), t.Translation.Y(), t.Translation.Z()).
		Mul4(t.Rotation.Normalize().Mat4()).
		Mul4(mgl32.Scale3D(t.Scale.X(), t.Scale.Y(), t.Scale.Z()))
}

// Entity is a snapshot of one entity's fields. Shape and Mesh may be nil.
type Entity struct {
	ID        EntityID
	Name      string
	Shape     *Triangle
	Transform Transform
	Visible   bool
	Mesh      *mesh.Handle
}
