// Package kernel defines the abstract geometry kernel interface.
// Implementations provide box and cylinder solids, placement and
// tessellation behind this interface so the generator never depends on a
// particular backend.
package kernel

import (
	"errors"

	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// ErrReleased is returned when a released solid or mesh is used again.
var ErrReleased = errors.New("kernel: resource already released")

// Solid is an opaque handle to a kernel solid.
// Implementations wrap their internal representation.
type Solid interface {
	// BoundingBox returns the axis-aligned bounding box in world space.
	BoundingBox() sdf.Box3
	// Release drops the kernel-side representation. It is safe to call
	// more than once.
	Release()
}

// Kernel is the abstract geometry kernel interface.
type Kernel interface {
	// Box creates a box centered at the origin. A positive round gives
	// radiused edges; it is clamped to half the smallest side.
	Box(size v3.Vec, round float64) (Solid, error)
	// Cylinder creates a cylinder centered at the origin with its axis on Y.
	Cylinder(height, radius float64) (Solid, error)

	// Place rotates s by Euler angles (radians, X then Y then Z) and then
	// translates it to position.
	Place(s Solid, position, rotation v3.Vec) (Solid, error)

	// ToMesh converts a solid to a triangle mesh. detail is the number of
	// samples across the thinnest side of the solid.
	ToMesh(s Solid, detail float64) (*Mesh, error)
}
