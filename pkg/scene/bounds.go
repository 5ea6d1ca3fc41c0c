package scene

import (
	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// BoundingBox is the axis-aligned extent of a graph, used to retarget the
// preview camera.
type BoundingBox struct {
	Min    v3.Vec `json:"min"`
	Max    v3.Vec `json:"max"`
	Center v3.Vec `json:"center"`
}

// NewBoundingBox converts an sdf.Box3.
func NewBoundingBox(b sdf.Box3) BoundingBox {
	return BoundingBox{Min: b.Min, Max: b.Max, Center: b.Center()}
}

// Size returns the extent along each axis.
func (b BoundingBox) Size() v3.Vec {
	return b.Max.Sub(b.Min)
}

// Box3 converts back to an sdf.Box3.
func (b BoundingBox) Box3() sdf.Box3 {
	return sdf.Box3{Min: b.Min, Max: b.Max}
}

// IsZero reports whether the box is unset.
func (b BoundingBox) IsZero() bool {
	return b == BoundingBox{}
}
