package scene

import (
	"fmt"

	"github.com/chazu/shelfwright/pkg/kernel"
	"github.com/chazu/shelfwright/pkg/shelf"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// Shape distinguishes between primitive geometries.
type Shape int

const (
	ShapeBox        Shape = iota // sharp rectangular prism
	ShapeRoundedBox              // prism with radiused edges
	ShapeCylinder                // cylinder along the local Y axis
)

func (s Shape) String() string {
	switch s {
	case ShapeBox:
		return "box"
	case ShapeRoundedBox:
		return "rounded-box"
	case ShapeCylinder:
		return "cylinder"
	default:
		return fmt.Sprintf("Shape(%d)", int(s))
	}
}

// Role says what part of the unit a primitive is.
type Role int

const (
	RoleCarcass Role = iota
	RoleShelf
	RoleDivider
	RoleDoor
	RoleHandle
	RoleLampFixture
	RoleHangerRail
)

func (r Role) String() string {
	switch r {
	case RoleCarcass:
		return "carcass"
	case RoleShelf:
		return "shelf"
	case RoleDivider:
		return "divider"
	case RoleDoor:
		return "door"
	case RoleHandle:
		return "handle"
	case RoleLampFixture:
		return "lamp-fixture"
	case RoleHangerRail:
		return "hanger-rail"
	default:
		return fmt.Sprintf("Role(%d)", int(r))
	}
}

// IsBoard reports whether primitives of this role are flat panels.
func (r Role) IsBoard() bool {
	switch r {
	case RoleCarcass, RoleShelf, RoleDivider, RoleDoor:
		return true
	}
	return false
}

// Geometry is the renderer-facing description of a primitive's shape.
// For boxes Size is width × height × depth. For cylinders Size is
// diameter × length × diameter in the unrotated frame.
type Geometry struct {
	Shape    Shape   `json:"shape"`
	Size     v3.Vec  `json:"size"`
	Radius   float64 `json:"radius,omitempty"` // edge radius or cylinder radius
	Segments int     `json:"segments"`         // rounded edge or radial segments
}

// Transform places a primitive. Rotation is Euler XYZ in radians.
type Transform struct {
	Position v3.Vec `json:"position"`
	Rotation v3.Vec `json:"rotation"`
}

// NoCell marks a primitive that is not tied to a grid cell.
const NoCell = -1

// Primitive is one positioned shape of the generated unit.
type Primitive struct {
	Name          string           `json:"name"`
	Role          Role             `json:"role"`
	Geometry      Geometry         `json:"geometry"`
	Transform     Transform        `json:"transform"`
	Material      shelf.MaterialID `json:"material"`
	CastShadow    bool             `json:"castShadow"`
	ReceiveShadow bool             `json:"receiveShadow"`
	Row           int              `json:"row"` // NoCell when not cell-bound
	Col           int              `json:"col"`

	// Solid is the world-space kernel solid; the graph's arena owns it.
	Solid kernel.Solid `json:"-"`
}

// PointLight is a light emitted by a lamp addon.
type PointLight struct {
	Name      string  `json:"name"`
	Color     uint32  `json:"color"` // 0xRRGGBB
	Intensity float64 `json:"intensity"`
	Range     float64 `json:"range"` // falloff distance
	Position  v3.Vec  `json:"position"`
	Row       int     `json:"row"`
	Col       int     `json:"col"`
}
