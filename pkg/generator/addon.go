package generator

import (
	"fmt"
	"math"

	"github.com/chazu/shelfwright/pkg/kernel"
	"github.com/chazu/shelfwright/pkg/scene"
	"github.com/chazu/shelfwright/pkg/shelf"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// Addon geometry. Lengths are in configuration units.
const (
	DoorGap       = 0.5 // clearance taken off each door's width and height
	DoorThickness = 1.0
	DoorInset     = 0.5 // door face sits this far behind the front plane's center

	HandleRadius   = 0.5
	HandleSegments = 16
	HandleRatio    = 0.25 // handle length as a fraction of door height
	HandleEdge     = 2.0  // handle distance from the door's right edge
	HandleStandoff = 1.0

	LampColor      = 0xffeebb
	LampIntensity  = 100.0
	LampRangeRatio = 1.5 // falloff range as a multiple of cell width
	LampDrop       = 1.5 // light sits this far below the cell's top
	LampSetback    = 5.0 // distance behind the cell's front plane

	FixtureRadius   = 3.0
	FixtureHeight   = 0.5
	FixtureSegments = 16

	RailRadius   = 0.75
	RailSegments = 20
	RailMargin   = 2.0 // total clearance between rail ends and the cell walls
	RailDrop     = 5.0
)

// Addons is the output of AddonBuilder.
type Addons struct {
	Primitives []*scene.Primitive
	Lights     []scene.PointLight
}

// AddonBuilder places doors, lamps and hanger rails on the cell grid.
type AddonBuilder struct {
	Kernel  kernel.Kernel
	Factory *GeometryFactory
	own     owner
}

// Build places every enabled addon. Derived lengths that would shrink to
// nothing on tiny grids are clamped to shelf.MinDimension.
func (b AddonBuilder) Build(cfg shelf.Configuration, grid scene.CellGrid) (Addons, error) {
	var out Addons
	steps := []struct {
		enabled bool
		build   func(shelf.Configuration, scene.CellGrid, *Addons) error
	}{
		{cfg.Doors, b.doors},
		{cfg.Lamps, b.lamps},
		{cfg.Hangers, b.hangers},
	}
	for _, s := range steps {
		if !s.enabled {
			continue
		}
		if err := s.build(cfg, grid, &out); err != nil {
			discard(out.Primitives)
			return Addons{}, err
		}
	}
	return out, nil
}

// doors adds one full-height door per column, each with a handle near its
// right edge.
func (b AddonBuilder) doors(cfg shelf.Configuration, grid scene.CellGrid, out *Addons) error {
	doorW := clampDim(grid.CellWidth - DoorGap)
	doorH := clampDim(cfg.InnerHeight() - DoorGap)
	z := cfg.Depth/2 - DoorInset

	for col := 0; col < grid.Cols; col++ {
		cx := grid.At(0, col).Center.X
		leafPos := v3.Vec{X: cx, Y: cfg.Height / 2, Z: z}
		leaf, err := b.Factory.Board(fmt.Sprintf("door-%d", col), scene.RoleDoor,
			v3.Vec{X: doorW, Y: doorH, Z: DoorThickness}, leafPos)
		if err != nil {
			return err
		}
		leaf.Col = col
		leaf.CastShadow = true
		out.Primitives = append(out.Primitives, leaf)

		handle, err := cylinder(b.Kernel, b.own, fmt.Sprintf("handle-%d", col), scene.RoleHandle,
			HandleRadius, clampDim(HandleRatio*doorH), HandleSegments,
			scene.Transform{Position: leafPos.Add(v3.Vec{X: doorW/2 - HandleEdge, Z: HandleStandoff})},
			shelf.BrushedMetal)
		if err != nil {
			return err
		}
		handle.Col = col
		handle.CastShadow = true
		out.Primitives = append(out.Primitives, handle)
	}
	return nil
}

// lamps adds a warm point light and a dark disc fixture to every cell.
func (b AddonBuilder) lamps(_ shelf.Configuration, grid scene.CellGrid, out *Addons) error {
	for _, c := range grid.Cells {
		top := c.Top()
		out.Lights = append(out.Lights, scene.PointLight{
			Name:      fmt.Sprintf("lamp-%d-%d", c.Row, c.Col),
			Color:     LampColor,
			Intensity: LampIntensity,
			Range:     LampRangeRatio * grid.CellWidth,
			Position:  v3.Vec{X: c.Center.X, Y: top - LampDrop, Z: c.Center.Z - LampSetback},
			Row:       c.Row,
			Col:       c.Col,
		})

		fixture, err := cylinder(b.Kernel, b.own, fmt.Sprintf("lamp-fixture-%d-%d", c.Row, c.Col), scene.RoleLampFixture,
			FixtureRadius, FixtureHeight, FixtureSegments,
			scene.Transform{
				Position: v3.Vec{X: c.Center.X, Y: top, Z: c.Center.Z - LampSetback},
				Rotation: v3.Vec{X: math.Pi / 2},
			},
			shelf.FixtureDark)
		if err != nil {
			return err
		}
		fixture.Row, fixture.Col = c.Row, c.Col
		out.Primitives = append(out.Primitives, fixture)
	}
	return nil
}

// hangers adds a horizontal rail to each cell of the top row.
func (b AddonBuilder) hangers(cfg shelf.Configuration, grid scene.CellGrid, out *Addons) error {
	length := clampDim(grid.CellWidth - RailMargin)
	for _, c := range grid.TopRow() {
		rail, err := cylinder(b.Kernel, b.own, fmt.Sprintf("hanger-rail-%d", c.Col), scene.RoleHangerRail,
			RailRadius, length, RailSegments,
			scene.Transform{
				Position: v3.Vec{X: c.Center.X, Y: c.Top() - RailDrop, Z: c.Center.Z - cfg.Depth/4},
				Rotation: v3.Vec{Z: math.Pi / 2},
			},
			shelf.BrushedMetal)
		if err != nil {
			return err
		}
		rail.Row, rail.Col = c.Row, c.Col
		rail.CastShadow = true
		out.Primitives = append(out.Primitives, rail)
	}
	return nil
}

// AddonCount returns how many primitives the enabled addons contribute.
func AddonCount(cfg shelf.Configuration) int {
	n := 0
	if cfg.Doors {
		n += 2 * cfg.VerticalDivisions
	}
	if cfg.Lamps {
		n += cfg.HorizontalLevels * cfg.VerticalDivisions
	}
	if cfg.Hangers {
		n += cfg.VerticalDivisions
	}
	return n
}

func clampDim(v float64) float64 {
	return math.Max(v, shelf.MinDimension)
}
