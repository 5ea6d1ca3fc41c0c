package generator

import (
	"errors"

	"github.com/chazu/shelfwright/pkg/scene"
	"github.com/deadsy/sdfx/sdf"
)

// ErrEmptyGraph is returned when there is nothing to assemble.
var ErrEmptyGraph = errors.New("generator: no primitives to assemble")

// Assembler collects the stage outputs into a graph.
type Assembler struct{}

// Assemble adds carcass, interior and addon primitives to g in that order,
// turns on shadows for structural boards and computes g.Bounds. Addons keep
// the shadow flags their builder chose.
func (Assembler) Assemble(g *scene.Graph, carcass, interior []*scene.Primitive, addons Addons, grid scene.CellGrid) error {
	if len(carcass)+len(interior)+len(addons.Primitives) == 0 {
		return ErrEmptyGraph
	}
	for _, group := range [][]*scene.Primitive{carcass, interior} {
		for _, p := range group {
			p.CastShadow = true
			p.ReceiveShadow = true
			g.Add(p)
		}
	}
	for _, p := range addons.Primitives {
		g.Add(p)
	}
	for _, l := range addons.Lights {
		g.AddLight(l)
	}
	g.Grid = grid
	g.Bounds = Bounds(g.Primitives)
	return nil
}

// Bounds returns the axis-aligned box enclosing every primitive's solid.
// Without addons this is the carcass, W x H x D. Door handles stand proud
// of the front face and top-row lamp fixtures rise above the top board, so
// callers framing a camera should use the returned box, not the dimensions.
func Bounds(prims []*scene.Primitive) scene.BoundingBox {
	var (
		bb    sdf.Box3
		found bool
	)
	for _, p := range prims {
		if p.Solid == nil {
			continue
		}
		if !found {
			bb = p.Solid.BoundingBox()
			found = true
			continue
		}
		bb = bb.Extend(p.Solid.BoundingBox())
	}
	if !found {
		return scene.BoundingBox{}
	}
	return scene.NewBoundingBox(bb)
}
