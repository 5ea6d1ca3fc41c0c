package generator

import (
	"fmt"

	"github.com/chazu/shelfwright/pkg/scene"
	"github.com/chazu/shelfwright/pkg/shelf"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// InteriorBuilder builds shelves and dividers and derives the cell grid.
type InteriorBuilder struct {
	Factory *GeometryFactory
}

// Build returns the levels−1 shelves followed by the divisions−1 dividers,
// and the grid every addon is placed on.
func (b InteriorBuilder) Build(cfg shelf.Configuration) ([]*scene.Primitive, scene.CellGrid, error) {
	t := cfg.BoardThickness
	innerW, innerH := cfg.InnerWidth(), cfg.InnerHeight()
	levels, divisions := cfg.HorizontalLevels, cfg.VerticalDivisions

	var out []*scene.Primitive
	for i := 1; i < levels; i++ {
		y := float64(i) * (innerH + t) / float64(levels)
		prim, err := b.Factory.Board(fmt.Sprintf("shelf-%d", i), scene.RoleShelf,
			v3.Vec{X: innerW, Y: t, Z: cfg.Depth - t},
			v3.Vec{Y: y, Z: t / 2})
		if err != nil {
			discard(out)
			return nil, scene.CellGrid{}, err
		}
		out = append(out, prim)
	}
	for i := 1; i < divisions; i++ {
		x := -innerW/2 - t/2 + float64(i)*(innerW+t)/float64(divisions)
		prim, err := b.Factory.Board(fmt.Sprintf("divider-%d", i), scene.RoleDivider,
			v3.Vec{X: t, Y: innerH, Z: cfg.Depth - t},
			v3.Vec{X: x, Y: cfg.Height / 2, Z: t / 2})
		if err != nil {
			discard(out)
			return nil, scene.CellGrid{}, err
		}
		out = append(out, prim)
	}
	return out, NewCellGrid(cfg), nil
}

// NewCellGrid partitions the interior of cfg into levels × divisions cells.
func NewCellGrid(cfg shelf.Configuration) scene.CellGrid {
	t := cfg.BoardThickness
	innerW := cfg.InnerWidth()
	cw, ch := cfg.CellWidth(), cfg.CellHeight()
	grid := scene.CellGrid{
		Rows:       cfg.HorizontalLevels,
		Cols:       cfg.VerticalDivisions,
		CellWidth:  cw,
		CellHeight: ch,
		Cells:      make([]scene.Cell, 0, cfg.HorizontalLevels*cfg.VerticalDivisions),
	}
	for row := 0; row < grid.Rows; row++ {
		for col := 0; col < grid.Cols; col++ {
			grid.Cells = append(grid.Cells, scene.Cell{
				Row: row,
				Col: col,
				Center: v3.Vec{
					X: -innerW/2 + float64(col)*(cw+t) + cw/2,
					Y: t + float64(row)*(ch+t) + ch/2,
					Z: cfg.Depth/2 - t/2,
				},
				Width:  cw,
				Height: ch,
			})
		}
	}
	return grid
}
