package scene

import v3 "github.com/deadsy/sdfx/vec/v3"

// Cell is one compartment bounded by shelves, dividers and the carcass.
type Cell struct {
	Row    int     `json:"row"` // 0 is the bottom row
	Col    int     `json:"col"` // 0 is the leftmost column
	Center v3.Vec  `json:"center"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Top is the y coordinate of the cell's upper face.
func (c Cell) Top() float64 {
	return c.Center.Y + c.Height/2
}

// CellGrid is the Rows × Cols partition every addon is placed on.
type CellGrid struct {
	Rows       int     `json:"rows"`
	Cols       int     `json:"cols"`
	CellWidth  float64 `json:"cellWidth"`
	CellHeight float64 `json:"cellHeight"`
	Cells      []Cell  `json:"cells"` // row-major, bottom row first
}

// At returns the cell at (row, col).
func (g CellGrid) At(row, col int) Cell {
	return g.Cells[row*g.Cols+col]
}

// Row returns the cells of one row, left to right.
func (g CellGrid) Row(row int) []Cell {
	return g.Cells[row*g.Cols : (row+1)*g.Cols]
}

// TopRow returns the uppermost row.
func (g CellGrid) TopRow() []Cell {
	return g.Row(g.Rows - 1)
}

// Len returns the number of cells.
func (g CellGrid) Len() int {
	return len(g.Cells)
}
