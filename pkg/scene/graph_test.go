package scene

import (
	"sync"
	"testing"

	"github.com/chazu/shelfwright/pkg/shelf"
	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// countingSolid is a kernel.Solid that records how often it was released.
type countingSolid struct {
	mu    sync.Mutex
	calls int
}

func (s *countingSolid) BoundingBox() sdf.Box3 { return sdf.Box3{} }

func (s *countingSolid) Release() {
	s.mu.Lock()
	s.calls++
	s.mu.Unlock()
}

func (s *countingSolid) released() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

func board(name string, role Role, pos, size v3.Vec) *Primitive {
	return &Primitive{
		Name:      name,
		Role:      role,
		Geometry:  Geometry{Shape: ShapeBox, Size: size, Segments: 1},
		Transform: Transform{Position: pos},
		Material:  shelf.GlossWhite,
		Row:       NoCell,
		Col:       NoCell,
	}
}

func TestNewGraphIdentity(t *testing.T) {
	cfg := shelf.DefaultConfiguration()
	a := New(cfg, shelf.DefaultMaterials())
	b := New(cfg, shelf.DefaultMaterials())

	assert.NotEqual(t, a.ID, b.ID, "every graph gets a fresh id")
	assert.Equal(t, a.Fingerprint, b.Fingerprint, "same config, same fingerprint")
	assert.False(t, a.Released())
}

func TestGraphQueries(t *testing.T) {
	g := New(shelf.DefaultConfiguration(), shelf.DefaultMaterials())
	g.Add(board("bottom", RoleCarcass, v3.Vec{Y: 1}, v3.Vec{X: 150, Y: 2, Z: 30}))
	g.Add(board("shelf-1", RoleShelf, v3.Vec{Y: 49.5}, v3.Vec{X: 146, Y: 2, Z: 28}))
	g.Add(board("shelf-2", RoleShelf, v3.Vec{Y: 99}, v3.Vec{X: 146, Y: 2, Z: 28}))
	g.Add(&Primitive{Name: "handle-0", Role: RoleHandle, Geometry: Geometry{Shape: ShapeCylinder}})

	assert.Equal(t, 2, g.Count(RoleShelf))
	assert.Equal(t, 0, g.Count(RoleDivider))
	assert.Len(t, g.Boards(), 3)

	shelves := g.ByRole(RoleShelf)
	require.Len(t, shelves, 2)
	assert.Equal(t, "shelf-1", shelves[0].Name)
	assert.Equal(t, "shelf-2", shelves[1].Name)

	require.NotNil(t, g.Lookup("handle-0"))
	assert.Nil(t, g.Lookup("missing"))
}

func TestGraphReleaseFreesEachBufferOnce(t *testing.T) {
	g := New(shelf.DefaultConfiguration(), shelf.DefaultMaterials())
	solids := []*countingSolid{{}, {}, {}}
	for i, s := range solids {
		p := board("p", RoleShelf, v3.Vec{}, v3.Vec{X: 1, Y: 1, Z: 1})
		p.Name = string(rune('a' + i))
		p.Solid = s
		g.Add(p)
	}
	extra := &countingSolid{}
	g.Own(extra)
	g.AddLight(PointLight{Name: "lamp-0-0"})
	require.Equal(t, 4, g.Buffers())

	var hookFreed []int
	g.OnRelease(func(freed int) { hookFreed = append(hookFreed, freed) })

	assert.Equal(t, 4, g.Release())
	assert.Equal(t, 0, g.Release(), "second release is a no-op")
	assert.True(t, g.Released())
	assert.Equal(t, []int{4}, hookFreed)
	assert.Nil(t, g.Lights)

	for _, s := range solids {
		assert.Equal(t, 1, s.released())
	}
	assert.Equal(t, 1, extra.released())
	for _, p := range g.Primitives {
		assert.Nil(t, p.Solid)
	}
}

func TestGraphRetainDefersRelease(t *testing.T) {
	g := New(shelf.DefaultConfiguration(), shelf.DefaultMaterials())
	s := &countingSolid{}
	g.Own(s)

	require.True(t, g.Retain())
	assert.Equal(t, 0, g.Release(), "owner drops its ref while a lease is out")
	assert.False(t, g.Released())
	assert.Equal(t, 0, s.released())

	assert.Equal(t, 1, g.Release(), "last lease frees")
	assert.True(t, g.Released())
	assert.False(t, g.Retain(), "cannot lease a released graph")
}

func TestGraphConcurrentLeases(t *testing.T) {
	g := New(shelf.DefaultConfiguration(), shelf.DefaultMaterials())
	s := &countingSolid{}
	g.Own(s)

	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if g.Retain() {
				g.Release()
			}
		}()
	}
	wg.Wait()

	require.False(t, g.Released())
	g.Release()
	assert.Equal(t, 1, s.released())
}

func TestArenaOwnAfterRelease(t *testing.T) {
	var a Arena
	first := &countingSolid{}
	a.Own(first)
	assert.Equal(t, 1, a.Release())

	late := &countingSolid{}
	a.Own(late)
	assert.Equal(t, 1, late.released(), "late buffers are freed immediately")
	assert.Equal(t, 0, a.Len())
	assert.Equal(t, 0, a.Release())
}

func TestBoundingBox(t *testing.T) {
	b := NewBoundingBox(sdf.Box3{Min: v3.Vec{X: -75, Y: 0, Z: -15}, Max: v3.Vec{X: 75, Y: 200, Z: 15}})
	assert.Equal(t, v3.Vec{X: 0, Y: 100, Z: 0}, b.Center)
	assert.Equal(t, v3.Vec{X: 150, Y: 200, Z: 30}, b.Size())
	assert.Equal(t, b.Min, b.Box3().Min)
	assert.False(t, b.IsZero())
	assert.True(t, BoundingBox{}.IsZero())
}

func TestCellGrid(t *testing.T) {
	var cells []Cell
	for r := 0; r < 2; r++ {
		for c := 0; c < 3; c++ {
			cells = append(cells, Cell{Row: r, Col: c, Center: v3.Vec{Y: float64(10 + 20*r)}, Height: 18})
		}
	}
	grid := CellGrid{Rows: 2, Cols: 3, Cells: cells}

	assert.Equal(t, 6, grid.Len())
	assert.Equal(t, 1, grid.At(1, 2).Row)
	assert.Equal(t, 2, grid.At(1, 2).Col)
	top := grid.TopRow()
	require.Len(t, top, 3)
	for _, c := range top {
		assert.Equal(t, 1, c.Row)
		assert.InDelta(t, 39.0, c.Top(), 1e-9)
	}
}

func TestShapeAndRoleStrings(t *testing.T) {
	tests := []struct {
		got  string
		want string
	}{
		{ShapeBox.String(), "box"},
		{ShapeRoundedBox.String(), "rounded-box"},
		{ShapeCylinder.String(), "cylinder"},
		{Shape(9).String(), "Shape(9)"},
		{RoleHangerRail.String(), "hanger-rail"},
		{Role(42).String(), "Role(42)"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.got)
	}
	assert.True(t, RoleDoor.IsBoard())
	assert.False(t, RoleHandle.IsBoard())
}
