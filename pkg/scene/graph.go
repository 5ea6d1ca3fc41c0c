package scene

import (
	"sync/atomic"

	"github.com/chazu/shelfwright/pkg/shelf"
	"github.com/google/uuid"
	"github.com/samber/lo"
)

// Graph is one generated shelving unit: an ordered list of primitives plus
// the lights of any lamps, treated as a single disposable unit.
//
// A new Graph holds one reference owned by its creator. Readers that may
// outlive the owner's interest (a redraw loop) take extra references with
// Retain. The arena is freed when the last reference is released.
type Graph struct {
	ID          uuid.UUID           `json:"id"`
	Fingerprint string              `json:"fingerprint"`
	Config      shelf.Configuration `json:"config"`
	Materials   shelf.MaterialTable `json:"materials"`
	Primitives  []*Primitive        `json:"primitives"`
	Lights      []PointLight        `json:"lights"`
	Grid        CellGrid            `json:"grid"`
	Bounds      BoundingBox         `json:"bounds"`

	arena     Arena
	refs      atomic.Int64
	onRelease atomic.Pointer[func(freed int)]
}

// New creates an empty graph for cfg with one owner reference.
func New(cfg shelf.Configuration, materials shelf.MaterialTable) *Graph {
	g := &Graph{
		ID:          uuid.New(),
		Fingerprint: cfg.Fingerprint(),
		Config:      cfg,
		Materials:   materials,
	}
	g.refs.Store(1)
	return g
}

// Add appends a primitive and hands its solid to the arena.
func (g *Graph) Add(p *Primitive) {
	if p.Solid != nil {
		g.arena.Own(p.Solid)
	}
	g.Primitives = append(g.Primitives, p)
}

// AddLight appends a point light.
func (g *Graph) AddLight(l PointLight) {
	g.Lights = append(g.Lights, l)
}

// Own hands an additional buffer (an intermediate solid, a mesh) to the arena.
func (g *Graph) Own(r Releaser) {
	g.arena.Own(r)
}

// Buffers returns the number of buffers the arena currently owns.
func (g *Graph) Buffers() int {
	return g.arena.Len()
}

// OnRelease registers fn to run once, with the number of freed buffers,
// when the arena is released.
func (g *Graph) OnRelease(fn func(freed int)) {
	g.onRelease.Store(&fn)
}

// Retain takes a reference. It fails if the graph is already released.
func (g *Graph) Retain() bool {
	for {
		n := g.refs.Load()
		if n <= 0 {
			return false
		}
		if g.refs.CompareAndSwap(n, n+1) {
			return true
		}
	}
}

// Release drops a reference. Dropping the last one frees every buffer and
// removes the lights; it returns the number of freed buffers, or 0 while
// other references remain.
func (g *Graph) Release() int {
	for {
		n := g.refs.Load()
		if n <= 0 {
			return 0
		}
		if g.refs.CompareAndSwap(n, n-1) {
			if n > 1 {
				return 0
			}
			break
		}
	}

	freed := g.arena.Release()
	for _, p := range g.Primitives {
		p.Solid = nil
	}
	g.Lights = nil
	if fn := g.onRelease.Load(); fn != nil {
		(*fn)(freed)
	}
	return freed
}

// Released reports whether the graph's buffers have been freed.
func (g *Graph) Released() bool {
	return g.arena.Released()
}

// ByRole returns the primitives with the given role in graph order.
func (g *Graph) ByRole(role Role) []*Primitive {
	return lo.Filter(g.Primitives, func(p *Primitive, _ int) bool {
		return p.Role == role
	})
}

// Count returns how many primitives have the given role.
func (g *Graph) Count(role Role) int {
	return lo.CountBy(g.Primitives, func(p *Primitive) bool {
		return p.Role == role
	})
}

// Boards returns every flat panel primitive.
func (g *Graph) Boards() []*Primitive {
	return lo.Filter(g.Primitives, func(p *Primitive, _ int) bool {
		return p.Role.IsBoard()
	})
}

// Lookup returns the primitive with the given name, or nil.
func (g *Graph) Lookup(name string) *Primitive {
	p, ok := lo.Find(g.Primitives, func(p *Primitive) bool {
		return p.Name == name
	})
	if !ok {
		return nil
	}
	return p
}
