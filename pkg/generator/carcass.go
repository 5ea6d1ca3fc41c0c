package generator

import (
	"github.com/chazu/shelfwright/pkg/scene"
	"github.com/chazu/shelfwright/pkg/shelf"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// CarcassBuilder builds the five outer panels.
type CarcassBuilder struct {
	Factory *GeometryFactory
}

// Build returns bottom, top, left, right and back, in that order.
// Side and back panels sit inside the top and bottom, so nothing leaves
// the W × H × D box.
func (b CarcassBuilder) Build(cfg shelf.Configuration) ([]*scene.Primitive, error) {
	w, h, d, t := cfg.Width, cfg.Height, cfg.Depth, cfg.BoardThickness
	panels := []struct {
		name string
		size v3.Vec
		pos  v3.Vec
	}{
		{"carcass-bottom", v3.Vec{X: w, Y: t, Z: d}, v3.Vec{Y: t / 2}},
		{"carcass-top", v3.Vec{X: w, Y: t, Z: d}, v3.Vec{Y: h - t/2}},
		{"carcass-left", v3.Vec{X: t, Y: h - 2*t, Z: d}, v3.Vec{X: -(w/2 - t/2), Y: h / 2}},
		{"carcass-right", v3.Vec{X: t, Y: h - 2*t, Z: d}, v3.Vec{X: w/2 - t/2, Y: h / 2}},
		{"carcass-back", v3.Vec{X: w - 2*t, Y: h - 2*t, Z: t}, v3.Vec{Y: h / 2, Z: -d/2 + t/2}},
	}

	out := make([]*scene.Primitive, 0, len(panels))
	for _, p := range panels {
		prim, err := b.Factory.Board(p.name, scene.RoleCarcass, p.size, p.pos)
		if err != nil {
			discard(out)
			return nil, err
		}
		out = append(out, prim)
	}
	return out, nil
}
