package generator

import (
	"fmt"
	"math"

	"github.com/chazu/shelfwright/pkg/kernel"
	"github.com/chazu/shelfwright/pkg/scene"
	"github.com/chazu/shelfwright/pkg/shelf"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// owner receives intermediate kernel solids so they are freed with the graph.
type owner func(r scene.Releaser)

// GeometryFactory builds every board of a unit with one edge profile.
// Cylindrical fixtures do not go through the factory.
type GeometryFactory struct {
	kernel    kernel.Kernel
	profile   shelf.EdgeProfile
	thickness float64
	material  shelf.MaterialID
	own       owner
}

// NewGeometryFactory returns a factory for the boards of cfg.
func NewGeometryFactory(k kernel.Kernel, cfg shelf.Configuration, own owner) *GeometryFactory {
	return &GeometryFactory{
		kernel:    k,
		profile:   cfg.EdgeProfile,
		thickness: cfg.BoardThickness,
		material:  cfg.Material,
		own:       own,
	}
}

// Geometry describes a board of the given size under the factory's
// profile. The edge radius never exceeds half the board's thinnest side.
func (f *GeometryFactory) Geometry(size v3.Vec) scene.Geometry {
	if f.profile != shelf.Rounded {
		return scene.Geometry{Shape: scene.ShapeBox, Size: size, Segments: 1}
	}
	r := math.Min(f.profile.Radius(f.thickness), size.MinComponent()/2)
	return scene.Geometry{
		Shape:    scene.ShapeRoundedBox,
		Size:     size,
		Radius:   r,
		Segments: f.profile.Segments(),
	}
}

// Board builds one positioned board. The returned primitive owns its
// world-space solid; the caller must add it to a graph or release it.
func (f *GeometryFactory) Board(name string, role scene.Role, size, position v3.Vec) (*scene.Primitive, error) {
	geom := f.Geometry(size)
	local, err := f.kernel.Box(size, geom.Radius)
	if err != nil {
		return nil, fmt.Errorf("board %s: %w", name, err)
	}
	f.own(local)

	solid, err := f.kernel.Place(local, position, v3.Vec{})
	if err != nil {
		return nil, fmt.Errorf("board %s: %w", name, err)
	}
	return &scene.Primitive{
		Name:      name,
		Role:      role,
		Geometry:  geom,
		Transform: scene.Transform{Position: position},
		Material:  f.material,
		Row:       scene.NoCell,
		Col:       scene.NoCell,
		Solid:     solid,
	}, nil
}

// cylinder builds a positioned cylinder of the given radius and length.
// Its local axis is Y before rotation.
func cylinder(k kernel.Kernel, own owner, name string, role scene.Role, radius, length float64, segments int, t scene.Transform, mat shelf.MaterialID) (*scene.Primitive, error) {
	local, err := k.Cylinder(length, radius)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", role, name, err)
	}
	own(local)

	solid, err := k.Place(local, t.Position, t.Rotation)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", role, name, err)
	}
	return &scene.Primitive{
		Name: name,
		Role: role,
		Geometry: scene.Geometry{
			Shape:    scene.ShapeCylinder,
			Size:     v3.Vec{X: 2 * radius, Y: length, Z: 2 * radius},
			Radius:   radius,
			Segments: segments,
		},
		Transform: t,
		Material:  mat,
		Row:       scene.NoCell,
		Col:       scene.NoCell,
		Solid:     solid,
	}, nil
}

// discard releases the solids of primitives that never reached a graph.
func discard(prims ...[]*scene.Primitive) {
	for _, ps := range prims {
		for _, p := range ps {
			if p.Solid != nil {
				p.Solid.Release()
				p.Solid = nil
			}
		}
	}
}
