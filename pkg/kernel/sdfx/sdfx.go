// Package sdfx implements the kernel.Kernel interface using the
// github.com/deadsy/sdfx SDF-based CAD library.
package sdfx

import (
	"fmt"
	"math"

	"github.com/chazu/shelfwright/pkg/kernel"
	"github.com/deadsy/sdfx/render"
	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// Compile-time interface check.
var _ kernel.Kernel = (*SdfxKernel)(nil)

const (
	// minMeshCells and maxMeshCells bound the marching cubes resolution
	// along the longest side of a solid.
	minMeshCells = 16
	maxMeshCells = 800

	// DefaultDetail is the number of samples across the thinnest side.
	DefaultDetail = 2.0
)

// sdfxSolid wraps an sdf.SDF3 to implement kernel.Solid.
type sdfxSolid struct {
	s sdf.SDF3
}

// BoundingBox returns the axis-aligned bounding box.
func (s *sdfxSolid) BoundingBox() sdf.Box3 {
	if s.s == nil {
		return sdf.Box3{}
	}
	return s.s.BoundingBox()
}

// Release drops the SDF tree so it can be collected.
func (s *sdfxSolid) Release() {
	s.s = nil
}

// SdfxKernel implements kernel.Kernel using sdfx.
type SdfxKernel struct{}

// New returns a new SdfxKernel.
func New() *SdfxKernel {
	return &SdfxKernel{}
}

// unwrap extracts the underlying sdf.SDF3 from a kernel.Solid.
func unwrap(s kernel.Solid) (sdf.SDF3, error) {
	ss, ok := s.(*sdfxSolid)
	if !ok {
		return nil, fmt.Errorf("sdfx: foreign solid %T", s)
	}
	if ss.s == nil {
		return nil, kernel.ErrReleased
	}
	return ss.s, nil
}

// wrap creates a kernel.Solid from an sdf.SDF3.
func wrap(s sdf.SDF3) kernel.Solid {
	return &sdfxSolid{s: s}
}

// Box creates a box with the given dimensions centered at the origin.
// sdf.Box3D rounds all twelve edges with the given radius.
func (k *SdfxKernel) Box(size v3.Vec, round float64) (kernel.Solid, error) {
	if err := checkPositive(size.X, size.Y, size.Z); err != nil {
		return nil, fmt.Errorf("sdfx.Box: %w", err)
	}
	round = math.Max(0, math.Min(round, size.MinComponent()/2))
	s, err := sdf.Box3D(size, round)
	if err != nil {
		return nil, fmt.Errorf("sdfx.Box3D: %w", err)
	}
	return wrap(s), nil
}

// Cylinder creates a cylinder with the given height and radius.
// sdf.Cylinder3D is built along Z, so it is turned onto Y here.
func (k *SdfxKernel) Cylinder(height, radius float64) (kernel.Solid, error) {
	if err := checkPositive(height, radius); err != nil {
		return nil, fmt.Errorf("sdfx.Cylinder: %w", err)
	}
	s, err := sdf.Cylinder3D(height, radius, 0)
	if err != nil {
		return nil, fmt.Errorf("sdfx.Cylinder3D: %w", err)
	}
	return wrap(sdf.Transform3D(s, sdf.RotateX(math.Pi/2))), nil
}

// Place rotates a solid by Euler angles (radians) and then moves it to position.
func (k *SdfxKernel) Place(s kernel.Solid, position, rotation v3.Vec) (kernel.Solid, error) {
	inner, err := unwrap(s)
	if err != nil {
		return nil, err
	}
	rot := sdf.RotateX(rotation.X).Mul(sdf.RotateY(rotation.Y)).Mul(sdf.RotateZ(rotation.Z))
	m := sdf.Translate3d(position).Mul(rot)
	return wrap(sdf.Transform3D(inner, m)), nil
}

// ToMesh converts a solid to a triangle mesh using marching cubes.
func (k *SdfxKernel) ToMesh(s kernel.Solid, detail float64) (*kernel.Mesh, error) {
	sdf3, err := unwrap(s)
	if err != nil {
		return nil, err
	}
	if detail <= 0 {
		detail = DefaultDetail
	}

	renderer := render.NewMarchingCubesUniform(meshCells(sdf3.BoundingBox().Size(), detail))
	triangles := render.ToTriangles(sdf3, renderer)

	numTri := len(triangles)
	numVerts := numTri * 3

	vertices := make([]float32, 0, numVerts*3)
	normals := make([]float32, 0, numVerts*3)
	indices := make([]uint32, 0, numVerts)

	for i, tri := range triangles {
		// Compute face normal.
		n := tri.Normal()
		nx := float32(n.X)
		ny := float32(n.Y)
		nz := float32(n.Z)

		for j := 0; j < 3; j++ {
			v := tri[j]
			vertices = append(vertices, float32(v.X), float32(v.Y), float32(v.Z))
			normals = append(normals, nx, ny, nz)
			indices = append(indices, uint32(i*3+j))
		}
	}

	return &kernel.Mesh{
		Vertices: vertices,
		Normals:  normals,
		Indices:  indices,
	}, nil
}

// meshCells picks the marching cubes resolution so that the thinnest side
// of the solid is crossed by roughly detail cells.
func meshCells(size v3.Vec, detail float64) int {
	thinnest := size.MinComponent()
	if thinnest <= 0 {
		return minMeshCells
	}
	cells := int(math.Ceil(size.MaxComponent() * detail / thinnest))
	if cells < minMeshCells {
		return minMeshCells
	}
	if cells > maxMeshCells {
		return maxMeshCells
	}
	return cells
}

func checkPositive(vals ...float64) error {
	for _, v := range vals {
		if v <= 0 || math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("dimension %v must be positive and finite", v)
		}
	}
	return nil
}
