//go:build manifold

// Package manifold provides a CGo-based geometry kernel binding to the
// Manifold library (https://github.com/elalish/manifold).
//
// This package requires the Manifold C library (manifoldc) to be installed.
// Build with: go build -tags=manifold
//
// Manifold has no edge filleting, so Box ignores round and produces a sharp
// box with the same bounds. Renderers draw radii from the scene geometry.
package manifold

/*
#cgo CFLAGS: -I/usr/local/include
#cgo LDFLAGS: -L/usr/local/lib -lmanifoldc

#include <stdlib.h>
#include <manifold/manifoldc.h>
*/
import "C"

import (
	"fmt"
	"math"
	"runtime"
	"unsafe"

	"github.com/chazu/shelfwright/pkg/kernel"
	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// Compile-time interface checks.
var _ kernel.Kernel = (*ManifoldKernel)(nil)
var _ kernel.Solid = (*manifoldSolid)(nil)

// CircularSegments is the facet count of every cylinder.
const CircularSegments = 32

// manifoldSolid wraps a C ManifoldManifold pointer and implements kernel.Solid.
type manifoldSolid struct {
	ptr *C.ManifoldManifold
}

// BoundingBox returns the axis-aligned bounding box of the solid.
func (s *manifoldSolid) BoundingBox() sdf.Box3 {
	if s.ptr == nil {
		return sdf.Box3{}
	}
	alloc := C.manifold_alloc_box()
	bbox := C.manifold_bounding_box(alloc, s.ptr)
	defer C.manifold_delete_box(bbox)

	return sdf.Box3{
		Min: v3.Vec{
			X: float64(C.manifold_box_min_x(bbox)),
			Y: float64(C.manifold_box_min_y(bbox)),
			Z: float64(C.manifold_box_min_z(bbox)),
		},
		Max: v3.Vec{
			X: float64(C.manifold_box_max_x(bbox)),
			Y: float64(C.manifold_box_max_y(bbox)),
			Z: float64(C.manifold_box_max_z(bbox)),
		},
	}
}

// Release frees the C manifold. Later calls are no-ops.
func (s *manifoldSolid) Release() {
	if s.ptr == nil {
		return
	}
	C.manifold_delete_manifold(s.ptr)
	s.ptr = nil
	runtime.SetFinalizer(s, nil)
}

// newSolid wraps ptr. The finalizer only catches solids nobody released.
func newSolid(ptr *C.ManifoldManifold) *manifoldSolid {
	s := &manifoldSolid{ptr: ptr}
	runtime.SetFinalizer(s, func(s *manifoldSolid) { s.Release() })
	return s
}

func unwrap(s kernel.Solid) (*C.ManifoldManifold, error) {
	ms, ok := s.(*manifoldSolid)
	if !ok {
		return nil, fmt.Errorf("manifold: foreign solid %T", s)
	}
	if ms.ptr == nil {
		return nil, kernel.ErrReleased
	}
	return ms.ptr, nil
}

// ManifoldKernel implements kernel.Kernel using the Manifold C library.
type ManifoldKernel struct{}

// New creates a new ManifoldKernel.
func New() (kernel.Kernel, error) {
	return &ManifoldKernel{}, nil
}

// Box creates a box centered at the origin. round is ignored.
func (k *ManifoldKernel) Box(size v3.Vec, round float64) (kernel.Solid, error) {
	if err := checkPositive(size.X, size.Y, size.Z); err != nil {
		return nil, fmt.Errorf("manifold.Box: %w", err)
	}
	alloc := C.manifold_alloc_manifold()
	ptr := C.manifold_cube(alloc,
		C.double(size.X), C.double(size.Y), C.double(size.Z),
		C.int(1), // center=true
	)
	return newSolid(ptr), nil
}

// Cylinder creates a cylinder centered at the origin with its axis on Y.
// Manifold builds cylinders along Z, so the result is turned about X.
func (k *ManifoldKernel) Cylinder(height, radius float64) (kernel.Solid, error) {
	if err := checkPositive(height, radius); err != nil {
		return nil, fmt.Errorf("manifold.Cylinder: %w", err)
	}
	alloc := C.manifold_alloc_manifold()
	ptr := C.manifold_cylinder(alloc,
		C.double(height),
		C.double(radius), // radius_low
		C.double(radius), // radius_high
		C.int(CircularSegments),
		C.int(1), // center=true
	)
	upright := newSolid(ptr)
	defer upright.Release()

	alloc = C.manifold_alloc_manifold()
	return newSolid(C.manifold_rotate(alloc, upright.ptr, C.double(90), 0, 0)), nil
}

// Place rotates s about Z, then Y, then X, and moves it to position. The
// resulting matrix is Rx·Ry·Rz, matching the sdfx kernel.
func (k *ManifoldKernel) Place(s kernel.Solid, position, rotation v3.Vec) (kernel.Solid, error) {
	ptr, err := unwrap(s)
	if err != nil {
		return nil, err
	}

	steps := []v3.Vec{
		{Z: rotation.Z},
		{Y: rotation.Y},
		{X: rotation.X},
	}
	cur := ptr
	var temps []*manifoldSolid
	defer func() {
		for _, t := range temps {
			t.Release()
		}
	}()
	for _, r := range steps {
		if r == (v3.Vec{}) {
			continue
		}
		alloc := C.manifold_alloc_manifold()
		next := newSolid(C.manifold_rotate(alloc, cur,
			C.double(degrees(r.X)), C.double(degrees(r.Y)), C.double(degrees(r.Z))))
		temps = append(temps, next)
		cur = next.ptr
	}

	alloc := C.manifold_alloc_manifold()
	ptr = C.manifold_translate(alloc, cur,
		C.double(position.X), C.double(position.Y), C.double(position.Z))
	return newSolid(ptr), nil
}

// ToMesh extracts a triangle mesh from the solid using Manifold's MeshGL
// format. Manifold meshes exactly, so detail is ignored.
func (k *ManifoldKernel) ToMesh(s kernel.Solid, detail float64) (*kernel.Mesh, error) {
	ptr, err := unwrap(s)
	if err != nil {
		return nil, err
	}

	meshAlloc := C.manifold_alloc_meshgl()
	meshGL := C.manifold_get_meshgl(meshAlloc, ptr)
	defer C.manifold_delete_meshgl(meshGL)

	numVert := int(C.manifold_meshgl_num_vert(meshGL))
	numTri := int(C.manifold_meshgl_num_tri(meshGL))
	if numVert == 0 || numTri == 0 {
		return &kernel.Mesh{}, nil
	}

	// The first 3 properties per vertex are the position; normals follow
	// at 3..5 when present.
	numProp := int(C.manifold_meshgl_num_prop(meshGL))
	propData := make([]float32, numVert*numProp)
	C.manifold_meshgl_vert_properties(
		(*C.float)(unsafe.Pointer(&propData[0])),
		meshGL,
	)

	indices := make([]uint32, numTri*3)
	C.manifold_meshgl_tri_verts(
		(*C.uint32_t)(unsafe.Pointer(&indices[0])),
		meshGL,
	)

	vertices := make([]float32, numVert*3)
	hasNormals := numProp >= 6
	var normals []float32
	if hasNormals {
		normals = make([]float32, numVert*3)
	}
	for i := 0; i < numVert; i++ {
		base := i * numProp
		copy(vertices[i*3:i*3+3], propData[base:base+3])
		if hasNormals {
			copy(normals[i*3:i*3+3], propData[base+3:base+6])
		}
	}
	if !hasNormals {
		normals = vertexNormals(vertices, indices)
	}

	return &kernel.Mesh{
		Vertices: vertices,
		Normals:  normals,
		Indices:  indices,
	}, nil
}

func degrees(rad float64) float64 {
	return rad * 180 / math.Pi
}

func checkPositive(vals ...float64) error {
	for _, v := range vals {
		if v <= 0 || math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("dimension %v must be positive and finite", v)
		}
	}
	return nil
}
