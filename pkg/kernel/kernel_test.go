package kernel

import (
	"testing"

	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// --- Mesh helper method tests ---

func TestMeshVertexCount(t *testing.T) {
	tests := []struct {
		name     string
		vertices []float32
		want     int
	}{
		{"empty", nil, 0},
		{"one vertex", []float32{1, 2, 3}, 1},
		{"four vertices", []float32{0, 0, 0, 1, 0, 0, 1, 1, 0, 0, 1, 0}, 4},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := &Mesh{Vertices: tt.vertices}
			if got := m.VertexCount(); got != tt.want {
				t.Errorf("VertexCount() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestMeshTriangleCount(t *testing.T) {
	tests := []struct {
		name    string
		indices []uint32
		want    int
	}{
		{"empty", nil, 0},
		{"one triangle", []uint32{0, 1, 2}, 1},
		{"two triangles", []uint32{0, 1, 2, 2, 3, 0}, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := &Mesh{Indices: tt.indices}
			if got := m.TriangleCount(); got != tt.want {
				t.Errorf("TriangleCount() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestMeshSizeBytes(t *testing.T) {
	m := &Mesh{
		Vertices: []float32{0, 0, 0, 1, 0, 0, 0, 1, 0},
		Normals:  []float32{0, 0, 1, 0, 0, 1, 0, 0, 1},
		Indices:  []uint32{0, 1, 2},
	}
	if got := m.SizeBytes(); got != 84 {
		t.Errorf("SizeBytes() = %d, want 84", got)
	}
}

func TestMeshRelease(t *testing.T) {
	m := &Mesh{
		Vertices: []float32{1, 2, 3},
		Normals:  []float32{0, 0, 1},
		Indices:  []uint32{0, 0, 0},
	}
	if m.Released() {
		t.Fatal("new mesh reports released")
	}
	m.Release()
	if !m.Released() {
		t.Fatal("Released() = false after Release")
	}
	if !m.IsEmpty() || m.TriangleCount() != 0 || m.SizeBytes() != 0 {
		t.Error("released mesh still holds buffers")
	}
	// Second release is a no-op.
	m.Release()
	if !m.Released() {
		t.Error("second Release cleared the released flag")
	}
}

// --- Compile-time interface check with a stub kernel ---

// stubSolid is a minimal Solid implementation for testing.
type stubSolid struct {
	bb       sdf.Box3
	released bool
}

func (s *stubSolid) BoundingBox() sdf.Box3 { return s.bb }
func (s *stubSolid) Release()              { s.released = true }

// stubKernel is a minimal Kernel implementation that proves the interface
// is satisfiable.
type stubKernel struct{}

func (k *stubKernel) Box(size v3.Vec, _ float64) (Solid, error) {
	return &stubSolid{bb: sdf.NewBox3(v3.Vec{}, size)}, nil
}

func (k *stubKernel) Cylinder(height, radius float64) (Solid, error) {
	return &stubSolid{bb: sdf.NewBox3(v3.Vec{}, v3.Vec{X: 2 * radius, Y: height, Z: 2 * radius})}, nil
}

func (k *stubKernel) Place(s Solid, position, _ v3.Vec) (Solid, error) {
	bb := s.BoundingBox()
	return &stubSolid{bb: sdf.Box3{Min: bb.Min.Add(position), Max: bb.Max.Add(position)}}, nil
}

func (k *stubKernel) ToMesh(_ Solid, _ float64) (*Mesh, error) {
	return &Mesh{}, nil
}

// Compile-time checks that the stubs implement the interfaces.
var _ Solid = (*stubSolid)(nil)
var _ Kernel = (*stubKernel)(nil)

func TestStubKernelBoxBoundingBox(t *testing.T) {
	var k Kernel = &stubKernel{}
	s, err := k.Box(v3.Vec{X: 10, Y: 20, Z: 30}, 0)
	if err != nil {
		t.Fatalf("Box() error = %v", err)
	}
	bb := s.BoundingBox()
	if bb.Min != (v3.Vec{X: -5, Y: -10, Z: -15}) {
		t.Errorf("Box min = %v, want {-5 -10 -15}", bb.Min)
	}
	if bb.Max != (v3.Vec{X: 5, Y: 10, Z: 15}) {
		t.Errorf("Box max = %v, want {5 10 15}", bb.Max)
	}
}

func TestStubKernelPlace(t *testing.T) {
	var k Kernel = &stubKernel{}
	s, _ := k.Box(v3.Vec{X: 2, Y: 2, Z: 2}, 0)
	placed, err := k.Place(s, v3.Vec{X: 10}, v3.Vec{})
	if err != nil {
		t.Fatalf("Place() error = %v", err)
	}
	if got := placed.BoundingBox().Center(); got != (v3.Vec{X: 10}) {
		t.Errorf("placed center = %v, want {10 0 0}", got)
	}
}
