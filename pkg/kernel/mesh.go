package kernel

// Mesh is a triangle mesh suitable for rendering.
// All arrays are flat: vertices has 3 floats per vertex (x,y,z),
// normals has 3 floats per vertex, indices has 3 uint32s per triangle.
type Mesh struct {
	Vertices []float32 `json:"vertices"` // [x0,y0,z0, x1,y1,z1, ...]
	Normals  []float32 `json:"normals"`  // [nx0,ny0,nz0, ...]
	Indices  []uint32  `json:"indices"`  // [i0,i1,i2, ...] triangles
	PartName string    `json:"partName"` // which scene primitive this came from
	released bool
}

// VertexCount returns the number of vertices.
func (m *Mesh) VertexCount() int {
	return len(m.Vertices) / 3
}

// TriangleCount returns the number of triangles.
func (m *Mesh) TriangleCount() int {
	return len(m.Indices) / 3
}

// IsEmpty returns true if the mesh has no geometry.
func (m *Mesh) IsEmpty() bool {
	return len(m.Vertices) == 0
}

// SizeBytes returns the size of the vertex, normal and index buffers.
func (m *Mesh) SizeBytes() int {
	return 4 * (len(m.Vertices) + len(m.Normals) + len(m.Indices))
}

// Release frees the mesh buffers. Subsequent calls are no-ops.
func (m *Mesh) Release() {
	if m.released {
		return
	}
	m.released = true
	m.Vertices = nil
	m.Normals = nil
	m.Indices = nil
}

// Released reports whether Release has been called.
func (m *Mesh) Released() bool {
	return m.released
}
