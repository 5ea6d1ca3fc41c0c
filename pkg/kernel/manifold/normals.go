package manifold

import "math"

// vertexNormals averages the face normals of the triangles incident on
// each vertex. MeshGL only carries normals when they were requested.
func vertexNormals(vertices []float32, indices []uint32) []float32 {
	normals := make([]float64, len(vertices))
	for t := 0; t+2 < len(indices); t += 3 {
		i0, i1, i2 := indices[t], indices[t+1], indices[t+2]
		ax, ay, az := at(vertices, i0)
		bx, by, bz := at(vertices, i1)
		cx, cy, cz := at(vertices, i2)

		e1x, e1y, e1z := bx-ax, by-ay, bz-az
		e2x, e2y, e2z := cx-ax, cy-ay, cz-az
		nx := e1y*e2z - e1z*e2y
		ny := e1z*e2x - e1x*e2z
		nz := e1x*e2y - e1y*e2x

		for _, idx := range []uint32{i0, i1, i2} {
			normals[idx*3+0] += nx
			normals[idx*3+1] += ny
			normals[idx*3+2] += nz
		}
	}

	out := make([]float32, len(normals))
	for i := 0; i+2 < len(normals); i += 3 {
		n := math.Sqrt(normals[i]*normals[i] + normals[i+1]*normals[i+1] + normals[i+2]*normals[i+2])
		if n < 1e-12 {
			continue
		}
		out[i] = float32(normals[i] / n)
		out[i+1] = float32(normals[i+1] / n)
		out[i+2] = float32(normals[i+2] / n)
	}
	return out
}

func at(vertices []float32, i uint32) (x, y, z float64) {
	return float64(vertices[i*3]), float64(vertices[i*3+1]), float64(vertices[i*3+2])
}
