// Package tessellate turns the solids of a scene graph into triangle meshes.
// One mesh is produced per primitive, and every mesh is owned by the graph
// it came from, so releasing the graph frees the mesh buffers too.
package tessellate

import (
	"context"
	"errors"
	"fmt"
	"runtime"

	"github.com/chazu/shelfwright/pkg/kernel"
	"github.com/chazu/shelfwright/pkg/scene"
	"golang.org/x/sync/errgroup"
)

// ErrGraphReleased is returned when tessellating a graph whose buffers are gone.
var ErrGraphReleased = errors.New("tessellate: graph already released")

// Options tunes tessellation.
type Options struct {
	// Detail is passed to kernel.ToMesh; zero selects the kernel default.
	Detail float64
	// Workers bounds concurrent ToMesh calls; zero means GOMAXPROCS.
	Workers int
}

// Tessellate meshes every primitive of g in graph order. The graph is
// leased for the duration of the call. On success the meshes belong to g;
// on failure none of them survive.
func Tessellate(ctx context.Context, g *scene.Graph, k kernel.Kernel, opts Options) ([]*kernel.Mesh, error) {
	if g == nil {
		return nil, nil
	}
	if !g.Retain() {
		return nil, ErrGraphReleased
	}
	defer g.Release()

	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	meshes := make([]*kernel.Mesh, len(g.Primitives))
	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(workers)
	for i, p := range g.Primitives {
		eg.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			if p.Solid == nil {
				return fmt.Errorf("tessellate: primitive %s has no solid", p.Name)
			}
			mesh, err := k.ToMesh(p.Solid, opts.Detail)
			if err != nil {
				return fmt.Errorf("tessellate: ToMesh failed for %s: %w", p.Name, err)
			}
			mesh.PartName = p.Name
			meshes[i] = mesh
			return nil
		})
	}

	if err := eg.Wait(); err != nil {
		for _, m := range meshes {
			if m != nil {
				m.Release()
			}
		}
		return nil, err
	}

	for _, m := range meshes {
		g.Own(m)
	}
	return meshes, nil
}

// Stats summarizes a set of meshes.
type Stats struct {
	Meshes    int
	Vertices  int
	Triangles int
	Bytes     int
}

// Summarize totals the sizes of meshes.
func Summarize(meshes []*kernel.Mesh) Stats {
	var s Stats
	for _, m := range meshes {
		s.Meshes++
		s.Vertices += m.VertexCount()
		s.Triangles += m.TriangleCount()
		s.Bytes += m.SizeBytes()
	}
	return s
}
