package main

import (
	"context"
	"fmt"

	"github.com/chazu/shelfwright/pkg/engine"
	"github.com/chazu/shelfwright/pkg/generator"
	"github.com/chazu/shelfwright/pkg/kernel"
	"github.com/chazu/shelfwright/pkg/kernel/manifold"
	"github.com/chazu/shelfwright/pkg/kernel/sdfx"
	"github.com/chazu/shelfwright/pkg/preview"
	"github.com/chazu/shelfwright/pkg/scene"
	"github.com/chazu/shelfwright/pkg/settings"
	"github.com/chazu/shelfwright/pkg/tessellate"
	v3 "github.com/deadsy/sdfx/vec/v3"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

// App drives one preview from .shelf sources.
type App struct {
	settings *settings.Settings
	engine   *engine.Engine
	preview  *preview.Preview
	kernel   kernel.Kernel
	log      *zap.Logger
}

// PartData is the JSON-serializable form of one primitive.
type PartData struct {
	Name          string     `json:"name"`
	Role          string     `json:"role"`
	Shape         string     `json:"shape"`
	Size          [3]float64 `json:"size"`
	Position      [3]float64 `json:"position"`
	Rotation      [3]float64 `json:"rotation"`
	Material      string     `json:"material"`
	Color         string     `json:"color"`
	CastShadow    bool       `json:"castShadow"`
	ReceiveShadow bool       `json:"receiveShadow"`
	Vertices      int        `json:"vertices,omitempty"`
	Triangles     int        `json:"triangles,omitempty"`
}

// LightData is the JSON-serializable form of a lamp light.
type LightData struct {
	Name      string     `json:"name"`
	Color     string     `json:"color"`
	Intensity float64    `json:"intensity"`
	Range     float64    `json:"range"`
	Position  [3]float64 `json:"position"`
}

// BoundsData is the JSON-serializable bounding box.
type BoundsData struct {
	Min    [3]float64 `json:"min"`
	Max    [3]float64 `json:"max"`
	Center [3]float64 `json:"center"`
}

// EvalErrorData is a JSON-serializable evaluation or validation message.
type EvalErrorData struct {
	Line    int    `json:"line"`
	Field   string `json:"field,omitempty"`
	Message string `json:"message"`
}

// EvalResult is everything one evaluation produced.
type EvalResult struct {
	Status      string            `json:"status"`
	Generation  uint64            `json:"generation"`
	GraphID     string            `json:"graphId,omitempty"`
	Fingerprint string            `json:"fingerprint,omitempty"`
	Parts       []PartData        `json:"parts"`
	Lights      []LightData       `json:"lights"`
	Bounds      BoundsData        `json:"bounds"`
	Mesh        *tessellate.Stats `json:"mesh,omitempty"`
	Errors      []EvalErrorData   `json:"errors"`
	Warnings    []EvalErrorData   `json:"warnings"`
}

// NewApp wires an engine, a generator and a ready preview from s.
// reg may be nil.
func NewApp(s *settings.Settings, log *zap.Logger, reg prometheus.Registerer) (*App, error) {
	k, err := newKernel(s.Mesh.Kernel)
	if err != nil {
		return nil, err
	}
	gen := generator.New(
		generator.WithKernel(k),
		generator.WithMaterials(s.Materials),
		generator.WithLogger(log),
	)
	opts := []preview.Option{
		preview.WithGenerator(gen),
		preview.WithLogger(log),
		preview.WithInitial(s.Shelf),
		preview.WithSurfaceReady(),
	}
	if reg != nil {
		opts = append(opts, preview.WithRegisterer(reg))
	}
	eng := engine.NewEngine(
		engine.WithBase(s.Shelf),
		engine.WithMaterials(s.MaterialTable()),
		engine.WithTimeout(s.Engine.Timeout),
	)
	return &App{
		settings: s,
		engine:   eng,
		preview:  preview.New(opts...),
		kernel:   k,
		log:      log,
	}, nil
}

// newKernel selects the geometry backend by name.
func newKernel(name string) (kernel.Kernel, error) {
	switch name {
	case "", "sdfx":
		return sdfx.New(), nil
	case "manifold":
		k, err := manifold.New()
		if err != nil {
			return nil, fmt.Errorf("kernel %q: %w", name, err)
		}
		return k, nil
	default:
		return nil, fmt.Errorf("unknown kernel %q", name)
	}
}

// Evaluate runs source, installs the unit it describes and reports it.
// With mesh set every primitive is also tessellated.
func (a *App) Evaluate(ctx context.Context, source string, mesh bool) EvalResult {
	result := EvalResult{
		Parts:    []PartData{},
		Lights:   []LightData{},
		Errors:   []EvalErrorData{},
		Warnings: []EvalErrorData{},
	}

	cfg, evalErrs, err := a.engine.Evaluate(source)
	if err != nil {
		a.log.Error("evaluate failed", zap.Error(err))
		result.Status = "failed"
		result.Errors = append(result.Errors, EvalErrorData{Message: err.Error()})
		return result
	}
	if len(evalErrs) > 0 {
		result.Status = "failed"
		for _, e := range evalErrs {
			result.Errors = append(result.Errors, EvalErrorData{
				Line:    e.Line,
				Field:   e.Field,
				Message: e.Message,
			})
		}
		return result
	}

	o := a.preview.SetConfiguration(*cfg)
	result.Status = o.Status.String()
	result.Generation = o.Generation
	if o.Status != preview.StatusInstalled {
		msg := fmt.Sprintf("configuration not installed: %s", o.Status)
		if o.Err != nil {
			msg = o.Err.Error()
		}
		result.Errors = append(result.Errors, EvalErrorData{Message: msg})
		return result
	}

	g, release := a.preview.Acquire()
	defer release()
	if g == nil {
		result.Errors = append(result.Errors, EvalErrorData{Message: "no unit installed"})
		return result
	}

	result.GraphID = g.ID.String()
	result.Fingerprint = g.Fingerprint
	result.Bounds = BoundsData{
		Min:    vec(g.Bounds.Min),
		Max:    vec(g.Bounds.Max),
		Center: vec(g.Bounds.Center),
	}
	for _, p := range g.Primitives {
		result.Parts = append(result.Parts, partData(g, p))
	}
	for _, l := range g.Lights {
		result.Lights = append(result.Lights, LightData{
			Name:      l.Name,
			Color:     fmt.Sprintf("#%06x", l.Color&0xffffff),
			Intensity: l.Intensity,
			Range:     l.Range,
			Position:  vec(l.Position),
		})
	}
	for _, w := range scene.Validate(g).Warnings {
		result.Warnings = append(result.Warnings, EvalErrorData{Field: w.Primitive, Message: w.Message})
	}

	if !mesh {
		return result
	}
	meshes, err := tessellate.Tessellate(ctx, g, a.kernel, tessellate.Options{
		Detail:  a.settings.Mesh.Detail,
		Workers: a.settings.Mesh.Workers,
	})
	if err != nil {
		a.log.Error("tessellate failed", zap.Error(err))
		result.Errors = append(result.Errors, EvalErrorData{Message: "tessellation failed: " + err.Error()})
		return result
	}
	// Meshes come back in graph order.
	for i, m := range meshes {
		result.Parts[i].Vertices = m.VertexCount()
		result.Parts[i].Triangles = m.TriangleCount()
	}
	stats := tessellate.Summarize(meshes)
	result.Mesh = &stats
	return result
}

// Close releases the installed unit.
func (a *App) Close() {
	a.preview.Close()
}

func partData(g *scene.Graph, p *scene.Primitive) PartData {
	d := PartData{
		Name:          p.Name,
		Role:          p.Role.String(),
		Shape:         p.Geometry.Shape.String(),
		Size:          vec(p.Geometry.Size),
		Position:      vec(p.Transform.Position),
		Rotation:      vec(p.Transform.Rotation),
		Material:      string(p.Material),
		CastShadow:    p.CastShadow,
		ReceiveShadow: p.ReceiveShadow,
	}
	if m, ok := g.Materials.Lookup(p.Material); ok {
		d.Color = m.Hex()
	}
	return d
}

func vec(v v3.Vec) [3]float64 {
	return [3]float64{v.X, v.Y, v.Z}
}
