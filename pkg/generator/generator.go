package generator

import (
	"fmt"

	"github.com/chazu/shelfwright/pkg/kernel"
	"github.com/chazu/shelfwright/pkg/kernel/sdfx"
	"github.com/chazu/shelfwright/pkg/scene"
	"github.com/chazu/shelfwright/pkg/shelf"
	"go.uber.org/zap"
)

// Generator maps configurations to scene graphs. It holds no state between
// calls, so one Generator may serve concurrent callers.
type Generator struct {
	kernel    kernel.Kernel
	materials shelf.MaterialTable
	log       *zap.Logger
}

// Option configures a Generator.
type Option func(*Generator)

// WithKernel overrides the geometry kernel.
func WithKernel(k kernel.Kernel) Option {
	return func(g *Generator) { g.kernel = k }
}

// WithMaterials overrides entries of the default material table.
func WithMaterials(t shelf.MaterialTable) Option {
	return func(g *Generator) { g.materials = g.materials.Merge(t) }
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(g *Generator) { g.log = l }
}

// New returns a Generator backed by the sdfx kernel unless overridden.
func New(opts ...Option) *Generator {
	g := &Generator{
		kernel:    sdfx.New(),
		materials: shelf.DefaultMaterials(),
		log:       zap.NewNop(),
	}
	for _, o := range opts {
		o(g)
	}
	g.log = g.log.With(zap.String("component", "generator"))
	return g
}

// Generate builds a graph with the default generator.
func Generate(cfg shelf.Configuration) (*scene.Graph, error) {
	return New().Generate(cfg)
}

// Generate normalizes cfg and builds its graph. Invalid configurations
// return an error wrapping shelf.ErrDegenerateConfig, shelf.ErrInvalidCount
// or shelf.ErrUnknownMaterial, and no kernel call is made for them. The
// material must be a board preset of the generator's table.
//
// The returned graph holds one reference owned by the caller.
func (gen *Generator) Generate(cfg shelf.Configuration) (*scene.Graph, error) {
	cfg, err := shelf.NormalizeWith(cfg, gen.materials)
	if err != nil {
		return nil, err
	}

	g := scene.New(cfg, gen.materials)
	fail := func(err error, pending ...[]*scene.Primitive) (*scene.Graph, error) {
		discard(pending...)
		g.Release()
		return nil, fmt.Errorf("generate %s: %w", g.Fingerprint, err)
	}

	factory := NewGeometryFactory(gen.kernel, cfg, g.Own)

	carcass, err := CarcassBuilder{Factory: factory}.Build(cfg)
	if err != nil {
		return fail(err)
	}
	interior, grid, err := InteriorBuilder{Factory: factory}.Build(cfg)
	if err != nil {
		return fail(err, carcass)
	}
	addons, err := AddonBuilder{Kernel: gen.kernel, Factory: factory, own: g.Own}.Build(cfg, grid)
	if err != nil {
		return fail(err, carcass, interior)
	}
	if err := (Assembler{}).Assemble(g, carcass, interior, addons, grid); err != nil {
		return fail(err, carcass, interior, addons.Primitives)
	}

	res := scene.Validate(g)
	if !res.OK() {
		return fail(fmt.Errorf("%w: %v", shelf.ErrDegenerateConfig, res.Errors[0]))
	}
	for _, w := range res.Warnings {
		gen.log.Warn("primitive outside envelope",
			zap.String("primitive", w.Primitive),
			zap.String("detail", w.Message))
	}

	gen.log.Debug("generated shelf",
		zap.String("graph", g.ID.String()),
		zap.String("fingerprint", g.Fingerprint),
		zap.Int("primitives", len(g.Primitives)),
		zap.Int("lights", len(g.Lights)),
		zap.Int("buffers", g.Buffers()),
	)
	return g, nil
}
