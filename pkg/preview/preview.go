// Package preview keeps the currently installed scene graph of an
// interactive editor and replaces it on every configuration change.
//
// Each change is built synchronously. The new graph is swapped in
// atomically and the previous graph is released afterwards, so a redraw
// loop never sees a partially built graph. A frame that leased the old
// graph with Acquire keeps its buffers alive until the lease is returned.
package preview

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/chazu/shelfwright/pkg/generator"
	"github.com/chazu/shelfwright/pkg/scene"
	"github.com/chazu/shelfwright/pkg/shelf"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

// Preview owns the installed scene graph.
type Preview struct {
	gen     *generator.Generator
	log     *zap.Logger
	metrics *Metrics

	generation atomic.Uint64
	installed  atomic.Pointer[scene.Graph]
	ready      atomic.Bool

	mu        sync.Mutex // serializes installs and guards the fields below
	current   shelf.Configuration
	listeners []Listener
}

// Option configures a Preview.
type Option func(*options)

type options struct {
	gen      *generator.Generator
	log      *zap.Logger
	reg      prometheus.Registerer
	initial  shelf.Configuration
	ready    bool
	listener []Listener
}

// WithGenerator sets the generator used for rebuilds.
func WithGenerator(g *generator.Generator) Option {
	return func(o *options) { o.gen = g }
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(o *options) { o.log = l }
}

// WithRegisterer registers the preview metrics with reg.
func WithRegisterer(reg prometheus.Registerer) Option {
	return func(o *options) { o.reg = reg }
}

// WithInitial sets the configuration built when the surface becomes ready.
func WithInitial(cfg shelf.Configuration) Option {
	return func(o *options) { o.initial = cfg }
}

// WithSurfaceReady starts with the surface already ready. Changes are then
// built immediately.
func WithSurfaceReady() Option {
	return func(o *options) { o.ready = true }
}

// WithListener subscribes l before any change is handled.
func WithListener(l Listener) Option {
	return func(o *options) { o.listener = append(o.listener, l) }
}

// New creates a Preview. Nothing is built until the surface is ready.
func New(opts ...Option) *Preview {
	o := options{initial: shelf.DefaultConfiguration()}
	for _, opt := range opts {
		opt(&o)
	}
	if o.log == nil {
		o.log = zap.NewNop()
	}
	if o.gen == nil {
		o.gen = generator.New(generator.WithLogger(o.log))
	}

	p := &Preview{
		gen:       o.gen,
		log:       o.log.With(zap.String("component", "preview")),
		metrics:   NewMetrics("shelfwright", o.reg),
		current:   o.initial,
		listeners: o.listener,
	}
	p.ready.Store(o.ready)
	return p
}

// Subscribe adds a listener. Listeners run synchronously after each
// change, outside the install lock.
func (p *Preview) Subscribe(l Listener) {
	p.mu.Lock()
	p.listeners = append(p.listeners, l)
	p.mu.Unlock()
}

// Configuration returns the most recently requested configuration.
func (p *Preview) Configuration() shelf.Configuration {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.current
}

// SetConfiguration requests a rebuild for cfg. Before the surface is
// ready the request is only remembered.
func (p *Preview) SetConfiguration(cfg shelf.Configuration) Outcome {
	gen := p.generation.Add(1)

	p.mu.Lock()
	p.current = cfg
	p.mu.Unlock()

	if !p.ready.Load() {
		o := p.retained(StatusDeferred, gen, nil)
		p.log.Debug("surface not ready, deferring build", zap.Uint64("generation", gen))
		p.finish(o, 0)
		return o
	}
	return p.rebuild(gen, cfg)
}

// SurfaceReady marks the output surface ready and builds the most recent
// configuration. Later calls rebuild the same configuration.
func (p *Preview) SurfaceReady() Outcome {
	p.ready.Store(true)
	gen := p.generation.Add(1)
	return p.rebuild(gen, p.Configuration())
}

// rebuild generates cfg and installs it if no newer change arrived.
func (p *Preview) rebuild(gen uint64, cfg shelf.Configuration) Outcome {
	start := time.Now()
	g, err := p.gen.Generate(cfg)
	took := time.Since(start)

	if err != nil {
		o := p.retained(StatusRejected, gen, err)
		p.log.Warn("configuration rejected, keeping previous graph",
			zap.Uint64("generation", gen),
			zap.Error(err))
		p.finish(o, took)
		return o
	}

	p.mu.Lock()
	if p.generation.Load() != gen {
		p.mu.Unlock()
		g.Release()
		o := p.retained(StatusSuperseded, gen, nil)
		p.log.Debug("build superseded", zap.Uint64("generation", gen))
		p.finish(o, took)
		return o
	}
	g.OnRelease(p.metrics.released)
	old := p.installed.Swap(g)
	p.mu.Unlock()

	if old != nil {
		old.Release()
	}
	p.metrics.installed(len(g.Primitives), len(g.Lights))

	o := Outcome{
		Status:      StatusInstalled,
		Generation:  gen,
		GraphID:     g.ID,
		Fingerprint: g.Fingerprint,
		Bounds:      g.Bounds,
	}
	p.log.Info("installed scene graph",
		zap.Uint64("generation", gen),
		zap.String("graph", g.ID.String()),
		zap.Int("primitives", len(g.Primitives)),
		zap.Int("lights", len(g.Lights)),
		zap.Duration("took", took))
	p.finish(o, took)
	return o
}

// retained builds an outcome describing the graph that stays installed.
func (p *Preview) retained(status Status, gen uint64, err error) Outcome {
	o := Outcome{Status: status, Generation: gen, Err: err}
	if g, release := p.Acquire(); g != nil {
		o.GraphID, o.Fingerprint, o.Bounds = g.ID, g.Fingerprint, g.Bounds
		release()
	}
	return o
}

func (p *Preview) finish(o Outcome, took time.Duration) {
	p.metrics.observe(o, took)

	p.mu.Lock()
	listeners := append([]Listener(nil), p.listeners...)
	p.mu.Unlock()
	for _, l := range listeners {
		l(o)
	}
}

// Acquire leases the installed graph for one frame. The caller must call
// release when done; until then the graph's buffers stay valid even if a
// newer graph is installed. It returns nil when nothing is installed.
func (p *Preview) Acquire() (g *scene.Graph, release func()) {
	for {
		g = p.installed.Load()
		if g == nil {
			return nil, func() {}
		}
		if g.Retain() {
			return g, func() { g.Release() }
		}
		// Released between Load and Retain; the pointer has moved on.
	}
}

// Close releases the installed graph. Outstanding leases stay valid.
func (p *Preview) Close() {
	p.mu.Lock()
	old := p.installed.Swap(nil)
	p.mu.Unlock()
	if old != nil {
		old.Release()
	}
	p.metrics.installed(0, 0)
}
