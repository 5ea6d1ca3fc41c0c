package scene

import (
	"fmt"
	"math"

	v3 "github.com/deadsy/sdfx/vec/v3"
)

// Severity indicates whether a validation finding makes a graph unusable
// or is merely informational.
type Severity int

const (
	SeverityError   Severity = iota // graph must not be installed
	SeverityWarning                 // informational
)

func (s Severity) String() string {
	switch s {
	case SeverityError:
		return "error"
	case SeverityWarning:
		return "warning"
	default:
		return fmt.Sprintf("Severity(%d)", int(s))
	}
}

// ValidationError describes a single validation finding.
type ValidationError struct {
	Primitive string // offending primitive name (empty if graph-level)
	Message   string
	Severity  Severity
}

func (e ValidationError) Error() string {
	if e.Primitive == "" {
		return fmt.Sprintf("[%s] %s", e.Severity, e.Message)
	}
	return fmt.Sprintf("[%s] %s: %s", e.Severity, e.Primitive, e.Message)
}

// ValidationResult separates blocking errors from advisory warnings.
type ValidationResult struct {
	Errors   []ValidationError
	Warnings []ValidationError
}

// OK reports whether there are no blocking errors.
func (r ValidationResult) OK() bool {
	return len(r.Errors) == 0
}

// envelopeTolerance absorbs floating point drift at the carcass faces.
const envelopeTolerance = 1e-6

// Validate checks a generated graph. It is read-only.
//
// Errors: non-finite or non-positive primitive sizes, duplicate names and
// materials missing from the graph's table. Warnings: boards that leave
// the unit's outer envelope.
func Validate(g *Graph) ValidationResult {
	var res ValidationResult
	add := func(e ValidationError) {
		if e.Severity == SeverityWarning {
			res.Warnings = append(res.Warnings, e)
		} else {
			res.Errors = append(res.Errors, e)
		}
	}

	seen := make(map[string]bool, len(g.Primitives))
	for _, p := range g.Primitives {
		if seen[p.Name] {
			add(ValidationError{Primitive: p.Name, Message: "duplicate primitive name", Severity: SeverityError})
		}
		seen[p.Name] = true

		if !finitePositive(p.Geometry.Size) {
			add(ValidationError{
				Primitive: p.Name,
				Message:   fmt.Sprintf("size %v must be finite and positive", p.Geometry.Size),
				Severity:  SeverityError,
			})
		}
		if !finite(p.Transform.Position) || !finite(p.Transform.Rotation) {
			add(ValidationError{Primitive: p.Name, Message: "transform is not finite", Severity: SeverityError})
		}
		if _, ok := g.Materials.Lookup(p.Material); !ok {
			add(ValidationError{
				Primitive: p.Name,
				Message:   fmt.Sprintf("material %q is not defined", p.Material),
				Severity:  SeverityError,
			})
		}
	}

	for _, e := range validateEnvelope(g) {
		add(e)
	}
	return res
}

// validateEnvelope warns about axis-aligned boards that poke outside
// [-W/2, W/2] × [0, H] × [-D/2, D/2]. Door leaves sit proud of the front
// face by design and are checked only in x and y.
func validateEnvelope(g *Graph) []ValidationError {
	c := g.Config
	minB := v3.Vec{X: -c.Width / 2, Y: 0, Z: -c.Depth / 2}
	maxB := v3.Vec{X: c.Width / 2, Y: c.Height, Z: c.Depth / 2}

	var errs []ValidationError
	for _, p := range g.Boards() {
		half := p.Geometry.Size.MulScalar(0.5)
		pmin := p.Transform.Position.Sub(half)
		pmax := p.Transform.Position.Add(half)
		out := pmin.X < minB.X-envelopeTolerance || pmax.X > maxB.X+envelopeTolerance ||
			pmin.Y < minB.Y-envelopeTolerance || pmax.Y > maxB.Y+envelopeTolerance
		if p.Role != RoleDoor {
			out = out || pmin.Z < minB.Z-envelopeTolerance || pmax.Z > maxB.Z+envelopeTolerance
		}
		if out {
			errs = append(errs, ValidationError{
				Primitive: p.Name,
				Message:   fmt.Sprintf("extends outside the unit envelope (%v..%v)", pmin, pmax),
				Severity:  SeverityWarning,
			})
		}
	}
	return errs
}

func finite(v v3.Vec) bool {
	for _, f := range []float64{v.X, v.Y, v.Z} {
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return false
		}
	}
	return true
}

func finitePositive(v v3.Vec) bool {
	return finite(v) && v.X > 0 && v.Y > 0 && v.Z > 0
}
