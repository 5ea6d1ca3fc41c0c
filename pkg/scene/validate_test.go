package scene

import (
	"math"
	"strings"
	"testing"

	"github.com/chazu/shelfwright/pkg/shelf"
	v3 "github.com/deadsy/sdfx/vec/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func hasFinding(findings []ValidationError, substr string) bool {
	for _, f := range findings {
		if strings.Contains(f.Message, substr) {
			return true
		}
	}
	return false
}

func validGraph() *Graph {
	cfg := shelf.DefaultConfiguration()
	g := New(cfg, shelf.DefaultMaterials())
	g.Add(board("bottom", RoleCarcass, v3.Vec{Y: 1}, v3.Vec{X: 150, Y: 2, Z: 30}))
	g.Add(board("top", RoleCarcass, v3.Vec{Y: 199}, v3.Vec{X: 150, Y: 2, Z: 30}))
	door := board("door-0", RoleDoor, v3.Vec{Y: 100, Z: 14.5}, v3.Vec{X: 46.83, Y: 195.5, Z: 1})
	g.Add(door)
	return g
}

func TestValidateCleanGraph(t *testing.T) {
	res := Validate(validGraph())
	assert.True(t, res.OK(), "%v", res.Errors)
	assert.Empty(t, res.Warnings)
}

func TestValidateErrors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(g *Graph)
		substr string
	}{
		{"duplicate name", func(g *Graph) {
			g.Add(board("top", RoleShelf, v3.Vec{Y: 50}, v3.Vec{X: 146, Y: 2, Z: 28}))
		}, "duplicate"},
		{"zero size", func(g *Graph) {
			g.Primitives[0].Geometry.Size.Y = 0
		}, "finite and positive"},
		{"nan size", func(g *Graph) {
			g.Primitives[0].Geometry.Size.X = math.NaN()
		}, "finite and positive"},
		{"inf position", func(g *Graph) {
			g.Primitives[1].Transform.Position.X = math.Inf(1)
		}, "transform is not finite"},
		{"unknown material", func(g *Graph) {
			g.Primitives[1].Material = "walnut"
		}, `material "walnut"`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := validGraph()
			tt.mutate(g)
			res := Validate(g)
			require.False(t, res.OK())
			assert.True(t, hasFinding(res.Errors, tt.substr), "%v", res.Errors)
		})
	}
}

func TestValidateEnvelopeWarnings(t *testing.T) {
	g := validGraph()
	g.Add(board("shelf-stray", RoleShelf, v3.Vec{X: 10, Y: 50}, v3.Vec{X: 146, Y: 2, Z: 28}))
	res := Validate(g)
	assert.True(t, res.OK(), "envelope findings never block")
	require.Len(t, res.Warnings, 1)
	assert.Equal(t, "shelf-stray", res.Warnings[0].Primitive)
	assert.Equal(t, SeverityWarning, res.Warnings[0].Severity)
}

func TestValidateDoorMayProtrudeInZ(t *testing.T) {
	g := validGraph()
	g.Lookup("door-0").Transform.Position.Z = 15.5
	res := Validate(g)
	assert.Empty(t, res.Warnings)
}

func TestValidationErrorString(t *testing.T) {
	e := ValidationError{Primitive: "left", Message: "bad", Severity: SeverityError}
	assert.Equal(t, "[error] left: bad", e.Error())
	e = ValidationError{Message: "graph", Severity: SeverityWarning}
	assert.Equal(t, "[warning] graph", e.Error())
}
