package engine

import (
	"errors"
	"strings"
	"testing"

	"github.com/chazu/shelfwright/pkg/shelf"
	zygo "github.com/glycerine/zygomys/zygo"
)

// ---------------------------------------------------------------------------
// Preprocessing tests
// ---------------------------------------------------------------------------

func TestPreprocessKeywords(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		expect string
	}{
		{
			name:   "simple keyword",
			input:  `(shelf :width 150)`,
			expect: `(shelf "__kw_width" 150)`,
		},
		{
			name:   "keyword value",
			input:  `(material :matte-black)`,
			expect: `(material "__kw_matte-black")`,
		},
		{
			name:   "keyword in string preserved",
			input:  `"thing with :keyword inside"`,
			expect: `"thing with :keyword inside"`,
		},
		{
			name:   "assignment operator preserved",
			input:  `(def x := 10)`,
			expect: `(def x := 10)`,
		},
		{
			name:   "kebab-case identifier",
			input:  `(def shelf-width 120)`,
			expect: `(def shelf_width 120)`,
		},
		{
			name:   "minus operator preserved",
			input:  `(- 10 5)`,
			expect: `(- 10 5)`,
		},
		{
			name:   "comment converted to // style",
			input:  `;; comment with :keyword`,
			expect: `// comment with :keyword`,
		},
		{
			name:   "single semicolon comment",
			input:  `; simple comment`,
			expect: `// simple comment`,
		},
		{
			name:   "hyphen in keyword preserved",
			input:  `:vertical-divisions`,
			expect: `"__kw_vertical-divisions"`,
		},
		{
			name:   "edge profile label",
			input:  `(shelf :edge-profile "Rounded/Beveled")`,
			expect: `(shelf "__kw_edge-profile" "Rounded/Beveled")`,
		},
		{
			name:   "escaped quote in label",
			input:  `(material "Matte \"Black\" :x")`,
			expect: `(material "Matte \"Black\" :x")`,
		},
		{
			name:   "raw string",
			input:  "(material `gloss-white`)",
			expect: "(material `gloss-white`)",
		},
		{
			name:   "header comment then form",
			input:  ";; Two-bay wardrobe\n(def bay-width 90)",
			expect: "// Two-bay wardrobe\n(def bay_width 90)",
		},
		{
			name:   "trailing colon",
			input:  `(shelf :`,
			expect: `(shelf :`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := preprocessSource(tt.input)
			if got != tt.expect {
				t.Errorf("preprocessSource(%q) = %q, want %q", tt.input, got, tt.expect)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// (shelf ...) tests
// ---------------------------------------------------------------------------

func mustEvaluate(t *testing.T, source string) shelf.Configuration {
	t.Helper()
	cfg, evalErrs, err := NewEngine().Evaluate(source)
	if err != nil {
		t.Fatalf("fatal error: %v", err)
	}
	if len(evalErrs) > 0 {
		t.Fatalf("eval errors: %v", evalErrs)
	}
	if cfg == nil {
		t.Fatal("expected non-nil configuration")
	}
	return *cfg
}

func TestFullShelf(t *testing.T) {
	cfg := mustEvaluate(t, `
;; a wardrobe
(shelf :width 180 :height 210 :depth 60
       :levels 3 :divisions 2 :thickness 1.8
       :material :matte-black
       :edge :rounded
       :doors true :lamps false :hangers true)
`)
	want := shelf.Configuration{
		Width: 180, Height: 210, Depth: 60,
		HorizontalLevels: 3, VerticalDivisions: 2, BoardThickness: 1.8,
		Material: shelf.MatteBlack, EdgeProfile: shelf.Rounded,
		Doors: true, Hangers: true,
	}
	if cfg != want {
		t.Errorf("got %+v\nwant %+v", cfg, want)
	}
}

func TestShelfStartsFromDefaults(t *testing.T) {
	cfg := mustEvaluate(t, `(shelf :lamps true)`)
	want := shelf.DefaultConfiguration()
	want.Lamps = true
	if cfg != want {
		t.Errorf("got %+v, want %+v", cfg, want)
	}
}

func TestLongKeywordNames(t *testing.T) {
	cfg := mustEvaluate(t, `(shelf :horizontal-levels 2 :vertical-divisions 5 :board-thickness 1 :edge-profile "Rounded/Beveled")`)
	if cfg.HorizontalLevels != 2 || cfg.VerticalDivisions != 5 {
		t.Errorf("counts = %d x %d, want 2 x 5", cfg.HorizontalLevels, cfg.VerticalDivisions)
	}
	if cfg.BoardThickness != 1 {
		t.Errorf("thickness = %g, want 1", cfg.BoardThickness)
	}
	if cfg.EdgeProfile != shelf.Rounded {
		t.Errorf("edge = %s, want rounded", cfg.EdgeProfile)
	}
}

func TestMaterialAndEdgeBuiltins(t *testing.T) {
	cfg := mustEvaluate(t, `
(def finish (material "Matte Black"))
(def profile (edge "Sharp 90°"))
(shelf :material finish :edge profile)
`)
	if cfg.Material != shelf.MatteBlack {
		t.Errorf("material = %s, want matte-black", cfg.Material)
	}
	if cfg.EdgeProfile != shelf.Sharp {
		t.Errorf("edge = %s, want sharp", cfg.EdgeProfile)
	}
}

func TestVariableReference(t *testing.T) {
	cfg := mustEvaluate(t, `
(def unit-width 90)
(shelf :width unit-width :height (* unit-width 2))
`)
	if cfg.Width != 90 || cfg.Height != 180 {
		t.Errorf("got %g x %g, want 90 x 180", cfg.Width, cfg.Height)
	}
}

func TestWholeFloatCounts(t *testing.T) {
	cfg := mustEvaluate(t, `(shelf :levels 3.0)`)
	if cfg.HorizontalLevels != 3 {
		t.Errorf("levels = %d, want 3", cfg.HorizontalLevels)
	}
}

func TestShelfErrors(t *testing.T) {
	tests := []struct {
		name   string
		source string
		substr string
	}{
		{"unknown keyword", `(shelf :colour :red)`, "unknown keyword"},
		{"positional argument", `(shelf 150)`, "positional"},
		{"called twice", "(shelf :width 100)\n(shelf :width 120)", "exactly one"},
		{"bad width", `(shelf :width "wide")`, "expected number"},
		{"fractional levels", `(shelf :levels 2.5)`, "whole number"},
		{"bad bool", `(shelf :doors 1)`, "true or false"},
		{"unknown material", `(shelf :material :walnut)`, "unknown material"},
		{"unknown edge", `(edge :chamfered)`, "unknown edge profile"},
		{"material arity", `(material)`, "exactly 1 argument"},
		{"repeated keyword", `(shelf :width 100 :width 120)`, ":width given more than once"},
		{"alias and long name", `(shelf :levels 2 :horizontal-levels 5)`, ":levels and :horizontal-levels both set HorizontalLevels"},
		{"edge aliases", `(shelf :edge-profile :rounded :edge :sharp)`, "both set EdgeProfile"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, evalErrs, err := NewEngine().Evaluate(tt.source)
			if err != nil {
				t.Fatalf("expected non-fatal eval error, got fatal: %v", err)
			}
			if cfg != nil {
				t.Fatalf("expected nil configuration, got %+v", *cfg)
			}
			if len(evalErrs) == 0 {
				t.Fatal("expected eval errors")
			}
			if !strings.Contains(evalErrs[0].Message, tt.substr) {
				t.Errorf("message = %q, want containing %q", evalErrs[0].Message, tt.substr)
			}
		})
	}
}

// TestAliasConflictIsStable ensures a field named twice is rejected the
// same way on every run, whatever order the aliases come in.
func TestAliasConflictIsStable(t *testing.T) {
	sources := map[string]string{
		`(shelf :levels 2 :horizontal-levels 5)`:               ":levels and :horizontal-levels",
		`(shelf :horizontal-levels 5 :levels 2)`:               ":horizontal-levels and :levels",
		`(shelf :divisions 1 :width 90 :vertical-divisions 3)`: ":divisions and :vertical-divisions",
	}
	eng := NewEngine()
	for source, want := range sources {
		for i := 0; i < 50; i++ {
			cfg, evalErrs, err := eng.Evaluate(source)
			if err != nil {
				t.Fatalf("%s: fatal error: %v", source, err)
			}
			if cfg != nil {
				t.Fatalf("%s: run %d accepted %+v", source, i, *cfg)
			}
			if len(evalErrs) != 1 || !strings.Contains(evalErrs[0].Message, want) {
				t.Fatalf("%s: run %d errors = %v, want %q", source, i, evalErrs, want)
			}
		}
	}
}

func TestParseArgsKeepsSourceOrder(t *testing.T) {
	args := []zygo.Sexp{
		&zygo.SexpStr{S: kwPrefix + "height"}, &zygo.SexpInt{Val: 1},
		&zygo.SexpStr{S: kwPrefix + "width"}, &zygo.SexpInt{Val: 2},
		&zygo.SexpStr{S: kwPrefix + "depth"}, &zygo.SexpInt{Val: 3},
	}
	pa, err := parseArgs(args)
	if err != nil {
		t.Fatalf("parseArgs: %v", err)
	}
	var names []string
	for _, a := range pa.kw {
		names = append(names, a.name)
	}
	if got := strings.Join(names, ","); got != "height,width,depth" {
		t.Errorf("order = %s, want height,width,depth", got)
	}

	_, err = parseArgs(append(args, &zygo.SexpStr{S: kwPrefix + "width"}, &zygo.SexpInt{Val: 4}))
	if err == nil || !strings.Contains(err.Error(), ":width given more than once") {
		t.Errorf("duplicate keyword error = %v", err)
	}
}

func TestCustomBoardMaterial(t *testing.T) {
	table := shelf.DefaultMaterials().Merge(shelf.MaterialTable{
		"oak": {Name: "Natural Oak", Color: 0xb5894f, Board: true},
	})
	eng := NewEngine(WithMaterials(table))

	for _, source := range []string{
		`(shelf :material :oak)`,
		`(shelf :material (material "Natural Oak"))`,
	} {
		cfg, evalErrs, err := eng.Evaluate(source)
		if err != nil || len(evalErrs) > 0 {
			t.Fatalf("%s: err=%v evalErrs=%v", source, err, evalErrs)
		}
		if cfg.Material != "oak" {
			t.Errorf("%s: material = %s, want oak", source, cfg.Material)
		}
	}

	// Without the table oak is unknown.
	_, evalErrs, err := NewEngine().Evaluate(`(shelf :material :oak)`)
	if err != nil {
		t.Fatalf("fatal error: %v", err)
	}
	if len(evalErrs) == 0 || !strings.Contains(evalErrs[0].Message, "unknown material") {
		t.Errorf("errors = %v, want unknown material", evalErrs)
	}
}

func TestBaseMaterialCheckedAgainstTable(t *testing.T) {
	base := shelf.DefaultConfiguration()
	base.Material = "oak"
	_, evalErrs, err := NewEngine(WithBase(base)).Evaluate("")
	if err != nil {
		t.Fatalf("fatal error: %v", err)
	}
	if len(evalErrs) != 1 || evalErrs[0].Field != "material" {
		t.Fatalf("errors = %v, want one material error", evalErrs)
	}

	table := shelf.MaterialTable{"oak": {Name: "Oak", Board: true}}
	cfg, evalErrs, err := NewEngine(WithBase(base), WithMaterials(table)).Evaluate("")
	if err != nil || len(evalErrs) > 0 {
		t.Fatalf("err=%v evalErrs=%v", err, evalErrs)
	}
	if cfg.Material != "oak" {
		t.Errorf("material = %s, want oak", cfg.Material)
	}
}

func TestRejectedConfigurationReportsFields(t *testing.T) {
	cfg, evalErrs, err := NewEngine().Evaluate(`(shelf :levels 0 :divisions 0)`)
	if err != nil {
		t.Fatalf("unexpected fatal error: %v", err)
	}
	if cfg != nil {
		t.Fatal("expected nil configuration")
	}
	if len(evalErrs) != 2 {
		t.Fatalf("expected 2 eval errors, got %d: %v", len(evalErrs), evalErrs)
	}
	fields := []string{evalErrs[0].Field, evalErrs[1].Field}
	if fields[0] != "horizontalLevels" || fields[1] != "verticalDivisions" {
		t.Errorf("fields = %v", fields)
	}
	if !strings.Contains(evalErrs[0].Message, shelf.ErrInvalidCount.Error()) {
		t.Errorf("message = %q", evalErrs[0].Message)
	}
}

func TestConfigErrorsSingle(t *testing.T) {
	ce := &shelf.ConfigError{Kind: shelf.ErrDegenerateConfig, Field: "width", Value: -1, Reason: "must be positive"}
	errs := configErrors(ce)
	if len(errs) != 1 || errs[0].Field != "width" {
		t.Fatalf("got %v", errs)
	}
	errs = configErrors(errors.New("plain"))
	if len(errs) != 1 || errs[0].Field != "" || errs[0].Message != "plain" {
		t.Fatalf("got %v", errs)
	}
}

func TestArithmeticStillWorks(t *testing.T) {
	cfg := mustEvaluate(t, `
(def x 10)
(def y 20)
(+ x y)
`)
	if cfg != shelf.DefaultConfiguration() {
		t.Errorf("expected defaults, got %+v", cfg)
	}
}
