package engine

import (
	"fmt"
	"strings"

	"github.com/chazu/shelfwright/pkg/shelf"
	zygo "github.com/glycerine/zygomys/zygo"
)

// ---------------------------------------------------------------------------
// Source preprocessing
// ---------------------------------------------------------------------------

// preprocessSource rewrites a .shelf source into something zygomys reads.
// .shelf files follow Lisp conventions zygomys does not share:
//
//   - ;; comments, as at the top of examples/wardrobe.shelf, become //.
//   - Keywords such as :horizontal-levels or :matte-black become the
//     string "__kw_horizontal-levels", hyphens intact, so builtins can look
//     them up by their written name.
//   - Kebab-case names like unit-width become unit_width, since zygomys
//     reads the hyphen as subtraction. (- a b) and (- 10 5) are left alone.
//
// Nothing inside a "..." or `...` literal is rewritten, so
// :edge-profile "Rounded/Beveled" and (material "Matte Black") keep their
// labels. A := assignment is not a keyword.
func preprocessSource(source string) string {
	p := preprocessor{src: source}
	p.out.Grow(len(source) + len(source)/4)
	for p.i < len(p.src) {
		switch c := p.src[p.i]; {
		case c == '"' || c == '`':
			p.literal(c)
		case c == ';':
			p.comment()
		case c == ':' && p.keyword():
		case c == '-' && p.kebab():
		default:
			p.out.WriteByte(c)
			p.i++
		}
	}
	return p.out.String()
}

type preprocessor struct {
	src string
	i   int
	out strings.Builder
}

// literal copies a string literal opened by quote. Double-quoted literals
// honour backslash escapes; raw ones end at the next backtick.
func (p *preprocessor) literal(quote byte) {
	start := p.i
	p.i++
	for p.i < len(p.src) && p.src[p.i] != quote {
		if quote == '"' && p.src[p.i] == '\\' && p.i+1 < len(p.src) {
			p.i++
		}
		p.i++
	}
	if p.i < len(p.src) {
		p.i++
	}
	p.out.WriteString(p.src[start:p.i])
}

// comment turns a run of semicolons into // and copies the rest of the line.
func (p *preprocessor) comment() {
	for p.i < len(p.src) && p.src[p.i] == ';' {
		p.i++
	}
	end := strings.IndexByte(p.src[p.i:], '\n')
	if end < 0 {
		end = len(p.src) - p.i
	}
	p.out.WriteString("//")
	p.out.WriteString(p.src[p.i : p.i+end])
	p.i += end
}

// keyword rewrites :name at p.i and reports whether it did.
func (p *preprocessor) keyword() bool {
	if p.i+1 >= len(p.src) {
		return false
	}
	if p.src[p.i+1] == '=' {
		p.out.WriteString(":=")
		p.i += 2
		return true
	}
	if !isLetter(p.src[p.i+1]) {
		return false
	}
	j := p.i + 1
	for j < len(p.src) && isKWChar(p.src[j]) {
		j++
	}
	fmt.Fprintf(&p.out, "%q", kwPrefix+p.src[p.i+1:j])
	p.i = j
	return true
}

// kebab rewrites a hyphen joining two parts of a name and reports whether
// it did.
func (p *preprocessor) kebab() bool {
	if p.i == 0 || p.i+1 >= len(p.src) ||
		!isIdentChar(p.src[p.i-1]) || !isIdentStartChar(p.src[p.i+1]) {
		return false
	}
	p.out.WriteByte('_')
	p.i++
	return true
}

func isLetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isKWChar(c byte) bool {
	return isLetter(c) || (c >= '0' && c <= '9') || c == '-' || c == '_'
}

func isIdentChar(c byte) bool {
	return isLetter(c) || (c >= '0' && c <= '9') || c == '_'
}

func isIdentStartChar(c byte) bool {
	return isLetter(c)
}

// ---------------------------------------------------------------------------
// Keyword argument parsing
// ---------------------------------------------------------------------------

// kwPrefix is the marker prepended to keyword names by preprocessSource.
const kwPrefix = "__kw_"

// isKW checks if a Sexp is a preprocessed keyword string.
// Returns the keyword name (without prefix) and true if it is.
func isKW(s zygo.Sexp) (string, bool) {
	str, ok := s.(*zygo.SexpStr)
	if !ok {
		return "", false
	}
	if strings.HasPrefix(str.S, kwPrefix) {
		return str.S[len(kwPrefix):], true
	}
	return "", false
}

// kwArg is one keyword and its value, in source order.
type kwArg struct {
	name  string
	value zygo.Sexp
}

// kwArgs holds the result of parsing a mixed positional+keyword argument list.
type kwArgs struct {
	kw         []kwArg
	positional []zygo.Sexp
}

// parseArgs separates args into keyword and positional arguments.
// Keywords are identified by the __kw_ prefix added during preprocessing.
// A keyword given twice is an error.
func parseArgs(args []zygo.Sexp) (kwArgs, error) {
	var result kwArgs
	seen := make(map[string]bool)
	i := 0
	for i < len(args) {
		name, ok := isKW(args[i])
		if !ok {
			result.positional = append(result.positional, args[i])
			i++
			continue
		}
		if seen[name] {
			return kwArgs{}, fmt.Errorf(":%s given more than once", name)
		}
		seen[name] = true
		if i+1 < len(args) {
			result.kw = append(result.kw, kwArg{name: name, value: args[i+1]})
			i += 2
		} else {
			// Keyword at end with no value is a flag with nil.
			result.kw = append(result.kw, kwArg{name: name, value: zygo.SexpNull})
			i++
		}
	}
	return result, nil
}

// ---------------------------------------------------------------------------
// Value extraction helpers
// ---------------------------------------------------------------------------

// toFloat64 extracts a float64 from a Sexp (SexpInt or SexpFloat).
func toFloat64(s zygo.Sexp) (float64, error) {
	switch v := s.(type) {
	case *zygo.SexpInt:
		return float64(v.Val), nil
	case *zygo.SexpFloat:
		return v.Val, nil
	}
	return 0, fmt.Errorf("expected number, got %T (%s)", s, s.SexpString(nil))
}

// toKeywordString extracts a keyword name or plain string from a Sexp.
// Handles both preprocessed keywords (__kw_z) and plain strings ("z").
func toKeywordString(s zygo.Sexp) (string, error) {
	str, ok := s.(*zygo.SexpStr)
	if !ok {
		return "", fmt.Errorf("expected keyword or string, got %T (%s)", s, s.SexpString(nil))
	}
	if strings.HasPrefix(str.S, kwPrefix) {
		return str.S[len(kwPrefix):], nil
	}
	return str.S, nil
}

// toInt extracts a whole number from a Sexp. Floats are accepted when
// they have no fractional part.
func toInt(s zygo.Sexp) (int, error) {
	switch v := s.(type) {
	case *zygo.SexpInt:
		return int(v.Val), nil
	case *zygo.SexpFloat:
		if v.Val == float64(int(v.Val)) {
			return int(v.Val), nil
		}
		return 0, fmt.Errorf("expected whole number, got %v", v.Val)
	}
	return 0, fmt.Errorf("expected integer, got %T (%s)", s, s.SexpString(nil))
}

// toBool extracts a boolean from a Sexp. A bare trailing keyword counts
// as true.
func toBool(s zygo.Sexp) (bool, error) {
	switch v := s.(type) {
	case *zygo.SexpBool:
		return v.Val, nil
	case *zygo.SexpSentinel:
		if v == zygo.SexpNull {
			return true, nil
		}
	}
	return false, fmt.Errorf("expected true or false, got %T (%s)", s, s.SexpString(nil))
}

// toMaterial accepts a (material ...) value, a keyword or a display name
// of one of the board presets in materials.
func toMaterial(s zygo.Sexp, materials shelf.MaterialTable) (shelf.MaterialID, error) {
	if m, ok := s.(*sexpMaterial); ok {
		return m.id, nil
	}
	name, err := toKeywordString(s)
	if err != nil {
		return "", err
	}
	return materials.Parse(name)
}

// toEdge accepts an (edge ...) value, a keyword or a display label.
func toEdge(s zygo.Sexp) (shelf.EdgeProfile, error) {
	if e, ok := s.(*sexpEdge); ok {
		return e.profile, nil
	}
	name, err := toKeywordString(s)
	if err != nil {
		return shelf.Sharp, err
	}
	return shelf.ParseEdgeProfile(name)
}

// ---------------------------------------------------------------------------
// Custom Sexp types for passing Go values through the zygomys environment
// ---------------------------------------------------------------------------

type sexpMaterial struct {
	id shelf.MaterialID
}

func (m *sexpMaterial) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(material :%s)", m.id)
}
func (m *sexpMaterial) Type() *zygo.RegisteredType { return nil }

type sexpEdge struct {
	profile shelf.EdgeProfile
}

func (e *sexpEdge) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(edge :%s)", e.profile)
}
func (e *sexpEdge) Type() *zygo.RegisteredType { return nil }

// sexpShelf is the value of a (shelf ...) form.
type sexpShelf struct {
	cfg shelf.Configuration
}

func (s *sexpShelf) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(shelf %gx%gx%g %dx%d)", s.cfg.Width, s.cfg.Height, s.cfg.Depth,
		s.cfg.HorizontalLevels, s.cfg.VerticalDivisions)
}
func (s *sexpShelf) Type() *zygo.RegisteredType { return nil }

// ---------------------------------------------------------------------------
// Builtin registration
// ---------------------------------------------------------------------------

// builder accumulates the configuration while a source runs.
type builder struct {
	cfg       shelf.Configuration
	materials shelf.MaterialTable
	defined   bool
}

// shelfField applies one keyword argument of (shelf ...) to a configuration.
type shelfField func(cfg *shelf.Configuration, v zygo.Sexp, materials shelf.MaterialTable) error

func floatField(dst func(*shelf.Configuration) *float64) shelfField {
	return func(cfg *shelf.Configuration, v zygo.Sexp, _ shelf.MaterialTable) error {
		f, err := toFloat64(v)
		if err != nil {
			return err
		}
		*dst(cfg) = f
		return nil
	}
}

func intField(dst func(*shelf.Configuration) *int) shelfField {
	return func(cfg *shelf.Configuration, v zygo.Sexp, _ shelf.MaterialTable) error {
		n, err := toInt(v)
		if err != nil {
			return err
		}
		*dst(cfg) = n
		return nil
	}
}

func boolField(dst func(*shelf.Configuration) *bool) shelfField {
	return func(cfg *shelf.Configuration, v zygo.Sexp, _ shelf.MaterialTable) error {
		b, err := toBool(v)
		if err != nil {
			return err
		}
		*dst(cfg) = b
		return nil
	}
}

// shelfKeyword binds a (shelf ...) keyword to the configuration field it sets.
type shelfKeyword struct {
	field string
	set   shelfField
}

var (
	setWidth     = floatField(func(c *shelf.Configuration) *float64 { return &c.Width })
	setHeight    = floatField(func(c *shelf.Configuration) *float64 { return &c.Height })
	setDepth     = floatField(func(c *shelf.Configuration) *float64 { return &c.Depth })
	setThickness = floatField(func(c *shelf.Configuration) *float64 { return &c.BoardThickness })
	setLevels    = intField(func(c *shelf.Configuration) *int { return &c.HorizontalLevels })
	setDivisions = intField(func(c *shelf.Configuration) *int { return &c.VerticalDivisions })
	setDoors     = boolField(func(c *shelf.Configuration) *bool { return &c.Doors })
	setLamps     = boolField(func(c *shelf.Configuration) *bool { return &c.Lamps })
	setHangers   = boolField(func(c *shelf.Configuration) *bool { return &c.Hangers })
)

// shelfFields maps (shelf ...) keywords to configuration fields. Long
// names mirror the configuration file keys; short names are aliases for
// the same field and may not be combined with them.
var shelfFields = map[string]shelfKeyword{
	"width":  {"Width", setWidth},
	"height": {"Height", setHeight},
	"depth":  {"Depth", setDepth},

	"thickness":       {"BoardThickness", setThickness},
	"board-thickness": {"BoardThickness", setThickness},

	"levels":             {"HorizontalLevels", setLevels},
	"horizontal-levels":  {"HorizontalLevels", setLevels},
	"divisions":          {"VerticalDivisions", setDivisions},
	"vertical-divisions": {"VerticalDivisions", setDivisions},

	"doors":   {"Doors", setDoors},
	"lamps":   {"Lamps", setLamps},
	"hangers": {"Hangers", setHangers},

	"material":     {"Material", setMaterial},
	"edge":         {"EdgeProfile", setEdge},
	"edge-profile": {"EdgeProfile", setEdge},
}

func setMaterial(c *shelf.Configuration, v zygo.Sexp, materials shelf.MaterialTable) error {
	id, err := toMaterial(v, materials)
	if err != nil {
		return err
	}
	c.Material = id
	return nil
}

func setEdge(c *shelf.Configuration, v zygo.Sexp, _ shelf.MaterialTable) error {
	p, err := toEdge(v)
	if err != nil {
		return err
	}
	c.EdgeProfile = p
	return nil
}

// registerBuiltins installs the .shelf builtins into a zygomys environment.
// The (shelf ...) builtin writes into b.
//
// Source code must be preprocessed with preprocessSource() before evaluation so
// that :keyword tokens are converted to recognizable string literals.
func registerBuiltins(env *zygo.Zlisp, b *builder) {

	// -----------------------------------------------------------------------
	// (material :matte-black) or (material "Matte Black")
	// -----------------------------------------------------------------------
	env.AddFunction("material", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 1 {
			return zygo.SexpNull, fmt.Errorf("material requires exactly 1 argument, got %d", len(args))
		}
		id, err := toMaterial(args[0], b.materials)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("material: %w", err)
		}
		return &sexpMaterial{id: id}, nil
	})

	// -----------------------------------------------------------------------
	// (edge :rounded) or (edge "Sharp 90°")
	// -----------------------------------------------------------------------
	env.AddFunction("edge", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 1 {
			return zygo.SexpNull, fmt.Errorf("edge requires exactly 1 argument, got %d", len(args))
		}
		p, err := toEdge(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("edge: %w", err)
		}
		return &sexpEdge{profile: p}, nil
	})

	// -----------------------------------------------------------------------
	// (shelf :width 150 :height 200 :depth 30 :levels 4 :divisions 3
	//        :thickness 2 :material :gloss-white :edge :sharp
	//        :doors true :lamps false :hangers false)
	// -----------------------------------------------------------------------
	env.AddFunction("shelf", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if b.defined {
			return zygo.SexpNull, fmt.Errorf("shelf: a source describes exactly one unit")
		}
		pa, err := parseArgs(args)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("shelf: %w", err)
		}
		if len(pa.positional) > 0 {
			return zygo.SexpNull, fmt.Errorf("shelf: unexpected positional argument %s", pa.positional[0].SexpString(nil))
		}

		cfg := b.cfg
		setBy := make(map[string]string)
		for _, a := range pa.kw {
			k, ok := shelfFields[a.name]
			if !ok {
				return zygo.SexpNull, fmt.Errorf("shelf: unknown keyword :%s", a.name)
			}
			if prev, dup := setBy[k.field]; dup {
				return zygo.SexpNull, fmt.Errorf("shelf: :%s and :%s both set %s", prev, a.name, k.field)
			}
			setBy[k.field] = a.name
			if err := k.set(&cfg, a.value, b.materials); err != nil {
				return zygo.SexpNull, fmt.Errorf("shelf: %s: %w", a.name, err)
			}
		}
		b.cfg = cfg
		b.defined = true
		return &sexpShelf{cfg: cfg}, nil
	})
}
