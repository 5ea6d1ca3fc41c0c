package shelf

import (
	"fmt"
	"sort"
	"strings"

	"github.com/samber/lo"
)

// MaterialID names a board material preset.
type MaterialID string

const (
	GlossWhite MaterialID = "gloss-white"
	MatteBlack MaterialID = "matte-black"
)

// Accessory materials are not selectable for boards; addons use them directly.
const (
	BrushedMetal MaterialID = "brushed-metal" // handles and hanger rails
	FixtureDark  MaterialID = "fixture-dark"  // lamp fixture discs
)

// BoardMaterials lists the built-in board presets.
var BoardMaterials = []MaterialID{GlossWhite, MatteBlack}

// Material describes how a renderer should shade a surface.
type Material struct {
	ID        MaterialID `yaml:"id" json:"id"`
	Name      string     `yaml:"name" json:"name"`
	Color     uint32     `yaml:"color" json:"color"` // 0xRRGGBB
	Roughness float64    `yaml:"roughness" json:"roughness"`
	Metalness float64    `yaml:"metalness" json:"metalness"`
	Unlit     bool       `yaml:"unlit,omitempty" json:"unlit,omitempty"`
	// Board marks a preset a configuration may select for its boards.
	Board bool `yaml:"board,omitempty" json:"board,omitempty"`
}

// Hex returns the color as a CSS-style hex string.
func (m Material) Hex() string {
	return fmt.Sprintf("#%06x", m.Color&0xffffff)
}

// MaterialTable maps material identifiers to their shading parameters.
type MaterialTable map[MaterialID]Material

// DefaultMaterials returns the built-in board presets and accessory materials.
func DefaultMaterials() MaterialTable {
	return MaterialTable{
		GlossWhite:   {ID: GlossWhite, Name: "Gloss White", Color: 0xffffff, Roughness: 0.1, Metalness: 0.2, Board: true},
		MatteBlack:   {ID: MatteBlack, Name: "Matte Black", Color: 0x111111, Roughness: 0.9, Metalness: 0.1, Board: true},
		BrushedMetal: {ID: BrushedMetal, Name: "Brushed Metal", Color: 0xbbbbbb, Roughness: 0.2, Metalness: 1.0},
		FixtureDark:  {ID: FixtureDark, Name: "Fixture", Color: 0x222222, Unlit: true},
	}
}

// Lookup returns the material for id.
func (t MaterialTable) Lookup(id MaterialID) (Material, bool) {
	m, ok := t[id]
	return m, ok
}

// Merge returns a copy of t with every entry of other added or replaced.
// Replacing a board preset keeps it selectable.
func (t MaterialTable) Merge(other MaterialTable) MaterialTable {
	out := make(MaterialTable, len(t)+len(other))
	for id, m := range t {
		out[id] = m
	}
	for id, m := range other {
		m.ID = id
		if prev, ok := out[id]; ok && prev.Board {
			m.Board = true
		}
		out[id] = m
	}
	return out
}

// IsBoard reports whether id names a board preset of t.
func (t MaterialTable) IsBoard(id MaterialID) bool {
	return t[id].Board
}

// Boards returns the board presets of t in sorted order.
func (t MaterialTable) Boards() []MaterialID {
	return lo.Filter(t.IDs(), func(id MaterialID, _ int) bool { return t[id].Board })
}

// IDs returns the table's identifiers in sorted order.
func (t MaterialTable) IDs() []MaterialID {
	ids := make([]MaterialID, 0, len(t))
	for id := range t {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// Parse accepts an identifier ("matte-black") or a display name
// ("Matte Black") for one of the board presets of t.
func (t MaterialTable) Parse(s string) (MaterialID, error) {
	norm := materialKey(s)
	for _, id := range t.Boards() {
		if materialKey(string(id)) == norm || materialKey(t[id].Name) == norm {
			return id, nil
		}
	}
	return "", fmt.Errorf("%w %q, expected one of %v", ErrUnknownMaterial, s, t.Boards())
}

func materialKey(s string) string {
	norm := strings.ToLower(strings.TrimSpace(s))
	norm = strings.ReplaceAll(norm, " ", "-")
	return strings.ReplaceAll(norm, "_", "-")
}
