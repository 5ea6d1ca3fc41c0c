package shelf

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"math"
)

// MinDimension is the smallest length any generated primitive may have.
const MinDimension = 1e-3

// Configuration describes one shelving unit. Lengths share a single unit
// (the preview uses centimetres).
type Configuration struct {
	Width             float64     `yaml:"width" json:"width" env:"WIDTH"`
	Height            float64     `yaml:"height" json:"height" env:"HEIGHT"`
	Depth             float64     `yaml:"depth" json:"depth" env:"DEPTH"`
	HorizontalLevels  int         `yaml:"horizontal_levels" json:"horizontalLevels" env:"HORIZONTAL_LEVELS"`
	VerticalDivisions int         `yaml:"vertical_divisions" json:"verticalDivisions" env:"VERTICAL_DIVISIONS"`
	BoardThickness    float64     `yaml:"board_thickness" json:"boardThickness" env:"BOARD_THICKNESS"`
	Material          MaterialID  `yaml:"material" json:"material" env:"MATERIAL"`
	EdgeProfile       EdgeProfile `yaml:"edge_profile" json:"edgeProfile" env:"EDGE_PROFILE"`
	Doors             bool        `yaml:"doors" json:"doors" env:"DOORS"`
	Lamps             bool        `yaml:"lamps" json:"lamps" env:"LAMPS"`
	Hangers           bool        `yaml:"hangers" json:"hangers" env:"HANGERS"`
}

// DefaultConfiguration returns the configuration the editor opens with.
func DefaultConfiguration() Configuration {
	return Configuration{
		Width:             150,
		Height:            200,
		Depth:             30,
		HorizontalLevels:  4,
		VerticalDivisions: 3,
		BoardThickness:    2,
		Material:          GlossWhite,
		EdgeProfile:       Sharp,
	}
}

// InnerWidth is the clear width between the side panels.
func (c Configuration) InnerWidth() float64 {
	return c.Width - 2*c.BoardThickness
}

// InnerHeight is the clear height between the bottom and top panels.
func (c Configuration) InnerHeight() float64 {
	return c.Height - 2*c.BoardThickness
}

// CellWidth is the clear width of one column.
func (c Configuration) CellWidth() float64 {
	n := float64(c.VerticalDivisions)
	return (c.InnerWidth() - (n-1)*c.BoardThickness) / n
}

// CellHeight is the clear height of one row.
func (c Configuration) CellHeight() float64 {
	n := float64(c.HorizontalLevels)
	return (c.InnerHeight() - (n-1)*c.BoardThickness) / n
}

// HasAddons reports whether any addon is enabled.
func (c Configuration) HasAddons() bool {
	return c.Doors || c.Lamps || c.Hangers
}

// Fingerprint is a content hash of the configuration. Equal configurations
// always produce equal fingerprints.
func (c Configuration) Fingerprint() string {
	h := sha256.New()
	fmt.Fprintf(h, "%g|%g|%g|%d|%d|%g|%s|%d|%t|%t|%t",
		c.Width, c.Height, c.Depth,
		c.HorizontalLevels, c.VerticalDivisions, c.BoardThickness,
		c.Material, c.EdgeProfile, c.Doors, c.Lamps, c.Hangers)
	return hex.EncodeToString(h.Sum(nil))[:16]
}

// Validate returns every problem found in c. An empty slice means c can be
// generated. Validate never mutates c.
func Validate(c Configuration) []*ConfigError {
	return ValidateWith(c, DefaultMaterials())
}

// ValidateWith is Validate against a material table whose board presets
// the configuration may select.
func ValidateWith(c Configuration, materials MaterialTable) []*ConfigError {
	var errs []*ConfigError

	if c.HorizontalLevels < 1 {
		errs = append(errs, &ConfigError{Kind: ErrInvalidCount, Field: "horizontalLevels", Value: c.HorizontalLevels, Reason: "must be at least 1"})
	}
	if c.VerticalDivisions < 1 {
		errs = append(errs, &ConfigError{Kind: ErrInvalidCount, Field: "verticalDivisions", Value: c.VerticalDivisions, Reason: "must be at least 1"})
	}
	if !materials.IsBoard(c.Material) {
		errs = append(errs, &ConfigError{Kind: ErrUnknownMaterial, Field: "material", Value: c.Material,
			Reason: fmt.Sprintf("expected one of %v", materials.Boards())})
	}

	dims := []struct {
		name string
		v    float64
	}{
		{"width", c.Width},
		{"height", c.Height},
		{"depth", c.Depth},
		{"boardThickness", c.BoardThickness},
	}
	finite := true
	for _, d := range dims {
		if math.IsNaN(d.v) || math.IsInf(d.v, 0) || d.v <= 0 {
			errs = append(errs, degenerate(d.name, d.v, "must be positive and finite"))
			finite = false
		}
	}
	if !finite {
		return errs
	}

	limit := math.Min(c.Width, math.Min(c.Height, c.Depth)) / 2
	if c.BoardThickness >= limit {
		errs = append(errs, degenerate("boardThickness", c.BoardThickness,
			"must be less than half the smallest outer dimension (%g)", limit))
		return errs
	}

	if c.VerticalDivisions >= 1 {
		if cw := c.CellWidth(); cw < MinDimension {
			errs = append(errs, degenerate("verticalDivisions", c.VerticalDivisions,
				"cell width %.4f is not positive", cw))
		}
	}
	if c.HorizontalLevels >= 1 {
		if ch := c.CellHeight(); ch < MinDimension {
			errs = append(errs, degenerate("horizontalLevels", c.HorizontalLevels,
				"cell height %.4f is not positive", ch))
		}
	}
	return errs
}

// Normalize fills unset presets with their defaults and validates the
// result. The returned error wraps every ConfigError and matches
// ErrDegenerateConfig, ErrInvalidCount or ErrUnknownMaterial via errors.Is.
func Normalize(c Configuration) (Configuration, error) {
	return NormalizeWith(c, DefaultMaterials())
}

// NormalizeWith is Normalize against a material table whose board presets
// the configuration may select.
func NormalizeWith(c Configuration, materials MaterialTable) (Configuration, error) {
	if c.Material == "" {
		c.Material = GlossWhite
	}
	if c.EdgeProfile != Sharp && c.EdgeProfile != Rounded {
		c.EdgeProfile = Sharp
	}

	cerrs := ValidateWith(c, materials)
	if len(cerrs) == 0 {
		return c, nil
	}
	errs := make([]error, len(cerrs))
	for i, e := range cerrs {
		errs[i] = e
	}
	return c, errors.Join(errs...)
}
