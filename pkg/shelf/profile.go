package shelf

import (
	"fmt"
	"math"
	"strings"
)

// EdgeProfile is the finishing style applied to board edges.
type EdgeProfile int

const (
	Sharp   EdgeProfile = iota // 90° edges
	Rounded                    // radiused/beveled edges
)

const (
	// RoundedSegments is the number of segments per rounded edge.
	RoundedSegments = 4

	roundRadiusFactor = 0.2
	maxRoundRadius    = 0.5
)

func (p EdgeProfile) String() string {
	switch p {
	case Sharp:
		return "sharp"
	case Rounded:
		return "rounded"
	default:
		return fmt.Sprintf("EdgeProfile(%d)", int(p))
	}
}

// Label returns the display label used by the configuration UI.
func (p EdgeProfile) Label() string {
	switch p {
	case Sharp:
		return "Sharp 90°"
	case Rounded:
		return "Rounded/Beveled"
	default:
		return p.String()
	}
}

// Radius returns the edge radius for boards of thickness t.
func (p EdgeProfile) Radius(t float64) float64 {
	if p != Rounded {
		return 0
	}
	return math.Min(t*roundRadiusFactor, maxRoundRadius)
}

// Segments returns the tessellation hint for rounded edges.
func (p EdgeProfile) Segments() int {
	if p != Rounded {
		return 1
	}
	return RoundedSegments
}

// ParseEdgeProfile accepts "sharp", "rounded", "beveled" or a display label.
func ParseEdgeProfile(s string) (EdgeProfile, error) {
	norm := strings.ToLower(strings.TrimSpace(s))
	switch {
	case norm == "sharp" || strings.HasPrefix(norm, "sharp "):
		return Sharp, nil
	case norm == "rounded" || norm == "beveled" || norm == "rounded/beveled":
		return Rounded, nil
	}
	return Sharp, fmt.Errorf("unknown edge profile %q, expected sharp or rounded", s)
}

// MarshalText implements encoding.TextMarshaler.
func (p EdgeProfile) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (p *EdgeProfile) UnmarshalText(text []byte) error {
	v, err := ParseEdgeProfile(string(text))
	if err != nil {
		return err
	}
	*p = v
	return nil
}
