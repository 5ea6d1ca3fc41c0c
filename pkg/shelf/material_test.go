package shelf

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultMaterials(t *testing.T) {
	table := DefaultMaterials()

	white, ok := table.Lookup(GlossWhite)
	require.True(t, ok)
	assert.Equal(t, "#ffffff", white.Hex())
	assert.InDelta(t, 0.1, white.Roughness, 1e-9)
	assert.InDelta(t, 0.2, white.Metalness, 1e-9)

	black, ok := table.Lookup(MatteBlack)
	require.True(t, ok)
	assert.Equal(t, "#111111", black.Hex())
	assert.InDelta(t, 0.9, black.Roughness, 1e-9)

	metal, ok := table.Lookup(BrushedMetal)
	require.True(t, ok)
	assert.InDelta(t, 1.0, metal.Metalness, 1e-9)

	fixture, ok := table.Lookup(FixtureDark)
	require.True(t, ok)
	assert.True(t, fixture.Unlit)
}

func TestMaterialTableMerge(t *testing.T) {
	base := DefaultMaterials()
	merged := base.Merge(MaterialTable{
		GlossWhite: {Name: "Warm White", Color: 0xfaf7f0, Roughness: 0.15},
		"oak":      {Name: "Oak", Color: 0xb5894f, Roughness: 0.7},
	})

	assert.Len(t, merged, len(base)+1)
	assert.Equal(t, "Warm White", merged[GlossWhite].Name)
	assert.Equal(t, MaterialID("oak"), merged["oak"].ID)
	// The receiver is untouched.
	assert.Equal(t, "Gloss White", base[GlossWhite].Name)
	assert.Equal(t, []MaterialID{BrushedMetal, FixtureDark, GlossWhite, MatteBlack, "oak"}, merged.IDs())
}

func TestParseBoardMaterial(t *testing.T) {
	tests := []struct {
		in      string
		want    MaterialID
		wantErr bool
	}{
		{"gloss-white", GlossWhite, false},
		{"Gloss White", GlossWhite, false},
		{"MATTE_BLACK", MatteBlack, false},
		{" matte-black ", MatteBlack, false},
		{"brushed-metal", "", true},
		{"walnut", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := DefaultMaterials().Parse(tt.in)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrUnknownMaterial)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestBoardPresetsComeFromTable(t *testing.T) {
	table := DefaultMaterials().Merge(MaterialTable{
		"oak":      {Name: "Natural Oak", Color: 0xb5894f, Roughness: 0.7, Board: true},
		GlossWhite: {Name: "Warm White", Color: 0xfaf7f0},
	})

	assert.Equal(t, []MaterialID{GlossWhite, MatteBlack, "oak"}, table.Boards())
	assert.True(t, table.IsBoard(GlossWhite), "overriding a preset keeps it selectable")
	assert.False(t, table.IsBoard(BrushedMetal))

	for _, in := range []string{"oak", "Natural Oak", "NATURAL_OAK"} {
		got, err := table.Parse(in)
		require.NoError(t, err, in)
		assert.Equal(t, MaterialID("oak"), got)
	}
	got, err := table.Parse("Warm White")
	require.NoError(t, err)
	assert.Equal(t, GlossWhite, got)

	_, err = table.Parse("brushed-metal")
	assert.ErrorIs(t, err, ErrUnknownMaterial)
	_, err = DefaultMaterials().Parse("oak")
	assert.ErrorIs(t, err, ErrUnknownMaterial, "the built-in table has no oak")

	c := DefaultConfiguration()
	c.Material = "oak"
	norm, err := NormalizeWith(c, table)
	require.NoError(t, err)
	assert.Equal(t, MaterialID("oak"), norm.Material)
	_, err = Normalize(c)
	assert.ErrorIs(t, err, ErrUnknownMaterial)
}

func TestEdgeProfile(t *testing.T) {
	assert.Equal(t, 0.0, Sharp.Radius(2))
	assert.InDelta(t, 0.4, Rounded.Radius(2), 1e-9)
	assert.InDelta(t, 0.5, Rounded.Radius(4), 1e-9)
	assert.Equal(t, 1, Sharp.Segments())
	assert.Equal(t, 4, Rounded.Segments())
	assert.Equal(t, "Sharp 90°", Sharp.Label())
	assert.Equal(t, "Rounded/Beveled", Rounded.Label())
}

func TestParseEdgeProfile(t *testing.T) {
	tests := []struct {
		in      string
		want    EdgeProfile
		wantErr bool
	}{
		{"sharp", Sharp, false},
		{"Sharp 90°", Sharp, false},
		{"rounded", Rounded, false},
		{"Rounded/Beveled", Rounded, false},
		{"beveled", Rounded, false},
		{"chamfer", Sharp, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseEdgeProfile(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestEdgeProfileText(t *testing.T) {
	b, err := Rounded.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "rounded", string(b))

	var p EdgeProfile
	require.NoError(t, p.UnmarshalText([]byte("Rounded/Beveled")))
	assert.Equal(t, Rounded, p)
	assert.Error(t, p.UnmarshalText([]byte("ogee")))
}
