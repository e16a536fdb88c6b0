package otshape

import (
	"testing"

	"github.com/npillmayer/glyphs/internal/testfont"
	"github.com/npillmayer/glyphs/ot"
	"github.com/npillmayer/schuko/testconfig"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testFont(t *testing.T, gsub []byte) *ot.Font {
	t.Helper()
	otf, err := ot.Parse(testfont.BuildFont(testfont.Config{
		UnitsPerEm: 1000,
		Ascent:     750,
		Descent:    -250,
		Advances:   advances(100),
		GSub:       gsub,
	}))
	require.NoError(t, err)
	return otf
}

func advances(n int) []uint16 {
	adv := make([]uint16, n)
	for i := range adv {
		adv[i] = 500
	}
	return adv
}

// ligaGSUB builds a GSUB table with an 'fi' ligature.
func ligaGSUB() []byte {
	return testfont.BuildGSUB(
		[]testfont.Feature{{Tag: "liga", Lookups: []uint16{0}}},
		[]testfont.Lookup{{Type: ot.GSubLookupTypeLigature, Subtables: [][]byte{
			testfont.LigatureSubst(testfont.CoverageF1(testfont.GID('f')),
				[]testfont.Lig{{Glyph: 99, Components: []uint16{testfont.GID('i')}}}),
		}}})
}

func TestShapeInitialMapping(t *testing.T) {
	teardown := testconfig.QuickConfig(t)
	defer teardown()
	//
	otf := testFont(t, nil)
	stream, changed, err := Shape("abc", otf, Params{})
	require.NoError(t, err)
	assert.False(t, changed) // no GSUB table present
	require.Equal(t, 3, stream.Count())
	for i, want := range []rune{'a', 'b', 'c'} {
		cp, offset, gids := stream.At(i)
		assert.Equal(t, want, cp)
		assert.Equal(t, i, offset)
		assert.Equal(t, []ot.GlyphIndex{ot.GlyphIndex(testfont.GID(want))}, gids)
	}
}

func TestShapeAddsDefaultFeatures(t *testing.T) {
	teardown := testconfig.QuickConfig(t)
	defer teardown()
	//
	otf := testFont(t, nil)
	stream, _, err := Shape("a", otf, Params{})
	require.NoError(t, err)
	for _, tag := range DefaultFeatures {
		assert.True(t, stream.HasFeature(0, tag), "missing default feature %s", tag)
	}
}

func TestShapeAppliesLigature(t *testing.T) {
	teardown := testconfig.QuickConfig(t)
	defer teardown()
	//
	otf := testFont(t, ligaGSUB())
	stream, changed, err := Shape("fi", otf, Params{})
	require.NoError(t, err)
	assert.True(t, changed)
	require.Equal(t, 1, stream.Count())
	cp, offset, gids := stream.At(0)
	assert.Equal(t, 'f', cp)
	assert.Equal(t, 0, offset)
	assert.Equal(t, []ot.GlyphIndex{99}, gids)
	//
	// the consumed slot's offset is gone
	_, _, ok := stream.AtOffset(1)
	assert.False(t, ok)
}

func TestShapeFeatureRangeDisables(t *testing.T) {
	teardown := testconfig.QuickConfig(t)
	defer teardown()
	//
	// switching 'liga' off over the 'f' suppresses the ligature
	otf := testFont(t, ligaGSUB())
	stream, changed, err := Shape("fi", otf, Params{
		Ranges: []FeatureRange{{Feature: ot.T("liga"), On: false, Start: 0, End: 1}},
	})
	require.NoError(t, err)
	assert.False(t, changed)
	assert.Equal(t, 2, stream.Count())
}

func TestShapeUnmappedCodepoint(t *testing.T) {
	teardown := testconfig.QuickConfig(t)
	defer teardown()
	//
	otf := testFont(t, nil)
	stream, _, err := Shape("€", otf, Params{})
	require.NoError(t, err)
	require.Equal(t, 1, stream.Count())
	assert.Equal(t, []ot.GlyphIndex{NOTDEF}, stream.GlyphsAt(0))
}
