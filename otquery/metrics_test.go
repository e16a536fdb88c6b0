package otquery

import (
	"testing"

	"github.com/npillmayer/glyphs/internal/testfont"
	"github.com/npillmayer/glyphs/ot"
	"github.com/npillmayer/schuko/testconfig"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/image/font/sfnt"
)

func testFont(t *testing.T) *ot.Font {
	t.Helper()
	advances := make([]uint16, 60)
	for i := range advances {
		advances[i] = uint16(400 + i)
	}
	otf, err := ot.Parse(testfont.BuildFont(testfont.Config{
		UnitsPerEm: 2048,
		Ascent:     1638,
		Descent:    -410,
		LineGap:    66,
		Advances:   advances,
	}))
	require.NoError(t, err)
	return otf
}

func TestFontMetrics(t *testing.T) {
	teardown := testconfig.QuickConfig(t)
	defer teardown()
	//
	otf := testFont(t)
	metrics := FontMetrics(otf)
	assert.Equal(t, sfnt.Units(2048), metrics.UnitsPerEm)
	assert.Equal(t, sfnt.Units(1638), metrics.Ascent)
	assert.Equal(t, sfnt.Units(-410), metrics.Descent)
	assert.Equal(t, sfnt.Units(66), metrics.LineGap)
	assert.Equal(t, sfnt.Units(1638+410+66), metrics.LineHeight())
	assert.Equal(t, sfnt.Units(2048), ScaleFactor(otf))
}

func TestGlyphMetrics(t *testing.T) {
	teardown := testconfig.QuickConfig(t)
	defer teardown()
	//
	otf := testFont(t)
	metrics := GlyphMetrics(otf, 10)
	assert.Equal(t, sfnt.Units(410), metrics.Advance)
	//
	// glyph IDs past the hmtx entries repeat the last advance
	metrics = GlyphMetrics(otf, 1000)
	assert.Equal(t, sfnt.Units(459), metrics.Advance)
}

func TestGlyphIndex(t *testing.T) {
	teardown := testconfig.QuickConfig(t)
	defer teardown()
	//
	otf := testFont(t)
	assert.Equal(t, ot.GlyphIndex(testfont.GID('a')), GlyphIndex(otf, 'a'))
	assert.Equal(t, ot.GlyphIndex(0), GlyphIndex(otf, 'ß'))
	assert.Equal(t, 60, NumGlyphs(otf))
}
