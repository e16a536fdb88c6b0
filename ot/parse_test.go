package ot

import (
	"testing"

	"github.com/npillmayer/glyphs/internal/testfont"
	"github.com/npillmayer/schuko/testconfig"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildTestFont(t *testing.T, cfg testfont.Config) *Font {
	t.Helper()
	otf, err := Parse(testfont.BuildFont(cfg))
	require.NoError(t, err)
	return otf
}

func TestParseSyntheticFont(t *testing.T) {
	teardown := testconfig.QuickConfig(t)
	defer teardown()
	//
	otf := buildTestFont(t, testfont.Config{
		UnitsPerEm: 1000,
		Ascent:     750,
		Descent:    -250,
		Advances:   make([]uint16, 100),
	})
	assert.NotNil(t, otf.Table(T("head")))
	assert.NotNil(t, otf.Table(T("hmtx")))
	assert.Nil(t, otf.Table(T("glyf")))
	require.NotNil(t, otf.CMap)
	assert.Nil(t, otf.Layout.GSub)
}

func TestParseCMapLookup(t *testing.T) {
	teardown := testconfig.QuickConfig(t)
	defer teardown()
	//
	otf := buildTestFont(t, testfont.Config{
		UnitsPerEm: 1000,
		Ascent:     750,
		Descent:    -250,
		Advances:   make([]uint16, 100),
	})
	assert.Equal(t, GlyphIndex(testfont.GID('A')), otf.CMap.GlyphIndexMap.Lookup('A'))
	assert.Equal(t, GlyphIndex(testfont.GID(' ')), otf.CMap.GlyphIndexMap.Lookup(' '))
	assert.Equal(t, GlyphIndex(0), otf.CMap.GlyphIndexMap.Lookup('€'))
	assert.Equal(t, GlyphIndex(0), otf.CMap.GlyphIndexMap.Lookup(0x10FF00))
}

func TestParseFontWithGSub(t *testing.T) {
	teardown := testconfig.QuickConfig(t)
	defer teardown()
	//
	gsub := testfont.BuildGSUB(
		[]testfont.Feature{{Tag: "liga", Lookups: []uint16{0}}},
		[]testfont.Lookup{{Type: GSubLookupTypeLigature, Subtables: [][]byte{
			testfont.LigatureSubst(testfont.CoverageF1(testfont.GID('f')),
				[]testfont.Lig{{Glyph: 99, Components: []uint16{testfont.GID('i')}}}),
		}}})
	otf := buildTestFont(t, testfont.Config{
		UnitsPerEm: 1000,
		Ascent:     750,
		Descent:    -250,
		Advances:   make([]uint16, 100),
		GSub:       gsub,
	})
	require.NotNil(t, otf.Layout.GSub)
	assert.Len(t, otf.Layout.GSub.Lookups, 1)
}

func TestParseRejectsTruncatedFont(t *testing.T) {
	teardown := testconfig.QuickConfig(t)
	defer teardown()
	//
	data := testfont.BuildFont(testfont.Config{
		UnitsPerEm: 1000,
		Ascent:     750,
		Descent:    -250,
		Advances:   make([]uint16, 4),
	})
	_, err := Parse(data[:40])
	assert.Error(t, err)
}

func TestParseRejectsUnknownMagic(t *testing.T) {
	teardown := testconfig.QuickConfig(t)
	defer teardown()
	//
	_, err := Parse([]byte{0xde, 0xad, 0xbe, 0xef, 0, 0, 0, 0, 0, 0, 0, 0})
	assert.Error(t, err)
}

func TestBinarySegmReads(t *testing.T) {
	teardown := testconfig.QuickConfig(t)
	defer teardown()
	//
	seg := binarySegm{0x00, 0x02, 0x80, 0x00, 0xff, 0xff}
	assert.Equal(t, uint16(2), seg.U16(0))
	assert.Equal(t, uint32(0x00028000), seg.U32(0))
	assert.Equal(t, int16(-1), seg.I16(4))
	f, err := seg.fixed(0)
	require.NoError(t, err)
	assert.InDelta(t, 2.5, f.Float(), 1e-6)
	f2, err := seg.f2dot14(2)
	require.NoError(t, err)
	assert.InDelta(t, -2.0, f2.Float(), 1e-6)
	_, err = seg.u16(5)
	assert.Error(t, err)
}
