package ot

import (
	"testing"

	"github.com/npillmayer/glyphs/internal/testfont"
	"github.com/npillmayer/schuko/testconfig"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parseGSubTable(t *testing.T, features []testfont.Feature, lookups []testfont.Lookup) *GSubTable {
	t.Helper()
	gsub, err := ParseGSubFragment(testfont.BuildGSUB(features, lookups))
	require.NoError(t, err)
	return gsub
}

func TestParseGSubHeader(t *testing.T) {
	teardown := testconfig.QuickConfig(t)
	defer teardown()
	//
	gsub := parseGSubTable(t,
		[]testfont.Feature{{Tag: "liga", Lookups: []uint16{0}}},
		[]testfont.Lookup{{Type: GSubLookupTypeSingle, Subtables: [][]byte{
			testfont.SingleSubst1(testfont.CoverageF1(10), 5),
		}}})
	//
	script := gsub.Script(T("latn")) // falls back to DFLT
	require.NotNil(t, script)
	assert.Equal(t, DFLT, script.Tag)
	lsys := script.LangSysFor(T("TRK"))
	require.NotNil(t, lsys)
	assert.Equal(t, []uint16{0}, lsys.FeatureIndices)
	require.Len(t, gsub.Features, 1)
	assert.Equal(t, T("liga"), gsub.Features[0].Tag)
	require.Len(t, gsub.Lookups, 1)
}

func TestParseSingleSubstFormats(t *testing.T) {
	teardown := testconfig.QuickConfig(t)
	defer teardown()
	//
	gsub := parseGSubTable(t,
		[]testfont.Feature{{Tag: "sups", Lookups: []uint16{0, 1}}},
		[]testfont.Lookup{
			{Type: GSubLookupTypeSingle, Subtables: [][]byte{
				testfont.SingleSubst1(testfont.CoverageF1(10, 11), -3),
			}},
			{Type: GSubLookupTypeSingle, Subtables: [][]byte{
				testfont.SingleSubst2(testfont.CoverageF1(20, 21), 120, 121),
			}},
		})
	//
	s1, ok := gsub.Lookups[0].Subtables[0].(SingleSubst1)
	require.True(t, ok, "expected SingleSubst1, have %T", gsub.Lookups[0].Subtables[0])
	assert.Equal(t, int16(-3), s1.Delta)
	assert.Equal(t, 1, s1.Coverage.Index(11))
	//
	s2, ok := gsub.Lookups[1].Subtables[0].(SingleSubst2)
	require.True(t, ok, "expected SingleSubst2, have %T", gsub.Lookups[1].Subtables[0])
	assert.Equal(t, []GlyphIndex{120, 121}, s2.Substitutes)
}

func TestParseLigatureSubst(t *testing.T) {
	teardown := testconfig.QuickConfig(t)
	defer teardown()
	//
	gsub := parseGSubTable(t,
		[]testfont.Feature{{Tag: "liga", Lookups: []uint16{0}}},
		[]testfont.Lookup{{Type: GSubLookupTypeLigature, Subtables: [][]byte{
			testfont.LigatureSubst(testfont.CoverageF1(71), // 'f'
				[]testfont.Lig{
					{Glyph: 300, Components: []uint16{71, 74}}, // ffi
					{Glyph: 301, Components: []uint16{74}},     // fi
				}),
		}}})
	//
	lig, ok := gsub.Lookups[0].Subtables[0].(LigatureSubst)
	require.True(t, ok, "expected LigatureSubst, have %T", gsub.Lookups[0].Subtables[0])
	require.Len(t, lig.LigatureSets, 1)
	require.Len(t, lig.LigatureSets[0], 2)
	assert.Equal(t, GlyphIndex(300), lig.LigatureSets[0][0].Glyph)
	assert.Equal(t, []GlyphIndex{71, 74}, lig.LigatureSets[0][0].Components)
	assert.Equal(t, GlyphIndex(301), lig.LigatureSets[0][1].Glyph)
}

func TestParseMultipleAndAlternate(t *testing.T) {
	teardown := testconfig.QuickConfig(t)
	defer teardown()
	//
	gsub := parseGSubTable(t,
		[]testfont.Feature{{Tag: "ccmp", Lookups: []uint16{0, 1}}},
		[]testfont.Lookup{
			{Type: GSubLookupTypeMultiple, Subtables: [][]byte{
				testfont.MultipleSubst(testfont.CoverageF1(50), []uint16{60, 61, 62}),
			}},
			{Type: GSubLookupTypeAlternate, Subtables: [][]byte{
				testfont.AlternateSubst(testfont.CoverageF1(50), []uint16{70, 71}),
			}},
		})
	//
	multi, ok := gsub.Lookups[0].Subtables[0].(MultipleSubst)
	require.True(t, ok)
	require.Len(t, multi.Sequences, 1)
	assert.Equal(t, []GlyphIndex{60, 61, 62}, multi.Sequences[0])
	//
	alt, ok := gsub.Lookups[1].Subtables[0].(AlternateSubst)
	require.True(t, ok)
	assert.Equal(t, []GlyphIndex{70, 71}, alt.Alternates[0])
}

func TestParseExtensionIndirection(t *testing.T) {
	teardown := testconfig.QuickConfig(t)
	defer teardown()
	//
	// a single substitution wrapped into an extension subtable must come
	// out as the resolved variant
	gsub := parseGSubTable(t,
		[]testfont.Feature{{Tag: "liga", Lookups: []uint16{0}}},
		[]testfont.Lookup{{Type: GSubLookupTypeExtension, Subtables: [][]byte{
			testfont.Extension(GSubLookupTypeSingle,
				testfont.SingleSubst1(testfont.CoverageF1(10), 7)),
		}}})
	//
	s1, ok := gsub.Lookups[0].Subtables[0].(SingleSubst1)
	require.True(t, ok, "expected resolved SingleSubst1, have %T", gsub.Lookups[0].Subtables[0])
	assert.Equal(t, int16(7), s1.Delta)
}

func TestParseNestedExtensionRejected(t *testing.T) {
	teardown := testconfig.QuickConfig(t)
	defer teardown()
	//
	_, err := ParseGSubFragment(testfont.BuildGSUB(
		[]testfont.Feature{{Tag: "liga", Lookups: []uint16{0}}},
		[]testfont.Lookup{{Type: GSubLookupTypeExtension, Subtables: [][]byte{
			testfont.Extension(GSubLookupTypeExtension,
				testfont.Extension(GSubLookupTypeSingle,
					testfont.SingleSubst1(testfont.CoverageF1(10), 7))),
		}}}))
	require.Error(t, err)
	var ferr FontError
	assert.ErrorAs(t, err, &ferr)
}

func TestParseChainedContextSubst3(t *testing.T) {
	teardown := testconfig.QuickConfig(t)
	defer teardown()
	//
	gsub := parseGSubTable(t,
		[]testfont.Feature{{Tag: "calt", Lookups: []uint16{0, 1}}},
		[]testfont.Lookup{
			{Type: GSubLookupTypeChainingContext, Subtables: [][]byte{
				testfont.ChainedContextSubst3(
					[][]uint16{{5}},      // backtrack
					[][]uint16{{10, 11}}, // input
					[][]uint16{{15}},     // lookahead
					testfont.SeqLookup{SequenceIndex: 0, LookupIndex: 1}),
			}},
			{Type: GSubLookupTypeSingle, Subtables: [][]byte{
				testfont.SingleSubst1(testfont.CoverageF1(10, 11), 100),
			}},
		})
	//
	chained, ok := gsub.Lookups[0].Subtables[0].(ChainedContextSubst3)
	require.True(t, ok, "expected ChainedContextSubst3, have %T", gsub.Lookups[0].Subtables[0])
	require.Len(t, chained.Backtrack, 1)
	require.Len(t, chained.Input, 1)
	require.Len(t, chained.Lookahead, 1)
	assert.GreaterOrEqual(t, chained.Input[0].Index(11), 0)
	require.Len(t, chained.Records, 1)
	assert.Equal(t, uint16(1), chained.Records[0].LookupListIndex)
}

func TestParseReverseChainedSubst(t *testing.T) {
	teardown := testconfig.QuickConfig(t)
	defer teardown()
	//
	gsub := parseGSubTable(t,
		[]testfont.Feature{{Tag: "rvrn", Lookups: []uint16{0}}},
		[]testfont.Lookup{{Type: GSubLookupTypeReverseChaining, Subtables: [][]byte{
			testfont.ReverseChainedSubst(testfont.CoverageF1(30, 31),
				[][]uint16{{20}}, [][]uint16{{40}}, 130, 131),
		}}})
	//
	rc, ok := gsub.Lookups[0].Subtables[0].(ReverseChainedSubst)
	require.True(t, ok, "expected ReverseChainedSubst, have %T", gsub.Lookups[0].Subtables[0])
	assert.Equal(t, []GlyphIndex{130, 131}, rc.Substitutes)
	require.Len(t, rc.Backtrack, 1)
	require.Len(t, rc.Lookahead, 1)
}

func TestParseMalformedLookupType(t *testing.T) {
	teardown := testconfig.QuickConfig(t)
	defer teardown()
	//
	_, err := ParseGSubFragment(testfont.BuildGSUB(
		[]testfont.Feature{{Tag: "liga", Lookups: []uint16{0}}},
		[]testfont.Lookup{{Type: 99, Subtables: [][]byte{
			testfont.SingleSubst1(testfont.CoverageF1(10), 7),
		}}}))
	require.Error(t, err)
}
