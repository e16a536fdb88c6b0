package otlayout

import (
	"testing"

	"github.com/npillmayer/glyphs/ot"
	"github.com/npillmayer/schuko/testconfig"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var liga = ot.T("liga")

// testGSub assembles a GSUB table with one DFLT script whose default
// language system enables all given features.
func testGSub(features []ot.FeatureRecord, lookups []*ot.Lookup) *ot.GSubTable {
	indices := make([]uint16, len(features))
	for i := range features {
		indices[i] = uint16(i)
	}
	gsub := &ot.GSubTable{}
	gsub.Scripts = []ot.ScriptRecord{{
		Tag: ot.DFLT,
		DefaultLangSys: &ot.LangSys{
			RequiredFeature: 0xFFFF,
			FeatureIndices:  indices,
		},
	}}
	gsub.Features = features
	gsub.Lookups = lookups
	return gsub
}

// singleLookup wraps one subtable into a lookup.
func singleLookup(lutype uint16, sub ot.Subtable) *ot.Lookup {
	return &ot.Lookup{Type: lutype, Subtables: []ot.Subtable{sub}}
}

// tagAll requests a feature for every slot of a stream.
func tagAll(gs *GlyphStream, tag ot.Tag) {
	for i := 0; i < gs.Count(); i++ {
		gs.AddFeature(i, tag)
	}
}

func applyLiga(t *testing.T, gs *GlyphStream, gsub *ot.GSubTable, gdef *ot.GDefTable) bool {
	t.Helper()
	changed, err := ApplyFeatures(gs, gsub, gdef, ot.DFLT, ot.DFLT, []ot.Tag{liga})
	require.NoError(t, err)
	return changed
}

func TestApplySingleSubst(t *testing.T) {
	teardown := testconfig.QuickConfig(t)
	defer teardown()
	//
	gsub := testGSub(
		[]ot.FeatureRecord{{Tag: liga, LookupIndices: []uint16{0}}},
		[]*ot.Lookup{singleLookup(ot.GSubLookupTypeSingle, ot.SingleSubst2{
			Coverage:    ot.GlyphCoverage(20),
			Substitutes: []ot.GlyphIndex{99},
		})})
	gs := streamOf(10, 20, 30)
	tagAll(gs, liga)
	changed := applyLiga(t, gs, gsub, nil)
	assert.True(t, changed)
	assert.Equal(t, []ot.GlyphIndex{10}, gs.GlyphsAt(0))
	assert.Equal(t, []ot.GlyphIndex{99}, gs.GlyphsAt(1))
	assert.Equal(t, []ot.GlyphIndex{30}, gs.GlyphsAt(2))
}

func TestApplySingleSubstDelta(t *testing.T) {
	teardown := testconfig.QuickConfig(t)
	defer teardown()
	//
	gsub := testGSub(
		[]ot.FeatureRecord{{Tag: liga, LookupIndices: []uint16{0}}},
		[]*ot.Lookup{singleLookup(ot.GSubLookupTypeSingle, ot.SingleSubst1{
			Coverage: ot.GlyphCoverage(20, 30),
			Delta:    -5,
		})})
	gs := streamOf(20, 30)
	tagAll(gs, liga)
	assert.True(t, applyLiga(t, gs, gsub, nil))
	assert.Equal(t, []ot.GlyphIndex{15}, gs.GlyphsAt(0))
	assert.Equal(t, []ot.GlyphIndex{25}, gs.GlyphsAt(1))
}

func TestFeatureGatesSlots(t *testing.T) {
	teardown := testconfig.QuickConfig(t)
	defer teardown()
	//
	// the lookup only applies at slots requesting the feature
	gsub := testGSub(
		[]ot.FeatureRecord{{Tag: liga, LookupIndices: []uint16{0}}},
		[]*ot.Lookup{singleLookup(ot.GSubLookupTypeSingle, ot.SingleSubst2{
			Coverage:    ot.GlyphCoverage(20),
			Substitutes: []ot.GlyphIndex{99},
		})})
	gs := streamOf(20, 20)
	gs.AddFeature(1, liga)
	assert.True(t, applyLiga(t, gs, gsub, nil))
	assert.Equal(t, []ot.GlyphIndex{20}, gs.GlyphsAt(0))
	assert.Equal(t, []ot.GlyphIndex{99}, gs.GlyphsAt(1))
}

func TestApplyLigatureSubst(t *testing.T) {
	teardown := testconfig.QuickConfig(t)
	defer teardown()
	//
	// the "fi" scenario: two slots collapse into one, the survivor keeps
	// the offset of 'f'
	f, i, fi := ot.GlyphIndex(71), ot.GlyphIndex(74), ot.GlyphIndex(301)
	gsub := testGSub(
		[]ot.FeatureRecord{{Tag: liga, LookupIndices: []uint16{0}}},
		[]*ot.Lookup{singleLookup(ot.GSubLookupTypeLigature, ot.LigatureSubst{
			Coverage: ot.GlyphCoverage(f),
			LigatureSets: [][]ot.Ligature{{
				{Glyph: fi, Components: []ot.GlyphIndex{i}},
			}},
		})})
	gs := streamOf(f, i)
	tagAll(gs, liga)
	assert.True(t, applyLiga(t, gs, gsub, nil))
	require.Equal(t, 1, gs.Count())
	cp, offset, gids := gs.At(0)
	assert.Equal(t, 'a', cp) // code-point of the first consumed slot
	assert.Equal(t, 0, offset)
	assert.Equal(t, []ot.GlyphIndex{fi}, gids)
}

func TestApplyLigatureLongestRuleWins(t *testing.T) {
	teardown := testconfig.QuickConfig(t)
	defer teardown()
	//
	f, i := ot.GlyphIndex(71), ot.GlyphIndex(74)
	ffi, fi := ot.GlyphIndex(300), ot.GlyphIndex(301)
	gsub := testGSub(
		[]ot.FeatureRecord{{Tag: liga, LookupIndices: []uint16{0}}},
		[]*ot.Lookup{singleLookup(ot.GSubLookupTypeLigature, ot.LigatureSubst{
			Coverage: ot.GlyphCoverage(f),
			LigatureSets: [][]ot.Ligature{{
				{Glyph: ffi, Components: []ot.GlyphIndex{f, i}},
				{Glyph: fi, Components: []ot.GlyphIndex{i}},
			}},
		})})
	gs := streamOf(f, f, i)
	tagAll(gs, liga)
	assert.True(t, applyLiga(t, gs, gsub, nil))
	require.Equal(t, 1, gs.Count())
	assert.Equal(t, []ot.GlyphIndex{ffi}, gs.GlyphsAt(0))
}

func TestApplyMultipleSubst(t *testing.T) {
	teardown := testconfig.QuickConfig(t)
	defer teardown()
	//
	// one-to-many: position count unchanged, the slot carries three glyphs
	ffi := ot.GlyphIndex(300)
	gsub := testGSub(
		[]ot.FeatureRecord{{Tag: liga, LookupIndices: []uint16{0}}},
		[]*ot.Lookup{singleLookup(ot.GSubLookupTypeMultiple, ot.MultipleSubst{
			Coverage:  ot.GlyphCoverage(ffi),
			Sequences: [][]ot.GlyphIndex{{71, 71, 74}},
		})})
	gs := streamOf(ffi)
	tagAll(gs, liga)
	assert.True(t, applyLiga(t, gs, gsub, nil))
	require.Equal(t, 1, gs.Count())
	assert.Equal(t, []ot.GlyphIndex{71, 71, 74}, gs.GlyphsAt(0))
}

func TestApplyAlternateSubstDefaultIndex(t *testing.T) {
	teardown := testconfig.QuickConfig(t)
	defer teardown()
	//
	gsub := testGSub(
		[]ot.FeatureRecord{{Tag: liga, LookupIndices: []uint16{0}}},
		[]*ot.Lookup{singleLookup(ot.GSubLookupTypeAlternate, ot.AlternateSubst{
			Coverage:   ot.GlyphCoverage(40),
			Alternates: [][]ot.GlyphIndex{{80, 81, 82}},
		})})
	gs := streamOf(40)
	tagAll(gs, liga)
	assert.True(t, applyLiga(t, gs, gsub, nil))
	assert.Equal(t, []ot.GlyphIndex{80}, gs.GlyphsAt(0)) // default alternate = 0
}

func TestApplyContextSubstWithNestedLookup(t *testing.T) {
	teardown := testconfig.QuickConfig(t)
	defer teardown()
	//
	// context format 3: the pair (10, 11) triggers a nested single
	// substitution at sequence position 1
	gsub := testGSub(
		[]ot.FeatureRecord{{Tag: liga, LookupIndices: []uint16{0}}},
		[]*ot.Lookup{
			singleLookup(ot.GSubLookupTypeContext, ot.ContextSubst3{
				Coverages: []ot.Coverage{ot.GlyphCoverage(10), ot.GlyphCoverage(11)},
				Records:   []ot.SequenceLookupRecord{{SequenceIndex: 1, LookupListIndex: 1}},
			}),
			singleLookup(ot.GSubLookupTypeSingle, ot.SingleSubst2{
				Coverage:    ot.GlyphCoverage(11),
				Substitutes: []ot.GlyphIndex{111},
			}),
		})
	gs := streamOf(10, 11, 10)
	tagAll(gs, liga)
	assert.True(t, applyLiga(t, gs, gsub, nil))
	assert.Equal(t, []ot.GlyphIndex{10}, gs.GlyphsAt(0))
	assert.Equal(t, []ot.GlyphIndex{111}, gs.GlyphsAt(1))
	assert.Equal(t, []ot.GlyphIndex{10}, gs.GlyphsAt(2))
}

func TestApplyChainedContextSubst(t *testing.T) {
	teardown := testconfig.QuickConfig(t)
	defer teardown()
	//
	// input (11) with backtrack (10) and lookahead (12)
	chained := ot.ChainedContextSubst3{
		Backtrack: []ot.Coverage{ot.GlyphCoverage(10)},
		Input:     []ot.Coverage{ot.GlyphCoverage(11)},
		Lookahead: []ot.Coverage{ot.GlyphCoverage(12)},
		Records:   []ot.SequenceLookupRecord{{SequenceIndex: 0, LookupListIndex: 1}},
	}
	gsub := testGSub(
		[]ot.FeatureRecord{{Tag: liga, LookupIndices: []uint16{0}}},
		[]*ot.Lookup{
			singleLookup(ot.GSubLookupTypeChainingContext, chained),
			singleLookup(ot.GSubLookupTypeSingle, ot.SingleSubst2{
				Coverage:    ot.GlyphCoverage(11),
				Substitutes: []ot.GlyphIndex{211},
			}),
		})
	//
	// context present: substitution fires
	gs := streamOf(10, 11, 12)
	tagAll(gs, liga)
	assert.True(t, applyLiga(t, gs, gsub, nil))
	assert.Equal(t, []ot.GlyphIndex{211}, gs.GlyphsAt(1))
	//
	// missing backtrack: no match
	gs = streamOf(11, 12)
	tagAll(gs, liga)
	assert.False(t, applyLiga(t, gs, gsub, nil))
	assert.Equal(t, []ot.GlyphIndex{11}, gs.GlyphsAt(0))
	//
	// missing lookahead: no match
	gs = streamOf(10, 11)
	tagAll(gs, liga)
	assert.False(t, applyLiga(t, gs, gsub, nil))
	assert.Equal(t, []ot.GlyphIndex{11}, gs.GlyphsAt(1))
}

func TestApplyContextClassSubst(t *testing.T) {
	teardown := testconfig.QuickConfig(t)
	defer teardown()
	//
	// context format 2: glyphs 10/11 are class 1, glyph 12 is class 2;
	// the rule [class 1, class 2] rewrites the first glyph
	classes := ot.GlyphClasses(10, 1, 1, 2)
	gsub := testGSub(
		[]ot.FeatureRecord{{Tag: liga, LookupIndices: []uint16{0}}},
		[]*ot.Lookup{
			singleLookup(ot.GSubLookupTypeContext, ot.ContextSubst2{
				Coverage: ot.GlyphCoverage(10, 11),
				ClassDef: classes,
				RuleSets: [][]ot.ClassSequenceRule{
					nil, // class 0
					{{Input: []uint16{2}, Records: []ot.SequenceLookupRecord{
						{SequenceIndex: 0, LookupListIndex: 1},
					}}},
				},
			}),
			singleLookup(ot.GSubLookupTypeSingle, ot.SingleSubst1{
				Coverage: ot.GlyphCoverage(10, 11),
				Delta:    100,
			}),
		})
	gs := streamOf(11, 12)
	tagAll(gs, liga)
	assert.True(t, applyLiga(t, gs, gsub, nil))
	assert.Equal(t, []ot.GlyphIndex{111}, gs.GlyphsAt(0))
	assert.Equal(t, []ot.GlyphIndex{12}, gs.GlyphsAt(1))
}

func TestLookupFlagSkipsMarks(t *testing.T) {
	teardown := testconfig.QuickConfig(t)
	defer teardown()
	//
	// a mark between 'f' and 'i' is invisible to the ligature matcher
	// when the lookup ignores marks
	f, mark, i := ot.GlyphIndex(71), ot.GlyphIndex(200), ot.GlyphIndex(74)
	gdef := &ot.GDefTable{
		GlyphClasses: ot.GlyphClasses(200, ot.GDefMarkGlyph),
	}
	lookup := &ot.Lookup{
		Type: ot.GSubLookupTypeLigature,
		Flag: ot.LookupFlagIgnoreMarks,
		Subtables: []ot.Subtable{ot.LigatureSubst{
			Coverage: ot.GlyphCoverage(f),
			LigatureSets: [][]ot.Ligature{{
				{Glyph: 301, Components: []ot.GlyphIndex{i}},
			}},
		}},
	}
	gsub := testGSub(
		[]ot.FeatureRecord{{Tag: liga, LookupIndices: []uint16{0}}},
		[]*ot.Lookup{lookup})
	gs := streamOf(f, mark, i)
	tagAll(gs, liga)
	assert.True(t, applyLiga(t, gs, gsub, gdef))
	require.Equal(t, 1, gs.Count())
	assert.Equal(t, []ot.GlyphIndex{301}, gs.GlyphsAt(0))
	//
	// without the flag the mark blocks the match
	lookup.Flag = 0
	gs = streamOf(f, mark, i)
	tagAll(gs, liga)
	assert.False(t, applyLiga(t, gs, gsub, gdef))
	assert.Equal(t, 3, gs.Count())
}

func TestApplyReverseChainedSubst(t *testing.T) {
	teardown := testconfig.QuickConfig(t)
	defer teardown()
	//
	// reverse chaining single substitution walks right-to-left; glyph 30
	// becomes 130 only when followed by 40
	gsub := testGSub(
		[]ot.FeatureRecord{{Tag: liga, LookupIndices: []uint16{0}}},
		[]*ot.Lookup{singleLookup(ot.GSubLookupTypeReverseChaining, ot.ReverseChainedSubst{
			Coverage:    ot.GlyphCoverage(30),
			Lookahead:   []ot.Coverage{ot.GlyphCoverage(40)},
			Substitutes: []ot.GlyphIndex{130},
		})})
	gs := streamOf(30, 40, 30)
	tagAll(gs, liga)
	assert.True(t, applyLiga(t, gs, gsub, nil))
	assert.Equal(t, []ot.GlyphIndex{130}, gs.GlyphsAt(0))
	assert.Equal(t, []ot.GlyphIndex{40}, gs.GlyphsAt(1))
	assert.Equal(t, []ot.GlyphIndex{30}, gs.GlyphsAt(2)) // no lookahead match
}

func TestNestingLimit(t *testing.T) {
	teardown := testconfig.QuickConfig(t)
	defer teardown()
	//
	// a contextual lookup referencing itself must run into the depth cap
	// and report a malformed font
	gsub := testGSub(
		[]ot.FeatureRecord{{Tag: liga, LookupIndices: []uint16{0}}},
		[]*ot.Lookup{singleLookup(ot.GSubLookupTypeContext, ot.ContextSubst3{
			Coverages: []ot.Coverage{ot.GlyphCoverage(10)},
			Records:   []ot.SequenceLookupRecord{{SequenceIndex: 0, LookupListIndex: 0}},
		})})
	gs := streamOf(10)
	tagAll(gs, liga)
	_, err := ApplyFeatures(gs, gsub, nil, ot.DFLT, ot.DFLT, []ot.Tag{liga})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNestingLimitExceeded)
}

func TestFeaturesApplySequentially(t *testing.T) {
	teardown := testconfig.QuickConfig(t)
	defer teardown()
	//
	// the second feature sees the stream rewritten by the first
	ccmp := ot.T("ccmp")
	gsub := testGSub(
		[]ot.FeatureRecord{
			{Tag: ccmp, LookupIndices: []uint16{0}},
			{Tag: liga, LookupIndices: []uint16{1}},
		},
		[]*ot.Lookup{
			singleLookup(ot.GSubLookupTypeSingle, ot.SingleSubst2{
				Coverage:    ot.GlyphCoverage(10),
				Substitutes: []ot.GlyphIndex{20},
			}),
			singleLookup(ot.GSubLookupTypeSingle, ot.SingleSubst2{
				Coverage:    ot.GlyphCoverage(20),
				Substitutes: []ot.GlyphIndex{30},
			}),
		})
	gs := streamOf(10)
	tagAll(gs, ccmp)
	tagAll(gs, liga)
	changed, err := ApplyFeatures(gs, gsub, nil, ot.DFLT, ot.DFLT, []ot.Tag{ccmp, liga})
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Equal(t, []ot.GlyphIndex{30}, gs.GlyphsAt(0))
}

func TestUnknownScriptFallsBackToDFLT(t *testing.T) {
	teardown := testconfig.QuickConfig(t)
	defer teardown()
	//
	gsub := testGSub(
		[]ot.FeatureRecord{{Tag: liga, LookupIndices: []uint16{0}}},
		[]*ot.Lookup{singleLookup(ot.GSubLookupTypeSingle, ot.SingleSubst2{
			Coverage:    ot.GlyphCoverage(20),
			Substitutes: []ot.GlyphIndex{99},
		})})
	gs := streamOf(20)
	tagAll(gs, liga)
	changed, err := ApplyFeatures(gs, gsub, nil, ot.T("grek"), ot.T("ELL"), []ot.Tag{liga})
	require.NoError(t, err)
	assert.True(t, changed)
}
