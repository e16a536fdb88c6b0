package otlayout

import (
	"testing"

	"github.com/npillmayer/glyphs/ot"
	"github.com/npillmayer/schuko/testconfig"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func streamOf(gids ...ot.GlyphIndex) *GlyphStream {
	gs := NewGlyphStream(len(gids))
	for i, gid := range gids {
		gs.Add(gid, rune('a'+i), i)
	}
	return gs
}

func offsets(gs *GlyphStream) []int {
	offs := make([]int, gs.Count())
	for i := range offs {
		_, offs[i], _ = gs.At(i)
	}
	return offs
}

func TestStreamAdd(t *testing.T) {
	teardown := testconfig.QuickConfig(t)
	defer teardown()
	//
	gs := streamOf(10, 20, 30)
	assert.Equal(t, 3, gs.Count())
	cp, offset, gids := gs.At(1)
	assert.Equal(t, 'b', cp)
	assert.Equal(t, 1, offset)
	assert.Equal(t, []ot.GlyphIndex{20}, gids)
	//
	cp, gids, ok := gs.AtOffset(2)
	require.True(t, ok)
	assert.Equal(t, 'c', cp)
	assert.Equal(t, []ot.GlyphIndex{30}, gids)
	_, _, ok = gs.AtOffset(7)
	assert.False(t, ok)
}

func TestStreamAddRejectsDuplicateOffset(t *testing.T) {
	teardown := testconfig.QuickConfig(t)
	defer teardown()
	//
	gs := streamOf(10)
	assert.Panics(t, func() { gs.Add(20, 'x', 0) })
	assert.Panics(t, func() { gs.Add(20, 'x', -1) })
}

func TestStreamReplaceKeepsOffsets(t *testing.T) {
	teardown := testconfig.QuickConfig(t)
	defer teardown()
	//
	gs := streamOf(10, 20, 30)
	gs.Replace(1, 99)
	assert.Equal(t, []ot.GlyphIndex{99}, gs.GlyphsAt(1))
	assert.Equal(t, []int{0, 1, 2}, offsets(gs))
}

func TestStreamLigatureCollapse(t *testing.T) {
	teardown := testconfig.QuickConfig(t)
	defer teardown()
	//
	// collapsing must retain the first slot's offset and decrease the
	// count by exactly inputLength-1
	gs := streamOf(10, 20, 30, 40)
	gs.ReplaceRange(1, 2, 77)
	assert.Equal(t, 3, gs.Count())
	assert.Equal(t, []int{0, 1, 3}, offsets(gs))
	assert.Equal(t, []ot.GlyphIndex{77}, gs.GlyphsAt(1))
	//
	// the discarded offset is gone for good
	_, _, ok := gs.AtOffset(2)
	assert.False(t, ok)
	//
	// offsets stay strictly monotonic after further mutation
	gs.ReplaceRange(0, 2, 88)
	assert.Equal(t, []int{0, 3}, offsets(gs))
}

func TestStreamExpand(t *testing.T) {
	teardown := testconfig.QuickConfig(t)
	defer teardown()
	//
	// expansion keeps the position count, the slot carries the glyph list
	gs := streamOf(10, 20)
	gs.Expand(0, []ot.GlyphIndex{1, 2, 3})
	assert.Equal(t, 2, gs.Count())
	assert.Equal(t, []ot.GlyphIndex{1, 2, 3}, gs.GlyphsAt(0))
	assert.Equal(t, []int{0, 1}, offsets(gs))
	//
	assert.Panics(t, func() { gs.Expand(1, nil) })
}

func TestStreamFeatures(t *testing.T) {
	teardown := testconfig.QuickConfig(t)
	defer teardown()
	//
	gs := streamOf(10, 20)
	liga, kern := ot.T("liga"), ot.T("kern")
	gs.AddFeature(0, liga)
	gs.AddFeature(0, liga) // sets are idempotent
	gs.AddFeature(0, kern)
	assert.True(t, gs.HasFeature(0, liga))
	assert.False(t, gs.HasFeature(1, liga))
	assert.ElementsMatch(t, []ot.Tag{liga, kern}, gs.Features(0))
	assert.Empty(t, gs.Features(1))
}

func TestStreamFeaturesSurviveCollapse(t *testing.T) {
	teardown := testconfig.QuickConfig(t)
	defer teardown()
	//
	gs := streamOf(10, 20, 30)
	liga := ot.T("liga")
	gs.AddFeature(0, liga)
	gs.AddFeature(2, liga)
	gs.ReplaceRange(0, 2, 55)
	assert.True(t, gs.HasFeature(0, liga))
	assert.True(t, gs.HasFeature(1, liga))
}

func TestStreamClear(t *testing.T) {
	teardown := testconfig.QuickConfig(t)
	defer teardown()
	//
	gs := streamOf(10, 20)
	gs.AddFeature(0, ot.T("liga"))
	gs.Clear()
	assert.Equal(t, 0, gs.Count())
	gs.Add(5, 'x', 0) // offsets may restart after a clear
	assert.Equal(t, 1, gs.Count())
}

func TestStreamOutOfRangePanics(t *testing.T) {
	teardown := testconfig.QuickConfig(t)
	defer teardown()
	//
	gs := streamOf(10)
	assert.Panics(t, func() { gs.GlyphsAt(1) })
	assert.Panics(t, func() { gs.Replace(-1, 5) })
	assert.Panics(t, func() { gs.ReplaceRange(0, 2, 5) })
}
