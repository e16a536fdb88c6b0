package otlayout

import "github.com/npillmayer/glyphs/ot"

// Matching helpers shared by contextual and chained-contextual lookups.
//
// A slot is skipped during a match when the lookup flag excludes its GDEF
// glyph class, or when its mark-attachment class does not match the
// configured filter. Coverage and glyph tests read only the first glyph ID
// of a slot's glyph list.

// skipped decides whether the slot at dense position pos is excluded from
// matching by the current lookup's flags.
func (ctx *applyCtx) skipped(pos int) bool {
	flag := ctx.lookup.Flag
	if flag&^ot.LookupFlagRightToLeft == 0 {
		return false
	}
	g := ctx.stream.first(pos)
	class := ctx.gdef.GlyphClass(g)
	switch class {
	case ot.GDefBaseGlyph:
		return flag&ot.LookupFlagIgnoreBaseGlyphs != 0
	case ot.GDefLigatureGlyph:
		return flag&ot.LookupFlagIgnoreLigatures != 0
	case ot.GDefMarkGlyph:
		if flag&ot.LookupFlagIgnoreMarks != 0 {
			return true
		}
		if flag&ot.LookupFlagUseMarkFilteringSet != 0 {
			return !ctx.gdef.MarkGlyphSet(int(ctx.lookup.MarkFilteringSet), g)
		}
		if mtype := flag.MarkAttachmentType(); mtype != 0 {
			return ctx.gdef.MarkAttachClass(g) != mtype
		}
	}
	return false
}

// nextMatchable returns the first dense position ≥ pos which is not
// skipped by the current lookup's flags.
func (ctx *applyCtx) nextMatchable(pos int) (int, bool) {
	for ; pos < ctx.stream.Count(); pos++ {
		if !ctx.skipped(pos) {
			return pos, true
		}
	}
	return pos, false
}

// prevMatchable returns the last dense position ≤ pos which is not
// skipped by the current lookup's flags.
func (ctx *applyCtx) prevMatchable(pos int) (int, bool) {
	for ; pos >= 0; pos-- {
		if !ctx.skipped(pos) {
			return pos, true
		}
	}
	return pos, false
}

// matchGlyphSeqForward matches seq against the matchable slots starting at
// dense position start, returning the matched positions.
func (ctx *applyCtx) matchGlyphSeqForward(start int, seq []ot.GlyphIndex) ([]int, bool) {
	positions := make([]int, 0, len(seq))
	pos := start
	for _, g := range seq {
		mpos, ok := ctx.nextMatchable(pos)
		if !ok || ctx.stream.first(mpos) != g {
			return nil, false
		}
		positions = append(positions, mpos)
		pos = mpos + 1
	}
	return positions, true
}

// matchGlyphSeqBackward matches seq against the matchable slots to the left
// of dense position start (exclusive). seq is in backtrack order: the
// closest glyph first.
func (ctx *applyCtx) matchGlyphSeqBackward(start int, seq []ot.GlyphIndex) bool {
	pos := start - 1
	for _, g := range seq {
		mpos, ok := ctx.prevMatchable(pos)
		if !ok || ctx.stream.first(mpos) != g {
			return false
		}
		pos = mpos - 1
	}
	return true
}

// matchClassSeqForward matches a sequence of glyph classes against the
// matchable slots starting at dense position start.
func (ctx *applyCtx) matchClassSeqForward(start int, cdef ot.ClassDef, seq []uint16) ([]int, bool) {
	positions := make([]int, 0, len(seq))
	pos := start
	for _, cls := range seq {
		mpos, ok := ctx.nextMatchable(pos)
		if !ok || cdef.Class(ctx.stream.first(mpos)) != int(cls) {
			return nil, false
		}
		positions = append(positions, mpos)
		pos = mpos + 1
	}
	return positions, true
}

// matchClassSeqBackward matches a sequence of glyph classes against the
// matchable slots to the left of dense position start (exclusive).
func (ctx *applyCtx) matchClassSeqBackward(start int, cdef ot.ClassDef, seq []uint16) bool {
	pos := start - 1
	for _, cls := range seq {
		mpos, ok := ctx.prevMatchable(pos)
		if !ok || cdef.Class(ctx.stream.first(mpos)) != int(cls) {
			return false
		}
		pos = mpos - 1
	}
	return true
}

// matchCoverageSeqForward matches a sequence of coverage tables against the
// matchable slots starting at dense position start. The slot at the first
// position is included in the match.
func (ctx *applyCtx) matchCoverageSeqForward(start int, covs []ot.Coverage) ([]int, bool) {
	positions := make([]int, 0, len(covs))
	pos := start
	for _, cov := range covs {
		mpos, ok := ctx.nextMatchable(pos)
		if !ok || cov.Index(ctx.stream.first(mpos)) < 0 {
			return nil, false
		}
		positions = append(positions, mpos)
		pos = mpos + 1
	}
	return positions, true
}

// matchCoverageSeqBackward matches a sequence of coverage tables against
// the matchable slots to the left of dense position start (exclusive).
func (ctx *applyCtx) matchCoverageSeqBackward(start int, covs []ot.Coverage) bool {
	pos := start - 1
	for _, cov := range covs {
		mpos, ok := ctx.prevMatchable(pos)
		if !ok || cov.Index(ctx.stream.first(mpos)) < 0 {
			return false
		}
		pos = mpos - 1
	}
	return true
}
