package otlayout

import (
	"github.com/npillmayer/glyphs/ot"
)

// The substitution engine: applies GSUB lookups to a glyph stream.
//
// For each enabled feature in the script/language system, in the order the
// font lists it, the feature record resolves to an ordered list of lookup
// indices. For each lookup, the engine walks the stream left-to-right with
// a cursor; at each position subtables of the lookup are attempted in
// declaration order. The first subtable that matches consumes the
// position: the cursor advances by the length of the matched input.
// Features are applied sequentially, i.e. later features see the stream
// rewritten by earlier ones.

// maxNestingDepth caps the recursion depth of nested sequence lookups.
// Exceeding the cap indicates a malformed (or adversarial) font.
const maxNestingDepth = 64

// ErrNestingLimitExceeded reports that recursive context/chained lookups
// exceeded the safety cap. Clients should treat the font as malformed.
var ErrNestingLimitExceeded error = ot.FontError{
	Table:   ot.T("GSUB"),
	Section: "Lookup",
	Issue:   "nested sequence lookups exceed depth limit",
}

// applyCtx carries the per-run state of the substitution engine.
type applyCtx struct {
	stream  *GlyphStream
	lookups []*ot.Lookup  // the font's complete lookup list, for nested lookups
	gdef    *ot.GDefTable // may be nil
	lookup  *ot.Lookup    // lookup currently being applied
	feature ot.Tag        // feature the current lookup belongs to
	alt     int           // selected alternate for lookup type 3
	depth   int           // nesting depth of sequence lookups
}

// ApplyFeatures applies the enabled features of a font's GSUB table to a
// glyph stream, rewriting the stream in place. The script and language
// tags select the applicable script/language system (falling back to DFLT).
//
// ApplyFeatures reports whether any substitution rewrote the stream. The
// only possible error is a nesting-limit violation on malformed fonts.
func ApplyFeatures(stream *GlyphStream, gsub *ot.GSubTable, gdef *ot.GDefTable,
	script, lang ot.Tag, features []ot.Tag) (bool, error) {
	//
	if stream == nil || gsub == nil || stream.Count() == 0 {
		return false, nil
	}
	records := featuresFor(gsub, script, lang, features)
	tracer().Debugf("applying %d features to glyph stream of length %d", len(records), stream.Count())
	ctx := &applyCtx{
		stream:  stream,
		lookups: gsub.Lookups,
		gdef:    gdef,
	}
	changed := false
	for _, record := range records {
		ctx.feature = record.Tag
		for _, inx := range record.LookupIndices {
			if int(inx) >= len(ctx.lookups) {
				continue
			}
			c, err := ctx.applyLookupToStream(ctx.lookups[inx])
			if err != nil {
				return changed, err
			}
			changed = changed || c
		}
	}
	return changed, nil
}

// applyLookupToStream walks the stream with a cursor and attempts the
// lookup's subtables at every position carrying the current feature.
func (ctx *applyCtx) applyLookupToStream(lookup *ot.Lookup) (bool, error) {
	ctx.lookup = lookup
	if isReverseLookup(lookup) {
		return ctx.applyReverseLookup(lookup)
	}
	changed := false
	for pos := 0; pos < ctx.stream.Count(); {
		if !ctx.stream.HasFeature(pos, ctx.feature) || ctx.skipped(pos) {
			pos++
			continue
		}
		next, c, err := ctx.applyLookupAt(lookup, pos)
		if err != nil {
			return changed, err
		}
		changed = changed || c
		if next <= pos { // safeguard cursor monotonicity
			next = pos + 1
		}
		pos = next
	}
	return changed, nil
}

// applyLookupAt attempts the subtables of a lookup, in declaration order,
// at dense position pos. It returns the position the cursor moves to.
func (ctx *applyCtx) applyLookupAt(lookup *ot.Lookup, pos int) (int, bool, error) {
	prev := ctx.lookup
	ctx.lookup = lookup
	defer func() { ctx.lookup = prev }()
	for _, sub := range lookup.Subtables {
		next, changed, err := ctx.applySubtable(sub, pos)
		if err != nil {
			return pos, false, err
		}
		if changed {
			return next, true, nil
		}
	}
	return pos + 1, false, nil
}

// isReverseLookup detects reverse chaining lookups by their subtable
// variant: a reverse lookup delivered through an Extension wrapper still
// carries lookup type 7.
func isReverseLookup(lookup *ot.Lookup) bool {
	if lookup.Type == ot.GSubLookupTypeReverseChaining {
		return true
	}
	if len(lookup.Subtables) == 0 {
		return false
	}
	_, ok := lookup.Subtables[0].(ot.ReverseChainedSubst)
	return ok
}

// applyReverseLookup processes a reverse chaining contextual single
// substitution: the stream is walked right-to-left, one glyph at a time,
// and no nested lookups are applied.
func (ctx *applyCtx) applyReverseLookup(lookup *ot.Lookup) (bool, error) {
	changed := false
	for pos := ctx.stream.Count() - 1; pos >= 0; pos-- {
		if !ctx.stream.HasFeature(pos, ctx.feature) || ctx.skipped(pos) {
			continue
		}
		for _, sub := range lookup.Subtables {
			rc, ok := sub.(ot.ReverseChainedSubst)
			if !ok {
				tracer().Errorf("reverse chaining lookup contains subtable %T", sub)
				continue
			}
			if ctx.applyReverseChained(rc, pos) {
				changed = true
				break
			}
		}
	}
	return changed, nil
}

func (ctx *applyCtx) applyReverseChained(rc ot.ReverseChainedSubst, pos int) bool {
	inx := rc.Coverage.Index(ctx.stream.first(pos))
	if inx < 0 || inx >= len(rc.Substitutes) {
		return false
	}
	if len(rc.Backtrack) > 0 && !ctx.matchCoverageSeqBackward(pos, rc.Backtrack) {
		return false
	}
	if len(rc.Lookahead) > 0 {
		if _, ok := ctx.matchCoverageSeqForward(pos+1, rc.Lookahead); !ok {
			return false
		}
	}
	tracer().Debugf("GSUB 8: subst %d for %d at position %d", rc.Substitutes[inx], ctx.stream.first(pos), pos)
	ctx.stream.Replace(pos, rc.Substitutes[inx])
	return true
}

// applySubtable dispatches on the subtable variant. On a match it returns
// the new cursor position and true.
func (ctx *applyCtx) applySubtable(sub ot.Subtable, pos int) (int, bool, error) {
	switch s := sub.(type) {
	case ot.SingleSubst1:
		// format 1 adds a constant delta to the covered glyph ID
		if s.Coverage.Index(ctx.stream.first(pos)) < 0 {
			return pos, false, nil
		}
		out := ot.GlyphIndex(int(ctx.stream.first(pos)) + int(s.Delta))
		tracer().Debugf("GSUB 1/1: subst %d for %d", out, ctx.stream.first(pos))
		ctx.stream.Replace(pos, out)
		return pos + 1, true, nil
	case ot.SingleSubst2:
		inx := s.Coverage.Index(ctx.stream.first(pos))
		if inx < 0 || inx >= len(s.Substitutes) {
			return pos, false, nil
		}
		tracer().Debugf("GSUB 1/2: subst %d for %d", s.Substitutes[inx], ctx.stream.first(pos))
		ctx.stream.Replace(pos, s.Substitutes[inx])
		return pos + 1, true, nil
	case ot.MultipleSubst:
		inx := s.Coverage.Index(ctx.stream.first(pos))
		if inx < 0 || inx >= len(s.Sequences) || len(s.Sequences[inx]) == 0 {
			return pos, false, nil
		}
		tracer().Debugf("GSUB 2: subst %v for %d", s.Sequences[inx], ctx.stream.first(pos))
		ctx.stream.Expand(pos, s.Sequences[inx])
		return pos + 1, true, nil
	case ot.AlternateSubst:
		inx := s.Coverage.Index(ctx.stream.first(pos))
		if inx < 0 || inx >= len(s.Alternates) || len(s.Alternates[inx]) == 0 {
			return pos, false, nil
		}
		alt := ctx.alt
		if alt < 0 || alt >= len(s.Alternates[inx]) {
			alt = 0 // default alternate
		}
		tracer().Debugf("GSUB 3: subst %d for %d", s.Alternates[inx][alt], ctx.stream.first(pos))
		ctx.stream.Replace(pos, s.Alternates[inx][alt])
		return pos + 1, true, nil
	case ot.LigatureSubst:
		return ctx.applyLigature(s, pos)
	case ot.ContextSubst1:
		return ctx.applyContext1(s, pos)
	case ot.ContextSubst2:
		return ctx.applyContext2(s, pos)
	case ot.ContextSubst3:
		return ctx.applyContext3(s, pos)
	case ot.ChainedContextSubst1:
		return ctx.applyChained1(s, pos)
	case ot.ChainedContextSubst2:
		return ctx.applyChained2(s, pos)
	case ot.ChainedContextSubst3:
		return ctx.applyChained3(s, pos)
	case ot.ReverseChainedSubst:
		// reverse chaining is driven by applyReverseLookup; a nested
		// reference to it is ignored
		return pos, false, nil
	}
	return pos, false, nil
}

func (ctx *applyCtx) applyLigature(s ot.LigatureSubst, pos int) (int, bool, error) {
	inx := s.Coverage.Index(ctx.stream.first(pos))
	if inx < 0 || inx >= len(s.LigatureSets) {
		return pos, false, nil
	}
	for _, lig := range s.LigatureSets[inx] {
		positions, ok := ctx.matchGlyphSeqForward(pos+1, lig.Components)
		if !ok {
			continue
		}
		last := pos
		if len(positions) > 0 {
			last = positions[len(positions)-1]
		}
		tracer().Debugf("GSUB 4: subst ligature %d for %d glyphs at position %d", lig.Glyph, last-pos+1, pos)
		ctx.stream.ReplaceRange(pos, last-pos+1, lig.Glyph)
		return pos + 1, true, nil
	}
	return pos, false, nil
}

func (ctx *applyCtx) applyContext1(s ot.ContextSubst1, pos int) (int, bool, error) {
	inx := s.Coverage.Index(ctx.stream.first(pos))
	if inx < 0 || inx >= len(s.RuleSets) {
		return pos, false, nil
	}
	for _, rule := range s.RuleSets[inx] {
		rest, ok := ctx.matchGlyphSeqForward(pos+1, rule.Input)
		if !ok {
			continue
		}
		matched := append([]int{pos}, rest...)
		return ctx.applyNested(matched, rule.Records, pos)
	}
	return pos, false, nil
}

func (ctx *applyCtx) applyContext2(s ot.ContextSubst2, pos int) (int, bool, error) {
	if s.Coverage.Index(ctx.stream.first(pos)) < 0 {
		return pos, false, nil
	}
	cls := s.ClassDef.Class(ctx.stream.first(pos))
	if cls < 0 || cls >= len(s.RuleSets) {
		return pos, false, nil
	}
	for _, rule := range s.RuleSets[cls] {
		rest, ok := ctx.matchClassSeqForward(pos+1, s.ClassDef, rule.Input)
		if !ok {
			continue
		}
		matched := append([]int{pos}, rest...)
		return ctx.applyNested(matched, rule.Records, pos)
	}
	return pos, false, nil
}

func (ctx *applyCtx) applyContext3(s ot.ContextSubst3, pos int) (int, bool, error) {
	if len(s.Coverages) == 0 {
		return pos, false, nil
	}
	matched, ok := ctx.matchCoverageSeqForward(pos, s.Coverages)
	if !ok {
		return pos, false, nil
	}
	return ctx.applyNested(matched, s.Records, pos)
}

func (ctx *applyCtx) applyChained1(s ot.ChainedContextSubst1, pos int) (int, bool, error) {
	inx := s.Coverage.Index(ctx.stream.first(pos))
	if inx < 0 || inx >= len(s.RuleSets) {
		return pos, false, nil
	}
	for _, rule := range s.RuleSets[inx] {
		rest, ok := ctx.matchGlyphSeqForward(pos+1, rule.Input)
		if !ok {
			continue
		}
		if len(rule.Backtrack) > 0 && !ctx.matchGlyphSeqBackward(pos, rule.Backtrack) {
			continue
		}
		last := pos
		if len(rest) > 0 {
			last = rest[len(rest)-1]
		}
		if len(rule.Lookahead) > 0 {
			if _, ok := ctx.matchGlyphSeqForward(last+1, rule.Lookahead); !ok {
				continue
			}
		}
		matched := append([]int{pos}, rest...)
		return ctx.applyNested(matched, rule.Records, pos)
	}
	return pos, false, nil
}

func (ctx *applyCtx) applyChained2(s ot.ChainedContextSubst2, pos int) (int, bool, error) {
	if s.Coverage.Index(ctx.stream.first(pos)) < 0 {
		return pos, false, nil
	}
	cls := s.InputClassDef.Class(ctx.stream.first(pos))
	if cls < 0 || cls >= len(s.RuleSets) {
		return pos, false, nil
	}
	for _, rule := range s.RuleSets[cls] {
		rest, ok := ctx.matchClassSeqForward(pos+1, s.InputClassDef, rule.Input)
		if !ok {
			continue
		}
		if len(rule.Backtrack) > 0 && !ctx.matchClassSeqBackward(pos, s.BacktrackClassDef, rule.Backtrack) {
			continue
		}
		last := pos
		if len(rest) > 0 {
			last = rest[len(rest)-1]
		}
		if len(rule.Lookahead) > 0 {
			if _, ok := ctx.matchClassSeqForward(last+1, s.LookaheadClassDef, rule.Lookahead); !ok {
				continue
			}
		}
		matched := append([]int{pos}, rest...)
		return ctx.applyNested(matched, rule.Records, pos)
	}
	return pos, false, nil
}

func (ctx *applyCtx) applyChained3(s ot.ChainedContextSubst3, pos int) (int, bool, error) {
	if len(s.Input) == 0 {
		return pos, false, nil
	}
	matched, ok := ctx.matchCoverageSeqForward(pos, s.Input)
	if !ok {
		return pos, false, nil
	}
	if len(s.Backtrack) > 0 && !ctx.matchCoverageSeqBackward(pos, s.Backtrack) {
		return pos, false, nil
	}
	if len(s.Lookahead) > 0 {
		last := matched[len(matched)-1]
		if _, ok := ctx.matchCoverageSeqForward(last+1, s.Lookahead); !ok {
			return pos, false, nil
		}
	}
	return ctx.applyNested(matched, s.Records, pos)
}

// applyNested applies the nested lookups of a matched contextual rule.
// Each sequence lookup record references a matched input position—counting
// only unskipped slots—and a lookup to apply there; control then returns
// to the outer lookup without restarting the outer match.
//
// The substitution reports "changed" if any nested lookup reports changed.
// On success the outer cursor advances past the last matched input slot.
func (ctx *applyCtx) applyNested(matched []int, records []ot.SequenceLookupRecord, pos int) (int, bool, error) {
	if len(records) == 0 {
		return pos, false, nil
	}
	if ctx.depth >= maxNestingDepth {
		return pos, false, ErrNestingLimitExceeded
	}
	ctx.depth++
	defer func() { ctx.depth-- }()
	changed := false
	for _, record := range records {
		if int(record.SequenceIndex) >= len(matched) {
			continue
		}
		if int(record.LookupListIndex) >= len(ctx.lookups) {
			continue
		}
		nested := ctx.lookups[record.LookupListIndex]
		_, c, err := ctx.applyLookupAt(nested, matched[record.SequenceIndex])
		if err != nil {
			return pos, changed, err
		}
		changed = changed || c
	}
	if !changed {
		return pos, false, nil
	}
	next := matched[len(matched)-1] + 1
	if next > ctx.stream.Count() {
		next = ctx.stream.Count()
	}
	return next, true, nil
}
