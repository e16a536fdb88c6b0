// Package testfont assembles small synthetic OpenType fonts and GSUB
// tables in binary form. It exists for tests: unit tests exercise the
// wire format bit-for-bit without shipping font files.
package testfont

import "sort"

// --- Binary assembly helpers -----------------------------------------------

type buffer struct {
	b []byte
}

func (w *buffer) u8(v uint8) *buffer {
	w.b = append(w.b, v)
	return w
}

func (w *buffer) u16(vs ...uint16) *buffer {
	for _, v := range vs {
		w.b = append(w.b, byte(v>>8), byte(v))
	}
	return w
}

func (w *buffer) u32(vs ...uint32) *buffer {
	for _, v := range vs {
		w.b = append(w.b, byte(v>>24), byte(v>>16), byte(v>>8), byte(v))
	}
	return w
}

func (w *buffer) bytes(b []byte) *buffer {
	w.b = append(w.b, b...)
	return w
}

func (w *buffer) patchU16(pos int, v uint16) {
	w.b[pos] = byte(v >> 8)
	w.b[pos+1] = byte(v)
}

func (w *buffer) len() int {
	return len(w.b)
}

func tag(t string) uint32 {
	t = (t + "    ")[:4]
	return uint32(t[0])<<24 | uint32(t[1])<<16 | uint32(t[2])<<8 | uint32(t[3])
}

// --- Coverage and class-def fragments --------------------------------------

// CoverageF1 serializes a coverage table format 1 over a sorted glyph list.
func CoverageF1(gids ...uint16) []byte {
	w := &buffer{}
	w.u16(1, uint16(len(gids)))
	w.u16(gids...)
	return w.b
}

// CoverageF2 serializes a coverage table format 2 from range records
// (start, end, startCoverageIndex) triplets.
func CoverageF2(ranges ...[3]uint16) []byte {
	w := &buffer{}
	w.u16(2, uint16(len(ranges)))
	for _, r := range ranges {
		w.u16(r[0], r[1], r[2])
	}
	return w.b
}

// ClassDefF1 serializes a class-def table format 1.
func ClassDefF1(startGlyph uint16, classes ...uint16) []byte {
	w := &buffer{}
	w.u16(1, startGlyph, uint16(len(classes)))
	w.u16(classes...)
	return w.b
}

// ClassDefF2 serializes a class-def table format 2 from
// (start, end, class) triplets.
func ClassDefF2(ranges ...[3]uint16) []byte {
	w := &buffer{}
	w.u16(2, uint16(len(ranges)))
	for _, r := range ranges {
		w.u16(r[0], r[1], r[2])
	}
	return w.b
}

// --- GSUB subtable fragments ------------------------------------------------

// SingleSubst1 serializes a GSUB type 1 format 1 subtable.
func SingleSubst1(coverage []byte, delta int16) []byte {
	w := &buffer{}
	w.u16(1, 6, uint16(delta))
	w.bytes(coverage)
	return w.b
}

// SingleSubst2 serializes a GSUB type 1 format 2 subtable.
func SingleSubst2(coverage []byte, substitutes ...uint16) []byte {
	w := &buffer{}
	w.u16(2, uint16(6+2*len(substitutes)), uint16(len(substitutes)))
	w.u16(substitutes...)
	w.bytes(coverage)
	return w.b
}

// MultipleSubst serializes a GSUB type 2 subtable.
func MultipleSubst(coverage []byte, sequences ...[]uint16) []byte {
	w := &buffer{}
	n := len(sequences)
	seqStart := 6 + 2*n
	w.u16(1, 0, uint16(n)) // coverage offset patched below
	offs := make([]int, n)
	pos := seqStart
	for i, seq := range sequences {
		offs[i] = pos
		pos += 2 + 2*len(seq)
	}
	for _, off := range offs {
		w.u16(uint16(off))
	}
	for _, seq := range sequences {
		w.u16(uint16(len(seq)))
		w.u16(seq...)
	}
	w.patchU16(2, uint16(w.len()))
	w.bytes(coverage)
	return w.b
}

// AlternateSubst serializes a GSUB type 3 subtable.
func AlternateSubst(coverage []byte, alternates ...[]uint16) []byte {
	w := &buffer{}
	n := len(alternates)
	setStart := 6 + 2*n
	w.u16(1, 0, uint16(n))
	pos := setStart
	for _, alts := range alternates {
		w.u16(uint16(pos))
		pos += 2 + 2*len(alts)
	}
	for _, alts := range alternates {
		w.u16(uint16(len(alts)))
		w.u16(alts...)
	}
	w.patchU16(2, uint16(w.len()))
	w.bytes(coverage)
	return w.b
}

// Lig is one ligature rule for LigatureSubst: the ligature glyph and the
// component glyphs starting with the second one.
type Lig struct {
	Glyph      uint16
	Components []uint16
}

// LigatureSubst serializes a GSUB type 4 subtable. Each ligature set
// corresponds to one glyph of the coverage, in coverage order.
func LigatureSubst(coverage []byte, sets ...[]Lig) []byte {
	w := &buffer{}
	n := len(sets)
	w.u16(1, 0, uint16(n))
	setOffsPos := w.len()
	for range sets {
		w.u16(0) // patched below
	}
	for i, set := range sets {
		w.patchU16(setOffsPos+2*i, uint16(w.len()))
		setStart := w.len()
		w.u16(uint16(len(set)))
		ligOffsPos := w.len()
		for range set {
			w.u16(0) // patched below
		}
		for j, lig := range set {
			w.patchU16(ligOffsPos+2*j, uint16(w.len()-setStart))
			w.u16(lig.Glyph, uint16(len(lig.Components)+1))
			w.u16(lig.Components...)
		}
	}
	w.patchU16(2, uint16(w.len()))
	w.bytes(coverage)
	return w.b
}

// SeqLookup is a (sequenceIndex, lookupListIndex) pair.
type SeqLookup struct {
	SequenceIndex uint16
	LookupIndex   uint16
}

// ContextSubst3 serializes a GSUB type 5 format 3 subtable. Each input
// position is a coverage glyph list.
func ContextSubst3(input [][]uint16, records ...SeqLookup) []byte {
	w := &buffer{}
	w.u16(3, uint16(len(input)), uint16(len(records)))
	covOffsPos := w.len()
	for range input {
		w.u16(0)
	}
	for _, rec := range records {
		w.u16(rec.SequenceIndex, rec.LookupIndex)
	}
	for i, gids := range input {
		w.patchU16(covOffsPos+2*i, uint16(w.len()))
		w.bytes(CoverageF1(gids...))
	}
	return w.b
}

// ChainedContextSubst3 serializes a GSUB type 6 format 3 subtable.
// Backtrack coverages are given in reverse logical order.
func ChainedContextSubst3(backtrack, input, lookahead [][]uint16, records ...SeqLookup) []byte {
	w := &buffer{}
	w.u16(3)
	var patchPositions []int
	writeOffs := func(covs [][]uint16) {
		w.u16(uint16(len(covs)))
		for range covs {
			patchPositions = append(patchPositions, w.len())
			w.u16(0)
		}
	}
	writeOffs(backtrack)
	writeOffs(input)
	writeOffs(lookahead)
	w.u16(uint16(len(records)))
	for _, rec := range records {
		w.u16(rec.SequenceIndex, rec.LookupIndex)
	}
	all := append(append(append([][]uint16{}, backtrack...), input...), lookahead...)
	for i, gids := range all {
		w.patchU16(patchPositions[i], uint16(w.len()))
		w.bytes(CoverageF1(gids...))
	}
	return w.b
}

// ReverseChainedSubst serializes a GSUB type 8 subtable.
func ReverseChainedSubst(coverage []byte, backtrack, lookahead [][]uint16, substitutes ...uint16) []byte {
	w := &buffer{}
	w.u16(1, 0)
	var patchPositions []int
	writeOffs := func(covs [][]uint16) {
		w.u16(uint16(len(covs)))
		for range covs {
			patchPositions = append(patchPositions, w.len())
			w.u16(0)
		}
	}
	writeOffs(backtrack)
	writeOffs(lookahead)
	w.u16(uint16(len(substitutes)))
	w.u16(substitutes...)
	w.patchU16(2, uint16(w.len()))
	w.bytes(coverage)
	all := append(append([][]uint16{}, backtrack...), lookahead...)
	for i, gids := range all {
		w.patchU16(patchPositions[i], uint16(w.len()))
		w.bytes(CoverageF1(gids...))
	}
	return w.b
}

// Extension wraps a subtable into a GSUB type 7 extension indirection.
func Extension(extensionType uint16, subtable []byte) []byte {
	w := &buffer{}
	w.u16(1, extensionType)
	w.u32(8)
	w.bytes(subtable)
	return w.b
}

// --- GSUB table assembly ----------------------------------------------------

// Feature declares a feature record for BuildGSUB.
type Feature struct {
	Tag     string
	Lookups []uint16
}

// Lookup declares a lookup table for BuildGSUB.
type Lookup struct {
	Type      uint16
	Flag      uint16
	Subtables [][]byte
}

// BuildGSUB assembles a complete GSUB table: one DFLT script whose default
// language system enables all given features, the feature list, and the
// lookup list.
func BuildGSUB(features []Feature, lookups []Lookup) []byte {
	// script section: ScriptList + Script + LangSys, self-contained
	scripts := &buffer{}
	scripts.u16(1) // scriptCount
	scripts.u32(tag("DFLT"))
	scripts.u16(8)         // script table offset from ScriptList start
	scripts.u16(4, 0)      // defaultLangSysOffset, langSysCount
	scripts.u16(0, 0xFFFF) // lookupOrderOffset, requiredFeatureIndex
	scripts.u16(uint16(len(features)))
	for i := range features {
		scripts.u16(uint16(i))
	}
	// feature section
	feats := &buffer{}
	feats.u16(uint16(len(features)))
	recPos := feats.len()
	for _, f := range features {
		feats.u32(tag(f.Tag))
		feats.u16(0) // offset patched below
	}
	for i, f := range features {
		feats.patchU16(recPos+6*i+4, uint16(feats.len()))
		feats.u16(0, uint16(len(f.Lookups)))
		feats.u16(f.Lookups...)
	}
	// lookup section
	lks := &buffer{}
	lks.u16(uint16(len(lookups)))
	offsPos := lks.len()
	for range lookups {
		lks.u16(0)
	}
	for i, lk := range lookups {
		lks.patchU16(offsPos+2*i, uint16(lks.len()))
		lkStart := lks.len()
		lks.u16(lk.Type, lk.Flag, uint16(len(lk.Subtables)))
		subOffsPos := lks.len()
		for range lk.Subtables {
			lks.u16(0)
		}
		for j, sub := range lk.Subtables {
			lks.patchU16(subOffsPos+2*j, uint16(lks.len()-lkStart))
			lks.bytes(sub)
		}
	}
	// assemble
	w := &buffer{}
	scriptOff := 10
	featureOff := scriptOff + scripts.len()
	lookupOff := featureOff + feats.len()
	w.u16(1, 0)
	w.u16(uint16(scriptOff), uint16(featureOff), uint16(lookupOff))
	w.bytes(scripts.b)
	w.bytes(feats.b)
	w.bytes(lks.b)
	return w.b
}

// BuildGDEF assembles a GDEF table (version 1.0) from a glyph class-def
// and a mark-attachment class-def fragment. Either may be nil.
func BuildGDEF(glyphClasses, markAttachClasses []byte) []byte {
	w := &buffer{}
	w.u16(1, 0)
	w.u16(0, 0, 0, 0) // four offsets, patched below
	if glyphClasses != nil {
		w.patchU16(4, uint16(w.len()))
		w.bytes(glyphClasses)
	}
	if markAttachClasses != nil {
		w.patchU16(10, uint16(w.len()))
		w.bytes(markAttachClasses)
	}
	return w.b
}

// --- Font assembly ----------------------------------------------------------

// Config describes the synthetic font produced by BuildFont. The cmap maps
// the code-points 0x20…0x7A to glyph IDs 1…0x5B (code-point − 0x1F).
type Config struct {
	UnitsPerEm uint16
	Ascent     int16
	Descent    int16 // negative, as in the 'hhea' table
	LineGap    int16
	Advances   []uint16 // advance width per glyph ID
	GSub       []byte   // optional GSUB table
	GDef       []byte   // optional GDEF table
}

// GID returns the glyph ID the synthetic cmap assigns to a code-point.
func GID(cp rune) uint16 {
	if cp < 0x20 || cp > 0x7A {
		return 0
	}
	return uint16(cp) - 0x1F
}

// BuildFont assembles a complete binary OpenType font with the required
// metrics tables, a format 4 cmap, and optional GSUB/GDEF tables.
func BuildFont(cfg Config) []byte {
	tables := map[string][]byte{
		"cmap": buildCMap(),
		"head": buildHead(cfg.UnitsPerEm),
		"hhea": buildHHea(cfg),
		"hmtx": buildHMtx(cfg.Advances),
		"maxp": buildMaxP(uint16(len(cfg.Advances))),
	}
	if cfg.GSub != nil {
		tables["GSUB"] = cfg.GSub
	}
	if cfg.GDef != nil {
		tables["GDEF"] = cfg.GDef
	}
	names := make([]string, 0, len(tables))
	for name := range tables {
		names = append(names, name)
	}
	sort.Strings(names)
	//
	w := &buffer{}
	w.u32(0x00010000)
	w.u16(uint16(len(names)), 0, 0, 0)
	offset := 12 + 16*len(names)
	for _, name := range names {
		length := len(tables[name])
		w.u32(tag(name), 0, uint32(offset), uint32(length))
		offset += (length + 3) &^ 3 // tables begin on four-byte boundaries
	}
	for _, name := range names {
		w.bytes(tables[name])
		for w.len()%4 != 0 {
			w.u8(0)
		}
	}
	return w.b
}

func buildHead(unitsPerEm uint16) []byte {
	w := &buffer{}
	for i := 0; i < 18; i += 2 {
		w.u16(0)
	}
	w.u16(unitsPerEm)
	for i := 20; i < 54; i += 2 {
		w.u16(0) // indexToLocFormat at offset 50 stays 0 (short)
	}
	return w.b
}

func buildHHea(cfg Config) []byte {
	w := &buffer{}
	w.u16(1, 0)                // version
	w.u16(uint16(cfg.Ascent))  // ascender
	w.u16(uint16(cfg.Descent)) // descender
	w.u16(uint16(cfg.LineGap)) // lineGap
	maxAdvance := uint16(0)
	for _, adv := range cfg.Advances {
		if adv > maxAdvance {
			maxAdvance = adv
		}
	}
	w.u16(maxAdvance)
	for i := 12; i < 34; i += 2 {
		w.u16(0)
	}
	w.u16(uint16(len(cfg.Advances))) // numberOfHMetrics
	return w.b
}

func buildHMtx(advances []uint16) []byte {
	w := &buffer{}
	for _, adv := range advances {
		w.u16(adv, 0)
	}
	return w.b
}

func buildMaxP(numGlyphs uint16) []byte {
	w := &buffer{}
	w.u32(0x00005000)
	w.u16(numGlyphs)
	for i := 6; i < 32; i += 2 {
		w.u16(0)
	}
	return w.b
}

// buildCMap assembles a cmap with one format 4 subtable covering the
// code-points 0x20…0x7A.
func buildCMap() []byte {
	w := &buffer{}
	w.u16(0, 1) // version, numTables
	w.u16(3, 1) // platform Windows, encoding Unicode BMP
	w.u32(12)   // subtable offset
	// format 4 subtable with two segments: [0x20, 0x7A] and the 0xFFFF
	// terminator segment
	segCount := uint16(2)
	w.u16(4)               // format
	w.u16(16 + 8*segCount) // length
	w.u16(0)               // language
	w.u16(segCount * 2)    // segCountX2
	w.u16(4, 1, 0)         // searchRange, entrySelector, rangeShift
	w.u16(0x7A, 0xFFFF)    // endCodes
	w.u16(0)               // reservedPad
	w.u16(0x20, 0xFFFF)    // startCodes
	w.u16(0xFFE1, 1)       // idDeltas: c-0x1F for segment 1; 0xFFFF+1=0 for terminator
	w.u16(0, 0)            // idRangeOffsets
	return w.b
}
