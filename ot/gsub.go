package ot

// GSubTable is a type representing an OpenType GSUB table
// (see https://docs.microsoft.com/en-us/typography/opentype/spec/gsub).
type GSubTable struct {
	tableBase
	LayoutTable
}

func newGSubTable(tag Tag, b binarySegm, offset, size uint32) *GSubTable {
	t := &GSubTable{}
	t.tableBase = tableBase{
		data:   b,
		name:   tag,
		offset: offset,
		length: size,
	}
	return t
}

var _ Table = &GSubTable{}

// GSUB LookupType Enumeration
// https://docs.microsoft.com/en-us/typography/opentype/spec/gsub#table-organization
const (
	GSubLookupTypeSingle          uint16 = 1 // Replace one glyph with one glyph
	GSubLookupTypeMultiple        uint16 = 2 // Replace one glyph with more than one glyph
	GSubLookupTypeAlternate       uint16 = 3 // Replace one glyph with one of many glyphs
	GSubLookupTypeLigature        uint16 = 4 // Replace multiple glyphs with one glyph
	GSubLookupTypeContext         uint16 = 5 // Replace one or more glyphs in context
	GSubLookupTypeChainingContext uint16 = 6 // Replace one or more glyphs in chained context
	GSubLookupTypeExtension       uint16 = 7 // Extension mechanism for other substitutions
	GSubLookupTypeReverseChaining uint16 = 8 // Applied in reverse order, replace single glyph in chaining context
)

// GSubLookupTypeString returns a readable name for a GSUB lookup type.
func GSubLookupTypeString(lutype uint16) string {
	switch lutype {
	case GSubLookupTypeSingle:
		return "GSUB_Single"
	case GSubLookupTypeMultiple:
		return "GSUB_Multiple"
	case GSubLookupTypeAlternate:
		return "GSUB_Alternate"
	case GSubLookupTypeLigature:
		return "GSUB_Ligature"
	case GSubLookupTypeContext:
		return "GSUB_Context"
	case GSubLookupTypeChainingContext:
		return "GSUB_ChainingContext"
	case GSubLookupTypeExtension:
		return "GSUB_Extension"
	case GSubLookupTypeReverseChaining:
		return "GSUB_ReverseChaining"
	}
	return "GSUB_???"
}

// --- Subtable variants -----------------------------------------------------

// The inheritance tree of lookup subtables found in object-oriented
// renditions of OpenType becomes a tagged union here: one concrete type
// per subtable variant, dispatched by type switch in the substitution
// engine. Extension subtables (type 7) are resolved at parse time and do
// not appear as a variant of their own.

// SingleSubst1 replaces a covered glyph by adding a delta to its glyph ID
// (GSUB lookup type 1, format 1).
type SingleSubst1 struct {
	Coverage Coverage
	Delta    int16
}

// SingleSubst2 replaces a covered glyph by the substitute at its coverage
// index (GSUB lookup type 1, format 2).
type SingleSubst2 struct {
	Coverage    Coverage
	Substitutes []GlyphIndex
}

// MultipleSubst replaces a covered glyph by an ordered sequence of glyphs
// (GSUB lookup type 2).
type MultipleSubst struct {
	Coverage  Coverage
	Sequences [][]GlyphIndex
}

// AlternateSubst offers a set of alternate glyphs per covered glyph
// (GSUB lookup type 3). Clients select an alternate by index.
type AlternateSubst struct {
	Coverage   Coverage
	Alternates [][]GlyphIndex
}

// Ligature is one ligature rule: a covered first glyph (implicit), the
// remaining component glyphs, and the ligature glyph replacing them.
type Ligature struct {
	Glyph      GlyphIndex   // ligature glyph to substitute
	Components []GlyphIndex // component glyph IDs, starting with the second component
}

// LigatureSubst replaces a sequence of glyphs by a single ligature glyph
// (GSUB lookup type 4). LigatureSets are indexed by the coverage index of
// the first component.
type LigatureSubst struct {
	Coverage     Coverage
	LigatureSets [][]Ligature
}

// SequenceRule is a contextual rule matching specific glyph IDs. Input
// starts with the second glyph of the sequence; the first is given by the
// enclosing subtable's coverage.
type SequenceRule struct {
	Input   []GlyphIndex
	Records []SequenceLookupRecord
}

// ClassSequenceRule is a contextual rule matching glyph classes.
type ClassSequenceRule struct {
	Input   []uint16
	Records []SequenceLookupRecord
}

// ContextSubst1 matches sequences of specific glyph IDs
// (GSUB lookup type 5, format 1). RuleSets are indexed by coverage index.
type ContextSubst1 struct {
	Coverage Coverage
	RuleSets [][]SequenceRule
}

// ContextSubst2 matches sequences of glyph classes
// (GSUB lookup type 5, format 2). RuleSets are indexed by the class of the
// first glyph.
type ContextSubst2 struct {
	Coverage Coverage
	ClassDef ClassDef
	RuleSets [][]ClassSequenceRule
}

// ContextSubst3 matches one sequence given by per-position coverage tables
// (GSUB lookup type 5, format 3).
type ContextSubst3 struct {
	Coverages []Coverage
	Records   []SequenceLookupRecord
}

// ChainedSequenceRule is a chained contextual rule over specific glyph IDs.
type ChainedSequenceRule struct {
	Backtrack []GlyphIndex // in reverse logical order, closest glyph first
	Input     []GlyphIndex // starting with the second glyph
	Lookahead []GlyphIndex
	Records   []SequenceLookupRecord
}

// ChainedClassSequenceRule is a chained contextual rule over glyph classes.
type ChainedClassSequenceRule struct {
	Backtrack []uint16
	Input     []uint16
	Lookahead []uint16
	Records   []SequenceLookupRecord
}

// ChainedContextSubst1 matches chained sequences of specific glyph IDs
// (GSUB lookup type 6, format 1).
type ChainedContextSubst1 struct {
	Coverage Coverage
	RuleSets [][]ChainedSequenceRule
}

// ChainedContextSubst2 matches chained sequences of glyph classes
// (GSUB lookup type 6, format 2).
type ChainedContextSubst2 struct {
	Coverage          Coverage
	BacktrackClassDef ClassDef
	InputClassDef     ClassDef
	LookaheadClassDef ClassDef
	RuleSets          [][]ChainedClassSequenceRule
}

// ChainedContextSubst3 matches one chained sequence given by per-position
// coverage tables (GSUB lookup type 6, format 3).
type ChainedContextSubst3 struct {
	Backtrack []Coverage
	Input     []Coverage
	Lookahead []Coverage
	Records   []SequenceLookupRecord
}

// ReverseChainedSubst is the reverse chaining contextual single
// substitution (GSUB lookup type 8). It is applied walking right-to-left
// and must not apply nested lookups.
type ReverseChainedSubst struct {
	Coverage    Coverage
	Backtrack   []Coverage
	Lookahead   []Coverage
	Substitutes []GlyphIndex
}

func (SingleSubst1) subtable()         {}
func (SingleSubst2) subtable()         {}
func (MultipleSubst) subtable()        {}
func (AlternateSubst) subtable()       {}
func (LigatureSubst) subtable()        {}
func (ContextSubst1) subtable()        {}
func (ContextSubst2) subtable()        {}
func (ContextSubst3) subtable()        {}
func (ChainedContextSubst1) subtable() {}
func (ChainedContextSubst2) subtable() {}
func (ChainedContextSubst3) subtable() {}
func (ReverseChainedSubst) subtable()  {}

// --- GSUB table parsing ----------------------------------------------------

var gsubTag = T("GSUB")

// parseGSub parses a complete GSUB table from its binary segment.
func parseGSub(t *GSubTable) error {
	b := t.bytes()
	// GSUB header 1.0:
	// uint16   | majorVersion | minorVersion
	// Offset16 | scriptListOffset | featureListOffset | lookupListOffset
	// Version 1.1 adds Offset32 featureVariationsOffset, which we skip.
	major, err := b.u16(0)
	if err != nil || major != 1 {
		return malformed(gsubTag, "Header", "unsupported table version", 0)
	}
	scriptListOffset := int(b.U16(4))
	featureListOffset := int(b.U16(6))
	lookupListOffset := int(b.U16(8))
	if t.Scripts, err = parseScriptList(b, scriptListOffset, gsubTag); err != nil {
		return err
	}
	if t.Features, err = parseFeatureList(b, featureListOffset, gsubTag); err != nil {
		return err
	}
	if t.Lookups, err = parseLookupList(b, lookupListOffset, gsubTag, parseGSubSubtable); err != nil {
		return err
	}
	return nil
}

// parseGSubSubtable interprets one GSUB lookup subtable at offset within b.
// For Extension subtables the indirection is followed immediately; the
// resolved subtable is returned in place of the extension wrapper.
func parseGSubSubtable(b binarySegm, offset int, lookupType uint16) (Subtable, error) {
	format, err := b.u16(offset)
	if err != nil {
		return nil, malformed(gsubTag, GSubLookupTypeString(lookupType), "subtable header", offset)
	}
	switch lookupType {
	case GSubLookupTypeSingle:
		return parseSingleSubst(b, offset, format)
	case GSubLookupTypeMultiple:
		return parseMultipleSubst(b, offset, format)
	case GSubLookupTypeAlternate:
		return parseAlternateSubst(b, offset, format)
	case GSubLookupTypeLigature:
		return parseLigatureSubst(b, offset, format)
	case GSubLookupTypeContext:
		return parseContextSubst(b, offset, format)
	case GSubLookupTypeChainingContext:
		return parseChainedContextSubst(b, offset, format)
	case GSubLookupTypeExtension:
		// ExtensionSubstFormat1:
		// uint16   | substFormat         | = 1
		// uint16   | extensionLookupType | any type except 7
		// Offset32 | extensionOffset     | from start of this subtable
		if format != 1 {
			return nil, malformed(gsubTag, "ExtensionSubst", "invalid subtable format", offset)
		}
		extType := b.U16(offset + 2)
		extOffset, err := b.offset32(offset + 4)
		if err != nil || extType == GSubLookupTypeExtension {
			return nil, malformed(gsubTag, "ExtensionSubst", "invalid extension indirection", offset)
		}
		return parseGSubSubtable(b, offset+extOffset, extType)
	case GSubLookupTypeReverseChaining:
		return parseReverseChainedSubst(b, offset, format)
	}
	return nil, malformed(gsubTag, "Lookup", "invalid lookup type", offset)
}

func parseSingleSubst(b binarySegm, offset int, format uint16) (Subtable, error) {
	covOffset := int(b.U16(offset + 2))
	cov, err := parseCoverage(b, offset+covOffset, gsubTag, "SingleSubst")
	if err != nil {
		return nil, err
	}
	switch format {
	case 1:
		return SingleSubst1{Coverage: cov, Delta: b.I16(offset + 4)}, nil
	case 2:
		count := int(b.U16(offset + 4))
		seg, err := b.view(offset+6, count*2)
		if err != nil {
			return nil, malformed(gsubTag, "SingleSubst", "substitute glyph array", offset)
		}
		return SingleSubst2{Coverage: cov, Substitutes: seg.glyphs(count)}, nil
	}
	return nil, malformed(gsubTag, "SingleSubst", "invalid subtable format", offset)
}

func parseMultipleSubst(b binarySegm, offset int, format uint16) (Subtable, error) {
	if format != 1 {
		return nil, malformed(gsubTag, "MultipleSubst", "invalid subtable format", offset)
	}
	covOffset := int(b.U16(offset + 2))
	cov, err := parseCoverage(b, offset+covOffset, gsubTag, "MultipleSubst")
	if err != nil {
		return nil, err
	}
	count := int(b.U16(offset + 4))
	offs, err := b.view(offset+6, count*2)
	if err != nil {
		return nil, malformed(gsubTag, "MultipleSubst", "sequence offsets", offset)
	}
	sequences := make([][]GlyphIndex, count)
	for i := 0; i < count; i++ {
		seqOffset := offset + int(u16(offs[i*2:]))
		glyphCount := int(b.U16(seqOffset))
		seg, err := b.view(seqOffset+2, glyphCount*2)
		if err != nil {
			return nil, malformed(gsubTag, "MultipleSubst", "sequence table", seqOffset)
		}
		sequences[i] = seg.glyphs(glyphCount)
	}
	return MultipleSubst{Coverage: cov, Sequences: sequences}, nil
}

func parseAlternateSubst(b binarySegm, offset int, format uint16) (Subtable, error) {
	if format != 1 {
		return nil, malformed(gsubTag, "AlternateSubst", "invalid subtable format", offset)
	}
	covOffset := int(b.U16(offset + 2))
	cov, err := parseCoverage(b, offset+covOffset, gsubTag, "AlternateSubst")
	if err != nil {
		return nil, err
	}
	count := int(b.U16(offset + 4))
	offs, err := b.view(offset+6, count*2)
	if err != nil {
		return nil, malformed(gsubTag, "AlternateSubst", "alternate set offsets", offset)
	}
	alternates := make([][]GlyphIndex, count)
	for i := 0; i < count; i++ {
		setOffset := offset + int(u16(offs[i*2:]))
		glyphCount := int(b.U16(setOffset))
		seg, err := b.view(setOffset+2, glyphCount*2)
		if err != nil {
			return nil, malformed(gsubTag, "AlternateSubst", "alternate set table", setOffset)
		}
		alternates[i] = seg.glyphs(glyphCount)
	}
	return AlternateSubst{Coverage: cov, Alternates: alternates}, nil
}

func parseLigatureSubst(b binarySegm, offset int, format uint16) (Subtable, error) {
	if format != 1 {
		return nil, malformed(gsubTag, "LigatureSubst", "invalid subtable format", offset)
	}
	covOffset := int(b.U16(offset + 2))
	cov, err := parseCoverage(b, offset+covOffset, gsubTag, "LigatureSubst")
	if err != nil {
		return nil, err
	}
	setCount := int(b.U16(offset + 4))
	setOffs, err := b.view(offset+6, setCount*2)
	if err != nil {
		return nil, malformed(gsubTag, "LigatureSubst", "ligature set offsets", offset)
	}
	sets := make([][]Ligature, setCount)
	for i := 0; i < setCount; i++ {
		setOffset := offset + int(u16(setOffs[i*2:]))
		ligCount := int(b.U16(setOffset))
		ligOffs, err := b.view(setOffset+2, ligCount*2)
		if err != nil {
			return nil, malformed(gsubTag, "LigatureSubst", "ligature offsets", setOffset)
		}
		ligatures := make([]Ligature, ligCount)
		for j := 0; j < ligCount; j++ {
			ligOffset := setOffset + int(u16(ligOffs[j*2:]))
			// Ligature table:
			// uint16 | ligatureGlyph
			// uint16 | componentCount
			// uint16 | componentGlyphIDs[componentCount-1]
			ligGlyph := GlyphIndex(b.U16(ligOffset))
			componentCount := int(b.U16(ligOffset + 2))
			if componentCount < 1 {
				return nil, malformed(gsubTag, "LigatureSubst", "empty ligature component sequence", ligOffset)
			}
			seg, err := b.view(ligOffset+4, (componentCount-1)*2)
			if componentCount > 1 && err != nil {
				return nil, malformed(gsubTag, "LigatureSubst", "ligature component glyphs", ligOffset)
			}
			ligatures[j] = Ligature{
				Glyph:      ligGlyph,
				Components: seg.glyphs(componentCount - 1),
			}
		}
		sets[i] = ligatures
	}
	return LigatureSubst{Coverage: cov, LigatureSets: sets}, nil
}

// parseSequenceLookupRecords reads seqLookupCount records at offset.
func parseSequenceLookupRecords(b binarySegm, offset int, count int, section string) ([]SequenceLookupRecord, error) {
	seg, err := b.view(offset, count*4)
	if count > 0 && err != nil {
		return nil, malformed(gsubTag, section, "sequence lookup records", offset)
	}
	records := make([]SequenceLookupRecord, count)
	for i := 0; i < count; i++ {
		records[i] = SequenceLookupRecord{
			SequenceIndex:   u16(seg[i*4:]),
			LookupListIndex: u16(seg[i*4+2:]),
		}
	}
	return records, nil
}

func parseContextSubst(b binarySegm, offset int, format uint16) (Subtable, error) {
	switch format {
	case 1:
		covOffset := int(b.U16(offset + 2))
		cov, err := parseCoverage(b, offset+covOffset, gsubTag, "ContextSubst")
		if err != nil {
			return nil, err
		}
		setCount := int(b.U16(offset + 4))
		setOffs, err := b.view(offset+6, setCount*2)
		if err != nil {
			return nil, malformed(gsubTag, "ContextSubst", "rule set offsets", offset)
		}
		ruleSets := make([][]SequenceRule, setCount)
		for i := 0; i < setCount; i++ {
			setOff := int(u16(setOffs[i*2:]))
			if setOff == 0 { // NULL offset: no rules for this coverage index
				continue
			}
			setOffset := offset + setOff
			ruleCount := int(b.U16(setOffset))
			ruleOffs, err := b.view(setOffset+2, ruleCount*2)
			if err != nil {
				return nil, malformed(gsubTag, "ContextSubst", "rule offsets", setOffset)
			}
			rules := make([]SequenceRule, ruleCount)
			for j := 0; j < ruleCount; j++ {
				ruleOffset := setOffset + int(u16(ruleOffs[j*2:]))
				// SequenceRule:
				// uint16 | glyphCount
				// uint16 | seqLookupCount
				// uint16 | inputSequence[glyphCount-1]
				// SequenceLookupRecord | seqLookupRecords[seqLookupCount]
				glyphCount := int(b.U16(ruleOffset))
				recCount := int(b.U16(ruleOffset + 2))
				if glyphCount < 1 {
					return nil, malformed(gsubTag, "ContextSubst", "empty input sequence", ruleOffset)
				}
				seg, err := b.view(ruleOffset+4, (glyphCount-1)*2)
				if glyphCount > 1 && err != nil {
					return nil, malformed(gsubTag, "ContextSubst", "input sequence", ruleOffset)
				}
				records, err := parseSequenceLookupRecords(b, ruleOffset+4+(glyphCount-1)*2, recCount, "ContextSubst")
				if err != nil {
					return nil, err
				}
				rules[j] = SequenceRule{Input: seg.glyphs(glyphCount - 1), Records: records}
			}
			ruleSets[i] = rules
		}
		return ContextSubst1{Coverage: cov, RuleSets: ruleSets}, nil
	case 2:
		covOffset := int(b.U16(offset + 2))
		cov, err := parseCoverage(b, offset+covOffset, gsubTag, "ContextSubst")
		if err != nil {
			return nil, err
		}
		cdef, err := parseClassDef(b, offset+int(b.U16(offset+4)), gsubTag, "ContextSubst")
		if err != nil {
			return nil, err
		}
		setCount := int(b.U16(offset + 6))
		setOffs, err := b.view(offset+8, setCount*2)
		if err != nil {
			return nil, malformed(gsubTag, "ContextSubst", "class rule set offsets", offset)
		}
		ruleSets := make([][]ClassSequenceRule, setCount)
		for i := 0; i < setCount; i++ {
			setOff := int(u16(setOffs[i*2:]))
			if setOff == 0 { // NULL offset: no rules for this class
				continue
			}
			setOffset := offset + setOff
			ruleCount := int(b.U16(setOffset))
			ruleOffs, err := b.view(setOffset+2, ruleCount*2)
			if err != nil {
				return nil, malformed(gsubTag, "ContextSubst", "class rule offsets", setOffset)
			}
			rules := make([]ClassSequenceRule, ruleCount)
			for j := 0; j < ruleCount; j++ {
				ruleOffset := setOffset + int(u16(ruleOffs[j*2:]))
				glyphCount := int(b.U16(ruleOffset))
				recCount := int(b.U16(ruleOffset + 2))
				if glyphCount < 1 {
					return nil, malformed(gsubTag, "ContextSubst", "empty class sequence", ruleOffset)
				}
				seg, err := b.view(ruleOffset+4, (glyphCount-1)*2)
				if glyphCount > 1 && err != nil {
					return nil, malformed(gsubTag, "ContextSubst", "class sequence", ruleOffset)
				}
				records, err := parseSequenceLookupRecords(b, ruleOffset+4+(glyphCount-1)*2, recCount, "ContextSubst")
				if err != nil {
					return nil, err
				}
				rules[j] = ClassSequenceRule{Input: seg.u16s(glyphCount - 1), Records: records}
			}
			ruleSets[i] = rules
		}
		return ContextSubst2{Coverage: cov, ClassDef: cdef, RuleSets: ruleSets}, nil
	case 3:
		// SequenceContextFormat3:
		// uint16   | format = 3
		// uint16   | glyphCount
		// uint16   | seqLookupCount
		// Offset16 | coverageOffsets[glyphCount]
		// SequenceLookupRecord | seqLookupRecords[seqLookupCount]
		glyphCount := int(b.U16(offset + 2))
		recCount := int(b.U16(offset + 4))
		if glyphCount < 1 {
			return nil, malformed(gsubTag, "ContextSubst", "empty coverage sequence", offset)
		}
		covs, err := parseCoverageSequence(b, offset+6, offset, glyphCount, "ContextSubst")
		if err != nil {
			return nil, err
		}
		records, err := parseSequenceLookupRecords(b, offset+6+glyphCount*2, recCount, "ContextSubst")
		if err != nil {
			return nil, err
		}
		return ContextSubst3{Coverages: covs, Records: records}, nil
	}
	return nil, malformed(gsubTag, "ContextSubst", "invalid subtable format", offset)
}

// parseCoverageSequence reads count coverage offsets located at offsetArray,
// each relative to subtableOffset.
func parseCoverageSequence(b binarySegm, offsetArray, subtableOffset, count int, section string) ([]Coverage, error) {
	offs, err := b.view(offsetArray, count*2)
	if count > 0 && err != nil {
		return nil, malformed(gsubTag, section, "coverage offsets", offsetArray)
	}
	covs := make([]Coverage, count)
	for i := 0; i < count; i++ {
		covs[i], err = parseCoverage(b, subtableOffset+int(u16(offs[i*2:])), gsubTag, section)
		if err != nil {
			return nil, err
		}
	}
	return covs, nil
}

func parseChainedContextSubst(b binarySegm, offset int, format uint16) (Subtable, error) {
	switch format {
	case 1:
		covOffset := int(b.U16(offset + 2))
		cov, err := parseCoverage(b, offset+covOffset, gsubTag, "ChainedContextSubst")
		if err != nil {
			return nil, err
		}
		setCount := int(b.U16(offset + 4))
		setOffs, err := b.view(offset+6, setCount*2)
		if err != nil {
			return nil, malformed(gsubTag, "ChainedContextSubst", "chained rule set offsets", offset)
		}
		ruleSets := make([][]ChainedSequenceRule, setCount)
		for i := 0; i < setCount; i++ {
			setOff := int(u16(setOffs[i*2:]))
			if setOff == 0 {
				continue
			}
			setOffset := offset + setOff
			ruleCount := int(b.U16(setOffset))
			ruleOffs, err := b.view(setOffset+2, ruleCount*2)
			if err != nil {
				return nil, malformed(gsubTag, "ChainedContextSubst", "chained rule offsets", setOffset)
			}
			rules := make([]ChainedSequenceRule, ruleCount)
			for j := 0; j < ruleCount; j++ {
				rule, err := parseChainedSequenceRule(b, setOffset+int(u16(ruleOffs[j*2:])))
				if err != nil {
					return nil, err
				}
				rules[j] = rule
			}
			ruleSets[i] = rules
		}
		return ChainedContextSubst1{Coverage: cov, RuleSets: ruleSets}, nil
	case 2:
		covOffset := int(b.U16(offset + 2))
		cov, err := parseCoverage(b, offset+covOffset, gsubTag, "ChainedContextSubst")
		if err != nil {
			return nil, err
		}
		backtrack, err := parseClassDef(b, offset+int(b.U16(offset+4)), gsubTag, "ChainedContextSubst")
		if err != nil {
			return nil, err
		}
		input, err := parseClassDef(b, offset+int(b.U16(offset+6)), gsubTag, "ChainedContextSubst")
		if err != nil {
			return nil, err
		}
		lookahead, err := parseClassDef(b, offset+int(b.U16(offset+8)), gsubTag, "ChainedContextSubst")
		if err != nil {
			return nil, err
		}
		setCount := int(b.U16(offset + 10))
		setOffs, err := b.view(offset+12, setCount*2)
		if err != nil {
			return nil, malformed(gsubTag, "ChainedContextSubst", "chained class rule set offsets", offset)
		}
		ruleSets := make([][]ChainedClassSequenceRule, setCount)
		for i := 0; i < setCount; i++ {
			setOff := int(u16(setOffs[i*2:]))
			if setOff == 0 {
				continue
			}
			setOffset := offset + setOff
			ruleCount := int(b.U16(setOffset))
			ruleOffs, err := b.view(setOffset+2, ruleCount*2)
			if err != nil {
				return nil, malformed(gsubTag, "ChainedContextSubst", "chained class rule offsets", setOffset)
			}
			rules := make([]ChainedClassSequenceRule, ruleCount)
			for j := 0; j < ruleCount; j++ {
				rule, err := parseChainedClassSequenceRule(b, setOffset+int(u16(ruleOffs[j*2:])))
				if err != nil {
					return nil, err
				}
				rules[j] = rule
			}
			ruleSets[i] = rules
		}
		return ChainedContextSubst2{
			Coverage:          cov,
			BacktrackClassDef: backtrack,
			InputClassDef:     input,
			LookaheadClassDef: lookahead,
			RuleSets:          ruleSets,
		}, nil
	case 3:
		// ChainedSequenceContextFormat3:
		// uint16   | format = 3
		// uint16   | backtrackGlyphCount | Offset16 backtrackCoverageOffsets[]
		// uint16   | inputGlyphCount     | Offset16 inputCoverageOffsets[]
		// uint16   | lookaheadGlyphCount | Offset16 lookaheadCoverageOffsets[]
		// uint16   | seqLookupCount      | SequenceLookupRecord seqLookupRecords[]
		pos := offset + 2
		backtrackCount := int(b.U16(pos))
		backtrack, err := parseCoverageSequence(b, pos+2, offset, backtrackCount, "ChainedContextSubst")
		if err != nil {
			return nil, err
		}
		pos += 2 + backtrackCount*2
		inputCount := int(b.U16(pos))
		if inputCount < 1 {
			return nil, malformed(gsubTag, "ChainedContextSubst", "empty input coverage sequence", offset)
		}
		input, err := parseCoverageSequence(b, pos+2, offset, inputCount, "ChainedContextSubst")
		if err != nil {
			return nil, err
		}
		pos += 2 + inputCount*2
		lookaheadCount := int(b.U16(pos))
		lookahead, err := parseCoverageSequence(b, pos+2, offset, lookaheadCount, "ChainedContextSubst")
		if err != nil {
			return nil, err
		}
		pos += 2 + lookaheadCount*2
		recCount := int(b.U16(pos))
		records, err := parseSequenceLookupRecords(b, pos+2, recCount, "ChainedContextSubst")
		if err != nil {
			return nil, err
		}
		return ChainedContextSubst3{
			Backtrack: backtrack,
			Input:     input,
			Lookahead: lookahead,
			Records:   records,
		}, nil
	}
	return nil, malformed(gsubTag, "ChainedContextSubst", "invalid subtable format", offset)
}

func parseChainedSequenceRule(b binarySegm, offset int) (ChainedSequenceRule, error) {
	var rule ChainedSequenceRule
	pos := offset
	backtrackCount := int(b.U16(pos))
	seg, err := b.view(pos+2, backtrackCount*2)
	if backtrackCount > 0 && err != nil {
		return rule, malformed(gsubTag, "ChainedSequenceRule", "backtrack sequence", offset)
	}
	rule.Backtrack = seg.glyphs(backtrackCount)
	pos += 2 + backtrackCount*2
	inputCount := int(b.U16(pos))
	if inputCount < 1 {
		return rule, malformed(gsubTag, "ChainedSequenceRule", "empty input sequence", offset)
	}
	seg, err = b.view(pos+2, (inputCount-1)*2)
	if inputCount > 1 && err != nil {
		return rule, malformed(gsubTag, "ChainedSequenceRule", "input sequence", offset)
	}
	rule.Input = seg.glyphs(inputCount - 1)
	pos += 2 + (inputCount-1)*2
	lookaheadCount := int(b.U16(pos))
	seg, err = b.view(pos+2, lookaheadCount*2)
	if lookaheadCount > 0 && err != nil {
		return rule, malformed(gsubTag, "ChainedSequenceRule", "lookahead sequence", offset)
	}
	rule.Lookahead = seg.glyphs(lookaheadCount)
	pos += 2 + lookaheadCount*2
	recCount := int(b.U16(pos))
	rule.Records, err = parseSequenceLookupRecords(b, pos+2, recCount, "ChainedSequenceRule")
	return rule, err
}

func parseChainedClassSequenceRule(b binarySegm, offset int) (ChainedClassSequenceRule, error) {
	var rule ChainedClassSequenceRule
	pos := offset
	backtrackCount := int(b.U16(pos))
	seg, err := b.view(pos+2, backtrackCount*2)
	if backtrackCount > 0 && err != nil {
		return rule, malformed(gsubTag, "ChainedClassSequenceRule", "backtrack sequence", offset)
	}
	rule.Backtrack = seg.u16s(backtrackCount)
	pos += 2 + backtrackCount*2
	inputCount := int(b.U16(pos))
	if inputCount < 1 {
		return rule, malformed(gsubTag, "ChainedClassSequenceRule", "empty input sequence", offset)
	}
	seg, err = b.view(pos+2, (inputCount-1)*2)
	if inputCount > 1 && err != nil {
		return rule, malformed(gsubTag, "ChainedClassSequenceRule", "input sequence", offset)
	}
	rule.Input = seg.u16s(inputCount - 1)
	pos += 2 + (inputCount-1)*2
	lookaheadCount := int(b.U16(pos))
	seg, err = b.view(pos+2, lookaheadCount*2)
	if lookaheadCount > 0 && err != nil {
		return rule, malformed(gsubTag, "ChainedClassSequenceRule", "lookahead sequence", offset)
	}
	rule.Lookahead = seg.u16s(lookaheadCount)
	pos += 2 + lookaheadCount*2
	recCount := int(b.U16(pos))
	rule.Records, err = parseSequenceLookupRecords(b, pos+2, recCount, "ChainedClassSequenceRule")
	return rule, err
}

func parseReverseChainedSubst(b binarySegm, offset int, format uint16) (Subtable, error) {
	if format != 1 {
		return nil, malformed(gsubTag, "ReverseChainedSubst", "invalid subtable format", offset)
	}
	covOffset := int(b.U16(offset + 2))
	cov, err := parseCoverage(b, offset+covOffset, gsubTag, "ReverseChainedSubst")
	if err != nil {
		return nil, err
	}
	pos := offset + 4
	backtrackCount := int(b.U16(pos))
	backtrack, err := parseCoverageSequence(b, pos+2, offset, backtrackCount, "ReverseChainedSubst")
	if err != nil {
		return nil, err
	}
	pos += 2 + backtrackCount*2
	lookaheadCount := int(b.U16(pos))
	lookahead, err := parseCoverageSequence(b, pos+2, offset, lookaheadCount, "ReverseChainedSubst")
	if err != nil {
		return nil, err
	}
	pos += 2 + lookaheadCount*2
	glyphCount := int(b.U16(pos))
	seg, err := b.view(pos+2, glyphCount*2)
	if err != nil {
		return nil, malformed(gsubTag, "ReverseChainedSubst", "substitute glyph array", offset)
	}
	return ReverseChainedSubst{
		Coverage:    cov,
		Backtrack:   backtrack,
		Lookahead:   lookahead,
		Substitutes: seg.glyphs(glyphCount),
	}, nil
}
