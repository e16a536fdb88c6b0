package ot

/*
From https://docs.microsoft.com/en-us/typography/opentype/spec/chapter2:

OpenType Layout consists of five tables: the Glyph Substitution table (GSUB),
the Glyph Positioning table (GPOS), the Baseline table (BASE),
the Justification table (JSTF), and the Glyph Definition table (GDEF).
These tables use some of the same data formats.
*/

import "sort"

// --- Layout tables ---------------------------------------------------------

// LayoutTable is a base type for layout tables.
// OpenType specifies two tables–GPOS and GSUB–which share some of their
// structure. They are called "layout tables".
type LayoutTable struct {
	Scripts  []ScriptRecord  // script list, ordered as in the font
	Features []FeatureRecord // feature list, ordered as in the font
	Lookups  []*Lookup       // lookup list
}

// ScriptRecord associates a script tag with its language systems.
type ScriptRecord struct {
	Tag            Tag
	DefaultLangSys *LangSys
	LangSys        []LangSysRecord
}

// LangSysRecord associates a language tag with a language system.
type LangSysRecord struct {
	Tag     Tag
	LangSys *LangSys
}

// LangSys identifies the features applicable for a script/language
// combination. RequiredFeature is 0xFFFF if unused.
type LangSys struct {
	RequiredFeature uint16
	FeatureIndices  []uint16
}

// FeatureRecord associates a feature tag with the lookups implementing it.
type FeatureRecord struct {
	Tag           Tag
	LookupIndices []uint16
}

// Script finds the script record for a tag, falling back to DFLT.
// Returns nil if neither is present.
func (lytt *LayoutTable) Script(tag Tag) *ScriptRecord {
	var dflt *ScriptRecord
	for i := range lytt.Scripts {
		if lytt.Scripts[i].Tag == tag {
			return &lytt.Scripts[i]
		}
		if lytt.Scripts[i].Tag == DFLT {
			dflt = &lytt.Scripts[i]
		}
	}
	return dflt
}

// LangSysFor finds the language system for a language tag within a script,
// falling back to the script's default language system.
func (sr *ScriptRecord) LangSysFor(tag Tag) *LangSys {
	for i := range sr.LangSys {
		if sr.LangSys[i].Tag == tag {
			return sr.LangSys[i].LangSys
		}
	}
	return sr.DefaultLangSys
}

// --- Lookups ---------------------------------------------------------------

// LookupFlag carries the processing switches of a lookup, including which
// glyph classes to skip during matching.
type LookupFlag uint16

// Lookup flags, as defined by the OpenType specification.
const (
	LookupFlagRightToLeft         LookupFlag = 0x0001 // only relevant for GPOS cursive attachment
	LookupFlagIgnoreBaseGlyphs    LookupFlag = 0x0002
	LookupFlagIgnoreLigatures     LookupFlag = 0x0004
	LookupFlagIgnoreMarks         LookupFlag = 0x0008
	LookupFlagUseMarkFilteringSet LookupFlag = 0x0010
)

// LookupFlagMarkAttachmentTypeMask masks the mark attachment class filter.
const LookupFlagMarkAttachmentTypeMask LookupFlag = 0xFF00

// MarkAttachmentType extracts the mark attachment class filter from a
// lookup flag; 0 means no filtering.
func (f LookupFlag) MarkAttachmentType() int {
	return int(f&LookupFlagMarkAttachmentTypeMask) >> 8
}

// Lookup is a named rewriting rule set in the font, composed of subtables
// which are tried in order.
type Lookup struct {
	Type             uint16 // one of the GSUB lookup type enumeration values
	Flag             LookupFlag
	MarkFilteringSet uint16 // index into GDEF mark glyph sets, if flag bit set
	Subtables        []Subtable
}

// Subtable is a tagged union over the GSUB lookup subtable variants.
// Extension subtables (lookup type 7) are resolved during parsing and
// never surface here.
type Subtable interface {
	subtable()
}

// SequenceLookupRecord references a nested lookup to apply at a matched
// sequence position.
type SequenceLookupRecord struct {
	SequenceIndex   uint16
	LookupListIndex uint16
}

// --- Coverage table module -------------------------------------------------

// Each subtable (except an Extension LookupType subtable) in a lookup
// references a Coverage table, which specifies all the glyphs affected by a
// substitution operation described in the subtable. If a glyph does not
// appear in a Coverage table, the client can skip that subtable and move
// immediately to the next one.

// Coverage is a set of glyphs with a stable rank function.
type Coverage interface {
	// Index returns the coverage index of a glyph, or -1 if the glyph is
	// not covered.
	Index(GlyphIndex) int
}

// coverageList is coverage format 1: a sorted array of glyph IDs.
type coverageList []GlyphIndex

func (c coverageList) Index(g GlyphIndex) int {
	i := sort.Search(len(c), func(i int) bool { return c[i] >= g })
	if i < len(c) && c[i] == g {
		return i
	}
	return -1
}

// coverageRange is one record of coverage format 2.
type coverageRange struct {
	Start, End GlyphIndex // inclusive range of glyph IDs
	StartIndex uint16     // coverage index of the first glyph in the range
}

// coverageRanges is coverage format 2: sorted, non-overlapping ranges.
type coverageRanges []coverageRange

func (c coverageRanges) Index(g GlyphIndex) int {
	i := sort.Search(len(c), func(i int) bool { return c[i].End >= g })
	if i < len(c) && c[i].Start <= g && g <= c[i].End {
		return int(c[i].StartIndex) + int(g-c[i].Start)
	}
	return -1
}

// GlyphCoverage creates a coverage table over an explicit, sorted list of
// glyphs. It exists for tools and tests assembling layout structures
// programmatically; fonts deliver their coverage in binary form.
func GlyphCoverage(glyphs ...GlyphIndex) Coverage {
	return coverageList(glyphs)
}

// parseCoverage reads a coverage table at the given offset within b.
func parseCoverage(b binarySegm, offset int, table Tag, section string) (Coverage, error) {
	format, err := b.u16(offset)
	if err != nil {
		return nil, malformed(table, section, "coverage table header", offset)
	}
	count := int(b.U16(offset + 2))
	switch format {
	case 1:
		seg, err := b.view(offset+4, count*2)
		if count > 0 && err != nil {
			return nil, malformed(table, section, "coverage format 1 glyph array", offset)
		}
		return coverageList(seg.glyphs(count)), nil
	case 2:
		seg, err := b.view(offset+4, count*6)
		if count > 0 && err != nil {
			return nil, malformed(table, section, "coverage format 2 range records", offset)
		}
		ranges := make(coverageRanges, count)
		for i := 0; i < count; i++ {
			ranges[i] = coverageRange{
				Start:      GlyphIndex(u16(seg[i*6:])),
				End:        GlyphIndex(u16(seg[i*6+2:])),
				StartIndex: u16(seg[i*6+4:]),
			}
		}
		return ranges, nil
	}
	return nil, malformed(table, section, "invalid coverage format", offset)
}

// --- Class definition tables -----------------------------------------------

// ClassDef partitions glyphs into small integer classes. Glyphs not listed
// belong to class 0.
type ClassDef interface {
	Class(GlyphIndex) int
}

// classDefArray is class-def format 1: a contiguous array of class values
// starting at StartGlyph.
type classDefArray struct {
	StartGlyph GlyphIndex
	Classes    []uint16
}

func (cd classDefArray) Class(g GlyphIndex) int {
	if g < cd.StartGlyph {
		return 0
	}
	i := int(g - cd.StartGlyph)
	if i >= len(cd.Classes) {
		return 0
	}
	return int(cd.Classes[i])
}

// classDefRange is one record of class-def format 2.
type classDefRange struct {
	Start, End GlyphIndex
	Value      uint16
}

// classDefRanges is class-def format 2: sorted, non-overlapping ranges.
type classDefRanges []classDefRange

func (cd classDefRanges) Class(g GlyphIndex) int {
	i := sort.Search(len(cd), func(i int) bool { return cd[i].End >= g })
	if i < len(cd) && cd[i].Start <= g && g <= cd[i].End {
		return int(cd[i].Value)
	}
	return 0
}

// GlyphClasses creates a class-definition table assigning classes to a
// contiguous run of glyphs starting at first. It exists for tools and
// tests; unlisted glyphs belong to class 0.
func GlyphClasses(first GlyphIndex, classes ...uint16) ClassDef {
	return classDefArray{StartGlyph: first, Classes: classes}
}

// parseClassDef reads a class-definition table at the given offset within b.
func parseClassDef(b binarySegm, offset int, table Tag, section string) (ClassDef, error) {
	format, err := b.u16(offset)
	if err != nil {
		return nil, malformed(table, section, "class-def table header", offset)
	}
	switch format {
	case 1:
		start := GlyphIndex(b.U16(offset + 2))
		count := int(b.U16(offset + 4))
		seg, err := b.view(offset+6, count*2)
		if count > 0 && err != nil {
			return nil, malformed(table, section, "class-def format 1 value array", offset)
		}
		return classDefArray{StartGlyph: start, Classes: seg.u16s(count)}, nil
	case 2:
		count := int(b.U16(offset + 2))
		seg, err := b.view(offset+4, count*6)
		if count > 0 && err != nil {
			return nil, malformed(table, section, "class-def format 2 range records", offset)
		}
		ranges := make(classDefRanges, count)
		for i := 0; i < count; i++ {
			ranges[i] = classDefRange{
				Start: GlyphIndex(u16(seg[i*6:])),
				End:   GlyphIndex(u16(seg[i*6+2:])),
				Value: u16(seg[i*6+4:]),
			}
		}
		return ranges, nil
	}
	return nil, malformed(table, section, "invalid class-def format", offset)
}

// --- Script / feature / lookup list parsing --------------------------------

// parseScriptList reads a ScriptList table located at offset within b.
func parseScriptList(b binarySegm, offset int, table Tag) ([]ScriptRecord, error) {
	count := int(b.U16(offset))
	recs, err := b.view(offset+2, count*6)
	if count > 0 && err != nil {
		return nil, malformed(table, "ScriptList", "script records", offset)
	}
	scripts := make([]ScriptRecord, 0, count)
	for i := 0; i < count; i++ {
		tag := Tag(u32(recs[i*6:]))
		scriptOffset := offset + int(u16(recs[i*6+4:]))
		script := ScriptRecord{Tag: tag}
		dflt := int(b.U16(scriptOffset))
		if dflt != 0 {
			lsys, err := parseLangSys(b, scriptOffset+dflt, table)
			if err != nil {
				return nil, err
			}
			script.DefaultLangSys = lsys
		}
		lsCount := int(b.U16(scriptOffset + 2))
		lsRecs, err := b.view(scriptOffset+4, lsCount*6)
		if lsCount > 0 && err != nil {
			return nil, malformed(table, "Script", "language system records", scriptOffset)
		}
		for j := 0; j < lsCount; j++ {
			lsTag := Tag(u32(lsRecs[j*6:]))
			lsys, err := parseLangSys(b, scriptOffset+int(u16(lsRecs[j*6+4:])), table)
			if err != nil {
				return nil, err
			}
			script.LangSys = append(script.LangSys, LangSysRecord{Tag: lsTag, LangSys: lsys})
		}
		scripts = append(scripts, script)
	}
	return scripts, nil
}

func parseLangSys(b binarySegm, offset int, table Tag) (*LangSys, error) {
	// LangSys table:
	// Offset16 | lookupOrderOffset             | = NULL (reserved)
	// uint16   | requiredFeatureIndex          | 0xFFFF if no required feature
	// uint16   | featureIndexCount             |
	// uint16   | featureIndices[featureIndexCount]
	required, err := b.u16(offset + 2)
	if err != nil {
		return nil, malformed(table, "LangSys", "language system table", offset)
	}
	count := int(b.U16(offset + 4))
	seg, err := b.view(offset+6, count*2)
	if count > 0 && err != nil {
		return nil, malformed(table, "LangSys", "feature index list", offset)
	}
	return &LangSys{
		RequiredFeature: required,
		FeatureIndices:  seg.u16s(count),
	}, nil
}

// parseFeatureList reads a FeatureList table located at offset within b.
func parseFeatureList(b binarySegm, offset int, table Tag) ([]FeatureRecord, error) {
	count := int(b.U16(offset))
	recs, err := b.view(offset+2, count*6)
	if count > 0 && err != nil {
		return nil, malformed(table, "FeatureList", "feature records", offset)
	}
	features := make([]FeatureRecord, 0, count)
	for i := 0; i < count; i++ {
		tag := Tag(u32(recs[i*6:]))
		featureOffset := offset + int(u16(recs[i*6+4:]))
		// Feature table: featureParamsOffset, lookupIndexCount, lookupListIndices[]
		lkCount := int(b.U16(featureOffset + 2))
		seg, err := b.view(featureOffset+4, lkCount*2)
		if lkCount > 0 && err != nil {
			return nil, malformed(table, "Feature", "lookup index list", featureOffset)
		}
		features = append(features, FeatureRecord{
			Tag:           tag,
			LookupIndices: seg.u16s(lkCount),
		})
	}
	return features, nil
}

// subtableParser interprets one lookup subtable of a given lookup type,
// located at offset within b.
type subtableParser func(b binarySegm, offset int, lookupType uint16) (Subtable, error)

// parseLookupList reads a LookupList table located at offset within b.
// Subtable interpretation is delegated to parse.
func parseLookupList(b binarySegm, offset int, table Tag, parse subtableParser) ([]*Lookup, error) {
	count := int(b.U16(offset))
	offs, err := b.view(offset+2, count*2)
	if count > 0 && err != nil {
		return nil, malformed(table, "LookupList", "lookup offsets", offset)
	}
	lookups := make([]*Lookup, 0, count)
	for i := 0; i < count; i++ {
		lookupOffset := offset + int(u16(offs[i*2:]))
		// Lookup table:
		// uint16   | lookupType
		// uint16   | lookupFlag
		// uint16   | subTableCount
		// Offset16 | subtableOffsets[subTableCount]
		// uint16   | markFilteringSet (if lookupFlag & useMarkFilteringSet)
		lookupType, err := b.u16(lookupOffset)
		if err != nil {
			return nil, malformed(table, "Lookup", "lookup table header", lookupOffset)
		}
		flag := LookupFlag(b.U16(lookupOffset + 2))
		subCount := int(b.U16(lookupOffset + 4))
		subOffs, err := b.view(lookupOffset+6, subCount*2)
		if subCount > 0 && err != nil {
			return nil, malformed(table, "Lookup", "subtable offsets", lookupOffset)
		}
		lookup := &Lookup{Type: lookupType, Flag: flag}
		if flag&LookupFlagUseMarkFilteringSet != 0 {
			lookup.MarkFilteringSet = b.U16(lookupOffset + 6 + subCount*2)
		}
		for j := 0; j < subCount; j++ {
			sub, err := parse(b, lookupOffset+int(u16(subOffs[j*2:])), lookupType)
			if err != nil {
				return nil, err
			}
			lookup.Subtables = append(lookup.Subtables, sub)
		}
		lookups = append(lookups, lookup)
	}
	return lookups, nil
}
