package ot

// GDefTable, the Glyph Definition (GDEF) table, provides various glyph
// properties used in OpenType Layout processing. The substitution engine
// consults it to skip glyphs excluded by a lookup's flag.
//
// See also
// https://docs.microsoft.com/en-us/typography/opentype/spec/gdef
type GDefTable struct {
	tableBase
	GlyphClasses      ClassDef   // 'GlyphClassDef' partitioning, may be nil
	MarkAttachClasses ClassDef   // mark attachment class definitions, may be nil
	MarkGlyphSets     []Coverage // mark glyph set coverages, may be empty
}

func newGDefTable(tag Tag, b binarySegm, offset, size uint32) *GDefTable {
	t := &GDefTable{}
	t.tableBase = tableBase{
		data:   b,
		name:   tag,
		offset: offset,
		length: size,
	}
	return t
}

var _ Table = &GDefTable{}

// Glyph classes of the GDEF 'GlyphClassDef' table.
const (
	GDefBaseGlyph      = 1 // single character, spacing glyph
	GDefLigatureGlyph  = 2 // multiple character, spacing glyph
	GDefMarkGlyph      = 3 // non-spacing combining glyph
	GDefComponentGlyph = 4 // part of single character, spacing glyph
)

var gdefTag = T("GDEF")

// parseGDef parses a complete GDEF table from its binary segment.
func parseGDef(t *GDefTable) error {
	b := t.bytes()
	// GDEF header 1.0:
	// uint16   | majorVersion | minorVersion
	// Offset16 | glyphClassDefOffset
	// Offset16 | attachListOffset
	// Offset16 | ligCaretListOffset
	// Offset16 | markAttachClassDefOffset
	// Version 1.2 adds Offset16 markGlyphSetsDefOffset.
	major, err := b.u16(0)
	if err != nil || major != 1 {
		return malformed(gdefTag, "Header", "unsupported table version", 0)
	}
	minor := b.U16(2)
	if off := int(b.U16(4)); off != 0 {
		if t.GlyphClasses, err = parseClassDef(b, off, gdefTag, "GlyphClassDef"); err != nil {
			return err
		}
	}
	if off := int(b.U16(10)); off != 0 {
		if t.MarkAttachClasses, err = parseClassDef(b, off, gdefTag, "MarkAttachClassDef"); err != nil {
			return err
		}
	}
	if minor >= 2 {
		if off := int(b.U16(12)); off != 0 {
			if err = parseMarkGlyphSets(t, b, off); err != nil {
				return err
			}
		}
	}
	return nil
}

func parseMarkGlyphSets(t *GDefTable, b binarySegm, offset int) error {
	// MarkGlyphSets table:
	// uint16   | format = 1
	// uint16   | markGlyphSetCount
	// Offset32 | coverageOffsets[markGlyphSetCount]
	format, err := b.u16(offset)
	if err != nil || format != 1 {
		return malformed(gdefTag, "MarkGlyphSets", "invalid table format", offset)
	}
	count := int(b.U16(offset + 2))
	offs, err := b.view(offset+4, count*4)
	if count > 0 && err != nil {
		return malformed(gdefTag, "MarkGlyphSets", "coverage offsets", offset)
	}
	t.MarkGlyphSets = make([]Coverage, count)
	for i := 0; i < count; i++ {
		cov, err := parseCoverage(b, offset+int(u32(offs[i*4:])), gdefTag, "MarkGlyphSets")
		if err != nil {
			return err
		}
		t.MarkGlyphSets[i] = cov
	}
	return nil
}

// GlyphClass returns the GDEF glyph class of a glyph, or 0 if the font
// does not classify it.
func (t *GDefTable) GlyphClass(g GlyphIndex) int {
	if t == nil || t.GlyphClasses == nil {
		return 0
	}
	return t.GlyphClasses.Class(g)
}

// MarkAttachClass returns the mark attachment class of a glyph, or 0.
func (t *GDefTable) MarkAttachClass(g GlyphIndex) int {
	if t == nil || t.MarkAttachClasses == nil {
		return 0
	}
	return t.MarkAttachClasses.Class(g)
}

// MarkGlyphSet tests whether glyph g is contained in mark glyph set inx.
func (t *GDefTable) MarkGlyphSet(inx int, g GlyphIndex) bool {
	if t == nil || inx < 0 || inx >= len(t.MarkGlyphSets) {
		return false
	}
	return t.MarkGlyphSets[inx].Index(g) >= 0
}
