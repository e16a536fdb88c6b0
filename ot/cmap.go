package ot

import "sort"

// CMapTable represents an OpenType cmap table, i.e. the table to receive
// glyphs from code-points.
//
// See https://docs.microsoft.com/de-de/typography/opentype/spec/cmap
//
// Consulting the cmap table is a very frequent operation on fonts. We
// therefore construct an internal representation of the lookup table. A cmap
// table may contain more than one lookup table, but we will only instantiate
// the most appropriate one.
type CMapTable struct {
	tableBase
	GlyphIndexMap CMapGlyphIndex
}

func newCMapTable(tag Tag, b binarySegm, offset, size uint32) *CMapTable {
	t := &CMapTable{}
	t.tableBase = tableBase{
		data:   b,
		name:   tag,
		offset: offset,
		length: size,
	}
	return t
}

var _ Table = &CMapTable{}

// CMapGlyphIndex represents a cmap table index to receive a glyph index
// from a code-point.
type CMapGlyphIndex interface {
	Lookup(rune) GlyphIndex
}

var cmapTag = T("cmap")

// platformEncodingWidth returns the number of bytes per character assumed by
// the given Platform ID and Platform Specific ID.
//
// Old fonts, from when Unicode meant the Basic Multilingual Plane (BMP),
// assume that 2 bytes per character is sufficient.
func platformEncodingWidth(pid, psid uint16) int {
	switch pid {
	case 0: // Unicode platform
		switch psid {
		case 3: // Unicode BMP
			return 2
		case 4, 10: // Unicode full (include 10 from FontForge bug)
			return 4
		}
	case 3: // Windows platform
		switch psid {
		case 1: // Unicode BMP
			return 2
		case 10: // Unicode full
			return 4
		}
	}
	return 0 // width 0 will never get selected
}

// We only support the following platform/encoding/format combinations:
//
//	0 (Unicode)  3    4   Unicode BMP
//	0 (Unicode)  4    12  Unicode full
//	3 (Win)      1    4   Unicode BMP
//	3 (Win)      10   12  Unicode full
func supportedCmapFormat(format, pid, psid uint16) bool {
	return (pid == 0 && psid == 3 && format == 4) ||
		(pid == 0 && psid == 4 && format == 12) ||
		(pid == 0 && psid == 10 && format == 12) ||
		(pid == 3 && psid == 1 && format == 4) ||
		(pid == 3 && psid == 10 && format == 12)
}

// parseCMap selects and parses the best supported encoding subtable.
func parseCMap(t *CMapTable) error {
	b := t.bytes()
	// cmap header:
	// uint16 | version
	// uint16 | numTables
	// EncodingRecord | encodingRecords[numTables]
	numTables, err := b.u16(2)
	if err != nil {
		return malformed(cmapTag, "Header", "cmap table header", 0)
	}
	var bestOffset int
	var bestFormat uint16
	bestWidth := 0
	for i := 0; i < int(numTables); i++ {
		rec, err := b.view(4+i*8, 8)
		if err != nil {
			return malformed(cmapTag, "EncodingRecord", "encoding records", 4)
		}
		pid, psid := u16(rec), u16(rec[2:])
		width := platformEncodingWidth(pid, psid)
		if width <= bestWidth {
			continue
		}
		subtableOffset := int(u32(rec[4:]))
		format, err := b.u16(subtableOffset)
		if err != nil {
			return malformed(cmapTag, "EncodingRecord", "subtable offset", 4+i*8)
		}
		if supportedCmapFormat(format, pid, psid) {
			bestOffset, bestFormat, bestWidth = subtableOffset, format, width
		}
	}
	if bestWidth == 0 {
		return malformed(cmapTag, "EncodingRecord", "no supported encoding subtable", 0)
	}
	switch bestFormat {
	case 4:
		t.GlyphIndexMap, err = makeGlyphIndexFormat4(b, bestOffset)
	case 12:
		t.GlyphIndexMap, err = makeGlyphIndexFormat12(b, bestOffset)
	}
	return err
}

// --- cmap format 4 ---------------------------------------------------------

// Format 4: segment mapping to delta values, for the Unicode BMP.
type cmapFormat4 struct {
	endCodes       []uint16
	startCodes     []uint16
	idDeltas       []uint16
	idRangeOffsets []uint16
	glyphIDData    binarySegm // glyph ID array, following the idRangeOffsets
}

func makeGlyphIndexFormat4(b binarySegm, offset int) (CMapGlyphIndex, error) {
	segCountX2 := int(b.U16(offset + 6))
	if segCountX2 == 0 || segCountX2%2 != 0 {
		return nil, malformed(cmapTag, "Format4", "invalid segment count", offset)
	}
	segCount := segCountX2 / 2
	endOffset := offset + 14
	startOffset := endOffset + segCountX2 + 2 // +2: reservedPad
	deltaOffset := startOffset + segCountX2
	rangeOffset := deltaOffset + segCountX2
	seg, err := b.view(endOffset, segCountX2)
	if err != nil {
		return nil, malformed(cmapTag, "Format4", "segment end codes", offset)
	}
	t := &cmapFormat4{endCodes: seg.u16s(segCount)}
	if seg, err = b.view(startOffset, segCountX2); err != nil {
		return nil, malformed(cmapTag, "Format4", "segment start codes", offset)
	}
	t.startCodes = seg.u16s(segCount)
	if seg, err = b.view(deltaOffset, segCountX2); err != nil {
		return nil, malformed(cmapTag, "Format4", "segment deltas", offset)
	}
	t.idDeltas = seg.u16s(segCount)
	if seg, err = b.view(rangeOffset, segCountX2); err != nil {
		return nil, malformed(cmapTag, "Format4", "segment range offsets", offset)
	}
	t.idRangeOffsets = seg.u16s(segCount)
	t.glyphIDData = b[rangeOffset:]
	return t, nil
}

func (t *cmapFormat4) Lookup(r rune) GlyphIndex {
	if r < 0 || r > 0xFFFF {
		return 0
	}
	c := uint16(r)
	i := sort.Search(len(t.endCodes), func(i int) bool { return t.endCodes[i] >= c })
	if i == len(t.endCodes) || t.startCodes[i] > c {
		return 0
	}
	if t.idRangeOffsets[i] == 0 {
		return GlyphIndex(c + t.idDeltas[i])
	}
	// "glyphIndexAddress = idRangeOffset[i] + 2 × (c - startCode[i]) +
	//  (address of idRangeOffset[i])"
	addr := int(t.idRangeOffsets[i]) + 2*int(c-t.startCodes[i]) + i*2
	gid, err := t.glyphIDData.u16(addr)
	if err != nil || gid == 0 {
		return 0
	}
	return GlyphIndex(gid + t.idDeltas[i])
}

// --- cmap format 12 --------------------------------------------------------

// Format 12: segmented coverage of the full Unicode repertoire.
type cmapFormat12 struct {
	groups []cmapGroup
}

type cmapGroup struct {
	startCharCode uint32
	endCharCode   uint32
	startGlyphID  uint32
}

func makeGlyphIndexFormat12(b binarySegm, offset int) (CMapGlyphIndex, error) {
	numGroups := int(b.U32(offset + 12))
	seg, err := b.view(offset+16, numGroups*12)
	if err != nil {
		return nil, malformed(cmapTag, "Format12", "sequential map groups", offset)
	}
	t := &cmapFormat12{groups: make([]cmapGroup, numGroups)}
	for i := 0; i < numGroups; i++ {
		t.groups[i] = cmapGroup{
			startCharCode: u32(seg[i*12:]),
			endCharCode:   u32(seg[i*12+4:]),
			startGlyphID:  u32(seg[i*12+8:]),
		}
	}
	return t, nil
}

func (t *cmapFormat12) Lookup(r rune) GlyphIndex {
	if r < 0 {
		return 0
	}
	c := uint32(r)
	i := sort.Search(len(t.groups), func(i int) bool { return t.groups[i].endCharCode >= c })
	if i == len(t.groups) || t.groups[i].startCharCode > c {
		return 0
	}
	return GlyphIndex(t.groups[i].startGlyphID + (c - t.groups[i].startCharCode))
}
