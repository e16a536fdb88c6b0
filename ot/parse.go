package ot

import (
	"bytes"
	"encoding/binary"
	"fmt"
)

// Code comments often cite passages from the OpenType specification
// version 1.9; see https://docs.microsoft.com/en-us/typography/opentype/spec/.

// Parse parses an OpenType font from a byte slice.
// An ot.Font needs ongoing access to the font's byte-data after the Parse
// function returns. Its elements are assumed immutable while the ot.Font
// remains in use.
//
// Parsing is the only stage where font structure errors surface: a table
// containing out-of-range offsets, invalid format codes or contradictory
// subtables is rejected with a FontError naming the table and the byte
// offset where parsing failed. Shaping and layout never report structural
// errors.
func Parse(font []byte) (*Font, error) {
	// https://www.microsoft.com/typography/otspec/otff.htm: Offset Table is 12 bytes.
	r := bytes.NewReader(font)
	h := FontHeader{}
	if err := binary.Read(r, binary.BigEndian, &h); err != nil {
		return nil, err
	}
	tracer().Debugf("header = %v, tag = %x|%s", h, h.FontType, Tag(h.FontType).String())
	if !(h.FontType == 0x4f54544f || // OTTO
		h.FontType == 0x00010000 || // TrueType
		h.FontType == 0x74727565) { // true
		return nil, errFontFormat(fmt.Sprintf("font type not supported: %x", h.FontType))
	}
	otf := &Font{Header: &h, tables: make(map[Tag]Table)}
	src := binarySegm(font)
	// "The Offset Table is followed immediately by the Table Record entries …
	// sorted in ascending order by tag", 16 bytes each.
	buf, err := src.view(12, 16*int(h.TableCount))
	if err != nil {
		return nil, errFontFormat("table record entries")
	}
	for b, prevTag := buf, Tag(0); len(b) > 0; b = b[16:] {
		tag := MakeTag(b)
		if tag < prevTag {
			return nil, errFontFormat("table order")
		}
		prevTag = tag
		off, size := u32(b[8:12]), u32(b[12:16])
		if off&3 != 0 { // ignore checksums, but "all tables must begin on four byte boundries".
			return nil, errFontFormat("invalid table offset")
		}
		if int(off)+int(size) > len(src) {
			return nil, errFontFormat("table extent beyond end of font data")
		}
		otf.tables[tag], err = parseTable(tag, src[off:off+size], off, size)
		if err != nil {
			return nil, err
		}
	}
	if err := extractLayoutInfo(otf); err != nil {
		return nil, err
	}
	return otf, nil
}

// parseTable hands a table's byte segment to the matching concrete parser.
func parseTable(tag Tag, b binarySegm, offset, size uint32) (Table, error) {
	switch tag {
	case cmapTag:
		t := newCMapTable(tag, b, offset, size)
		if err := parseCMap(t); err != nil {
			return nil, err
		}
		return t, nil
	case gsubTag:
		t := newGSubTable(tag, b, offset, size)
		if err := parseGSub(t); err != nil {
			return nil, err
		}
		return t, nil
	case gdefTag:
		t := newGDefTable(tag, b, offset, size)
		if err := parseGDef(t); err != nil {
			return nil, err
		}
		return t, nil
	}
	return newTable(tag, b, offset, size), nil
}

// RequiredTables lists tables that must be present for the font to
// function correctly, according to the OpenType spec. (We do not insist on
// 'name', 'OS/2' and 'post' for shaping purposes.)
var RequiredTables = []string{
	"cmap", "head", "hhea", "hmtx", "maxp",
}

// Consistency check and shortcuts to essential tables, including layout
// tables. GSUB and GDEF are optional: a font without a GSUB table simply
// has no substitution rules to apply.
func extractLayoutInfo(otf *Font) error {
	for _, tag := range RequiredTables {
		h := otf.tables[T(tag)]
		if h == nil {
			return errFontFormat("missing required table " + tag)
		}
	}
	otf.CMap, _ = otf.tables[cmapTag].(*CMapTable)
	if otf.CMap == nil {
		return errFontFormat("inconsistent cmap table")
	}
	if t, ok := otf.tables[gsubTag].(*GSubTable); ok {
		otf.Layout.GSub = t
	}
	if t, ok := otf.tables[gdefTag].(*GDefTable); ok {
		otf.Layout.GDef = t
	}
	return nil
}

// ParseGSubFragment parses a standalone GSUB table from a byte segment.
// This entry point exists for tools and tests which assemble or extract
// single layout tables without a surrounding font file.
func ParseGSubFragment(b []byte) (*GSubTable, error) {
	t := newGSubTable(gsubTag, b, 0, uint32(len(b)))
	if err := parseGSub(t); err != nil {
		return nil, err
	}
	return t, nil
}

// ParseGDefFragment parses a standalone GDEF table from a byte segment.
func ParseGDefFragment(b []byte) (*GDefTable, error) {
	t := newGDefTable(gdefTag, b, 0, uint32(len(b)))
	if err := parseGDef(t); err != nil {
		return nil, err
	}
	return t, nil
}
