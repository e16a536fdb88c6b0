package otquery

import (
	"github.com/npillmayer/glyphs"
	"github.com/npillmayer/glyphs/ot"
	"golang.org/x/image/font/sfnt"
)

// --- Font information ------------------------------------------------------

// FontSupportsScript returns a tuple (script-tag, language-tag) for a given
// input of a script tag and a language tag. If the language has no special
// support in the font, DFLT will be returned. If the script has no support
// in the font, DFLT will be returned for the script.
func FontSupportsScript(otf *ot.Font, scr ot.Tag, lang ot.Tag) (ot.Tag, ot.Tag) {
	gsub := otf.Layout.GSub
	if gsub == nil {
		return ot.DFLT, ot.DFLT
	}
	script := gsub.Script(scr)
	if script == nil || script.Tag != scr {
		tracer().Infof("cannot find script %s in font", scr.String())
		return ot.DFLT, ot.DFLT
	}
	tracer().Debugf("script %s is contained in GSUB", scr.String())
	for _, lsys := range script.LangSys {
		if lsys.Tag == lang {
			return scr, lang
		}
	}
	return scr, ot.DFLT
}

// FontMetrics retrieves selected metrics of a font, in font units.
func FontMetrics(otf *ot.Font) glyphs.FontMetricsInfo {
	metrics := glyphs.FontMetricsInfo{}
	hhea := otf.Table(ot.T("hhea"))
	b := hhea.Binary()
	metrics.Ascent = sfnt.Units(i16(b[4:]))
	metrics.Descent = sfnt.Units(i16(b[6:]))
	metrics.LineGap = sfnt.Units(i16(b[8:]))
	metrics.MaxAdvance = sfnt.Units(u16(b[10:]))
	if metrics.Ascent == 0 && metrics.Descent == 0 {
		if os2 := otf.Table(ot.T("OS/2")); os2 != nil {
			b := os2.Binary()
			a := sfnt.Units(i16(b[68:]))
			if a > metrics.Ascent {
				tracer().Debugf("override of ascent: %d -> %d", metrics.Ascent, a)
				metrics.Ascent = a
			}
			d := sfnt.Units(i16(b[70:]))
			if d < metrics.Descent {
				tracer().Debugf("override of descent: %d -> %d", metrics.Descent, d)
				metrics.Descent = d
			}
		}
	}
	head := otf.Table(ot.T("head")).Binary()
	metrics.UnitsPerEm = sfnt.Units(u16(head[18:]))
	return metrics
}

// ScaleFactor returns the number of font design units per em. Scaling a
// design-unit value to user space is value × pointsize ÷ ScaleFactor.
func ScaleFactor(otf *ot.Font) sfnt.Units {
	head := otf.Table(ot.T("head")).Binary()
	return sfnt.Units(u16(head[18:]))
}

// --- Glyph routines --------------------------------------------------------

// GlyphIndex returns the glyph index for a given code-point.
// If the code-point cannot be found, 0 is returned.
//
// From the OpenType specification: character codes that do not correspond to
// any glyph in the font should be mapped to glyph index 0. The glyph at this
// location must be a special glyph representing a missing character,
// commonly known as '.notdef'.
func GlyphIndex(otf *ot.Font, codepoint rune) ot.GlyphIndex {
	return otf.CMap.GlyphIndexMap.Lookup(codepoint)
}

// GlyphMetrics retrieves metrics for a given glyph, in font units.
func GlyphMetrics(otf *ot.Font, gid ot.GlyphIndex) glyphs.GlyphMetricsInfo {
	metrics := glyphs.GlyphMetricsInfo{}
	//
	// table hmtx: advance width and left side bearing
	hmtx := otf.Table(ot.T("hmtx")).Binary()
	// table hhea: number of entries in hmtx
	hhea := otf.Table(ot.T("hhea")).Binary()
	mtxcnt := int(u16(hhea[34:]))
	if mtxcnt == 0 || len(hmtx) < mtxcnt*4 {
		return metrics
	}
	if int(gid) < mtxcnt {
		entry := hmtx[int(gid)*4:]
		metrics.Advance = sfnt.Units(u16(entry))
		metrics.LSB = sfnt.Units(i16(entry[2:]))
	} else {
		// advance is a repetition of the last advance in hmtx
		lastEntry := hmtx[(mtxcnt-1)*4:]
		metrics.Advance = sfnt.Units(u16(lastEntry))
		inx := mtxcnt*4 + (int(gid)-mtxcnt)*2
		if inx+2 <= len(hmtx) {
			metrics.LSB = sfnt.Units(i16(hmtx[inx:]))
		}
	}
	//
	// table glyf: bounding box
	if bbox, ok := glyphBBox(otf, gid); ok {
		metrics.BBox = bbox
	}
	// RSB calculation: rsb = aw - (lsb + xMax - xMin)
	// From the spec:
	// If a glyph has no contours, xMax/xMin are not defined. The left side
	// bearing indicated in the 'hmtx' table for such glyphs should be zero.
	if !metrics.BBox.Empty() { // leave RSB for empty bboxes
		metrics.RSB = metrics.Advance - (metrics.LSB + metrics.BBox.Dx())
	}
	return metrics
}

// glyphBBox reads a glyph's bounding box from the 'glyf' table, if present.
func glyphBBox(otf *ot.Font, gid ot.GlyphIndex) (glyphs.BoundingBox, bool) {
	glyf := otf.Table(ot.T("glyf"))
	loca := otf.Table(ot.T("loca"))
	if glyf == nil || loca == nil {
		return glyphs.BoundingBox{}, false
	}
	head := otf.Table(ot.T("head")).Binary()
	longFormat := i16(head[50:]) == 1
	lo := loca.Binary()
	var start, end uint32
	if longFormat {
		if (int(gid)+2)*4 > len(lo) {
			return glyphs.BoundingBox{}, false
		}
		start = u32(lo[int(gid)*4:])
		end = u32(lo[(int(gid)+1)*4:])
	} else {
		if (int(gid)+2)*2 > len(lo) {
			return glyphs.BoundingBox{}, false
		}
		start = uint32(u16(lo[int(gid)*2:])) * 2
		end = uint32(u16(lo[(int(gid)+1)*2:])) * 2
	}
	if start >= end { // empty glyph, e.g. space
		return glyphs.BoundingBox{}, false
	}
	b := glyf.Binary()
	if int(start)+10 > len(b) {
		return glyphs.BoundingBox{}, false
	}
	g := b[start:]
	return glyphs.BoundingBox{
		MinX: sfnt.Units(i16(g[2:])),
		MinY: sfnt.Units(i16(g[4:])),
		MaxX: sfnt.Units(i16(g[6:])),
		MaxY: sfnt.Units(i16(g[8:])),
	}, true
}

// NumGlyphs returns the number of glyphs contained in the font.
func NumGlyphs(otf *ot.Font) int {
	maxp := otf.Table(ot.T("maxp")).Binary()
	return int(u16(maxp[4:]))
}

// --- Helpers ----------------------------------------------------------

func u16(b []byte) uint16 {
	return uint16(b[0])<<8 | uint16(b[1])<<0
}

func i16(b []byte) int16 {
	return int16(b[0])<<8 | int16(b[1])<<0
}

func u32(b []byte) uint32 {
	return uint32(b[0])<<24 | uint32(b[1])<<16 | uint32(b[2])<<8 | uint32(b[3])<<0
}
