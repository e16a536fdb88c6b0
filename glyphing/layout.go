package glyphing

import (
	"math"
	"strings"
	"sync"
	"unicode"
	"unicode/utf8"

	"github.com/npillmayer/glyphs/core"
	"github.com/npillmayer/uax/grapheme"
)

var setupGraphemes sync.Once

// Layout walks text in one pass over grapheme clusters and produces the
// positioned glyph layout. Options carry DPI, origin, wrapping width,
// alignments, line spacing, tab width, word-breaking mode and the style
// resolver.
//
// Layout itself cannot fail on any text input; glyphs the styles cannot
// resolve are silently skipped. An error is returned only for unusable
// options (no style resolver).
func Layout(text string, opts Options) ([]GlyphLayout, error) {
	opts = opts.withDefaults()
	if opts.Styles == nil {
		return nil, core.Error(core.EINVALID, "layout options carry no style resolver")
	}
	setupGraphemes.Do(func() { grapheme.SetupGraphemeClasses() })
	//
	// Everything below happens in unscaled units: origin and wrapping
	// width are divided by DPI on entry, glyph metrics are scaled by
	// pointsize over units-per-em. Renderers multiply by DPI downstream.
	origin := Point{X: opts.Origin.X / opts.DPI.X, Y: opts.Origin.Y / opts.DPI.Y}
	maxWidth := math.Inf(1)
	originX := 0.0
	if opts.WrappingWidth > 0 {
		// trailing white-space would otherwise provoke spurious wraps
		text = strings.TrimRightFunc(text, unicode.IsSpace)
		maxWidth = opts.WrappingWidth / opts.DPI.X
		switch opts.HorizontalAlignment {
		case AlignLeft:
			originX = 0
		case AlignCenter:
			originX = maxWidth / 2
		case AlignRight:
			originX = maxWidth
		}
	}
	if text == "" {
		return nil, nil
	}
	total := utf8.RuneCountInString(text)
	//
	oracle := newBreakOracle(text)
	nextBreak, haveBreak := oracle.next()
	nextWrappableLocation := nextBreak.PositionWrap - 1
	//
	var layout []GlyphLayout
	var pen Point
	var lineHeight, lineMaxAscender, lineMaxDescender, top float64
	firstLine := true
	startOfLine := true
	lastWrappableLocation := -1
	var style Style
	styleEnd := 0
	//
	cpIndex := 0
	gstr := grapheme.StringFromString(text)
	for gi := 0; gi < gstr.Len(); gi++ {
		cluster := gstr.Nth(gi)
		for _, cp := range cluster {
			index := cpIndex
			cpIndex++
			if style == nil || index >= styleEnd {
				style = opts.Styles(index, total)
				_, styleEnd = style.Extent()
			}
			slot, ok := style.Glyphs(cp, index)
			if !ok {
				continue // no glyph for this code-point; skip the slot
			}
			metrics := style.Metrics()
			scale := metrics.UnitsPerEm
			ptSize := style.PointSize()
			lineHeight = math.Max(lineHeight, metrics.LineHeight*opts.LineSpacing*ptSize/scale)
			lineMaxAscender = math.Max(lineMaxAscender, metrics.Ascender*ptSize/scale)
			lineMaxDescender = math.Max(lineMaxDescender, metrics.Descender*ptSize/scale)
			if firstLine {
				switch opts.VerticalAlignment {
				case AlignTop:
					top = lineMaxAscender
				case AlignMiddle:
					top = (lineMaxAscender + lineMaxDescender) / 2
				case AlignBottom:
					top = -lineMaxDescender
				}
			}
			advance := slot.Advance * ptSize / scale
			advanceY := slot.AdvanceY * ptSize / scale
			//
			// Remember the latest position the line could be re-broken at.
			if index == nextWrappableLocation ||
				(nextBreak.Required && index >= nextWrappableLocation) ||
				opts.WordBreaking == BreakAll {
				if !(opts.WordBreaking == BreakKeepAll && isCJK(cp)) {
					for i := len(layout) - 1; i >= 0; i-- {
						if !isWhitespace(layout[i].CodePoint) {
							lastWrappableLocation = i + 1
							break
						}
					}
				}
			}
			if index == nextWrappableLocation && haveBreak {
				nextBreak, haveBreak = oracle.next()
				if haveBreak {
					nextWrappableLocation = nextBreak.PositionWrap - 1
				}
			}
			//
			switch {
			case cp == '\r':
				// carriage return resets the pen; CR LF moves to the next
				// line only once, on the LF
				pen.X = 0
				startOfLine = true
				layout = append(layout, GlyphLayout{
					Grapheme:    gi,
					CodePoint:   cp,
					Glyph:       slot.Glyphs[0],
					Location:    pen,
					Height:      advanceY,
					LineHeight:  lineHeight,
					StartOfLine: startOfLine,
				})
				startOfLine = false
			case isNewLine(cp):
				layout = append(layout, GlyphLayout{
					Grapheme:    gi,
					CodePoint:   cp,
					Glyph:       slot.Glyphs[0],
					Location:    pen,
					Height:      advanceY,
					LineHeight:  lineHeight,
					StartOfLine: startOfLine,
				})
				pen.X = 0
				pen.Y += lineHeight
				lineMaxAscender, lineMaxDescender = 0, 0
				firstLine = false
				lastWrappableLocation = -1
				startOfLine = true
			case cp == '\t':
				tabStop := advance * opts.TabWidth
				finalWidth := 0.0
				if tabStop > 0 {
					finalWidth = tabStop - math.Mod(pen.X, tabStop)
					if finalWidth < advance {
						// ensure a tab is never narrower than the glyph it
						// renders with
						finalWidth += tabStop
					}
				}
				layout = append(layout, GlyphLayout{
					Grapheme:    gi,
					CodePoint:   cp,
					Glyph:       slot.Glyphs[0],
					Location:    pen,
					Width:       finalWidth,
					Height:      advanceY,
					LineHeight:  lineHeight,
					StartOfLine: startOfLine,
				})
				startOfLine = false
				pen.X += finalWidth
			case isWhitespace(cp):
				layout = append(layout, GlyphLayout{
					Grapheme:    gi,
					CodePoint:   cp,
					Glyph:       slot.Glyphs[0],
					Location:    pen,
					Width:       advance,
					Height:      advanceY,
					LineHeight:  lineHeight,
					StartOfLine: startOfLine,
				})
				startOfLine = false
				pen.X += advance
			default:
				// renderable: one record per glyph ID in the slot, all
				// sharing position and the widest advance
				for _, gid := range slot.Glyphs {
					layout = append(layout, GlyphLayout{
						Grapheme:    gi,
						CodePoint:   cp,
						Glyph:       gid,
						Location:    pen,
						Width:       advance,
						Height:      advanceY,
						LineHeight:  lineHeight,
						StartOfLine: startOfLine,
					})
				}
				startOfLine = false
				pen.X += advance
				if pen.X >= maxWidth && lastWrappableLocation > 0 &&
					lastWrappableLocation < len(layout) {
					layout, pen = wrapLine(layout, pen, lastWrappableLocation, lineHeight)
					firstLine = false
					lastWrappableLocation = -1
				}
			}
		}
	}
	if len(layout) == 0 {
		return nil, nil
	}
	//
	// vertical placement of the whole block
	totalHeight := pen.Y + lineHeight
	offsetY := top
	switch opts.VerticalAlignment {
	case AlignMiddle:
		offsetY -= totalHeight / 2
	case AlignBottom:
		offsetY -= totalHeight
	}
	//
	// horizontal placement per line
	alignLines(layout, opts.HorizontalAlignment, originX, origin, offsetY)
	tracer().Debugf("layout of %d glyphs, total height %.2f", len(layout), totalHeight)
	return layout, nil
}

// wrapLine moves the records from the last wrappable location onward to
// the beginning of the next line: leading white-space records are dropped
// (their widths accumulate into the wrapping offset), the remaining
// records shift left by the offset and down by one line height, and the
// first moved grapheme is flagged start-of-line. The pen restarts at the
// end of the last moved record.
func wrapLine(layout []GlyphLayout, pen Point, wrapAt int, lineHeight float64) ([]GlyphLayout, Point) {
	wrappingOffset := layout[wrapAt].Location.X
	i := wrapAt
	for i < len(layout) && isWhitespace(layout[i].CodePoint) {
		wrappingOffset += layout[i].Width
		layout = append(layout[:i], layout[i+1:]...)
	}
	if i >= len(layout) {
		return layout, pen
	}
	wrappedGrapheme := layout[i].Grapheme
	for j := i; j < len(layout); j++ {
		layout[j].Location.X -= wrappingOffset
		layout[j].Location.Y += lineHeight
		// glyphs of a multi-glyph grapheme all carry the flag
		layout[j].StartOfLine = layout[j].Grapheme == wrappedGrapheme
	}
	pen.X -= wrappingOffset
	pen.Y += lineHeight
	return layout, pen
}

// alignLines sweeps the layout for start-of-line records and offsets every
// line by its alignment shift, the vertical block offset, and the origin.
// A line's width is max(location.x + width) over the line's records, not
// the final pen position.
func alignLines(layout []GlyphLayout, align HorizontalAlignment, originX float64,
	origin Point, offsetY float64) {
	//
	i := 0
	for i < len(layout) {
		// scan forward to the start of the next line; records tagged
		// start-of-line but belonging to the same grapheme as the current
		// line start do not terminate the scan
		j := i + 1
		for j < len(layout) &&
			!(layout[j].StartOfLine && layout[j].Grapheme != layout[i].Grapheme) {
			j++
		}
		width := 0.0
		for k := i; k < j; k++ {
			width = math.Max(width, layout[k].Location.X+layout[k].Width)
		}
		shift := originX
		switch align {
		case AlignRight:
			shift = originX - width
		case AlignCenter:
			shift = originX - width/2
		}
		for k := i; k < j; k++ {
			layout[k].Location.X += shift + origin.X
			layout[k].Location.Y += offsetY + origin.Y
		}
		i = j
	}
}
