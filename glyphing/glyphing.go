package glyphing

import (
	"fmt"
	"io"
	"math"

	"github.com/npillmayer/glyphs/core/dimen"
	"github.com/npillmayer/glyphs/core/font"
	"github.com/npillmayer/glyphs/ot"
	"golang.org/x/text/language"
)

// Direction is the direction to typeset text in.
type Direction int

// Direction to typeset text in.
const (
	LeftToRight Direction = iota
	RightToLeft
	TopToBottom
	BottomToTop
)

// HorizontalAlignment positions the glyphs of a line horizontally.
type HorizontalAlignment int

// Horizontal alignments.
const (
	AlignLeft HorizontalAlignment = iota
	AlignCenter
	AlignRight
)

// VerticalAlignment positions the block of lines vertically relative to
// the origin.
type VerticalAlignment int

// Vertical alignments.
const (
	AlignTop VerticalAlignment = iota
	AlignMiddle
	AlignBottom
)

// WordBreaking selects how lines may be broken within words.
type WordBreaking int

// Word breaking modes.
const (
	BreakNormal  WordBreaking = iota // break at UAX#14 opportunities only
	BreakAll                         // may break after any code-point
	BreakKeepAll                     // as BreakNormal, but never within CJK runs
)

// Point is a position in user-space units.
type Point struct {
	X, Y float64
}

// GlyphLayout is one positioned glyph, as emitted by the layout engine.
// The sequence of layout records is produced in logical reading order.
type GlyphLayout struct {
	Grapheme    int           // index of the grapheme cluster producing this glyph
	CodePoint   rune          // code-point of the slot producing this glyph
	Glyph       ot.GlyphIndex // glyph index within the style's font
	Location    Point         // position in user-space units
	Width       float64       // advance width
	Height      float64       // advance height
	LineHeight  float64       // height of the line this glyph sits on
	StartOfLine bool          // marks the first glyph(s) of a line
}

func (g GlyphLayout) String() string {
	return fmt.Sprintf("(GID=%d at %.2f,%.2f +%.2f)", g.Glyph, g.Location.X, g.Location.Y, g.Width)
}

// Options controls a layout run. The zero value denotes left-aligned,
// top-anchored, unwrapped layout at 72 DPI.
type Options struct {
	DPI                 Point   // dots per inch; zero selects 72
	Origin              Point   // origin, in DPI-scaled units
	WrappingWidth       float64 // wrap lines at this width, in DPI-scaled units; ≤ 0 disables wrapping
	HorizontalAlignment HorizontalAlignment
	VerticalAlignment   VerticalAlignment
	LineSpacing         float64 // multiplier on line height; zero selects 1
	TabWidth            float64 // tab stops at this multiple of the tab glyph's advance; zero selects 4
	WordBreaking        WordBreaking
	Styles              StyleResolver // style lookup; required
}

// StyleResolver returns the style applicable at a code-point index.
// total is the total code-point count of the run.
type StyleResolver func(cpIndex, total int) Style

// Style gives per-run typographic parameters during layout: a point size,
// font-global metrics, and per-code-point glyph resolution. A style covers
// a contiguous range of code-point indices.
type Style interface {
	Extent() (start, end int) // covered code-point index range, end exclusive
	PointSize() float64
	Metrics() StyleMetrics
	// Glyphs resolves the glyph slot for the code-point at index. It
	// reports false when the style cannot resolve a glyph; the layout
	// engine will silently skip the slot.
	Glyphs(cp rune, index int) (GlyphSlot, bool)
}

// StyleMetrics carries font-global extents, in font design units.
type StyleMetrics struct {
	UnitsPerEm float64 // design units per em (the scale factor)
	Ascender   float64
	Descender  float64 // magnitude of the descender
	LineHeight float64
}

// GlyphSlot is the resolution of one code-point slot: one or more glyph
// IDs (more than one after one-to-many substitutions) and the advance of
// the widest glyph, in font design units.
type GlyphSlot struct {
	Glyphs   []ot.GlyphIndex
	Advance  float64 // advance width of the widest glyph in the slot
	AdvanceY float64 // advance height
}

func (opts Options) withDefaults() Options {
	if opts.DPI.X <= 0 {
		opts.DPI.X = 72
	}
	if opts.DPI.Y <= 0 {
		opts.DPI.Y = 72
	}
	if opts.LineSpacing <= 0 {
		opts.LineSpacing = 1
	}
	if opts.TabWidth <= 0 {
		opts.TabWidth = 4
	}
	return opts
}

// Measure runs the layout engine and reports the bounding box of the
// resulting layout: width and height in user-space units.
func Measure(text string, opts Options) (float64, float64, error) {
	layout, err := Layout(text, opts)
	if err != nil || len(layout) == 0 {
		return 0, 0, err
	}
	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for _, g := range layout {
		minX = math.Min(minX, g.Location.X)
		maxX = math.Max(maxX, g.Location.X+g.Width)
		minY = math.Min(minY, g.Location.Y)
		maxY = math.Max(maxY, g.Location.Y+g.LineHeight)
	}
	return maxX - minX, maxY - minY, nil
}

// --- Shaping interface ------------------------------------------------------

// A ShapedGlyph lives in design space (result from the shaper, which lives
// in design space as well, at least its interface).
type ShapedGlyph struct {
	ClusterID int           // position of code-point(s) for this glyph in original string
	XAdvance  dimen.DU      // advance after glyph has been set, in design units
	YAdvance  dimen.DU      //
	XOffset   dimen.DU      // position of anchor dot for glyph, in design units
	YOffset   dimen.DU      //
	GID       ot.GlyphIndex // glyph index within font
	CodePoint rune          // code-point of first rune to produce this glyph
}

// A Shaper creates a sequence of glyphs from a sequence of Unicode
// code-points. Glyphs are taken from a font, given in a specific
// point-size.
//
// Clients may provide additional information in Params, as well as
// textual context ([2][]rune).
type Shaper interface {
	Shape(io.RuneReader, []ShapedGlyph, [][]rune, Params) (GlyphSequence, error)
}

// Params collects shaping parameters.
type Params struct {
	Font      *font.TypeCase  // use a font at a given point-size
	Direction Direction       // writing direction
	Script    language.Script // 4-letter ISO 15924 script identifier
	Language  language.Tag    // BCP 47 language tag
	Features  []FeatureRange  // OpenType features to apply
}

// FeatureRange tells a shaper to turn a certain OpenType feature on or off
// for a run of code-points.
type FeatureRange struct {
	Feature    ot.Tag // 4-letter feature tag
	Arg        int    // optional argument for this feature
	On         bool   // turn it on or off?
	Start, End int    // position of code-points to apply feature for
}

// GlyphSequence contains a sequence of shaped glyphs.
type GlyphSequence struct {
	Glyphs  []ShapedGlyph // resulting sequence of glyphs
	W, H, D dimen.DU      // width, height, depth of bounding box
}

// BoundingBox returns width, height and depth of the sequence.
func (seq GlyphSequence) BoundingBox() (w dimen.DU, h dimen.DU, d dimen.DU) {
	return seq.W, seq.H, seq.D
}
