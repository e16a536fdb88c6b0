package glyphing

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/npillmayer/uax"
	"github.com/npillmayer/uax/segment"
	"github.com/npillmayer/uax/uax14"
)

// The line-break oracle wraps a UAX#14 line-wrap segmenter into a lazy
// sequence of break events. Its state is kept strictly separate from the
// layout state: the layout engine only ever pulls the next event.

// breakEvent is one UAX#14 line-break opportunity. PositionWrap is the
// code-point index the next line would start at; Required marks a
// mandatory break.
type breakEvent struct {
	PositionWrap int
	Required     bool
}

type breakOracle struct {
	segmenter *segment.Segmenter
	pos       int // code-point count consumed so far
}

// newBreakOracle creates a line-break enumerator over text.
func newBreakOracle(text string) *breakOracle {
	o := &breakOracle{}
	o.segmenter = segment.NewSegmenter(uax14.NewLineWrap())
	o.segmenter.Init(strings.NewReader(text))
	return o
}

// next returns the next break opportunity, or ok=false when the text is
// exhausted. Segments not terminated by the primary breaker are merged
// into the following event.
func (o *breakOracle) next() (breakEvent, bool) {
	for o.segmenter.Next() {
		seg := o.segmenter.Bytes()
		o.pos += utf8.RuneCount(seg)
		p1, _ := o.segmenter.Penalties()
		if p1 >= uax.InfinitePenalty { // no line-wrap opportunity here
			continue
		}
		last, _ := utf8.DecodeLastRune(seg)
		return breakEvent{
			PositionWrap: o.pos,
			Required:     last == '\r' || isNewLine(last),
		}, true
	}
	return breakEvent{}, false
}

// --- Code-point predicates --------------------------------------------------

// isNewLine reports the Unicode newline code-points which unconditionally
// terminate a line: LF, VT, FF, NEL, LINE SEPARATOR and PARAGRAPH
// SEPARATOR. A carriage return is not included; it is handled separately
// so that CR LF advances to the next line just once.
func isNewLine(cp rune) bool {
	switch cp {
	case '\n', '\v', '\f', 0x0085, 0x2028, 0x2029:
		return true
	}
	return false
}

// isWhitespace follows the Unicode white-space property.
func isWhitespace(cp rune) bool {
	return unicode.IsSpace(cp)
}

// isCJK reports code-points of the CJK scripts, for the keep-all word
// breaking mode.
func isCJK(cp rune) bool {
	return unicode.In(cp, unicode.Han, unicode.Hangul, unicode.Hiragana,
		unicode.Katakana, unicode.Bopomofo, unicode.Yi)
}
