package otlayout

import (
	"fmt"

	"github.com/emirpasic/gods/sets/hashset"
	"github.com/npillmayer/glyphs/ot"
)

// GlyphStream is a mutable sequence of glyph slots used during glyph
// substitution. Each slot corresponds to one source code-point and carries
// one or more resolved glyph IDs, the code-point's original offset within
// the input run, and the set of feature tags requested for the slot.
//
// Offsets are strictly increasing but not necessarily dense: a ligature
// substitution collapses several slots into one, retaining the offset of
// the first consumed slot and discarding the others. Indexed access uses
// dense positions [0, Count()).
//
// Contract:
//   - Out-of-range positions and non-monotonic offsets are programmer
//     errors and panic.
//   - A slot's glyph ID list is never empty while the slot exists.
//
// A stream is owned by a single shaping run and must not be shared
// between goroutines.
type GlyphStream struct {
	offsets []int         // dense position → original code-point offset
	slots   map[int]*slot // offset → slot
	feats   map[int]*hashset.Set
}

type slot struct {
	codepoint rune
	glyphs    []ot.GlyphIndex
}

// NewGlyphStream creates an empty glyph stream with capacity for n slots.
func NewGlyphStream(n int) *GlyphStream {
	if n < 0 {
		n = 0
	}
	return &GlyphStream{
		offsets: make([]int, 0, n),
		slots:   make(map[int]*slot, n),
		feats:   make(map[int]*hashset.Set, n),
	}
}

// Count returns the number of slots in the stream.
func (gs *GlyphStream) Count() int {
	return len(gs.offsets)
}

// Add appends a new slot for glyph gid, produced by code-point cp at the
// given offset. The offset must be strictly greater than any offset already
// contained in the stream.
func (gs *GlyphStream) Add(gid ot.GlyphIndex, cp rune, offset int) {
	if len(gs.offsets) > 0 && offset <= gs.offsets[len(gs.offsets)-1] {
		panic(fmt.Sprintf("glyph stream: offset %d not strictly increasing", offset))
	}
	gs.offsets = append(gs.offsets, offset)
	gs.slots[offset] = &slot{codepoint: cp, glyphs: []ot.GlyphIndex{gid}}
}

// GlyphsAt returns the glyph ID list of the slot at dense position pos.
// Callers must treat the returned slice as read-only.
func (gs *GlyphStream) GlyphsAt(pos int) []ot.GlyphIndex {
	return gs.slot(pos).glyphs
}

// At returns the code-point, original offset and glyph ID list of the slot
// at dense position pos.
func (gs *GlyphStream) At(pos int) (rune, int, []ot.GlyphIndex) {
	s := gs.slot(pos)
	return s.codepoint, gs.offsets[pos], s.glyphs
}

// AtOffset returns the code-point and glyph ID list of the slot with the
// given original offset, if present.
func (gs *GlyphStream) AtOffset(offset int) (rune, []ot.GlyphIndex, bool) {
	s, ok := gs.slots[offset]
	if !ok {
		return 0, nil, false
	}
	return s.codepoint, s.glyphs, true
}

// Replace substitutes the slot at dense position pos by a single glyph.
// The slot's offset is unchanged.
func (gs *GlyphStream) Replace(pos int, gid ot.GlyphIndex) {
	s := gs.slot(pos)
	s.glyphs = []ot.GlyphIndex{gid}
}

// ReplaceRange collapses count consecutive slots, starting at dense
// position pos, into a single slot holding glyph gid (a ligature). The
// offset of the slot at pos is retained; the offsets of the following
// count-1 slots are discarded, never re-assigned.
func (gs *GlyphStream) ReplaceRange(pos, count int, gid ot.GlyphIndex) {
	if count < 1 || pos+count > len(gs.offsets) {
		panic(fmt.Sprintf("glyph stream: replace of %d slots at position %d out of range", count, pos))
	}
	s := gs.slot(pos)
	s.glyphs = []ot.GlyphIndex{gid}
	for i := pos + 1; i < pos+count; i++ {
		offset := gs.offsets[i]
		delete(gs.slots, offset)
		delete(gs.feats, offset)
	}
	gs.offsets = append(gs.offsets[:pos+1], gs.offsets[pos+count:]...)
}

// Expand substitutes the slot at dense position pos by an ordered list of
// glyphs (a one-to-many substitution). The position count of the stream is
// unchanged: the slot now carries multiple glyph IDs.
func (gs *GlyphStream) Expand(pos int, gids []ot.GlyphIndex) {
	if len(gids) == 0 {
		panic("glyph stream: expansion with empty glyph list")
	}
	s := gs.slot(pos)
	s.glyphs = append([]ot.GlyphIndex{}, gids...)
}

// AddFeature requests an OpenType feature for the slot at dense position
// pos.
func (gs *GlyphStream) AddFeature(pos int, tag ot.Tag) {
	offset := gs.offsetAt(pos)
	set, ok := gs.feats[offset]
	if !ok {
		set = hashset.New()
		gs.feats[offset] = set
	}
	set.Add(tag)
}

// HasFeature tests whether the slot at dense position pos requests a
// feature.
func (gs *GlyphStream) HasFeature(pos int, tag ot.Tag) bool {
	set, ok := gs.feats[gs.offsetAt(pos)]
	return ok && set.Contains(tag)
}

// Features returns the feature tags requested for the slot at dense
// position pos, in no particular order.
func (gs *GlyphStream) Features(pos int) []ot.Tag {
	set, ok := gs.feats[gs.offsetAt(pos)]
	if !ok {
		return nil
	}
	values := set.Values()
	tags := make([]ot.Tag, len(values))
	for i, v := range values {
		tags[i] = v.(ot.Tag)
	}
	return tags
}

// Clear empties the stream. The stream may be re-used for another run
// afterwards.
func (gs *GlyphStream) Clear() {
	gs.offsets = gs.offsets[:0]
	gs.slots = make(map[int]*slot)
	gs.feats = make(map[int]*hashset.Set)
}

func (gs *GlyphStream) slot(pos int) *slot {
	return gs.slots[gs.offsetAt(pos)]
}

func (gs *GlyphStream) offsetAt(pos int) int {
	if pos < 0 || pos >= len(gs.offsets) {
		panic(fmt.Sprintf("glyph stream: position %d out of range [0, %d)", pos, len(gs.offsets)))
	}
	return gs.offsets[pos]
}

// first returns the first glyph ID of the slot at dense position pos.
// Coverage tests during substitution read only this glyph.
func (gs *GlyphStream) first(pos int) ot.GlyphIndex {
	return gs.slot(pos).glyphs[0]
}

func (gs *GlyphStream) String() string {
	str := "["
	for i, offset := range gs.offsets {
		if i > 0 {
			str += " "
		}
		str += fmt.Sprintf("%d:%v", offset, gs.slots[offset].glyphs)
	}
	return str + "]"
}
