package glyphing

import (
	"github.com/npillmayer/glyphs/ot"
	"github.com/npillmayer/glyphs/otlayout"
	"github.com/npillmayer/glyphs/otquery"
	"github.com/npillmayer/glyphs/otshape"
)

// fontStyle is a style backed by a shaped glyph stream: glyph resolution
// per code-point index reads the stream slot at the code-point's offset.
// Slots consumed by ligature substitutions have no offset any more and
// resolve to nothing; the layout engine skips them.
type fontStyle struct {
	otf     *ot.Font
	size    float64
	end     int
	metrics StyleMetrics
	stream  *otlayout.GlyphStream
}

var _ Style = &fontStyle{}

// SingleStyle shapes a complete text run with one font at one point size
// and returns a style resolver serving the shaped glyphs to the layout
// engine. A nil feature list selects the shaper's default features.
func SingleStyle(text string, otf *ot.Font, ptSize float64, features []ot.Tag) (StyleResolver, error) {
	stream, _, err := otshape.Shape(text, otf, otshape.Params{Features: features})
	if err != nil {
		return nil, err
	}
	fm := otquery.FontMetrics(otf)
	desc := float64(fm.Descent)
	if desc < 0 {
		desc = -desc
	}
	style := &fontStyle{
		otf:  otf,
		size: ptSize,
		metrics: StyleMetrics{
			UnitsPerEm: float64(fm.UnitsPerEm),
			Ascender:   float64(fm.Ascent),
			Descender:  desc,
			LineHeight: float64(fm.LineHeight()),
		},
		stream: stream,
	}
	return func(cpIndex, total int) Style {
		style.end = total
		return style
	}, nil
}

func (fs *fontStyle) Extent() (int, int) {
	return 0, fs.end
}

func (fs *fontStyle) PointSize() float64 {
	return fs.size
}

func (fs *fontStyle) Metrics() StyleMetrics {
	return fs.metrics
}

func (fs *fontStyle) Glyphs(cp rune, index int) (GlyphSlot, bool) {
	_, gids, ok := fs.stream.AtOffset(index)
	if !ok || len(gids) == 0 {
		return GlyphSlot{}, false
	}
	if len(gids) == 1 && gids[0] == otshape.NOTDEF {
		return GlyphSlot{}, false // missing glyph: skip the slot
	}
	slot := GlyphSlot{Glyphs: gids}
	for _, gid := range gids {
		metrics := otquery.GlyphMetrics(fs.otf, gid)
		if adv := float64(metrics.Advance); adv > slot.Advance {
			slot.Advance = adv
		}
	}
	return slot, true
}
