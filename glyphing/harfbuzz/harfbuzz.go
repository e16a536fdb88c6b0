/*
Package harfbuzz converts text to glyph sequences using HarfBuzz.

It is an alternative shaper backend: clients may prefer the HarfBuzz
shaping pipeline over the built-in substitution engine, e.g. for complex
scripts with positioning demands. Both backends serve the glyphing.Shaper
interface.

# License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © Norbert Pillmayer <norbert@pillmayer.com>
*/
package harfbuzz

import (
	"bytes"
	"encoding/binary"
	"io"
	"unicode"

	hbtt "github.com/benoitkugler/textlayout/fonts/truetype"
	hb "github.com/benoitkugler/textlayout/harfbuzz"
	hblang "github.com/benoitkugler/textlayout/language"
	"github.com/npillmayer/glyphs/core/dimen"
	"github.com/npillmayer/glyphs/glyphing"
	"github.com/npillmayer/glyphs/ot"
	"github.com/npillmayer/schuko/tracing"
	"golang.org/x/text/language"
)

// tracer traces with key 'glyphs.layout'.
func tracer() tracing.Trace {
	return tracing.Select("glyphs.layout")
}

// --- Type conversion -------------------------------------------------------

// Lang4HB returns a language tag as a HarfBuzz language.
func Lang4HB(l language.Tag) hblang.Language {
	return hblang.NewLanguage(l.String())
}

// Script4HB returns a script as a HarfBuzz script.
func Script4HB(s language.Script) hblang.Script {
	b := []byte(s.String())
	b[0] = byte(unicode.ToLower(rune(b[0])))
	h := binary.BigEndian.Uint32(b)
	return hblang.Script(h)
}

// Direction4HB translates a direction to a HarfBuzz direction.
func Direction4HB(d glyphing.Direction) hb.Direction {
	switch d {
	case glyphing.LeftToRight:
		return hb.LeftToRight
	case glyphing.RightToLeft:
		return hb.RightToLeft
	case glyphing.TopToBottom:
		return hb.TopToBottom
	case glyphing.BottomToTop:
		return hb.BottomToTop
	}
	return hb.LeftToRight
}

// Feature4HB makes a typecast from an OpenType feature tag to a HarfBuzz
// truetype tag.
func Feature4HB(t ot.Tag) hbtt.Tag {
	return hbtt.Tag(t)
}

// FeatureRange4HB converts a feature range struct to a HarfBuzz feature
// switch.
func FeatureRange4HB(frng glyphing.FeatureRange) hb.Feature {
	f := hb.Feature{
		Tag:   Feature4HB(frng.Feature),
		Start: frng.Start,
		End:   frng.End,
	}
	if frng.On {
		if frng.Arg > 0 {
			f.Value = uint32(frng.Arg)
		} else {
			f.Value = 1
		}
	}
	return f
}

// --- Shaper ----------------------------------------------------------------

type hbshaper struct{}

// Shaper returns a glyphing.Shaper backed by HarfBuzz.
func Shaper() glyphing.Shaper {
	return hbshaper{}
}

// Shape calls the HarfBuzz shaper.
//
// Shape shapes a sequence of code-points (runes), turning its Unicode
// characters to positioned glyphs. It will select a shape plan based on
// params, including the selected font, and the properties of the input
// text.
//
// If params.Features is not empty, it will be used to control the features
// applied during shaping. If two features have the same tag but
// overlapping ranges the value of the feature with the higher index takes
// precedence.
//
// params.Font must be set, otherwise no output is created.
//
// Clients may provide buf to avoid allocating memory by Shape. Shape will
// wrap it into the GlyphSequence returned.
func (hbshaper) Shape(text io.RuneReader, buf []glyphing.ShapedGlyph, context [][]rune,
	params glyphing.Params) (glyphing.GlyphSequence, error) {
	//
	if text == nil || params.Font == nil {
		return glyphing.GlyphSequence{}, nil
	}
	// Prepare font
	f := bytes.NewReader(params.Font.ScalableFontParent().Binary)
	hbFace, err := hbtt.Parse(f, true)
	if err != nil {
		return glyphing.GlyphSequence{}, err
	}
	hbFont := hb.NewFont(hbFace)
	hbFont.Ptem = float32(params.Font.PtSize())
	// Prepare shaping parameters
	var hbSeqProps hb.SegmentProperties
	convertParams(&hbSeqProps, params)
	features := make([]hb.Feature, 0, len(params.Features))
	for _, feat := range params.Features {
		features = append(features, FeatureRange4HB(feat))
	}
	// Prepare HarfBuzz buffer
	hbBuf := hb.NewBuffer()
	hbBuf.Props = hbSeqProps
	bytesBuf, offset, length := bufferText(text, context)
	runes := bytes.Runes(bytesBuf.Bytes())
	hbBuf.AddRunes(runes, offset, length)
	hbBuf.Shape(hbFont, features)
	// Prepare shaped output
	if buf == nil || len(buf) < len(hbBuf.Info) {
		buf = make([]glyphing.ShapedGlyph, len(hbBuf.Info))
	}
	seq := glyphing.GlyphSequence{
		Glyphs: buf[:len(hbBuf.Info)],
	}
	// move HarfBuzz output to glyph sequence output
	for i, ginfo := range hbBuf.Info {
		gpos := &hbBuf.Pos[i]
		tracer().Debugf("[%3d] %q", i, ginfo.String())
		g := &seq.Glyphs[i]
		g.ClusterID = ginfo.Cluster
		g.GID = ot.GlyphIndex(ginfo.Glyph)
		g.XAdvance = dimen.DU(gpos.XAdvance)
		g.YAdvance = dimen.DU(gpos.YAdvance)
		g.XOffset = dimen.DU(gpos.XOffset)
		g.YOffset = dimen.DU(gpos.YOffset)
		if g.ClusterID >= 0 && g.ClusterID < len(runes) {
			g.CodePoint = runes[g.ClusterID]
		}
		seq.W += g.XAdvance
	}
	return seq, nil
}

// convertParams is a helper function to convert glyphing parameters to
// HarfBuzz's format.
func convertParams(hbSeqProps *hb.SegmentProperties, params glyphing.Params) {
	if params.Language != language.Und {
		hbSeqProps.Language = Lang4HB(params.Language)
	}
	var none language.Script
	if params.Script != none {
		hbSeqProps.Script = Script4HB(params.Script)
	}
	hbSeqProps.Direction = Direction4HB(params.Direction)
}

// bufferText buffers the input text of a call to Shape(…) as a
// bytes.Buffer. To conform to HarfBuzz's API, context is pre-/appended to
// the input runes.
//
// bufferText returns the start position of the input within the returned
// buffer, together with the input's length (= rune count).
func bufferText(text io.RuneReader, context [][]rune) (buf bytes.Buffer, off int, length int) {
	var bytesBuf bytes.Buffer
	var r rune
	if len(context) > 0 && len(context[0]) > 0 {
		off = len(context[0])
		for _, r = range context[0] {
			bytesBuf.WriteRune(r)
		}
	}
	var sz int
	var err error
	for {
		if r, sz, err = text.ReadRune(); sz == 0 || err != nil {
			break
		}
		length++
		bytesBuf.WriteRune(r)
	}
	if len(context) > 1 && len(context[1]) > 0 {
		for _, r = range context[1] {
			bytesBuf.WriteRune(r)
		}
	}
	return bytesBuf, off, length
}
