package otshape

import (
	"github.com/npillmayer/glyphs/ot"
	"github.com/npillmayer/glyphs/otlayout"
	"github.com/npillmayer/glyphs/otquery"
	"golang.org/x/text/unicode/norm"
)

// NOTDEF is the glyph index of the '.notdef' glyph, present in every font.
const NOTDEF ot.GlyphIndex = 0

// DefaultFeatures are the substitution features enabled when a client does
// not select features itself.
var DefaultFeatures = []ot.Tag{ot.T("ccmp"), ot.T("liga"), ot.T("clig")}

// Params collects shaping parameters. The zero value shapes with the
// default features for the DFLT script and language system.
type Params struct {
	Script   ot.Tag         // OpenType script tag, e.g. 'latn'
	Language ot.Tag         // OpenType language system tag
	Features []ot.Tag       // feature tags enabled for the whole run; nil selects DefaultFeatures
	Ranges   []FeatureRange // feature toggles for sub-ranges of the run
}

// FeatureRange switches an OpenType feature on or off for a range of
// code-point positions [Start, End).
type FeatureRange struct {
	Feature    ot.Tag
	On         bool
	Start, End int
}

// Shape maps a text run onto a glyph stream and applies the font's
// substitution rules. The text is normalized to NFC first; stream offsets
// index code-points of the normalized run.
//
// Shape reports whether substitutions rewrote the stream. The only error
// condition is a malformed font surfacing through the substitution engine.
func Shape(text string, otf *ot.Font, params Params) (*otlayout.GlyphStream, bool, error) {
	normalized := norm.NFC.String(text)
	features := params.Features
	if features == nil {
		features = DefaultFeatures
	}
	stream := populate(normalized, otf, features, params.Ranges)
	if otf.Layout.GSub == nil {
		trace().Debugf("font %s has no GSUB table, skipping substitutions", otf.Fontname)
		return stream, false, nil
	}
	script, lang := params.Script, params.Language
	if script == 0 {
		script = ot.DFLT
	}
	if lang == 0 {
		lang = ot.DFLT
	}
	script, lang = otquery.FontSupportsScript(otf, script, lang)
	enabled := enabledTags(features, params.Ranges)
	changed, err := otlayout.ApplyFeatures(stream, otf.Layout.GSub, otf.Layout.GDef,
		script, lang, enabled)
	if err != nil {
		return stream, changed, err
	}
	trace().Debugf("shaped %d code-points, substitutions applied = %v", stream.Count(), changed)
	return stream, changed, nil
}

// populate creates the initial 1:1 glyph mapping for a normalized run and
// attaches the requested feature tags to every slot.
func populate(text string, otf *ot.Font, features []ot.Tag, ranges []FeatureRange) *otlayout.GlyphStream {
	stream := otlayout.NewGlyphStream(len(text))
	index := 0
	for _, cp := range text {
		gid := otquery.GlyphIndex(otf, cp)
		stream.Add(gid, cp, index)
		pos := stream.Count() - 1
		for _, tag := range features {
			if !switchedOff(tag, index, ranges) {
				stream.AddFeature(pos, tag)
			}
		}
		for _, rng := range ranges {
			if rng.On && rng.Start <= index && index < rng.End {
				stream.AddFeature(pos, rng.Feature)
			}
		}
		index++
	}
	return stream
}

// switchedOff tests whether a feature range disables tag at position index.
func switchedOff(tag ot.Tag, index int, ranges []FeatureRange) bool {
	for _, rng := range ranges {
		if !rng.On && rng.Feature == tag && rng.Start <= index && index < rng.End {
			return true
		}
	}
	return false
}

// enabledTags collects the union of run-wide features and range-enabled
// features, preserving the run-wide order.
func enabledTags(features []ot.Tag, ranges []FeatureRange) []ot.Tag {
	tags := append([]ot.Tag{}, features...)
	for _, rng := range ranges {
		if !rng.On {
			continue
		}
		contained := false
		for _, tag := range tags {
			if tag == rng.Feature {
				contained = true
				break
			}
		}
		if !contained {
			tags = append(tags, rng.Feature)
		}
	}
	return tags
}
