/*
Package glyphs implements an OpenType shaping and line-layout engine.

Given an OpenType/TrueType font and a run of Unicode code-points, the
engine produces a fully resolved, positioned sequence of glyphs, ready
for measurement or rasterization by a downstream renderer. The work is
split over three cooperating layers:

▪︎ Package otlayout holds the glyph substitution stream—a mutable,
position-indexed container of resolved glyph IDs—and the GSUB
substitution engine which rewrites the stream according to the
context-sensitive lookup rules embedded in the font.

▪︎ Package otshape populates the stream with an initial code-point to
glyph mapping and drives the substitution engine.

▪︎ Package glyphing walks the shaped stream and emits positioned glyph
records, handling line-breaking (UAX#14), multi-line wrapping, tabs,
and horizontal/vertical alignment.

Table access (package ot) and metrics queries (package otquery) support
these layers. Rasterization, hinting, color fonts, and vertical layout
are out of scope.

# Status

Work in progress.

# License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © Norbert Pillmayer <norbert@pillmayer.com>
*/
package glyphs

import (
	"github.com/npillmayer/schuko/tracing"
)

// tracer writes to trace with key 'glyphs.fonts'
func tracer() tracing.Trace {
	return tracing.Select("glyphs.fonts")
}
