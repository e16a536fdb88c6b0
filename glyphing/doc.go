/*
Package glyphing turns shaped text into positioned glyphs.

The layout engine walks a text in one pass over grapheme clusters and
emits a glyph layout record per resolved glyph: a 2-D position in
user-space units, advance width and height, the current line height, and
a start-of-line marker. It handles carriage returns and the Unicode
newline code-points, tab stops, soft wrapping at UAX#14 line-break
opportunities, and horizontal as well as vertical alignment.

Glyph resolution is delegated to a style resolver, which typically wraps
a shaped glyph stream (see packages otshape and otlayout); styles may
change along the text run.

# Status

Work in progress.

# License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © Norbert Pillmayer <norbert@pillmayer.com>
*/
package glyphing

import "github.com/npillmayer/schuko/tracing"

// tracer traces with key 'glyphs.layout'.
func tracer() tracing.Trace {
	return tracing.Select("glyphs.layout")
}
