/*
Package otshape maps Unicode text runs onto glyph streams.

Shaping proceeds in two steps: the input run is normalized and mapped
1:1 onto an initial glyph stream via the font's cmap, then the font's
GSUB lookups rewrite the stream (package otlayout). The resulting
stream is consumed by the layout engine (package glyphing) or by
clients measuring shaped runs directly.

# Status

Work in progress.

# License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © Norbert Pillmayer <norbert@pillmayer.com>
*/
package otshape

import "github.com/npillmayer/schuko/tracing"

// trace writes to trace with key 'glyphs.fonts'
func trace() tracing.Trace {
	return tracing.Select("glyphs.fonts")
}
