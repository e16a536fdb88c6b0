/*
Package otquery provides access to OpenType font metrics and properties.

Queries read the font's required metrics tables (head, hhea, hmtx, maxp)
directly from their binary segments; results are reported in font design
units.

# Status

Work in progress.

# License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © Norbert Pillmayer <norbert@pillmayer.com>
*/
package otquery

import "github.com/npillmayer/schuko/tracing"

// tracer writes to trace with key 'glyphs.fonts'
func tracer() tracing.Trace {
	return tracing.Select("glyphs.fonts")
}
