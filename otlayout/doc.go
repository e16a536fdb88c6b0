/*
Package otlayout implements OpenType glyph substitution.

The package contains two cooperating parts:

▪︎ GlyphStream, a mutable, position-indexed container holding, for each
source code-point slot, one or more resolved glyph IDs plus per-slot
feature tags. A shaper populates the stream with an initial 1:1 mapping.

▪︎ The substitution engine, which applies the font's GSUB lookup list to
the stream: it iterates features → lookups → subtables and rewrites the
stream in place. All eight GSUB lookup types are supported, including
contextual and chained-contextual rules with nested lookups, and
reverse chaining single substitution.

# Status

Work in progress.

# License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © Norbert Pillmayer <norbert@pillmayer.com>
*/
package otlayout

import "github.com/npillmayer/schuko/tracing"

// tracer writes to trace with key 'glyphs.fonts'
func tracer() tracing.Trace {
	return tracing.Select("glyphs.fonts")
}
