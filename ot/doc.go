/*
Package ot provides access to OpenType font tables and features.

The code in this package is heavily inspired by
https://github.com/ConradIrwin/font/sfnt, and by golang.org/x/image/font/sfnt.

The package provides access to the binary layout of OpenType fonts:
the table directory, the character-to-glyph mapping (cmap), the glyph
definition table (GDEF), and—most importantly—the glyph substitution
table (GSUB), parsed into concrete lookup subtables per the OpenType
1.9 specification. Subtables are represented as a tagged union over
the eight GSUB lookup types; Extension subtables (type 7) are resolved
during parsing.

The package does not implement the substitution engine itself—that is
the job of package otlayout—nor any rasterization.

# Status

Work in progress.

# License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © Norbert Pillmayer <norbert@pillmayer.com>
*/
package ot

import (
	"fmt"

	"github.com/npillmayer/schuko/tracing"
)

// tracer writes to trace with key 'glyphs.fonts'
func tracer() tracing.Trace {
	return tracing.Select("glyphs.fonts")
}

// errFontFormat produces user level errors for font parsing.
func errFontFormat(message string) error {
	return fmt.Errorf("OpenType font format: %s", message)
}
