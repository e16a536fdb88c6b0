/*
Package font is for typeface and font handling.

There is a certain confusion in the nomenclature of typesetting. We will
stick to the following definitions:

* A "typeface" is a family of fonts. An example is "Helvetica".
This corresponds to a TrueType "collection" (*.ttc).

* A "scalable font" is a font, i.e. a variant of a typeface with a
certain weight, slant, etc.  An example is "Helvetica regular".

* A "typecase" is a scaled font, i.e. a font in a certain size for
a certain script and language. The name is reminiscend on the wooden
boxes of typesetters in the aera of metal type.
An example is "Helvetica regular 11pt, Latin, en_US".

Please note that Go (Golang) does use the terms "font" and "face"
differently–actually more or less in an opposite manner.

# License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © Norbert Pillmayer <norbert@pillmayer.com>
*/
package font

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"

	"github.com/npillmayer/schuko/tracing"
	"golang.org/x/image/font"
	xfont "golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/font/sfnt"
)

// tracer traces with key 'glyphs.fonts'.
func tracer() tracing.Trace {
	return tracing.Select("glyphs.fonts")
}

// Style names for font variants.
const (
	StyleNormal = xfont.StyleNormal
	StyleItalic = xfont.StyleItalic
)

// Weight names for font variants.
const (
	WeightNormal = xfont.WeightNormal
	WeightLight  = xfont.WeightLight
	WeightBold   = xfont.WeightBold
)

// ScalableFont is an unscaled font, i.e. a font variant of a typeface.
type ScalableFont struct {
	Fontname string
	Filepath string     // file path
	Binary   []byte     // raw data
	SFNT     *sfnt.Font // the font's container
}

// TypeCase is a font at a certain size.
type TypeCase struct {
	scalableFontParent *ScalableFont
	font               font.Face // Go uses 'face' and 'font' in an inverse manner
	size               float64
}

// NullTypeCase returns an empty typecase at 10pt.
func NullTypeCase() *TypeCase {
	return &TypeCase{
		font: nil,
		size: 10,
	}
}

// LoadOpenTypeFont loads an OpenType font from a file.
func LoadOpenTypeFont(fontfile string) (*ScalableFont, error) {
	bytez, err := os.ReadFile(fontfile)
	if err != nil {
		return nil, err
	}
	f, err := ParseOpenTypeFont(bytez)
	if err == nil {
		f.Filepath = fontfile
	}
	return f, err
}

// ParseOpenTypeFont interprets a byte sequence as OpenType font data.
func ParseOpenTypeFont(fbytes []byte) (f *ScalableFont, err error) {
	f = &ScalableFont{Binary: fbytes}
	f.SFNT, err = sfnt.Parse(f.Binary)
	if err != nil {
		return nil, err
	}
	f.Fontname, _ = f.SFNT.Name(nil, sfnt.NameIDFull)
	return
}

// PrepareCase scales a font to a given size.
func (sf *ScalableFont) PrepareCase(fontsize float64) (*TypeCase, error) {
	typecase := &TypeCase{}
	typecase.scalableFontParent = sf
	if fontsize < 5.0 || fontsize > 500.0 {
		tracer().Infof("font size must be 5pt < size < 500pt, is %g (set to 10pt)", fontsize)
		fontsize = 10.0
	}
	options := &opentype.FaceOptions{
		Size: fontsize,
		DPI:  600,
	}
	f, err := opentype.NewFace(sf.SFNT, options)
	if err == nil {
		typecase.font = f
		typecase.size = fontsize
	}
	return typecase, err
}

// ScalableFontParent returns the unscaled font this typecase has been
// derived from.
func (tc *TypeCase) ScalableFontParent() *ScalableFont {
	return tc.scalableFontParent
}

// PtSize returns the point-size of this typecase.
func (tc *TypeCase) PtSize() float64 {
	return tc.size
}

// --- Fallback font ---------------------------------------------------------

// FallbackFont returns a font to be used if everything else failes. It is
// always present. Currently we use Go Sans.
func FallbackFont() *ScalableFont {
	fallbackFontLoading.Do(func() {
		fallbackFont = loadFallbackFont()
	})
	return fallbackFont
}

var fallbackFontLoading sync.Once

var fallbackFont *ScalableFont

func loadFallbackFont() *ScalableFont {
	var err error
	gofont := &ScalableFont{
		Fontname: "Go Sans",
		Filepath: "internal",
		Binary:   goregular.TTF,
	}
	gofont.SFNT, err = sfnt.Parse(gofont.Binary)
	if err != nil {
		panic("cannot load default font") // this cannot happen
	}
	return gofont
}

// --- Font naming -----------------------------------------------------------

// NormalizeFontname returns a canonical lowercase font name, with spaces
// replaced and any file extension cut off.
func NormalizeFontname(fname string) string {
	fname = strings.TrimSpace(fname)
	fname = strings.ReplaceAll(fname, " ", "_")
	if dot := strings.LastIndex(fname, "."); dot > 0 {
		fname = fname[:dot]
	}
	fname = strings.ToLower(fname)
	return fname
}

// NormalizeTypeCaseName returns a canonical name for a font at a size.
func NormalizeTypeCaseName(fname string, size float64) string {
	fname = NormalizeFontname(fname)
	fname = fmt.Sprintf("%s-%.2f", fname, size)
	return fname
}

// MatchStyle checks if a font-variant name denotes a given style.
func MatchStyle(variantName string, style xfont.Style) bool {
	switch style {
	case xfont.StyleNormal:
		switch variantName {
		case "regular", "100", "200", "300", "400", "500":
			return true
		}
		return false
	case xfont.StyleItalic, xfont.StyleOblique:
		switch variantName {
		case "italic", "100italic", "200italic", "300italic", "400italic", "500italic":
			return true
		}
		return false
	}
	return false
}

// MatchWeight checks if a font-variant name denotes a given weight.
func MatchWeight(variantName string, weight xfont.Weight) bool {
	if strconv.Itoa(int(weight)+4*100) == variantName {
		return true
	}
	switch variantName {
	case "regular", "100", "200", "300", "400", "500":
		switch weight {
		case xfont.WeightThin, xfont.WeightExtraLight, xfont.WeightLight, xfont.WeightNormal, xfont.WeightMedium:
			return true
		}
		return false
	case "bold", "extrabold", "600", "700", "800", "900":
		switch weight {
		case xfont.WeightSemiBold, xfont.WeightBold, xfont.WeightExtraBold, xfont.WeightBlack:
			return true
		}
		return false
	}
	return false
}
