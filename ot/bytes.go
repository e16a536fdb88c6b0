package ot

import (
	"bytes"
	"errors"
	"io"
	"unicode/utf16"
)

// Reading bytes from a font's binary representation.
// All multi-byte quantities in OpenType fonts are big-endian.

var errBufferBounds = errors.New("internal inconsistency: buffer bounds error")

func u16(b []byte) uint16 {
	_ = b[1] // bounds check hint to compiler
	return uint16(b[0])<<8 | uint16(b[1])<<0
}

func u32(b []byte) uint32 {
	_ = b[3] // bounds check hint to compiler
	return uint32(b[0])<<24 | uint32(b[1])<<16 | uint32(b[2])<<8 | uint32(b[3])<<0
}

func i16(b []byte) int16 {
	return int16(u16(b))
}

func i32(b []byte) int32 {
	return int32(u32(b))
}

// binarySegm is a segment of byte data. We use it throughout this module to
// navigate the font's binary data.
type binarySegm []byte

// Size returns the size in bytes.
func (b binarySegm) Size() int {
	return len(b)
}

// Bytes returns the segment as a byte slice.
func (b binarySegm) Bytes() []byte {
	return b
}

// Reader wraps the segment into an io.Reader.
func (b binarySegm) Reader() io.Reader {
	return bytes.NewReader(b)
}

// view returns n bytes at the given offset.
// The byte segment returned is a sub-slice of b.
func (b binarySegm) view(offset, n int) (binarySegm, error) {
	if offset < 0 || n <= 0 || offset+n > len(b) {
		return nil, errBufferBounds
	}
	return b[offset : offset+n], nil
}

// u16 returns the uint16 in b at the relative offset i.
func (b binarySegm) u16(i int) (uint16, error) {
	buf, err := b.view(i, 2)
	if err != nil {
		return 0, err
	}
	return u16(buf), nil
}

// u32 returns the uint32 in b at the relative offset i.
func (b binarySegm) u32(i int) (uint32, error) {
	buf, err := b.view(i, 4)
	if err != nil {
		return 0, err
	}
	return u32(buf), nil
}

// U16 is a convenience accessor for 16 bit data at byte index i,
// returning 0 on out-of-bounds access.
func (b binarySegm) U16(i int) uint16 {
	n, err := b.u16(i)
	if err != nil {
		return 0
	}
	return n
}

// U32 is a convenience accessor for 32 bit data at byte index i,
// returning 0 on out-of-bounds access.
func (b binarySegm) U32(i int) uint32 {
	n, err := b.u32(i)
	if err != nil {
		return 0
	}
	return n
}

// I16 is a convenience accessor for signed 16 bit data at byte index i.
func (b binarySegm) I16(i int) int16 {
	return int16(b.U16(i))
}

// --- Fixed-point and tagged reads ------------------------------------------

// Fixed is a 32-bit signed fixed-point number (16.16).
type Fixed int32

// Float converts a 16.16 fixed-point value to a float64.
func (f Fixed) Float() float64 {
	return float64(f) / 65536.0
}

// F2Dot14 is a 16-bit signed fixed number with the low 14 bits of fraction.
type F2Dot14 int16

// Float converts a 2.14 fixed-point value to a float64.
func (f F2Dot14) Float() float64 {
	return float64(f) / 16384.0
}

// fixed returns the 16.16 fixed-point number at the relative offset i.
func (b binarySegm) fixed(i int) (Fixed, error) {
	n, err := b.u32(i)
	if err != nil {
		return 0, err
	}
	return Fixed(n), nil
}

// f2dot14 returns the 2.14 fixed-point number at the relative offset i.
func (b binarySegm) f2dot14(i int) (F2Dot14, error) {
	n, err := b.u16(i)
	if err != nil {
		return 0, err
	}
	return F2Dot14(n), nil
}

// offset16 returns the Offset16 at the relative offset i. Per the OpenType
// specification, offsets are relative to the start of the enclosing table;
// a value of 0 denotes a NULL offset.
func (b binarySegm) offset16(i int) (int, error) {
	n, err := b.u16(i)
	return int(n), err
}

// offset32 returns the Offset32 at the relative offset i.
func (b binarySegm) offset32(i int) (int, error) {
	n, err := b.u32(i)
	return int(n), err
}

// utf16String reads a length-prefixed UTF-16BE string at the relative
// offset i: a uint16 byte-length, followed by that many bytes of UTF-16
// code units.
func (b binarySegm) utf16String(i int) (string, error) {
	length, err := b.u16(i)
	if err != nil {
		return "", err
	}
	buf, err := b.view(i+2, int(length))
	if err != nil {
		return "", err
	}
	units := make([]uint16, 0, length/2)
	for j := 0; j+1 < int(length); j += 2 {
		units = append(units, u16(buf[j:]))
	}
	return string(utf16.Decode(units)), nil
}

// glyphs converts a segment to a slice of glyph indices.
func (b binarySegm) glyphs(n int) []GlyphIndex {
	if n*2 > len(b) {
		n = len(b) / 2
	}
	gids := make([]GlyphIndex, n)
	for i := 0; i < n; i++ {
		gids[i] = GlyphIndex(u16(b[i*2:]))
	}
	return gids
}

// u16s converts a segment to a slice of n uint16 values.
func (b binarySegm) u16s(n int) []uint16 {
	if n*2 > len(b) {
		n = len(b) / 2
	}
	r := make([]uint16, n)
	for i := 0; i < n; i++ {
		r[i] = u16(b[i*2:])
	}
	return r
}
