package ot

import (
	"testing"

	"github.com/npillmayer/glyphs/internal/testfont"
	"github.com/npillmayer/schuko/testconfig"
	"github.com/stretchr/testify/assert"
)

func TestCoverageFormat1(t *testing.T) {
	teardown := testconfig.QuickConfig(t)
	defer teardown()
	//
	cov, err := parseCoverage(testfont.CoverageF1(3, 7, 11, 200), 0, gsubTag, "test")
	if err != nil {
		t.Fatal(err)
	}
	assert.Equal(t, 0, cov.Index(3))
	assert.Equal(t, 2, cov.Index(11))
	assert.Equal(t, 3, cov.Index(200))
	assert.Equal(t, -1, cov.Index(4))
	assert.Equal(t, -1, cov.Index(201))
}

func TestCoverageFormat2(t *testing.T) {
	teardown := testconfig.QuickConfig(t)
	defer teardown()
	//
	// ranges 10–19 → indices 0–9, 40–44 → indices 10–14
	cov, err := parseCoverage(testfont.CoverageF2(
		[3]uint16{10, 19, 0},
		[3]uint16{40, 44, 10},
	), 0, gsubTag, "test")
	if err != nil {
		t.Fatal(err)
	}
	assert.Equal(t, 0, cov.Index(10))
	assert.Equal(t, 9, cov.Index(19))
	assert.Equal(t, 10, cov.Index(40))
	assert.Equal(t, 14, cov.Index(44))
	assert.Equal(t, -1, cov.Index(9))
	assert.Equal(t, -1, cov.Index(20))
	assert.Equal(t, -1, cov.Index(45))
}

func TestCoverageInvalidFormat(t *testing.T) {
	teardown := testconfig.QuickConfig(t)
	defer teardown()
	//
	_, err := parseCoverage(binarySegm{0, 3, 0, 0}, 0, gsubTag, "test")
	if err == nil {
		t.Fatal("expected coverage format 3 to be rejected")
	}
	var ferr FontError
	assert.ErrorAs(t, err, &ferr)
	assert.Equal(t, gsubTag, ferr.Table)
}

func TestClassDefFormat1(t *testing.T) {
	teardown := testconfig.QuickConfig(t)
	defer teardown()
	//
	cdef, err := parseClassDef(testfont.ClassDefF1(10, 1, 2, 2, 1), 0, gsubTag, "test")
	if err != nil {
		t.Fatal(err)
	}
	assert.Equal(t, 1, cdef.Class(10))
	assert.Equal(t, 2, cdef.Class(12))
	assert.Equal(t, 0, cdef.Class(9))   // before start glyph
	assert.Equal(t, 0, cdef.Class(14))  // past the array
	assert.Equal(t, 0, cdef.Class(999)) // unlisted glyphs are class 0
}

func TestClassDefFormat2(t *testing.T) {
	teardown := testconfig.QuickConfig(t)
	defer teardown()
	//
	cdef, err := parseClassDef(testfont.ClassDefF2(
		[3]uint16{20, 29, 1},
		[3]uint16{50, 50, 3},
	), 0, gsubTag, "test")
	if err != nil {
		t.Fatal(err)
	}
	assert.Equal(t, 1, cdef.Class(20))
	assert.Equal(t, 1, cdef.Class(29))
	assert.Equal(t, 3, cdef.Class(50))
	assert.Equal(t, 0, cdef.Class(30))
	assert.Equal(t, 0, cdef.Class(49))
}

func TestTagRoundtrip(t *testing.T) {
	teardown := testconfig.QuickConfig(t)
	defer teardown()
	//
	assert.Equal(t, "liga", T("liga").String())
	assert.Equal(t, "DFLT", DFLT.String())
	assert.Equal(t, T("cmap"), MakeTag([]byte("cmap")))
}
