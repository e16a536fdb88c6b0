package ot

import "fmt"

// FontError represents an error encountered during font parsing.
// A FontError is fatal: tables containing structural errors are rejected
// as a whole, the engine never tries to continue with half-parsed lookup
// data.
type FontError struct {
	Table   Tag    // the OpenType table where the error occurred (e.g., "GSUB")
	Section string // specific section within the table (e.g., "LookupType6", "ScriptList")
	Issue   string // human-readable description of the issue
	Offset  uint32 // byte offset in the table where parsing failed (0 if unknown)
}

// Error implements the error interface.
func (e FontError) Error() string {
	if e.Offset > 0 {
		return fmt.Sprintf("%s/%s at offset %d: %s", e.Table, e.Section, e.Offset, e.Issue)
	}
	return fmt.Sprintf("%s/%s: %s", e.Table, e.Section, e.Issue)
}

// malformed creates a fatal font error for a table section.
func malformed(table Tag, section string, issue string, offset int) error {
	if offset < 0 {
		offset = 0
	}
	return FontError{
		Table:   table,
		Section: section,
		Issue:   issue,
		Offset:  uint32(offset),
	}
}
