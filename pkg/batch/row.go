package batch

import (
	"slices"
	"strings"
)

// Cell is one column value of a row.
type Cell struct {
	Column string
	Value  string
}

// Row is an ordered column to value mapping. Rows are independent of each
// other.
type Row []Cell

// Get returns the value of column.
func (r Row) Get(column string) (string, bool) {
	for _, c := range r {
		if c.Column == column {
			return c.Value, true
		}
	}
	return "", false
}

// TextSpec selects which columns make up the checked text.
type TextSpec struct {
	// IDColumn identifies the row and is always placed first.
	IDColumn string

	// ContentColumns are used in order. Empty means every column other
	// than IDColumn, in row order.
	ContentColumns []string

	// SkipColumns are left out when ContentColumns is empty, typically the
	// result columns of an already checked sheet.
	SkipColumns []string
}

// Build renders row as "<column>: <value>" lines, the identifying column
// first, skipping absent and blank values. hasContent reports whether any
// line other than the identifying column was written.
func (s TextSpec) Build(row Row) (text string, hasContent bool) {
	var lines []string

	if s.IDColumn != "" {
		if v, ok := row.Get(s.IDColumn); ok {
			if v = strings.TrimSpace(v); v != "" {
				lines = append(lines, s.IDColumn+": "+v)
			}
		}
	}

	add := func(column, value string) {
		if value = strings.TrimSpace(value); value != "" {
			lines = append(lines, column+": "+value)
			hasContent = true
		}
	}

	if len(s.ContentColumns) > 0 {
		for _, col := range s.ContentColumns {
			if col == s.IDColumn {
				continue
			}
			if v, ok := row.Get(col); ok {
				add(col, v)
			}
		}
	} else {
		for _, c := range row {
			if c.Column == s.IDColumn || slices.Contains(s.SkipColumns, c.Column) {
				continue
			}
			add(c.Column, c.Value)
		}
	}

	return strings.Join(lines, "\n"), hasContent
}
