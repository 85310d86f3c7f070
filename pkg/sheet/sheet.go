package sheet

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"mercator-hq/copycheck/pkg/batch"
)

// ErrEmpty is returned for a sheet without a header row.
var ErrEmpty = errors.New("sheet is empty")

// SheetNotFoundError is returned when the requested sheet does not exist.
type SheetNotFoundError struct {
	Name      string
	Available []string
}

// Error implements the error interface.
func (e *SheetNotFoundError) Error() string {
	return fmt.Sprintf("sheet %q not found (available: %s)", e.Name, strings.Join(e.Available, ", "))
}

// ColumnError is returned when a required column is missing from the header.
type ColumnError struct {
	Column string
	Header []string
}

// Error implements the error interface.
func (e *ColumnError) Error() string {
	return fmt.Sprintf("required column %q not found in header", e.Column)
}

// Table is a header plus data rows. Every row has one cell per header column.
type Table struct {
	Sheet  string
	Header []string
	Rows   []batch.Row
}

// ReadOptions selects what Read loads.
type ReadOptions struct {
	// Sheet is the sheet to read. Empty selects the first sheet.
	Sheet string

	// RequiredColumns must be present in the header.
	RequiredColumns []string
}

// ReadFile reads a workbook from path.
func ReadFile(path string, opts ReadOptions) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Read(f, opts)
}

// Read parses a workbook. The first row is the header; empty header cells
// become "Unnamed: <i>" and repeated names get a ".<n>" suffix. Trailing
// blank rows are dropped; blank rows between data rows are kept.
func Read(r io.Reader, opts ReadOptions) (*Table, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	name := opts.Sheet
	if name == "" {
		if len(sheets) == 0 {
			return nil, ErrEmpty
		}
		name = sheets[0]
	} else if idx, _ := f.GetSheetIndex(name); idx < 0 {
		return nil, &SheetNotFoundError{Name: name, Available: sheets}
	}

	raw, err := f.GetRows(name)
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", name, err)
	}
	for len(raw) > 0 && blank(raw[len(raw)-1]) {
		raw = raw[:len(raw)-1]
	}
	if len(raw) == 0 {
		return nil, ErrEmpty
	}

	header := normalizeHeader(raw[0])
	for _, col := range opts.RequiredColumns {
		if !contains(header, col) {
			return nil, &ColumnError{Column: col, Header: header}
		}
	}

	table := &Table{Sheet: name, Header: header, Rows: make([]batch.Row, 0, len(raw)-1)}
	for _, values := range raw[1:] {
		row := make(batch.Row, len(header))
		for i, col := range header {
			row[i].Column = col
			if i < len(values) {
				row[i].Value = values[i]
			}
		}
		table.Rows = append(table.Rows, row)
	}
	return table, nil
}

// WriteOptions names the output sheet and appended columns.
type WriteOptions struct {
	Sheet            string
	ResultColumn     string
	ConclusionColumn string
}

// Write writes table with a result and a conclusion column appended as a new
// single-sheet workbook. outcomes must be index-aligned with table.Rows.
func Write(w io.Writer, table *Table, outcomes []batch.RowOutcome, opts WriteOptions) error {
	if len(outcomes) != len(table.Rows) {
		return fmt.Errorf("have %d outcomes for %d rows", len(outcomes), len(table.Rows))
	}

	f := excelize.NewFile()
	defer f.Close()

	name := opts.Sheet
	if name == "" {
		name = "Sheet1"
	}
	if name != "Sheet1" {
		if err := f.SetSheetName("Sheet1", name); err != nil {
			return fmt.Errorf("name sheet: %w", err)
		}
	}

	sw, err := f.NewStreamWriter(name)
	if err != nil {
		return fmt.Errorf("create stream writer: %w", err)
	}

	// existing result columns are overwritten in place, like a re-check
	resultIdx := indexOf(table.Header, opts.ResultColumn)
	conclusionIdx := indexOf(table.Header, opts.ConclusionColumn)
	width := len(table.Header)
	if resultIdx < 0 {
		resultIdx = width
		width++
	}
	if conclusionIdx < 0 {
		conclusionIdx = width
		width++
	}

	header := make([]any, width)
	for i, col := range table.Header {
		header[i] = col
	}
	header[resultIdx] = opts.ResultColumn
	header[conclusionIdx] = opts.ConclusionColumn
	if err := sw.SetRow("A1", header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	for i, row := range table.Rows {
		values := make([]any, width)
		for j, c := range row {
			if j < len(table.Header) {
				values[j] = c.Value
			}
		}
		values[resultIdx] = outcomes[i].Result
		values[conclusionIdx] = string(outcomes[i].Conclusion)

		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := sw.SetRow(cell, values); err != nil {
			return fmt.Errorf("write row %d: %w", i+1, err)
		}
	}
	if err := sw.Flush(); err != nil {
		return fmt.Errorf("flush sheet: %w", err)
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

func normalizeHeader(cells []string) []string {
	header := make([]string, len(cells))
	seen := make(map[string]int, len(cells))
	for i, c := range cells {
		name := strings.TrimSpace(c)
		if name == "" {
			name = "Unnamed: " + strconv.Itoa(i)
		}
		if n, ok := seen[name]; ok {
			seen[name] = n + 1
			name = name + "." + strconv.Itoa(n+1)
		} else {
			seen[name] = 0
		}
		header[i] = name
	}
	return header
}

func blank(values []string) bool {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

func indexOf(list []string, s string) int {
	for i, v := range list {
		if v == s {
			return i
		}
	}
	return -1
}
