package rules

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// KeywordColumn is the master sheet column holding the reference keyword.
const KeywordColumn = "チェック用キーワード"

const guidelineColumnMarker = "ガイドライン等"

// referenceSections are rendered in this order under "## <column>" headings.
var referenceSections = []string{"対応", "表示例", "判断", "OKの場合", "NGの場合", "備考"}

// ReferenceFileName maps a keyword to its reference document name. Slashes
// become full-width slashes so the keyword stays a single path element.
func ReferenceFileName(keyword, ext string) string {
	return strings.ReplaceAll(keyword, "/", "／") + ext
}

// GenerateReferences reads a tab-separated master sheet and writes one
// reference document per keyword row into outDir. It returns the number of
// documents written. Rows without a keyword are skipped.
//
// A header whose last column name contains a line break spills into a second
// row with an empty first cell; that row is merged back into the header.
func GenerateReferences(r io.Reader, outDir, ext string) (int, error) {
	if ext == "" {
		ext = DefaultLayout.Extension
	}

	reader := csv.NewReader(r)
	reader.Comma = '\t'
	reader.LazyQuotes = true
	reader.FieldsPerRecord = -1

	rows, err := reader.ReadAll()
	if err != nil {
		return 0, fmt.Errorf("read master sheet: %w", err)
	}
	if len(rows) == 0 {
		return 0, errors.New("master sheet is empty")
	}

	header, start := masterHeader(rows)
	index := make(map[string]int, len(header))
	for i, name := range header {
		if _, ok := index[name]; !ok {
			index[name] = i
		}
	}
	kwIdx, ok := index[KeywordColumn]
	if !ok {
		return 0, fmt.Errorf("master sheet has no %q column", KeywordColumn)
	}

	guideline := ""
	for _, name := range header {
		if strings.Contains(name, guidelineColumnMarker) {
			guideline = name
			break
		}
	}

	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return 0, fmt.Errorf("create output directory: %w", err)
	}

	written := 0
	for _, row := range rows[start:] {
		row := row
		if blankRow(row) || kwIdx >= len(row) {
			continue
		}
		keyword := strings.TrimSpace(row[kwIdx])
		if keyword == "" {
			continue
		}

		cell := func(col string) string {
			i, ok := index[col]
			if !ok || i >= len(row) {
				return ""
			}
			return strings.TrimSpace(row[i])
		}

		doc := renderReference(keyword, cell, guideline)
		path := filepath.Join(outDir, ReferenceFileName(keyword, ext))
		if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
			return written, fmt.Errorf("write reference %q: %w", keyword, err)
		}
		written++
	}

	return written, nil
}

func masterHeader(rows [][]string) ([]string, int) {
	header := append([]string(nil), rows[0]...)
	if len(rows) < 2 || len(rows[0]) != len(rows[1]) || len(header) == 0 {
		return header, 1
	}
	last := len(header) - 1
	if rows[1][0] == "" && rows[1][last] != "" {
		header[last] = strings.Trim(header[last]+"\n"+rows[1][last], `"`)
		return header, 2
	}
	return header, 1
}

func blankRow(row []string) bool {
	for _, c := range row {
		if c != "" {
			return false
		}
	}
	return true
}

func renderReference(keyword string, cell func(string) string, guideline string) string {
	lines := []string{
		"# " + KeywordColumn + ": " + keyword,
		"",
		"- 番号: " + cell("番号"),
		"- 分類: " + cell("分類"),
		"- 読み: " + cell("読み"),
		"",
	}
	for _, section := range referenceSections {
		lines = append(lines, "## "+section, cell(section), "")
	}
	if guideline != "" {
		lines = append(lines, "## ガイドライン等の出典", cell(guideline), "")
	}
	return strings.Join(lines, "\n")
}
