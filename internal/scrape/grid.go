// Package scrape retrieves stat pages and extracts their tables,
// including tables the source hides inside HTML comments.
package scrape

import (
	"regexp"
	"strings"
	"time"
)

// Page is one retrieved document. It lives only for the handoff from
// fetch to extraction.
type Page struct {
	URL         string
	Body        string
	RetrievedAt time.Time
}

// TableGrid is one extracted table: a header row, data rows squared to
// the header's width, and the glossary of column descriptions found in
// the header tooltips.
type TableGrid struct {
	// ID is the source table's id attribute, empty when absent.
	ID       string
	Header   []string
	Rows     [][]string
	Glossary map[string]string
}

func (g TableGrid) Empty() bool {
	return len(g.Rows) == 0
}

var innerWhitespace = regexp.MustCompile(`\s+`)

// cleanCell normalizes cell text: collapsed whitespace and trailing
// footnote markers removed. Sources mark playoff teams with * and +.
func cleanCell(text string) string {
	text = innerWhitespace.ReplaceAllString(strings.TrimSpace(text), " ")
	return strings.TrimRight(text, "*+")
}

// squareRows pads short rows with empty cells and truncates long rows
// so every row matches the header width.
func squareRows(width int, rows [][]string) [][]string {
	out := make([][]string, 0, len(rows))
	for _, row := range rows {
		switch {
		case len(row) > width:
			row = row[:width]
		case len(row) < width:
			padded := make([]string, width)
			copy(padded, row)
			row = padded
		}
		out = append(out, row)
	}
	return out
}
