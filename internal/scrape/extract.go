package scrape

import (
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// tableSource yields candidate table selections from a parsed page.
// Two sources are composed: tables present directly in the DOM and
// tables embedded inside comment nodes, which reference sites use to
// defeat naive scrapers. New concealment patterns slot in as further
// sources without touching the mapper.
type tableSource interface {
	tables(doc *goquery.Document) []*goquery.Selection
}

type domSource struct{}

func (domSource) tables(doc *goquery.Document) []*goquery.Selection {
	var out []*goquery.Selection
	doc.Find("table").Each(func(_ int, sel *goquery.Selection) {
		out = append(out, sel)
	})
	return out
}

type commentSource struct{}

func (commentSource) tables(doc *goquery.Document) []*goquery.Selection {
	var out []*goquery.Selection
	for _, root := range doc.Nodes {
		walkComments(root, func(text string) {
			if !strings.Contains(text, "<table") {
				return
			}
			inner, err := goquery.NewDocumentFromReader(strings.NewReader(text))
			if err != nil {
				return
			}
			inner.Find("table").Each(func(_ int, sel *goquery.Selection) {
				out = append(out, sel)
			})
		})
	}
	return out
}

func walkComments(n *html.Node, fn func(text string)) {
	if n.Type == html.CommentNode {
		fn(n.Data)
		return
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		walkComments(c, fn)
	}
}

// Extractor turns a retrieved page into table grids. Malformed markup
// and pages without tables yield an empty result, not an error, since
// absence of data is an expected outcome.
type Extractor struct {
	sources []tableSource
}

func NewExtractor() *Extractor {
	return &Extractor{sources: []tableSource{domSource{}, commentSource{}}}
}

func (e *Extractor) Extract(page Page) []TableGrid {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(page.Body))
	if err != nil {
		return nil
	}

	var grids []TableGrid
	for _, src := range e.sources {
		for _, sel := range src.tables(doc) {
			grid := gridFromTable(sel)
			if grid.Empty() {
				continue
			}
			grids = append(grids, grid)
		}
	}
	return grids
}

// ExtractByID returns the single table with the given id attribute,
// searching both the DOM and comment-embedded markup.
func (e *Extractor) ExtractByID(page Page, tableID string) (TableGrid, bool) {
	for _, grid := range e.Extract(page) {
		if grid.ID == tableID {
			return grid, true
		}
	}
	return TableGrid{}, false
}

func gridFromTable(table *goquery.Selection) TableGrid {
	grid := TableGrid{Glossary: map[string]string{}}
	grid.ID, _ = table.Attr("id")

	headerRows := table.Find("thead tr")
	if headerRows.Length() >= 2 {
		grid.Header = prefixedHeader(headerRows, grid.ID, grid.Glossary)
	} else {
		headerRows.First().Find("th, td").Each(func(_ int, cell *goquery.Selection) {
			label := cleanCell(cell.Text())
			grid.Header = append(grid.Header, label)
			if tip := tooltip(cell); tip != "" && label != "" {
				grid.Glossary[label] = tip
			}
		})
	}

	var abbrevs []string
	haveAbbrev := false
	table.Find("tbody tr").Each(func(_ int, tr *goquery.Selection) {
		if tr.HasClass("thead") {
			return
		}
		var row []string
		empty := true
		tr.Find("th, td").Each(func(_ int, cell *goquery.Selection) {
			text := cleanCell(cell.Text())
			if text != "" {
				empty = false
			}
			row = append(row, text)
		})
		if len(row) == 0 || empty {
			return
		}
		abbrev := teamAbbrevFromRow(tr)
		if abbrev != "" {
			haveAbbrev = true
		}
		abbrevs = append(abbrevs, abbrev)
		grid.Rows = append(grid.Rows, row)
	})

	if len(grid.Header) == 0 && len(grid.Rows) > 0 {
		// Headerless tables promote their first row.
		grid.Header = grid.Rows[0]
		grid.Rows = grid.Rows[1:]
		abbrevs = abbrevs[1:]
	}
	grid.Rows = squareRows(len(grid.Header), grid.Rows)

	// Team cells link to /teams/<code>/; the code is the only reliable
	// abbreviation on standings pages, which spell names out in text.
	if haveAbbrev && !headerHas(grid.Header, "Abbrev") {
		grid.Header = append(grid.Header, "Abbrev")
		for i := range grid.Rows {
			grid.Rows[i] = append(grid.Rows[i], abbrevs[i])
		}
	}

	return grid
}

func headerHas(header []string, label string) bool {
	for _, h := range header {
		if strings.EqualFold(h, label) {
			return true
		}
	}
	return false
}

// teamAbbrevFromRow pulls the team code out of the first team link in
// a row, e.g. "/teams/kan/2023.htm" yields "kan".
func teamAbbrevFromRow(tr *goquery.Selection) string {
	abbrev := ""
	tr.Find("a").EachWithBreak(func(_ int, a *goquery.Selection) bool {
		href, ok := a.Attr("href")
		if !ok {
			return true
		}
		code := teamAbbrevFromURI(href)
		if code == "" {
			return true
		}
		abbrev = code
		return false
	})
	return abbrev
}

func teamAbbrevFromURI(href string) string {
	_, rest, ok := strings.Cut(href, "/teams/")
	if !ok {
		return ""
	}
	code, _, _ := strings.Cut(rest, "/")
	code = strings.ToLower(strings.TrimSpace(code))
	for _, r := range code {
		if (r < 'a' || r > 'z') && (r < '0' || r > '9') {
			return ""
		}
	}
	if code == "" {
		return ""
	}
	return code
}

// prefixedHeader flattens a two-level header: the top row's group
// labels, expanded by colspan, prefix the bottom row's column labels.
func prefixedHeader(headerRows *goquery.Selection, tableID string, glossary map[string]string) []string {
	var groups []string
	headerRows.First().Find("th, td").Each(func(_ int, cell *goquery.Selection) {
		label := strings.ToLower(cleanCell(cell.Text()))
		span := 1
		if raw, ok := cell.Attr("colspan"); ok {
			if n, err := strconv.Atoi(raw); err == nil && n > 0 {
				span = n
			}
		}
		for i := 0; i < span; i++ {
			groups = append(groups, label)
		}
	})

	var header []string
	locationAssigned := false
	headerRows.Eq(1).Find("th, td").Each(func(i int, cell *goquery.Selection) {
		label := cleanCell(cell.Text())
		tip := tooltip(cell)

		group := ""
		if i < len(groups) {
			group = groups[i]
		}

		var name string
		switch {
		case label != "" && group != "":
			name = group + "_" + strings.ToLower(label)
		case label != "":
			name = label
		case group == "" && !locationAssigned && strings.Contains(tableID, "game"):
			// The game log location column is the one ungrouped
			// column with no header text; an empty cell means home,
			// "@" means away.
			name = "Location"
			locationAssigned = true
			if tip == "" {
				tip = "Game location: empty indicates home, @ indicates away"
			}
		default:
			name = "Col_" + strconv.Itoa(i)
		}

		header = append(header, name)
		if tip != "" {
			glossary[name] = tip
		}
	})

	return header
}

func tooltip(cell *goquery.Selection) string {
	for _, attr := range []string{"title", "data-tip", "aria-label"} {
		if v, ok := cell.Attr(attr); ok && strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	return ""
}
