package usecase

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/sourcegraph/conc/iter"

	"github.com/statline/statline/internal/domain/fieldspec"
	"github.com/statline/statline/internal/domain/record"
	"github.com/statline/statline/internal/scrape"
)

// IdentityFunc derives the boxscore identity for one mapped row from
// its typed values.
type IdentityFunc func(values map[string]any) (string, error)

// MapResult carries the rows that mapped cleanly and the ones that did
// not. Rows fail individually; callers decide whether partial success
// is acceptable.
type MapResult struct {
	Records  []record.Record
	Failures []record.MappingError
}

// Mapper turns extracted grids into validated records using a field
// catalog. Mapping is pure, so rows are processed in parallel.
type Mapper struct{}

func NewMapper() *Mapper {
	return &Mapper{}
}

type rowOutcome struct {
	rec  record.Record
	err  *record.MappingError
	skip bool
}

// MapGrid maps every data row. Defaults seed values the source table
// carries implicitly, such as the team a game log page belongs to; row
// cells override them.
func (m *Mapper) MapGrid(grid scrape.TableGrid, catalog *fieldspec.Catalog, season int, defaults map[string]any, identity IdentityFunc) MapResult {
	type indexedRow struct {
		index int
		cells []string
	}
	rows := make([]indexedRow, len(grid.Rows))
	for i, cells := range grid.Rows {
		rows[i] = indexedRow{index: i, cells: cells}
	}

	outcomes := iter.Map(rows, func(row *indexedRow) rowOutcome {
		return m.mapRow(grid.Header, row.cells, row.index, catalog, season, defaults, identity)
	})

	result := MapResult{}
	for _, out := range outcomes {
		switch {
		case out.skip:
		case out.err != nil:
			result.Failures = append(result.Failures, *out.err)
		default:
			result.Records = append(result.Records, out.rec)
		}
	}
	return result
}

func (m *Mapper) mapRow(header []string, cells []string, rowIndex int, catalog *fieldspec.Catalog, season int, defaults map[string]any, identity IdentityFunc) rowOutcome {
	values := make(map[string]any, len(header)+len(defaults))
	for name, value := range defaults {
		values[name] = value
	}
	matched := 0
	populated := 0

	for i, label := range header {
		field, ok := catalog.FieldByLabel(label)
		if !ok {
			continue
		}
		matched++

		raw := ""
		if i < len(cells) {
			raw = cells[i]
		}
		cellEmpty := raw == ""
		if cellEmpty && field.Name != "home_away" {
			continue
		}
		raw = applyTransform(field, raw)

		value, err := coerce(field, raw)
		if err != nil {
			return rowOutcome{err: &record.MappingError{
				Row:      rowIndex,
				Field:    field.Name,
				RawValue: raw,
				Reason:   err.Error(),
			}}
		}
		values[field.Name] = value
		// An empty location cell legitimately means a home game, but
		// it never counts as evidence the row holds data.
		if !cellEmpty {
			populated++
		}
	}

	// Rows matching no catalog columns, and rows whose matched cells
	// are all empty, are spacers or repeated headers, not data.
	if matched == 0 || populated == 0 {
		return rowOutcome{skip: true}
	}

	deriveComputed(values)

	for _, field := range catalog.RequiredFields() {
		if _, ok := values[field.Name]; !ok {
			return rowOutcome{err: &record.MappingError{
				Row:    rowIndex,
				Field:  field.Name,
				Reason: "required field missing from source row",
			}}
		}
	}

	boxscoreID, err := identity(values)
	if err != nil {
		return rowOutcome{err: &record.MappingError{
			Row:    rowIndex,
			Field:  "boxscore_id",
			Reason: err.Error(),
		}}
	}

	rec := record.Record{
		Sport:      catalog.Sport,
		DataKind:   catalog.DataKind,
		Season:     season,
		BoxscoreID: boxscoreID,
		Values:     values,
	}
	if err := rec.Validate(catalog); err != nil {
		return rowOutcome{err: &record.MappingError{
			Row:    rowIndex,
			Field:  "record",
			Reason: err.Error(),
		}}
	}

	return rowOutcome{rec: rec}
}

// applyTransform rewrites source notations into enum values before
// coercion. Game location is rendered as an empty cell for home games
// and "@" for away games.
func applyTransform(field fieldspec.FieldSpec, raw string) string {
	if field.Name == "home_away" {
		switch raw {
		case "", "@":
			if raw == "@" {
				return "away"
			}
			return "home"
		}
	}
	return raw
}

func coerce(field fieldspec.FieldSpec, raw string) (any, error) {
	switch field.Kind {
	case fieldspec.KindInteger:
		n, err := strconv.ParseInt(strings.ReplaceAll(raw, ",", ""), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("not an integer")
		}
		return n, nil
	case fieldspec.KindDecimal:
		f, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return nil, fmt.Errorf("not a decimal")
		}
		return f, nil
	case fieldspec.KindBoolean:
		switch strings.ToLower(raw) {
		case "0", "no", "false":
			return false, nil
		default:
			// Flag columns carry a marker when set, e.g. "OT".
			return true, nil
		}
	case fieldspec.KindEnum:
		if !field.AllowsEnumValue(raw) {
			return nil, fmt.Errorf("value not in %v", field.Enum)
		}
		return raw, nil
	default:
		return raw, nil
	}
}

// deriveComputed recomputes consistency fields instead of trusting the
// page. Sources occasionally omit or mis-render computed columns.
func deriveComputed(values map[string]any) {
	scored, okScored := asInt(values["points_scored"])
	allowed, okAllowed := asInt(values["points_allowed"])
	if okScored && okAllowed {
		values["points_differential"] = scored - allowed
		return
	}

	pf, okPF := asInt(values["points_for"])
	pa, okPA := asInt(values["points_allowed"])
	if okPF && okPA {
		values["points_differential"] = pf - pa
	}
}

func asInt(v any) (int64, bool) {
	n, ok := v.(int64)
	return n, ok
}

// GameLogIdentity derives the boxscore id for one game log row of the
// given team: the game date, sequence zero, and whichever side hosted.
func GameLogIdentity(teamAbbrev string) IdentityFunc {
	return func(values map[string]any) (string, error) {
		rawDate, ok := values["game_date"].(string)
		if !ok {
			return "", fmt.Errorf("game date missing")
		}
		gameDate, err := parseGameDate(rawDate)
		if err != nil {
			return "", err
		}

		home := teamAbbrev
		if loc, ok := values["home_away"].(string); ok && loc == "away" {
			opp, ok := values["opponent"].(string)
			if !ok {
				return "", fmt.Errorf("opponent missing for away game")
			}
			home = opp
		}

		return record.ComposeBoxscoreID(gameDate, 0, home)
	}
}

// SeasonIdentity keys season-scoped rows such as standings: one row
// per team per season, anchored to the season's reference date.
func SeasonIdentity(season int) IdentityFunc {
	return func(values map[string]any) (string, error) {
		abbrev, ok := values["abbrev"].(string)
		if !ok {
			if abbrev, ok = values["team"].(string); !ok {
				return "", fmt.Errorf("team abbreviation missing")
			}
		}
		anchor := time.Date(season, time.September, 1, 0, 0, 0, 0, time.UTC)
		return record.ComposeBoxscoreID(anchor, 0, abbrev)
	}
}

func parseGameDate(raw string) (time.Time, error) {
	for _, layout := range []string{"2006-01-02", "January 2, 2006", "January 2 2006", "2006/01/02"} {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized game date %q", raw)
}
