// Package catalog carries the static per-sport field catalogs and URL
// templates. Catalogs are read-only after init; mapping and schema
// derivation both consume the same definitions.
package catalog

import (
	"fmt"
	"strings"

	"github.com/statline/statline/internal/domain/fieldspec"
)

const nflBaseURL = "https://www.pro-football-reference.com"

func floatPtr(v float64) *float64 { return &v }

// NFLGameLog describes one team-season game log row. Labels follow the
// source table headers; points differential is recomputed during
// mapping rather than read from the page.
var NFLGameLog = fieldspec.MustCatalog("nfl", "game_log", []fieldspec.FieldSpec{
	{Name: "team", Label: "Tm", Kind: fieldspec.KindText, Required: true},
	{Name: "week", Label: "Week", Kind: fieldspec.KindInteger, Required: true, MinValue: floatPtr(1), MaxValue: floatPtr(22)},
	{Name: "game_date", Label: "Date", Kind: fieldspec.KindText, Required: true},
	{Name: "home_away", Label: "Location", Kind: fieldspec.KindEnum, Enum: []string{"home", "away"}, Required: true},
	{Name: "opponent", Label: "Opp", Kind: fieldspec.KindText, Required: true},
	{Name: "result", Label: "Result", Kind: fieldspec.KindEnum, Enum: []string{"W", "L", "T"}, Required: true},
	{Name: "overtime", Label: "OT", Kind: fieldspec.KindBoolean},
	{Name: "points_scored", Label: "PF", Kind: fieldspec.KindInteger, Required: true, MinValue: floatPtr(0)},
	{Name: "points_allowed", Label: "PA", Kind: fieldspec.KindInteger, Required: true, MinValue: floatPtr(0)},
	{Name: "points_differential", Label: "PD", Kind: fieldspec.KindInteger},
	{Name: "pass_yards", Label: "PassY", Kind: fieldspec.KindInteger, MinValue: floatPtr(0)},
	{Name: "rush_yards", Label: "RushY", Kind: fieldspec.KindInteger, MinValue: floatPtr(0)},
	{Name: "total_yards", Label: "TotYd", Kind: fieldspec.KindInteger, MinValue: floatPtr(0)},
	{Name: "turnovers", Label: "TO", Kind: fieldspec.KindInteger, MinValue: floatPtr(0)},
})

// NFLStandings describes one season standings row. Win and loss counts
// are bounded by the 17 game regular season; ratings come straight
// from the source's SRS columns.
var NFLStandings = fieldspec.MustCatalog("nfl", "standings", []fieldspec.FieldSpec{
	{Name: "team", Label: "Tm", Kind: fieldspec.KindText, Required: true},
	{Name: "abbrev", Label: "Abbrev", Kind: fieldspec.KindText, Required: true, Indexed: true},
	{Name: "conference", Label: "Conference", Kind: fieldspec.KindEnum, Enum: []string{"AFC", "NFC"}, Required: true, Indexed: true},
	{Name: "wins", Label: "W", Kind: fieldspec.KindInteger, Required: true, MinValue: floatPtr(0), MaxValue: floatPtr(17), Indexed: true},
	{Name: "losses", Label: "L", Kind: fieldspec.KindInteger, Required: true, MinValue: floatPtr(0), MaxValue: floatPtr(17)},
	{Name: "win_loss_percentage", Label: "W-L%", Kind: fieldspec.KindDecimal, MinValue: floatPtr(0), MaxValue: floatPtr(1)},
	{Name: "points_for", Label: "PF", Kind: fieldspec.KindInteger, Required: true, MinValue: floatPtr(0)},
	{Name: "points_allowed", Label: "PA", Kind: fieldspec.KindInteger, Required: true, MinValue: floatPtr(0)},
	{Name: "points_differential", Label: "PD", Kind: fieldspec.KindInteger},
	{Name: "margin_of_victory", Label: "MoV", Kind: fieldspec.KindDecimal},
	{Name: "strength_of_schedule", Label: "SoS", Kind: fieldspec.KindDecimal},
	{Name: "simple_rating_system", Label: "SRS", Kind: fieldspec.KindDecimal},
	{Name: "offensive_srs", Label: "OSRS", Kind: fieldspec.KindDecimal},
	{Name: "defensive_srs", Label: "DSRS", Kind: fieldspec.KindDecimal},
})

// NFLScheduleURL returns the game log page for a team and season.
func NFLScheduleURL(team string, season int) string {
	return fmt.Sprintf("%s/teams/%s/%d/gamelog/", nflBaseURL, strings.ToLower(team), season)
}

// NFLTeamURL returns the team summary page for a season.
func NFLTeamURL(team string, season int) string {
	return fmt.Sprintf("%s/teams/%s/%d.htm", nflBaseURL, strings.ToLower(team), season)
}

// NFLSeasonPageURL returns the season standings page.
func NFLSeasonPageURL(season int) string {
	return fmt.Sprintf("%s/years/%d/", nflBaseURL, season)
}

// NFLBoxscoreURL returns the boxscore page for one game identity.
func NFLBoxscoreURL(boxscoreID string) string {
	return fmt.Sprintf("%s/boxscores/%s.htm", nflBaseURL, boxscoreID)
}

var registry = map[string]*fieldspec.Catalog{
	NFLGameLog.TableName():   NFLGameLog,
	NFLStandings.TableName(): NFLStandings,
}

// Lookup resolves a sport and data kind to its catalog.
func Lookup(sport, dataKind string) (*fieldspec.Catalog, error) {
	c, ok := registry[sport+"."+dataKind]
	if !ok {
		return nil, fmt.Errorf("unknown catalog: %s.%s", sport, dataKind)
	}
	return c, nil
}

// All returns every registered catalog.
func All() []*fieldspec.Catalog {
	out := make([]*fieldspec.Catalog, 0, len(registry))
	for _, c := range registry {
		out = append(out, c)
	}
	return out
}
