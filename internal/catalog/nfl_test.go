package catalog

import (
	"testing"

	"github.com/statline/statline/internal/domain/fieldspec"
)

func TestNFLURLs(t *testing.T) {
	if got := NFLScheduleURL("KAN", 2023); got != "https://www.pro-football-reference.com/teams/kan/2023/gamelog/" {
		t.Fatalf("unexpected schedule url: %s", got)
	}
	if got := NFLTeamURL("KAN", 2023); got != "https://www.pro-football-reference.com/teams/kan/2023.htm" {
		t.Fatalf("unexpected team url: %s", got)
	}
	if got := NFLSeasonPageURL(2023); got != "https://www.pro-football-reference.com/years/2023/" {
		t.Fatalf("unexpected season url: %s", got)
	}
	if got := NFLBoxscoreURL("202309070kan"); got != "https://www.pro-football-reference.com/boxscores/202309070kan.htm" {
		t.Fatalf("unexpected boxscore url: %s", got)
	}
}

func TestLookup(t *testing.T) {
	c, err := Lookup("nfl", "game_log")
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	if c != NFLGameLog {
		t.Fatal("expected game log catalog")
	}

	if _, err := Lookup("nfl", "salaries"); err == nil {
		t.Fatal("expected unknown catalog error")
	}
}

func TestNFLStandingsShape(t *testing.T) {
	f, ok := NFLStandings.FieldByLabel("Conference")
	if !ok {
		t.Fatal("expected conference field")
	}
	if f.Kind != fieldspec.KindEnum || !f.AllowsEnumValue("AFC") || !f.AllowsEnumValue("NFC") {
		t.Fatalf("unexpected conference spec: %+v", f)
	}
	if f.AllowsEnumValue("XFL") {
		t.Fatal("conference should reject values outside the set")
	}

	wins, ok := NFLStandings.Field("wins")
	if !ok || wins.MinValue == nil || wins.MaxValue == nil || *wins.MaxValue != 17 {
		t.Fatalf("unexpected wins spec: %+v", wins)
	}
}
