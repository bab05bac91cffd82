package postgres

import (
	"reflect"
	"strings"
	"testing"

	"github.com/statline/statline/internal/domain/fieldspec"
	"github.com/statline/statline/internal/domain/stattable"
)

func floatPtr(v float64) *float64 { return &v }

func testDescriptor(t *testing.T) stattable.Descriptor {
	t.Helper()

	catalog, err := fieldspec.NewCatalog("nfl", "standings", []fieldspec.FieldSpec{
		{Name: "team", Kind: fieldspec.KindText, Required: true},
		{Name: "conference", Kind: fieldspec.KindEnum, Enum: []string{"AFC", "NFC"}, Required: true},
		{Name: "wins", Kind: fieldspec.KindInteger, MinValue: floatPtr(0), MaxValue: floatPtr(17)},
	})
	if err != nil {
		t.Fatalf("build catalog: %v", err)
	}
	return stattable.Derive(catalog)
}

func TestBuildCreateTable(t *testing.T) {
	got := buildCreateTable(testDescriptor(t))

	want := `CREATE TABLE IF NOT EXISTS nfl.standings (
    boxscore_id VARCHAR(20) NOT NULL,
    season INTEGER NOT NULL,
    team TEXT NOT NULL,
    conference VARCHAR(16) NOT NULL,
    wins INTEGER,
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    CONSTRAINT chk_standings_conference CHECK (conference IN ('AFC', 'NFC')),
    CONSTRAINT chk_standings_wins CHECK (wins BETWEEN 0 AND 17),
    CONSTRAINT uq_standings_identity UNIQUE (boxscore_id, season)
) PARTITION BY RANGE (season)`
	if got != want {
		t.Fatalf("unexpected ddl:\nwant: %s\ngot:  %s", want, got)
	}
}

func TestBuildCreatePartition(t *testing.T) {
	got := buildCreatePartition(testDescriptor(t), 2023)

	want := "CREATE TABLE IF NOT EXISTS nfl.standings_2023 PARTITION OF nfl.standings FOR VALUES FROM (2023) TO (2024)"
	if got != want {
		t.Fatalf("unexpected ddl:\nwant: %s\ngot:  %s", want, got)
	}
}

func TestBuildCreateIndexes(t *testing.T) {
	got := buildCreateIndexes(testDescriptor(t))

	want := []string{
		"CREATE INDEX IF NOT EXISTS idx_nfl_standings_team_season ON nfl.standings (team, season)",
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("unexpected indexes:\nwant: %v\ngot:  %v", want, got)
	}
}

func TestBuildModifiedTrigger(t *testing.T) {
	got := buildModifiedTrigger(testDescriptor(t))

	want := "CREATE OR REPLACE TRIGGER update_standings_modtime BEFORE UPDATE ON nfl.standings FOR EACH ROW EXECUTE FUNCTION nfl.update_modified_column()"
	if got != want {
		t.Fatalf("unexpected trigger ddl:\nwant: %s\ngot:  %s", want, got)
	}
}

func TestDDLIsIdempotentByConstruction(t *testing.T) {
	d := testDescriptor(t)

	statements := []string{buildCreateSchema(d), buildCreateTable(d), buildCreatePartition(d, 2023)}
	statements = append(statements, buildCreateIndexes(d)...)
	for _, stmt := range statements {
		if !strings.Contains(stmt, "IF NOT EXISTS") && !strings.Contains(stmt, "OR REPLACE") {
			t.Fatalf("statement lacks conditional create: %s", stmt)
		}
	}
}
