package stattable

import (
	"reflect"
	"testing"

	"github.com/statline/statline/internal/domain/fieldspec"
)

func floatPtr(v float64) *float64 { return &v }

func TestDerive(t *testing.T) {
	catalog, err := fieldspec.NewCatalog("nfl", "game_log", []fieldspec.FieldSpec{
		{Name: "team", Kind: fieldspec.KindText, Required: true},
		{Name: "game_date", Kind: fieldspec.KindText, Required: true},
		{Name: "conference", Kind: fieldspec.KindEnum, Enum: []string{"AFC", "NFC"}, Indexed: true},
		{Name: "wins", Kind: fieldspec.KindInteger, MinValue: floatPtr(0), MaxValue: floatPtr(17)},
		{Name: "srs", Kind: fieldspec.KindDecimal},
		{Name: "playoffs", Kind: fieldspec.KindBoolean},
	})
	if err != nil {
		t.Fatalf("build catalog: %v", err)
	}

	d := Derive(catalog)

	if d.QualifiedName() != "nfl.game_log" {
		t.Fatalf("unexpected qualified name: %s", d.QualifiedName())
	}
	if d.PartitionColumn != "season" {
		t.Fatalf("unexpected partition column: %s", d.PartitionColumn)
	}
	if !reflect.DeepEqual(d.ConflictColumns, []string{"boxscore_id", "season"}) {
		t.Fatalf("unexpected conflict columns: %v", d.ConflictColumns)
	}
	if d.PartitionName(2023) != "game_log_2023" {
		t.Fatalf("unexpected partition name: %s", d.PartitionName(2023))
	}

	wantColumns := []Column{
		{Name: "boxscore_id", SQLType: "VARCHAR(20)", NotNull: true},
		{Name: "season", SQLType: "INTEGER", NotNull: true},
		{Name: "team", SQLType: "TEXT", NotNull: true},
		{Name: "game_date", SQLType: "TEXT", NotNull: true},
		{Name: "conference", SQLType: "VARCHAR(16)", Check: "conference IN ('AFC', 'NFC')"},
		{Name: "wins", SQLType: "INTEGER", Check: "wins BETWEEN 0 AND 17"},
		{Name: "srs", SQLType: "NUMERIC(10,3)"},
		{Name: "playoffs", SQLType: "BOOLEAN"},
		{Name: "created_at", SQLType: "TIMESTAMPTZ", NotNull: true},
		{Name: "updated_at", SQLType: "TIMESTAMPTZ", NotNull: true},
	}
	if !reflect.DeepEqual(d.Columns, wantColumns) {
		t.Fatalf("unexpected columns:\nwant: %+v\ngot:  %+v", wantColumns, d.Columns)
	}

	wantIndexes := []Index{
		{Name: "idx_nfl_game_log_team_season", Columns: []string{"team", "season"}},
		{Name: "idx_nfl_game_log_game_date", Columns: []string{"game_date"}},
		{Name: "idx_nfl_game_log_conference", Columns: []string{"conference"}},
	}
	if !reflect.DeepEqual(d.Indexes, wantIndexes) {
		t.Fatalf("unexpected indexes:\nwant: %+v\ngot:  %+v", wantIndexes, d.Indexes)
	}

	wantData := []string{"boxscore_id", "season", "team", "game_date", "conference", "wins", "srs", "playoffs"}
	if !reflect.DeepEqual(d.DataColumns(), wantData) {
		t.Fatalf("unexpected data columns: %v", d.DataColumns())
	}
}

func TestDeriveIsDeterministic(t *testing.T) {
	catalog, err := fieldspec.NewCatalog("nfl", "standings", []fieldspec.FieldSpec{
		{Name: "team", Kind: fieldspec.KindText, Required: true},
		{Name: "wins", Kind: fieldspec.KindInteger},
	})
	if err != nil {
		t.Fatalf("build catalog: %v", err)
	}

	first := Derive(catalog)
	second := Derive(catalog)
	if !reflect.DeepEqual(first, second) {
		t.Fatal("expected identical descriptors from repeated derivation")
	}
}

func TestLoadReportMerge(t *testing.T) {
	report := LoadReport{Inserted: 2, Updated: 1}
	report.Merge(LoadReport{
		Inserted: 1,
		Failed:   1,
		Failures: []LoadFailure{{BoxscoreID: "202309070kan", Cause: "constraint"}},
	})

	if report.Inserted != 3 || report.Updated != 1 || report.Failed != 1 {
		t.Fatalf("unexpected totals: %+v", report)
	}
	if len(report.Failures) != 1 || report.Failures[0].BoxscoreID != "202309070kan" {
		t.Fatalf("unexpected failures: %+v", report.Failures)
	}
}
