// Package stattable derives the storage schema for a stat table from
// its field catalog and defines the persistence contracts around it.
package stattable

import (
	"fmt"
	"strings"

	"github.com/statline/statline/internal/domain/fieldspec"
)

// Column is one derived table column.
type Column struct {
	Name    string
	SQLType string
	NotNull bool
	// Check holds a CHECK expression for constrained columns, empty
	// otherwise.
	Check string
}

// Index is one derived secondary index.
type Index struct {
	Name    string
	Columns []string
}

// Descriptor is the storage shape of one (sport, data kind) table. It
// is regenerated from the catalog, never maintained by hand.
type Descriptor struct {
	Schema  string
	Name    string
	Columns []Column
	// PartitionColumn is the range-partition key, always the season.
	PartitionColumn string
	// ConflictColumns is the unique upsert target.
	ConflictColumns []string
	Indexes         []Index
}

// QualifiedName returns schema.table.
func (d Descriptor) QualifiedName() string {
	return d.Schema + "." + d.Name
}

// PartitionName returns the physical partition table for one season.
func (d Descriptor) PartitionName(season int) string {
	return fmt.Sprintf("%s_%d", d.Name, season)
}

// DataColumns lists the columns the load pipeline writes, in descriptor
// order. Timestamp bookkeeping columns are managed by the store.
func (d Descriptor) DataColumns() []string {
	out := make([]string, 0, len(d.Columns))
	for _, c := range d.Columns {
		if c.Name == "created_at" || c.Name == "updated_at" {
			continue
		}
		out = append(out, c.Name)
	}
	return out
}

// Kind to storage type mapping. Enumerations become constrained
// varchars; the check expression is derived next to the type so the
// two can never drift apart.
func columnType(f fieldspec.FieldSpec) (sqlType, check string) {
	switch f.Kind {
	case fieldspec.KindInteger:
		sqlType = "INTEGER"
	case fieldspec.KindDecimal:
		sqlType = "NUMERIC(10,3)"
	case fieldspec.KindBoolean:
		sqlType = "BOOLEAN"
	case fieldspec.KindEnum:
		sqlType = "VARCHAR(16)"
		quoted := make([]string, len(f.Enum))
		for i, v := range f.Enum {
			quoted[i] = "'" + strings.ReplaceAll(v, "'", "''") + "'"
		}
		check = fmt.Sprintf("%s IN (%s)", f.Name, strings.Join(quoted, ", "))
	default:
		sqlType = "TEXT"
	}

	if f.Kind == fieldspec.KindInteger || f.Kind == fieldspec.KindDecimal {
		if rangeCheck := rangeExpr(f); rangeCheck != "" {
			check = rangeCheck
		}
	}

	return sqlType, check
}

func rangeExpr(f fieldspec.FieldSpec) string {
	switch {
	case f.MinValue != nil && f.MaxValue != nil:
		return fmt.Sprintf("%s BETWEEN %s AND %s", f.Name, trimFloat(*f.MinValue), trimFloat(*f.MaxValue))
	case f.MinValue != nil:
		return fmt.Sprintf("%s >= %s", f.Name, trimFloat(*f.MinValue))
	case f.MaxValue != nil:
		return fmt.Sprintf("%s <= %s", f.Name, trimFloat(*f.MaxValue))
	}
	return ""
}

func trimFloat(v float64) string {
	s := fmt.Sprintf("%g", v)
	return s
}

// Derive builds the Descriptor for a catalog. The identity key and
// season always lead the column list; created_at and updated_at close
// it. The index set always carries (team, season) and the game date
// when the catalog declares those fields, plus every field the catalog
// marks as indexed.
func Derive(catalog *fieldspec.Catalog) Descriptor {
	d := Descriptor{
		Schema:          catalog.Sport,
		Name:            catalog.DataKind,
		PartitionColumn: "season",
		ConflictColumns: []string{"boxscore_id", "season"},
	}

	d.Columns = append(d.Columns,
		Column{Name: "boxscore_id", SQLType: "VARCHAR(20)", NotNull: true},
		Column{Name: "season", SQLType: "INTEGER", NotNull: true},
	)
	for _, f := range catalog.Fields {
		sqlType, check := columnType(f)
		d.Columns = append(d.Columns, Column{
			Name:    f.Name,
			SQLType: sqlType,
			NotNull: f.Required,
			Check:   check,
		})
	}
	d.Columns = append(d.Columns,
		Column{Name: "created_at", SQLType: "TIMESTAMPTZ", NotNull: true},
		Column{Name: "updated_at", SQLType: "TIMESTAMPTZ", NotNull: true},
	)

	if _, ok := catalog.Field("team"); ok {
		d.Indexes = append(d.Indexes, Index{
			Name:    fmt.Sprintf("idx_%s_%s_team_season", d.Schema, d.Name),
			Columns: []string{"team", "season"},
		})
	}
	if _, ok := catalog.Field("game_date"); ok {
		d.Indexes = append(d.Indexes, Index{
			Name:    fmt.Sprintf("idx_%s_%s_game_date", d.Schema, d.Name),
			Columns: []string{"game_date"},
		})
	}
	for _, f := range catalog.IndexedFields() {
		if f.Name == "team" || f.Name == "game_date" {
			continue
		}
		d.Indexes = append(d.Indexes, Index{
			Name:    fmt.Sprintf("idx_%s_%s_%s", d.Schema, d.Name, f.Name),
			Columns: []string{f.Name},
		})
	}

	return d
}
