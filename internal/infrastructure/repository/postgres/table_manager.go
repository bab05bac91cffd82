// Package postgres realizes the storage contracts against a
// season-partitioned Postgres schema.
package postgres

import (
	"context"
	"fmt"
	"strings"

	crerr "github.com/cockroachdb/errors"
	"github.com/jmoiron/sqlx"

	"github.com/statline/statline/internal/domain/stattable"
	"github.com/statline/statline/internal/platform/logging"
)

// TableManager applies descriptor-derived DDL. Every statement uses
// conditional-create semantics so concurrent ingestion runs racing to
// create the same table or partition both succeed.
type TableManager struct {
	db     *sqlx.DB
	logger *logging.Logger
}

func NewTableManager(db *sqlx.DB, logger *logging.Logger) *TableManager {
	return &TableManager{db: db, logger: logger}
}

func (m *TableManager) EnsureTable(ctx context.Context, d stattable.Descriptor) error {
	statements := []string{
		buildCreateSchema(d),
		buildModifiedColumnFunction(d),
		buildCreateTable(d),
	}
	statements = append(statements, buildCreateIndexes(d)...)
	statements = append(statements, buildModifiedTrigger(d))

	for _, stmt := range statements {
		if _, err := m.db.ExecContext(ctx, stmt); err != nil {
			return crerr.Mark(fmt.Errorf("ensure table %s: %w", d.QualifiedName(), err), stattable.ErrSchema)
		}
	}

	m.logger.DebugContext(ctx, "table ensured", "table", d.QualifiedName())
	return nil
}

func (m *TableManager) EnsurePartition(ctx context.Context, d stattable.Descriptor, season int) error {
	if _, err := m.db.ExecContext(ctx, buildCreatePartition(d, season)); err != nil {
		return crerr.Mark(fmt.Errorf("ensure partition %s: %w", d.PartitionName(season), err), stattable.ErrSchema)
	}

	m.logger.DebugContext(ctx, "partition ensured", "table", d.QualifiedName(), "season", season)
	return nil
}

func buildCreateSchema(d stattable.Descriptor) string {
	return fmt.Sprintf("CREATE SCHEMA IF NOT EXISTS %s", d.Schema)
}

// buildModifiedColumnFunction installs the shared trigger function that
// stamps updated_at on every row update.
func buildModifiedColumnFunction(d stattable.Descriptor) string {
	return fmt.Sprintf(`CREATE OR REPLACE FUNCTION %s.update_modified_column() RETURNS TRIGGER AS $$
BEGIN
    NEW.updated_at = NOW();
    RETURN NEW;
END;
$$ LANGUAGE plpgsql`, d.Schema)
}

func buildCreateTable(d stattable.Descriptor) string {
	var parts []string
	for _, c := range d.Columns {
		def := c.Name + " " + c.SQLType
		if c.NotNull {
			def += " NOT NULL"
		}
		if c.Name == "created_at" || c.Name == "updated_at" {
			def += " DEFAULT NOW()"
		}
		parts = append(parts, def)
	}
	for _, c := range d.Columns {
		if c.Check != "" {
			parts = append(parts, fmt.Sprintf("CONSTRAINT chk_%s_%s CHECK (%s)", d.Name, c.Name, c.Check))
		}
	}
	parts = append(parts, fmt.Sprintf("CONSTRAINT uq_%s_identity UNIQUE (%s)", d.Name, strings.Join(d.ConflictColumns, ", ")))

	return fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (\n    %s\n) PARTITION BY RANGE (%s)",
		d.QualifiedName(), strings.Join(parts, ",\n    "), d.PartitionColumn)
}

func buildCreateIndexes(d stattable.Descriptor) []string {
	out := make([]string, 0, len(d.Indexes))
	for _, idx := range d.Indexes {
		out = append(out, fmt.Sprintf("CREATE INDEX IF NOT EXISTS %s ON %s (%s)",
			idx.Name, d.QualifiedName(), strings.Join(idx.Columns, ", ")))
	}
	return out
}

func buildModifiedTrigger(d stattable.Descriptor) string {
	return fmt.Sprintf("CREATE OR REPLACE TRIGGER update_%s_modtime BEFORE UPDATE ON %s FOR EACH ROW EXECUTE FUNCTION %s.update_modified_column()",
		d.Name, d.QualifiedName(), d.Schema)
}

// buildCreatePartition covers exactly one season's boundary.
func buildCreatePartition(d stattable.Descriptor, season int) string {
	return fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s.%s PARTITION OF %s FOR VALUES FROM (%d) TO (%d)",
		d.Schema, d.PartitionName(season), d.QualifiedName(), season, season+1)
}
