package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/statline/statline/internal/domain/record"
	"github.com/statline/statline/internal/domain/stattable"
	"github.com/statline/statline/internal/platform/logging"
	qb "github.com/statline/statline/internal/platform/querybuilder"
)

// Loader upserts records keyed on the boxscore identity. Re-running a
// load converges on the latest parsed data instead of duplicating
// rows; the store's unique constraint arbitrates concurrent writers.
type Loader struct {
	db     *sqlx.DB
	logger *logging.Logger
}

func NewLoader(db *sqlx.DB, logger *logging.Logger) *Loader {
	return &Loader{db: db, logger: logger}
}

func (l *Loader) Load(ctx context.Context, d stattable.Descriptor, records []record.Record) (stattable.LoadReport, error) {
	report := stattable.LoadReport{}
	columns := d.DataColumns()

	for _, rec := range records {
		// Cancellation lands between rows, never mid-row.
		if err := ctx.Err(); err != nil {
			return report, err
		}

		query, args, err := buildUpsert(d, columns, rec)
		if err != nil {
			report.Failed++
			report.Failures = append(report.Failures, stattable.LoadFailure{
				BoxscoreID: rec.BoxscoreID,
				Cause:      err.Error(),
			})
			continue
		}

		var inserted bool
		if err := l.db.QueryRowxContext(ctx, query, args...).Scan(&inserted); err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return report, ctxErr
			}
			report.Failed++
			report.Failures = append(report.Failures, stattable.LoadFailure{
				BoxscoreID: rec.BoxscoreID,
				Cause:      err.Error(),
			})
			l.logger.WarnContext(ctx, "row upsert rejected",
				"table", d.QualifiedName(), "boxscore_id", rec.BoxscoreID, "error", err)
			continue
		}

		if inserted {
			report.Inserted++
		} else {
			report.Updated++
		}
	}

	return report, nil
}

// buildUpsert produces the identity-keyed upsert for one record. The
// xmax = 0 check distinguishes a fresh insert from a conflict update
// in a single round trip.
func buildUpsert(d stattable.Descriptor, columns []string, rec record.Record) (string, []any, error) {
	values := make([]any, 0, len(columns))
	for _, col := range columns {
		switch col {
		case "boxscore_id":
			values = append(values, rec.BoxscoreID)
		case "season":
			values = append(values, rec.Season)
		default:
			values = append(values, rec.Values[col])
		}
	}

	suffix := qb.ConflictUpdate(d.ConflictColumns, updateColumns(d, columns), "updated_at = NOW()")

	query, args, err := qb.InsertInto(d.QualifiedName()).
		Columns(columns...).
		Values(values...).
		Suffix(suffix).
		Returning("(xmax = 0) AS inserted").
		ToSQL()
	if err != nil {
		return "", nil, fmt.Errorf("build upsert for %s: %w", rec.BoxscoreID, err)
	}

	return query, args, nil
}

func updateColumns(d stattable.Descriptor, columns []string) []string {
	keys := make(map[string]struct{}, len(d.ConflictColumns))
	for _, k := range d.ConflictColumns {
		keys[k] = struct{}{}
	}

	out := make([]string, 0, len(columns))
	for _, col := range columns {
		if _, isKey := keys[col]; isKey {
			continue
		}
		out = append(out, col)
	}
	return out
}
