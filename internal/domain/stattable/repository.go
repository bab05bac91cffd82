package stattable

import (
	"context"

	crerr "github.com/cockroachdb/errors"

	"github.com/statline/statline/internal/domain/record"
)

// ErrSchema marks a DDL application failure. No load proceeds against
// a destination that failed schema setup.
var ErrSchema = crerr.New("schema apply failed")

// Manager ensures the derived storage shape exists before loading.
type Manager interface {
	EnsureTable(ctx context.Context, descriptor Descriptor) error
	EnsurePartition(ctx context.Context, descriptor Descriptor, season int) error
}

// Loader persists a batch of records via identity-keyed upsert.
type Loader interface {
	Load(ctx context.Context, descriptor Descriptor, records []record.Record) (LoadReport, error)
}

// LoadFailure is one row that the store rejected.
type LoadFailure struct {
	BoxscoreID string `json:"boxscore_id"`
	Cause      string `json:"cause"`
}

// LoadReport summarises one batch load. Zero successful rows is a
// valid outcome, not an error.
type LoadReport struct {
	Inserted int           `json:"inserted"`
	Updated  int           `json:"updated"`
	Failed   int           `json:"failed"`
	Failures []LoadFailure `json:"failures,omitempty"`
}

func (r *LoadReport) Merge(other LoadReport) {
	r.Inserted += other.Inserted
	r.Updated += other.Updated
	r.Failed += other.Failed
	r.Failures = append(r.Failures, other.Failures...)
}
