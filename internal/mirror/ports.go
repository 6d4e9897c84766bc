// Package mirror defines the outbound ledger port. The ledger is an
// append-only audit trail of record mutations kept outside the
// service, one row per committed change.
package mirror

import (
	"context"
	"time"
)

// Entry is one ledger row. Identity fields always carry a value;
// Description, Amount and Status are filled only when the worker could
// still find the record.
type Entry struct {
	Entity      string
	Action      string
	ID          string
	UserID      string
	Description string
	Amount      string
	Status      string
	Month       int
	Year        int
	Timestamp   time.Time
}

// LedgerWriter appends entries to the external ledger.
type LedgerWriter interface {
	Append(ctx context.Context, e Entry) (rowRef string, err error)
}
