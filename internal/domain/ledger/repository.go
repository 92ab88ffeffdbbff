package ledger

import (
	"context"
	"time"
)

type Repository interface {
	Create(ctx context.Context, record *Record) error
	GetBySID(ctx context.Context, sid string) (*Record, error)
	// FindCandidates returns unconsumed records with exactly the given
	// amount observed at or after the window start, ordered by observed_at
	// ascending (ties broken by insertion order). The ordering is part of
	// the matching contract: the first candidate at or above the approval
	// threshold wins.
	FindCandidates(ctx context.Context, amountCents int64, since time.Time) ([]*Record, error)
	// MarkConsumed atomically claims the record. It returns true when this
	// call performed the false->true transition and false when the record
	// was already consumed. Implementations must guard the transition with
	// a conditional update, not a read-then-write.
	MarkConsumed(ctx context.Context, sid string) (bool, error)
	ListRecent(ctx context.Context, limit int) ([]*Record, error)
}
