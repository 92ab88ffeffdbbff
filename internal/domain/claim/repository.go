package claim

import (
	"context"
	"time"
)

type Repository interface {
	Create(ctx context.Context, claim *Claim) error
	// Update persists aggregate changes. The write lands only while the
	// stored row is still pending; a conflict error means the claim was
	// decided concurrently and the stored decision stands.
	Update(ctx context.Context, claim *Claim) error
	GetBySID(ctx context.Context, sid string) (*Claim, error)
	ListBySubmitter(ctx context.Context, submitterID string) ([]*Claim, error)
	ListAll(ctx context.Context) ([]*Claim, error)
	// ListPendingForSweep returns pending claims created before the cutoff
	// whose verification attempt count is still below maxAttempts.
	ListPendingForSweep(ctx context.Context, createdBefore time.Time, maxAttempts int) ([]*Claim, error)
}
