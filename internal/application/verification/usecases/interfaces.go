package usecases

import (
	"context"
	"time"

	"github.com/edupay-lk/edupay/internal/domain/claim"
)

// Enqueuer hands a claim to the background verification queue. Enqueue
// reports whether the claim was accepted; a full queue is not an error,
// the sweep job will pick the claim up later.
type Enqueuer interface {
	Enqueue(claimSID string) bool
}

// MessageDedup suppresses duplicate webhook deliveries of the same bank
// message within a window. A nil implementation disables deduplication.
type MessageDedup interface {
	// SeenRecently records the key and reports whether it was already
	// recorded inside the window.
	SeenRecently(ctx context.Context, key string, window time.Duration) (bool, error)
}

// Notifier informs operators about verification outcomes that need eyes.
type Notifier interface {
	ClaimAutoApproved(ctx context.Context, c *claim.Claim, ledgerSID string) error
	ClaimNeedsReview(ctx context.Context, c *claim.Claim) error
}
