package usecases

import (
	"context"
	"fmt"
	"time"

	"github.com/edupay-lk/edupay/internal/domain/claim"
	"github.com/edupay-lk/edupay/internal/shared/biztime"
	"github.com/edupay-lk/edupay/internal/shared/logger"
)

// SweepPendingClaimsConfig tunes the retry sweep.
type SweepPendingClaimsConfig struct {
	// Cooloff is how long a claim must have sat pending before the sweep
	// re-offers it, so fresh submissions are not verified twice.
	Cooloff time.Duration
	// MaxAttempts caps automatic verification runs per claim.
	MaxAttempts int
}

// SweepPendingClaimsUseCase re-enqueues pending claims whose background
// verification never concluded, either because the queue was full, the
// process restarted, or the matching SMS had not arrived yet. This is the
// retry policy layered on top of the fire-and-forget pipeline; the engine
// itself is unchanged.
type SweepPendingClaimsUseCase struct {
	claims   claim.Repository
	enqueuer Enqueuer
	cfg      SweepPendingClaimsConfig
	logger   logger.Interface
}

func NewSweepPendingClaimsUseCase(
	claims claim.Repository,
	enqueuer Enqueuer,
	cfg SweepPendingClaimsConfig,
	log logger.Interface,
) *SweepPendingClaimsUseCase {
	if cfg.Cooloff <= 0 {
		cfg.Cooloff = 15 * time.Minute
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 3
	}
	return &SweepPendingClaimsUseCase{
		claims:   claims,
		enqueuer: enqueuer,
		cfg:      cfg,
		logger:   log,
	}
}

// Execute enqueues eligible claims and returns how many were offered.
// Implements the scheduler's BatchJob contract.
func (uc *SweepPendingClaimsUseCase) Execute(ctx context.Context) (int, error) {
	cutoff := biztime.NowUTC().Add(-uc.cfg.Cooloff)

	pending, err := uc.claims.ListPendingForSweep(ctx, cutoff, uc.cfg.MaxAttempts)
	if err != nil {
		return 0, fmt.Errorf("failed to list pending claims for sweep: %w", err)
	}

	if len(pending) == 0 {
		return 0, nil
	}

	enqueued := 0
	for _, c := range pending {
		if !uc.enqueuer.Enqueue(c.SID()) {
			// Queue full; the rest will wait for the next sweep.
			break
		}
		enqueued++
	}

	uc.logger.Infow("pending claims swept for re-verification",
		"eligible", len(pending),
		"enqueued", enqueued,
	)

	return enqueued, nil
}
