package usecases

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/edupay-lk/edupay/internal/application/verification/extractor"
	"github.com/edupay-lk/edupay/internal/application/verification/services"
	"github.com/edupay-lk/edupay/internal/domain/claim"
	"github.com/edupay-lk/edupay/internal/domain/ledger"
	"github.com/edupay-lk/edupay/internal/shared/biztime"
	apperrors "github.com/edupay-lk/edupay/internal/shared/errors"
	"github.com/edupay-lk/edupay/internal/shared/logger"
)

const (
	defaultApproveThreshold = 2.0
	defaultLookback         = 24 * time.Hour
	defaultProximity        = 2 * time.Hour

	// Score signals. Amount equality is a precondition of candidacy so
	// every candidate starts with the amount point.
	scoreAmountMatch   = 1.0
	scoreReferenceSeen = 1.0
	scoreTimeProximity = 0.5
)

// VerifyClaimConfig tunes the matching engine. Zero values fall back to
// the product defaults.
type VerifyClaimConfig struct {
	ApproveThreshold float64
	Lookback         time.Duration
	Proximity        time.Duration
	// MaxAttempts bounds automatic retries; when the final attempt ends
	// without a match the operator notification fires.
	MaxAttempts int
}

func (c VerifyClaimConfig) normalized() VerifyClaimConfig {
	if c.ApproveThreshold <= 0 {
		c.ApproveThreshold = defaultApproveThreshold
	}
	if c.Lookback <= 0 {
		c.Lookback = defaultLookback
	}
	if c.Proximity <= 0 {
		c.Proximity = defaultProximity
	}
	return c
}

// VerifyClaimUseCase is the matching engine: given a pending claim it
// extracts slip data, scans the ledger for unconsumed records of the same
// amount inside the lookback window, scores each candidate and commits
// the first one at or above the approval threshold. Every outcome other
// than a committed approval leaves the claim pending.
type VerifyClaimUseCase struct {
	claims    claim.Repository
	ledgerRep ledger.Repository
	slips     extractor.SlipExtractor
	committer *services.Committer
	notifier  Notifier
	cfg       VerifyClaimConfig
	logger    logger.Interface
}

func NewVerifyClaimUseCase(
	claims claim.Repository,
	ledgerRep ledger.Repository,
	slips extractor.SlipExtractor,
	committer *services.Committer,
	notifier Notifier,
	cfg VerifyClaimConfig,
	log logger.Interface,
) *VerifyClaimUseCase {
	return &VerifyClaimUseCase{
		claims:    claims,
		ledgerRep: ledgerRep,
		slips:     slips,
		committer: committer,
		notifier:  notifier,
		cfg:       cfg.normalized(),
		logger:    log,
	}
}

// Execute runs one verification pass for the claim. The returned error is
// for the dispatcher's log only; it never reaches the submitter.
func (uc *VerifyClaimUseCase) Execute(ctx context.Context, claimSID string) error {
	c, err := uc.claims.GetBySID(ctx, claimSID)
	if err != nil {
		return fmt.Errorf("failed to load claim %s: %w", claimSID, err)
	}

	if c.Status().IsFinal() {
		uc.logger.Debugw("claim already decided, skipping verification",
			"claim_id", c.SID(),
			"status", c.Status(),
		)
		return nil
	}

	c.RecordVerifyAttempt()
	if err := uc.claims.Update(ctx, c); err != nil {
		if apperrors.IsConflictError(err) {
			// Admin decided the claim between load and write; nothing
			// left to verify and no ledger evidence to spend.
			uc.logger.Infow("claim decided concurrently, skipping verification",
				"claim_id", c.SID(),
			)
			return nil
		}
		// Attempt accounting is advisory; the pass still runs.
		uc.logger.Warnw("failed to record verification attempt",
			"claim_id", c.SID(),
			"error", err,
		)
	}

	slip, err := uc.slips.Extract(ctx, c.ReceiptImageRef())
	if err != nil || slip == nil {
		uc.logger.Warnw("slip extraction failed, treating as illegible",
			"claim_id", c.SID(),
			"error", err,
		)
		slip = extractor.Illegible()
	}

	if !slip.Legible {
		uc.logger.Infow("slip not legible, leaving claim pending for review",
			"claim_id", c.SID(),
			"attempt", c.VerifyAttempts(),
		)
		uc.maybeNotifyNeedsReview(ctx, c)
		return nil
	}

	// Prefer the amount read off the slip; fall back to what the user
	// claimed when the figure itself was unreadable.
	matchAmount := c.ClaimedAmount()
	if slip.AmountCents != nil && *slip.AmountCents > 0 {
		matchAmount = *slip.AmountCents
	}

	since := biztime.NowUTC().Add(-uc.cfg.Lookback)
	candidates, err := uc.ledgerRep.FindCandidates(ctx, matchAmount, since)
	if err != nil {
		return fmt.Errorf("failed to query ledger candidates for claim %s: %w", c.SID(), err)
	}

	uc.logger.Debugw("evaluating ledger candidates",
		"claim_id", c.SID(),
		"amount_cents", matchAmount,
		"candidates", len(candidates),
	)

	for _, rec := range candidates {
		score := uc.scoreCandidate(rec, slip, c.CreatedAt())
		if score < uc.cfg.ApproveThreshold {
			continue
		}

		won, err := uc.committer.Approve(ctx, c, rec)
		if !won {
			if err != nil {
				return err
			}
			// Race lost: another claim consumed this record first.
			// Not an error, move on to the next candidate.
			uc.logger.Infow("ledger record taken by concurrent claim",
				"claim_id", c.SID(),
				"ledger_id", rec.SID(),
			)
			continue
		}
		if err != nil {
			// Record consumed but the claim could not be approved; stop
			// scanning so no further evidence is spent on this claim.
			return err
		}

		uc.logger.Infow("claim auto-approved",
			"claim_id", c.SID(),
			"ledger_id", rec.SID(),
			"score", score,
		)
		uc.notifyApproved(ctx, c, rec.SID())
		return nil
	}

	uc.logger.Infow("no ledger record reached approval threshold, claim stays pending",
		"claim_id", c.SID(),
		"candidates", len(candidates),
		"attempt", c.VerifyAttempts(),
	)
	uc.maybeNotifyNeedsReview(ctx, c)
	return nil
}

// scoreCandidate accumulates the independent evidence signals for one
// ledger record against the extracted slip data.
func (uc *VerifyClaimUseCase) scoreCandidate(rec *ledger.Record, slip *extractor.SlipData, claimedAt time.Time) float64 {
	score := scoreAmountMatch

	if slip.Reference != nil && *slip.Reference != "" &&
		strings.Contains(rec.RawMessage(), *slip.Reference) {
		score += scoreReferenceSeen
	}

	diff := rec.ObservedAt().Sub(claimedAt)
	if diff < 0 {
		diff = -diff
	}
	if diff < uc.cfg.Proximity {
		score += scoreTimeProximity
	}

	return score
}

func (uc *VerifyClaimUseCase) notifyApproved(ctx context.Context, c *claim.Claim, ledgerSID string) {
	if uc.notifier == nil {
		return
	}
	if err := uc.notifier.ClaimAutoApproved(ctx, c, ledgerSID); err != nil {
		uc.logger.Warnw("failed to send approval notification",
			"claim_id", c.SID(),
			"error", err,
		)
	}
}

// maybeNotifyNeedsReview fires the operator notification exactly once:
// on the final automatic attempt that still ends pending.
func (uc *VerifyClaimUseCase) maybeNotifyNeedsReview(ctx context.Context, c *claim.Claim) {
	if uc.notifier == nil || uc.cfg.MaxAttempts <= 0 {
		return
	}
	if c.VerifyAttempts() != uc.cfg.MaxAttempts {
		return
	}
	if err := uc.notifier.ClaimNeedsReview(ctx, c); err != nil {
		uc.logger.Warnw("failed to send needs-review notification",
			"claim_id", c.SID(),
			"error", err,
		)
	}
}
