// Package services holds domain services of the verification context that
// coordinate more than one aggregate.
package services

import (
	"context"
	"fmt"

	"github.com/edupay-lk/edupay/internal/domain/claim"
	vo "github.com/edupay-lk/edupay/internal/domain/claim/valueobjects"
	"github.com/edupay-lk/edupay/internal/domain/ledger"
	"github.com/edupay-lk/edupay/internal/shared/db"
	"github.com/edupay-lk/edupay/internal/shared/logger"
)

// Committer realizes acceptance decisions. The safety invariant it owns:
// a ledger record is consumed by at most one claim. The record is claimed
// first through a conditional update; only the winner proceeds to approve
// its claim. When the claim-side update fails after the record was won,
// the consumption stands and the claim stays pending, which under-approves
// but never double-spends.
type Committer struct {
	claims    claim.Repository
	ledgerRep ledger.Repository
	tx        *db.TransactionManager
	logger    logger.Interface
}

func NewCommitter(
	claims claim.Repository,
	ledgerRep ledger.Repository,
	tx *db.TransactionManager,
	log logger.Interface,
) *Committer {
	return &Committer{
		claims:    claims,
		ledgerRep: ledgerRep,
		tx:        tx,
		logger:    log,
	}
}

// Approve attempts to commit an automatic approval of c backed by the
// ledger record. It returns won=false when another claim consumed the
// record first; the caller should move on to its next candidate. When
// won=true the record is consumed regardless of the returned error.
func (s *Committer) Approve(ctx context.Context, c *claim.Claim, rec *ledger.Record) (won bool, err error) {
	won, err = s.ledgerRep.MarkConsumed(ctx, rec.SID())
	if err != nil {
		return false, fmt.Errorf("failed to claim ledger record %s: %w", rec.SID(), err)
	}
	if !won {
		return false, nil
	}

	if err := c.Approve(rec.SID()); err != nil {
		s.logger.Errorw("ledger record consumed but claim not approvable",
			"claim_id", c.SID(),
			"ledger_id", rec.SID(),
			"status", c.Status(),
			"error", err,
		)
		return true, err
	}

	if err := s.runInTx(ctx, func(txCtx context.Context) error {
		return s.claims.Update(txCtx, c)
	}); err != nil {
		s.logger.Errorw("ledger record consumed but claim update failed, claim left pending",
			"claim_id", c.SID(),
			"ledger_id", rec.SID(),
			"error", err,
		)
		return true, fmt.Errorf("failed to persist approval of claim %s: %w", c.SID(), err)
	}

	return true, nil
}

// ApplyManual applies an administrator decision without scoring. Approvals
// through this path carry no ledger evidence and leave the ledger untouched.
func (s *Committer) ApplyManual(ctx context.Context, c *claim.Claim, target vo.ClaimStatus) error {
	switch target {
	case vo.ClaimStatusApproved:
		if err := c.ApproveManually(); err != nil {
			return err
		}
	case vo.ClaimStatusRejected:
		if err := c.Reject(); err != nil {
			return err
		}
	default:
		return fmt.Errorf("cannot transition claim to %s", target)
	}

	return s.claims.Update(ctx, c)
}

func (s *Committer) runInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if s.tx == nil {
		return fn(ctx)
	}
	return s.tx.RunInTransaction(ctx, fn)
}
