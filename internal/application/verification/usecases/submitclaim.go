package usecases

import (
	"context"
	"fmt"

	"github.com/edupay-lk/edupay/internal/application/verification/dto"
	"github.com/edupay-lk/edupay/internal/domain/claim"
	"github.com/edupay-lk/edupay/internal/shared/errors"
	"github.com/edupay-lk/edupay/internal/shared/logger"
)

type SubmitClaimCommand struct {
	SubmitterID     string
	SubmitterEmail  string
	ContactNumber   string
	PackageName     string
	AmountCents     int64
	ReceiptImageRef string
}

type SubmitClaimResult struct {
	Claim dto.ClaimDTO
}

// SubmitClaimUseCase persists a new claim in pending state and hands it to
// the background verification queue. The caller gets the pending claim
// back immediately; verification happens after the response is gone.
type SubmitClaimUseCase struct {
	claims   claim.Repository
	enqueuer Enqueuer
	logger   logger.Interface
}

func NewSubmitClaimUseCase(claims claim.Repository, enqueuer Enqueuer, log logger.Interface) *SubmitClaimUseCase {
	return &SubmitClaimUseCase{
		claims:   claims,
		enqueuer: enqueuer,
		logger:   log,
	}
}

func (uc *SubmitClaimUseCase) Execute(ctx context.Context, cmd SubmitClaimCommand) (*SubmitClaimResult, error) {
	c, err := claim.NewClaim(
		cmd.SubmitterID,
		cmd.SubmitterEmail,
		cmd.ContactNumber,
		cmd.PackageName,
		cmd.AmountCents,
		cmd.ReceiptImageRef,
	)
	if err != nil {
		return nil, errors.NewValidationError("invalid payment claim", err.Error())
	}

	// Persistence failure is the one error the submitter sees; they must
	// retry the submission themselves.
	if err := uc.claims.Create(ctx, c); err != nil {
		return nil, fmt.Errorf("failed to create claim: %w", err)
	}

	uc.logger.Infow("payment claim received",
		"claim_id", c.SID(),
		"submitter_id", c.SubmitterID(),
		"package", c.PackageName(),
		"amount_cents", c.ClaimedAmount(),
	)

	// Queue overflow is fine: the sweep re-offers unverified claims.
	uc.enqueuer.Enqueue(c.SID())

	return &SubmitClaimResult{Claim: dto.NewClaimDTO(c)}, nil
}
