package usecases

import (
	"context"
	"fmt"

	"github.com/edupay-lk/edupay/internal/application/verification/dto"
	"github.com/edupay-lk/edupay/internal/application/verification/services"
	"github.com/edupay-lk/edupay/internal/domain/claim"
	vo "github.com/edupay-lk/edupay/internal/domain/claim/valueobjects"
	"github.com/edupay-lk/edupay/internal/shared/errors"
	"github.com/edupay-lk/edupay/internal/shared/logger"
)

type UpdateClaimStatusCommand struct {
	ClaimSID  string
	NewStatus string
	// AdminID is recorded for the audit log line only.
	AdminID string
}

// UpdateClaimStatusUseCase applies an administrator's manual decision to a
// claim the engine left pending. No scoring is involved and the ledger is
// not touched.
type UpdateClaimStatusUseCase struct {
	claims    claim.Repository
	committer *services.Committer
	logger    logger.Interface
}

func NewUpdateClaimStatusUseCase(claims claim.Repository, committer *services.Committer, log logger.Interface) *UpdateClaimStatusUseCase {
	return &UpdateClaimStatusUseCase{
		claims:    claims,
		committer: committer,
		logger:    log,
	}
}

func (uc *UpdateClaimStatusUseCase) Execute(ctx context.Context, cmd UpdateClaimStatusCommand) (*dto.ClaimDTO, error) {
	target, err := vo.NewClaimStatus(cmd.NewStatus)
	if err != nil {
		return nil, errors.NewValidationError("invalid claim status", cmd.NewStatus)
	}
	if target == vo.ClaimStatusPending {
		return nil, errors.NewValidationError("claims cannot be moved back to pending")
	}

	c, err := uc.claims.GetBySID(ctx, cmd.ClaimSID)
	if err != nil {
		return nil, errors.NewNotFoundError("claim not found", cmd.ClaimSID)
	}

	if err := uc.committer.ApplyManual(ctx, c, target); err != nil {
		if c.Status().IsFinal() {
			return nil, errors.NewConflictError("claim already decided", string(c.Status()))
		}
		return nil, fmt.Errorf("failed to apply manual decision: %w", err)
	}

	uc.logger.Infow("claim status updated manually",
		"claim_id", c.SID(),
		"status", c.Status(),
		"admin_id", cmd.AdminID,
	)

	result := dto.NewClaimDTO(c)
	return &result, nil
}
