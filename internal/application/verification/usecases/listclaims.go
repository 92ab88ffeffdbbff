package usecases

import (
	"context"
	"fmt"

	"github.com/edupay-lk/edupay/internal/application/verification/dto"
	"github.com/edupay-lk/edupay/internal/domain/claim"
	"github.com/edupay-lk/edupay/internal/shared/errors"
	"github.com/edupay-lk/edupay/internal/shared/logger"
)

// ListUserClaimsUseCase returns a submitter's claims, newest first.
type ListUserClaimsUseCase struct {
	claims claim.Repository
	logger logger.Interface
}

func NewListUserClaimsUseCase(claims claim.Repository, log logger.Interface) *ListUserClaimsUseCase {
	return &ListUserClaimsUseCase{claims: claims, logger: log}
}

func (uc *ListUserClaimsUseCase) Execute(ctx context.Context, submitterID string) ([]dto.ClaimDTO, error) {
	if submitterID == "" {
		return nil, errors.NewValidationError("submitter ID is required")
	}

	list, err := uc.claims.ListBySubmitter(ctx, submitterID)
	if err != nil {
		return nil, fmt.Errorf("failed to list claims for submitter: %w", err)
	}

	return dto.NewClaimDTOs(list), nil
}

// ListAllClaimsUseCase returns every claim, newest first. Admin only.
type ListAllClaimsUseCase struct {
	claims claim.Repository
	logger logger.Interface
}

func NewListAllClaimsUseCase(claims claim.Repository, log logger.Interface) *ListAllClaimsUseCase {
	return &ListAllClaimsUseCase{claims: claims, logger: log}
}

func (uc *ListAllClaimsUseCase) Execute(ctx context.Context) ([]dto.ClaimDTO, error) {
	list, err := uc.claims.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list claims: %w", err)
	}

	return dto.NewClaimDTOs(list), nil
}
