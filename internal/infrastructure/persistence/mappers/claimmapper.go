package mappers

import (
	"fmt"

	"github.com/edupay-lk/edupay/internal/domain/claim"
	vo "github.com/edupay-lk/edupay/internal/domain/claim/valueobjects"
	"github.com/edupay-lk/edupay/internal/infrastructure/persistence/models"
)

func ClaimToModel(c *claim.Claim) *models.ClaimModel {
	return &models.ClaimModel{
		ID:              c.DBID(),
		SID:             c.SID(),
		SubmitterID:     c.SubmitterID(),
		SubmitterEmail:  c.SubmitterEmail(),
		ContactNumber:   c.ContactNumber(),
		PackageName:     c.PackageName(),
		ClaimedAmount:   c.ClaimedAmount(),
		ReceiptImageRef: c.ReceiptImageRef(),
		Status:          c.Status().String(),
		MatchedLedgerID: c.MatchedLedgerID(),
		VerifyAttempts:  c.VerifyAttempts(),
		CreatedAt:       c.CreatedAt(),
		UpdatedAt:       c.UpdatedAt(),
	}
}

func ClaimToDomain(model *models.ClaimModel) (*claim.Claim, error) {
	status, err := vo.NewClaimStatus(model.Status)
	if err != nil {
		return nil, fmt.Errorf("invalid claim status: %w", err)
	}

	return claim.ReconstructClaim(claim.ClaimReconstructParams{
		DBID:            model.ID,
		SID:             model.SID,
		SubmitterID:     model.SubmitterID,
		SubmitterEmail:  model.SubmitterEmail,
		ContactNumber:   model.ContactNumber,
		PackageName:     model.PackageName,
		ClaimedAmount:   model.ClaimedAmount,
		ReceiptImageRef: model.ReceiptImageRef,
		Status:          status,
		MatchedLedgerID: model.MatchedLedgerID,
		VerifyAttempts:  model.VerifyAttempts,
		CreatedAt:       model.CreatedAt,
		UpdatedAt:       model.UpdatedAt,
	}), nil
}

func ClaimsToDomain(claimModels []models.ClaimModel) ([]*claim.Claim, error) {
	claims := make([]*claim.Claim, 0, len(claimModels))
	for i := range claimModels {
		c, err := ClaimToDomain(&claimModels[i])
		if err != nil {
			return nil, err
		}
		claims = append(claims, c)
	}
	return claims, nil
}
