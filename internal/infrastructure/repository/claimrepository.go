package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/edupay-lk/edupay/internal/domain/claim"
	vo "github.com/edupay-lk/edupay/internal/domain/claim/valueobjects"
	apperrors "github.com/edupay-lk/edupay/internal/shared/errors"
	"github.com/edupay-lk/edupay/internal/infrastructure/persistence/mappers"
	"github.com/edupay-lk/edupay/internal/infrastructure/persistence/models"
	"github.com/edupay-lk/edupay/internal/shared/db"
)

type ClaimRepository struct {
	db *gorm.DB
}

func NewClaimRepository(db *gorm.DB) *ClaimRepository {
	return &ClaimRepository{db: db}
}

func (r *ClaimRepository) Create(ctx context.Context, c *claim.Claim) error {
	model := mappers.ClaimToModel(c)

	if err := db.GetTxFromContext(ctx, r.db).Create(model).Error; err != nil {
		return fmt.Errorf("failed to create claim: %w", err)
	}

	// Write back the auto-generated ID to the domain object
	c.SetDBID(model.ID)

	return nil
}

func (r *ClaimRepository) Update(ctx context.Context, c *claim.Claim) error {
	model := mappers.ClaimToModel(c)

	// Every legal write starts from a pending row: attempt accounting keeps
	// the status, decisions move it to a terminal one. Guarding on pending
	// stops a stale in-memory copy from reverting a decision committed
	// between load and write.
	result := db.GetTxFromContext(ctx, r.db).
		Model(&models.ClaimModel{}).
		Where("sid = ? AND status = ?", model.SID, vo.ClaimStatusPending.String()).
		Updates(map[string]interface{}{
			"status":            model.Status,
			"matched_ledger_id": model.MatchedLedgerID,
			"verify_attempts":   model.VerifyAttempts,
			"updated_at":        model.UpdatedAt,
		})

	if result.Error != nil {
		return fmt.Errorf("failed to update claim: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return apperrors.NewConflictError("claim already decided")
	}

	return nil
}

func (r *ClaimRepository) GetBySID(ctx context.Context, sid string) (*claim.Claim, error) {
	var model models.ClaimModel

	if err := db.GetTxFromContext(ctx, r.db).
		Where("sid = ?", sid).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NewNotFoundError("claim not found")
		}
		return nil, fmt.Errorf("failed to get claim: %w", err)
	}

	return mappers.ClaimToDomain(&model)
}

func (r *ClaimRepository) ListBySubmitter(ctx context.Context, submitterID string) ([]*claim.Claim, error) {
	var claimModels []models.ClaimModel

	if err := db.GetTxFromContext(ctx, r.db).
		Where("submitter_id = ?", submitterID).
		Order("created_at DESC").
		Find(&claimModels).Error; err != nil {
		return nil, fmt.Errorf("failed to list claims by submitter: %w", err)
	}

	return mappers.ClaimsToDomain(claimModels)
}

func (r *ClaimRepository) ListAll(ctx context.Context) ([]*claim.Claim, error) {
	var claimModels []models.ClaimModel

	if err := db.GetTxFromContext(ctx, r.db).
		Order("created_at DESC").
		Find(&claimModels).Error; err != nil {
		return nil, fmt.Errorf("failed to list claims: %w", err)
	}

	return mappers.ClaimsToDomain(claimModels)
}

func (r *ClaimRepository) ListPendingForSweep(ctx context.Context, createdBefore time.Time, maxAttempts int) ([]*claim.Claim, error) {
	var claimModels []models.ClaimModel

	if err := db.GetTxFromContext(ctx, r.db).
		Where("status = ? AND created_at < ? AND verify_attempts < ?",
			vo.ClaimStatusPending.String(), createdBefore, maxAttempts).
		Order("created_at ASC").
		Find(&claimModels).Error; err != nil {
		return nil, fmt.Errorf("failed to list pending claims for sweep: %w", err)
	}

	return mappers.ClaimsToDomain(claimModels)
}
