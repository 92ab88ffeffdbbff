package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/edupay-lk/edupay/internal/domain/ledger"
	apperrors "github.com/edupay-lk/edupay/internal/shared/errors"
	"github.com/edupay-lk/edupay/internal/infrastructure/persistence/mappers"
	"github.com/edupay-lk/edupay/internal/infrastructure/persistence/models"
	"github.com/edupay-lk/edupay/internal/shared/db"
)

type LedgerRepository struct {
	db *gorm.DB
}

func NewLedgerRepository(db *gorm.DB) *LedgerRepository {
	return &LedgerRepository{db: db}
}

func (r *LedgerRepository) Create(ctx context.Context, record *ledger.Record) error {
	model := mappers.LedgerRecordToModel(record)

	if err := db.GetTxFromContext(ctx, r.db).Create(model).Error; err != nil {
		return fmt.Errorf("failed to create ledger record: %w", err)
	}

	record.SetDBID(model.ID)

	return nil
}

func (r *LedgerRepository) GetBySID(ctx context.Context, sid string) (*ledger.Record, error) {
	var model models.LedgerRecordModel

	if err := db.GetTxFromContext(ctx, r.db).
		Where("sid = ?", sid).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NewNotFoundError("ledger record not found")
		}
		return nil, fmt.Errorf("failed to get ledger record: %w", err)
	}

	return mappers.LedgerRecordToDomain(&model), nil
}

func (r *LedgerRepository) FindCandidates(ctx context.Context, amountCents int64, since time.Time) ([]*ledger.Record, error) {
	var recordModels []models.LedgerRecordModel

	if err := db.GetTxFromContext(ctx, r.db).
		Where("amount_cents = ? AND consumed = ? AND observed_at >= ?",
			amountCents, false, since).
		Order("observed_at ASC, id ASC").
		Find(&recordModels).Error; err != nil {
		return nil, fmt.Errorf("failed to find candidate ledger records: %w", err)
	}

	return mappers.LedgerRecordsToDomain(recordModels), nil
}

// MarkConsumed performs the consumed transition with a conditional update so
// concurrent verifiers cannot both win the same record. Exactly one caller
// observes RowsAffected == 1.
func (r *LedgerRepository) MarkConsumed(ctx context.Context, sid string) (bool, error) {
	result := db.GetTxFromContext(ctx, r.db).
		Model(&models.LedgerRecordModel{}).
		Where("sid = ? AND consumed = ?", sid, false).
		Update("consumed", true)

	if result.Error != nil {
		return false, fmt.Errorf("failed to mark ledger record consumed: %w", result.Error)
	}

	return result.RowsAffected == 1, nil
}

func (r *LedgerRepository) ListRecent(ctx context.Context, limit int) ([]*ledger.Record, error) {
	if limit <= 0 {
		limit = 50
	}

	var recordModels []models.LedgerRecordModel

	if err := db.GetTxFromContext(ctx, r.db).
		Order("observed_at DESC").
		Limit(limit).
		Find(&recordModels).Error; err != nil {
		return nil, fmt.Errorf("failed to list recent ledger records: %w", err)
	}

	return mappers.LedgerRecordsToDomain(recordModels), nil
}
