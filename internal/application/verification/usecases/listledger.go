package usecases

import (
	"context"
	"fmt"

	"github.com/edupay-lk/edupay/internal/application/verification/dto"
	"github.com/edupay-lk/edupay/internal/domain/ledger"
	"github.com/edupay-lk/edupay/internal/shared/logger"
)

// ListLedgerUseCase returns the most recent ledger records, newest first.
// Admin only; used to eyeball whether the SMS forwarder is still alive.
type ListLedgerUseCase struct {
	ledgerRep ledger.Repository
	logger    logger.Interface
}

func NewListLedgerUseCase(ledgerRep ledger.Repository, log logger.Interface) *ListLedgerUseCase {
	return &ListLedgerUseCase{ledgerRep: ledgerRep, logger: log}
}

func (uc *ListLedgerUseCase) Execute(ctx context.Context, limit int) ([]dto.LedgerRecordDTO, error) {
	records, err := uc.ledgerRep.ListRecent(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list ledger records: %w", err)
	}

	dtos := make([]dto.LedgerRecordDTO, len(records))
	for i, r := range records {
		dtos[i] = dto.NewLedgerRecordDTO(r)
	}
	return dtos, nil
}
