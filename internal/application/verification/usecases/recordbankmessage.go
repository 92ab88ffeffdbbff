package usecases

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/edupay-lk/edupay/internal/application/verification/dto"
	"github.com/edupay-lk/edupay/internal/domain/ledger"
	"github.com/edupay-lk/edupay/internal/shared/errors"
	"github.com/edupay-lk/edupay/internal/shared/logger"
)

type RecordBankMessageCommand struct {
	SourceLabel string
	Message     string
	ObservedAt  time.Time
}

type RecordBankMessageResult struct {
	Record    dto.LedgerRecordDTO
	Duplicate bool
}

// RecordBankMessageUseCase ingests a forwarded bank SMS into the
// transaction ledger. Parsing is tolerant: messages without a recognizable
// amount or reference are stored with zeroed fields rather than rejected.
// Exact redeliveries inside the dedup window are dropped.
type RecordBankMessageUseCase struct {
	ledgerRep   ledger.Repository
	dedup       MessageDedup
	dedupWindow time.Duration
	logger      logger.Interface
}

func NewRecordBankMessageUseCase(
	ledgerRep ledger.Repository,
	dedup MessageDedup,
	dedupWindow time.Duration,
	log logger.Interface,
) *RecordBankMessageUseCase {
	return &RecordBankMessageUseCase{
		ledgerRep:   ledgerRep,
		dedup:       dedup,
		dedupWindow: dedupWindow,
		logger:      log,
	}
}

func (uc *RecordBankMessageUseCase) Execute(ctx context.Context, cmd RecordBankMessageCommand) (*RecordBankMessageResult, error) {
	if uc.dedup != nil && uc.dedupWindow > 0 {
		seen, err := uc.dedup.SeenRecently(ctx, messageKey(cmd.SourceLabel, cmd.Message), uc.dedupWindow)
		if err != nil {
			// Dedup is an optimization; a cache outage must not block
			// ledger ingestion.
			uc.logger.Warnw("message dedup check failed, ingesting anyway",
				"source", cmd.SourceLabel,
				"error", err,
			)
		} else if seen {
			uc.logger.Infow("duplicate bank message dropped",
				"source", cmd.SourceLabel,
			)
			return &RecordBankMessageResult{Duplicate: true}, nil
		}
	}

	rec, err := ledger.NewRecord(cmd.SourceLabel, cmd.Message, cmd.ObservedAt)
	if err != nil {
		return nil, errors.NewValidationError("invalid bank message", err.Error())
	}

	if err := uc.ledgerRep.Create(ctx, rec); err != nil {
		return nil, fmt.Errorf("failed to store ledger record: %w", err)
	}

	uc.logger.Infow("bank message recorded",
		"ledger_id", rec.SID(),
		"source", rec.SourceLabel(),
		"amount_cents", rec.AmountCents(),
		"has_reference", rec.Reference() != nil,
	)

	return &RecordBankMessageResult{Record: dto.NewLedgerRecordDTO(rec)}, nil
}

func messageKey(source, message string) string {
	sum := sha256.Sum256([]byte(source + "\x00" + message))
	return "bankmsg:" + hex.EncodeToString(sum[:])
}
