package mappers

import (
	"github.com/edupay-lk/edupay/internal/domain/ledger"
	"github.com/edupay-lk/edupay/internal/infrastructure/persistence/models"
)

func LedgerRecordToModel(r *ledger.Record) *models.LedgerRecordModel {
	return &models.LedgerRecordModel{
		ID:          r.DBID(),
		SID:         r.SID(),
		SourceLabel: r.SourceLabel(),
		RawMessage:  r.RawMessage(),
		AmountCents: r.AmountCents(),
		Reference:   r.Reference(),
		ObservedAt:  r.ObservedAt(),
		Consumed:    r.Consumed(),
		CreatedAt:   r.CreatedAt(),
	}
}

func LedgerRecordToDomain(model *models.LedgerRecordModel) *ledger.Record {
	return ledger.ReconstructRecord(ledger.RecordReconstructParams{
		DBID:        model.ID,
		SID:         model.SID,
		SourceLabel: model.SourceLabel,
		RawMessage:  model.RawMessage,
		AmountCents: model.AmountCents,
		Reference:   model.Reference,
		ObservedAt:  model.ObservedAt,
		Consumed:    model.Consumed,
		CreatedAt:   model.CreatedAt,
	})
}

func LedgerRecordsToDomain(recordModels []models.LedgerRecordModel) []*ledger.Record {
	records := make([]*ledger.Record, 0, len(recordModels))
	for i := range recordModels {
		records = append(records, LedgerRecordToDomain(&recordModels[i]))
	}
	return records
}
