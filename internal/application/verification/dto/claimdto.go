package dto

import (
	"time"

	"github.com/edupay-lk/edupay/internal/domain/claim"
	"github.com/edupay-lk/edupay/internal/domain/ledger"
)

type ClaimDTO struct {
	ID              string    `json:"id"`
	SubmitterID     string    `json:"submitter_id"`
	SubmitterEmail  string    `json:"submitter_email"`
	ContactNumber   string    `json:"contact_number,omitempty"`
	PackageName     string    `json:"package_name"`
	AmountCents     int64     `json:"amount_cents"`
	ReceiptImageRef string    `json:"receipt_image_ref"`
	Status          string    `json:"status"`
	MatchedLedgerID *string   `json:"matched_ledger_id,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

func NewClaimDTO(c *claim.Claim) ClaimDTO {
	return ClaimDTO{
		ID:              c.SID(),
		SubmitterID:     c.SubmitterID(),
		SubmitterEmail:  c.SubmitterEmail(),
		ContactNumber:   c.ContactNumber(),
		PackageName:     c.PackageName(),
		AmountCents:     c.ClaimedAmount(),
		ReceiptImageRef: c.ReceiptImageRef(),
		Status:          c.Status().String(),
		MatchedLedgerID: c.MatchedLedgerID(),
		CreatedAt:       c.CreatedAt(),
		UpdatedAt:       c.UpdatedAt(),
	}
}

func NewClaimDTOs(claims []*claim.Claim) []ClaimDTO {
	dtos := make([]ClaimDTO, len(claims))
	for i, c := range claims {
		dtos[i] = NewClaimDTO(c)
	}
	return dtos
}

type LedgerRecordDTO struct {
	ID          string    `json:"id"`
	SourceLabel string    `json:"source_label"`
	AmountCents int64     `json:"amount_cents"`
	Reference   *string   `json:"reference,omitempty"`
	ObservedAt  time.Time `json:"observed_at"`
	Consumed    bool      `json:"consumed"`
}

func NewLedgerRecordDTO(r *ledger.Record) LedgerRecordDTO {
	return LedgerRecordDTO{
		ID:          r.SID(),
		SourceLabel: r.SourceLabel(),
		AmountCents: r.AmountCents(),
		Reference:   r.Reference(),
		ObservedAt:  r.ObservedAt(),
		Consumed:    r.Consumed(),
	}
}
