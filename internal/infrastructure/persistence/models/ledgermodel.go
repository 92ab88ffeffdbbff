package models

import "time"

type LedgerRecordModel struct {
	ID          uint      `gorm:"primaryKey"`
	SID         string    `gorm:"column:sid;uniqueIndex;size:32;not null"`
	SourceLabel string    `gorm:"size:64"`
	RawMessage  string    `gorm:"type:text;not null"`
	AmountCents int64     `gorm:"not null;index:idx_ledger_match,priority:1"`
	Reference   *string   `gorm:"size:64"`
	ObservedAt  time.Time `gorm:"not null;index:idx_ledger_match,priority:3"`
	Consumed    bool      `gorm:"not null;default:false;index:idx_ledger_match,priority:2"`
	CreatedAt   time.Time
}

func (LedgerRecordModel) TableName() string {
	return "ledger_records"
}
