package models

import "time"

type ClaimModel struct {
	ID              uint    `gorm:"primaryKey"`
	SID             string  `gorm:"column:sid;uniqueIndex;size:32;not null"`
	SubmitterID     string  `gorm:"index;size:64;not null"`
	SubmitterEmail  string  `gorm:"size:255;not null"`
	ContactNumber   string  `gorm:"size:32"`
	PackageName     string  `gorm:"size:128;not null"`
	ClaimedAmount   int64   `gorm:"not null"`
	ReceiptImageRef string  `gorm:"type:text;not null"`
	Status          string  `gorm:"size:20;not null;index"`
	MatchedLedgerID *string `gorm:"size:32;index"`
	VerifyAttempts  int     `gorm:"not null;default:0"`
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

func (ClaimModel) TableName() string {
	return "payment_claims"
}
