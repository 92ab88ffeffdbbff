package migrations

import (
	"gorm.io/gorm"

	"github.com/edupay-lk/edupay/internal/infrastructure/persistence/models"
)

func MigrateVerificationTables(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.ClaimModel{},
		&models.LedgerRecordModel{},
	)
}
