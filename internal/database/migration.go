package database

import (
	"fmt"

	"github.com/justmeandopensource/cashio-api/internal/models"

	"gorm.io/gorm"
)

// AutoMigrate runs database schema migrations for all models.
func AutoMigrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&models.User{},
		&models.Ledger{},
		&models.Account{},
		&models.Category{},
		&models.Transaction{},
		&models.TransactionSplit{},
		&models.Tag{},
		&models.Amc{},
		&models.MutualFund{},
		&models.MfTransaction{},
		&models.AssetType{},
		&models.PhysicalAsset{},
		&models.AssetTransaction{},
		&models.AuditLog{},
	); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	return nil
}
