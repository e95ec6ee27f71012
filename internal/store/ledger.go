package store

import (
	"time"

	"gorm.io/gorm"

	"github.com/justmeandopensource/cashio-api/internal/models"
)

// LedgerInput carries the fields for creating a ledger.
type LedgerInput struct {
	Name           string
	Description    string
	CurrencySymbol string
	Notes          string
}

// LedgerPatch carries optional ledger updates.
type LedgerPatch struct {
	Name           *string
	Description    *string
	CurrencySymbol *string
	Notes          *string
}

// CreateLedger creates a ledger for the user; names are unique per user.
func (s *Store) CreateLedger(userID uint, in LedgerInput) (*models.Ledger, error) {
	if in.Name == "" {
		return nil, validationf("ledger name is required")
	}
	if in.CurrencySymbol == "" {
		return nil, validationf("currency symbol is required")
	}

	var ledger *models.Ledger
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.Ledger{}).
			Where("user_id = ? AND name = ?", userID, in.Name).
			Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return validationf("ledger name already exists")
		}
		ledger = &models.Ledger{
			UserID:         userID,
			Name:           in.Name,
			Description:    in.Description,
			CurrencySymbol: in.CurrencySymbol,
			Notes:          in.Notes,
		}
		return tx.Create(ledger).Error
	})
	if err != nil {
		return nil, err
	}
	return ledger, nil
}

// ListLedgers returns the user's ledgers.
func (s *Store) ListLedgers(userID uint) ([]models.Ledger, error) {
	var ledgers []models.Ledger
	err := s.db.Where("user_id = ?", userID).Order("name asc").Find(&ledgers).Error
	if err != nil {
		return nil, err
	}
	return ledgers, nil
}

// GetLedger fetches one of the user's ledgers.
func (s *Store) GetLedger(userID, ledgerID uint) (*models.Ledger, error) {
	var ledger models.Ledger
	err := s.db.Where("id = ? AND user_id = ?", ledgerID, userID).First(&ledger).Error
	if isNotFound(err) {
		return nil, notFoundf("ledger not found")
	}
	if err != nil {
		return nil, err
	}
	return &ledger, nil
}

// UpdateLedger applies a sparse patch to one of the user's ledgers.
func (s *Store) UpdateLedger(userID, ledgerID uint, patch LedgerPatch) (*models.Ledger, error) {
	var ledger *models.Ledger
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var l models.Ledger
		err := tx.Where("id = ? AND user_id = ?", ledgerID, userID).First(&l).Error
		if isNotFound(err) {
			return notFoundf("ledger not found")
		}
		if err != nil {
			return err
		}

		if patch.Name != nil {
			var count int64
			if err := tx.Model(&models.Ledger{}).
				Where("user_id = ? AND name = ? AND id <> ?", userID, *patch.Name, ledgerID).
				Count(&count).Error; err != nil {
				return err
			}
			if count > 0 {
				return validationf("ledger name already exists")
			}
			l.Name = *patch.Name
		}
		if patch.Description != nil {
			l.Description = *patch.Description
		}
		if patch.CurrencySymbol != nil {
			l.CurrencySymbol = *patch.CurrencySymbol
		}
		if patch.Notes != nil {
			l.Notes = *patch.Notes
		}
		l.UpdatedAt = time.Now().UTC()

		if err := tx.Save(&l).Error; err != nil {
			return err
		}
		ledger = &l
		return nil
	})
	if err != nil {
		return nil, err
	}
	return ledger, nil
}
