package store

import (
	"gorm.io/gorm"

	"github.com/justmeandopensource/cashio-api/internal/models"
)

// CreateAmc creates a fund house in the ledger; names are unique per
// ledger.
func (s *Store) CreateAmc(ledgerID uint, name, notes string) (*models.Amc, error) {
	if name == "" {
		return nil, validationf("amc name is required")
	}
	var amc *models.Amc
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.Amc{}).
			Where("ledger_id = ? AND name = ?", ledgerID, name).
			Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return validationf("amc %q already exists in this ledger", name)
		}
		amc = &models.Amc{LedgerID: ledgerID, Name: name, Notes: notes}
		return tx.Create(amc).Error
	})
	if err != nil {
		return nil, err
	}
	return amc, nil
}

// ListAmcs returns the ledger's fund houses.
func (s *Store) ListAmcs(ledgerID uint) ([]models.Amc, error) {
	var amcs []models.Amc
	err := s.db.Where("ledger_id = ?", ledgerID).Order("name asc").Find(&amcs).Error
	if err != nil {
		return nil, err
	}
	return amcs, nil
}

// UpdateAmc renames a fund house or updates its notes.
func (s *Store) UpdateAmc(ledgerID, amcID uint, name, notes *string) (*models.Amc, error) {
	var amc *models.Amc
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var a models.Amc
		err := tx.Where("id = ? AND ledger_id = ?", amcID, ledgerID).First(&a).Error
		if isNotFound(err) {
			return notFoundf("amc not found")
		}
		if err != nil {
			return err
		}
		if name != nil {
			var count int64
			if err := tx.Model(&models.Amc{}).
				Where("ledger_id = ? AND name = ? AND id <> ?", ledgerID, *name, amcID).
				Count(&count).Error; err != nil {
				return err
			}
			if count > 0 {
				return validationf("amc %q already exists in this ledger", *name)
			}
			a.Name = *name
		}
		if notes != nil {
			a.Notes = *notes
		}
		if err := tx.Save(&a).Error; err != nil {
			return err
		}
		amc = &a
		return nil
	})
	if err != nil {
		return nil, err
	}
	return amc, nil
}

// DeleteAmc removes a fund house that no fund references.
func (s *Store) DeleteAmc(ledgerID, amcID uint) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		var a models.Amc
		err := tx.Where("id = ? AND ledger_id = ?", amcID, ledgerID).First(&a).Error
		if isNotFound(err) {
			return notFoundf("amc not found")
		}
		if err != nil {
			return err
		}
		var count int64
		if err := tx.Model(&models.MutualFund{}).
			Where("amc_id = ?", amcID).
			Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return invalidOpf("cannot delete amc with funds attached")
		}
		return tx.Delete(&a).Error
	})
}
