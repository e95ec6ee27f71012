package store

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/justmeandopensource/cashio-api/internal/models"
	"github.com/justmeandopensource/cashio-api/internal/money"
)

// AssetTypeInput carries the fields for creating a unit of measure.
type AssetTypeInput struct {
	Name        string
	UnitName    string
	UnitSymbol  string
	Description string
}

// AssetTypePatch is a sparse update; nil fields are left untouched.
type AssetTypePatch struct {
	Name        *string
	UnitName    *string
	UnitSymbol  *string
	Description *string
}

// PhysicalAssetInput carries the fields for creating a holding. The
// position always starts at zero; quantity only enters through
// transactions.
type PhysicalAssetInput struct {
	Name        string
	AssetTypeID uint
	Notes       string
}

// PhysicalAssetPatch is a sparse update; nil fields are left untouched.
type PhysicalAssetPatch struct {
	Name        *string
	AssetTypeID *uint
	Notes       *string
}

// CreateAssetType registers a unit of measure in the ledger.
func (s *Store) CreateAssetType(ledgerID uint, in AssetTypeInput) (*models.AssetType, error) {
	if in.Name == "" {
		return nil, validationf("asset type name is required")
	}
	if in.UnitName == "" || in.UnitSymbol == "" {
		return nil, validationf("asset type unit name and symbol are required")
	}
	var at *models.AssetType
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.AssetType{}).
			Where("ledger_id = ? AND name = ?", ledgerID, in.Name).
			Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return validationf("asset type %q already exists in this ledger", in.Name)
		}
		at = &models.AssetType{
			LedgerID:    ledgerID,
			Name:        in.Name,
			UnitName:    in.UnitName,
			UnitSymbol:  in.UnitSymbol,
			Description: in.Description,
		}
		return tx.Create(at).Error
	})
	if err != nil {
		return nil, err
	}
	return at, nil
}

// ListAssetTypes returns the ledger's units of measure.
func (s *Store) ListAssetTypes(ledgerID uint) ([]models.AssetType, error) {
	var types []models.AssetType
	err := s.db.Where("ledger_id = ?", ledgerID).Order("name asc").Find(&types).Error
	if err != nil {
		return nil, err
	}
	return types, nil
}

// UpdateAssetType edits a unit of measure.
func (s *Store) UpdateAssetType(ledgerID, assetTypeID uint, patch AssetTypePatch) (*models.AssetType, error) {
	var at *models.AssetType
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var t models.AssetType
		err := tx.Where("id = ? AND ledger_id = ?", assetTypeID, ledgerID).First(&t).Error
		if isNotFound(err) {
			return notFoundf("asset type not found")
		}
		if err != nil {
			return err
		}
		if patch.Name != nil {
			var count int64
			if err := tx.Model(&models.AssetType{}).
				Where("ledger_id = ? AND name = ? AND id <> ?", ledgerID, *patch.Name, assetTypeID).
				Count(&count).Error; err != nil {
				return err
			}
			if count > 0 {
				return validationf("asset type %q already exists in this ledger", *patch.Name)
			}
			t.Name = *patch.Name
		}
		if patch.UnitName != nil {
			t.UnitName = *patch.UnitName
		}
		if patch.UnitSymbol != nil {
			t.UnitSymbol = *patch.UnitSymbol
		}
		if patch.Description != nil {
			t.Description = *patch.Description
		}
		if err := tx.Save(&t).Error; err != nil {
			return err
		}
		at = &t
		return nil
	})
	if err != nil {
		return nil, err
	}
	return at, nil
}

// DeleteAssetType removes a unit of measure no holding references.
func (s *Store) DeleteAssetType(ledgerID, assetTypeID uint) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		var t models.AssetType
		err := tx.Where("id = ? AND ledger_id = ?", assetTypeID, ledgerID).First(&t).Error
		if isNotFound(err) {
			return notFoundf("asset type not found")
		}
		if err != nil {
			return err
		}
		var count int64
		if err := tx.Model(&models.PhysicalAsset{}).
			Where("asset_type_id = ?", assetTypeID).
			Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return invalidOpf("cannot delete asset type with assets attached")
		}
		return tx.Delete(&t).Error
	})
}

// CreatePhysicalAsset registers a holding with a zeroed position.
func (s *Store) CreatePhysicalAsset(ledgerID uint, in PhysicalAssetInput) (*models.PhysicalAsset, error) {
	if in.Name == "" {
		return nil, validationf("asset name is required")
	}
	var asset *models.PhysicalAsset
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var at models.AssetType
		err := tx.Where("id = ? AND ledger_id = ?", in.AssetTypeID, ledgerID).First(&at).Error
		if isNotFound(err) {
			return notFoundf("asset type not found")
		}
		if err != nil {
			return err
		}
		var count int64
		if err := tx.Model(&models.PhysicalAsset{}).
			Where("ledger_id = ? AND name = ?", ledgerID, in.Name).
			Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return validationf("asset %q already exists in this ledger", in.Name)
		}
		asset = &models.PhysicalAsset{
			LedgerID:    ledgerID,
			AssetTypeID: in.AssetTypeID,
			Name:        in.Name,
			Notes:       in.Notes,
		}
		return tx.Create(asset).Error
	})
	if err != nil {
		return nil, err
	}
	return asset, nil
}

// ListPhysicalAssets returns the ledger's holdings with their types.
func (s *Store) ListPhysicalAssets(ledgerID uint) ([]models.PhysicalAsset, error) {
	var assets []models.PhysicalAsset
	err := s.db.Preload("AssetType").
		Where("ledger_id = ?", ledgerID).
		Order("name asc").
		Find(&assets).Error
	if err != nil {
		return nil, err
	}
	return assets, nil
}

// GetPhysicalAsset fetches a single holding in the ledger.
func (s *Store) GetPhysicalAsset(ledgerID, assetID uint) (*models.PhysicalAsset, error) {
	var asset models.PhysicalAsset
	err := s.db.Preload("AssetType").
		Where("id = ? AND ledger_id = ?", assetID, ledgerID).
		First(&asset).Error
	if isNotFound(err) {
		return nil, notFoundf("physical asset not found")
	}
	if err != nil {
		return nil, err
	}
	return &asset, nil
}

// UpdatePhysicalAsset edits descriptive fields. The position fields are
// owned by the transaction paths and cannot be patched here.
func (s *Store) UpdatePhysicalAsset(ledgerID, assetID uint, patch PhysicalAssetPatch) (*models.PhysicalAsset, error) {
	var asset *models.PhysicalAsset
	err := s.db.Transaction(func(tx *gorm.DB) error {
		a, err := lockPhysicalAsset(tx, ledgerID, assetID)
		if err != nil {
			return err
		}
		if patch.Name != nil {
			var count int64
			if err := tx.Model(&models.PhysicalAsset{}).
				Where("ledger_id = ? AND name = ? AND id <> ?", ledgerID, *patch.Name, assetID).
				Count(&count).Error; err != nil {
				return err
			}
			if count > 0 {
				return validationf("asset %q already exists in this ledger", *patch.Name)
			}
			a.Name = *patch.Name
		}
		if patch.AssetTypeID != nil {
			var at models.AssetType
			err := tx.Where("id = ? AND ledger_id = ?", *patch.AssetTypeID, ledgerID).First(&at).Error
			if isNotFound(err) {
				return notFoundf("asset type not found")
			}
			if err != nil {
				return err
			}
			a.AssetTypeID = *patch.AssetTypeID
		}
		if patch.Notes != nil {
			a.Notes = *patch.Notes
		}
		if err := tx.Save(a).Error; err != nil {
			return err
		}
		asset = a
		return nil
	})
	if err != nil {
		return nil, err
	}
	return asset, nil
}

// DeletePhysicalAsset removes a holding with no transaction history.
func (s *Store) DeletePhysicalAsset(ledgerID, assetID uint) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		asset, err := lockPhysicalAsset(tx, ledgerID, assetID)
		if err != nil {
			return err
		}
		var count int64
		if err := tx.Model(&models.AssetTransaction{}).
			Where("physical_asset_id = ?", assetID).
			Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return invalidOpf("cannot delete asset with transactions; delete its transactions first")
		}
		return tx.Delete(asset).Error
	})
}

// UpdatePhysicalAssetPrice records a fresh market price for a holding
// and revalues the position.
func (s *Store) UpdatePhysicalAssetPrice(ledgerID, assetID uint, price decimal.Decimal) (*models.PhysicalAsset, error) {
	if !money.IsPositive(price) {
		return nil, validationf("price must be positive")
	}
	var asset *models.PhysicalAsset
	err := s.db.Transaction(func(tx *gorm.DB) error {
		a, err := lockPhysicalAsset(tx, ledgerID, assetID)
		if err != nil {
			return err
		}
		now := time.Now().UTC()
		a.LatestPricePerUnit = price
		a.LastPriceUpdate = &now
		a.CurrentValue = a.TotalQuantity.Mul(price)
		a.UpdatedAt = now
		if err := tx.Save(a).Error; err != nil {
			return err
		}
		asset = a
		return nil
	})
	if err != nil {
		return nil, err
	}
	return asset, nil
}

func lockPhysicalAsset(tx *gorm.DB, ledgerID, assetID uint) (*models.PhysicalAsset, error) {
	var asset models.PhysicalAsset
	err := forUpdate(tx).
		Where("id = ? AND ledger_id = ?", assetID, ledgerID).
		First(&asset).Error
	if isNotFound(err) {
		return nil, notFoundf("physical asset not found")
	}
	if err != nil {
		return nil, err
	}
	return &asset, nil
}
