package store

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/justmeandopensource/cashio-api/internal/models"
	"github.com/justmeandopensource/cashio-api/internal/money"
)

// MutualFundInput carries the fields for creating a fund. Position
// fields always start at zero; units only enter through transactions.
type MutualFundInput struct {
	Name  string
	AmcID uint
	Plan  string
	Notes string
}

// MutualFundPatch is a sparse update; nil fields are left untouched.
type MutualFundPatch struct {
	Name  *string
	AmcID *uint
	Plan  *string
	Notes *string
}

// NavUpdate pairs a fund with a new NAV for bulk updates.
type NavUpdate struct {
	FundID uint
	Nav    decimal.Decimal
}

// CreateMutualFund registers a fund under an AMC with a zeroed position.
func (s *Store) CreateMutualFund(ledgerID uint, in MutualFundInput) (*models.MutualFund, error) {
	if in.Name == "" {
		return nil, validationf("fund name is required")
	}
	var fund *models.MutualFund
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var amc models.Amc
		err := tx.Where("id = ? AND ledger_id = ?", in.AmcID, ledgerID).First(&amc).Error
		if isNotFound(err) {
			return notFoundf("amc not found")
		}
		if err != nil {
			return err
		}
		var count int64
		if err := tx.Model(&models.MutualFund{}).
			Where("ledger_id = ? AND name = ?", ledgerID, in.Name).
			Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return validationf("fund %q already exists in this ledger", in.Name)
		}
		fund = &models.MutualFund{
			LedgerID: ledgerID,
			AmcID:    in.AmcID,
			Name:     in.Name,
			Plan:     in.Plan,
			Notes:    in.Notes,
		}
		return tx.Create(fund).Error
	})
	if err != nil {
		return nil, err
	}
	return fund, nil
}

// ListMutualFunds returns the ledger's funds with their AMCs.
func (s *Store) ListMutualFunds(ledgerID uint) ([]models.MutualFund, error) {
	var funds []models.MutualFund
	err := s.db.Preload("Amc").
		Where("ledger_id = ?", ledgerID).
		Order("name asc").
		Find(&funds).Error
	if err != nil {
		return nil, err
	}
	return funds, nil
}

// GetMutualFund fetches a single fund in the ledger.
func (s *Store) GetMutualFund(ledgerID, fundID uint) (*models.MutualFund, error) {
	var fund models.MutualFund
	err := s.db.Preload("Amc").
		Where("id = ? AND ledger_id = ?", fundID, ledgerID).
		First(&fund).Error
	if isNotFound(err) {
		return nil, notFoundf("mutual fund not found")
	}
	if err != nil {
		return nil, err
	}
	return &fund, nil
}

// UpdateMutualFund edits descriptive fields. The position fields are
// owned by the transaction paths and cannot be patched here.
func (s *Store) UpdateMutualFund(ledgerID, fundID uint, patch MutualFundPatch) (*models.MutualFund, error) {
	var fund *models.MutualFund
	err := s.db.Transaction(func(tx *gorm.DB) error {
		f, err := lockFund(tx, ledgerID, fundID)
		if err != nil {
			return err
		}
		if patch.Name != nil {
			var count int64
			if err := tx.Model(&models.MutualFund{}).
				Where("ledger_id = ? AND name = ? AND id <> ?", ledgerID, *patch.Name, fundID).
				Count(&count).Error; err != nil {
				return err
			}
			if count > 0 {
				return validationf("fund %q already exists in this ledger", *patch.Name)
			}
			f.Name = *patch.Name
		}
		if patch.AmcID != nil {
			var amc models.Amc
			err := tx.Where("id = ? AND ledger_id = ?", *patch.AmcID, ledgerID).First(&amc).Error
			if isNotFound(err) {
				return notFoundf("amc not found")
			}
			if err != nil {
				return err
			}
			f.AmcID = *patch.AmcID
		}
		if patch.Plan != nil {
			f.Plan = *patch.Plan
		}
		if patch.Notes != nil {
			f.Notes = *patch.Notes
		}
		if err := tx.Save(f).Error; err != nil {
			return err
		}
		fund = f
		return nil
	})
	if err != nil {
		return nil, err
	}
	return fund, nil
}

// DeleteMutualFund removes a fund whose position is fully exited.
func (s *Store) DeleteMutualFund(ledgerID, fundID uint) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		fund, err := lockFund(tx, ledgerID, fundID)
		if err != nil {
			return err
		}
		if !fund.TotalUnits.IsZero() {
			return invalidOpf("cannot delete fund with units held")
		}
		if err := tx.Where("mutual_fund_id = ?", fundID).Delete(&models.MfTransaction{}).Error; err != nil {
			return err
		}
		return tx.Delete(fund).Error
	})
}

// UpdateNav records a fresh NAV for a fund and revalues the position.
func (s *Store) UpdateNav(ledgerID, fundID uint, nav decimal.Decimal) (*models.MutualFund, error) {
	var fund *models.MutualFund
	err := s.db.Transaction(func(tx *gorm.DB) error {
		f, err := lockFund(tx, ledgerID, fundID)
		if err != nil {
			return err
		}
		if err := setNav(tx, f, nav, time.Now().UTC()); err != nil {
			return err
		}
		fund = f
		return nil
	})
	if err != nil {
		return nil, err
	}
	return fund, nil
}

// BulkUpdateNav applies NAV updates to several funds atomically. A bad
// entry fails the whole batch.
func (s *Store) BulkUpdateNav(ledgerID uint, updates []NavUpdate) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		now := time.Now().UTC()
		for _, u := range updates {
			fund, err := lockFund(tx, ledgerID, u.FundID)
			if err != nil {
				return err
			}
			if err := setNav(tx, fund, u.Nav, now); err != nil {
				return err
			}
		}
		return nil
	})
}

func setNav(tx *gorm.DB, fund *models.MutualFund, nav decimal.Decimal, at time.Time) error {
	if !money.IsPositive(nav) {
		return validationf("nav must be positive")
	}
	fund.LatestNav = nav
	fund.LastNavUpdate = &at
	fund.CurrentValue = fund.TotalUnits.Mul(nav)
	fund.UpdatedAt = at
	return tx.Save(fund).Error
}

func lockFund(tx *gorm.DB, ledgerID, fundID uint) (*models.MutualFund, error) {
	var fund models.MutualFund
	err := forUpdate(tx).
		Where("id = ? AND ledger_id = ?", fundID, ledgerID).
		First(&fund).Error
	if isNotFound(err) {
		return nil, notFoundf("mutual fund not found")
	}
	if err != nil {
		return nil, err
	}
	return &fund, nil
}

// applyFundUnits shifts a fund's position by unitsDelta units costing
// cashDelta. The average cost is always recomputed from the implied
// total cost, so reversing a buy with negated deltas restores the
// previous average exactly, and a sell passed with cashDelta equal to
// the negated cost basis leaves the average unchanged.
func applyFundUnits(tx *gorm.DB, fund *models.MutualFund, unitsDelta, cashDelta decimal.Decimal) error {
	newUnits := fund.TotalUnits.Add(unitsDelta)
	if newUnits.IsNegative() {
		return errf(KindInsufficientUnits,
			"insufficient units: fund %q holds %s, requested %s",
			fund.Name, fund.TotalUnits, unitsDelta.Neg())
	}
	var avg decimal.Decimal
	if newUnits.IsZero() {
		avg = money.Zero
	} else {
		totalCost := fund.TotalUnits.Mul(fund.AverageCostPerUnit).Add(cashDelta)
		avg = money.Div(totalCost, newUnits)
	}
	fund.TotalUnits = newUnits
	fund.AverageCostPerUnit = avg
	fund.CurrentValue = newUnits.Mul(fund.LatestNav)
	fund.UpdatedAt = time.Now().UTC()
	return tx.Save(fund).Error
}
