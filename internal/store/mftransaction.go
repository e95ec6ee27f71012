package store

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/justmeandopensource/cashio-api/internal/models"
	"github.com/justmeandopensource/cashio-api/internal/money"
)

// MfTransactionInput carries the fields for a fund buy or sell. The
// NAV is derived from AmountExcludingCharges / Units rather than taken
// from the caller, so the recorded figures always agree.
type MfTransactionInput struct {
	FundID                 uint
	TransactionType        models.MfTransactionType
	Units                  decimal.Decimal
	AmountExcludingCharges decimal.Decimal
	OtherCharges           decimal.Decimal
	AccountID              uint
	// ExpenseCategoryID categorises the charge transaction; required
	// whenever OtherCharges is positive.
	ExpenseCategoryID *uint
	Date              time.Time
	Notes             string
}

// SwitchInput moves value between two funds in the same ledger with no
// external cash.
type SwitchInput struct {
	SourceFundID uint
	TargetFundID uint
	Units        decimal.Decimal
	SourceNav    decimal.Decimal
	TargetNav    decimal.Decimal
	Date         time.Time
	Notes        string
}

// CreateMfTransaction posts a fund buy or sell: the fund position, the
// account-side financial transaction and the optional charge
// transaction all move in one unit of work. Switches go through
// SwitchFunds.
func (s *Store) CreateMfTransaction(userID, ledgerID uint, in MfTransactionInput) (*models.MfTransaction, error) {
	if in.TransactionType != models.MfTransactionBuy && in.TransactionType != models.MfTransactionSell {
		return nil, validationf("transaction type must be buy or sell")
	}
	if !money.IsPositive(in.Units) {
		return nil, validationf("units must be positive")
	}
	if !money.IsPositive(in.AmountExcludingCharges) {
		return nil, validationf("amount excluding charges must be positive")
	}
	if in.OtherCharges.IsNegative() {
		return nil, validationf("other charges cannot be negative")
	}
	if money.IsPositive(in.OtherCharges) && in.ExpenseCategoryID == nil {
		return nil, validationf("an expense category is required when other charges are present")
	}

	var mft *models.MfTransaction
	err := s.db.Transaction(func(tx *gorm.DB) error {
		fund, err := lockFund(tx, ledgerID, in.FundID)
		if err != nil {
			return err
		}
		account, err := lockAccount(tx, in.AccountID)
		if err != nil {
			return err
		}
		if account.LedgerID != ledgerID {
			return notFoundf("account not found in this ledger")
		}
		if account.IsGroup {
			return invalidOpf("operation cannot be performed on group accounts")
		}
		if in.ExpenseCategoryID != nil {
			if _, err := categoryOfType(tx, userID, *in.ExpenseCategoryID, models.CategoryTypeExpense); err != nil {
				return err
			}
		}

		nav := money.Div(in.AmountExcludingCharges, in.Units)
		var total decimal.Decimal
		if in.TransactionType == models.MfTransactionBuy {
			total = in.AmountExcludingCharges.Add(in.OtherCharges)
		} else {
			if in.Units.GreaterThan(fund.TotalUnits) {
				return errf(KindInsufficientUnits,
					"insufficient units: fund %q holds %s, requested %s",
					fund.Name, fund.TotalUnits, in.Units)
			}
			total = in.AmountExcludingCharges.Sub(in.OtherCharges)
		}

		mft = &models.MfTransaction{
			LedgerID:               ledgerID,
			MutualFundID:           fund.ID,
			TransactionType:        in.TransactionType,
			Units:                  in.Units,
			NavPerUnit:             nav,
			TotalAmount:            total,
			AmountExcludingCharges: in.AmountExcludingCharges,
			OtherCharges:           in.OtherCharges,
			AccountID:              &in.AccountID,
			TransactionDate:        in.Date,
			Notes:                  in.Notes,
		}

		var fin *models.Transaction
		if in.TransactionType == models.MfTransactionBuy {
			fin, err = createTransaction(tx, userID, TransactionInput{
				AccountID:       in.AccountID,
				Type:            models.CategoryTypeExpense,
				Debit:           in.AmountExcludingCharges,
				Date:            in.Date,
				Notes:           fmt.Sprintf("MF Buy: %s - %s units at NAV %s", fund.Name, in.Units, nav),
				IsMfTransaction: true,
			})
		} else {
			fin, err = createTransaction(tx, userID, TransactionInput{
				AccountID:       in.AccountID,
				Type:            models.CategoryTypeIncome,
				Credit:          in.AmountExcludingCharges,
				Date:            in.Date,
				Notes:           fmt.Sprintf("MF Sell: %s - %s units at NAV %s", fund.Name, in.Units, nav),
				IsMfTransaction: true,
			})
		}
		if err != nil {
			return err
		}
		mft.FinancialTransactionID = &fin.ID

		if money.IsPositive(in.OtherCharges) {
			charge, err := createTransaction(tx, userID, TransactionInput{
				AccountID:       in.AccountID,
				CategoryID:      in.ExpenseCategoryID,
				Type:            models.CategoryTypeExpense,
				Debit:           in.OtherCharges,
				Date:            in.Date,
				Notes:           fmt.Sprintf("MF Charges: %s", fund.Name),
				IsMfTransaction: true,
			})
			if err != nil {
				return err
			}
			mft.LinkedChargeTransactionID = &charge.ID
		}

		fund.LatestNav = nav
		fund.LastNavUpdate = &in.Date
		if in.TransactionType == models.MfTransactionBuy {
			fund.TotalInvestedCash = fund.TotalInvestedCash.Add(in.AmountExcludingCharges)
			fund.ExternalCashInvested = fund.ExternalCashInvested.Add(in.AmountExcludingCharges)
			if err := applyFundUnits(tx, fund, in.Units, in.AmountExcludingCharges); err != nil {
				return err
			}
		} else {
			costBasis := in.Units.Mul(fund.AverageCostPerUnit)
			mft.CostBasisOfUnitsSold = costBasis
			mft.RealizedGain = total.Sub(costBasis)
			fund.TotalRealizedGain = fund.TotalRealizedGain.Add(mft.RealizedGain)
			fund.TotalInvestedCash = fund.TotalInvestedCash.Sub(costBasis)
			fund.ExternalCashInvested = fund.ExternalCashInvested.Sub(costBasis)
			if err := applyFundUnits(tx, fund, in.Units.Neg(), costBasis.Neg()); err != nil {
				return err
			}
		}

		return tx.Create(mft).Error
	})
	if err != nil {
		return nil, err
	}
	return mft, nil
}

// SwitchFunds realizes the gain on the source fund at its NAV and
// transplants the market value into the target fund as its new cost
// basis. The two legs reference each other and are created, and later
// deleted, as one aggregate.
func (s *Store) SwitchFunds(ledgerID uint, in SwitchInput) (*models.MfTransaction, *models.MfTransaction, error) {
	if in.SourceFundID == in.TargetFundID {
		return nil, nil, validationf("cannot switch a fund into itself")
	}
	if !money.IsPositive(in.Units) {
		return nil, nil, validationf("units must be positive")
	}
	if !money.IsPositive(in.SourceNav) || !money.IsPositive(in.TargetNav) {
		return nil, nil, validationf("nav must be positive")
	}

	var out, into *models.MfTransaction
	err := s.db.Transaction(func(tx *gorm.DB) error {
		source, err := lockFund(tx, ledgerID, in.SourceFundID)
		if err != nil {
			return err
		}
		target, err := lockFund(tx, ledgerID, in.TargetFundID)
		if err != nil {
			return err
		}
		if in.Units.GreaterThan(source.TotalUnits) {
			return errf(KindInsufficientUnits,
				"insufficient units: fund %q holds %s, requested %s",
				source.Name, source.TotalUnits, in.Units)
		}

		costBasis := in.Units.Mul(source.AverageCostPerUnit)
		valueOut := in.Units.Mul(in.SourceNav)
		realized := valueOut.Sub(costBasis)
		unitsIn := money.Div(valueOut, in.TargetNav)

		out = &models.MfTransaction{
			LedgerID:             ledgerID,
			MutualFundID:         source.ID,
			TransactionType:      models.MfTransactionSwitchOut,
			Units:                in.Units,
			NavPerUnit:           in.SourceNav,
			TotalAmount:          valueOut,
			TargetFundID:         &target.ID,
			RealizedGain:         realized,
			CostBasisOfUnitsSold: costBasis,
			TransactionDate:      in.Date,
			Notes:                in.Notes,
		}
		if err := tx.Create(out).Error; err != nil {
			return err
		}

		into = &models.MfTransaction{
			LedgerID:            ledgerID,
			MutualFundID:        target.ID,
			TransactionType:     models.MfTransactionSwitchIn,
			Units:               unitsIn,
			NavPerUnit:          in.TargetNav,
			TotalAmount:         valueOut,
			TargetFundID:        &source.ID,
			LinkedTransactionID: &out.ID,
			TransactionDate:     in.Date,
			Notes:               in.Notes,
		}
		if err := tx.Create(into).Error; err != nil {
			return err
		}
		out.LinkedTransactionID = &into.ID
		if err := tx.Save(out).Error; err != nil {
			return err
		}

		source.LatestNav = in.SourceNav
		source.LastNavUpdate = &in.Date
		source.TotalRealizedGain = source.TotalRealizedGain.Add(realized)
		source.TotalInvestedCash = source.TotalInvestedCash.Sub(costBasis)
		if err := applyFundUnits(tx, source, in.Units.Neg(), costBasis.Neg()); err != nil {
			return err
		}

		target.LatestNav = in.TargetNav
		target.LastNavUpdate = &in.Date
		target.TotalInvestedCash = target.TotalInvestedCash.Add(valueOut)
		return applyFundUnits(tx, target, unitsIn, valueOut)
	})
	if err != nil {
		return nil, nil, err
	}
	return out, into, nil
}

// UpdateMfTransaction edits the notes of a fund transaction. The
// monetary figures are immutable; correcting them means deleting the
// transaction and recording it again.
func (s *Store) UpdateMfTransaction(ledgerID, transactionID uint, notes string) (*models.MfTransaction, error) {
	var mft models.MfTransaction
	err := s.db.Where("id = ? AND ledger_id = ?", transactionID, ledgerID).First(&mft).Error
	if isNotFound(err) {
		return nil, notFoundf("mutual fund transaction not found")
	}
	if err != nil {
		return nil, err
	}
	mft.Notes = notes
	if err := s.db.Save(&mft).Error; err != nil {
		return nil, err
	}
	return &mft, nil
}

// DeleteMfTransaction reverses a fund transaction's effect on the fund
// position and the account, then removes it. Deleting either leg of a
// switch reverses and removes both legs.
func (s *Store) DeleteMfTransaction(userID, ledgerID, transactionID uint) error {
	return logConsistency(s.db.Transaction(func(tx *gorm.DB) error {
		var mft models.MfTransaction
		err := tx.Where("id = ? AND ledger_id = ?", transactionID, ledgerID).First(&mft).Error
		if isNotFound(err) {
			return notFoundf("mutual fund transaction not found")
		}
		if err != nil {
			return err
		}
		if err := reverseMfTransaction(tx, userID, &mft); err != nil {
			return err
		}
		if mft.LinkedTransactionID != nil {
			var linked models.MfTransaction
			err := tx.Where("id = ? AND ledger_id = ?", *mft.LinkedTransactionID, ledgerID).First(&linked).Error
			if isNotFound(err) {
				return consistencyf("switch transaction %d is missing its linked leg %d", mft.ID, *mft.LinkedTransactionID)
			}
			if err != nil {
				return err
			}
			if err := reverseMfTransaction(tx, userID, &linked); err != nil {
				return err
			}
			if err := tx.Delete(&linked).Error; err != nil {
				return err
			}
		}
		return tx.Delete(&mft).Error
	}))
}

// reverseMfTransaction undoes one transaction's effect on its fund and
// deletes the financial and charge transactions it created, restoring
// the account balance.
func reverseMfTransaction(tx *gorm.DB, userID uint, mft *models.MfTransaction) error {
	fund, err := lockFund(tx, mft.LedgerID, mft.MutualFundID)
	if err != nil {
		return err
	}

	switch mft.TransactionType {
	case models.MfTransactionBuy:
		fund.TotalInvestedCash = fund.TotalInvestedCash.Sub(mft.AmountExcludingCharges)
		fund.ExternalCashInvested = fund.ExternalCashInvested.Sub(mft.AmountExcludingCharges)
		if err := applyFundUnits(tx, fund, mft.Units.Neg(), mft.AmountExcludingCharges.Neg()); err != nil {
			return err
		}
	case models.MfTransactionSell:
		fund.TotalRealizedGain = fund.TotalRealizedGain.Sub(mft.RealizedGain)
		fund.TotalInvestedCash = fund.TotalInvestedCash.Add(mft.CostBasisOfUnitsSold)
		fund.ExternalCashInvested = fund.ExternalCashInvested.Add(mft.CostBasisOfUnitsSold)
		if err := applyFundUnits(tx, fund, mft.Units, mft.CostBasisOfUnitsSold); err != nil {
			return err
		}
	case models.MfTransactionSwitchOut:
		fund.TotalRealizedGain = fund.TotalRealizedGain.Sub(mft.RealizedGain)
		fund.TotalInvestedCash = fund.TotalInvestedCash.Add(mft.CostBasisOfUnitsSold)
		if err := applyFundUnits(tx, fund, mft.Units, mft.CostBasisOfUnitsSold); err != nil {
			return err
		}
	case models.MfTransactionSwitchIn:
		// The transplanted basis of a switch-in is the market value
		// switched out, carried in TotalAmount.
		fund.TotalInvestedCash = fund.TotalInvestedCash.Sub(mft.TotalAmount)
		if err := applyFundUnits(tx, fund, mft.Units.Neg(), mft.TotalAmount.Neg()); err != nil {
			return err
		}
	default:
		return consistencyf("mutual fund transaction %d has unknown type %q", mft.ID, mft.TransactionType)
	}

	for _, id := range []*uint{mft.FinancialTransactionID, mft.LinkedChargeTransactionID} {
		if id == nil {
			continue
		}
		var fin models.Transaction
		err := tx.First(&fin, *id).Error
		if isNotFound(err) {
			return consistencyf("mutual fund transaction %d references missing financial transaction %d", mft.ID, *id)
		}
		if err != nil {
			return err
		}
		if _, err := ownedAccount(tx, userID, fin.AccountID); err != nil {
			return err
		}
		if err := reverseAndDelete(tx, &fin); err != nil {
			return err
		}
	}
	return nil
}

// ListMfTransactions returns a fund's transactions, newest first.
func (s *Store) ListMfTransactions(ledgerID, fundID uint) ([]models.MfTransaction, error) {
	var txns []models.MfTransaction
	err := s.db.Where("ledger_id = ? AND mutual_fund_id = ?", ledgerID, fundID).
		Order("transaction_date desc, created_at desc").
		Find(&txns).Error
	if err != nil {
		return nil, err
	}
	return txns, nil
}

// ListLedgerMfTransactions returns all fund transactions in a ledger,
// newest first.
func (s *Store) ListLedgerMfTransactions(ledgerID uint) ([]models.MfTransaction, error) {
	var txns []models.MfTransaction
	err := s.db.Preload("MutualFund").
		Where("ledger_id = ?", ledgerID).
		Order("transaction_date desc, created_at desc").
		Find(&txns).Error
	if err != nil {
		return nil, err
	}
	return txns, nil
}
