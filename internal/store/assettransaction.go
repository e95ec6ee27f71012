package store

import (
	"fmt"
	"log"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/justmeandopensource/cashio-api/internal/models"
	"github.com/justmeandopensource/cashio-api/internal/money"
)

// AssetTransactionInput carries the fields for a physical asset buy or
// sell. The total amount is always Quantity x PricePerUnit.
type AssetTransactionInput struct {
	AssetID         uint
	TransactionType models.AssetTransactionType
	Quantity        decimal.Decimal
	PricePerUnit    decimal.Decimal
	AccountID       uint
	Date            time.Time
	Notes           string
}

// CreateAssetTransaction posts a physical asset buy or sell: the asset
// position and the account-side financial transaction move in one unit
// of work. A buy is refused when the funding account's net balance
// cannot cover it.
func (s *Store) CreateAssetTransaction(userID, ledgerID uint, in AssetTransactionInput) (*models.AssetTransaction, error) {
	if in.TransactionType != models.AssetTransactionBuy && in.TransactionType != models.AssetTransactionSell {
		return nil, validationf("transaction type must be buy or sell")
	}
	if !money.IsPositive(in.Quantity) {
		return nil, validationf("quantity must be positive")
	}
	if !money.IsPositive(in.PricePerUnit) {
		return nil, validationf("price per unit must be positive")
	}

	var at *models.AssetTransaction
	err := s.db.Transaction(func(tx *gorm.DB) error {
		asset, err := lockPhysicalAsset(tx, ledgerID, in.AssetID)
		if err != nil {
			return err
		}
		var assetType models.AssetType
		if err := tx.First(&assetType, asset.AssetTypeID).Error; err != nil {
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

		total := in.Quantity.Mul(in.PricePerUnit)

		var fin *models.Transaction
		if in.TransactionType == models.AssetTransactionBuy {
			if account.NetBalance.LessThan(total) {
				return errf(KindInsufficientBalance,
					"insufficient balance: account %q has %s, purchase needs %s",
					account.Name, account.NetBalance, total)
			}
			fin, err = createTransaction(tx, userID, TransactionInput{
				AccountID: in.AccountID,
				Type:      models.CategoryTypeExpense,
				Debit:     total,
				Date:      in.Date,
				Notes: fmt.Sprintf("Physical Asset Buy: %s - %s%s at %s/%s",
					asset.Name, in.Quantity, assetType.UnitSymbol, in.PricePerUnit, assetType.UnitSymbol),
				IsAssetTransaction: true,
			})
		} else {
			if in.Quantity.GreaterThan(asset.TotalQuantity) {
				return errf(KindInsufficientQuantity,
					"insufficient quantity: asset %q holds %s%s, requested %s%s",
					asset.Name, asset.TotalQuantity, assetType.UnitSymbol, in.Quantity, assetType.UnitSymbol)
			}
			fin, err = createTransaction(tx, userID, TransactionInput{
				AccountID: in.AccountID,
				Type:      models.CategoryTypeIncome,
				Credit:    total,
				Date:      in.Date,
				Notes: fmt.Sprintf("Physical Asset Sell: %s - %s%s at %s/%s",
					asset.Name, in.Quantity, assetType.UnitSymbol, in.PricePerUnit, assetType.UnitSymbol),
				IsAssetTransaction: true,
			})
		}
		if err != nil {
			return err
		}

		at = &models.AssetTransaction{
			LedgerID:               ledgerID,
			PhysicalAssetID:        asset.ID,
			TransactionType:        in.TransactionType,
			Quantity:               in.Quantity,
			PricePerUnit:           in.PricePerUnit,
			TotalAmount:            total,
			AccountID:              in.AccountID,
			FinancialTransactionID: fin.ID,
			TransactionDate:        in.Date,
			Notes:                  in.Notes,
		}
		if err := tx.Create(at).Error; err != nil {
			return err
		}

		// The average cost is recomputed on buys and held on sells.
		if in.TransactionType == models.AssetTransactionBuy {
			newQuantity := asset.TotalQuantity.Add(in.Quantity)
			totalCost := asset.TotalQuantity.Mul(asset.AverageCostPerUnit).Add(total)
			asset.AverageCostPerUnit = money.Div(totalCost, newQuantity)
			asset.TotalQuantity = newQuantity
		} else {
			asset.TotalQuantity = asset.TotalQuantity.Sub(in.Quantity)
			if asset.TotalQuantity.IsZero() {
				asset.AverageCostPerUnit = money.Zero
			}
		}
		now := time.Now().UTC()
		asset.LatestPricePerUnit = in.PricePerUnit
		asset.LastPriceUpdate = &in.Date
		asset.CurrentValue = asset.TotalQuantity.Mul(in.PricePerUnit)
		asset.UpdatedAt = now
		return tx.Save(asset).Error
	})
	if err != nil {
		return nil, err
	}
	return at, nil
}

// UpdateAssetTransaction edits the notes of an asset transaction. The
// monetary figures are immutable; correcting them means deleting the
// transaction and recording it again.
func (s *Store) UpdateAssetTransaction(ledgerID, transactionID uint, notes string) (*models.AssetTransaction, error) {
	var at models.AssetTransaction
	err := s.db.Where("id = ? AND ledger_id = ?", transactionID, ledgerID).First(&at).Error
	if isNotFound(err) {
		return nil, notFoundf("asset transaction not found")
	}
	if err != nil {
		return nil, err
	}
	at.Notes = notes
	if err := s.db.Save(&at).Error; err != nil {
		return nil, err
	}
	return &at, nil
}

// DeleteAssetTransaction removes an asset transaction, restores the
// account balance, and rebuilds the asset position by replaying the
// remaining transactions in date order. Replay makes deleting from the
// middle of history converge to the same state as if the transaction
// had never happened.
func (s *Store) DeleteAssetTransaction(userID, ledgerID, transactionID uint) error {
	return logConsistency(s.db.Transaction(func(tx *gorm.DB) error {
		var at models.AssetTransaction
		err := tx.Where("id = ? AND ledger_id = ?", transactionID, ledgerID).First(&at).Error
		if isNotFound(err) {
			return notFoundf("asset transaction not found")
		}
		if err != nil {
			return err
		}

		asset, err := lockPhysicalAsset(tx, ledgerID, at.PhysicalAssetID)
		if err != nil {
			return err
		}

		var fin models.Transaction
		err = tx.First(&fin, at.FinancialTransactionID).Error
		if isNotFound(err) {
			return consistencyf("asset transaction %d references missing financial transaction %d", at.ID, at.FinancialTransactionID)
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
		if err := tx.Delete(&at).Error; err != nil {
			return err
		}

		return replayAssetHistory(tx, asset)
	}))
}

// replayAssetHistory recomputes an asset's position from its remaining
// transactions in chronological order. An oversell uncovered mid-replay
// forces the running position to zero rather than going negative; the
// defect is logged and the replay continues.
func replayAssetHistory(tx *gorm.DB, asset *models.PhysicalAsset) error {
	var history []models.AssetTransaction
	err := tx.Where("physical_asset_id = ?", asset.ID).
		Order("transaction_date asc, created_at asc").
		Find(&history).Error
	if err != nil {
		return err
	}

	quantity := money.Zero
	totalCost := money.Zero
	avg := money.Zero
	for _, h := range history {
		switch h.TransactionType {
		case models.AssetTransactionBuy:
			quantity = quantity.Add(h.Quantity)
			totalCost = totalCost.Add(h.TotalAmount)
			avg = money.Div(totalCost, quantity)
		case models.AssetTransactionSell:
			if quantity.GreaterThanOrEqual(h.Quantity) {
				totalCost = totalCost.Sub(h.Quantity.Mul(avg))
				quantity = quantity.Sub(h.Quantity)
			} else {
				log.Printf("asset %d replay: sell of %s exceeds held %s at transaction %d, forcing position to zero",
					asset.ID, h.Quantity, quantity, h.ID)
				quantity = money.Zero
				totalCost = money.Zero
				avg = money.Zero
			}
		}
		if quantity.Sign() <= 0 {
			quantity = money.Zero
			totalCost = money.Zero
			avg = money.Zero
		}
	}

	asset.TotalQuantity = quantity
	asset.AverageCostPerUnit = avg
	if len(history) > 0 {
		last := history[len(history)-1]
		asset.LatestPricePerUnit = last.PricePerUnit
		asset.LastPriceUpdate = &last.TransactionDate
	} else {
		asset.LatestPricePerUnit = money.Zero
		asset.LastPriceUpdate = nil
	}
	asset.CurrentValue = quantity.Mul(asset.LatestPricePerUnit)
	asset.UpdatedAt = time.Now().UTC()
	return tx.Save(asset).Error
}

// ListAssetTransactions returns an asset's transactions, newest first.
func (s *Store) ListAssetTransactions(ledgerID, assetID uint) ([]models.AssetTransaction, error) {
	var txns []models.AssetTransaction
	err := s.db.Where("ledger_id = ? AND physical_asset_id = ?", ledgerID, assetID).
		Order("transaction_date desc, created_at desc").
		Find(&txns).Error
	if err != nil {
		return nil, err
	}
	return txns, nil
}

// ListLedgerAssetTransactions returns all asset transactions in a
// ledger, newest first.
func (s *Store) ListLedgerAssetTransactions(ledgerID uint) ([]models.AssetTransaction, error) {
	var txns []models.AssetTransaction
	err := s.db.Preload("PhysicalAsset").
		Where("ledger_id = ?", ledgerID).
		Order("transaction_date desc, created_at desc").
		Find(&txns).Error
	if err != nil {
		return nil, err
	}
	return txns, nil
}
