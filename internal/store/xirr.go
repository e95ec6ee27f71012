package store

import (
	"time"

	"github.com/justmeandopensource/cashio-api/internal/models"
	"github.com/justmeandopensource/cashio-api/internal/xirr"
)

// FundXirr computes the annualised return of a fund holding from its
// transaction history plus the current value as a terminal inflow.
// Buys and switch-ins are money invested; sells and switch-outs are
// money received. Charges stay out of the buy/sell flows, while switch
// legs carry no charges and flow at full market value.
func (s *Store) FundXirr(ledgerID, fundID uint, asOf time.Time) (float64, error) {
	fund, err := s.GetMutualFund(ledgerID, fundID)
	if err != nil {
		return 0, err
	}
	var txns []models.MfTransaction
	err = s.db.Where("ledger_id = ? AND mutual_fund_id = ?", ledgerID, fundID).
		Order("transaction_date asc").
		Find(&txns).Error
	if err != nil {
		return 0, err
	}

	var flows []xirr.CashFlow
	for _, t := range txns {
		switch t.TransactionType {
		case models.MfTransactionBuy:
			flows = append(flows, xirr.CashFlow{Date: t.TransactionDate, Amount: -t.AmountExcludingCharges.InexactFloat64()})
		case models.MfTransactionSell:
			flows = append(flows, xirr.CashFlow{Date: t.TransactionDate, Amount: t.AmountExcludingCharges.InexactFloat64()})
		case models.MfTransactionSwitchIn:
			flows = append(flows, xirr.CashFlow{Date: t.TransactionDate, Amount: -t.TotalAmount.InexactFloat64()})
		case models.MfTransactionSwitchOut:
			flows = append(flows, xirr.CashFlow{Date: t.TransactionDate, Amount: t.TotalAmount.InexactFloat64()})
		}
	}
	if v := fund.CurrentValue.InexactFloat64(); v > 0 {
		flows = append(flows, xirr.CashFlow{Date: asOf, Amount: v})
	}
	return xirr.Calculate(flows), nil
}

// AssetXirr computes the annualised return of a physical asset holding
// from its transaction history plus the current value as a terminal
// inflow.
func (s *Store) AssetXirr(ledgerID, assetID uint, asOf time.Time) (float64, error) {
	asset, err := s.GetPhysicalAsset(ledgerID, assetID)
	if err != nil {
		return 0, err
	}
	var txns []models.AssetTransaction
	err = s.db.Where("ledger_id = ? AND physical_asset_id = ?", ledgerID, assetID).
		Order("transaction_date asc").
		Find(&txns).Error
	if err != nil {
		return 0, err
	}

	var flows []xirr.CashFlow
	for _, t := range txns {
		switch t.TransactionType {
		case models.AssetTransactionBuy:
			flows = append(flows, xirr.CashFlow{Date: t.TransactionDate, Amount: -t.TotalAmount.InexactFloat64()})
		case models.AssetTransactionSell:
			flows = append(flows, xirr.CashFlow{Date: t.TransactionDate, Amount: t.TotalAmount.InexactFloat64()})
		}
	}
	if v := asset.CurrentValue.InexactFloat64(); v > 0 {
		flows = append(flows, xirr.CashFlow{Date: asOf, Amount: v})
	}
	return xirr.Calculate(flows), nil
}
