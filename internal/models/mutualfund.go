package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Amc is a fund house (asset management company) within a ledger.
type Amc struct {
	ID        uint   `gorm:"primaryKey"`
	LedgerID  uint   `gorm:"index;not null;uniqueIndex:uq_ledger_amc_name"`
	Name      string `gorm:"size:100;not null;uniqueIndex:uq_ledger_amc_name"`
	Notes     string `gorm:"size:500"`
	CreatedAt time.Time
}

// MutualFund carries the running position state for one fund holding.
// AverageCostPerUnit follows the weighted-average-cost convention:
// recomputed on acquisitions, held constant across disposals.
type MutualFund struct {
	ID                   uint            `gorm:"primaryKey"`
	LedgerID             uint            `gorm:"index;not null;uniqueIndex:uq_ledger_fund_name"`
	AmcID                uint            `gorm:"index;not null"`
	Name                 string          `gorm:"size:100;not null;uniqueIndex:uq_ledger_fund_name"`
	Plan                 string          `gorm:"size:50"`
	Code                 string          `gorm:"size:50"`
	Owner                string          `gorm:"size:100"`
	TotalUnits           decimal.Decimal `gorm:"type:text;not null;default:'0'"`
	AverageCostPerUnit   decimal.Decimal `gorm:"type:text;not null;default:'0'"`
	LatestNav            decimal.Decimal `gorm:"type:text;not null;default:'0'"`
	LastNavUpdate        *time.Time
	CurrentValue         decimal.Decimal `gorm:"type:text;not null;default:'0'"`
	TotalRealizedGain    decimal.Decimal `gorm:"type:text;not null;default:'0'"`
	TotalInvestedCash    decimal.Decimal `gorm:"type:text;not null;default:'0'"`
	ExternalCashInvested decimal.Decimal `gorm:"type:text;not null;default:'0'"`
	Notes                string          `gorm:"size:500"`
	CreatedAt            time.Time
	UpdatedAt            time.Time

	Amc Amc `gorm:"foreignKey:AmcID"`
}

// MfTransactionType is the closed set of mutual fund operations.
// Switches move value between two funds with no external cash; the two
// legs are linked through MfTransaction.LinkedTransactionID.
type MfTransactionType string

const (
	MfTransactionBuy       MfTransactionType = "buy"
	MfTransactionSell      MfTransactionType = "sell"
	MfTransactionSwitchOut MfTransactionType = "switch_out"
	MfTransactionSwitchIn  MfTransactionType = "switch_in"
)

// MfTransaction records one fund operation together with the figures
// needed to reverse it exactly: the cost basis of units disposed and the
// realized gain recognised at that point.
type MfTransaction struct {
	ID                        uint              `gorm:"primaryKey"`
	LedgerID                  uint              `gorm:"index;not null"`
	MutualFundID              uint              `gorm:"index;not null"`
	TransactionType           MfTransactionType `gorm:"size:16;not null"`
	Units                     decimal.Decimal   `gorm:"type:text;not null"`
	NavPerUnit                decimal.Decimal   `gorm:"type:text;not null"`
	TotalAmount               decimal.Decimal   `gorm:"type:text;not null"`
	AmountExcludingCharges    decimal.Decimal   `gorm:"type:text;not null;default:'0'"`
	OtherCharges              decimal.Decimal   `gorm:"type:text;not null;default:'0'"`
	AccountID                 *uint             `gorm:"index"`
	TargetFundID              *uint             `gorm:"index"`
	FinancialTransactionID    *uint
	LinkedChargeTransactionID *uint
	LinkedTransactionID       *uint           `gorm:"index"`
	RealizedGain              decimal.Decimal `gorm:"type:text;not null;default:'0'"`
	CostBasisOfUnitsSold      decimal.Decimal `gorm:"type:text;not null;default:'0'"`
	TransactionDate           time.Time       `gorm:"index;not null"`
	Notes                     string          `gorm:"size:500"`
	CreatedAt                 time.Time

	MutualFund MutualFund `gorm:"foreignKey:MutualFundID"`
}
