package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// AssetType is a unit of measure for physical holdings within a ledger,
// e.g. "Gold" measured in grams.
type AssetType struct {
	ID          uint   `gorm:"primaryKey"`
	LedgerID    uint   `gorm:"index;not null;uniqueIndex:uq_ledger_asset_type_name"`
	Name        string `gorm:"size:100;not null;uniqueIndex:uq_ledger_asset_type_name"`
	UnitName    string `gorm:"size:50;not null"`
	UnitSymbol  string `gorm:"size:10;not null"`
	Description string `gorm:"size:500"`
	CreatedAt   time.Time
}

// PhysicalAsset carries the running position state for one physical
// holding. Quantities allow up to six fractional digits; money stays at
// two. Unlike mutual funds there is no switch support, and deletion of
// history is recovered by replaying the remaining transactions.
type PhysicalAsset struct {
	ID                 uint            `gorm:"primaryKey"`
	LedgerID           uint            `gorm:"index;not null;uniqueIndex:uq_ledger_physical_asset_name"`
	AssetTypeID        uint            `gorm:"index;not null"`
	Name               string          `gorm:"size:100;not null;uniqueIndex:uq_ledger_physical_asset_name"`
	TotalQuantity      decimal.Decimal `gorm:"type:text;not null;default:'0'"`
	AverageCostPerUnit decimal.Decimal `gorm:"type:text;not null;default:'0'"`
	LatestPricePerUnit decimal.Decimal `gorm:"type:text;not null;default:'0'"`
	LastPriceUpdate    *time.Time
	CurrentValue       decimal.Decimal `gorm:"type:text;not null;default:'0'"`
	Notes              string          `gorm:"size:500"`
	CreatedAt          time.Time
	UpdatedAt          time.Time

	AssetType AssetType `gorm:"foreignKey:AssetTypeID"`
}

// AssetTransactionType is the closed set of physical asset operations.
type AssetTransactionType string

const (
	AssetTransactionBuy  AssetTransactionType = "buy"
	AssetTransactionSell AssetTransactionType = "sell"
)

// AssetTransaction records one buy/sell of a physical asset and owns
// exactly one linked financial transaction on a ledger account.
type AssetTransaction struct {
	ID                     uint                 `gorm:"primaryKey"`
	LedgerID               uint                 `gorm:"index;not null"`
	PhysicalAssetID        uint                 `gorm:"index;not null"`
	TransactionType        AssetTransactionType `gorm:"size:8;not null"`
	Quantity               decimal.Decimal      `gorm:"type:text;not null"`
	PricePerUnit           decimal.Decimal      `gorm:"type:text;not null"`
	TotalAmount            decimal.Decimal      `gorm:"type:text;not null"`
	AccountID              uint                 `gorm:"index;not null"`
	FinancialTransactionID uint                 `gorm:"not null"`
	TransactionDate        time.Time            `gorm:"index;not null"`
	Notes                  string               `gorm:"size:500"`
	CreatedAt              time.Time

	PhysicalAsset PhysicalAsset `gorm:"foreignKey:PhysicalAssetID"`
	Account       Account       `gorm:"foreignKey:AccountID"`
}
