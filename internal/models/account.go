package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// AccountType is the closed set of account classifications. Credit
// increases the balance of an asset account and decreases the balance
// of a liability account; debit is the opposite.
type AccountType string

const (
	AccountTypeAsset     AccountType = "asset"
	AccountTypeLiability AccountType = "liability"
)

// Valid reports whether t is one of the known account types.
func (t AccountType) Valid() bool {
	return t == AccountTypeAsset || t == AccountTypeLiability
}

// Account is a node in a ledger's account tree. Group accounts are pure
// containers and are never transacted against; only leaf accounts carry
// balances that change.
//
// Invariant: NetBalance == OpeningBalance + Balance at all times.
type Account struct {
	ID              uint            `gorm:"primaryKey"`
	LedgerID        uint            `gorm:"index;not null;uniqueIndex:uq_ledger_account_name"`
	ParentAccountID *uint           `gorm:"index"`
	Name            string          `gorm:"size:100;not null;uniqueIndex:uq_ledger_account_name"`
	Description     string          `gorm:"size:100"`
	Type            AccountType     `gorm:"size:16;not null"`
	IsGroup         bool            `gorm:"not null;default:false"`
	OpeningBalance  decimal.Decimal `gorm:"type:text;not null;default:'0'"`
	Balance         decimal.Decimal `gorm:"type:text;not null;default:'0'"`
	NetBalance      decimal.Decimal `gorm:"type:text;not null;default:'0'"`
	Notes           string          `gorm:"size:500"`
	CreatedAt       time.Time
	UpdatedAt       time.Time

	Ledger        Ledger     `gorm:"constraint:OnDelete:CASCADE"`
	ParentAccount *Account   `gorm:"foreignKey:ParentAccountID"`
	ChildAccounts []*Account `gorm:"foreignKey:ParentAccountID"`
}
