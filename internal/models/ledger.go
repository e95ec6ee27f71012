package models

import "time"

// Ledger is a self-contained book of accounts in a single currency.
// A user can keep several, e.g. one per country or household.
type Ledger struct {
	ID             uint   `gorm:"primaryKey"`
	UserID         uint   `gorm:"index;not null;uniqueIndex:uq_user_ledger_name"`
	Name           string `gorm:"size:100;not null;uniqueIndex:uq_user_ledger_name"`
	Description    string `gorm:"size:100"`
	CurrencySymbol string `gorm:"size:10;not null"`
	Notes          string `gorm:"size:500"`
	CreatedAt      time.Time
	UpdatedAt      time.Time

	Accounts []Account `gorm:"constraint:OnDelete:CASCADE"`
}
