package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransferType marks which leg of a transfer pair a transaction is.
type TransferType string

const (
	TransferTypeSource      TransferType = "source"
	TransferTypeDestination TransferType = "destination"
)

// Transaction is a single posting against one leaf account. Exactly one
// of Credit/Debit is non-zero for a valid transaction. Transfer legs
// share a TransferID; split transactions own a set of TransactionSplit
// rows whose credits (income) or debits (expense) sum to the parent's.
type Transaction struct {
	ID                 uint            `gorm:"primaryKey"`
	AccountID          uint            `gorm:"index:idx_transactions_account_id;index:idx_transactions_account_id_date;not null"`
	CategoryID         *uint           `gorm:"index"`
	Credit             decimal.Decimal `gorm:"type:text;not null;default:'0'"`
	Debit              decimal.Decimal `gorm:"type:text;not null;default:'0'"`
	Date               time.Time       `gorm:"index:idx_transactions_date;index:idx_transactions_account_id_date;not null"`
	Notes              string          `gorm:"size:500"`
	IsSplit            bool            `gorm:"not null;default:false"`
	IsTransfer         bool            `gorm:"not null;default:false"`
	IsAssetTransaction bool            `gorm:"not null;default:false"`
	IsMfTransaction    bool            `gorm:"not null;default:false"`
	TransferID         *string         `gorm:"size:36;index"`
	TransferType       *TransferType   `gorm:"size:16"`
	CreatedAt          time.Time

	Account  Account            `gorm:"constraint:OnDelete:CASCADE"`
	Category *Category          `gorm:"foreignKey:CategoryID"`
	Splits   []TransactionSplit `gorm:"constraint:OnDelete:CASCADE"`
	Tags     []Tag              `gorm:"many2many:transaction_tags;constraint:OnDelete:CASCADE"`
}

// TransactionSplit is one category line of a split transaction. Splits
// are exclusively owned by their parent and cascade-deleted with it.
type TransactionSplit struct {
	ID            uint            `gorm:"primaryKey"`
	TransactionID uint            `gorm:"index;not null"`
	CategoryID    uint            `gorm:"not null"`
	Credit        decimal.Decimal `gorm:"type:text;not null;default:'0'"`
	Debit         decimal.Decimal `gorm:"type:text;not null;default:'0'"`
	Notes         string          `gorm:"size:500"`

	Category Category `gorm:"foreignKey:CategoryID"`
}

// Tag is a free-form label scoped to a user and shared across ledgers.
type Tag struct {
	ID     uint   `gorm:"primaryKey"`
	UserID uint   `gorm:"index;not null;uniqueIndex:uq_user_tag_name"`
	Name   string `gorm:"size:50;not null;uniqueIndex:uq_user_tag_name"`
}
