package models

import "time"

// User represents application user.
type User struct {
	ID           uint   `gorm:"primaryKey"`
	FullName     string `gorm:"size:100;not null"`
	Username     string `gorm:"size:50;uniqueIndex;not null"`
	Email        string `gorm:"size:100;uniqueIndex;not null"`
	PasswordHash string `gorm:"size:100;not null"`
	CreatedAt    time.Time
	UpdatedAt    time.Time

	Ledgers    []Ledger   `gorm:"constraint:OnDelete:CASCADE"`
	Categories []Category `gorm:"constraint:OnDelete:CASCADE"`
	Tags       []Tag      `gorm:"constraint:OnDelete:CASCADE"`
}
