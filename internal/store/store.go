// Package store is the ledger accounting and position-tracking engine.
// Every mutating operation runs as one atomic unit of work: either all
// row writes (transaction, splits, tags, linked financial transactions,
// account balances, fund/asset running totals) commit together, or none
// do.
package store

import (
	"errors"
	"log"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Store exposes the engine operations over a relational database.
type Store struct {
	db *gorm.DB
}

// New returns a Store backed by db.
func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

// forUpdate locks the selected aggregate rows for the duration of the
// unit of work so concurrent read-modify-write of running totals cannot
// race. sqlite has a single writer and rejects the clause, so it is
// skipped there.
func forUpdate(tx *gorm.DB) *gorm.DB {
	if tx.Dialector.Name() == "sqlite" {
		return tx
	}
	return tx.Clauses(clause.Locking{Strength: "UPDATE"})
}

func isNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}

// logConsistency records a consistency defect server-side before it is
// surfaced to the caller.
func logConsistency(err error) error {
	if KindOf(err) == KindConsistency {
		log.Printf("consistency error: %v", err)
	}
	return err
}
