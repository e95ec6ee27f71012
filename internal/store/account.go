package store

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/justmeandopensource/cashio-api/internal/models"
)

// AccountInput carries the fields for creating an account.
type AccountInput struct {
	Name            string
	Description     string
	Type            models.AccountType
	IsGroup         bool
	OpeningBalance  decimal.Decimal
	ParentAccountID *uint
	Notes           string
}

// AccountPatch carries optional account updates; nil fields are left
// unchanged.
type AccountPatch struct {
	Name            *string
	Description     *string
	OpeningBalance  *decimal.Decimal
	ParentAccountID *uint
	Notes           *string
}

// CreateAccount creates an account in the ledger. A parent, when given,
// must be a group account of the same ledger.
func (s *Store) CreateAccount(ledgerID uint, in AccountInput) (*models.Account, error) {
	if in.Name == "" {
		return nil, validationf("account name is required")
	}
	if !in.Type.Valid() {
		return nil, validationf("invalid account type %q", in.Type)
	}

	var account *models.Account
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.Account{}).
			Where("ledger_id = ? AND name = ?", ledgerID, in.Name).
			Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return validationf("account %q already exists in this ledger", in.Name)
		}

		if in.ParentAccountID != nil {
			var parent models.Account
			err := tx.Where("id = ? AND ledger_id = ?", *in.ParentAccountID, ledgerID).
				First(&parent).Error
			if isNotFound(err) {
				return validationf("parent account must exist in the same ledger")
			}
			if err != nil {
				return err
			}
			if !parent.IsGroup {
				return validationf("parent account must be a group account")
			}
		}

		account = &models.Account{
			LedgerID:        ledgerID,
			ParentAccountID: in.ParentAccountID,
			Name:            in.Name,
			Description:     in.Description,
			Type:            in.Type,
			IsGroup:         in.IsGroup,
			OpeningBalance:  in.OpeningBalance,
			Balance:         decimal.Zero,
			NetBalance:      in.OpeningBalance,
			Notes:           in.Notes,
		}
		return tx.Create(account).Error
	})
	if err != nil {
		return nil, err
	}
	return account, nil
}

// GetAccount fetches one account of the ledger.
func (s *Store) GetAccount(ledgerID, accountID uint) (*models.Account, error) {
	var account models.Account
	err := s.db.Where("id = ? AND ledger_id = ?", accountID, ledgerID).First(&account).Error
	if isNotFound(err) {
		return nil, notFoundf("account not found")
	}
	if err != nil {
		return nil, err
	}
	return &account, nil
}

// ListAccounts returns the ledger's accounts ordered by name, optionally
// filtered by type and with group accounts excluded.
func (s *Store) ListAccounts(ledgerID uint, accountType models.AccountType, ignoreGroup bool) ([]models.Account, error) {
	q := s.db.Where("ledger_id = ?", ledgerID)
	if accountType != "" {
		q = q.Where("type = ?", accountType)
	}
	if ignoreGroup {
		q = q.Where("is_group = ?", false)
	}
	var accounts []models.Account
	if err := q.Order("name asc").Find(&accounts).Error; err != nil {
		return nil, err
	}
	return accounts, nil
}

// UpdateAccount applies a sparse patch. A changed opening balance
// refreshes the net balance.
func (s *Store) UpdateAccount(ledgerID, accountID uint, patch AccountPatch) (*models.Account, error) {
	var account *models.Account
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var a models.Account
		err := forUpdate(tx).Where("id = ? AND ledger_id = ?", accountID, ledgerID).First(&a).Error
		if isNotFound(err) {
			return notFoundf("account not found")
		}
		if err != nil {
			return err
		}

		if patch.ParentAccountID != nil {
			var parent models.Account
			err := tx.Where("id = ? AND ledger_id = ?", *patch.ParentAccountID, ledgerID).
				First(&parent).Error
			if isNotFound(err) {
				return validationf("parent account not found")
			}
			if err != nil {
				return err
			}
			if !parent.IsGroup {
				return validationf("parent account must be a group account")
			}
			a.ParentAccountID = patch.ParentAccountID
		}
		if patch.Name != nil {
			a.Name = *patch.Name
		}
		if patch.Description != nil {
			a.Description = *patch.Description
		}
		if patch.Notes != nil {
			a.Notes = *patch.Notes
		}
		if patch.OpeningBalance != nil {
			a.OpeningBalance = *patch.OpeningBalance
			a.NetBalance = a.OpeningBalance.Add(a.Balance)
		}
		a.UpdatedAt = time.Now().UTC()

		if err := tx.Save(&a).Error; err != nil {
			return err
		}
		account = &a
		return nil
	})
	if err != nil {
		return nil, err
	}
	return account, nil
}

// applyToBalance applies (or, with reverse, exactly negates) the effect
// of t on account and refreshes the net-balance invariant.
//
// Polarity: positive credit with zero debit is income-like, positive
// debit with zero credit is expense-like; both non-zero is invalid. For
// asset accounts credit increases the balance and debit decreases it;
// for liability accounts the sign is inverted.
func applyToBalance(tx *gorm.DB, account *models.Account, t *models.Transaction, reverse bool) error {
	var effect decimal.Decimal
	switch {
	case t.Credit.Sign() > 0 && t.Debit.IsZero():
		effect = t.Credit
	case t.Debit.Sign() > 0 && t.Credit.IsZero():
		effect = t.Debit.Neg()
	default:
		return validationf("invalid transaction: both credit and debit are non-zero")
	}

	if account.Type == models.AccountTypeLiability {
		effect = effect.Neg()
	}
	if reverse {
		effect = effect.Neg()
	}

	account.Balance = account.Balance.Add(effect)
	account.NetBalance = account.OpeningBalance.Add(account.Balance)
	account.UpdatedAt = time.Now().UTC()
	return tx.Save(account).Error
}

// lockAccount fetches an account by id with a row lock for the unit of
// work.
func lockAccount(tx *gorm.DB, accountID uint) (*models.Account, error) {
	var account models.Account
	err := forUpdate(tx).First(&account, accountID).Error
	if isNotFound(err) {
		return nil, notFoundf("account not found")
	}
	if err != nil {
		return nil, err
	}
	return &account, nil
}
