package store

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/justmeandopensource/cashio-api/internal/models"
)

// SplitInput is one category line of a split transaction.
type SplitInput struct {
	CategoryID uint
	Credit     decimal.Decimal
	Debit      decimal.Decimal
	Notes      string
}

// TransactionInput carries the fields for creating a transaction.
type TransactionInput struct {
	AccountID          uint
	CategoryID         *uint
	Type               models.CategoryType
	Credit             decimal.Decimal
	Debit              decimal.Decimal
	Date               time.Time
	Notes              string
	IsSplit            bool
	IsTransfer         bool
	IsAssetTransaction bool
	IsMfTransaction    bool
	TransferID         *string
	TransferType       *models.TransferType
	Splits             []SplitInput
	Tags               []string
}

// TransactionPatch carries optional transaction updates; nil fields are
// left unchanged. A non-nil Splits or Tags replaces the full set.
type TransactionPatch struct {
	CategoryID *uint
	Credit     *decimal.Decimal
	Debit      *decimal.Decimal
	Date       *time.Time
	Notes      *string
	Splits     *[]SplitInput
	Tags       *[]string
}

// TransferInput carries the fields for creating a transfer pair.
type TransferInput struct {
	SourceAccountID      uint
	DestinationAccountID uint
	SourceAmount         decimal.Decimal
	// DestinationAmount must be set for cross-ledger transfers (the
	// currency conversion is caller-supplied) and must be omitted for
	// same-ledger transfers.
	DestinationAmount *decimal.Decimal
	Date              time.Time
	Notes             string
	Tags              []string
}

// TransactionFilter narrows ListTransactions.
type TransactionFilter struct {
	AccountID    *uint
	CategoryID   *uint
	FromDate     *time.Time
	ToDate       *time.Time
	Tags         []string
	TagsMatchAll bool
	SearchText   string
	// Type is "income", "expense" or "transfer"; empty means all.
	Type   string
	Offset int
	// Limit 0 applies the default page size; a negative Limit
	// disables pagination and returns every matching row.
	Limit int
}

// CreateTransaction validates and posts a transaction against a leaf
// account, updating the account balance, splits and tags in one unit of
// work. All validation happens before any row is written.
func (s *Store) CreateTransaction(userID uint, in TransactionInput) (*models.Transaction, error) {
	var t *models.Transaction
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var err error
		t, err = createTransaction(tx, userID, in)
		return err
	})
	if err != nil {
		return nil, err
	}
	return t, nil
}

func createTransaction(tx *gorm.DB, userID uint, in TransactionInput) (*models.Transaction, error) {
	account, err := lockAccount(tx, in.AccountID)
	if err != nil {
		return nil, err
	}
	if account.IsGroup {
		return nil, invalidOpf("operation cannot be performed on group accounts")
	}

	if in.IsSplit {
		if err := validateSplitSums(in.Type, in.Credit, in.Debit, in.Splits); err != nil {
			return nil, err
		}
	}

	t := &models.Transaction{
		AccountID:          in.AccountID,
		CategoryID:         in.CategoryID,
		Credit:             in.Credit,
		Debit:              in.Debit,
		Date:               in.Date,
		Notes:              in.Notes,
		IsSplit:            in.IsSplit,
		IsTransfer:         in.IsTransfer,
		IsAssetTransaction: in.IsAssetTransaction,
		IsMfTransaction:    in.IsMfTransaction,
		TransferID:         in.TransferID,
		TransferType:       in.TransferType,
	}
	if err := tx.Create(t).Error; err != nil {
		return nil, err
	}

	if err := applyToBalance(tx, account, t, false); err != nil {
		return nil, err
	}

	if in.IsSplit {
		for _, sp := range in.Splits {
			split := models.TransactionSplit{
				TransactionID: t.ID,
				CategoryID:    sp.CategoryID,
				Credit:        sp.Credit,
				Debit:         sp.Debit,
				Notes:         sp.Notes,
			}
			if err := tx.Create(&split).Error; err != nil {
				return nil, err
			}
		}
	}

	if len(in.Tags) > 0 {
		tags, err := findOrCreateTags(tx, userID, in.Tags)
		if err != nil {
			return nil, err
		}
		if err := tx.Model(t).Association("Tags").Append(tags); err != nil {
			return nil, err
		}
	}

	return t, nil
}

// validateSplitSums enforces the split-sum invariant: the split credits
// (income) or debits (expense) must sum to the parent's amount.
func validateSplitSums(txType models.CategoryType, credit, debit decimal.Decimal, splits []SplitInput) error {
	var sumCredit, sumDebit decimal.Decimal
	for _, sp := range splits {
		sumCredit = sumCredit.Add(sp.Credit)
		sumDebit = sumDebit.Add(sp.Debit)
	}
	switch txType {
	case models.CategoryTypeIncome:
		if !sumCredit.Equal(credit) {
			return validationf("sum of split credits (%s) does not match transaction credit (%s)", sumCredit, credit)
		}
	case models.CategoryTypeExpense:
		if !sumDebit.Equal(debit) {
			return validationf("sum of split debits (%s) does not match transaction debit (%s)", sumDebit, debit)
		}
	default:
		return validationf("invalid transaction type %q", txType)
	}
	return nil
}

// CreateTransfer posts a linked pair of transactions sharing one
// transfer id: an expense on the source account and an income on the
// destination. Both legs commit together or not at all.
func (s *Store) CreateTransfer(userID uint, in TransferInput) (*models.Transaction, *models.Transaction, error) {
	var source, destination *models.Transaction
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var src, dst models.Account
		if err := forUpdate(tx).Preload("Ledger").First(&src, in.SourceAccountID).Error; err != nil {
			if isNotFound(err) {
				return notFoundf("source or destination account not found")
			}
			return err
		}
		if err := forUpdate(tx).Preload("Ledger").First(&dst, in.DestinationAccountID).Error; err != nil {
			if isNotFound(err) {
				return notFoundf("source or destination account not found")
			}
			return err
		}
		if src.ID == dst.ID {
			return validationf("transferring to the same account is not allowed")
		}
		if src.Ledger.UserID != userID || dst.Ledger.UserID != userID {
			return notFoundf("source or destination account does not belong to the user")
		}
		if src.IsGroup || dst.IsGroup {
			return invalidOpf("operation cannot be performed on group accounts")
		}

		var destinationAmount decimal.Decimal
		if src.LedgerID == dst.LedgerID {
			if in.DestinationAmount != nil {
				return validationf("destination amount must not be provided for same-ledger transfers")
			}
			destinationAmount = in.SourceAmount
		} else {
			if in.DestinationAmount == nil {
				return validationf("destination amount is required for cross-ledger transfers")
			}
			destinationAmount = *in.DestinationAmount
		}
		if in.SourceAmount.Sign() <= 0 || destinationAmount.Sign() <= 0 {
			return validationf("transfer amount must be positive")
		}

		transferID := uuid.NewString()
		sourceType := models.TransferTypeSource
		destinationType := models.TransferTypeDestination

		var err error
		source, err = createTransaction(tx, userID, TransactionInput{
			AccountID:    in.SourceAccountID,
			Type:         models.CategoryTypeExpense,
			Debit:        in.SourceAmount,
			Date:         in.Date,
			Notes:        in.Notes,
			IsTransfer:   true,
			TransferID:   &transferID,
			TransferType: &sourceType,
			Tags:         in.Tags,
		})
		if err != nil {
			return err
		}
		destination, err = createTransaction(tx, userID, TransactionInput{
			AccountID:    in.DestinationAccountID,
			Type:         models.CategoryTypeIncome,
			Credit:       destinationAmount,
			Date:         in.Date,
			Notes:        in.Notes,
			IsTransfer:   true,
			TransferID:   &transferID,
			TransferType: &destinationType,
			Tags:         in.Tags,
		})
		return err
	})
	if err != nil {
		return nil, nil, err
	}
	return source, destination, nil
}

// UpdateTransaction reverses the original balance effect, applies the
// patch (replacing all splits and tags when provided), then reapplies
// the new effect. Applying the new values before reversing the old ones
// would double-count the difference, so the ordering is load-bearing.
func (s *Store) UpdateTransaction(userID, transactionID uint, patch TransactionPatch) (*models.Transaction, error) {
	var t *models.Transaction
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var txn models.Transaction
		err := tx.First(&txn, transactionID).Error
		if isNotFound(err) {
			return notFoundf("transaction not found")
		}
		if err != nil {
			return err
		}

		account, err := ownedAccount(tx, userID, txn.AccountID)
		if err != nil {
			return err
		}

		original := txn
		if err := applyToBalance(tx, account, &original, true); err != nil {
			return err
		}

		if patch.CategoryID != nil {
			txn.CategoryID = patch.CategoryID
		}
		if patch.Credit != nil {
			txn.Credit = *patch.Credit
		}
		if patch.Debit != nil {
			txn.Debit = *patch.Debit
		}
		if patch.Date != nil {
			txn.Date = *patch.Date
		}
		if patch.Notes != nil {
			txn.Notes = *patch.Notes
		}

		if txn.IsSplit && patch.Splits != nil {
			txType := models.CategoryTypeExpense
			if txn.Credit.Sign() > 0 {
				txType = models.CategoryTypeIncome
			}
			if err := validateSplitSums(txType, txn.Credit, txn.Debit, *patch.Splits); err != nil {
				return err
			}
			if err := tx.Where("transaction_id = ?", txn.ID).
				Delete(&models.TransactionSplit{}).Error; err != nil {
				return err
			}
			for _, sp := range *patch.Splits {
				split := models.TransactionSplit{
					TransactionID: txn.ID,
					CategoryID:    sp.CategoryID,
					Credit:        sp.Credit,
					Debit:         sp.Debit,
					Notes:         sp.Notes,
				}
				if err := tx.Create(&split).Error; err != nil {
					return err
				}
			}
		}

		if patch.Tags != nil {
			if err := tx.Model(&txn).Association("Tags").Clear(); err != nil {
				return err
			}
			if len(*patch.Tags) > 0 {
				tags, err := findOrCreateTags(tx, userID, *patch.Tags)
				if err != nil {
					return err
				}
				if err := tx.Model(&txn).Association("Tags").Append(tags); err != nil {
					return err
				}
			}
		}

		if err := tx.Save(&txn).Error; err != nil {
			return err
		}

		if err := applyToBalance(tx, account, &txn, false); err != nil {
			return err
		}
		t = &txn
		return nil
	})
	if err != nil {
		return nil, err
	}
	return t, nil
}

// DeleteTransaction reverses and removes a transaction. For a transfer
// leg, both paired rows are reversed and removed together; a pair that
// is not exactly two rows indicates corruption.
func (s *Store) DeleteTransaction(userID, transactionID uint) error {
	return logConsistency(s.db.Transaction(func(tx *gorm.DB) error {
		var txn models.Transaction
		err := tx.First(&txn, transactionID).Error
		if isNotFound(err) {
			return notFoundf("transaction not found")
		}
		if err != nil {
			return err
		}
		if _, err := ownedAccount(tx, userID, txn.AccountID); err != nil {
			return err
		}

		if txn.IsTransfer {
			var pair []models.Transaction
			if err := tx.Where("transfer_id = ?", txn.TransferID).Find(&pair).Error; err != nil {
				return err
			}
			if len(pair) != 2 {
				return consistencyf("transfer %s has %d rows, want 2", *txn.TransferID, len(pair))
			}
			for i := range pair {
				if err := reverseAndDelete(tx, &pair[i]); err != nil {
					return err
				}
			}
			return nil
		}
		return reverseAndDelete(tx, &txn)
	}))
}

// reverseAndDelete negates a transaction's balance effect and removes
// the row together with its splits and tag links.
func reverseAndDelete(tx *gorm.DB, txn *models.Transaction) error {
	account, err := lockAccount(tx, txn.AccountID)
	if err != nil {
		return err
	}
	if err := applyToBalance(tx, account, txn, true); err != nil {
		return err
	}
	if err := tx.Where("transaction_id = ?", txn.ID).
		Delete(&models.TransactionSplit{}).Error; err != nil {
		return err
	}
	if err := tx.Model(txn).Association("Tags").Clear(); err != nil {
		return err
	}
	return tx.Delete(txn).Error
}

// GetTransaction fetches a transaction with category and tags.
func (s *Store) GetTransaction(transactionID uint) (*models.Transaction, error) {
	var txn models.Transaction
	err := s.db.Preload("Category").Preload("Tags").First(&txn, transactionID).Error
	if isNotFound(err) {
		return nil, notFoundf("transaction not found")
	}
	if err != nil {
		return nil, err
	}
	return &txn, nil
}

// GetSplits returns the split lines of a split transaction.
func (s *Store) GetSplits(transactionID uint) ([]models.TransactionSplit, error) {
	var splits []models.TransactionSplit
	err := s.db.Preload("Category").
		Where("transaction_id = ?", transactionID).
		Find(&splits).Error
	if err != nil {
		return nil, err
	}
	if len(splits) == 0 {
		return nil, notFoundf("no splits found for transaction %d", transactionID)
	}
	return splits, nil
}

// GetTransferPair returns the source and destination legs of a transfer.
func (s *Store) GetTransferPair(transferID string) (*models.Transaction, *models.Transaction, error) {
	if _, err := uuid.Parse(transferID); err != nil {
		return nil, nil, invalidOpf("invalid transfer id %q", transferID)
	}
	var pair []models.Transaction
	if err := s.db.Preload("Account").Where("transfer_id = ?", transferID).Find(&pair).Error; err != nil {
		return nil, nil, err
	}
	if len(pair) != 2 {
		return nil, nil, notFoundf("transfer transactions not found or incomplete")
	}
	var source, destination *models.Transaction
	for i := range pair {
		if pair[i].TransferType == nil {
			continue
		}
		switch *pair[i].TransferType {
		case models.TransferTypeSource:
			source = &pair[i]
		case models.TransferTypeDestination:
			destination = &pair[i]
		}
	}
	if source == nil || destination == nil {
		return nil, nil, logConsistency(consistencyf("transfer %s is missing a source or destination leg", transferID))
	}
	return source, destination, nil
}

// ListTransactions returns a ledger's transactions, newest first,
// narrowed by the filter.
func (s *Store) ListTransactions(ledgerID uint, f TransactionFilter) ([]models.Transaction, error) {
	q := s.listQuery(ledgerID, f).Preload("Category").Preload("Tags").Preload("Account")
	if f.Limit == 0 {
		f.Limit = 50
	}
	q = q.Order("transactions.date desc, transactions.id desc").Offset(f.Offset)
	if f.Limit > 0 {
		q = q.Limit(f.Limit)
	}
	var txns []models.Transaction
	if err := q.Find(&txns).Error; err != nil {
		return nil, err
	}
	return txns, nil
}

// CountTransactions returns the number of transactions matching the
// filter.
func (s *Store) CountTransactions(ledgerID uint, f TransactionFilter) (int64, error) {
	var count int64
	err := s.listQuery(ledgerID, f).
		Distinct("transactions.id").
		Count(&count).Error
	return count, err
}

func (s *Store) listQuery(ledgerID uint, f TransactionFilter) *gorm.DB {
	q := s.db.Model(&models.Transaction{}).
		Joins("JOIN accounts ON accounts.id = transactions.account_id").
		Where("accounts.ledger_id = ?", ledgerID)

	if f.AccountID != nil {
		q = q.Where("transactions.account_id = ?", *f.AccountID)
	}
	if f.CategoryID != nil {
		q = q.Where("transactions.category_id = ?", *f.CategoryID)
	}
	if f.FromDate != nil {
		q = q.Where("transactions.date >= ?", *f.FromDate)
	}
	if f.ToDate != nil {
		q = q.Where("transactions.date <= ?", *f.ToDate)
	}
	if len(f.Tags) > 0 {
		if f.TagsMatchAll {
			for _, tag := range f.Tags {
				q = q.Where(`EXISTS (SELECT 1 FROM transaction_tags tt
					JOIN tags ON tags.id = tt.tag_id
					WHERE tt.transaction_id = transactions.id AND tags.name = ?)`, tag)
			}
		} else {
			q = q.Where(`EXISTS (SELECT 1 FROM transaction_tags tt
				JOIN tags ON tags.id = tt.tag_id
				WHERE tt.transaction_id = transactions.id AND tags.name IN ?)`, f.Tags)
		}
	}
	if f.SearchText != "" {
		like := "%" + f.SearchText + "%"
		q = q.Where(`(transactions.notes LIKE ? OR EXISTS (
			SELECT 1 FROM transaction_splits ts
			WHERE ts.transaction_id = transactions.id AND ts.notes LIKE ?))`, like, like)
	}
	switch f.Type {
	// Amount columns are decimal strings; cast so the sign test is
	// numeric on both dialects.
	case "income":
		q = q.Where("CAST(transactions.credit AS NUMERIC) > 0 AND transactions.is_transfer = ?", false)
	case "expense":
		q = q.Where("CAST(transactions.debit AS NUMERIC) > 0 AND transactions.is_transfer = ?", false)
	case "transfer":
		q = q.Where("transactions.is_transfer = ?", true)
	}
	return q
}

// ownedAccount fetches an account with its ledger, locked for the unit
// of work, verifying it belongs to the user.
func ownedAccount(tx *gorm.DB, userID, accountID uint) (*models.Account, error) {
	var account models.Account
	err := forUpdate(tx).Preload("Ledger").First(&account, accountID).Error
	if isNotFound(err) {
		return nil, notFoundf("account not found")
	}
	if err != nil {
		return nil, err
	}
	if account.Ledger.UserID != userID {
		return nil, notFoundf("account not found")
	}
	return &account, nil
}
