package store

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/justmeandopensource/cashio-api/internal/models"
)

func TestCreateTransactionRejectsBothSides(t *testing.T) {
	f := newFixture(t)

	_, err := f.store.CreateTransaction(f.user.ID, TransactionInput{
		AccountID: f.checking.ID,
		Type:      models.CategoryTypeExpense,
		Credit:    dec("10"),
		Debit:     dec("10"),
		Date:      day("2025-01-10"),
	})
	require.Equal(t, KindValidation, KindOf(err))

	// nothing was written
	var count int64
	require.NoError(t, f.db.Model(&models.Transaction{}).Count(&count).Error)
	require.Zero(t, count)
}

func TestSplitSumsMustMatchParent(t *testing.T) {
	f := newFixture(t)

	_, err := f.store.CreateTransaction(f.user.ID, TransactionInput{
		AccountID: f.checking.ID,
		Type:      models.CategoryTypeExpense,
		Debit:     dec("100"),
		Date:      day("2025-01-10"),
		IsSplit:   true,
		Splits: []SplitInput{
			{CategoryID: f.food.ID, Debit: dec("60")},
			{CategoryID: f.charges.ID, Debit: dec("30")},
		},
	})
	require.Equal(t, KindValidation, KindOf(err))

	// the mismatch is caught before any row write
	var txns, splits int64
	require.NoError(t, f.db.Model(&models.Transaction{}).Count(&txns).Error)
	require.NoError(t, f.db.Model(&models.TransactionSplit{}).Count(&splits).Error)
	require.Zero(t, txns)
	require.Zero(t, splits)

	account := f.reloadAccount(t, f.checking.ID)
	requireDecEqual(t, "0", account.Balance)
}

func TestSplitTransactionRoundTrip(t *testing.T) {
	f := newFixture(t)

	txn, err := f.store.CreateTransaction(f.user.ID, TransactionInput{
		AccountID: f.checking.ID,
		Type:      models.CategoryTypeExpense,
		Debit:     dec("100"),
		Date:      day("2025-01-10"),
		IsSplit:   true,
		Splits: []SplitInput{
			{CategoryID: f.food.ID, Debit: dec("60")},
			{CategoryID: f.charges.ID, Debit: dec("40")},
		},
		Tags: []string{"groceries", "monthly"},
	})
	require.NoError(t, err)

	splits, err := f.store.GetSplits(txn.ID)
	require.NoError(t, err)
	require.Len(t, splits, 2)

	account := f.reloadAccount(t, f.checking.ID)
	requireDecEqual(t, "-100", account.Balance)
	requireDecEqual(t, "900", account.NetBalance)

	tags, err := f.store.ListTags(f.user.ID)
	require.NoError(t, err)
	require.Len(t, tags, 2)
}

func TestDeleteTransactionRestoresBalance(t *testing.T) {
	f := newFixture(t)

	txn, err := f.store.CreateTransaction(f.user.ID, TransactionInput{
		AccountID:  f.checking.ID,
		CategoryID: &f.food.ID,
		Type:       models.CategoryTypeExpense,
		Debit:      dec("75"),
		Date:       day("2025-01-10"),
	})
	require.NoError(t, err)

	require.NoError(t, f.store.DeleteTransaction(f.user.ID, txn.ID))

	account := f.reloadAccount(t, f.checking.ID)
	requireDecEqual(t, "0", account.Balance)
	requireDecEqual(t, "1000", account.NetBalance)
}

func TestUpdateTransactionReversesThenReapplies(t *testing.T) {
	f := newFixture(t)

	txn, err := f.store.CreateTransaction(f.user.ID, TransactionInput{
		AccountID:  f.checking.ID,
		CategoryID: &f.food.ID,
		Type:       models.CategoryTypeExpense,
		Debit:      dec("50"),
		Date:       day("2025-01-10"),
	})
	require.NoError(t, err)

	newDebit := dec("80")
	_, err = f.store.UpdateTransaction(f.user.ID, txn.ID, TransactionPatch{Debit: &newDebit})
	require.NoError(t, err)

	account := f.reloadAccount(t, f.checking.ID)
	requireDecEqual(t, "-80", account.Balance)

	// a no-op patch leaves the balance untouched
	_, err = f.store.UpdateTransaction(f.user.ID, txn.ID, TransactionPatch{})
	require.NoError(t, err)
	account = f.reloadAccount(t, f.checking.ID)
	requireDecEqual(t, "-80", account.Balance)
}

func TestSameLedgerTransfer(t *testing.T) {
	f := newFixture(t)

	source, destination, err := f.store.CreateTransfer(f.user.ID, TransferInput{
		SourceAccountID:      f.checking.ID,
		DestinationAccountID: f.savings.ID,
		SourceAmount:         dec("300"),
		Date:                 day("2025-02-01"),
		Notes:                "to savings",
	})
	require.NoError(t, err)
	require.NotNil(t, source.TransferID)
	require.Equal(t, *source.TransferID, *destination.TransferID)
	require.Equal(t, models.TransferTypeSource, *source.TransferType)
	require.Equal(t, models.TransferTypeDestination, *destination.TransferType)

	requireDecEqual(t, "700", f.reloadAccount(t, f.checking.ID).NetBalance)
	requireDecEqual(t, "5300", f.reloadAccount(t, f.savings.ID).NetBalance)

	got, gotDst, err := f.store.GetTransferPair(*source.TransferID)
	require.NoError(t, err)
	require.Equal(t, source.ID, got.ID)
	require.Equal(t, destination.ID, gotDst.ID)
}

func TestSameLedgerTransferRejectsDestinationAmount(t *testing.T) {
	f := newFixture(t)

	amount := dec("250")
	_, _, err := f.store.CreateTransfer(f.user.ID, TransferInput{
		SourceAccountID:      f.checking.ID,
		DestinationAccountID: f.savings.ID,
		SourceAmount:         dec("300"),
		DestinationAmount:    &amount,
		Date:                 day("2025-02-01"),
	})
	require.Equal(t, KindValidation, KindOf(err))
}

func TestCrossLedgerTransferRequiresDestinationAmount(t *testing.T) {
	f := newFixture(t)

	_, _, err := f.store.CreateTransfer(f.user.ID, TransferInput{
		SourceAccountID:      f.checking.ID,
		DestinationAccountID: f.abroad.ID,
		SourceAmount:         dec("110"),
		Date:                 day("2025-02-01"),
	})
	require.Equal(t, KindValidation, KindOf(err))

	amount := dec("100")
	source, destination, err := f.store.CreateTransfer(f.user.ID, TransferInput{
		SourceAccountID:      f.checking.ID,
		DestinationAccountID: f.abroad.ID,
		SourceAmount:         dec("110"),
		DestinationAmount:    &amount,
		Date:                 day("2025-02-01"),
	})
	require.NoError(t, err)
	requireDecEqual(t, "110", source.Debit)
	requireDecEqual(t, "100", destination.Credit)
	requireDecEqual(t, "2100", f.reloadAccount(t, f.abroad.ID).NetBalance)
}

func TestTransferToSameAccountRejected(t *testing.T) {
	f := newFixture(t)

	_, _, err := f.store.CreateTransfer(f.user.ID, TransferInput{
		SourceAccountID:      f.checking.ID,
		DestinationAccountID: f.checking.ID,
		SourceAmount:         dec("100"),
		Date:                 day("2025-02-01"),
	})
	require.Equal(t, KindValidation, KindOf(err))
}

func TestDeleteEitherTransferLegRemovesBoth(t *testing.T) {
	f := newFixture(t)

	source, destination, err := f.store.CreateTransfer(f.user.ID, TransferInput{
		SourceAccountID:      f.checking.ID,
		DestinationAccountID: f.savings.ID,
		SourceAmount:         dec("300"),
		Date:                 day("2025-02-01"),
	})
	require.NoError(t, err)

	// deleting the destination leg reverses both sides
	require.NoError(t, f.store.DeleteTransaction(f.user.ID, destination.ID))

	requireDecEqual(t, "1000", f.reloadAccount(t, f.checking.ID).NetBalance)
	requireDecEqual(t, "5000", f.reloadAccount(t, f.savings.ID).NetBalance)

	_, err = f.store.GetTransaction(source.ID)
	require.Equal(t, KindNotFound, KindOf(err))
}

func TestBrokenTransferPairIsConsistencyError(t *testing.T) {
	f := newFixture(t)

	source, destination, err := f.store.CreateTransfer(f.user.ID, TransferInput{
		SourceAccountID:      f.checking.ID,
		DestinationAccountID: f.savings.ID,
		SourceAmount:         dec("300"),
		Date:                 day("2025-02-01"),
	})
	require.NoError(t, err)

	// corrupt the pair by removing one row behind the engine's back
	require.NoError(t, f.db.Delete(&models.Transaction{}, destination.ID).Error)

	err = f.store.DeleteTransaction(f.user.ID, source.ID)
	require.Equal(t, KindConsistency, KindOf(err))
}

func TestListTransactionsFilters(t *testing.T) {
	f := newFixture(t)

	_, err := f.store.CreateTransaction(f.user.ID, TransactionInput{
		AccountID:  f.checking.ID,
		CategoryID: &f.food.ID,
		Type:       models.CategoryTypeExpense,
		Debit:      dec("40"),
		Date:       day("2025-03-05"),
		Notes:      "weekly groceries",
		Tags:       []string{"groceries"},
	})
	require.NoError(t, err)
	_, err = f.store.CreateTransaction(f.user.ID, TransactionInput{
		AccountID:  f.checking.ID,
		CategoryID: &f.salary.ID,
		Type:       models.CategoryTypeIncome,
		Credit:     dec("2000"),
		Date:       day("2025-03-01"),
	})
	require.NoError(t, err)

	byType, err := f.store.ListTransactions(f.ledger.ID, TransactionFilter{Type: "expense"})
	require.NoError(t, err)
	require.Len(t, byType, 1)

	byTag, err := f.store.ListTransactions(f.ledger.ID, TransactionFilter{Tags: []string{"groceries"}})
	require.NoError(t, err)
	require.Len(t, byTag, 1)

	bySearch, err := f.store.ListTransactions(f.ledger.ID, TransactionFilter{SearchText: "weekly"})
	require.NoError(t, err)
	require.Len(t, bySearch, 1)

	count, err := f.store.CountTransactions(f.ledger.ID, TransactionFilter{})
	require.NoError(t, err)
	require.EqualValues(t, 2, count)

	page, err := f.store.ListTransactions(f.ledger.ID, TransactionFilter{Limit: 1})
	require.NoError(t, err)
	require.Len(t, page, 1)

	all, err := f.store.ListTransactions(f.ledger.ID, TransactionFilter{Limit: -1})
	require.NoError(t, err)
	require.Len(t, all, 2)
}
