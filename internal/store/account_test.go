package store

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/justmeandopensource/cashio-api/internal/models"
)

func TestCreateAccountDuplicateName(t *testing.T) {
	f := newFixture(t)

	_, err := f.store.CreateAccount(f.ledger.ID, AccountInput{
		Name: "Checking", Type: models.AccountTypeAsset,
	})
	require.Equal(t, KindValidation, KindOf(err))
}

func TestCreateAccountParentMustBeGroup(t *testing.T) {
	f := newFixture(t)

	_, err := f.store.CreateAccount(f.ledger.ID, AccountInput{
		Name: "Sub", Type: models.AccountTypeAsset, ParentAccountID: &f.checking.ID,
	})
	require.Equal(t, KindValidation, KindOf(err))

	account, err := f.store.CreateAccount(f.ledger.ID, AccountInput{
		Name: "Sub", Type: models.AccountTypeAsset, ParentAccountID: &f.group.ID,
	})
	require.NoError(t, err)
	require.Equal(t, f.group.ID, *account.ParentAccountID)
}

func TestNetBalanceFollowsOpeningBalance(t *testing.T) {
	f := newFixture(t)

	opening := dec("2500")
	account, err := f.store.UpdateAccount(f.ledger.ID, f.checking.ID, AccountPatch{
		OpeningBalance: &opening,
	})
	require.NoError(t, err)
	requireDecEqual(t, "2500", account.NetBalance)
	requireDecEqual(t, "0", account.Balance)
}

func TestIncomeIncreasesAssetBalance(t *testing.T) {
	f := newFixture(t)

	_, err := f.store.CreateTransaction(f.user.ID, TransactionInput{
		AccountID:  f.checking.ID,
		CategoryID: &f.salary.ID,
		Type:       models.CategoryTypeIncome,
		Credit:     dec("200"),
		Date:       day("2025-01-10"),
	})
	require.NoError(t, err)

	account := f.reloadAccount(t, f.checking.ID)
	requireDecEqual(t, "200", account.Balance)
	requireDecEqual(t, "1200", account.NetBalance)
}

func TestLiabilityInvertsPolarity(t *testing.T) {
	f := newFixture(t)

	// charging an expense to a credit card grows what is owed
	_, err := f.store.CreateTransaction(f.user.ID, TransactionInput{
		AccountID:  f.card.ID,
		CategoryID: &f.food.ID,
		Type:       models.CategoryTypeExpense,
		Debit:      dec("80"),
		Date:       day("2025-01-10"),
	})
	require.NoError(t, err)

	card := f.reloadAccount(t, f.card.ID)
	requireDecEqual(t, "80", card.Balance)

	// paying the card down (income-like credit) shrinks it
	_, err = f.store.CreateTransaction(f.user.ID, TransactionInput{
		AccountID:  f.card.ID,
		CategoryID: &f.salary.ID,
		Type:       models.CategoryTypeIncome,
		Credit:     dec("30"),
		Date:       day("2025-01-11"),
	})
	require.NoError(t, err)

	card = f.reloadAccount(t, f.card.ID)
	requireDecEqual(t, "50", card.Balance)
}

func TestGroupAccountRejectsTransactions(t *testing.T) {
	f := newFixture(t)

	_, err := f.store.CreateTransaction(f.user.ID, TransactionInput{
		AccountID: f.group.ID,
		Type:      models.CategoryTypeExpense,
		Debit:     dec("10"),
		Date:      day("2025-01-10"),
	})
	require.Equal(t, KindInvalidOperation, KindOf(err))
}
