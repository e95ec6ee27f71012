package store

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/justmeandopensource/cashio-api/internal/database"
	"github.com/justmeandopensource/cashio-api/internal/models"
)

// fixture is a seeded in-memory database: one user with two ledgers,
// a few accounts and categories.
type fixture struct {
	store *Store
	db    *gorm.DB

	user   models.User
	ledger models.Ledger
	other  models.Ledger

	checking models.Account
	savings  models.Account
	card     models.Account
	group    models.Account
	abroad   models.Account

	salary  models.Category
	food    models.Category
	charges models.Category
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, database.AutoMigrate(db))

	f := &fixture{store: New(db), db: db}

	f.user = models.User{
		FullName:     "Test User",
		Username:     "testuser",
		Email:        "test@example.com",
		PasswordHash: "x",
	}
	require.NoError(t, db.Create(&f.user).Error)

	ledger, err := f.store.CreateLedger(f.user.ID, LedgerInput{Name: "Personal", CurrencySymbol: "$"})
	require.NoError(t, err)
	f.ledger = *ledger

	other, err := f.store.CreateLedger(f.user.ID, LedgerInput{Name: "Abroad", CurrencySymbol: "€"})
	require.NoError(t, err)
	f.other = *other

	f.checking = f.account(t, f.ledger.ID, "Checking", models.AccountTypeAsset, "1000", nil)
	f.savings = f.account(t, f.ledger.ID, "Savings", models.AccountTypeAsset, "5000", nil)
	f.card = f.account(t, f.ledger.ID, "Credit Card", models.AccountTypeLiability, "0", nil)
	f.abroad = f.account(t, f.other.ID, "Euro Account", models.AccountTypeAsset, "2000", nil)

	group, err := f.store.CreateAccount(f.ledger.ID, AccountInput{
		Name: "Bank Accounts", Type: models.AccountTypeAsset, IsGroup: true,
	})
	require.NoError(t, err)
	f.group = *group

	f.salary = f.category(t, "Salary", models.CategoryTypeIncome)
	f.food = f.category(t, "Food", models.CategoryTypeExpense)
	f.charges = f.category(t, "Charges", models.CategoryTypeExpense)

	return f
}

func (f *fixture) account(t *testing.T, ledgerID uint, name string, accountType models.AccountType, opening string, parentID *uint) models.Account {
	t.Helper()
	account, err := f.store.CreateAccount(ledgerID, AccountInput{
		Name:            name,
		Type:            accountType,
		OpeningBalance:  dec(opening),
		ParentAccountID: parentID,
	})
	require.NoError(t, err)
	return *account
}

func (f *fixture) category(t *testing.T, name string, categoryType models.CategoryType) models.Category {
	t.Helper()
	category, err := f.store.CreateCategory(f.user.ID, CategoryInput{
		Name: name,
		Type: categoryType,
	})
	require.NoError(t, err)
	return *category
}

// reloadAccount fetches the current account row.
func (f *fixture) reloadAccount(t *testing.T, id uint) models.Account {
	t.Helper()
	var account models.Account
	require.NoError(t, f.db.First(&account, id).Error)
	return account
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func day(s string) time.Time {
	d, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return d
}

// requireDecEqual compares decimals by value, not representation.
func requireDecEqual(t *testing.T, want string, got decimal.Decimal, msgAndArgs ...any) {
	t.Helper()
	require.True(t, dec(want).Equal(got), "want %s, got %s %v", want, got, msgAndArgs)
}
