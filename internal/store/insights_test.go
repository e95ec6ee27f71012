package store

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/justmeandopensource/cashio-api/internal/models"
)

func (f *fixture) expense(t *testing.T, category models.Category, amount, date string, tags ...string) {
	t.Helper()
	_, err := f.store.CreateTransaction(f.user.ID, TransactionInput{
		AccountID:  f.checking.ID,
		CategoryID: &category.ID,
		Type:       models.CategoryTypeExpense,
		Debit:      dec(amount),
		Date:       day(date),
		Tags:       tags,
	})
	require.NoError(t, err)
}

func (f *fixture) income(t *testing.T, category models.Category, amount, date string, tags ...string) {
	t.Helper()
	_, err := f.store.CreateTransaction(f.user.ID, TransactionInput{
		AccountID:  f.checking.ID,
		CategoryID: &category.ID,
		Type:       models.CategoryTypeIncome,
		Credit:     dec(amount),
		Date:       day(date),
		Tags:       tags,
	})
	require.NoError(t, err)
}

func TestIncomeExpenseTrendBucketsByMonth(t *testing.T) {
	f := newFixture(t)

	f.income(t, f.salary, "2000", "2025-03-01")
	f.expense(t, f.food, "40", "2025-03-05")
	f.expense(t, f.food, "60", "2025-04-02")

	trend, err := f.store.IncomeExpenseTrend(f.user.ID, f.ledger.ID, PeriodMonthlyAll, day("2025-05-01"))
	require.NoError(t, err)
	require.Len(t, trend.TrendData, 2)

	require.Equal(t, "2025-03", trend.TrendData[0].Period)
	requireDecEqual(t, "2000", trend.TrendData[0].Income)
	requireDecEqual(t, "40", trend.TrendData[0].Expense)
	require.Equal(t, "2025-04", trend.TrendData[1].Period)
	requireDecEqual(t, "0", trend.TrendData[1].Income)
	requireDecEqual(t, "60", trend.TrendData[1].Expense)

	requireDecEqual(t, "2000", trend.Income.Total)
	require.Equal(t, "2025-03", trend.Income.Highest.Period)
	requireDecEqual(t, "2000", trend.Income.Average)

	requireDecEqual(t, "100", trend.Expense.Total)
	require.Equal(t, "2025-04", trend.Expense.Highest.Period)
	requireDecEqual(t, "60", trend.Expense.Highest.Amount)
	requireDecEqual(t, "50", trend.Expense.Average)

	_, err = f.store.IncomeExpenseTrend(f.user.ID, f.ledger.ID, PeriodType("weekly"), day("2025-05-01"))
	require.Equal(t, KindValidation, KindOf(err))
}

func TestIncomeExpenseTrendLast12MonthsWindow(t *testing.T) {
	f := newFixture(t)

	f.expense(t, f.food, "99", "2023-01-10")
	f.expense(t, f.food, "25", "2025-05-10")

	trend, err := f.store.IncomeExpenseTrend(f.user.ID, f.ledger.ID, PeriodLast12Months, day("2025-06-01"))
	require.NoError(t, err)
	require.Len(t, trend.TrendData, 1)
	require.Equal(t, "2025-05", trend.TrendData[0].Period)
	requireDecEqual(t, "25", trend.Expense.Total)
}

func TestTrendCountsSplitLinesNotParents(t *testing.T) {
	f := newFixture(t)

	_, err := f.store.CreateTransaction(f.user.ID, TransactionInput{
		AccountID: f.checking.ID,
		Type:      models.CategoryTypeExpense,
		Debit:     dec("100"),
		Date:      day("2025-03-08"),
		Splits: []SplitInput{
			{CategoryID: f.food.ID, Debit: dec("60")},
			{CategoryID: f.charges.ID, Debit: dec("40")},
		},
	})
	require.NoError(t, err)

	trend, err := f.store.IncomeExpenseTrend(f.user.ID, f.ledger.ID, PeriodMonthlyAll, day("2025-04-01"))
	require.NoError(t, err)
	require.Len(t, trend.TrendData, 1)
	requireDecEqual(t, "100", trend.TrendData[0].Expense)
}

func TestTrendExcludesTransfers(t *testing.T) {
	f := newFixture(t)

	_, _, err := f.store.CreateTransfer(f.user.ID, TransferInput{
		SourceAccountID:      f.checking.ID,
		DestinationAccountID: f.savings.ID,
		SourceAmount:         dec("300"),
		Date:                 day("2025-03-15"),
	})
	require.NoError(t, err)

	trend, err := f.store.IncomeExpenseTrend(f.user.ID, f.ledger.ID, PeriodMonthlyAll, day("2025-04-01"))
	require.NoError(t, err)
	require.Empty(t, trend.TrendData)
}

func TestCurrentMonthOverview(t *testing.T) {
	f := newFixture(t)

	dining, err := f.store.CreateCategory(f.user.ID, CategoryInput{
		Name: "Dining", Type: models.CategoryTypeExpense, IsGroup: true,
	})
	require.NoError(t, err)
	restaurants, err := f.store.CreateCategory(f.user.ID, CategoryInput{
		Name: "Restaurants", Type: models.CategoryTypeExpense, ParentCategoryID: &dining.ID,
	})
	require.NoError(t, err)
	takeaway, err := f.store.CreateCategory(f.user.ID, CategoryInput{
		Name: "Takeaway", Type: models.CategoryTypeExpense, ParentCategoryID: &dining.ID,
	})
	require.NoError(t, err)

	f.income(t, f.salary, "2000", "2025-03-01")
	f.expense(t, *restaurants, "30", "2025-03-10")
	f.expense(t, *takeaway, "20", "2025-03-12")
	f.expense(t, f.food, "50", "2025-03-11")
	f.expense(t, f.food, "99", "2025-02-20") // previous month

	overview, err := f.store.CurrentMonthOverview(f.user.ID, f.ledger.ID, day("2025-03-15"))
	require.NoError(t, err)

	requireDecEqual(t, "2000", overview.TotalIncome)
	requireDecEqual(t, "100", overview.TotalExpense)

	require.Len(t, overview.IncomeBreakdown, 1)
	require.Equal(t, "Salary", overview.IncomeBreakdown[0].Name)
	requireDecEqual(t, "2000", overview.IncomeBreakdown[0].Value)

	require.Len(t, overview.ExpenseBreakdown, 2)
	require.Equal(t, "Dining", overview.ExpenseBreakdown[0].Name)
	requireDecEqual(t, "50", overview.ExpenseBreakdown[0].Value)
	require.Len(t, overview.ExpenseBreakdown[0].Children, 2)
	require.Equal(t, "Restaurants", overview.ExpenseBreakdown[0].Children[0].Name)
	requireDecEqual(t, "30", overview.ExpenseBreakdown[0].Children[0].Value)
	require.Equal(t, "Food", overview.ExpenseBreakdown[1].Name)
	requireDecEqual(t, "50", overview.ExpenseBreakdown[1].Value)
}

func TestCategoryTrendIncludesGroupDescendants(t *testing.T) {
	f := newFixture(t)

	dining, err := f.store.CreateCategory(f.user.ID, CategoryInput{
		Name: "Dining", Type: models.CategoryTypeExpense, IsGroup: true,
	})
	require.NoError(t, err)
	restaurants, err := f.store.CreateCategory(f.user.ID, CategoryInput{
		Name: "Restaurants", Type: models.CategoryTypeExpense, ParentCategoryID: &dining.ID,
	})
	require.NoError(t, err)
	takeaway, err := f.store.CreateCategory(f.user.ID, CategoryInput{
		Name: "Takeaway", Type: models.CategoryTypeExpense, ParentCategoryID: &dining.ID,
	})
	require.NoError(t, err)

	f.expense(t, *restaurants, "30", "2025-03-10")
	f.expense(t, *takeaway, "20", "2025-03-12")
	f.expense(t, *restaurants, "45", "2025-04-08")
	f.expense(t, f.food, "500", "2025-03-09") // outside the group

	trend, err := f.store.CategoryTrend(f.user.ID, f.ledger.ID, dining.ID, PeriodMonthlyAll, day("2025-05-01"))
	require.NoError(t, err)
	require.Equal(t, "Dining", trend.CategoryName)
	require.True(t, trend.IsGroup)
	require.Len(t, trend.TrendData, 2)

	march := trend.TrendData[0]
	require.Equal(t, "2025-03", march.Period)
	require.Len(t, march.Categories, 2)
	require.Equal(t, "Restaurants", march.Categories[0].CategoryName)
	requireDecEqual(t, "30", march.Categories[0].Amount)
	require.Equal(t, "Takeaway", march.Categories[1].CategoryName)
	requireDecEqual(t, "20", march.Categories[1].Amount)

	requireDecEqual(t, "95", trend.Summary.Total)
	require.Equal(t, "2025-03", trend.Summary.Highest.Period)
	requireDecEqual(t, "50", trend.Summary.Highest.Amount)

	_, err = f.store.CategoryTrend(f.user.ID, f.ledger.ID, 99999, PeriodMonthlyAll, day("2025-05-01"))
	require.Equal(t, KindNotFound, KindOf(err))
}

func TestTagTrendBreakdowns(t *testing.T) {
	f := newFixture(t)

	f.expense(t, f.food, "40", "2025-03-05", "groceries")
	f.expense(t, f.food, "25", "2025-03-06", "groceries", "holiday")
	f.income(t, f.salary, "100", "2025-03-07", "holiday")

	trend, err := f.store.TagTrend(f.user.ID, f.ledger.ID, []string{"groceries", "holiday"})
	require.NoError(t, err)

	require.Len(t, trend.TagBreakdown, 2)
	require.Equal(t, "holiday", trend.TagBreakdown[0].Tag)
	requireDecEqual(t, "100", trend.TagBreakdown[0].Amount)
	require.Equal(t, "groceries", trend.TagBreakdown[1].Tag)
	requireDecEqual(t, "65", trend.TagBreakdown[1].Amount)

	require.Len(t, trend.CategoryBreakdown, 2)
	require.Equal(t, "Salary", trend.CategoryBreakdown[0].Category)
	requireDecEqual(t, "100", trend.CategoryBreakdown[0].Amount)
	require.Equal(t, models.CategoryTypeIncome, trend.CategoryBreakdown[0].Type)
	require.Equal(t, "Food", trend.CategoryBreakdown[1].Category)
	requireDecEqual(t, "65", trend.CategoryBreakdown[1].Amount)
	require.Equal(t, models.CategoryTypeExpense, trend.CategoryBreakdown[1].Type)

	requireDecEqual(t, "100", trend.TotalAmount)

	_, err = f.store.TagTrend(f.user.ID, f.ledger.ID, []string{"nonexistent"})
	require.Equal(t, KindNotFound, KindOf(err))
}

func TestExpenseCalendarDailyTotals(t *testing.T) {
	f := newFixture(t)
	fund := f.fund(t, "Index Fund")

	f.expense(t, f.food, "40", "2025-03-05")
	f.expense(t, f.food, "10", "2025-03-05")
	f.expense(t, f.food, "60", "2025-04-02")
	f.expense(t, f.food, "77", "2024-12-31") // previous year

	// Fund purchase charges are investment legs, not spending.
	_, err := f.store.CreateMfTransaction(f.user.ID, f.ledger.ID, MfTransactionInput{
		FundID:                 fund.ID,
		TransactionType:        models.MfTransactionBuy,
		Units:                  dec("10"),
		AmountExcludingCharges: dec("100"),
		OtherCharges:           dec("15"),
		ExpenseCategoryID:      &f.charges.ID,
		AccountID:              f.checking.ID,
		Date:                   day("2025-05-05"),
	})
	require.NoError(t, err)

	cal, err := f.store.ExpenseCalendar(f.user.ID, f.ledger.ID, 2025)
	require.NoError(t, err)
	require.Len(t, cal.Expenses, 2)
	require.Equal(t, "2025-03-05", cal.Expenses[0].Date)
	requireDecEqual(t, "50", cal.Expenses[0].Amount)
	require.Equal(t, "2025-04-02", cal.Expenses[1].Date)
	requireDecEqual(t, "60", cal.Expenses[1].Amount)
	requireDecEqual(t, "110", cal.TotalExpense)

	_, err = f.store.ExpenseCalendar(f.user.ID, f.ledger.ID, 1999)
	require.Equal(t, KindValidation, KindOf(err))
}
