package store

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/justmeandopensource/cashio-api/internal/models"
	"github.com/justmeandopensource/cashio-api/internal/money"
)

// PeriodType selects the bucketing window for trend reports.
type PeriodType string

const (
	PeriodLast12Months PeriodType = "last_12_months"
	PeriodMonthlyAll   PeriodType = "monthly_since_beginning"
	PeriodYearlyAll    PeriodType = "yearly_since_beginning"
)

// Valid reports whether p is one of the known period types.
func (p PeriodType) Valid() bool {
	return p == PeriodLast12Months || p == PeriodMonthlyAll || p == PeriodYearlyAll
}

func (p PeriodType) monthly() bool {
	return p != PeriodYearlyAll
}

func (p PeriodType) bucket(t time.Time) string {
	if p.monthly() {
		return t.Format("2006-01")
	}
	return t.Format("2006")
}

// postingRow is one category line of ledger activity: a non-split
// transaction, or a single split of a split transaction. Splits carry
// their parent's date so every row stands on its own.
type postingRow struct {
	CategoryID *uint
	Credit     decimal.Decimal
	Debit      decimal.Decimal
	Date       time.Time
}

// ledgerPostings flattens a ledger's non-transfer activity into
// per-category rows. from is inclusive, to exclusive; either may be
// nil. excludeInvestments drops the financial legs of fund and asset
// trades.
func (s *Store) ledgerPostings(ledgerID uint, from, to *time.Time, excludeInvestments bool) ([]postingRow, error) {
	regular := s.db.Model(&models.Transaction{}).
		Select("transactions.category_id, transactions.credit, transactions.debit, transactions.date").
		Joins("JOIN accounts ON accounts.id = transactions.account_id").
		Where("accounts.ledger_id = ? AND transactions.is_split = ? AND transactions.is_transfer = ?",
			ledgerID, false, false)
	splits := s.db.Model(&models.TransactionSplit{}).
		Select("transaction_splits.category_id, transaction_splits.credit, transaction_splits.debit, transactions.date").
		Joins("JOIN transactions ON transactions.id = transaction_splits.transaction_id").
		Joins("JOIN accounts ON accounts.id = transactions.account_id").
		Where("accounts.ledger_id = ? AND transactions.is_split = ? AND transactions.is_transfer = ?",
			ledgerID, true, false)
	if from != nil {
		regular = regular.Where("transactions.date >= ?", *from)
		splits = splits.Where("transactions.date >= ?", *from)
	}
	if to != nil {
		regular = regular.Where("transactions.date < ?", *to)
		splits = splits.Where("transactions.date < ?", *to)
	}
	if excludeInvestments {
		cond := "transactions.is_asset_transaction = ? AND transactions.is_mf_transaction = ?"
		regular = regular.Where(cond, false, false)
		splits = splits.Where(cond, false, false)
	}

	var rows []postingRow
	if err := regular.Scan(&rows).Error; err != nil {
		return nil, err
	}
	var splitRows []postingRow
	if err := splits.Scan(&splitRows).Error; err != nil {
		return nil, err
	}
	return append(rows, splitRows...), nil
}

func (s *Store) categoriesByID(userID uint) (map[uint]models.Category, error) {
	var cats []models.Category
	if err := s.db.Where("user_id = ?", userID).Find(&cats).Error; err != nil {
		return nil, err
	}
	m := make(map[uint]models.Category, len(cats))
	for _, c := range cats {
		m[c.ID] = c
	}
	return m, nil
}

// TrendPoint is one period's income and expense totals.
type TrendPoint struct {
	Period  string
	Income  decimal.Decimal
	Expense decimal.Decimal
}

// TrendHighlight names the period carrying the largest amount.
type TrendHighlight struct {
	Period string
	Amount decimal.Decimal
}

// TrendSummary aggregates a series: total across all periods, the
// highest period, and the average over periods with activity.
type TrendSummary struct {
	Total   decimal.Decimal
	Highest TrendHighlight
	Average decimal.Decimal
}

func summarizeSeries(periods []string, amounts []decimal.Decimal) TrendSummary {
	sum := TrendSummary{
		Total:   money.Zero,
		Highest: TrendHighlight{Amount: money.Zero},
		Average: money.Zero,
	}
	active := 0
	for i, a := range amounts {
		sum.Total = sum.Total.Add(a)
		if a.GreaterThan(sum.Highest.Amount) {
			sum.Highest = TrendHighlight{Period: periods[i], Amount: a}
		}
		if a.Sign() > 0 {
			active++
		}
	}
	if active > 0 {
		sum.Average = money.Div(sum.Total, decimal.NewFromInt(int64(active)))
	}
	return sum
}

// IncomeExpenseTrend is the per-period income/expense series of a
// ledger with summary statistics for both sides.
type IncomeExpenseTrend struct {
	TrendData []TrendPoint
	Income    TrendSummary
	Expense   TrendSummary
}

// IncomeExpenseTrend buckets a ledger's income and expenses by month
// or year. Income counts category credits; expenses count debits net
// of refunds (debit minus credit). Transfers never contribute.
func (s *Store) IncomeExpenseTrend(userID, ledgerID uint, period PeriodType, asOf time.Time) (*IncomeExpenseTrend, error) {
	if !period.Valid() {
		return nil, validationf("unknown period type %q", period)
	}
	var from *time.Time
	if period == PeriodLast12Months {
		t := asOf.AddDate(0, 0, -365)
		from = &t
	}
	rows, err := s.ledgerPostings(ledgerID, from, nil, false)
	if err != nil {
		return nil, err
	}
	cats, err := s.categoriesByID(userID)
	if err != nil {
		return nil, err
	}

	buckets := map[string]*TrendPoint{}
	for _, r := range rows {
		if r.CategoryID == nil {
			continue
		}
		cat, ok := cats[*r.CategoryID]
		if !ok {
			continue
		}
		key := period.bucket(r.Date)
		b := buckets[key]
		if b == nil {
			b = &TrendPoint{Period: key, Income: money.Zero, Expense: money.Zero}
			buckets[key] = b
		}
		switch cat.Type {
		case models.CategoryTypeIncome:
			b.Income = b.Income.Add(r.Credit)
		case models.CategoryTypeExpense:
			b.Expense = b.Expense.Add(r.Debit.Sub(r.Credit))
		}
	}

	points := make([]TrendPoint, 0, len(buckets))
	for _, b := range buckets {
		points = append(points, *b)
	}
	sort.Slice(points, func(i, j int) bool { return points[i].Period < points[j].Period })

	periods := make([]string, len(points))
	incomes := make([]decimal.Decimal, len(points))
	expenses := make([]decimal.Decimal, len(points))
	for i, p := range points {
		periods[i] = p.Period
		incomes[i] = p.Income
		expenses[i] = p.Expense
	}
	return &IncomeExpenseTrend{
		TrendData: points,
		Income:    summarizeSeries(periods, incomes),
		Expense:   summarizeSeries(periods, expenses),
	}, nil
}

// CategorySlice is one category's share of a month overview, with the
// per-child breakdown when the category is a group.
type CategorySlice struct {
	Name     string
	Value    decimal.Decimal
	Children []CategorySlice
}

// MonthOverview totals the current month's income and expenses and
// breaks both down by top-level category.
type MonthOverview struct {
	TotalIncome      decimal.Decimal
	TotalExpense     decimal.Decimal
	IncomeBreakdown  []CategorySlice
	ExpenseBreakdown []CategorySlice
}

// CurrentMonthOverview reports the calendar month containing asOf.
func (s *Store) CurrentMonthOverview(userID, ledgerID uint, asOf time.Time) (*MonthOverview, error) {
	first := time.Date(asOf.Year(), asOf.Month(), 1, 0, 0, 0, 0, asOf.Location())
	next := first.AddDate(0, 1, 0)
	rows, err := s.ledgerPostings(ledgerID, &first, &next, false)
	if err != nil {
		return nil, err
	}
	cats, err := s.categoriesByID(userID)
	if err != nil {
		return nil, err
	}

	perCategory := map[uint]decimal.Decimal{}
	totalIncome, totalExpense := money.Zero, money.Zero
	for _, r := range rows {
		if r.CategoryID == nil {
			continue
		}
		cat, ok := cats[*r.CategoryID]
		if !ok {
			continue
		}
		var amt decimal.Decimal
		switch cat.Type {
		case models.CategoryTypeIncome:
			amt = r.Credit
			totalIncome = totalIncome.Add(amt)
		case models.CategoryTypeExpense:
			amt = r.Debit.Sub(r.Credit)
			totalExpense = totalExpense.Add(amt)
		default:
			continue
		}
		perCategory[cat.ID] = perCategory[cat.ID].Add(amt)
	}

	childrenOf := map[uint][]models.Category{}
	for _, c := range cats {
		if c.ParentCategoryID != nil {
			childrenOf[*c.ParentCategoryID] = append(childrenOf[*c.ParentCategoryID], c)
		}
	}

	breakdown := func(catType models.CategoryType) []CategorySlice {
		var slices []CategorySlice
		for _, cat := range cats {
			if cat.Type != catType || (cat.ParentCategoryID != nil && !cat.IsGroup) {
				continue
			}
			slice := CategorySlice{Name: cat.Name, Value: money.Zero}
			if cat.IsGroup {
				for _, child := range childrenOf[cat.ID] {
					v := perCategory[child.ID]
					slice.Value = slice.Value.Add(v)
					if v.Sign() > 0 {
						slice.Children = append(slice.Children, CategorySlice{Name: child.Name, Value: v})
					}
				}
			} else {
				slice.Value = perCategory[cat.ID]
			}
			if slice.Value.Sign() > 0 {
				sort.Slice(slice.Children, func(i, j int) bool {
					if !slice.Children[i].Value.Equal(slice.Children[j].Value) {
						return slice.Children[i].Value.GreaterThan(slice.Children[j].Value)
					}
					return slice.Children[i].Name < slice.Children[j].Name
				})
				slices = append(slices, slice)
			}
		}
		sort.Slice(slices, func(i, j int) bool {
			if !slices[i].Value.Equal(slices[j].Value) {
				return slices[i].Value.GreaterThan(slices[j].Value)
			}
			return slices[i].Name < slices[j].Name
		})
		return slices
	}

	return &MonthOverview{
		TotalIncome:      totalIncome,
		TotalExpense:     totalExpense,
		IncomeBreakdown:  breakdown(models.CategoryTypeIncome),
		ExpenseBreakdown: breakdown(models.CategoryTypeExpense),
	}, nil
}

// CategoryAmount is one category's contribution within a trend period.
type CategoryAmount struct {
	CategoryName string
	Amount       decimal.Decimal
}

// CategoryTrendPoint is one period of a category trend.
type CategoryTrendPoint struct {
	Period     string
	Categories []CategoryAmount
}

// CategoryTrend is the per-period activity of one category, including
// every descendant when the category is a group.
type CategoryTrend struct {
	CategoryName string
	CategoryType models.CategoryType
	IsGroup      bool
	TrendData    []CategoryTrendPoint
	Summary      TrendSummary
}

// CategoryTrend buckets one category's activity by month or year.
// Income categories report credit minus debit, expense categories
// debit minus credit, so refunds net out either way.
func (s *Store) CategoryTrend(userID, ledgerID, categoryID uint, period PeriodType, asOf time.Time) (*CategoryTrend, error) {
	if !period.Valid() {
		return nil, validationf("unknown period type %q", period)
	}
	cats, err := s.categoriesByID(userID)
	if err != nil {
		return nil, err
	}
	root, ok := cats[categoryID]
	if !ok {
		return nil, notFoundf("category %d not found", categoryID)
	}

	childrenOf := map[uint][]models.Category{}
	for _, c := range cats {
		if c.ParentCategoryID != nil {
			childrenOf[*c.ParentCategoryID] = append(childrenOf[*c.ParentCategoryID], c)
		}
	}
	wanted := map[uint]bool{root.ID: true}
	var collect func(id uint)
	collect = func(id uint) {
		for _, child := range childrenOf[id] {
			wanted[child.ID] = true
			if child.IsGroup {
				collect(child.ID)
			}
		}
	}
	if root.IsGroup {
		collect(root.ID)
	}

	var from *time.Time
	if period == PeriodLast12Months {
		t := asOf.AddDate(0, 0, -365)
		from = &t
	}
	rows, err := s.ledgerPostings(ledgerID, from, nil, false)
	if err != nil {
		return nil, err
	}

	buckets := map[string]map[uint]decimal.Decimal{}
	for _, r := range rows {
		if r.CategoryID == nil || !wanted[*r.CategoryID] {
			continue
		}
		var amt decimal.Decimal
		if root.Type == models.CategoryTypeIncome {
			amt = r.Credit.Sub(r.Debit)
		} else {
			amt = r.Debit.Sub(r.Credit)
		}
		key := period.bucket(r.Date)
		if buckets[key] == nil {
			buckets[key] = map[uint]decimal.Decimal{}
		}
		buckets[key][*r.CategoryID] = buckets[key][*r.CategoryID].Add(amt)
	}

	keys := make([]string, 0, len(buckets))
	for k := range buckets {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	points := make([]CategoryTrendPoint, 0, len(keys))
	totals := make([]decimal.Decimal, 0, len(keys))
	for _, k := range keys {
		point := CategoryTrendPoint{Period: k}
		total := money.Zero
		for id, amt := range buckets[k] {
			point.Categories = append(point.Categories, CategoryAmount{
				CategoryName: cats[id].Name,
				Amount:       amt,
			})
			total = total.Add(amt)
		}
		sort.Slice(point.Categories, func(i, j int) bool {
			return point.Categories[i].CategoryName < point.Categories[j].CategoryName
		})
		points = append(points, point)
		totals = append(totals, total)
	}

	return &CategoryTrend{
		CategoryName: root.Name,
		CategoryType: root.Type,
		IsGroup:      root.IsGroup,
		TrendData:    points,
		Summary:      summarizeSeries(keys, totals),
	}, nil
}

// TagAmount is one tag's dominant flow across its transactions.
type TagAmount struct {
	Tag    string
	Amount decimal.Decimal
}

// TagCategoryAmount is one category's share of tagged activity.
type TagCategoryAmount struct {
	Category string
	Amount   decimal.Decimal
	Type     models.CategoryType
}

// TagTrend breaks tagged, non-transfer activity down by tag and by
// category. Each breakdown reports the dominant direction: whichever
// of income or expense is larger.
type TagTrend struct {
	TagBreakdown      []TagAmount
	CategoryBreakdown []TagCategoryAmount
	TotalAmount       decimal.Decimal
}

type tagPostingRow struct {
	TagID         uint
	TransactionID uint
	CategoryID    *uint
	Credit        decimal.Decimal
	Debit         decimal.Decimal
	IsSplit       bool
}

// TagTrend reports where the money behind a set of tags came from and
// went. Every named tag must exist for the user.
func (s *Store) TagTrend(userID, ledgerID uint, tagNames []string) (*TagTrend, error) {
	if len(tagNames) == 0 {
		return nil, validationf("at least one tag name is required")
	}
	tagByID := map[uint]string{}
	tagIDs := make([]uint, 0, len(tagNames))
	for _, name := range tagNames {
		var tag models.Tag
		err := s.db.Where("user_id = ? AND name = ?", userID, name).First(&tag).Error
		if isNotFound(err) {
			return nil, notFoundf("tag %q not found", name)
		}
		if err != nil {
			return nil, err
		}
		tagByID[tag.ID] = tag.Name
		tagIDs = append(tagIDs, tag.ID)
	}
	cats, err := s.categoriesByID(userID)
	if err != nil {
		return nil, err
	}

	var rows []tagPostingRow
	err = s.db.Model(&models.Transaction{}).
		Select("transaction_tags.tag_id AS tag_id, transactions.id AS transaction_id, transactions.category_id, transactions.credit, transactions.debit, transactions.is_split").
		Joins("JOIN transaction_tags ON transaction_tags.transaction_id = transactions.id").
		Joins("JOIN accounts ON accounts.id = transactions.account_id").
		Where("accounts.ledger_id = ? AND transactions.is_transfer = ? AND transaction_tags.tag_id IN ?",
			ledgerID, false, tagIDs).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	type flow struct{ income, expense decimal.Decimal }
	perTag := map[uint]*flow{}
	perCategory := map[uint]*flow{}
	matched := map[uint]bool{}
	splitParents := map[uint]bool{}
	totalIncome, totalExpense := money.Zero, money.Zero

	addFlow := func(m map[uint]*flow, key uint, categoryID *uint, credit, debit decimal.Decimal) (income, expense decimal.Decimal) {
		if categoryID == nil {
			return money.Zero, money.Zero
		}
		cat, ok := cats[*categoryID]
		if !ok {
			return money.Zero, money.Zero
		}
		f := m[key]
		if f == nil {
			f = &flow{income: money.Zero, expense: money.Zero}
			m[key] = f
		}
		switch cat.Type {
		case models.CategoryTypeIncome:
			if credit.Sign() > 0 {
				f.income = f.income.Add(credit)
				return credit, money.Zero
			}
		case models.CategoryTypeExpense:
			if debit.Sign() > 0 {
				f.expense = f.expense.Add(debit)
				return money.Zero, debit
			}
		}
		return money.Zero, money.Zero
	}

	for _, r := range rows {
		income, expense := addFlow(perTag, r.TagID, r.CategoryID, r.Credit, r.Debit)
		totalIncome = totalIncome.Add(income)
		totalExpense = totalExpense.Add(expense)
		if !matched[r.TransactionID] {
			matched[r.TransactionID] = true
			if r.IsSplit {
				splitParents[r.TransactionID] = true
			} else if r.CategoryID != nil {
				addFlow(perCategory, *r.CategoryID, r.CategoryID, r.Credit, r.Debit)
			}
		}
	}

	if len(splitParents) > 0 {
		parentIDs := make([]uint, 0, len(splitParents))
		for id := range splitParents {
			parentIDs = append(parentIDs, id)
		}
		var splits []models.TransactionSplit
		if err := s.db.Where("transaction_id IN ?", parentIDs).Find(&splits).Error; err != nil {
			return nil, err
		}
		for _, sp := range splits {
			addFlow(perCategory, sp.CategoryID, &sp.CategoryID, sp.Credit, sp.Debit)
		}
	}

	trend := &TagTrend{TotalAmount: decimal.Max(totalIncome, totalExpense)}
	for id, f := range perTag {
		trend.TagBreakdown = append(trend.TagBreakdown, TagAmount{
			Tag:    tagByID[id],
			Amount: decimal.Max(f.income, f.expense),
		})
	}
	// Tags with no qualifying flows still appear, at zero.
	for _, id := range tagIDs {
		if perTag[id] == nil {
			trend.TagBreakdown = append(trend.TagBreakdown, TagAmount{Tag: tagByID[id], Amount: money.Zero})
		}
	}
	sort.Slice(trend.TagBreakdown, func(i, j int) bool {
		if !trend.TagBreakdown[i].Amount.Equal(trend.TagBreakdown[j].Amount) {
			return trend.TagBreakdown[i].Amount.GreaterThan(trend.TagBreakdown[j].Amount)
		}
		return trend.TagBreakdown[i].Tag < trend.TagBreakdown[j].Tag
	})

	for id, f := range perCategory {
		amount, catType := f.income, models.CategoryTypeIncome
		if f.expense.GreaterThan(f.income) {
			amount, catType = f.expense, models.CategoryTypeExpense
		}
		if amount.Sign() > 0 {
			trend.CategoryBreakdown = append(trend.CategoryBreakdown, TagCategoryAmount{
				Category: cats[id].Name,
				Amount:   amount,
				Type:     catType,
			})
		}
	}
	sort.Slice(trend.CategoryBreakdown, func(i, j int) bool {
		if !trend.CategoryBreakdown[i].Amount.Equal(trend.CategoryBreakdown[j].Amount) {
			return trend.CategoryBreakdown[i].Amount.GreaterThan(trend.CategoryBreakdown[j].Amount)
		}
		return trend.CategoryBreakdown[i].Category < trend.CategoryBreakdown[j].Category
	})
	return trend, nil
}

// CalendarDay is one day's expense total.
type CalendarDay struct {
	Date   string
	Amount decimal.Decimal
}

// ExpenseCalendar is a year of daily expense totals.
type ExpenseCalendar struct {
	Expenses     []CalendarDay
	TotalExpense decimal.Decimal
}

// ExpenseCalendar totals day-by-day spending for a year. Investment
// legs are excluded so fund and asset purchases do not read as
// household spending.
func (s *Store) ExpenseCalendar(userID, ledgerID uint, year int) (*ExpenseCalendar, error) {
	if year < 2000 || year > 2100 {
		return nil, validationf("year must be between 2000 and 2100")
	}
	from := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(1, 0, 0)
	rows, err := s.ledgerPostings(ledgerID, &from, &to, true)
	if err != nil {
		return nil, err
	}
	cats, err := s.categoriesByID(userID)
	if err != nil {
		return nil, err
	}

	daily := map[string]decimal.Decimal{}
	total := money.Zero
	for _, r := range rows {
		if r.CategoryID == nil {
			continue
		}
		if cat, ok := cats[*r.CategoryID]; !ok || cat.Type != models.CategoryTypeExpense {
			continue
		}
		amt := r.Debit.Sub(r.Credit)
		if amt.Sign() <= 0 {
			continue
		}
		day := r.Date.Format("2006-01-02")
		daily[day] = daily[day].Add(amt)
		total = total.Add(amt)
	}

	cal := &ExpenseCalendar{TotalExpense: total}
	for day, amt := range daily {
		cal.Expenses = append(cal.Expenses, CalendarDay{Date: day, Amount: amt})
	}
	sort.Slice(cal.Expenses, func(i, j int) bool { return cal.Expenses[i].Date < cal.Expenses[j].Date })
	return cal, nil
}
