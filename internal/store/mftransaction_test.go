package store

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/justmeandopensource/cashio-api/internal/models"
)

func (f *fixture) fund(t *testing.T, name string) models.MutualFund {
	t.Helper()
	var amc models.Amc
	err := f.db.Where("ledger_id = ?", f.ledger.ID).First(&amc).Error
	if err != nil {
		created, cerr := f.store.CreateAmc(f.ledger.ID, "Test AMC", "")
		require.NoError(t, cerr)
		amc = *created
	}
	fund, err := f.store.CreateMutualFund(f.ledger.ID, MutualFundInput{
		Name:  name,
		AmcID: amc.ID,
	})
	require.NoError(t, err)
	return *fund
}

func (f *fixture) reloadFund(t *testing.T, id uint) models.MutualFund {
	t.Helper()
	var fund models.MutualFund
	require.NoError(t, f.db.First(&fund, id).Error)
	return fund
}

func TestBuyComputesWeightedAverage(t *testing.T) {
	f := newFixture(t)
	fund := f.fund(t, "Index Fund")

	// 100 units for 1000 -> avg 10
	_, err := f.store.CreateMfTransaction(f.user.ID, f.ledger.ID, MfTransactionInput{
		FundID:                 fund.ID,
		TransactionType:        models.MfTransactionBuy,
		Units:                  dec("100"),
		AmountExcludingCharges: dec("1000"),
		AccountID:              f.checking.ID,
		Date:                   day("2025-01-10"),
	})
	require.NoError(t, err)

	// 50 units for 700 -> avg (1000+700)/150
	_, err = f.store.CreateMfTransaction(f.user.ID, f.ledger.ID, MfTransactionInput{
		FundID:                 fund.ID,
		TransactionType:        models.MfTransactionBuy,
		Units:                  dec("50"),
		AmountExcludingCharges: dec("700"),
		AccountID:              f.checking.ID,
		Date:                   day("2025-02-10"),
	})
	require.NoError(t, err)

	got := f.reloadFund(t, fund.ID)
	requireDecEqual(t, "150", got.TotalUnits)
	require.True(t, got.AverageCostPerUnit.Equal(dec("1700").Div(dec("150"))),
		"avg = %s", got.AverageCostPerUnit)
	requireDecEqual(t, "1700", got.TotalInvestedCash)

	// The repeating average must survive storage verbatim, not as a
	// binary float approximation.
	var stored string
	require.NoError(t, f.db.Raw(
		"SELECT average_cost_per_unit FROM mutual_funds WHERE id = ?", fund.ID).
		Scan(&stored).Error)
	require.Equal(t, dec("1700").Div(dec("150")).String(), stored)
	requireDecEqual(t, "1700", got.ExternalCashInvested)

	// cash left the funding account
	requireDecEqual(t, "-700", f.reloadAccount(t, f.checking.ID).NetBalance)
}

func TestSellHoldsAverageAndRealizesGain(t *testing.T) {
	f := newFixture(t)
	fund := f.fund(t, "Index Fund")

	_, err := f.store.CreateMfTransaction(f.user.ID, f.ledger.ID, MfTransactionInput{
		FundID:                 fund.ID,
		TransactionType:        models.MfTransactionBuy,
		Units:                  dec("100"),
		AmountExcludingCharges: dec("1000"),
		AccountID:              f.savings.ID,
		Date:                   day("2025-01-10"),
	})
	require.NoError(t, err)

	// sell 40 units at NAV 15: proceeds 600, basis 400, gain 200
	sell, err := f.store.CreateMfTransaction(f.user.ID, f.ledger.ID, MfTransactionInput{
		FundID:                 fund.ID,
		TransactionType:        models.MfTransactionSell,
		Units:                  dec("40"),
		AmountExcludingCharges: dec("600"),
		AccountID:              f.savings.ID,
		Date:                   day("2025-06-10"),
	})
	require.NoError(t, err)
	requireDecEqual(t, "400", sell.CostBasisOfUnitsSold)
	requireDecEqual(t, "200", sell.RealizedGain)

	got := f.reloadFund(t, fund.ID)
	requireDecEqual(t, "60", got.TotalUnits)
	requireDecEqual(t, "10", got.AverageCostPerUnit)
	requireDecEqual(t, "200", got.TotalRealizedGain)
	requireDecEqual(t, "600", got.TotalInvestedCash)

	// proceeds landed in the account: 5000 - 1000 + 600
	requireDecEqual(t, "4600", f.reloadAccount(t, f.savings.ID).NetBalance)
}

func TestSellMoreUnitsThanHeld(t *testing.T) {
	f := newFixture(t)
	fund := f.fund(t, "Index Fund")

	_, err := f.store.CreateMfTransaction(f.user.ID, f.ledger.ID, MfTransactionInput{
		FundID:                 fund.ID,
		TransactionType:        models.MfTransactionBuy,
		Units:                  dec("10"),
		AmountExcludingCharges: dec("100"),
		AccountID:              f.checking.ID,
		Date:                   day("2025-01-10"),
	})
	require.NoError(t, err)

	_, err = f.store.CreateMfTransaction(f.user.ID, f.ledger.ID, MfTransactionInput{
		FundID:                 fund.ID,
		TransactionType:        models.MfTransactionSell,
		Units:                  dec("11"),
		AmountExcludingCharges: dec("110"),
		AccountID:              f.checking.ID,
		Date:                   day("2025-02-10"),
	})
	require.Equal(t, KindInsufficientUnits, KindOf(err))
}

func TestChargesNeedExpenseCategory(t *testing.T) {
	f := newFixture(t)
	fund := f.fund(t, "Index Fund")

	in := MfTransactionInput{
		FundID:                 fund.ID,
		TransactionType:        models.MfTransactionBuy,
		Units:                  dec("10"),
		AmountExcludingCharges: dec("100"),
		OtherCharges:           dec("5"),
		AccountID:              f.checking.ID,
		Date:                   day("2025-01-10"),
	}
	_, err := f.store.CreateMfTransaction(f.user.ID, f.ledger.ID, in)
	require.Equal(t, KindValidation, KindOf(err))

	// an income category is not acceptable either
	in.ExpenseCategoryID = &f.salary.ID
	_, err = f.store.CreateMfTransaction(f.user.ID, f.ledger.ID, in)
	require.Equal(t, KindValidation, KindOf(err))

	in.ExpenseCategoryID = &f.charges.ID
	txn, err := f.store.CreateMfTransaction(f.user.ID, f.ledger.ID, in)
	require.NoError(t, err)
	require.NotNil(t, txn.LinkedChargeTransactionID)
	requireDecEqual(t, "105", txn.TotalAmount)

	// main posting 100 plus charge posting 5
	requireDecEqual(t, "895", f.reloadAccount(t, f.checking.ID).NetBalance)
}

func TestDeleteBuyRestoresPriorAverage(t *testing.T) {
	f := newFixture(t)
	fund := f.fund(t, "Index Fund")

	_, err := f.store.CreateMfTransaction(f.user.ID, f.ledger.ID, MfTransactionInput{
		FundID:                 fund.ID,
		TransactionType:        models.MfTransactionBuy,
		Units:                  dec("100"),
		AmountExcludingCharges: dec("1000"),
		AccountID:              f.savings.ID,
		Date:                   day("2025-01-10"),
	})
	require.NoError(t, err)

	second, err := f.store.CreateMfTransaction(f.user.ID, f.ledger.ID, MfTransactionInput{
		FundID:                 fund.ID,
		TransactionType:        models.MfTransactionBuy,
		Units:                  dec("50"),
		AmountExcludingCharges: dec("700"),
		AccountID:              f.savings.ID,
		Date:                   day("2025-02-10"),
	})
	require.NoError(t, err)

	require.NoError(t, f.store.DeleteMfTransaction(f.user.ID, f.ledger.ID, second.ID))

	got := f.reloadFund(t, fund.ID)
	requireDecEqual(t, "100", got.TotalUnits)
	requireDecEqual(t, "10", got.AverageCostPerUnit)
	requireDecEqual(t, "1000", got.TotalInvestedCash)

	// account balance restored too
	requireDecEqual(t, "4000", f.reloadAccount(t, f.savings.ID).NetBalance)
}

func TestDeleteSellRestoresPosition(t *testing.T) {
	f := newFixture(t)
	fund := f.fund(t, "Index Fund")

	_, err := f.store.CreateMfTransaction(f.user.ID, f.ledger.ID, MfTransactionInput{
		FundID:                 fund.ID,
		TransactionType:        models.MfTransactionBuy,
		Units:                  dec("100"),
		AmountExcludingCharges: dec("1000"),
		AccountID:              f.savings.ID,
		Date:                   day("2025-01-10"),
	})
	require.NoError(t, err)

	sell, err := f.store.CreateMfTransaction(f.user.ID, f.ledger.ID, MfTransactionInput{
		FundID:                 fund.ID,
		TransactionType:        models.MfTransactionSell,
		Units:                  dec("40"),
		AmountExcludingCharges: dec("600"),
		AccountID:              f.savings.ID,
		Date:                   day("2025-06-10"),
	})
	require.NoError(t, err)

	require.NoError(t, f.store.DeleteMfTransaction(f.user.ID, f.ledger.ID, sell.ID))

	got := f.reloadFund(t, fund.ID)
	requireDecEqual(t, "100", got.TotalUnits)
	requireDecEqual(t, "10", got.AverageCostPerUnit)
	requireDecEqual(t, "0", got.TotalRealizedGain)
	requireDecEqual(t, "1000", got.TotalInvestedCash)
	requireDecEqual(t, "4000", f.reloadAccount(t, f.savings.ID).NetBalance)
}

func TestSwitchLinksBothLegs(t *testing.T) {
	f := newFixture(t)
	source := f.fund(t, "Source Fund")
	target := f.fund(t, "Target Fund")

	_, err := f.store.CreateMfTransaction(f.user.ID, f.ledger.ID, MfTransactionInput{
		FundID:                 source.ID,
		TransactionType:        models.MfTransactionBuy,
		Units:                  dec("100"),
		AmountExcludingCharges: dec("1000"),
		AccountID:              f.savings.ID,
		Date:                   day("2025-01-10"),
	})
	require.NoError(t, err)

	// switch 50 units out at NAV 12 (value 600, basis 500, gain 100)
	// into the target at NAV 20 (30 units)
	out, in, err := f.store.SwitchFunds(f.ledger.ID, SwitchInput{
		SourceFundID: source.ID,
		TargetFundID: target.ID,
		Units:        dec("50"),
		SourceNav:    dec("12"),
		TargetNav:    dec("20"),
		Date:         day("2025-06-10"),
	})
	require.NoError(t, err)
	require.Equal(t, in.ID, *out.LinkedTransactionID)
	require.Equal(t, out.ID, *in.LinkedTransactionID)
	requireDecEqual(t, "100", out.RealizedGain)
	requireDecEqual(t, "500", out.CostBasisOfUnitsSold)
	requireDecEqual(t, "30", in.Units)
	requireDecEqual(t, "600", in.TotalAmount)

	src := f.reloadFund(t, source.ID)
	requireDecEqual(t, "50", src.TotalUnits)
	requireDecEqual(t, "10", src.AverageCostPerUnit)
	requireDecEqual(t, "100", src.TotalRealizedGain)
	requireDecEqual(t, "500", src.TotalInvestedCash)
	// no external cash moved
	requireDecEqual(t, "1000", src.ExternalCashInvested)

	tgt := f.reloadFund(t, target.ID)
	requireDecEqual(t, "30", tgt.TotalUnits)
	// transplanted basis is the market value switched in
	requireDecEqual(t, "20", tgt.AverageCostPerUnit)
	requireDecEqual(t, "600", tgt.TotalInvestedCash)
	requireDecEqual(t, "0", tgt.ExternalCashInvested)
}

func TestDeleteEitherSwitchLegReversesBoth(t *testing.T) {
	f := newFixture(t)
	source := f.fund(t, "Source Fund")
	target := f.fund(t, "Target Fund")

	_, err := f.store.CreateMfTransaction(f.user.ID, f.ledger.ID, MfTransactionInput{
		FundID:                 source.ID,
		TransactionType:        models.MfTransactionBuy,
		Units:                  dec("100"),
		AmountExcludingCharges: dec("1000"),
		AccountID:              f.savings.ID,
		Date:                   day("2025-01-10"),
	})
	require.NoError(t, err)

	_, in, err := f.store.SwitchFunds(f.ledger.ID, SwitchInput{
		SourceFundID: source.ID,
		TargetFundID: target.ID,
		Units:        dec("50"),
		SourceNav:    dec("12"),
		TargetNav:    dec("20"),
		Date:         day("2025-06-10"),
	})
	require.NoError(t, err)

	// deleting the switch-in leg reverses both funds
	require.NoError(t, f.store.DeleteMfTransaction(f.user.ID, f.ledger.ID, in.ID))

	src := f.reloadFund(t, source.ID)
	requireDecEqual(t, "100", src.TotalUnits)
	requireDecEqual(t, "10", src.AverageCostPerUnit)
	requireDecEqual(t, "0", src.TotalRealizedGain)
	requireDecEqual(t, "1000", src.TotalInvestedCash)

	tgt := f.reloadFund(t, target.ID)
	requireDecEqual(t, "0", tgt.TotalUnits)
	requireDecEqual(t, "0", tgt.AverageCostPerUnit)
	requireDecEqual(t, "0", tgt.TotalInvestedCash)

	var count int64
	require.NoError(t, f.db.Model(&models.MfTransaction{}).
		Where("transaction_type IN ?", []string{"switch_out", "switch_in"}).
		Count(&count).Error)
	require.Zero(t, count)
}

func TestUpdateNavRevaluesPosition(t *testing.T) {
	f := newFixture(t)
	fund := f.fund(t, "Index Fund")

	_, err := f.store.CreateMfTransaction(f.user.ID, f.ledger.ID, MfTransactionInput{
		FundID:                 fund.ID,
		TransactionType:        models.MfTransactionBuy,
		Units:                  dec("100"),
		AmountExcludingCharges: dec("1000"),
		AccountID:              f.savings.ID,
		Date:                   day("2025-01-10"),
	})
	require.NoError(t, err)

	got, err := f.store.UpdateNav(f.ledger.ID, fund.ID, dec("12.5"))
	require.NoError(t, err)
	requireDecEqual(t, "1250", got.CurrentValue)
	require.NotNil(t, got.LastNavUpdate)

	_, err = f.store.UpdateNav(f.ledger.ID, fund.ID, dec("0"))
	require.Equal(t, KindValidation, KindOf(err))
}

func TestDeleteFundOnlyWhenExited(t *testing.T) {
	f := newFixture(t)
	fund := f.fund(t, "Index Fund")

	_, err := f.store.CreateMfTransaction(f.user.ID, f.ledger.ID, MfTransactionInput{
		FundID:                 fund.ID,
		TransactionType:        models.MfTransactionBuy,
		Units:                  dec("10"),
		AmountExcludingCharges: dec("100"),
		AccountID:              f.checking.ID,
		Date:                   day("2025-01-10"),
	})
	require.NoError(t, err)

	err = f.store.DeleteMutualFund(f.ledger.ID, fund.ID)
	require.Equal(t, KindInvalidOperation, KindOf(err))

	_, err = f.store.CreateMfTransaction(f.user.ID, f.ledger.ID, MfTransactionInput{
		FundID:                 fund.ID,
		TransactionType:        models.MfTransactionSell,
		Units:                  dec("10"),
		AmountExcludingCharges: dec("120"),
		AccountID:              f.checking.ID,
		Date:                   day("2025-03-10"),
	})
	require.NoError(t, err)

	require.NoError(t, f.store.DeleteMutualFund(f.ledger.ID, fund.ID))

	var history int64
	require.NoError(t, f.db.Model(&models.MfTransaction{}).
		Where("mutual_fund_id = ?", fund.ID).Count(&history).Error)
	require.Zero(t, history)
}
