package portfolio

import (
	"errors"
	"sort"
	"testing"
	"time"

	"github.com/dense-analysis/stockwarp/internal/currency"
	"github.com/dense-analysis/stockwarp/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// priorFrom answers history requests from a fixed list of transactions.
func priorFrom(history []model.Transaction) PriorTransactions {
	return func(sell *model.Transaction) ([]model.Transaction, error) {
		var before []model.Transaction

		for _, transaction := range history {
			if transaction.StockID == sell.StockID && transaction.Date.Before(sell.Date) {
				before = append(before, transaction)
			}
		}

		return before, nil
	}
}

func TestCalculateProfitLossConsumesOldestLotsFirst(t *testing.T) {
	var b txBuilder
	sell := b.make(aapl, model.Sell, "15", "150", "2024-03-01")
	prior := []model.Transaction{
		b.make(aapl, model.Buy, "10", "120", "2024-02-01"),
		b.make(aapl, model.Buy, "10", "100", "2024-01-01"),
	}

	profitLoss, unmatched := CalculateProfitLoss(&sell, prior, nil)

	assert.Equal(t, "650", profitLoss.String())
	assert.True(t, unmatched.IsZero())
}

func TestCalculateProfitLossIgnoresEarlierSells(t *testing.T) {
	var b txBuilder
	sell := b.make(aapl, model.Sell, "5", "150", "2024-03-01")
	prior := []model.Transaction{
		b.make(aapl, model.Buy, "10", "100", "2024-01-01"),
		b.make(aapl, model.Sell, "10", "130", "2024-02-01"),
		b.make(aapl, model.Buy, "10", "120", "2024-02-15"),
	}

	profitLoss, _ := CalculateProfitLoss(&sell, prior, nil)

	assert.Equal(t, "250", profitLoss.String())
}

func TestCalculateProfitLossWithoutEnoughLots(t *testing.T) {
	var b txBuilder
	sell := b.make(aapl, model.Sell, "10", "150", "2024-03-01")
	prior := []model.Transaction{
		b.make(aapl, model.Buy, "4", "100", "2024-01-01"),
	}

	profitLoss, unmatched := CalculateProfitLoss(&sell, prior, nil)

	assert.Equal(t, "1100", profitLoss.String())
	assert.Equal(t, "6", unmatched.String())
}

func TestCalculateProfitLossConvertsLots(t *testing.T) {
	var b txBuilder
	table := currency.NewTable([]model.Currency{
		{Code: "USD", Rate: d("1")},
		{Code: "EUR", Rate: d("0.5")},
	})
	sell := b.make(sap, model.Sell, "2", "100", "2024-03-01")
	lot := b.make(sap, model.Buy, "2", "100", "2024-01-01")
	lot.Currency = "USD"

	profitLoss, _ := CalculateProfitLoss(&sell, []model.Transaction{lot}, table)

	assert.Equal(t, "100", profitLoss.String())
}

func TestBuildReportScenario(t *testing.T) {
	var b txBuilder
	history := []model.Transaction{
		b.make(aapl, model.Buy, "10", "100", "2024-01-01"),
		b.make(aapl, model.Buy, "10", "120", "2024-02-01"),
		b.make(aapl, model.Sell, "15", "150", "2024-03-01"),
	}

	report, err := BuildReport([]model.Stock{aapl}, history, priorFrom(history), nil, "USD")

	require.NoError(t, err)
	assert.Empty(t, report.Warnings)
	assert.Equal(t, "USD", report.Currency)

	require.Len(t, report.Daily, 1)
	assert.Equal(t, "2024-03-01", report.Daily[0].Date)
	assert.Equal(t, "650", report.Daily[0].Profit.String())
	assert.True(t, report.Daily[0].Loss.IsZero())
	assert.Equal(t, "650", report.Daily[0].Net.String())

	require.Len(t, report.Stocks, 1)
	assert.Equal(t, aapl, report.Stocks[0].Stock)
	assert.Equal(t, "650", report.Stocks[0].Net.String())
}

func TestBuildReportBuysRealizeNothing(t *testing.T) {
	var b txBuilder
	history := []model.Transaction{
		b.make(aapl, model.Buy, "10", "100", "2024-01-01"),
		b.make(msft, model.Buy, "3", "300", "2024-01-02"),
		b.make(aapl, model.Buy, "1", "90", "2024-01-03"),
	}

	report, err := BuildReport([]model.Stock{aapl, msft, sap}, history, priorFrom(history), nil, "USD")

	require.NoError(t, err)
	assert.Empty(t, report.Daily)
	require.Len(t, report.Stocks, 3)

	for _, stock := range report.Stocks {
		assert.True(t, stock.Net.IsZero())
		assert.True(t, stock.Profit.IsZero())
		assert.True(t, stock.Loss.IsZero())
	}
}

func TestBuildReportSplitsProfitAndLoss(t *testing.T) {
	var b txBuilder
	history := []model.Transaction{
		b.make(aapl, model.Buy, "10", "100", "2024-01-01"),
		b.make(msft, model.Buy, "10", "300", "2024-01-01"),
		b.make(aapl, model.Sell, "2", "130", "2024-01-10"),
		b.make(msft, model.Sell, "1", "250", "2024-01-10"),
		b.make(msft, model.Sell, "1", "310", "2024-01-05"),
	}

	report, err := BuildReport([]model.Stock{aapl, msft}, history, priorFrom(history), nil, "USD")

	require.NoError(t, err)
	require.Len(t, report.Daily, 2)

	assert.Equal(t, "2024-01-05", report.Daily[0].Date)
	assert.Equal(t, "10", report.Daily[0].Net.String())

	assert.Equal(t, "2024-01-10", report.Daily[1].Date)
	assert.Equal(t, "60", report.Daily[1].Profit.String())
	assert.Equal(t, "50", report.Daily[1].Loss.String())
	assert.Equal(t, "10", report.Daily[1].Net.String())

	require.Len(t, report.Stocks, 2)
	assert.Equal(t, "AAPL", report.Stocks[0].Stock.Ticker)
	assert.Equal(t, "60", report.Stocks[0].Net.String())
	assert.Equal(t, "MSFT", report.Stocks[1].Stock.Ticker)
	assert.Equal(t, "10", report.Stocks[1].Profit.String())
	assert.Equal(t, "50", report.Stocks[1].Loss.String())
	assert.Equal(t, "-40", report.Stocks[1].Net.String())
}

func TestBuildReportOrdering(t *testing.T) {
	var b txBuilder
	stockList := []model.Stock{aapl, msft, sap}
	history := []model.Transaction{
		b.make(aapl, model.Buy, "100", "10", "2023-12-01"),
		b.make(msft, model.Buy, "100", "10", "2023-12-01"),
		b.make(sap, model.Buy, "100", "10", "2023-12-01"),
		b.make(sap, model.Sell, "1", "40", "2024-02-03"),
		b.make(aapl, model.Sell, "1", "5", "2024-01-20"),
		b.make(msft, model.Sell, "1", "12", "2024-03-11"),
		b.make(aapl, model.Sell, "1", "8", "2024-01-02"),
		b.make(sap, model.Sell, "1", "9", "2024-01-20"),
	}

	report, err := BuildReport(stockList, history, priorFrom(history), nil, "EUR")

	require.NoError(t, err)
	assert.True(t, sort.SliceIsSorted(report.Daily, func(i, j int) bool {
		return report.Daily[i].Date < report.Daily[j].Date
	}))

	for i := 1; i < len(report.Stocks); i++ {
		assert.False(t, report.Stocks[i].Net.GreaterThan(report.Stocks[i-1].Net))
	}

	assert.Equal(t, "SAP", report.Stocks[0].Stock.Ticker)
}

func TestBuildReportSkipsUnknownStocks(t *testing.T) {
	var b txBuilder
	orphan := model.Stock{ID: "gone", UserID: 1, Ticker: "GONE", Currency: "USD"}
	history := []model.Transaction{
		b.make(orphan, model.Sell, "1", "10", "2024-01-01"),
	}

	report, err := BuildReport([]model.Stock{aapl}, history, priorFrom(history), nil, "USD")

	require.NoError(t, err)
	assert.Empty(t, report.Daily)
	require.Len(t, report.Warnings, 1)
	assert.Equal(t, WarningMissingStock, report.Warnings[0].Kind)
}

func TestBuildReportWarnsOnUncoveredSells(t *testing.T) {
	var b txBuilder
	history := []model.Transaction{
		b.make(aapl, model.Sell, "2", "10", "2024-01-01"),
	}

	report, err := BuildReport([]model.Stock{aapl}, history, priorFrom(history), nil, "USD")

	require.NoError(t, err)
	require.Len(t, report.Warnings, 1)
	assert.Equal(t, WarningInsufficientLots, report.Warnings[0].Kind)
	assert.Equal(t, "20", report.Daily[0].Net.String())
}

func TestBuildReportConvertsToDisplayCurrency(t *testing.T) {
	var b txBuilder
	table := currency.NewTable([]model.Currency{
		{Code: "USD", Rate: d("1")},
		{Code: "EUR", Rate: d("0.5")},
	})
	history := []model.Transaction{
		b.make(sap, model.Buy, "1", "100", "2024-01-01"),
		b.make(sap, model.Sell, "1", "150", "2024-01-02"),
	}

	report, err := BuildReport([]model.Stock{sap}, history, priorFrom(history), table, "USD")

	require.NoError(t, err)
	assert.Equal(t, "USD", report.Currency)
	assert.Equal(t, "100", report.Daily[0].Net.String())
}

func TestBuildReportKeysDaysInUTC(t *testing.T) {
	var b txBuilder
	eastern := time.FixedZone("EST", -5*60*60)
	history := []model.Transaction{
		b.make(aapl, model.Buy, "1", "100", "2024-01-01"),
		b.make(aapl, model.Sell, "1", "130", "2024-03-01"),
	}

	for i := range history {
		history[i].Date = history[i].Date.In(eastern)
	}

	report, err := BuildReport([]model.Stock{aapl}, history, priorFrom(history), nil, "USD")

	require.NoError(t, err)
	require.Len(t, report.Daily, 1)
	assert.Equal(t, "2024-03-01", report.Daily[0].Date)
}

func TestBuildReportStopsOnHistoryErrors(t *testing.T) {
	var b txBuilder
	history := []model.Transaction{
		b.make(aapl, model.Sell, "1", "10", "2024-01-01"),
	}
	failure := errors.New("disk on fire")

	_, err := BuildReport(
		[]model.Stock{aapl},
		history,
		func(*model.Transaction) ([]model.Transaction, error) { return nil, failure },
		nil,
		"USD",
	)

	assert.ErrorIs(t, err, failure)
}
