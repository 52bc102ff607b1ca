package portfolio

import (
	"fmt"
	"sort"
	"time"

	"github.com/dense-analysis/stockwarp/internal/currency"
	"github.com/dense-analysis/stockwarp/internal/model"
	"github.com/shopspring/decimal"
)

// DayLayout is the format of the calendar day keys in a report.
const DayLayout = "2006-01-02"

// DailyProfitLoss is the realized profit and loss booked on one day.
type DailyProfitLoss struct {
	Date   string
	Profit decimal.Decimal
	Loss   decimal.Decimal
	Net    decimal.Decimal
}

// StockProfitLoss is the realized profit and loss booked for one stock.
type StockProfitLoss struct {
	Stock  model.Stock
	Profit decimal.Decimal
	Loss   decimal.Decimal
	Net    decimal.Decimal
}

// Report is the realized profit and loss over a range of days.
//
// Daily is sorted by date ascending and Stocks by net descending. Every
// stock of the user appears in Stocks, even with nothing realized.
type Report struct {
	Start    time.Time
	End      time.Time
	Currency string
	Daily    []DailyProfitLoss
	Stocks   []StockProfitLoss
	Warnings []Warning
}

// PriorTransactions returns the full history of a stock before a sell.
type PriorTransactions func(sell *model.Transaction) ([]model.Transaction, error)

// CalculateProfitLoss returns the realized profit or loss of a sell.
//
// The cost basis takes buys from prior oldest first until the sold shares
// are covered. Shares that no earlier buy covers get no cost at all, and are
// returned as unmatched. Lot prices are converted into the sell's currency.
func CalculateProfitLoss(
	sell *model.Transaction,
	prior []model.Transaction,
	table *currency.Table,
) (profitLoss decimal.Decimal, unmatched decimal.Decimal) {
	return calculateProfitLoss(sell, prior, converter{table: table}, sell.Currency)
}

func calculateProfitLoss(
	sell *model.Transaction,
	prior []model.Transaction,
	conv converter,
	sellCurrency string,
) (decimal.Decimal, decimal.Decimal) {
	lotList := make([]*model.Transaction, 0, len(prior))

	for i := range prior {
		if prior[i].Kind == model.Buy {
			lotList = append(lotList, &prior[i])
		}
	}

	sort.SliceStable(lotList, func(i, j int) bool {
		return lotList[i].Date.Before(lotList[j].Date)
	})

	remaining := sell.Shares
	costBasis := decimal.Zero

	for _, lot := range lotList {
		if !remaining.IsPositive() {
			break
		}

		taken := decimal.Min(remaining, lot.Shares)
		lotPrice := conv.convert(lot.Price, transactionCurrency(lot, sellCurrency), sellCurrency, lot)
		costBasis = costBasis.Add(taken.Mul(lotPrice))
		remaining = remaining.Sub(taken)
	}

	if remaining.IsNegative() {
		remaining = decimal.Zero
	}

	return sell.Shares.Mul(sell.Price).Sub(costBasis), remaining
}

func (d *DailyProfitLoss) add(value decimal.Decimal) {
	d.Profit, d.Loss, d.Net = accumulate(d.Profit, d.Loss, d.Net, value)
}

func (s *StockProfitLoss) add(value decimal.Decimal) {
	s.Profit, s.Loss, s.Net = accumulate(s.Profit, s.Loss, s.Net, value)
}

func accumulate(profit, loss, net, value decimal.Decimal) (decimal.Decimal, decimal.Decimal, decimal.Decimal) {
	if value.IsPositive() {
		profit = profit.Add(value)
	} else if value.IsNegative() {
		loss = loss.Add(value.Abs())
	}

	return profit, loss, net.Add(value)
}

// BuildReport aggregates the realized profit and loss of every sell in
// transactionList into days and stocks.
//
// Days are UTC calendar days, whatever location the dates carry.
// transactionList must already be limited to the report range. Buys are
// skipped. Sells of stocks missing from stockList are skipped with a
// warning. Amounts are converted into displayCurrency.
func BuildReport(
	stockList []model.Stock,
	transactionList []model.Transaction,
	prior PriorTransactions,
	table *currency.Table,
	displayCurrency string,
) (Report, error) {
	report := Report{Currency: displayCurrency}
	conv := converter{table: table, warnings: &report.Warnings}

	stockIndex := make(map[string]int, len(stockList))
	report.Stocks = make([]StockProfitLoss, len(stockList))

	for i, stock := range stockList {
		stockIndex[stock.ID] = i
		report.Stocks[i].Stock = stock
	}

	dayIndex := map[string]int{}
	report.Daily = []DailyProfitLoss{}

	for i := range transactionList {
		sell := &transactionList[i]

		if sell.Kind != model.Sell {
			continue
		}

		index, ok := stockIndex[sell.StockID]

		if !ok {
			report.Warnings = append(report.Warnings, Warning{
				Kind:          WarningMissingStock,
				StockID:       sell.StockID,
				TransactionID: sell.ID,
				Message:       "sell references an unknown stock",
			})

			continue
		}

		history, err := prior(sell)

		if err != nil {
			return Report{}, err
		}

		sellCurrency := transactionCurrency(sell, report.Stocks[index].Stock.Currency)
		value, unmatched := calculateProfitLoss(sell, history, conv, sellCurrency)

		if unmatched.IsPositive() {
			report.Warnings = append(report.Warnings, Warning{
				Kind:          WarningInsufficientLots,
				StockID:       sell.StockID,
				TransactionID: sell.ID,
				Message: fmt.Sprintf(
					"%s of %s shares sold had no earlier buy",
					unmatched,
					sell.Shares,
				),
			})
		}

		value = conv.convert(value, sellCurrency, displayCurrency, sell)
		day := sell.Date.UTC().Format(DayLayout)

		if _, ok := dayIndex[day]; !ok {
			dayIndex[day] = len(report.Daily)
			report.Daily = append(report.Daily, DailyProfitLoss{Date: day})
		}

		report.Daily[dayIndex[day]].add(value)
		report.Stocks[index].add(value)
	}

	sort.SliceStable(report.Daily, func(i, j int) bool {
		return report.Daily[i].Date < report.Daily[j].Date
	})

	sort.SliceStable(report.Stocks, func(i, j int) bool {
		return report.Stocks[i].Net.GreaterThan(report.Stocks[j].Net)
	})

	return report, nil
}
