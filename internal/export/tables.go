package export

import (
	"fmt"

	"github.com/dense-analysis/stockwarp/internal/model"
	"github.com/dense-analysis/stockwarp/internal/portfolio"
)

const dateLayout = "2006-01-02"

// HoldingsTable lists each position, with costs in the stock's own currency
// followed by the totals in the summary currency.
func HoldingsTable(summary portfolio.Summary) Table {
	table := Table{
		Title: "Holdings",
		Headers: []string{
			"Ticker",
			"Name",
			"Shares",
			"Average Cost",
			"Total Cost",
			"Profit/Loss",
			"Total Cost (" + summary.Currency + ")",
			"Profit/Loss (" + summary.Currency + ")",
		},
		Rows: make([][]string, 0, len(summary.Positions)+1),
	}

	for _, position := range summary.Positions {
		code := position.Stock.Currency

		table.Rows = append(table.Rows, []string{
			position.Stock.Ticker,
			position.Stock.Name,
			position.Shares.String(),
			FormatMoney(position.AverageCost, code),
			FormatMoney(position.TotalCost, code),
			FormatMoney(position.ProfitLoss, code),
			FormatMoney(position.DisplayTotalCost, summary.Currency),
			FormatMoney(position.DisplayProfitLoss, summary.Currency),
		})
	}

	table.Rows = append(table.Rows, []string{
		"Total", "", "", "", "", "",
		FormatMoney(summary.TotalCost, summary.Currency),
		FormatMoney(summary.TotalProfitLoss, summary.Currency),
	})

	return table
}

// TransactionsTable lists transactions in the order given.
func TransactionsTable(transactionList []model.Transaction, stockList []model.Stock) Table {
	tickers := make(map[string]string, len(stockList))

	for _, stock := range stockList {
		tickers[stock.ID] = stock.Ticker
	}

	table := Table{
		Title:   "Transactions",
		Headers: []string{"Date", "Ticker", "Kind", "Shares", "Price", "Amount", "Currency", "Note"},
		Rows:    make([][]string, 0, len(transactionList)),
	}

	for _, transaction := range transactionList {
		ticker, ok := tickers[transaction.StockID]

		if !ok {
			ticker = transaction.StockID
		}

		table.Rows = append(table.Rows, []string{
			transaction.Date.Format(dateLayout),
			ticker,
			transaction.Kind.String(),
			transaction.Shares.String(),
			FormatMoney(transaction.Price, transaction.Currency),
			FormatMoney(transaction.Amount, transaction.Currency),
			transaction.Currency,
			transaction.Note,
		})
	}

	return table
}

func reportTitle(prefix string, report portfolio.Report) string {
	return fmt.Sprintf(
		"%s %s to %s",
		prefix,
		report.Start.Format(dateLayout),
		report.End.Format(dateLayout),
	)
}

// DailyTable lists realized profit and loss per day.
func DailyTable(report portfolio.Report) Table {
	table := Table{
		Title:   reportTitle("Daily profit/loss", report),
		Headers: []string{"Date", "Profit", "Loss", "Net"},
		Rows:    make([][]string, 0, len(report.Daily)),
	}

	for _, daily := range report.Daily {
		table.Rows = append(table.Rows, []string{
			daily.Date,
			FormatMoney(daily.Profit, report.Currency),
			FormatMoney(daily.Loss, report.Currency),
			FormatMoney(daily.Net, report.Currency),
		})
	}

	return table
}

// StockReportTable lists realized profit and loss per stock.
func StockReportTable(report portfolio.Report) Table {
	table := Table{
		Title:   reportTitle("Profit/loss by stock", report),
		Headers: []string{"Ticker", "Name", "Profit", "Loss", "Net"},
		Rows:    make([][]string, 0, len(report.Stocks)),
	}

	for _, stock := range report.Stocks {
		table.Rows = append(table.Rows, []string{
			stock.Stock.Ticker,
			stock.Stock.Name,
			FormatMoney(stock.Profit, report.Currency),
			FormatMoney(stock.Loss, report.Currency),
			FormatMoney(stock.Net, report.Currency),
		})
	}

	return table
}
