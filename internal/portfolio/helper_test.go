package portfolio

import (
	"time"

	"github.com/dense-analysis/stockwarp/internal/model"
	"github.com/shopspring/decimal"
)

func d(value string) decimal.Decimal {
	return decimal.RequireFromString(value)
}

func day(value string) time.Time {
	date, err := time.Parse(DayLayout, value)

	if err != nil {
		panic(err)
	}

	return date
}

var (
	aapl = model.Stock{ID: "stock-aapl", UserID: 1, Ticker: "AAPL", Name: "Apple", Currency: "USD"}
	msft = model.Stock{ID: "stock-msft", UserID: 1, Ticker: "MSFT", Name: "Microsoft", Currency: "USD"}
	sap  = model.Stock{ID: "stock-sap", UserID: 1, Ticker: "SAP", Name: "SAP", Currency: "EUR"}
)

type txBuilder struct {
	count int
}

func (b *txBuilder) make(stock model.Stock, kind model.Kind, shares string, price string, date string) model.Transaction {
	b.count++

	return model.Transaction{
		ID:       string(rune('a'+b.count-1)) + "-tx",
		StockID:  stock.ID,
		UserID:   stock.UserID,
		Kind:     kind,
		Shares:   d(shares),
		Price:    d(price),
		Amount:   d(shares).Mul(d(price)),
		Currency: stock.Currency,
		Date:     day(date),
	}
}
