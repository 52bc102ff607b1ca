package portfolio

import (
	"fmt"

	"github.com/dense-analysis/stockwarp/internal/currency"
	"github.com/dense-analysis/stockwarp/internal/model"
	"github.com/shopspring/decimal"
)

// Holding is a user's current position in one stock.
//
// Money values are in the stock's own currency. The cost basis is a running
// weighted average over every buy.
type Holding struct {
	Stock       model.Stock
	Shares      decimal.Decimal
	AverageCost decimal.Decimal
	TotalCost   decimal.Decimal
	ProfitLoss  decimal.Decimal
}

// Holdings computes a holding for every stock with at least one transaction.
//
// Transactions are applied in the order given, which is storage order, not
// date order. Holdings come back in the order of stockList.
func Holdings(
	stockList []model.Stock,
	transactionList []model.Transaction,
	table *currency.Table,
) ([]Holding, []Warning) {
	var warningList []Warning
	conv := converter{table: table, warnings: &warningList}

	byStock := make(map[string][]*model.Transaction, len(stockList))

	for i := range stockList {
		byStock[stockList[i].ID] = nil
	}

	for i := range transactionList {
		transaction := &transactionList[i]

		if _, ok := byStock[transaction.StockID]; !ok {
			warningList = append(warningList, Warning{
				Kind:          WarningMissingStock,
				StockID:       transaction.StockID,
				TransactionID: transaction.ID,
				Message:       "transaction references an unknown stock",
			})

			continue
		}

		byStock[transaction.StockID] = append(byStock[transaction.StockID], transaction)
	}

	holdingList := make([]Holding, 0, len(stockList))

	for _, stock := range stockList {
		stockTransactions := byStock[stock.ID]

		if len(stockTransactions) == 0 {
			continue
		}

		holding := Holding{Stock: stock}

		for _, transaction := range stockTransactions {
			holding.apply(transaction, conv, &warningList)
		}

		holdingList = append(holdingList, holding)
	}

	return holdingList, warningList
}

func (h *Holding) apply(transaction *model.Transaction, conv converter, warningList *[]Warning) {
	price := conv.convert(
		transaction.Price,
		transactionCurrency(transaction, h.Stock.Currency),
		h.Stock.Currency,
		transaction,
	)

	switch transaction.Kind {
	case model.Buy:
		h.TotalCost = h.TotalCost.Add(transaction.Shares.Mul(price))
		h.Shares = h.Shares.Add(transaction.Shares)

		if h.Shares.IsZero() {
			// Only reachable after an oversell left the position negative.
			h.AverageCost = decimal.Zero
			*warningList = append(*warningList, Warning{
				Kind:          WarningZeroShares,
				StockID:       h.Stock.ID,
				TransactionID: transaction.ID,
				Message:       "buy left the position at zero shares",
			})
		} else {
			h.AverageCost = h.TotalCost.Div(h.Shares)
		}
	case model.Sell:
		if transaction.Shares.GreaterThan(h.Shares) {
			*warningList = append(*warningList, Warning{
				Kind:          WarningOversell,
				StockID:       h.Stock.ID,
				TransactionID: transaction.ID,
				Message: fmt.Sprintf(
					"sold %s %s shares while holding %s",
					transaction.Shares,
					h.Stock.Ticker,
					h.Shares,
				),
			})
		}

		saleValue := transaction.Shares.Mul(price)
		costBasis := h.AverageCost.Mul(transaction.Shares)
		h.ProfitLoss = h.ProfitLoss.Add(saleValue.Sub(costBasis))
		h.Shares = h.Shares.Sub(transaction.Shares)

		if h.Shares.IsPositive() {
			h.TotalCost = h.AverageCost.Mul(h.Shares)
		} else {
			h.TotalCost = decimal.Zero
			h.AverageCost = decimal.Zero
		}
	}
}
