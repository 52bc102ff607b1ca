package portfolio

import (
	"fmt"

	"github.com/dense-analysis/stockwarp/internal/currency"
	"github.com/dense-analysis/stockwarp/internal/model"
	"github.com/shopspring/decimal"
)

// converter applies a currency table and records fallbacks as warnings.
type converter struct {
	table    *currency.Table
	warnings *[]Warning
}

func (c converter) convert(
	amount decimal.Decimal,
	from string,
	to string,
	transaction *model.Transaction,
) decimal.Decimal {
	if from == to {
		return amount
	}

	if c.warnings != nil {
		for _, code := range [2]string{from, to} {
			if !c.table.Has(code) {
				warning := Warning{
					Kind:     WarningMissingRate,
					Currency: code,
					Message:  fmt.Sprintf("no exchange rate for %s, using 1", code),
				}

				if transaction != nil {
					warning.StockID = transaction.StockID
					warning.TransactionID = transaction.ID
				}

				*c.warnings = append(*c.warnings, warning)
			}
		}
	}

	return c.table.Convert(amount, from, to)
}

// transactionCurrency returns the currency of a transaction, or fallback
// for transactions saved before currencies were recorded.
func transactionCurrency(transaction *model.Transaction, fallback string) string {
	if transaction.Currency == "" {
		return fallback
	}

	return transaction.Currency
}
