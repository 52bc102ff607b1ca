// Package currency converts amounts between currencies using stored rates.
package currency

import (
	"strings"

	"github.com/dense-analysis/stockwarp/internal/model"
	"github.com/shopspring/decimal"
)

var one = decimal.NewFromInt(1)

// Table maps a currency code to its rate per 1 unit of the base currency.
//
// A nil Table is valid and knows no rates.
type Table struct {
	rates map[string]decimal.Decimal
}

// NewTable builds a conversion table from currency records.
func NewTable(currencyList []model.Currency) *Table {
	table := &Table{rates: make(map[string]decimal.Decimal, len(currencyList))}

	for _, currency := range currencyList {
		table.rates[normalize(currency.Code)] = currency.Rate
	}

	return table
}

func normalize(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// Rate returns the rate for a code, or 1 and false when the code is unknown.
func (t *Table) Rate(code string) (decimal.Decimal, bool) {
	if t == nil {
		return one, false
	}

	rate, ok := t.rates[normalize(code)]

	if !ok {
		return one, false
	}

	return rate, true
}

// Has reports whether the table knows a rate for code.
func (t *Table) Has(code string) bool {
	_, ok := t.Rate(code)

	return ok
}

// Len returns the number of known currencies.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}

	return len(t.rates)
}

// Convert converts amount from one currency to another.
//
// Converting to the same code returns amount unchanged. Unknown codes are
// treated as having a rate of 1.
func (t *Table) Convert(amount decimal.Decimal, from string, to string) decimal.Decimal {
	if normalize(from) == normalize(to) {
		return amount
	}

	fromRate, _ := t.Rate(from)
	toRate, _ := t.Rate(to)

	return amount.Mul(toRate).Div(fromRate)
}
