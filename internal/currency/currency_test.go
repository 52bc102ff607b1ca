package currency

import (
	"testing"

	"github.com/dense-analysis/stockwarp/internal/model"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func d(value string) decimal.Decimal {
	return decimal.RequireFromString(value)
}

func testTable() *Table {
	return NewTable([]model.Currency{
		{Code: "USD", Rate: d("1")},
		{Code: "EUR", Rate: d("0.92")},
		{Code: "JPY", Rate: d("151.3")},
		{Code: "gbp", Rate: d("0.79")},
	})
}

func TestConvertSameCurrencyIsExact(t *testing.T) {
	table := testTable()

	for _, amount := range []string{"0", "1", "0.1", "123.456789", "-42.5", "1e-20"} {
		for _, code := range []string{"USD", "EUR", "JPY", "XXX"} {
			assert.True(t, table.Convert(d(amount), code, code).Equal(d(amount)), "%s %s", amount, code)
		}
	}
}

func TestConvertUsesRatio(t *testing.T) {
	table := testTable()

	assert.Equal(t, "92", table.Convert(d("100"), "USD", "EUR").String())
	assert.Equal(t, "100", table.Convert(d("92"), "EUR", "USD").String())
	assert.Equal(t, "15130", table.Convert(d("100"), "USD", "JPY").String())
	assert.Equal(t, "79", table.Convert(d("100"), "USD", "GBP").String())
}

func TestConvertRoundTrip(t *testing.T) {
	table := testTable()
	tolerance := d("0.000000001")
	codes := []string{"USD", "EUR", "JPY", "GBP"}

	for _, from := range codes {
		for _, to := range codes {
			amount := d("1234.5678")
			back := table.Convert(table.Convert(amount, from, to), to, from)

			assert.True(
				t,
				back.Sub(amount).Abs().LessThan(tolerance),
				"%s -> %s -> %s gave %s", from, to, from, back,
			)
		}
	}
}

func TestConvertUnknownCodeUsesRateOne(t *testing.T) {
	table := testTable()

	assert.Equal(t, "100", table.Convert(d("100"), "XXX", "USD").String())
	assert.Equal(t, "92", table.Convert(d("100"), "XXX", "EUR").String())
	assert.Equal(t, "100", table.Convert(d("92"), "EUR", "YYY").String())
}

func TestNilTable(t *testing.T) {
	var table *Table

	assert.Equal(t, 0, table.Len())
	assert.False(t, table.Has("USD"))
	assert.Equal(t, "10", table.Convert(d("10"), "EUR", "USD").String())
}

func TestRateLookupIsCaseInsensitive(t *testing.T) {
	table := testTable()

	rate, ok := table.Rate("eur")
	assert.True(t, ok)
	assert.Equal(t, "0.92", rate.String())

	rate, ok = table.Rate("GBP")
	assert.True(t, ok)
	assert.Equal(t, "0.79", rate.String())

	rate, ok = table.Rate("ZZZ")
	assert.False(t, ok)
	assert.Equal(t, "1", rate.String())
	assert.Equal(t, 4, table.Len())
}
