// Package export writes portfolio data as CSV files or HTML pages.
package export

import (
	"embed"
	"encoding/csv"
	"html/template"
	"io"
	"strings"

	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

//go:embed table.tmpl
var templateFS embed.FS

var tableTemplate = template.Must(template.ParseFS(templateFS, "table.tmpl"))

// Table is a titled grid of preformatted cells.
type Table struct {
	Title   string
	Headers []string
	Rows    [][]string
}

// WriteCSV writes the headers and then every row.
func WriteCSV(w io.Writer, table Table) error {
	writer := csv.NewWriter(w)

	if err := writer.Write(table.Headers); err != nil {
		return err
	}

	if err := writer.WriteAll(table.Rows); err != nil {
		return err
	}

	return writer.Error()
}

// WriteHTML writes a standalone HTML page containing the table.
func WriteHTML(w io.Writer, table Table, darkMode bool) error {
	return tableTemplate.Execute(w, struct {
		Table
		DarkMode bool
	}{table, darkMode})
}

// FormatMoney displays an amount with the symbol and precision of its currency.
//
// Codes go-money does not know are shown with two decimals and the code.
func FormatMoney(amount decimal.Decimal, code string) string {
	code = strings.ToUpper(strings.TrimSpace(code))
	currency := money.GetCurrency(code)

	if currency == nil {
		return amount.StringFixed(2) + " " + code
	}

	minor := amount.Shift(int32(currency.Fraction)).Round(0)

	return money.New(minor.IntPart(), currency.Code).Display()
}
