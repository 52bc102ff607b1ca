// Package template holds the HTML pages served by Stockwarp.
package template

import (
	"embed"
	"html/template"
	"io"

	"github.com/dense-analysis/stockwarp/internal/export"
	"github.com/dense-analysis/stockwarp/internal/model"
	"github.com/shopspring/decimal"
)

//go:embed *.tmpl
var templateFS embed.FS

// Page holds the data every page shares through the base template.
type Page struct {
	Title    string
	User     model.User
	DarkMode bool
}

var funcMap = template.FuncMap{
	"money": export.FormatMoney,
	"date": func(value interface{ Format(string) string }) string {
		return value.Format("2006-01-02")
	},
	"negative": func(value decimal.Decimal) bool {
		return value.IsNegative()
	},
}

func parse(files ...string) *template.Template {
	return template.Must(
		template.New("base.tmpl").Funcs(funcMap).ParseFS(templateFS, append([]string{"base.tmpl"}, files...)...),
	)
}

var (
	Login        = parse("login.tmpl")
	Portfolio    = parse("portfolio.tmpl")
	Report       = parse("report.tmpl")
	Transactions = parse("transaction.tmpl")
	Settings     = parse("settings.tmpl")
)

// Render writes a page through the base template.
func Render(tmpl *template.Template, writer io.Writer, data any) error {
	return tmpl.ExecuteTemplate(writer, "base", data)
}
