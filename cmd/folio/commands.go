package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/dense-analysis/stockwarp/internal/export"
	"github.com/dense-analysis/stockwarp/internal/model"
	"github.com/dense-analysis/stockwarp/internal/portfolio"
	"github.com/fatih/color"
	"github.com/google/subcommands"
	"github.com/shopspring/decimal"
)

var (
	green  = color.New(color.FgGreen).SprintFunc()
	red    = color.New(color.FgRed).SprintFunc()
	yellow = color.New(color.FgYellow).SprintFunc()
)

// signed colors a formatted amount by its sign.
func signed(amount decimal.Decimal, code string) string {
	text := export.FormatMoney(amount, code)

	switch {
	case amount.IsNegative():
		return red(text)
	case amount.IsPositive():
		return green(text)
	default:
		return text
	}
}

func fail(err error) subcommands.ExitStatus {
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)

	return subcommands.ExitFailure
}

func (a *app) printWarnings(warningList []portfolio.Warning) {
	for _, warning := range warningList {
		fmt.Fprintf(a.out, "%s %s: %s\n", yellow("warning"), warning.Kind, warning.Message)
	}
}

// reportRange holds the -start and -end flags of report commands.
type reportRange struct {
	start string
	end   string
}

func (r *reportRange) setFlags(f *flag.FlagSet) {
	f.StringVar(&r.start, "start", "", "first day of the report, YYYY-MM-DD (defaults to the start of the year)")
	f.StringVar(&r.end, "end", "", "last day of the report, YYYY-MM-DD (defaults to today)")
}

func (r *reportRange) parse(now time.Time) (time.Time, time.Time, error) {
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	start := time.Date(now.Year(), 1, 1, 0, 0, 0, 0, time.UTC)
	end := today
	var err error

	if r.start != "" {
		if start, err = time.Parse(portfolio.DayLayout, r.start); err != nil {
			return start, end, fmt.Errorf("invalid -start: %w", err)
		}
	}

	if r.end != "" {
		if end, err = time.Parse(portfolio.DayLayout, r.end); err != nil {
			return start, end, fmt.Errorf("invalid -end: %w", err)
		}
	}

	return start, end, nil
}

type summaryCmd struct {
	app *app
}

func (*summaryCmd) Name() string     { return "summary" }
func (*summaryCmd) Synopsis() string { return "display current holdings" }
func (*summaryCmd) Usage() string {
	return `folio -user <name> summary

  Displays each stock held with its average cost and realized profit/loss.
`
}

func (*summaryCmd) SetFlags(*flag.FlagSet) {}

func (c *summaryCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	userID, err := c.app.userID(ctx)

	if err != nil {
		return fail(err)
	}

	summary, err := c.app.service.PortfolioSummary(ctx, userID)

	if err != nil {
		return fail(err)
	}

	w := tabwriter.NewWriter(c.app.out, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "TICKER\tSHARES\tAVERAGE\tCOST (%s)\tPROFIT/LOSS (%s)\n", summary.Currency, summary.Currency)

	for _, position := range summary.Positions {
		fmt.Fprintf(
			w,
			"%s\t%s\t%s\t%s\t%s\n",
			position.Stock.Ticker,
			position.Shares,
			export.FormatMoney(position.AverageCost, position.Stock.Currency),
			export.FormatMoney(position.DisplayTotalCost, summary.Currency),
			signed(position.DisplayProfitLoss, summary.Currency),
		)
	}

	fmt.Fprintf(
		w,
		"TOTAL\t\t\t%s\t%s\n",
		export.FormatMoney(summary.TotalCost, summary.Currency),
		signed(summary.TotalProfitLoss, summary.Currency),
	)
	w.Flush()
	c.app.printWarnings(summary.Warnings)

	return subcommands.ExitSuccess
}

type reportCmd struct {
	app *app
	reportRange
	byStock bool
}

func (*reportCmd) Name() string     { return "report" }
func (*reportCmd) Synopsis() string { return "display realized profit/loss for a period" }
func (*reportCmd) Usage() string {
	return `folio -user <name> report [-start <date>] [-end <date>] [-stocks]

  Displays profit and loss from sales, per day or per stock.
`
}

func (c *reportCmd) SetFlags(f *flag.FlagSet) {
	c.reportRange.setFlags(f)
	f.BoolVar(&c.byStock, "stocks", false, "group by stock instead of by day")
}

func (c *reportCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	start, end, err := c.parse(time.Now())

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)

		return subcommands.ExitUsageError
	}

	userID, err := c.app.userID(ctx)

	if err != nil {
		return fail(err)
	}

	report, err := c.app.service.ProfitLossReport(ctx, userID, start, end)

	if err != nil {
		return fail(err)
	}

	w := tabwriter.NewWriter(c.app.out, 0, 0, 2, ' ', 0)

	if c.byStock {
		fmt.Fprintf(w, "TICKER\tPROFIT\tLOSS\tNET\n")

		for _, stock := range report.Stocks {
			fmt.Fprintf(
				w,
				"%s\t%s\t%s\t%s\n",
				stock.Stock.Ticker,
				export.FormatMoney(stock.Profit, report.Currency),
				export.FormatMoney(stock.Loss, report.Currency),
				signed(stock.Net, report.Currency),
			)
		}
	} else {
		fmt.Fprintf(w, "DATE\tPROFIT\tLOSS\tNET\n")

		for _, daily := range report.Daily {
			fmt.Fprintf(
				w,
				"%s\t%s\t%s\t%s\n",
				daily.Date,
				export.FormatMoney(daily.Profit, report.Currency),
				export.FormatMoney(daily.Loss, report.Currency),
				signed(daily.Net, report.Currency),
			)
		}
	}

	w.Flush()
	c.app.printWarnings(report.Warnings)

	return subcommands.ExitSuccess
}

type convertCmd struct {
	app *app
}

func (*convertCmd) Name() string     { return "convert" }
func (*convertCmd) Synopsis() string { return "convert an amount between currencies" }
func (*convertCmd) Usage() string {
	return `folio convert <amount> <from> <to>

  Converts an amount with the stored exchange rates.
`
}

func (*convertCmd) SetFlags(*flag.FlagSet) {}

func (c *convertCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 3 {
		fmt.Fprint(os.Stderr, c.Usage())

		return subcommands.ExitUsageError
	}

	amount, err := decimal.NewFromString(f.Arg(0))

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: invalid amount %q\n", f.Arg(0))

		return subcommands.ExitUsageError
	}

	from := strings.ToUpper(f.Arg(1))
	to := strings.ToUpper(f.Arg(2))
	result, err := c.app.service.Convert(ctx, amount, from, to)

	if err != nil {
		return fail(err)
	}

	fmt.Fprintf(c.app.out, "%s = %s\n", export.FormatMoney(amount, from), export.FormatMoney(result, to))

	return subcommands.ExitSuccess
}

type exportCmd struct {
	app *app
	reportRange
	kind   string
	format string
	dark   bool
}

func (*exportCmd) Name() string     { return "export" }
func (*exportCmd) Synopsis() string { return "write holdings, transactions or reports as CSV or HTML" }
func (*exportCmd) Usage() string {
	return `folio -user <name> export [-kind holdings|transactions|daily|stocks] [-format csv|html]

  Writes a table to standard output.
`
}

func (c *exportCmd) SetFlags(f *flag.FlagSet) {
	c.reportRange.setFlags(f)
	f.StringVar(&c.kind, "kind", "holdings", "holdings, transactions, daily or stocks")
	f.StringVar(&c.format, "format", "csv", "csv or html")
	f.BoolVar(&c.dark, "dark", false, "dark HTML page")
}

func (c *exportCmd) table(ctx context.Context, userID int64) (export.Table, error) {
	switch c.kind {
	case "holdings":
		summary, err := c.app.service.PortfolioSummary(ctx, userID)

		return export.HoldingsTable(summary), err
	case "transactions":
		transactionList, err := c.app.service.Transactions(ctx, userID)

		if err != nil {
			return export.Table{}, err
		}

		stockList, err := c.app.service.Stocks(ctx, userID)

		return export.TransactionsTable(transactionList, stockList), err
	case "daily", "stocks":
		start, end, err := c.parse(time.Now())

		if err != nil {
			return export.Table{}, err
		}

		report, err := c.app.service.ProfitLossReport(ctx, userID, start, end)

		if c.kind == "daily" {
			return export.DailyTable(report), err
		}

		return export.StockReportTable(report), err
	}

	return export.Table{}, fmt.Errorf("unknown kind %q", c.kind)
}

func (c *exportCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.format != "csv" && c.format != "html" {
		fmt.Fprintf(os.Stderr, "Error: unknown format %q\n", c.format)

		return subcommands.ExitUsageError
	}

	userID, err := c.app.userID(ctx)

	if err != nil {
		return fail(err)
	}

	table, err := c.table(ctx, userID)

	if err != nil {
		return fail(err)
	}

	if c.format == "csv" {
		err = export.WriteCSV(c.app.out, table)
	} else {
		err = export.WriteHTML(c.app.out, table, c.dark)
	}

	if err != nil {
		return fail(err)
	}

	return subcommands.ExitSuccess
}

type currencyCmd struct {
	app    *app
	set    string
	rate   string
	name   string
	symbol string
}

func (*currencyCmd) Name() string     { return "currency" }
func (*currencyCmd) Synopsis() string { return "list currencies or set an exchange rate" }
func (*currencyCmd) Usage() string {
	return `folio currency [-set <code> -rate <rate> [-name <name>] [-symbol <symbol>]]

  Lists exchange rates, which are units per 1 ` + model.BaseCurrency + `, or saves one.
`
}

func (c *currencyCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.set, "set", "", "currency code to save")
	f.StringVar(&c.rate, "rate", "", "units of the currency per 1 "+model.BaseCurrency)
	f.StringVar(&c.name, "name", "", "currency name")
	f.StringVar(&c.symbol, "symbol", "", "currency symbol")
}

// existing returns the stored currency named by -set, or a new one.
func (c *currencyCmd) existing(ctx context.Context) (model.Currency, error) {
	code := strings.ToUpper(strings.TrimSpace(c.set))
	currencyList, err := c.app.service.Currencies(ctx)

	if err != nil {
		return model.Currency{}, err
	}

	for _, currency := range currencyList {
		if currency.Code == code {
			currency.UpdatedAt = time.Time{}

			return currency, nil
		}
	}

	return model.Currency{Code: code}, nil
}

func (c *currencyCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.set != "" {
		rate, err := decimal.NewFromString(c.rate)

		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: invalid -rate %q\n", c.rate)

			return subcommands.ExitUsageError
		}

		currency, err := c.existing(ctx)

		if err != nil {
			return fail(err)
		}

		currency.Rate = rate

		if c.name != "" {
			currency.Name = c.name
		}

		if c.symbol != "" {
			currency.Symbol = c.symbol
		}

		if err := c.app.service.SaveCurrency(ctx, &currency); err != nil {
			return fail(err)
		}

		fmt.Fprintf(c.app.out, "saved %s at %s\n", currency.Code, currency.Rate)

		return subcommands.ExitSuccess
	}

	currencyList, err := c.app.service.Currencies(ctx)

	if err != nil {
		return fail(err)
	}

	w := tabwriter.NewWriter(c.app.out, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "CODE\tNAME\tSYMBOL\tRATE\tUPDATED\n")

	for _, currency := range currencyList {
		fmt.Fprintf(
			w,
			"%s\t%s\t%s\t%s\t%s\n",
			currency.Code,
			currency.Name,
			currency.Symbol,
			currency.Rate,
			currency.UpdatedAt.Format("2006-01-02 15:04"),
		)
	}

	w.Flush()

	return subcommands.ExitSuccess
}
