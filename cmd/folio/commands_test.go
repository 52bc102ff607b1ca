package main

import (
	"bytes"
	"context"
	"flag"
	"testing"
	"time"

	"github.com/dense-analysis/stockwarp/internal/model"
	"github.com/dense-analysis/stockwarp/internal/portfolio"
	"github.com/dense-analysis/stockwarp/internal/store"
	"github.com/fatih/color"
	"github.com/google/subcommands"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestApp(t *testing.T) (*app, *bytes.Buffer) {
	t.Helper()

	color.NoColor = true
	memory := store.NewMemory()
	ctx := context.Background()

	require.NoError(t, memory.CreateUser(ctx, &model.User{Username: "alex", PasswordHash: "hash"}))

	for _, currency := range []model.Currency{
		{Code: "USD", Name: "US Dollar", Symbol: "$", Rate: decimal.NewFromInt(1)},
		{Code: "EUR", Name: "Euro", Symbol: "€", Rate: decimal.RequireFromString("0.5")},
	} {
		require.NoError(t, memory.SaveCurrency(ctx, &currency))
	}

	out := &bytes.Buffer{}

	return &app{
		store:    memory,
		service:  portfolio.NewService(memory, zerolog.Nop()),
		out:      out,
		username: "alex",
		log:      zerolog.Nop(),
	}, out
}

func run(t *testing.T, command subcommands.Command, args ...string) subcommands.ExitStatus {
	t.Helper()

	f := flag.NewFlagSet(command.Name(), flag.ContinueOnError)
	command.SetFlags(f)
	require.NoError(t, f.Parse(args))

	return command.Execute(context.Background(), f)
}

func recordScenario(t *testing.T, a *app) {
	t.Helper()

	ctx := context.Background()
	userID, err := a.userID(ctx)
	require.NoError(t, err)

	for _, input := range []portfolio.TransactionInput{
		{Ticker: "AAPL", Kind: model.Buy, Shares: decimal.NewFromInt(10), Price: decimal.NewFromInt(100), Date: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)},
		{Ticker: "AAPL", Kind: model.Buy, Shares: decimal.NewFromInt(10), Price: decimal.NewFromInt(120), Date: time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)},
		{Ticker: "AAPL", Kind: model.Sell, Shares: decimal.NewFromInt(15), Price: decimal.NewFromInt(150), Date: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)},
	} {
		_, err := a.service.RecordTransaction(ctx, userID, input)
		require.NoError(t, err)
	}
}

func TestSummaryCommand(t *testing.T) {
	a, out := newTestApp(t)
	recordScenario(t, a)

	assert.Equal(t, subcommands.ExitSuccess, run(t, &summaryCmd{app: a}))
	assert.Contains(t, out.String(), "AAPL")
	assert.Contains(t, out.String(), "$110.00")
	assert.Contains(t, out.String(), "$600.00")
	assert.NotContains(t, out.String(), "warning")
}

func TestReportCommand(t *testing.T) {
	a, out := newTestApp(t)
	recordScenario(t, a)

	assert.Equal(t, subcommands.ExitSuccess, run(t, &reportCmd{app: a}, "-start", "2024-01-01", "-end", "2024-12-31"))
	assert.Contains(t, out.String(), "2024-03-01")
	assert.Contains(t, out.String(), "$650.00")

	out.Reset()
	assert.Equal(t, subcommands.ExitSuccess, run(t, &reportCmd{app: a}, "-start", "2024-01-01", "-end", "2024-12-31", "-stocks"))
	assert.Contains(t, out.String(), "AAPL")

	assert.Equal(t, subcommands.ExitUsageError, run(t, &reportCmd{app: a}, "-start", "March"))
	assert.Equal(t, subcommands.ExitFailure, run(t, &reportCmd{app: a}, "-start", "2024-02-01", "-end", "2024-01-01"))
}

func TestConvertCommand(t *testing.T) {
	a, out := newTestApp(t)

	assert.Equal(t, subcommands.ExitSuccess, run(t, &convertCmd{app: a}, "10", "usd", "eur"))
	assert.Contains(t, out.String(), "$10.00 = ")
	assert.Contains(t, out.String(), "5.00")

	assert.Equal(t, subcommands.ExitUsageError, run(t, &convertCmd{app: a}, "10", "USD"))
	assert.Equal(t, subcommands.ExitUsageError, run(t, &convertCmd{app: a}, "ten", "USD", "EUR"))
}

func TestExportCommand(t *testing.T) {
	a, out := newTestApp(t)
	recordScenario(t, a)

	assert.Equal(t, subcommands.ExitSuccess, run(t, &exportCmd{app: a}, "-kind", "transactions"))
	assert.Contains(t, out.String(), "AAPL")
	assert.Contains(t, out.String(), "sell")

	out.Reset()
	assert.Equal(t, subcommands.ExitSuccess, run(t, &exportCmd{app: a}, "-format", "html"))
	assert.Contains(t, out.String(), "<table")

	assert.Equal(t, subcommands.ExitUsageError, run(t, &exportCmd{app: a}, "-format", "pdf"))
	assert.Equal(t, subcommands.ExitFailure, run(t, &exportCmd{app: a}, "-kind", "dividends"))
}

func TestCurrencyCommand(t *testing.T) {
	a, out := newTestApp(t)

	assert.Equal(t, subcommands.ExitSuccess, run(t, &currencyCmd{app: a}, "-set", "gbp", "-rate", "0.8", "-name", "Pound", "-symbol", "£"))
	assert.Equal(t, "saved GBP at 0.8\n", out.String())

	out.Reset()
	assert.Equal(t, subcommands.ExitSuccess, run(t, &currencyCmd{app: a}))
	assert.Contains(t, out.String(), "GBP")
	assert.Contains(t, out.String(), "Pound")
	assert.Contains(t, out.String(), "EUR")

	assert.Equal(t, subcommands.ExitUsageError, run(t, &currencyCmd{app: a}, "-set", "GBP", "-rate", "lots"))
	assert.Equal(t, subcommands.ExitFailure, run(t, &currencyCmd{app: a}, "-set", "GBP", "-rate", "0"))
}

func TestCurrencyCommandKeepsNameAndSymbol(t *testing.T) {
	a, out := newTestApp(t)

	assert.Equal(t, subcommands.ExitSuccess, run(t, &currencyCmd{app: a}, "-set", "eur", "-rate", "0.9"))
	assert.Equal(t, "saved EUR at 0.9\n", out.String())

	currencyList, err := a.store.ListAllCurrencies(context.Background())
	require.NoError(t, err)
	require.Len(t, currencyList, 2)
	assert.Equal(t, "EUR", currencyList[0].Code)
	assert.Equal(t, "Euro", currencyList[0].Name)
	assert.Equal(t, "€", currencyList[0].Symbol)
	assert.Equal(t, "0.9", currencyList[0].Rate.String())

	assert.Equal(t, subcommands.ExitSuccess, run(t, &currencyCmd{app: a}, "-set", "EUR", "-rate", "0.95", "-symbol", "EUR"))

	currencyList, err = a.store.ListAllCurrencies(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Euro", currencyList[0].Name)
	assert.Equal(t, "EUR", currencyList[0].Symbol)
}

func TestUnknownUser(t *testing.T) {
	a, _ := newTestApp(t)
	a.username = "nobody"

	_, err := a.userID(context.Background())
	assert.ErrorIs(t, err, store.ErrNotFound)

	a.username = ""
	_, err = a.userID(context.Background())
	assert.Error(t, err)
}

func TestReportRangeDefaults(t *testing.T) {
	var r reportRange
	now := time.Date(2024, 6, 15, 13, 30, 0, 0, time.UTC)

	start, end, err := r.parse(now)

	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), start)
	assert.Equal(t, time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC), end)
}
