// Package portfolio computes holdings and realized profit and loss from a
// user's transactions.
package portfolio

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/dense-analysis/stockwarp/internal/currency"
	"github.com/dense-analysis/stockwarp/internal/model"
	"github.com/dense-analysis/stockwarp/internal/store"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

var (
	// ErrInvalidTransaction wraps validation failures of a new transaction.
	ErrInvalidTransaction = errors.New("invalid transaction")
	// ErrInvalidRange is returned when a report ends before it starts.
	ErrInvalidRange = errors.New("report end is before its start")
	// ErrInvalidSettings is returned when settings name no usable currency.
	ErrInvalidSettings = errors.New("invalid settings")
)

// Service reads records from a store and runs the portfolio computations.
//
// Nothing is cached. Every call reads the store again.
type Service struct {
	store    store.Store
	log      zerolog.Logger
	validate *validator.Validate
}

func NewService(st store.Store, log zerolog.Logger) *Service {
	validate := validator.New()
	validate.RegisterCustomTypeFunc(func(field reflect.Value) any {
		if value, ok := field.Interface().(decimal.Decimal); ok {
			return value.InexactFloat64()
		}

		return nil
	}, decimal.Decimal{})

	return &Service{
		store:    st,
		log:      log.With().Str("service", "portfolio").Logger(),
		validate: validate,
	}
}

// Position is a Holding with its money values also in the display currency.
type Position struct {
	Holding
	DisplayTotalCost  decimal.Decimal
	DisplayProfitLoss decimal.Decimal
}

// Summary is the result of PortfolioSummary.
type Summary struct {
	Currency        string
	Positions       []Position
	TotalCost       decimal.Decimal
	TotalProfitLoss decimal.Decimal
	Warnings        []Warning
}

// Holdings returns the positions without the display currency values.
func (s Summary) Holdings() []Holding {
	holdingList := make([]Holding, len(s.Positions))

	for i, position := range s.Positions {
		holdingList[i] = position.Holding
	}

	return holdingList
}

func (s *Service) currencyTable(ctx context.Context) (*currency.Table, error) {
	currencyList, err := s.store.ListAllCurrencies(ctx)

	if err != nil {
		return nil, fmt.Errorf("list currencies: %w", err)
	}

	return currency.NewTable(currencyList), nil
}

// PortfolioSummary computes the current holdings of a user.
func (s *Service) PortfolioSummary(ctx context.Context, userID int64) (Summary, error) {
	settings, err := s.store.GetOrCreateSettings(ctx, userID)

	if err != nil {
		return Summary{}, fmt.Errorf("load settings: %w", err)
	}

	transactionList, err := s.store.ListTransactionsForUser(ctx, userID)

	if err != nil {
		return Summary{}, fmt.Errorf("list transactions: %w", err)
	}

	stockList, err := s.store.ListStocksForUser(ctx, userID)

	if err != nil {
		return Summary{}, fmt.Errorf("list stocks: %w", err)
	}

	table, err := s.currencyTable(ctx)

	if err != nil {
		return Summary{}, err
	}

	holdingList, warningList := Holdings(stockList, transactionList, table)
	summary := Summary{Currency: settings.DefaultCurrency, Warnings: warningList}
	conv := converter{table: table, warnings: &summary.Warnings}

	for _, holding := range holdingList {
		position := Position{
			Holding:           holding,
			DisplayTotalCost:  conv.convert(holding.TotalCost, holding.Stock.Currency, summary.Currency, nil),
			DisplayProfitLoss: conv.convert(holding.ProfitLoss, holding.Stock.Currency, summary.Currency, nil),
		}
		summary.TotalCost = summary.TotalCost.Add(position.DisplayTotalCost)
		summary.TotalProfitLoss = summary.TotalProfitLoss.Add(position.DisplayProfitLoss)
		summary.Positions = append(summary.Positions, position)
	}

	logWarnings(s.log, userID, summary.Warnings)

	return summary, nil
}

// DayRange returns the first instant of start's day and the first instant
// after end's day. The calendar days of start and end are taken as UTC days.
func DayRange(start time.Time, end time.Time) (time.Time, time.Time, error) {
	from := time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, time.UTC)
	until := time.Date(end.Year(), end.Month(), end.Day(), 0, 0, 0, 0, time.UTC).AddDate(0, 0, 1)

	if !from.Before(until) {
		return from, until, ErrInvalidRange
	}

	return from, until, nil
}

// ProfitLossReport computes the realized profit and loss of every sell
// between the start and end days, both included.
func (s *Service) ProfitLossReport(
	ctx context.Context,
	userID int64,
	start time.Time,
	end time.Time,
) (Report, error) {
	from, until, err := DayRange(start, end)

	if err != nil {
		return Report{}, err
	}

	settings, err := s.store.GetOrCreateSettings(ctx, userID)

	if err != nil {
		return Report{}, fmt.Errorf("load settings: %w", err)
	}

	transactionList, err := s.store.ListTransactionsForUser(ctx, userID)

	if err != nil {
		return Report{}, fmt.Errorf("list transactions: %w", err)
	}

	inRange := make([]model.Transaction, 0, len(transactionList))

	for _, transaction := range transactionList {
		if !transaction.Date.Before(from) && transaction.Date.Before(until) {
			inRange = append(inRange, transaction)
		}
	}

	stockList, err := s.store.ListStocksForUser(ctx, userID)

	if err != nil {
		return Report{}, fmt.Errorf("list stocks: %w", err)
	}

	table, err := s.currencyTable(ctx)

	if err != nil {
		return Report{}, err
	}

	prior := func(sell *model.Transaction) ([]model.Transaction, error) {
		history, err := s.store.ListTransactionsForStock(ctx, sell.StockID)

		if err != nil {
			return nil, fmt.Errorf("list transactions for stock %s: %w", sell.StockID, err)
		}

		before := history[:0]

		for _, transaction := range history {
			if transaction.Date.Before(sell.Date) {
				before = append(before, transaction)
			}
		}

		return before, nil
	}

	report, err := BuildReport(stockList, inRange, prior, table, settings.DefaultCurrency)

	if err != nil {
		return Report{}, err
	}

	report.Start = from
	report.End = until.AddDate(0, 0, -1)
	logWarnings(s.log, userID, report.Warnings)

	return report, nil
}

// Convert converts an amount between two currencies with the stored rates.
func (s *Service) Convert(ctx context.Context, amount decimal.Decimal, from string, to string) (decimal.Decimal, error) {
	table, err := s.currencyTable(ctx)

	if err != nil {
		return decimal.Zero, err
	}

	for _, code := range []string{from, to} {
		if !strings.EqualFold(from, to) && !table.Has(code) {
			s.log.Warn().Str("currency", code).Msg("no exchange rate, using 1")
		}
	}

	return table.Convert(amount, from, to), nil
}

// TransactionInput is a new transaction as entered by a user.
type TransactionInput struct {
	Ticker   string          `validate:"required,max=16"`
	Name     string          `validate:"max=128"`
	Kind     model.Kind      `validate:"required,oneof=1 2"`
	Shares   decimal.Decimal `validate:"gt=0"`
	Price    decimal.Decimal `validate:"gt=0"`
	Currency string          `validate:"omitempty,len=3,alpha"`
	Date     time.Time
	Note     string `validate:"max=500"`
}

// RecordTransaction saves a new transaction.
//
// The stock is created the first time a ticker is seen for the user. A
// transaction without a currency takes the stock's currency, or the user's
// default currency for a new stock.
func (s *Service) RecordTransaction(
	ctx context.Context,
	userID int64,
	input TransactionInput,
) (model.Transaction, error) {
	input.Ticker = model.NormalizeTicker(input.Ticker)
	input.Currency = strings.ToUpper(strings.TrimSpace(input.Currency))
	input.Name = strings.TrimSpace(input.Name)

	if err := s.validate.Struct(input); err != nil {
		return model.Transaction{}, fmt.Errorf("%w: %v", ErrInvalidTransaction, err)
	}

	if input.Date.IsZero() {
		return model.Transaction{}, fmt.Errorf("%w: date is required", ErrInvalidTransaction)
	}

	stock, err := s.store.FindStockByTicker(ctx, userID, input.Ticker)

	if errors.Is(err, store.ErrNotFound) {
		stock, err = s.createStock(ctx, userID, input)
	}

	if err != nil {
		return model.Transaction{}, fmt.Errorf("load stock %s: %w", input.Ticker, err)
	}

	if input.Currency == "" {
		input.Currency = stock.Currency
	}

	transaction := model.NewTransaction(
		&stock,
		input.Kind,
		input.Shares,
		input.Price,
		input.Currency,
		input.Date,
		input.Note,
	)

	if err := s.store.CreateTransaction(ctx, &transaction); err != nil {
		return model.Transaction{}, fmt.Errorf("create transaction: %w", err)
	}

	s.log.Info().
		Int64("user_id", userID).
		Str("ticker", stock.Ticker).
		Str("kind", transaction.Kind.String()).
		Str("shares", transaction.Shares.String()).
		Str("price", transaction.Price.String()).
		Msg("transaction recorded")

	return transaction, nil
}

func (s *Service) createStock(ctx context.Context, userID int64, input TransactionInput) (model.Stock, error) {
	stockCurrency := input.Currency

	if stockCurrency == "" {
		settings, err := s.store.GetOrCreateSettings(ctx, userID)

		if err != nil {
			return model.Stock{}, err
		}

		stockCurrency = settings.DefaultCurrency
	}

	name := input.Name

	if name == "" {
		name = input.Ticker
	}

	stock := model.Stock{
		UserID:   userID,
		Ticker:   input.Ticker,
		Name:     name,
		Currency: stockCurrency,
	}

	if err := s.store.CreateStock(ctx, &stock); err != nil {
		return model.Stock{}, err
	}

	return stock, nil
}

// Transactions lists a user's transactions in storage order.
func (s *Service) Transactions(ctx context.Context, userID int64) ([]model.Transaction, error) {
	return s.store.ListTransactionsForUser(ctx, userID)
}

// Stocks lists a user's stocks by ticker.
func (s *Service) Stocks(ctx context.Context, userID int64) ([]model.Stock, error) {
	return s.store.ListStocksForUser(ctx, userID)
}

// Currencies lists every known currency.
func (s *Service) Currencies(ctx context.Context) ([]model.Currency, error) {
	return s.store.ListAllCurrencies(ctx)
}

// SaveCurrency creates or updates a currency rate.
func (s *Service) SaveCurrency(ctx context.Context, currency *model.Currency) error {
	return s.store.SaveCurrency(ctx, currency)
}

// Settings returns a user's settings, creating the defaults if needed.
func (s *Service) Settings(ctx context.Context, userID int64) (model.Settings, error) {
	return s.store.GetOrCreateSettings(ctx, userID)
}

// SaveSettings stores a user's settings.
func (s *Service) SaveSettings(ctx context.Context, settings *model.Settings) error {
	settings.DefaultCurrency = strings.ToUpper(strings.TrimSpace(settings.DefaultCurrency))

	if len(settings.DefaultCurrency) != 3 {
		return fmt.Errorf("%w: default currency %q", ErrInvalidSettings, settings.DefaultCurrency)
	}

	return s.store.SaveSettings(ctx, settings)
}
