// Package store defines the record store the portfolio engine reads from.
package store

import (
	"context"
	"errors"

	"github.com/dense-analysis/stockwarp/internal/model"
)

// ErrNotFound is returned when a single record lookup matches nothing.
var ErrNotFound = errors.New("not found")

// ErrInvalidRate is returned when saving a currency with a rate that is not positive.
var ErrInvalidRate = errors.New("exchange rate must be positive")

// Store holds users, stocks, transactions, currencies and settings.
//
// Every stock, transaction and settings record belongs to exactly one user.
// Currencies are shared by everyone.
type Store interface {
	CreateUser(ctx context.Context, user *model.User) error
	GetUser(ctx context.Context, userID int64) (model.User, error)
	FindUserByUsername(ctx context.Context, username string) (model.User, error)

	ListStocksForUser(ctx context.Context, userID int64) ([]model.Stock, error)
	FindStockByTicker(ctx context.Context, userID int64, ticker string) (model.Stock, error)
	CreateStock(ctx context.Context, stock *model.Stock) error

	// ListTransactionsForUser returns transactions in storage order.
	ListTransactionsForUser(ctx context.Context, userID int64) ([]model.Transaction, error)
	// ListTransactionsForStock returns transactions in storage order.
	ListTransactionsForStock(ctx context.Context, stockID string) ([]model.Transaction, error)
	CreateTransaction(ctx context.Context, transaction *model.Transaction) error

	ListAllCurrencies(ctx context.Context) ([]model.Currency, error)
	SaveCurrency(ctx context.Context, currency *model.Currency) error

	// GetOrCreateSettings saves and returns default settings when none exist.
	GetOrCreateSettings(ctx context.Context, userID int64) (model.Settings, error)
	SaveSettings(ctx context.Context, settings *model.Settings) error

	// BackfillTransactionCurrencies copies the stock currency onto
	// transactions saved without one, returning how many were changed.
	BackfillTransactionCurrencies(ctx context.Context) (int, error)
}

var (
	_ Store = (*SQL)(nil)
	_ Store = (*Memory)(nil)
)
