package store

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/dense-analysis/stockwarp/internal/database"
	"github.com/dense-analysis/stockwarp/internal/model"
)

// Memory is a Store kept entirely in memory.
//
// Transactions are kept in the order they were created, which is the storage
// order the engine relies on.
type Memory struct {
	mu           sync.RWMutex
	users        map[int64]model.User
	stocks       map[string]model.Stock
	transactions []model.Transaction
	currencies   map[string]model.Currency
	settings     map[int64]model.Settings
}

func NewMemory() *Memory {
	return &Memory{
		users:      make(map[int64]model.User),
		stocks:     make(map[string]model.Stock),
		currencies: make(map[string]model.Currency),
		settings:   make(map[int64]model.Settings),
	}
}

func (m *Memory) CreateUser(_ context.Context, user *model.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, existing := range m.users {
		if existing.Username == user.Username {
			return fmt.Errorf("username %q already exists", user.Username)
		}
	}

	if user.ID == 0 {
		id, err := database.RandomID()

		if err != nil {
			return err
		}

		user.ID = id
	}

	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now().UTC()
	}

	m.users[user.ID] = *user

	return nil
}

func (m *Memory) GetUser(_ context.Context, userID int64) (model.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	user, ok := m.users[userID]

	if !ok {
		return model.User{}, ErrNotFound
	}

	return user, nil
}

func (m *Memory) FindUserByUsername(_ context.Context, username string) (model.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, user := range m.users {
		if user.Username == username {
			return user, nil
		}
	}

	return model.User{}, ErrNotFound
}

func (m *Memory) ListStocksForUser(_ context.Context, userID int64) ([]model.Stock, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	stockList := make([]model.Stock, 0, len(m.stocks))

	for _, stock := range m.stocks {
		if stock.UserID == userID {
			stockList = append(stockList, stock)
		}
	}

	sort.Slice(stockList, func(i, j int) bool {
		return stockList[i].Ticker < stockList[j].Ticker
	})

	return stockList, nil
}

func (m *Memory) FindStockByTicker(_ context.Context, userID int64, ticker string) (model.Stock, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	stock, ok := m.stocks[model.StockID(userID, ticker)]

	if !ok {
		return model.Stock{}, ErrNotFound
	}

	return stock, nil
}

func (m *Memory) CreateStock(_ context.Context, stock *model.Stock) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	stock.Ticker = model.NormalizeTicker(stock.Ticker)

	if stock.ID == "" {
		stock.ID = model.StockID(stock.UserID, stock.Ticker)
	}

	m.stocks[stock.ID] = *stock

	return nil
}

func (m *Memory) filterTransactions(keep func(*model.Transaction) bool) []model.Transaction {
	m.mu.RLock()
	defer m.mu.RUnlock()

	transactionList := make([]model.Transaction, 0)

	for i := range m.transactions {
		if keep(&m.transactions[i]) {
			transactionList = append(transactionList, m.transactions[i])
		}
	}

	return transactionList
}

func (m *Memory) ListTransactionsForUser(_ context.Context, userID int64) ([]model.Transaction, error) {
	return m.filterTransactions(func(transaction *model.Transaction) bool {
		return transaction.UserID == userID
	}), nil
}

func (m *Memory) ListTransactionsForStock(_ context.Context, stockID string) ([]model.Transaction, error) {
	return m.filterTransactions(func(transaction *model.Transaction) bool {
		return transaction.StockID == stockID
	}), nil
}

func (m *Memory) CreateTransaction(_ context.Context, transaction *model.Transaction) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.transactions = append(m.transactions, *transaction)

	return nil
}

func (m *Memory) ListAllCurrencies(_ context.Context) ([]model.Currency, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	currencyList := make([]model.Currency, 0, len(m.currencies))

	for _, currency := range m.currencies {
		currencyList = append(currencyList, currency)
	}

	sort.Slice(currencyList, func(i, j int) bool {
		return currencyList[i].Code < currencyList[j].Code
	})

	return currencyList, nil
}

func (m *Memory) SaveCurrency(_ context.Context, currency *model.Currency) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	currency.Code = strings.ToUpper(strings.TrimSpace(currency.Code))

	if !currency.Rate.IsPositive() {
		return fmt.Errorf("currency %s: %w", currency.Code, ErrInvalidRate)
	}

	if currency.UpdatedAt.IsZero() {
		currency.UpdatedAt = time.Now().UTC()
	}

	m.currencies[currency.Code] = *currency

	return nil
}

func (m *Memory) GetOrCreateSettings(_ context.Context, userID int64) (model.Settings, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	settings, ok := m.settings[userID]

	if !ok {
		settings = model.DefaultSettings(userID)
		m.settings[userID] = settings
	}

	return settings, nil
}

func (m *Memory) SaveSettings(_ context.Context, settings *model.Settings) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.settings[settings.UserID] = *settings

	return nil
}

func (m *Memory) BackfillTransactionCurrencies(_ context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	count := 0

	for i := range m.transactions {
		transaction := &m.transactions[i]

		if transaction.Currency != "" {
			continue
		}

		if stock, ok := m.stocks[transaction.StockID]; ok {
			transaction.Currency = stock.Currency
			count++
		}
	}

	return count, nil
}
