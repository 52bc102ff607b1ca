package model

import (
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestNewTransactionSequenceKeepsCreationOrder(t *testing.T) {
	stock := Stock{ID: StockID(1, "AAPL"), UserID: 1, Ticker: "AAPL", Currency: "USD"}
	date := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	previous := int64(0)

	for i := 0; i < 1000; i++ {
		transaction := NewTransaction(&stock, Buy, decimal.NewFromInt(1), decimal.NewFromInt(2), "usd", date, "")

		assert.Greater(t, transaction.Sequence, previous)
		previous = transaction.Sequence
	}
}

func TestNextSequenceIsUniqueAcrossGoroutines(t *testing.T) {
	var mu sync.Mutex
	var wg sync.WaitGroup
	seen := map[int64]bool{}

	for i := 0; i < 8; i++ {
		wg.Add(1)

		go func() {
			defer wg.Done()

			for j := 0; j < 200; j++ {
				value := nextSequence()
				mu.Lock()
				seen[value] = true
				mu.Unlock()
			}
		}()
	}

	wg.Wait()
	assert.Len(t, seen, 1600)
}

func TestNewTransaction(t *testing.T) {
	stock := Stock{ID: "s1", UserID: 4, Ticker: "SAP", Currency: "EUR"}
	transaction := NewTransaction(&stock, Sell, decimal.RequireFromString("1.5"), decimal.NewFromInt(10), "eur", time.Now(), "note")

	assert.Equal(t, "15", transaction.Amount.String())
	assert.Equal(t, "EUR", transaction.Currency)
	assert.Equal(t, int64(4), transaction.UserID)
	assert.NotEmpty(t, transaction.ID)
}
