package model

import (
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// BaseCurrency is the currency every exchange rate is expressed against.
const BaseCurrency = "USD"

// User represents a user in the database
type User struct {
	ID           int64
	Username     string
	PasswordHash string
	Email        string
	CreatedAt    time.Time
}

// Stock represents a ticker a user has traded.
type Stock struct {
	ID       string
	UserID   int64
	Ticker   string
	Name     string
	Currency string
}

// stockNamespace scopes stock IDs so the same ticker maps to one ID per user.
var stockNamespace = uuid.MustParse("9a3c3c1e-5a4f-4f0e-8d0e-3b1f3f8f2d6a")

// StockID returns the stable identifier for a user's ticker.
func StockID(userID int64, ticker string) string {
	key := fmt.Sprintf("%d:%s", userID, NormalizeTicker(ticker))

	return uuid.NewSHA1(stockNamespace, []byte(key)).String()
}

// NormalizeTicker upper-cases and trims a ticker symbol.
func NormalizeTicker(ticker string) string {
	return strings.ToUpper(strings.TrimSpace(ticker))
}

// Kind is the side of a transaction.
type Kind int

const (
	Buy Kind = iota + 1
	Sell
)

func (k Kind) String() string {
	switch k {
	case Buy:
		return "buy"
	case Sell:
		return "sell"
	default:
		return "unknown"
	}
}

// ParseKind parses "buy" or "sell".
func ParseKind(value string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "buy":
		return Buy, nil
	case "sell":
		return Sell, nil
	default:
		return 0, fmt.Errorf("unknown transaction kind: %q", value)
	}
}

// Transaction represents a single buy or sell of a stock.
//
// Amount is always Shares × Price, and Price is in Currency.
type Transaction struct {
	ID        string
	StockID   string
	UserID    int64
	Kind      Kind
	Shares    decimal.Decimal
	Price     decimal.Decimal
	Amount    decimal.Decimal
	Currency  string
	Date      time.Time
	Note      string
	CreatedAt time.Time
	// Sequence increases with every transaction made by this process and
	// keeps storage order when CreatedAt values tie.
	Sequence  int64
}

// NewTransaction builds a transaction with a fresh ID and a consistent Amount.
func NewTransaction(
	stock *Stock,
	kind Kind,
	shares decimal.Decimal,
	price decimal.Decimal,
	currency string,
	date time.Time,
	note string,
) Transaction {
	return Transaction{
		ID:        uuid.NewString(),
		StockID:   stock.ID,
		UserID:    stock.UserID,
		Kind:      kind,
		Shares:    shares,
		Price:     price,
		Amount:    shares.Mul(price),
		Currency:  strings.ToUpper(currency),
		Date:      date,
		Note:      note,
		CreatedAt: time.Now().UTC(),
		Sequence:  nextSequence(),
	}
}

var lastSequence atomic.Int64

// nextSequence returns the current time in nanoseconds, bumped past the
// last value handed out.
func nextSequence() int64 {
	for {
		last := lastSequence.Load()
		next := time.Now().UnixNano()

		if next <= last {
			next = last + 1
		}

		if lastSequence.CompareAndSwap(last, next) {
			return next
		}
	}
}

// Currency represents a currency and its rate per 1 unit of BaseCurrency.
type Currency struct {
	Code      string
	Name      string
	Symbol    string
	Rate      decimal.Decimal
	UpdatedAt time.Time
}

// Settings holds the display preferences for a user.
type Settings struct {
	UserID          int64
	DefaultCurrency string
	DarkMode        bool
}

// DefaultSettings returns the settings used when a user has none saved.
func DefaultSettings(userID int64) Settings {
	return Settings{UserID: userID, DefaultCurrency: BaseCurrency}
}
