package portfolio

import "github.com/rs/zerolog"

// WarningKind names a data anomaly that was tolerated during a computation.
type WarningKind string

const (
	// WarningOversell is a sell of more shares than were held at the time.
	WarningOversell WarningKind = "oversell"
	// WarningMissingStock is a transaction whose stock is not among the user's stocks.
	WarningMissingStock WarningKind = "missing_stock"
	// WarningMissingRate is a conversion that fell back to a rate of 1.
	WarningMissingRate WarningKind = "missing_rate"
	// WarningZeroShares is a buy that left the position at exactly zero shares.
	WarningZeroShares WarningKind = "zero_shares"
	// WarningInsufficientLots is a sell not fully covered by earlier buys.
	WarningInsufficientLots WarningKind = "insufficient_lots"
)

// Warning describes an anomaly. Warnings never change computed values.
type Warning struct {
	Kind          WarningKind `json:"kind"`
	StockID       string      `json:"stock_id,omitempty"`
	TransactionID string      `json:"transaction_id,omitempty"`
	Currency      string      `json:"currency,omitempty"`
	Message       string      `json:"message"`
}

func logWarnings(log zerolog.Logger, userID int64, warningList []Warning) {
	for _, warning := range warningList {
		log.Warn().
			Int64("user_id", userID).
			Str("kind", string(warning.Kind)).
			Str("stock_id", warning.StockID).
			Str("transaction_id", warning.TransactionID).
			Str("currency", warning.Currency).
			Msg(warning.Message)
	}
}
