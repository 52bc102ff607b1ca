package store

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/dense-analysis/stockwarp/internal/database"
	"github.com/dense-analysis/stockwarp/internal/model"
)

// dialect holds the statements that differ between the two backends.
//
// ClickHouse keeps every version of a currency, stock or settings row in a
// ReplacingMergeTree and reads the latest one with FINAL. Postgres updates
// the row in place.
type dialect struct {
	final          string
	currencyUpsert string
	settingsUpsert string
	currencyUpdate string
}

var clickHouseDialect = dialect{
	final:          " final",
	currencyUpdate: `alter table folio_transaction update currency = $1 where id = $2`,
}

var postgresDialect = dialect{
	currencyUpsert: ` on conflict (code) do update set
		name = excluded.name,
		symbol = excluded.symbol,
		rate = excluded.rate,
		updated_at = excluded.updated_at`,
	settingsUpsert: ` on conflict (user_id) do update set
		default_currency = excluded.default_currency,
		dark_mode = excluded.dark_mode,
		updated_at = excluded.updated_at`,
	currencyUpdate: `update folio_transaction set currency = $1 where id = $2`,
}

// SQL is a Store backed by ClickHouse or Postgres.
type SQL struct {
	conn    database.Queryable
	dialect dialect
}

// NewSQL creates a store using the dialect of the connection's driver.
func NewSQL(conn database.Queryable) *SQL {
	sqlStore := &SQL{conn: conn, dialect: clickHouseDialect}

	if conn.Driver() == database.Postgres {
		sqlStore.dialect = postgresDialect
	}

	return sqlStore
}

func notFound(err error) error {
	if database.IsNoRows(err) {
		return ErrNotFound
	}

	return err
}

var userQuery = `select id, username, password, email, created_at from folio_user `

func scanUser(row database.Row, user *model.User) error {
	return row.Scan(
		&user.ID,
		&user.Username,
		&user.PasswordHash,
		&user.Email,
		&user.CreatedAt,
	)
}

// CreateUser inserts a user, assigning a random ID when it has none.
func (s *SQL) CreateUser(ctx context.Context, user *model.User) error {
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

	return s.conn.Exec(
		ctx,
		`insert into folio_user (id, username, password, email, created_at)
		values ($1, $2, $3, $4, $5)`,
		user.ID,
		user.Username,
		user.PasswordHash,
		user.Email,
		user.CreatedAt,
	)
}

func (s *SQL) GetUser(ctx context.Context, userID int64) (model.User, error) {
	var user model.User
	row := s.conn.QueryRow(ctx, userQuery+"where id = $1", userID)

	return user, notFound(scanUser(row, &user))
}

func (s *SQL) FindUserByUsername(ctx context.Context, username string) (model.User, error) {
	var user model.User
	row := s.conn.QueryRow(ctx, userQuery+"where username = $1", username)

	return user, notFound(scanUser(row, &user))
}

func (s *SQL) stockQuery() string {
	return `select id, user_id, ticker, name, currency from folio_stock` + s.dialect.final + " "
}

func scanStock(row database.Row, stock *model.Stock) error {
	return row.Scan(
		&stock.ID,
		&stock.UserID,
		&stock.Ticker,
		&stock.Name,
		&stock.Currency,
	)
}

func (s *SQL) ListStocksForUser(ctx context.Context, userID int64) ([]model.Stock, error) {
	var stockList []model.Stock

	err := model.LoadList(
		ctx,
		s.conn,
		&stockList,
		16,
		scanStock,
		s.stockQuery()+"where user_id = $1 order by ticker",
		userID,
	)

	return stockList, err
}

func (s *SQL) FindStockByTicker(ctx context.Context, userID int64, ticker string) (model.Stock, error) {
	var stock model.Stock
	row := s.conn.QueryRow(
		ctx,
		s.stockQuery()+"where user_id = $1 and ticker = $2",
		userID,
		model.NormalizeTicker(ticker),
	)

	return stock, notFound(scanStock(row, &stock))
}

func (s *SQL) CreateStock(ctx context.Context, stock *model.Stock) error {
	stock.Ticker = model.NormalizeTicker(stock.Ticker)

	if stock.ID == "" {
		stock.ID = model.StockID(stock.UserID, stock.Ticker)
	}

	return s.conn.Exec(
		ctx,
		`insert into folio_stock (id, user_id, ticker, name, currency)
		values ($1, $2, $3, $4, $5)`,
		stock.ID,
		stock.UserID,
		stock.Ticker,
		stock.Name,
		stock.Currency,
	)
}

var transactionQuery = `
select
	id,
	stock_id,
	user_id,
	kind,
	shares,
	price,
	amount,
	currency,
	date,
	note,
	created_at
from folio_transaction
`

func scanTransaction(row database.Row, transaction *model.Transaction) error {
	var kind string

	if err := row.Scan(
		&transaction.ID,
		&transaction.StockID,
		&transaction.UserID,
		&kind,
		&transaction.Shares,
		&transaction.Price,
		&transaction.Amount,
		&transaction.Currency,
		&transaction.Date,
		&transaction.Note,
		&transaction.CreatedAt,
	); err != nil {
		return err
	}

	var err error
	transaction.Kind, err = model.ParseKind(kind)

	return err
}

func (s *SQL) ListTransactionsForUser(ctx context.Context, userID int64) ([]model.Transaction, error) {
	var transactionList []model.Transaction

	err := model.LoadList(
		ctx,
		s.conn,
		&transactionList,
		64,
		scanTransaction,
		transactionQuery+"where user_id = $1 order by sequence, created_at, id",
		userID,
	)

	return transactionList, err
}

func (s *SQL) ListTransactionsForStock(ctx context.Context, stockID string) ([]model.Transaction, error) {
	var transactionList []model.Transaction

	err := model.LoadList(
		ctx,
		s.conn,
		&transactionList,
		64,
		scanTransaction,
		transactionQuery+"where stock_id = $1 order by sequence, created_at, id",
		stockID,
	)

	return transactionList, err
}

func (s *SQL) CreateTransaction(ctx context.Context, transaction *model.Transaction) error {
	return s.conn.Exec(
		ctx,
		`insert into folio_transaction
			(id, stock_id, user_id, kind, shares, price, amount, currency, date, note, created_at, sequence)
		values ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		transaction.ID,
		transaction.StockID,
		transaction.UserID,
		transaction.Kind.String(),
		transaction.Shares.String(),
		transaction.Price.String(),
		transaction.Amount.String(),
		transaction.Currency,
		transaction.Date,
		transaction.Note,
		transaction.CreatedAt,
		transaction.Sequence,
	)
}

func scanCurrency(row database.Row, currency *model.Currency) error {
	return row.Scan(
		&currency.Code,
		&currency.Name,
		&currency.Symbol,
		&currency.Rate,
		&currency.UpdatedAt,
	)
}

func (s *SQL) ListAllCurrencies(ctx context.Context) ([]model.Currency, error) {
	var currencyList []model.Currency

	err := model.LoadList(
		ctx,
		s.conn,
		&currencyList,
		20,
		scanCurrency,
		`select code, name, symbol, rate, updated_at from folio_currency`+
			s.dialect.final+
			` order by code`,
	)

	return currencyList, err
}

func (s *SQL) SaveCurrency(ctx context.Context, currency *model.Currency) error {
	currency.Code = strings.ToUpper(strings.TrimSpace(currency.Code))

	if !currency.Rate.IsPositive() {
		return fmt.Errorf("currency %s: %w", currency.Code, ErrInvalidRate)
	}

	if currency.UpdatedAt.IsZero() {
		currency.UpdatedAt = time.Now().UTC()
	}

	return s.conn.Exec(
		ctx,
		`insert into folio_currency (code, name, symbol, rate, updated_at)
		values ($1, $2, $3, $4, $5)`+s.dialect.currencyUpsert,
		currency.Code,
		currency.Name,
		currency.Symbol,
		currency.Rate.String(),
		currency.UpdatedAt,
	)
}

func (s *SQL) GetOrCreateSettings(ctx context.Context, userID int64) (model.Settings, error) {
	settings := model.Settings{UserID: userID}
	row := s.conn.QueryRow(
		ctx,
		`select default_currency, dark_mode from folio_settings`+
			s.dialect.final+
			` where user_id = $1`,
		userID,
	)

	err := row.Scan(&settings.DefaultCurrency, &settings.DarkMode)

	if err == nil {
		return settings, nil
	}

	if !database.IsNoRows(err) {
		return settings, err
	}

	settings = model.DefaultSettings(userID)

	return settings, s.SaveSettings(ctx, &settings)
}

func (s *SQL) SaveSettings(ctx context.Context, settings *model.Settings) error {
	return s.conn.Exec(
		ctx,
		`insert into folio_settings (user_id, default_currency, dark_mode, updated_at)
		values ($1, $2, $3, $4)`+s.dialect.settingsUpsert,
		settings.UserID,
		settings.DefaultCurrency,
		settings.DarkMode,
		time.Now().UTC(),
	)
}

type missingCurrency struct {
	transactionID string
	currency      string
}

func (s *SQL) BackfillTransactionCurrencies(ctx context.Context) (int, error) {
	var missingList []missingCurrency

	err := model.LoadList(
		ctx,
		s.conn,
		&missingList,
		0,
		func(row database.Row, missing *missingCurrency) error {
			return row.Scan(&missing.transactionID, &missing.currency)
		},
		`select folio_transaction.id, folio_stock.currency
		from folio_transaction
		inner join folio_stock
		on folio_stock.id = folio_transaction.stock_id
		where folio_transaction.currency = ''`,
	)

	if err != nil {
		return 0, err
	}

	for i, missing := range missingList {
		if err := s.conn.Exec(ctx, s.dialect.currencyUpdate, missing.currency, missing.transactionID); err != nil {
			return i, fmt.Errorf("backfill transaction %s: %w", missing.transactionID, err)
		}
	}

	return len(missingList), nil
}
