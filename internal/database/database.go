// Package database wraps the database implementations used for Stockwarp.
//
// Records can live in ClickHouse or in PostgreSQL. Both are reached through
// database/sql so the same queries, written with $1 style placeholders, run
// against either one.
package database

import (
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/binary"
	"errors"
	"fmt"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2"
	_ "github.com/jackc/pgx/v4/stdlib"
)

// Driver names a supported database backend.
type Driver string

const (
	ClickHouse Driver = "clickhouse"
	Postgres   Driver = "postgres"
)

// ParseDriver validates a driver name from configuration.
func ParseDriver(name string) (Driver, error) {
	switch Driver(name) {
	case ClickHouse, Postgres:
		return Driver(name), nil
	case "":
		return ClickHouse, nil
	default:
		return "", fmt.Errorf("unsupported database driver: %q", name)
	}
}

// Options are the connection settings read from the environment.
type Options struct {
	Driver   Driver
	Host     string
	Port     string
	Name     string
	Username string
	Password string
}

type Conn struct {
	db     *sql.DB
	driver Driver
}

type Row interface {
	Scan(dest ...any) error
}

type Rows interface {
	Next() bool
	Scan(dest ...any) error
	Close() error
	Err() error
}

var ErrNoRows = sql.ErrNoRows

// Queryable defines an interface for a connection.
type Queryable interface {
	Exec(ctx context.Context, sql string, arguments ...any) error
	Query(ctx context.Context, sql string, arguments ...any) (Rows, error)
	QueryRow(ctx context.Context, sql string, arguments ...any) Row
	Driver() Driver
}

// Connect opens a connection with the given options and checks it works.
func Connect(ctx context.Context, options Options) (*Conn, error) {
	var db *sql.DB

	switch options.Driver {
	case ClickHouse:
		db = clickhouse.OpenDB(&clickhouse.Options{
			Addr: []string{fmt.Sprintf("%s:%s", options.Host, options.Port)},
			Auth: clickhouse.Auth{
				Database: options.Name,
				Username: options.Username,
				Password: options.Password,
			},
			DialTimeout: time.Second * 5,
		})
	case Postgres:
		var err error
		db, err = sql.Open("pgx", fmt.Sprintf(
			"postgres://%s:%s@%s:%s/%s",
			options.Username,
			options.Password,
			options.Host,
			options.Port,
			options.Name,
		))

		if err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("unsupported database driver: %q", options.Driver)
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()

		return nil, err
	}

	return &Conn{db: db, driver: options.Driver}, nil
}

// NewConn wraps an already opened database handle.
func NewConn(db *sql.DB, driver Driver) *Conn {
	return &Conn{db: db, driver: driver}
}

// Close closes a database connection.
func (conn *Conn) Close() error {
	return conn.db.Close()
}

// Driver returns the backend the connection talks to.
func (conn *Conn) Driver() Driver {
	return conn.driver
}

// Exec executes a database query.
func (conn *Conn) Exec(ctx context.Context, sql string, arguments ...any) error {
	_, err := conn.db.ExecContext(ctx, sql, arguments...)

	return err
}

// Query executes a database query.
func (conn *Conn) Query(ctx context.Context, sql string, arguments ...any) (Rows, error) {
	return conn.db.QueryContext(ctx, sql, arguments...)
}

// QueryRow executes a database query returning Row data.
func (conn *Conn) QueryRow(ctx context.Context, sql string, arguments ...any) Row {
	return conn.db.QueryRowContext(ctx, sql, arguments...)
}

// IsNoRows reports whether err means a query matched nothing.
func IsNoRows(err error) bool {
	return errors.Is(err, ErrNoRows)
}

// RandomID generates a random positive int64 identifier.
func RandomID() (int64, error) {
	var buffer [8]byte
	_, err := rand.Read(buffer[:])

	if err != nil {
		return 0, err
	}

	return int64(binary.BigEndian.Uint64(buffer[:]) >> 1), nil
}
