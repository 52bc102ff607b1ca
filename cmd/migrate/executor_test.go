package main

import (
	"context"
	"regexp"
	"testing"
	"testing/fstest"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dense-analysis/stockwarp/internal/database"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var migrationFiles = fstest.MapFS{
	"0001_initial.sql":            {Data: []byte("create table a (id integer);\n\ncreate table b (id integer);\n")},
	"0001_initial_reverse.sql":    {Data: []byte("drop table b;\ndrop table a;\n")},
	"0002_add_column.sql":         {Data: []byte("alter table a add column name text;\n")},
	"0002_add_column_reverse.sql": {Data: []byte("alter table a drop column name;\n")},
	"README.md":                   {Data: []byte("not a migration")},
}

func newExecutor(t *testing.T, driver database.Driver) (*MigrationExecutor, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	t.Cleanup(func() {
		assert.NoError(t, mock.ExpectationsWereMet())
		db.Close()
	})

	executor, err := NewMigrationExecutor(database.NewConn(db, driver), migrationFiles, zerolog.Nop())
	require.NoError(t, err)

	return executor, mock
}

func expectCurrent(mock sqlmock.Sqlmock, current int64) {
	mock.ExpectExec("create table if not exists folio_migration").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(regexp.QuoteMeta("select coalesce(max(migration_number), 0) from folio_migration")).
		WillReturnRows(sqlmock.NewRows([]string{"max"}).AddRow(current))
}

func TestApplyMigrationsForwards(t *testing.T) {
	executor, mock := newExecutor(t, database.Postgres)
	assert.Equal(t, 2, executor.LatestMigration())

	expectCurrent(mock, 0)
	mock.ExpectExec(regexp.QuoteMeta("create table a (id integer)")).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(regexp.QuoteMeta("create table b (id integer)")).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("insert into folio_migration").WithArgs(1).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("alter table a add column name text").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("insert into folio_migration").WithArgs(2).WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, executor.ApplyMigrations(context.Background(), 1000))
}

func TestApplyMigrationsBackwardsOnClickHouse(t *testing.T) {
	executor, mock := newExecutor(t, database.ClickHouse)

	expectCurrent(mock, 2)
	mock.ExpectExec("alter table a drop column name").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(regexp.QuoteMeta("alter table folio_migration delete where migration_number = $1")).
		WithArgs(2).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, executor.ApplyMigrations(context.Background(), 1))
}

func TestApplyMigrationsUpToDate(t *testing.T) {
	executor, mock := newExecutor(t, database.Postgres)

	expectCurrent(mock, 2)

	require.NoError(t, executor.ApplyMigrations(context.Background(), 1000))
}

func TestSplitStatements(t *testing.T) {
	assert.Equal(
		t,
		[]string{"create table a (id integer)", "insert into a values (1)"},
		splitStatements("create table a (id integer);\n\n  insert into a values (1);\n"),
	)
}

func TestParseSelectedMigration(t *testing.T) {
	number, err := parseSelectedMigration([]string{"3"})
	require.NoError(t, err)
	assert.Equal(t, 3, number)

	_, err = parseSelectedMigration([]string{"-1"})
	assert.Error(t, err)

	_, err = parseSelectedMigration([]string{"1", "2"})
	assert.Error(t, err)
}
