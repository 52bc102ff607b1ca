package main

import (
	"context"
	"fmt"
	"io/fs"
	"sort"
	"strconv"
	"strings"

	"github.com/dense-analysis/stockwarp/internal/database"
	"github.com/rs/zerolog"
)

type migrationDialect struct {
	createTable string
	deleteRow   string
}

var migrationDialects = map[database.Driver]migrationDialect{
	database.ClickHouse: {
		createTable: `create table if not exists folio_migration (migration_number UInt32)
			engine = MergeTree order by migration_number`,
		deleteRow: `alter table folio_migration delete where migration_number = $1`,
	},
	database.Postgres: {
		createTable: `create table if not exists folio_migration (migration_number integer not null unique)`,
		deleteRow:   `delete from folio_migration where migration_number = $1`,
	},
}

type MigrationExecutor struct {
	conn              database.Queryable
	dialect           migrationDialect
	files             fs.FS
	migrationFileList []string
	log               zerolog.Logger
}

// NewMigrationExecutor lists the numbered migration files in files.
//
// Files are named like 0001_name.sql, with 0001_name_reverse.sql undoing them.
func NewMigrationExecutor(conn database.Queryable, files fs.FS, log zerolog.Logger) (*MigrationExecutor, error) {
	dialect, ok := migrationDialects[conn.Driver()]

	if !ok {
		return nil, fmt.Errorf("no migrations for driver %q", conn.Driver())
	}

	entryList, err := fs.ReadDir(files, ".")

	if err != nil {
		return nil, err
	}

	migrationFileList := make([]string, 0, len(entryList))

	for _, entry := range entryList {
		if !entry.IsDir() && strings.HasSuffix(entry.Name(), ".sql") {
			migrationFileList = append(migrationFileList, entry.Name())
		}
	}

	sort.Strings(migrationFileList)

	return &MigrationExecutor{conn, dialect, files, migrationFileList, log}, nil
}

func (executor *MigrationExecutor) CreateMigrationTable(ctx context.Context) error {
	return executor.conn.Exec(ctx, executor.dialect.createTable)
}

func (executor *MigrationExecutor) CurrentMigration(ctx context.Context) (int, error) {
	row := executor.conn.QueryRow(
		ctx,
		"select coalesce(max(migration_number), 0) from folio_migration",
	)

	var migrationNumber int64
	err := row.Scan(&migrationNumber)

	return int(migrationNumber), err
}

// LatestMigration returns the highest forward migration number available.
func (executor *MigrationExecutor) LatestMigration() int {
	latest := 0

	for _, filename := range executor.migrationFileList {
		number, reverse := parseFilename(filename)

		if !reverse && number > latest {
			latest = number
		}
	}

	return latest
}

func parseFilename(filename string) (int, bool) {
	splitList := strings.Split(filename, "_")
	number, _ := strconv.Atoi(splitList[0])

	return number, splitList[len(splitList)-1] == "reverse.sql"
}

// splitStatements splits a file into statements, one per semicolon at a line end.
//
// SQL functions in migration files won't work.
func splitStatements(contents string) []string {
	statementList := make([]string, 0)

	for _, statement := range strings.Split(contents, ";\n") {
		statement = strings.TrimSuffix(strings.TrimSpace(statement), ";")

		if statement != "" {
			statementList = append(statementList, statement)
		}
	}

	return statementList
}

func (executor *MigrationExecutor) applyMigration(ctx context.Context, migrationNumber int, reverse bool) (bool, error) {
	var matchedFilename string

	for _, filename := range executor.migrationFileList {
		fileMigrationNumber, isReverseFile := parseFilename(filename)

		if migrationNumber == fileMigrationNumber && reverse == isReverseFile {
			matchedFilename = filename
			break
		}
	}

	if len(matchedFilename) == 0 {
		return true, nil
	}

	executor.log.Info().Str("file", matchedFilename).Msg("applying migration")

	file, err := fs.ReadFile(executor.files, matchedFilename)

	if err != nil {
		return false, err
	}

	for _, statement := range splitStatements(string(file)) {
		if err := executor.conn.Exec(ctx, statement); err != nil {
			return false, fmt.Errorf("%s: %w", matchedFilename, err)
		}
	}

	if reverse {
		err = executor.conn.Exec(ctx, executor.dialect.deleteRow, migrationNumber)
	} else {
		err = executor.conn.Exec(
			ctx,
			"insert into folio_migration (migration_number) values ($1)",
			migrationNumber,
		)
	}

	return false, err
}

// ApplyMigrations moves the database forwards or backwards to a migration.
func (executor *MigrationExecutor) ApplyMigrations(ctx context.Context, selectedMigrationNumber int) error {
	if err := executor.CreateMigrationTable(ctx); err != nil {
		return err
	}

	startMigrationNumber, err := executor.CurrentMigration(ctx)

	if err != nil {
		return err
	}

	if latest := executor.LatestMigration(); selectedMigrationNumber > latest {
		selectedMigrationNumber = latest
	}

	reverse := selectedMigrationNumber < startMigrationNumber

	for i := startMigrationNumber; i != selectedMigrationNumber; {
		if !reverse {
			i += 1
		}

		stop, err := executor.applyMigration(ctx, i, reverse)

		if reverse {
			i -= 1
		}

		if err != nil {
			return err
		}

		if stop {
			break
		}
	}

	return nil
}
