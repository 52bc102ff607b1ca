// Migrate the database from one state to another
package main

import (
	"context"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"

	"github.com/dense-analysis/stockwarp/internal/config"
	"github.com/dense-analysis/stockwarp/internal/database"
	"github.com/dense-analysis/stockwarp/internal/logger"
	"github.com/dense-analysis/stockwarp/internal/store"
)

func parseSelectedMigration(args []string) (int, error) {
	if len(args) > 1 {
		return 0, fmt.Errorf("too many arguments")
	}

	if len(args) == 0 {
		return math.MaxInt32, nil
	}

	selectedMigration, err := strconv.Atoi(args[0])

	if err != nil || selectedMigration < 0 {
		return 0, fmt.Errorf("invalid migration number: %s", args[0])
	}

	return selectedMigration, nil
}

func main() {
	selectedMigration, err := parseSelectedMigration(os.Args[1:])

	if err != nil {
		fmt.Fprintf(os.Stderr, "%s\n", err)
		os.Exit(1)
	}

	cfg, err := config.Load()

	if err != nil {
		fmt.Fprintf(os.Stderr, "Configuration error: %s\n", err)
		os.Exit(1)
	}

	log := logger.New(logger.Config{Level: cfg.LogLevel, Pretty: cfg.LogPretty})
	ctx := context.Background()

	conn, err := database.Connect(ctx, cfg.Database)

	if err != nil {
		log.Fatal().Err(err).Msg("connection error")
	}

	defer conn.Close()

	directory := filepath.Join("migrations", string(cfg.Database.Driver))
	executor, err := NewMigrationExecutor(conn, os.DirFS(directory), log)

	if err != nil {
		log.Fatal().Err(err).Str("directory", directory).Msg("error loading migrations")
	}

	if err := executor.ApplyMigrations(ctx, selectedMigration); err != nil {
		log.Fatal().Err(err).Msg("error applying migration")
	}

	current, err := executor.CurrentMigration(ctx)

	if err != nil {
		log.Fatal().Err(err).Msg("error reading migration state")
	}

	// Transactions saved before they had a currency take their stock's.
	if current >= 2 {
		count, err := store.NewSQL(conn).BackfillTransactionCurrencies(ctx)

		if err != nil {
			log.Fatal().Err(err).Msg("error backfilling transaction currencies")
		}

		log.Info().Int("count", count).Msg("transaction currencies backfilled")
	}

	log.Info().Int("migration", current).Msg("database migrated")
}
