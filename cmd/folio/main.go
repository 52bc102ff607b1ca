// folio reads and updates a Stockwarp portfolio from the terminal.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"path"

	"github.com/dense-analysis/stockwarp/internal/config"
	"github.com/dense-analysis/stockwarp/internal/database"
	"github.com/dense-analysis/stockwarp/internal/logger"
	"github.com/dense-analysis/stockwarp/internal/portfolio"
	"github.com/dense-analysis/stockwarp/internal/store"
	"github.com/google/subcommands"
	"github.com/rs/zerolog"
)

// app is shared by every command.
type app struct {
	store    store.Store
	service  *portfolio.Service
	out      io.Writer
	username string
	log      zerolog.Logger
}

// userID looks up the user named with -user.
func (a *app) userID(ctx context.Context) (int64, error) {
	if a.username == "" {
		return 0, fmt.Errorf("-user is required")
	}

	user, err := a.store.FindUserByUsername(ctx, a.username)

	if err != nil {
		return 0, fmt.Errorf("user %q: %w", a.username, err)
	}

	return user.ID, nil
}

func (a *app) commands() []subcommands.Command {
	return []subcommands.Command{
		&summaryCmd{app: a},
		&reportCmd{app: a},
		&convertCmd{app: a},
		&exportCmd{app: a},
		&currencyCmd{app: a},
	}
}

func main() {
	a := &app{out: os.Stdout}
	commander := subcommands.NewCommander(flag.CommandLine, path.Base(os.Args[0]))
	flag.StringVar(&a.username, "user", os.Getenv("FOLIO_USER"), "username whose portfolio to use")

	commander.Register(commander.HelpCommand(), "")
	commander.Register(commander.FlagsCommand(), "")
	commander.Register(commander.CommandsCommand(), "")

	for _, c := range a.commands() {
		commander.Register(c, "portfolio")
	}

	flag.Parse()

	cfg, err := config.Load()

	if err != nil {
		fmt.Fprintf(os.Stderr, "Configuration error: %s\n", err)
		os.Exit(int(subcommands.ExitFailure))
	}

	a.log = logger.New(logger.Config{Level: cfg.LogLevel, Pretty: true})
	ctx := context.Background()

	conn, err := database.Connect(ctx, cfg.Database)

	if err != nil {
		fmt.Fprintf(os.Stderr, "Connection error: %s\n", err)
		os.Exit(int(subcommands.ExitFailure))
	}

	a.store = store.NewSQL(conn)
	a.service = portfolio.NewService(a.store, a.log)

	status := commander.Execute(ctx)
	conn.Close()
	os.Exit(int(status))
}
