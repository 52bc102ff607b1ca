package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dense-analysis/stockwarp/internal/config"
	"github.com/dense-analysis/stockwarp/internal/database"
	"github.com/dense-analysis/stockwarp/internal/logger"
	"github.com/dense-analysis/stockwarp/internal/store"
)

func main() {
	cfg, err := config.Load()

	if err != nil {
		fmt.Fprintf(os.Stderr, "Configuration error: %s\n", err)
		os.Exit(1)
	}

	log := logger.New(logger.Config{Level: cfg.LogLevel, Pretty: cfg.LogPretty})
	logger.SetGlobalLogger(log)

	conn, err := database.Connect(context.Background(), cfg.Database)

	if err != nil {
		log.Fatal().Err(err).Str("driver", string(cfg.Database.Driver)).Msg("connection error")
	}

	defer conn.Close()

	server, err := newServer(cfg, store.NewSQL(conn), log)

	if err != nil {
		log.Fatal().Err(err).Msg("configuration error")
	}

	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	log.Info().Str("address", server.Addr).Msg("server started")
	<-done

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatal().Err(err).Msg("server shut down failed")
	}

	log.Info().Msg("server shut down successfully")
}
