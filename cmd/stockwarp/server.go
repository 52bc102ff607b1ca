package main

import (
	"net/http"
	"time"

	"github.com/dense-analysis/stockwarp/internal/config"
	"github.com/dense-analysis/stockwarp/internal/logger"
	"github.com/dense-analysis/stockwarp/internal/portfolio"
	"github.com/dense-analysis/stockwarp/internal/route"
	"github.com/dense-analysis/stockwarp/internal/route/util"
	"github.com/dense-analysis/stockwarp/internal/session"
	"github.com/dense-analysis/stockwarp/internal/store"
	"github.com/dense-analysis/stockwarp/pkg/lax"
	"github.com/rs/zerolog"
)

// newServer wires the sessions, the service and the routes over a store.
func newServer(cfg *config.Config, recordStore store.Store, log zerolog.Logger) (*http.Server, error) {
	if err := cfg.RequireSecret(); err != nil {
		return nil, err
	}

	if err := session.InitSessionStorage(cfg.SecretKey); err != nil {
		return nil, err
	}

	lax.SetLogger(logger.Component(log, "api"))

	if cfg.Debug {
		lax.EnableDebugMode()
	}

	app := &util.App{
		Store:   recordStore,
		Service: portfolio.NewService(recordStore, logger.Component(log, "portfolio")),
		Log:     logger.Component(log, "http"),
	}

	router := route.NewRouter(app)

	if cfg.Debug {
		fileServer := http.FileServer(http.Dir("./static/"))
		router.PathPrefix("/static/").
			Handler(http.StripPrefix("/static/", fileServer))
	}

	return &http.Server{
		Addr:              cfg.Address(),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}, nil
}
