// Package route connects URLs to the HTTP handlers.
package route

import (
	"net/http"

	"github.com/dense-analysis/stockwarp/internal/route/api"
	"github.com/dense-analysis/stockwarp/internal/route/auth"
	"github.com/dense-analysis/stockwarp/internal/route/export"
	"github.com/dense-analysis/stockwarp/internal/route/portfolio"
	"github.com/dense-analysis/stockwarp/internal/route/report"
	"github.com/dense-analysis/stockwarp/internal/route/settings"
	"github.com/dense-analysis/stockwarp/internal/route/transaction"
	"github.com/dense-analysis/stockwarp/internal/route/util"
	"github.com/gorilla/mux"
)

// NewRouter builds the router for the whole site.
func NewRouter(app *util.App) *mux.Router {
	router := mux.NewRouter().StrictSlash(true)

	router.HandleFunc("/", app.Wrap(auth.HandleIndex)).Methods("GET")
	router.HandleFunc("/login", app.Wrap(auth.HandleViewLoginForm)).Methods("GET")
	router.HandleFunc("/login", app.Wrap(auth.HandleLogin)).Methods("POST")
	router.HandleFunc("/logout", app.Wrap(auth.HandleLogout)).Methods("POST")
	router.HandleFunc("/portfolio", app.Wrap(portfolio.HandlePortfolio)).Methods("GET")
	router.HandleFunc("/report", app.Wrap(report.HandleReport)).Methods("GET")
	router.HandleFunc("/transaction", app.Wrap(transaction.HandleTransactionList)).Methods("GET")
	router.HandleFunc("/transaction", app.Wrap(transaction.HandleSubmitTransaction)).Methods("POST")
	router.HandleFunc("/settings", app.Wrap(settings.HandleSettings)).Methods("GET")
	router.HandleFunc("/settings", app.Wrap(settings.HandleSubmitSettings)).Methods("POST")
	router.HandleFunc("/export/{kind:[a-z]+}.{format:[a-z]+}", app.Wrap(export.HandleExport)).Methods("GET")

	for path, handler := range api.Routes(app) {
		router.Handle(path, handler)
	}

	router.NotFoundHandler = http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		util.RespondNotFound(writer)
	})

	return router
}
