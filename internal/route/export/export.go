package export

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/dense-analysis/stockwarp/internal/export"
	"github.com/dense-analysis/stockwarp/internal/model"
	"github.com/dense-analysis/stockwarp/internal/portfolio"
	"github.com/dense-analysis/stockwarp/internal/route/util"
	"github.com/gorilla/mux"
)

// errBadRange marks report range problems caused by the request.
var errBadRange = errors.New("bad report range")

func buildTable(app *util.App, request *http.Request, user *model.User, kind string) (export.Table, error) {
	ctx := request.Context()

	switch kind {
	case "holdings":
		summary, err := app.Service.PortfolioSummary(ctx, user.ID)

		return export.HoldingsTable(summary), err
	case "transactions":
		transactionList, err := app.Service.Transactions(ctx, user.ID)

		if err != nil {
			return export.Table{}, err
		}

		stockList, err := app.Service.Stocks(ctx, user.ID)

		return export.TransactionsTable(transactionList, stockList), err
	}

	start, end, err := util.ReportRange(request, time.Now())

	if err != nil {
		return export.Table{}, fmt.Errorf("%w: %v", errBadRange, err)
	}

	report, err := app.Service.ProfitLossReport(ctx, user.ID, start, end)

	if errors.Is(err, portfolio.ErrInvalidRange) {
		return export.Table{}, fmt.Errorf("%w: %v", errBadRange, err)
	}

	if kind == "daily" {
		return export.DailyTable(report), err
	}

	return export.StockReportTable(report), err
}

// HandleExport downloads holdings, transactions or report rows as CSV or HTML.
func HandleExport(app *util.App, writer http.ResponseWriter, request *http.Request) {
	var user model.User

	if !app.RequireUser(writer, request, &user) {
		return
	}

	vars := mux.Vars(request)
	kind := vars["kind"]
	format := vars["format"]

	switch kind {
	case "holdings", "transactions", "daily", "stocks":
	default:
		util.RespondNotFound(writer)

		return
	}

	if format != "csv" && format != "html" {
		util.RespondNotFound(writer)

		return
	}

	table, err := buildTable(app, request, &user, kind)

	if errors.Is(err, errBadRange) {
		util.RespondValidationError(writer, err.Error())

		return
	}

	if err != nil {
		app.RespondInternalServerError(writer, request, err)

		return
	}

	if format == "csv" {
		writer.Header().Set("Content-Type", "text/csv; charset=utf-8")
		writer.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s.csv"`, kind))
		err = export.WriteCSV(writer, table)
	} else {
		settings, settingsErr := app.Service.Settings(request.Context(), user.ID)

		if settingsErr != nil {
			app.RespondInternalServerError(writer, request, settingsErr)

			return
		}

		writer.Header().Set("Content-Type", "text/html; charset=utf-8")
		err = export.WriteHTML(writer, table, settings.DarkMode)
	}

	if err != nil {
		app.Log.Error().Err(err).Str("kind", kind).Msg("export failed")
	}
}
