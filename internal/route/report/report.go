package report

import (
	"errors"
	"net/http"
	"time"

	"github.com/dense-analysis/stockwarp/internal/model"
	"github.com/dense-analysis/stockwarp/internal/portfolio"
	"github.com/dense-analysis/stockwarp/internal/route/util"
	"github.com/dense-analysis/stockwarp/internal/template"
)

type ReportPageData struct {
	template.Page
	Report portfolio.Report
}

// HandleReport shows realized profit and loss between two days.
func HandleReport(app *util.App, writer http.ResponseWriter, request *http.Request) {
	var user model.User

	if !app.RequireUser(writer, request, &user) {
		return
	}

	start, end, err := util.ReportRange(request, time.Now())

	if err != nil {
		util.RespondValidationError(writer, err.Error())

		return
	}

	page, err := app.Page(request, &user, "Report")

	if err != nil {
		app.RespondInternalServerError(writer, request, err)

		return
	}

	data := ReportPageData{Page: page}
	data.Report, err = app.Service.ProfitLossReport(request.Context(), user.ID, start, end)

	if errors.Is(err, portfolio.ErrInvalidRange) {
		util.RespondValidationError(writer, err.Error())

		return
	}

	if err != nil {
		app.RespondInternalServerError(writer, request, err)

		return
	}

	app.Render(writer, template.Report, data)
}
