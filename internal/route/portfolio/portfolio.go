package portfolio

import (
	"net/http"

	"github.com/dense-analysis/stockwarp/internal/model"
	"github.com/dense-analysis/stockwarp/internal/portfolio"
	"github.com/dense-analysis/stockwarp/internal/route/util"
	"github.com/dense-analysis/stockwarp/internal/template"
)

type PortfolioPageData struct {
	template.Page
	Summary portfolio.Summary
}

// HandlePortfolio shows the stocks a user holds.
func HandlePortfolio(app *util.App, writer http.ResponseWriter, request *http.Request) {
	var user model.User

	if !app.RequireUser(writer, request, &user) {
		return
	}

	page, err := app.Page(request, &user, "Portfolio")

	if err != nil {
		app.RespondInternalServerError(writer, request, err)

		return
	}

	data := PortfolioPageData{Page: page}
	data.Summary, err = app.Service.PortfolioSummary(request.Context(), user.ID)

	if err != nil {
		app.RespondInternalServerError(writer, request, err)

		return
	}

	app.Render(writer, template.Portfolio, data)
}
