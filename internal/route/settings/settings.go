package settings

import (
	"errors"
	"net/http"

	"github.com/dense-analysis/stockwarp/internal/model"
	"github.com/dense-analysis/stockwarp/internal/portfolio"
	"github.com/dense-analysis/stockwarp/internal/route/util"
	"github.com/dense-analysis/stockwarp/internal/template"
)

type SettingsPageData struct {
	template.Page
	Error      string
	Settings   model.Settings
	Currencies []model.Currency
}

func renderSettings(app *util.App, writer http.ResponseWriter, request *http.Request, user *model.User, formError string) {
	page, err := app.Page(request, user, "Settings")

	if err != nil {
		app.RespondInternalServerError(writer, request, err)

		return
	}

	data := SettingsPageData{Page: page, Error: formError}

	if data.Settings, err = app.Service.Settings(request.Context(), user.ID); err != nil {
		app.RespondInternalServerError(writer, request, err)

		return
	}

	if data.Currencies, err = app.Service.Currencies(request.Context()); err != nil {
		app.RespondInternalServerError(writer, request, err)

		return
	}

	if formError != "" {
		writer.WriteHeader(http.StatusBadRequest)
	}

	app.Render(writer, template.Settings, data)
}

func HandleSettings(app *util.App, writer http.ResponseWriter, request *http.Request) {
	var user model.User

	if !app.RequireUser(writer, request, &user) {
		return
	}

	renderSettings(app, writer, request, &user, "")
}

// HandleSubmitSettings saves the default currency and dark mode preference.
func HandleSubmitSettings(app *util.App, writer http.ResponseWriter, request *http.Request) {
	var user model.User

	if !app.RequireUser(writer, request, &user) {
		return
	}

	request.ParseForm()

	settings := model.Settings{
		UserID:          user.ID,
		DefaultCurrency: request.Form.Get("default_currency"),
		DarkMode:        request.Form.Get("dark_mode") != "",
	}

	err := app.Service.SaveSettings(request.Context(), &settings)

	if errors.Is(err, portfolio.ErrInvalidSettings) {
		renderSettings(app, writer, request, &user, err.Error())

		return
	}

	if err != nil {
		app.RespondInternalServerError(writer, request, err)

		return
	}

	http.Redirect(writer, request, "/settings", http.StatusFound)
}
