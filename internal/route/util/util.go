// Package util holds what the HTTP handlers share.
package util

import (
	"fmt"
	htmltemplate "html/template"
	"net/http"
	"strings"
	"time"

	"github.com/dense-analysis/stockwarp/internal/model"
	"github.com/dense-analysis/stockwarp/internal/portfolio"
	"github.com/dense-analysis/stockwarp/internal/session"
	"github.com/dense-analysis/stockwarp/internal/store"
	"github.com/dense-analysis/stockwarp/internal/template"
	"github.com/rs/zerolog"
)

// App is passed to every handler.
type App struct {
	Store   store.Store
	Service *portfolio.Service
	Log     zerolog.Logger
}

// Handler is an HTTP handler that needs the application.
type Handler func(app *App, writer http.ResponseWriter, request *http.Request)

// Wrap binds a Handler to the application.
func (app *App) Wrap(handler Handler) http.HandlerFunc {
	return func(writer http.ResponseWriter, request *http.Request) {
		handler(app, writer, request)
	}
}

func (app *App) RespondInternalServerError(writer http.ResponseWriter, request *http.Request, err error) {
	writer.WriteHeader(http.StatusInternalServerError)
	fmt.Fprintf(writer, "Internal Server Error\n")
	app.Log.Error().
		Err(err).
		Str("method", request.Method).
		Str("path", request.URL.Path).
		Msg("internal error")
}

func RespondValidationError(writer http.ResponseWriter, message string) {
	writer.WriteHeader(http.StatusBadRequest)
	fmt.Fprintf(writer, "Validation Error: %s\n", message)
}

func RespondNotFound(writer http.ResponseWriter) {
	writer.WriteHeader(http.StatusNotFound)
	fmt.Fprintf(writer, "404: Not Found\n")
}

func RespondForbidden(writer http.ResponseWriter) {
	writer.WriteHeader(http.StatusForbidden)
	fmt.Fprintf(writer, "403: Forbidden\n")
}

// LoadUser loads the session user, answering 500 itself on failure.
func (app *App) LoadUser(writer http.ResponseWriter, request *http.Request, user *model.User) (found bool, failed bool) {
	found, err := session.LoadUserFromSession(app.Store, request, user)

	if err != nil {
		app.RespondInternalServerError(writer, request, err)

		return false, true
	}

	return found, false
}

// RequireUser loads the session user or redirects to the login page.
func (app *App) RequireUser(writer http.ResponseWriter, request *http.Request, user *model.User) bool {
	found, failed := app.LoadUser(writer, request, user)

	if failed {
		return false
	}

	if !found {
		http.Redirect(writer, request, "/login", http.StatusFound)
	}

	return found
}

// Page builds the shared page data for a logged in user.
func (app *App) Page(request *http.Request, user *model.User, title string) (template.Page, error) {
	settings, err := app.Service.Settings(request.Context(), user.ID)

	if err != nil {
		return template.Page{}, err
	}

	return template.Page{Title: title, User: *user, DarkMode: settings.DarkMode}, nil
}

// Render writes a page, logging template failures.
func (app *App) Render(writer http.ResponseWriter, tmpl *htmltemplate.Template, data any) {
	if err := template.Render(tmpl, writer, data); err != nil {
		app.Log.Error().Err(err).Msg("render page")
	}
}

// ParseDay parses a YYYY-MM-DD date, returning fallback for blank input.
func ParseDay(value string, fallback time.Time) (time.Time, error) {
	value = strings.TrimSpace(value)

	if value == "" {
		return fallback, nil
	}

	return time.Parse(portfolio.DayLayout, value)
}

// ReportRange reads the start and end query parameters of a report.
//
// The range defaults to the start of the current year through today.
func ReportRange(request *http.Request, now time.Time) (time.Time, time.Time, error) {
	query := request.URL.Query()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)

	start, err := ParseDay(query.Get("start"), time.Date(now.Year(), 1, 1, 0, 0, 0, 0, time.UTC))

	if err != nil {
		return start, today, fmt.Errorf("invalid start date: %w", err)
	}

	end, err := ParseDay(query.Get("end"), today)

	if err != nil {
		return start, end, fmt.Errorf("invalid end date: %w", err)
	}

	return start, end, nil
}
