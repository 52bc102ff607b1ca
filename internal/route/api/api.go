// Package api serves the portfolio as JSON.
package api

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/dense-analysis/stockwarp/internal/model"
	"github.com/dense-analysis/stockwarp/internal/portfolio"
	"github.com/dense-analysis/stockwarp/internal/route/util"
	"github.com/dense-analysis/stockwarp/internal/session"
	"github.com/dense-analysis/stockwarp/pkg/lax"
	"github.com/shopspring/decimal"
)

// Position is one holding in JSON form.
type Position struct {
	Ticker            string          `json:"ticker"`
	Name              string          `json:"name"`
	Currency          string          `json:"currency"`
	Shares            decimal.Decimal `json:"shares"`
	AverageCost       decimal.Decimal `json:"average_cost"`
	TotalCost         decimal.Decimal `json:"total_cost"`
	ProfitLoss        decimal.Decimal `json:"profit_loss"`
	DisplayTotalCost  decimal.Decimal `json:"display_total_cost"`
	DisplayProfitLoss decimal.Decimal `json:"display_profit_loss"`
}

type Summary struct {
	Currency        string              `json:"currency"`
	Positions       []Position          `json:"positions"`
	TotalCost       decimal.Decimal     `json:"total_cost"`
	TotalProfitLoss decimal.Decimal     `json:"total_profit_loss"`
	Warnings        []portfolio.Warning `json:"warnings"`
}

type ProfitLoss struct {
	Profit decimal.Decimal `json:"profit"`
	Loss   decimal.Decimal `json:"loss"`
	Net    decimal.Decimal `json:"net"`
}

type Day struct {
	Date string `json:"date"`
	ProfitLoss
}

type Stock struct {
	Ticker string `json:"ticker"`
	Name   string `json:"name"`
	ProfitLoss
}

type Report struct {
	Start    string              `json:"start"`
	End      string              `json:"end"`
	Currency string              `json:"currency"`
	Daily    []Day               `json:"daily"`
	Stocks   []Stock             `json:"stocks"`
	Warnings []portfolio.Warning `json:"warnings"`
}

type Conversion struct {
	Amount decimal.Decimal `json:"amount"`
	From   string          `json:"from"`
	To     string          `json:"to"`
	Result decimal.Decimal `json:"result"`
}

type Currency struct {
	Code   string          `json:"code"`
	Name   string          `json:"name"`
	Symbol string          `json:"symbol"`
	Rate   decimal.Decimal `json:"rate"`
}

func warnings(list []portfolio.Warning) []portfolio.Warning {
	if list == nil {
		return []portfolio.Warning{}
	}

	return list
}

func newSummary(summary portfolio.Summary) Summary {
	result := Summary{
		Currency:        summary.Currency,
		Positions:       make([]Position, 0, len(summary.Positions)),
		TotalCost:       summary.TotalCost,
		TotalProfitLoss: summary.TotalProfitLoss,
		Warnings:        warnings(summary.Warnings),
	}

	for _, position := range summary.Positions {
		result.Positions = append(result.Positions, Position{
			Ticker:            position.Stock.Ticker,
			Name:              position.Stock.Name,
			Currency:          position.Stock.Currency,
			Shares:            position.Shares,
			AverageCost:       position.AverageCost,
			TotalCost:         position.TotalCost,
			ProfitLoss:        position.ProfitLoss,
			DisplayTotalCost:  position.DisplayTotalCost,
			DisplayProfitLoss: position.DisplayProfitLoss,
		})
	}

	return result
}

func newReport(report portfolio.Report) Report {
	result := Report{
		Start:    report.Start.Format(portfolio.DayLayout),
		End:      report.End.Format(portfolio.DayLayout),
		Currency: report.Currency,
		Daily:    make([]Day, 0, len(report.Daily)),
		Stocks:   make([]Stock, 0, len(report.Stocks)),
		Warnings: warnings(report.Warnings),
	}

	for _, daily := range report.Daily {
		result.Daily = append(result.Daily, Day{daily.Date, ProfitLoss{daily.Profit, daily.Loss, daily.Net}})
	}

	for _, stock := range report.Stocks {
		result.Stocks = append(result.Stocks, Stock{
			stock.Stock.Ticker,
			stock.Stock.Name,
			ProfitLoss{stock.Profit, stock.Loss, stock.Net},
		})
	}

	return result
}

// userViews builds views for endpoints that need a logged in user.
type userViews struct {
	app *util.App
}

// user loads the session user, returning a response to send instead when
// nobody is logged in.
func (v userViews) user(request *lax.Request) (model.User, any) {
	var user model.User
	found, err := session.LoadUserFromSession(v.app.Store, request.Request, &user)

	if err != nil {
		return user, err
	}

	if !found {
		return user, lax.MakeForbiddenResponse()
	}

	return user, nil
}

func (v userViews) portfolio(request *lax.Request) any {
	user, response := v.user(request)

	if response != nil {
		return response
	}

	summary, err := v.app.Service.PortfolioSummary(request.Context(), user.ID)

	if err != nil {
		return err
	}

	return newSummary(summary)
}

func (v userViews) report(request *lax.Request) any {
	user, response := v.user(request)

	if response != nil {
		return response
	}

	start, end, err := util.ReportRange(request.Request, time.Now())

	if err != nil {
		return lax.MakeBadRequestResponse(err)
	}

	report, err := v.app.Service.ProfitLossReport(request.Context(), user.ID, start, end)

	if errors.Is(err, portfolio.ErrInvalidRange) {
		return lax.MakeErrorListResponse(lax.Issue("end", err.Error()))
	}

	if err != nil {
		return err
	}

	return newReport(report)
}

// requireUser guards views that only need somebody to be logged in.
func (v userViews) requireUser(request *lax.Request) any {
	_, response := v.user(request)

	return response
}

func (v userViews) convert(request *lax.Request) any {
	var issues []lax.IssueDescription

	amount, err := decimal.NewFromString(request.Query("amount"))

	if err != nil {
		issues = append(issues, lax.Issue("amount", "must be a number"))
	}

	from := strings.ToUpper(request.Query("from"))
	to := strings.ToUpper(request.Query("to"))

	if len(from) != 3 {
		issues = append(issues, lax.Issue("from", "must be a currency code"))
	}

	if len(to) != 3 {
		issues = append(issues, lax.Issue("to", "must be a currency code"))
	}

	if len(issues) > 0 {
		return lax.MakeErrorListResponse(issues...)
	}

	result, err := v.app.Service.Convert(request.Context(), amount, from, to)

	if err != nil {
		return err
	}

	return Conversion{amount, from, to, result}
}

func (v userViews) currencies(request *lax.Request) any {
	currencyList, err := v.app.Service.Currencies(request.Context())

	if err != nil {
		return err
	}

	result := make([]Currency, 0, len(currencyList))

	for _, currency := range currencyList {
		result = append(result, Currency{currency.Code, currency.Name, currency.Symbol, currency.Rate})
	}

	return result
}

// Routes returns the API handlers keyed by path.
func Routes(app *util.App) map[string]http.HandlerFunc {
	views := userViews{app}

	return map[string]http.HandlerFunc{
		"/api/portfolio":  lax.Wrap(lax.View{Get: views.portfolio}),
		"/api/report":     lax.Wrap(lax.View{Get: views.report}),
		"/api/convert":    lax.Wrap(lax.View{Get: views.convert, Guard: views.requireUser}),
		"/api/currencies": lax.Wrap(lax.View{Get: views.currencies, Guard: views.requireUser}),
	}
}
