package transaction

import (
	"errors"
	"net/http"
	"strings"

	"github.com/dense-analysis/stockwarp/internal/export"
	"github.com/dense-analysis/stockwarp/internal/model"
	"github.com/dense-analysis/stockwarp/internal/portfolio"
	"github.com/dense-analysis/stockwarp/internal/route/util"
	"github.com/dense-analysis/stockwarp/internal/template"
	"github.com/shopspring/decimal"
)

type TransactionPageData struct {
	template.Page
	Error      string
	Currencies []model.Currency
	Table      export.Table
}

func renderTransactions(
	app *util.App,
	writer http.ResponseWriter,
	request *http.Request,
	user *model.User,
	formError string,
) {
	ctx := request.Context()
	page, err := app.Page(request, user, "Transactions")

	if err != nil {
		app.RespondInternalServerError(writer, request, err)

		return
	}

	data := TransactionPageData{Page: page, Error: formError}

	if data.Currencies, err = app.Service.Currencies(ctx); err != nil {
		app.RespondInternalServerError(writer, request, err)

		return
	}

	transactionList, err := app.Service.Transactions(ctx, user.ID)

	if err != nil {
		app.RespondInternalServerError(writer, request, err)

		return
	}

	stockList, err := app.Service.Stocks(ctx, user.ID)

	if err != nil {
		app.RespondInternalServerError(writer, request, err)

		return
	}

	data.Table = export.TransactionsTable(transactionList, stockList)

	if formError != "" {
		writer.WriteHeader(http.StatusBadRequest)
	}

	app.Render(writer, template.Transactions, data)
}

// HandleTransactionList shows the form and every transaction recorded.
func HandleTransactionList(app *util.App, writer http.ResponseWriter, request *http.Request) {
	var user model.User

	if !app.RequireUser(writer, request, &user) {
		return
	}

	renderTransactions(app, writer, request, &user, "")
}

// parseForm reads a transaction from a submitted form.
func parseForm(request *http.Request) (portfolio.TransactionInput, error) {
	var input portfolio.TransactionInput
	var err error

	request.ParseForm()

	input.Ticker = request.Form.Get("ticker")
	input.Name = strings.TrimSpace(request.Form.Get("name"))
	input.Currency = strings.TrimSpace(request.Form.Get("currency"))
	input.Note = strings.TrimSpace(request.Form.Get("note"))

	if input.Kind, err = model.ParseKind(request.Form.Get("kind")); err != nil {
		return input, errors.New("kind must be buy or sell")
	}

	if input.Shares, err = decimal.NewFromString(strings.TrimSpace(request.Form.Get("shares"))); err != nil {
		return input, errors.New("invalid number of shares")
	}

	if input.Price, err = decimal.NewFromString(strings.TrimSpace(request.Form.Get("price"))); err != nil {
		return input, errors.New("invalid price")
	}

	if input.Date, err = util.ParseDay(request.Form.Get("date"), input.Date); err != nil || input.Date.IsZero() {
		return input, errors.New("invalid date")
	}

	return input, nil
}

// HandleSubmitTransaction records a buy or sell.
func HandleSubmitTransaction(app *util.App, writer http.ResponseWriter, request *http.Request) {
	var user model.User

	if !app.RequireUser(writer, request, &user) {
		return
	}

	input, err := parseForm(request)

	if err != nil {
		renderTransactions(app, writer, request, &user, err.Error())

		return
	}

	_, err = app.Service.RecordTransaction(request.Context(), user.ID, input)

	if errors.Is(err, portfolio.ErrInvalidTransaction) {
		renderTransactions(app, writer, request, &user, err.Error())

		return
	}

	if err != nil {
		app.RespondInternalServerError(writer, request, err)

		return
	}

	http.Redirect(writer, request, "/transaction", http.StatusFound)
}
