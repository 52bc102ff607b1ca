// Read exchange rates into the database
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/dense-analysis/stockwarp/internal/config"
	"github.com/dense-analysis/stockwarp/internal/database"
	"github.com/dense-analysis/stockwarp/internal/logger"
	"github.com/dense-analysis/stockwarp/internal/model"
	"github.com/dense-analysis/stockwarp/internal/store"
	"github.com/shopspring/decimal"
)

const defaultRatesURL = "https://open.er-api.com/v6/latest/" + model.BaseCurrency

type ratesResult struct {
	Result    string                 `json:"result"`
	ErrorType string                 `json:"error-type"`
	BaseCode  string                 `json:"base_code"`
	Rates     map[string]json.Number `json:"rates"`
}

func readRatesResult(ctx context.Context, client *http.Client, url string) (ratesResult, error) {
	var result ratesResult
	request, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)

	if err != nil {
		return result, err
	}

	response, err := client.Do(request)

	if err != nil {
		return result, err
	}

	defer response.Body.Close()

	content, err := io.ReadAll(response.Body)

	if err != nil {
		return result, err
	}

	decoder := json.NewDecoder(bytes.NewReader(content))
	decoder.UseNumber()

	if err := decoder.Decode(&result); err != nil {
		return result, fmt.Errorf("rates api returned unexpected response: %s", string(content))
	}

	if result.Result == "error" || response.StatusCode != http.StatusOK {
		return result, fmt.Errorf("rates api error: %d %s", response.StatusCode, result.ErrorType)
	}

	return result, nil
}

// readRates converts a result into rates per 1 unit of the base currency.
func readRates(result ratesResult) (map[string]decimal.Decimal, error) {
	rates := make(map[string]decimal.Decimal, len(result.Rates))

	for code, number := range result.Rates {
		code = strings.ToUpper(code)

		if len(code) != 3 {
			continue
		}

		value, err := decimal.NewFromString(number.String())

		if err != nil {
			return nil, fmt.Errorf("rate for %s: %w", code, err)
		}

		// Zero or negative rates can't be stored.
		if value.IsPositive() {
			rates[code] = value
		}
	}

	base := strings.ToUpper(result.BaseCode)

	if base == "" || base == model.BaseCurrency {
		rates[model.BaseCurrency] = decimal.NewFromInt(1)

		return rates, nil
	}

	baseRate, ok := rates[model.BaseCurrency]

	if !ok {
		return nil, fmt.Errorf("rates based on %s have no %s rate", base, model.BaseCurrency)
	}

	for code, value := range rates {
		rates[code] = value.Div(baseRate)
	}

	return rates, nil
}

// writeRates saves rates, keeping the names and symbols already stored.
//
// When only is not empty, just those codes are written.
func writeRates(
	ctx context.Context,
	st store.Store,
	rates map[string]decimal.Decimal,
	only []string,
) (int, error) {
	currencyList, err := st.ListAllCurrencies(ctx)

	if err != nil {
		return 0, err
	}

	currencyMap := make(map[string]model.Currency, len(currencyList))

	for _, currency := range currencyList {
		currencyMap[currency.Code] = currency
	}

	codeList := only

	if len(codeList) == 0 {
		for code := range rates {
			codeList = append(codeList, code)
		}
	}

	sort.Strings(codeList)
	count := 0

	for _, code := range codeList {
		code = strings.ToUpper(strings.TrimSpace(code))
		rate, ok := rates[code]

		if !ok {
			return count, fmt.Errorf("no rate for %s", code)
		}

		currency, ok := currencyMap[code]

		if !ok {
			currency = model.Currency{Code: code, Name: code}
		}

		currency.Rate = rate

		if err := st.SaveCurrency(ctx, &currency); err != nil {
			return count, err
		}

		count += 1
	}

	return count, nil
}

// ingest reads rates from url and saves them into st.
func ingest(ctx context.Context, st store.Store, client *http.Client, url string, only []string) (int, error) {
	result, err := readRatesResult(ctx, client, url)

	if err != nil {
		return 0, fmt.Errorf("read rates: %w", err)
	}

	rates, err := readRates(result)

	if err != nil {
		return 0, err
	}

	return writeRates(ctx, st, rates, only)
}

func main() {
	url := flag.String("url", defaultRatesURL, "exchange rate API address")
	only := flag.String("only", "", "comma separated currency codes to update")
	flag.Parse()

	cfg, err := config.Load()

	if err != nil {
		fmt.Fprintf(os.Stderr, "Configuration error: %s\n", err)
		os.Exit(1)
	}

	log := logger.Component(logger.New(logger.Config{Level: cfg.LogLevel, Pretty: cfg.LogPretty}), "ingest")
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	conn, err := database.Connect(ctx, cfg.Database)

	if err != nil {
		log.Fatal().Err(err).Msg("connection error")
	}

	defer conn.Close()

	var codeList []string

	if *only != "" {
		codeList = strings.Split(*only, ",")
	}

	client := &http.Client{Timeout: 30 * time.Second}
	count, err := ingest(ctx, store.NewSQL(conn), client, *url, codeList)

	if err != nil {
		log.Fatal().Err(err).Str("url", *url).Msg("error updating exchange rates")
	}

	log.Info().Int("count", count).Msg("exchange rates updated")
}
