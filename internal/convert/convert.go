// Package convert maps an entered amount and a selected rate to its
// local-currency equivalent. Stateless; callers recompute on every input
// change.
package convert

import (
	"strconv"
	"strings"

	"poscalc-service/internal/rate"
)

type Result struct {
	LocalAmount  float64 `json:"bolivares"`
	Symbol       string  `json:"currencySymbol"`
	ExchangeRate float64 `json:"exchangeRate"`
}

// Convert parses the display amount and multiplies by the selected average.
// An empty or unparseable amount counts as zero, as does a nil rate.
func Convert(amount string, selected *rate.ExchangeRate) Result {
	parsed, err := strconv.ParseFloat(strings.TrimSpace(amount), 64)
	if err != nil {
		parsed = 0
	}

	var average float64
	symbol := "$"
	if selected != nil {
		average = selected.Average
		symbol = Symbol(selected.Name)
	}

	return Result{
		LocalAmount:  parsed * average,
		Symbol:       symbol,
		ExchangeRate: average,
	}
}

// Symbol returns the display symbol for a currency name as reported by the
// feed. Two currencies in scope.
func Symbol(name string) string {
	if strings.Contains(strings.ToUpper(name), "EUR") {
		return "€"
	}
	return "$"
}
