package currency

import (
	"errors"
	"fmt"
	"strings"

	"github.com/klokku/budgetwise/pkg/money"
	"github.com/shopspring/decimal"
	textcurrency "golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

var ErrRateNotFound = errors.New("exchange rate not found")

// ExchangeRate converts FromCurrency amounts to ToCurrency: to = from × Rate.
type ExchangeRate struct {
	FromCurrency string
	ToCurrency   string
	Rate         decimal.Decimal
}

type pair struct {
	from string
	to   string
}

// RateTable is a static lookup of exchange rates, used for display conversion only.
type RateTable struct {
	rates map[pair]decimal.Decimal
}

func NewRateTable(rates []ExchangeRate) RateTable {
	table := RateTable{rates: make(map[pair]decimal.Decimal, len(rates))}
	for _, r := range rates {
		if !r.Rate.IsPositive() {
			continue
		}
		table.rates[pair{normalize(r.FromCurrency), normalize(r.ToCurrency)}] = r.Rate
	}
	return table
}

// Rate returns the rate from one currency to another. When only the opposite direction is
// known its inverse is used.
func (t RateTable) Rate(from, to string) (decimal.Decimal, error) {
	from, to = normalize(from), normalize(to)
	if from == to {
		return decimal.NewFromInt(1), nil
	}
	if rate, ok := t.rates[pair{from, to}]; ok {
		return rate, nil
	}
	if inverse, ok := t.rates[pair{to, from}]; ok {
		return decimal.NewFromInt(1).DivRound(inverse, 10), nil
	}
	return decimal.Zero, fmt.Errorf("%w: %s to %s", ErrRateNotFound, from, to)
}

// Convert converts the amount and rounds it to cents.
func (t RateTable) Convert(amount decimal.Decimal, from, to string) (decimal.Decimal, error) {
	rate, err := t.Rate(from, to)
	if err != nil {
		return decimal.Zero, err
	}
	return money.Round(amount.Mul(rate)), nil
}

var printer = message.NewPrinter(language.English)

// symbolAfterAmount lists the currencies whose symbol follows the number.
var symbolAfterAmount = map[string]bool{
	"PLN": true,
	"CZK": true,
	"SEK": true,
}

// Format renders an amount for display, e.g. "$1,500.00" or "-€40.10". Currencies
// without a symbol of their own are rendered as "1,500.00 CHF".
func Format(amount decimal.Decimal, code string) string {
	code = normalize(code)
	sign := ""
	if amount.IsNegative() {
		sign = "-"
		amount = amount.Abs()
	}
	formatted := printer.Sprint(number.Decimal(money.Round(amount).InexactFloat64(), number.Scale(2)))

	unit, err := textcurrency.ParseISO(code)
	if err != nil {
		if code == "" {
			return sign + formatted
		}
		return sign + formatted + " " + code
	}
	symbol := printer.Sprint(textcurrency.NarrowSymbol(unit))
	if symbol == "" || symbol == unit.String() || symbolAfterAmount[code] {
		if symbol == "" {
			symbol = code
		}
		return sign + formatted + " " + symbol
	}
	return sign + symbol + formatted
}

func normalize(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}
