// Package money formats amounts for display. Arithmetic elsewhere stays at full
// decimal precision; rounding to the minor unit happens only here.
package money

import (
	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

var displayLang = language.German

// Round rounds to the currency's minor unit (2 places for EUR, 0 for JPY).
// Unknown codes round to 2 places.
func Round(amount decimal.Decimal, code string) decimal.Decimal {
	return amount.Round(int32(scale(code)))
}

// Format renders an amount the de-DE way, symbol last: "1.234,50 €".
func Format(amount decimal.Decimal, code string) string {
	unit, err := currency.ParseISO(code)
	if err != nil {
		return Round(amount, code).StringFixed(2) + " " + code
	}
	s := scale(code)
	p := message.NewPrinter(displayLang)
	num := p.Sprint(number.Decimal(Round(amount, code).InexactFloat64(), number.Scale(s)))
	return num + " " + p.Sprint(currency.Symbol(unit))
}

func scale(code string) int {
	unit, err := currency.ParseISO(code)
	if err != nil {
		return 2
	}
	s, _ := currency.Standard.Rounding(unit)
	return s
}
