package domain

import (
	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

type Money struct {
	Amount   decimal.Decimal
	Currency currency.Unit
}

func NewMoney(amount decimal.Decimal, unit currency.Unit) Money {
	return Money{Amount: amount, Currency: unit}
}

// Mul returns the price of qty units.
func (m Money) Mul(qty int) Money {
	return Money{Amount: m.Amount.Mul(decimal.NewFromInt(int64(qty))), Currency: m.Currency}
}

func (m Money) IsZero() bool {
	return m.Amount.IsZero()
}

// Display formats the amount with the currency symbol for US English.
func (m Money) Display() string {
	return Display(m.Amount, m.Currency)
}

func Display(amount decimal.Decimal, unit currency.Unit) string {
	p := message.NewPrinter(language.AmericanEnglish)
	return p.Sprint(currency.Symbol(unit.Amount(amount.InexactFloat64())))
}
