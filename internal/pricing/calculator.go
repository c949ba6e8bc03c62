package pricing

import (
	"github.com/nikolayk812/foodie/internal/domain"
	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"
)

var (
	DefaultDeliveryFee = decimal.RequireFromString("2.99")
	DefaultTaxRate     = decimal.RequireFromString("0.08")
)

// Calculator derives totals from a cart snapshot. It holds no state between calls.
//
// Tax is rounded half away from zero to the currency's minor unit; the total is the sum
// of the rounded components, so every figure is an exact amount of cents.
type Calculator struct {
	unit        currency.Unit
	deliveryFee decimal.Decimal
	taxRate     decimal.Decimal
}

func NewCalculator(unit currency.Unit, deliveryFee, taxRate decimal.Decimal) Calculator {
	return Calculator{
		unit:        unit,
		deliveryFee: deliveryFee,
		taxRate:     taxRate,
	}
}

func Default() Calculator {
	return NewCalculator(currency.USD, DefaultDeliveryFee, DefaultTaxRate)
}

func (c Calculator) Calculate(snapshot domain.CartSnapshot) domain.PriceBreakdown {
	subtotal := decimal.Zero
	for _, l := range snapshot.Lines {
		subtotal = subtotal.Add(l.LineTotal().Amount)
	}

	fee := decimal.Zero
	if subtotal.IsPositive() {
		fee = c.deliveryFee
	}

	tax := subtotal.Mul(c.taxRate).Round(c.scale())

	return domain.PriceBreakdown{
		Currency:    c.unit,
		Subtotal:    subtotal,
		DeliveryFee: fee,
		Tax:         tax,
		Total:       subtotal.Add(fee).Add(tax),
	}
}

func (c Calculator) scale() int32 {
	scale, _ := currency.Standard.Rounding(c.unit)
	return int32(scale)
}
