package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"
)

type PaymentMethod string

const (
	PaymentCard PaymentMethod = "card"
	PaymentCash PaymentMethod = "cash"
)

func (p PaymentMethod) IsValid() bool {
	return p == PaymentCard || p == PaymentCash
}

// PriceBreakdown is derived from a cart snapshot and never cached on the cart.
type PriceBreakdown struct {
	Currency    currency.Unit
	Subtotal    decimal.Decimal
	DeliveryFee decimal.Decimal
	Tax         decimal.Decimal
	Total       decimal.Decimal
}

type Customer struct {
	Name    string
	Phone   string
	Email   string
	Address string
}

type OrderLine struct {
	ItemID    int64
	Name      string
	UnitPrice Money
	Quantity  int
}

// Order is a snapshot taken at checkout time. Reference is a display token and may repeat.
type Order struct {
	ID        uuid.UUID
	Reference string
	Customer  Customer
	Payment   PaymentMethod
	Lines     []OrderLine
	Pricing   PriceBreakdown
	CreatedAt time.Time
}

func (o Order) Total() Money {
	return Money{Amount: o.Pricing.Total, Currency: o.Pricing.Currency}
}
