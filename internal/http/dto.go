package http

import (
	"time"

	"github.com/nikolayk812/foodie/internal/app"
	"github.com/nikolayk812/foodie/internal/checkout"
	"github.com/nikolayk812/foodie/internal/domain"
	"github.com/nikolayk812/foodie/internal/notify"
	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"
)

type LoginRequestDTO struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type AddItemRequestDTO struct {
	ItemID int64 `json:"item_id"`
}

type ChangeQuantityRequestDTO struct {
	Delta int `json:"delta"`
}

type CheckoutRequestDTO struct {
	Name    string `json:"name"`
	Phone   string `json:"phone"`
	Email   string `json:"email"`
	Address string `json:"address"`
	Payment string `json:"payment"`
	Async   bool   `json:"async,omitempty"`
}

type UserDTO struct {
	Email string `json:"email"`
	Name  string `json:"name"`
	Role  string `json:"role"`
}

type MenuItemDTO struct {
	ID           int64   `json:"id"`
	Name         string  `json:"name"`
	Category     string  `json:"category"`
	Price        string  `json:"price"`
	PriceDisplay string  `json:"price_display"`
	Description  string  `json:"description"`
	Rating       float64 `json:"rating"`
	PrepTime     string  `json:"prep_time"`
	ImageURL     string  `json:"image"`
}

type MenuResponseDTO struct {
	OrderingEnabled bool          `json:"ordering_enabled"`
	Items           []MenuItemDTO `json:"items"`
}

type CartLineDTO struct {
	ItemID    int64  `json:"item_id"`
	Name      string `json:"name"`
	UnitPrice string `json:"unit_price"`
	Quantity  int    `json:"quantity"`
	LineTotal string `json:"line_total"`
}

type PricingDTO struct {
	Currency    string `json:"currency"`
	Subtotal    string `json:"subtotal"`
	DeliveryFee string `json:"delivery_fee"`
	Tax         string `json:"tax"`
	Total       string `json:"total"`
}

type CartResponseDTO struct {
	Lines     []CartLineDTO `json:"lines"`
	ItemCount int           `json:"item_count"`
	Pricing   PricingDTO    `json:"pricing"`
}

type OrderDTO struct {
	ID        string        `json:"id"`
	Reference string        `json:"reference"`
	Payment   string        `json:"payment"`
	Lines     []CartLineDTO `json:"lines"`
	Pricing   PricingDTO    `json:"pricing"`
	CreatedAt time.Time     `json:"created_at"`
}

type CheckoutResponseDTO struct {
	State string    `json:"state"`
	Form  *FormDTO  `json:"form,omitempty"`
	Order *OrderDTO `json:"order,omitempty"`
}

type FormDTO struct {
	Name string `json:"name"`
}

type ToastDTO struct {
	Message  string `json:"message"`
	Severity string `json:"severity"`
}

func mapUserToDTO(user domain.User) UserDTO {
	return UserDTO{Email: user.Email, Name: user.Name, Role: string(user.Role)}
}

func mapMenuToDTO(items []domain.MenuItem, ordering bool) MenuResponseDTO {
	dtos := make([]MenuItemDTO, 0, len(items))
	for _, item := range items {
		dtos = append(dtos, MenuItemDTO{
			ID:           item.ID,
			Name:         item.Name,
			Category:     item.Category.String(),
			Price:        amount(item.Price.Amount, item.Price.Currency),
			PriceDisplay: item.Price.Display(),
			Description:  item.Description,
			Rating:       item.Rating,
			PrepTime:     item.PrepTime,
			ImageURL:     item.ImageURL,
		})
	}

	return MenuResponseDTO{OrderingEnabled: ordering, Items: dtos}
}

func mapCartToDTO(view app.CartView) CartResponseDTO {
	lines := make([]CartLineDTO, 0, len(view.Snapshot.Lines))
	for _, l := range view.Snapshot.Lines {
		lineTotal := l.LineTotal()
		lines = append(lines, CartLineDTO{
			ItemID:    l.Item.ID,
			Name:      l.Item.Name,
			UnitPrice: amount(l.Item.Price.Amount, l.Item.Price.Currency),
			Quantity:  l.Quantity,
			LineTotal: amount(lineTotal.Amount, lineTotal.Currency),
		})
	}

	return CartResponseDTO{
		Lines:     lines,
		ItemCount: view.Snapshot.ItemCount(),
		Pricing:   mapPricingToDTO(view.Pricing),
	}
}

func mapPricingToDTO(p domain.PriceBreakdown) PricingDTO {
	return PricingDTO{
		Currency:    p.Currency.String(),
		Subtotal:    amount(p.Subtotal, p.Currency),
		DeliveryFee: amount(p.DeliveryFee, p.Currency),
		Tax:         amount(p.Tax, p.Currency),
		Total:       amount(p.Total, p.Currency),
	}
}

func mapOrderToDTO(order domain.Order) OrderDTO {
	lines := make([]CartLineDTO, 0, len(order.Lines))
	for _, l := range order.Lines {
		lineTotal := l.UnitPrice.Mul(l.Quantity)
		lines = append(lines, CartLineDTO{
			ItemID:    l.ItemID,
			Name:      l.Name,
			UnitPrice: amount(l.UnitPrice.Amount, l.UnitPrice.Currency),
			Quantity:  l.Quantity,
			LineTotal: amount(lineTotal.Amount, lineTotal.Currency),
		})
	}

	return OrderDTO{
		ID:        order.ID.String(),
		Reference: order.Reference,
		Payment:   string(order.Payment),
		Lines:     lines,
		Pricing:   mapPricingToDTO(order.Pricing),
		CreatedAt: order.CreatedAt,
	}
}

func mapCheckoutToDTO(state checkout.State, confirmation *checkout.Confirmation) CheckoutResponseDTO {
	dto := CheckoutResponseDTO{State: state.String()}
	if confirmation != nil {
		order := mapOrderToDTO(confirmation.Order)
		dto.Order = &order
	}
	return dto
}

func mapToastsToDTO(toasts []notify.Toast) []ToastDTO {
	dtos := make([]ToastDTO, 0, len(toasts))
	for _, t := range toasts {
		dtos = append(dtos, ToastDTO{Message: t.Message, Severity: string(t.Severity)})
	}
	return dtos
}

func amount(d decimal.Decimal, unit currency.Unit) string {
	scale, _ := currency.Standard.Rounding(unit)
	return d.StringFixed(int32(scale))
}
