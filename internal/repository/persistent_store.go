package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/nikolayk812/foodie/internal/domain"
	"github.com/nikolayk812/foodie/internal/port"
	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"
)

const (
	keyCurrentUser = "currentUser"
	keyLastOrder   = "lastOrder"
	keyOrderPrefix = "order:"
)

type persistentStore struct {
	kv        port.KeyValueStore
	namespace string
}

// NewPersistentStore keeps one session's user and orders in kv under "<namespace>:" keys.
func NewPersistentStore(kv port.KeyValueStore, namespace string) port.PersistentStore {
	return &persistentStore{
		kv:        kv,
		namespace: namespace,
	}
}

func (s *persistentStore) key(name string) string {
	return s.namespace + ":" + name
}

func (s *persistentStore) SaveOrder(ctx context.Context, order domain.Order) error {
	if s.namespace == "" {
		return fmt.Errorf("namespace is empty")
	}
	if order.ID == uuid.Nil {
		return fmt.Errorf("order ID is empty")
	}

	data, err := json.Marshal(mapOrderToDTO(order))
	if err != nil {
		return fmt.Errorf("json.Marshal: %w", err)
	}

	err = s.kv.SetAll(ctx, []port.Entry{
		{Key: s.key(keyOrderPrefix + order.ID.String()), Value: data},
		{Key: s.key(keyLastOrder), Value: data},
	})
	if err != nil {
		return fmt.Errorf("kv.SetAll: %w", err)
	}

	return nil
}

func (s *persistentStore) GetOrder(ctx context.Context, id uuid.UUID) (domain.Order, error) {
	if s.namespace == "" {
		return domain.Order{}, fmt.Errorf("namespace is empty")
	}

	order, err := s.loadOrder(ctx, s.key(keyOrderPrefix+id.String()))
	if err != nil {
		return domain.Order{}, fmt.Errorf("loadOrder: %w", err)
	}

	return order, nil
}

func (s *persistentStore) LastOrder(ctx context.Context) (domain.Order, bool, error) {
	if s.namespace == "" {
		return domain.Order{}, false, fmt.Errorf("namespace is empty")
	}

	order, err := s.loadOrder(ctx, s.key(keyLastOrder))
	if errors.Is(err, ErrKeyNotFound) {
		return domain.Order{}, false, nil
	}
	if err != nil {
		return domain.Order{}, false, fmt.Errorf("loadOrder: %w", err)
	}

	return order, true, nil
}

func (s *persistentStore) loadOrder(ctx context.Context, key string) (domain.Order, error) {
	data, err := s.kv.Get(ctx, key)
	if err != nil {
		return domain.Order{}, err
	}

	var dto orderDTO
	if err := json.Unmarshal(data, &dto); err != nil {
		return domain.Order{}, fmt.Errorf("json.Unmarshal: %w", err)
	}

	order, err := mapOrderDTOToDomain(dto)
	if err != nil {
		return domain.Order{}, fmt.Errorf("mapOrderDTOToDomain: %w", err)
	}

	return order, nil
}

func (s *persistentStore) LoadCurrentUser(ctx context.Context) (domain.User, bool, error) {
	if s.namespace == "" {
		return domain.User{}, false, fmt.Errorf("namespace is empty")
	}

	data, err := s.kv.Get(ctx, s.key(keyCurrentUser))
	if errors.Is(err, ErrKeyNotFound) {
		return domain.User{}, false, nil
	}
	if err != nil {
		return domain.User{}, false, fmt.Errorf("kv.Get: %w", err)
	}

	var dto userDTO
	if err := json.Unmarshal(data, &dto); err != nil {
		return domain.User{}, false, fmt.Errorf("json.Unmarshal: %w", err)
	}

	return domain.User{Email: dto.Email, Name: dto.Name, Role: domain.Role(dto.Role)}, true, nil
}

func (s *persistentStore) SaveCurrentUser(ctx context.Context, user domain.User) error {
	if s.namespace == "" {
		return fmt.Errorf("namespace is empty")
	}

	data, err := json.Marshal(userDTO{Email: user.Email, Name: user.Name, Role: string(user.Role)})
	if err != nil {
		return fmt.Errorf("json.Marshal: %w", err)
	}

	if err := s.kv.Set(ctx, s.key(keyCurrentUser), data); err != nil {
		return fmt.Errorf("kv.Set: %w", err)
	}

	return nil
}

func (s *persistentStore) ClearCurrentUser(ctx context.Context) error {
	if s.namespace == "" {
		return fmt.Errorf("namespace is empty")
	}

	if err := s.kv.Delete(ctx, s.key(keyCurrentUser)); err != nil {
		return fmt.Errorf("kv.Delete: %w", err)
	}

	return nil
}

type userDTO struct {
	Email string `json:"email"`
	Name  string `json:"name"`
	Role  string `json:"role"`
}

type orderDTO struct {
	ID        uuid.UUID       `json:"id"`
	Reference string          `json:"reference"`
	Customer  customerDTO     `json:"customer"`
	Payment   string          `json:"payment"`
	Lines     []orderLineDTO  `json:"lines"`
	Currency  string          `json:"currency"`
	Subtotal  decimal.Decimal `json:"subtotal"`
	Delivery  decimal.Decimal `json:"delivery_fee"`
	Tax       decimal.Decimal `json:"tax"`
	Total     decimal.Decimal `json:"total"`
	CreatedAt time.Time       `json:"created_at"`
}

type customerDTO struct {
	Name    string `json:"name"`
	Phone   string `json:"phone"`
	Email   string `json:"email"`
	Address string `json:"address"`
}

type orderLineDTO struct {
	ItemID    int64           `json:"item_id"`
	Name      string          `json:"name"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Quantity  int             `json:"quantity"`
}

func mapOrderToDTO(order domain.Order) orderDTO {
	lines := make([]orderLineDTO, 0, len(order.Lines))
	for _, l := range order.Lines {
		lines = append(lines, orderLineDTO{
			ItemID:    l.ItemID,
			Name:      l.Name,
			UnitPrice: l.UnitPrice.Amount,
			Quantity:  l.Quantity,
		})
	}

	return orderDTO{
		ID:        order.ID,
		Reference: order.Reference,
		Customer:  customerDTO(order.Customer),
		Payment:   string(order.Payment),
		Lines:     lines,
		Currency:  order.Pricing.Currency.String(),
		Subtotal:  order.Pricing.Subtotal,
		Delivery:  order.Pricing.DeliveryFee,
		Tax:       order.Pricing.Tax,
		Total:     order.Pricing.Total,
		CreatedAt: order.CreatedAt,
	}
}

func mapOrderDTOToDomain(dto orderDTO) (domain.Order, error) {
	parsedCurrency, err := currency.ParseISO(dto.Currency)
	if err != nil {
		return domain.Order{}, fmt.Errorf("currency[%s] is not valid: %w", dto.Currency, err)
	}

	lines := make([]domain.OrderLine, 0, len(dto.Lines))
	for _, l := range dto.Lines {
		lines = append(lines, domain.OrderLine{
			ItemID:    l.ItemID,
			Name:      l.Name,
			UnitPrice: domain.Money{Amount: l.UnitPrice, Currency: parsedCurrency},
			Quantity:  l.Quantity,
		})
	}

	return domain.Order{
		ID:        dto.ID,
		Reference: dto.Reference,
		Customer:  domain.Customer(dto.Customer),
		Payment:   domain.PaymentMethod(dto.Payment),
		Lines:     lines,
		Pricing: domain.PriceBreakdown{
			Currency:    parsedCurrency,
			Subtotal:    dto.Subtotal,
			DeliveryFee: dto.Delivery,
			Tax:         dto.Tax,
			Total:       dto.Total,
		},
		CreatedAt: dto.CreatedAt,
	}, nil
}
