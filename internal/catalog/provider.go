package catalog

import (
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nikolayk812/foodie/internal/domain"
	"github.com/nikolayk812/foodie/internal/port"
	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"
)

//go:embed menu.json
var menuJSON []byte

type menuItemDTO struct {
	ID          int64           `json:"id"`
	Name        string          `json:"name"`
	Category    string          `json:"category"`
	Price       decimal.Decimal `json:"price"`
	Image       string          `json:"image"`
	Description string          `json:"description"`
	Rating      float64         `json:"rating"`
	PrepTime    string          `json:"prep_time"`
}

// StaticProvider serves the built-in menu after a simulated network delay.
type StaticProvider struct {
	unit    currency.Unit
	latency time.Duration
	data    []byte
}

func NewStaticProvider(unit currency.Unit, latency time.Duration) port.CatalogProvider {
	return &StaticProvider{unit: unit, latency: latency, data: menuJSON}
}

func (p *StaticProvider) FetchMenu(ctx context.Context) ([]domain.MenuItem, error) {
	if p.latency > 0 {
		timer := time.NewTimer(p.latency)
		defer timer.Stop()

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-timer.C:
		}
	}

	return decodeMenu(p.data, p.unit)
}

func decodeMenu(data []byte, unit currency.Unit) ([]domain.MenuItem, error) {
	var dtos []menuItemDTO
	if err := json.Unmarshal(data, &dtos); err != nil {
		return nil, fmt.Errorf("json.Unmarshal: %w", err)
	}

	items := make([]domain.MenuItem, 0, len(dtos))
	for _, dto := range dtos {
		item, err := mapMenuItemToDomain(dto, unit)
		if err != nil {
			return nil, fmt.Errorf("mapMenuItemToDomain: %w", err)
		}
		items = append(items, item)
	}

	return items, nil
}

func mapMenuItemToDomain(dto menuItemDTO, unit currency.Unit) (domain.MenuItem, error) {
	category := domain.Category(dto.Category)
	if !category.IsValid() {
		return domain.MenuItem{}, fmt.Errorf("item[%d] category[%s] is not valid", dto.ID, dto.Category)
	}
	if dto.Price.IsNegative() {
		return domain.MenuItem{}, fmt.Errorf("item[%d] price is negative", dto.ID)
	}

	return domain.MenuItem{
		ID:          dto.ID,
		Name:        dto.Name,
		Category:    category,
		Price:       domain.NewMoney(dto.Price, unit),
		Description: dto.Description,
		Rating:      dto.Rating,
		PrepTime:    dto.PrepTime,
		ImageURL:    dto.Image,
	}, nil
}
