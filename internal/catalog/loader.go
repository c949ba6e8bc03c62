package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/nikolayk812/foodie/internal/domain"
	"github.com/nikolayk812/foodie/internal/port"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// Loader fetches the menu from a provider. Concurrent loads share one fetch.
type Loader struct {
	provider port.CatalogProvider
	logger   *zap.Logger
	sfg      singleflight.Group
}

func NewLoader(provider port.CatalogProvider, logger *zap.Logger) *Loader {
	return &Loader{
		provider: provider,
		logger:   logger,
	}
}

// Load never returns a nil catalog. On failure the catalog is empty and the error
// wraps domain.ErrCatalogUnavailable.
func (l *Loader) Load(ctx context.Context) (*Catalog, error) {
	v, err, shared := l.sfg.Do("menu", func() (interface{}, error) {
		items, err := l.provider.FetchMenu(ctx)
		if err != nil {
			return nil, fmt.Errorf("provider.FetchMenu: %w", err)
		}

		c, err := New(items)
		if err != nil {
			return nil, fmt.Errorf("catalog.New: %w", err)
		}

		return c, nil
	})
	if err != nil {
		l.logger.Warn("menu load failed, ordering disabled", zap.Error(err))
		return Empty(), errors.Join(domain.ErrCatalogUnavailable, err)
	}

	c := v.(*Catalog)
	l.logger.Info("menu loaded", zap.Int("items", c.Len()), zap.Bool("shared", shared))

	return c, nil
}
