package port

import (
	"context"

	"github.com/nikolayk812/foodie/internal/domain"
)

type CatalogProvider interface {
	FetchMenu(ctx context.Context) ([]domain.MenuItem, error)
}

// ItemLookup resolves menu items by ID against a catalog snapshot.
type ItemLookup interface {
	Item(id int64) (domain.MenuItem, bool)
}
