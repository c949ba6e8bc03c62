package port

import (
	"context"

	"github.com/google/uuid"
	"github.com/nikolayk812/foodie/internal/domain"
)

type Entry struct {
	Key   string
	Value []byte
}

type KeyValueStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	// SetAll writes all entries atomically.
	SetAll(ctx context.Context, entries []Entry) error
	Delete(ctx context.Context, key string) error
}

type OrderStore interface {
	SaveOrder(ctx context.Context, order domain.Order) error
}

// OrderHistory reads back orders written through OrderStore.
type OrderHistory interface {
	GetOrder(ctx context.Context, id uuid.UUID) (domain.Order, error)
	LastOrder(ctx context.Context) (domain.Order, bool, error)
}

type UserStore interface {
	LoadCurrentUser(ctx context.Context) (domain.User, bool, error)
	SaveCurrentUser(ctx context.Context, user domain.User) error
	ClearCurrentUser(ctx context.Context) error
}

type PersistentStore interface {
	OrderStore
	OrderHistory
	UserStore
}
