package repository_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/google/go-cmp/cmp"
	"github.com/google/uuid"
	"github.com/nikolayk812/foodie/internal/domain"
	"github.com/nikolayk812/foodie/internal/migrations"
	"github.com/nikolayk812/foodie/internal/port"
	"github.com/nikolayk812/foodie/internal/repository"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"golang.org/x/text/currency"
)

func startPostgres(ctx context.Context) (*postgres.PostgresContainer, string, error) {
	postgresContainer, err := postgres.Run(ctx, "postgres:17.6-alpine3.22",
		postgres.WithDatabase("foodie"),
		postgres.BasicWaitStrategies(),
	)
	if err != nil {
		return nil, "", fmt.Errorf("postgres.Run: %w", err)
	}

	connStr, err := postgresContainer.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		return nil, "", fmt.Errorf("pc.ConnectionString: %w", err)
	}

	if err := migrations.Up(connStr); err != nil {
		return nil, "", fmt.Errorf("migrations.Up: %w", err)
	}

	return postgresContainer, connStr, nil
}

// testKeyValueStore exercises the behaviour every KeyValueStore backend shares.
func testKeyValueStore(t *testing.T, store port.KeyValueStore) {
	t.Run("set then get: ok", func(t *testing.T) {
		ctx := t.Context()
		key := gofakeit.UUID()
		value := []byte(gofakeit.Sentence(5))

		require.NoError(t, store.Set(ctx, key, value))

		got, err := store.Get(ctx, key)
		require.NoError(t, err)
		assert.Equal(t, value, got)
	})

	t.Run("set overwrites: ok", func(t *testing.T) {
		ctx := t.Context()
		key := gofakeit.UUID()

		require.NoError(t, store.Set(ctx, key, []byte("first")))
		require.NoError(t, store.Set(ctx, key, []byte("second")))

		got, err := store.Get(ctx, key)
		require.NoError(t, err)
		assert.Equal(t, []byte("second"), got)
	})

	t.Run("get missing key: not found", func(t *testing.T) {
		_, err := store.Get(t.Context(), gofakeit.UUID())
		require.ErrorIs(t, err, repository.ErrKeyNotFound)
	})

	t.Run("set all: ok", func(t *testing.T) {
		ctx := t.Context()
		entries := []port.Entry{
			{Key: gofakeit.UUID(), Value: []byte("a")},
			{Key: gofakeit.UUID(), Value: []byte("b")},
		}

		require.NoError(t, store.SetAll(ctx, entries))

		for _, e := range entries {
			got, err := store.Get(ctx, e.Key)
			require.NoError(t, err)
			assert.Equal(t, e.Value, got)
		}
	})

	t.Run("set all with empty key writes nothing: error", func(t *testing.T) {
		ctx := t.Context()
		valid := gofakeit.UUID()

		err := store.SetAll(ctx, []port.Entry{{Key: valid, Value: []byte("a")}, {Key: "", Value: []byte("b")}})
		require.EqualError(t, err, "key is empty")

		_, err = store.Get(ctx, valid)
		require.ErrorIs(t, err, repository.ErrKeyNotFound)
	})

	t.Run("delete: ok", func(t *testing.T) {
		ctx := t.Context()
		key := gofakeit.UUID()

		require.NoError(t, store.Set(ctx, key, []byte("value")))
		require.NoError(t, store.Delete(ctx, key))

		_, err := store.Get(ctx, key)
		require.ErrorIs(t, err, repository.ErrKeyNotFound)

		require.NoError(t, store.Delete(ctx, key), "deleting a missing key is not an error")
	})

	t.Run("empty key: error", func(t *testing.T) {
		ctx := t.Context()

		_, err := store.Get(ctx, "")
		require.EqualError(t, err, "key is empty")
		require.EqualError(t, store.Set(ctx, "", nil), "key is empty")
		require.EqualError(t, store.Delete(ctx, ""), "key is empty")
	})
}

func randomOrder() domain.Order {
	unit := currency.USD

	lines := make([]domain.OrderLine, gofakeit.IntRange(1, 4))
	for i := range lines {
		lines[i] = domain.OrderLine{
			ItemID:    int64(i + 1),
			Name:      gofakeit.Dinner(),
			UnitPrice: domain.NewMoney(decimal.NewFromFloat(gofakeit.Price(1, 40)).Round(2), unit),
			Quantity:  gofakeit.IntRange(1, 5),
		}
	}

	return domain.Order{
		ID:        uuid.New(),
		Reference: fmt.Sprintf("#%d", gofakeit.IntRange(0, 9999)),
		Customer: domain.Customer{
			Name:    gofakeit.Name(),
			Phone:   gofakeit.Phone(),
			Email:   gofakeit.Email(),
			Address: gofakeit.Street(),
		},
		Payment: domain.PaymentCash,
		Lines:   lines,
		Pricing: domain.PriceBreakdown{
			Currency:    unit,
			Subtotal:    decimal.RequireFromString("31.97"),
			DeliveryFee: decimal.RequireFromString("2.99"),
			Tax:         decimal.RequireFromString("2.56"),
			Total:       decimal.RequireFromString("37.52"),
		},
		CreatedAt: time.Now().UTC().Truncate(time.Millisecond),
	}
}

func assertOrder(t *testing.T, expected, actual domain.Order) {
	t.Helper()

	opts := cmp.Options{
		cmp.Comparer(func(x, y decimal.Decimal) bool { return x.Equal(y) }),
		cmp.Comparer(func(x, y currency.Unit) bool { return x.String() == y.String() }),
		cmp.Comparer(func(x, y time.Time) bool { return x.Equal(y) }),
	}

	assert.Empty(t, cmp.Diff(expected, actual, opts))
}
