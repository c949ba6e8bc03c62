package repository_test

import (
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/nikolayk812/foodie/internal/port"
	"github.com/nikolayk812/foodie/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
)

type postgresStoreSuite struct {
	suite.Suite

	store     port.KeyValueStore
	pool      *pgxpool.Pool
	container testcontainers.Container
}

// entry point to run the tests in the suite
func TestPostgresStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("needs docker")
	}
	suite.Run(t, new(postgresStoreSuite))
}

// before all tests in the suite
func (suite *postgresStoreSuite) SetupSuite() {
	ctx := suite.T().Context()

	container, connStr, err := startPostgres(ctx)
	suite.Require().NoError(err)
	suite.container = container

	suite.pool, err = pgxpool.New(ctx, connStr)
	suite.Require().NoError(err)

	suite.store = repository.NewPostgresStore(suite.pool)
}

// after all tests in the suite
func (suite *postgresStoreSuite) TearDownSuite() {
	if suite.pool != nil {
		suite.pool.Close()
	}
	if suite.container != nil {
		_ = testcontainers.TerminateContainer(suite.container)
	}
}

func (suite *postgresStoreSuite) TestKeyValueStore() {
	defer suite.deleteAll()

	testKeyValueStore(suite.T(), suite.store)
}

func (suite *postgresStoreSuite) TestSetAll_WithTx() {
	defer suite.deleteAll()

	tests := []struct {
		name      string
		commit    bool
		wantFound bool
	}{
		{
			name:      "committed transaction: ok",
			commit:    true,
			wantFound: true,
		},
		{
			name:      "rolled back transaction: not found",
			commit:    false,
			wantFound: false,
		},
	}

	for _, tt := range tests {
		suite.Run(tt.name, func() {
			t := suite.T()
			ctx := t.Context()

			tx, err := suite.pool.Begin(ctx)
			require.NoError(t, err)

			key := "tx:" + tt.name
			err = repository.NewPostgresStoreWithTx(tx).SetAll(ctx, []port.Entry{{Key: key, Value: []byte("v")}})
			require.NoError(t, err)

			if tt.commit {
				require.NoError(t, tx.Commit(ctx))
			} else {
				require.NoError(t, tx.Rollback(ctx))
			}

			_, err = suite.store.Get(ctx, key)
			if tt.wantFound {
				require.NoError(t, err)
				return
			}
			require.ErrorIs(t, err, repository.ErrKeyNotFound)
		})
	}
}

func (suite *postgresStoreSuite) TestPersistentStore() {
	defer suite.deleteAll()

	t := suite.T()
	ctx := t.Context()
	store := repository.NewPersistentStore(suite.store, "pg-session")

	order := randomOrder()
	require.NoError(t, store.SaveOrder(ctx, order))

	last, found, err := store.LastOrder(ctx)
	require.NoError(t, err)
	require.True(t, found)
	assertOrder(t, order, last)

	var count int
	err = suite.pool.QueryRow(ctx, `SELECT COUNT(*) FROM kv_entries WHERE key LIKE 'pg-session:%'`).Scan(&count)
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func (suite *postgresStoreSuite) deleteAll() {
	_, err := suite.pool.Exec(suite.T().Context(), "TRUNCATE TABLE kv_entries")
	suite.NoError(err)
}
