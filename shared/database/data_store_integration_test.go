//go:build integration

package database_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"butterfly-story/shared/database"
	"butterfly-story/shared/interfaces"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	tcredis "github.com/testcontainers/testcontainers-go/modules/redis"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap"
)

// DataStoreSuite прогоняет одинаковые проверки на Redis и PostgreSQL.
type DataStoreSuite struct {
	suite.Suite
	ctx         context.Context
	logger      *zap.Logger
	pgContainer *postgres.PostgresContainer
	rdContainer *tcredis.RedisContainer
	pgPool      *pgxpool.Pool
	redisClient *redis.Client
	stores      map[string]interfaces.DataStore
}

func (s *DataStoreSuite) SetupSuite() {
	s.ctx = context.Background()
	s.logger = zap.NewNop()
	var err error

	s.pgContainer, err = postgres.Run(s.ctx,
		"postgres:15-alpine",
		postgres.WithDatabase("test_db"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(5*time.Minute),
		),
	)
	require.NoError(s.T(), err, "Failed to start postgres container")

	pgConnStr, err := s.pgContainer.ConnectionString(s.ctx, "sslmode=disable")
	require.NoError(s.T(), err)
	require.NoError(s.T(), database.RunMigrations(pgConnStr, s.logger), "Failed to run migrations")

	s.pgPool, err = pgxpool.New(s.ctx, pgConnStr)
	require.NoError(s.T(), err)

	s.rdContainer, err = tcredis.Run(s.ctx,
		"docker.io/redis:7-alpine",
		testcontainers.WithWaitStrategy(
			wait.ForLog("* Ready to accept connections").
				WithOccurrence(1).
				WithStartupTimeout(1*time.Minute),
		),
	)
	require.NoError(s.T(), err, "Failed to start redis container")

	redisHost, err := s.rdContainer.Host(s.ctx)
	require.NoError(s.T(), err)
	redisPort, err := s.rdContainer.MappedPort(s.ctx, "6379/tcp")
	require.NoError(s.T(), err)
	s.redisClient = redis.NewClient(&redis.Options{Addr: fmt.Sprintf("%s:%s", redisHost, redisPort.Port())})

	s.stores = map[string]interfaces.DataStore{
		"postgres": database.NewPgDataStore(s.pgPool, "pg-test", s.logger),
		"redis":    database.NewRedisDataStore(s.redisClient, "test:", "redis-test", s.logger),
	}
}

func (s *DataStoreSuite) TearDownSuite() {
	if s.pgPool != nil {
		s.pgPool.Close()
	}
	if s.redisClient != nil {
		_ = s.redisClient.Close()
	}
	if s.pgContainer != nil {
		_ = s.pgContainer.Terminate(s.ctx)
	}
	if s.rdContainer != nil {
		_ = s.rdContainer.Terminate(s.ctx)
	}
}

func (s *DataStoreSuite) SetupTest() {
	require.NoError(s.T(), s.redisClient.FlushDB(s.ctx).Err())
	_, err := s.pgPool.Exec(s.ctx, "TRUNCATE TABLE contract_data")
	require.NoError(s.T(), err)
}

func (s *DataStoreSuite) TestRoundTrip() {
	for name, store := range s.stores {
		s.Run(name, func() {
			ok, err := store.IsAvailable(s.ctx)
			s.Require().NoError(err)
			s.True(ok)

			missing, err := store.GetData(s.ctx, "choice_keys")
			s.Require().NoError(err)
			s.Empty(missing)

			s.Require().NoError(store.SetData(s.ctx, "choice_keys", []byte(`["a"]`)))
			s.Require().NoError(store.SetData(s.ctx, "choice_keys", []byte(`["a","b"]`)))

			got, err := store.GetData(s.ctx, "choice_keys")
			s.Require().NoError(err)
			s.Equal(`["a","b"]`, string(got))
		})
	}
}

func TestDataStoreSuite(t *testing.T) {
	suite.Run(t, new(DataStoreSuite))
}
