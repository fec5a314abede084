package database

import (
	"context"
	"fmt"

	"butterfly-story/shared/interfaces"

	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

// Compile-time check to ensure implementation satisfies the interface.
var _ interfaces.DataStore = (*pgDataStore)(nil)

type pgDataStore struct {
	pool    *pgxpool.Pool
	address string
	logger  *zap.Logger
}

// NewPgDataStore creates a DataStore over the contract_data table.
func NewPgDataStore(pool *pgxpool.Pool, address string, logger *zap.Logger) interfaces.DataStore {
	return &pgDataStore{
		pool:    pool,
		address: address,
		logger:  logger.Named("PgDataStore"),
	}
}

type dataRow struct {
	Key   string `db:"key"`
	Value []byte `db:"value"`
}

const getDataQuery = `SELECT key, value FROM contract_data WHERE key = $1`

const setDataQuery = `
INSERT INTO contract_data (key, value, updated_at)
VALUES ($1, $2, NOW())
ON CONFLICT (key) DO UPDATE SET
    value = EXCLUDED.value,
    updated_at = EXCLUDED.updated_at`

func (r *pgDataStore) IsAvailable(ctx context.Context) (bool, error) {
	if err := r.pool.Ping(ctx); err != nil {
		r.logger.Warn("Postgres ping failed", zap.Error(err))
		return false, nil
	}
	return true, nil
}

func (r *pgDataStore) GetData(ctx context.Context, key string) ([]byte, error) {
	var row dataRow
	if err := pgxscan.Get(ctx, r.pool, &row, getDataQuery, key); err != nil {
		if pgxscan.NotFound(err) {
			return []byte{}, nil
		}
		r.logger.Error("Failed to get contract data", zap.String("key", key), zap.Error(err))
		return nil, fmt.Errorf("get contract data %s: %w", key, err)
	}
	return row.Value, nil
}

func (r *pgDataStore) SetData(ctx context.Context, key string, value []byte) error {
	if _, err := r.pool.Exec(ctx, setDataQuery, key, value); err != nil {
		r.logger.Error("Failed to set contract data", zap.String("key", key), zap.Error(err))
		return fmt.Errorf("set contract data %s: %w", key, err)
	}
	return nil
}

func (r *pgDataStore) Address() string { return r.address }
