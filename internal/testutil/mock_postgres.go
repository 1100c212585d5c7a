package testutil

import (
	"context"

	"github.com/dialhaven/dialhaven/internal/postgres"
	"github.com/jackc/pgx/v5"
)

// MockPostgresClient satisfies postgres.IClient for service tests running
// against in-memory stores. WithTx runs the callback directly; the stores
// provide their own consistency.
type MockPostgresClient struct{}

func NewMockPostgresClient() *MockPostgresClient {
	return &MockPostgresClient{}
}

func (c *MockPostgresClient) Querier(ctx context.Context) postgres.Querier {
	return nil
}

func (c *MockPostgresClient) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

func (c *MockPostgresClient) TxFromContext(ctx context.Context) pgx.Tx {
	return nil
}

func (c *MockPostgresClient) TryLockKey(ctx context.Context, key string) (bool, error) {
	return true, nil
}

func (c *MockPostgresClient) Close() {}
