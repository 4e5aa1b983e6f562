package database

import (
	"context"
	"fmt"
	"sync"

	"github.com/clubdata/clubsync/utils"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Querier is the slice of pgxpool.Pool the rest of the application depends
// on. Keeping it narrow lets tests substitute a mock for the pool.
type Querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	CopyFrom(ctx context.Context, tableName pgx.Identifier, columnNames []string, rowSrc pgx.CopyFromSource) (int64, error)
}

var (
	pool     *pgxpool.Pool
	poolOnce sync.Once
	poolErr  error
)

// GetPool returns a singleton connection pool for the application
func GetPool() (*pgxpool.Pool, error) {
	poolOnce.Do(func() {
		utils.LoadEnv()
		connStr := utils.GetDatabaseURL()
		if connStr == "" {
			poolErr = fmt.Errorf("DATABASE_URL not set in environment or config")
			return
		}

		ctx := context.Background()
		pool, poolErr = pgxpool.New(ctx, connStr)
		if poolErr != nil {
			poolErr = fmt.Errorf("unable to create connection pool: %v", poolErr)
			return
		}

		// Test the connection
		if err := pool.Ping(ctx); err != nil {
			pool.Close()
			pool = nil
			poolErr = fmt.Errorf("unable to ping database: %v", err)
			return
		}
	})

	return pool, poolErr
}

// ClosePool closes the connection pool (should be called on application shutdown)
func ClosePool() {
	if pool != nil {
		pool.Close()
	}
}
