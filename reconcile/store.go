package reconcile

import (
	"context"
	"fmt"

	"github.com/clubdata/clubsync/catalog"
	"github.com/clubdata/clubsync/database"
	"github.com/jackc/pgx/v5"
)

// Store is the database boundary the reconciler works against: constraint
// catalog introspection plus DDL execution. Each ExecDDL call is one logical
// alteration, committed as a whole.
type Store interface {
	PrimaryKeyColumns(ctx context.Context, tableName string) ([]string, error)
	ForeignKeyColumns(ctx context.Context, tableName string) ([]string, error)
	TableExists(ctx context.Context, tableName string) (bool, error)
	Constraints(ctx context.Context, tableNames []string, constraintTypes []string) ([]catalog.Constraint, error)
	ConstrainedColumns(ctx context.Context, tableNames []string) (map[string]bool, error)
	ExecDDL(ctx context.Context, statements ...string) error
}

// TxBeginner is what the pgx-backed store needs from the pool: queries for
// introspection and transactions for DDL units.
type TxBeginner interface {
	database.Querier
	Begin(ctx context.Context) (pgx.Tx, error)
}

type pgxStore struct {
	*catalog.Catalog
	db TxBeginner
}

// NewStore wraps a connection pool into a Store.
func NewStore(db TxBeginner) Store {
	return &pgxStore{
		Catalog: catalog.New(db),
		db:      db,
	}
}

// ExecDDL runs the statements of one alteration inside a single transaction
// so a unit either lands completely or not at all.
func (s *pgxStore) ExecDDL(ctx context.Context, statements ...string) error {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin: %v", err)
	}
	defer tx.Rollback(ctx)

	for _, stmt := range statements {
		if _, err := tx.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("executing %q: %v", stmt, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit: %v", err)
	}
	return nil
}
