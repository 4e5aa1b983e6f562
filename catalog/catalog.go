package catalog

import (
	"context"
	"fmt"

	"github.com/clubdata/clubsync/database"
)

// Catalog answers questions about the constraint state of the public schema.
// It is the introspection half of the database boundary; DDL execution lives
// in the reconcile package's store.
type Catalog struct {
	db database.Querier
}

func New(db database.Querier) *Catalog {
	return &Catalog{db: db}
}

// Constraint is one named table constraint.
type Constraint struct {
	TableName      string
	ConstraintName string
	ConstraintType string
}

// PrimaryKeyColumns returns the columns of tableName under a PRIMARY KEY
// constraint.
func (c *Catalog) PrimaryKeyColumns(ctx context.Context, tableName string) ([]string, error) {
	return c.constraintColumns(ctx, tableName, "PRIMARY KEY")
}

// ForeignKeyColumns returns the columns of tableName under a FOREIGN KEY
// constraint.
func (c *Catalog) ForeignKeyColumns(ctx context.Context, tableName string) ([]string, error) {
	return c.constraintColumns(ctx, tableName, "FOREIGN KEY")
}

func (c *Catalog) constraintColumns(ctx context.Context, tableName, constraintType string) ([]string, error) {
	query := `
	SELECT kcu.column_name
	FROM information_schema.table_constraints tc
	JOIN information_schema.key_column_usage kcu
		ON tc.constraint_name = kcu.constraint_name
		AND tc.table_schema = kcu.table_schema
	WHERE tc.constraint_type = $1
		AND tc.table_schema = 'public'
		AND tc.table_name = $2
	ORDER BY kcu.ordinal_position;
	`

	rows, err := c.db.Query(ctx, query, constraintType, tableName)
	if err != nil {
		return nil, fmt.Errorf("querying %s columns for %s: %v", constraintType, tableName, err)
	}
	defer rows.Close()

	var columns []string
	for rows.Next() {
		var column string
		if err := rows.Scan(&column); err != nil {
			return nil, fmt.Errorf("scanning column name: %v", err)
		}
		columns = append(columns, column)
	}

	if rows.Err() != nil {
		return nil, fmt.Errorf("iterating column rows: %v", rows.Err())
	}

	return columns, nil
}

// TableExists reports whether tableName exists in the public schema.
func (c *Catalog) TableExists(ctx context.Context, tableName string) (bool, error) {
	query := `SELECT EXISTS (
		SELECT FROM information_schema.tables
		WHERE table_schema = 'public'
		AND table_name = $1
	);`

	var exists bool
	if err := c.db.QueryRow(ctx, query, tableName).Scan(&exists); err != nil {
		return false, fmt.Errorf("checking table %s: %v", tableName, err)
	}
	return exists, nil
}

// Constraints lists the named constraints of the given type owned by any of
// the given tables, in a stable order. constraintTypes uses the
// information_schema vocabulary: FOREIGN KEY, PRIMARY KEY, UNIQUE.
func (c *Catalog) Constraints(ctx context.Context, tableNames []string, constraintTypes []string) ([]Constraint, error) {
	query := `
	SELECT tc.table_name, tc.constraint_name, tc.constraint_type
	FROM information_schema.table_constraints tc
	WHERE tc.table_schema = 'public'
		AND tc.table_name = ANY($1)
		AND tc.constraint_type = ANY($2)
	ORDER BY tc.table_name, tc.constraint_name;
	`

	rows, err := c.db.Query(ctx, query, tableNames, constraintTypes)
	if err != nil {
		return nil, fmt.Errorf("querying constraints: %v", err)
	}
	defer rows.Close()

	var constraints []Constraint
	for rows.Next() {
		var con Constraint
		if err := rows.Scan(&con.TableName, &con.ConstraintName, &con.ConstraintType); err != nil {
			return nil, fmt.Errorf("scanning constraint: %v", err)
		}
		constraints = append(constraints, con)
	}

	if rows.Err() != nil {
		return nil, fmt.Errorf("iterating constraint rows: %v", rows.Err())
	}

	return constraints, nil
}

// ConstrainedColumns returns every column of the given tables that sits
// under a PRIMARY KEY or FOREIGN KEY constraint.
func (c *Catalog) ConstrainedColumns(ctx context.Context, tableNames []string) (map[string]bool, error) {
	query := `
	SELECT kcu.column_name
	FROM information_schema.table_constraints tc
	JOIN information_schema.key_column_usage kcu
		ON tc.constraint_name = kcu.constraint_name
		AND tc.table_schema = kcu.table_schema
	WHERE tc.table_schema = 'public'
		AND tc.table_name = ANY($1)
		AND tc.constraint_type IN ('PRIMARY KEY', 'FOREIGN KEY');
	`

	rows, err := c.db.Query(ctx, query, tableNames)
	if err != nil {
		return nil, fmt.Errorf("querying constrained columns: %v", err)
	}
	defer rows.Close()

	columns := map[string]bool{}
	for rows.Next() {
		var column string
		if err := rows.Scan(&column); err != nil {
			return nil, fmt.Errorf("scanning constrained column: %v", err)
		}
		columns[column] = true
	}

	if rows.Err() != nil {
		return nil, fmt.Errorf("iterating constrained column rows: %v", rows.Err())
	}

	return columns, nil
}
