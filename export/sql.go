package export

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/clubdata/clubsync/schema"
)

// writeSQL loads a dataset into its table. Replace mode drops and recreates
// the table first; append mode creates it only when missing.
func (e *Exporter) writeSQL(ctx context.Context, ds Dataset, mode Mode) error {
	if !schema.ValidIdentifier(ds.Table) {
		return fmt.Errorf("invalid table name: %q", ds.Table)
	}
	for _, column := range ds.Columns {
		if !schema.ValidIdentifier(column) {
			return fmt.Errorf("invalid column name: %q", column)
		}
	}

	if mode == ModeReplace {
		if _, err := e.db.Exec(ctx, fmt.Sprintf(`DROP TABLE IF EXISTS "%s";`, ds.Table)); err != nil {
			return fmt.Errorf("dropping table: %w", err)
		}
	}

	if _, err := e.db.Exec(ctx, createTableStatement(ds)); err != nil {
		return fmt.Errorf("creating table: %w", err)
	}

	if len(ds.Rows) == 0 {
		return nil
	}

	copied, err := e.db.CopyFrom(ctx, pgx.Identifier{ds.Table}, ds.Columns, pgx.CopyFromRows(ds.Rows))
	if err != nil {
		return fmt.Errorf("copying rows: %w", err)
	}
	if copied != int64(len(ds.Rows)) {
		return fmt.Errorf("copied %d of %d rows", copied, len(ds.Rows))
	}
	return nil
}

func createTableStatement(ds Dataset) string {
	var b strings.Builder
	fmt.Fprintf(&b, `CREATE TABLE IF NOT EXISTS "%s" (`, ds.Table)
	for i, column := range ds.Columns {
		if i > 0 {
			b.WriteString(", ")
		}
		fmt.Fprintf(&b, `"%s" %s`, column, inferColumnType(ds.Rows, i))
	}
	b.WriteString(");")
	return b.String()
}

// inferColumnType picks a column type from the first non-nil value. Loads
// are deliberately loose; key columns are retyped by the reconciler.
func inferColumnType(rows [][]any, index int) string {
	for _, row := range rows {
		switch row[index].(type) {
		case nil:
			continue
		case int, int32, int64:
			return "bigint"
		case float32, float64:
			return "double precision"
		case bool:
			return "boolean"
		default:
			return "text"
		}
	}
	return "text"
}
