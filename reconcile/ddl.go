package reconcile

import (
	"fmt"

	"github.com/clubdata/clubsync/schema"
)

// keyColumnType is the type every key column is coerced to before a
// constraint is added. Loaded tables arrive with whatever types the
// exporter inferred; primary and foreign key pairs must match.
const keyColumnType = "integer"

func alterColumnType(table, column string) string {
	return fmt.Sprintf(`ALTER TABLE "%s" ALTER COLUMN "%s" TYPE %s USING "%s"::%s;`,
		table, column, keyColumnType, column, keyColumnType)
}

func setNotNull(table, column string) string {
	return fmt.Sprintf(`ALTER TABLE "%s" ALTER COLUMN "%s" SET NOT NULL;`, table, column)
}

func addPrimaryKey(table, column string) string {
	return fmt.Sprintf(`ALTER TABLE "%s" ADD PRIMARY KEY ("%s");`, table, column)
}

// addForeignKey builds the FK constraint statement. With validate false the
// constraint is created NOT VALID: it is enforced for new rows but orphan
// rows already present in the table are tolerated.
func addForeignKey(table string, fk schema.ForeignKeySpec, validate bool) string {
	stmt := fmt.Sprintf(`ALTER TABLE "%s" ADD CONSTRAINT "fk_%s_%s" FOREIGN KEY ("%s") REFERENCES "%s" ("%s") ON DELETE NO ACTION`,
		table, table, fk.Column,
		fk.Column, fk.ReferencesTable, fk.ReferencesColumn,
	)
	if !validate {
		stmt += " NOT VALID"
	}
	return stmt + ";"
}

func dropConstraint(table, constraint string) string {
	return fmt.Sprintf(`ALTER TABLE "%s" DROP CONSTRAINT "%s";`, table, constraint)
}

func createJoinTable(join schema.JoinTableSpec) string {
	return fmt.Sprintf(`CREATE TABLE "%s" (`+
		`"%s" %s NOT NULL REFERENCES "%s" ("%s"), `+
		`"%s" %s NOT NULL REFERENCES "%s" ("%s"));`,
		join.Name,
		join.Left.Column, keyColumnType, join.Left.Table, join.Left.RefColumn,
		join.Right.Column, keyColumnType, join.Right.Table, join.Right.RefColumn,
	)
}

func dropTable(table string) string {
	return fmt.Sprintf(`DROP TABLE IF EXISTS "%s";`, table)
}

func deleteRows(table string) string {
	return fmt.Sprintf(`DELETE FROM "%s";`, table)
}
