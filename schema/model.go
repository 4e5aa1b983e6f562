package schema

import (
	"fmt"
	"regexp"
	"strings"
)

// TableSpec declares the key constraints one dataset table should end up
// with after reconciliation. An empty PrimaryKey means the table is a fact
// table keyed only through its foreign keys.
type TableSpec struct {
	Name        string
	PrimaryKey  string
	ForeignKeys []ForeignKeySpec
}

// ForeignKeySpec declares one foreign key column and the table/column it
// references.
type ForeignKeySpec struct {
	Column           string
	ReferencesTable  string
	ReferencesColumn string
}

// JoinTableSpec declares a many-to-many join table created on demand once
// both sides carry their keys.
type JoinTableSpec struct {
	Name  string
	Left  JoinSide
	Right JoinSide
}

// JoinSide is one leg of a join table: the referenced table/column and the
// column name the join table uses for it.
type JoinSide struct {
	Table     string
	Column    string
	RefColumn string
	// RequiredKeys are columns that must already be under a PRIMARY KEY or
	// FOREIGN KEY constraint on Table before the join table may be created.
	RequiredKeys []string
}

var identifierPattern = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9_]*$`)

// ValidIdentifier reports whether name is safe to interpolate into DDL.
// Table and column names come from static configuration, but everything
// that ends up inside an ALTER/CREATE statement goes through this check.
func ValidIdentifier(name string) bool {
	return identifierPattern.MatchString(name)
}

// Validate checks a spec list before it is handed to the reconciler:
// every identifier must pass the allow-list and every foreign key must
// reference a table and column declared in the same list.
func Validate(specs []TableSpec) error {
	byName := map[string]TableSpec{}
	for _, spec := range specs {
		if !ValidIdentifier(spec.Name) {
			return fmt.Errorf("invalid table name: %q", spec.Name)
		}
		if _, dup := byName[spec.Name]; dup {
			return fmt.Errorf("duplicate table spec: %q", spec.Name)
		}
		byName[spec.Name] = spec
	}

	for _, spec := range specs {
		if spec.PrimaryKey != "" && !ValidIdentifier(spec.PrimaryKey) {
			return fmt.Errorf("table %s: invalid primary key column: %q", spec.Name, spec.PrimaryKey)
		}
		for _, fk := range spec.ForeignKeys {
			if !ValidIdentifier(fk.Column) {
				return fmt.Errorf("table %s: invalid foreign key column: %q", spec.Name, fk.Column)
			}
			ref, ok := byName[fk.ReferencesTable]
			if !ok {
				return fmt.Errorf("table %s: foreign key %s references unknown table %q",
					spec.Name, fk.Column, fk.ReferencesTable)
			}
			if !ValidIdentifier(fk.ReferencesColumn) {
				return fmt.Errorf("table %s: invalid referenced column: %q", spec.Name, fk.ReferencesColumn)
			}
			if ref.PrimaryKey == "" {
				return fmt.Errorf("table %s: foreign key %s references %s which declares no primary key",
					spec.Name, fk.Column, fk.ReferencesTable)
			}
			if !strings.EqualFold(ref.PrimaryKey, fk.ReferencesColumn) {
				return fmt.Errorf("table %s: foreign key %s references %s.%s which is not its primary key",
					spec.Name, fk.Column, fk.ReferencesTable, fk.ReferencesColumn)
			}
		}
	}

	return nil
}

// TableNames returns the names in spec order.
func TableNames(specs []TableSpec) []string {
	names := make([]string, 0, len(specs))
	for _, spec := range specs {
		names = append(names, spec.Name)
	}
	return names
}
