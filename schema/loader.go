package schema

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type yamlFile struct {
	Tables []yamlTable `yaml:"tables"`
}

type yamlTable struct {
	Name        string    `yaml:"name"`
	PrimaryKey  string    `yaml:"primary_key"`
	ForeignKeys []yamlFK  `yaml:"foreign_keys"`
}

type yamlFK struct {
	Column     string `yaml:"column"`
	References string `yaml:"references_table"`
	RefColumn  string `yaml:"references_column"`
}

// LoadSpecsFromYAML reads a table spec list from a YAML file, for runs where
// the built-in relation list needs overriding. The result is validated
// before it is returned.
func LoadSpecsFromYAML(filename string) ([]TableSpec, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("reading spec file: %w", err)
	}

	var yf yamlFile
	if err := yaml.Unmarshal(data, &yf); err != nil {
		return nil, fmt.Errorf("unmarshalling YAML: %w", err)
	}

	var specs []TableSpec
	for _, t := range yf.Tables {
		spec := TableSpec{
			Name:       t.Name,
			PrimaryKey: t.PrimaryKey,
		}
		for _, fk := range t.ForeignKeys {
			spec.ForeignKeys = append(spec.ForeignKeys, ForeignKeySpec{
				Column:           fk.Column,
				ReferencesTable:  fk.References,
				ReferencesColumn: fk.RefColumn,
			})
		}
		specs = append(specs, spec)
	}

	if err := Validate(specs); err != nil {
		return nil, fmt.Errorf("validating spec file: %w", err)
	}

	return specs, nil
}
