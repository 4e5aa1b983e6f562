package cmd

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/clubdata/clubsync/catalog"
	"github.com/clubdata/clubsync/database"
	"github.com/clubdata/clubsync/schema"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the constraint state of every dataset table",
	Run: func(cmd *cobra.Command, args []string) {
		if err := runStatus(); err != nil {
			fmt.Println("❌ Status error:", err)
			os.Exit(1)
		}
	},
}

func runStatus() error {
	pool, err := database.GetPool()
	if err != nil {
		return err
	}
	defer database.ClosePool()

	cat := catalog.New(pool)
	ctx := context.Background()

	fmt.Println("📋 Dataset tables:")
	for _, spec := range schema.SportsRelations() {
		exists, err := cat.TableExists(ctx, spec.Name)
		if err != nil {
			return fmt.Errorf("checking table %s: %v", spec.Name, err)
		}
		if !exists {
			color.Yellow("   - %s: not loaded", spec.Name)
			continue
		}

		pkColumns, err := cat.PrimaryKeyColumns(ctx, spec.Name)
		if err != nil {
			return fmt.Errorf("reading primary key of %s: %v", spec.Name, err)
		}
		fkColumns, err := cat.ForeignKeyColumns(ctx, spec.Name)
		if err != nil {
			return fmt.Errorf("reading foreign keys of %s: %v", spec.Name, err)
		}

		pk := "none"
		if len(pkColumns) > 0 {
			pk = strings.Join(pkColumns, ", ")
		}
		fk := "none"
		if len(fkColumns) > 0 {
			fk = strings.Join(fkColumns, ", ")
		}

		if reconciled(spec, pkColumns, fkColumns) {
			color.Green("   - %s: PK [%s], FK [%s]", spec.Name, pk, fk)
		} else {
			color.Yellow("   - %s: PK [%s], FK [%s] (pending)", spec.Name, pk, fk)
		}
	}

	return nil
}

// reconciled reports whether the table already carries everything its spec
// declares.
func reconciled(spec schema.TableSpec, pkColumns, fkColumns []string) bool {
	if spec.PrimaryKey != "" && len(pkColumns) == 0 {
		return false
	}
	existing := map[string]bool{}
	for _, column := range fkColumns {
		existing[column] = true
	}
	for _, fk := range spec.ForeignKeys {
		if !existing[fk.Column] {
			return false
		}
	}
	return true
}
