package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/clubdata/clubsync/database"
	"github.com/clubdata/clubsync/schema"
)

var keepTables bool

var cleanCmd = &cobra.Command{
	Use:   "clean",
	Short: "Drop all constraints and remove every dataset table",
	Long: `Clean the database: drop every key constraint on the known tables, then
drop the tables themselves (or only empty them with --keep-tables). Both the
sports and the social analytics tables are covered.
`,
	Run: func(cmd *cobra.Command, args []string) {
		if err := runClean(); err != nil {
			fmt.Println("❌ Clean failed:", err)
			os.Exit(1)
		}
	},
}

func init() {
	cleanCmd.Flags().BoolVar(&keepTables, "keep-tables", false, "Delete rows but keep the empty tables")
}

func runClean() error {
	rec, err := newReconciler()
	if err != nil {
		return err
	}
	defer database.ClosePool()

	ctx := context.Background()

	// Constraints first, tables reference each other.
	report, err := rec.DropAllConstraints(ctx, schema.SportsTables())
	if err != nil {
		return err
	}

	tables := append(schema.SportsTables(), schema.SocialTables()...)
	cleaned, err := rec.CleanTables(ctx, tables, keepTables)
	if err != nil {
		return err
	}
	report.Outcomes = append(report.Outcomes, cleaned.Outcomes...)

	printReport(report)
	return nil
}
