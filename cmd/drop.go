package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/clubdata/clubsync/database"
	"github.com/clubdata/clubsync/schema"
)

var dropCmd = &cobra.Command{
	Use:   "drop",
	Short: "Drop every key constraint owned by the dataset tables",
	Long: `Drop all foreign key constraints on the known dataset tables, then all
primary/unique key constraints. The reverse of reconcile, used to reset
relations between runs. Table data is untouched; use clean for that.
`,
	Run: func(cmd *cobra.Command, args []string) {
		if err := runDrop(); err != nil {
			fmt.Println("❌ Drop failed:", err)
			os.Exit(1)
		}
	},
}

func runDrop() error {
	rec, err := newReconciler()
	if err != nil {
		return err
	}
	defer database.ClosePool()

	report, err := rec.DropAllConstraints(context.Background(), schema.SportsTables())
	if err != nil {
		return err
	}

	printReport(report)
	return nil
}
