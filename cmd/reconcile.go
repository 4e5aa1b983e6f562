package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/clubdata/clubsync/database"
	"github.com/clubdata/clubsync/reconcile"
	"github.com/clubdata/clubsync/schema"
)

var (
	dryRunReconcile bool
	strictReconcile bool
	reconcileSpec   string
)

var reconcileCmd = &cobra.Command{
	Use:   "reconcile",
	Short: "Apply declared primary and foreign keys to the loaded tables",
	Long: `Reconcile the constraint state of the dataset tables with their declared
key layout. Primary keys are applied across all tables first, foreign keys
after, and units already in place are skipped, so re-running is a no-op.

Examples:
  clubsync reconcile                 # Apply keys from the built-in relations
  clubsync reconcile --dry-run       # Preview the DDL without executing
  clubsync reconcile --strict        # Validate existing rows when adding FKs
  clubsync reconcile --spec rel.yaml # Use a relation list from a file
`,
	Run: func(cmd *cobra.Command, args []string) {
		if err := runReconcile(); err != nil {
			fmt.Println("❌ Reconcile failed:", err)
			os.Exit(1)
		}
	},
}

func init() {
	reconcileCmd.Flags().BoolVar(&dryRunReconcile, "dry-run", false, "Preview the DDL that would be executed without applying it")
	reconcileCmd.Flags().BoolVar(&strictReconcile, "strict", false, "Validate existing rows when adding foreign keys")
	reconcileCmd.Flags().StringVar(&reconcileSpec, "spec", "", "YAML file with the table relations (default: built-in list)")
}

func loadSpecs() ([]schema.TableSpec, error) {
	if reconcileSpec == "" {
		return schema.SportsRelations(), nil
	}
	return schema.LoadSpecsFromYAML(reconcileSpec)
}

func newReconciler() (*reconcile.Reconciler, error) {
	pool, err := database.GetPool()
	if err != nil {
		return nil, err
	}

	var opts []reconcile.Option
	if strictReconcile {
		opts = append(opts, reconcile.WithStrictForeignKeys())
	}
	if dryRunReconcile {
		opts = append(opts, reconcile.WithDryRun())
	}
	return reconcile.New(reconcile.NewStore(pool), opts...), nil
}

func runReconcile() error {
	specs, err := loadSpecs()
	if err != nil {
		return err
	}

	rec, err := newReconciler()
	if err != nil {
		return err
	}
	defer database.ClosePool()

	ctx := context.Background()

	report, err := rec.Run(ctx, specs)
	if err != nil {
		return err
	}

	joinReport, err := rec.EnsureJoinTable(ctx, schema.LineupJoinTable())
	if err != nil {
		return err
	}
	report.Outcomes = append(report.Outcomes, joinReport.Outcomes...)

	printReport(report)
	return nil
}
