package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/clubdata/clubsync/catalog"
	"github.com/clubdata/clubsync/database"
	"github.com/clubdata/clubsync/schema"
)

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Check database connectivity",
	Long: `Check if the database is accessible and how many dataset tables it holds.

Examples:
  clubsync health                    # Check default database connection
  clubsync health --timeout 10s      # Set custom timeout
`,
	Run: func(cmd *cobra.Command, args []string) {
		if err := checkDatabaseHealth(); err != nil {
			fmt.Printf("❌ Database health check failed: %v\n", err)
			os.Exit(1)
		}
		fmt.Println("✅ Database is healthy and accessible")
	},
}

var healthTimeout time.Duration

func init() {
	healthCmd.Flags().DurationVarP(&healthTimeout, "timeout", "t", 5*time.Second, "Timeout for health check")
}

func checkDatabaseHealth() error {
	ctx, cancel := context.WithTimeout(context.Background(), healthTimeout)
	defer cancel()

	pool, err := database.GetPool()
	if err != nil {
		return fmt.Errorf("failed to get database pool: %v", err)
	}
	defer database.ClosePool()

	if err := pool.Ping(ctx); err != nil {
		return fmt.Errorf("failed to ping database: %v", err)
	}

	cat := catalog.New(pool)
	loaded := 0
	for _, table := range schema.SportsTables() {
		exists, err := cat.TableExists(ctx, table)
		if err != nil {
			return fmt.Errorf("failed to check table %s: %v", table, err)
		}
		if exists {
			loaded++
		}
	}

	if loaded == 0 {
		fmt.Println("⚠️  Database is accessible but no dataset tables found")
		fmt.Println("   Run 'clubsync export --output sql' to load them")
		return nil
	}

	fmt.Printf("📊 Found %d of %d dataset tables\n", loaded, len(schema.SportsTables()))
	return nil
}
