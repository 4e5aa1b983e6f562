package cmd

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var rootCmd = &cobra.Command{
	Use:   "clubsync",
	Short: "Pulls sports statistics and social analytics into CSV files and Postgres",
	Long: `clubsync is an ETL CLI for club data. It pulls match statistics from the
sports provider and social media analytics from Coosto, flattens both into
tabular datasets, exports them to CSV and/or Postgres, and reconciles
primary/foreign keys across the loaded tables.

Examples:

  clubsync export --output csv-sql
  clubsync reconcile --dry-run
  clubsync status
`,
}

var cfgFile string

// Execute runs the CLI
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println("❌", err)
		os.Exit(1)
	}
}

// Register subcommands
func init() {
	cobra.OnInitialize(initConfig, initLogging)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./clubsync.yaml)")

	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(reconcileCmd)
	rootCmd.AddCommand(dropCmd)
	rootCmd.AddCommand(cleanCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(healthCmd)
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigName("clubsync")
		viper.SetConfigType("yaml")
	}

	viper.SetDefault("export.dir", "export")
	viper.SetDefault("export.output", "csv")
	viper.SetDefault("export.mode", "replace")
	viper.SetDefault("log.file", "app.log")
	viper.SetDefault("log.level", "info")
	viper.SetDefault("ortec.base_url", "https://sports.ortec-hosting.com/EIADataFeedApi/")
	viper.SetDefault("coosto.base_url", "https://in.coosto.com/api/1/")

	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Println("Using config file:", viper.ConfigFileUsed())
	}
}

// initLogging routes zerolog to the console and to the log file from the
// config.
func initLogging() {
	level, err := zerolog.ParseLevel(viper.GetString("log.level"))
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	writers := []io.Writer{zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}}
	logFile := viper.GetString("log.file")
	if logFile != "" {
		f, err := os.OpenFile(logFile, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
		if err != nil {
			fmt.Printf("⚠️  Cannot open log file %s: %v\n", logFile, err)
		} else {
			writers = append(writers, f)
		}
	}

	log.Logger = zerolog.New(zerolog.MultiLevelWriter(writers...)).With().Timestamp().Logger()
}
