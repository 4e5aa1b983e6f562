package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/clubdata/clubsync/coosto"
	"github.com/clubdata/clubsync/database"
	"github.com/clubdata/clubsync/export"
	"github.com/clubdata/clubsync/ortec"
	"github.com/clubdata/clubsync/reconcile"
	"github.com/clubdata/clubsync/schema"
)

var (
	skipReconcile bool
	skipMeta      bool
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Pull provider data, export it and reconcile the keys",
	Long: `Run the full pipeline: pull the sports datasets, export them to CSV
and/or Postgres, reconcile primary and foreign keys across the loaded
tables, then pull and export the social analytics datasets.

A failing dataset is logged and skipped; the run always completes.

Examples:
  clubsync export                          # CSV only, into ./export
  clubsync export --output csv-sql         # CSV plus database load
  clubsync export --output sql --mode append
`,
	Run: func(cmd *cobra.Command, args []string) {
		if err := runExport(); err != nil {
			fmt.Println("❌ Export failed:", err)
			os.Exit(1)
		}
	},
}

func init() {
	exportCmd.Flags().String("output", "csv", "Output format (csv, sql, csv-sql)")
	exportCmd.Flags().String("mode", "replace", "SQL insert mode (append, replace)")
	exportCmd.Flags().String("dir", "export", "Folder for the CSV results")
	exportCmd.Flags().Int("match", 0, "Match id to pull statistics for")
	exportCmd.Flags().Int("team", 0, "Team id to pull the selection for")
	exportCmd.Flags().BoolVar(&skipReconcile, "skip-reconcile", false, "Do not reconcile keys after loading")
	exportCmd.Flags().BoolVar(&skipMeta, "skip-meta", false, "Do not export the metadata tables")

	viper.BindPFlag("export.output", exportCmd.Flags().Lookup("output"))
	viper.BindPFlag("export.mode", exportCmd.Flags().Lookup("mode"))
	viper.BindPFlag("export.dir", exportCmd.Flags().Lookup("dir"))
	viper.BindPFlag("ortec.match_id", exportCmd.Flags().Lookup("match"))
	viper.BindPFlag("ortec.team_id", exportCmd.Flags().Lookup("team"))
}

func runExport() error {
	output, err := export.ParseOutput(viper.GetString("export.output"))
	if err != nil {
		return err
	}
	mode, err := export.ParseMode(viper.GetString("export.mode"))
	if err != nil {
		return err
	}
	dir := viper.GetString("export.dir")

	ctx := context.Background()

	// The database is needed for SQL output and for reconciliation, even
	// on CSV-only runs.
	var db database.Querier
	needsDB := output != export.OutputCSV || !skipReconcile
	if needsDB {
		pool, err := database.GetPool()
		if err != nil {
			return err
		}
		defer database.ClosePool()
		db = pool
	}

	if err := exportSports(ctx, db, dir, output, mode); err != nil {
		log.Error().Err(err).Str("component", "ortec").Msg("sports export failed")
		fmt.Println("❌ Sports export failed:", err)
	}

	if err := exportSocial(ctx, db, dir, output, mode); err != nil {
		log.Error().Err(err).Str("component", "coosto").Msg("social export failed")
		fmt.Println("❌ Social export failed:", err)
	}

	return nil
}

// exportSports pulls the sports datasets, loads them, reconciles the keys
// and finally loads the lineup join table once its references hold.
func exportSports(ctx context.Context, db database.Querier, dir string, output export.Output, mode export.Mode) error {
	client, err := ortec.NewClient(ctx,
		viper.GetString("ortec.base_url"),
		viper.GetString("ortec.username"),
		viper.GetString("ortec.password"))
	if err != nil {
		return fmt.Errorf("connecting to sports API: %w", err)
	}

	exporter, err := export.New(filepath.Join(dir, "ortec_data"), db, output)
	if err != nil {
		return err
	}

	matchID := viper.GetInt("ortec.match_id")
	teamID := viper.GetInt("ortec.team_id")

	ms, err := client.MatchStatistics(ctx, matchID)
	if err != nil {
		return fmt.Errorf("fetching match %d: %w", matchID, err)
	}

	exportDataset(ctx, exporter, ortec.PlayersStatsDataset(ms, matchID), mode)
	exportDataset(ctx, exporter, ortec.TeamsStatsDataset(ms, matchID), mode)
	// Matches is always replaced: a single-row header appended twice would
	// break its primary key.
	exportDataset(ctx, exporter, ortec.MatchInfoDataset(ms), export.ModeReplace)

	if !skipMeta {
		metadata := []struct {
			kind  string
			table string
		}{
			{"PlayerStatistics", schema.TablePlayerStatsMeta},
			{"TeamStatistics", schema.TableTeamStatsMeta},
			{"positions", schema.TablePositionsMeta},
			{"Venues", schema.TableVenuesMeta},
		}
		for _, m := range metadata {
			objects, err := client.Metadata(ctx, m.kind)
			if err != nil {
				log.Error().Err(err).Str("table", m.table).Msg("metadata fetch failed")
				continue
			}
			exportDataset(ctx, exporter, ortec.MetadataDataset(m.table, objects), mode)
		}
	}

	persons, err := client.Persons(ctx, teamID)
	if err != nil {
		log.Error().Err(err).Str("table", schema.TablePersons).Msg("persons fetch failed")
	} else {
		exportDataset(ctx, exporter, ortec.PersonsDataset(persons, teamID), mode)
	}

	teams, err := client.Teams(ctx)
	if err != nil {
		log.Error().Err(err).Str("table", schema.TableTeams).Msg("teams fetch failed")
	} else {
		exportDataset(ctx, exporter, ortec.TeamsDataset(teams), mode)
	}

	if !skipReconcile && db != nil {
		pool, err := database.GetPool()
		if err != nil {
			return err
		}
		rec := reconcile.New(reconcile.NewStore(pool))

		report, err := rec.Run(ctx, schema.SportsRelations())
		if err != nil {
			return err
		}
		joinReport, err := rec.EnsureJoinTable(ctx, schema.LineupJoinTable())
		if err != nil {
			return err
		}
		report.Outcomes = append(report.Outcomes, joinReport.Outcomes...)
		printReport(report)
	}

	// The lineup lands after reconciliation so the join table, when it was
	// just created, can receive it. Always appended.
	if persons != nil {
		exportDataset(ctx, exporter, ortec.LineupDataset(persons, teamID), export.ModeAppend)
	}

	return nil
}

// exportSocial pulls and exports the five social analytics datasets.
func exportSocial(ctx context.Context, db database.Querier, dir string, output export.Output, mode export.Mode) error {
	client, err := coosto.NewClient(ctx,
		viper.GetString("coosto.base_url"),
		viper.GetString("coosto.username"),
		viper.GetString("coosto.password"))
	if err != nil {
		return fmt.Errorf("connecting to social API: %w", err)
	}

	exporter, err := export.New(filepath.Join(dir, "coosto_data"), db, output)
	if err != nil {
		return err
	}

	queryID := viper.GetInt("coosto.query_id")

	if queries, err := client.SavedQueries(ctx); err != nil {
		log.Error().Err(err).Str("table", schema.TableProjects).Msg("saved queries fetch failed")
	} else {
		exportDataset(ctx, exporter, coosto.ProjectsDataset(queries), mode)
	}

	if topics, err := client.TrendingTopics(ctx, queryID); err != nil {
		log.Error().Err(err).Str("table", schema.TableTrendingTopics).Msg("trending topics fetch failed")
	} else {
		exportDataset(ctx, exporter, coosto.TrendingTopicsDataset(topics), mode)
	}

	if sources, err := client.SourceTypes(ctx, queryID); err != nil {
		log.Error().Err(err).Str("table", schema.TableSources).Msg("source types fetch failed")
	} else {
		exportDataset(ctx, exporter, coosto.SourceTypesDataset(sources), mode)
	}

	// Sentiment is a growing per-day series, always appended.
	if days, err := client.SentimentDays(ctx, queryID); err != nil {
		log.Error().Err(err).Str("table", schema.TableSentiment).Msg("sentiment fetch failed")
	} else {
		exportDataset(ctx, exporter, coosto.SentimentDataset(days), export.ModeAppend)
	}

	if authors, err := client.Authors(ctx, queryID); err != nil {
		log.Error().Err(err).Str("table", schema.TableAuthors).Msg("authors fetch failed")
	} else {
		exportDataset(ctx, exporter, coosto.AuthorsDataset(authors), mode)
	}

	return nil
}

// exportDataset exports one dataset, logging instead of failing: one bad
// table never stops the rest of the run.
func exportDataset(ctx context.Context, exporter *export.Exporter, ds export.Dataset, mode export.Mode) {
	if err := exporter.Export(ctx, ds, mode); err != nil {
		log.Error().Err(err).Str("table", ds.Table).Msg("export failed")
		fmt.Printf("❌ Table <%s> export failed: %v\n", ds.Table, err)
		return
	}
	fmt.Printf("✅ Table <%s> exported\n", ds.Table)
}
