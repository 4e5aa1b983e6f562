// Package export writes flattened datasets to CSV files and/or Postgres
// tables. Tables are created on first load with loosely inferred column
// types; the reconcile package tightens key columns afterwards.
package export

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/clubdata/clubsync/database"
)

// Output selects where a dataset goes.
type Output string

const (
	OutputCSV    Output = "csv"
	OutputSQL    Output = "sql"
	OutputCSVSQL Output = "csv-sql"
)

// ParseOutput validates an output format flag.
func ParseOutput(s string) (Output, error) {
	switch Output(s) {
	case OutputCSV, OutputSQL, OutputCSVSQL:
		return Output(s), nil
	}
	return "", fmt.Errorf("invalid output format %q (want csv, sql or csv-sql)", s)
}

// Mode selects how rows land in an existing table.
type Mode string

const (
	// ModeAppend adds rows to whatever the table already holds.
	ModeAppend Mode = "append"
	// ModeReplace drops and recreates the table before loading.
	ModeReplace Mode = "replace"
)

// ParseMode validates an insert mode flag.
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case ModeAppend, ModeReplace:
		return Mode(s), nil
	}
	return "", fmt.Errorf("invalid SQL mode %q (want append or replace)", s)
}

// Dataset is one flattened table worth of data.
type Dataset struct {
	Table   string
	Columns []string
	Rows    [][]any
}

// Exporter writes datasets to a directory and/or a database, depending on
// the configured output format.
type Exporter struct {
	dir    string
	db     database.Querier
	output Output
}

// New builds an exporter. db may be nil when the output format is csv only.
func New(dir string, db database.Querier, output Output) (*Exporter, error) {
	if output != OutputCSV && db == nil {
		return nil, fmt.Errorf("output %q needs a database connection", output)
	}
	return &Exporter{dir: dir, db: db, output: output}, nil
}

// Export writes one dataset according to the exporter's output format.
func (e *Exporter) Export(ctx context.Context, ds Dataset, mode Mode) error {
	if len(ds.Columns) == 0 {
		return fmt.Errorf("dataset %s has no columns", ds.Table)
	}
	for _, row := range ds.Rows {
		if len(row) != len(ds.Columns) {
			return fmt.Errorf("dataset %s: row width %d does not match %d columns",
				ds.Table, len(row), len(ds.Columns))
		}
	}

	if e.output == OutputCSV || e.output == OutputCSVSQL {
		if err := e.writeCSV(ds); err != nil {
			return fmt.Errorf("exporting %s to csv: %w", ds.Table, err)
		}
	}
	if e.output == OutputSQL || e.output == OutputCSVSQL {
		if err := e.writeSQL(ctx, ds, mode); err != nil {
			return fmt.Errorf("exporting %s to sql: %w", ds.Table, err)
		}
	}

	log.Info().Str("table", ds.Table).Str("output", string(e.output)).Int("rows", len(ds.Rows)).
		Msg("dataset exported")
	return nil
}
