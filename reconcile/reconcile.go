// Package reconcile brings the actual constraint state of independently
// loaded dataset tables in line with their declared key layout: primary
// keys first, then foreign keys, each unit checked against the constraint
// catalog before any DDL is issued so re-running is a no-op.
package reconcile

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/clubdata/clubsync/schema"
)

// Reconciler applies declared table specs to a database. A failure on one
// table or relation never aborts the others; every unit lands in the Report.
type Reconciler struct {
	store      Store
	validateFK bool
	dryRun     bool
}

type Option func(*Reconciler)

// WithStrictForeignKeys validates existing rows when foreign keys are
// added. The default is tolerant: constraints are created NOT VALID so
// orphan rows from earlier partial loads do not fail the run.
func WithStrictForeignKeys() Option {
	return func(r *Reconciler) { r.validateFK = true }
}

// WithDryRun records the DDL every unit would issue without executing any.
func WithDryRun() Option {
	return func(r *Reconciler) { r.dryRun = true }
}

func New(store Store, opts ...Option) *Reconciler {
	r := &Reconciler{store: store}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run reconciles the full spec list: primary keys across all tables first,
// foreign keys only after every primary key unit has been processed.
// Foreign keys reference primary keys on other tables, so the two passes
// must not interleave.
func (r *Reconciler) Run(ctx context.Context, specs []schema.TableSpec) (*Report, error) {
	if err := schema.Validate(specs); err != nil {
		return nil, fmt.Errorf("invalid table specs: %w", err)
	}

	report := &Report{}
	r.applyPrimaryKeys(ctx, specs, report)
	r.applyForeignKeys(ctx, specs, report)
	return report, nil
}

// ApplyPrimaryKeys runs only the primary key pass.
func (r *Reconciler) ApplyPrimaryKeys(ctx context.Context, specs []schema.TableSpec) (*Report, error) {
	if err := schema.Validate(specs); err != nil {
		return nil, fmt.Errorf("invalid table specs: %w", err)
	}

	report := &Report{}
	r.applyPrimaryKeys(ctx, specs, report)
	return report, nil
}

// ApplyForeignKeys runs only the foreign key pass. Callers are expected to
// have applied primary keys first; Run does both in order.
func (r *Reconciler) ApplyForeignKeys(ctx context.Context, specs []schema.TableSpec) (*Report, error) {
	if err := schema.Validate(specs); err != nil {
		return nil, fmt.Errorf("invalid table specs: %w", err)
	}

	report := &Report{}
	r.applyForeignKeys(ctx, specs, report)
	return report, nil
}

func (r *Reconciler) applyPrimaryKeys(ctx context.Context, specs []schema.TableSpec, report *Report) {
	for _, spec := range specs {
		out := Outcome{Action: "primary key", Table: spec.Name, Column: spec.PrimaryKey}

		if spec.PrimaryKey == "" {
			out.Status = StatusSkipped
			out.Reason = "no primary key declared"
			report.add(out)
			continue
		}

		existing, err := r.store.PrimaryKeyColumns(ctx, spec.Name)
		if err != nil {
			out.Status = StatusFailed
			out.Kind = KindCatalogQuery
			out.Err = err
			report.add(out)
			log.Warn().Err(err).Str("table", spec.Name).Msg("primary key catalog lookup failed")
			continue
		}

		if len(existing) > 0 {
			out.Status = StatusSkipped
			out.Reason = "primary key already present"
			report.add(out)
			continue
		}

		out.Statements = []string{
			alterColumnType(spec.Name, spec.PrimaryKey),
			setNotNull(spec.Name, spec.PrimaryKey),
			addPrimaryKey(spec.Name, spec.PrimaryKey),
		}
		r.execute(ctx, &out)
		report.add(out)
	}
}

func (r *Reconciler) applyForeignKeys(ctx context.Context, specs []schema.TableSpec, report *Report) {
	for _, spec := range specs {
		if len(spec.ForeignKeys) == 0 {
			continue
		}

		// One catalog lookup per table, shared by its relations.
		existing, err := r.store.ForeignKeyColumns(ctx, spec.Name)
		if err != nil {
			report.add(Outcome{
				Action: "foreign key",
				Table:  spec.Name,
				Status: StatusFailed,
				Kind:   KindCatalogQuery,
				Err:    err,
			})
			log.Warn().Err(err).Str("table", spec.Name).Msg("foreign key catalog lookup failed")
			continue
		}

		constrained := map[string]bool{}
		for _, column := range existing {
			constrained[column] = true
		}

		for _, fk := range spec.ForeignKeys {
			out := Outcome{Action: "foreign key", Table: spec.Name, Column: fk.Column}

			if constrained[fk.Column] {
				out.Status = StatusSkipped
				out.Reason = "foreign key already present"
				report.add(out)
				continue
			}

			// Key columns on both sides must share a type.
			out.Statements = []string{
				alterColumnType(spec.Name, fk.Column),
				addForeignKey(spec.Name, fk, r.validateFK),
			}
			r.execute(ctx, &out)
			report.add(out)
		}
	}
}

// DropAllConstraints is the reverse operation: every foreign key constraint
// owned by a known table is dropped first, then every primary/unique key
// constraint. Used for cleanup between runs.
func (r *Reconciler) DropAllConstraints(ctx context.Context, tableNames []string) (*Report, error) {
	for _, name := range tableNames {
		if !schema.ValidIdentifier(name) {
			return nil, fmt.Errorf("invalid table name: %q", name)
		}
	}

	report := &Report{}
	r.dropConstraintsOfType(ctx, tableNames, []string{"FOREIGN KEY"}, report)
	r.dropConstraintsOfType(ctx, tableNames, []string{"PRIMARY KEY", "UNIQUE"}, report)
	return report, nil
}

func (r *Reconciler) dropConstraintsOfType(ctx context.Context, tableNames, constraintTypes []string, report *Report) {
	constraints, err := r.store.Constraints(ctx, tableNames, constraintTypes)
	if err != nil {
		report.add(Outcome{
			Action: "drop constraint",
			Status: StatusFailed,
			Kind:   KindCatalogQuery,
			Err:    err,
		})
		log.Warn().Err(err).Strs("types", constraintTypes).Msg("constraint catalog lookup failed")
		return
	}

	for _, con := range constraints {
		out := Outcome{
			Action:     "drop constraint",
			Table:      con.TableName,
			Column:     con.ConstraintName,
			Statements: []string{dropConstraint(con.TableName, con.ConstraintName)},
		}
		r.execute(ctx, &out)
		report.add(out)
	}
}

// EnsureJoinTable creates the declared many-to-many table, but only when
// both referenced tables exist, the join table does not, and the key
// columns it relies on are already constrained. Loader order varies; the
// guards keep the table from being created with dangling references.
func (r *Reconciler) EnsureJoinTable(ctx context.Context, join schema.JoinTableSpec) (*Report, error) {
	for _, name := range []string{join.Name, join.Left.Table, join.Left.Column, join.Left.RefColumn,
		join.Right.Table, join.Right.Column, join.Right.RefColumn} {
		if !schema.ValidIdentifier(name) {
			return nil, fmt.Errorf("invalid identifier: %q", name)
		}
	}

	report := &Report{}
	out := Outcome{Action: "join table", Table: join.Name}

	guard, err := r.joinTableGuard(ctx, join, &out)
	if err != nil {
		out.Status = StatusFailed
		out.Kind = KindCatalogQuery
		out.Err = err
		report.add(out)
		log.Warn().Err(err).Str("table", join.Name).Msg("join table guard check failed")
		return report, nil
	}
	if !guard {
		out.Status = StatusSkipped
		report.add(out)
		return report, nil
	}

	out.Statements = []string{createJoinTable(join)}
	r.execute(ctx, &out)
	report.add(out)
	return report, nil
}

// joinTableGuard checks the preconditions for creating the join table and
// records the first unmet one as the outcome reason.
func (r *Reconciler) joinTableGuard(ctx context.Context, join schema.JoinTableSpec, out *Outcome) (bool, error) {
	exists, err := r.store.TableExists(ctx, join.Name)
	if err != nil {
		return false, err
	}
	if exists {
		out.Reason = "join table already exists"
		return false, nil
	}

	for _, side := range []schema.JoinSide{join.Left, join.Right} {
		exists, err := r.store.TableExists(ctx, side.Table)
		if err != nil {
			return false, err
		}
		if !exists {
			out.Reason = fmt.Sprintf("referenced table %s does not exist", side.Table)
			return false, nil
		}
	}

	constrained, err := r.store.ConstrainedColumns(ctx, []string{join.Left.Table, join.Right.Table})
	if err != nil {
		return false, err
	}
	for _, side := range []schema.JoinSide{join.Left, join.Right} {
		for _, key := range side.RequiredKeys {
			if !constrained[key] {
				out.Reason = fmt.Sprintf("required key %s.%s not yet constrained", side.Table, key)
				return false, nil
			}
		}
	}

	return true, nil
}

// CleanTables drops (or empties, with keepTables) every given table,
// continuing past per-table failures. Constraints should be dropped first.
func (r *Reconciler) CleanTables(ctx context.Context, tableNames []string, keepTables bool) (*Report, error) {
	for _, name := range tableNames {
		if !schema.ValidIdentifier(name) {
			return nil, fmt.Errorf("invalid table name: %q", name)
		}
	}

	report := &Report{}
	for _, name := range tableNames {
		out := Outcome{Action: "clean table", Table: name}
		if keepTables {
			out.Statements = []string{deleteRows(name)}
		} else {
			out.Statements = []string{dropTable(name)}
		}
		r.execute(ctx, &out)
		report.add(out)
	}
	return report, nil
}

// execute runs the outcome's statements, or records them as planned in dry
// run mode.
func (r *Reconciler) execute(ctx context.Context, out *Outcome) {
	if r.dryRun {
		out.Status = StatusPlanned
		return
	}

	if err := r.store.ExecDDL(ctx, out.Statements...); err != nil {
		out.Status = StatusFailed
		out.Kind = KindDDL
		out.Err = err
		log.Warn().Err(err).Str("table", out.Table).Str("column", out.Column).Str("action", out.Action).
			Msg("DDL failed")
		return
	}

	out.Status = StatusApplied
	log.Info().Str("table", out.Table).Str("column", out.Column).Str("action", out.Action).
		Msg("constraint reconciled")
}
