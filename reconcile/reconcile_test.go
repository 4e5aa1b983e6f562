package reconcile

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clubdata/clubsync/catalog"
	"github.com/clubdata/clubsync/schema"
)

// fakeStore simulates the constraint catalog in memory. Applied DDL is
// recorded and, for ALTER TABLE ... ADD statements, reflected back into the
// catalog so a second run sees the constraints of the first.
type fakeStore struct {
	pks         map[string][]string
	fks         map[string][]string
	tables      map[string]bool
	constraints []catalog.Constraint
	executed    []string

	catalogErr map[string]error
	ddlErr     map[string]error
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		pks:        map[string][]string{},
		fks:        map[string][]string{},
		tables:     map[string]bool{},
		catalogErr: map[string]error{},
		ddlErr:     map[string]error{},
	}
}

func (s *fakeStore) PrimaryKeyColumns(_ context.Context, table string) ([]string, error) {
	if err := s.catalogErr[table]; err != nil {
		return nil, err
	}
	return s.pks[table], nil
}

func (s *fakeStore) ForeignKeyColumns(_ context.Context, table string) ([]string, error) {
	if err := s.catalogErr[table]; err != nil {
		return nil, err
	}
	return s.fks[table], nil
}

func (s *fakeStore) TableExists(_ context.Context, table string) (bool, error) {
	if err := s.catalogErr[table]; err != nil {
		return false, err
	}
	return s.tables[table], nil
}

func (s *fakeStore) Constraints(_ context.Context, tableNames, constraintTypes []string) ([]catalog.Constraint, error) {
	names := map[string]bool{}
	for _, n := range tableNames {
		names[n] = true
	}
	types := map[string]bool{}
	for _, t := range constraintTypes {
		types[t] = true
	}
	var out []catalog.Constraint
	for _, con := range s.constraints {
		if names[con.TableName] && types[con.ConstraintType] {
			out = append(out, con)
		}
	}
	return out, nil
}

func (s *fakeStore) ConstrainedColumns(_ context.Context, tableNames []string) (map[string]bool, error) {
	out := map[string]bool{}
	for _, name := range tableNames {
		for _, c := range s.pks[name] {
			out[c] = true
		}
		for _, c := range s.fks[name] {
			out[c] = true
		}
	}
	return out, nil
}

func (s *fakeStore) ExecDDL(_ context.Context, statements ...string) error {
	for table, err := range s.ddlErr {
		for _, stmt := range statements {
			if strings.Contains(stmt, `"`+table+`"`) {
				return err
			}
		}
	}
	s.executed = append(s.executed, statements...)
	for _, stmt := range statements {
		s.reflect(stmt)
	}
	return nil
}

// reflect keeps the fake catalog in sync with successfully applied DDL.
func (s *fakeStore) reflect(stmt string) {
	table := between(stmt, `ALTER TABLE "`, `"`)
	switch {
	case strings.Contains(stmt, "ADD PRIMARY KEY"):
		col := between(stmt, `ADD PRIMARY KEY ("`, `"`)
		s.pks[table] = append(s.pks[table], col)
		s.constraints = append(s.constraints, catalog.Constraint{
			TableName: table, ConstraintName: table + "_pkey", ConstraintType: "PRIMARY KEY",
		})
	case strings.Contains(stmt, "FOREIGN KEY"):
		col := between(stmt, `FOREIGN KEY ("`, `"`)
		name := between(stmt, `ADD CONSTRAINT "`, `"`)
		s.fks[table] = append(s.fks[table], col)
		s.constraints = append(s.constraints, catalog.Constraint{
			TableName: table, ConstraintName: name, ConstraintType: "FOREIGN KEY",
		})
	case strings.HasPrefix(stmt, `CREATE TABLE "`):
		s.tables[between(stmt, `CREATE TABLE "`, `"`)] = true
	case strings.Contains(stmt, "DROP CONSTRAINT"):
		name := between(stmt, `DROP CONSTRAINT "`, `"`)
		kept := s.constraints[:0]
		for _, con := range s.constraints {
			if con.ConstraintName != name {
				kept = append(kept, con)
			}
		}
		s.constraints = kept
		if strings.HasSuffix(name, "_pkey") {
			delete(s.pks, table)
		} else {
			delete(s.fks, table)
		}
	}
}

func between(s, after, until string) string {
	i := strings.Index(s, after)
	if i < 0 {
		return ""
	}
	rest := s[i+len(after):]
	j := strings.Index(rest, until)
	if j < 0 {
		return rest
	}
	return rest[:j]
}

func testSpecs() []schema.TableSpec {
	return []schema.TableSpec{
		{Name: "Teams", PrimaryKey: "Id"},
		{Name: "Matches", PrimaryKey: "MatchID", ForeignKeys: []schema.ForeignKeySpec{
			{Column: "HomeTeamID", ReferencesTable: "Teams", ReferencesColumn: "Id"},
			{Column: "AwayTeamID", ReferencesTable: "Teams", ReferencesColumn: "Id"},
		}},
		{Name: "PlayersStats", ForeignKeys: []schema.ForeignKeySpec{
			{Column: "MatchID", ReferencesTable: "Matches", ReferencesColumn: "MatchID"},
		}},
	}
}

func TestRun_PrimaryKeysBeforeForeignKeys(t *testing.T) {
	store := newFakeStore()
	report, err := New(store).Run(context.Background(), testSpecs())
	require.NoError(t, err)
	require.Empty(t, report.Failed())

	lastPK, firstFK := -1, len(store.executed)
	for i, stmt := range store.executed {
		if strings.Contains(stmt, "ADD PRIMARY KEY") && i > lastPK {
			lastPK = i
		}
		if strings.Contains(stmt, "FOREIGN KEY") && i < firstFK {
			firstFK = i
		}
	}
	require.GreaterOrEqual(t, lastPK, 0, "expected primary key DDL")
	require.Less(t, firstFK, len(store.executed), "expected foreign key DDL")
	assert.Less(t, lastPK, firstFK, "all primary keys must be applied before any foreign key")
}

func TestRun_SecondRunIssuesNoDDL(t *testing.T) {
	store := newFakeStore()
	rec := New(store)

	first, err := rec.Run(context.Background(), testSpecs())
	require.NoError(t, err)
	assert.NotEmpty(t, first.Applied())
	applied := len(store.executed)

	second, err := rec.Run(context.Background(), testSpecs())
	require.NoError(t, err)
	assert.Empty(t, second.Applied())
	assert.Empty(t, second.Failed())
	assert.Len(t, second.Skipped(), len(second.Outcomes))
	assert.Len(t, store.executed, applied, "re-run must not issue DDL")
}

func TestRun_TableWithoutPrimaryKeyIsSkipped(t *testing.T) {
	store := newFakeStore()
	report, err := New(store).Run(context.Background(), testSpecs())
	require.NoError(t, err)

	var found bool
	for _, out := range report.Outcomes {
		if out.Action == "primary key" && out.Table == "PlayersStats" {
			found = true
			assert.Equal(t, StatusSkipped, out.Status)
			assert.Equal(t, "no primary key declared", out.Reason)
		}
	}
	assert.True(t, found)
	for _, stmt := range store.executed {
		assert.NotContains(t, stmt, `"PlayersStats" ADD PRIMARY KEY`)
	}
}

func TestRun_DDLFailureDoesNotAbortTheRest(t *testing.T) {
	store := newFakeStore()
	store.ddlErr["Teams"] = errors.New("type coercion failed")

	report, err := New(store).Run(context.Background(), testSpecs())
	require.NoError(t, err, "a failing unit must not fail the run")

	failed := report.Failed()
	require.NotEmpty(t, failed)
	for _, out := range failed {
		assert.Equal(t, KindDDL, out.Kind)
	}
	// Matches still got its primary key.
	assert.Contains(t, store.pks["Matches"], "MatchID")
}

func TestRun_CatalogFailureIsRecordedPerTable(t *testing.T) {
	store := newFakeStore()
	store.catalogErr["Teams"] = errors.New("connection reset")

	report, err := New(store).Run(context.Background(), testSpecs())
	require.NoError(t, err)

	failed := report.Failed()
	require.NotEmpty(t, failed)
	for _, out := range failed {
		assert.Equal(t, "Teams", out.Table)
		assert.Equal(t, KindCatalogQuery, out.Kind)
	}
	assert.Contains(t, store.pks["Matches"], "MatchID")
}

func TestRun_RejectsInvalidSpecs(t *testing.T) {
	specs := []schema.TableSpec{{Name: `Teams"; DROP TABLE x; --`, PrimaryKey: "Id"}}
	_, err := New(newFakeStore()).Run(context.Background(), specs)
	assert.Error(t, err)
}

func TestRun_DryRunExecutesNothing(t *testing.T) {
	store := newFakeStore()
	report, err := New(store, WithDryRun()).Run(context.Background(), testSpecs())
	require.NoError(t, err)

	assert.Empty(t, store.executed)
	var planned int
	for _, out := range report.Outcomes {
		if out.Status == StatusPlanned {
			planned++
			assert.NotEmpty(t, out.Statements)
		}
	}
	assert.NotZero(t, planned)
	assert.NotZero(t, report.StatementCount())
}

func TestRun_StrictForeignKeysValidateExistingRows(t *testing.T) {
	tolerant := newFakeStore()
	_, err := New(tolerant).Run(context.Background(), testSpecs())
	require.NoError(t, err)

	strict := newFakeStore()
	_, err = New(strict, WithStrictForeignKeys()).Run(context.Background(), testSpecs())
	require.NoError(t, err)

	assert.True(t, anyContains(tolerant.executed, "NOT VALID"))
	assert.False(t, anyContains(strict.executed, "NOT VALID"))
}

func anyContains(statements []string, substr string) bool {
	for _, stmt := range statements {
		if strings.Contains(stmt, substr) {
			return true
		}
	}
	return false
}

func TestDropAllConstraints_ForeignKeysDroppedFirst(t *testing.T) {
	store := newFakeStore()
	_, err := New(store).Run(context.Background(), testSpecs())
	require.NoError(t, err)
	store.executed = nil

	report, err := New(store).DropAllConstraints(context.Background(), []string{"Teams", "Matches", "PlayersStats"})
	require.NoError(t, err)
	require.Empty(t, report.Failed())

	var sawPK bool
	for _, stmt := range store.executed {
		if strings.Contains(stmt, "_pkey") {
			sawPK = true
		}
		if strings.Contains(stmt, `"fk_`) {
			assert.False(t, sawPK, "foreign keys must be dropped before primary keys")
		}
	}
	assert.True(t, sawPK)
	assert.Empty(t, store.constraints)
}

func TestDropThenRunReappliesEverything(t *testing.T) {
	store := newFakeStore()
	rec := New(store)
	ctx := context.Background()

	first, err := rec.Run(ctx, testSpecs())
	require.NoError(t, err)

	_, err = rec.DropAllConstraints(ctx, schema.TableNames(testSpecs()))
	require.NoError(t, err)

	again, err := rec.Run(ctx, testSpecs())
	require.NoError(t, err)
	assert.Equal(t, len(first.Applied()), len(again.Applied()))
	assert.Empty(t, again.Failed())
}

func TestDropAllConstraints_RejectsInvalidTableName(t *testing.T) {
	_, err := New(newFakeStore()).DropAllConstraints(context.Background(), []string{"ok", "no;good"})
	assert.Error(t, err)
}

func joinSpec() schema.JoinTableSpec {
	return schema.JoinTableSpec{
		Name:  "TeamsLineUp",
		Left:  schema.JoinSide{Table: "Teams", Column: "TeamID", RefColumn: "Id", RequiredKeys: []string{"Id"}},
		Right: schema.JoinSide{Table: "Persons", Column: "PersonID", RefColumn: "PersonID", RequiredKeys: []string{"PersonID"}},
	}
}

func TestEnsureJoinTable(t *testing.T) {
	tests := []struct {
		name       string
		setup      func(*fakeStore)
		wantStatus Status
		wantReason string
	}{
		{
			name: "already exists",
			setup: func(s *fakeStore) {
				s.tables["TeamsLineUp"] = true
			},
			wantStatus: StatusSkipped,
			wantReason: "join table already exists",
		},
		{
			name: "referenced table missing",
			setup: func(s *fakeStore) {
				s.tables["Teams"] = true
			},
			wantStatus: StatusSkipped,
			wantReason: "referenced table Persons does not exist",
		},
		{
			name: "required key not constrained",
			setup: func(s *fakeStore) {
				s.tables["Teams"] = true
				s.tables["Persons"] = true
				s.pks["Teams"] = []string{"Id"}
			},
			wantStatus: StatusSkipped,
			wantReason: "required key Persons.PersonID not yet constrained",
		},
		{
			name: "all guards met",
			setup: func(s *fakeStore) {
				s.tables["Teams"] = true
				s.tables["Persons"] = true
				s.pks["Teams"] = []string{"Id"}
				s.pks["Persons"] = []string{"PersonID"}
			},
			wantStatus: StatusApplied,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newFakeStore()
			tt.setup(store)

			report, err := New(store).EnsureJoinTable(context.Background(), joinSpec())
			require.NoError(t, err)
			require.Len(t, report.Outcomes, 1)

			out := report.Outcomes[0]
			assert.Equal(t, tt.wantStatus, out.Status)
			assert.Equal(t, tt.wantReason, out.Reason)
			if tt.wantStatus == StatusApplied {
				assert.True(t, store.tables["TeamsLineUp"])
				require.Len(t, out.Statements, 1)
				assert.Contains(t, out.Statements[0], `CREATE TABLE "TeamsLineUp"`)
				assert.Contains(t, out.Statements[0], `REFERENCES "Teams" ("Id")`)
				assert.Contains(t, out.Statements[0], `REFERENCES "Persons" ("PersonID")`)
			}
		})
	}
}

func TestEnsureJoinTable_SecondCallSkips(t *testing.T) {
	store := newFakeStore()
	store.tables["Teams"] = true
	store.tables["Persons"] = true
	store.pks["Teams"] = []string{"Id"}
	store.pks["Persons"] = []string{"PersonID"}
	rec := New(store)
	ctx := context.Background()

	first, err := rec.EnsureJoinTable(ctx, joinSpec())
	require.NoError(t, err)
	assert.Equal(t, StatusApplied, first.Outcomes[0].Status)

	second, err := rec.EnsureJoinTable(ctx, joinSpec())
	require.NoError(t, err)
	assert.Equal(t, StatusSkipped, second.Outcomes[0].Status)
}

func TestCleanTables(t *testing.T) {
	store := newFakeStore()
	rec := New(store)
	ctx := context.Background()

	_, err := rec.CleanTables(ctx, []string{"Teams", "Persons"}, false)
	require.NoError(t, err)
	assert.Contains(t, store.executed, `DROP TABLE IF EXISTS "Teams";`)

	store.executed = nil
	_, err = rec.CleanTables(ctx, []string{"Teams"}, true)
	require.NoError(t, err)
	assert.Equal(t, []string{`DELETE FROM "Teams";`}, store.executed)
}

func TestSportsRelationsAreValid(t *testing.T) {
	assert.NoError(t, schema.Validate(schema.SportsRelations()))
}
