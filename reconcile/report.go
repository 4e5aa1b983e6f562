package reconcile

// Status is how one reconciliation unit ended.
type Status string

const (
	StatusApplied Status = "applied"
	StatusPlanned Status = "planned" // dry run, nothing executed
	StatusSkipped Status = "skipped" // idempotence: already in place or guard not met
	StatusFailed  Status = "failed"
)

// ErrorKind classifies a failed unit.
type ErrorKind string

const (
	KindNone         ErrorKind = ""
	KindCatalogQuery ErrorKind = "catalog_query" // introspection of existing constraints failed
	KindDDL          ErrorKind = "ddl"           // ALTER/CREATE/DROP failed
)

// Outcome is the result of one reconciliation unit: a primary key on one
// table, a single foreign key relation, one dropped constraint, or a join
// table creation.
type Outcome struct {
	Action     string // "primary key", "foreign key", "drop constraint", "join table"
	Table      string
	Column     string
	Status     Status
	Kind       ErrorKind
	Reason     string
	Err        error
	Statements []string // DDL issued (or planned) for this unit
}

// Report aggregates the outcome of every unit in a run. The run itself
// never aborts; the report says which units landed and which did not.
type Report struct {
	Outcomes []Outcome
}

func (r *Report) add(o Outcome) {
	r.Outcomes = append(r.Outcomes, o)
}

// Failed returns the units that ended in an error.
func (r *Report) Failed() []Outcome {
	return r.withStatus(StatusFailed)
}

// Applied returns the units that issued DDL successfully.
func (r *Report) Applied() []Outcome {
	return r.withStatus(StatusApplied)
}

// Skipped returns the units that were already in place or guarded off.
func (r *Report) Skipped() []Outcome {
	return r.withStatus(StatusSkipped)
}

func (r *Report) withStatus(s Status) []Outcome {
	var out []Outcome
	for _, o := range r.Outcomes {
		if o.Status == s {
			out = append(out, o)
		}
	}
	return out
}

// StatementCount is the number of DDL statements issued (or planned).
func (r *Report) StatementCount() int {
	n := 0
	for _, o := range r.Outcomes {
		if o.Status == StatusApplied || o.Status == StatusPlanned {
			n += len(o.Statements)
		}
	}
	return n
}
