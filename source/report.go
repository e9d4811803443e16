package source

// Skip records why a source row did not become a record.
type Skip struct {
	Ref    string // Row or entry reference, e.g. a link or row number
	Reason string
}

// Outcome is the result of mapping one source row: either a record or a skip.
type Outcome[T any] struct {
	record T
	skip   *Skip
}

// Parsed wraps a successfully mapped record.
func Parsed[T any](record T) Outcome[T] {
	return Outcome[T]{record: record}
}

// Skipped describes a row that could not be mapped.
func Skipped[T any](ref, reason string) Outcome[T] {
	return Outcome[T]{skip: &Skip{Ref: ref, Reason: reason}}
}

// Record returns the mapped record and whether there is one.
func (o Outcome[T]) Record() (T, bool) {
	return o.record, o.skip == nil
}

// Report collects the outcomes of one fetch. Skipped rows are counted, never dropped silently.
type Report[T any] struct {
	Records []T
	Skipped []Skip
}

// Add appends an outcome to the report.
func (r *Report[T]) Add(o Outcome[T]) {
	if o.skip != nil {
		r.Skipped = append(r.Skipped, *o.skip)
		return
	}
	r.Records = append(r.Records, o.record)
}

// Empty reports whether no record was produced.
func (r Report[T]) Empty() bool {
	return len(r.Records) == 0
}
