package updater

import (
	"fmt"
	"io"
)

// Outcome is the terminal state of one row.
type Outcome string

// Row outcomes, in the order rows move through them.
const (
	Updated     Outcome = "updated"
	WouldUpdate Outcome = "would-update"
	Skipped     Outcome = "skipped"
	NotFound    Outcome = "not-found"
	Ambiguous   Outcome = "ambiguous"
	Failed      Outcome = "failed"
)

// RowResult holds the outcome of one row with enough context for an operator
// to locate it in the file and in the CRM.
type RowResult struct {
	Row     int
	Key     string
	Outcome Outcome
	Detail  string
}

// Report accumulates per-row results and the summary counters.
// NotFound and Ambiguous rows count as failed.
type Report struct {
	Updated     int
	WouldUpdate int
	Skipped     int
	Failed      int

	Rows []RowResult
}

// record stores the result, bumps the matching counter, and prints the
// operator line for the row.
func (r *Report) record(out io.Writer, res RowResult) {
	r.Rows = append(r.Rows, res)

	tag := "FAIL"
	switch res.Outcome {
	case Updated:
		r.Updated++
		tag = "OK"
	case WouldUpdate:
		r.WouldUpdate++
		tag = "DRY-RUN"
	case Skipped:
		r.Skipped++
		tag = "SKIP"
	default:
		r.Failed++
	}

	fmt.Fprintf(out, "[%s] row %d (%s): %s\n", tag, res.Row, res.Key, res.Detail)
}

// Summary renders the end-of-run counters.
func (r Report) Summary() string {
	return fmt.Sprintf("updated: %d, would-update: %d, skipped: %d, failed: %d",
		r.Updated, r.WouldUpdate, r.Skipped, r.Failed)
}
