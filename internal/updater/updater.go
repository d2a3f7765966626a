// Package updater implements the sequential update driver. It walks the file
// rows in order, locates the target entity by the search field, and applies a
// normalized single-entity update per row, isolating failures to their row.
package updater

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"strings"

	"github.com/uspacy-tools/uspacy-update/internal/normalize"
	"github.com/uspacy-tools/uspacy-update/internal/uspacy"
)

type apiClient interface {
	FetchFields(ctx context.Context) (map[string]uspacy.FieldInfo, error)
	SearchEntities(ctx context.Context, field, value string) ([]uspacy.Entity, error)
	PatchEntity(ctx context.Context, id string, payload map[string]string) error
}

// Driver processes rows strictly one at a time against the remote API.
type Driver struct {
	api    apiClient
	dryRun bool

	out io.Writer
	log *slog.Logger
}

// New returns a new Driver writing per-row operator output to out.
func New(l *slog.Logger, api apiClient, out io.Writer, dryRun bool) Driver {
	return Driver{
		api:    api,
		dryRun: dryRun,
		out:    out,
		log:    l,
	}
}

// Run fetches the field schema once, then processes every row in file order.
// Row-scoped problems are recorded in the report and never abort the run; only
// a schema fetch failure is fatal. A canceled context stops the loop and the
// partial report is still returned.
func (d Driver) Run(ctx context.Context, header []string, rows [][]string, searchField string) (Report, error) {
	report := Report{}

	fields, err := d.api.FetchFields(ctx)
	if err != nil {
		return report, fmt.Errorf("schema fetch failed: %w", err)
	}

	for i, row := range rows {
		if ctx.Err() != nil {
			d.log.Warn("Run interrupted, remaining rows were not processed", "processed", i, "remaining", len(rows)-i)
			break
		}

		// Header is file line 1, so the first data row is line 2.
		report.record(d.out, d.processRow(ctx, i+2, header, row, searchField, fields))
	}

	return report, nil
}

func (d Driver) processRow(ctx context.Context, num int, header, row []string, searchField string, fields map[string]uspacy.FieldInfo) RowResult {
	res := RowResult{Row: num, Key: normalize.SearchKey(header, row, searchField)}

	if res.Key == "" {
		res.Outcome = Skipped
		res.Detail = "empty search value"
		return res
	}

	payload, err := normalize.Payload(header, row, searchField, fields)
	var unknownErr *normalize.UnknownValueError
	if errors.As(err, &unknownErr) {
		res.Outcome = Skipped
		res.Detail = unknownErr.Error()
		return res
	}
	if err != nil {
		res.Outcome = Skipped
		res.Detail = err.Error()
		return res
	}
	if len(payload) == 0 {
		res.Outcome = Skipped
		res.Detail = "nothing to update"
		return res
	}

	matches, err := d.api.SearchEntities(ctx, searchField, res.Key)
	if err != nil {
		res.Outcome = Failed
		res.Detail = err.Error()
		return res
	}

	switch {
	case len(matches) == 0:
		res.Outcome = NotFound
		res.Detail = fmt.Sprintf("no entity matches %s=%s", searchField, res.Key)
		return res
	case len(matches) > 1:
		res.Outcome = Ambiguous
		res.Detail = fmt.Sprintf("%d entities match %s=%s", len(matches), searchField, res.Key)
		return res
	}

	id := matches[0].ID()
	if id == "" {
		res.Outcome = Failed
		res.Detail = fmt.Sprintf("matched entity for %s=%s has no id", searchField, res.Key)
		return res
	}

	if d.dryRun {
		res.Outcome = WouldUpdate
		res.Detail = fmt.Sprintf("entity %s: %s", id, formatPayload(payload))
		return res
	}

	if err := d.api.PatchEntity(ctx, id, payload); err != nil {
		res.Outcome = Failed
		res.Detail = err.Error()
		return res
	}

	res.Outcome = Updated
	res.Detail = fmt.Sprintf("entity %s", id)
	return res
}

// formatPayload renders the payload with stable field ordering for logs.
func formatPayload(payload map[string]string) string {
	keys := make([]string, 0, len(payload))
	for k := range payload {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	pairs := make([]string, 0, len(keys))
	for _, k := range keys {
		pairs = append(pairs, fmt.Sprintf("%s=%q", k, payload[k]))
	}
	return strings.Join(pairs, " ")
}
