package app

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/celerix-dev/auditoria/internal/importer"
	"github.com/celerix-dev/auditoria/internal/report"
	"github.com/celerix-dev/auditoria/internal/rowstore"
	"github.com/celerix-dev/auditoria/internal/search"
	"github.com/celerix-dev/auditoria/pkg/schema"
)

// ListedRow is a row together with the ref that addresses it for edit and delete.
type ListedRow struct {
	Ref string `json:"ref"`
	schema.AuditRow
}

// View is what the table shows: the filtered rows and their summary.
type View struct {
	Location string           `json:"location"`
	Mode     string           `json:"mode"`
	Total    int              `json:"total"`
	Rows     []ListedRow      `json:"rows"`
	Filters  search.FilterSet `json:"filters"`
	Summary  report.Summary   `json:"summary"`
}

func storeErr(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, ErrStoreFailed, err)
}

// View lists location, then narrows by q and fs. Refs are positions in the
// unfiltered list (local) or remote ids, so they stay valid after filtering.
func (a *App) View(ctx context.Context, location string, q search.Query, fs search.FilterSet) (View, error) {
	v := View{Location: location, Mode: a.rows.Mode(), Rows: []ListedRow{}, Filters: fs}
	res := a.rows.List(ctx, location)
	if res.Failed() {
		return v, storeErr("list", res.Err)
	}

	all := res.Value
	v.Total = len(all)
	picked := make([]schema.AuditRow, 0, len(all))
	for _, i := range search.Select(all, q, fs) {
		v.Rows = append(v.Rows, ListedRow{Ref: rowstore.RefFor(i, all[i]).String(), AuditRow: all[i]})
		picked = append(picked, all[i])
	}
	v.Summary = report.Summarize(picked)
	return v, nil
}

// Rows returns every row of location, as exports need them.
func (a *App) Rows(ctx context.Context, location string) ([]schema.AuditRow, error) {
	res := a.rows.List(ctx, location)
	if res.Failed() {
		return nil, storeErr("list", res.Err)
	}
	return res.Value, nil
}

func (a *App) Save(ctx context.Context, location string, row schema.AuditRow) (schema.AuditRow, error) {
	res := a.rows.Save(ctx, location, row)
	if res.Failed() {
		return row, storeErr("save", res.Err)
	}
	a.metrics.RowsSaved.Inc()
	return res.Value, nil
}

// Replace overwrites the row addressed by ref.
func (a *App) Replace(ctx context.Context, location, ref string, row schema.AuditRow) (schema.AuditRow, error) {
	res := a.rows.Replace(ctx, location, rowstore.ParseRef(ref), row)
	switch {
	case errors.Is(res.Err, rowstore.ErrWrongLocation):
		return row, fmt.Errorf("%w: %w", ErrRowNotFound, res.Err)
	case res.Status == rowstore.StatusFailed:
		return row, storeErr("replace", res.Err)
	case res.Status == rowstore.StatusEmpty:
		return row, fmt.Errorf("%w: %s", ErrRowNotFound, ref)
	}
	a.metrics.RowsSaved.Inc()
	return res.Value, nil
}

func (a *App) Delete(ctx context.Context, location, ref string) error {
	res := a.rows.Delete(ctx, location, rowstore.ParseRef(ref))
	switch {
	case errors.Is(res.Err, rowstore.ErrWrongLocation):
		return fmt.Errorf("%w: %w", ErrRowNotFound, res.Err)
	case res.Status == rowstore.StatusFailed:
		return storeErr("delete", res.Err)
	case res.Status == rowstore.StatusEmpty:
		return fmt.Errorf("%w: %s", ErrRowNotFound, ref)
	}
	a.metrics.RowsDeleted.Inc()
	return nil
}

// Clear drops every row of location. Callers confirm first.
func (a *App) Clear(ctx context.Context, location string) error {
	res := a.rows.Clear(ctx, location)
	if res.Failed() {
		return storeErr("clear", res.Err)
	}
	a.logger.Info("location cleared", "location", location)
	return nil
}

// Import decodes the file and merges its rows ahead of location's rows in
// the active backend. It returns the number of rows stored.
func (a *App) Import(ctx context.Context, location, filename string, r io.Reader) (int, error) {
	rows, err := importer.Rows(filename, r)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrBadFile, err)
	}
	res := a.rows.Prepend(ctx, location, rows)
	a.metrics.RowsImported.Add(float64(res.Value))
	if res.Failed() {
		return res.Value, storeErr("import", res.Err)
	}
	a.logger.Info("rows imported", "location", location, "file", filename, "rows", res.Value)
	return res.Value, nil
}
