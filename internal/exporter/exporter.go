// Package exporter writes audit rows as CSV text or an XLSX workbook.
package exporter

import (
	"fmt"
	"io"
	"strings"

	"github.com/celerix-dev/auditoria/pkg/schema"
	"github.com/xuri/excelize/v2"
)

// SheetName is the only worksheet of an exported workbook.
const SheetName = "Auditoria"

// Header is the first line of every export, in schema.Fields order.
var Header = []string{
	"ID", "NOME", "CATEGORIA", "SUB-CATEGORIA", "SISTEMA",
	"FISICO", "SITUAÇÃO", "DATA", "MOTIVO", "COMO FOI RESOLVIDO",
}

// Content types for the two formats.
const (
	ContentTypeCSV  = "text/csv"
	ContentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

// FileName is the download name for a location's export, e.g.
// "Recife_Riomar_auditoria.csv".
func FileName(location, ext string) string {
	return schema.Slug(location) + "_auditoria." + strings.TrimPrefix(ext, ".")
}

// CSV encodes rows as comma-separated lines joined by "\n".
// The free-text columns motivo and resolvido are always quoted with
// embedded quotes doubled; the other columns are written as they are.
func CSV(rows []schema.AuditRow) []byte {
	lines := make([]string, 0, len(rows)+1)
	lines = append(lines, strings.Join(Header, ","))
	for _, r := range rows {
		cells := []string{
			r.ID, r.Name, r.Category, r.Subcategory, r.System,
			r.Physical, r.Status, r.Date,
			quote(r.Reason), quote(r.Resolution),
		}
		lines = append(lines, strings.Join(cells, ","))
	}
	return []byte(strings.Join(lines, "\n"))
}

func quote(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}

// WriteXLSX writes rows as a single-sheet workbook to w.
func WriteXLSX(w io.Writer, rows []schema.AuditRow) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), SheetName); err != nil {
		return fmt.Errorf("name sheet: %w", err)
	}
	if err := writeRow(f, 1, Header); err != nil {
		return err
	}
	for i, r := range rows {
		if err := writeRow(f, i+2, r.Values()); err != nil {
			return err
		}
	}
	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

func writeRow(f *excelize.File, n int, values []string) error {
	cell, err := excelize.CoordinatesToCellName(1, n)
	if err != nil {
		return err
	}
	cells := make([]any, len(values))
	for i, v := range values {
		cells[i] = v
	}
	if err := f.SetSheetRow(SheetName, cell, &cells); err != nil {
		return fmt.Errorf("write row %d: %w", n, err)
	}
	return nil
}
