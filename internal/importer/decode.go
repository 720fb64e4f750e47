package importer

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/celerix-dev/auditoria/pkg/schema"
	"github.com/xuri/excelize/v2"
)

// ErrNoSheet is returned for workbooks without any worksheet.
var ErrNoSheet = errors.New("workbook has no sheets")

const utf8BOM = "\uFEFF"

// Decode reads records from r, choosing the format by the file extension:
// ".csv" (any case) is read as delimited text, anything else as a workbook.
func Decode(filename string, r io.Reader) ([]Record, error) {
	if strings.EqualFold(filepath.Ext(filename), ".csv") {
		return ParseCSV(r)
	}
	return ReadSpreadsheet(r)
}

// Rows decodes and normalizes a file in one step.
func Rows(filename string, r io.Reader) ([]schema.AuditRow, error) {
	records, err := Decode(filename, r)
	if err != nil {
		return nil, err
	}
	return Normalize(records), nil
}

// ParseCSV reads comma-delimited text whose first line is the header.
// Blank lines are skipped, missing cells read as "" and extra cells are
// dropped. Quoted cells, as written by the exporter, are unwrapped.
func ParseCSV(r io.Reader) ([]Record, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read csv header: %w", err)
	}
	header = cleanHeader(header)

	var out []Record
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read csv: %w", err)
		}
		out = append(out, toRecord(header, rec))
	}
	return out, nil
}

// ReadSpreadsheet reads the first sheet of a workbook. The first row is the
// header; fully blank rows are skipped.
func ReadSpreadsheet(r io.Reader) ([]Record, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	sheet := f.GetSheetName(0)
	if sheet == "" {
		return nil, ErrNoSheet
	}
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheet, err)
	}
	if len(rows) == 0 {
		return nil, nil
	}

	header := cleanHeader(rows[0])
	var out []Record
	for _, cells := range rows[1:] {
		if blank(cells) {
			continue
		}
		out = append(out, toRecord(header, cells))
	}
	return out, nil
}

func cleanHeader(cells []string) []string {
	header := make([]string, len(cells))
	for i, c := range cells {
		if i == 0 {
			c = strings.TrimPrefix(c, utf8BOM)
		}
		header[i] = strings.TrimSpace(c)
	}
	return header
}

func toRecord(header, cells []string) Record {
	rec := make(Record, len(header))
	for i, h := range header {
		if h == "" {
			continue
		}
		rec[h] = cellValue(cells, i)
	}
	return rec
}

func cellValue(cells []string, idx int) string {
	if idx < 0 || idx >= len(cells) {
		return ""
	}
	return cells[idx]
}

func blank(cells []string) bool {
	for _, c := range cells {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
