// Package importer turns CSV and spreadsheet files into audit rows.
//
// Files come from many hands, so headers vary in case, accents and
// punctuation ("SITUAÇÃO", "situacao", "Sub-Categoria"). Normalize maps each
// record onto the canonical fields of schema.AuditRow.
package importer

import (
	"sort"
	"strings"
	"unicode"

	"github.com/celerix-dev/auditoria/pkg/schema"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Record is one decoded input row keyed by its header text.
type Record map[string]string

// aliases lists, per canonical field, the header spellings tried in order.
var aliases = map[string][]string{
	schema.FieldID:          {"id", "ID"},
	schema.FieldName:        {"nome", "NOME"},
	schema.FieldCategory:    {"categoria", "CATEGORIA"},
	schema.FieldSubcategory: {"subcategoria", "SUBCATEGORIA", "SUB-CATEGORIA"},
	schema.FieldSystem:      {"sistema", "SISTEMA"},
	schema.FieldPhysical:    {"fisico", "FISICO", "FÍSICO"},
	schema.FieldStatus:      {"situacao", "SITUACAO", "SITUAÇÃO"},
	schema.FieldDate:        {"data", "DATA"},
	schema.FieldReason:      {"motivo", "MOTIVO"},
	schema.FieldResolution:  {"resolvido", "RESOLVIDO", "COMO FOI RESOLVIDO"},
}

// folded maps a folded header to its canonical field.
var folded = func() map[string]string {
	m := make(map[string]string)
	for field, names := range aliases {
		for _, n := range names {
			m[FoldHeader(n)] = field
		}
	}
	return m
}()

// FoldHeader lowercases s, strips accents and drops everything that is not a
// letter or digit, so "Sub-Categoria" and "SUBCATEGORIA" compare equal.
func FoldHeader(s string) string {
	t := transform.Chain(
		norm.NFD,
		runes.Remove(runes.In(unicode.Mn)),
		norm.NFC,
	)
	plain, _, err := transform.String(t, strings.ToLower(strings.TrimSpace(s)))
	if err != nil {
		plain = strings.ToLower(s)
	}

	var b strings.Builder
	for _, r := range plain {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// Normalize maps records to rows, one row per record in the same order.
// For each field the first non-empty value found under an exact alias wins;
// failing that, any header that folds onto the field is tried. Unknown
// headers are dropped.
func Normalize(records []Record) []schema.AuditRow {
	rows := make([]schema.AuditRow, len(records))
	for i, rec := range records {
		rows[i] = normalizeOne(rec)
	}
	return rows
}

func normalizeOne(rec Record) schema.AuditRow {
	var row schema.AuditRow

	// Sorted so that two folded headers for one field resolve the same way every run.
	keys := make([]string, 0, len(rec))
	for k := range rec {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, field := range schema.Fields {
		row.Set(field, lookup(rec, keys, field))
	}
	return row
}

func lookup(rec Record, keys []string, field string) string {
	for _, name := range aliases[field] {
		if v := rec[name]; v != "" {
			return v
		}
	}
	for _, k := range keys {
		if folded[FoldHeader(k)] != field {
			continue
		}
		if v := rec[k]; v != "" {
			return v
		}
	}
	return ""
}
