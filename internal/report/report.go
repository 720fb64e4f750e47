// Package report counts rows by status and category for the dashboard charts.
package report

import (
	"math"
	"sort"
	"strconv"

	"github.com/celerix-dev/auditoria/pkg/schema"
)

// Unset labels rows whose counted field is empty.
const Unset = "Não informado"

// MaxCategories caps the category series.
const MaxCategories = 10

// Count is one bar: a label and how many rows carry it.
type Count struct {
	Label string `json:"label"`
	Count int    `json:"count"`
}

// Summary holds the two series shown next to the table.
type Summary struct {
	Total      int     `json:"total"`
	ByStatus   []Count `json:"situacao"`
	ByCategory []Count `json:"categoria"`
}

// Summarize counts rows per situacao and per categoria. Labels that are
// plain non-negative integers ("3", not "03") come first in ascending order,
// the rest follow in the order first seen. Only the first MaxCategories
// category labels are kept.
func Summarize(rows []schema.AuditRow) Summary {
	s := Summary{
		Total:      len(rows),
		ByStatus:   tally(rows, schema.FieldStatus),
		ByCategory: tally(rows, schema.FieldCategory),
	}
	if len(s.ByCategory) > MaxCategories {
		s.ByCategory = s.ByCategory[:MaxCategories]
	}
	return s
}

func tally(rows []schema.AuditRow, field string) []Count {
	out := []Count{}
	pos := map[string]int{}
	for _, r := range rows {
		label := r.Get(field)
		if label == "" {
			label = Unset
		}
		i, seen := pos[label]
		if !seen {
			i = len(out)
			pos[label] = i
			out = append(out, Count{Label: label})
		}
		out[i].Count++
	}
	sort.SliceStable(out, func(i, j int) bool {
		a, aok := index(out[i].Label)
		b, bok := index(out[j].Label)
		if aok && bok {
			return a < b
		}
		return aok && !bok
	})
	return out
}

// index parses label as a canonical integer index.
func index(label string) (uint64, bool) {
	n, err := strconv.ParseUint(label, 10, 32)
	if err != nil || n == math.MaxUint32 || strconv.FormatUint(n, 10) != label {
		return 0, false
	}
	return n, true
}
