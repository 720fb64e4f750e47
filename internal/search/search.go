// Package search narrows a location's rows by free-text query and per-field
// filters. Nothing here mutates its input or reorders rows.
package search

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/celerix-dev/auditoria/pkg/schema"
)

// Query is the free-text search box and its scope toggles.
type Query struct {
	Text          string `json:"q" form:"q"`
	MatchID       bool   `json:"id" form:"id"`
	MatchCategory bool   `json:"category" form:"category"`
	MatchAll      bool   `json:"all" form:"all"`
}

// ErrUnknownField is returned by Validate for keys that name no filterable field.
var ErrUnknownField = errors.New("unknown filter field")

// FilterFields are the fields a FilterSet may constrain.
var FilterFields = []string{
	schema.FieldID, schema.FieldName, schema.FieldCategory, schema.FieldSubcategory,
	schema.FieldSystem, schema.FieldPhysical, schema.FieldStatus, schema.FieldDate,
}

// FilterSet maps a field to a required substring. Empty values do not constrain.
type FilterSet map[string]string

// NewFilterSet keeps the non-empty entries of in that name a filterable field.
func NewFilterSet(in map[string]string) FilterSet {
	fs := FilterSet{}
	for _, f := range FilterFields {
		if v := in[f]; v != "" {
			fs[f] = v
		}
	}
	return fs
}

// IsFilterField reports whether field can be filtered on.
func IsFilterField(field string) bool {
	for _, f := range FilterFields {
		if f == field {
			return true
		}
	}
	return false
}

// Validate rejects keys of in that are not filter fields. Keys are checked
// in sorted order so the error is stable.
func Validate(in map[string]string) error {
	keys := make([]string, 0, len(in))
	for k := range in {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if !IsFilterField(k) {
			return fmt.Errorf("%w: %q (allowed: %s)", ErrUnknownField, k, strings.Join(FilterFields, ", "))
		}
	}
	return nil
}

func (q Query) term() string { return strings.ToUpper(strings.TrimSpace(q.Text)) }

// Matches reports whether row passes the search. An empty query passes
// everything; otherwise the row passes when any enabled scope contains it.
func (q Query) Matches(row schema.AuditRow) bool {
	term := q.term()
	if term == "" {
		return true
	}
	if q.MatchAll && strings.Contains(strings.ToUpper(strings.Join(row.Values(), " ")), term) {
		return true
	}
	if q.MatchID && strings.Contains(strings.ToUpper(row.ID), term) {
		return true
	}
	if q.MatchCategory && strings.Contains(strings.ToUpper(row.Category), term) {
		return true
	}
	return false
}

// Matches reports whether every non-empty filter is a case-insensitive
// substring of the row's field.
func (fs FilterSet) Matches(row schema.AuditRow) bool {
	for field, want := range fs {
		if want == "" {
			continue
		}
		if !strings.Contains(strings.ToUpper(row.Get(field)), strings.ToUpper(want)) {
			return false
		}
	}
	return true
}

// Select returns the positions in rows that pass both q and fs, ascending.
func Select(rows []schema.AuditRow, q Query, fs FilterSet) []int {
	idx := make([]int, 0, len(rows))
	for i, r := range rows {
		if q.Matches(r) && fs.Matches(r) {
			idx = append(idx, i)
		}
	}
	return idx
}

// Apply returns the rows that pass both q and fs, in input order.
func Apply(rows []schema.AuditRow, q Query, fs FilterSet) []schema.AuditRow {
	idx := Select(rows, q, fs)
	out := make([]schema.AuditRow, len(idx))
	for i, n := range idx {
		out[i] = rows[n]
	}
	return out
}
