// Package schema defines the data structures shared across the Auditoria packages.
package schema

import (
	"regexp"
	"strings"
)

// AuditRow is one audit finding recorded for one store location.
// JSON keys match the blobs written by earlier versions of the tool.
type AuditRow struct {
	ID          string `json:"id"`
	Name        string `json:"nome"`
	Category    string `json:"categoria"`
	Subcategory string `json:"subcategoria"`
	System      string `json:"sistema"`
	Physical    string `json:"fisico"`
	Status      string `json:"situacao"`
	Date        string `json:"data"`
	Reason      string `json:"motivo"`
	Resolution  string `json:"resolvido"`

	// RemoteID is assigned by the document store; empty for local rows.
	RemoteID string `json:"remoteId,omitempty"`
}

// Canonical field names, in display and export order.
const (
	FieldID          = "id"
	FieldName        = "nome"
	FieldCategory    = "categoria"
	FieldSubcategory = "subcategoria"
	FieldSystem      = "sistema"
	FieldPhysical    = "fisico"
	FieldStatus      = "situacao"
	FieldDate        = "data"
	FieldReason      = "motivo"
	FieldResolution  = "resolvido"
)

// Fields lists the canonical fields in their fixed order.
var Fields = []string{
	FieldID, FieldName, FieldCategory, FieldSubcategory, FieldSystem,
	FieldPhysical, FieldStatus, FieldDate, FieldReason, FieldResolution,
}

// Get returns the value of a canonical field, or "" for unknown names.
func (r AuditRow) Get(field string) string {
	switch field {
	case FieldID:
		return r.ID
	case FieldName:
		return r.Name
	case FieldCategory:
		return r.Category
	case FieldSubcategory:
		return r.Subcategory
	case FieldSystem:
		return r.System
	case FieldPhysical:
		return r.Physical
	case FieldStatus:
		return r.Status
	case FieldDate:
		return r.Date
	case FieldReason:
		return r.Reason
	case FieldResolution:
		return r.Resolution
	}
	return ""
}

// Set assigns a canonical field. It reports false for unknown names.
func (r *AuditRow) Set(field, value string) bool {
	switch field {
	case FieldID:
		r.ID = value
	case FieldName:
		r.Name = value
	case FieldCategory:
		r.Category = value
	case FieldSubcategory:
		r.Subcategory = value
	case FieldSystem:
		r.System = value
	case FieldPhysical:
		r.Physical = value
	case FieldStatus:
		r.Status = value
	case FieldDate:
		r.Date = value
	case FieldReason:
		r.Reason = value
	case FieldResolution:
		r.Resolution = value
	default:
		return false
	}
	return true
}

// Values returns the canonical field values in Fields order.
func (r AuditRow) Values() []string {
	out := make([]string, len(Fields))
	for i, f := range Fields {
		out[i] = r.Get(f)
	}
	return out
}

// Locations is the fixed set of store locations (PDVs).
var Locations = []string{
	"Salvador Shopping",
	"Shopping da Bahia",
	"Shopping Paralela",
	"Bela Vista",
	"Lauro de Freitas",
	"Barra",
	"Rio de Janeiro",
	"Belo Horizonte",
	"Manaus",
	"Recife Riomar",
	"Recife Ultra",
	"Maceio Parque",
	"Shopping Maceio",
	"Vila Velha",
	"Vitoria",
	"Fortaleza",
	"Belém",
}

// IsLocation reports whether name is one of the known locations.
func IsLocation(name string) bool {
	for _, l := range Locations {
		if l == name {
			return true
		}
	}
	return false
}

var whitespaceRun = regexp.MustCompile(`\s+`)

// Slug replaces every whitespace run in a location name with "_".
func Slug(location string) string {
	return whitespaceRun.ReplaceAllString(location, "_")
}

// StorageKey is the local blob key holding a location's rows.
func StorageKey(location string) string {
	return "auditoria__" + Slug(location)
}

// LocationFromKey reverses StorageKey for known locations.
func LocationFromKey(key string) (string, bool) {
	slug, ok := strings.CutPrefix(key, "auditoria__")
	if !ok {
		return "", false
	}
	for _, l := range Locations {
		if Slug(l) == slug {
			return l, true
		}
	}
	return "", false
}
