// Package rowstore is the row persistence adapter: one Store interface over
// audit rows scoped to a store location, with a local blob implementation and
// a remote document-store implementation chosen once at startup.
//
// No operation returns a Go error or panics. Every outcome is a Result whose
// Status tells success, no rows / no change, or failure with a reason.
package rowstore

import (
	"context"
	"errors"
	"strconv"

	"github.com/celerix-dev/auditoria/pkg/schema"
)

var (
	// ErrUnknownLocation is reported for location names outside schema.Locations.
	ErrUnknownLocation = errors.New("unknown store location")
	// ErrNoRemoteID is reported when a remote row operation has no document id to address.
	ErrNoRemoteID = errors.New("row has no remote id")
	// ErrUnsupported is reported for operations the active backend does not offer.
	ErrUnsupported = errors.New("operation not supported by this backend")
	// ErrWrongLocation is reported when a remote id addresses a row of another location.
	ErrWrongLocation = errors.New("row belongs to another location")
)

// Backend modes reported by Store.Mode.
const (
	ModeLocal  = "local"
	ModeRemote = "remote"
)

// Store is implemented by Local and Remote.
type Store interface {
	// Mode reports ModeLocal or ModeRemote.
	Mode() string
	// List returns the location's rows in display order.
	List(ctx context.Context, location string) Result[[]schema.AuditRow]
	// Save creates a row, or overwrites it when the backend can address it.
	// The returned row carries any id the backend assigned.
	Save(ctx context.Context, location string, row schema.AuditRow) Result[schema.AuditRow]
	// Replace overwrites the row addressed by ref.
	Replace(ctx context.Context, location string, ref Ref, row schema.AuditRow) Result[schema.AuditRow]
	// Delete removes the row addressed by ref.
	Delete(ctx context.Context, location string, ref Ref) Result[struct{}]
	// Clear discards every row of the location. Callers confirm first.
	Clear(ctx context.Context, location string) Result[struct{}]
	// Prepend merges rows ahead of the existing ones, keeping their order,
	// and reports how many were stored.
	Prepend(ctx context.Context, location string, rows []schema.AuditRow) Result[int]
}

// Ref addresses one listed row: by position in local mode, by remote id in
// remote mode.
type Ref struct {
	Index    int
	RemoteID string
}

// RefFor builds the reference for the row listed at position.
func RefFor(position int, row schema.AuditRow) Ref {
	return Ref{Index: position, RemoteID: row.RemoteID}
}

// ParseRef is the inverse of Ref.String.
func ParseRef(s string) Ref {
	if n, err := strconv.Atoi(s); err == nil && n >= 0 {
		return Ref{Index: n}
	}
	return Ref{Index: -1, RemoteID: s}
}

func (r Ref) String() string {
	if r.RemoteID != "" {
		return r.RemoteID
	}
	return strconv.Itoa(r.Index)
}

func checkLocation(ctx context.Context, location string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if !schema.IsLocation(location) {
		return ErrUnknownLocation
	}
	return nil
}
