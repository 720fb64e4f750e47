package rowstore

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"sync"

	"github.com/celerix-dev/auditoria/internal/localstore"
	"github.com/celerix-dev/auditoria/pkg/schema"
)

// Blobs is the keyed persistent store Local writes to.
type Blobs interface {
	Get(key string) ([]byte, error)
	Set(key string, value []byte) error
	Remove(key string) error
	Keys(prefix string) ([]string, error)
}

// Local keeps each location's rows as one JSON array under schema.StorageKey.
// Rows are addressed by their position in that array.
type Local struct {
	blobs  Blobs
	logger *slog.Logger
	// mu serializes read-modify-write cycles on a blob.
	mu sync.Mutex
}

func NewLocal(blobs Blobs, logger *slog.Logger) *Local {
	if logger == nil {
		logger = slog.Default()
	}
	return &Local{blobs: blobs, logger: logger}
}

func (l *Local) Mode() string { return ModeLocal }

// Locations lists the locations that have a stored blob, in
// schema.Locations order. Keys of unknown locations are skipped.
func (l *Local) Locations() ([]string, error) {
	keys, err := l.blobs.Keys(schema.StorageKey(""))
	if err != nil {
		return nil, err
	}
	stored := make(map[string]bool, len(keys))
	for _, k := range keys {
		loc, ok := schema.LocationFromKey(k)
		if !ok {
			l.logger.Warn("ignoring local key of unknown location", "key", k)
			continue
		}
		stored[loc] = true
	}
	out := make([]string, 0, len(stored))
	for _, loc := range schema.Locations {
		if stored[loc] {
			out = append(out, loc)
		}
	}
	return out, nil
}

// load returns the stored rows. A missing or corrupt blob reads as no rows.
func (l *Local) load(location string) ([]schema.AuditRow, error) {
	raw, err := l.blobs.Get(schema.StorageKey(location))
	if errors.Is(err, localstore.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var rows []schema.AuditRow
	if err := json.Unmarshal(raw, &rows); err != nil {
		l.logger.Warn("discarding corrupt local rows", "location", location, "error", err)
		return nil, nil
	}
	return rows, nil
}

func (l *Local) store(location string, rows []schema.AuditRow) error {
	if rows == nil {
		rows = []schema.AuditRow{}
	}
	raw, err := json.Marshal(rows)
	if err != nil {
		return err
	}
	return l.blobs.Set(schema.StorageKey(location), raw)
}

func (l *Local) List(ctx context.Context, location string) Result[[]schema.AuditRow] {
	if err := checkLocation(ctx, location); err != nil {
		return failed[[]schema.AuditRow](nil, err)
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	rows, err := l.load(location)
	if err != nil {
		l.logger.Error("list local rows", "location", location, "error", err)
		return failed[[]schema.AuditRow](nil, err)
	}
	if len(rows) == 0 {
		return empty([]schema.AuditRow{})
	}
	return ok(rows)
}

func (l *Local) Save(ctx context.Context, location string, row schema.AuditRow) Result[schema.AuditRow] {
	if err := checkLocation(ctx, location); err != nil {
		return failed(row, err)
	}
	row.RemoteID = ""

	l.mu.Lock()
	defer l.mu.Unlock()

	rows, err := l.load(location)
	if err != nil {
		l.logger.Error("save local row", "location", location, "error", err)
		return failed(row, err)
	}
	rows = append([]schema.AuditRow{row}, rows...)
	if err := l.store(location, rows); err != nil {
		l.logger.Error("save local row", "location", location, "error", err)
		return failed(row, err)
	}
	return ok(row)
}

func (l *Local) Replace(ctx context.Context, location string, ref Ref, row schema.AuditRow) Result[schema.AuditRow] {
	if err := checkLocation(ctx, location); err != nil {
		return failed(row, err)
	}
	row.RemoteID = ""

	l.mu.Lock()
	defer l.mu.Unlock()

	rows, err := l.load(location)
	if err != nil {
		l.logger.Error("replace local row", "location", location, "error", err)
		return failed(row, err)
	}
	if ref.Index < 0 || ref.Index >= len(rows) {
		return empty(row)
	}
	rows[ref.Index] = row
	if err := l.store(location, rows); err != nil {
		l.logger.Error("replace local row", "location", location, "error", err)
		return failed(row, err)
	}
	return ok(row)
}

func (l *Local) Delete(ctx context.Context, location string, ref Ref) Result[struct{}] {
	if err := checkLocation(ctx, location); err != nil {
		return failed(struct{}{}, err)
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	rows, err := l.load(location)
	if err != nil {
		l.logger.Error("delete local row", "location", location, "error", err)
		return failed(struct{}{}, err)
	}
	if ref.Index < 0 || ref.Index >= len(rows) {
		return empty(struct{}{})
	}
	rows = append(rows[:ref.Index], rows[ref.Index+1:]...)
	if err := l.store(location, rows); err != nil {
		l.logger.Error("delete local row", "location", location, "error", err)
		return failed(struct{}{}, err)
	}
	return ok(struct{}{})
}

func (l *Local) Clear(ctx context.Context, location string) Result[struct{}] {
	if err := checkLocation(ctx, location); err != nil {
		return failed(struct{}{}, err)
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	if err := l.blobs.Remove(schema.StorageKey(location)); err != nil {
		l.logger.Error("clear local rows", "location", location, "error", err)
		return failed(struct{}{}, err)
	}
	return ok(struct{}{})
}

func (l *Local) Prepend(ctx context.Context, location string, rows []schema.AuditRow) Result[int] {
	if err := checkLocation(ctx, location); err != nil {
		return failed(0, err)
	}
	if len(rows) == 0 {
		return empty(0)
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	existing, err := l.load(location)
	if err != nil {
		l.logger.Error("merge local rows", "location", location, "error", err)
		return failed(0, err)
	}
	combined := make([]schema.AuditRow, 0, len(rows)+len(existing))
	for _, r := range rows {
		r.RemoteID = ""
		combined = append(combined, r)
	}
	combined = append(combined, existing...)
	if err := l.store(location, combined); err != nil {
		l.logger.Error("merge local rows", "location", location, "error", err)
		return failed(0, err)
	}
	return ok(len(rows))
}
