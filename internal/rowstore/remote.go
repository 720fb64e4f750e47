package rowstore

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/celerix-dev/auditoria/pkg/schema"
	"github.com/celerix-dev/auditoria/pkg/sdk"
)

// LocationField tags every remote row document with its store location.
const LocationField = "pdv"

// Remote keeps rows as documents in one shared collection, tagged with
// LocationField. Rows are addressed by document id.
type Remote struct {
	docs       sdk.DocumentStore
	collection string
	logger     *slog.Logger
}

func NewRemote(docs sdk.DocumentStore, collection string, logger *slog.Logger) *Remote {
	if logger == nil {
		logger = slog.Default()
	}
	return &Remote{docs: docs, collection: collection, logger: logger}
}

func (r *Remote) Mode() string { return ModeRemote }

func toDocument(location string, row schema.AuditRow) (schema.Document, error) {
	row.RemoteID = ""
	doc, err := sdk.Encode(row)
	if err != nil {
		return nil, err
	}
	doc[LocationField] = location
	return doc, nil
}

// owned looks up document id and checks that it is tagged with location.
// A missing document reports StatusEmpty.
func (r *Remote) owned(location, id string) (Status, error) {
	doc, err := r.docs.Get(r.collection, id)
	switch {
	case errors.Is(err, sdk.ErrDocumentNotFound), errors.Is(err, sdk.ErrCollectionNotFound):
		return StatusEmpty, nil
	case err != nil:
		return StatusFailed, err
	}
	if doc[LocationField] != location {
		r.logger.Warn("remote row addressed from another location", "location", location, "id", id, "owner", doc[LocationField])
		return StatusFailed, fmt.Errorf("%s: %w", id, ErrWrongLocation)
	}
	return StatusOK, nil
}

// List returns the newest rows first. Document ids are time ordered.
func (r *Remote) List(ctx context.Context, location string) Result[[]schema.AuditRow] {
	if err := checkLocation(ctx, location); err != nil {
		return failed[[]schema.AuditRow](nil, err)
	}
	snaps, err := r.docs.Query(r.collection, LocationField, location)
	if err != nil {
		r.logger.Error("list remote rows", "location", location, "error", err)
		return failed[[]schema.AuditRow](nil, err)
	}

	rows := make([]schema.AuditRow, 0, len(snaps))
	for i := len(snaps) - 1; i >= 0; i-- {
		row, err := sdk.Decode[schema.AuditRow](snaps[i].Data)
		if err != nil {
			r.logger.Warn("skipping undecodable remote row", "id", snaps[i].ID, "error", err)
			continue
		}
		row.RemoteID = snaps[i].ID
		rows = append(rows, row)
	}
	if len(rows) == 0 {
		return empty(rows)
	}
	return ok(rows)
}

func (r *Remote) Save(ctx context.Context, location string, row schema.AuditRow) Result[schema.AuditRow] {
	if err := checkLocation(ctx, location); err != nil {
		return failed(row, err)
	}
	doc, err := toDocument(location, row)
	if err != nil {
		return failed(row, err)
	}

	if row.RemoteID != "" {
		// An id unknown to the store is recreated under this location.
		if status, err := r.owned(location, row.RemoteID); status == StatusFailed {
			return failed(row, err)
		}
		if err := r.docs.Set(r.collection, row.RemoteID, doc); err != nil {
			r.logger.Error("overwrite remote row", "location", location, "id", row.RemoteID, "error", err)
			return failed(row, err)
		}
		return ok(row)
	}

	id, err := r.docs.Add(r.collection, doc)
	if err != nil {
		r.logger.Error("create remote row", "location", location, "error", err)
		return failed(row, err)
	}
	row.RemoteID = id
	return ok(row)
}

// Replace overwrites the document addressed by ref. The document must
// exist and belong to location.
func (r *Remote) Replace(ctx context.Context, location string, ref Ref, row schema.AuditRow) Result[schema.AuditRow] {
	if err := checkLocation(ctx, location); err != nil {
		return failed(row, err)
	}
	if ref.RemoteID == "" {
		return failed(row, ErrNoRemoteID)
	}
	switch status, err := r.owned(location, ref.RemoteID); status {
	case StatusEmpty:
		return empty(row)
	case StatusFailed:
		return failed(row, err)
	}
	row.RemoteID = ref.RemoteID
	return r.Save(ctx, location, row)
}

// Delete removes the document addressed by ref. A ref without a remote id
// fails with ErrNoRemoteID instead of silently doing nothing, and an id that
// is not stored reports StatusEmpty.
func (r *Remote) Delete(ctx context.Context, location string, ref Ref) Result[struct{}] {
	if err := checkLocation(ctx, location); err != nil {
		return failed(struct{}{}, err)
	}
	if ref.RemoteID == "" {
		r.logger.Warn("remote delete without remote id", "location", location, "index", ref.Index)
		return failed(struct{}{}, ErrNoRemoteID)
	}
	switch status, err := r.owned(location, ref.RemoteID); status {
	case StatusEmpty:
		return empty(struct{}{})
	case StatusFailed:
		return failed(struct{}{}, err)
	}
	if err := r.docs.Delete(r.collection, ref.RemoteID); err != nil {
		r.logger.Error("delete remote row", "location", location, "id", ref.RemoteID, "error", err)
		return failed(struct{}{}, err)
	}
	return ok(struct{}{})
}

func (r *Remote) Clear(ctx context.Context, location string) Result[struct{}] {
	return failed(struct{}{}, fmt.Errorf("clear: %w", ErrUnsupported))
}

// Prepend adds rows last-to-first so that List shows them first, in order.
func (r *Remote) Prepend(ctx context.Context, location string, rows []schema.AuditRow) Result[int] {
	if err := checkLocation(ctx, location); err != nil {
		return failed(0, err)
	}
	if len(rows) == 0 {
		return empty(0)
	}
	stored := 0
	for i := len(rows) - 1; i >= 0; i-- {
		row := rows[i]
		row.RemoteID = ""
		res := r.Save(ctx, location, row)
		if res.Failed() {
			return failed(stored, res.Err)
		}
		stored++
	}
	return ok(stored)
}
