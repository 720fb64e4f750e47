package rowstore

import (
	"context"
	"errors"
	"testing"

	"github.com/celerix-dev/auditoria/internal/engine"
	"github.com/celerix-dev/auditoria/internal/platform/logger"
	"github.com/celerix-dev/auditoria/pkg/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRemote(t *testing.T) (*Remote, *engine.MemStore) {
	t.Helper()
	docs := engine.NewMemStore(nil, nil)
	return NewRemote(docs, "auditorias", logger.Discard()), docs
}

// brokenDocs fails every call, standing in for an unreachable daemon.
type brokenDocs struct{}

var errDown = errors.New("connection refused")

func (brokenDocs) Get(string, string) (schema.Document, error)          { return nil, errDown }
func (brokenDocs) Set(string, string, schema.Document) error            { return errDown }
func (brokenDocs) Add(string, schema.Document) (string, error)          { return "", errDown }
func (brokenDocs) Delete(string, string) error                          { return errDown }
func (brokenDocs) Collections() ([]string, error)                       { return nil, errDown }
func (brokenDocs) Query(string, string, any) ([]schema.Snapshot, error) { return nil, errDown }

func TestRemote_SaveCapturesRemoteID(t *testing.T) {
	s, docs := newRemote(t)
	ctx := context.Background()

	res := s.Save(ctx, barra, row("A1", "X"))
	require.Equal(t, StatusOK, res.Status)
	require.NotEmpty(t, res.Value.RemoteID)

	doc, err := docs.Get("auditorias", res.Value.RemoteID)
	require.NoError(t, err)
	assert.Equal(t, barra, doc[LocationField])
	assert.Equal(t, "A1", doc["id"])
	_, hasRemoteID := doc["remoteId"]
	assert.False(t, hasRemoteID, "remote id is the document key, not a field")
}

func TestRemote_ListScopedToLocationNewestFirst(t *testing.T) {
	s, _ := newRemote(t)
	ctx := context.Background()

	first := s.Save(ctx, barra, row("A1", "X")).Value
	second := s.Save(ctx, barra, row("B2", "Y")).Value
	s.Save(ctx, manaus, row("M1", "X"))

	res := s.List(ctx, barra)
	require.Equal(t, StatusOK, res.Status)
	require.Len(t, res.Value, 2)
	assert.Equal(t, second, res.Value[0])
	assert.Equal(t, first, res.Value[1])

	assert.Equal(t, StatusEmpty, s.List(ctx, "Recife Ultra").Status)
}

func TestRemote_SaveWithRemoteIDOverwrites(t *testing.T) {
	s, _ := newRemote(t)
	ctx := context.Background()

	saved := s.Save(ctx, barra, row("A1", "X")).Value
	saved.Category = "Z"
	require.Equal(t, StatusOK, s.Save(ctx, barra, saved).Status)

	listed := s.List(ctx, barra).Value
	require.Len(t, listed, 1)
	assert.Equal(t, "Z", listed[0].Category)
	assert.Equal(t, saved.RemoteID, listed[0].RemoteID)
}

func TestRemote_ReplaceAndDelete(t *testing.T) {
	s, _ := newRemote(t)
	ctx := context.Background()
	saved := s.Save(ctx, barra, row("A1", "X")).Value
	ref := RefFor(0, saved)

	require.Equal(t, StatusOK, s.Replace(ctx, barra, ref, row("A1", "W")).Status)
	assert.Equal(t, "W", s.List(ctx, barra).Value[0].Category)

	require.Equal(t, StatusOK, s.Delete(ctx, barra, ref).Status)
	assert.Empty(t, s.List(ctx, barra).Value)
}

func TestRemote_OtherLocationsRowsAreUntouched(t *testing.T) {
	s, docs := newRemote(t)
	ctx := context.Background()
	saved := s.Save(ctx, barra, row("A1", "X")).Value
	ref := RefFor(0, saved)

	del := s.Delete(ctx, manaus, ref)
	assert.True(t, del.Failed())
	assert.ErrorIs(t, del.Err, ErrWrongLocation)

	rep := s.Replace(ctx, manaus, ref, row("A1", "W"))
	assert.True(t, rep.Failed())
	assert.ErrorIs(t, rep.Err, ErrWrongLocation)

	overwrite := s.Save(ctx, manaus, saved)
	assert.ErrorIs(t, overwrite.Err, ErrWrongLocation)

	doc, err := docs.Get("auditorias", saved.RemoteID)
	require.NoError(t, err)
	assert.Equal(t, barra, doc[LocationField])
	assert.Equal(t, "X", doc["categoria"])
	assert.Empty(t, s.List(ctx, manaus).Value)
}

func TestRemote_MissingIDIsEmpty(t *testing.T) {
	s, _ := newRemote(t)
	ctx := context.Background()

	assert.Equal(t, StatusEmpty, s.Delete(ctx, barra, Ref{Index: -1, RemoteID: "nope"}).Status)
	assert.Equal(t, StatusEmpty, s.Replace(ctx, barra, Ref{Index: -1, RemoteID: "nope"}, row("A1", "X")).Status)
	assert.Equal(t, StatusEmpty, s.List(ctx, barra).Status)

	s.Save(ctx, barra, row("A1", "X"))
	assert.Equal(t, StatusEmpty, s.Delete(ctx, barra, Ref{Index: -1, RemoteID: "nope"}).Status)
	assert.Len(t, s.List(ctx, barra).Value, 1)
}

func TestRemote_DeleteWithoutRemoteIDFails(t *testing.T) {
	s, _ := newRemote(t)

	res := s.Delete(context.Background(), barra, Ref{Index: 0})
	assert.True(t, res.Failed())
	assert.ErrorIs(t, res.Err, ErrNoRemoteID)

	rep := s.Replace(context.Background(), barra, Ref{Index: 0}, row("A1", "X"))
	assert.ErrorIs(t, rep.Err, ErrNoRemoteID)
}

func TestRemote_ClearUnsupported(t *testing.T) {
	s, _ := newRemote(t)
	res := s.Clear(context.Background(), barra)
	assert.True(t, res.Failed())
	assert.ErrorIs(t, res.Err, ErrUnsupported)
}

func TestRemote_PrependListsImportedFirstInOrder(t *testing.T) {
	s, _ := newRemote(t)
	ctx := context.Background()
	s.Save(ctx, barra, row("OLD", "X"))

	res := s.Prepend(ctx, barra, []schema.AuditRow{row("I1", "X"), row("I2", "X"), row("I3", "X")})
	require.Equal(t, StatusOK, res.Status)
	assert.Equal(t, 3, res.Value)

	ids := []string{}
	for _, r := range s.List(ctx, barra).Value {
		ids = append(ids, r.ID)
	}
	assert.Equal(t, []string{"I1", "I2", "I3", "OLD"}, ids)
}

func TestRemote_FailuresAreResults(t *testing.T) {
	s := NewRemote(brokenDocs{}, "auditorias", logger.Discard())
	ctx := context.Background()

	list := s.List(ctx, barra)
	assert.True(t, list.Failed())
	assert.Empty(t, list.Value)
	assert.ErrorIs(t, list.Err, errDown)

	saved := s.Save(ctx, barra, row("A1", "X"))
	assert.True(t, saved.Failed())
	assert.Empty(t, saved.Value.RemoteID)

	del := s.Delete(ctx, barra, Ref{RemoteID: "doc"})
	assert.ErrorIs(t, del.Err, errDown)

	merged := s.Prepend(ctx, barra, []schema.AuditRow{row("A1", "X")})
	assert.True(t, merged.Failed())
	assert.Equal(t, 0, merged.Value)
}
