package rowstore

import (
	"context"
	"testing"

	"github.com/celerix-dev/auditoria/pkg/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingObserver map[string]int

func (c countingObserver) ObserveStoreOp(op, status string) { c[op+"/"+status]++ }

func TestMigrate_LocalToRemote(t *testing.T) {
	local, _ := newLocal(t)
	remote, _ := newRemote(t)
	ctx := context.Background()

	local.Save(ctx, barra, row("A1", "X"))
	local.Save(ctx, barra, row("B2", "X"))
	local.Save(ctx, manaus, row("M1", "X"))

	copied, err := Migrate(ctx, local, remote, schema.Locations)
	require.NoError(t, err)
	assert.Equal(t, map[string]int{barra: 2, manaus: 1}, copied)

	ids := []string{}
	for _, r := range remote.List(ctx, barra).Value {
		ids = append(ids, r.ID)
		assert.NotEmpty(t, r.RemoteID)
	}
	assert.Equal(t, []string{"B2", "A1"}, ids, "order is preserved")
}

func TestStoredLocations(t *testing.T) {
	local, blobs := newLocal(t)
	remote, _ := newRemote(t)
	ctx := context.Background()

	locs, err := StoredLocations(local)
	require.NoError(t, err)
	assert.Empty(t, locs)

	local.Save(ctx, manaus, row("M1", "X"))
	local.Save(ctx, barra, row("A1", "X"))
	require.NoError(t, blobs.Set("auditoria__Atlantis", []byte("[]")))
	require.NoError(t, blobs.Set("settings", []byte("{}")))

	locs, err = StoredLocations(local)
	require.NoError(t, err)
	assert.Equal(t, []string{barra, manaus}, locs)

	locs, err = StoredLocations(remote)
	require.NoError(t, err)
	assert.Equal(t, schema.Locations, locs)
}

func TestMigrate_StopsOnFailure(t *testing.T) {
	local, _ := newLocal(t)
	ctx := context.Background()
	local.Save(ctx, barra, row("A1", "X"))

	broken := NewRemote(brokenDocs{}, "auditorias", nil)
	_, err := Migrate(ctx, local, broken, []string{barra})
	assert.ErrorIs(t, err, errDown)

	_, err = Migrate(ctx, broken, local, []string{barra})
	assert.ErrorIs(t, err, errDown)
}

func TestInstrument_ReportsStatus(t *testing.T) {
	local, _ := newLocal(t)
	obs := countingObserver{}
	s := Instrument(local, obs)
	ctx := context.Background()

	s.List(ctx, barra)
	s.Save(ctx, barra, row("A1", "X"))
	s.List(ctx, barra)
	s.Delete(ctx, "Atlantis", Ref{})

	assert.Equal(t, ModeLocal, s.Mode())
	assert.Equal(t, 1, obs["list/empty"])
	assert.Equal(t, 1, obs["list/ok"])
	assert.Equal(t, 1, obs["save/ok"])
	assert.Equal(t, 1, obs["delete/failed"])
}
