package ingest

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flowsmith/mcp-node-catalog-go/internal/apptype"
	"github.com/flowsmith/mcp-node-catalog-go/internal/catalog"
	"github.com/flowsmith/mcp-node-catalog-go/internal/logger"
	"github.com/flowsmith/mcp-node-catalog-go/internal/snapshot"
)

type stubSource struct {
	entities []apptype.CatalogEntity
	revision string
	changed  bool
	err      error
}

func (s *stubSource) Fetch(context.Context, bool) ([]apptype.CatalogEntity, string, bool, error) {
	if s.err != nil {
		return nil, "", false, s.err
	}
	return s.entities, s.revision, s.changed, nil
}

type stubSnaps struct {
	revision string
	entities []apptype.CatalogEntity
	saveErr  error
	saved    int
}

func (s *stubSnaps) Save(_ context.Context, revision string, entities []apptype.CatalogEntity) error {
	if s.saveErr != nil {
		return s.saveErr
	}
	s.revision = revision
	s.entities = entities
	s.saved++
	return nil
}

func (s *stubSnaps) Load(context.Context) (string, []apptype.CatalogEntity, error) {
	if s.entities == nil {
		return "", nil, snapshot.ErrNoSnapshot
	}
	return s.revision, s.entities, nil
}

func sampleEntities() []apptype.CatalogEntity {
	return []apptype.CatalogEntity{
		{Identifier: "slack", DisplayName: "Slack", Category: "Communication"},
		{Identifier: "set", DisplayName: "Set", Category: "Core"},
	}
}

func TestRefreshLoadsAndPersists(t *testing.T) {
	store := catalog.NewStore()
	snaps := &stubSnaps{}
	src := &stubSource{entities: sampleEntities(), revision: "rev-1", changed: true}
	r := NewRefresher(src, store, snaps, logger.Nop())

	res, err := r.Refresh(context.Background(), false)
	require.NoError(t, err)
	assert.True(t, res.Refreshed)
	assert.Equal(t, "rev-1", res.Revision)
	assert.Equal(t, 2, res.NodeCount)
	assert.Equal(t, 2, store.Len())
	assert.Equal(t, 1, snaps.saved)
	assert.Equal(t, "rev-1", snaps.revision)
}

func TestRefreshUnchangedIsNoop(t *testing.T) {
	store := catalog.NewStore()
	require.NoError(t, store.Load(sampleEntities()))
	src := &stubSource{entities: sampleEntities(), revision: "rev-1", changed: false}
	r := NewRefresher(src, store, nil, logger.Nop())

	res, err := r.Refresh(context.Background(), false)
	require.NoError(t, err)
	assert.False(t, res.Refreshed)
	assert.Equal(t, 2, res.NodeCount)
}

func TestRefreshFallsBackToLiveStore(t *testing.T) {
	store := catalog.NewStore()
	require.NoError(t, store.Load(sampleEntities()))
	src := &stubSource{err: errors.New("source down")}
	r := NewRefresher(src, store, nil, logger.Nop())

	res, err := r.Refresh(context.Background(), false)
	require.NoError(t, err)
	assert.True(t, res.FellBack)
	assert.Equal(t, 2, res.NodeCount)
	// The previous collection is untouched.
	assert.Equal(t, 2, store.Len())
}

func TestRefreshFallsBackToPersistedSnapshot(t *testing.T) {
	store := catalog.NewStore()
	snaps := &stubSnaps{revision: "rev-0", entities: sampleEntities()}
	src := &stubSource{err: errors.New("source down")}
	r := NewRefresher(src, store, snaps, logger.Nop())

	res, err := r.Refresh(context.Background(), false)
	require.NoError(t, err)
	assert.True(t, res.FellBack)
	assert.Equal(t, "rev-0", res.Revision)
	assert.Equal(t, 2, store.Len())
}

func TestRefreshUnavailableWithoutAnySnapshot(t *testing.T) {
	store := catalog.NewStore()
	src := &stubSource{err: errors.New("source down")}
	r := NewRefresher(src, store, &stubSnaps{}, logger.Nop())

	_, err := r.Refresh(context.Background(), false)
	var unavailable *RefreshUnavailableError
	require.ErrorAs(t, err, &unavailable)
	assert.ErrorContains(t, err, "source down")
	assert.False(t, store.Loaded())
}

func TestRefreshSurvivesPersistenceFailure(t *testing.T) {
	store := catalog.NewStore()
	snaps := &stubSnaps{saveErr: errors.New("disk full")}
	src := &stubSource{entities: sampleEntities(), revision: "rev-1", changed: true}
	r := NewRefresher(src, store, snaps, logger.Nop())

	res, err := r.Refresh(context.Background(), false)
	require.NoError(t, err)
	assert.True(t, res.Refreshed)
	assert.Equal(t, 2, store.Len())
}

func TestBootstrapRestoresSnapshot(t *testing.T) {
	store := catalog.NewStore()
	snaps := &stubSnaps{revision: "rev-0", entities: sampleEntities()}
	r := NewRefresher(&stubSource{}, store, snaps, logger.Nop())

	require.NoError(t, r.Bootstrap(context.Background()))
	assert.Equal(t, 2, store.Len())
}

func TestBootstrapNoSnapshotIsFine(t *testing.T) {
	store := catalog.NewStore()
	r := NewRefresher(&stubSource{}, store, &stubSnaps{}, logger.Nop())

	require.NoError(t, r.Bootstrap(context.Background()))
	assert.False(t, store.Loaded())
}

func TestBootstrapSkipsLoadedStore(t *testing.T) {
	store := catalog.NewStore()
	require.NoError(t, store.Load(sampleEntities()))
	snaps := &stubSnaps{revision: "rev-9", entities: []apptype.CatalogEntity{
		{Identifier: "other", DisplayName: "Other"},
	}}
	r := NewRefresher(&stubSource{}, store, snaps, logger.Nop())

	require.NoError(t, r.Bootstrap(context.Background()))
	assert.Equal(t, 2, store.Len())
}
