package ingest

import (
	"context"
	"errors"
	"fmt"

	"github.com/flowsmith/mcp-node-catalog-go/internal/apptype"
	"github.com/flowsmith/mcp-node-catalog-go/internal/catalog"
	"github.com/flowsmith/mcp-node-catalog-go/internal/logger"
	"github.com/flowsmith/mcp-node-catalog-go/internal/metrics"
	"github.com/flowsmith/mcp-node-catalog-go/internal/snapshot"
)

// RefreshUnavailableError indicates a total refresh failure with no prior
// snapshot to fall back to. When any snapshot exists, refresh falls back
// silently instead of surfacing this.
type RefreshUnavailableError struct {
	Err error
}

func (e *RefreshUnavailableError) Error() string {
	return fmt.Sprintf("catalog refresh unavailable: %v", e.Err)
}

func (e *RefreshUnavailableError) Unwrap() error { return e.Err }

// Source pulls catalog definitions from somewhere remote. Fetch reports
// changed=false when the remote revision matches the last seen one and the
// caller did not force.
type Source interface {
	Fetch(ctx context.Context, force bool) (entities []apptype.CatalogEntity, revision string, changed bool, err error)
}

// SnapshotStore persists the last good catalog snapshot.
type SnapshotStore interface {
	Save(ctx context.Context, revision string, entities []apptype.CatalogEntity) error
	Load(ctx context.Context) (revision string, entities []apptype.CatalogEntity, err error)
}

// Refresher drives the out-of-band catalog refresh: fetch, parse, swap the
// store, persist the snapshot. Readers never observe partial results; on
// total fetch failure the store keeps its previous collection.
type Refresher struct {
	source Source
	store  *catalog.Store
	snaps  SnapshotStore // optional
	log    logger.Logger
}

// NewRefresher creates a Refresher. snaps may be nil to disable
// persistence.
func NewRefresher(source Source, store *catalog.Store, snaps SnapshotStore, log logger.Logger) *Refresher {
	return &Refresher{source: source, store: store, snaps: snaps, log: log}
}

// Bootstrap loads the persisted snapshot into an empty store, if one
// exists. Missing persistence or an absent snapshot is not an error.
func (r *Refresher) Bootstrap(ctx context.Context) error {
	return RestoreSnapshot(ctx, r.store, r.snaps, r.log)
}

// RestoreSnapshot loads a persisted snapshot into an empty store. It is a
// no-op when snaps is nil, the store is already populated, or nothing has
// been saved yet. Callers without a remote source use this directly.
func RestoreSnapshot(ctx context.Context, store *catalog.Store, snaps SnapshotStore, log logger.Logger) error {
	if snaps == nil || store.Loaded() {
		return nil
	}
	revision, entities, err := snaps.Load(ctx)
	if errors.Is(err, snapshot.ErrNoSnapshot) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("load persisted snapshot: %w", err)
	}
	if err := store.Load(entities); err != nil {
		return fmt.Errorf("restore persisted snapshot: %w", err)
	}
	metrics.Default().ObserveCatalogSize(store.Len())
	log.Info("catalog restored from snapshot",
		logger.String("revision", revision), logger.Int("nodes", len(entities)))
	return nil
}

// Refresh performs one full refresh pass. On fetch failure it falls back
// to the last good snapshot (the live store first, then persistence) and
// returns RefreshUnavailableError only when no snapshot exists anywhere.
func (r *Refresher) Refresh(ctx context.Context, force bool) (apptype.RefreshResult, error) {
	done := metrics.TimeOp("refresh")
	var success bool
	defer func() { done(success) }()

	entities, revision, changed, err := r.source.Fetch(ctx, force)
	if err != nil {
		return r.fallback(ctx, err)
	}

	if !changed && r.store.Loaded() {
		success = true
		return apptype.RefreshResult{Refreshed: false, Revision: revision, NodeCount: r.store.Len()}, nil
	}

	if err := r.store.Load(entities); err != nil {
		return apptype.RefreshResult{}, fmt.Errorf("load refreshed catalog: %w", err)
	}
	metrics.Default().ObserveCatalogSize(r.store.Len())
	if r.snaps != nil {
		if err := r.snaps.Save(ctx, revision, entities); err != nil {
			// The live store already holds the new data; a persistence
			// failure only degrades restart fallback.
			r.log.Warn("failed to persist catalog snapshot", logger.Error(err))
		}
	}
	r.log.Info("catalog refreshed",
		logger.String("revision", revision), logger.Int("nodes", len(entities)))
	success = true
	return apptype.RefreshResult{Refreshed: true, Revision: revision, NodeCount: len(entities)}, nil
}

func (r *Refresher) fallback(ctx context.Context, cause error) (apptype.RefreshResult, error) {
	if r.store.Loaded() {
		r.log.Warn("catalog refresh failed, keeping current snapshot", logger.Error(cause))
		return apptype.RefreshResult{FellBack: true, NodeCount: r.store.Len()}, nil
	}
	if r.snaps != nil {
		revision, entities, err := r.snaps.Load(ctx)
		if err == nil {
			if lerr := r.store.Load(entities); lerr == nil {
				metrics.Default().ObserveCatalogSize(r.store.Len())
				r.log.Warn("catalog refresh failed, restored persisted snapshot",
					logger.String("revision", revision), logger.Error(cause))
				return apptype.RefreshResult{FellBack: true, Revision: revision, NodeCount: len(entities)}, nil
			}
		}
	}
	return apptype.RefreshResult{}, &RefreshUnavailableError{Err: cause}
}
