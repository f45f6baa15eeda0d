package cache

import (
	"context"
	"log"
	"time"

	"golang.org/x/sync/singleflight"

	"vapordepot/internal/catalog"
	"vapordepot/internal/domain"
)

// CatalogStore is the authoritative persisted catalog. Once non-empty
// it is the source of truth and supersedes the time-based tiers.
type CatalogStore interface {
	Count() (int, error)
	All() ([]domain.InventoryRecord, error)
}

// SnapshotStore is a durable TTL-cache tier shared across instances.
type SnapshotStore interface {
	Get(ctx context.Context) (*domain.CacheSnapshot, error)
	Set(ctx context.Context, snap *domain.CacheSnapshot) error
	Clear(ctx context.Context) error
}

// RemoteFetcher is the remote catalog fallback.
type RemoteFetcher interface {
	FetchAll(ctx context.Context) ([]domain.InventoryRecord, error)
}

// Layer is the unified read path for catalog data. Get consults, in
// order: the authoritative store (non-empty wins, no TTL), the durable
// snapshot tier, the process-local snapshot tier, and finally the
// remote API, writing the fresh snapshot through the cache tiers.
type Layer struct {
	Store   CatalogStore
	Durable SnapshotStore // may be nil when no durable tier is configured
	Local   *LocalSnapshot
	Remote  RemoteFetcher
	TTL     time.Duration

	// Now is the clock; replaceable in tests.
	Now func() time.Time

	group singleflight.Group
}

func NewLayer(store CatalogStore, durable SnapshotStore, remote RemoteFetcher, ttl time.Duration) *Layer {
	return &Layer{
		Store:   store,
		Durable: durable,
		Local:   NewLocalSnapshot(),
		Remote:  remote,
		TTL:     ttl,
		Now:     time.Now,
	}
}

// Get returns the active snapshot, first hit wins across the tiers.
func (l *Layer) Get(ctx context.Context) (*domain.CacheSnapshot, error) {
	// 1. Authoritative store: non-empty is the only freshness signal.
	if n, err := l.Store.Count(); err == nil && n > 0 {
		records, err := l.Store.All()
		if err != nil {
			return nil, err
		}
		return l.snapshot(records), nil
	}

	now := l.Now()

	// 2. Durable TTL tier.
	if l.Durable != nil {
		if snap, err := l.Durable.Get(ctx); err == nil && snap.Valid(now) {
			l.Local.Set(snap)
			return snap, nil
		}
	}

	// 3. Process-local TTL tier.
	if snap := l.Local.Get(now); snap != nil {
		return snap, nil
	}

	// 4. Remote fallback. Concurrent cold reads in this process collapse
	// into one in-flight fetch; every caller gets the same snapshot.
	v, err, _ := l.group.Do(snapshotKey, func() (any, error) {
		items, err := l.Remote.FetchAll(ctx)
		if err != nil {
			return nil, err
		}
		return l.Populate(ctx, items), nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*domain.CacheSnapshot), nil
}

// Populate computes category facets and commits a new snapshot to the
// writable tiers. The previous snapshot is superseded, not mutated.
func (l *Layer) Populate(ctx context.Context, items []domain.InventoryRecord) *domain.CacheSnapshot {
	snap := l.snapshot(items)
	l.Local.Set(snap)
	if l.Durable != nil {
		if err := l.Durable.Set(ctx, snap); err != nil {
			log.Printf("[cache] durable tier write failed: %v", err)
		}
	}
	return snap
}

// Invalidate forces the next Get to re-derive, typically from the
// freshly updated authoritative store.
func (l *Layer) Invalidate(ctx context.Context) {
	l.Local.Clear()
	if l.Durable != nil {
		if err := l.Durable.Clear(ctx); err != nil {
			log.Printf("[cache] durable tier clear failed: %v", err)
		}
	}
}

func (l *Layer) snapshot(items []domain.InventoryRecord) *domain.CacheSnapshot {
	now := l.Now()
	return &domain.CacheSnapshot{
		Items:      items,
		Categories: catalog.Facets(items),
		FetchedAt:  now,
		ExpiresAt:  now.Add(l.TTL),
	}
}
