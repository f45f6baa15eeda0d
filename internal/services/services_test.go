package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"

	"vapordepot/internal/cache"
	"vapordepot/internal/domain"
	"vapordepot/internal/repos"
)

func testDB(t *testing.T) *sqlx.DB {
	t.Helper()
	db, err := repos.OpenDB(":memory:")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// stubRemote serves canned catalog records and stock counts.
type stubRemote struct {
	items  []domain.InventoryRecord
	counts map[string]int
	err    error
}

func (s *stubRemote) FetchAll(ctx context.Context) ([]domain.InventoryRecord, error) {
	return s.items, s.err
}

func (s *stubRemote) FetchCounts(ctx context.Context, variationIDs []string) (map[string]int, error) {
	if s.err != nil {
		return nil, s.err
	}
	counts := map[string]int{}
	for _, id := range variationIDs {
		if n, ok := s.counts[id]; ok {
			counts[id] = n
		}
	}
	return counts, nil
}

func testLayer(t *testing.T, db *sqlx.DB, remote cache.RemoteFetcher) *cache.Layer {
	t.Helper()
	return cache.NewLayer(repos.NewProductRepo(db), nil, remote, 30*time.Minute)
}

func record(id, name string, price int64, qty int) domain.InventoryRecord {
	return domain.InventoryRecord{
		CatalogObjectID:   "ITM-" + id,
		VariationID:       id,
		Name:              name,
		SKU:               "SKU-" + id,
		PriceMoney:        domain.Money{Amount: price, Currency: "USD"},
		AvailableQuantity: qty,
	}
}
