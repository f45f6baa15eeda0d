package services_test

import (
	"context"
	"fmt"
	"testing"

	"vapordepot/internal/domain"
	"vapordepot/internal/services"
)

func newListingService(t *testing.T, items []domain.InventoryRecord) *services.ListingService {
	t.Helper()
	remote := &stubRemote{items: items}
	return services.NewListingService(testLayer(t, testDB(t), remote))
}

func TestProducts_FiltersZeroStockAndSorts(t *testing.T) {
	svc := newListingService(t, []domain.InventoryRecord{
		record("V3", "Banana Ice", 1599, 5),
		record("V1", "Apple Mod", 2999, 2),
		record("V2", "Banana Ice", 1599, 3), // same name, lower id sorts first
		record("V4", "Sold Out Bar", 999, 0),
	})

	page, err := svc.Products(context.Background(), "", "", 1, 20)
	if err != nil {
		t.Fatal(err)
	}
	if page.Total != 3 {
		t.Fatalf("total = %d, want 3 (zero-stock excluded)", page.Total)
	}
	ids := make([]string, len(page.Items))
	for i, it := range page.Items {
		ids[i] = it.VariationID
	}
	want := []string{"V1", "V2", "V3"}
	for i := range want {
		if ids[i] != want[i] {
			t.Fatalf("sort order = %v, want %v", ids, want)
		}
	}
}

func TestProducts_SearchAndCategoryFilters(t *testing.T) {
	svc := newListingService(t, []domain.InventoryRecord{
		record("V1", "Elf Bar BC5000", 1599, 5),
		record("V2", "Naked 100 E-Juice", 2199, 3),
		record("V3", "Smok Box Mod", 4999, 2),
	})

	page, err := svc.Products(context.Background(), "ELF", "", 1, 20)
	if err != nil {
		t.Fatal(err)
	}
	if page.Total != 1 || page.Items[0].VariationID != "V1" {
		t.Fatalf("search filter: %+v", page)
	}

	// Category filter matches the inferred label.
	page, err = svc.Products(context.Background(), "", "Devices", 1, 20)
	if err != nil {
		t.Fatal(err)
	}
	if page.Total != 1 || page.Items[0].VariationID != "V3" {
		t.Fatalf("category filter: %+v", page)
	}
}

func TestProducts_PaginationBounds(t *testing.T) {
	items := make([]domain.InventoryRecord, 45)
	for i := range items {
		items[i] = record(fmt.Sprintf("V%03d", i), fmt.Sprintf("Item %03d", i), 1000, 1)
	}
	svc := newListingService(t, items)
	ctx := context.Background()

	page, err := svc.Products(ctx, "", "", 1, 20)
	if err != nil {
		t.Fatal(err)
	}
	if page.Total != 45 || page.TotalPages != 3 || len(page.Items) != 20 {
		t.Fatalf("page 1: total=%d totalPages=%d items=%d", page.Total, page.TotalPages, len(page.Items))
	}

	page, _ = svc.Products(ctx, "", "", 3, 20)
	if len(page.Items) != 5 {
		t.Fatalf("last page items = %d, want 5", len(page.Items))
	}

	// Past the end: empty items, totals intact.
	page, _ = svc.Products(ctx, "", "", 4, 20)
	if len(page.Items) != 0 || page.Total != 45 || page.TotalPages != 3 {
		t.Fatalf("overflow page: %+v", page)
	}

	// Out-of-range inputs fall back to defaults.
	page, _ = svc.Products(ctx, "", "", 0, 0)
	if len(page.Items) != 20 {
		t.Fatalf("defaulted page size = %d, want 20", len(page.Items))
	}
	page, _ = svc.Products(ctx, "", "", 1, 101)
	if len(page.Items) != 20 {
		t.Fatalf("oversized page size not clamped to default: %d", len(page.Items))
	}
}

func TestProduct_DetailHidesZeroStock(t *testing.T) {
	svc := newListingService(t, []domain.InventoryRecord{
		record("V1", "Elf Bar", 1599, 5),
		record("V2", "Sold Out Bar", 999, 0),
	})
	ctx := context.Background()

	rec, found, err := svc.Product(ctx, "V1")
	if err != nil || !found {
		t.Fatalf("found=%v err=%v", found, err)
	}
	if rec.Name != "Elf Bar" {
		t.Fatalf("record = %+v", rec)
	}
	if _, found, _ := svc.Product(ctx, "V2"); found {
		t.Fatal("zero-stock record must not be served")
	}
	if _, found, _ := svc.Product(ctx, "V404"); found {
		t.Fatal("unknown id must not be found")
	}
}

func TestCategories_FromSnapshot(t *testing.T) {
	svc := newListingService(t, []domain.InventoryRecord{
		record("V1", "Elf Bar", 1599, 5),       // Disposable
		record("V2", "Replacement Coil", 899, 3), // Accessories, hidden from facets
	})
	facets, err := svc.Categories(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(facets) != 1 || facets[0].Name != "Disposable" {
		t.Fatalf("facets = %+v", facets)
	}
}
