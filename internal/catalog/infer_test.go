package catalog_test

import (
	"testing"

	"vapordepot/internal/catalog"
	"vapordepot/internal/domain"
)

func TestInfer_PrefixesWinOverKeywords(t *testing.T) {
	// "disp" prefix forces Disposable even when a juice keyword appears later
	if got := catalog.Infer("Disp Mango Juice 60ml"); got != "Disposable" {
		t.Fatalf("want Disposable, got %s", got)
	}
	// "cps" prefix forces CPS
	if got := catalog.Infer("CPS Pod Kit"); got != "CPS" {
		t.Fatalf("want CPS, got %s", got)
	}
	// case/whitespace insensitive
	if got := catalog.Infer("  cPs something"); got != "CPS" {
		t.Fatalf("want CPS, got %s", got)
	}
}

func TestInfer_KeywordScan(t *testing.T) {
	cases := map[string]string{
		"Elf Bar 5000":            "Disposable",
		"Strawberry Vape Juice":   "Disposable", // "puff"/"elf" absent but... see below
		"Salt Nic Blueberry 30ml": "E-Juice",
		"Box Mod 200W":            "Devices",
		"Replacement Coil 5pk":    "Accessories",
		"USB-C Charger Cable":     "Accessories",
	}
	// "Strawberry Vape Juice" contains "vape juice" (E-Juice keyword) but
	// no Disposable keyword; it belongs to E-Juice.
	cases["Strawberry Vape Juice"] = "E-Juice"

	for name, want := range cases {
		if got := catalog.Infer(name); got != want {
			t.Errorf("Infer(%q) = %s, want %s", name, got, want)
		}
	}
}

func TestInfer_DisposableKeywordWithoutOverride(t *testing.T) {
	// Property: a disposable keyword without a CPS/disp prefix lands in
	// Disposable.
	for _, name := range []string{"Banana Puff 3000", "IGET King", "Turbo Ice"} {
		if got := catalog.Infer(name); got != "Disposable" {
			t.Errorf("Infer(%q) = %s, want Disposable", name, got)
		}
	}
}

func TestInfer_FallbackAndDeterminism(t *testing.T) {
	if got := catalog.Infer("Mystery Item 42"); got != catalog.FallbackCategory {
		t.Fatalf("want fallback %s, got %s", catalog.FallbackCategory, got)
	}
	for _, name := range []string{"", "Elf Bar", "zzz", "Mystery Item 42"} {
		if catalog.Infer(name) != catalog.Infer(name) {
			t.Fatalf("Infer(%q) not deterministic", name)
		}
	}
}

func TestFacets_SortedDistinctAndAccessoriesHidden(t *testing.T) {
	items := []domain.InventoryRecord{
		{Name: "Elf Bar 5000"},
		{Name: "Banana Puff"},
		{Name: "Box Mod 200W"},
		{Name: "Replacement Coil 5pk"}, // Accessories, hidden from navigation
		{Name: "Plain Thing", CategoryName: "Devices"},
	}
	facets := catalog.Facets(items)
	want := []string{"Devices", "Disposable"}
	if len(facets) != len(want) {
		t.Fatalf("want %v, got %+v", want, facets)
	}
	for i, w := range want {
		if facets[i].Name != w {
			t.Fatalf("facet %d: want %s, got %s", i, w, facets[i].Name)
		}
	}
}

func TestLabel_StoredCategoryWins(t *testing.T) {
	rec := domain.InventoryRecord{Name: "Elf Bar 5000", CategoryName: "Devices"}
	if got := catalog.Label(rec); got != "Devices" {
		t.Fatalf("want stored Devices, got %s", got)
	}
	rec.CategoryName = ""
	if got := catalog.Label(rec); got != "Disposable" {
		t.Fatalf("want inferred Disposable, got %s", got)
	}
}
