package catalog

import (
	"sort"
	"strings"

	"vapordepot/internal/domain"
)

// FallbackCategory is the broad default bucket for names no rule matches.
const FallbackCategory = "E-Juice"

// hiddenFacet is excluded from the shopper-facing category list.
const hiddenFacet = "Accessories"

type rule struct {
	category string
	keywords []string
}

// Table order is the precedence order: first category whose keyword
// matches wins.
var rules = []rule{
	{"Disposable", []string{"disposable", "elf", "puff", "iget", "zyn", "vape pen", "turbo"}},
	{"E-Juice", []string{"e-juice", "ejuice", "e juice", "eliquid", "e-liquid", "liquid", "juice", "vape juice", "salt nic", "freebase"}},
	{"CPS", []string{"cps"}},
	{"Devices", []string{"mod", "pod", "battery", "device", "box mod", "tank"}},
	{hiddenFacet, []string{"coil", "glass", "case", "cable", "charger", "atomizer", "wick"}},
}

// Infer maps an item name to a coarse category label. It is total and
// deterministic: literal prefixes win over the keyword scan, and names
// matching no rule land in FallbackCategory.
func Infer(name string) string {
	lower := strings.ToLower(strings.TrimSpace(name))

	if strings.HasPrefix(lower, "cps") {
		return "CPS"
	}
	if strings.HasPrefix(lower, "disp") {
		return "Disposable"
	}

	for _, r := range rules {
		for _, kw := range r.keywords {
			if strings.Contains(lower, kw) {
				return r.category
			}
		}
	}
	return FallbackCategory
}

// Label resolves a record's display category: the stored category name
// when present, otherwise inferred from the item name.
func Label(rec domain.InventoryRecord) string {
	if rec.CategoryName != "" {
		return rec.CategoryName
	}
	return Infer(rec.Name)
}

// Facets builds the shopper-facing category list from a set of records:
// distinct labels, sorted, with the accessories bucket left out of
// navigation.
func Facets(items []domain.InventoryRecord) []domain.CategoryFacet {
	seen := map[string]bool{}
	for _, it := range items {
		name := Label(it)
		if name == "" || name == hiddenFacet {
			continue
		}
		seen[name] = true
	}

	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	sort.Strings(names)

	facets := make([]domain.CategoryFacet, 0, len(names))
	for _, name := range names {
		facets = append(facets, domain.CategoryFacet{Name: name})
	}
	return facets
}
