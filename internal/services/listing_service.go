package services

import (
	"context"
	"sort"
	"strings"

	"vapordepot/internal/cache"
	"vapordepot/internal/catalog"
	"vapordepot/internal/domain"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

type ListingService struct {
	Cache *cache.Layer
}

func NewListingService(c *cache.Layer) *ListingService { return &ListingService{Cache: c} }

type ListingPage struct {
	Items      []domain.InventoryRecord `json:"items"`
	Total      int                      `json:"total"`
	TotalPages int                      `json:"totalPages"`
}

// Products serves the shopper-facing listing: in-stock records only,
// optional substring/category filters, sorted by (name, variationId),
// paginated.
func (s *ListingService) Products(ctx context.Context, q, category string, page, pageSize int) (ListingPage, error) {
	snap, err := s.Cache.Get(ctx)
	if err != nil {
		return ListingPage{}, err
	}

	q = strings.ToLower(strings.TrimSpace(q))
	filtered := make([]domain.InventoryRecord, 0, len(snap.Items))
	for _, it := range snap.Items {
		if it.AvailableQuantity <= 0 {
			continue
		}
		if q != "" && !strings.Contains(strings.ToLower(it.Name), q) {
			continue
		}
		if category != "" && catalog.Label(it) != category {
			continue
		}
		filtered = append(filtered, it)
	}

	sort.Slice(filtered, func(i, j int) bool {
		if filtered[i].Name != filtered[j].Name {
			return filtered[i].Name < filtered[j].Name
		}
		return filtered[i].VariationID < filtered[j].VariationID
	})

	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > maxPageSize {
		pageSize = defaultPageSize
	}

	total := len(filtered)
	totalPages := (total + pageSize - 1) / pageSize

	start := (page - 1) * pageSize
	if start >= total {
		return ListingPage{Items: []domain.InventoryRecord{}, Total: total, TotalPages: totalPages}, nil
	}
	end := start + pageSize
	if end > total {
		end = total
	}
	return ListingPage{Items: filtered[start:end], Total: total, TotalPages: totalPages}, nil
}

// Product returns a single in-stock record by variation id.
func (s *ListingService) Product(ctx context.Context, variationID string) (domain.InventoryRecord, bool, error) {
	snap, err := s.Cache.Get(ctx)
	if err != nil {
		return domain.InventoryRecord{}, false, err
	}
	for _, it := range snap.Items {
		if it.VariationID == variationID && it.AvailableQuantity > 0 {
			return it, true, nil
		}
	}
	return domain.InventoryRecord{}, false, nil
}

// Categories returns the navigation facet list from the active snapshot.
func (s *ListingService) Categories(ctx context.Context) ([]domain.CategoryFacet, error) {
	snap, err := s.Cache.Get(ctx)
	if err != nil {
		return nil, err
	}
	return snap.Categories, nil
}
