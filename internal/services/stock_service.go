package services

import (
	"context"
	"fmt"
)

// CountFetcher returns live stock per variation id from the remote
// source of truth.
type CountFetcher interface {
	FetchCounts(ctx context.Context, variationIDs []string) (map[string]int, error)
}

type StockRequest struct {
	VariationID string `json:"variationId"`
	Quantity    int    `json:"quantity"`
}

type InsufficientItem struct {
	VariationID string `json:"variationId"`
	Requested   int    `json:"requested"`
	Available   int    `json:"available"`
}

type StockCheckResult struct {
	OK           bool               `json:"ok"`
	Insufficient []InsufficientItem `json:"insufficient"`
}

// InsufficientStockError is a business rejection, not a system fault.
type InsufficientStockError struct {
	Items []InsufficientItem
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for %d item(s)", len(e.Items))
}

// StockService validates requested quantities against live remote
// counts before an order may be created. It always bypasses the cache:
// checkout must not act on a stale snapshot.
type StockService struct {
	Remote CountFetcher
}

func NewStockService(remote CountFetcher) *StockService { return &StockService{Remote: remote} }

// Check is a pre-check only: it holds no reservation, so a concurrent
// checkout can still win the last unit between check and order creation.
func (s *StockService) Check(ctx context.Context, requested []StockRequest) (StockCheckResult, error) {
	ids := make([]string, 0, len(requested))
	for _, r := range requested {
		ids = append(ids, r.VariationID)
	}

	counts, err := s.Remote.FetchCounts(ctx, ids)
	if err != nil {
		return StockCheckResult{}, err
	}

	var insufficient []InsufficientItem
	for _, r := range requested {
		available := counts[r.VariationID] // missing id means zero available
		if r.Quantity > available {
			insufficient = append(insufficient, InsufficientItem{
				VariationID: r.VariationID,
				Requested:   r.Quantity,
				Available:   available,
			})
		}
	}
	return StockCheckResult{OK: len(insufficient) == 0, Insufficient: insufficient}, nil
}
