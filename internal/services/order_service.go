package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"vapordepot/internal/cache"
	"vapordepot/internal/domain"
	"vapordepot/internal/repos"
)

var ErrOrderNotPending = errors.New("order is not pending")

// RemoteOrderCreator creates the order at the remote commerce platform.
type RemoteOrderCreator interface {
	CreateOrder(ctx context.Context, items []domain.OrderItem) (string, error)
}

type ShippingAddress struct {
	FullName   string `json:"fullName"`
	Line1      string `json:"line1"`
	City       string `json:"city"`
	State      string `json:"state"`
	PostalCode string `json:"postalCode"`
	Country    string `json:"country"`
}

type CheckoutItem struct {
	CatalogObjectID string `json:"catalogObjectId"`
	VariationID     string `json:"variationId"`
	Name            string `json:"name"`
	SKU             string `json:"sku"`
	UnitPrice       int64  `json:"unitPrice"`
	Currency        string `json:"currency"`
	Quantity        int    `json:"quantity"`
}

type CheckoutInput struct {
	UserID          string
	Items           []CheckoutItem
	ShippingAddress *ShippingAddress
	PaymentMethod   string
	Currency        string
}

type OrderService struct {
	Stock  *StockService
	Orders *repos.OrderRepo
	Remote RemoteOrderCreator
	Cache  *cache.Layer
}

func NewOrderService(stock *StockService, orders *repos.OrderRepo, remote RemoteOrderCreator, c *cache.Layer) *OrderService {
	return &OrderService{Stock: stock, Orders: orders, Remote: remote, Cache: c}
}

// Checkout runs the stock guard against live remote counts, then
// creates a pending order snapshotting the line items as purchased.
// The guard and the order write are not atomic; a lost race against a
// concurrent checkout surfaces later, at fulfillment.
func (s *OrderService) Checkout(ctx context.Context, in CheckoutInput) (domain.Order, error) {
	if len(in.Items) == 0 {
		return domain.Order{}, errors.New("no items to check out")
	}

	// Duplicate variation ids in one cart are merged into a single line:
	// order_items is keyed by (order_id, variation_id), and the stock
	// guard must see the combined quantity, not each line in isolation.
	merged := make([]CheckoutItem, 0, len(in.Items))
	lineIdx := make(map[string]int, len(in.Items))
	for _, it := range in.Items {
		if it.VariationID == "" || it.Quantity < 1 {
			return domain.Order{}, fmt.Errorf("invalid line item %q", it.VariationID)
		}
		if i, ok := lineIdx[it.VariationID]; ok {
			merged[i].Quantity += it.Quantity
			continue
		}
		lineIdx[it.VariationID] = len(merged)
		merged = append(merged, it)
	}

	requested := make([]StockRequest, 0, len(merged))
	for _, it := range merged {
		requested = append(requested, StockRequest{VariationID: it.VariationID, Quantity: it.Quantity})
	}

	check, err := s.Stock.Check(ctx, requested)
	if err != nil {
		return domain.Order{}, err
	}
	if !check.OK {
		return domain.Order{}, &InsufficientStockError{Items: check.Insufficient}
	}

	currency := in.Currency
	if currency == "" {
		currency = "USD"
	}

	var total int64
	items := make([]domain.OrderItem, 0, len(merged))
	for _, it := range merged {
		total += it.UnitPrice * int64(it.Quantity)
		items = append(items, domain.OrderItem{
			CatalogObjectID: it.CatalogObjectID,
			VariationID:     it.VariationID,
			Name:            it.Name,
			SKU:             it.SKU,
			UnitPrice:       it.UnitPrice,
			Currency:        currency,
			Quantity:        it.Quantity,
		})
	}

	order := domain.Order{
		ID:          uuid.NewString(),
		UserID:      in.UserID,
		Items:       items,
		TotalAmount: total,
		Currency:    currency,
		Status:      domain.OrderPending,
	}

	shippingJSON := ""
	if in.ShippingAddress != nil {
		b, _ := json.Marshal(in.ShippingAddress)
		shippingJSON = string(b)
	}
	if err := s.Orders.Create(order, shippingJSON, in.PaymentMethod); err != nil {
		return domain.Order{}, err
	}
	return order, nil
}

// Complete creates the order at the remote platform, records the remote
// order id, and marks the local order fulfilled. Not idempotent: a
// double call that fails between the remote create and the local update
// has no compensating transaction.
func (s *OrderService) Complete(ctx context.Context, orderID string) (domain.Order, error) {
	order, err := s.Orders.Get(orderID)
	if err != nil {
		return domain.Order{}, err
	}
	if order.Status != domain.OrderPending {
		return domain.Order{}, ErrOrderNotPending
	}

	remoteOrderID, err := s.Remote.CreateOrder(ctx, order.Items)
	if err != nil {
		return domain.Order{}, err
	}

	if err := s.Orders.SetFulfilled(order.ID, remoteOrderID); err != nil {
		return domain.Order{}, err
	}
	order.Status = domain.OrderFulfilled
	order.RemoteOrderID = remoteOrderID

	// Shoppers should see quantities reflecting the fulfilled order.
	s.Cache.Invalidate(ctx)
	return order, nil
}
