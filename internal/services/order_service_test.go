package services_test

import (
	"context"
	"errors"
	"testing"

	"vapordepot/internal/domain"
	"vapordepot/internal/repos"
	"vapordepot/internal/services"
)

type stubOrderCreator struct {
	remoteID string
	err      error
	created  []domain.OrderItem
}

func (s *stubOrderCreator) CreateOrder(ctx context.Context, items []domain.OrderItem) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	s.created = items
	return s.remoteID, nil
}

func newOrderService(t *testing.T, counts map[string]int, creator *stubOrderCreator) (*services.OrderService, *repos.OrderRepo) {
	t.Helper()
	db := testDB(t)
	remote := &stubRemote{counts: counts}
	orders := repos.NewOrderRepo(db)
	svc := services.NewOrderService(
		services.NewStockService(remote),
		orders,
		creator,
		testLayer(t, db, remote),
	)
	return svc, orders
}

func checkoutInput() services.CheckoutInput {
	return services.CheckoutInput{
		UserID: "user-1",
		Items: []services.CheckoutItem{
			{CatalogObjectID: "ITM-V1", VariationID: "V1", Name: "Elf Bar", UnitPrice: 1599, Quantity: 2},
			{CatalogObjectID: "ITM-V2", VariationID: "V2", Name: "Ghost Bar", UnitPrice: 1799, Quantity: 1},
		},
		ShippingAddress: &services.ShippingAddress{FullName: "Pat Doe", Line1: "1 Main St", City: "Laurel", State: "MD", PostalCode: "20707", Country: "US"},
		PaymentMethod:   "card",
	}
}

func TestCheckout_CreatesPendingOrder(t *testing.T) {
	svc, orders := newOrderService(t, map[string]int{"V1": 5, "V2": 3}, &stubOrderCreator{})

	order, err := svc.Checkout(context.Background(), checkoutInput())
	if err != nil {
		t.Fatal(err)
	}
	if order.Status != domain.OrderPending {
		t.Fatalf("status = %q, want pending", order.Status)
	}
	if order.TotalAmount != 2*1599+1799 {
		t.Fatalf("total = %d", order.TotalAmount)
	}
	if order.Currency != "USD" {
		t.Fatalf("currency = %q", order.Currency)
	}

	// The order is persisted with its line item snapshot.
	stored, err := orders.Get(order.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(stored.Items) != 2 || stored.TotalAmount != order.TotalAmount {
		t.Fatalf("stored order: %+v", stored)
	}
}

func TestCheckout_RejectsInsufficientStock(t *testing.T) {
	svc, orders := newOrderService(t, map[string]int{"V1": 1, "V2": 3}, &stubOrderCreator{})

	_, err := svc.Checkout(context.Background(), checkoutInput())
	var stockErr *services.InsufficientStockError
	if !errors.As(err, &stockErr) {
		t.Fatalf("want InsufficientStockError, got %v", err)
	}
	if len(stockErr.Items) != 1 || stockErr.Items[0].VariationID != "V1" {
		t.Fatalf("shortfall detail: %+v", stockErr.Items)
	}
	if stockErr.Items[0].Requested != 2 || stockErr.Items[0].Available != 1 {
		t.Fatalf("shortfall detail: %+v", stockErr.Items[0])
	}

	// Nothing was written.
	if got, err := orders.ListLatest(10); err != nil || len(got) != 0 {
		t.Fatalf("orders after rejection = %d (err=%v)", len(got), err)
	}
}

func TestCheckout_MergesDuplicateLineItems(t *testing.T) {
	svc, orders := newOrderService(t, map[string]int{"V1": 5}, &stubOrderCreator{})
	in := services.CheckoutInput{
		UserID: "user-1",
		Items: []services.CheckoutItem{
			{CatalogObjectID: "ITM-V1", VariationID: "V1", Name: "Elf Bar", UnitPrice: 1599, Quantity: 1},
			{CatalogObjectID: "ITM-V1", VariationID: "V1", Name: "Elf Bar", UnitPrice: 1599, Quantity: 2},
		},
	}

	order, err := svc.Checkout(context.Background(), in)
	if err != nil {
		t.Fatal(err)
	}
	if order.TotalAmount != 3*1599 {
		t.Fatalf("total = %d, want %d", order.TotalAmount, 3*1599)
	}
	stored, err := orders.Get(order.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(stored.Items) != 1 {
		t.Fatalf("stored line items = %d, want 1 merged line", len(stored.Items))
	}
	if stored.Items[0].Quantity != 3 {
		t.Fatalf("merged quantity = %d, want 3", stored.Items[0].Quantity)
	}
}

func TestCheckout_GuardSeesCombinedDuplicateQuantity(t *testing.T) {
	// Two lines of 2 for a variation with 3 in stock: each line alone
	// would pass, the combined cart must not.
	svc, orders := newOrderService(t, map[string]int{"V1": 3}, &stubOrderCreator{})
	in := services.CheckoutInput{
		UserID: "user-1",
		Items: []services.CheckoutItem{
			{VariationID: "V1", Name: "Elf Bar", UnitPrice: 1599, Quantity: 2},
			{VariationID: "V1", Name: "Elf Bar", UnitPrice: 1599, Quantity: 2},
		},
	}

	_, err := svc.Checkout(context.Background(), in)
	var stockErr *services.InsufficientStockError
	if !errors.As(err, &stockErr) {
		t.Fatalf("want InsufficientStockError, got %v", err)
	}
	if stockErr.Items[0].Requested != 4 || stockErr.Items[0].Available != 3 {
		t.Fatalf("shortfall detail: %+v", stockErr.Items[0])
	}
	if got, err := orders.ListLatest(10); err != nil || len(got) != 0 {
		t.Fatalf("orders after rejection = %d (err=%v)", len(got), err)
	}
}

func TestCheckout_ValidatesLineItems(t *testing.T) {
	svc, _ := newOrderService(t, nil, &stubOrderCreator{})
	ctx := context.Background()

	if _, err := svc.Checkout(ctx, services.CheckoutInput{UserID: "u"}); err == nil {
		t.Fatal("want error for empty cart")
	}
	bad := checkoutInput()
	bad.Items[0].Quantity = 0
	if _, err := svc.Checkout(ctx, bad); err == nil {
		t.Fatal("want error for zero quantity")
	}
	bad = checkoutInput()
	bad.Items[0].VariationID = ""
	if _, err := svc.Checkout(ctx, bad); err == nil {
		t.Fatal("want error for missing variation id")
	}
}

func TestComplete_FulfillsAndRecordsRemoteID(t *testing.T) {
	creator := &stubOrderCreator{remoteID: "RMT777"}
	svc, orders := newOrderService(t, map[string]int{"V1": 5, "V2": 3}, creator)
	ctx := context.Background()

	order, err := svc.Checkout(ctx, checkoutInput())
	if err != nil {
		t.Fatal(err)
	}

	done, err := svc.Complete(ctx, order.ID)
	if err != nil {
		t.Fatal(err)
	}
	if done.Status != domain.OrderFulfilled || done.RemoteOrderID != "RMT777" {
		t.Fatalf("completed order: %+v", done)
	}
	if len(creator.created) != 2 {
		t.Fatalf("remote order line items = %d", len(creator.created))
	}

	stored, err := orders.Get(order.ID)
	if err != nil {
		t.Fatal(err)
	}
	if stored.Status != domain.OrderFulfilled || stored.RemoteOrderID != "RMT777" {
		t.Fatalf("stored order: %+v", stored)
	}

	// Completing twice is rejected.
	if _, err := svc.Complete(ctx, order.ID); !errors.Is(err, services.ErrOrderNotPending) {
		t.Fatalf("want ErrOrderNotPending, got %v", err)
	}
}

func TestComplete_RemoteFailureLeavesOrderPending(t *testing.T) {
	boom := errors.New("remote create failed")
	creator := &stubOrderCreator{err: boom}
	svc, orders := newOrderService(t, map[string]int{"V1": 5, "V2": 3}, creator)
	ctx := context.Background()

	order, err := svc.Checkout(ctx, checkoutInput())
	if err != nil {
		t.Fatal(err)
	}
	if _, err := svc.Complete(ctx, order.ID); !errors.Is(err, boom) {
		t.Fatalf("want remote error, got %v", err)
	}
	stored, err := orders.Get(order.ID)
	if err != nil {
		t.Fatal(err)
	}
	if stored.Status != domain.OrderPending {
		t.Fatalf("status after failed complete = %q, want pending", stored.Status)
	}
}
