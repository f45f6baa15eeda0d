package domain

import "time"

type Money struct {
	Amount   int64  `json:"amount"` // minor currency units
	Currency string `json:"currency"`
}

// InventoryRecord is one purchasable variation of a catalog item.
// VariationID is the unique key across the persisted store.
type InventoryRecord struct {
	CatalogObjectID   string `json:"catalogObjectId"`
	VariationID       string `json:"variationId"`
	Name              string `json:"name"`
	SKU               string `json:"sku,omitempty"`
	PriceMoney        Money  `json:"priceMoney"`
	ImageURL          string `json:"imageUrl,omitempty"`
	AvailableQuantity int    `json:"availableQuantity"`
	CategoryName      string `json:"categoryName,omitempty"`
}

type CategoryFacet struct {
	Name string `json:"name"`
}

// CacheSnapshot is a point-in-time materialization of the catalog.
// Snapshots are superseded on populate, never mutated in place.
type CacheSnapshot struct {
	Items      []InventoryRecord `json:"items"`
	Categories []CategoryFacet   `json:"categories"`
	FetchedAt  time.Time         `json:"fetchedAt"`
	ExpiresAt  time.Time         `json:"expiresAt"`
}

// Valid reports whether the snapshot is still within its TTL.
func (s *CacheSnapshot) Valid(now time.Time) bool {
	return s != nil && now.Before(s.ExpiresAt)
}

type OrderStatus string

const (
	OrderPending   OrderStatus = "pending"
	OrderPaid      OrderStatus = "paid"
	OrderFailed    OrderStatus = "failed"
	OrderCancelled OrderStatus = "cancelled"
	OrderFulfilled OrderStatus = "fulfilled"
)

// OrderItem snapshots a purchased line at order time, independent of
// later InventoryRecord changes.
type OrderItem struct {
	CatalogObjectID string `json:"catalogObjectId"`
	VariationID     string `json:"variationId"`
	Name            string `json:"name"`
	SKU             string `json:"sku,omitempty"`
	UnitPrice       int64  `json:"unitPrice"` // minor units
	Currency        string `json:"currency"`
	Quantity        int    `json:"quantity"`
}

type Order struct {
	ID            string      `json:"id"`
	UserID        string      `json:"userId"`
	Items         []OrderItem `json:"items"`
	TotalAmount   int64       `json:"totalAmount"`
	Currency      string      `json:"currency"`
	Status        OrderStatus `json:"status"`
	RemoteOrderID string      `json:"remoteOrderId,omitempty"`
	CreatedAt     string      `json:"createdAt"`
}

type User struct {
	ID    string `db:"id"`
	Email string `db:"email"`
	Name  string `db:"name"`
	Hash  string `db:"password_hash"`
	DOB   string `db:"dob"`
	Role  string `db:"role"`
}
