package repos

import (
	"github.com/jmoiron/sqlx"

	"vapordepot/internal/domain"
)

type OrderRepo struct{ db *sqlx.DB }

func NewOrderRepo(db *sqlx.DB) *OrderRepo { return &OrderRepo{db: db} }

type orderRow struct {
	ID            string `db:"id"`
	UserID        string `db:"user_id"`
	TotalAmount   int64  `db:"total_amount"`
	Currency      string `db:"currency"`
	Status        string `db:"status"`
	RemoteOrderID string `db:"remote_order_id"`
	CreatedAt     string `db:"created_at"`
}

type orderItemRow struct {
	CatalogObjectID string `db:"catalog_object_id"`
	VariationID     string `db:"variation_id"`
	Name            string `db:"name"`
	SKU             string `db:"sku"`
	UnitPrice       int64  `db:"unit_price"`
	Currency        string `db:"currency"`
	Qty             int    `db:"qty"`
}

func (r orderRow) toDomain(items []domain.OrderItem) domain.Order {
	return domain.Order{
		ID:            r.ID,
		UserID:        r.UserID,
		Items:         items,
		TotalAmount:   r.TotalAmount,
		Currency:      r.Currency,
		Status:        domain.OrderStatus(r.Status),
		RemoteOrderID: r.RemoteOrderID,
		CreatedAt:     r.CreatedAt,
	}
}

// Create inserts the order header and its line items in one transaction.
func (r *OrderRepo) Create(o domain.Order, shippingJSON, paymentMethod string) error {
	tx, err := r.db.Beginx()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.Exec(`
		INSERT INTO orders(id, user_id, total_amount, currency, status, shipping_json, payment_method)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, o.ID, o.UserID, o.TotalAmount, o.Currency, string(o.Status), shippingJSON, paymentMethod); err != nil {
		return err
	}
	for _, it := range o.Items {
		if _, err := tx.Exec(`
			INSERT INTO order_items(order_id, catalog_object_id, variation_id, name, sku, unit_price, currency, qty)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		`, o.ID, it.CatalogObjectID, it.VariationID, it.Name, it.SKU, it.UnitPrice, it.Currency, it.Quantity); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func (r *OrderRepo) Get(orderID string) (domain.Order, error) {
	var row orderRow
	if err := r.db.Get(&row, `
		SELECT id, user_id, total_amount, currency, status,
		       COALESCE(remote_order_id,'') AS remote_order_id, created_at
		FROM orders WHERE id = ?
	`, orderID); err != nil {
		return domain.Order{}, err
	}

	var itemRows []orderItemRow
	if err := r.db.Select(&itemRows, `
		SELECT COALESCE(catalog_object_id,'') AS catalog_object_id, variation_id, name,
		       COALESCE(sku,'') AS sku, unit_price, currency, qty
		FROM order_items WHERE order_id = ? ORDER BY name
	`, orderID); err != nil {
		return domain.Order{}, err
	}

	items := make([]domain.OrderItem, 0, len(itemRows))
	for _, it := range itemRows {
		items = append(items, domain.OrderItem{
			CatalogObjectID: it.CatalogObjectID,
			VariationID:     it.VariationID,
			Name:            it.Name,
			SKU:             it.SKU,
			UnitPrice:       it.UnitPrice,
			Currency:        it.Currency,
			Quantity:        it.Qty,
		})
	}
	return row.toDomain(items), nil
}

// ListLatest returns recent orders, newest first, for the admin pages.
func (r *OrderRepo) ListLatest(limit int) ([]domain.Order, error) {
	if limit <= 0 {
		limit = 100
	}
	var rows []orderRow
	err := r.db.Select(&rows, `
		SELECT id, user_id, total_amount, currency, status,
		       COALESCE(remote_order_id,'') AS remote_order_id, created_at
		FROM orders
		ORDER BY datetime(created_at) DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, err
	}
	out := make([]domain.Order, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain(nil))
	}
	return out, nil
}

func (r *OrderRepo) ListByUser(userID string) ([]domain.Order, error) {
	var rows []orderRow
	err := r.db.Select(&rows, `
		SELECT id, user_id, total_amount, currency, status,
		       COALESCE(remote_order_id,'') AS remote_order_id, created_at
		FROM orders
		WHERE user_id = ?
		ORDER BY datetime(created_at) DESC
	`, userID)
	if err != nil {
		return nil, err
	}
	out := make([]domain.Order, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain(nil))
	}
	return out, nil
}

func (r *OrderRepo) SetStatus(orderID string, status domain.OrderStatus) error {
	_, err := r.db.Exec(`UPDATE orders SET status = ? WHERE id = ?`, string(status), orderID)
	return err
}

func (r *OrderRepo) SetFulfilled(orderID, remoteOrderID string) error {
	_, err := r.db.Exec(`
		UPDATE orders SET status = 'fulfilled', remote_order_id = ? WHERE id = ?
	`, remoteOrderID, orderID)
	return err
}
