package repos

import (
	"github.com/jmoiron/sqlx"

	"vapordepot/internal/domain"
)

// ProductRepo is the durable catalog collection keyed by variation id.
type ProductRepo struct{ db *sqlx.DB }

func NewProductRepo(db *sqlx.DB) *ProductRepo { return &ProductRepo{db: db} }

type productRow struct {
	VariationID       string `db:"variation_id"`
	CatalogObjectID   string `db:"catalog_object_id"`
	Name              string `db:"name"`
	SKU               string `db:"sku"`
	PriceAmount       int64  `db:"price_amount"`
	PriceCurrency     string `db:"price_currency"`
	ImageURL          string `db:"image_url"`
	AvailableQuantity int    `db:"available_quantity"`
	CategoryName      string `db:"category_name"`
}

func (r productRow) toDomain() domain.InventoryRecord {
	return domain.InventoryRecord{
		CatalogObjectID:   r.CatalogObjectID,
		VariationID:       r.VariationID,
		Name:              r.Name,
		SKU:               r.SKU,
		PriceMoney:        domain.Money{Amount: r.PriceAmount, Currency: r.PriceCurrency},
		ImageURL:          r.ImageURL,
		AvailableQuantity: r.AvailableQuantity,
		CategoryName:      r.CategoryName,
	}
}

const selectCols = `
  variation_id, COALESCE(catalog_object_id,'') AS catalog_object_id, name,
  COALESCE(sku,'') AS sku, price_amount, price_currency,
  COALESCE(image_url,'') AS image_url, available_quantity,
  COALESCE(category_name,'') AS category_name`

func (r *ProductRepo) Count() (int, error) {
	var n int
	err := r.db.Get(&n, `SELECT COUNT(*) FROM products`)
	return n, err
}

// All returns every record ordered by (name, variation_id) for
// deterministic pagination.
func (r *ProductRepo) All() ([]domain.InventoryRecord, error) {
	var rows []productRow
	err := r.db.Select(&rows, `SELECT `+selectCols+` FROM products ORDER BY name, variation_id`)
	if err != nil {
		return nil, err
	}
	out := make([]domain.InventoryRecord, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain())
	}
	return out, nil
}

func (r *ProductRepo) Get(variationID string) (domain.InventoryRecord, error) {
	var row productRow
	err := r.db.Get(&row, `SELECT `+selectCols+` FROM products WHERE variation_id = ?`, variationID)
	if err != nil {
		return domain.InventoryRecord{}, err
	}
	return row.toDomain(), nil
}

func (r *ProductRepo) VariationIDs() ([]string, error) {
	var ids []string
	err := r.db.Select(&ids, `SELECT variation_id FROM products`)
	return ids, err
}

// Upsert writes the full record, replacing any existing row for the
// variation id. Reports whether a new row was created.
func (r *ProductRepo) Upsert(rec domain.InventoryRecord) (created bool, err error) {
	var exists bool
	if err := r.db.Get(&exists, `SELECT EXISTS(SELECT 1 FROM products WHERE variation_id = ?)`, rec.VariationID); err != nil {
		return false, err
	}
	_, err = r.db.Exec(`
		INSERT INTO products
		  (variation_id, catalog_object_id, name, sku, price_amount, price_currency,
		   image_url, available_quantity, category_name, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(variation_id) DO UPDATE SET
		  catalog_object_id = excluded.catalog_object_id,
		  name = excluded.name,
		  sku = excluded.sku,
		  price_amount = excluded.price_amount,
		  price_currency = excluded.price_currency,
		  image_url = excluded.image_url,
		  available_quantity = excluded.available_quantity,
		  category_name = excluded.category_name,
		  updated_at = CURRENT_TIMESTAMP
	`, rec.VariationID, rec.CatalogObjectID, rec.Name, rec.SKU,
		rec.PriceMoney.Amount, rec.PriceMoney.Currency,
		rec.ImageURL, rec.AvailableQuantity, rec.CategoryName)
	return !exists, err
}

// ZeroQuantities sets available_quantity = 0 for the given ids without
// deleting the rows. Returns the number of rows touched.
func (r *ProductRepo) ZeroQuantities(variationIDs []string) (int, error) {
	if len(variationIDs) == 0 {
		return 0, nil
	}
	query, args, err := sqlx.In(`
		UPDATE products SET available_quantity = 0, updated_at = CURRENT_TIMESTAMP
		WHERE variation_id IN (?)`, variationIDs)
	if err != nil {
		return 0, err
	}
	res, err := r.db.Exec(query, args...)
	if err != nil {
		return 0, err
	}
	n, _ := res.RowsAffected()
	return int(n), nil
}
