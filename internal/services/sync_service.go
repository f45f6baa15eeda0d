package services

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"vapordepot/internal/cache"
	"vapordepot/internal/domain"
)

// ErrEmptyRemote flags a reconciliation aborted because the remote
// returned nothing. An empty response is treated as a transient upstream
// failure, never as "everything went out of stock".
var ErrEmptyRemote = errors.New("sync: remote returned no records, aborting")

// CatalogUpserter is the slice of the persisted store the reconciler
// writes through.
type CatalogUpserter interface {
	VariationIDs() ([]string, error)
	Upsert(rec domain.InventoryRecord) (created bool, err error)
	ZeroQuantities(variationIDs []string) (int, error)
}

type SyncService struct {
	Remote   cache.RemoteFetcher
	Products CatalogUpserter
	Cache    *cache.Layer
	Currency string // currency assumed for CSV prices
}

func NewSyncService(remote cache.RemoteFetcher, products CatalogUpserter, c *cache.Layer) *SyncService {
	return &SyncService{Remote: remote, Products: products, Cache: c, Currency: "USD"}
}

type SyncResult struct {
	Synced int `json:"synced"`
	Zeroed int `json:"zeroed"`
}

// Reconcile pulls the full remote state, upserts every record into the
// persisted store, and zeroes quantities for records that disappeared
// remotely. Vanished records are kept, not deleted, so historical
// orders keep their names and SKUs.
func (s *SyncService) Reconcile(ctx context.Context) (SyncResult, error) {
	items, err := s.Remote.FetchAll(ctx)
	if err != nil {
		return SyncResult{}, err
	}
	if len(items) == 0 {
		return SyncResult{}, ErrEmptyRemote
	}

	existing, err := s.Products.VariationIDs()
	if err != nil {
		return SyncResult{}, err
	}
	existingIDs := make(map[string]bool, len(existing))
	for _, id := range existing {
		existingIDs[id] = true
	}

	newIDs := make(map[string]bool, len(items))
	for _, item := range items {
		newIDs[item.VariationID] = true
		if _, err := s.Products.Upsert(item); err != nil {
			return SyncResult{}, fmt.Errorf("upsert %s: %w", item.VariationID, err)
		}
	}

	var vanished []string
	for id := range existingIDs {
		if !newIDs[id] {
			vanished = append(vanished, id)
		}
	}
	zeroed, err := s.Products.ZeroQuantities(vanished)
	if err != nil {
		return SyncResult{}, err
	}

	s.Cache.Invalidate(ctx)
	return SyncResult{Synced: len(items), Zeroed: zeroed}, nil
}

type ImportResult struct {
	TotalProcessed int `json:"totalProcessed"`
	Upserted       int `json:"upserted"`
	Matched        int `json:"matched"`
	Modified       int `json:"modified"`
}

// header synonym tables, matched case/punctuation-insensitively
var (
	headerVariationID = []string{"variationid", "itemvariationid", "itemvariation", "id", "token"}
	headerName        = []string{"name", "itemname", "productname", "customerfacingname", "variationname"}
	headerSKU         = []string{"sku", "skucode"}
	headerPrice       = []string{"price", "unitprice", "unitamount"}
	headerQuantity    = []string{"availablequantity", "quantity", "qty", "stock", "currentquantityvsweb", "newquantityvsweb"}
	headerCategory    = []string{"categoryname", "category", "categorylabel"}
	headerImageURL    = []string{"imageurl", "image", "imagelink", "image_link"}
)

// ImportCSV upserts rows from an admin-supplied CSV into the persisted
// store. Unlike Reconcile it is additive/corrective only: it never
// zeroes records missing from the file. Malformed rows are skipped, not
// fatal.
func (s *SyncService) ImportCSV(ctx context.Context, r io.Reader) (ImportResult, error) {
	records, err := parseCSV(r, s.Currency)
	if err != nil {
		return ImportResult{}, err
	}
	if len(records) == 0 {
		return ImportResult{}, errors.New("no valid rows found in CSV")
	}

	res := ImportResult{TotalProcessed: len(records)}
	for _, rec := range records {
		created, err := s.Products.Upsert(rec)
		if err != nil {
			return res, fmt.Errorf("upsert %s: %w", rec.VariationID, err)
		}
		if created {
			res.Upserted++
		} else {
			res.Matched++
			res.Modified++
		}
	}

	s.Cache.Invalidate(ctx)
	return res, nil
}

func normalizeHeader(label string) string {
	lower := strings.ToLower(strings.TrimSpace(label))
	return strings.NewReplacer(" ", "", "_", "", "-", "").Replace(lower)
}

func findColumn(header []string, candidates []string) int {
	for i, h := range header {
		for _, cand := range candidates {
			if h == cand {
				return i
			}
		}
	}
	return -1
}

// sniffDelimiter picks comma, semicolon, or tab from the header line.
func sniffDelimiter(line string) rune {
	if strings.Contains(line, ";") && !strings.Contains(line, ",") {
		return ';'
	}
	if strings.Contains(line, "\t") {
		return '\t'
	}
	return ','
}

func parseCSV(r io.Reader, currency string) ([]domain.InventoryRecord, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	text := strings.TrimSpace(string(raw))
	if text == "" {
		return nil, nil
	}
	firstLine, _, _ := strings.Cut(text, "\n")

	reader := csv.NewReader(strings.NewReader(text))
	reader.Comma = sniffDelimiter(firstLine)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse CSV: %w", err)
	}
	if len(rows) < 2 {
		return nil, nil
	}

	header := make([]string, len(rows[0]))
	for i, h := range rows[0] {
		header[i] = normalizeHeader(h)
	}
	idxVariationID := findColumn(header, headerVariationID)
	idxName := findColumn(header, headerName)
	idxSKU := findColumn(header, headerSKU)
	idxPrice := findColumn(header, headerPrice)
	idxQuantity := findColumn(header, headerQuantity)
	idxCategory := findColumn(header, headerCategory)
	idxImageURL := findColumn(header, headerImageURL)

	field := func(row []string, idx int) string {
		if idx < 0 || idx >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[idx])
	}

	var records []domain.InventoryRecord
	for _, row := range rows[1:] {
		variationID := field(row, idxVariationID)
		name := field(row, idxName)
		if variationID == "" || name == "" {
			continue // rows missing the key fields are skipped silently
		}

		// Price arrives as a decimal string; store integer minor units.
		amount := int64(0)
		if priceRaw := field(row, idxPrice); priceRaw != "" {
			if f, err := strconv.ParseFloat(priceRaw, 64); err == nil {
				amount = int64(math.Round(f * 100))
			}
		}

		qty := 0
		if qtyRaw := field(row, idxQuantity); qtyRaw != "" {
			if n, err := strconv.Atoi(qtyRaw); err == nil {
				qty = n
			}
		}
		if qty < 0 {
			qty = 0
		}

		records = append(records, domain.InventoryRecord{
			VariationID:       variationID,
			Name:              name,
			SKU:               field(row, idxSKU),
			PriceMoney:        domain.Money{Amount: amount, Currency: currency},
			ImageURL:          field(row, idxImageURL),
			AvailableQuantity: qty,
			CategoryName:      field(row, idxCategory),
		})
	}
	return records, nil
}
