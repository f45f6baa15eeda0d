package square

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"vapordepot/internal/domain"
)

var (
	// ErrNotConfigured is returned when the access token is missing.
	// Surfaces at first use, not at startup.
	ErrNotConfigured = errors.New("square: access token is not configured")

	// ErrRemoteFetch wraps any failure reaching or parsing the remote
	// catalog/stock API. No automatic retry; the caller decides.
	ErrRemoteFetch = errors.New("square: remote fetch failed")
)

// countChunkSize bounds ids per batch-counts request.
const countChunkSize = 100

// Client talks to a Square-compatible commerce REST API.
type Client struct {
	httpClient *http.Client
	baseURL    string
	token      string
	locationID string
	// maxObjects optionally stops catalog paging early; 0 means no cap.
	maxObjects int
}

func New(baseURL, token, locationID string, maxObjects int) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		baseURL:    baseURL,
		token:      token,
		locationID: locationID,
		maxObjects: maxObjects,
	}
}

// ---------- wire shapes ----------

type catalogObject struct {
	Type              string         `json:"type"`
	ID                string         `json:"id"`
	ItemData          *itemData      `json:"item_data,omitempty"`
	ItemVariationData *variationData `json:"item_variation_data,omitempty"`
	CategoryData      *categoryData  `json:"category_data,omitempty"`
}

type itemData struct {
	Name          string          `json:"name"`
	CategoryID    string          `json:"category_id"`
	EcomImageURIs []string        `json:"ecom_image_uris"`
	Variations    []catalogObject `json:"variations"`
}

type variationData struct {
	SKU        string      `json:"sku"`
	PriceMoney *priceMoney `json:"price_money"`
}

type priceMoney struct {
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
}

type categoryData struct {
	Name string `json:"name"`
}

type listCatalogResponse struct {
	Objects []catalogObject `json:"objects"`
	Cursor  string          `json:"cursor"`
}

type batchCountsRequest struct {
	CatalogObjectIDs []string `json:"catalog_object_ids"`
	LocationIDs      []string `json:"location_ids,omitempty"`
}

type inventoryCount struct {
	CatalogObjectID string `json:"catalog_object_id"`
	LocationID      string `json:"location_id"`
	Quantity        string `json:"quantity"`
}

type batchCountsResponse struct {
	Counts []inventoryCount `json:"counts"`
}

type createOrderRequest struct {
	Order orderBody `json:"order"`
}

type orderBody struct {
	LocationID string          `json:"location_id"`
	LineItems  []orderLineItem `json:"line_items"`
}

type orderLineItem struct {
	Quantity        string     `json:"quantity"`
	CatalogObjectID string     `json:"catalog_object_id"`
	BasePriceMoney  priceMoney `json:"base_price_money"`
	Name            string     `json:"name,omitempty"`
}

type createOrderResponse struct {
	Order struct {
		ID string `json:"id"`
	} `json:"order"`
}

// ---------- transport ----------

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	if c.token == "" {
		return ErrNotConfigured
	}

	var rdr *bytes.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return err
		}
		rdr = bytes.NewReader(b)
	} else {
		rdr = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, rdr)
	if err != nil {
		return err
	}
	if query != nil {
		req.URL.RawQuery = query.Encode()
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %s %s: %v", ErrRemoteFetch, method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return fmt.Errorf("%w: %s %s: status %d", ErrRemoteFetch, method, path, resp.StatusCode)
	}
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("%w: decode %s: %v", ErrRemoteFetch, path, err)
		}
	}
	return nil
}

// listCatalog pages through /v2/catalog/list until the cursor runs out
// or the optional object cap is reached.
func (c *Client) listCatalog(ctx context.Context, types string, maxObjects int) ([]catalogObject, error) {
	var objects []catalogObject
	cursor := ""
	for {
		q := url.Values{"types": {types}}
		if cursor != "" {
			q.Set("cursor", cursor)
		}
		var page listCatalogResponse
		if err := c.do(ctx, http.MethodGet, "/v2/catalog/list", q, nil, &page); err != nil {
			return nil, err
		}
		objects = append(objects, page.Objects...)
		if page.Cursor == "" {
			break
		}
		if maxObjects > 0 && len(objects) >= maxObjects {
			break
		}
		cursor = page.Cursor
	}
	return objects, nil
}

// fetchCategoryMap builds the category id to display name lookup.
// Failures degrade to an empty map; items then fall back to inference.
func (c *Client) fetchCategoryMap(ctx context.Context) map[string]string {
	categories := map[string]string{}
	objects, err := c.listCatalog(ctx, "CATEGORY", 0)
	if err != nil {
		log.Printf("[square] category listing failed: %v", err)
		return categories
	}
	for _, obj := range objects {
		if obj.Type == "CATEGORY" && obj.ID != "" && obj.CategoryData != nil && obj.CategoryData.Name != "" {
			categories[obj.ID] = obj.CategoryData.Name
		}
	}
	return categories
}

// FetchCounts returns live stock per variation id. Requests go out in
// chunks of countChunkSize ids, concurrently; quantities for the same
// variation across locations are summed. Missing ids are simply absent.
func (c *Client) FetchCounts(ctx context.Context, variationIDs []string) (map[string]int, error) {
	counts := map[string]int{}
	if len(variationIDs) == 0 {
		return counts, nil
	}

	var locationIDs []string
	if c.locationID != "" {
		locationIDs = []string{c.locationID}
	}

	var mu sync.Mutex
	g, ctx := errgroup.WithContext(ctx)
	for start := 0; start < len(variationIDs); start += countChunkSize {
		end := start + countChunkSize
		if end > len(variationIDs) {
			end = len(variationIDs)
		}
		chunk := variationIDs[start:end]
		g.Go(func() error {
			var resp batchCountsResponse
			req := batchCountsRequest{CatalogObjectIDs: chunk, LocationIDs: locationIDs}
			if err := c.do(ctx, http.MethodPost, "/v2/inventory/counts/batch-retrieve", nil, req, &resp); err != nil {
				return err
			}
			mu.Lock()
			defer mu.Unlock()
			for _, count := range resp.Counts {
				if count.CatalogObjectID == "" {
					continue
				}
				qty, _ := strconv.ParseFloat(count.Quantity, 64)
				counts[count.CatalogObjectID] += int(qty)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return counts, nil
}

// FetchAll pages the remote catalog and normalizes it into a flat list
// of inventory records. Variations without a resolved price or with no
// stock are excluded at the source: the shop treats "out of stock
// remotely" as "not listed".
func (c *Client) FetchAll(ctx context.Context) ([]domain.InventoryRecord, error) {
	categories := c.fetchCategoryMap(ctx)

	objects, err := c.listCatalog(ctx, "ITEM", c.maxObjects)
	if err != nil {
		return nil, err
	}

	var variationIDs []string
	for _, obj := range objects {
		if obj.Type != "ITEM" || obj.ItemData == nil {
			continue
		}
		for _, v := range obj.ItemData.Variations {
			if v.ID != "" {
				variationIDs = append(variationIDs, v.ID)
			}
		}
	}
	if len(variationIDs) == 0 {
		return nil, nil
	}

	counts, err := c.FetchCounts(ctx, variationIDs)
	if err != nil {
		return nil, err
	}

	var items []domain.InventoryRecord
	for _, obj := range objects {
		if obj.Type != "ITEM" || obj.ItemData == nil || obj.ID == "" {
			continue
		}
		imageURL := ""
		if len(obj.ItemData.EcomImageURIs) > 0 {
			imageURL = obj.ItemData.EcomImageURIs[0]
		}
		categoryName := ""
		if obj.ItemData.CategoryID != "" {
			categoryName = categories[obj.ItemData.CategoryID]
		}

		for _, v := range obj.ItemData.Variations {
			if v.Type != "ITEM_VARIATION" || v.ID == "" || v.ItemVariationData == nil {
				continue
			}
			vd := v.ItemVariationData
			if vd.PriceMoney == nil {
				continue
			}
			qty := counts[v.ID]
			if qty <= 0 {
				continue
			}
			currency := vd.PriceMoney.Currency
			if currency == "" {
				currency = "USD"
			}
			items = append(items, domain.InventoryRecord{
				CatalogObjectID:   obj.ID,
				VariationID:       v.ID,
				Name:              obj.ItemData.Name,
				SKU:               vd.SKU,
				PriceMoney:        domain.Money{Amount: vd.PriceMoney.Amount, Currency: currency},
				ImageURL:          imageURL,
				AvailableQuantity: qty,
				CategoryName:      categoryName,
			})
		}
	}
	return items, nil
}

// CreateOrder creates an order at the remote platform and returns its id.
func (c *Client) CreateOrder(ctx context.Context, items []domain.OrderItem) (string, error) {
	if c.locationID == "" {
		return "", fmt.Errorf("square: location id is not configured")
	}
	lineItems := make([]orderLineItem, 0, len(items))
	for _, it := range items {
		lineItems = append(lineItems, orderLineItem{
			Quantity:        strconv.Itoa(it.Quantity),
			CatalogObjectID: it.VariationID,
			BasePriceMoney:  priceMoney{Amount: it.UnitPrice, Currency: it.Currency},
			Name:            it.Name,
		})
	}
	var resp createOrderResponse
	req := createOrderRequest{Order: orderBody{LocationID: c.locationID, LineItems: lineItems}}
	if err := c.do(ctx, http.MethodPost, "/v2/orders", nil, req, &resp); err != nil {
		return "", err
	}
	return resp.Order.ID, nil
}
