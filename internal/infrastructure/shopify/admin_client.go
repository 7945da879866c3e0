package shopify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"trazoo-cod-gateway/internal/domain"
	"trazoo-cod-gateway/internal/ports"

	"github.com/rs/zerolog"
)

// AdminClient talks to the Shopify Admin API (REST and GraphQL) for an
// arbitrary shop, carrying the shop's access token in the
// X-Shopify-Access-Token header. Any non-2xx response or transport failure
// surfaces as *domain.UpstreamError. The client never retries.
type AdminClient struct {
	apiVersion string
	httpClient *http.Client
	logger     zerolog.Logger
}

// NewAdminClient creates an Admin API client pinned to one API version.
func NewAdminClient(apiVersion string, logger zerolog.Logger) ports.AdminAPI {
	return &AdminClient{
		apiVersion: apiVersion,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		logger: logger,
	}
}

// NormalizeShopDomain strips scheme and trailing slash from a shop domain.
func NormalizeShopDomain(shop string) string {
	shop = strings.TrimPrefix(shop, "https://")
	shop = strings.TrimPrefix(shop, "http://")
	return strings.TrimSuffix(shop, "/")
}

func (c *AdminClient) restURL(shop, path string) string {
	return fmt.Sprintf("https://%s/admin/api/%s/%s", NormalizeShopDomain(shop), c.apiVersion, path)
}

// do performs one authenticated call. body is marshalled as JSON when
// non-nil; the response is decoded into out when non-nil.
func (c *AdminClient) do(ctx context.Context, method, rawURL, token string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request body: %w", err)
		}
		reader = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, rawURL, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("X-Shopify-Access-Token", token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &domain.UpstreamError{StatusCode: 0, Body: err.Error()}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &domain.UpstreamError{StatusCode: resp.StatusCode, Body: string(raw)}
	}

	if out != nil {
		if err := json.Unmarshal(raw, out); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}
	return nil
}

// CreateDraftOrder implements ports.AdminAPI.
func (c *AdminClient) CreateDraftOrder(ctx context.Context, shop, token string, draft *domain.DraftOrderInput) (*domain.DraftOrder, error) {
	payload := map[string]interface{}{"draft_order": draft}
	var out struct {
		DraftOrder *domain.DraftOrder `json:"draft_order"`
	}
	if err := c.do(ctx, http.MethodPost, c.restURL(shop, "draft_orders.json"), token, payload, &out); err != nil {
		return nil, err
	}
	return out.DraftOrder, nil
}

// CompleteDraftOrder implements ports.AdminAPI. Shopify responds with the
// completed draft carrying an order_id reference, not the full order; when
// the reference is present a skeletal order is returned, otherwise (nil, nil).
func (c *AdminClient) CompleteDraftOrder(ctx context.Context, shop, token string, draftID int64) (*domain.Order, error) {
	payload := map[string]interface{}{"payment_pending": true}
	var out struct {
		DraftOrder struct {
			ID      int64  `json:"id"`
			OrderID int64  `json:"order_id"`
			Status  string `json:"status"`
		} `json:"draft_order"`
	}
	u := c.restURL(shop, fmt.Sprintf("draft_orders/%d/complete.json", draftID))
	if err := c.do(ctx, http.MethodPut, u, token, payload, &out); err != nil {
		return nil, err
	}
	if out.DraftOrder.OrderID == 0 {
		return nil, nil
	}
	return &domain.Order{ID: out.DraftOrder.OrderID}, nil
}

// ListRecentOrders implements ports.AdminAPI.
func (c *AdminClient) ListRecentOrders(ctx context.Context, shop, token string, limit int) ([]domain.Order, error) {
	var out struct {
		Orders []domain.Order `json:"orders"`
	}
	u := c.restURL(shop, fmt.Sprintf("orders.json?limit=%d&status=any&order=%s", limit, url.QueryEscape("created_at desc")))
	if err := c.do(ctx, http.MethodGet, u, token, nil, &out); err != nil {
		return nil, err
	}
	return out.Orders, nil
}

// GetOrder implements ports.AdminAPI.
func (c *AdminClient) GetOrder(ctx context.Context, shop, token string, orderID int64) (*domain.Order, error) {
	var out struct {
		Order *domain.Order `json:"order"`
	}
	u := c.restURL(shop, fmt.Sprintf("orders/%d.json?fields=id,order_number,order_status_url,tags,note,email", orderID))
	if err := c.do(ctx, http.MethodGet, u, token, nil, &out); err != nil {
		return nil, err
	}
	return out.Order, nil
}

// SearchCustomersByEmail implements ports.AdminAPI.
func (c *AdminClient) SearchCustomersByEmail(ctx context.Context, shop, token, email string) ([]domain.Customer, error) {
	var out struct {
		Customers []domain.Customer `json:"customers"`
	}
	u := c.restURL(shop, "customers/search.json?query="+url.QueryEscape("email:"+email))
	if err := c.do(ctx, http.MethodGet, u, token, nil, &out); err != nil {
		return nil, err
	}
	return out.Customers, nil
}

// CreateCustomer implements ports.AdminAPI.
func (c *AdminClient) CreateCustomer(ctx context.Context, shop, token string, customer *domain.Customer) (*domain.Customer, error) {
	payload := map[string]interface{}{"customer": customer}
	var out struct {
		Customer *domain.Customer `json:"customer"`
	}
	if err := c.do(ctx, http.MethodPost, c.restURL(shop, "customers.json"), token, payload, &out); err != nil {
		return nil, err
	}
	return out.Customer, nil
}

// CustomerOrders implements ports.AdminAPI.
func (c *AdminClient) CustomerOrders(ctx context.Context, shop, token string, customerID int64) ([]domain.Order, error) {
	var out struct {
		Orders []domain.Order `json:"orders"`
	}
	u := c.restURL(shop, fmt.Sprintf("customers/%d/orders.json?limit=5&status=any&order=%s", customerID, url.QueryEscape("created_at desc")))
	if err := c.do(ctx, http.MethodGet, u, token, nil, &out); err != nil {
		return nil, err
	}
	return out.Orders, nil
}
