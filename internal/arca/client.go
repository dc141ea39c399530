package arca

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"

	"github.com/arca-mz/storefront/pkg/httpclient"
	"github.com/arca-mz/storefront/pkg/pagination"
)

// HTTPDoer is the interface for executing HTTP requests. Both
// httpclient.Client and httpclient.CircuitBreakerClient satisfy this.
type HTTPDoer interface {
	Do(ctx context.Context, req *http.Request) (*http.Response, error)
}

// Client is a typed client for the ARCA core API. All money figures cross
// this boundary as float meticais; callers convert to centavos on receipt.
type Client struct {
	http    HTTPDoer
	baseURL string
	logger  *slog.Logger
}

// NewClient creates a core API client. baseURL must not end with a slash.
func NewClient(httpClient HTTPDoer, baseURL string, logger *slog.Logger) *Client {
	return &Client{
		http:    httpClient,
		baseURL: baseURL,
		logger:  logger,
	}
}

// do executes one request against the core API. A non-2xx response is
// returned as a *httpclient.ResponseError carrying the raw body, so callers
// can probe it for structured detail. The response body is decoded into out
// when out is non-nil.
func (c *Client) do(ctx context.Context, method, path, token string, body, out any) error {
	var reqBody *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal %s %s request: %w", method, path, err)
		}
		reqBody = bytes.NewReader(data)
	} else {
		reqBody = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return fmt.Errorf("create %s %s request: %w", method, path, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(ctx, req)
	if err != nil {
		return fmt.Errorf("call core api %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		c.logger.WarnContext(ctx, "core api returned error status",
			slog.String("method", method),
			slog.String("path", path),
			slog.Int("status", resp.StatusCode),
		)
		return httpclient.NewResponseError(resp, "core-api")
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s %s response: %w", method, path, err)
	}
	return nil
}

// Login exchanges credentials for a bearer token.
func (c *Client) Login(ctx context.Context, creds Credentials) (*TokenResponse, error) {
	var tok TokenResponse
	if err := c.do(ctx, http.MethodPost, "/auth/login", "", creds, &tok); err != nil {
		return nil, err
	}
	return &tok, nil
}

// Register creates a new account and returns its bearer token.
func (c *Client) Register(ctx context.Context, reg Registration) (*TokenResponse, error) {
	var tok TokenResponse
	if err := c.do(ctx, http.MethodPost, "/auth/register", "", reg, &tok); err != nil {
		return nil, err
	}
	return &tok, nil
}

// Me fetches the authenticated account profile.
func (c *Client) Me(ctx context.Context, token string) (*User, error) {
	var user User
	if err := c.do(ctx, http.MethodGet, "/users/me", token, nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// ListProducts fetches one catalog page. Products are decoded loosely so
// the raw payload stays available for stock-hint probing.
func (c *Client) ListProducts(ctx context.Context, params pagination.Params) ([]Product, error) {
	var raw []map[string]any
	if err := c.do(ctx, http.MethodGet, "/products/?"+params.Query().Encode(), "", nil, &raw); err != nil {
		return nil, err
	}

	products := make([]Product, 0, len(raw))
	for _, entry := range raw {
		products = append(products, productFromRaw(entry))
	}
	return products, nil
}

// GetProduct fetches one catalog entry by ID.
func (c *Client) GetProduct(ctx context.Context, productID string) (*Product, error) {
	var raw map[string]any
	if err := c.do(ctx, http.MethodGet, "/products/"+url.PathEscape(productID), "", nil, &raw); err != nil {
		return nil, err
	}
	p := productFromRaw(raw)
	return &p, nil
}

// CreateOrder submits an order for the authenticated account.
func (c *Client) CreateOrder(ctx context.Context, token string, req OrderRequest) (*Order, error) {
	var order Order
	if err := c.do(ctx, http.MethodPost, "/orders/", token, req, &order); err != nil {
		return nil, err
	}
	return &order, nil
}

// MyOrders lists the authenticated account's orders.
func (c *Client) MyOrders(ctx context.Context, token string) ([]Order, error) {
	var orders []Order
	if err := c.do(ctx, http.MethodGet, "/orders/my", token, nil, &orders); err != nil {
		return nil, err
	}
	return orders, nil
}

// ConfirmPayment registers a payment against an order.
func (c *Client) ConfirmPayment(ctx context.Context, token string, req PaymentRequest) (*Payment, error) {
	var payment Payment
	if err := c.do(ctx, http.MethodPost, "/payments/confirm", token, req, &payment); err != nil {
		return nil, err
	}
	return &payment, nil
}

// MyCommissions lists the authenticated account's commissions, newest first.
func (c *Client) MyCommissions(ctx context.Context, token string, params pagination.Params) ([]Commission, error) {
	var commissions []Commission
	path := "/commissions/my?" + params.Query().Encode()
	if err := c.do(ctx, http.MethodGet, path, token, nil, &commissions); err != nil {
		return nil, err
	}
	return commissions, nil
}

// MyCommissionSummary fetches the account's aggregate commission standing.
func (c *Client) MyCommissionSummary(ctx context.Context, token string) (*CommissionSummary, error) {
	var summary CommissionSummary
	if err := c.do(ctx, http.MethodGet, "/commissions/summary", token, nil, &summary); err != nil {
		return nil, err
	}
	return &summary, nil
}

// MyPayouts lists the authenticated account's payouts.
func (c *Client) MyPayouts(ctx context.Context, token string, params pagination.Params) ([]Payout, error) {
	var payouts []Payout
	path := "/payouts/my?" + params.Query().Encode()
	if err := c.do(ctx, http.MethodGet, path, token, nil, &payouts); err != nil {
		return nil, err
	}
	return payouts, nil
}

// ListPayouts lists all payouts. Admin only; the core API enforces the role.
func (c *Client) ListPayouts(ctx context.Context, token string, params pagination.Params) ([]Payout, error) {
	var payouts []Payout
	path := "/payouts/?" + params.Query().Encode()
	if err := c.do(ctx, http.MethodGet, path, token, nil, &payouts); err != nil {
		return nil, err
	}
	return payouts, nil
}

// GeneratePayouts asks the core API to batch pending commissions into
// payouts. Admin only.
func (c *Client) GeneratePayouts(ctx context.Context, token string, req PayoutGenerateRequest) ([]Payout, error) {
	var body any
	if req.Days > 0 {
		body = req
	}
	var payouts []Payout
	if err := c.do(ctx, http.MethodPost, "/payouts/generate", token, body, &payouts); err != nil {
		return nil, err
	}
	return payouts, nil
}

// MarkPayoutPaid marks one payout as settled. Admin only.
func (c *Client) MarkPayoutPaid(ctx context.Context, token, payoutID string, req PayoutPaidRequest) (*Payout, error) {
	var body any
	if req.Method != "" || req.Reference != "" {
		body = req
	}
	var payout Payout
	path := "/payouts/" + url.PathEscape(payoutID) + "/pay"
	if err := c.do(ctx, http.MethodPost, path, token, body, &payout); err != nil {
		return nil, err
	}
	return &payout, nil
}

// ListOrders lists all orders across accounts. Admin only; the core API
// enforces the role.
func (c *Client) ListOrders(ctx context.Context, token string, params pagination.Params) ([]AdminOrder, error) {
	var orders []AdminOrder
	path := "/admin/orders?" + params.Query().Encode()
	if err := c.do(ctx, http.MethodGet, path, token, nil, &orders); err != nil {
		return nil, err
	}
	return orders, nil
}

// ListAdminProducts lists the full catalog, inactive entries included.
// Admin only.
func (c *Client) ListAdminProducts(ctx context.Context, token string, params pagination.Params) ([]Product, error) {
	var raw []map[string]any
	path := "/admin/products?" + params.Query().Encode()
	if err := c.do(ctx, http.MethodGet, path, token, nil, &raw); err != nil {
		return nil, err
	}

	products := make([]Product, 0, len(raw))
	for _, entry := range raw {
		products = append(products, productFromRaw(entry))
	}
	return products, nil
}

// CreateProduct adds a catalog entry. Admin only.
func (c *Client) CreateProduct(ctx context.Context, token string, input ProductInput) (*Product, error) {
	var raw map[string]any
	if err := c.do(ctx, http.MethodPost, "/admin/products", token, input, &raw); err != nil {
		return nil, err
	}
	p := productFromRaw(raw)
	return &p, nil
}

// UpdateProduct applies a partial update to one catalog entry. Admin only.
func (c *Client) UpdateProduct(ctx context.Context, token, productID string, input ProductInput) (*Product, error) {
	var raw map[string]any
	path := "/admin/products/" + url.PathEscape(productID)
	if err := c.do(ctx, http.MethodPatch, path, token, input, &raw); err != nil {
		return nil, err
	}
	p := productFromRaw(raw)
	return &p, nil
}

// DeactivateProduct hides one catalog entry from the storefront. Admin only.
func (c *Client) DeactivateProduct(ctx context.Context, token, productID string) (*ProductStatus, error) {
	var status ProductStatus
	path := "/admin/products/" + url.PathEscape(productID) + "/deactivate"
	if err := c.do(ctx, http.MethodPost, path, token, nil, &status); err != nil {
		return nil, err
	}
	return &status, nil
}

// productFromRaw builds a Product out of a loosely-typed catalog entry.
// The backend has shipped numeric and string IDs at different times.
func productFromRaw(raw map[string]any) Product {
	p := Product{Raw: raw}

	switch id := raw["id"].(type) {
	case string:
		p.ID = id
	case float64:
		p.ID = strconv.FormatFloat(id, 'f', -1, 64)
	}
	if name, ok := raw["name"].(string); ok {
		p.Name = name
	}
	if desc, ok := raw["description"].(string); ok {
		p.Description = desc
	}
	if price, ok := raw["price"].(float64); ok {
		p.Price = price
	}
	for _, key := range []string{"image_url", "image", "imageUrl"} {
		if img, ok := raw[key].(string); ok && img != "" {
			p.ImageURL = img
			break
		}
	}
	return p
}
