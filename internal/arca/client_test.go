package arca

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arca-mz/storefront/internal/domain"
	apperrors "github.com/arca-mz/storefront/pkg/errors"
	"github.com/arca-mz/storefront/pkg/httpclient"
	"github.com/arca-mz/storefront/pkg/pagination"
)

func newTestClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	httpClient := httpclient.New(httpclient.Config{MaxRetries: 0})
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewClient(httpClient, srv.URL, logger)
}

func TestClient_Login(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/auth/login", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var creds Credentials
		require.NoError(t, json.NewDecoder(r.Body).Decode(&creds))
		assert.Equal(t, "ana@example.com", creds.Email)

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(TokenResponse{AccessToken: "jwt-abc", TokenType: "bearer"})
	}))

	tok, err := client.Login(context.Background(), Credentials{Email: "ana@example.com", Password: "secret1"})
	require.NoError(t, err)
	assert.Equal(t, "jwt-abc", tok.AccessToken)
}

func TestClient_Login_InvalidCredentials(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"detail":"invalid credentials"}`))
	}))

	_, err := client.Login(context.Background(), Credentials{Email: "ana@example.com", Password: "wrong"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrUnauthorized))
}

func TestClient_ListProducts_PaginationAndStockHints(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/products/", r.URL.Path)
		assert.Equal(t, "10", r.URL.Query().Get("limit"))
		assert.Equal(t, "20", r.URL.Query().Get("offset"))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[
			{"id": 7, "name": "Sabonete", "price": 150.0, "qty_stock": 4},
			{"id": "p-2", "name": "Creme", "price": 250.5}
		]`))
	}))

	products, err := client.ListProducts(context.Background(), pagination.Params{Limit: 10, Offset: 20})
	require.NoError(t, err)
	require.Len(t, products, 2)

	assert.Equal(t, "7", products[0].ID)
	assert.Equal(t, "Sabonete", products[0].Name)
	assert.Equal(t, 150.0, products[0].Price)
	hint := domain.ExtractAvailableStock(products[0].Raw)
	require.NotNil(t, hint)
	assert.Equal(t, 4, *hint)

	assert.Equal(t, "p-2", products[1].ID)
	assert.Nil(t, domain.ExtractAvailableStock(products[1].Raw))
}

func TestClient_CreateOrder_BearerToken(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/orders/", r.URL.Path)
		assert.Equal(t, "Bearer jwt-abc", r.Header.Get("Authorization"))

		var req OrderRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Len(t, req.Items, 1)
		assert.Equal(t, "p-1", req.Items[0].ProductID)
		assert.Equal(t, 2, req.Items[0].Quantity)
		assert.Equal(t, 50.0, req.PointsToUse)

		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(Order{ID: "ord-1", Status: "pending", Total: 300})
	}))

	order, err := client.CreateOrder(context.Background(), "jwt-abc", OrderRequest{
		Items:       []OrderItem{{ProductID: "p-1", Quantity: 2}},
		PointsToUse: 50,
	})
	require.NoError(t, err)
	assert.Equal(t, "ord-1", order.ID)
	assert.Equal(t, 300.0, order.Total)
}

func TestClient_CreateOrder_StockConflictBodyRetained(t *testing.T) {
	conflictBody := `{"detail":{"items":[{"product_id":"p-1","available":1,"requested":3}]}}`
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
		w.Write([]byte(conflictBody))
	}))

	_, err := client.CreateOrder(context.Background(), "jwt-abc", OrderRequest{
		Items: []OrderItem{{ProductID: "p-1", Quantity: 3}},
	})
	require.Error(t, err)

	var respErr *httpclient.ResponseError
	require.True(t, errors.As(err, &respErr))
	assert.Equal(t, http.StatusConflict, respErr.Status)
	assert.JSONEq(t, conflictBody, string(respErr.Body))

	shortfalls := domain.ParseBackendShortfalls(respErr.Body)
	require.Len(t, shortfalls, 1)
	assert.Equal(t, "p-1", shortfalls[0].ProductID)
}

func TestClient_ConfirmPayment(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/payments/confirm", r.URL.Path)

		var req PaymentRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "ord-1", req.OrderID)
		assert.Equal(t, 300.0, req.Amount)
		assert.Equal(t, "mpesa", req.Method)

		json.NewEncoder(w).Encode(Payment{ID: "pay-1", OrderID: "ord-1", Status: "confirmed"})
	}))

	payment, err := client.ConfirmPayment(context.Background(), "jwt-abc", PaymentRequest{
		OrderID: "ord-1",
		Amount:  300,
		Method:  "mpesa",
	})
	require.NoError(t, err)
	assert.Equal(t, "pay-1", payment.ID)
}

func TestClient_MarkPayoutPaid_PathEscaping(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/payouts/po-9/pay", r.URL.Path)
		json.NewEncoder(w).Encode(Payout{ID: "po-9", Status: "paid"})
	}))

	payout, err := client.MarkPayoutPaid(context.Background(), "admin-jwt", "po-9", PayoutPaidRequest{Method: "mpesa"})
	require.NoError(t, err)
	assert.Equal(t, "paid", payout.Status)
}

func TestClient_ListOrders_AdminBearerToken(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/admin/orders", r.URL.Path)
		assert.Equal(t, "Bearer admin-jwt", r.Header.Get("Authorization"))
		assert.Equal(t, "50", r.URL.Query().Get("limit"))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[
			{"id": "ord-1", "status": "paid", "total": 550.0, "user_id": "u-1", "user_name": "Ana"},
			{"id": "ord-2", "status": "pending", "total": 120.0, "user_id": "u-2"}
		]`))
	}))

	orders, err := client.ListOrders(context.Background(), "admin-jwt", pagination.Params{Limit: 50})
	require.NoError(t, err)
	require.Len(t, orders, 2)
	assert.Equal(t, "ord-1", orders[0].ID)
	assert.Equal(t, "Ana", orders[0].UserName)
	assert.Equal(t, "u-2", orders[1].UserID)
}

func TestClient_ListAdminProducts_KeepsRawPayload(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/admin/products", r.URL.Path)
		assert.Equal(t, "Bearer admin-jwt", r.Header.Get("Authorization"))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[
			{"id": 7, "name": "Sabonete", "price": 150.0, "active": false, "stock": 0}
		]`))
	}))

	products, err := client.ListAdminProducts(context.Background(), "admin-jwt", pagination.Params{})
	require.NoError(t, err)
	require.Len(t, products, 1)
	assert.Equal(t, "7", products[0].ID)
	assert.Equal(t, false, products[0].Raw["active"])
}

func TestClient_CreateProduct(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/admin/products", r.URL.Path)
		assert.Equal(t, "Bearer admin-jwt", r.Header.Get("Authorization"))

		var raw map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&raw))
		assert.Equal(t, "Sabonete", raw["name"])
		assert.Equal(t, 150.0, raw["price"])
		assert.Equal(t, 10.0, raw["stock"])
		_, hasActive := raw["active"]
		assert.False(t, hasActive)

		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"id": 31, "name": "Sabonete", "price": 150.0, "stock": 10}`))
	}))

	price := 150.0
	stock := 10
	product, err := client.CreateProduct(context.Background(), "admin-jwt", ProductInput{
		Name:  "Sabonete",
		Price: &price,
		Stock: &stock,
	})
	require.NoError(t, err)
	assert.Equal(t, "31", product.ID)
	assert.Equal(t, "Sabonete", product.Name)
}

func TestClient_UpdateProduct_PartialBody(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPatch, r.Method)
		assert.Equal(t, "/admin/products/p-7", r.URL.Path)

		var raw map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&raw))
		assert.Equal(t, 99.5, raw["price"])
		_, hasName := raw["name"]
		assert.False(t, hasName)
		_, hasStock := raw["stock"]
		assert.False(t, hasStock)

		w.Write([]byte(`{"id": "p-7", "name": "Creme", "price": 99.5}`))
	}))

	price := 99.5
	product, err := client.UpdateProduct(context.Background(), "admin-jwt", "p-7", ProductInput{Price: &price})
	require.NoError(t, err)
	assert.Equal(t, "p-7", product.ID)
	assert.Equal(t, 99.5, product.Price)
}

func TestClient_DeactivateProduct(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/admin/products/p-7/deactivate", r.URL.Path)
		json.NewEncoder(w).Encode(ProductStatus{ID: "p-7", Active: false})
	}))

	status, err := client.DeactivateProduct(context.Background(), "admin-jwt", "p-7")
	require.NoError(t, err)
	assert.Equal(t, "p-7", status.ID)
	assert.False(t, status.Active)
}

func TestCentavosToMeticais(t *testing.T) {
	assert.Equal(t, 150.0, CentavosToMeticais(15000))
	assert.Equal(t, 0.5, CentavosToMeticais(50))
	assert.Equal(t, 0.0, CentavosToMeticais(0))
}
