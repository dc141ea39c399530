package http

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/arca-mz/storefront/internal/arca"
	"github.com/arca-mz/storefront/pkg/httputil"
	"github.com/arca-mz/storefront/pkg/pagination"
	"github.com/arca-mz/storefront/pkg/validator"
)

// AdminAPI is the slice of the core API client the admin surface needs.
// Role enforcement lives in the core API; a non-admin token gets a 403 back.
type AdminAPI interface {
	ListPayouts(ctx context.Context, token string, params pagination.Params) ([]arca.Payout, error)
	GeneratePayouts(ctx context.Context, token string, req arca.PayoutGenerateRequest) ([]arca.Payout, error)
	MarkPayoutPaid(ctx context.Context, token, payoutID string, req arca.PayoutPaidRequest) (*arca.Payout, error)
	ListOrders(ctx context.Context, token string, params pagination.Params) ([]arca.AdminOrder, error)
	ListAdminProducts(ctx context.Context, token string, params pagination.Params) ([]arca.Product, error)
	CreateProduct(ctx context.Context, token string, input arca.ProductInput) (*arca.Product, error)
	UpdateProduct(ctx context.Context, token, productID string, input arca.ProductInput) (*arca.Product, error)
	DeactivateProduct(ctx context.Context, token, productID string) (*arca.ProductStatus, error)
}

// AdminHandler proxies the back-office surface of the core API: payouts,
// order listing and catalog management.
type AdminHandler struct {
	admin  AdminAPI
	tokens TokenSource
	logger *slog.Logger
}

// NewAdminHandler creates a new admin HTTP handler.
func NewAdminHandler(admin AdminAPI, tokens TokenSource, logger *slog.Logger) *AdminHandler {
	return &AdminHandler{
		admin:  admin,
		tokens: tokens,
		logger: logger,
	}
}

func (h *AdminHandler) token(w http.ResponseWriter, r *http.Request) (string, bool) {
	sid, _ := sessionIDFromContext(r.Context())

	token, err := h.tokens.Token(r.Context(), sid)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return "", false
	}
	return token, true
}

// ListPayouts handles GET /api/v1/admin/payouts
func (h *AdminHandler) ListPayouts(w http.ResponseWriter, r *http.Request) {
	token, ok := h.token(w, r)
	if !ok {
		return
	}

	payouts, err := h.admin.ListPayouts(r.Context(), token, pagination.FromRequest(r))
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: payouts})
}

// GeneratePayouts handles POST /api/v1/admin/payouts/generate
func (h *AdminHandler) GeneratePayouts(w http.ResponseWriter, r *http.Request) {
	token, ok := h.token(w, r)
	if !ok {
		return
	}

	var req arca.PayoutGenerateRequest
	if r.ContentLength > 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			httputil.WriteValidationError(w, err)
			return
		}
	}

	payouts, err := h.admin.GeneratePayouts(r.Context(), token, req)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	h.logger.InfoContext(r.Context(), "payout batch generated",
		slog.Int("count", len(payouts)),
	)

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: payouts})
}

// MarkPayoutPaid handles POST /api/v1/admin/payouts/{payoutID}/pay
func (h *AdminHandler) MarkPayoutPaid(w http.ResponseWriter, r *http.Request) {
	token, ok := h.token(w, r)
	if !ok {
		return
	}

	var req arca.PayoutPaidRequest
	if r.ContentLength > 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			httputil.WriteValidationError(w, err)
			return
		}
	}

	payout, err := h.admin.MarkPayoutPaid(r.Context(), token, chi.URLParam(r, "payoutID"), req)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: payout})
}

// ListOrders handles GET /api/v1/admin/orders
func (h *AdminHandler) ListOrders(w http.ResponseWriter, r *http.Request) {
	token, ok := h.token(w, r)
	if !ok {
		return
	}

	orders, err := h.admin.ListOrders(r.Context(), token, pagination.FromRequest(r))
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: orders})
}

// ListProducts handles GET /api/v1/admin/products
func (h *AdminHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	token, ok := h.token(w, r)
	if !ok {
		return
	}

	products, err := h.admin.ListAdminProducts(r.Context(), token, pagination.FromRequest(r))
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: products})
}

// CreateProduct handles POST /api/v1/admin/products
func (h *AdminHandler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	token, ok := h.token(w, r)
	if !ok {
		return
	}

	var input arca.ProductInput
	if err := validator.DecodeAndValidate(r, &input); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}
	if input.Name == "" {
		httputil.WriteValidationError(w, errors.New("name is required"))
		return
	}

	product, err := h.admin.CreateProduct(r.Context(), token, input)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	h.logger.InfoContext(r.Context(), "product created",
		slog.String("product_id", product.ID),
	)

	httputil.WriteJSON(w, http.StatusCreated, httputil.Response{Data: product})
}

// UpdateProduct handles PATCH /api/v1/admin/products/{productID}
func (h *AdminHandler) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	token, ok := h.token(w, r)
	if !ok {
		return
	}

	var input arca.ProductInput
	if err := validator.DecodeAndValidate(r, &input); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	product, err := h.admin.UpdateProduct(r.Context(), token, chi.URLParam(r, "productID"), input)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: product})
}

// DeactivateProduct handles POST /api/v1/admin/products/{productID}/deactivate
func (h *AdminHandler) DeactivateProduct(w http.ResponseWriter, r *http.Request) {
	token, ok := h.token(w, r)
	if !ok {
		return
	}

	status, err := h.admin.DeactivateProduct(r.Context(), token, chi.URLParam(r, "productID"))
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	h.logger.InfoContext(r.Context(), "product deactivated",
		slog.String("product_id", status.ID),
	)

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: status})
}
