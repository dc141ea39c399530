package http

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/arca-mz/storefront/internal/arca"
	"github.com/arca-mz/storefront/pkg/httputil"
	"github.com/arca-mz/storefront/pkg/pagination"
)

// AccountAPI is the slice of the core API client the account surface needs.
type AccountAPI interface {
	MyOrders(ctx context.Context, token string) ([]arca.Order, error)
	MyCommissions(ctx context.Context, token string, params pagination.Params) ([]arca.Commission, error)
	MyCommissionSummary(ctx context.Context, token string) (*arca.CommissionSummary, error)
	MyPayouts(ctx context.Context, token string, params pagination.Params) ([]arca.Payout, error)
}

// TokenSource resolves a session to its stored bearer token.
type TokenSource interface {
	Token(ctx context.Context, sessionID string) (string, error)
}

// AccountHandler proxies the authenticated account surfaces of the core API:
// order history, commissions and payouts.
type AccountHandler struct {
	account AccountAPI
	tokens  TokenSource
	logger  *slog.Logger
}

// NewAccountHandler creates a new account HTTP handler.
func NewAccountHandler(account AccountAPI, tokens TokenSource, logger *slog.Logger) *AccountHandler {
	return &AccountHandler{
		account: account,
		tokens:  tokens,
		logger:  logger,
	}
}

// token resolves the session token or writes the error itself. The bool
// reports whether the caller may proceed.
func (h *AccountHandler) token(w http.ResponseWriter, r *http.Request) (string, bool) {
	sid, _ := sessionIDFromContext(r.Context())

	token, err := h.tokens.Token(r.Context(), sid)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return "", false
	}
	return token, true
}

// MyOrders handles GET /api/v1/orders
func (h *AccountHandler) MyOrders(w http.ResponseWriter, r *http.Request) {
	token, ok := h.token(w, r)
	if !ok {
		return
	}

	orders, err := h.account.MyOrders(r.Context(), token)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: orders})
}

// MyCommissions handles GET /api/v1/commissions
func (h *AccountHandler) MyCommissions(w http.ResponseWriter, r *http.Request) {
	token, ok := h.token(w, r)
	if !ok {
		return
	}

	commissions, err := h.account.MyCommissions(r.Context(), token, pagination.FromRequest(r))
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: commissions})
}

// CommissionSummary handles GET /api/v1/commissions/summary
func (h *AccountHandler) CommissionSummary(w http.ResponseWriter, r *http.Request) {
	token, ok := h.token(w, r)
	if !ok {
		return
	}

	summary, err := h.account.MyCommissionSummary(r.Context(), token)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: summary})
}

// MyPayouts handles GET /api/v1/payouts
func (h *AccountHandler) MyPayouts(w http.ResponseWriter, r *http.Request) {
	token, ok := h.token(w, r)
	if !ok {
		return
	}

	payouts, err := h.account.MyPayouts(r.Context(), token, pagination.FromRequest(r))
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: payouts})
}
