package http

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/arca-mz/storefront/internal/service"
	apperrors "github.com/arca-mz/storefront/pkg/errors"
	"github.com/arca-mz/storefront/pkg/httputil"
	"github.com/arca-mz/storefront/pkg/validator"
)

// CheckoutHandler handles HTTP requests for checkout endpoints.
type CheckoutHandler struct {
	service *service.CheckoutService
	logger  *slog.Logger
}

// NewCheckoutHandler creates a new checkout HTTP handler.
func NewCheckoutHandler(svc *service.CheckoutService, logger *slog.Logger) *CheckoutHandler {
	return &CheckoutHandler{
		service: svc,
		logger:  logger,
	}
}

// SubmitRequest is the JSON request body for submitting a checkout.
type SubmitRequest struct {
	Method          string  `json:"method" validate:"required"`
	Reference       string  `json:"reference,omitempty"`
	PointsToUse     float64 `json:"points_to_use" validate:"gte=0"`
	DeliveryAddress string  `json:"delivery_address,omitempty" validate:"omitempty,max=500"`
}

// Submit handles POST /api/v1/checkout
//
// A failed submission responds with the error envelope and the submission
// state in the details field, so the caller gets the shortfall list in the
// same round trip.
func (h *CheckoutHandler) Submit(w http.ResponseWriter, r *http.Request) {
	sid, _ := sessionIDFromContext(r.Context())

	var req SubmitRequest
	if err := validator.DecodeAndValidate(r, &req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	sub, err := h.service.Submit(r.Context(), sid, service.SubmitInput{
		Method:          req.Method,
		Reference:       req.Reference,
		PointsToUse:     req.PointsToUse,
		DeliveryAddress: req.DeliveryAddress,
	})
	if err != nil {
		if sub == nil {
			httputil.WriteError(w, r, err, h.logger)
			return
		}

		var appErr *apperrors.AppError
		if !errors.As(err, &appErr) {
			appErr = apperrors.Internal(err)
			h.logger.ErrorContext(r.Context(), "checkout submission failed",
				slog.String("session_id", sid),
				slog.String("error", err.Error()),
			)
		}

		httputil.WriteJSON(w, appErr.Status, httputil.Response{
			Error: &httputil.ErrorResponse{
				Code:    appErr.Code,
				Message: appErr.Message,
				Details: sub,
			},
		})
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: sub})
}

// State handles GET /api/v1/checkout
func (h *CheckoutHandler) State(w http.ResponseWriter, r *http.Request) {
	sid, _ := sessionIDFromContext(r.Context())

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: h.service.State(sid)})
}
