package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/arca-mz/storefront/internal/arca"
	"github.com/arca-mz/storefront/internal/domain"
	"github.com/arca-mz/storefront/internal/event"
	"github.com/arca-mz/storefront/internal/repository"
	apperrors "github.com/arca-mz/storefront/pkg/errors"
	"github.com/arca-mz/storefront/pkg/httpclient"
)

// CoreAPI is the slice of the core API client the checkout flow needs.
type CoreAPI interface {
	CreateOrder(ctx context.Context, token string, req arca.OrderRequest) (*arca.Order, error)
	ConfirmPayment(ctx context.Context, token string, req arca.PaymentRequest) (*arca.Payment, error)
}

// CartAccess is the slice of the cart service the checkout flow needs.
type CartAccess interface {
	Lines(ctx context.Context, sessionID string) []domain.Line
	ClearAfterCheckout(ctx context.Context, sessionID string) domain.Snapshot
}

// SubmitInput holds the parameters for submitting a checkout.
type SubmitInput struct {
	Method          string  `json:"method" validate:"required"`
	Reference       string  `json:"reference,omitempty"`
	PointsToUse     float64 `json:"points_to_use" validate:"gte=0"`
	DeliveryAddress string  `json:"delivery_address,omitempty"`
}

// CheckoutService drives the order-then-payment submission flow. Each
// session has at most one submission in flight; a submit request while one
// is running returns the in-flight state without side effects.
//
// Preconditions (non-empty cart, an active session token, no known local
// shortfalls) are checked before any network call. A submission that fails
// a precondition never reaches the core API.
type CheckoutService struct {
	mu          sync.Mutex
	submissions map[string]*domain.Submission

	carts    CartAccess
	tokens   repository.TokenRepository
	core     CoreAPI
	producer *event.Producer
	logger   *slog.Logger
}

// NewCheckoutService creates a new checkout service.
func NewCheckoutService(carts CartAccess, tokens repository.TokenRepository, core CoreAPI, producer *event.Producer, logger *slog.Logger) *CheckoutService {
	return &CheckoutService{
		submissions: make(map[string]*domain.Submission),
		carts:       carts,
		tokens:      tokens,
		core:        core,
		producer:    producer,
		logger:      logger,
	}
}

// State returns the session's current submission state. Sessions that never
// submitted report the idle phase.
func (s *CheckoutService) State(sessionID string) *domain.Submission {
	s.mu.Lock()
	defer s.mu.Unlock()

	sub, ok := s.submissions[sessionID]
	if !ok {
		return &domain.Submission{SessionID: sessionID, Phase: domain.PhaseIdle}
	}
	return copySubmission(sub)
}

// Submit runs the checkout flow for a session: create the order, then
// confirm its payment, then clear the cart. The two backend calls run
// strictly in sequence. On any failure the submission lands in the failed
// phase and the cart is left untouched; a later submit starts over.
func (s *CheckoutService) Submit(ctx context.Context, sessionID string, input SubmitInput) (*domain.Submission, error) {
	if sessionID == "" {
		return nil, apperrors.InvalidInput("session id is required")
	}
	if input.Method == "" {
		return nil, apperrors.InvalidInput("payment method is required")
	}
	if input.PointsToUse < 0 {
		return nil, apperrors.InvalidInput("points to use must not be negative")
	}

	if state, inFlight := s.inFlightState(sessionID); inFlight {
		return state, nil
	}

	// Preconditions hit Redis; resolve them without holding s.mu so one
	// slow round trip cannot stall other sessions.
	lines := s.carts.Lines(ctx, sessionID)
	if len(lines) == 0 {
		s.mu.Lock()
		sub := copySubmission(s.failLocked(sessionID, "cart is empty", nil))
		s.mu.Unlock()
		return sub, apperrors.InvalidInput("cart is empty")
	}

	token, err := s.tokens.Get(ctx, sessionID)
	if err != nil {
		s.mu.Lock()
		sub := copySubmission(s.failLocked(sessionID, "login required", nil))
		s.mu.Unlock()
		if errors.Is(err, apperrors.ErrUnauthorized) {
			return sub, apperrors.Unauthorized("login required to checkout")
		}
		return sub, fmt.Errorf("load session token: %w", err)
	}

	if shortfalls := domain.CheckLocalShortfalls(lines); len(shortfalls) > 0 {
		s.mu.Lock()
		sub := copySubmission(s.failLocked(sessionID, "insufficient stock", shortfalls))
		s.mu.Unlock()
		s.publishFailed(ctx, sub)
		return sub, apperrors.StockConflict("requested quantities exceed known stock")
	}

	s.mu.Lock()
	// Re-check the guard: another submit for this session may have entered
	// while preconditions were resolving.
	if sub, ok := s.submissions[sessionID]; ok && sub.InFlight() {
		state := copySubmission(sub)
		s.mu.Unlock()
		return state, nil
	}
	sub := &domain.Submission{
		SessionID: sessionID,
		Phase:     domain.PhaseSubmitting,
		StartedAt: time.Now().UTC(),
	}
	s.submissions[sessionID] = sub
	s.mu.Unlock()

	items := make([]arca.OrderItem, len(lines))
	for i, l := range lines {
		items[i] = arca.OrderItem{ProductID: l.ProductID, Quantity: l.Quantity}
	}

	order, err := s.core.CreateOrder(ctx, token, arca.OrderRequest{
		Items:           items,
		PointsToUse:     input.PointsToUse,
		DeliveryAddress: input.DeliveryAddress,
	})
	if err != nil {
		return s.handleOrderFailure(ctx, sessionID, err)
	}

	s.logger.InfoContext(ctx, "order created",
		slog.String("session_id", sessionID),
		slog.String("order_id", order.ID),
	)

	payment, err := s.core.ConfirmPayment(ctx, token, arca.PaymentRequest{
		OrderID:   order.ID,
		Amount:    order.Total,
		Method:    input.Method,
		Reference: input.Reference,
	})
	if err != nil {
		shortfalls := shortfallsFromError(err)
		reason := "payment confirmation failed"
		if len(shortfalls) > 0 {
			reason = "insufficient stock"
		}

		s.mu.Lock()
		sub := s.failLocked(sessionID, reason, shortfalls)
		sub.OrderID = order.ID
		state := copySubmission(sub)
		s.mu.Unlock()

		s.publishFailed(ctx, state)
		s.logger.ErrorContext(ctx, "payment confirmation failed",
			slog.String("session_id", sessionID),
			slog.String("order_id", order.ID),
			slog.String("error", err.Error()),
		)
		if len(shortfalls) > 0 {
			return state, apperrors.StockConflict("payment rejected for insufficient stock")
		}
		return state, apperrors.PaymentFailed("payment could not be confirmed")
	}

	var subtotal int64
	var itemCount int
	for _, l := range lines {
		subtotal += l.UnitPrice * int64(l.Quantity)
		itemCount += l.Quantity
	}

	s.carts.ClearAfterCheckout(ctx, sessionID)

	s.mu.Lock()
	sub = s.submissions[sessionID]
	sub.Phase = domain.PhaseSucceeded
	sub.OrderID = order.ID
	sub.PaymentID = payment.ID
	sub.FinishedAt = time.Now().UTC()
	state := copySubmission(sub)
	s.mu.Unlock()

	if err := s.producer.PublishCheckoutCompleted(ctx, event.CheckoutCompletedData{
		SessionID: sessionID,
		OrderID:   order.ID,
		PaymentID: payment.ID,
		Subtotal:  subtotal,
		ItemCount: itemCount,
	}); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish checkout.completed event",
			slog.String("session_id", sessionID),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "checkout completed",
		slog.String("session_id", sessionID),
		slog.String("order_id", order.ID),
		slog.String("payment_id", payment.ID),
	)

	return state, nil
}

// handleOrderFailure classifies an order-creation error. A rejection whose
// body parses as a shortfall list lands the submission in the failed phase
// with that list attached; anything else fails with the bare reason.
func (s *CheckoutService) handleOrderFailure(ctx context.Context, sessionID string, err error) (*domain.Submission, error) {
	shortfalls := shortfallsFromError(err)

	reason := "order creation failed"
	if len(shortfalls) > 0 {
		reason = "insufficient stock"
	}

	s.mu.Lock()
	sub := copySubmission(s.failLocked(sessionID, reason, shortfalls))
	s.mu.Unlock()

	s.publishFailed(ctx, sub)
	s.logger.ErrorContext(ctx, "order creation failed",
		slog.String("session_id", sessionID),
		slog.String("error", err.Error()),
	)

	if len(shortfalls) > 0 {
		return sub, apperrors.StockConflict("order rejected for insufficient stock")
	}
	if errors.Is(err, apperrors.ErrUnauthorized) {
		return sub, apperrors.Unauthorized("session token rejected by core api")
	}
	return sub, fmt.Errorf("create order: %w", err)
}

// inFlightState returns a copy of the session's submission when one is
// currently submitting.
func (s *CheckoutService) inFlightState(sessionID string) (*domain.Submission, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if sub, ok := s.submissions[sessionID]; ok && sub.InFlight() {
		return copySubmission(sub), true
	}
	return nil, false
}

// shortfallsFromError extracts stock-shortfall detail from a core API
// rejection. Both backend calls reject with the same error-body shapes, so
// order creation and payment confirmation share this classification.
func shortfallsFromError(err error) []domain.Shortfall {
	var respErr *httpclient.ResponseError
	if errors.As(err, &respErr) {
		return domain.ParseBackendShortfalls(respErr.Body)
	}
	return nil
}

// failLocked records a failed submission for the session. Callers must hold
// s.mu.
func (s *CheckoutService) failLocked(sessionID, reason string, shortfalls []domain.Shortfall) *domain.Submission {
	now := time.Now().UTC()
	sub := &domain.Submission{
		SessionID:     sessionID,
		Phase:         domain.PhaseFailed,
		FailureReason: reason,
		Shortfalls:    shortfalls,
		StartedAt:     now,
		FinishedAt:    now,
	}
	s.submissions[sessionID] = sub
	return sub
}

// publishFailed emits a checkout.failed event; log but do not fail on error.
func (s *CheckoutService) publishFailed(ctx context.Context, sub *domain.Submission) {
	if err := s.producer.PublishCheckoutFailed(ctx, event.CheckoutFailedData{
		SessionID:  sub.SessionID,
		Reason:     sub.FailureReason,
		Shortfalls: sub.Shortfalls,
	}); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish checkout.failed event",
			slog.String("session_id", sub.SessionID),
			slog.String("error", err.Error()),
		)
	}
}

func copySubmission(sub *domain.Submission) *domain.Submission {
	out := *sub
	if sub.Shortfalls != nil {
		out.Shortfalls = make([]domain.Shortfall, len(sub.Shortfalls))
		copy(out.Shortfalls, sub.Shortfalls)
	}
	return &out
}
