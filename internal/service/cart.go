package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	apperrors "github.com/arca-mz/storefront/pkg/errors"
	"github.com/arca-mz/storefront/internal/domain"
	"github.com/arca-mz/storefront/internal/event"
	"github.com/arca-mz/storefront/internal/repository"
)

// Cart operation upper-bound limits to prevent abuse.
const (
	// MaxQuantityPerLine is the maximum quantity allowed for a single line.
	MaxQuantityPerLine = 100
	// MaxLinesPerCart is the maximum number of distinct lines in a cart.
	MaxLinesPerCart = 50
	// MaxUnitPriceCentavos is the maximum unit price accepted per line.
	MaxUnitPriceCentavos = 1_000_000_00
)

// AddLineInput holds the parameters for adding a product to the cart.
type AddLineInput struct {
	ProductID string `json:"product_id" validate:"required"`
	Name      string `json:"name" validate:"required"`
	UnitPrice int64  `json:"unit_price" validate:"gte=0"`
	// Quantity is the delta to add. Zero and negative deltas are ignored.
	Quantity       int  `json:"quantity"`
	AvailableStock *int `json:"available_stock,omitempty"`
}

// CartService owns the live cart state for every session. The in-memory
// cart is authoritative; Redis is a best-effort backing store so a cart can
// survive a restart. A failed save is logged and never surfaces to the
// caller.
type CartService struct {
	mu    sync.Mutex
	carts map[string]*domain.Cart

	repo     repository.CartRepository
	producer *event.Producer
	logger   *slog.Logger
}

// NewCartService creates a new cart service.
func NewCartService(repo repository.CartRepository, producer *event.Producer, logger *slog.Logger) *CartService {
	return &CartService{
		carts:    make(map[string]*domain.Cart),
		repo:     repo,
		producer: producer,
		logger:   logger,
	}
}

// getCart returns the live cart for a session, hydrating from the backing
// store on first touch. Callers must hold s.mu.
func (s *CartService) getCart(ctx context.Context, sessionID string) *domain.Cart {
	if cart, ok := s.carts[sessionID]; ok {
		return cart
	}

	cart, err := s.repo.Get(ctx, sessionID)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			s.logger.WarnContext(ctx, "failed to hydrate cart, starting empty",
				slog.String("session_id", sessionID),
				slog.String("error", err.Error()),
			)
		}
		cart = domain.NewCart(sessionID)
	}

	s.carts[sessionID] = cart
	return cart
}

// persist saves the cart best-effort. Failures degrade durability only.
func (s *CartService) persist(ctx context.Context, cart *domain.Cart) {
	if err := s.repo.Save(ctx, cart); err != nil {
		s.logger.WarnContext(ctx, "failed to persist cart",
			slog.String("session_id", cart.SessionID),
			slog.String("error", err.Error()),
		)
	}
}

// publishUpdated emits a cart.updated event; log but do not fail on error.
func (s *CartService) publishUpdated(ctx context.Context, cart *domain.Cart) {
	if err := s.producer.PublishCartUpdated(ctx, cart); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish cart.updated event",
			slog.String("session_id", cart.SessionID),
			slog.String("error", err.Error()),
		)
	}
}

// Get returns a snapshot of the session's cart. A session with no cart gets
// an empty one.
func (s *CartService) Get(ctx context.Context, sessionID string) (domain.Snapshot, error) {
	if sessionID == "" {
		return domain.Snapshot{}, apperrors.InvalidInput("session id is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	return s.getCart(ctx, sessionID).Snapshot(), nil
}

// AddLine adds a product to the cart, merging by product ID. Adding an
// already-present product increases its quantity by the input delta; name,
// price and stock hint are refreshed from the input. A non-positive delta
// leaves the cart untouched.
func (s *CartService) AddLine(ctx context.Context, sessionID string, input AddLineInput) (domain.Snapshot, error) {
	if sessionID == "" {
		return domain.Snapshot{}, apperrors.InvalidInput("session id is required")
	}
	if input.ProductID == "" {
		return domain.Snapshot{}, apperrors.InvalidInput("product id is required")
	}
	if input.UnitPrice < 0 {
		return domain.Snapshot{}, apperrors.InvalidInput("unit price must not be negative")
	}
	if input.UnitPrice > MaxUnitPriceCentavos {
		return domain.Snapshot{}, apperrors.InvalidInput(fmt.Sprintf("unit price must not exceed %d centavos", MaxUnitPriceCentavos))
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	cart := s.getCart(ctx, sessionID)

	if input.Quantity <= 0 {
		return cart.Snapshot(), nil
	}

	if i := cart.FindLine(input.ProductID); i >= 0 {
		newQty := cart.Lines[i].Quantity + input.Quantity
		if newQty > MaxQuantityPerLine {
			return domain.Snapshot{}, apperrors.InvalidInput(fmt.Sprintf("combined quantity must not exceed %d", MaxQuantityPerLine))
		}
		cart.Lines[i].Quantity = newQty
		cart.Lines[i].Name = input.Name
		cart.Lines[i].UnitPrice = input.UnitPrice
		if input.AvailableStock != nil {
			hint := *input.AvailableStock
			cart.Lines[i].AvailableStock = &hint
		}
	} else {
		if len(cart.Lines) >= MaxLinesPerCart {
			return domain.Snapshot{}, apperrors.InvalidInput(fmt.Sprintf("cart must not exceed %d distinct products", MaxLinesPerCart))
		}
		if input.Quantity > MaxQuantityPerLine {
			return domain.Snapshot{}, apperrors.InvalidInput(fmt.Sprintf("quantity must not exceed %d", MaxQuantityPerLine))
		}
		line := domain.Line{
			ProductID: input.ProductID,
			Name:      input.Name,
			UnitPrice: input.UnitPrice,
			Quantity:  input.Quantity,
		}
		if input.AvailableStock != nil {
			hint := *input.AvailableStock
			line.AvailableStock = &hint
		}
		cart.Lines = append(cart.Lines, line)
	}

	cart.UpdatedAt = time.Now().UTC()
	s.persist(ctx, cart)
	s.publishUpdated(ctx, cart)

	s.logger.InfoContext(ctx, "cart line added",
		slog.String("session_id", sessionID),
		slog.String("product_id", input.ProductID),
		slog.Int("quantity", input.Quantity),
	)

	return cart.Snapshot(), nil
}

// DecrementLine lowers a line's quantity by one. Decrementing a quantity of
// one removes the line; a line never holds a quantity below one. Unknown
// products are a no-op.
func (s *CartService) DecrementLine(ctx context.Context, sessionID, productID string) (domain.Snapshot, error) {
	if sessionID == "" {
		return domain.Snapshot{}, apperrors.InvalidInput("session id is required")
	}
	if productID == "" {
		return domain.Snapshot{}, apperrors.InvalidInput("product id is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	cart := s.getCart(ctx, sessionID)

	i := cart.FindLine(productID)
	if i < 0 {
		return cart.Snapshot(), nil
	}

	if cart.Lines[i].Quantity <= 1 {
		cart.Lines = append(cart.Lines[:i], cart.Lines[i+1:]...)
	} else {
		cart.Lines[i].Quantity--
	}

	cart.UpdatedAt = time.Now().UTC()
	s.persist(ctx, cart)
	s.publishUpdated(ctx, cart)

	return cart.Snapshot(), nil
}

// SetQuantity sets a line's quantity outright. A quantity of zero or less
// removes the line. Setting a quantity on an unknown product is a no-op.
func (s *CartService) SetQuantity(ctx context.Context, sessionID, productID string, quantity int) (domain.Snapshot, error) {
	if sessionID == "" {
		return domain.Snapshot{}, apperrors.InvalidInput("session id is required")
	}
	if productID == "" {
		return domain.Snapshot{}, apperrors.InvalidInput("product id is required")
	}
	if quantity > MaxQuantityPerLine {
		return domain.Snapshot{}, apperrors.InvalidInput(fmt.Sprintf("quantity must not exceed %d", MaxQuantityPerLine))
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	cart := s.getCart(ctx, sessionID)

	i := cart.FindLine(productID)
	if i < 0 {
		return cart.Snapshot(), nil
	}

	if quantity <= 0 {
		cart.Lines = append(cart.Lines[:i], cart.Lines[i+1:]...)
	} else {
		cart.Lines[i].Quantity = quantity
	}

	cart.UpdatedAt = time.Now().UTC()
	s.persist(ctx, cart)
	s.publishUpdated(ctx, cart)

	return cart.Snapshot(), nil
}

// RemoveLine removes a product from the cart. Removing an absent product is
// a no-op.
func (s *CartService) RemoveLine(ctx context.Context, sessionID, productID string) (domain.Snapshot, error) {
	if sessionID == "" {
		return domain.Snapshot{}, apperrors.InvalidInput("session id is required")
	}
	if productID == "" {
		return domain.Snapshot{}, apperrors.InvalidInput("product id is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	cart := s.getCart(ctx, sessionID)

	i := cart.FindLine(productID)
	if i < 0 {
		return cart.Snapshot(), nil
	}

	cart.Lines = append(cart.Lines[:i], cart.Lines[i+1:]...)
	cart.UpdatedAt = time.Now().UTC()
	s.persist(ctx, cart)
	s.publishUpdated(ctx, cart)

	return cart.Snapshot(), nil
}

// Clear empties the session's cart. Clearing an empty cart is a no-op and
// emits no event.
func (s *CartService) Clear(ctx context.Context, sessionID string) (domain.Snapshot, error) {
	if sessionID == "" {
		return domain.Snapshot{}, apperrors.InvalidInput("session id is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	return s.clearLocked(ctx, sessionID), nil
}

// clearLocked empties the cart. Callers must hold s.mu.
func (s *CartService) clearLocked(ctx context.Context, sessionID string) domain.Snapshot {
	cart := s.getCart(ctx, sessionID)
	if len(cart.Lines) == 0 {
		return cart.Snapshot()
	}

	cart.Lines = []domain.Line{}
	cart.UpdatedAt = time.Now().UTC()

	if err := s.repo.Delete(ctx, sessionID); err != nil {
		s.logger.WarnContext(ctx, "failed to delete persisted cart",
			slog.String("session_id", sessionID),
			slog.String("error", err.Error()),
		)
	}

	if err := s.producer.PublishCartCleared(ctx, sessionID); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish cart.cleared event",
			slog.String("session_id", sessionID),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "cart cleared",
		slog.String("session_id", sessionID),
	)

	return cart.Snapshot()
}

// Lines returns a copy of the session's cart lines for checkout submission.
func (s *CartService) Lines(ctx context.Context, sessionID string) []domain.Line {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.getCart(ctx, sessionID).Snapshot().Lines
}

// ClearAfterCheckout empties the cart once an order has been placed and paid.
func (s *CartService) ClearAfterCheckout(ctx context.Context, sessionID string) domain.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.clearLocked(ctx, sessionID)
}
