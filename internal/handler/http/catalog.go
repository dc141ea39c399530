package http

import (
	"context"
	"log/slog"
	"math"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/arca-mz/storefront/internal/arca"
	"github.com/arca-mz/storefront/internal/domain"
	"github.com/arca-mz/storefront/pkg/httputil"
	"github.com/arca-mz/storefront/pkg/pagination"
)

// CatalogAPI is the slice of the core API client the catalog surface needs.
type CatalogAPI interface {
	ListProducts(ctx context.Context, params pagination.Params) ([]arca.Product, error)
	GetProduct(ctx context.Context, productID string) (*arca.Product, error)
}

// CatalogHandler proxies the core API catalog, decorating each product with
// its available-stock hint and a centavo price ready for cart lines.
type CatalogHandler struct {
	catalog CatalogAPI
	logger  *slog.Logger
}

// NewCatalogHandler creates a new catalog HTTP handler.
func NewCatalogHandler(catalog CatalogAPI, logger *slog.Logger) *CatalogHandler {
	return &CatalogHandler{
		catalog: catalog,
		logger:  logger,
	}
}

// ProductView is the catalog entry shape served to the browser.
type ProductView struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	// Price is in meticais as quoted by the core API.
	Price float64 `json:"price"`
	// UnitPrice is the same figure in centavos, the unit cart lines use.
	UnitPrice      int64  `json:"unit_price"`
	ImageURL       string `json:"image_url,omitempty"`
	AvailableStock *int   `json:"available_stock,omitempty"`
}

func toProductView(p arca.Product) ProductView {
	return ProductView{
		ID:             p.ID,
		Name:           p.Name,
		Description:    p.Description,
		Price:          p.Price,
		UnitPrice:      int64(math.Round(p.Price * 100)),
		ImageURL:       p.ImageURL,
		AvailableStock: domain.ExtractAvailableStock(p.Raw),
	}
}

// ListProducts handles GET /api/v1/products
func (h *CatalogHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	params := pagination.FromRequest(r)

	products, err := h.catalog.ListProducts(r.Context(), params)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	views := make([]ProductView, 0, len(products))
	for _, p := range products {
		views = append(views, toProductView(p))
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: views})
}

// GetProduct handles GET /api/v1/products/{productID}
func (h *CatalogHandler) GetProduct(w http.ResponseWriter, r *http.Request) {
	productID := chi.URLParam(r, "productID")

	product, err := h.catalog.GetProduct(r.Context(), productID)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: toProductView(*product)})
}
