package http

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/No25ha/Market/internal/domain"
	"github.com/No25ha/Market/pkg/httputil"
	"github.com/No25ha/Market/pkg/pagination"
)

// CatalogHandler serves the read-only catalog. It needs no session.
type CatalogHandler struct {
	catalog Catalog
	logger  *slog.Logger
}

// NewCatalogHandler creates a new catalog HTTP handler.
func NewCatalogHandler(catalog Catalog, logger *slog.Logger) *CatalogHandler {
	return &CatalogHandler{catalog: catalog, logger: logger}
}

// ListProducts handles GET /api/v1/products
//
// Query: category, subcategory, brand, keyword, sort, page, limit.
func (h *CatalogHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page := pagination.FromRequest(r)
	filter := domain.ProductFilter{
		CategoryID:    q.Get("category"),
		SubCategoryID: q.Get("subcategory"),
		BrandID:       q.Get("brand"),
		Keyword:       q.Get("keyword"),
		Sort:          q.Get("sort"),
		Page:          page.Page,
		Limit:         page.Limit,
	}

	result, err := h.catalog.ListProducts(r.Context(), filter)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteData(w, http.StatusOK, result)
}

// GetProduct handles GET /api/v1/products/{id}
func (h *CatalogHandler) GetProduct(w http.ResponseWriter, r *http.Request) {
	product, err := h.catalog.GetProduct(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteData(w, http.StatusOK, product)
}

// ListCategories handles GET /api/v1/categories
func (h *CatalogHandler) ListCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.catalog.ListCategories(r.Context())
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteData(w, http.StatusOK, categories)
}

// GetCategory handles GET /api/v1/categories/{id}
func (h *CatalogHandler) GetCategory(w http.ResponseWriter, r *http.Request) {
	category, err := h.catalog.GetCategory(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteData(w, http.StatusOK, category)
}

// ListCategorySubCategories handles GET /api/v1/categories/{id}/subcategories
func (h *CatalogHandler) ListCategorySubCategories(w http.ResponseWriter, r *http.Request) {
	subs, err := h.catalog.ListSubCategoriesByCategory(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteData(w, http.StatusOK, subs)
}

// ListSubCategories handles GET /api/v1/subcategories
func (h *CatalogHandler) ListSubCategories(w http.ResponseWriter, r *http.Request) {
	subs, err := h.catalog.ListSubCategories(r.Context())
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteData(w, http.StatusOK, subs)
}

// GetSubCategory handles GET /api/v1/subcategories/{id}
func (h *CatalogHandler) GetSubCategory(w http.ResponseWriter, r *http.Request) {
	sub, err := h.catalog.GetSubCategory(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteData(w, http.StatusOK, sub)
}

// ListBrands handles GET /api/v1/brands?limit=&keyword=
func (h *CatalogHandler) ListBrands(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	if limit < 0 || limit > pagination.MaxLimit {
		limit = 0
	}

	brands, err := h.catalog.ListBrands(r.Context(), limit, r.URL.Query().Get("keyword"))
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteData(w, http.StatusOK, brands)
}

// GetBrand handles GET /api/v1/brands/{id}
func (h *CatalogHandler) GetBrand(w http.ResponseWriter, r *http.Request) {
	brand, err := h.catalog.GetBrand(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteData(w, http.StatusOK, brand)
}
