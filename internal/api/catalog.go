package api

import (
	"context"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"

	"github.com/No25ha/Market/internal/domain"
	"github.com/No25ha/Market/pkg/httpclient"
	"github.com/No25ha/Market/pkg/pagination"
)

// CatalogService reads products, categories, subcategories and brands.
// None of these calls need a session.
type CatalogService struct {
	doer   Doer
	logger *slog.Logger
}

// NewCatalogService creates a new catalog service.
func NewCatalogService(doer Doer, logger *slog.Logger) *CatalogService {
	return &CatalogService{doer: doer, logger: logger}
}

// ListProducts returns one page of products matching filter.
func (s *CatalogService) ListProducts(ctx context.Context, filter domain.ProductFilter) (pagination.Result[domain.Product], error) {
	q := url.Values{}
	if filter.CategoryID != "" {
		q.Set("category[in]", filter.CategoryID)
	}
	if filter.SubCategoryID != "" {
		q.Set("subcategory", filter.SubCategoryID)
	}
	if filter.BrandID != "" {
		q.Set("brand[in]", filter.BrandID)
	}
	if filter.Keyword != "" {
		q.Set("keyword", filter.Keyword)
	}
	if filter.Sort != "" {
		q.Set("sort", filter.Sort)
	}
	pagination.Params{Page: filter.Page, Limit: filter.Limit}.Apply(q)

	var env listEnvelope[domain.Product]
	err := call(ctx, s.doer, s.logger, &httpclient.Request{
		Method: http.MethodGet,
		Path:   path(familyProducts),
		Route:  route(familyProducts),
		Query:  q,
	}, "Failed to load products.", &env)
	if err != nil {
		return pagination.Result[domain.Product]{}, err
	}
	return pagination.NewResult(env.Data, env.Results, env.Metadata), nil
}

// GetProduct returns one product.
func (s *CatalogService) GetProduct(ctx context.Context, id string) (*domain.Product, error) {
	var env itemEnvelope[domain.Product]
	err := call(ctx, s.doer, s.logger, &httpclient.Request{
		Method: http.MethodGet,
		Path:   path(familyProducts, id),
		Route:  route(familyProducts, "{id}"),
	}, "Failed to load product.", &env)
	if err != nil {
		return nil, err
	}
	return &env.Data, nil
}

// ListCategories returns every category.
func (s *CatalogService) ListCategories(ctx context.Context) ([]domain.Category, error) {
	var env listEnvelope[domain.Category]
	err := call(ctx, s.doer, s.logger, &httpclient.Request{
		Method: http.MethodGet,
		Path:   path(familyCategories),
		Route:  route(familyCategories),
	}, "Failed to load categories.", &env)
	if err != nil {
		return nil, err
	}
	return fillSlugs(nonNil(env.Data)), nil
}

// GetCategory returns one category.
func (s *CatalogService) GetCategory(ctx context.Context, id string) (*domain.Category, error) {
	var env itemEnvelope[domain.Category]
	err := call(ctx, s.doer, s.logger, &httpclient.Request{
		Method: http.MethodGet,
		Path:   path(familyCategories, id),
		Route:  route(familyCategories, "{id}"),
	}, "Failed to load category details.", &env)
	if err != nil {
		return nil, err
	}
	env.Data.FillSlug()
	return &env.Data, nil
}

// ListSubCategories returns every subcategory.
func (s *CatalogService) ListSubCategories(ctx context.Context) ([]domain.SubCategory, error) {
	return s.listSubCategories(ctx, nil)
}

// ListSubCategoriesByCategory returns the subcategories of one category.
// An empty categoryID yields an empty list without calling the upstream.
func (s *CatalogService) ListSubCategoriesByCategory(ctx context.Context, categoryID string) ([]domain.SubCategory, error) {
	if categoryID == "" {
		return []domain.SubCategory{}, nil
	}
	return s.listSubCategories(ctx, url.Values{"category": {categoryID}})
}

func (s *CatalogService) listSubCategories(ctx context.Context, q url.Values) ([]domain.SubCategory, error) {
	var env listEnvelope[domain.SubCategory]
	err := call(ctx, s.doer, s.logger, &httpclient.Request{
		Method: http.MethodGet,
		Path:   path(familySubcategories),
		Route:  route(familySubcategories),
		Query:  q,
	}, "Failed to load subcategories.", &env)
	if err != nil {
		return nil, err
	}
	return fillSlugs(nonNil(env.Data)), nil
}

// GetSubCategory returns one subcategory.
func (s *CatalogService) GetSubCategory(ctx context.Context, id string) (*domain.SubCategory, error) {
	var env itemEnvelope[domain.SubCategory]
	err := call(ctx, s.doer, s.logger, &httpclient.Request{
		Method: http.MethodGet,
		Path:   path(familySubcategories, id),
		Route:  route(familySubcategories, "{id}"),
	}, "Failed to load subcategory.", &env)
	if err != nil {
		return nil, err
	}
	env.Data.FillSlug()
	return &env.Data, nil
}

// ListBrands returns up to limit brands whose name matches keyword.
func (s *CatalogService) ListBrands(ctx context.Context, limit int, keyword string) ([]domain.Brand, error) {
	if limit <= 0 {
		limit = 100
	}
	q := url.Values{"limit": {strconv.Itoa(limit)}}
	if keyword != "" {
		q.Set("keyword", keyword)
	}

	var env listEnvelope[domain.Brand]
	err := call(ctx, s.doer, s.logger, &httpclient.Request{
		Method: http.MethodGet,
		Path:   path(familyBrands),
		Route:  route(familyBrands),
		Query:  q,
	}, "Failed to load brands.", &env)
	if err != nil {
		return nil, err
	}
	return fillSlugs(nonNil(env.Data)), nil
}

// GetBrand returns one brand.
func (s *CatalogService) GetBrand(ctx context.Context, id string) (*domain.Brand, error) {
	var env itemEnvelope[domain.Brand]
	err := call(ctx, s.doer, s.logger, &httpclient.Request{
		Method: http.MethodGet,
		Path:   path(familyBrands, id),
		Route:  route(familyBrands, "{id}"),
	}, "Failed to fetch brand.", &env)
	if err != nil {
		return nil, err
	}
	env.Data.FillSlug()
	return &env.Data, nil
}

// fillSlugs derives missing slugs in place.
func fillSlugs[T any, P interface {
	*T
	FillSlug()
}](items []T) []T {
	for i := range items {
		P(&items[i]).FillSlug()
	}
	return items
}
