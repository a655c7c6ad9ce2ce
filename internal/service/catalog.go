package service

import (
	"context"
	"net/url"

	"github.com/dukerupert/adorn/internal/apiclient"
	"github.com/dukerupert/adorn/internal/domain"
)

// CatalogService reads the public storefront catalog.
type CatalogService interface {
	ListProducts(ctx context.Context) ([]domain.Product, error)
	GetProduct(ctx context.Context, id string) (*domain.Product, error)
	ListProductsByCategory(ctx context.Context, slug string) ([]domain.Product, error)
	ListCategories(ctx context.Context) ([]domain.Category, error)
	GetCategory(ctx context.Context, slug string) (*domain.Category, error)
	ListHeroSlides(ctx context.Context) ([]domain.HeroSlide, error)
	GetSiteContent(ctx context.Context, page, section string) ([]domain.SiteContent, error)
}

type catalogService struct {
	api Requester
}

// NewCatalogService creates a CatalogService over api.
func NewCatalogService(api Requester) (CatalogService, error) {
	if api == nil {
		return nil, errNilRequester
	}
	return &catalogService{api: api}, nil
}

func (s *catalogService) ListProducts(ctx context.Context) ([]domain.Product, error) {
	ws, err := get[[]productWire](ctx, s.api, "catalog.list_products", "/products")
	if err != nil {
		return nil, err
	}
	return productsToDomain(ws), nil
}

func (s *catalogService) GetProduct(ctx context.Context, id string) (*domain.Product, error) {
	const op = "catalog.get_product"
	if err := requireID(op, id); err != nil {
		return nil, err
	}
	w, err := get[productWire](ctx, s.api, op, "/products/"+apiclient.PathEscape(id))
	if err != nil {
		return nil, err
	}
	p := w.toDomain()
	return &p, nil
}

func (s *catalogService) ListProductsByCategory(ctx context.Context, slug string) ([]domain.Product, error) {
	const op = "catalog.list_by_category"
	if slug == "" {
		return nil, domain.NewValidationError(op, "slug", "is required")
	}
	ws, err := get[[]productWire](ctx, s.api, op, "/products/category/"+apiclient.PathEscape(slug))
	if err != nil {
		return nil, err
	}
	return productsToDomain(ws), nil
}

func (s *catalogService) ListCategories(ctx context.Context) ([]domain.Category, error) {
	ws, err := get[[]categoryWire](ctx, s.api, "catalog.list_categories", "/categories")
	if err != nil {
		return nil, err
	}
	out := make([]domain.Category, len(ws))
	for i, w := range ws {
		out[i] = w.toDomain()
	}
	return out, nil
}

func (s *catalogService) GetCategory(ctx context.Context, slug string) (*domain.Category, error) {
	const op = "catalog.get_category"
	if slug == "" {
		return nil, domain.NewValidationError(op, "slug", "is required")
	}
	w, err := get[categoryWire](ctx, s.api, op, "/categories/"+apiclient.PathEscape(slug))
	if err != nil {
		return nil, err
	}
	c := w.toDomain()
	return &c, nil
}

// ListHeroSlides returns the active homepage slides ordered by the backend.
func (s *catalogService) ListHeroSlides(ctx context.Context) ([]domain.HeroSlide, error) {
	ws, err := get[[]heroSlideWire](ctx, s.api, "catalog.list_hero_slides", "/hero-slides")
	if err != nil {
		return nil, err
	}
	out := make([]domain.HeroSlide, len(ws))
	for i, w := range ws {
		out[i] = w.toDomain()
	}
	return out, nil
}

// GetSiteContent returns the content blocks of page, narrowed to section when
// it is non-empty.
func (s *catalogService) GetSiteContent(ctx context.Context, page, section string) ([]domain.SiteContent, error) {
	const op = "catalog.get_site_content"
	if page == "" {
		return nil, domain.NewValidationError(op, "page", "is required")
	}

	q := url.Values{"page": {page}}
	if section != "" {
		q.Set("section", section)
	}

	ws, err := get[[]siteContentWire](ctx, s.api, op, "/site-content?"+q.Encode())
	if err != nil {
		return nil, err
	}
	out := make([]domain.SiteContent, len(ws))
	for i, w := range ws {
		out[i] = w.toDomain()
	}
	return out, nil
}
