package service

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/dukerupert/adorn/internal/apiclient"
	"github.com/dukerupert/adorn/internal/domain"
)

// =============================================================================
// CATEGORIES
// =============================================================================

type CategoryInput struct {
	Name        string `json:"name" validate:"required"`
	Description string `json:"description,omitempty"`
	Slug        string `json:"slug" validate:"required,slug"`
	Image       string `json:"image,omitempty"`
}

// CategoryAdminService manages categories. The image variants upload a file
// in the "image" part alongside the form fields.
type CategoryAdminService interface {
	Create(ctx context.Context, in CategoryInput) (*domain.Category, error)
	CreateWithImage(ctx context.Context, in CategoryInput, image File) (*domain.Category, error)
	Update(ctx context.Context, id string, in CategoryInput) (*domain.Category, error)
	UpdateWithImage(ctx context.Context, id string, in CategoryInput, image File) (*domain.Category, error)
	Delete(ctx context.Context, id string) error
}

type categoryAdminService struct {
	api Requester
}

func NewCategoryAdminService(api Requester) (CategoryAdminService, error) {
	if api == nil {
		return nil, errNilRequester
	}
	return &categoryAdminService{api: api}, nil
}

func (in CategoryInput) form(image File) *apiclient.Multipart {
	m := apiclient.NewMultipart().
		AddField("name", in.Name).
		AddFieldIf("description", in.Description).
		AddField("slug", in.Slug).
		AddFieldIf("image", in.Image)
	if image.Reader != nil {
		m.AddFile("image", image.Name, image.Reader)
	}
	return m
}

func (s *categoryAdminService) Create(ctx context.Context, in CategoryInput) (*domain.Category, error) {
	const op = "category.create"
	if err := Validate(op, in); err != nil {
		return nil, err
	}
	return s.send(ctx, op, http.MethodPost, "/admin/categories", in)
}

func (s *categoryAdminService) CreateWithImage(ctx context.Context, in CategoryInput, image File) (*domain.Category, error) {
	const op = "category.create_with_image"
	if err := Validate(op, in); err != nil {
		return nil, err
	}
	return s.send(ctx, op, http.MethodPost, "/admin/categories", in.form(image))
}

func (s *categoryAdminService) Update(ctx context.Context, id string, in CategoryInput) (*domain.Category, error) {
	const op = "category.update"
	if err := requireID(op, id); err != nil {
		return nil, err
	}
	if err := Validate(op, in); err != nil {
		return nil, err
	}
	return s.send(ctx, op, http.MethodPut, "/admin/categories/"+apiclient.PathEscape(id), in)
}

func (s *categoryAdminService) UpdateWithImage(ctx context.Context, id string, in CategoryInput, image File) (*domain.Category, error) {
	const op = "category.update_with_image"
	if err := requireID(op, id); err != nil {
		return nil, err
	}
	if err := Validate(op, in); err != nil {
		return nil, err
	}
	return s.send(ctx, op, http.MethodPut, "/admin/categories/"+apiclient.PathEscape(id), in.form(image))
}

func (s *categoryAdminService) Delete(ctx context.Context, id string) error {
	const op = "category.delete"
	if err := requireID(op, id); err != nil {
		return err
	}
	return exec(ctx, s.api, op, http.MethodDelete, "/admin/categories/"+apiclient.PathEscape(id), nil)
}

func (s *categoryAdminService) send(ctx context.Context, op, method, path string, body any) (*domain.Category, error) {
	w, err := call[categoryWire](ctx, s.api, op, method, path, body)
	if err != nil {
		return nil, err
	}
	c := w.toDomain()
	return &c, nil
}

// =============================================================================
// HERO SLIDES
// =============================================================================

type HeroSlideInput struct {
	Title      string `json:"title" validate:"required"`
	Subtitle   string `json:"subtitle,omitempty"`
	Image      string `json:"image,omitempty"`
	CTAText    string `json:"ctaText,omitempty"`
	CTALink    string `json:"ctaLink,omitempty" validate:"omitempty,uri"`
	OrderIndex int    `json:"orderIndex" validate:"gte=0"`
	IsActive   *bool  `json:"isActive,omitempty"`
}

type HeroSlideAdminService interface {
	List(ctx context.Context) ([]domain.HeroSlide, error)
	Create(ctx context.Context, in HeroSlideInput) (*domain.HeroSlide, error)
	Update(ctx context.Context, id string, in HeroSlideInput) (*domain.HeroSlide, error)
	Delete(ctx context.Context, id string) error
}

type heroSlideAdminService struct {
	api Requester
}

func NewHeroSlideAdminService(api Requester) (HeroSlideAdminService, error) {
	if api == nil {
		return nil, errNilRequester
	}
	return &heroSlideAdminService{api: api}, nil
}

// List returns every slide including inactive ones.
func (s *heroSlideAdminService) List(ctx context.Context) ([]domain.HeroSlide, error) {
	ws, err := get[[]heroSlideWire](ctx, s.api, "hero_slide.list", "/admin/hero-slides")
	if err != nil {
		return nil, err
	}
	out := make([]domain.HeroSlide, len(ws))
	for i, w := range ws {
		out[i] = w.toDomain()
	}
	return out, nil
}

func (s *heroSlideAdminService) Create(ctx context.Context, in HeroSlideInput) (*domain.HeroSlide, error) {
	const op = "hero_slide.create"
	if err := Validate(op, in); err != nil {
		return nil, err
	}
	return s.send(ctx, op, http.MethodPost, "/admin/hero-slides", in)
}

func (s *heroSlideAdminService) Update(ctx context.Context, id string, in HeroSlideInput) (*domain.HeroSlide, error) {
	const op = "hero_slide.update"
	if err := requireID(op, id); err != nil {
		return nil, err
	}
	if err := Validate(op, in); err != nil {
		return nil, err
	}
	return s.send(ctx, op, http.MethodPut, "/admin/hero-slides/"+apiclient.PathEscape(id), in)
}

func (s *heroSlideAdminService) Delete(ctx context.Context, id string) error {
	const op = "hero_slide.delete"
	if err := requireID(op, id); err != nil {
		return err
	}
	return exec(ctx, s.api, op, http.MethodDelete, "/admin/hero-slides/"+apiclient.PathEscape(id), nil)
}

func (s *heroSlideAdminService) send(ctx context.Context, op, method, path string, body any) (*domain.HeroSlide, error) {
	w, err := call[heroSlideWire](ctx, s.api, op, method, path, body)
	if err != nil {
		return nil, err
	}
	h := w.toDomain()
	return &h, nil
}

// =============================================================================
// SITE CONTENT
// =============================================================================

type ContentInput struct {
	Page        string          `json:"page" validate:"required"`
	Section     string          `json:"section" validate:"required"`
	ContentType string          `json:"contentType" validate:"required"`
	ContentData json.RawMessage `json:"contentData" validate:"required"`
	IsActive    *bool           `json:"isActive,omitempty"`
}

type ContentAdminService interface {
	ListAll(ctx context.Context) ([]domain.SiteContent, error)
	Create(ctx context.Context, in ContentInput) (*domain.SiteContent, error)
	Update(ctx context.Context, id string, in ContentInput) (*domain.SiteContent, error)
	Delete(ctx context.Context, id string) error
}

type contentAdminService struct {
	api Requester
}

func NewContentAdminService(api Requester) (ContentAdminService, error) {
	if api == nil {
		return nil, errNilRequester
	}
	return &contentAdminService{api: api}, nil
}

func (s *contentAdminService) ListAll(ctx context.Context) ([]domain.SiteContent, error) {
	ws, err := get[[]siteContentWire](ctx, s.api, "content.list", "/simple-content/admin/all")
	if err != nil {
		return nil, err
	}
	out := make([]domain.SiteContent, len(ws))
	for i, w := range ws {
		out[i] = w.toDomain()
	}
	return out, nil
}

func (s *contentAdminService) Create(ctx context.Context, in ContentInput) (*domain.SiteContent, error) {
	const op = "content.create"
	if err := validateContent(op, in); err != nil {
		return nil, err
	}
	return s.send(ctx, op, http.MethodPost, "/simple-content", in)
}

func (s *contentAdminService) Update(ctx context.Context, id string, in ContentInput) (*domain.SiteContent, error) {
	const op = "content.update"
	if err := requireID(op, id); err != nil {
		return nil, err
	}
	if err := validateContent(op, in); err != nil {
		return nil, err
	}
	return s.send(ctx, op, http.MethodPut, "/simple-content/"+apiclient.PathEscape(id), in)
}

func (s *contentAdminService) Delete(ctx context.Context, id string) error {
	const op = "content.delete"
	if err := requireID(op, id); err != nil {
		return err
	}
	return exec(ctx, s.api, op, http.MethodDelete, "/simple-content/"+apiclient.PathEscape(id), nil)
}

func (s *contentAdminService) send(ctx context.Context, op, method, path string, body any) (*domain.SiteContent, error) {
	w, err := call[siteContentWire](ctx, s.api, op, method, path, body)
	if err != nil {
		return nil, err
	}
	c := w.toDomain()
	return &c, nil
}

// validateContent also rejects content data that is not valid JSON, which
// would otherwise fail inside the request encoder.
func validateContent(op string, in ContentInput) error {
	if err := Validate(op, in); err != nil {
		return err
	}
	if !json.Valid(in.ContentData) {
		return domain.NewValidationError(op, "contentData", "must be valid JSON")
	}
	return nil
}
