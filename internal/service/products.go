package service

import (
	"context"
	"io"
	"net/http"
	"strconv"

	"github.com/dukerupert/adorn/internal/apiclient"
	"github.com/dukerupert/adorn/internal/domain"
)

// ProductInput is the admin form for creating or replacing a product.
type ProductInput struct {
	Name        string   `json:"name" validate:"required"`
	Description string   `json:"description,omitempty"`
	PriceMinor  int64    `json:"price" validate:"gte=0"`
	CategoryID  string   `json:"categoryId,omitempty"`
	Images      []string `json:"images,omitempty" validate:"omitempty,dive,required"`
	Stock       int      `json:"stock" validate:"gte=0"`
	Rating      float64  `json:"rating" validate:"gte=0,lte=5"`
	IsActive    *bool    `json:"isActive,omitempty"`
}

// File is an upload part: a name and its content.
type File struct {
	Name   string
	Reader io.Reader
}

type productInputWire struct {
	Name        string   `json:"name"`
	Description string   `json:"description,omitempty"`
	Price       amount   `json:"price"`
	CategoryID  string   `json:"categoryId,omitempty"`
	Images      []string `json:"images,omitempty"`
	Stock       int      `json:"stock"`
	Rating      float64  `json:"rating"`
	IsActive    *bool    `json:"isActive,omitempty"`
}

func (in ProductInput) wire() productInputWire {
	return productInputWire{
		Name:        in.Name,
		Description: in.Description,
		Price:       amountOf(in.PriceMinor),
		CategoryID:  in.CategoryID,
		Images:      in.Images,
		Stock:       in.Stock,
		Rating:      in.Rating,
		IsActive:    in.IsActive,
	}
}

// form builds the multipart variant. Existing image URLs go in "existingImages",
// new files in "images".
func (in ProductInput) form(files []File) *apiclient.Multipart {
	w := in.wire()
	m := apiclient.NewMultipart().
		AddField("name", w.Name).
		AddFieldIf("description", w.Description).
		AddField("price", w.Price.String()).
		AddFieldIf("categoryId", w.CategoryID).
		AddField("stock", strconv.Itoa(w.Stock)).
		AddField("rating", strconv.FormatFloat(w.Rating, 'f', -1, 64))
	if w.IsActive != nil {
		m.AddBool("isActive", *w.IsActive)
	}
	for _, img := range w.Images {
		m.AddField("existingImages", img)
	}
	for _, f := range files {
		m.AddFile("images", f.Name, f.Reader)
	}
	return m
}

// ProductAdminService manages the catalog from the back office.
type ProductAdminService interface {
	List(ctx context.Context) ([]domain.Product, error)
	Create(ctx context.Context, in ProductInput) (*domain.Product, error)
	CreateWithFiles(ctx context.Context, in ProductInput, files []File) (*domain.Product, error)
	Update(ctx context.Context, id string, in ProductInput) (*domain.Product, error)
	UpdateWithFiles(ctx context.Context, id string, in ProductInput, files []File) (*domain.Product, error)
	Delete(ctx context.Context, id string) error
}

type productAdminService struct {
	api Requester
}

func NewProductAdminService(api Requester) (ProductAdminService, error) {
	if api == nil {
		return nil, errNilRequester
	}
	return &productAdminService{api: api}, nil
}

// List returns every product including inactive ones.
func (s *productAdminService) List(ctx context.Context) ([]domain.Product, error) {
	ws, err := get[[]productWire](ctx, s.api, "product.list", "/admin/products")
	if err != nil {
		return nil, err
	}
	return productsToDomain(ws), nil
}

func (s *productAdminService) Create(ctx context.Context, in ProductInput) (*domain.Product, error) {
	const op = "product.create"
	if err := Validate(op, in); err != nil {
		return nil, err
	}
	return s.send(ctx, op, http.MethodPost, "/admin/products", in.wire())
}

func (s *productAdminService) CreateWithFiles(ctx context.Context, in ProductInput, files []File) (*domain.Product, error) {
	const op = "product.create_with_files"
	if err := Validate(op, in); err != nil {
		return nil, err
	}
	return s.send(ctx, op, http.MethodPost, "/admin/products/with-files", in.form(files))
}

func (s *productAdminService) Update(ctx context.Context, id string, in ProductInput) (*domain.Product, error) {
	const op = "product.update"
	if err := requireID(op, id); err != nil {
		return nil, err
	}
	if err := Validate(op, in); err != nil {
		return nil, err
	}
	return s.send(ctx, op, http.MethodPut, "/admin/products/"+apiclient.PathEscape(id), in.wire())
}

func (s *productAdminService) UpdateWithFiles(ctx context.Context, id string, in ProductInput, files []File) (*domain.Product, error) {
	const op = "product.update_with_files"
	if err := requireID(op, id); err != nil {
		return nil, err
	}
	if err := Validate(op, in); err != nil {
		return nil, err
	}
	path := "/admin/products/" + apiclient.PathEscape(id) + "/with-files"
	return s.send(ctx, op, http.MethodPut, path, in.form(files))
}

func (s *productAdminService) Delete(ctx context.Context, id string) error {
	const op = "product.delete"
	if err := requireID(op, id); err != nil {
		return err
	}
	return exec(ctx, s.api, op, http.MethodDelete, "/admin/products/"+apiclient.PathEscape(id), nil)
}

func (s *productAdminService) send(ctx context.Context, op, method, path string, body any) (*domain.Product, error) {
	w, err := call[productWire](ctx, s.api, op, method, path, body)
	if err != nil {
		return nil, err
	}
	p := w.toDomain()
	return &p, nil
}
