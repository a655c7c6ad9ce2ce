package service

import (
	"encoding/json"
	"time"

	"github.com/dukerupert/adorn/internal/domain"
)

// Wire shapes as the backend sends them. Some deployments key documents by
// "_id" instead of "id"; either is accepted and at least one is required.

type productWire struct {
	ID          string        `json:"id" validate:"required_without=MongoID"`
	MongoID     string        `json:"_id"`
	Name        string        `json:"name" validate:"required"`
	Description string        `json:"description"`
	Price       *amount       `json:"price" validate:"required,gte=0"`
	CategoryID  string        `json:"categoryId"`
	Category    *categoryWire `json:"category" validate:"-"`
	Images      []string      `json:"images"`
	Stock       int           `json:"stock"`
	Rating      float64       `json:"rating"`
	IsActive    *bool         `json:"isActive"`
	CreatedAt   time.Time     `json:"createdAt"`
	UpdatedAt   time.Time     `json:"updatedAt"`
}

func (w productWire) toDomain() domain.Product {
	p := domain.Product{
		ID:          firstNonEmpty(w.ID, w.MongoID),
		Name:        w.Name,
		Description: w.Description,
		PriceMinor:  w.Price.minor(),
		CategoryID:  w.CategoryID,
		Images:      w.Images,
		Stock:       w.Stock,
		Rating:      w.Rating,
		IsActive:    boolOr(w.IsActive, true),
		CreatedAt:   w.CreatedAt,
		UpdatedAt:   w.UpdatedAt,
	}
	if w.Category != nil {
		c := w.Category.toDomain()
		p.Category = &c
		if p.CategoryID == "" {
			p.CategoryID = c.ID
		}
	}
	return p
}

func productsToDomain(ws []productWire) []domain.Product {
	out := make([]domain.Product, len(ws))
	for i, w := range ws {
		out[i] = w.toDomain()
	}
	return out
}

type categoryWire struct {
	ID          string    `json:"id" validate:"required_without=MongoID"`
	MongoID     string    `json:"_id"`
	Name        string    `json:"name" validate:"required"`
	Description string    `json:"description"`
	Slug        string    `json:"slug"`
	Image       string    `json:"image"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

func (w categoryWire) toDomain() domain.Category {
	return domain.Category{
		ID:          firstNonEmpty(w.ID, w.MongoID),
		Name:        w.Name,
		Description: w.Description,
		Slug:        w.Slug,
		Image:       w.Image,
		CreatedAt:   w.CreatedAt,
		UpdatedAt:   w.UpdatedAt,
	}
}

type heroSlideWire struct {
	ID         string    `json:"id" validate:"required_without=MongoID"`
	MongoID    string    `json:"_id"`
	Title      string    `json:"title" validate:"required"`
	Subtitle   string    `json:"subtitle"`
	Image      string    `json:"image"`
	CTAText    string    `json:"ctaText"`
	CTALink    string    `json:"ctaLink"`
	OrderIndex int       `json:"orderIndex"`
	IsActive   *bool     `json:"isActive"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

func (w heroSlideWire) toDomain() domain.HeroSlide {
	return domain.HeroSlide{
		ID:         firstNonEmpty(w.ID, w.MongoID),
		Title:      w.Title,
		Subtitle:   w.Subtitle,
		Image:      w.Image,
		CTAText:    w.CTAText,
		CTALink:    w.CTALink,
		OrderIndex: w.OrderIndex,
		IsActive:   boolOr(w.IsActive, true),
		CreatedAt:  w.CreatedAt,
		UpdatedAt:  w.UpdatedAt,
	}
}

type siteContentWire struct {
	ID          string          `json:"id" validate:"required_without=MongoID"`
	MongoID     string          `json:"_id"`
	Page        string          `json:"page" validate:"required"`
	Section     string          `json:"section" validate:"required"`
	ContentType string          `json:"contentType"`
	ContentData json.RawMessage `json:"contentData"`
	IsActive    *bool           `json:"isActive"`
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`
}

func (w siteContentWire) toDomain() domain.SiteContent {
	return domain.SiteContent{
		ID:          firstNonEmpty(w.ID, w.MongoID),
		Page:        w.Page,
		Section:     w.Section,
		ContentType: w.ContentType,
		ContentData: w.ContentData,
		IsActive:    boolOr(w.IsActive, true),
		CreatedAt:   w.CreatedAt,
		UpdatedAt:   w.UpdatedAt,
	}
}

type orderItemWire struct {
	ProductID string `json:"productId" validate:"required"`
	Name      string `json:"name"`
	Quantity  int    `json:"quantity" validate:"gte=1"`
	Price     amount `json:"price"`
}

type orderWire struct {
	ID              string                 `json:"id" validate:"required_without=MongoID"`
	MongoID         string                 `json:"_id"`
	OrderNumber     string                 `json:"orderNumber"`
	UserEmail       string                 `json:"userEmail"`
	UserName        string                 `json:"userName"`
	UserPhone       string                 `json:"userPhone"`
	ShippingAddress domain.ShippingAddress `json:"shippingAddress"`
	TotalAmount     amount                 `json:"totalAmount"`
	Status          domain.OrderStatus     `json:"status"`
	PaymentStatus   domain.PaymentStatus   `json:"paymentStatus"`
	PaymentIntentID string                 `json:"paymentIntentId"`
	Notes           string                 `json:"notes"`
	Items           []orderItemWire        `json:"items" validate:"dive"`
	CreatedAt       time.Time              `json:"createdAt"`
	UpdatedAt       time.Time              `json:"updatedAt"`
}

func (w orderWire) toDomain() domain.Order {
	o := domain.Order{
		ID:              firstNonEmpty(w.ID, w.MongoID),
		OrderNumber:     w.OrderNumber,
		UserEmail:       w.UserEmail,
		UserName:        w.UserName,
		UserPhone:       w.UserPhone,
		ShippingAddress: w.ShippingAddress,
		TotalMinor:      w.TotalAmount.minor(),
		Status:          w.Status,
		PaymentStatus:   w.PaymentStatus,
		PaymentIntentID: w.PaymentIntentID,
		Notes:           w.Notes,
		Items:           make([]domain.OrderItem, len(w.Items)),
		CreatedAt:       w.CreatedAt,
		UpdatedAt:       w.UpdatedAt,
	}
	if o.Status == "" {
		o.Status = domain.OrderStatusPending
	}
	for i, it := range w.Items {
		o.Items[i] = domain.OrderItem{
			ProductID:  it.ProductID,
			Name:       it.Name,
			Quantity:   it.Quantity,
			PriceMinor: it.Price.minor(),
		}
	}
	return o
}

type userWire struct {
	ID           string      `json:"id" validate:"required_without=MongoID"`
	MongoID      string      `json:"_id"`
	Email        string      `json:"email" validate:"required"`
	FirstName    string      `json:"firstName"`
	LastName     string      `json:"lastName"`
	Role         domain.Role `json:"role"`
	Permissions  []string    `json:"permissions"`
	IsActive     *bool       `json:"isActive"`
	Phone        string      `json:"phone"`
	ProfileImage string      `json:"profileImage"`
	LastLogin    *time.Time  `json:"lastLogin"`
	CreatedAt    time.Time   `json:"createdAt"`
	UpdatedAt    time.Time   `json:"updatedAt"`
}

func (w userWire) toDomain() domain.AdminUser {
	return domain.AdminUser{
		ID:           firstNonEmpty(w.ID, w.MongoID),
		Email:        w.Email,
		FirstName:    w.FirstName,
		LastName:     w.LastName,
		Role:         w.Role,
		Permissions:  w.Permissions,
		IsActive:     boolOr(w.IsActive, true),
		Phone:        w.Phone,
		ProfileImage: w.ProfileImage,
		LastLogin:    w.LastLogin,
		CreatedAt:    w.CreatedAt,
		UpdatedAt:    w.UpdatedAt,
	}
}

// pageWire carries pagination fields next to the list. The backend sends
// them flat ({orders, total, page, limit}) or nested under "pagination".
type pageWire struct {
	Total      int                `json:"total"`
	Page       int                `json:"page"`
	Limit      int                `json:"limit"`
	TotalPages int                `json:"totalPages"`
	Pagination *domain.Pagination `json:"pagination"`
}

func (w pageWire) toDomain(count int) domain.Pagination {
	if w.Pagination != nil {
		return fillTotalPages(*w.Pagination)
	}
	p := domain.Pagination{Page: w.Page, Limit: w.Limit, Total: w.Total, TotalPages: w.TotalPages}
	if p.Total == 0 {
		p.Total = count
	}
	return fillTotalPages(p)
}

func fillTotalPages(p domain.Pagination) domain.Pagination {
	if p.Page == 0 {
		p.Page = 1
	}
	if p.TotalPages == 0 && p.Limit > 0 {
		p.TotalPages = (p.Total + p.Limit - 1) / p.Limit
	}
	return p
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}

func boolOr(b *bool, def bool) bool {
	if b == nil {
		return def
	}
	return *b
}
