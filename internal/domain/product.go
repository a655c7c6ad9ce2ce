package domain

import (
	"encoding/json"
	"time"
)

// =============================================================================
// CATALOG DOMAIN TYPES
// =============================================================================

// Product is the client-side projection of a catalog product.
// Prices are integer minor units (kobo, cents).
type Product struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	PriceMinor  int64     `json:"priceMinor"`
	CategoryID  string    `json:"categoryId,omitempty"`
	Category    *Category `json:"category,omitempty"`
	Images      []string  `json:"images,omitempty"`
	Stock       int       `json:"stock"`
	Rating      float64   `json:"rating"`
	IsActive    bool      `json:"isActive"`
	CreatedAt   time.Time `json:"createdAt,omitempty"`
	UpdatedAt   time.Time `json:"updatedAt,omitempty"`
}

// PrimaryImage returns the first image URL, or "" when the product has none.
func (p Product) PrimaryImage() string {
	if len(p.Images) == 0 {
		return ""
	}
	return p.Images[0]
}

// InStock reports whether at least one unit is available.
func (p Product) InStock() bool {
	return p.Stock > 0
}

// Category groups products for browsing.
type Category struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	Slug        string    `json:"slug"`
	Image       string    `json:"image,omitempty"`
	CreatedAt   time.Time `json:"createdAt,omitempty"`
	UpdatedAt   time.Time `json:"updatedAt,omitempty"`
}

// HeroSlide is a homepage carousel entry.
type HeroSlide struct {
	ID         string    `json:"id"`
	Title      string    `json:"title"`
	Subtitle   string    `json:"subtitle,omitempty"`
	Image      string    `json:"image"`
	CTAText    string    `json:"ctaText,omitempty"`
	CTALink    string    `json:"ctaLink,omitempty"`
	OrderIndex int       `json:"orderIndex"`
	IsActive   bool      `json:"isActive"`
	CreatedAt  time.Time `json:"createdAt,omitempty"`
	UpdatedAt  time.Time `json:"updatedAt,omitempty"`
}

// SiteContent is an editable block of page content addressed by page and
// section. ContentData is opaque to the client core.
type SiteContent struct {
	ID          string          `json:"id"`
	Page        string          `json:"page"`
	Section     string          `json:"section"`
	ContentType string          `json:"contentType"`
	ContentData json.RawMessage `json:"contentData,omitempty"`
	IsActive    bool            `json:"isActive"`
	CreatedAt   time.Time       `json:"createdAt,omitempty"`
	UpdatedAt   time.Time       `json:"updatedAt,omitempty"`
}
