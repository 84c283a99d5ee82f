package domain

import (
	"time"

	"github.com/google/uuid"
)

// ProductType tags a ring model for the constructor funnel
type ProductType string

const (
	TypeClassic      ProductType = "classic"
	TypeTextured     ProductType = "textured"
	TypeClassicMens  ProductType = "classic_mens"
	TypeTexturedMens ProductType = "textured_mens"
)

// ValidProductType reports whether t is one of the known variant tags
func ValidProductType(t ProductType) bool {
	switch t {
	case TypeClassic, TypeTextured, TypeClassicMens, TypeTexturedMens:
		return true
	}
	return false
}

// Product represents a catalog item. Price is stored in the smallest
// currency unit. Sizes are display labels and are not guaranteed to be
// numerically sortable (e.g. "18.5").
type Product struct {
	ID                  uuid.UUID   `json:"id" db:"id"`
	Name                string      `json:"name" db:"name"`
	Description         string      `json:"description" db:"description"`
	DetailedDescription string      `json:"detailed_description" db:"detailed_description"`
	Price               int64       `json:"price" db:"price"`
	Category            string      `json:"category" db:"category"`
	Collection          string      `json:"collection" db:"collection"`
	Article             string      `json:"article" db:"article"`
	Material            string      `json:"material" db:"material"`
	Type                ProductType `json:"type" db:"type"`
	Sizes               []string    `json:"sizes" db:"sizes"`
	Images              []string    `json:"images" db:"images"`
	IsActive            bool        `json:"is_active" db:"is_active"`
	CreatedAt           time.Time   `json:"created_at" db:"created_at"`
	UpdatedAt           time.Time   `json:"updated_at" db:"updated_at"`
}

// SizeVariant reports whether the product requires a size selection
func (p *Product) SizeVariant() bool {
	return len(p.Sizes) > 0
}

// HasSize reports whether the given size label is offered for this product
func (p *Product) HasSize(size string) bool {
	for _, s := range p.Sizes {
		if s == size {
			return true
		}
	}
	return false
}

// MatchesConstructorCategory reports whether the product belongs to one of
// the constructor funnel categories: "all", "classic", "textured" or "mens".
// The mens variants participate in both their style category and "mens".
func (p *Product) MatchesConstructorCategory(category string) bool {
	switch category {
	case "all":
		return true
	case "classic":
		return p.Type == TypeClassic || p.Type == TypeClassicMens
	case "textured":
		return p.Type == TypeTextured || p.Type == TypeTexturedMens
	case "mens":
		return p.Type == TypeClassicMens || p.Type == TypeTexturedMens
	}
	return false
}
