package service

import (
	"context"
	"errors"
	"time"

	"savra-store/internal/domain"
	"savra-store/internal/repository"

	"github.com/google/uuid"
)

var (
	ErrInvalidProductType = errors.New("unknown product type tag")
)

// ProductInput carries the admin-editable product fields
type ProductInput struct {
	Name                string
	Description         string
	DetailedDescription string
	Price               int64
	Category            string
	Collection          string
	Article             string
	Material            string
	Type                domain.ProductType
	Sizes               []string
	Images              []string
}

// DefaultMaterial is the silver alloy stamped on every piece unless an
// admin says otherwise.
const DefaultMaterial = "Sterling silver 925"

// DefaultRingSizes are used when a product is created without a size run
var DefaultRingSizes = []string{"15", "16", "17", "18", "19", "20", "21"}

// CatalogService serves the product catalog and its admin mutations
type CatalogService interface {
	List(ctx context.Context, category string, page, pageSize int, sortBy string, sortOrder repository.SortOrder) ([]*domain.Product, int, error)
	Search(ctx context.Context, query string, page, pageSize int) ([]*domain.Product, int, error)
	Get(ctx context.Context, id uuid.UUID) (*domain.Product, error)
	// ConstructorModels lists active products for one constructor category
	ConstructorModels(ctx context.Context, category string) ([]*domain.Product, error)
	Create(ctx context.Context, actor *domain.User, input ProductInput) (*domain.Product, error)
	Update(ctx context.Context, actor *domain.User, id uuid.UUID, input ProductInput) (*domain.Product, error)
	// Delete soft-deletes: the product disappears from the storefront but
	// stays behind historical order snapshots.
	Delete(ctx context.Context, actor *domain.User, id uuid.UUID) error
}

type catalogService struct {
	productRepo repository.ProductRepository
}

// NewCatalogService creates a new instance of CatalogService
func NewCatalogService(productRepo repository.ProductRepository) CatalogService {
	return &catalogService{productRepo: productRepo}
}

// List returns active products with pagination
func (s *catalogService) List(ctx context.Context, category string, page, pageSize int, sortBy string, sortOrder repository.SortOrder) ([]*domain.Product, int, error) {
	return s.productRepo.List(ctx, category, page, pageSize, sortBy, sortOrder)
}

// Search returns active products matching the query
func (s *catalogService) Search(ctx context.Context, query string, page, pageSize int) ([]*domain.Product, int, error) {
	return s.productRepo.Search(ctx, query, page, pageSize)
}

// Get returns one product, active or not
func (s *catalogService) Get(ctx context.Context, id uuid.UUID) (*domain.Product, error) {
	return s.productRepo.FindByID(ctx, id)
}

// ConstructorModels filters the active catalog down to one constructor
// funnel category.
func (s *catalogService) ConstructorModels(ctx context.Context, category string) ([]*domain.Product, error) {
	products, _, err := s.productRepo.List(ctx, "", 1, 500, "created_at", repository.SortOrderDesc)
	if err != nil {
		return nil, err
	}

	models := []*domain.Product{}
	for _, p := range products {
		if p.MatchesConstructorCategory(category) {
			models = append(models, p)
		}
	}
	return models, nil
}

// Create adds a product to the catalog (admin only)
func (s *catalogService) Create(ctx context.Context, actor *domain.User, input ProductInput) (*domain.Product, error) {
	if actor == nil || !actor.IsAdmin() {
		return nil, ErrNotAuthorized
	}

	product, err := productFromInput(input)
	if err != nil {
		return nil, err
	}
	product.ID = uuid.New()
	product.IsActive = true
	product.CreatedAt = time.Now()
	product.UpdatedAt = product.CreatedAt

	if err := s.productRepo.Create(ctx, product); err != nil {
		return nil, err
	}

	return product, nil
}

// Update rewrites a product (admin only). Cart lines keep their price
// snapshot; an update never reaches into existing carts.
func (s *catalogService) Update(ctx context.Context, actor *domain.User, id uuid.UUID, input ProductInput) (*domain.Product, error) {
	if actor == nil || !actor.IsAdmin() {
		return nil, ErrNotAuthorized
	}

	existing, err := s.productRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	product, err := productFromInput(input)
	if err != nil {
		return nil, err
	}
	product.ID = id
	product.IsActive = existing.IsActive
	product.CreatedAt = existing.CreatedAt
	product.UpdatedAt = time.Now()

	if err := s.productRepo.Update(ctx, product); err != nil {
		return nil, err
	}

	return product, nil
}

// Delete deactivates the product (admin only)
func (s *catalogService) Delete(ctx context.Context, actor *domain.User, id uuid.UUID) error {
	if actor == nil || !actor.IsAdmin() {
		return ErrNotAuthorized
	}
	return s.productRepo.Deactivate(ctx, id)
}

func productFromInput(input ProductInput) (*domain.Product, error) {
	productType := input.Type
	if productType == "" {
		productType = domain.TypeClassic
	}
	if !domain.ValidProductType(productType) {
		return nil, ErrInvalidProductType
	}

	material := input.Material
	if material == "" {
		material = DefaultMaterial
	}
	sizes := input.Sizes
	if sizes == nil {
		sizes = DefaultRingSizes
	}

	return &domain.Product{
		Name:                input.Name,
		Description:         input.Description,
		DetailedDescription: input.DetailedDescription,
		Price:               input.Price,
		Category:            input.Category,
		Collection:          input.Collection,
		Article:             input.Article,
		Material:            material,
		Type:                productType,
		Sizes:               sizes,
		Images:              input.Images,
	}, nil
}
