package service

import (
	"context"
	"errors"

	"savra-store/internal/domain"
	"savra-store/internal/repository"

	"github.com/google/uuid"
)

// FavoriteService manages a user's favorite set. Favorites never touch
// pricing; they are a plain product-ID set per user.
type FavoriteService interface {
	// Toggle flips membership and reports the new state
	Toggle(ctx context.Context, userID, productID uuid.UUID) (bool, error)
	Add(ctx context.Context, userID, productID uuid.UUID) error
	Remove(ctx context.Context, userID, productID uuid.UUID) error
	Contains(ctx context.Context, userID, productID uuid.UUID) (bool, error)
	// List resolves favorite IDs into catalog products, skipping entries
	// whose product has since been deactivated.
	List(ctx context.Context, userID uuid.UUID) ([]*domain.Product, error)
	Clear(ctx context.Context, userID uuid.UUID) error
}

type favoriteService struct {
	favoriteRepo repository.FavoriteRepository
	productRepo  repository.ProductRepository
}

// NewFavoriteService creates a new instance of FavoriteService
func NewFavoriteService(favoriteRepo repository.FavoriteRepository, productRepo repository.ProductRepository) FavoriteService {
	return &favoriteService{
		favoriteRepo: favoriteRepo,
		productRepo:  productRepo,
	}
}

// Toggle adds the product when absent and removes it when present
func (s *favoriteService) Toggle(ctx context.Context, userID, productID uuid.UUID) (bool, error) {
	exists, err := s.favoriteRepo.Contains(ctx, userID, productID)
	if err != nil {
		return false, err
	}

	if exists {
		if err := s.favoriteRepo.Remove(ctx, userID, productID); err != nil {
			return false, err
		}
		return false, nil
	}

	if err := s.favoriteRepo.Add(ctx, userID, productID); err != nil {
		return false, err
	}
	return true, nil
}

// Add marks the product as favorite; adding twice is a no-op
func (s *favoriteService) Add(ctx context.Context, userID, productID uuid.UUID) error {
	return s.favoriteRepo.Add(ctx, userID, productID)
}

// Remove unmarks the product
func (s *favoriteService) Remove(ctx context.Context, userID, productID uuid.UUID) error {
	return s.favoriteRepo.Remove(ctx, userID, productID)
}

// Contains reports membership
func (s *favoriteService) Contains(ctx context.Context, userID, productID uuid.UUID) (bool, error) {
	return s.favoriteRepo.Contains(ctx, userID, productID)
}

// List returns the user's favorite products
func (s *favoriteService) List(ctx context.Context, userID uuid.UUID) ([]*domain.Product, error) {
	ids, err := s.favoriteRepo.List(ctx, userID)
	if err != nil {
		return nil, err
	}

	products := []*domain.Product{}
	for _, id := range ids {
		product, err := s.productRepo.FindByID(ctx, id)
		if err != nil {
			if errors.Is(err, repository.ErrProductNotFound) {
				continue
			}
			return nil, err
		}
		if !product.IsActive {
			continue
		}
		products = append(products, product)
	}

	return products, nil
}

// Clear drops every favorite of the user
func (s *favoriteService) Clear(ctx context.Context, userID uuid.UUID) error {
	return s.favoriteRepo.ClearAll(ctx, userID)
}
