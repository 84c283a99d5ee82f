package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"savra-store/internal/domain"
	"savra-store/internal/repository"

	"github.com/google/uuid"
)

var (
	ErrNotAuthorized   = errors.New("operation requires admin privileges")
	ErrInvalidDiscount = errors.New("discount must be between 1 and 100")
)

// PromoService manages promo codes. Every mutation is gated on the acting
// user's role before any state changes; validation is open to everyone.
type PromoService interface {
	List(ctx context.Context, actor *domain.User) ([]*domain.PromoCode, error)
	Create(ctx context.Context, actor *domain.User, code string, discount int, isActive bool, maxUsage *int) (*domain.PromoCode, error)
	Delete(ctx context.Context, actor *domain.User, id uuid.UUID) error
	// Validate checks redeemability without touching any state
	Validate(ctx context.Context, code string) (*domain.PromoCode, error)
}

type promoService struct {
	promoRepo repository.PromoRepository
}

// NewPromoService creates a new instance of PromoService
func NewPromoService(promoRepo repository.PromoRepository) PromoService {
	return &promoService{promoRepo: promoRepo}
}

// List returns every promo code for the back office
func (s *promoService) List(ctx context.Context, actor *domain.User) ([]*domain.PromoCode, error) {
	if actor == nil || !actor.IsAdmin() {
		return nil, ErrNotAuthorized
	}
	return s.promoRepo.List(ctx)
}

// Create registers a new promo code; the code is stored upper-cased
func (s *promoService) Create(ctx context.Context, actor *domain.User, code string, discount int, isActive bool, maxUsage *int) (*domain.PromoCode, error) {
	if actor == nil || !actor.IsAdmin() {
		return nil, ErrNotAuthorized
	}

	if discount < 1 || discount > 100 {
		return nil, ErrInvalidDiscount
	}
	canonical := domain.CanonicalPromoCode(code)
	if canonical == "" {
		return nil, fmt.Errorf("promo code must not be empty")
	}

	promo := &domain.PromoCode{
		ID:         uuid.New(),
		Code:       canonical,
		Discount:   discount,
		IsActive:   isActive,
		UsageCount: 0,
		MaxUsage:   maxUsage,
		CreatedAt:  time.Now(),
	}

	if err := s.promoRepo.Create(ctx, promo); err != nil {
		return nil, err
	}

	return promo, nil
}

// Delete removes a promo code
func (s *promoService) Delete(ctx context.Context, actor *domain.User, id uuid.UUID) error {
	if actor == nil || !actor.IsAdmin() {
		return ErrNotAuthorized
	}
	return s.promoRepo.Delete(ctx, id)
}

// Validate looks a code up and checks redeemability. A missing, inactive
// or exhausted code all surface as ErrPromoNotFound; the caller shows the
// same user-facing message for each.
func (s *promoService) Validate(ctx context.Context, code string) (*domain.PromoCode, error) {
	promo, err := s.promoRepo.FindByCode(ctx, code)
	if err != nil {
		if errors.Is(err, repository.ErrPromoCodeNotFound) {
			return nil, ErrPromoNotFound
		}
		return nil, err
	}
	if !promo.Redeemable() {
		return nil, ErrPromoNotFound
	}
	return promo, nil
}
