package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"savra-store/internal/cart"
	"savra-store/internal/domain"
	"savra-store/internal/mail"
	"savra-store/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

var (
	// ErrEmptyCart is the engine's sentinel, re-exported so transport can
	// match it on the service surface.
	ErrEmptyCart     = cart.ErrEmptyCart
	ErrPromoNotFound = errors.New("promo code not found or inactive")
	ErrProductGone   = errors.New("product is no longer available")
)

// CartView is the session cart as presented to the client
type CartView struct {
	Items       []domain.CartItem  `json:"items"`
	Promo       *cart.AppliedPromo `json:"promo,omitempty"`
	Totals      cart.Totals        `json:"totals"`
	ItemCount   int                `json:"item_count"`
	Installment int64              `json:"installment_monthly"`
}

// InstallmentMonths is the plan length used for the monthly estimate
const InstallmentMonths = 12

// CartService owns the session cart: every mutation is applied through the
// pricing engine and mirrored to storage, so a session reads its own
// writes. Checkout turns the cart into an immutable order.
type CartService interface {
	Get(ctx context.Context, userID uuid.UUID) (*CartView, error)
	AddItem(ctx context.Context, userID, productID uuid.UUID, quantity int, size string, orderType domain.OrderType) (*CartView, error)
	UpdateQuantity(ctx context.Context, userID, productID uuid.UUID, size string, quantity int) (*CartView, error)
	RemoveItem(ctx context.Context, userID, productID uuid.UUID, size string) (*CartView, error)
	Clear(ctx context.Context, userID uuid.UUID) error
	ApplyPromo(ctx context.Context, userID uuid.UUID, code string) (*CartView, error)
	RemovePromo(ctx context.Context, userID uuid.UUID) (*CartView, error)
	Checkout(ctx context.Context, userID uuid.UUID) (*domain.Order, error)
}

type cartService struct {
	cartRepo    repository.CartRepository
	productRepo repository.ProductRepository
	promoRepo   repository.PromoRepository
	orderRepo   repository.OrderRepository
	userRepo    repository.UserRepository
	mailer      mail.Mailer
	pricing     cart.Pricing
	logger      *zap.Logger
}

// NewCartService creates a new instance of CartService
func NewCartService(
	cartRepo repository.CartRepository,
	productRepo repository.ProductRepository,
	promoRepo repository.PromoRepository,
	orderRepo repository.OrderRepository,
	userRepo repository.UserRepository,
	mailer mail.Mailer,
	pricing cart.Pricing,
	logger *zap.Logger,
) CartService {
	return &cartService{
		cartRepo:    cartRepo,
		productRepo: productRepo,
		promoRepo:   promoRepo,
		orderRepo:   orderRepo,
		userRepo:    userRepo,
		mailer:      mailer,
		pricing:     pricing,
		logger:      logger,
	}
}

// Get loads and prices the user's cart
func (s *cartService) Get(ctx context.Context, userID uuid.UUID) (*CartView, error) {
	c, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.view(c), nil
}

// AddItem snapshots the product's current price into a new or merged line
func (s *cartService) AddItem(ctx context.Context, userID, productID uuid.UUID, quantity int, size string, orderType domain.OrderType) (*CartView, error) {
	product, err := s.productRepo.FindByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	if !product.IsActive {
		return nil, ErrProductGone
	}

	c, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}

	if err := c.AddItem(product, cart.AddOptions{
		Quantity:  quantity,
		Size:      size,
		OrderType: orderType,
	}); err != nil {
		return nil, err
	}

	s.refreshPromo(ctx, userID, c)

	return s.store(ctx, userID, c)
}

// UpdateQuantity sets a line's quantity; zero or less removes the line
func (s *cartService) UpdateQuantity(ctx context.Context, userID, productID uuid.UUID, size string, quantity int) (*CartView, error) {
	c, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}

	c.UpdateQuantity(productID, size, quantity)
	s.refreshPromo(ctx, userID, c)

	return s.store(ctx, userID, c)
}

// RemoveItem drops a line from the cart
func (s *cartService) RemoveItem(ctx context.Context, userID, productID uuid.UUID, size string) (*CartView, error) {
	c, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}

	c.RemoveItem(productID, size)
	s.refreshPromo(ctx, userID, c)

	return s.store(ctx, userID, c)
}

// Clear empties the cart
func (s *cartService) Clear(ctx context.Context, userID uuid.UUID) error {
	return s.cartRepo.Clear(ctx, userID)
}

// ApplyPromo validates and applies a promo code to the session cart. The
// discount is frozen from the subtotal at this moment. Usage counters are
// untouched; they move at checkout.
func (s *cartService) ApplyPromo(ctx context.Context, userID uuid.UUID, code string) (*CartView, error) {
	c, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}

	promo, err := s.promoRepo.FindByCode(ctx, code)
	if err != nil {
		if errors.Is(err, repository.ErrPromoCodeNotFound) {
			return nil, ErrPromoNotFound
		}
		return nil, err
	}

	if _, err := c.ApplyPromo(code, []domain.PromoCode{*promo}); err != nil {
		return nil, ErrPromoNotFound
	}

	return s.store(ctx, userID, c)
}

// RemovePromo clears the applied discount
func (s *cartService) RemovePromo(ctx context.Context, userID uuid.UUID) (*CartView, error) {
	c, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}

	c.RemovePromo()

	return s.store(ctx, userID, c)
}

// Checkout submits the cart as an immutable pending order. An applied
// promo is re-validated against storage before the order is written, its
// usage counter is bumped exactly once, and the cart is cleared.
func (s *cartService) Checkout(ctx context.Context, userID uuid.UUID) (*domain.Order, error) {
	c, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}

	if c.IsEmpty() {
		return nil, ErrEmptyCart
	}

	applied := c.Promo()
	if applied != nil {
		// The code may have been deactivated or exhausted between
		// apply time and now.
		promo, err := s.promoRepo.FindByCode(ctx, applied.Code)
		if err != nil || !promo.Redeemable() {
			c.RemovePromo()
			applied = nil
			s.logger.Info("Applied promo no longer redeemable, dropped at checkout",
				zap.String("user_id", userID.String()),
			)
		}
	}

	totals := c.Totals()
	now := time.Now()
	order := &domain.Order{
		ID:        uuid.New(),
		UserID:    userID,
		Items:     c.Items(),
		Subtotal:  totals.Subtotal,
		Discount:  totals.Discount,
		Delivery:  totals.Delivery,
		Total:     totals.Total,
		Status:    domain.StatusPending,
		OrderType: c.OrderType(),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if applied != nil {
		order.PromoCode = applied.Code
	}

	if err := s.orderRepo.Create(ctx, order); err != nil {
		return nil, fmt.Errorf("failed to submit order: %w", err)
	}

	if applied != nil {
		if err := s.promoRepo.IncrementUsage(ctx, applied.Code); err != nil {
			// The order stands; an uncounted redemption is preferable to
			// failing a placed order.
			s.logger.Error("Failed to increment promo usage",
				zap.String("code", applied.Code),
				zap.Error(err),
			)
		}
	}

	if err := s.cartRepo.Clear(ctx, userID); err != nil {
		s.logger.Error("Failed to clear cart after checkout",
			zap.String("user_id", userID.String()),
			zap.Error(err),
		)
	}

	s.notifyCustomer(ctx, userID, order)

	return order, nil
}

// refreshPromo re-freezes the applied discount from the current subtotal
// after a line mutation, so the stored discount always matches the cart it
// rides on. A code that has disappeared, is no longer redeemable, or is
// attached to an emptied cart is dropped instead.
func (s *cartService) refreshPromo(ctx context.Context, userID uuid.UUID, c *cart.Cart) {
	applied := c.Promo()
	if applied == nil {
		return
	}

	c.RemovePromo()
	if c.IsEmpty() {
		return
	}

	promo, err := s.promoRepo.FindByCode(ctx, applied.Code)
	if err != nil || !promo.Redeemable() {
		s.logger.Info("Applied promo no longer redeemable, dropped",
			zap.String("user_id", userID.String()),
			zap.String("code", applied.Code),
		)
		return
	}

	if _, err := c.ApplyPromo(applied.Code, []domain.PromoCode{*promo}); err != nil {
		s.logger.Info("Applied promo no longer applicable, dropped",
			zap.String("user_id", userID.String()),
			zap.String("code", applied.Code),
		)
	}
}

func (s *cartService) notifyCustomer(ctx context.Context, userID uuid.UUID, order *domain.Order) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		s.logger.Warn("Could not load user for order confirmation", zap.Error(err))
		return
	}
	if err := s.mailer.SendOrderConfirmation(ctx, user.Email, order); err != nil {
		s.logger.Warn("Failed to send order confirmation",
			zap.String("order_id", order.ID.String()),
			zap.Error(err),
		)
	}
}

func (s *cartService) load(ctx context.Context, userID uuid.UUID) (*cart.Cart, error) {
	stored, err := s.cartRepo.Get(ctx, userID)
	if err != nil {
		return nil, err
	}

	var promo *cart.AppliedPromo
	if stored.PromoCode != "" {
		promo = &cart.AppliedPromo{Code: stored.PromoCode, Discount: stored.PromoDiscount}
	}

	return cart.Restore(s.pricing, stored.Items, promo), nil
}

func (s *cartService) store(ctx context.Context, userID uuid.UUID, c *cart.Cart) (*CartView, error) {
	stored := &repository.StoredCart{Items: c.Items()}
	if promo := c.Promo(); promo != nil {
		stored.PromoCode = promo.Code
		stored.PromoDiscount = promo.Discount
	}

	if err := s.cartRepo.Save(ctx, userID, stored); err != nil {
		return nil, err
	}

	return s.view(c), nil
}

func (s *cartService) view(c *cart.Cart) *CartView {
	return &CartView{
		Items:       c.Items(),
		Promo:       c.Promo(),
		Totals:      c.Totals(),
		ItemCount:   c.ItemCount(),
		Installment: c.InstallmentPlan(InstallmentMonths),
	}
}
