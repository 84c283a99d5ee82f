package service

import (
	"context"
	"testing"
	"time"

	"savra-store/internal/cart"
	"savra-store/internal/domain"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type cartFixture struct {
	service  CartService
	products *mockProductRepository
	promos   *mockPromoRepository
	orders   *mockOrderRepository
	users    *mockUserRepository
	carts    *mockCartRepository
	mailer   *mockMailer
	userID   uuid.UUID
}

func newCartFixture(t *testing.T) *cartFixture {
	t.Helper()

	f := &cartFixture{
		products: newMockProductRepository(),
		promos:   newMockPromoRepository(),
		orders:   newMockOrderRepository(),
		users:    newMockUserRepository(),
		carts:    newMockCartRepository(),
		mailer:   &mockMailer{},
		userID:   uuid.New(),
	}

	f.users.users["anna@example.com"] = &domain.User{
		ID:    f.userID,
		Email: "anna@example.com",
		Role:  domain.RoleClient,
	}

	f.service = NewCartService(
		f.carts, f.products, f.promos, f.orders, f.users,
		f.mailer, cart.DefaultPricing, zap.NewNop(),
	)
	return f
}

func (f *cartFixture) seedProduct(price int64, sizes ...string) *domain.Product {
	p := &domain.Product{
		ID:       uuid.New(),
		Name:     "Erosion Ring",
		Price:    price,
		Type:     domain.TypeClassic,
		Sizes:    sizes,
		IsActive: true,
	}
	f.products.products[p.ID] = p
	return p
}

func (f *cartFixture) seedPromo(code string, discount int, active bool, maxUsage *int) *domain.PromoCode {
	promo := &domain.PromoCode{
		ID:        uuid.New(),
		Code:      code,
		Discount:  discount,
		IsActive:  active,
		MaxUsage:  maxUsage,
		CreatedAt: time.Now(),
	}
	f.promos.promos[code] = promo
	return promo
}

func TestCartServiceAddItemPersistsAcrossLoads(t *testing.T) {
	f := newCartFixture(t)
	p := f.seedProduct(10250, "18")
	ctx := context.Background()

	_, err := f.service.AddItem(ctx, f.userID, p.ID, 1, "18", domain.OrderTypeCatalog)
	require.NoError(t, err)

	// Read-after-write within the session: a fresh load sees the line.
	view, err := f.service.Get(ctx, f.userID)
	require.NoError(t, err)
	require.Len(t, view.Items, 1)
	assert.Equal(t, int64(10250), view.Totals.Total)
}

func TestCartServiceMergesAcrossRequests(t *testing.T) {
	f := newCartFixture(t)
	p := f.seedProduct(10250, "18")
	ctx := context.Background()

	_, err := f.service.AddItem(ctx, f.userID, p.ID, 1, "18", domain.OrderTypeCatalog)
	require.NoError(t, err)
	view, err := f.service.AddItem(ctx, f.userID, p.ID, 2, "18", domain.OrderTypeCatalog)
	require.NoError(t, err)

	require.Len(t, view.Items, 1)
	assert.Equal(t, 3, view.Items[0].Quantity)
}

func TestCartServiceRejectsInactiveProduct(t *testing.T) {
	f := newCartFixture(t)
	p := f.seedProduct(10250, "18")
	p.IsActive = false
	ctx := context.Background()

	_, err := f.service.AddItem(ctx, f.userID, p.ID, 1, "18", domain.OrderTypeCatalog)
	assert.ErrorIs(t, err, ErrProductGone)
}

func TestCartServicePriceSnapshotIgnoresLaterCatalogEdits(t *testing.T) {
	f := newCartFixture(t)
	p := f.seedProduct(10250, "18")
	ctx := context.Background()

	_, err := f.service.AddItem(ctx, f.userID, p.ID, 1, "18", domain.OrderTypeCatalog)
	require.NoError(t, err)

	p.Price = 20000

	view, err := f.service.Get(ctx, f.userID)
	require.NoError(t, err)
	assert.Equal(t, int64(10250), view.Items[0].Price)
}

func TestCartServiceApplyPromoFreezesDiscount(t *testing.T) {
	f := newCartFixture(t)
	p := f.seedProduct(10250, "18")
	f.seedPromo("SAVRA10", 10, true, nil)
	ctx := context.Background()

	_, err := f.service.AddItem(ctx, f.userID, p.ID, 1, "18", domain.OrderTypeCatalog)
	require.NoError(t, err)

	view, err := f.service.ApplyPromo(ctx, f.userID, "savra10")
	require.NoError(t, err)
	assert.Equal(t, int64(1025), view.Totals.Discount)
	assert.Equal(t, int64(9225), view.Totals.Total)

	// Applying never spends the code.
	assert.Equal(t, 0, f.promos.promos["SAVRA10"].UsageCount)
}

func TestCartServiceDiscountTracksCartAfterLineRemoval(t *testing.T) {
	f := newCartFixture(t)
	ring := f.seedProduct(10250, "18")
	band := f.seedProduct(1000, "18")
	f.seedPromo("SAVRA10", 10, true, nil)
	ctx := context.Background()

	_, err := f.service.AddItem(ctx, f.userID, ring.ID, 1, "18", domain.OrderTypeCatalog)
	require.NoError(t, err)
	_, err = f.service.AddItem(ctx, f.userID, band.ID, 1, "18", domain.OrderTypeCatalog)
	require.NoError(t, err)

	view, err := f.service.ApplyPromo(ctx, f.userID, "SAVRA10")
	require.NoError(t, err)
	require.Equal(t, int64(1125), view.Totals.Discount)

	// Dropping the expensive line re-freezes the discount from what is
	// left; the stale 1125 must not ride into a 1000 cart.
	view, err = f.service.RemoveItem(ctx, f.userID, ring.ID, "18")
	require.NoError(t, err)
	assert.Equal(t, cart.Totals{Subtotal: 1000, Discount: 100, Delivery: 500, Total: 1400}, view.Totals)
}

func TestCartServiceDiscountTracksCartAfterQuantityChange(t *testing.T) {
	f := newCartFixture(t)
	p := f.seedProduct(1000, "18")
	f.seedPromo("SAVRA10", 10, true, nil)
	ctx := context.Background()

	_, err := f.service.AddItem(ctx, f.userID, p.ID, 1, "18", domain.OrderTypeCatalog)
	require.NoError(t, err)
	view, err := f.service.ApplyPromo(ctx, f.userID, "SAVRA10")
	require.NoError(t, err)
	require.Equal(t, int64(100), view.Totals.Discount)

	view, err = f.service.UpdateQuantity(ctx, f.userID, p.ID, "18", 3)
	require.NoError(t, err)
	assert.Equal(t, int64(300), view.Totals.Discount)
}

func TestCartServicePromoDroppedWhenCartEmptied(t *testing.T) {
	f := newCartFixture(t)
	p := f.seedProduct(10250, "18")
	f.seedPromo("SAVRA10", 10, true, nil)
	ctx := context.Background()

	_, err := f.service.AddItem(ctx, f.userID, p.ID, 1, "18", domain.OrderTypeCatalog)
	require.NoError(t, err)
	_, err = f.service.ApplyPromo(ctx, f.userID, "SAVRA10")
	require.NoError(t, err)

	view, err := f.service.RemoveItem(ctx, f.userID, p.ID, "18")
	require.NoError(t, err)
	assert.Nil(t, view.Promo)
	assert.Equal(t, int64(0), view.Totals.Discount)
}

func TestCartServiceMutationDropsDeadPromo(t *testing.T) {
	f := newCartFixture(t)
	p := f.seedProduct(10250, "18")
	promo := f.seedPromo("SAVRA10", 10, true, nil)
	ctx := context.Background()

	_, err := f.service.AddItem(ctx, f.userID, p.ID, 1, "18", domain.OrderTypeCatalog)
	require.NoError(t, err)
	_, err = f.service.ApplyPromo(ctx, f.userID, "SAVRA10")
	require.NoError(t, err)

	// The code is switched off, then the cart is edited.
	promo.IsActive = false

	view, err := f.service.UpdateQuantity(ctx, f.userID, p.ID, "18", 2)
	require.NoError(t, err)
	assert.Nil(t, view.Promo)
	assert.Equal(t, int64(0), view.Totals.Discount)
}

func TestCartServiceApplyPromoUnknownCode(t *testing.T) {
	f := newCartFixture(t)
	p := f.seedProduct(10250, "18")
	ctx := context.Background()

	_, err := f.service.AddItem(ctx, f.userID, p.ID, 1, "18", domain.OrderTypeCatalog)
	require.NoError(t, err)

	_, err = f.service.ApplyPromo(ctx, f.userID, "NOPE")
	assert.ErrorIs(t, err, ErrPromoNotFound)

	// The cart is untouched by the failed application.
	view, err := f.service.Get(ctx, f.userID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), view.Totals.Discount)
	assert.Len(t, view.Items, 1)
}

func TestCartServiceCheckoutEmptyCart(t *testing.T) {
	f := newCartFixture(t)
	_, err := f.service.Checkout(context.Background(), f.userID)
	assert.ErrorIs(t, err, ErrEmptyCart)
	// The service surfaces the engine's sentinel, not a parallel one.
	assert.ErrorIs(t, err, cart.ErrEmptyCart)
}

func TestCartServiceCheckoutIncrementsUsageOnceAndClearsCart(t *testing.T) {
	f := newCartFixture(t)
	p := f.seedProduct(10250, "18")
	f.seedPromo("SAVRA10", 10, true, nil)
	ctx := context.Background()

	_, err := f.service.AddItem(ctx, f.userID, p.ID, 1, "18", domain.OrderTypeCatalog)
	require.NoError(t, err)
	_, err = f.service.ApplyPromo(ctx, f.userID, "SAVRA10")
	require.NoError(t, err)

	order, err := f.service.Checkout(ctx, f.userID)
	require.NoError(t, err)

	assert.Equal(t, domain.StatusPending, order.Status)
	assert.Equal(t, int64(10250), order.Subtotal)
	assert.Equal(t, int64(1025), order.Discount)
	assert.Equal(t, int64(9225), order.Total)
	assert.Equal(t, "SAVRA10", order.PromoCode)

	// Exactly one usage per submitted order.
	assert.Equal(t, 1, f.promos.promos["SAVRA10"].UsageCount)

	view, err := f.service.Get(ctx, f.userID)
	require.NoError(t, err)
	assert.Empty(t, view.Items)

	// The customer got a confirmation.
	require.Len(t, f.mailer.sent, 1)
	assert.Equal(t, order.ID, f.mailer.sent[0])
}

func TestCartServiceCheckoutRevalidatesPromo(t *testing.T) {
	f := newCartFixture(t)
	p := f.seedProduct(10250, "18")
	promo := f.seedPromo("SAVRA10", 10, true, nil)
	ctx := context.Background()

	_, err := f.service.AddItem(ctx, f.userID, p.ID, 1, "18", domain.OrderTypeCatalog)
	require.NoError(t, err)
	_, err = f.service.ApplyPromo(ctx, f.userID, "SAVRA10")
	require.NoError(t, err)

	// The code is switched off between apply time and checkout.
	promo.IsActive = false

	order, err := f.service.Checkout(ctx, f.userID)
	require.NoError(t, err)

	assert.Empty(t, order.PromoCode)
	assert.Equal(t, int64(0), order.Discount)
	assert.Equal(t, int64(10250), order.Total)
	assert.Equal(t, 0, promo.UsageCount)
}

func TestCartServiceCheckoutDerivesConstructorOrderType(t *testing.T) {
	f := newCartFixture(t)
	p := f.seedProduct(8900, "18")
	ctx := context.Background()

	_, err := f.service.AddItem(ctx, f.userID, p.ID, 1, "18", domain.OrderTypeConstructor)
	require.NoError(t, err)

	order, err := f.service.Checkout(ctx, f.userID)
	require.NoError(t, err)
	assert.Equal(t, domain.OrderTypeConstructor, order.OrderType)
}

func TestCartServiceDeliveryAppliedBelowThreshold(t *testing.T) {
	f := newCartFixture(t)
	p := f.seedProduct(1000)
	ctx := context.Background()

	view, err := f.service.AddItem(ctx, f.userID, p.ID, 2, "", domain.OrderTypeCatalog)
	require.NoError(t, err)

	assert.Equal(t, cart.Totals{Subtotal: 2000, Discount: 0, Delivery: 500, Total: 2500}, view.Totals)
}

func TestCartServiceUpdateQuantityZeroRemovesLine(t *testing.T) {
	f := newCartFixture(t)
	p := f.seedProduct(1000, "18")
	ctx := context.Background()

	_, err := f.service.AddItem(ctx, f.userID, p.ID, 2, "18", domain.OrderTypeCatalog)
	require.NoError(t, err)

	view, err := f.service.UpdateQuantity(ctx, f.userID, p.ID, "18", 0)
	require.NoError(t, err)
	assert.Empty(t, view.Items)
}
