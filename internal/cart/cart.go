// Package cart implements the in-session shopping cart and its pricing
// rules: merge-on-add by (product, size), promotional percentage discounts,
// the free-delivery threshold and installment estimation. The package is
// pure state manipulation; persistence and catalog access live with the
// caller.
package cart

import (
	"errors"

	"savra-store/internal/domain"

	"github.com/google/uuid"
)

var (
	ErrInvalidQuantity = errors.New("quantity must be greater than zero")
	ErrSizeRequired    = errors.New("size is required for this product")
	ErrUnknownSize     = errors.New("size is not offered for this product")
	ErrPromoNotFound   = errors.New("promo code not found, inactive or exhausted")
	ErrEmptyCart       = errors.New("cart is empty")
)

// Pricing holds the delivery rule knobs. Delivery is free only when the
// subtotal is strictly greater than the threshold.
type Pricing struct {
	DeliveryThreshold int64
	DeliveryFee       int64
}

// DefaultPricing mirrors the storefront defaults: free delivery above 5000,
// otherwise a flat 500 fee.
var DefaultPricing = Pricing{
	DeliveryThreshold: 5000,
	DeliveryFee:       500,
}

// Totals is the checkout summary derived from the cart
type Totals struct {
	Subtotal int64 `json:"subtotal"`
	Discount int64 `json:"discount"`
	Delivery int64 `json:"delivery"`
	Total    int64 `json:"total"`
}

// AppliedPromo records a successfully applied code together with the
// discount frozen from the subtotal at application time.
type AppliedPromo struct {
	Code     string `json:"code"`
	Discount int64  `json:"discount"`
}

// Cart holds the session cart state. It is not safe for concurrent use;
// a cart belongs to exactly one session.
type Cart struct {
	items   []domain.CartItem
	promo   *AppliedPromo
	pricing Pricing
}

// New returns an empty cart with the given pricing rules
func New(pricing Pricing) *Cart {
	return &Cart{pricing: pricing}
}

// Restore rebuilds a cart from persisted lines and an optionally persisted
// applied promo. Lines are copied; the caller's slice is not retained.
func Restore(pricing Pricing, items []domain.CartItem, promo *AppliedPromo) *Cart {
	c := &Cart{pricing: pricing}
	c.items = append(c.items, items...)
	if promo != nil {
		p := *promo
		c.promo = &p
	}
	return c
}

// AddOptions carries the optional parameters of AddItem
type AddOptions struct {
	Quantity  int
	Size      string
	OrderType domain.OrderType
}

// AddItem puts a product into the cart, merging into an existing line when
// one already exists for the same (product, size) pair. The unit price is
// snapshotted from the product at this instant. Quantity defaults to 1;
// non-positive quantities are rejected. Size is validated only for
// size-variant products.
func (c *Cart) AddItem(product *domain.Product, opts AddOptions) error {
	qty := opts.Quantity
	if qty == 0 {
		qty = 1
	}
	if qty < 0 {
		return ErrInvalidQuantity
	}
	if product.SizeVariant() {
		if opts.Size == "" {
			return ErrSizeRequired
		}
		if !product.HasSize(opts.Size) {
			return ErrUnknownSize
		}
	}

	orderType := opts.OrderType
	if orderType == "" {
		orderType = domain.OrderTypeCatalog
	}

	for i := range c.items {
		if c.items[i].ProductID == product.ID && c.items[i].Size == opts.Size {
			c.items[i].Quantity += qty
			return nil
		}
	}

	c.items = append(c.items, domain.CartItem{
		ProductID: product.ID,
		Name:      product.Name,
		Price:     product.Price,
		Image:     firstImage(product),
		Quantity:  qty,
		Size:      opts.Size,
		OrderType: orderType,
	})
	return nil
}

// UpdateQuantity sets the quantity of the (productID, size) line to an
// absolute value. A quantity of zero or less removes the line. Missing
// lines are a no-op.
func (c *Cart) UpdateQuantity(productID uuid.UUID, size string, quantity int) {
	if quantity <= 0 {
		c.RemoveItem(productID, size)
		return
	}
	for i := range c.items {
		if c.items[i].ProductID == productID && c.items[i].Size == size {
			c.items[i].Quantity = quantity
			return
		}
	}
}

// RemoveItem drops the (productID, size) line; no-op when absent
func (c *Cart) RemoveItem(productID uuid.UUID, size string) {
	for i := range c.items {
		if c.items[i].ProductID == productID && c.items[i].Size == size {
			c.items = append(c.items[:i], c.items[i+1:]...)
			return
		}
	}
}

// Clear empties the cart and drops any applied promo
func (c *Cart) Clear() {
	c.items = nil
	c.promo = nil
}

// ApplyPromo validates the code against the given promo catalog and, on
// success, freezes the discount from the current subtotal. Reapplying the
// same code is idempotent and returns the frozen discount. The promo's
// usage counter is never touched here; counting happens once at order
// submission. On failure the cart is left unchanged.
func (c *Cart) ApplyPromo(code string, catalog []domain.PromoCode) (int64, error) {
	canonical := domain.CanonicalPromoCode(code)
	if c.promo != nil && c.promo.Code == canonical {
		return c.promo.Discount, nil
	}

	for i := range catalog {
		promo := &catalog[i]
		if !promo.Matches(code) || !promo.Redeemable() {
			continue
		}
		discount := c.Subtotal() * int64(promo.Discount) / 100
		c.promo = &AppliedPromo{Code: canonical, Discount: discount}
		return discount, nil
	}
	return 0, ErrPromoNotFound
}

// RemovePromo clears the applied discount, reverting totals to the
// undiscounted subtotal.
func (c *Cart) RemovePromo() {
	c.promo = nil
}

// Promo returns the currently applied promo, or nil
func (c *Cart) Promo() *AppliedPromo {
	if c.promo == nil {
		return nil
	}
	p := *c.promo
	return &p
}

// Subtotal sums unit price times quantity over all lines
func (c *Cart) Subtotal() int64 {
	var sum int64
	for _, item := range c.items {
		sum += item.Subtotal()
	}
	return sum
}

// Totals computes the checkout summary. The discount is the value frozen
// at promo application time, not recomputed from the current subtotal.
// The total is clamped at zero.
func (c *Cart) Totals() Totals {
	subtotal := c.Subtotal()

	var discount int64
	if c.promo != nil {
		discount = c.promo.Discount
	}

	var delivery int64
	if subtotal <= c.pricing.DeliveryThreshold {
		delivery = c.pricing.DeliveryFee
	}

	total := subtotal - discount + delivery
	if total < 0 {
		total = 0
	}

	return Totals{
		Subtotal: subtotal,
		Discount: discount,
		Delivery: delivery,
		Total:    total,
	}
}

// InstallmentPlan estimates the monthly payment for the given number of
// months, rounded down. Returns 0 for a non-positive months value.
func (c *Cart) InstallmentPlan(months int) int64 {
	if months <= 0 {
		return 0
	}
	return c.Totals().Total / int64(months)
}

// Items returns a copy of the cart lines
func (c *Cart) Items() []domain.CartItem {
	items := make([]domain.CartItem, len(c.items))
	copy(items, c.items)
	return items
}

// ItemCount sums quantities across all lines
func (c *Cart) ItemCount() int {
	var count int
	for _, item := range c.items {
		count += item.Quantity
	}
	return count
}

// IsEmpty reports whether the cart has no lines
func (c *Cart) IsEmpty() bool {
	return len(c.items) == 0
}

// OrderType derives the order routing tag: constructor when any line came
// from the ring constructor, catalog otherwise.
func (c *Cart) OrderType() domain.OrderType {
	for _, item := range c.items {
		if item.OrderType == domain.OrderTypeConstructor {
			return domain.OrderTypeConstructor
		}
	}
	return domain.OrderTypeCatalog
}

func firstImage(p *domain.Product) string {
	if len(p.Images) > 0 {
		return p.Images[0]
	}
	return ""
}
