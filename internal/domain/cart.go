package domain

import (
	"github.com/google/uuid"
)

// OrderType distinguishes catalog purchases from constructor builds.
// It only affects downstream order routing, never pricing.
type OrderType string

const (
	OrderTypeCatalog     OrderType = "catalog"
	OrderTypeConstructor OrderType = "constructor"
)

// CartItem is one cart line, keyed by (ProductID, Size). Price is the unit
// price snapshotted at add time; later catalog price changes do not touch
// lines already in the cart.
type CartItem struct {
	ProductID uuid.UUID `json:"product_id" db:"product_id"`
	Name      string    `json:"name" db:"name"`
	Price     int64     `json:"price" db:"price"`
	Image     string    `json:"image" db:"image"`
	Quantity  int       `json:"quantity" db:"quantity"`
	Size      string    `json:"size,omitempty" db:"size"`
	OrderType OrderType `json:"order_type" db:"order_type"`
}

// Subtotal returns the line subtotal
func (i CartItem) Subtotal() int64 {
	return i.Price * int64(i.Quantity)
}
