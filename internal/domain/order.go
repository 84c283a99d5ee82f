package domain

import (
	"time"

	"github.com/google/uuid"
)

// OrderStatus is the fulfillment state of an order
type OrderStatus string

const (
	StatusPending    OrderStatus = "pending"
	StatusProcessing OrderStatus = "processing"
	StatusShipped    OrderStatus = "shipped"
	StatusDelivered  OrderStatus = "delivered"
	StatusCancelled  OrderStatus = "cancelled"
)

// ValidOrderStatus reports whether s is a known status value
func ValidOrderStatus(s OrderStatus) bool {
	switch s {
	case StatusPending, StatusProcessing, StatusShipped, StatusDelivered, StatusCancelled:
		return true
	}
	return false
}

// CanTransition reports whether an order may move from one status to
// another. The progression is pending -> processing -> shipped -> delivered;
// cancellation is allowed from any non-terminal state. Delivered and
// cancelled are terminal.
func CanTransition(from, to OrderStatus) bool {
	if from == StatusDelivered || from == StatusCancelled {
		return false
	}
	if to == StatusCancelled {
		return true
	}
	switch from {
	case StatusPending:
		return to == StatusProcessing
	case StatusProcessing:
		return to == StatusShipped
	case StatusShipped:
		return to == StatusDelivered
	}
	return false
}

// Order is an immutable checkout snapshot. Items, totals and the applied
// promo are copied from the cart at submission time and never recomputed.
type Order struct {
	ID        uuid.UUID   `json:"id" db:"id"`
	UserID    uuid.UUID   `json:"user_id" db:"user_id"`
	Items     []CartItem  `json:"items" db:"items"`
	Subtotal  int64       `json:"subtotal" db:"subtotal"`
	Discount  int64       `json:"discount" db:"discount"`
	Delivery  int64       `json:"delivery" db:"delivery"`
	Total     int64       `json:"total" db:"total"`
	Status    OrderStatus `json:"status" db:"status"`
	OrderType OrderType   `json:"order_type" db:"order_type"`
	PromoCode string      `json:"promo_code,omitempty" db:"promo_code"`
	CreatedAt time.Time   `json:"created_at" db:"created_at"`
	UpdatedAt time.Time   `json:"updated_at" db:"updated_at"`
}
