package repository

import (
	"context"
	"database/sql"
	"fmt"

	"savra-store/internal/domain"

	"github.com/google/uuid"
)

// StoredCart is the persisted session cart: its lines plus the applied
// promo frozen at application time.
type StoredCart struct {
	Items         []domain.CartItem
	PromoCode     string
	PromoDiscount int64
}

// CartRepository mirrors the in-session cart to durable storage so that a
// session sees its own writes across requests. One cart per user.
type CartRepository interface {
	Get(ctx context.Context, userID uuid.UUID) (*StoredCart, error)
	// Save replaces the user's cart wholesale inside one transaction
	Save(ctx context.Context, userID uuid.UUID, cart *StoredCart) error
	Clear(ctx context.Context, userID uuid.UUID) error
}

type cartRepository struct {
	db *sql.DB
}

// NewCartRepository creates a new instance of CartRepository
func NewCartRepository(db *sql.DB) CartRepository {
	return &cartRepository{db: db}
}

// Get loads the user's cart; a user with no cart rows gets an empty cart
func (r *cartRepository) Get(ctx context.Context, userID uuid.UUID) (*StoredCart, error) {
	cart := &StoredCart{}

	var promoCode sql.NullString
	var promoDiscount sql.NullInt64
	err := r.db.QueryRowContext(ctx,
		`SELECT promo_code, promo_discount FROM carts WHERE user_id = $1`,
		userID,
	).Scan(&promoCode, &promoDiscount)
	if err != nil && err != sql.ErrNoRows {
		return nil, fmt.Errorf("failed to load cart: %w", err)
	}
	if promoCode.Valid {
		cart.PromoCode = promoCode.String
		cart.PromoDiscount = promoDiscount.Int64
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT product_id, name, price, image, quantity, size, order_type
		FROM cart_items
		WHERE user_id = $1
		ORDER BY added_at
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load cart items: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		item := domain.CartItem{}
		if err := rows.Scan(
			&item.ProductID,
			&item.Name,
			&item.Price,
			&item.Image,
			&item.Quantity,
			&item.Size,
			&item.OrderType,
		); err != nil {
			return nil, fmt.Errorf("failed to scan cart item: %w", err)
		}
		cart.Items = append(cart.Items, item)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating cart items: %w", err)
	}

	return cart, nil
}

// Save rewrites the cart rows in one transaction
func (r *cartRepository) Save(ctx context.Context, userID uuid.UUID, cart *StoredCart) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin cart transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO carts (user_id, promo_code, promo_discount, updated_at)
		VALUES ($1, $2, $3, NOW())
		ON CONFLICT (user_id)
		DO UPDATE SET promo_code = $2, promo_discount = $3, updated_at = NOW()
	`, userID, nullableString(cart.PromoCode), cart.PromoDiscount)
	if err != nil {
		return fmt.Errorf("failed to save cart: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM cart_items WHERE user_id = $1`, userID); err != nil {
		return fmt.Errorf("failed to clear cart items: %w", err)
	}

	for _, item := range cart.Items {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO cart_items (user_id, product_id, name, price, image, quantity, size, order_type, added_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW())
		`, userID, item.ProductID, item.Name, item.Price, item.Image, item.Quantity, item.Size, item.OrderType)
		if err != nil {
			return fmt.Errorf("failed to save cart item: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit cart transaction: %w", err)
	}

	return nil
}

// Clear removes the user's cart entirely
func (r *cartRepository) Clear(ctx context.Context, userID uuid.UUID) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin cart transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM cart_items WHERE user_id = $1`, userID); err != nil {
		return fmt.Errorf("failed to clear cart items: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM carts WHERE user_id = $1`, userID); err != nil {
		return fmt.Errorf("failed to clear cart: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit cart transaction: %w", err)
	}

	return nil
}
