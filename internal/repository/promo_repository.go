package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"savra-store/internal/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
)

var (
	ErrPromoCodeNotFound      = errors.New("promo code not found")
	ErrPromoCodeAlreadyExists = errors.New("promo code already exists")
	ErrPromoCodeExhausted     = errors.New("promo code usage limit reached")
)

// PromoRepository defines the interface for promo code data access
type PromoRepository interface {
	Create(ctx context.Context, promo *domain.PromoCode) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindByCode(ctx context.Context, code string) (*domain.PromoCode, error)
	List(ctx context.Context) ([]*domain.PromoCode, error)
	// IncrementUsage bumps the usage counter by one, refusing to move past
	// the usage cap. It is called exactly once per submitted order.
	IncrementUsage(ctx context.Context, code string) error
}

type promoRepository struct {
	db *sql.DB
}

// NewPromoRepository creates a new instance of PromoRepository
func NewPromoRepository(db *sql.DB) PromoRepository {
	return &promoRepository{db: db}
}

// Create inserts a new promo code; the code is stored upper-cased
func (r *promoRepository) Create(ctx context.Context, promo *domain.PromoCode) error {
	query := `
		INSERT INTO promo_codes (id, code, discount, is_active, usage_count, max_usage, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := r.db.ExecContext(
		ctx,
		query,
		promo.ID,
		domain.CanonicalPromoCode(promo.Code),
		promo.Discount,
		promo.IsActive,
		promo.UsageCount,
		promo.MaxUsage,
		promo.CreatedAt,
	)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return ErrPromoCodeAlreadyExists
		}
		return fmt.Errorf("failed to create promo code: %w", err)
	}

	return nil
}

// Delete removes a promo code
func (r *promoRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM promo_codes WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete promo code: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return ErrPromoCodeNotFound
	}

	return nil
}

// FindByCode retrieves a promo code by its canonical code
func (r *promoRepository) FindByCode(ctx context.Context, code string) (*domain.PromoCode, error) {
	query := `
		SELECT id, code, discount, is_active, usage_count, max_usage, created_at
		FROM promo_codes
		WHERE code = $1
	`

	promo := &domain.PromoCode{}
	err := r.db.QueryRowContext(ctx, query, domain.CanonicalPromoCode(code)).Scan(
		&promo.ID,
		&promo.Code,
		&promo.Discount,
		&promo.IsActive,
		&promo.UsageCount,
		&promo.MaxUsage,
		&promo.CreatedAt,
	)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrPromoCodeNotFound
		}
		return nil, fmt.Errorf("failed to find promo code: %w", err)
	}

	return promo, nil
}

// List retrieves all promo codes, newest first
func (r *promoRepository) List(ctx context.Context) ([]*domain.PromoCode, error) {
	query := `
		SELECT id, code, discount, is_active, usage_count, max_usage, created_at
		FROM promo_codes
		ORDER BY created_at DESC
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list promo codes: %w", err)
	}
	defer rows.Close()

	promos := []*domain.PromoCode{}
	for rows.Next() {
		promo := &domain.PromoCode{}
		err := rows.Scan(
			&promo.ID,
			&promo.Code,
			&promo.Discount,
			&promo.IsActive,
			&promo.UsageCount,
			&promo.MaxUsage,
			&promo.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan promo code: %w", err)
		}
		promos = append(promos, promo)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating promo codes: %w", err)
	}

	return promos, nil
}

// IncrementUsage atomically bumps usage_count, guarded by the usage cap
// so two concurrent checkouts cannot overspend a capped code.
func (r *promoRepository) IncrementUsage(ctx context.Context, code string) error {
	query := `
		UPDATE promo_codes
		SET usage_count = usage_count + 1
		WHERE code = $1
		  AND (max_usage IS NULL OR usage_count < max_usage)
	`

	result, err := r.db.ExecContext(ctx, query, domain.CanonicalPromoCode(code))
	if err != nil {
		return fmt.Errorf("failed to increment promo usage: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		// Either the code vanished or the cap was hit in the meantime.
		if _, findErr := r.FindByCode(ctx, code); findErr != nil {
			return findErr
		}
		return ErrPromoCodeExhausted
	}

	return nil
}
