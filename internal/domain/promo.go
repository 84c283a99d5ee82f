package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// PromoCode is a percentage-discount token. Codes are stored upper-cased
// and compared case-insensitively. UsageCount moves only at order
// submission, never on mere application.
type PromoCode struct {
	ID         uuid.UUID `json:"id" db:"id"`
	Code       string    `json:"code" db:"code"`
	Discount   int       `json:"discount" db:"discount"`
	IsActive   bool      `json:"is_active" db:"is_active"`
	UsageCount int       `json:"usage_count" db:"usage_count"`
	MaxUsage   *int      `json:"max_usage,omitempty" db:"max_usage"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
}

// CanonicalPromoCode upper-cases and trims a user-entered code
func CanonicalPromoCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// Redeemable reports whether the code may be applied right now: it must be
// active and, when capped, not yet exhausted.
func (p *PromoCode) Redeemable() bool {
	if !p.IsActive {
		return false
	}
	if p.MaxUsage != nil && p.UsageCount >= *p.MaxUsage {
		return false
	}
	return true
}

// Matches reports whether the given user input refers to this code
func (p *PromoCode) Matches(code string) bool {
	return strings.EqualFold(p.Code, strings.TrimSpace(code))
}
