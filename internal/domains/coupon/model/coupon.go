package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// DiscountType enumerates supported discount kinds.
type DiscountType string

const (
	DiscountTypeFixed      DiscountType = "fixed"
	DiscountTypePercentage DiscountType = "percentage"
)

// Coupon is a discount code with its eligibility rules.
// Optional rules are nil pointers; a nil rule imposes no constraint.
type Coupon struct {
	ID          uuid.UUID `json:"id" db:"id"`
	Code        string    `json:"code" db:"code"`
	Description string    `json:"description" db:"description"`

	// Discount details
	DiscountType      DiscountType     `json:"discount_type" db:"discount_type"`
	DiscountValue     decimal.Decimal  `json:"discount_value" db:"discount_value"`
	MaxDiscountAmount *decimal.Decimal `json:"max_discount_amount,omitempty" db:"max_discount_amount"`

	// Auto-applied coupons attach to any eligible cart without user action.
	IsAutoApplied bool `json:"is_auto_applied" db:"is_auto_applied"`

	// Validity window, inclusive on both ends.
	StartDate  *time.Time `json:"start_date,omitempty" db:"start_date"`
	ExpiryDate *time.Time `json:"expiry_date,omitempty" db:"expiry_date"`

	// Cart preconditions
	MinimumCartItems  *int             `json:"minimum_cart_items,omitempty" db:"minimum_cart_items"`
	MinimumTotalPrice *decimal.Decimal `json:"minimum_total_price,omitempty" db:"minimum_total_price"`

	// Usage ceilings. CurrentTotalUses only ever moves forward and is
	// incremented through the repository's conditional update, never
	// assigned directly.
	MaxTotalUses     *int `json:"max_total_uses,omitempty" db:"max_total_uses"`
	CurrentTotalUses int  `json:"current_total_uses" db:"current_total_uses"`
	MaxUsesPerUser   *int `json:"max_uses_per_user,omitempty" db:"max_uses_per_user"`

	// Empty list means the coupon applies to every product.
	ApplicableProductIDs []uuid.UUID `json:"applicable_product_ids,omitempty" db:"applicable_product_ids"`

	IsActive  bool       `json:"is_active" db:"is_active"`
	CreatedAt time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt time.Time  `json:"updated_at" db:"updated_at"`
	DeletedAt *time.Time `json:"deleted_at,omitempty" db:"deleted_at"`
}

// IsProductScoped reports whether the coupon restricts itself to a
// subset of products.
func (c *Coupon) IsProductScoped() bool {
	return len(c.ApplicableProductIDs) > 0
}

// AppliesTo reports whether a product falls under the coupon's scope.
func (c *Coupon) AppliesTo(productID uuid.UUID) bool {
	if !c.IsProductScoped() {
		return true
	}
	for _, id := range c.ApplicableProductIDs {
		if id == productID {
			return true
		}
	}
	return false
}

// WithinValidityWindow checks the start/expiry window at the given time.
func (c *Coupon) WithinValidityWindow(now time.Time) bool {
	if c.StartDate != nil && now.Before(*c.StartDate) {
		return false
	}
	if c.ExpiryDate != nil && now.After(*c.ExpiryDate) {
		return false
	}
	return true
}

// CouponUsage is one append-only ledger entry. Usage is permanent:
// removing a coupon from a cart does not delete its usage rows.
type CouponUsage struct {
	ID       uuid.UUID `json:"id" db:"id"`
	CouponID uuid.UUID `json:"coupon_id" db:"coupon_id"`
	UserID   uuid.UUID `json:"user_id" db:"user_id"`
	UsedAt   time.Time `json:"used_at" db:"used_at"`
}
