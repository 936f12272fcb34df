package model

import (
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CartLine is the slice of cart state the coupon engine needs: which
// product, at what captured price, how many.
type CartLine struct {
	ProductID uuid.UUID       `json:"product_id"`
	Price     decimal.Decimal `json:"price"`
	Quantity  int             `json:"quantity"`
}

// Subtotal returns price × quantity for the line.
func (l CartLine) Subtotal() decimal.Decimal {
	return l.Price.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// CartSnapshot is a read-only view of a cart handed to the validator
// and calculator. It carries no identity; totals are derived from the
// lines so they can never disagree with them.
type CartSnapshot struct {
	Lines []CartLine `json:"lines"`
}

// TotalItems is the sum of line quantities.
func (s *CartSnapshot) TotalItems() int {
	total := 0
	for _, l := range s.Lines {
		total += l.Quantity
	}
	return total
}

// TotalBeforeDiscount is the sum of line subtotals.
func (s *CartSnapshot) TotalBeforeDiscount() decimal.Decimal {
	total := decimal.Zero
	for _, l := range s.Lines {
		total = total.Add(l.Subtotal())
	}
	return total
}

// ValidationResult is the structured outcome of an eligibility check.
// Ineligibility is an expected outcome, not an error: callers get
// IsValid=false plus a message instead of an error value.
type ValidationResult struct {
	IsValid        bool            `json:"is_valid"`
	Message        string          `json:"message"`
	DiscountAmount decimal.Decimal `json:"discount_amount"`
	Coupon         *Coupon         `json:"coupon,omitempty"`
}

// -------------------------------------------------------------------
// ADMIN DTOs
// -------------------------------------------------------------------

type CreateCouponRequest struct {
	Code                 string           `json:"code"`
	Description          string           `json:"description"`
	DiscountType         DiscountType     `json:"discount_type"`
	DiscountValue        decimal.Decimal  `json:"discount_value"`
	MaxDiscountAmount    *decimal.Decimal `json:"max_discount_amount"`
	IsAutoApplied        bool             `json:"is_auto_applied"`
	StartDate            *time.Time       `json:"start_date"`
	ExpiryDate           *time.Time       `json:"expiry_date"`
	MinimumCartItems     *int             `json:"minimum_cart_items"`
	MinimumTotalPrice    *decimal.Decimal `json:"minimum_total_price"`
	MaxTotalUses         *int             `json:"max_total_uses"`
	MaxUsesPerUser       *int             `json:"max_uses_per_user"`
	ApplicableProductIDs []uuid.UUID      `json:"applicable_product_ids"`
	IsActive             bool             `json:"is_active"`
}

func (r CreateCouponRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Code,
			validation.Required,
			validation.Length(3, 50),
			validation.Match(couponCodePattern).Error("must contain only letters, digits, hyphens and underscores"),
		),
		validation.Field(&r.Description, validation.Length(0, 500)),
		validation.Field(&r.DiscountType,
			validation.Required,
			validation.In(DiscountTypeFixed, DiscountTypePercentage),
		),
		validation.Field(&r.DiscountValue,
			validation.Required,
			validation.By(decimalNonNegative),
		),
		validation.Field(&r.MaxDiscountAmount, validation.By(optionalDecimalPositive)),
		validation.Field(&r.MinimumTotalPrice, validation.By(optionalDecimalPositive)),
		validation.Field(&r.MinimumCartItems, validation.By(optionalIntPositive)),
		validation.Field(&r.MaxTotalUses, validation.By(optionalIntPositive)),
		validation.Field(&r.MaxUsesPerUser, validation.By(optionalIntPositive)),
	)
}

type UpdateCouponRequest struct {
	Description          *string          `json:"description"`
	DiscountType         *DiscountType    `json:"discount_type"`
	DiscountValue        *decimal.Decimal `json:"discount_value"`
	MaxDiscountAmount    *decimal.Decimal `json:"max_discount_amount"`
	IsAutoApplied        *bool            `json:"is_auto_applied"`
	StartDate            *time.Time       `json:"start_date"`
	ExpiryDate           *time.Time       `json:"expiry_date"`
	MinimumCartItems     *int             `json:"minimum_cart_items"`
	MinimumTotalPrice    *decimal.Decimal `json:"minimum_total_price"`
	MaxTotalUses         *int             `json:"max_total_uses"`
	MaxUsesPerUser       *int             `json:"max_uses_per_user"`
	ApplicableProductIDs []uuid.UUID      `json:"applicable_product_ids"`
}

func (r UpdateCouponRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.DiscountType,
			validation.When(r.DiscountType != nil, validation.In(DiscountTypeFixed, DiscountTypePercentage)),
		),
		validation.Field(&r.DiscountValue, validation.By(optionalDecimalNonNegative)),
		validation.Field(&r.MaxDiscountAmount, validation.By(optionalDecimalPositive)),
		validation.Field(&r.MinimumTotalPrice, validation.By(optionalDecimalPositive)),
		validation.Field(&r.MinimumCartItems, validation.By(optionalIntPositive)),
		validation.Field(&r.MaxTotalUses, validation.By(optionalIntPositive)),
		validation.Field(&r.MaxUsesPerUser, validation.By(optionalIntPositive)),
	)
}

// ListCouponsFilter drives the admin list endpoint.
type ListCouponsFilter struct {
	IsActive      *bool  `form:"is_active"`
	IsAutoApplied *bool  `form:"is_auto_applied"`
	Code          string `form:"code"`
	Page          int    `form:"page"`
	Limit         int    `form:"limit"`
}

func (f *ListCouponsFilter) Normalize() {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.Limit < 1 {
		f.Limit = 20
	}
	if f.Limit > 100 {
		f.Limit = 100
	}
}

// UsageHistoryFilter narrows the usage ledger listing.
type UsageHistoryFilter struct {
	StartDate *time.Time
	EndDate   *time.Time
	UserID    *uuid.UUID
	Page      int
	Limit     int
}

// CouponUsageDetail is a ledger entry joined with the user who redeemed it.
type CouponUsageDetail struct {
	ID           uuid.UUID `json:"id"`
	CouponID     uuid.UUID `json:"coupon_id"`
	UserID       uuid.UUID `json:"user_id"`
	UserEmail    string    `json:"user_email"`
	UserFullName string    `json:"user_full_name"`
	UsedAt       time.Time `json:"used_at"`
}

// ValidateCouponRequest is the public validate endpoint's body.
type ValidateCouponRequest struct {
	Code string `json:"code"`
}

func (r ValidateCouponRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Code, validation.Required, validation.Length(1, 50)),
	)
}
