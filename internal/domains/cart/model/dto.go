package model

import (
	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	couponModel "shopcart-backend/internal/domains/coupon/model"
)

type AddItemRequest struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
}

func (r AddItemRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.ProductID, validation.Required, is.UUIDv4),
		validation.Field(&r.Quantity, validation.Required, validation.Min(1)),
	)
}

type UpdateItemRequest struct {
	Quantity int `json:"quantity"`
}

// Quantity 0 removes the line item, so only negatives are rejected.
func (r UpdateItemRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Quantity, validation.Min(0)),
	)
}

type ApplyCouponRequest struct {
	Code string `json:"code"`
}

func (r ApplyCouponRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Code, validation.Required, validation.Length(1, 50)),
	)
}

// AppliedDiscountDetail is one row of the pricing breakdown.
type AppliedDiscountDetail struct {
	CouponCode     string                   `json:"coupon_code"`
	DiscountType   couponModel.DiscountType `json:"discount_type"`
	DiscountAmount decimal.Decimal          `json:"discount_amount"`
	IsAutoApplied  bool                     `json:"is_auto_applied"`
}

// PriceCalculation is the cart's full price summary, recomputed from
// live cart state on every read.
type PriceCalculation struct {
	TotalBeforeDiscount decimal.Decimal         `json:"total_before_discount"`
	TotalDiscount       decimal.Decimal         `json:"total_discount"`
	FinalPayableAmount  decimal.Decimal         `json:"final_payable_amount"`
	DiscountDetails     []AppliedDiscountDetail `json:"discount_details"`
}

type CartItemResponse struct {
	ID          uuid.UUID       `json:"id"`
	ProductID   uuid.UUID       `json:"product_id"`
	ProductName string          `json:"product_name"`
	Price       decimal.Decimal `json:"price"`
	Quantity    int             `json:"quantity"`
	Subtotal    decimal.Decimal `json:"subtotal"`
}

type AppliedCouponResponse struct {
	Code          string                   `json:"code"`
	Description   string                   `json:"description"`
	DiscountType  couponModel.DiscountType `json:"discount_type"`
	IsAutoApplied bool                     `json:"is_auto_applied"`
}

// CartResponse is the API shape of a cart with its pricing.
type CartResponse struct {
	ID             uuid.UUID               `json:"id"`
	Items          []CartItemResponse      `json:"items"`
	AppliedCoupons []AppliedCouponResponse `json:"applied_coupons"`
	Pricing        PriceCalculation        `json:"pricing"`
}
