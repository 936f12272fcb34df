package model

import "errors"

var (
	ErrCouponNotFound   = errors.New("coupon not found")
	ErrCouponCodeExists = errors.New("coupon code already exists")
	ErrInvalidDiscount  = errors.New("invalid discount configuration")

	// ErrCouponUsageLimitReached is returned by the conditional usage
	// increment when the global ceiling has been hit.
	ErrCouponUsageLimitReached = errors.New("coupon usage limit reached")
)

// Validator failure messages, surfaced verbatim in ValidationResult.
const (
	MsgCouponNotFound    = "Coupon not found"
	MsgCouponNotActive   = "Coupon is not active"
	MsgCouponNotYetValid = "Coupon is not yet valid"
	MsgCouponExpired     = "Coupon has expired"
	MsgUsageLimitReached = "Coupon usage limit reached"
	MsgUserLimitReached  = "You have reached the usage limit for this coupon"
	MsgNoApplicableItems = "This coupon is not applicable to the products in your cart"
	MsgCouponValid       = "Coupon is valid"
)
