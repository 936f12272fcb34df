package model

import "errors"

var (
	ErrCartNotFound         = errors.New("cart not found")
	ErrCartItemNotFound     = errors.New("cart item not found")
	ErrInvalidQuantity      = errors.New("quantity must be greater than zero")
	ErrCouponAlreadyApplied = errors.New("coupon already applied to cart")
	ErrProductNotAvailable  = errors.New("product is not available")
	ErrInsufficientStock    = errors.New("insufficient stock")
)
