package service

import (
	"github.com/shopspring/decimal"

	"shopcart-backend/internal/domains/coupon/model"
)

var oneHundred = decimal.NewFromInt(100)

// DiscountCalculator turns a coupon plus cart contents into a discount
// amount. It is pure: no clock, no storage, no eligibility checks. The
// validator decides whether a coupon may apply; the calculator only
// answers how much it is worth.
type DiscountCalculator struct{}

func NewDiscountCalculator() *DiscountCalculator {
	return &DiscountCalculator{}
}

// Calculate returns the discount a coupon grants against a cart.
//
// Product-scoped coupons discount only the subtotal of matching lines.
// A scoped coupon with no matching lines grants zero. The result is
// never larger than the subtotal it applies to, never negative, and is
// rounded to 2 decimal places half away from zero.
func (c *DiscountCalculator) Calculate(coupon *model.Coupon, cartTotal decimal.Decimal, lines []model.CartLine) decimal.Decimal {
	applicable := cartTotal
	if coupon.IsProductScoped() {
		applicable = decimal.Zero
		for _, line := range lines {
			if coupon.AppliesTo(line.ProductID) {
				applicable = applicable.Add(line.Subtotal())
			}
		}
	}

	if !applicable.IsPositive() {
		return decimal.Zero
	}

	var discount decimal.Decimal
	switch coupon.DiscountType {
	case model.DiscountTypeFixed:
		discount = coupon.DiscountValue
	case model.DiscountTypePercentage:
		discount = applicable.Mul(coupon.DiscountValue).Div(oneHundred)
	default:
		return decimal.Zero
	}

	// The cap applies to both types, then the result can never exceed
	// what the coupon discounts against.
	if coupon.MaxDiscountAmount != nil && discount.GreaterThan(*coupon.MaxDiscountAmount) {
		discount = *coupon.MaxDiscountAmount
	}
	if discount.GreaterThan(applicable) {
		discount = applicable
	}
	if discount.IsNegative() {
		return decimal.Zero
	}

	return discount.Round(2)
}
