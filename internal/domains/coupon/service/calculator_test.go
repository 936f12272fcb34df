package service

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"shopcart-backend/internal/domains/coupon/model"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func decPtr(s string) *decimal.Decimal {
	d := dec(s)
	return &d
}

func line(productID uuid.UUID, price string, qty int) model.CartLine {
	return model.CartLine{ProductID: productID, Price: dec(price), Quantity: qty}
}

func TestCalculate_PercentageDiscount(t *testing.T) {
	calc := NewDiscountCalculator()

	coupon := &model.Coupon{
		DiscountType:  model.DiscountTypePercentage,
		DiscountValue: dec("20"),
	}

	lines := []model.CartLine{line(uuid.New(), "50.00", 2)}
	got := calc.Calculate(coupon, dec("100.00"), lines)

	assert.True(t, dec("20.00").Equal(got), "got %s", got)
}

func TestCalculate_PercentageCappedByMaxDiscount(t *testing.T) {
	calc := NewDiscountCalculator()

	coupon := &model.Coupon{
		DiscountType:      model.DiscountTypePercentage,
		DiscountValue:     dec("15"),
		MaxDiscountAmount: decPtr("15.00"),
	}

	// 15% of 200 = 30, capped at 15.
	lines := []model.CartLine{line(uuid.New(), "200.00", 1)}
	got := calc.Calculate(coupon, dec("200.00"), lines)

	assert.True(t, dec("15.00").Equal(got), "got %s", got)
}

func TestCalculate_FixedCappedByMaxDiscount(t *testing.T) {
	calc := NewDiscountCalculator()

	coupon := &model.Coupon{
		DiscountType:      model.DiscountTypeFixed,
		DiscountValue:     dec("50.00"),
		MaxDiscountAmount: decPtr("30.00"),
	}

	lines := []model.CartLine{line(uuid.New(), "100.00", 1)}
	got := calc.Calculate(coupon, dec("100.00"), lines)

	assert.True(t, dec("30.00").Equal(got), "got %s", got)
}

func TestCalculate_FixedClampedToSubtotal(t *testing.T) {
	calc := NewDiscountCalculator()

	coupon := &model.Coupon{
		DiscountType:  model.DiscountTypeFixed,
		DiscountValue: dec("50.00"),
	}

	lines := []model.CartLine{line(uuid.New(), "30.00", 1)}
	got := calc.Calculate(coupon, dec("30.00"), lines)

	assert.True(t, dec("30.00").Equal(got), "got %s", got)
}

func TestCalculate_ProductScopedUsesApplicableSubtotalOnly(t *testing.T) {
	calc := NewDiscountCalculator()

	inScope := uuid.New()
	outOfScope := uuid.New()

	coupon := &model.Coupon{
		DiscountType:         model.DiscountTypePercentage,
		DiscountValue:        dec("10"),
		ApplicableProductIDs: []uuid.UUID{inScope},
	}

	lines := []model.CartLine{
		line(inScope, "40.00", 1),
		line(outOfScope, "60.00", 1),
	}
	got := calc.Calculate(coupon, dec("100.00"), lines)

	// 10% of the 40.00 in scope, not of the full 100.00.
	assert.True(t, dec("4.00").Equal(got), "got %s", got)
}

func TestCalculate_ProductScopedNoMatchingLines(t *testing.T) {
	calc := NewDiscountCalculator()

	coupon := &model.Coupon{
		DiscountType:         model.DiscountTypeFixed,
		DiscountValue:        dec("10.00"),
		ApplicableProductIDs: []uuid.UUID{uuid.New()},
	}

	lines := []model.CartLine{line(uuid.New(), "99.00", 3)}
	got := calc.Calculate(coupon, dec("297.00"), lines)

	assert.True(t, got.IsZero(), "got %s", got)
}

func TestCalculate_FixedClampedToApplicableSubtotal(t *testing.T) {
	calc := NewDiscountCalculator()

	inScope := uuid.New()

	coupon := &model.Coupon{
		DiscountType:         model.DiscountTypeFixed,
		DiscountValue:        dec("25.00"),
		ApplicableProductIDs: []uuid.UUID{inScope},
	}

	lines := []model.CartLine{
		line(inScope, "10.00", 1),
		line(uuid.New(), "90.00", 1),
	}
	got := calc.Calculate(coupon, dec("100.00"), lines)

	assert.True(t, dec("10.00").Equal(got), "got %s", got)
}

func TestCalculate_RoundsHalfAwayFromZero(t *testing.T) {
	calc := NewDiscountCalculator()

	coupon := &model.Coupon{
		DiscountType:  model.DiscountTypePercentage,
		DiscountValue: dec("15"),
	}

	// 15% of 47.77 = 7.1655, rounds up to 7.17.
	lines := []model.CartLine{line(uuid.New(), "47.77", 1)}
	got := calc.Calculate(coupon, dec("47.77"), lines)

	assert.True(t, dec("7.17").Equal(got), "got %s", got)
}

func TestCalculate_EmptyCart(t *testing.T) {
	calc := NewDiscountCalculator()

	coupon := &model.Coupon{
		DiscountType:  model.DiscountTypePercentage,
		DiscountValue: dec("20"),
	}

	got := calc.Calculate(coupon, decimal.Zero, nil)

	assert.True(t, got.IsZero(), "got %s", got)
}

func TestCalculate_UnknownDiscountType(t *testing.T) {
	calc := NewDiscountCalculator()

	coupon := &model.Coupon{
		DiscountType:  model.DiscountType("bogus"),
		DiscountValue: dec("20"),
	}

	lines := []model.CartLine{line(uuid.New(), "10.00", 1)}
	got := calc.Calculate(coupon, dec("10.00"), lines)

	assert.True(t, got.IsZero(), "got %s", got)
}
