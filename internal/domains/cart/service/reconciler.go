package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"shopcart-backend/internal/domains/cart/model"
	couponModel "shopcart-backend/internal/domains/coupon/model"
	"shopcart-backend/pkg/logger"
)

func equalFoldCode(a, b string) bool {
	return strings.EqualFold(a, b)
}

// reconcileAndRespond runs after every item mutation: drop applied
// coupons the new cart state no longer supports, attach any newly
// eligible auto-applied coupons, then reprice.
func (s *cartService) reconcileAndRespond(ctx context.Context, userID uuid.UUID) (*model.CartResponse, error) {
	cart, err := s.carts.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if err := s.revalidateAppliedCoupons(ctx, cart); err != nil {
		return nil, err
	}
	if err := s.autoApplyCoupons(ctx, cart); err != nil {
		return nil, err
	}

	cart, err = s.carts.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}

	return s.buildResponse(cart), nil
}

// revalidateAppliedCoupons silently removes coupons the cart no longer
// qualifies for. Usage ceilings are not rechecked here: the use was
// consumed at apply time and removal never refunds it, so counting it
// again would invalidate the very user who redeemed the last use.
func (s *cartService) revalidateAppliedCoupons(ctx context.Context, cart *model.Cart) error {
	now := time.Now()
	kept := cart.AppliedCoupons[:0]

	for _, ac := range cart.AppliedCoupons {
		if s.stillEligible(&ac.Coupon, cart, now) {
			kept = append(kept, ac)
			continue
		}

		if err := s.carts.RemoveAppliedCoupon(ctx, cart.ID, ac.CouponID); err != nil {
			return err
		}

		logger.Info("removed ineligible coupon from cart", map[string]interface{}{
			"cart_id":   cart.ID,
			"coupon_id": ac.CouponID,
			"code":      ac.Coupon.Code,
		})
	}

	cart.AppliedCoupons = kept
	return nil
}

// autoApplyCoupons attaches eligible auto-applied coupons. Candidates
// go through the full validator, usage ceilings included, since no use
// has been consumed yet. Auto attachment never records usage and never
// consumes a global use. Empty carts are left alone.
func (s *cartService) autoApplyCoupons(ctx context.Context, cart *model.Cart) error {
	if len(cart.Items) == 0 {
		return nil
	}

	candidates, err := s.coupons.ListAutoApplied(ctx)
	if err != nil {
		return err
	}

	snapshot := cart.Snapshot()
	for _, coupon := range candidates {
		if cart.HasCoupon(coupon.ID) {
			continue
		}

		result, err := s.validator.Validate(ctx, coupon.Code, cart.UserID, snapshot)
		if err != nil {
			return err
		}
		if !result.IsValid {
			continue
		}

		if err := s.carts.AttachAutoCoupon(ctx, cart.ID, coupon.ID); err != nil {
			return err
		}

		logger.Info("auto-applied coupon to cart", map[string]interface{}{
			"cart_id":   cart.ID,
			"coupon_id": coupon.ID,
			"code":      coupon.Code,
		})
	}

	return nil
}

// stillEligible checks the cart-state conditions a coupon must keep
// satisfying while attached: alive, inside its window, above the item
// and total minimums, with at least one line in scope.
func (s *cartService) stillEligible(coupon *couponModel.Coupon, cart *model.Cart, now time.Time) bool {
	if coupon.DeletedAt != nil || !coupon.IsActive {
		return false
	}
	if !coupon.WithinValidityWindow(now) {
		return false
	}
	if coupon.MinimumCartItems != nil && cart.TotalItems() < *coupon.MinimumCartItems {
		return false
	}
	if coupon.MinimumTotalPrice != nil && cart.TotalBeforeDiscount().LessThan(*coupon.MinimumTotalPrice) {
		return false
	}
	if coupon.IsProductScoped() {
		for _, item := range cart.Items {
			if coupon.AppliesTo(item.ProductID) {
				return true
			}
		}
		return false
	}
	return true
}

// -------------------------------------------------------------------
// PRICING
// -------------------------------------------------------------------

// calculatePricing recomputes the full price summary from cart state.
// Discounts are listed in coupon application order; coupons worth
// nothing against the current cart are left out of the breakdown. The
// final amount never drops below zero.
func (s *cartService) calculatePricing(cart *model.Cart) model.PriceCalculation {
	total := cart.TotalBeforeDiscount()
	lines := cart.Snapshot().Lines

	details := []model.AppliedDiscountDetail{}
	totalDiscount := decimal.Zero

	for _, ac := range cart.AppliedCoupons {
		amount := s.calc.Calculate(&ac.Coupon, total, lines)
		if amount.IsZero() {
			continue
		}

		details = append(details, model.AppliedDiscountDetail{
			CouponCode:     ac.Coupon.Code,
			DiscountType:   ac.Coupon.DiscountType,
			DiscountAmount: amount,
			IsAutoApplied:  ac.IsAutoApplied,
		})
		totalDiscount = totalDiscount.Add(amount)
	}

	final := total.Sub(totalDiscount)
	if final.IsNegative() {
		final = decimal.Zero
	}

	return model.PriceCalculation{
		TotalBeforeDiscount: total,
		TotalDiscount:       totalDiscount,
		FinalPayableAmount:  final,
		DiscountDetails:     details,
	}
}

func (s *cartService) buildResponse(cart *model.Cart) *model.CartResponse {
	items := make([]model.CartItemResponse, 0, len(cart.Items))
	for _, item := range cart.Items {
		items = append(items, model.CartItemResponse{
			ID:          item.ID,
			ProductID:   item.ProductID,
			ProductName: item.ProductName,
			Price:       item.Price,
			Quantity:    item.Quantity,
			Subtotal:    item.Subtotal(),
		})
	}

	coupons := make([]model.AppliedCouponResponse, 0, len(cart.AppliedCoupons))
	for _, ac := range cart.AppliedCoupons {
		coupons = append(coupons, model.AppliedCouponResponse{
			Code:          ac.Coupon.Code,
			Description:   ac.Coupon.Description,
			DiscountType:  ac.Coupon.DiscountType,
			IsAutoApplied: ac.IsAutoApplied,
		})
	}

	return &model.CartResponse{
		ID:             cart.ID,
		Items:          items,
		AppliedCoupons: coupons,
		Pricing:        s.calculatePricing(cart),
	}
}
